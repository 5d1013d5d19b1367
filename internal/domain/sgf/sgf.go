package sgf

// Property - одно свойство узла: идентификатор и его значения (например, AB[aa][bb])
type Property struct {
	Ident  string
	Values []string
}

// Node представляет один узел SGF. Порядок свойств сохраняется как в исходном тексте.
type Node struct {
	Properties []Property
}

// Get returns the values of ident and whether the node carries it.
func (n *Node) Get(ident string) ([]string, bool) {
	for _, p := range n.Properties {
		if p.Ident == ident {
			return p.Values, true
		}
	}
	return nil, false
}

// Value returns the first value of ident, "" when absent.
func (n *Node) Value(ident string) string {
	values, ok := n.Get(ident)
	if !ok || len(values) == 0 {
		return ""
	}
	return values[0]
}

// Set replaces the values of ident in place, or appends the property.
func (n *Node) Set(ident string, values ...string) {
	for i := range n.Properties {
		if n.Properties[i].Ident == ident {
			n.Properties[i].Values = values
			return
		}
	}
	n.Properties = append(n.Properties, Property{Ident: ident, Values: values})
}

func (n *Node) Remove(ident string) {
	kept := n.Properties[:0]
	for _, p := range n.Properties {
		if p.Ident != ident {
			kept = append(kept, p)
		}
	}
	n.Properties = kept
}

// GameTree представляет одно дерево в SGF (узлы + варианты)
type GameTree struct {
	Nodes    []Node      // Последовательность узлов (основная линия)
	Children []*GameTree // Варианты (вариативные линии)
}

// Collection - корневой элемент SGF-файла, в файле может быть несколько игр
type Collection struct {
	Trees []*GameTree
}
