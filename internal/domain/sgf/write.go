package sgf

import "strings"

// Serialize writes the collection without line breaks, properties in node order.
func Serialize(c *Collection) string {
	var builder strings.Builder
	for _, tree := range c.Trees {
		builder.WriteString("(")
		serializeGameTree(&builder, tree)
		builder.WriteString(")")
	}
	return builder.String()
}

// SerializeNodes writes a single linear game tree.
func SerializeNodes(nodes []Node) string {
	return Serialize(&Collection{Trees: []*GameTree{{Nodes: nodes}}})
}

func serializeGameTree(builder *strings.Builder, tree *GameTree) {
	for _, node := range tree.Nodes {
		builder.WriteString(";")
		for _, prop := range node.Properties {
			builder.WriteString(prop.Ident)
			for _, v := range prop.Values {
				builder.WriteString("[")
				builder.WriteString(Escape(v))
				builder.WriteString("]")
			}
		}
	}

	for _, child := range tree.Children {
		builder.WriteString("(")
		serializeGameTree(builder, child)
		builder.WriteString(")")
	}
}

var escaper = strings.NewReplacer(`\`, `\\`, `]`, `\]`)

// Escape prepares a property value for writing.
func Escape(v string) string {
	return escaper.Replace(v)
}
