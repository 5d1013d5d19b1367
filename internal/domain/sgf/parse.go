package sgf

import (
	"fmt"
	"strings"

	errs "kifu_editor/internal/errors"
)

type parser struct {
	src string
	pos int
}

// Parse reads an SGF collection. Variations are kept as children, use Linear to flatten.
func Parse(text string) (*Collection, error) {
	p := &parser{src: text}
	c := &Collection{}

	p.skipSpace()
	for p.pos < len(p.src) {
		if p.src[p.pos] != '(' {
			return nil, p.fail("expected '('")
		}
		tree, err := p.tree()
		if err != nil {
			return nil, err
		}
		c.Trees = append(c.Trees, tree)
		p.skipSpace()
	}
	if len(c.Trees) == 0 {
		return nil, p.fail("no game tree")
	}
	return c, nil
}

// Linear returns the nodes of a collection holding exactly one tree without variations.
func Linear(c *Collection) ([]Node, error) {
	if c == nil || len(c.Trees) == 0 {
		return nil, fmt.Errorf("empty collection: %w", errs.ErrMalformedSGF)
	}
	if len(c.Trees) > 1 {
		return nil, fmt.Errorf("%d game trees: %w", len(c.Trees), errs.ErrVariationsUnsupported)
	}
	tree := c.Trees[0]
	if len(tree.Children) > 0 {
		return nil, fmt.Errorf("%d variations after node %d: %w", len(tree.Children), len(tree.Nodes), errs.ErrVariationsUnsupported)
	}
	if len(tree.Nodes) == 0 {
		return nil, fmt.Errorf("game tree without nodes: %w", errs.ErrMalformedSGF)
	}
	return tree.Nodes, nil
}

func (p *parser) tree() (*GameTree, error) {
	p.pos++ // '('
	t := &GameTree{}

	p.skipSpace()
	for p.peek() == ';' {
		p.pos++
		node, err := p.node()
		if err != nil {
			return nil, err
		}
		t.Nodes = append(t.Nodes, node)
		p.skipSpace()
	}
	if len(t.Nodes) == 0 {
		return nil, p.fail("game tree without nodes")
	}

	for p.peek() == '(' {
		child, err := p.tree()
		if err != nil {
			return nil, err
		}
		t.Children = append(t.Children, child)
		p.skipSpace()
	}

	if p.peek() != ')' {
		return nil, p.fail("expected ')'")
	}
	p.pos++
	return t, nil
}

func (p *parser) node() (Node, error) {
	var n Node
	for {
		p.skipSpace()
		c := p.peek()
		if !isLetter(c) {
			return n, nil
		}
		ident := p.ident()
		if ident == "" {
			return n, p.fail("property identifier without upper case letters")
		}
		p.skipSpace()
		if p.peek() != '[' {
			return n, p.fail(fmt.Sprintf("property %s without value", ident))
		}
		var values []string
		for p.peek() == '[' {
			v, err := p.value()
			if err != nil {
				return n, err
			}
			values = append(values, v)
			p.skipSpace()
		}
		if _, dup := n.Get(ident); dup {
			return n, p.fail(fmt.Sprintf("property %s repeated in one node", ident))
		}
		n.Properties = append(n.Properties, Property{Ident: ident, Values: values})
	}
}

// ident reads a property identifier. Lower case letters of old FF[1-3] files (CoPyright) are dropped.
func (p *parser) ident() string {
	var b strings.Builder
	for p.pos < len(p.src) && isLetter(p.src[p.pos]) {
		if c := p.src[p.pos]; c >= 'A' && c <= 'Z' {
			b.WriteByte(c)
		}
		p.pos++
	}
	return b.String()
}

func (p *parser) value() (string, error) {
	start := p.pos
	p.pos++ // '['
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch c {
		case ']':
			p.pos++
			return b.String(), nil
		case '\\':
			p.pos++
			if p.pos >= len(p.src) {
				break
			}
			next := p.src[p.pos]
			p.pos++
			// мягкий перенос строки удаляется
			if next == '\n' || next == '\r' {
				if p.pos < len(p.src) && (p.src[p.pos] == '\n' || p.src[p.pos] == '\r') && p.src[p.pos] != next {
					p.pos++
				}
				continue
			}
			b.WriteByte(next)
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	p.pos = start
	return "", p.fail("unterminated value")
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r', '\v', '\f':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) fail(msg string) error {
	return fmt.Errorf("offset %d: %s: %w", p.pos, msg, errs.ErrMalformedSGF)
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
