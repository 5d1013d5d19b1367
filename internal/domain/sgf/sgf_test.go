package sgf

import (
	"errors"
	"testing"

	errs "kifu_editor/internal/errors"
)

func TestParseLinear(t *testing.T) {
	text := "(;FF[4]GM[1]SZ[19]C[Recorded with Kifu Editor.]\n;B[dd]MN[1]\n;W[pp]C[a \\] bracket];B[])"
	c, err := Parse(text)
	if err != nil {
		t.Fatal(err)
	}
	nodes, err := Linear(c)
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 4 {
		t.Fatalf("nodes = %d, want 4", len(nodes))
	}
	if got := nodes[0].Value("SZ"); got != "19" {
		t.Fatalf("SZ = %q", got)
	}
	if got := nodes[2].Value("C"); got != "a ] bracket" {
		t.Fatalf("comment = %q", got)
	}
	values, ok := nodes[3].Get("B")
	if !ok || len(values) != 1 || values[0] != "" {
		t.Fatalf("pass node = %v %v", values, ok)
	}
	if nodes[1].Properties[0].Ident != "B" || nodes[1].Properties[1].Ident != "MN" {
		t.Fatalf("property order lost: %+v", nodes[1].Properties)
	}
}

func TestParseMultipleValues(t *testing.T) {
	c, err := Parse("(;AB[aa][bb] [cc]CoPyright[x])")
	if err != nil {
		t.Fatal(err)
	}
	n := c.Trees[0].Nodes[0]
	if values, _ := n.Get("AB"); len(values) != 3 {
		t.Fatalf("AB = %v", values)
	}
	if n.Value("CP") != "x" {
		t.Fatalf("old style identifier not normalized: %+v", n.Properties)
	}
}

func TestParseSoftLineBreak(t *testing.T) {
	c, err := Parse("(;C[one\\\ntwo\\\\])")
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Trees[0].Nodes[0].Value("C"); got != "onetwo\\" {
		t.Fatalf("C = %q", got)
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []string{
		"",
		";B[aa]",
		"(;B[aa]",
		"(;B[aa)",
		"(B[aa])",
		"(;B)",
		"()",
		"(;B[aa]B[bb])",
		"(;B[aa]) x",
		"(;foo[bar]B[aa])",
	}
	for _, text := range tests {
		if _, err := Parse(text); !errors.Is(err, errs.ErrMalformedSGF) {
			t.Errorf("Parse(%q) err = %v, want ErrMalformedSGF", text, err)
		}
	}
}

func TestLinearRejectsVariations(t *testing.T) {
	for _, text := range []string{
		"(;SZ[9];B[aa](;W[bb])(;W[cc]))",
		"(;SZ[9];B[aa])(;SZ[9];B[bb])",
	} {
		c, err := Parse(text)
		if err != nil {
			t.Fatalf("Parse(%q): %v", text, err)
		}
		if _, err := Linear(c); !errors.Is(err, errs.ErrVariationsUnsupported) {
			t.Fatalf("Linear(%q) err = %v", text, err)
		}
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	tests := []string{
		"(;FF[4]GM[1]SZ[19];B[dd];W[pp])",
		"(;SZ[9]C[bracket \\] and slash \\\\];B[]MN[1];W[ee])",
		"(;SZ[9];B[aa](;W[bb];B[cc])(;W[dd]))",
		"(;AB[aa][bb]AW[cc])",
	}
	for _, text := range tests {
		c, err := Parse(text)
		if err != nil {
			t.Fatalf("Parse(%q): %v", text, err)
		}
		if got := Serialize(c); got != text {
			t.Errorf("round trip:\n got %s\nwant %s", got, text)
		}
	}
}

func TestNodeEditing(t *testing.T) {
	var n Node
	n.Set("SZ", "19")
	n.Set("C", "first")
	n.Set("SZ", "9")
	if len(n.Properties) != 2 || n.Value("SZ") != "9" || n.Properties[0].Ident != "SZ" {
		t.Fatalf("set = %+v", n.Properties)
	}
	n.Remove("SZ")
	if _, ok := n.Get("SZ"); ok {
		t.Fatalf("SZ still present")
	}
	if SerializeNodes([]Node{n}) != "(;C[first])" {
		t.Fatalf("serialize = %s", SerializeNodes([]Node{n}))
	}
}
