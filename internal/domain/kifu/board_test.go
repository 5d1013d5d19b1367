package kifu

import (
	"errors"
	"testing"

	errs "kifu_editor/internal/errors"
)

func TestDeriveFoldsPrefix(t *testing.T) {
	s := NewSequence(9)
	cur := NewCursor(s)
	a := mustAppend(t, s, cur, 2, 2)
	b := mustAppend(t, s, cur, 6, 6)

	empty, err := Derive(s, 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, row := range empty.Rows() {
		for _, c := range row {
			if !c.Empty() {
				t.Fatalf("board at 0 is not empty: %v", c)
			}
		}
	}

	g, err := Derive(s, 1)
	if err != nil {
		t.Fatal(err)
	}
	if c := g.At(a.Point); c.Color != Black || c.Token != a.Token || c.Number != 1 {
		t.Fatalf("cell at first move = %+v", c)
	}
	if g.Occupied(b.Point) {
		t.Fatalf("second move visible at view 1")
	}

	full, err := Derive(s, 2)
	if err != nil {
		t.Fatal(err)
	}
	if c := full.At(b.Point); c.Color != White || c.Number != 2 {
		t.Fatalf("cell at second move = %+v", c)
	}
}

func TestDeriveIsPure(t *testing.T) {
	s := NewSequence(19)
	cur := NewCursor(s)
	for i := 0; i < 6; i++ {
		mustAppend(t, s, cur, i, 18-i)
	}
	before := s.Stones()

	first, err := Derive(s, 4)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Derive(s, 4)
	if err != nil {
		t.Fatal(err)
	}
	if !first.Equal(second) {
		t.Fatalf("derive is not repeatable")
	}
	if cur.View() != 6 {
		t.Fatalf("derive moved the cursor to %d", cur.View())
	}
	after := s.Stones()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("derive changed stone %d", i)
		}
	}
}

func TestDeriveRange(t *testing.T) {
	s := NewSequence(19)
	cur := NewCursor(s)
	mustAppend(t, s, cur, 0, 0)

	for _, view := range []int{-1, 2} {
		if _, err := Derive(s, view); !errors.Is(err, errs.ErrOutOfRange) {
			t.Fatalf("derive %d: err = %v, want ErrOutOfRange", view, err)
		}
	}
}

func TestGridAtOffBoard(t *testing.T) {
	g, err := Derive(NewSequence(9), 0)
	if err != nil {
		t.Fatal(err)
	}
	if !g.At(Point{X: 20, Y: 1}).Empty() || !g.At(Pass).Empty() {
		t.Fatalf("off-board points must read as empty")
	}
	if g.Size() != 9 || len(g.Rows()) != 9 {
		t.Fatalf("size = %d rows = %d", g.Size(), len(g.Rows()))
	}
}

func TestGridEqual(t *testing.T) {
	s := NewSequence(9)
	cur := NewCursor(s)
	mustAppend(t, s, cur, 1, 1)

	a, _ := Derive(s, 0)
	b, _ := Derive(s, 1)
	if a.Equal(b) {
		t.Fatalf("different boards compare equal")
	}
	small, _ := Derive(NewSequence(5), 0)
	if a.Equal(small) {
		t.Fatalf("boards of different size compare equal")
	}
	var nilGrid *Grid
	if !nilGrid.Equal(nil) || a.Equal(nil) {
		t.Fatalf("nil comparison is wrong")
	}
}
