package kifu

import (
	"errors"
	"testing"

	errs "kifu_editor/internal/errors"
)

func checkNumbering(t *testing.T, s *Sequence) {
	t.Helper()
	for i, st := range s.Stones() {
		if st.Number != i+1 {
			t.Fatalf("stone %d has number %d, want %d", i, st.Number, i+1)
		}
	}
}

func mustAppend(t *testing.T, s *Sequence, cur *Cursor, x, y int) Stone {
	t.Helper()
	st, err := s.Append(cur, Point{X: x, Y: y}, s.NextColor())
	if err != nil {
		t.Fatalf("append (%d,%d): %v", x, y, err)
	}
	return st
}

func TestAppendThenInsertAtStart(t *testing.T) {
	s := NewSequence(19)
	cur := NewCursor(s)

	first, err := s.Append(cur, Point{X: 3, Y: 3}, Black)
	if err != nil {
		t.Fatal(err)
	}
	if first.Number != 1 || first.Color != Black {
		t.Fatalf("first = %v", first)
	}
	second, err := s.Append(cur, Point{X: 15, Y: 15}, White)
	if err != nil {
		t.Fatal(err)
	}
	if second.Number != 2 {
		t.Fatalf("second number = %d", second.Number)
	}

	inserted, err := s.Insert(1, Point{X: 4, Y: 4}, Black)
	if err != nil {
		t.Fatal(err)
	}
	if inserted.Number != 1 {
		t.Fatalf("inserted number = %d", inserted.Number)
	}
	if s.Len() != 3 {
		t.Fatalf("len = %d, want 3", s.Len())
	}
	if got, _ := s.Lookup(first.Token); got.Number != 2 {
		t.Fatalf("first stone renumbered to %d, want 2", got.Number)
	}
	if got, _ := s.Lookup(second.Token); got.Number != 3 {
		t.Fatalf("second stone renumbered to %d, want 3", got.Number)
	}
	// colors are stored, not re-derived
	if got, _ := s.Lookup(first.Token); got.Color != Black {
		t.Fatalf("first stone recolored to %s", got.Color)
	}
	checkNumbering(t, s)
}

func TestAppendWhileBrowsing(t *testing.T) {
	s := NewSequence(19)
	cur := NewCursor(s)
	mustAppend(t, s, cur, 0, 0)
	mustAppend(t, s, cur, 1, 0)
	mustAppend(t, s, cur, 2, 0)
	if err := cur.JumpTo(1); err != nil {
		t.Fatal(err)
	}
	before := s.Stones()

	_, err := s.Append(cur, Point{X: 5, Y: 5}, s.NextColor())
	if !errors.Is(err, errs.ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
	if s.Len() != 3 || cur.View() != 1 {
		t.Fatalf("state changed: len=%d view=%d", s.Len(), cur.View())
	}
	after := s.Stones()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("stone %d changed: %v -> %v", i, before[i], after[i])
		}
	}
}

func TestAppendRejections(t *testing.T) {
	s := NewSequence(9)
	cur := NewCursor(s)
	mustAppend(t, s, cur, 4, 4)

	tests := []struct {
		name  string
		point Point
		color Color
		want  error
	}{
		{"occupied", Point{X: 4, Y: 4}, White, errs.ErrOccupiedCell},
		{"off board", Point{X: 9, Y: 0}, White, errs.ErrOutOfRange},
		{"negative", Point{X: -2, Y: 3}, White, errs.ErrOutOfRange},
		{"out of turn", Point{X: 1, Y: 1}, Black, errs.ErrInvalidState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Append(cur, tt.point, tt.color)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if s.Len() != 1 || cur.View() != 1 {
				t.Fatalf("state changed: len=%d view=%d", s.Len(), cur.View())
			}
		})
	}
}

func TestAppendForeignCursor(t *testing.T) {
	s := NewSequence(19)
	other := NewCursor(NewSequence(19))
	if _, err := s.Append(other, Point{X: 1, Y: 1}, Black); !errors.Is(err, errs.ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
}

func TestInsertChecksWholeRecord(t *testing.T) {
	s := NewSequence(19)
	cur := NewCursor(s)
	mustAppend(t, s, cur, 3, 3)
	mustAppend(t, s, cur, 15, 15)
	mustAppend(t, s, cur, 4, 4)

	// (4,4) is only played at move 3, yet inserting there before it would collide on replay
	if _, err := s.Insert(1, Point{X: 4, Y: 4}, Black); !errors.Is(err, errs.ErrOccupiedCell) {
		t.Fatalf("insert under a later stone: err = %v, want ErrOccupiedCell", err)
	}
	// (3,3) is on the board before move 3
	if _, err := s.Insert(3, Point{X: 3, Y: 3}, Black); !errors.Is(err, errs.ErrOccupiedCell) {
		t.Fatalf("err = %v, want ErrOccupiedCell", err)
	}
	if s.Len() != 3 {
		t.Fatalf("len = %d after rejected inserts", s.Len())
	}
	if _, err := s.Insert(2, Point{X: 5, Y: 5}, White); err != nil {
		t.Fatalf("insert on a free cell: %v", err)
	}
	checkNumbering(t, s)
}

func TestNextColorFollowsLastMove(t *testing.T) {
	if c := NewSequence(19).NextColor(); c != Black {
		t.Fatalf("empty record starts with %s", c)
	}

	// партия с форой: белые ходят первыми
	s, err := Load(19, []Stone{{Point: Point{X: 16, Y: 3}, Color: White}, {Point: Point{X: 3, Y: 2}, Color: Black}})
	if err != nil {
		t.Fatal(err)
	}
	cur := NewCursor(s)
	if err := cur.JumpTo(2); err != nil {
		t.Fatal(err)
	}
	if s.NextColor() != White {
		t.Fatalf("after W, B next = %s", s.NextColor())
	}
	if _, err := s.Append(cur, Point{X: 10, Y: 10}, Black); !errors.Is(err, errs.ErrInvalidState) {
		t.Fatalf("black twice: err = %v", err)
	}
	st := mustAppend(t, s, cur, 10, 10)
	if st.Color != White || st.Number != 3 || s.NextColor() != Black {
		t.Fatalf("move 3 = %v, next = %s", st, s.NextColor())
	}

	// a forced insert at the end changes who plays next
	if _, err := s.Insert(4, Point{X: 11, Y: 11}, White); err != nil {
		t.Fatal(err)
	}
	if s.NextColor() != Black {
		t.Fatalf("after forced W next = %s", s.NextColor())
	}
}

func TestInsertRange(t *testing.T) {
	s := NewSequence(19)
	cur := NewCursor(s)
	mustAppend(t, s, cur, 0, 0)

	for _, at := range []int{0, 3, -1} {
		if _, err := s.Insert(at, Point{X: 9, Y: 9}, Black); !errors.Is(err, errs.ErrOutOfRange) {
			t.Fatalf("insert at %d: err = %v, want ErrOutOfRange", at, err)
		}
	}
	st, err := s.Insert(2, Point{X: 9, Y: 9}, Black)
	if err != nil {
		t.Fatalf("insert at len+1: %v", err)
	}
	if st.Number != 2 || s.Len() != 2 {
		t.Fatalf("insert at end: %v len=%d", st, s.Len())
	}
	if _, err := s.Insert(1, Point{X: 8, Y: 8}, Empty); !errors.Is(err, errs.ErrInvalidState) {
		t.Fatalf("insert without color: err = %v", err)
	}
}

func TestInsertThenDeleteRestoresNumbering(t *testing.T) {
	s := NewSequence(19)
	cur := NewCursor(s)
	for i := 0; i < 5; i++ {
		mustAppend(t, s, cur, i, 0)
	}
	before := s.Stones()

	for k := 1; k <= s.Len()+1; k++ {
		st, err := s.Insert(k, Point{X: 10, Y: 10}, White)
		if err != nil {
			t.Fatalf("insert at %d: %v", k, err)
		}
		checkNumbering(t, s)
		if _, err := s.Delete(st.Token); err != nil {
			t.Fatalf("delete inserted: %v", err)
		}
		checkNumbering(t, s)
		after := s.Stones()
		for i := range before {
			if before[i] != after[i] {
				t.Fatalf("k=%d: stone %d is %v, want %v", k, i, after[i], before[i])
			}
		}
	}
}

func TestDeleteRenumbers(t *testing.T) {
	s := NewSequence(19)
	cur := NewCursor(s)
	var stones []Stone
	for i := 0; i < 4; i++ {
		stones = append(stones, mustAppend(t, s, cur, i, i))
	}

	removed, err := s.Delete(stones[1].Token)
	if err != nil {
		t.Fatal(err)
	}
	if removed.Number != 2 {
		t.Fatalf("removed number = %d", removed.Number)
	}
	if s.Len() != 3 {
		t.Fatalf("len = %d, want 3", s.Len())
	}
	checkNumbering(t, s)
	if got, _ := s.Lookup(stones[3].Token); got.Number != 3 {
		t.Fatalf("last stone number = %d, want 3", got.Number)
	}

	// a removed token is terminal
	if _, err := s.Delete(stones[1].Token); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("second delete: err = %v", err)
	}
	if _, err := s.Relocate(stones[1].Token, Point{X: 10, Y: 10}); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("relocate removed: err = %v", err)
	}
	if _, err := s.Delete("nope"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("unknown token: err = %v", err)
	}
}

func TestRelocate(t *testing.T) {
	s := NewSequence(19)
	cur := NewCursor(s)
	a := mustAppend(t, s, cur, 3, 3)
	b := mustAppend(t, s, cur, 15, 15)

	if _, err := s.Relocate(a.Token, Point{X: 15, Y: 15}); !errors.Is(err, errs.ErrOccupiedCell) {
		t.Fatalf("err = %v, want ErrOccupiedCell", err)
	}
	got, _ := s.Lookup(a.Token)
	if got.Point != (Point{X: 3, Y: 3}) || got.Number != 1 {
		t.Fatalf("stone changed after failed relocate: %v", got)
	}

	if _, err := s.Relocate(b.Token, Point{X: 19, Y: 0}); !errors.Is(err, errs.ErrOutOfRange) {
		t.Fatalf("err = %v, want ErrOutOfRange", err)
	}

	moved, err := s.Relocate(b.Token, Point{X: 16, Y: 3})
	if err != nil {
		t.Fatal(err)
	}
	if moved.Token != b.Token || moved.Number != 2 || moved.Color != White {
		t.Fatalf("relocate changed identity: %v", moved)
	}

	// onto its own cell is a no-op success
	if _, err := s.Relocate(a.Token, Point{X: 3, Y: 3}); err != nil {
		t.Fatalf("relocate onto itself: %v", err)
	}
	checkNumbering(t, s)
}

func TestRelocateWhileBrowsingSeesWholeRecord(t *testing.T) {
	s := NewSequence(19)
	cur := NewCursor(s)
	a := mustAppend(t, s, cur, 3, 3)
	mustAppend(t, s, cur, 10, 10)
	cur.StepBack()

	if _, err := s.Relocate(a.Token, Point{X: 10, Y: 10}); !errors.Is(err, errs.ErrOccupiedCell) {
		t.Fatalf("err = %v, want ErrOccupiedCell", err)
	}
}

func TestPassMoves(t *testing.T) {
	s := NewSequence(19)
	cur := NewCursor(s)
	mustAppend(t, s, cur, 3, 3)
	pass, err := s.AppendPass(cur, White)
	if err != nil {
		t.Fatal(err)
	}
	if !pass.IsPass() || pass.Number != 2 {
		t.Fatalf("pass = %v", pass)
	}
	if _, err := s.Relocate(pass.Token, Point{X: 1, Y: 1}); !errors.Is(err, errs.ErrInvalidState) {
		t.Fatalf("relocate pass: err = %v", err)
	}
	if _, err := s.InsertPass(1, White); err != nil {
		t.Fatalf("insert pass: %v", err)
	}
	g, err := Derive(s, s.Len())
	if err != nil {
		t.Fatal(err)
	}
	if !g.Occupied(Point{X: 3, Y: 3}) {
		t.Fatalf("stone missing after passes")
	}
	checkNumbering(t, s)
}

func TestLocate(t *testing.T) {
	s := NewSequence(19)
	cur := NewCursor(s)
	a := mustAppend(t, s, cur, 3, 3)
	mustAppend(t, s, cur, 4, 4)

	if got, ok := s.Locate(Point{X: 3, Y: 3}, s.Len()); !ok || got.Token != a.Token {
		t.Fatalf("locate = %v, %v", got, ok)
	}
	if _, ok := s.Locate(Point{X: 4, Y: 4}, 1); ok {
		t.Fatalf("locate found a stone past the bound")
	}
	if _, ok := s.Locate(Pass, s.Len()); ok {
		t.Fatalf("locate matched a pass")
	}
}

func TestLoad(t *testing.T) {
	s, err := Load(9, []Stone{
		{Point: Point{X: 2, Y: 2}, Color: Black, Number: 7},
		{Point: Pass, Color: White},
		{Point: Point{X: 6, Y: 6}, Color: White},
	})
	if err != nil {
		t.Fatal(err)
	}
	checkNumbering(t, s)
	for _, st := range s.Stones() {
		if st.Token == "" {
			t.Fatalf("stone %d has no token", st.Number)
		}
	}

	if _, err := Load(9, []Stone{{Point: Point{X: 9, Y: 9}, Color: Black}}); !errors.Is(err, errs.ErrOutOfRange) {
		t.Fatalf("err = %v, want ErrOutOfRange", err)
	}
	if _, err := Load(9, []Stone{{Point: Point{X: 1, Y: 1}}}); !errors.Is(err, errs.ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
}

func TestPointKGS(t *testing.T) {
	tests := []struct {
		p    Point
		want string
	}{
		{Point{X: 0, Y: 18}, "A1"},
		{Point{X: 7, Y: 0}, "H19"},
		{Point{X: 8, Y: 0}, "J19"},
		{Point{X: 18, Y: 0}, "T19"},
		{Pass, "pass"},
	}
	for _, tt := range tests {
		if got := tt.p.KGS(19); got != tt.want {
			t.Errorf("KGS(%v) = %s, want %s", tt.p, got, tt.want)
		}
	}
}
