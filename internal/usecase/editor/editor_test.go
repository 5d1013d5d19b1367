package editor

import (
	"testing"

	"go.uber.org/zap"

	"kifu_editor/internal/domain/kifu"
	recorduc "kifu_editor/internal/usecase/record"
)

func newEditor(t *testing.T, size int) *Editor {
	t.Helper()
	return New(kifu.NewSequence(size), zap.NewNop().Sugar())
}

func TestPlaceAlternates(t *testing.T) {
	e := newEditor(t, 19)
	first := e.Place(kifu.Point{X: 3, Y: 3})
	second := e.Place(kifu.Point{X: 15, Y: 15})
	if !first.Applied || !second.Applied {
		t.Fatalf("place rejected: %+v %+v", first, second)
	}
	if first.Stone.Color != kifu.Black || second.Stone.Color != kifu.White {
		t.Fatalf("colors %s %s", first.Stone.Color, second.Stone.Color)
	}
	if !e.Modified() || e.View() != 2 {
		t.Fatalf("modified=%v view=%d", e.Modified(), e.View())
	}
	e.MarkSaved()
	if e.Modified() {
		t.Fatalf("MarkSaved kept the flag")
	}
}

func TestPlaceInHandicapRecord(t *testing.T) {
	doc, err := recorduc.Decode("(;FF[4]SZ[19]HA[2]AB[dd][pp];W[qd];B[dc])")
	if err != nil {
		t.Fatal(err)
	}
	e := New(doc.Sequence, zap.NewNop().Sugar())
	e.JumpToEnd()

	out := e.Place(kifu.Point{X: 16, Y: 16})
	if !out.Applied || out.Stone.Color != kifu.White || out.Stone.Number != 3 {
		t.Fatalf("place after B = %+v", out)
	}
	if out = e.Pass(); !out.Applied || out.Stone.Color != kifu.Black {
		t.Fatalf("pass = %+v", out)
	}
}

func TestPlaceWhileBrowsingIsRejected(t *testing.T) {
	e := newEditor(t, 19)
	for i := 0; i < 3; i++ {
		e.Place(kifu.Point{X: i, Y: 0})
	}
	e.MarkSaved()
	if out := e.JumpTo(1); !out.Applied {
		t.Fatalf("jump rejected: %s", out.Reason)
	}

	out := e.Place(kifu.Point{X: 9, Y: 9})
	if out.Applied || out.Reason != browsingHint {
		t.Fatalf("outcome = %+v", out)
	}
	if e.Sequence().Len() != 3 || e.View() != 1 || e.Modified() {
		t.Fatalf("state changed: len=%d view=%d modified=%v", e.Sequence().Len(), e.View(), e.Modified())
	}
}

func TestInsertWithAdvancesView(t *testing.T) {
	e := newEditor(t, 19)
	e.Place(kifu.Point{X: 3, Y: 3})
	e.Place(kifu.Point{X: 15, Y: 15})
	e.JumpTo(0)

	out := e.InsertWith(kifu.Point{X: 4, Y: 4}, kifu.Black)
	if !out.Applied || out.Stone.Number != 1 {
		t.Fatalf("insert = %+v", out)
	}
	if e.View() != 1 {
		t.Fatalf("view = %d, want 1", e.View())
	}
	if !e.Board().Occupied(kifu.Point{X: 4, Y: 4}) || e.Board().Occupied(kifu.Point{X: 3, Y: 3}) {
		t.Fatalf("board does not show exactly the inserted stone")
	}

	// at the live end an insert is an append with a forced color
	e.JumpToEnd()
	out = e.InsertWith(kifu.Point{X: 5, Y: 5}, kifu.Black)
	if !out.Applied || out.Stone.Number != 4 || !e.IsLive() {
		t.Fatalf("insert at end = %+v live=%v", out, e.IsLive())
	}
}

func TestInsertOnOccupiedCell(t *testing.T) {
	e := newEditor(t, 19)
	e.Place(kifu.Point{X: 3, Y: 3})
	out := e.InsertWith(kifu.Point{X: 3, Y: 3}, kifu.White)
	if out.Applied || out.Reason != "cell is occupied" || e.View() != 1 {
		t.Fatalf("outcome = %+v view=%d", out, e.View())
	}
}

func TestRelocateSnapsBack(t *testing.T) {
	e := newEditor(t, 19)
	a := e.Place(kifu.Point{X: 3, Y: 3}).Stone
	e.Place(kifu.Point{X: 15, Y: 15})

	out := e.Relocate(a.Token, kifu.Point{X: 15, Y: 15})
	if out.Applied || !out.SnapBack {
		t.Fatalf("outcome = %+v", out)
	}
	if out.Stone == nil || out.Stone.Point != (kifu.Point{X: 3, Y: 3}) || out.Stone.Number != 1 {
		t.Fatalf("snap back stone = %v", out.Stone)
	}

	out = e.Relocate(a.Token, kifu.Point{X: -5, Y: 2})
	if out.Applied || !out.SnapBack {
		t.Fatalf("off grid drop = %+v", out)
	}

	out = e.Relocate(a.Token, kifu.Point{X: 2, Y: 3})
	if !out.Applied || out.Stone.Number != 1 || out.Stone.Token != a.Token {
		t.Fatalf("relocate = %+v", out)
	}

	out = e.Relocate("missing", kifu.Point{X: 0, Y: 0})
	if out.Applied || out.SnapBack || out.Reason != "no such stone" {
		t.Fatalf("unknown token = %+v", out)
	}
}

func TestDeleteSelected(t *testing.T) {
	e := newEditor(t, 19)
	for i := 0; i < 4; i++ {
		e.Place(kifu.Point{X: i, Y: i})
	}
	st, ok := e.Select(kifu.Point{X: 1, Y: 1})
	if !ok || st.Number != 2 {
		t.Fatalf("select = %v %v", st, ok)
	}
	out := e.Delete(st.Token)
	if !out.Applied {
		t.Fatalf("delete rejected: %s", out.Reason)
	}
	for i, s := range e.Sequence().Stones() {
		if s.Number != i+1 {
			t.Fatalf("numbering broken: %v", e.Sequence().Stones())
		}
	}
	if e.View() != 3 {
		t.Fatalf("view = %d", e.View())
	}
	if out := e.Delete(st.Token); out.Applied {
		t.Fatalf("deleted twice")
	}
}

func TestSelectHonorsView(t *testing.T) {
	e := newEditor(t, 19)
	e.Place(kifu.Point{X: 1, Y: 1})
	e.Place(kifu.Point{X: 2, Y: 2})
	e.StepBack()
	if _, ok := e.Select(kifu.Point{X: 2, Y: 2}); ok {
		t.Fatalf("selected a stone that is not shown")
	}
}

func TestNavigation(t *testing.T) {
	e := newEditor(t, 9)
	if e.StepBack() {
		t.Fatalf("step back on empty record moved")
	}
	e.Place(kifu.Point{X: 1, Y: 1})
	if e.StepForward() {
		t.Fatalf("step forward at the end moved")
	}
	if out := e.JumpTo(5); out.Applied || out.Reason != "out of range" {
		t.Fatalf("jump out of range = %+v", out)
	}
	if out := e.Pass(); !out.Applied || !out.Stone.IsPass() {
		t.Fatalf("pass = %+v", out)
	}
}
