package kifu

import (
	"fmt"

	errs "kifu_editor/internal/errors"
)

// Cursor tracks how many moves of its sequence are shown. View == Len is the live end.
type Cursor struct {
	seq  *Sequence
	view int
}

// NewCursor starts on the empty board.
func NewCursor(seq *Sequence) *Cursor {
	return &Cursor{seq: seq}
}

// View is a count of moves, so after a delete it is clamped to the new length.
func (c *Cursor) View() int {
	if c.view > len(c.seq.stones) {
		c.view = len(c.seq.stones)
	}
	return c.view
}

func (c *Cursor) IsLive() bool {
	return c.View() == len(c.seq.stones)
}

// StepBack and StepForward stop silently at the bounds.
func (c *Cursor) StepBack() bool {
	if c.View() == 0 {
		return false
	}
	c.view--
	return true
}

func (c *Cursor) StepForward() bool {
	if c.View() == len(c.seq.stones) {
		return false
	}
	c.view++
	return true
}

func (c *Cursor) JumpTo(index int) error {
	if index < 0 || index > len(c.seq.stones) {
		return fmt.Errorf("jump to %d of %d: %w", index, len(c.seq.stones), errs.ErrOutOfRange)
	}
	c.view = index
	return nil
}

// Board derives the grid at the current view.
func (c *Cursor) Board() *Grid {
	g, _ := Derive(c.seq, c.View())
	return g
}
