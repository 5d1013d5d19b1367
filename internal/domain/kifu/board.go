package kifu

import (
	"fmt"

	errs "kifu_editor/internal/errors"
)

// Cell is the content of one intersection after folding a prefix of the record.
type Cell struct {
	Color  Color `json:"color,omitempty"`
	Token  Token `json:"token,omitempty"`
	Number int   `json:"number,omitempty"`
}

func (c Cell) Empty() bool {
	return c.Color == Empty
}

// Grid is the derived N×N board. It is never stored, only recomputed.
type Grid struct {
	size  int
	cells []Cell
}

func newGrid(size int) *Grid {
	return &Grid{size: size, cells: make([]Cell, size*size)}
}

func (g *Grid) Size() int {
	return g.size
}

// At returns the cell at p, an empty cell for points off the board.
func (g *Grid) At(p Point) Cell {
	if !p.OnBoard(g.size) {
		return Cell{}
	}
	return g.cells[p.Y*g.size+p.X]
}

func (g *Grid) Occupied(p Point) bool {
	return !g.At(p).Empty()
}

func (g *Grid) put(s Stone) {
	if !s.Point.OnBoard(g.size) {
		return
	}
	g.cells[s.Point.Y*g.size+s.Point.X] = Cell{Color: s.Color, Token: s.Token, Number: s.Number}
}

// Equal compares two grids cell by cell.
func (g *Grid) Equal(o *Grid) bool {
	if g == nil || o == nil {
		return g == o
	}
	if g.size != o.size {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}

// Rows returns a copy of the cells, row by row.
func (g *Grid) Rows() [][]Cell {
	rows := make([][]Cell, g.size)
	for y := 0; y < g.size; y++ {
		rows[y] = make([]Cell, g.size)
		copy(rows[y], g.cells[y*g.size:(y+1)*g.size])
	}
	return rows
}

// Derive folds moves 1..view of seq onto an empty board.
// There is no capture logic: a cell shows the latest placement on it.
func Derive(seq *Sequence, view int) (*Grid, error) {
	if view < 0 || view > len(seq.stones) {
		return nil, fmt.Errorf("derive at %d of %d: %w", view, len(seq.stones), errs.ErrOutOfRange)
	}
	return fold(seq.size, seq.stones[:view], ""), nil
}

// fold places stones in order, skipping passes and the excluded token.
func fold(size int, stones []Stone, exclude Token) *Grid {
	g := newGrid(size)
	for _, s := range stones {
		if s.Token == exclude {
			continue
		}
		g.put(s)
	}
	return g
}
