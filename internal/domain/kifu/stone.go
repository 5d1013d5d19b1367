package kifu

import (
	"fmt"

	"github.com/google/uuid"
)

// Color is the SGF identifier of the player owning a stone.
type Color string

const (
	Empty Color = ""
	Black Color = "B"
	White Color = "W"
)

// Opposite returns the other player's color. Empty stays Empty.
func (c Color) Opposite() Color {
	switch c {
	case Black:
		return White
	case White:
		return Black
	default:
		return Empty
	}
}

func (c Color) Valid() bool {
	return c == Black || c == White
}

// ParseColor accepts "B"/"W" in any case as well as the long names.
func ParseColor(s string) (Color, error) {
	switch s {
	case "B", "b", "black", "Black":
		return Black, nil
	case "W", "w", "white", "White":
		return White, nil
	}
	return Empty, fmt.Errorf("unknown color %q", s)
}

// Point is an intersection of the goban, 0-based, x is the column.
type Point struct {
	X int `json:"x" bson:"x"`
	Y int `json:"y" bson:"y"`
}

// Pass marks a stone that was not put on the board.
var Pass = Point{X: -1, Y: -1}

func (p Point) IsPass() bool {
	return p == Pass
}

func (p Point) OnBoard(size int) bool {
	return p.X >= 0 && p.X < size && p.Y >= 0 && p.Y < size
}

// KGS formats the point the way players read it: columns A..T without I, rows counted from the bottom.
func (p Point) KGS(size int) string {
	if p.IsPass() {
		return "pass"
	}
	col := byte('A' + p.X)
	if col >= 'I' {
		col++
	}
	return fmt.Sprintf("%c%d", col, size-p.Y)
}

// Token identifies a stone for the whole of its life, across relocations and renumbering.
type Token string

func newToken() Token {
	return Token(uuid.NewString())
}

// Stone is an immutable value; Sequence hands out copies.
type Stone struct {
	Token  Token `json:"token"`
	Point  Point `json:"point"`
	Color  Color `json:"color"`
	Number int   `json:"number"`
}

func (s Stone) IsPass() bool {
	return s.Point.IsPass()
}

func (s Stone) String() string {
	if s.IsPass() {
		return fmt.Sprintf("%d %s pass", s.Number, s.Color)
	}
	return fmt.Sprintf("%d %s (%d,%d)", s.Number, s.Color, s.Point.X, s.Point.Y)
}
