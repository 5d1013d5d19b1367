package tui

import (
	"fmt"
	"strings"

	"kifu_editor/internal/domain/kifu"
)

// RenderBoard draws the grid in fixed 3-char cells, columns lettered A..T without I, rows counted from the bottom.
// The pointer is bracketed, the carried stone is parenthesized and the last shown move is marked with '<'.
func RenderBoard(g *kifu.Grid, pointer kifu.Point, carrying kifu.Token, last int) string {
	size := g.Size()

	var b strings.Builder
	b.WriteString("    ")
	for x := 0; x < size; x++ {
		col := kifu.Point{X: x, Y: 0}.KGS(size)
		b.WriteString(" " + col[:1] + " ")
	}
	b.WriteString("\n")

	for y := 0; y < size; y++ {
		fmt.Fprintf(&b, "%3d ", size-y)
		for x := 0; x < size; x++ {
			p := kifu.Point{X: x, Y: y}
			b.WriteString(cell(g.At(p), p == pointer, carrying, last))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func cell(c kifu.Cell, isPointer bool, carrying kifu.Token, last int) string {
	mark := "."
	switch c.Color {
	case kifu.Black:
		mark = "●"
	case kifu.White:
		mark = "○"
	}

	switch {
	case isPointer:
		return "[" + mark + "]"
	case !c.Empty() && c.Token == carrying:
		return "(" + mark + ")"
	case !c.Empty() && c.Number == last:
		return " " + mark + "<"
	}
	return " " + mark + " "
}
