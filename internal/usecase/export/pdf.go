package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"kifu_editor/internal/domain/kifu"
	recorduc "kifu_editor/internal/usecase/record"
)

const (
	pageWidth = 210.0
	margin    = 20.0
	boardTop  = 40.0
)

// Diagram writes an A4 page with the board after view moves, stones labelled with their numbers.
func Diagram(w io.Writer, doc *recorduc.Document, view int) error {
	grid, err := kifu.Derive(doc.Sequence, view)
	if err != nil {
		return err
	}
	size := grid.Size()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(doc.Title(), true)
	pdf.SetCreator(doc.Header.Value("AP"), true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	title := doc.Title()
	if title == "" {
		title = "Game record"
	}
	pdf.CellFormat(0, 8, title, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, subtitle(doc, view), "", 1, "C", false, 0, "")

	step := (pageWidth - 2*margin) / float64(size+1)
	left := margin + step
	top := boardTop + step
	at := func(i int) (float64, float64) {
		return left + float64(i)*step, top + float64(i)*step
	}

	// сетка
	pdf.SetLineWidth(0.2)
	pdf.SetDrawColor(0, 0, 0)
	last := float64(size-1) * step
	for i := 0; i < size; i++ {
		x, y := at(i)
		pdf.Line(x, top, x, top+last)
		pdf.Line(left, y, left+last, y)
	}
	for _, p := range starPoints(size) {
		x, _ := at(p.X)
		_, y := at(p.Y)
		pdf.SetFillColor(0, 0, 0)
		pdf.Circle(x, y, step*0.1, "F")
	}

	// координаты как на KGS
	pdf.SetFont("Helvetica", "", 7)
	for i := 0; i < size; i++ {
		x, y := at(i)
		col := kifu.Point{X: i, Y: 0}.KGS(size)
		col = col[:1]
		pdf.Text(x-pdf.GetStringWidth(col)/2, top-step*0.7, col)
		row := strconv.Itoa(size - i)
		pdf.Text(left-step*0.7-pdf.GetStringWidth(row), y+1, row)
	}

	radius := step * 0.47
	fontSize := step * 1.6
	if fontSize > 9 {
		fontSize = 9
	}
	for _, row := range grid.Rows() {
		for _, cell := range row {
			if cell.Empty() {
				continue
			}
			st, ok := doc.Sequence.Lookup(cell.Token)
			if !ok {
				continue
			}
			x, _ := at(st.Point.X)
			_, y := at(st.Point.Y)
			if cell.Color == kifu.Black {
				pdf.SetFillColor(0, 0, 0)
				pdf.SetTextColor(255, 255, 255)
			} else {
				pdf.SetFillColor(255, 255, 255)
				pdf.SetTextColor(0, 0, 0)
			}
			pdf.Circle(x, y, radius, "FD")

			label := strconv.Itoa(cell.Number)
			pdf.SetFont("Helvetica", "", fontSize)
			pdf.Text(x-pdf.GetStringWidth(label)/2, y+fontSize*0.12, label)
		}
	}
	pdf.SetTextColor(0, 0, 0)

	if passes := passesUpTo(doc.Sequence, view); passes != "" {
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetXY(margin, top+last+step)
		pdf.MultiCell(0, 5, "Passes: "+passes, "", "L", false)
	}

	return pdf.Output(w)
}

func subtitle(doc *recorduc.Document, view int) string {
	s := fmt.Sprintf("Moves 1-%d of %d", view, doc.Sequence.Len())
	if view == 0 {
		s = fmt.Sprintf("Empty board, %d moves recorded", doc.Sequence.Len())
	}
	if km := doc.Header.Value("KM"); km != "" {
		s += ", komi " + km
	}
	return s
}

func passesUpTo(seq *kifu.Sequence, view int) string {
	out := ""
	for n := 1; n <= view; n++ {
		st, _ := seq.At(n)
		if !st.IsPass() {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += fmt.Sprintf("%d (%s)", st.Number, st.Color)
	}
	return out
}

// starPoints returns the hoshi of the usual board sizes.
func starPoints(size int) []kifu.Point {
	var lines []int
	switch {
	case size >= 13 && size%2 == 1:
		lines = []int{3, size / 2, size - 4}
	case size >= 9 && size%2 == 1:
		lines = []int{2, size - 3}
	default:
		return nil
	}
	var points []kifu.Point
	for _, x := range lines {
		for _, y := range lines {
			points = append(points, kifu.Point{X: x, Y: y})
		}
	}
	if size >= 9 && size < 13 && size%2 == 1 {
		points = append(points, kifu.Point{X: size / 2, Y: size / 2})
	}
	return points
}
