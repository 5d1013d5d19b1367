package record

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"kifu_editor/internal/domain/kifu"
	"kifu_editor/internal/domain/record"
	"kifu_editor/internal/domain/sgf"
	errs "kifu_editor/internal/errors"
)

const maxBoardSize = 52

// Document is a decoded linear record: the root node, the moves and whatever else the move nodes carried.
type Document struct {
	Header      sgf.Node
	Sequence    *kifu.Sequence
	Extras      map[kifu.Token][]sgf.Property
	MoveNumbers bool // MN is written on each move node
}

// NewDocument builds the header of an empty record.
func NewDocument(req record.CreateRecordRequest, appName string, now time.Time) *Document {
	size := req.BoardSize
	if size <= 0 || size > maxBoardSize {
		size = kifu.DefaultSize
	}
	header := sgf.Node{}
	header.Set("FF", "4")
	header.Set("GM", "1")
	header.Set("SZ", strconv.Itoa(size))
	if appName != "" {
		header.Set("AP", appName)
	}
	if req.Title != "" {
		header.Set("GN", req.Title)
	}
	if req.PlayerBlack != "" {
		header.Set("PB", req.PlayerBlack)
	}
	if req.PlayerWhite != "" {
		header.Set("PW", req.PlayerWhite)
	}
	if req.Komi != 0 {
		header.Set("KM", strconv.FormatFloat(req.Komi, 'f', 1, 64))
	}
	header.Set("DT", now.Format("2006-01-02"))
	header.Set("C", fmt.Sprintf("Recorded with %s.", appName))

	return &Document{
		Header:   header,
		Sequence: kifu.NewSequence(size),
		Extras:   map[kifu.Token][]sgf.Property{},
	}
}

// Decode turns SGF text without variations into a document.
// Nodes without a move are folded into the node before them.
func Decode(text string) (*Document, error) {
	c, err := sgf.Parse(text)
	if err != nil {
		return nil, err
	}
	nodes, err := sgf.Linear(c)
	if err != nil {
		return nil, err
	}

	doc := &Document{Header: nodes[0], Extras: map[kifu.Token][]sgf.Property{}}
	size := kifu.DefaultSize
	if sz := doc.Header.Value("SZ"); sz != "" {
		size, err = parseSize(sz)
		if err != nil {
			return nil, err
		}
	}
	if _, ok := doc.Header.Get("B"); ok {
		return nil, fmt.Errorf("move in the root node: %w", errs.ErrMalformedSGF)
	}
	if _, ok := doc.Header.Get("W"); ok {
		return nil, fmt.Errorf("move in the root node: %w", errs.ErrMalformedSGF)
	}

	var moves []kifu.Stone
	var extras [][]sgf.Property
	for i, node := range nodes[1:] {
		color, value, ok, err := moveOf(node)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i+2, err)
		}
		rest := make([]sgf.Property, 0, len(node.Properties))
		for _, p := range node.Properties {
			switch p.Ident {
			case "B", "W":
			case "MN":
				doc.MoveNumbers = true
			default:
				rest = append(rest, p)
			}
		}
		if !ok {
			if len(moves) == 0 {
				doc.Header.Properties = mergeProperties(doc.Header.Properties, rest)
			} else {
				extras[len(extras)-1] = mergeProperties(extras[len(extras)-1], rest)
			}
			continue
		}
		point, err := DecodePoint(value, size)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i+2, err)
		}
		moves = append(moves, kifu.Stone{Point: point, Color: color})
		extras = append(extras, rest)
	}

	doc.Sequence, err = kifu.Load(size, moves)
	if err != nil {
		return nil, err
	}
	for i, st := range doc.Sequence.Stones() {
		if len(extras[i]) > 0 {
			doc.Extras[st.Token] = extras[i]
		}
	}
	return doc, nil
}

// Encode writes the document back. Move numbers always come from the sequence.
func Encode(doc *Document) string {
	nodes := make([]sgf.Node, 0, doc.Sequence.Len()+1)
	nodes = append(nodes, doc.Header)
	for _, st := range doc.Sequence.Stones() {
		node := sgf.Node{Properties: []sgf.Property{
			{Ident: string(st.Color), Values: []string{EncodePoint(st.Point)}},
		}}
		if doc.MoveNumbers {
			node.Properties = append(node.Properties, sgf.Property{Ident: "MN", Values: []string{strconv.Itoa(st.Number)}})
		}
		node.Properties = append(node.Properties, doc.Extras[st.Token]...)
		nodes = append(nodes, node)
	}
	return sgf.SerializeNodes(nodes)
}

// Forget drops the extras of stones that are no longer in the sequence.
func (d *Document) Forget() {
	for tok := range d.Extras {
		if _, ok := d.Sequence.Lookup(tok); !ok {
			delete(d.Extras, tok)
		}
	}
}

func (d *Document) Title() string {
	if gn := d.Header.Value("GN"); gn != "" {
		return gn
	}
	pb, pw := d.Header.Value("PB"), d.Header.Value("PW")
	if pb == "" && pw == "" {
		return ""
	}
	if pb == "" {
		pb = "?"
	}
	if pw == "" {
		pw = "?"
	}
	return pb + " - " + pw
}

func (d *Document) Komi() float64 {
	km, err := strconv.ParseFloat(d.Header.Value("KM"), 64)
	if err != nil {
		return 0
	}
	return km
}

// mergeProperties folds props into dst so that no identifier repeats in one node.
// Comments are joined with a blank line, other values are appended to the list.
func mergeProperties(dst []sgf.Property, props []sgf.Property) []sgf.Property {
	for _, p := range props {
		i := slices.IndexFunc(dst, func(q sgf.Property) bool { return q.Ident == p.Ident })
		if i < 0 {
			dst = append(dst, sgf.Property{Ident: p.Ident, Values: slices.Clone(p.Values)})
			continue
		}
		if textProperties[p.Ident] && len(dst[i].Values) == 1 && len(p.Values) == 1 {
			dst[i].Values = []string{dst[i].Values[0] + "\n\n" + p.Values[0]}
			continue
		}
		dst[i].Values = append(slices.Clone(dst[i].Values), p.Values...)
	}
	return dst
}

var textProperties = map[string]bool{"C": true, "GC": true}

func moveOf(node sgf.Node) (kifu.Color, string, bool, error) {
	b, hasB := node.Get("B")
	w, hasW := node.Get("W")
	switch {
	case hasB && hasW:
		return kifu.Empty, "", false, fmt.Errorf("black and white move in one node: %w", errs.ErrMalformedSGF)
	case hasB:
		return kifu.Black, first(b), true, nil
	case hasW:
		return kifu.White, first(w), true, nil
	}
	return kifu.Empty, "", false, nil
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func parseSize(sz string) (int, error) {
	// прямоугольные доски (SZ[19:13]) не поддерживаются
	size, err := strconv.Atoi(strings.TrimSpace(sz))
	if err != nil || size < 1 || size > maxBoardSize {
		return 0, fmt.Errorf("board size %q: %w", sz, errs.ErrMalformedSGF)
	}
	return size, nil
}

// DecodePoint maps SGF letters to a point. An empty value, or tt on boards up to 19, is a pass.
func DecodePoint(v string, size int) (kifu.Point, error) {
	if v == "" || (v == "tt" && size <= 19) {
		return kifu.Pass, nil
	}
	if len(v) != 2 {
		return kifu.Point{}, fmt.Errorf("point %q: %w", v, errs.ErrMalformedSGF)
	}
	x, okX := letterIndex(v[0])
	y, okY := letterIndex(v[1])
	p := kifu.Point{X: x, Y: y}
	if !okX || !okY || !p.OnBoard(size) {
		return kifu.Point{}, fmt.Errorf("point %q on %dx%d: %w", v, size, size, errs.ErrMalformedSGF)
	}
	return p, nil
}

// EncodePoint is the inverse of DecodePoint; a pass is written as an empty value.
func EncodePoint(p kifu.Point) string {
	if p.IsPass() {
		return ""
	}
	return string([]byte{indexLetter(p.X), indexLetter(p.Y)})
}

func letterIndex(c byte) (int, bool) {
	switch {
	case c >= 'a' && c <= 'z':
		return int(c - 'a'), true
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 26, true
	}
	return 0, false
}

func indexLetter(i int) byte {
	if i < 26 {
		return byte('a' + i)
	}
	return byte('A' + i - 26)
}
