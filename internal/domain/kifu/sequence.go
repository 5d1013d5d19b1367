package kifu

import (
	"fmt"

	errs "kifu_editor/internal/errors"
)

const DefaultSize = 19

// Sequence is a linear game record: stones numbered exactly 1..Len() in order.
// Color is stored per stone, an insertion does not recolor the moves after it.
type Sequence struct {
	size   int
	stones []Stone
}

func NewSequence(size int) *Sequence {
	if size <= 0 {
		size = DefaultSize
	}
	return &Sequence{size: size}
}

func (s *Sequence) Size() int {
	return s.size
}

func (s *Sequence) Len() int {
	return len(s.stones)
}

// Stones returns a copy of the record in move order.
func (s *Sequence) Stones() []Stone {
	out := make([]Stone, len(s.stones))
	copy(out, s.stones)
	return out
}

// At returns the stone with move number n.
func (s *Sequence) At(n int) (Stone, bool) {
	if n < 1 || n > len(s.stones) {
		return Stone{}, false
	}
	return s.stones[n-1], true
}

func (s *Sequence) Lookup(tok Token) (Stone, bool) {
	i := s.index(tok)
	if i < 0 {
		return Stone{}, false
	}
	return s.stones[i], true
}

// Locate returns the most recent stone on p among the first upTo moves.
func (s *Sequence) Locate(p Point, upTo int) (Stone, bool) {
	if upTo > len(s.stones) {
		upTo = len(s.stones)
	}
	for i := upTo - 1; i >= 0; i-- {
		if s.stones[i].Point == p && !p.IsPass() {
			return s.stones[i], true
		}
	}
	return Stone{}, false
}

// NextColor alternates from the last move. An empty record starts with Black;
// a handicap record whose first move is White keeps alternating from there.
func (s *Sequence) NextColor() Color {
	if len(s.stones) == 0 {
		return Black
	}
	return s.stones[len(s.stones)-1].Color.Opposite()
}

// Append adds a move at the live end and advances cur onto it.
func (s *Sequence) Append(cur *Cursor, p Point, c Color) (Stone, error) {
	if cur == nil || cur.seq != s {
		return Stone{}, fmt.Errorf("append with a foreign cursor: %w", errs.ErrInvalidState)
	}
	if !cur.IsLive() {
		return Stone{}, fmt.Errorf("append while browsing move %d of %d: %w", cur.view, len(s.stones), errs.ErrInvalidState)
	}
	if c != s.NextColor() {
		return Stone{}, fmt.Errorf("append %s out of turn, %s to play: %w", c, s.NextColor(), errs.ErrInvalidState)
	}
	if err := s.checkFree(p, len(s.stones)); err != nil {
		return Stone{}, err
	}
	st := Stone{Token: newToken(), Point: p, Color: c, Number: len(s.stones) + 1}
	s.stones = append(s.stones, st)
	cur.view = len(s.stones)
	return st, nil
}

// AppendPass records a pass at the live end.
func (s *Sequence) AppendPass(cur *Cursor, c Color) (Stone, error) {
	return s.Append(cur, Pass, c)
}

// Insert puts a stone of the given color at move number at, shifting the later moves by one.
func (s *Sequence) Insert(at int, p Point, c Color) (Stone, error) {
	if at < 1 || at > len(s.stones)+1 {
		return Stone{}, fmt.Errorf("insert at %d of %d: %w", at, len(s.stones), errs.ErrOutOfRange)
	}
	if !c.Valid() {
		return Stone{}, fmt.Errorf("insert with color %q: %w", c, errs.ErrInvalidState)
	}
	// клетка должна быть свободна во всей записи, а не только до at
	if err := s.checkFree(p, len(s.stones)); err != nil {
		return Stone{}, err
	}

	st := Stone{Token: newToken(), Point: p, Color: c, Number: at}
	stones := make([]Stone, 0, len(s.stones)+1)
	stones = append(stones, s.stones[:at-1]...)
	stones = append(stones, st)
	for _, later := range s.stones[at-1:] {
		later.Number++
		stones = append(stones, later)
	}
	s.stones = stones
	return st, nil
}

func (s *Sequence) InsertPass(at int, c Color) (Stone, error) {
	return s.Insert(at, Pass, c)
}

// Delete removes the stone and renumbers the later moves.
func (s *Sequence) Delete(tok Token) (Stone, error) {
	i := s.index(tok)
	if i < 0 {
		return Stone{}, fmt.Errorf("delete %s: %w", tok, errs.ErrNotFound)
	}
	removed := s.stones[i]

	stones := make([]Stone, 0, len(s.stones)-1)
	stones = append(stones, s.stones[:i]...)
	for _, later := range s.stones[i+1:] {
		later.Number--
		stones = append(stones, later)
	}
	s.stones = stones
	return removed, nil
}

// Relocate moves a stone to p keeping its number, color and token.
// It is a correction, not a move: no turn check and no renumbering.
func (s *Sequence) Relocate(tok Token, p Point) (Stone, error) {
	i := s.index(tok)
	if i < 0 {
		return Stone{}, fmt.Errorf("relocate %s: %w", tok, errs.ErrNotFound)
	}
	if s.stones[i].IsPass() {
		return Stone{}, fmt.Errorf("relocate pass move %d: %w", s.stones[i].Number, errs.ErrInvalidState)
	}
	if !p.OnBoard(s.size) {
		return Stone{}, fmt.Errorf("relocate to (%d,%d): %w", p.X, p.Y, errs.ErrOutOfRange)
	}
	if fold(s.size, s.stones, tok).Occupied(p) {
		return Stone{}, fmt.Errorf("relocate to (%d,%d): %w", p.X, p.Y, errs.ErrOccupiedCell)
	}
	s.stones[i].Point = p
	return s.stones[i], nil
}

// checkFree validates a placement against the board after the first n moves.
func (s *Sequence) checkFree(p Point, n int) error {
	if p.IsPass() {
		return nil
	}
	if !p.OnBoard(s.size) {
		return fmt.Errorf("place at (%d,%d) on %dx%d: %w", p.X, p.Y, s.size, s.size, errs.ErrOutOfRange)
	}
	if fold(s.size, s.stones[:n], "").Occupied(p) {
		return fmt.Errorf("place at (%d,%d) after move %d: %w", p.X, p.Y, n, errs.ErrOccupiedCell)
	}
	return nil
}

func (s *Sequence) index(tok Token) int {
	for i := range s.stones {
		if s.stones[i].Token == tok {
			return i
		}
	}
	return -1
}

// Load rebuilds a sequence from decoded moves, numbering them in order.
// Used by codecs; placements are not validated against each other.
func Load(size int, moves []Stone) (*Sequence, error) {
	s := NewSequence(size)
	s.stones = make([]Stone, 0, len(moves))
	for i, m := range moves {
		if !m.Color.Valid() {
			return nil, fmt.Errorf("move %d has color %q: %w", i+1, m.Color, errs.ErrInvalidState)
		}
		if !m.Point.IsPass() && !m.Point.OnBoard(s.size) {
			return nil, fmt.Errorf("move %d at (%d,%d): %w", i+1, m.Point.X, m.Point.Y, errs.ErrOutOfRange)
		}
		if m.Token == "" {
			m.Token = newToken()
		}
		m.Number = i + 1
		s.stones = append(s.stones, m)
	}
	return s, nil
}
