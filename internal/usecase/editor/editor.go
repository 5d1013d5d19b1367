package editor

import (
	"errors"

	"go.uber.org/zap"

	dto "kifu_editor/internal/domain/editor"
	"kifu_editor/internal/domain/kifu"
	errs "kifu_editor/internal/errors"
)

// Editor applies user intents to one record. Rejections never leave it as errors,
// they come back as an Outcome with Applied == false.
type Editor struct {
	seq      *kifu.Sequence
	cur      *kifu.Cursor
	log      *zap.SugaredLogger
	modified bool
}

// New opens seq in the editor. The cursor starts on the empty board.
func New(seq *kifu.Sequence, log *zap.SugaredLogger) *Editor {
	return &Editor{
		seq: seq,
		cur: kifu.NewCursor(seq),
		log: log,
	}
}

func (e *Editor) Sequence() *kifu.Sequence {
	return e.seq
}

func (e *Editor) View() int {
	return e.cur.View()
}

func (e *Editor) IsLive() bool {
	return e.cur.IsLive()
}

func (e *Editor) Modified() bool {
	return e.modified
}

// MarkSaved clears the modified flag after the record was written.
func (e *Editor) MarkSaved() {
	e.modified = false
}

// MarkModified flags edits that did not go through the editor, e.g. a restored autosave.
func (e *Editor) MarkModified() {
	e.modified = true
}

// Board is re-derived on every call.
func (e *Editor) Board() *kifu.Grid {
	return e.cur.Board()
}

// Place plays the next move at p. Only possible at the live end.
func (e *Editor) Place(p kifu.Point) dto.Outcome {
	st, err := e.seq.Append(e.cur, p, e.seq.NextColor())
	out := e.outcome("place", st, err)
	if errors.Is(err, errs.ErrInvalidState) && !e.cur.IsLive() {
		out.Reason = browsingHint
	}
	return out
}

func (e *Editor) Pass() dto.Outcome {
	st, err := e.seq.AppendPass(e.cur, e.seq.NextColor())
	return e.outcome("pass", st, err)
}

// InsertWith puts a stone of color c right after the shown position and shows it.
func (e *Editor) InsertWith(p kifu.Point, c kifu.Color) dto.Outcome {
	st, err := e.seq.Insert(e.cur.View()+1, p, c)
	out := e.outcome("insert", st, err)
	if out.Applied {
		e.cur.StepForward()
	}
	return out
}

// Delete removes the selected stone. The view keeps its count of moves.
func (e *Editor) Delete(tok kifu.Token) dto.Outcome {
	st, err := e.seq.Delete(tok)
	return e.outcome("delete", st, err)
}

// Relocate drops a dragged stone on p. A bad drop cell cancels the drag.
func (e *Editor) Relocate(tok kifu.Token, p kifu.Point) dto.Outcome {
	st, err := e.seq.Relocate(tok, p)
	out := e.outcome("relocate", st, err)
	if !out.Applied && (errors.Is(err, errs.ErrOccupiedCell) || errors.Is(err, errs.ErrOutOfRange)) {
		out.SnapBack = true
		if orig, ok := e.seq.Lookup(tok); ok {
			out.Stone = &orig
		}
	}
	return out
}

// Select hit-tests p against the shown board.
func (e *Editor) Select(p kifu.Point) (kifu.Stone, bool) {
	return e.seq.Locate(p, e.cur.View())
}

func (e *Editor) StepBack() bool {
	return e.cur.StepBack()
}

func (e *Editor) StepForward() bool {
	return e.cur.StepForward()
}

func (e *Editor) JumpTo(index int) dto.Outcome {
	if err := e.cur.JumpTo(index); err != nil {
		return e.reject("jump", err)
	}
	return dto.Outcome{Applied: true}
}

// JumpToEnd shows the whole record.
func (e *Editor) JumpToEnd() {
	_ = e.cur.JumpTo(e.seq.Len())
}

func (e *Editor) outcome(op string, st kifu.Stone, err error) dto.Outcome {
	if err != nil {
		return e.reject(op, err)
	}
	e.modified = true
	return dto.Outcome{Applied: true, Stone: &st}
}

func (e *Editor) reject(op string, err error) dto.Outcome {
	e.log.Debugw("intent rejected", "op", op, "err", err)
	return dto.Outcome{Applied: false, Reason: Reason(err)}
}

const browsingHint = "go to the last move to continue, hold b or w to insert"

// Reason is the short user-facing text of a rejection.
func Reason(err error) string {
	switch {
	case errors.Is(err, errs.ErrOccupiedCell):
		return "cell is occupied"
	case errors.Is(err, errs.ErrOutOfRange):
		return "out of range"
	case errors.Is(err, errs.ErrInvalidState):
		return "not allowed here"
	case errors.Is(err, errs.ErrNotFound):
		return "no such stone"
	}
	return err.Error()
}
