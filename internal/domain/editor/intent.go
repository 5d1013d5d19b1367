package editor

import "kifu_editor/internal/domain/kifu"

const (
	IntentPlace    = "place"
	IntentPass     = "pass"
	IntentInsert   = "insert"
	IntentDelete   = "delete"
	IntentRelocate = "relocate"
	IntentSelect   = "select"

	NavigateBack    = "back"
	NavigateForward = "forward"
	NavigateJump    = "jump"
)

// @name Intent
type Intent struct {
	Kind  string     `json:"kind"`
	X     int        `json:"x"`
	Y     int        `json:"y"`
	Color kifu.Color `json:"color,omitempty"`
	Token kifu.Token `json:"token,omitempty"`
}

func (i Intent) Point() kifu.Point {
	return kifu.Point{X: i.X, Y: i.Y}
}

// @name Navigate
type Navigate struct {
	Action string `json:"action"`
	Index  int    `json:"index"`
}

// Message is what a websocket client sends: either an intent or a navigation step.
type Message struct {
	Intent   *Intent   `json:"intent,omitempty"`
	Navigate *Navigate `json:"navigate,omitempty"`
	Save     bool      `json:"save,omitempty"`
}

type OpenSessionRequest struct {
	RecordKey string `json:"record_key"`
}

// @name Outcome
type Outcome struct {
	Applied  bool        `json:"applied"`
	Reason   string      `json:"reason,omitempty"`
	Stone    *kifu.Stone `json:"stone,omitempty"`
	SnapBack bool        `json:"snap_back,omitempty"`
}

// @name State
type State struct {
	SessionID string        `json:"session_id"`
	RecordKey string        `json:"record_key"`
	Size      int           `json:"size"`
	View      int           `json:"view"`
	Length    int           `json:"length"`
	Live      bool          `json:"live"`
	NextColor kifu.Color    `json:"next_color"`
	Modified  bool          `json:"modified"`
	Selected  kifu.Token    `json:"selected,omitempty"`
	Board     [][]kifu.Cell `json:"board"`
	Stones    []kifu.Stone  `json:"stones"`
	Outcome   *Outcome      `json:"outcome,omitempty"`
}
