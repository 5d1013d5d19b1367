package tui

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	dto "kifu_editor/internal/domain/editor"
	"kifu_editor/internal/domain/kifu"
	"kifu_editor/internal/domain/record"
	"kifu_editor/internal/usecase/editor"
	recorduc "kifu_editor/internal/usecase/record"
)

// Files reads and writes the record on disk.
type Files interface {
	ReadSGF(path string) (string, error)
	WriteSGF(path string, text string) error
}

// Snapshots keeps unsaved edits between runs.
type Snapshots interface {
	Save(path string, sgfText string) error
	Load(path string) (string, bool, error)
	Drop(path string) error
	Touch(path string, moves int, at time.Time) error
}

type Options struct {
	Path      string
	BoardSize int
	AppName   string
	Files     Files
	Snapshots Snapshots
	Log       *zap.SugaredLogger
	Now       func() time.Time
}

type mode int

const (
	modeNormal mode = iota
	modeJump
)

const logLimit = 200

type Model struct {
	opts Options
	doc  *recorduc.Document
	ed   *editor.Editor

	pointer  kifu.Point
	carrying kifu.Token // stone picked up with m, "" when nothing is carried
	quitArm  bool

	m        mode
	input    textinput.Model
	logLines []string

	width  int
	height int
}

// NewModel opens the file at opts.Path, or starts an empty record when there is none.
// An autosaved snapshot newer than the file wins.
func NewModel(opts Options) (Model, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop().Sugar()
	}

	ti := textinput.New()
	ti.Placeholder = "move number..."
	ti.Prompt = "jump> "
	ti.CharLimit = 6
	ti.Width = 20

	m := Model{opts: opts, input: ti}

	text, err := opts.Files.ReadSGF(opts.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		m.doc = recorduc.NewDocument(record.CreateRecordRequest{BoardSize: opts.BoardSize}, opts.AppName, opts.Now())
		m.appendLog("new record " + opts.Path)
	case err != nil:
		return Model{}, fmt.Errorf("read %s: %w", opts.Path, err)
	default:
		m.doc, err = recorduc.Decode(text)
		if err != nil {
			return Model{}, fmt.Errorf("decode %s: %w", opts.Path, err)
		}
		m.appendLog("opened " + opts.Path)
	}

	restored := false
	if snap, ok, err := opts.Snapshots.Load(opts.Path); err != nil {
		opts.Log.Warnw("autosave unreadable", "path", opts.Path, "err", err)
	} else if ok && snap != recorduc.Encode(m.doc) {
		if doc, err := recorduc.Decode(snap); err == nil {
			m.doc = doc
			restored = true
			m.appendLog("restored unsaved changes, s to write them")
		} else {
			opts.Log.Warnw("autosave is broken", "path", opts.Path, "err", err)
		}
	}

	m.ed = editor.New(m.doc.Sequence, opts.Log)
	m.ed.JumpToEnd()
	if restored {
		m.ed.MarkModified()
	}
	m.pointer = kifu.Point{X: m.doc.Sequence.Size() / 2, Y: m.doc.Sequence.Size() / 2}

	if err := opts.Snapshots.Touch(opts.Path, m.doc.Sequence.Len(), opts.Now()); err != nil {
		opts.Log.Warnw("recent list not updated", "err", err)
	}
	return m, nil
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.m == modeJump {
			return m.updateJump(msg)
		}
		return m.updateNormal(msg)
	}
	return m, nil
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key != "q" {
		m.quitArm = false
	}

	switch key {
	case "q", "ctrl+c":
		if m.ed.Modified() && !m.quitArm && key == "q" {
			m.quitArm = true
			m.appendLog("unsaved changes are kept in autosave, q again to quit")
			return m, nil
		}
		return m, tea.Quit

	case "up", "k":
		m.movePointer(0, -1)
	case "down", "j":
		m.movePointer(0, 1)
	case "left", "h":
		m.movePointer(-1, 0)
	case "right", "l":
		m.movePointer(1, 0)

	case "enter", " ", "space":
		if m.carrying != "" {
			m.drop()
		} else {
			m.apply("place", m.ed.Place(m.pointer))
		}
	case "p":
		m.apply("pass", m.ed.Pass())
	case "b":
		m.apply("insert", m.ed.InsertWith(m.pointer, kifu.Black))
	case "w":
		m.apply("insert", m.ed.InsertWith(m.pointer, kifu.White))
	case "x":
		st, ok := m.ed.Select(m.pointer)
		if !ok {
			m.appendLog("nothing to delete here")
			return m, nil
		}
		m.apply("delete", m.ed.Delete(st.Token))
	case "m":
		if m.carrying != "" {
			m.drop()
			return m, nil
		}
		st, ok := m.ed.Select(m.pointer)
		if !ok {
			m.appendLog("nothing to pick up here")
			return m, nil
		}
		m.carrying = st.Token
		m.appendLog(fmt.Sprintf("carrying move %d, m or enter to drop, esc to cancel", st.Number))
	case "esc":
		if m.carrying != "" {
			m.carrying = ""
			m.appendLog("move cancelled")
		}

	case "[":
		m.ed.StepBack()
	case "]":
		m.ed.StepForward()
	case "{", "home":
		m.ed.JumpTo(0)
	case "}", "end":
		m.ed.JumpToEnd()
	case "g":
		m.m = modeJump
		m.input.SetValue("")
		m.input.Focus()

	case "s":
		m.save()
	}
	return m, nil
}

func (m Model) updateJump(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.m = modeNormal
		m.input.Blur()
		return m, nil
	case "enter":
		line := strings.TrimSpace(m.input.Value())
		m.m = modeNormal
		m.input.Blur()
		n, err := strconv.Atoi(line)
		if err != nil {
			m.appendLog(fmt.Sprintf("not a move number: %q", line))
			return m, nil
		}
		if out := m.ed.JumpTo(n); !out.Applied {
			m.appendLog("jump: " + out.Reason)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) movePointer(dx, dy int) {
	p := kifu.Point{X: m.pointer.X + dx, Y: m.pointer.Y + dy}
	if p.OnBoard(m.doc.Sequence.Size()) {
		m.pointer = p
	}
}

// drop finishes a relocation. A refused cell puts the stone back where it was.
func (m *Model) drop() {
	out := m.ed.Relocate(m.carrying, m.pointer)
	m.carrying = ""
	if out.SnapBack && out.Stone != nil {
		m.appendLog(fmt.Sprintf("relocate: %s, move %d stays at %s", out.Reason, out.Stone.Number, out.Stone.Point.KGS(m.doc.Sequence.Size())))
		return
	}
	m.apply("relocate", out)
}

func (m *Model) apply(op string, out dto.Outcome) {
	if !out.Applied {
		m.appendLog(op + ": " + out.Reason)
		return
	}
	if out.Stone != nil {
		m.appendLog(fmt.Sprintf("%s: %d %s %s", op, out.Stone.Number, out.Stone.Color, out.Stone.Point.KGS(m.doc.Sequence.Size())))
	}
	m.doc.Forget()
	m.autosave()
}

func (m *Model) autosave() {
	if err := m.opts.Snapshots.Save(m.opts.Path, recorduc.Encode(m.doc)); err != nil {
		m.opts.Log.Errorw("autosave failed", "path", m.opts.Path, "err", err)
		m.appendLog("autosave failed: " + err.Error())
	}
}

func (m *Model) save() {
	if err := m.opts.Files.WriteSGF(m.opts.Path, recorduc.Encode(m.doc)); err != nil {
		m.opts.Log.Errorw("save failed", "path", m.opts.Path, "err", err)
		m.appendLog("save failed: " + err.Error())
		return
	}
	m.ed.MarkSaved()
	if err := m.opts.Snapshots.Drop(m.opts.Path); err != nil {
		m.opts.Log.Warnw("autosave not dropped", "path", m.opts.Path, "err", err)
	}
	_ = m.opts.Snapshots.Touch(m.opts.Path, m.doc.Sequence.Len(), m.opts.Now())
	m.appendLog(fmt.Sprintf("saved %d moves to %s", m.doc.Sequence.Len(), m.opts.Path))
}

func (m *Model) appendLog(s string) {
	m.logLines = append(m.logLines, s)
	if len(m.logLines) > logLimit {
		m.logLines = m.logLines[len(m.logLines)-logLimit:]
	}
}

func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true)
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)

	seq := m.doc.Sequence
	status := fmt.Sprintf("%d/%d", m.ed.View(), seq.Len())
	if m.ed.IsLive() {
		status = fmt.Sprintf("LIVE %d, %s to play", seq.Len(), seq.NextColor())
	}
	title := m.doc.Title()
	if title == "" {
		title = m.opts.Path
	}
	if m.ed.Modified() {
		title += " *"
	}
	header := titleStyle.Render(fmt.Sprintf("kifu  %s  [%s]  %s", title, status, m.pointer.KGS(seq.Size())))

	board := boxStyle.Render(RenderBoard(m.ed.Board(), m.pointer, m.carrying, m.ed.View()))

	// лог справа от доски
	logHeight := max(5, lipgloss.Height(board)-2)
	logStart := max(0, len(m.logLines)-logHeight)
	logBox := boxStyle.Width(max(30, m.width-lipgloss.Width(board)-2)).Height(logHeight).
		Render(strings.Join(m.logLines[logStart:], "\n"))

	var footer string
	if m.m == modeJump {
		footer = m.input.View()
	} else {
		footer = "hjkl move  enter place  b/w insert  x delete  m carry  p pass  [ ] browse  g jump  s save  q quit"
	}

	return header + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, board, logBox) + "\n" + footer + "\n"
}
