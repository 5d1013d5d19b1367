package editor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	dto "kifu_editor/internal/domain/editor"
	"kifu_editor/internal/domain/kifu"
	errs "kifu_editor/internal/errors"
	recorduc "kifu_editor/internal/usecase/record"
)

type SessionStore interface {
	StoreSession(ctx context.Context, sessionID string, recordKey string, ttl time.Duration) error
	GetRecordKeyBySession(ctx context.Context, sessionID string) (string, bool)
	DeleteSession(ctx context.Context, sessionID string) error
}

type Documents interface {
	OpenDocument(ctx context.Context, key string) (*recorduc.Document, error)
	SaveDocument(ctx context.Context, key string, doc *recorduc.Document) (string, error)
}

// Session is one open record. Events on it are applied one at a time.
type Session struct {
	ID        string
	RecordKey string

	mu       sync.Mutex
	doc      *recorduc.Document
	editor   *Editor
	selected kifu.Token

	now      func() time.Time
	lastUsed atomic.Int64
}

// Manager keeps the open sessions of the server.
type Manager struct {
	docs     Documents
	sessions SessionStore
	log      *zap.SugaredLogger
	ttl      time.Duration

	mu   sync.RWMutex
	live map[string]*Session
	now  func() time.Time
}

func NewManager(docs Documents, sessions SessionStore, log *zap.SugaredLogger, ttl time.Duration) *Manager {
	return &Manager{
		docs:     docs,
		sessions: sessions,
		log:      log,
		ttl:      ttl,
		live:     map[string]*Session{},
		now:      time.Now,
	}
}

func (m *Manager) Open(ctx context.Context, recordKey string) (*Session, error) {
	id := uuid.NewString()
	s, err := m.load(ctx, id, recordKey)
	if err != nil {
		return nil, err
	}
	if err := m.sessions.StoreSession(ctx, id, recordKey, m.ttl); err != nil {
		m.log.Warnf("session %s is not persisted: %v", id, err)
	}
	m.log.Infof("session %s opened on record %s", id, recordKey)
	return s, nil
}

// Get returns a live session, or reopens one the session store still knows about.
// A session idle for longer than the ttl is dropped together with its unsaved edits.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	s, ok := m.live[id]
	if ok && m.idle(s) {
		delete(m.live, id)
		ok = false
		m.log.Infof("session %s expired", id)
	}
	m.mu.Unlock()
	if ok {
		s.touch()
		return s, nil
	}

	recordKey, ok := m.sessions.GetRecordKeyBySession(ctx, id)
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, errs.ErrSessionNotFound)
	}
	m.log.Infof("session %s restored on record %s", id, recordKey)
	return m.load(ctx, id, recordKey)
}

func (m *Manager) load(ctx context.Context, id string, recordKey string) (*Session, error) {
	doc, err := m.docs.OpenDocument(ctx, recordKey)
	if err != nil {
		return nil, err
	}
	s := &Session{
		ID:        id,
		RecordKey: recordKey,
		doc:       doc,
		editor:    New(doc.Sequence, m.log.With("session", id)),
		now:       m.now,
	}
	s.touch()

	m.mu.Lock()
	defer m.mu.Unlock()
	// параллельный запрос мог уже восстановить эту сессию
	if existing, ok := m.live[id]; ok {
		return existing, nil
	}
	m.live[id] = s
	return s, nil
}

// Sweep drops every idle session and returns how many were dropped.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.live {
		if m.idle(s) {
			delete(m.live, id)
			n++
		}
	}
	if n > 0 {
		m.log.Infof("%d idle sessions dropped", n)
	}
	return n
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

func (m *Manager) idle(s *Session) bool {
	if m.ttl <= 0 {
		return false
	}
	return m.now().Sub(time.Unix(0, s.lastUsed.Load())) > m.ttl
}

// Save writes the session's record and refreshes the session lifetime.
func (m *Manager) Save(ctx context.Context, s *Session) (dto.State, error) {
	s.touch()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := m.docs.SaveDocument(ctx, s.RecordKey, s.doc); err != nil {
		return dto.State{}, err
	}
	s.editor.MarkSaved()
	if err := m.sessions.StoreSession(ctx, s.ID, s.RecordKey, m.ttl); err != nil {
		m.log.Warnf("session %s ttl not refreshed: %v", s.ID, err)
	}
	return s.state(nil), nil
}

func (m *Manager) Close(ctx context.Context, id string) error {
	m.mu.Lock()
	_, ok := m.live[id]
	delete(m.live, id)
	m.mu.Unlock()

	if err := m.sessions.DeleteSession(ctx, id); err != nil {
		m.log.Warnf("session %s: %v", id, err)
	}
	if !ok {
		return fmt.Errorf("session %s: %w", id, errs.ErrSessionNotFound)
	}
	m.log.Infof("session %s closed", id)
	return nil
}

// Apply runs one intent and returns the board after it.
func (s *Session) Apply(in dto.Intent) dto.State {
	s.touch()
	s.mu.Lock()
	defer s.mu.Unlock()

	var out dto.Outcome
	switch in.Kind {
	case dto.IntentPlace:
		out = s.editor.Place(in.Point())
	case dto.IntentPass:
		out = s.editor.Pass()
	case dto.IntentInsert:
		out = s.editor.InsertWith(in.Point(), in.Color)
	case dto.IntentDelete:
		tok := s.target(in.Token)
		out = s.editor.Delete(tok)
		if out.Applied && tok == s.selected {
			s.selected = ""
		}
	case dto.IntentRelocate:
		out = s.editor.Relocate(s.target(in.Token), in.Point())
	case dto.IntentSelect:
		if st, ok := s.editor.Select(in.Point()); ok {
			s.selected = st.Token
			out = dto.Outcome{Applied: true, Stone: &st}
		} else {
			s.selected = ""
			out = dto.Outcome{Reason: "no stone here"}
		}
	default:
		out = dto.Outcome{Reason: fmt.Sprintf("unknown intent %q", in.Kind)}
	}
	return s.state(&out)
}

func (s *Session) Navigate(nav dto.Navigate) dto.State {
	s.touch()
	s.mu.Lock()
	defer s.mu.Unlock()

	out := dto.Outcome{Applied: true}
	switch nav.Action {
	case dto.NavigateBack:
		out.Applied = s.editor.StepBack()
	case dto.NavigateForward:
		out.Applied = s.editor.StepForward()
	case dto.NavigateJump:
		out = s.editor.JumpTo(nav.Index)
	default:
		out = dto.Outcome{Reason: fmt.Sprintf("unknown action %q", nav.Action)}
	}
	return s.state(&out)
}

func (s *Session) State() dto.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state(nil)
}

// Read runs fn on the record and the shown view with the session locked. fn must not mutate doc.
func (s *Session) Read(fn func(doc *recorduc.Document, view int) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.doc, s.editor.View())
}

func (s *Session) touch() {
	s.lastUsed.Store(s.now().UnixNano())
}

func (s *Session) target(tok kifu.Token) kifu.Token {
	if tok == "" {
		return s.selected
	}
	return tok
}

func (s *Session) state(out *dto.Outcome) dto.State {
	seq := s.editor.Sequence()
	if _, ok := seq.Lookup(s.selected); !ok {
		s.selected = ""
	}
	return dto.State{
		SessionID: s.ID,
		RecordKey: s.RecordKey,
		Size:      seq.Size(),
		View:      s.editor.View(),
		Length:    seq.Len(),
		Live:      s.editor.IsLive(),
		NextColor: seq.NextColor(),
		Modified:  s.editor.Modified(),
		Selected:  s.selected,
		Board:     s.editor.Board().Rows(),
		Stones:    seq.Stones(),
		Outcome:   out,
	}
}
