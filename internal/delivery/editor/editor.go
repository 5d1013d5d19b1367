package editor

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	dto "kifu_editor/internal/domain/editor"
	"kifu_editor/internal/httpresponse"
	"kifu_editor/internal/usecase/editor"
	"kifu_editor/internal/usecase/export"
	recorduc "kifu_editor/internal/usecase/record"
	"kifu_editor/internal/utils"
)

type EditorHandler struct {
	log      *zap.SugaredLogger
	sessions *editor.Manager
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func NewEditorHandler(log *zap.SugaredLogger, sessions *editor.Manager) *EditorHandler {
	return &EditorHandler{
		log:      log,
		sessions: sessions,
	}
}

func (h *EditorHandler) Routes(r chi.Router) {
	r.Post("/sessions", h.HandleOpenSession)
	r.Get("/sessions/{id}", h.HandleGetState)
	r.Delete("/sessions/{id}", h.HandleCloseSession)
	r.Post("/sessions/{id}/intents", h.HandleIntent)
	r.Post("/sessions/{id}/navigate", h.HandleNavigate)
	r.Post("/sessions/{id}/save", h.HandleSave)
	r.Get("/sessions/{id}/pdf", h.HandlePDF)
	r.Get("/sessions/{id}/ws", h.HandleWebSocket)
}

// HandleOpenSession
// @Summary открыть запись в редакторе
// @Accept json
// @Produce json
// @Param request body editor.OpenSessionRequest true "ключ записи"
// @Success 201 {object} editor.State
// @Router /sessions [post]
func (h *EditorHandler) HandleOpenSession(w http.ResponseWriter, r *http.Request) {
	var req dto.OpenSessionRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		h.log.Error("JSON decode error:", err)
		httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, httpresponse.MALFORMEDJSON_errorDesc+": "+err.Error())
		return
	}
	if req.RecordKey == "" {
		httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, "record_key is required")
		return
	}

	s, err := h.sessions.Open(r.Context(), req.RecordKey)
	if err != nil {
		h.log.Warn(err)
		httpresponse.WriteError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusCreated, s.State())
}

func (h *EditorHandler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, s.State())
}

// HandleIntent
// @Summary применить действие пользователя
// @Description отказ ядра не ошибка: ответ 200 с outcome.applied=false
// @Accept json
// @Produce json
// @Param request body editor.Intent true "place, pass, insert, delete, relocate, select"
// @Success 200 {object} editor.State
// @Router /sessions/{id}/intents [post]
func (h *EditorHandler) HandleIntent(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var in dto.Intent
	if err := utils.DecodeJSONRequest(r, &in); err != nil {
		httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, httpresponse.MALFORMEDJSON_errorDesc+": "+err.Error())
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, s.Apply(in))
}

func (h *EditorHandler) HandleNavigate(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var nav dto.Navigate
	if err := utils.DecodeJSONRequest(r, &nav); err != nil {
		httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, httpresponse.MALFORMEDJSON_errorDesc+": "+err.Error())
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, s.Navigate(nav))
}

func (h *EditorHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	state, err := h.sessions.Save(r.Context(), s)
	if err != nil {
		h.log.Error(err)
		httpresponse.WriteError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, state)
}

func (h *EditorHandler) HandleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Close(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpresponse.WriteError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, "сессия закрыта")
}

// HandlePDF рисует доску в том виде, в котором ее сейчас видит пользователь
func (h *EditorHandler) HandlePDF(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	err := s.Read(func(doc *recorduc.Document, view int) error {
		return export.Diagram(&buf, doc, view)
	})
	if err != nil {
		h.log.Error(err)
		httpresponse.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	_, _ = w.Write(buf.Bytes())
}

// HandleWebSocket - живой редактор: клиент шлет Message, в ответ получает State после каждого события
func (h *EditorHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("upgrade error:", err)
		return
	}
	defer conn.Close()

	if err := conn.WriteJSON(s.State()); err != nil {
		h.log.Error("write error:", err)
		return
	}

	for {
		var msg dto.Message
		if err = conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Error("read error:", err)
			}
			return
		}

		var state dto.State
		switch {
		case msg.Intent != nil:
			state = s.Apply(*msg.Intent)
		case msg.Navigate != nil:
			state = s.Navigate(*msg.Navigate)
		case msg.Save:
			state, err = h.sessions.Save(r.Context(), s)
			if err != nil {
				h.log.Error(err)
				state = s.State()
				state.Outcome = &dto.Outcome{Reason: "save failed"}
			} else {
				state.Outcome = &dto.Outcome{Applied: true}
			}
		default:
			state = s.State()
			state.Outcome = &dto.Outcome{Reason: "empty message"}
		}

		if err := conn.WriteJSON(state); err != nil {
			h.log.Error("write error:", err)
			return
		}
	}
}

func (h *EditorHandler) session(w http.ResponseWriter, r *http.Request) (*editor.Session, bool) {
	s, err := h.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.log.Warn(err)
		httpresponse.WriteError(w, err)
		return nil, false
	}
	return s, true
}
