package record

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"kifu_editor/internal/domain/record"
	"kifu_editor/internal/httpresponse"
	"kifu_editor/internal/usecase/export"
	recorduc "kifu_editor/internal/usecase/record"
	"kifu_editor/internal/utils"
)

const sgfContentType = "application/x-go-sgf"

type RecordHandler struct {
	log      *zap.SugaredLogger
	recordUC *recorduc.RecordUseCase
}

func NewRecordHandler(log *zap.SugaredLogger, recordUC *recorduc.RecordUseCase) *RecordHandler {
	return &RecordHandler{
		log:      log,
		recordUC: recordUC,
	}
}

func (h *RecordHandler) Routes(r chi.Router) {
	r.Post("/records", h.HandleCreateRecord)
	r.Get("/records", h.HandleListRecords)
	r.Post("/records/import", h.HandleImport)
	r.Post("/records/upload", h.HandleUpload)
	r.Get("/records/public/{publicKey}", h.HandleGetRecordByPublicKey)
	r.Get("/records/{key}", h.HandleGetRecord)
	r.Delete("/records/{key}", h.HandleDeleteRecord)
	r.Get("/records/{key}/sgf", h.HandleGetSGF)
	r.Get("/records/{key}/pdf", h.HandleGetPDF)
}

// HandleCreateRecord
// @Summary создать пустую запись
// @Accept json
// @Produce json
// @Param request body record.CreateRecordRequest true "параметры доски"
// @Success 201 {object} record.CreateRecordResponse
// @Router /records [post]
func (h *RecordHandler) HandleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var req record.CreateRecordRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		h.log.Error("JSON decode error:", err)
		httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, httpresponse.MALFORMEDJSON_errorDesc+": "+err.Error())
		return
	}

	resp, err := h.recordUC.CreateRecord(r.Context(), req)
	if err != nil {
		h.log.Error(err)
		httpresponse.WriteError(w, err)
		return
	}

	h.log.Info("New record created with key: " + resp.Key)
	httpresponse.WriteResponseWithStatus(w, http.StatusCreated, resp)
}

// HandleListRecords
// @Summary список записей по страницам
// @Produce json
// @Param page query int false "номер страницы"
// @Success 200 {object} record.ListResponse
// @Router /records [get]
func (h *RecordHandler) HandleListRecords(w http.ResponseWriter, r *http.Request) {
	pageNum := 1
	if page := r.URL.Query().Get("page"); page != "" {
		n, err := strconv.Atoi(page)
		if err != nil || n < 1 {
			httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, "page must be a positive number")
			return
		}
		pageNum = n
	}

	resp, err := h.recordUC.ListRecords(r.Context(), pageNum)
	if err != nil {
		h.log.Error(err)
		httpresponse.WriteError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, resp)
}

func (h *RecordHandler) HandleGetRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := h.recordUC.GetRecord(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		h.log.Warn(err)
		httpresponse.WriteError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, rec)
}

// HandleGetRecordByPublicKey отдает запись по короткому коду без секретного ключа
func (h *RecordHandler) HandleGetRecordByPublicKey(w http.ResponseWriter, r *http.Request) {
	rec, err := h.recordUC.GetRecordByPublicKey(r.Context(), chi.URLParam(r, "publicKey"))
	if err != nil {
		h.log.Warn(err)
		httpresponse.WriteError(w, err)
		return
	}
	rec.Key = ""
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, rec)
}

func (h *RecordHandler) HandleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if err := h.recordUC.DeleteRecord(r.Context(), key); err != nil {
		h.log.Warn(err)
		httpresponse.WriteError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, "запись удалена")
}

// HandleGetSGF отдает текст SGF как файл
func (h *RecordHandler) HandleGetSGF(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	rec, err := h.recordUC.GetRecord(r.Context(), key)
	if err != nil {
		h.log.Warn(err)
		httpresponse.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", sgfContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+rec.PublicKey+`.sgf"`)
	_, _ = w.Write([]byte(rec.SGF))
}

// HandleGetPDF
// @Summary диаграмма партии в PDF
// @Produce application/pdf
// @Param view query int false "сколько ходов показать, по умолчанию все"
// @Router /records/{key}/pdf [get]
func (h *RecordHandler) HandleGetPDF(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	doc, err := h.recordUC.OpenDocument(r.Context(), key)
	if err != nil {
		h.log.Warn(err)
		httpresponse.WriteError(w, err)
		return
	}

	view := doc.Sequence.Len()
	if v := r.URL.Query().Get("view"); v != "" {
		view, err = strconv.Atoi(v)
		if err != nil {
			httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, "view must be a number")
			return
		}
	}

	var buf bytes.Buffer
	if err := export.Diagram(&buf, doc, view); err != nil {
		h.log.Warn(err)
		httpresponse.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	_, _ = w.Write(buf.Bytes())
}

// HandleImport складывает все .sgf из каталога на сервере в базу
func (h *RecordHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, "path is required")
		return
	}

	resp, err := h.recordUC.ImportDirectory(r.Context(), path)
	if err != nil {
		h.log.Error(err)
		httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, err.Error())
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, resp)
}

// HandleUpload принимает SGF в теле запроса
func (h *RecordHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	body, err := utils.ReadRequestBody(r)
	if errors.Is(err, utils.ErrBodyTooLarge) {
		httpresponse.WriteErrorWithStatus(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	if err != nil {
		httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	resp, err := h.recordUC.ImportSGF(r.Context(), r.URL.Query().Get("name"), string(body))
	if err != nil {
		h.log.Warn(err)
		httpresponse.WriteError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusCreated, resp)
}
