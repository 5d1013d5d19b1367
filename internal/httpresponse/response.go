package httpresponse

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	errs "kifu_editor/internal/errors"
)

type Response[T any] struct {
	Status int `json:"Status"`
	Body   T   `json:"Body,omitempty"`
}

type ErrorResponse struct {
	ErrorDescription string `json:"ErrorDescription"`
}

const INTERNALERRORJSON = "{\"Status\": 500,\"Body\":{\"ErrorDescription\": \"Internal server error\"}}"

const MALFORMEDJSON_errorDesc = "json unmarshalling error"

// WriteResponseWithStatus пишет конверт {Status, Body} и тот же код в заголовок ответа
func WriteResponseWithStatus(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	jsonByte, err := marshalStatusJson(status, body)
	if err != nil {
		WriteInternalErrorResponse(w)
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write(jsonByte)
}

func WriteErrorWithStatus(w http.ResponseWriter, status int, description string) {
	WriteResponseWithStatus(w, status, ErrorResponse{ErrorDescription: description})
}

// WriteError picks the status from the error kind.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusFromError(err)
	if status == http.StatusInternalServerError {
		WriteInternalErrorResponse(w)
		return
	}
	WriteErrorWithStatus(w, status, err.Error())
}

func StatusFromError(err error) int {
	switch {
	case errors.Is(err, errs.ErrRecordNotFound), errors.Is(err, errs.ErrSessionNotFound), errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrMalformedSGF), errors.Is(err, errs.ErrVariationsUnsupported):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrOutOfRange), errors.Is(err, errs.ErrInvalidState), errors.Is(err, errs.ErrOccupiedCell):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func marshalStatusJson(status int, body any) ([]byte, error) {
	response := Response[any]{
		Status: status,
		Body:   body,
	}
	marshal, err := json.Marshal(response)
	if err != nil {
		return nil, err
	}
	return marshal, nil
}

func WriteInternalErrorResponse(w http.ResponseWriter) {
	// implementation similar to http.Error, only difference is the Content-type
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = fmt.Fprintln(w, INTERNALERRORJSON)
}
