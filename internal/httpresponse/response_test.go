package httpresponse

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	errs "kifu_editor/internal/errors"
)

func TestWriteResponseWithStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteResponseWithStatus(rec, http.StatusCreated, map[string]string{"key": "abc"})

	if rec.Code != http.StatusCreated || rec.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("code %d type %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	var resp Response[map[string]string]
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != http.StatusCreated || resp.Body["key"] != "abc" {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("record x: %w", errs.ErrRecordNotFound), http.StatusNotFound},
		{errs.ErrSessionNotFound, http.StatusNotFound},
		{fmt.Errorf("offset 3: %w", errs.ErrMalformedSGF), http.StatusUnprocessableEntity},
		{errs.ErrVariationsUnsupported, http.StatusUnprocessableEntity},
		{errs.ErrOutOfRange, http.StatusBadRequest},
		{errors.New("mongo timeout"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		WriteError(rec, tt.err)
		if rec.Code != tt.code {
			t.Errorf("%v: code %d, want %d", tt.err, rec.Code, tt.code)
		}
		var resp Response[ErrorResponse]
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%v: body %q: %v", tt.err, rec.Body.String(), err)
		}
		if resp.Status != tt.code || resp.Body.ErrorDescription == "" {
			t.Errorf("%v: resp = %+v", tt.err, resp)
		}
	}
}
