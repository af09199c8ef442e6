package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "vaxtrack/pkg/domain-errors"
)

type noteRequest struct {
	Notes string `json:"notes"`
}

func (r *noteRequest) Normalize() { r.Notes = strings.TrimSpace(r.Notes) }

func (r *noteRequest) Validate() error {
	if r.Notes == "" {
		return errors.New("notes is required")
	}
	return nil
}

type idRequest struct {
	ID string `json:"id"`
}

func (r *idRequest) Validate() error {
	if r.ID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "id is required")
	}
	return nil
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	return resp
}

func TestDecodeAndPrepare(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("decodes and prepares", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"notes":"  left arm "}`))
		w := httptest.NewRecorder()

		result, ok := DecodeAndPrepare[noteRequest](w, req, logger, ctx, "req-1")

		require.True(t, ok)
		assert.Equal(t, "left arm", result.Notes)
	})

	t.Run("empty body decodes as empty object", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", http.NoBody)
		w := httptest.NewRecorder()

		result, ok := DecodeAndPrepare[idRequest](w, req, logger, ctx, "req-1")

		assert.False(t, ok)
		assert.Nil(t, result)
		assert.Equal(t, "id is required", decodeError(t, w).ErrorDescription)
	})

	t.Run("trailing data is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"notes":"a"}{"notes":"b"}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[noteRequest](w, req, logger, ctx, "req-1")

		assert.False(t, ok)
		assert.Equal(t, "request body must contain a single JSON object", decodeError(t, w).ErrorDescription)
	})

	t.Run("wrong field type names the field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"notes":5}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[noteRequest](w, req, logger, ctx, "req-1")

		assert.False(t, ok)
		assert.Equal(t, "field notes must be string", decodeError(t, w).ErrorDescription)
	})

	t.Run("oversized body reports the limit", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"notes":"`+strings.Repeat("x", 64)+`"}`))
		req.Body = http.MaxBytesReader(rec, req.Body, 16)

		_, ok := DecodeAndPrepare[noteRequest](rec, req, logger, ctx, "req-1")

		assert.False(t, ok)
		assert.Equal(t, "request body exceeds 16 bytes", decodeError(t, rec).ErrorDescription)
	})

	t.Run("malformed JSON is a bad request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{nope`))
		w := httptest.NewRecorder()

		result, ok := DecodeAndPrepare[noteRequest](w, req, logger, ctx, "req-1")

		assert.False(t, ok)
		assert.Nil(t, result)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "bad_request", decodeError(t, w).Error)
	})

	t.Run("plain validation error maps to validation_error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"notes":""}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[noteRequest](w, req, logger, ctx, "req-1")

		assert.False(t, ok)
		resp := decodeError(t, w)
		assert.Equal(t, "validation_error", resp.Error)
		assert.Equal(t, "notes is required", resp.ErrorDescription)
	})

	t.Run("domain error code is preserved", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"id":""}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[idRequest](w, req, logger, ctx, "req-1")

		assert.False(t, ok)
		assert.Equal(t, "bad_request", decodeError(t, w).Error)
	})
}

func TestWriteError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{dErrors.New(dErrors.CodeNotFound, "subject not found"), http.StatusNotFound, "not_found"},
		{dErrors.New(dErrors.CodeValidation, "date of birth is required"), http.StatusBadRequest, "validation_error"},
		{dErrors.New(dErrors.CodeInvalidState, "dose already completed"), http.StatusConflict, "invalid_state"},
		{dErrors.New(dErrors.CodeUnauthorized, "missing token"), http.StatusUnauthorized, "unauthorized"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		WriteError(w, tc.err)
		assert.Equal(t, tc.status, w.Code, tc.code)
		assert.Equal(t, tc.code, decodeError(t, w).Error)
	}
}
