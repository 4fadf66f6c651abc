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

	dErrors "schemeportal/pkg/domain-errors"
)

type noteRequest struct {
	Notes     string `json:"notes"`
	sanitized bool
}

func (r *noteRequest) Sanitize() { r.sanitized = true }

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

func decodeErr(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestDecodeAndPrepare(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("runs hooks and returns the prepared request", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"notes":"  looks valid "}`))
		w := httptest.NewRecorder()

		req, ok := DecodeAndPrepare[noteRequest](w, r, logger, ctx, "req-1")

		require.True(t, ok)
		assert.True(t, req.sanitized)
		assert.Equal(t, "looks valid", req.Notes)
	})

	t.Run("malformed json is a bad request", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{nope`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[noteRequest](w, r, logger, ctx, "req-1")

		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "bad_request", decodeErr(t, w).Error)
	})

	t.Run("empty body is rejected", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", http.NoBody)
		w := httptest.NewRecorder()

		_, ok := DecodeJSON[noteRequest](w, r, logger, ctx, "req-1")

		assert.False(t, ok)
		resp := decodeErr(t, w)
		assert.Equal(t, "bad_request", resp.Error)
		assert.Equal(t, "request body is required", resp.ErrorDescription)
	})

	t.Run("trailing data after the object is rejected", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"notes":"a"}{"notes":"b"}`))
		w := httptest.NewRecorder()

		_, ok := DecodeJSON[noteRequest](w, r, logger, ctx, "req-1")

		assert.False(t, ok)
		assert.Equal(t, "invalid request body", decodeErr(t, w).ErrorDescription)
	})

	t.Run("unknown fields are ignored", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"notes":"ok","client":"web"}`))
		w := httptest.NewRecorder()

		req, ok := DecodeJSON[noteRequest](w, r, logger, ctx, "req-1")

		require.True(t, ok)
		assert.Equal(t, "ok", req.Notes)
	})

	t.Run("plain validation error becomes validation_error", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"notes":"   "}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[noteRequest](w, r, logger, ctx, "req-1")

		assert.False(t, ok)
		resp := decodeErr(t, w)
		assert.Equal(t, "validation_error", resp.Error)
		assert.Equal(t, "notes is required", resp.ErrorDescription)
	})

	t.Run("domain error from Validate keeps its code", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"id":""}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[idRequest](w, r, logger, ctx, "req-1")

		assert.False(t, ok)
		assert.Equal(t, "bad_request", decodeErr(t, w).Error)
	})

	t.Run("oversized body is 413", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"notes":"`+strings.Repeat("x", 64)+`"}`))
		w := httptest.NewRecorder()
		r.Body = http.MaxBytesReader(w, r.Body, 16)

		_, ok := DecodeJSON[noteRequest](w, r, logger, ctx, "req-1")

		assert.False(t, ok)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

func TestWriteError(t *testing.T) {
	cases := []struct {
		code   dErrors.Code
		status int
		body   string
	}{
		{dErrors.CodeForbidden, http.StatusForbidden, "forbidden"},
		{dErrors.CodeInvalidTransition, http.StatusConflict, "invalid_transition"},
		{dErrors.CodeConcurrencyConflict, http.StatusConflict, "concurrency_conflict"},
		{dErrors.CodeNotFound, http.StatusNotFound, "not_found"},
		{dErrors.CodeValidation, http.StatusBadRequest, "validation_error"},
		{dErrors.CodePolicyViolation, http.StatusUnprocessableEntity, "policy_violation"},
	}
	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, dErrors.New(tc.code, "Analysts cannot grant final approval; forward to admin instead"))

			assert.Equal(t, tc.status, w.Code)
			resp := decodeErr(t, w)
			assert.Equal(t, tc.body, resp.Error)
			assert.Equal(t, "Analysts cannot grant final approval; forward to admin instead", resp.ErrorDescription)
		})
	}

	t.Run("non-domain errors hide details", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("pq: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		resp := decodeErr(t, w)
		assert.Equal(t, "internal_error", resp.Error)
		assert.Empty(t, resp.ErrorDescription)
	})
}
