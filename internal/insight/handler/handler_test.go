package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemeportal/internal/insight/models"
	"schemeportal/internal/insight/service"
	"schemeportal/internal/insight/store"
	id "schemeportal/pkg/domain"
	"schemeportal/pkg/requestcontext"
)

type harness struct {
	router http.Handler
	actor  id.Actor
}

func newHarness() *harness {
	h := &harness{}
	handler := New(service.New(store.NewInMemoryStore(), nil), slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(requestcontext.WithActor(req.Context(), h.actor.UserID, h.actor.Role)))
		})
	})
	handler.RegisterStaff(r)
	h.router = r
	return h
}

func (h *harness) send(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func TestInsightApprovalFlow(t *testing.T) {
	h := newHarness()
	h.actor = id.Actor{UserID: id.UserID(uuid.New()), Role: id.RoleAnalyst}

	rec := h.send(http.MethodPost, "/staff/insights",
		`{"title":"Spike in rejections","body":"Rejections doubled in Bihar.","severity":"HIGH","confidence":70}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var in models.Insight
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &in))
	assert.Equal(t, models.SeverityHigh, in.Severity)

	decision := "/staff/insights/" + in.ID.String() + "/decision"
	rec = h.send(http.MethodPost, decision, `{"decision":"approved"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.send(http.MethodGet, "/staff/insights/approved", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"insights":[],"count":0}`, rec.Body.String())

	h.actor = id.Actor{UserID: id.UserID(uuid.New()), Role: id.RoleAdmin}
	rec = h.send(http.MethodPost, decision, `{"decision":"rejected","notes":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.send(http.MethodPost, decision, `{"decision":"approved"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.send(http.MethodPost, decision, `{"decision":"rejected","notes":"reverse"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = h.send(http.MethodGet, "/staff/insights/approved", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var feed listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &feed))
	assert.Equal(t, 1, feed.Count)
}

func TestInsightValidation(t *testing.T) {
	h := newHarness()
	h.actor = id.Actor{UserID: id.UserID(uuid.New()), Role: id.RoleAnalyst}

	rec := h.send(http.MethodPost, "/staff/insights", `{"title":"t","body":"b","severity":"low","confidence":101}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.send(http.MethodPost, "/staff/insights", `{"title":" ","body":"b","severity":"low","confidence":5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.send(http.MethodPost, "/staff/insights/not-a-uuid/decision", `{"decision":"approved"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.send(http.MethodGet, "/staff/insights?status=archived", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
