package handler

import (
	"bytes"
	"context"
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
	"github.com/stretchr/testify/suite"

	"schemeportal/internal/application/models"
	"schemeportal/internal/application/service"
	"schemeportal/internal/application/store"
	eligibility "schemeportal/internal/eligibility/models"
	schememodels "schemeportal/internal/scheme/models"
	"schemeportal/internal/workflow"
	id "schemeportal/pkg/domain"
	dErrors "schemeportal/pkg/domain-errors"
	"schemeportal/pkg/platform/httputil"
	"schemeportal/pkg/requestcontext"
)

type schemeMap map[id.SchemeID]*schememodels.Scheme

func (m schemeMap) Get(_ context.Context, schemeID id.SchemeID) (*schememodels.Scheme, error) {
	if s, ok := m[schemeID]; ok {
		return s, nil
	}
	return nil, dErrors.New(dErrors.CodeNotFound, "scheme not found")
}

type HandlerSuite struct {
	suite.Suite
	router  http.Handler
	scheme  *schememodels.Scheme
	citizen id.UserID
	actor   id.Actor
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	maxIncome := 250000.0
	s.scheme = &schememodels.Scheme{
		ID:       id.SchemeID(uuid.New()),
		Name:     "Kisan Samman",
		Status:   schememodels.StatusActive,
		Criteria: eligibility.Criteria{MaxIncome: &maxIncome},
	}
	s.citizen = id.UserID(uuid.New())

	svc := service.New(store.NewInMemoryStore(), schemeMap{s.scheme.ID: s.scheme}, nil)
	h := New(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := requestcontext.WithActor(req.Context(), s.actor.UserID, s.actor.Role)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	h.RegisterCitizen(r)
	h.RegisterStaff(r)
	s.router = r
	s.actAs(s.citizen, id.RolePublicUser)
}

func (s *HandlerSuite) actAs(userID id.UserID, role id.Role) {
	s.actor = id.Actor{UserID: userID, Role: role}
}

func (s *HandlerSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) submit(income float64) *httptest.ResponseRecorder {
	return s.do(http.MethodPost, "/applications", map[string]any{
		"scheme_id": s.scheme.ID.String(),
		"profile": map[string]any{
			"age":           35,
			"residence":     "rural",
			"annual_income": income,
			"occupation":    "farmer",
		},
	})
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func (s *HandlerSuite) TestSubmitAndReview() {
	rec := s.submit(100000)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var app models.Application
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &app))
	s.Equal(workflow.StatusPending, app.Status)

	rec = s.submit(100000)
	s.Equal(http.StatusConflict, rec.Code)
	s.Equal("conflict", errorCode(s.T(), rec))

	rec = s.do(http.MethodGet, "/applications/mine", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var mine listResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &mine))
	s.Equal(1, mine.Count)

	rec = s.do(http.MethodGet, "/applications/applied/"+s.scheme.ID.String(), nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"applied":true}`, rec.Body.String())

	path := "/staff/applications/" + app.ID.String()
	s.actAs(id.UserID(uuid.New()), id.RoleAnalyst)

	rec = s.do(http.MethodGet, path+"/transitions", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var opts models.Options
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &opts))
	s.Len(opts.Targets, 3)

	rec = s.do(http.MethodPatch, path+"/review", map[string]any{"expected_status": "pending", "status": "approved", "review_notes": "ok"})
	s.Equal(http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPatch, path+"/review", map[string]any{"expected_status": "pending", "status": "under_review"})
	s.Equal(http.StatusBadRequest, rec.Code, "notes required when leaving pending")

	rec = s.do(http.MethodPatch, path+"/review", map[string]any{"expected_status": "pending", "status": "under_review", "review_notes": "checking"})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPatch, path+"/review", map[string]any{"expected_status": "pending", "status": "rejected", "review_notes": "late"})
	s.Equal(http.StatusConflict, rec.Code)
	s.Equal("concurrency_conflict", errorCode(s.T(), rec))

	rec = s.do(http.MethodPatch, path+"/review", map[string]any{"expected_status": "under_review", "status": "rejected", "review_notes": "income proof missing"})
	s.Require().Equal(http.StatusOK, rec.Code)

	s.actAs(id.UserID(uuid.New()), id.RoleAdmin)
	rec = s.do(http.MethodPatch, path+"/review", map[string]any{"expected_status": "rejected", "status": "approved", "review_notes": "appeal"})
	s.Equal(http.StatusConflict, rec.Code)
	s.Equal("invalid_transition", errorCode(s.T(), rec))

	rec = s.do(http.MethodGet, path+"/history", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var history struct {
		Transitions []models.Transition `json:"transitions"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &history))
	s.Len(history.Transitions, 2)
}

func (s *HandlerSuite) TestIneligibleSubmissionIsUnprocessable() {
	rec := s.submit(900000)
	s.Equal(http.StatusUnprocessableEntity, rec.Code)
	s.Equal("policy_violation", errorCode(s.T(), rec))
}

func (s *HandlerSuite) TestReviewRequiresExpectedStatus() {
	s.actAs(id.UserID(uuid.New()), id.RoleAdmin)
	rec := s.do(http.MethodPatch, "/staff/applications/"+uuid.NewString()+"/review", map[string]any{"status": "approved"})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("validation_error", errorCode(s.T(), rec))
}

func (s *HandlerSuite) TestCitizenCannotReadOthers() {
	s.Require().Equal(http.StatusCreated, s.submit(1000).Code)
	var mine listResponse
	rec := s.do(http.MethodGet, "/applications/mine", nil)
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &mine))
	s.Require().Len(mine.Applications, 1)

	s.actAs(id.UserID(uuid.New()), id.RolePublicUser)
	rec = s.do(http.MethodGet, "/applications/"+mine.Applications[0].ID.String(), nil)
	s.Equal(http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/staff/applications", nil)
	s.Equal(http.StatusForbidden, rec.Code)
}

func TestParseFilter(t *testing.T) {
	schemeID := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet,
		"/staff/applications?scheme_id="+schemeID+"&status=approved&from=2025-01-01T00:00:00Z&limit=5", nil)

	f, err := parseFilter(req)
	require.NoError(t, err)
	require.NotNil(t, f.SchemeID)
	assert.Equal(t, schemeID, f.SchemeID.String())
	assert.Equal(t, workflow.StatusApproved, f.Status)
	require.NotNil(t, f.From)
	assert.Nil(t, f.To)
	assert.Equal(t, 5, f.Limit)

	_, err = parseFilter(httptest.NewRequest(http.MethodGet, "/staff/applications?limit=0", nil))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}
