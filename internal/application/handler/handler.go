package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"schemeportal/internal/application/models"
	schememodels "schemeportal/internal/scheme/models"
	"schemeportal/internal/workflow"
	id "schemeportal/pkg/domain"
	dErrors "schemeportal/pkg/domain-errors"
	"schemeportal/pkg/platform/httputil"
	"schemeportal/pkg/requestcontext"
)

// Service defines the application operations the HTTP layer needs.
type Service interface {
	Submit(ctx context.Context, citizenID id.UserID, sub models.Submission) (*models.Application, error)
	Review(ctx context.Context, actor id.Actor, applicationID id.ApplicationID, expectedStatus, targetStatus string, notes *string) (*models.Application, error)
	Get(ctx context.Context, actor id.Actor, applicationID id.ApplicationID) (*models.Application, error)
	Options(ctx context.Context, actor id.Actor, applicationID id.ApplicationID) (*models.Options, error)
	ListMine(ctx context.Context, citizenID id.UserID) ([]*models.Application, error)
	HasApplied(ctx context.Context, citizenID id.UserID, schemeID id.SchemeID) (bool, error)
	List(ctx context.Context, actor id.Actor, filter models.Filter) ([]*models.Application, error)
	Stats(ctx context.Context, actor id.Actor) (schememodels.ApplicationCounts, error)
	History(ctx context.Context, actor id.Actor, applicationID id.ApplicationID) ([]models.Transition, error)
}

type Handler struct {
	applications Service
	logger       *slog.Logger
}

// New builds the citizen and staff application routes.
func New(applications Service, logger *slog.Logger) *Handler {
	return &Handler{applications: applications, logger: logger}
}

// RegisterCitizen mounts routes for any authenticated caller.
func (h *Handler) RegisterCitizen(r chi.Router) {
	r.Post("/applications", h.handleSubmit)
	r.Get("/applications/mine", h.handleListMine)
	r.Get("/applications/applied/{schemeID}", h.handleHasApplied)
	r.Get("/applications/{id}", h.handleGet)
}

// RegisterStaff mounts the review queue. The caller wraps r with staff-only
// middleware.
func (h *Handler) RegisterStaff(r chi.Router) {
	r.Get("/staff/applications", h.handleList)
	r.Get("/staff/applications/stats", h.handleStats)
	r.Get("/staff/applications/{id}", h.handleGet)
	r.Get("/staff/applications/{id}/transitions", h.handleOptions)
	r.Get("/staff/applications/{id}/history", h.handleHistory)
	r.Patch("/staff/applications/{id}/review", h.handleReview)
}

type listResponse struct {
	Applications []*models.Application `json:"applications"`
	Count        int                   `json:"count"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actor, err := httputil.RequireActor(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[models.SubmitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	sub, err := req.ToSubmission()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	app, err := h.applications.Submit(ctx, actor.UserID, sub)
	if err != nil {
		h.logger.WarnContext(ctx, "application submission refused",
			"request_id", requestID,
			"scheme_id", sub.SchemeID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, app)
}

func (h *Handler) handleListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, err := httputil.RequireActor(ctx, h.logger, requestcontext.RequestID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	apps, err := h.applications.ListMine(ctx, actor.UserID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{Applications: apps, Count: len(apps)})
}

func (h *Handler) handleHasApplied(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, err := httputil.RequireActor(ctx, h.logger, requestcontext.RequestID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	schemeID, err := id.ParseSchemeID(chi.URLParam(r, "schemeID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid scheme id"))
		return
	}
	applied, err := h.applications.HasApplied(ctx, actor.UserID, schemeID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"applied": applied})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, appID, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	app, err := h.applications.Get(ctx, actor, appID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, app)
}

func (h *Handler) handleOptions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, appID, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	opts, err := h.applications.Options(ctx, actor, appID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, opts)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, appID, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	rows, err := h.applications.History(ctx, actor, appID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"transitions": rows})
}

func (h *Handler) handleReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actor, appID, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[models.ReviewRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	app, err := h.applications.Review(ctx, actor, appID, req.ExpectedStatus, req.Status, req.ReviewNotes)
	if err != nil {
		h.logger.WarnContext(ctx, "review refused",
			"request_id", requestID,
			"application_id", appID.String(),
			"actor_role", actor.Role.String(),
			"expected_status", req.ExpectedStatus,
			"target_status", req.Status,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, app)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, err := httputil.RequireActor(ctx, h.logger, requestcontext.RequestID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	filter, err := parseFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	apps, err := h.applications.List(ctx, actor, filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{Applications: apps, Count: len(apps)})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, err := httputil.RequireActor(ctx, h.logger, requestcontext.RequestID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	counts, err := h.applications.Stats(ctx, actor)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, counts)
}

func (h *Handler) actorAndID(w http.ResponseWriter, r *http.Request) (id.Actor, id.ApplicationID, bool) {
	ctx := r.Context()
	actor, err := httputil.RequireActor(ctx, h.logger, requestcontext.RequestID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return id.Actor{}, id.ApplicationID{}, false
	}
	appID, err := id.ParseApplicationID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid application id"))
		return id.Actor{}, id.ApplicationID{}, false
	}
	return actor, appID, true
}

// parseFilter reads scheme_id, status, from, to (RFC 3339) and limit.
func parseFilter(r *http.Request) (models.Filter, error) {
	q := r.URL.Query()
	var f models.Filter

	if v := q.Get("scheme_id"); v != "" {
		schemeID, err := id.ParseSchemeID(v)
		if err != nil {
			return f, dErrors.New(dErrors.CodeBadRequest, "invalid scheme_id")
		}
		f.SchemeID = &schemeID
	}
	if v := q.Get("status"); v != "" {
		status, err := workflow.ParseStatus(v)
		if err != nil {
			return f, err
		}
		f.Status = status
	}
	for key, dst := range map[string]**time.Time{"from": &f.From, "to": &f.To} {
		v := q.Get(key)
		if v == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, dErrors.New(dErrors.CodeBadRequest, key+" must be an RFC 3339 timestamp")
		}
		*dst = &t
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return f, dErrors.New(dErrors.CodeBadRequest, "limit must be a positive integer")
		}
		f.Limit = n
	}
	return f, nil
}
