package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"schemeportal/internal/scheme/models"
	id "schemeportal/pkg/domain"
	dErrors "schemeportal/pkg/domain-errors"
	"schemeportal/pkg/platform/httputil"
	"schemeportal/pkg/requestcontext"
)

// Service defines the scheme catalog operations the HTTP layer needs.
type Service interface {
	Create(ctx context.Context, actor id.Actor, req *models.CreateRequest) (*models.Scheme, error)
	Update(ctx context.Context, actor id.Actor, schemeID id.SchemeID, patch models.Update) (*models.Scheme, error)
	SetStatus(ctx context.Context, actor id.Actor, schemeID id.SchemeID, status models.Status) (*models.Scheme, error)
	Delete(ctx context.Context, actor id.Actor, schemeID id.SchemeID) error
	GetPublic(ctx context.Context, schemeID id.SchemeID) (*models.Scheme, error)
	ListActive(ctx context.Context) ([]*models.Scheme, error)
	ListAll(ctx context.Context, actor id.Actor) ([]models.WithStats, error)
}

type Handler struct {
	schemes Service
	logger  *slog.Logger
}

// New builds the public and admin scheme routes.
func New(schemes Service, logger *slog.Logger) *Handler {
	return &Handler{schemes: schemes, logger: logger}
}

// RegisterPublic mounts the citizen-facing catalog.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/schemes", h.handleListActive)
	r.Get("/schemes/{id}", h.handleGet)
}

// RegisterAdmin mounts catalog management. The caller wraps r with auth and
// role middleware; the service re-checks roles per operation.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/schemes", h.handleListAll)
	r.Post("/admin/schemes", h.handleCreate)
	r.Put("/admin/schemes/{id}", h.handleUpdate)
	r.Patch("/admin/schemes/{id}/status", h.handleSetStatus)
	r.Delete("/admin/schemes/{id}", h.handleDelete)
}

type listResponse struct {
	Schemes []*models.Scheme `json:"schemes"`
	Count   int              `json:"count"`
}

type adminListResponse struct {
	Schemes []models.WithStats `json:"schemes"`
	Count   int                `json:"count"`
}

func (h *Handler) handleListActive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	schemes, err := h.schemes.ListActive(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list active schemes",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if schemes == nil {
		schemes = []*models.Scheme{}
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{Schemes: schemes, Count: len(schemes)})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	schemeID, ok := h.schemeIDParam(w, r)
	if !ok {
		return
	}
	scheme, err := h.schemes.GetPublic(ctx, schemeID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, scheme)
}

func (h *Handler) handleListAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actor, err := httputil.RequireActor(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	rows, err := h.schemes.ListAll(ctx, actor)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list schemes",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, adminListResponse{Schemes: rows, Count: len(rows)})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actor, err := httputil.RequireActor(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[models.CreateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	scheme, err := h.schemes.Create(ctx, actor, req)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to create scheme",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, scheme)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actor, err := httputil.RequireActor(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	schemeID, ok := h.schemeIDParam(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[models.UpdateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	scheme, err := h.schemes.Update(ctx, actor, schemeID, req.ToUpdate())
	if err != nil {
		h.logger.WarnContext(ctx, "failed to update scheme",
			"request_id", requestID,
			"scheme_id", schemeID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, scheme)
}

func (h *Handler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actor, err := httputil.RequireActor(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	schemeID, ok := h.schemeIDParam(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[models.StatusRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	scheme, err := h.schemes.SetStatus(ctx, actor, schemeID, models.Status(req.Status))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, scheme)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actor, err := httputil.RequireActor(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	schemeID, ok := h.schemeIDParam(w, r)
	if !ok {
		return
	}

	if err := h.schemes.Delete(ctx, actor, schemeID); err != nil {
		h.logger.WarnContext(ctx, "failed to delete scheme",
			"request_id", requestID,
			"scheme_id", schemeID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) schemeIDParam(w http.ResponseWriter, r *http.Request) (id.SchemeID, bool) {
	schemeID, err := id.ParseSchemeID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid scheme id"))
		return id.SchemeID{}, false
	}
	return schemeID, true
}
