package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"schemeportal/internal/staff/models"
	id "schemeportal/pkg/domain"
	dErrors "schemeportal/pkg/domain-errors"
	"schemeportal/pkg/platform/httputil"
	"schemeportal/pkg/requestcontext"
)

type Service interface {
	List(ctx context.Context, actor id.Actor) ([]*models.Member, error)
	Upsert(ctx context.Context, actor id.Actor, userID id.UserID, req *models.UpsertRequest) (*models.Member, error)
	UpdateRole(ctx context.Context, actor id.Actor, userID id.UserID, role id.Role) (*models.Member, error)
	SetActive(ctx context.Context, actor id.Actor, userID id.UserID, active bool) (*models.Member, error)
}

type Handler struct {
	staff  Service
	logger *slog.Logger
}

// New builds the staff directory admin routes.
func New(staff Service, logger *slog.Logger) *Handler {
	return &Handler{staff: staff, logger: logger}
}

// RegisterAdmin mounts the staff directory under /admin/users.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/users", h.handleList)
	r.Put("/admin/users/{id}", h.handleUpsert)
	r.Patch("/admin/users/{id}/role", h.handleUpdateRole)
	r.Patch("/admin/users/{id}/active", h.handleSetActive)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, err := httputil.RequireActor(ctx, h.logger, requestcontext.RequestID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	members, err := h.staff.List(ctx, actor)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"users": members, "count": len(members)})
}

func (h *Handler) handleUpsert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actor, userID, ok := h.actorAndUser(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.UpsertRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	member, err := h.staff.Upsert(ctx, actor, userID, req)
	if err != nil {
		h.logRefusal(ctx, "staff upsert refused", actor, userID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, member)
}

func (h *Handler) handleUpdateRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actor, userID, ok := h.actorAndUser(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.RoleRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	member, err := h.staff.UpdateRole(ctx, actor, userID, id.Role(req.Role))
	if err != nil {
		h.logRefusal(ctx, "role change refused", actor, userID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, member)
}

func (h *Handler) handleSetActive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actor, userID, ok := h.actorAndUser(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.ActiveRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	member, err := h.staff.SetActive(ctx, actor, userID, *req.IsActive)
	if err != nil {
		h.logRefusal(ctx, "activation change refused", actor, userID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, member)
}

func (h *Handler) actorAndUser(w http.ResponseWriter, r *http.Request) (id.Actor, id.UserID, bool) {
	ctx := r.Context()
	actor, err := httputil.RequireActor(ctx, h.logger, requestcontext.RequestID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return id.Actor{}, id.UserID{}, false
	}
	userID, err := id.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user id"))
		return id.Actor{}, id.UserID{}, false
	}
	return actor, userID, true
}

func (h *Handler) logRefusal(ctx context.Context, msg string, actor id.Actor, target id.UserID, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"actor_id", actor.UserID.String(),
		"user_id", target.String(),
		"error", err,
	)
}
