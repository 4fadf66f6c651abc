package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"schemeportal/internal/insight/models"
	id "schemeportal/pkg/domain"
	dErrors "schemeportal/pkg/domain-errors"
	"schemeportal/pkg/platform/httputil"
	"schemeportal/pkg/requestcontext"
)

type Service interface {
	Record(ctx context.Context, actor id.Actor, req *models.RecordRequest) (*models.Insight, error)
	Decide(ctx context.Context, actor id.Actor, insightID id.InsightID, decision string, notes *string) (*models.Insight, error)
	List(ctx context.Context, actor id.Actor, status string) ([]*models.Insight, error)
	ListApproved(ctx context.Context) ([]*models.Insight, error)
}

type Handler struct {
	insights Service
	logger   *slog.Logger
}

// New builds the staff insight routes.
func New(insights Service, logger *slog.Logger) *Handler {
	return &Handler{insights: insights, logger: logger}
}

// RegisterStaff mounts the insight routes. The dashboard feed at
// /staff/insights/approved only ever returns approved insights.
func (h *Handler) RegisterStaff(r chi.Router) {
	r.Post("/staff/insights", h.handleRecord)
	r.Get("/staff/insights", h.handleList)
	r.Get("/staff/insights/approved", h.handleApproved)
	r.Post("/staff/insights/{id}/decision", h.handleDecide)
}

type listResponse struct {
	Insights []*models.Insight `json:"insights"`
	Count    int               `json:"count"`
}

func (h *Handler) handleRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actor, err := httputil.RequireActor(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.RecordRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	in, err := h.insights.Record(ctx, actor, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, in)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, err := httputil.RequireActor(ctx, h.logger, requestcontext.RequestID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	insights, err := h.insights.List(ctx, actor, r.URL.Query().Get("status"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{Insights: insights, Count: len(insights)})
}

func (h *Handler) handleApproved(w http.ResponseWriter, r *http.Request) {
	insights, err := h.insights.ListApproved(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{Insights: insights, Count: len(insights)})
}

func (h *Handler) handleDecide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actor, err := httputil.RequireActor(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	insightID, err := id.ParseInsightID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid insight id"))
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.DecisionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	in, err := h.insights.Decide(ctx, actor, insightID, req.Decision, req.Notes)
	if err != nil {
		h.logger.WarnContext(ctx, "insight decision refused",
			"request_id", requestID,
			"insight_id", insightID.String(),
			"decision", req.Decision,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, in)
}
