package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"schemeportal/internal/eligibility"
	"schemeportal/internal/eligibility/metrics"
	"schemeportal/internal/eligibility/models"
	schememodels "schemeportal/internal/scheme/models"
	"schemeportal/pkg/platform/httputil"
	"schemeportal/pkg/requestcontext"
)

// SchemeSource lists the schemes a citizen can currently apply to.
type SchemeSource interface {
	ListActive(ctx context.Context) ([]*schememodels.Scheme, error)
}

type Handler struct {
	schemes   SchemeSource
	formatter *eligibility.Formatter
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tracer    trace.Tracer
}

// New builds the public eligibility handler. schemes supplies the active catalog.
func New(schemes SchemeSource, formatter *eligibility.Formatter, m *metrics.Metrics, logger *slog.Logger) *Handler {
	if formatter == nil {
		formatter = eligibility.NewFormatter(eligibility.DefaultLocale)
	}
	return &Handler{
		schemes:   schemes,
		formatter: formatter,
		metrics:   m,
		logger:    logger,
		tracer:    otel.Tracer("schemeportal/eligibility"),
	}
}

// Register mounts POST /eligibility/check.
func (h *Handler) Register(r chi.Router) {
	r.Post("/eligibility/check", h.handleCheck)
}

type checkResponse struct {
	Results       []models.Result `json:"results"`
	EligibleCount int             `json:"eligible_count"`
	Evaluated     int             `json:"evaluated"`
}

func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.CheckRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	ctx, span := h.tracer.Start(ctx, "eligibility.check")
	defer span.End()

	schemes, err := h.schemes.ListActive(ctx)
	if err != nil {
		span.RecordError(err)
		h.logger.ErrorContext(ctx, "failed to load schemes for eligibility check",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	schemes = restrictTo(schemes, req.SchemeIDs)

	results := h.formatter.Render(eligibility.Evaluate(req.Profile.ToProfile(), schememodels.Refs(schemes)))

	eligible := 0
	for _, res := range results {
		if res.Eligible() {
			eligible++
		}
		if h.metrics != nil {
			h.metrics.ObserveResult(string(res.Status))
		}
	}
	if h.metrics != nil {
		h.metrics.ObserveCheck(len(results), time.Since(start).Seconds())
	}
	span.SetAttributes(
		attribute.Int("eligibility.schemes", len(results)),
		attribute.Int("eligibility.eligible", eligible),
	)

	httputil.WriteJSON(w, http.StatusOK, checkResponse{
		Results:       results,
		EligibleCount: eligible,
		Evaluated:     len(results),
	})
}

// restrictTo keeps the listing order and drops schemes not named in ids.
// Unknown or inactive ids are ignored.
func restrictTo(schemes []*schememodels.Scheme, ids []string) []*schememodels.Scheme {
	if len(ids) == 0 {
		return schemes
	}
	wanted := make(map[string]struct{}, len(ids))
	for _, s := range ids {
		wanted[s] = struct{}{}
	}
	out := make([]*schememodels.Scheme, 0, len(ids))
	for _, s := range schemes {
		if _, ok := wanted[s.ID.String()]; ok {
			out = append(out, s)
		}
	}
	return out
}
