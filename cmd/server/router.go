package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apphandler "schemeportal/internal/application/handler"
	eligibilityhandler "schemeportal/internal/eligibility/handler"
	eligibilitymetrics "schemeportal/internal/eligibility/metrics"
	insighthandler "schemeportal/internal/insight/handler"
	"schemeportal/internal/platform/config"
	"schemeportal/internal/platform/health"
	schemehandler "schemeportal/internal/scheme/handler"
	staffhandler "schemeportal/internal/staff/handler"
	"schemeportal/pkg/platform/middleware/auth"
	"schemeportal/pkg/platform/middleware/metadata"
	"schemeportal/pkg/platform/middleware/request"
	"schemeportal/pkg/platform/validation"
)

// newRouter mounts every route group. Roles are resolved from the staff
// directory on each authenticated request; services re-check them per
// operation.
func newRouter(cfg config.Server, svcs services, validator auth.JWTValidator, healthHandler *health.Handler, log *slog.Logger) http.Handler {
	proxies, err := metadata.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		log.Warn("ignoring invalid trusted proxies", "error", err)
		proxies = nil
	}

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Clock)
	r.Use(metadata.NewMiddleware(metadata.Config{TrustedProxies: proxies}).Handler)
	r.Use(request.Recovery(log))
	r.Use(request.Logger(log))
	r.Use(request.LatencyMiddleware(request.NewMetrics()))

	healthHandler.Register(r)
	if cfg.MetricsTokenHash != "" {
		r.With(auth.RequireScrapeToken(cfg.MetricsTokenHash, log)).Handle("/metrics", promhttp.Handler())
	} else {
		r.Handle("/metrics", promhttp.Handler())
	}

	schemes := schemehandler.New(svcs.schemes, log)
	applications := apphandler.New(svcs.applications, log)
	eligibility := eligibilityhandler.New(svcs.schemes, svcs.formatter, eligibilitymetrics.New(), log)
	insights := insighthandler.New(svcs.insights, log)
	staff := staffhandler.New(svcs.staff, log)

	r.Group(func(r chi.Router) {
		r.Use(request.Timeout(cfg.RequestTimeout))
		r.Use(request.BodyLimit(validation.MaxBodySize))
		r.Use(request.ContentTypeJSON)

		schemes.RegisterPublic(r)
		eligibility.Register(r)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(validator, svcs.staff, log))
			applications.RegisterCitizen(r)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireStaff(log))
				applications.RegisterStaff(r)
				insights.RegisterStaff(r)
				schemes.RegisterAdmin(r)
			})

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAdmin(log))
				staff.RegisterAdmin(r)
			})
		})
	})

	return r
}
