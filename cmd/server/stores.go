package main

import (
	"log/slog"

	"golang.org/x/text/language"

	appmetrics "schemeportal/internal/application/metrics"
	appservice "schemeportal/internal/application/service"
	appstore "schemeportal/internal/application/store"
	"schemeportal/internal/eligibility"
	insightservice "schemeportal/internal/insight/service"
	insightstore "schemeportal/internal/insight/store"
	"schemeportal/internal/platform/config"
	"schemeportal/internal/platform/database"
	"schemeportal/internal/platform/redis"
	"schemeportal/internal/scheme/cache"
	schememetrics "schemeportal/internal/scheme/metrics"
	schemeservice "schemeportal/internal/scheme/service"
	schemestore "schemeportal/internal/scheme/store"
	staffservice "schemeportal/internal/staff/service"
	staffstore "schemeportal/internal/staff/store"
	"schemeportal/pkg/platform/audit"
	outboxpg "schemeportal/pkg/platform/audit/outbox/store/postgres"
	auditmemory "schemeportal/pkg/platform/audit/store/memory"
	auditpostgres "schemeportal/pkg/platform/audit/store/postgres"
)

type stores struct {
	schemes      schemestore.Store
	applications appstore.Store
	staff        staffstore.Store
	insights     insightstore.Store
}

// newStores returns postgres-backed stores when a pool is configured and
// in-memory stores otherwise.
func newStores(pool *database.Pool) stores {
	if pool == nil {
		return stores{
			schemes:      schemestore.NewInMemoryStore(),
			applications: appstore.NewInMemoryStore(),
			staff:        staffstore.NewInMemoryStore(),
			insights:     insightstore.NewInMemoryStore(),
		}
	}
	db := pool.DB()
	return stores{
		schemes:      schemestore.NewPostgres(db),
		applications: appstore.NewPostgres(db),
		staff:        staffstore.NewPostgres(db),
		insights:     insightstore.NewPostgres(db),
	}
}

func newAuditStore(pool *database.Pool, outbox *outboxpg.Store) audit.Store {
	if pool == nil {
		return auditmemory.NewInMemoryStore()
	}
	var opts []auditpostgres.Option
	if outbox != nil {
		opts = append(opts, auditpostgres.WithOutbox(outbox))
	}
	return auditpostgres.New(pool.DB(), opts...)
}

type services struct {
	schemes      *schemeservice.Service
	applications *appservice.Service
	staff        *staffservice.Service
	insights     *insightservice.Service
	formatter    *eligibility.Formatter
}

func newServices(st stores, auditor *audit.Logger, redisClient *redis.Client, cfg config.Server, log *slog.Logger) services {
	locale, err := language.Parse(cfg.Locale)
	if err != nil {
		log.Warn("unknown locale, using default", "locale", cfg.Locale, "error", err)
		locale = eligibility.DefaultLocale
	}
	formatter := eligibility.NewFormatter(locale)

	schemeMetrics := schememetrics.New()
	schemeOpts := []schemeservice.Option{
		schemeservice.WithApplicationStats(st.applications),
		schemeservice.WithMetrics(schemeMetrics),
		schemeservice.WithLogger(log),
	}
	if redisClient != nil {
		schemeOpts = append(schemeOpts, schemeservice.WithCache(
			cache.NewRedisCache(redisClient.Client, cfg.Schemes.CacheTTL,
				cache.WithMetrics(schemeMetrics),
				cache.WithLogger(log),
			),
		))
	}
	schemes := schemeservice.New(st.schemes, auditor, schemeOpts...)

	applications := appservice.New(st.applications, schemes, auditor,
		appservice.WithMetrics(appmetrics.New()),
		appservice.WithFormatter(formatter),
		appservice.WithLogger(log),
	)

	return services{
		schemes:      schemes,
		applications: applications,
		staff:        staffservice.New(st.staff, auditor, staffservice.WithLogger(log)),
		insights:     insightservice.New(st.insights, auditor, insightservice.WithLogger(log)),
		formatter:    formatter,
	}
}
