package service

//go:generate mockgen -source=service.go -destination=mocks/service_mock.go -package=mocks
//go:generate mockgen -source=../store/store.go -destination=mocks/store_mock.go -package=mocks

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"schemeportal/internal/eligibility"
	"schemeportal/internal/scheme/metrics"
	"schemeportal/internal/scheme/models"
	"schemeportal/internal/scheme/store"
	id "schemeportal/pkg/domain"
	dErrors "schemeportal/pkg/domain-errors"
	"schemeportal/pkg/platform/audit"
	"schemeportal/pkg/platform/sentinel"
	"schemeportal/pkg/requestcontext"
)

// Cache holds the public active-scheme listing. Implementations never fail
// the caller; a miss sends the service to the store.
//
// GetActive reports the cache generation it looked at, hit or miss. A listing
// read from the store after a miss is written back under that generation, so
// an Invalidate that lands between the store read and SetActive orphans the
// write instead of being overwritten by it.
type Cache interface {
	GetActive(ctx context.Context) (schemes []*models.Scheme, generation int64, ok bool)
	SetActive(ctx context.Context, generation int64, schemes []*models.Scheme)
	Invalidate(ctx context.Context)
}

// ApplicationStats reports how many applications reference each scheme.
type ApplicationStats interface {
	CountsByScheme(ctx context.Context) (map[id.SchemeID]models.ApplicationCounts, error)
}

type Option func(*Service)

// Service manages the scheme catalog.
type Service struct {
	store   store.Store
	cache   Cache
	stats   ApplicationStats
	auditor *audit.Logger
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New wires the catalog service. Caching and application stats are optional.
func New(st store.Store, auditor *audit.Logger, opts ...Option) *Service {
	svc := &Service{
		store:   st,
		auditor: auditor,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// WithCache enables the active listing cache. Pass nil to run without one.
func WithCache(c Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithApplicationStats supplies per-scheme counts for ListAll and the delete guard.
func WithApplicationStats(stats ApplicationStats) Option {
	return func(s *Service) {
		s.stats = stats
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// Create validates criteria and stores a new scheme. Only admins may create schemes.
func (s *Service) Create(ctx context.Context, actor id.Actor, req *models.CreateRequest) (*models.Scheme, error) {
	if !actor.Role.IsAdmin() {
		return nil, dErrors.New(dErrors.CodeForbidden, "only administrators can manage schemes")
	}
	if err := eligibility.ValidateCriteria(req.Criteria); err != nil {
		return nil, err
	}

	status := models.StatusDraft
	if req.Status != "" {
		parsed, err := models.ParseStatus(req.Status)
		if err != nil {
			return nil, err
		}
		status = parsed
	}

	now := requestcontext.Now(ctx)
	scheme := &models.Scheme{
		ID:            id.SchemeID(uuid.New()),
		Name:          req.Name,
		Ministry:      req.Ministry,
		Description:   req.Description,
		Benefits:      req.Benefits,
		Criteria:      req.Criteria,
		BenefitAmount: req.BenefitAmount,
		Status:        status,
		CreatedBy:     actor.UserID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if scheme.Benefits == nil {
		scheme.Benefits = []string{}
	}
	if err := s.store.Create(ctx, scheme); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "a scheme with this id already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create scheme")
	}

	s.afterMutation(ctx, actor, audit.EventSchemeCreated, "create", scheme, "", "")
	return scheme, nil
}

// Update applies a partial update. Criteria are validated as a whole after
// the patch is applied.
func (s *Service) Update(ctx context.Context, actor id.Actor, schemeID id.SchemeID, patch models.Update) (*models.Scheme, error) {
	if !actor.Role.IsAdmin() {
		return nil, dErrors.New(dErrors.CodeForbidden, "only administrators can manage schemes")
	}
	scheme, err := s.load(ctx, schemeID)
	if err != nil {
		return nil, err
	}

	patch.Apply(scheme)
	if err := eligibility.ValidateCriteria(scheme.Criteria); err != nil {
		return nil, err
	}
	scheme.UpdatedAt = requestcontext.Now(ctx)

	if err := s.store.Update(ctx, scheme); err != nil {
		return nil, s.translate(err, "failed to update scheme")
	}
	s.afterMutation(ctx, actor, audit.EventSchemeUpdated, "update", scheme, "", "")
	return scheme, nil
}

// SetStatus moves a scheme between draft, active and inactive.
func (s *Service) SetStatus(ctx context.Context, actor id.Actor, schemeID id.SchemeID, status models.Status) (*models.Scheme, error) {
	if !actor.Role.IsAdmin() {
		return nil, dErrors.New(dErrors.CodeForbidden, "only administrators can manage schemes")
	}
	if _, err := models.ParseStatus(string(status)); err != nil {
		return nil, err
	}
	scheme, err := s.load(ctx, schemeID)
	if err != nil {
		return nil, err
	}
	if scheme.Status == status {
		return scheme, nil
	}

	from := scheme.Status
	scheme.Status = status
	scheme.UpdatedAt = requestcontext.Now(ctx)
	if err := s.store.Update(ctx, scheme); err != nil {
		return nil, s.translate(err, "failed to update scheme status")
	}
	s.afterMutation(ctx, actor, audit.EventSchemeStatusChanged, "status", scheme, string(from), string(status))
	return scheme, nil
}

// Delete removes a scheme nobody has applied to yet.
func (s *Service) Delete(ctx context.Context, actor id.Actor, schemeID id.SchemeID) error {
	if actor.Role != id.RoleSuperAdmin {
		return dErrors.New(dErrors.CodeForbidden, "only super administrators can delete schemes")
	}
	scheme, err := s.load(ctx, schemeID)
	if err != nil {
		return err
	}

	if s.stats != nil {
		counts, err := s.stats.CountsByScheme(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count applications")
		}
		if counts[schemeID].Total > 0 {
			return errSchemeInUse
		}
	}

	if err := s.store.Delete(ctx, schemeID); err != nil {
		return s.translate(err, "failed to delete scheme")
	}
	s.afterMutation(ctx, actor, audit.EventSchemeDeleted, "delete", scheme, string(scheme.Status), "")
	return nil
}

var errSchemeInUse = dErrors.New(dErrors.CodeConflict, "scheme has applications and cannot be deleted")

// Get returns a scheme in any status.
func (s *Service) Get(ctx context.Context, schemeID id.SchemeID) (*models.Scheme, error) {
	return s.load(ctx, schemeID)
}

// GetPublic returns a scheme only while it is active. Drafts and retired
// schemes read as not found.
func (s *Service) GetPublic(ctx context.Context, schemeID id.SchemeID) (*models.Scheme, error) {
	scheme, err := s.load(ctx, schemeID)
	if err != nil {
		return nil, err
	}
	if !scheme.IsActive() {
		return nil, dErrors.New(dErrors.CodeNotFound, "scheme not found")
	}
	return scheme, nil
}

// ListActive returns active schemes, newest first, from the cache when possible.
func (s *Service) ListActive(ctx context.Context) ([]*models.Scheme, error) {
	var generation int64
	if s.cache != nil {
		cached, gen, ok := s.cache.GetActive(ctx)
		if ok {
			return cached, nil
		}
		generation = gen
	}

	schemes, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list schemes")
	}
	if s.cache != nil {
		s.cache.SetActive(ctx, generation, schemes)
	}
	return schemes, nil
}

// ListAll returns every scheme with its application counts.
func (s *Service) ListAll(ctx context.Context, actor id.Actor) ([]models.WithStats, error) {
	if !actor.Role.IsStaff() {
		return nil, dErrors.New(dErrors.CodeForbidden, "staff access required")
	}
	schemes, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list schemes")
	}

	var counts map[id.SchemeID]models.ApplicationCounts
	if s.stats != nil {
		counts, err = s.stats.CountsByScheme(ctx)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count applications")
		}
	}

	rows := make([]models.WithStats, 0, len(schemes))
	for _, scheme := range schemes {
		rows = append(rows, models.WithStats{Scheme: scheme, Applications: counts[scheme.ID]})
	}
	return rows, nil
}

func (s *Service) load(ctx context.Context, schemeID id.SchemeID) (*models.Scheme, error) {
	scheme, err := s.store.FindByID(ctx, schemeID)
	if err != nil {
		return nil, s.translate(err, "failed to load scheme")
	}
	return scheme, nil
}

// translate maps store sentinels to domain errors.
func (s *Service) translate(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "scheme not found")
	case errors.Is(err, sentinel.ErrConflict):
		return errSchemeInUse
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}

func (s *Service) afterMutation(ctx context.Context, actor id.Actor, event audit.AuditEvent, op string, scheme *models.Scheme, from, to string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	if s.metrics != nil {
		s.metrics.IncMutation(op)
	}
	s.auditor.Record(ctx, audit.Event{
		Action:      string(event),
		ActorID:     actor.UserID,
		ActorRole:   actor.Role,
		SubjectType: "scheme",
		SubjectID:   scheme.ID.String(),
		FromStatus:  from,
		ToStatus:    to,
	})
	if s.logger != nil {
		s.logger.InfoContext(ctx, "scheme catalog changed",
			"operation", op,
			"scheme_id", scheme.ID.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}
