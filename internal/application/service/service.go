package service

//go:generate mockgen -source=service.go -destination=mocks/service_mock.go -package=mocks
//go:generate mockgen -source=../store/store.go -destination=mocks/store_mock.go -package=mocks

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"schemeportal/internal/application/metrics"
	"schemeportal/internal/application/models"
	"schemeportal/internal/application/store"
	"schemeportal/internal/eligibility"
	schememodels "schemeportal/internal/scheme/models"
	"schemeportal/internal/workflow"
	id "schemeportal/pkg/domain"
	dErrors "schemeportal/pkg/domain-errors"
	"schemeportal/pkg/platform/audit"
	"schemeportal/pkg/platform/sentinel"
	"schemeportal/pkg/requestcontext"
)

// SchemeLookup finds the scheme an application targets. It returns domain
// errors (not_found) for unknown ids.
type SchemeLookup interface {
	Get(ctx context.Context, schemeID id.SchemeID) (*schememodels.Scheme, error)
}

const (
	msgDuplicate     = "You have already applied for this scheme"
	msgNotAccepting  = "scheme is not accepting applications"
	msgNotFound      = "application not found"
	msgNotesRequired = "review notes are required for this transition"
	msgStale         = "application status has changed since it was loaded; reload and try again"
)

type Option func(*Service)

// Service runs application intake and the review workflow.
type Service struct {
	store     store.Store
	schemes   SchemeLookup
	auditor   *audit.Logger
	formatter *eligibility.Formatter
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tracer    trace.Tracer
}

// New wires the service. The auditor is required; metrics, tracing and logging are optional.
func New(st store.Store, schemes SchemeLookup, auditor *audit.Logger, opts ...Option) *Service {
	svc := &Service{
		store:     st,
		schemes:   schemes,
		auditor:   auditor,
		formatter: eligibility.NewFormatter(eligibility.DefaultLocale),
		tracer:    otel.Tracer("schemeportal/application"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
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

// WithFormatter sets the formatter used for ineligibility messages.
func WithFormatter(f *eligibility.Formatter) Option {
	return func(s *Service) {
		if f != nil {
			s.formatter = f
		}
	}
}

// Submit files a new pending application after re-running eligibility on
// the server. The profile is stored as submitted.
func (s *Service) Submit(ctx context.Context, citizenID id.UserID, sub models.Submission) (*models.Application, error) {
	if citizenID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing user context")
	}

	scheme, err := s.schemes.Get(ctx, sub.SchemeID)
	if err != nil {
		return nil, err
	}
	if !scheme.IsActive() {
		s.countSubmission("rejected")
		return nil, dErrors.New(dErrors.CodeValidation, msgNotAccepting)
	}
	if err := eligibility.ValidateProfile(sub.Profile); err != nil {
		s.countSubmission("rejected")
		return nil, err
	}

	result := eligibility.EvaluateOne(sub.Profile, scheme.Ref())
	if !result.Eligible() {
		s.countSubmission("not_eligible")
		reasons := s.formatter.Reasons(result)
		return nil, dErrors.New(dErrors.CodePolicyViolation, "not eligible for this scheme: "+strings.Join(reasons, "; "))
	}

	applied, err := s.store.Exists(ctx, citizenID, sub.SchemeID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check existing applications")
	}
	if applied {
		s.countSubmission("duplicate")
		return nil, dErrors.New(dErrors.CodeConflict, msgDuplicate)
	}

	now := requestcontext.Now(ctx)
	app := &models.Application{
		ID:          id.ApplicationID(uuid.New()),
		SchemeID:    sub.SchemeID,
		CitizenID:   citizenID,
		Data:        models.Data{Profile: sub.Profile, Extra: sub.Extra},
		Status:      workflow.StatusPending,
		SubmittedAt: now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, app); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrAlreadyUsed):
			s.countSubmission("duplicate")
			return nil, dErrors.New(dErrors.CodeConflict, msgDuplicate)
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "scheme not found")
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create application")
		}
	}

	s.countSubmission("created")
	s.auditor.Record(ctx, audit.Event{
		Action:      string(audit.EventApplicationSubmitted),
		ActorID:     citizenID,
		ActorRole:   id.RolePublicUser,
		SubjectType: "application",
		SubjectID:   app.ID.String(),
		ToStatus:    string(workflow.StatusPending),
	})
	return app, nil
}

// Review moves an application from expectedStatus to targetStatus on behalf
// of actor. It fails with concurrency_conflict when the stored status is not
// expectedStatus, both on the initial read and at write time.
func (s *Service) Review(ctx context.Context, actor id.Actor, applicationID id.ApplicationID, expectedStatus, targetStatus string, notes *string) (app *models.Application, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "application.review", trace.WithAttributes(
		attribute.String("application.id", applicationID.String()),
		attribute.String("actor.role", actor.Role.String()),
		attribute.String("status.expected", expectedStatus),
		attribute.String("status.target", targetStatus),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		if s.metrics != nil {
			s.metrics.ObserveReviewLatency(time.Since(start).Seconds())
		}
	}()

	expected, err := workflow.ParseStatus(expectedStatus)
	if err != nil {
		s.countReview("invalid")
		return nil, dErrors.New(dErrors.CodeValidation, "expected_status: "+err.Error())
	}
	target, err := workflow.ParseStatus(targetStatus)
	if err != nil {
		s.countReview("invalid")
		return nil, dErrors.New(dErrors.CodeValidation, "status: "+err.Error())
	}

	if !workflow.HasTransitionRights(actor.Role) {
		s.countReview("denied")
		return nil, dErrors.New(dErrors.CodeForbidden, workflow.MsgNoTransitionRights)
	}

	current, err := s.load(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if current.Status != expected {
		s.countReview("conflict")
		return nil, dErrors.New(dErrors.CodeConcurrencyConflict, msgStale)
	}

	decision := workflow.Check(actor.Role, current.Status, target)
	if !decision.Allowed {
		s.countReview("denied")
		return nil, decision.Err()
	}
	if decision.NoOp {
		s.countReview("noop")
		span.SetAttributes(attribute.Bool("review.noop", true))
		return current, nil
	}

	notes = normalizeNotes(notes)
	if workflow.RequiresNotes(current.Status, target) && notes == nil {
		s.countReview("invalid")
		return nil, dErrors.New(dErrors.CodeValidation, msgNotesRequired)
	}

	review := models.Review{
		To:        target,
		ActorID:   actor.UserID,
		ActorRole: actor.Role,
		Notes:     notes,
		At:        requestcontext.Now(ctx),
	}
	updated, err := s.store.Transition(ctx, applicationID, expected, review)
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrConflict):
			s.countReview("conflict")
			return nil, dErrors.New(dErrors.CodeConcurrencyConflict, msgStale)
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, msgNotFound)
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update application status")
		}
	}

	s.countReview("applied")
	if s.metrics != nil {
		s.metrics.IncTransition(string(expected), string(target))
	}
	notesLength := 0
	if notes != nil {
		notesLength = len(*notes)
	}
	s.auditor.Record(ctx, audit.Event{
		Action:      string(audit.EventApplicationStatusChanged),
		ActorID:     actor.UserID,
		ActorRole:   actor.Role,
		SubjectType: "application",
		SubjectID:   applicationID.String(),
		FromStatus:  string(expected),
		ToStatus:    string(target),
		NotesLength: notesLength,
	})
	return updated, nil
}

// Get returns one application. Citizens only see their own; anything else
// reads as not found.
func (s *Service) Get(ctx context.Context, actor id.Actor, applicationID id.ApplicationID) (*models.Application, error) {
	app, err := s.load(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsStaff() && app.CitizenID != actor.UserID {
		return nil, dErrors.New(dErrors.CodeNotFound, msgNotFound)
	}
	return app, nil
}

// Options lists the transitions actor may apply to the application now.
func (s *Service) Options(ctx context.Context, actor id.Actor, applicationID id.ApplicationID) (*models.Options, error) {
	if !actor.Role.IsStaff() {
		return nil, dErrors.New(dErrors.CodeForbidden, "staff access required")
	}
	app, err := s.load(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	targets := workflow.AllowedTargets(actor.Role, app.Status)
	out := &models.Options{
		ApplicationID: app.ID,
		Current:       app.Status,
		Targets:       make([]models.TransitionOption, 0, len(targets)),
	}
	for _, t := range targets {
		out.Targets = append(out.Targets, models.TransitionOption{
			Status:        t,
			RequiresNotes: workflow.RequiresNotes(app.Status, t),
		})
	}
	return out, nil
}

// ListMine returns the citizen's applications, newest first.
func (s *Service) ListMine(ctx context.Context, citizenID id.UserID) ([]*models.Application, error) {
	apps, err := s.store.ListByCitizen(ctx, citizenID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list applications")
	}
	if apps == nil {
		apps = []*models.Application{}
	}
	return apps, nil
}

// HasApplied reports whether the citizen already holds an application for the scheme.
func (s *Service) HasApplied(ctx context.Context, citizenID id.UserID, schemeID id.SchemeID) (bool, error) {
	applied, err := s.store.Exists(ctx, citizenID, schemeID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check existing applications")
	}
	return applied, nil
}

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// List returns applications for staff, newest first.
func (s *Service) List(ctx context.Context, actor id.Actor, filter models.Filter) ([]*models.Application, error) {
	if !actor.Role.IsStaff() {
		return nil, dErrors.New(dErrors.CodeForbidden, "staff access required")
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, dErrors.New(dErrors.CodeValidation, "from must not be after to")
	}

	apps, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list applications")
	}
	if apps == nil {
		apps = []*models.Application{}
	}
	return apps, nil
}

// Stats counts applications per status.
func (s *Service) Stats(ctx context.Context, actor id.Actor) (schememodels.ApplicationCounts, error) {
	if !actor.Role.IsStaff() {
		return schememodels.ApplicationCounts{}, dErrors.New(dErrors.CodeForbidden, "staff access required")
	}
	counts, err := s.store.Counts(ctx)
	if err != nil {
		return schememodels.ApplicationCounts{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count applications")
	}
	return counts, nil
}

// History returns the status changes of one application, oldest first.
func (s *Service) History(ctx context.Context, actor id.Actor, applicationID id.ApplicationID) ([]models.Transition, error) {
	if !actor.Role.IsStaff() {
		return nil, dErrors.New(dErrors.CodeForbidden, "staff access required")
	}
	rows, err := s.store.History(ctx, applicationID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, msgNotFound)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load application history")
	}
	return rows, nil
}

func (s *Service) load(ctx context.Context, applicationID id.ApplicationID) (*models.Application, error) {
	app, err := s.store.FindByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, msgNotFound)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load application")
	}
	return app, nil
}

// normalizeNotes trims notes and treats blank as absent.
func normalizeNotes(notes *string) *string {
	if notes == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*notes)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func (s *Service) countSubmission(outcome string) {
	if s.metrics != nil {
		s.metrics.IncSubmission(outcome)
	}
}

func (s *Service) countReview(outcome string) {
	if s.metrics != nil {
		s.metrics.IncReview(outcome)
	}
}
