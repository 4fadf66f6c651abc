package service

//go:generate mockgen -source=../store/store.go -destination=mocks/store_mock.go -package=mocks

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"schemeportal/internal/insight/models"
	"schemeportal/internal/insight/store"
	id "schemeportal/pkg/domain"
	dErrors "schemeportal/pkg/domain-errors"
	"schemeportal/pkg/platform/audit"
	"schemeportal/pkg/platform/sentinel"
	"schemeportal/pkg/requestcontext"
)

const (
	msgNotFound      = "insight not found"
	msgDecided       = "insight has already been decided"
	msgStale         = "insight was decided by someone else; reload and retry"
	msgNotesRequired = "notes are required when rejecting an insight"
)

type Option func(*Service)

// Service gates advisory insights behind administrator approval.
type Service struct {
	store   store.Store
	auditor *audit.Logger
	logger  *slog.Logger
}

// New wires the insight service to its store and auditor.
func New(st store.Store, auditor *audit.Logger, opts ...Option) *Service {
	svc := &Service{store: st, auditor: auditor}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// Record stores advisory output as pending_review.
func (s *Service) Record(ctx context.Context, actor id.Actor, req *models.RecordRequest) (*models.Insight, error) {
	if !actor.Role.IsStaff() {
		return nil, dErrors.New(dErrors.CodeForbidden, "staff access required")
	}
	in := &models.Insight{
		ID:             id.InsightID(uuid.New()),
		Title:          req.Title,
		Body:           req.Body,
		Recommendation: req.Recommendation,
		MetricName:     req.MetricName,
		Severity:       models.Severity(req.Severity),
		Confidence:     *req.Confidence,
		Status:         models.StatusPendingReview,
		CreatedBy:      actor.UserID,
		CreatedAt:      requestcontext.Now(ctx),
	}
	if err := s.store.Create(ctx, in); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record insight")
	}

	s.auditor.Record(ctx, audit.Event{
		Action:      string(audit.EventInsightRecorded),
		ActorID:     actor.UserID,
		ActorRole:   actor.Role,
		SubjectType: "ai_insight",
		SubjectID:   in.ID.String(),
		ToStatus:    string(in.Status),
	})
	return in, nil
}

// Decide approves or rejects a pending insight. Decided insights are final.
func (s *Service) Decide(ctx context.Context, actor id.Actor, insightID id.InsightID, decision string, notes *string) (*models.Insight, error) {
	if !actor.Role.IsAdmin() {
		return nil, dErrors.New(dErrors.CodeForbidden, "only administrators can approve or reject insights")
	}
	to, err := models.ParseDecision(decision)
	if err != nil {
		return nil, err
	}

	current, err := s.store.FindByID(ctx, insightID)
	if err != nil {
		return nil, translate(err, "failed to load insight")
	}
	if current.Status.IsTerminal() {
		return nil, dErrors.New(dErrors.CodeInvalidTransition, msgDecided)
	}
	notes = trimNotes(notes)
	if to == models.StatusRejected && notes == nil {
		return nil, dErrors.New(dErrors.CodeValidation, msgNotesRequired)
	}

	updated, err := s.store.Decide(ctx, insightID, models.StatusPendingReview, models.Decision{
		To:    to,
		By:    actor.UserID,
		Notes: notes,
		At:    requestcontext.Now(ctx),
	})
	if err != nil {
		return nil, translate(err, "failed to decide insight")
	}

	event := audit.EventInsightApproved
	if to == models.StatusRejected {
		event = audit.EventInsightRejected
	}
	auditEvent := audit.Event{
		Action:      string(event),
		ActorID:     actor.UserID,
		ActorRole:   actor.Role,
		SubjectType: "ai_insight",
		SubjectID:   insightID.String(),
		FromStatus:  string(models.StatusPendingReview),
		ToStatus:    string(to),
	}
	if notes != nil {
		auditEvent.NotesLength = len(*notes)
	}
	s.auditor.Record(ctx, auditEvent)
	if s.logger != nil {
		s.logger.InfoContext(ctx, "insight decided",
			"insight_id", insightID.String(),
			"decision", string(to),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	return updated, nil
}

// List returns insights with the given status, or all of them when status is empty.
func (s *Service) List(ctx context.Context, actor id.Actor, status string) ([]*models.Insight, error) {
	if !actor.Role.IsStaff() {
		return nil, dErrors.New(dErrors.CodeForbidden, "staff access required")
	}
	var filter models.Status
	if status != "" {
		parsed, err := models.ParseStatus(status)
		if err != nil {
			return nil, err
		}
		filter = parsed
	}
	insights, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list insights")
	}
	return insights, nil
}

// ListApproved is the dashboard feed.
func (s *Service) ListApproved(ctx context.Context) ([]*models.Insight, error) {
	insights, err := s.store.List(ctx, models.StatusApproved)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list insights")
	}
	return insights, nil
}

func translate(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, msgNotFound)
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConcurrencyConflict, msgStale)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}

// trimNotes returns nil for absent or blank notes.
func trimNotes(notes *string) *string {
	if notes == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*notes)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
