package service

//go:generate mockgen -source=../store/store.go -destination=mocks/store_mock.go -package=mocks

import (
	"context"
	"errors"
	"log/slog"

	"schemeportal/internal/staff/models"
	"schemeportal/internal/staff/store"
	id "schemeportal/pkg/domain"
	dErrors "schemeportal/pkg/domain-errors"
	"schemeportal/pkg/platform/audit"
	"schemeportal/pkg/platform/sentinel"
	"schemeportal/pkg/requestcontext"
)

var (
	errAdminOnly      = dErrors.New(dErrors.CodeForbidden, "only administrators can manage staff")
	errSuperAdminOnly = dErrors.New(dErrors.CodeForbidden, "only super administrators can grant or revoke admin access")
	errSelfChange     = dErrors.New(dErrors.CodeForbidden, "you cannot change your own role or status")
	errMemberNotFound = dErrors.New(dErrors.CodeNotFound, "staff member not found")
	errEmailInUse     = dErrors.New(dErrors.CodeConflict, "email is already assigned to another staff member")
)

type Option func(*Service)

// Service is the staff directory. It is also the auth middleware's role resolver.
type Service struct {
	store   store.Store
	auditor *audit.Logger
	logger  *slog.Logger
}

// New wires the directory service to its store and auditor.
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

// Resolve returns the caller's role and whether the account is active.
// Users with no staff profile are active citizens.
func (s *Service) Resolve(ctx context.Context, userID id.UserID) (id.Role, bool, error) {
	m, err := s.store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return id.RolePublicUser, true, nil
		}
		return "", false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve role")
	}
	return m.Role, m.IsActive, nil
}

// List returns every member ordered by email. Admins only.
func (s *Service) List(ctx context.Context, actor id.Actor) ([]*models.Member, error) {
	if !actor.Role.IsAdmin() {
		return nil, errAdminOnly
	}
	members, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list staff")
	}
	return members, nil
}

// Upsert creates or replaces the staff profile of userID. New profiles start active.
func (s *Service) Upsert(ctx context.Context, actor id.Actor, userID id.UserID, req *models.UpsertRequest) (*models.Member, error) {
	role, err := id.ParseRole(req.Role)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "role must be one of [public_user analyst admin super_admin]")
	}

	existing, err := s.store.FindByID(ctx, userID)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		existing = nil
	case err != nil:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load staff member")
	}

	current := id.RolePublicUser
	if existing != nil {
		current = existing.Role
	}
	if err := authorize(actor, userID, current, role); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	member := &models.Member{
		UserID:    userID,
		Email:     req.Email,
		FullName:  req.FullName,
		Role:      role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if existing != nil {
		member.IsActive = existing.IsActive
	}
	if err := s.store.Upsert(ctx, member); err != nil {
		return nil, translate(err, "failed to save staff member")
	}

	s.record(ctx, actor, audit.EventStaffUpserted, userID, string(current), string(role))
	return member, nil
}

// UpdateRole changes a member's role. Granting or revoking admin or
// super_admin requires super_admin, and actors cannot change their own role.
func (s *Service) UpdateRole(ctx context.Context, actor id.Actor, userID id.UserID, role id.Role) (*models.Member, error) {
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "role must be one of [public_user analyst admin super_admin]")
	}
	member, err := s.load(ctx, actor, userID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, userID, member.Role, role); err != nil {
		return nil, err
	}
	if member.Role == role {
		return member, nil
	}

	from := member.Role
	member.Role = role
	member.UpdatedAt = requestcontext.Now(ctx)
	if err := s.store.Update(ctx, member); err != nil {
		return nil, translate(err, "failed to update role")
	}
	s.record(ctx, actor, audit.EventStaffRoleChanged, userID, string(from), string(role))
	return member, nil
}

// SetActive toggles a member's access. Actors cannot deactivate themselves.
func (s *Service) SetActive(ctx context.Context, actor id.Actor, userID id.UserID, active bool) (*models.Member, error) {
	member, err := s.load(ctx, actor, userID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, userID, member.Role, member.Role); err != nil {
		return nil, err
	}
	if member.IsActive == active {
		return member, nil
	}

	member.IsActive = active
	member.UpdatedAt = requestcontext.Now(ctx)
	if err := s.store.Update(ctx, member); err != nil {
		return nil, translate(err, "failed to update staff status")
	}
	s.record(ctx, actor, audit.EventStaffActivationChanged, userID, activity(!active), activity(active))
	return member, nil
}

func (s *Service) load(ctx context.Context, actor id.Actor, userID id.UserID) (*models.Member, error) {
	if !actor.Role.IsAdmin() {
		return nil, errAdminOnly
	}
	member, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return nil, translate(err, "failed to load staff member")
	}
	return member, nil
}

// authorize applies the directory rules: admins manage staff, nobody edits
// themselves, and only super admins touch admin-level roles.
func authorize(actor id.Actor, target id.UserID, from, to id.Role) error {
	if !actor.Role.IsAdmin() {
		return errAdminOnly
	}
	if actor.UserID == target {
		return errSelfChange
	}
	if (models.Privileged(from) || models.Privileged(to)) && actor.Role != id.RoleSuperAdmin {
		return errSuperAdminOnly
	}
	return nil
}

func translate(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return errMemberNotFound
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return errEmailInUse
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}

func (s *Service) record(ctx context.Context, actor id.Actor, event audit.AuditEvent, target id.UserID, from, to string) {
	s.auditor.Record(ctx, audit.Event{
		Action:      string(event),
		ActorID:     actor.UserID,
		ActorRole:   actor.Role,
		SubjectType: "staff_member",
		SubjectID:   target.String(),
		FromStatus:  from,
		ToStatus:    to,
	})
	if s.logger != nil {
		s.logger.InfoContext(ctx, "staff directory changed",
			"event", string(event),
			"user_id", target.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

func activity(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}
