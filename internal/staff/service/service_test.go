package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"schemeportal/internal/staff/models"
	"schemeportal/internal/staff/service/mocks"
	"schemeportal/internal/staff/store"
	id "schemeportal/pkg/domain"
	dErrors "schemeportal/pkg/domain-errors"
	"schemeportal/pkg/platform/audit"
	"schemeportal/pkg/platform/audit/publisher"
	auditmemory "schemeportal/pkg/platform/audit/store/memory"
	"schemeportal/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	store      *store.InMemoryStore
	auditStore *auditmemory.InMemoryStore
	service    *Service
	ctx        context.Context

	super id.Actor
	admin id.Actor
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = store.NewInMemoryStore()
	s.auditStore = auditmemory.NewInMemoryStore()
	s.service = New(s.store, audit.NewLogger(nil, publisher.NewPublisher(s.auditStore)))
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2025, 5, 2, 9, 0, 0, 0, time.UTC))

	s.super = id.Actor{UserID: id.UserID(uuid.New()), Role: id.RoleSuperAdmin}
	s.admin = id.Actor{UserID: id.UserID(uuid.New()), Role: id.RoleAdmin}
	s.seed(s.super.UserID, "root@portal.gov.in", id.RoleSuperAdmin)
	s.seed(s.admin.UserID, "admin@portal.gov.in", id.RoleAdmin)
}

func (s *ServiceSuite) seed(userID id.UserID, email string, role id.Role) {
	s.Require().NoError(s.store.Upsert(context.Background(), &models.Member{
		UserID:   userID,
		Email:    email,
		FullName: email,
		Role:     role,
		IsActive: true,
	}))
}

func (s *ServiceSuite) upsert(actor id.Actor, userID id.UserID, email, role string) (*models.Member, error) {
	return s.service.Upsert(s.ctx, actor, userID, &models.UpsertRequest{Email: email, FullName: "Staff Member", Role: role})
}

func (s *ServiceSuite) TestResolve() {
	role, active, err := s.service.Resolve(s.ctx, id.UserID(uuid.New()))
	s.Require().NoError(err)
	s.Equal(id.RolePublicUser, role, "users without a profile are citizens")
	s.True(active)

	role, active, err = s.service.Resolve(s.ctx, s.admin.UserID)
	s.Require().NoError(err)
	s.Equal(id.RoleAdmin, role)
	s.True(active)
}

func (s *ServiceSuite) TestUpsert() {
	s.Run("admin adds an analyst", func() {
		userID := id.UserID(uuid.New())
		m, err := s.upsert(s.admin, userID, "analyst@portal.gov.in", "analyst")
		s.Require().NoError(err)
		s.Equal(id.RoleAnalyst, m.Role)
		s.True(m.IsActive)
		s.Equal(requestcontext.Now(s.ctx), m.CreatedAt)

		events, err := s.auditStore.ListBySubject(s.ctx, "staff_member", userID.String())
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal(string(audit.EventStaffUpserted), events[0].Action)
		s.Equal("analyst", events[0].ToStatus)
	})

	s.Run("admin cannot grant admin", func() {
		_, err := s.upsert(s.admin, id.UserID(uuid.New()), "boss@portal.gov.in", "admin")
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("super admin grants admin", func() {
		_, err := s.upsert(s.super, id.UserID(uuid.New()), "boss@portal.gov.in", "admin")
		s.NoError(err)
	})

	s.Run("duplicate email", func() {
		_, err := s.upsert(s.super, id.UserID(uuid.New()), "admin@portal.gov.in", "analyst")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("self edit", func() {
		_, err := s.upsert(s.admin, s.admin.UserID, "admin@portal.gov.in", "analyst")
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("analyst cannot manage staff", func() {
		analyst := id.Actor{UserID: id.UserID(uuid.New()), Role: id.RoleAnalyst}
		_, err := s.upsert(analyst, id.UserID(uuid.New()), "x@portal.gov.in", "analyst")
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func (s *ServiceSuite) TestUpsertKeepsActivation() {
	userID := id.UserID(uuid.New())
	_, err := s.upsert(s.admin, userID, "a@portal.gov.in", "analyst")
	s.Require().NoError(err)
	_, err = s.service.SetActive(s.ctx, s.admin, userID, false)
	s.Require().NoError(err)

	m, err := s.upsert(s.admin, userID, "a.renamed@portal.gov.in", "analyst")
	s.Require().NoError(err)
	s.False(m.IsActive)
}

func (s *ServiceSuite) TestUpdateRole() {
	userID := id.UserID(uuid.New())
	s.seed(userID, "analyst@portal.gov.in", id.RoleAnalyst)

	_, err := s.service.UpdateRole(s.ctx, s.admin, userID, id.RoleAdmin)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden), "admins cannot promote to admin")

	m, err := s.service.UpdateRole(s.ctx, s.super, userID, id.RoleAdmin)
	s.Require().NoError(err)
	s.Equal(id.RoleAdmin, m.Role)

	_, err = s.service.UpdateRole(s.ctx, s.admin, userID, id.RoleAnalyst)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden), "admins cannot demote other admins")

	_, err = s.service.UpdateRole(s.ctx, s.super, s.super.UserID, id.RoleAnalyst)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden), "nobody changes their own role")

	_, err = s.service.UpdateRole(s.ctx, s.super, id.UserID(uuid.New()), id.RoleAnalyst)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.service.UpdateRole(s.ctx, s.super, userID, id.Role("root"))
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestSetActive() {
	userID := id.UserID(uuid.New())
	s.seed(userID, "analyst@portal.gov.in", id.RoleAnalyst)

	m, err := s.service.SetActive(s.ctx, s.admin, userID, false)
	s.Require().NoError(err)
	s.False(m.IsActive)

	role, active, err := s.service.Resolve(s.ctx, userID)
	s.Require().NoError(err)
	s.Equal(id.RoleAnalyst, role)
	s.False(active)

	_, err = s.service.SetActive(s.ctx, s.admin, s.super.UserID, false)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden), "admins cannot deactivate super admins")

	_, err = s.service.SetActive(s.ctx, s.admin, s.admin.UserID, false)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden), "nobody deactivates themselves")

	events, err := s.auditStore.ListBySubject(s.ctx, "staff_member", userID.String())
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal("active", events[0].FromStatus)
	s.Equal("inactive", events[0].ToStatus)
}

func (s *ServiceSuite) TestList() {
	members, err := s.service.List(s.ctx, s.admin)
	s.Require().NoError(err)
	s.Require().Len(members, 2)
	s.Equal("admin@portal.gov.in", members[0].Email)

	_, err = s.service.List(s.ctx, id.Actor{UserID: id.UserID(uuid.New()), Role: id.RoleAnalyst})
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func TestResolveStoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := mocks.NewMockStore(ctrl)
	st.EXPECT().FindByID(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset"))

	_, _, err := New(st, nil).Resolve(context.Background(), id.UserID(uuid.New()))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}
