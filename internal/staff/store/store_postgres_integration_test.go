//go:build integration

package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	id "schemeportal/pkg/domain"
	"schemeportal/pkg/platform/sentinel"
	"schemeportal/pkg/testutil"
	"schemeportal/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateAll(context.Background()))
}

func (s *PostgresStoreSuite) TestUpsertAndFind() {
	ctx := context.Background()
	member := testutil.NewTestMember(id.UserID(uuid.New()), id.RoleAnalyst)
	created := member.CreatedAt
	s.Require().NoError(s.store.Upsert(ctx, member))

	promoted := testutil.NewTestMember(member.UserID, id.RoleAdmin)
	promoted.CreatedAt = created.AddDate(0, 0, 1)
	s.Require().NoError(s.store.Upsert(ctx, promoted))
	s.True(created.Equal(promoted.CreatedAt), "upsert keeps the original created_at")

	got, err := s.store.FindByID(ctx, member.UserID)
	s.Require().NoError(err)
	s.Equal(id.RoleAdmin, got.Role)
	s.True(got.IsActive)

	_, err = s.store.FindByID(ctx, id.UserID(uuid.New()))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestEmailUnique() {
	ctx := context.Background()
	first := testutil.NewTestMember(id.UserID(uuid.New()), id.RoleAnalyst)
	s.Require().NoError(s.store.Upsert(ctx, first))

	second := testutil.NewTestMember(id.UserID(uuid.New()), id.RoleAnalyst)
	second.Email = first.Email
	s.ErrorIs(s.store.Upsert(ctx, second), sentinel.ErrAlreadyUsed)
}

func (s *PostgresStoreSuite) TestUpdate() {
	ctx := context.Background()
	member := testutil.NewTestMember(id.UserID(uuid.New()), id.RoleAnalyst)
	s.Require().NoError(s.store.Upsert(ctx, member))

	member.IsActive = false
	s.Require().NoError(s.store.Update(ctx, member))
	got, err := s.store.FindByID(ctx, member.UserID)
	s.Require().NoError(err)
	s.False(got.IsActive)

	missing := testutil.NewTestMember(id.UserID(uuid.New()), id.RoleAnalyst)
	s.ErrorIs(s.store.Update(ctx, missing), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListOrderedByEmail() {
	ctx := context.Background()
	for _, email := range []string{"zed@portal.test", "amy@portal.test"} {
		m := testutil.NewTestMember(id.UserID(uuid.New()), id.RoleAnalyst)
		m.Email = email
		s.Require().NoError(s.store.Upsert(ctx, m))
	}
	list, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("amy@portal.test", list[0].Email)
}
