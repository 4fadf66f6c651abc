//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	appstore "schemeportal/internal/application/store"
	eligibility "schemeportal/internal/eligibility/models"
	"schemeportal/internal/scheme/models"
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

func (s *PostgresStoreSuite) TestCreateFindUpdate() {
	ctx := context.Background()
	minAge := 60
	scheme := testutil.NewSchemeBuilder().
		WithName("Old Age Pension").
		WithCriteria(eligibility.Criteria{MinAge: &minAge, ResidenceType: []eligibility.Residence{eligibility.ResidenceRural}}).
		WithBenefitAmount(3000).
		CreatedAt(time.Now().UTC().Truncate(time.Microsecond)).
		Build()
	s.Require().NoError(s.store.Create(ctx, scheme))
	s.ErrorIs(s.store.Create(ctx, scheme), sentinel.ErrAlreadyUsed)

	got, err := s.store.FindByID(ctx, scheme.ID)
	s.Require().NoError(err)
	s.Equal(scheme.Criteria, got.Criteria)
	s.Equal(scheme.Benefits, got.Benefits)
	s.Require().NotNil(got.BenefitAmount)
	s.InDelta(3000, *got.BenefitAmount, 0.001)

	got.Status = models.StatusInactive
	s.Require().NoError(s.store.Update(ctx, got))
	again, err := s.store.FindByID(ctx, scheme.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusInactive, again.Status)

	missing := testutil.NewTestScheme(id.SchemeID(uuid.New()))
	s.ErrorIs(s.store.Update(ctx, missing), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListActiveNewestFirst() {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Microsecond)
	older := testutil.NewSchemeBuilder().WithName("older").CreatedAt(base).Build()
	newer := testutil.NewSchemeBuilder().WithName("newer").CreatedAt(base.Add(time.Minute)).Build()
	draft := testutil.NewSchemeBuilder().WithName("draft").WithStatus(models.StatusDraft).Build()
	for _, sc := range []*models.Scheme{older, newer, draft} {
		s.Require().NoError(s.store.Create(ctx, sc))
	}

	active, err := s.store.ListActive(ctx)
	s.Require().NoError(err)
	s.Require().Len(active, 2)
	s.Equal("newer", active[0].Name)

	all, err := s.store.ListAll(ctx)
	s.Require().NoError(err)
	s.Len(all, 3)
}

func (s *PostgresStoreSuite) TestDeleteRefusedWithApplications() {
	ctx := context.Background()
	scheme := testutil.NewTestScheme(id.SchemeID(uuid.New()))
	s.Require().NoError(s.store.Create(ctx, scheme))

	apps := appstore.NewPostgres(s.postgres.DB)
	s.Require().NoError(apps.Create(ctx, testutil.NewTestApplication(testutil.TestIDs.CitizenID1, scheme.ID)))

	s.ErrorIs(s.store.Delete(ctx, scheme.ID), sentinel.ErrConflict)

	empty := testutil.NewTestScheme(id.SchemeID(uuid.New()))
	s.Require().NoError(s.store.Create(ctx, empty))
	s.Require().NoError(s.store.Delete(ctx, empty.ID))
	s.ErrorIs(s.store.Delete(ctx, empty.ID), sentinel.ErrNotFound)
}
