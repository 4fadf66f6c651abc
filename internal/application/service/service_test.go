package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"schemeportal/internal/application/models"
	"schemeportal/internal/application/service/mocks"
	"schemeportal/internal/application/store"
	eligibility "schemeportal/internal/eligibility/models"
	schememodels "schemeportal/internal/scheme/models"
	"schemeportal/internal/workflow"
	id "schemeportal/pkg/domain"
	dErrors "schemeportal/pkg/domain-errors"
	"schemeportal/pkg/platform/audit"
	"schemeportal/pkg/platform/audit/publisher"
	auditmemory "schemeportal/pkg/platform/audit/store/memory"
	"schemeportal/pkg/platform/sentinel"
	"schemeportal/pkg/requestcontext"
	"schemeportal/pkg/testutil"
)

func ptr[T any](v T) *T { return &v }

func actor(role id.Role) id.Actor {
	return id.Actor{UserID: id.UserID(uuid.New()), Role: role}
}

type ServiceSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	schemes    *mocks.MockSchemeLookup
	store      *store.InMemoryStore
	auditStore *auditmemory.InMemoryStore
	service    *Service
	ctx        context.Context
	scheme     *schememodels.Scheme
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.schemes = mocks.NewMockSchemeLookup(s.ctrl)
	s.store = store.NewInMemoryStore()
	s.auditStore = auditmemory.NewInMemoryStore()
	auditor := audit.NewLogger(nil, publisher.NewPublisher(s.auditStore))
	s.service = New(s.store, s.schemes, auditor)
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	s.scheme = &schememodels.Scheme{
		ID:     id.SchemeID(uuid.New()),
		Name:   "Kisan Samman",
		Status: schememodels.StatusActive,
		Criteria: eligibility.Criteria{
			MaxIncome:          ptr(250000.0),
			AllowedOccupations: []eligibility.Occupation{eligibility.OccupationFarmer},
		},
	}
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func farmer() eligibility.Profile {
	return eligibility.Profile{
		Age:          40,
		Residence:    eligibility.ResidenceRural,
		AnnualIncome: 120000,
		Occupation:   eligibility.OccupationFarmer,
	}
}

// seedApplication stores an application directly in the given status.
func (s *ServiceSuite) seedApplication(status workflow.Status) *models.Application {
	app := &models.Application{
		ID:          id.ApplicationID(uuid.New()),
		SchemeID:    s.scheme.ID,
		CitizenID:   id.UserID(uuid.New()),
		Data:        models.Data{Profile: farmer()},
		Status:      status,
		SubmittedAt: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	s.Require().NoError(s.store.Create(context.Background(), app))
	return app
}

func (s *ServiceSuite) auditTrail(appID id.ApplicationID) []audit.Event {
	events, err := s.auditStore.ListBySubject(context.Background(), "application", appID.String())
	s.Require().NoError(err)
	return events
}

func (s *ServiceSuite) TestSubmit() {
	citizen := id.UserID(uuid.New())

	s.Run("creates pending application with snapshot and audit", func() {
		s.schemes.EXPECT().Get(gomock.Any(), s.scheme.ID).Return(s.scheme, nil)

		app, err := s.service.Submit(s.ctx, citizen, models.Submission{
			SchemeID: s.scheme.ID,
			Profile:  farmer(),
			Extra:    map[string]any{"land_acres": 2.5},
		})
		s.Require().NoError(err)
		s.Equal(workflow.StatusPending, app.Status)
		s.Equal(citizen, app.CitizenID)
		s.Equal(farmer(), app.Data.Profile)
		s.Equal(requestcontext.Now(s.ctx), app.SubmittedAt)

		events := s.auditTrail(app.ID)
		s.Require().Len(events, 1)
		s.Equal(string(audit.EventApplicationSubmitted), events[0].Action)
	})

	s.Run("second application to the same scheme conflicts", func() {
		s.schemes.EXPECT().Get(gomock.Any(), s.scheme.ID).Return(s.scheme, nil)

		_, err := s.service.Submit(s.ctx, citizen, models.Submission{SchemeID: s.scheme.ID, Profile: farmer()})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Equal(msgDuplicate, err.Error())
	})

	s.Run("ineligible profile is refused with reasons", func() {
		s.schemes.EXPECT().Get(gomock.Any(), s.scheme.ID).Return(s.scheme, nil)
		profile := farmer()
		profile.AnnualIncome = 300000
		profile.Occupation = eligibility.OccupationStudent

		_, err := s.service.Submit(s.ctx, id.UserID(uuid.New()), models.Submission{SchemeID: s.scheme.ID, Profile: profile})
		s.True(dErrors.HasCode(err, dErrors.CodePolicyViolation))
		s.Contains(err.Error(), "Income exceeds limit of ₹2,50,000")
		s.Contains(err.Error(), "Restricted to: farmer")
	})

	s.Run("inactive scheme does not accept applications", func() {
		draft := *s.scheme
		draft.Status = schememodels.StatusDraft
		s.schemes.EXPECT().Get(gomock.Any(), draft.ID).Return(&draft, nil)

		_, err := s.service.Submit(s.ctx, id.UserID(uuid.New()), models.Submission{SchemeID: draft.ID, Profile: farmer()})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal(msgNotAccepting, err.Error())
	})

	s.Run("unknown scheme passes through not found", func() {
		missing := id.SchemeID(uuid.New())
		s.schemes.EXPECT().Get(gomock.Any(), missing).Return(nil, dErrors.New(dErrors.CodeNotFound, "scheme not found"))

		_, err := s.service.Submit(s.ctx, id.UserID(uuid.New()), models.Submission{SchemeID: missing, Profile: farmer()})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("out of range profile is a validation error", func() {
		s.schemes.EXPECT().Get(gomock.Any(), s.scheme.ID).Return(s.scheme, nil)
		profile := farmer()
		profile.Age = 130

		_, err := s.service.Submit(s.ctx, id.UserID(uuid.New()), models.Submission{SchemeID: s.scheme.ID, Profile: profile})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ServiceSuite) TestReviewGuards() {
	s.Run("unparseable status is a validation error", func() {
		app := s.seedApplication(workflow.StatusPending)
		_, err := s.service.Review(s.ctx, actor(id.RoleAdmin), app.ID, "pending", "archived", ptr("x"))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("citizen is forbidden before the application is read", func() {
		_, err := s.service.Review(s.ctx, actor(id.RolePublicUser), id.ApplicationID(uuid.New()), "pending", "under_review", ptr("x"))
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("unknown application is not found", func() {
		_, err := s.service.Review(s.ctx, actor(id.RoleAnalyst), id.ApplicationID(uuid.New()), "pending", "under_review", ptr("x"))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("stale expected status is a concurrency conflict", func() {
		app := s.seedApplication(workflow.StatusUnderReview)
		_, err := s.service.Review(s.ctx, actor(id.RoleAnalyst), app.ID, "pending", "under_review", ptr("x"))
		s.True(dErrors.HasCode(err, dErrors.CodeConcurrencyConflict))
	})

	s.Run("analyst approval is forbidden with guidance", func() {
		app := s.seedApplication(workflow.StatusUnderReview)
		_, err := s.service.Review(s.ctx, actor(id.RoleAnalyst), app.ID, "under_review", "approved", ptr("looks fine"))
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
		s.Equal("Analysts cannot grant final approval; forward to admin instead", err.Error())
	})

	s.Run("finalized application cannot move", func() {
		app := s.seedApplication(workflow.StatusRejected)
		_, err := s.service.Review(s.ctx, actor(id.RoleSuperAdmin), app.ID, "rejected", "approved", ptr("appeal"))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
		s.Equal("application already finalized", err.Error())
	})

	s.Run("notes are required when leaving pending", func() {
		app := s.seedApplication(workflow.StatusPending)
		_, err := s.service.Review(s.ctx, actor(id.RoleAnalyst), app.ID, "pending", "under_review", ptr("   "))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		stored, err := s.store.FindByID(context.Background(), app.ID)
		s.Require().NoError(err)
		s.Equal(workflow.StatusPending, stored.Status)
	})
}

func (s *ServiceSuite) TestReviewNoOp() {
	app := s.seedApplication(workflow.StatusUnderReview)

	got, err := s.service.Review(s.ctx, actor(id.RoleAnalyst), app.ID, "under_review", "under_review", nil)
	s.Require().NoError(err)
	s.Equal(app.UpdatedAt, got.UpdatedAt)
	s.Nil(got.ReviewedBy)
	s.Empty(s.auditTrail(app.ID))

	history, err := s.store.History(context.Background(), app.ID)
	s.Require().NoError(err)
	s.Empty(history)
}

func (s *ServiceSuite) TestReviewFullPath() {
	app := s.seedApplication(workflow.StatusPending)
	analyst := actor(id.RoleAnalyst)
	admin := actor(id.RoleAdmin)

	reviewed, err := s.service.Review(s.ctx, analyst, app.ID, "pending", "under_review", ptr("  documents verified "))
	s.Require().NoError(err)
	s.Equal(workflow.StatusUnderReview, reviewed.Status)
	s.Equal(analyst.UserID, *reviewed.ReviewedBy)
	s.Equal("documents verified", *reviewed.ReviewNotes)

	forwarded, err := s.service.Review(s.ctx, analyst, app.ID, "under_review", "forwarded_to_admin", ptr("recommend approval"))
	s.Require().NoError(err)
	s.Equal(workflow.StatusForwardedToAdmin, forwarded.Status)

	approved, err := s.service.Review(s.ctx, admin, app.ID, "forwarded_to_admin", "approved", nil)
	s.Require().NoError(err)
	s.Equal(workflow.StatusApproved, approved.Status)
	s.Equal(admin.UserID, *approved.ReviewedBy)
	s.Equal("recommend approval", *approved.ReviewNotes, "notes are kept when none are supplied")

	history, err := s.service.History(s.ctx, admin, app.ID)
	s.Require().NoError(err)
	s.Require().Len(history, 3)
	s.Equal(workflow.StatusPending, history[0].From)
	s.Equal(workflow.StatusApproved, history[2].To)
	s.Equal(id.RoleAdmin, history[2].ActorRole)

	events := s.auditTrail(app.ID)
	s.Require().Len(events, 3)
	for _, e := range events {
		s.Equal(string(audit.EventApplicationStatusChanged), e.Action)
	}
}

func (s *ServiceSuite) TestAdminMayApproveUnderReviewDirectly() {
	app := s.seedApplication(workflow.StatusUnderReview)

	got, err := s.service.Review(s.ctx, actor(id.RoleAdmin), app.ID, "under_review", "approved", ptr("fast track"))
	s.Require().NoError(err)
	s.Equal(workflow.StatusApproved, got.Status)
}

func (s *ServiceSuite) TestConcurrentReviewsOneWins() {
	app := s.seedApplication(workflow.StatusPending)

	result := testutil.RunConcurrent(10, func(i int) error {
		target := "under_review"
		if i%2 == 0 {
			target = "rejected"
		}
		_, err := s.service.Review(s.ctx, actor(id.RoleAnalyst), app.ID, "pending", target, ptr("decision"))
		return err
	})

	s.Equal(int32(1), result.Successes)
	s.Equal(int32(9), result.Conflicts)
	s.Zero(result.Rejected)
	s.Zero(result.Errors)

	history, err := s.store.History(context.Background(), app.ID)
	s.Require().NoError(err)
	s.Len(history, 1)
}

func (s *ServiceSuite) TestGetOwnership() {
	app := s.seedApplication(workflow.StatusPending)

	got, err := s.service.Get(s.ctx, id.Actor{UserID: app.CitizenID, Role: id.RolePublicUser}, app.ID)
	s.Require().NoError(err)
	s.Equal(app.ID, got.ID)

	_, err = s.service.Get(s.ctx, actor(id.RolePublicUser), app.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.service.Get(s.ctx, actor(id.RoleAnalyst), app.ID)
	s.NoError(err)
}

func (s *ServiceSuite) TestOptions() {
	app := s.seedApplication(workflow.StatusUnderReview)

	opts, err := s.service.Options(s.ctx, actor(id.RoleAnalyst), app.ID)
	s.Require().NoError(err)
	s.Equal(workflow.StatusUnderReview, opts.Current)
	s.Equal([]models.TransitionOption{
		{Status: workflow.StatusForwardedToAdmin, RequiresNotes: true},
		{Status: workflow.StatusRejected, RequiresNotes: true},
	}, opts.Targets)

	_, err = s.service.Options(s.ctx, actor(id.RolePublicUser), app.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *ServiceSuite) TestListingsAndStats() {
	s.seedApplication(workflow.StatusPending)
	s.seedApplication(workflow.StatusApproved)
	staff := actor(id.RoleAnalyst)

	all, err := s.service.List(s.ctx, staff, models.Filter{})
	s.Require().NoError(err)
	s.Len(all, 2)

	approved, err := s.service.List(s.ctx, staff, models.Filter{Status: workflow.StatusApproved})
	s.Require().NoError(err)
	s.Len(approved, 1)

	counts, err := s.service.Stats(s.ctx, staff)
	s.Require().NoError(err)
	s.Equal(2, counts.Total)
	s.Equal(1, counts.Pending)
	s.Equal(1, counts.Approved)

	_, err = s.service.List(s.ctx, actor(id.RolePublicUser), models.Filter{})
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	_, err = s.service.List(s.ctx, staff, models.Filter{From: &from, To: &to})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestReviewStoreConflictAtWriteTime(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := mocks.NewMockStore(ctrl)
	svc := New(st, mocks.NewMockSchemeLookup(ctrl), nil)
	appID := id.ApplicationID(uuid.New())

	st.EXPECT().FindByID(gomock.Any(), appID).
		Return(&models.Application{ID: appID, Status: workflow.StatusPending}, nil)
	st.EXPECT().Transition(gomock.Any(), appID, workflow.StatusPending, gomock.Any()).
		Return(nil, sentinel.ErrConflict)

	_, err := svc.Review(context.Background(), actor(id.RoleAnalyst), appID, "pending", "under_review", ptr("checked"))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConcurrencyConflict))
}

func TestReviewStoreFailureIsInternal(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := mocks.NewMockStore(ctrl)
	svc := New(st, mocks.NewMockSchemeLookup(ctrl), nil)
	appID := id.ApplicationID(uuid.New())

	st.EXPECT().FindByID(gomock.Any(), appID).Return(nil, assert.AnError)

	_, err := svc.Review(context.Background(), actor(id.RoleAdmin), appID, "pending", "under_review", ptr("x"))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}
