package testutil

import (
	"time"

	"github.com/google/uuid"

	appmodels "schemeportal/internal/application/models"
	eligibility "schemeportal/internal/eligibility/models"
	insightmodels "schemeportal/internal/insight/models"
	schememodels "schemeportal/internal/scheme/models"
	staffmodels "schemeportal/internal/staff/models"
	"schemeportal/internal/workflow"
	id "schemeportal/pkg/domain"
)

// TestIDs provides convenient pre-generated IDs for tests.
// Use these for deterministic test data.
var TestIDs = struct {
	CitizenID1 id.UserID
	CitizenID2 id.UserID
	AnalystID  id.UserID
	AdminID    id.UserID
	SchemeID1  id.SchemeID
	SchemeID2  id.SchemeID
}{
	CitizenID1: id.UserID(uuid.MustParse("11111111-1111-1111-1111-111111111111")),
	CitizenID2: id.UserID(uuid.MustParse("22222222-2222-2222-2222-222222222222")),
	AnalystID:  id.UserID(uuid.MustParse("aaaa0000-0000-0000-0000-000000000001")),
	AdminID:    id.UserID(uuid.MustParse("aaaa0000-0000-0000-0000-000000000002")),
	SchemeID1:  id.SchemeID(uuid.MustParse("cccc0000-0000-0000-0000-000000000001")),
	SchemeID2:  id.SchemeID(uuid.MustParse("cccc0000-0000-0000-0000-000000000002")),
}

// NewTestProfile returns an adult urban employee with no special status.
func NewTestProfile() eligibility.Profile {
	return eligibility.Profile{
		Age:          35,
		Residence:    eligibility.ResidenceUrban,
		State:        "Karnataka",
		AnnualIncome: 180000,
		Occupation:   eligibility.OccupationEmployed,
		Gender:       eligibility.GenderFemale,
		Category:     eligibility.CategoryGeneral,
	}
}

// SchemeBuilder provides a fluent interface for building test schemes.
type SchemeBuilder struct {
	scheme *schememodels.Scheme
}

// NewSchemeBuilder creates an active scheme with no eligibility constraints.
func NewSchemeBuilder() *SchemeBuilder {
	now := time.Now()
	return &SchemeBuilder{
		scheme: &schememodels.Scheme{
			ID:          id.SchemeID(uuid.New()),
			Name:        "Test Scheme",
			Ministry:    "Test Ministry",
			Description: "test scheme",
			Benefits:    []string{"test benefit"},
			Status:      schememodels.StatusActive,
			CreatedBy:   TestIDs.AdminID,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
}

func (b *SchemeBuilder) WithID(schemeID id.SchemeID) *SchemeBuilder {
	b.scheme.ID = schemeID
	return b
}

func (b *SchemeBuilder) WithName(name string) *SchemeBuilder {
	b.scheme.Name = name
	return b
}

func (b *SchemeBuilder) WithCriteria(c eligibility.Criteria) *SchemeBuilder {
	b.scheme.Criteria = c
	return b
}

func (b *SchemeBuilder) WithStatus(status schememodels.Status) *SchemeBuilder {
	b.scheme.Status = status
	return b
}

func (b *SchemeBuilder) WithBenefitAmount(amount float64) *SchemeBuilder {
	b.scheme.BenefitAmount = &amount
	return b
}

func (b *SchemeBuilder) CreatedAt(t time.Time) *SchemeBuilder {
	b.scheme.CreatedAt = t
	b.scheme.UpdatedAt = t
	return b
}

func (b *SchemeBuilder) Build() *schememodels.Scheme {
	return b.scheme
}

// ApplicationBuilder provides a fluent interface for building test applications.
type ApplicationBuilder struct {
	app *appmodels.Application
}

// NewApplicationBuilder creates a pending application by TestIDs.CitizenID1
// for TestIDs.SchemeID1.
func NewApplicationBuilder() *ApplicationBuilder {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &ApplicationBuilder{
		app: &appmodels.Application{
			ID:          id.ApplicationID(uuid.New()),
			SchemeID:    TestIDs.SchemeID1,
			CitizenID:   TestIDs.CitizenID1,
			Data:        appmodels.Data{Profile: NewTestProfile()},
			Status:      workflow.StatusPending,
			SubmittedAt: now,
			UpdatedAt:   now,
		},
	}
}

func (b *ApplicationBuilder) WithID(applicationID id.ApplicationID) *ApplicationBuilder {
	b.app.ID = applicationID
	return b
}

func (b *ApplicationBuilder) WithScheme(schemeID id.SchemeID) *ApplicationBuilder {
	b.app.SchemeID = schemeID
	return b
}

func (b *ApplicationBuilder) WithCitizen(citizenID id.UserID) *ApplicationBuilder {
	b.app.CitizenID = citizenID
	return b
}

func (b *ApplicationBuilder) WithProfile(p eligibility.Profile) *ApplicationBuilder {
	b.app.Data.Profile = p
	return b
}

func (b *ApplicationBuilder) WithStatus(status workflow.Status) *ApplicationBuilder {
	b.app.Status = status
	return b
}

func (b *ApplicationBuilder) SubmittedAt(t time.Time) *ApplicationBuilder {
	b.app.SubmittedAt = t
	b.app.UpdatedAt = t
	return b
}

func (b *ApplicationBuilder) Build() *appmodels.Application {
	return b.app
}

// Quick helper functions for simple test cases

// NewTestScheme creates an active, unconstrained scheme with the given ID.
func NewTestScheme(schemeID id.SchemeID) *schememodels.Scheme {
	return NewSchemeBuilder().WithID(schemeID).Build()
}

// NewTestApplication creates a pending application for the given pair.
func NewTestApplication(citizenID id.UserID, schemeID id.SchemeID) *appmodels.Application {
	return NewApplicationBuilder().
		WithCitizen(citizenID).
		WithScheme(schemeID).
		Build()
}

// NewTestMember creates an active staff member. The email is derived from
// the user ID so members never collide.
func NewTestMember(userID id.UserID, role id.Role) *staffmodels.Member {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &staffmodels.Member{
		UserID:    userID,
		Email:     userID.String() + "@portal.test",
		FullName:  "Test " + string(role),
		Role:      role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTestInsight creates a pending insight raised by createdBy.
func NewTestInsight(createdBy id.UserID) *insightmodels.Insight {
	return &insightmodels.Insight{
		ID:         id.InsightID(uuid.New()),
		Title:      "Test insight",
		Body:       "Applications rose week over week.",
		MetricName: "applications_total",
		Severity:   insightmodels.SeverityMedium,
		Confidence: 70,
		Status:     insightmodels.StatusPendingReview,
		CreatedBy:  createdBy,
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
}
