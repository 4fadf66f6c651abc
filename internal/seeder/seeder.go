package seeder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	eligibility "schemeportal/internal/eligibility/models"
	insightmodels "schemeportal/internal/insight/models"
	schememodels "schemeportal/internal/scheme/models"
	staffmodels "schemeportal/internal/staff/models"
	id "schemeportal/pkg/domain"
)

// Fixed identities for local development. Mint tokens for them with
// `tokengen access -user-id <id>`.
var (
	DemoSuperAdminID = id.UserID(uuid.MustParse("00000000-0000-4000-8000-000000000001"))
	DemoAdminID      = id.UserID(uuid.MustParse("00000000-0000-4000-8000-000000000002"))
	DemoAnalystID    = id.UserID(uuid.MustParse("00000000-0000-4000-8000-000000000003"))
)

type SchemeStore interface {
	Create(ctx context.Context, scheme *schememodels.Scheme) error
}

type StaffStore interface {
	Upsert(ctx context.Context, member *staffmodels.Member) error
}

type InsightStore interface {
	Create(ctx context.Context, insight *insightmodels.Insight) error
}

// Seeder populates in-memory stores with demo data.
type Seeder struct {
	schemes  SchemeStore
	staff    StaffStore
	insights InsightStore
	logger   *slog.Logger
}

// New returns a seeder writing into the given stores.
func New(schemes SchemeStore, staff StaffStore, insights InsightStore, logger *slog.Logger) *Seeder {
	return &Seeder{
		schemes:  schemes,
		staff:    staff,
		insights: insights,
		logger:   logger,
	}
}

// SeedAll inserts the demo staff, schemes and insights and logs the staff ids
// tokengen mints tokens for.
func (s *Seeder) SeedAll(ctx context.Context) error {
	s.logger.Info("seeding demo data...")

	if err := s.seedStaff(ctx); err != nil {
		return fmt.Errorf("failed to seed staff: %w", err)
	}
	count, err := s.seedSchemes(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed schemes: %w", err)
	}
	if err := s.seedInsights(ctx); err != nil {
		return fmt.Errorf("failed to seed insights: %w", err)
	}

	s.logger.Info("demo data seeded successfully",
		"schemes", count,
		"super_admin_id", DemoSuperAdminID.String(),
		"admin_id", DemoAdminID.String(),
		"analyst_id", DemoAnalystID.String(),
	)
	return nil
}

func (s *Seeder) seedStaff(ctx context.Context) error {
	now := time.Now()
	members := []staffmodels.Member{
		{UserID: DemoSuperAdminID, Email: "superadmin@portal.gov.in", FullName: "Meera Iyer", Role: id.RoleSuperAdmin},
		{UserID: DemoAdminID, Email: "admin@portal.gov.in", FullName: "Arjun Rao", Role: id.RoleAdmin},
		{UserID: DemoAnalystID, Email: "analyst@portal.gov.in", FullName: "Kavya Nair", Role: id.RoleAnalyst},
	}
	for _, m := range members {
		m.IsActive = true
		m.CreatedAt = now
		m.UpdatedAt = now
		if err := s.staff.Upsert(ctx, &m); err != nil {
			return err
		}
	}
	return nil
}

func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }

func (s *Seeder) seedSchemes(ctx context.Context) (int, error) {
	now := time.Now()
	demo := []struct {
		name, ministry, description string
		benefits                    []string
		criteria                    eligibility.Criteria
		amount                      *float64
		status                      schememodels.Status
		age                         time.Duration
	}{
		{
			name:        "PM-KISAN Samman Nidhi",
			ministry:    "Ministry of Agriculture and Farmers Welfare",
			description: "Income support for landholding farmer families.",
			benefits:    []string{"₹6,000 per year in three instalments"},
			criteria: eligibility.Criteria{
				MinAge:             intPtr(18),
				AllowedOccupations: []eligibility.Occupation{eligibility.OccupationFarmer},
			},
			amount: floatPtr(6000),
			status: schememodels.StatusActive,
			age:    72 * time.Hour,
		},
		{
			name:        "Indira Gandhi National Old Age Pension",
			ministry:    "Ministry of Rural Development",
			description: "Monthly pension for senior citizens below the poverty line.",
			benefits:    []string{"Monthly pension credited to bank account"},
			criteria: eligibility.Criteria{
				MinAge:    intPtr(60),
				MaxIncome: floatPtr(100000),
			},
			amount: floatPtr(3000),
			status: schememodels.StatusActive,
			age:    48 * time.Hour,
		},
		{
			name:        "Post-Matric Scholarship",
			ministry:    "Ministry of Social Justice and Empowerment",
			description: "Scholarship for students pursuing post-matriculation studies.",
			benefits:    []string{"Tuition fee reimbursement", "Monthly maintenance allowance"},
			criteria: eligibility.Criteria{
				MaxAge:             intPtr(30),
				MaxIncome:          floatPtr(250000),
				AllowedOccupations: []eligibility.Occupation{eligibility.OccupationStudent},
			},
			status: schememodels.StatusActive,
			age:    24 * time.Hour,
		},
		{
			name:        "Stand-Up India",
			ministry:    "Ministry of Finance",
			description: "Bank loans for women entrepreneurs setting up greenfield enterprises.",
			benefits:    []string{"Loans between ₹10 lakh and ₹1 crore"},
			criteria: eligibility.Criteria{
				MinAge:             intPtr(18),
				AllowedOccupations: []eligibility.Occupation{eligibility.OccupationEntrepreneur},
				GenderSpecific:     eligibility.GenderFemale,
			},
			status: schememodels.StatusActive,
			age:    12 * time.Hour,
		},
		{
			name:        "ADIP Assistive Devices",
			ministry:    "Ministry of Social Justice and Empowerment",
			description: "Aids and appliances for persons with disabilities.",
			benefits:    []string{"Free assistive devices"},
			criteria: eligibility.Criteria{
				MaxIncome:          floatPtr(270000),
				ResidenceType:      []eligibility.Residence{eligibility.ResidenceRural, eligibility.ResidenceUrban},
				RequiresDisability: true,
			},
			status: schememodels.StatusDraft,
			age:    6 * time.Hour,
		},
	}

	for _, d := range demo {
		createdAt := now.Add(-d.age)
		scheme := &schememodels.Scheme{
			ID:            id.SchemeID(uuid.New()),
			Name:          d.name,
			Ministry:      d.ministry,
			Description:   d.description,
			Benefits:      d.benefits,
			Criteria:      d.criteria,
			BenefitAmount: d.amount,
			Status:        d.status,
			CreatedBy:     DemoAdminID,
			CreatedAt:     createdAt,
			UpdatedAt:     createdAt,
		}
		if err := s.schemes.Create(ctx, scheme); err != nil {
			return 0, err
		}
	}
	return len(demo), nil
}

func (s *Seeder) seedInsights(ctx context.Context) error {
	now := time.Now()
	decidedBy := DemoAdminID
	decidedAt := now.Add(-time.Hour)
	notes := "Matches the district field reports."

	insights := []*insightmodels.Insight{
		{
			ID:             id.InsightID(uuid.New()),
			Title:          "Pension applications concentrated in three districts",
			Body:           "Over 60% of old age pension applications this month come from three districts.",
			Recommendation: "Schedule additional verification camps in the remaining districts.",
			MetricName:     "applications_by_district",
			Severity:       insightmodels.SeverityMedium,
			Confidence:     78,
			Status:         insightmodels.StatusApproved,
			CreatedBy:      DemoAnalystID,
			DecidedBy:      &decidedBy,
			DecisionNotes:  &notes,
			CreatedAt:      now.Add(-3 * time.Hour),
			DecidedAt:      &decidedAt,
		},
		{
			ID:         id.InsightID(uuid.New()),
			Title:      "Scholarship rejections rising",
			Body:       "Rejections for the post-matric scholarship rose 22% week over week.",
			MetricName: "rejection_rate",
			Severity:   insightmodels.SeverityHigh,
			Confidence: 64,
			Status:     insightmodels.StatusPendingReview,
			CreatedBy:  DemoAnalystID,
			CreatedAt:  now.Add(-30 * time.Minute),
		},
	}
	for _, in := range insights {
		if err := s.insights.Create(ctx, in); err != nil {
			return err
		}
	}
	return nil
}
