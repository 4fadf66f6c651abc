package eligibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"schemeportal/internal/eligibility/models"
)

func TestFormatter_ReasonTexts(t *testing.T) {
	f := NewFormatter(DefaultLocale)

	tests := []struct {
		finding models.Finding
		want    string
	}{
		{models.Finding{Kind: models.KindAgeMin, Limit: 18, Actual: 17}, "Minimum age is 18 (You are 17)"},
		{models.Finding{Kind: models.KindAgeMax, Limit: 40, Actual: 41}, "Maximum age is 40 (You are 41)"},
		{models.Finding{Kind: models.KindIncome, Limit: 250000.0, Actual: 300000.0}, "Income exceeds limit of ₹2,50,000"},
		{models.Finding{Kind: models.KindResidence, Limit: []models.Residence{"rural", "urban"}, Actual: models.Residence("urban")}, "Scheme is for rural or urban residents only"},
		{models.Finding{Kind: models.KindOccupation, Limit: []models.Occupation{"farmer", "student"}, Actual: models.Occupation("retired")}, "Restricted to: farmer, student"},
		{models.Finding{Kind: models.KindGender, Limit: models.GenderFemale, Actual: models.GenderMale}, "Only for female applicants"},
		{models.Finding{Kind: models.KindDisability, Limit: true, Actual: false}, "Requires disability certificate"},
	}

	for _, tt := range tests {
		t.Run(string(tt.finding.Kind), func(t *testing.T) {
			assert.Equal(t, tt.want, f.Reason(tt.finding))
		})
	}
}

func TestFormatter_IncomeUsesLocaleGrouping(t *testing.T) {
	finding := models.Finding{Kind: models.KindIncome, Limit: 250000.0}

	assert.Equal(t, "Income exceeds limit of ₹250,000", NewFormatter(language.AmericanEnglish).Reason(finding))
}

func TestFormatter_EligibleHasSingleAffirmation(t *testing.T) {
	f := NewFormatter(DefaultLocale)
	r := models.Result{Status: models.StatusEligible}

	assert.Equal(t, []string{"You meet all basic criteria."}, f.Reasons(r))
}

func TestFormatter_RenderKeepsFindingOrder(t *testing.T) {
	f := NewFormatter(DefaultLocale)
	p := models.Profile{Age: 16, Residence: models.ResidenceUrban, Occupation: models.OccupationStudent}
	results := Evaluate(p, []models.SchemeRef{
		scheme("youth", models.Criteria{MinAge: intPtr(18), ResidenceType: []models.Residence{models.ResidenceRural}}),
		scheme("open", models.Criteria{}),
	})

	rendered := f.Render(results)

	require.Len(t, rendered, 2)
	assert.Equal(t, []string{"Minimum age is 18 (You are 16)", "Scheme is for rural residents only"}, rendered[0].Reasons)
	assert.Equal(t, []string{"You meet all basic criteria."}, rendered[1].Reasons)
	assert.Empty(t, results[0].Reasons, "input results are not mutated")
}
