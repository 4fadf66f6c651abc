// Package eligibility decides whether a citizen profile satisfies scheme
// criteria. Evaluation is pure: no I/O, no clock, no formatting.
package eligibility

import (
	"slices"

	"schemeportal/internal/eligibility/models"
)

// Evaluate returns one result per scheme in input order.
func Evaluate(profile models.Profile, schemes []models.SchemeRef) []models.Result {
	results := make([]models.Result, 0, len(schemes))
	for _, s := range schemes {
		results = append(results, EvaluateOne(profile, s))
	}
	return results
}

// EvaluateOne checks every constraint in models.KindOrder without stopping at
// the first failure.
func EvaluateOne(profile models.Profile, scheme models.SchemeRef) models.Result {
	findings := check(profile, scheme.Criteria)

	status := models.StatusEligible
	if len(findings) > 0 {
		status = models.StatusNotEligible
	}
	return models.Result{
		SchemeID:   scheme.ID,
		SchemeName: scheme.Name,
		Status:     status,
		Findings:   findings,
	}
}

func check(p models.Profile, c models.Criteria) []models.Finding {
	var findings []models.Finding
	fail := func(kind models.Kind, limit, actual any) {
		findings = append(findings, models.Finding{Kind: kind, Limit: limit, Actual: actual})
	}

	// Boundaries are inclusive: age == min_age and age == max_age are eligible.
	if c.MinAge != nil && p.Age < *c.MinAge {
		fail(models.KindAgeMin, *c.MinAge, p.Age)
	}
	if c.MaxAge != nil && p.Age > *c.MaxAge {
		fail(models.KindAgeMax, *c.MaxAge, p.Age)
	}
	if c.MaxIncome != nil && p.AnnualIncome > *c.MaxIncome {
		fail(models.KindIncome, *c.MaxIncome, p.AnnualIncome)
	}
	if len(c.ResidenceType) > 0 && !slices.Contains(c.ResidenceType, p.Residence) {
		fail(models.KindResidence, slices.Clone(c.ResidenceType), p.Residence)
	}
	if len(c.AllowedOccupations) > 0 && !slices.Contains(c.AllowedOccupations, p.Occupation) {
		fail(models.KindOccupation, slices.Clone(c.AllowedOccupations), p.Occupation)
	}
	// An undeclared gender never fails a gender-specific scheme.
	if c.GenderSpecific != "" && p.Gender != "" && p.Gender != c.GenderSpecific {
		fail(models.KindGender, c.GenderSpecific, p.Gender)
	}
	if c.RequiresDisability && !p.DisabilityStatus {
		fail(models.KindDisability, true, false)
	}
	return findings
}
