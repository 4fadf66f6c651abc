package eligibility

import (
	"schemeportal/internal/eligibility/models"
	dErrors "schemeportal/pkg/domain-errors"
	"schemeportal/pkg/validation"
)

// ValidateProfile rejects out-of-range numbers and unknown enum values.
func ValidateProfile(p models.Profile) error {
	return validation.Validate(p)
}

// ValidateCriteria rejects negative limits, unknown set members and an
// inverted age range. These are data-integrity errors in scheme definitions.
func ValidateCriteria(c models.Criteria) error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if c.MinAge != nil && c.MaxAge != nil && *c.MinAge > *c.MaxAge {
		return dErrors.New(dErrors.CodeValidation, "min_age must not exceed max_age")
	}
	return nil
}
