package models

import (
	"strings"

	eligibility "schemeportal/internal/eligibility/models"
	id "schemeportal/pkg/domain"
	pstrings "schemeportal/pkg/platform/strings"
	"schemeportal/pkg/validation"
)

type SubmitRequest struct {
	SchemeID string                    `json:"scheme_id" validate:"required,uuid"`
	Profile  *eligibility.ProfileInput `json:"profile" validate:"required"`
	Extra    map[string]any            `json:"extra,omitempty" validate:"max=50"`
}

func (r *SubmitRequest) Normalize() {
	r.SchemeID = strings.ToLower(strings.TrimSpace(r.SchemeID))
	if r.Profile != nil {
		r.Profile.Normalize()
	}
}

func (r *SubmitRequest) Validate() error {
	return validation.Validate(r)
}

// ToSubmission must only be called after Validate succeeded.
func (r *SubmitRequest) ToSubmission() (Submission, error) {
	schemeID, err := id.ParseSchemeID(r.SchemeID)
	if err != nil {
		return Submission{}, err
	}
	return Submission{
		SchemeID: schemeID,
		Profile:  r.Profile.ToProfile(),
		Extra:    r.Extra,
	}, nil
}

// ReviewRequest moves an application. ExpectedStatus is the status the
// reviewer saw; a stale value is refused.
type ReviewRequest struct {
	ExpectedStatus string  `json:"expected_status" validate:"required"`
	Status         string  `json:"status" validate:"required"`
	ReviewNotes    *string `json:"review_notes,omitempty" validate:"omitempty,max=4000"`
}

func (r *ReviewRequest) Sanitize() {
	pstrings.TrimStrings(&r.ExpectedStatus, &r.Status)
	r.ReviewNotes = pstrings.TrimSpacePtr(r.ReviewNotes)
}

func (r *ReviewRequest) Normalize() {
	r.ExpectedStatus = strings.ToLower(r.ExpectedStatus)
	r.Status = strings.ToLower(r.Status)
}

func (r *ReviewRequest) Validate() error {
	return validation.Validate(r)
}
