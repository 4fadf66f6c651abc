package models

import (
	"time"

	eligibility "schemeportal/internal/eligibility/models"
	id "schemeportal/pkg/domain"
	dErrors "schemeportal/pkg/domain-errors"
)

type Status string

const (
	StatusDraft    Status = "draft"
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// ParseStatus accepts draft, active and inactive.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusDraft, StatusActive, StatusInactive:
		return Status(s), nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, "status must be one of [draft active inactive]")
	}
}

// Scheme is a government benefit programme citizens can apply to.
type Scheme struct {
	ID            id.SchemeID          `json:"id"`
	Name          string               `json:"name"`
	Ministry      string               `json:"ministry"`
	Description   string               `json:"description"`
	Benefits      []string             `json:"benefits"`
	Criteria      eligibility.Criteria `json:"eligibility_criteria"`
	BenefitAmount *float64             `json:"benefit_amount,omitempty"`
	Status        Status               `json:"status"`
	CreatedBy     id.UserID            `json:"created_by"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// IsActive reports whether citizens may see and apply to the scheme.
func (s *Scheme) IsActive() bool {
	return s.Status == StatusActive
}

// Ref is the evaluator's view of the scheme.
func (s *Scheme) Ref() eligibility.SchemeRef {
	return eligibility.SchemeRef{ID: s.ID, Name: s.Name, Criteria: s.Criteria}
}

// Refs converts a catalog listing for evaluation.
func Refs(schemes []*Scheme) []eligibility.SchemeRef {
	refs := make([]eligibility.SchemeRef, 0, len(schemes))
	for _, s := range schemes {
		refs = append(refs, s.Ref())
	}
	return refs
}

// ApplicationCounts summarises applications referencing a scheme.
type ApplicationCounts struct {
	Total       int `json:"total"`
	Pending     int `json:"pending"`
	UnderReview int `json:"under_review"`
	Forwarded   int `json:"forwarded_to_admin"`
	Approved    int `json:"approved"`
	Rejected    int `json:"rejected"`
}

// WithStats is the admin listing row.
type WithStats struct {
	*Scheme
	Applications ApplicationCounts `json:"applications"`
}

// Update is a partial update: nil fields are left unchanged.
type Update struct {
	Name          *string
	Ministry      *string
	Description   *string
	Benefits      *[]string
	Criteria      *eligibility.Criteria
	BenefitAmount *float64
}

// Apply copies set fields onto s.
func (u Update) Apply(s *Scheme) {
	if u.Name != nil {
		s.Name = *u.Name
	}
	if u.Ministry != nil {
		s.Ministry = *u.Ministry
	}
	if u.Description != nil {
		s.Description = *u.Description
	}
	if u.Benefits != nil {
		s.Benefits = *u.Benefits
	}
	if u.Criteria != nil {
		s.Criteria = *u.Criteria
	}
	if u.BenefitAmount != nil {
		s.BenefitAmount = u.BenefitAmount
	}
}
