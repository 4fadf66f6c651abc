package models

import (
	"strings"

	eligibility "schemeportal/internal/eligibility/models"
	pstrings "schemeportal/pkg/platform/strings"
	"schemeportal/pkg/validation"
)

type CreateRequest struct {
	Name          string               `json:"name" validate:"notblank,max=200"`
	Ministry      string               `json:"ministry" validate:"notblank,max=200"`
	Description   string               `json:"description" validate:"max=5000"`
	Benefits      []string             `json:"benefits" validate:"max=20,dive,notblank,max=500"`
	Criteria      eligibility.Criteria `json:"eligibility_criteria"`
	BenefitAmount *float64             `json:"benefit_amount,omitempty" validate:"omitempty,gte=0"`
	Status        string               `json:"status,omitempty" validate:"omitempty,oneof=draft active inactive"`
}

func (r *CreateRequest) Sanitize() {
	pstrings.TrimStrings(&r.Name, &r.Ministry, &r.Description, &r.Status)
	r.Benefits = pstrings.DedupeAndTrim(r.Benefits)
	normalizeCriteria(&r.Criteria)
}

func (r *CreateRequest) Validate() error {
	return validation.Validate(r)
}

type UpdateRequest struct {
	Name          *string               `json:"name,omitempty" validate:"omitempty,notblank,max=200"`
	Ministry      *string               `json:"ministry,omitempty" validate:"omitempty,notblank,max=200"`
	Description   *string               `json:"description,omitempty" validate:"omitempty,max=5000"`
	Benefits      *[]string             `json:"benefits,omitempty" validate:"omitempty,max=20,dive,notblank,max=500"`
	Criteria      *eligibility.Criteria `json:"eligibility_criteria,omitempty"`
	BenefitAmount *float64              `json:"benefit_amount,omitempty" validate:"omitempty,gte=0"`
}

func (r *UpdateRequest) Sanitize() {
	r.Name = pstrings.TrimSpacePtr(r.Name)
	r.Ministry = pstrings.TrimSpacePtr(r.Ministry)
	r.Description = pstrings.TrimSpacePtr(r.Description)
	if r.Benefits != nil {
		cleaned := pstrings.DedupeAndTrim(*r.Benefits)
		r.Benefits = &cleaned
	}
	if r.Criteria != nil {
		normalizeCriteria(r.Criteria)
	}
}

func (r *UpdateRequest) Validate() error {
	return validation.Validate(r)
}

// ToUpdate converts the request into a partial update; nil fields are left unchanged.
func (r *UpdateRequest) ToUpdate() Update {
	return Update{
		Name:          r.Name,
		Ministry:      r.Ministry,
		Description:   r.Description,
		Benefits:      r.Benefits,
		Criteria:      r.Criteria,
		BenefitAmount: r.BenefitAmount,
	}
}

type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft active inactive"`
}

func (r *StatusRequest) Sanitize() {
	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
}

func (r *StatusRequest) Validate() error {
	return validation.Validate(r)
}

// normalizeCriteria lower-cases and dedupes set members so membership checks
// compare canonical values.
func normalizeCriteria(c *eligibility.Criteria) {
	c.GenderSpecific = eligibility.Gender(strings.ToLower(strings.TrimSpace(string(c.GenderSpecific))))

	if c.ResidenceType != nil {
		raw := make([]string, len(c.ResidenceType))
		for i, r := range c.ResidenceType {
			raw[i] = string(r)
		}
		cleaned := pstrings.DedupeAndTrimLower(raw)
		c.ResidenceType = make([]eligibility.Residence, len(cleaned))
		for i, r := range cleaned {
			c.ResidenceType[i] = eligibility.Residence(r)
		}
	}
	if c.AllowedOccupations != nil {
		raw := make([]string, len(c.AllowedOccupations))
		for i, o := range c.AllowedOccupations {
			raw[i] = string(o)
		}
		cleaned := pstrings.DedupeAndTrimLower(raw)
		c.AllowedOccupations = make([]eligibility.Occupation, len(cleaned))
		for i, o := range cleaned {
			c.AllowedOccupations[i] = eligibility.Occupation(o)
		}
	}
}
