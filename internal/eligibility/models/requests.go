package models

import (
	"strings"

	"schemeportal/pkg/validation"
)

// ProfileInput is the wire form of Profile. Pointers let validation tell a
// missing age or income apart from zero.
type ProfileInput struct {
	Age              *int       `json:"age" validate:"required,gte=0,lte=120"`
	Residence        Residence  `json:"residence" validate:"required,oneof=urban rural"`
	State            string     `json:"state,omitempty" validate:"max=64"`
	AnnualIncome     *float64   `json:"annual_income" validate:"required,gte=0"`
	Occupation       Occupation `json:"occupation" validate:"required,oneof=farmer student employed unemployed entrepreneur retired"`
	Gender           Gender     `json:"gender,omitempty" validate:"omitempty,oneof=male female other"`
	Category         Category   `json:"category,omitempty" validate:"omitempty,oneof=general sc st obc minority"`
	DisabilityStatus bool       `json:"disability_status"`
}

func (p *ProfileInput) Normalize() {
	p.Residence = Residence(strings.ToLower(strings.TrimSpace(string(p.Residence))))
	p.Occupation = Occupation(strings.ToLower(strings.TrimSpace(string(p.Occupation))))
	p.Gender = Gender(strings.ToLower(strings.TrimSpace(string(p.Gender))))
	p.Category = Category(strings.ToLower(strings.TrimSpace(string(p.Category))))
	p.State = strings.TrimSpace(p.State)
}

func (p *ProfileInput) Validate() error {
	return validation.Validate(p)
}

// ToProfile must only be called after Validate succeeded.
func (p *ProfileInput) ToProfile() Profile {
	return Profile{
		Age:              *p.Age,
		Residence:        p.Residence,
		State:            p.State,
		AnnualIncome:     *p.AnnualIncome,
		Occupation:       p.Occupation,
		Gender:           p.Gender,
		Category:         p.Category,
		DisabilityStatus: p.DisabilityStatus,
	}
}

// CheckRequest asks which active schemes a profile qualifies for. An empty
// SchemeIDs list means every active scheme.
type CheckRequest struct {
	Profile   *ProfileInput `json:"profile" validate:"required"`
	SchemeIDs []string      `json:"scheme_ids,omitempty" validate:"omitempty,max=100,dive,uuid"`
}

func (r *CheckRequest) Normalize() {
	if r.Profile != nil {
		r.Profile.Normalize()
	}
	for i, s := range r.SchemeIDs {
		r.SchemeIDs[i] = strings.ToLower(strings.TrimSpace(s))
	}
}

func (r *CheckRequest) Validate() error {
	return validation.Validate(r)
}
