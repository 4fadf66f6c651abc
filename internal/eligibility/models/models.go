// Package models holds the citizen profile, scheme criteria and evaluation
// result types shared by the evaluator, the scheme catalog and applications.
package models

import (
	id "schemeportal/pkg/domain"
)

type Occupation string

const (
	OccupationFarmer       Occupation = "farmer"
	OccupationStudent      Occupation = "student"
	OccupationEmployed     Occupation = "employed"
	OccupationUnemployed   Occupation = "unemployed"
	OccupationEntrepreneur Occupation = "entrepreneur"
	OccupationRetired      Occupation = "retired"
)

type Residence string

const (
	ResidenceUrban Residence = "urban"
	ResidenceRural Residence = "rural"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type Category string

const (
	CategoryGeneral  Category = "general"
	CategorySC       Category = "sc"
	CategoryST       Category = "st"
	CategoryOBC      Category = "obc"
	CategoryMinority Category = "minority"
)

// Profile is the citizen's self-declared situation. It is never persisted on
// its own; applications keep a snapshot taken at submission.
type Profile struct {
	Age              int        `json:"age" validate:"gte=0,lte=120"`
	Residence        Residence  `json:"residence" validate:"required,oneof=urban rural"`
	State            string     `json:"state,omitempty" validate:"max=64"`
	AnnualIncome     float64    `json:"annual_income" validate:"gte=0"`
	Occupation       Occupation `json:"occupation" validate:"required,oneof=farmer student employed unemployed entrepreneur retired"`
	Gender           Gender     `json:"gender,omitempty" validate:"omitempty,oneof=male female other"`
	Category         Category   `json:"category,omitempty" validate:"omitempty,oneof=general sc st obc minority"`
	DisabilityStatus bool       `json:"disability_status"`
}

// Criteria are conjunctive. A nil pointer, empty set or empty gender means
// the constraint is absent.
type Criteria struct {
	MinAge             *int         `json:"min_age,omitempty" validate:"omitempty,gte=0,lte=120"`
	MaxAge             *int         `json:"max_age,omitempty" validate:"omitempty,gte=0,lte=120"`
	MaxIncome          *float64     `json:"max_income,omitempty" validate:"omitempty,gte=0"`
	AllowedOccupations []Occupation `json:"allowed_occupations,omitempty" validate:"omitempty,max=10,dive,oneof=farmer student employed unemployed entrepreneur retired"`
	ResidenceType      []Residence  `json:"residence_type,omitempty" validate:"omitempty,max=10,dive,oneof=urban rural"`
	GenderSpecific     Gender       `json:"gender_specific,omitempty" validate:"omitempty,oneof=male female"`
	RequiresDisability bool         `json:"requires_disability,omitempty"`
}

// IsEmpty reports whether no constraint is set.
func (c Criteria) IsEmpty() bool {
	return c.MinAge == nil && c.MaxAge == nil && c.MaxIncome == nil &&
		len(c.AllowedOccupations) == 0 && len(c.ResidenceType) == 0 &&
		c.GenderSpecific == "" && !c.RequiresDisability
}

// Kind names one constraint. Findings are always reported in KindOrder.
type Kind string

const (
	KindAgeMin     Kind = "age_min"
	KindAgeMax     Kind = "age_max"
	KindIncome     Kind = "income"
	KindResidence  Kind = "residence"
	KindOccupation Kind = "occupation"
	KindGender     Kind = "gender"
	KindDisability Kind = "disability"
)

// KindOrder is the fixed check order.
var KindOrder = []Kind{
	KindAgeMin, KindAgeMax, KindIncome, KindResidence, KindOccupation, KindGender, KindDisability,
}

// Finding describes one failed constraint at full precision. Limit holds the
// criterion value (int, float64, []Residence, []Occupation, Gender or bool)
// and Actual the profile value.
type Finding struct {
	Kind   Kind `json:"kind"`
	Limit  any  `json:"limit"`
	Actual any  `json:"actual"`
}

type Status string

const (
	StatusEligible    Status = "eligible"
	StatusNotEligible Status = "not_eligible"
)

// SchemeRef is the part of a scheme the evaluator needs.
type SchemeRef struct {
	ID       id.SchemeID
	Name     string
	Criteria Criteria
}

// Result is the verdict for one scheme. Reasons stays empty until a
// Formatter renders the findings.
type Result struct {
	SchemeID   id.SchemeID `json:"scheme_id"`
	SchemeName string      `json:"scheme_name"`
	Status     Status      `json:"status"`
	Findings   []Finding   `json:"findings"`
	Reasons    []string    `json:"reasons"`
}

// Eligible reports whether no constraint failed.
func (r Result) Eligible() bool {
	return r.Status == StatusEligible
}
