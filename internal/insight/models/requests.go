package models

import (
	"strings"

	pstrings "schemeportal/pkg/platform/strings"
	"schemeportal/pkg/platform/validation"
	pkgvalidation "schemeportal/pkg/validation"
)

type RecordRequest struct {
	Title          string `json:"title" validate:"notblank"`
	Body           string `json:"body" validate:"notblank"`
	Recommendation string `json:"recommendation"`
	MetricName     string `json:"metric_name" validate:"max=100"`
	Severity       string `json:"severity" validate:"required,oneof=low medium high critical"`
	Confidence     *int   `json:"confidence" validate:"required,gte=0,lte=100"`
}

func (r *RecordRequest) Sanitize() {
	pstrings.TrimStrings(&r.Title, &r.Body, &r.Recommendation, &r.MetricName, &r.Severity)
}

func (r *RecordRequest) Normalize() {
	r.Severity = strings.ToLower(r.Severity)
}

func (r *RecordRequest) Validate() error {
	if err := validation.CheckStringLength("title", r.Title, validation.MaxInsightTitleLength); err != nil {
		return err
	}
	if err := validation.CheckStringLength("body", r.Body, validation.MaxInsightBodyLength); err != nil {
		return err
	}
	if err := validation.CheckStringLength("recommendation", r.Recommendation, validation.MaxInsightBodyLength); err != nil {
		return err
	}
	return pkgvalidation.Validate(r)
}

type DecisionRequest struct {
	Decision string  `json:"decision" validate:"required,oneof=approved rejected"`
	Notes    *string `json:"notes,omitempty"`
}

func (r *DecisionRequest) Sanitize() {
	r.Decision = strings.ToLower(strings.TrimSpace(r.Decision))
	r.Notes = pstrings.TrimSpacePtr(r.Notes)
}

func (r *DecisionRequest) Validate() error {
	if r.Notes != nil {
		if err := validation.CheckStringLength("notes", *r.Notes, validation.MaxNotesLength); err != nil {
			return err
		}
	}
	return pkgvalidation.Validate(r)
}
