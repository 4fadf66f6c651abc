package models

import (
	"time"

	id "schemeportal/pkg/domain"
	dErrors "schemeportal/pkg/domain-errors"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

type Status string

const (
	StatusPendingReview Status = "pending_review"
	StatusApproved      Status = "approved"
	StatusRejected      Status = "rejected"
)

// ParseStatus accepts the lowercase insight statuses.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPendingReview, StatusApproved, StatusRejected:
		return Status(s), nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, "status must be one of [pending_review approved rejected]")
	}
}

// ParseDecision accepts only the two outcomes of a review.
func ParseDecision(s string) (Status, error) {
	switch Status(s) {
	case StatusApproved, StatusRejected:
		return Status(s), nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, "decision must be one of [approved rejected]")
	}
}

// IsTerminal is true once an insight has been approved or rejected.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Insight is advisory output. It is shown on dashboards only after an
// administrator approves it.
type Insight struct {
	ID             id.InsightID `json:"id"`
	Title          string       `json:"title"`
	Body           string       `json:"body"`
	Recommendation string       `json:"recommendation,omitempty"`
	MetricName     string       `json:"metric_name,omitempty"`
	Severity       Severity     `json:"severity"`
	Confidence     int          `json:"confidence"`
	Status         Status       `json:"status"`
	CreatedBy      id.UserID    `json:"created_by"`
	DecidedBy      *id.UserID   `json:"decided_by,omitempty"`
	DecisionNotes  *string      `json:"decision_notes,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	DecidedAt      *time.Time   `json:"decided_at,omitempty"`
}

// Decision is the outcome an administrator applies to a pending insight.
type Decision struct {
	To    Status
	By    id.UserID
	Notes *string
	At    time.Time
}

// Apply returns in with the decision recorded.
func (d Decision) Apply(in Insight) Insight {
	by, at := d.By, d.At
	in.Status = d.To
	in.DecidedBy = &by
	in.DecidedAt = &at
	in.DecisionNotes = d.Notes
	return in
}
