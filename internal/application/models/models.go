package models

import (
	"time"

	eligibility "schemeportal/internal/eligibility/models"
	"schemeportal/internal/workflow"
	id "schemeportal/pkg/domain"
)

// Application is a citizen's request to enrol in one scheme. It is created
// pending and changes only through a workflow transition. Records are never
// deleted.
type Application struct {
	ID          id.ApplicationID `json:"id"`
	SchemeID    id.SchemeID      `json:"scheme_id"`
	CitizenID   id.UserID        `json:"citizen_id"`
	Data        Data             `json:"application_data"`
	Status      workflow.Status  `json:"status"`
	ReviewedBy  *id.UserID       `json:"reviewed_by,omitempty"`
	ReviewNotes *string          `json:"review_notes,omitempty"`
	SubmittedAt time.Time        `json:"submitted_at"`
	ReviewedAt  *time.Time       `json:"reviewed_at,omitempty"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// Data is captured at submission and never re-derived.
type Data struct {
	Profile eligibility.Profile `json:"profile"`
	Extra   map[string]any      `json:"extra,omitempty"`
}

// Review is the change a workflow transition applies. Nil Notes keeps the
// stored notes.
type Review struct {
	To        workflow.Status
	ActorID   id.UserID
	ActorRole id.Role
	Notes     *string
	At        time.Time
}

// Apply writes the review onto a copy of a and returns it.
func (r Review) Apply(a Application) Application {
	reviewer := r.ActorID
	at := r.At
	a.Status = r.To
	a.ReviewedBy = &reviewer
	a.ReviewedAt = &at
	a.UpdatedAt = r.At
	if r.Notes != nil {
		notes := *r.Notes
		a.ReviewNotes = &notes
	}
	return a
}

// Transition is one row of an application's status history.
type Transition struct {
	ApplicationID id.ApplicationID `json:"application_id"`
	From          workflow.Status  `json:"from"`
	To            workflow.Status  `json:"to"`
	ActorID       id.UserID        `json:"actor_id"`
	ActorRole     id.Role          `json:"actor_role"`
	Notes         string           `json:"notes,omitempty"`
	At            time.Time        `json:"at"`
}

// NewTransition records the move from -> r.To for applicationID.
func NewTransition(applicationID id.ApplicationID, from workflow.Status, r Review) Transition {
	t := Transition{
		ApplicationID: applicationID,
		From:          from,
		To:            r.To,
		ActorID:       r.ActorID,
		ActorRole:     r.ActorRole,
		At:            r.At,
	}
	if r.Notes != nil {
		t.Notes = *r.Notes
	}
	return t
}

// Filter narrows the staff listing. Zero values mean no restriction.
type Filter struct {
	SchemeID *id.SchemeID
	Status   workflow.Status
	From     *time.Time
	To       *time.Time
	Limit    int
}

// Matches reports whether a passes every set condition except Limit.
func (f Filter) Matches(a *Application) bool {
	if f.SchemeID != nil && a.SchemeID != *f.SchemeID {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.From != nil && a.SubmittedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && a.SubmittedAt.After(*f.To) {
		return false
	}
	return true
}

// Submission is what a citizen sends to apply.
type Submission struct {
	SchemeID id.SchemeID
	Profile  eligibility.Profile
	Extra    map[string]any
}

// TransitionOption is one status the caller may move an application to.
type TransitionOption struct {
	Status        workflow.Status `json:"status"`
	RequiresNotes bool            `json:"requires_notes"`
}

// Options describes the moves available to a role from the current status.
type Options struct {
	ApplicationID id.ApplicationID   `json:"application_id"`
	Current       workflow.Status    `json:"current_status"`
	Targets       []TransitionOption `json:"allowed_transitions"`
}
