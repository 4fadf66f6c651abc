// Package workflow holds the single legality table for application status
// changes. Server enforcement and the allowed-transitions endpoint both read
// from Check, so they cannot disagree.
package workflow

import (
	id "schemeportal/pkg/domain"
	dErrors "schemeportal/pkg/domain-errors"
)

type Status string

const (
	StatusPending          Status = "pending"
	StatusUnderReview      Status = "under_review"
	StatusForwardedToAdmin Status = "forwarded_to_admin"
	StatusApproved         Status = "approved"
	StatusRejected         Status = "rejected"
)

// Statuses lists every status in lifecycle order.
func Statuses() []Status {
	return []Status{StatusPending, StatusUnderReview, StatusForwardedToAdmin, StatusApproved, StatusRejected}
}

// ParseStatus accepts the five application statuses and rejects anything else
// with a validation error.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "status must be one of [pending under_review forwarded_to_admin approved rejected]")
	}
	return st, nil
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusUnderReview, StatusForwardedToAdmin, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

func (s Status) String() string { return string(s) }

const (
	MsgFinalized          = "application already finalized"
	MsgAnalystApproval    = "Analysts cannot grant final approval; forward to admin instead"
	MsgAnalystTarget      = "invalid status transition for analyst: can only review, reject, or forward"
	MsgNoReturnToPending  = "applications cannot be returned to pending"
	MsgNoTransitionRights = "role is not permitted to review applications"
	MsgUnknownStatus      = "unknown application status"
)

// Decision is the outcome of Check. A denied decision carries the domain code
// and the message shown to the actor verbatim.
type Decision struct {
	Allowed bool
	// NoOp marks an allowed decision where target equals current.
	NoOp    bool
	Code    dErrors.Code
	Message string
}

// Err returns nil for allowed decisions.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return dErrors.New(d.Code, d.Message)
}

func allow() Decision { return Decision{Allowed: true} }

func deny(code dErrors.Code, msg string) Decision {
	return Decision{Code: code, Message: msg}
}

// HasTransitionRights reports whether the role may change application status at all.
func HasTransitionRights(role id.Role) bool {
	return role.OneOf(id.RoleAnalyst, id.RoleAdmin, id.RoleSuperAdmin)
}

// analystTargets are the only statuses an analyst may move an application to.
var analystTargets = map[Status]bool{
	StatusUnderReview:      true,
	StatusRejected:         true,
	StatusForwardedToAdmin: true,
}

// Check decides whether role may move an application from current to target.
// Rules apply in order; the first match wins.
func Check(role id.Role, current, target Status) Decision {
	if !HasTransitionRights(role) {
		return deny(dErrors.CodeForbidden, MsgNoTransitionRights)
	}
	if !current.IsValid() || !target.IsValid() {
		return deny(dErrors.CodeInvalidTransition, MsgUnknownStatus)
	}
	if current.IsTerminal() {
		return deny(dErrors.CodeInvalidTransition, MsgFinalized)
	}

	if role == id.RoleAnalyst {
		if target == StatusApproved {
			return deny(dErrors.CodeForbidden, MsgAnalystApproval)
		}
		if !analystTargets[target] {
			return deny(dErrors.CodeInvalidTransition, MsgAnalystTarget)
		}
	} else if target == StatusPending {
		return deny(dErrors.CodeInvalidTransition, MsgNoReturnToPending)
	}

	if target == current {
		return Decision{Allowed: true, NoOp: true}
	}
	return allow()
}

// AllowedTargets lists the statuses role may move an application to from
// current, excluding the no-op. Order follows Statuses.
func AllowedTargets(role id.Role, current Status) []Status {
	targets := []Status{}
	for _, target := range Statuses() {
		d := Check(role, current, target)
		if d.Allowed && !d.NoOp {
			targets = append(targets, target)
		}
	}
	return targets
}

// RequiresNotes reports whether a transition must carry reviewer notes:
// leaving pending or under_review for a different status.
func RequiresNotes(current, target Status) bool {
	if current == target {
		return false
	}
	return current == StatusPending || current == StatusUnderReview
}

// Rule is one row of the legality table.
type Rule struct {
	Role     id.Role
	From     Status
	To       Status
	Decision Decision
}

// Table evaluates Check for every role, from and to combination. Operators
// use it to audit the policy.
func Table() []Rule {
	var rules []Rule
	for _, role := range id.AllRoles() {
		for _, from := range Statuses() {
			for _, to := range Statuses() {
				rules = append(rules, Rule{Role: role, From: from, To: to, Decision: Check(role, from, to)})
			}
		}
	}
	return rules
}
