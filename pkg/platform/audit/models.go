package audit

import (
	"time"

	"github.com/google/uuid"

	id "schemeportal/pkg/domain"
)

// Event is emitted from domain logic to capture key actions. It is
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID
	Timestamp time.Time
	Category  EventCategory
	Action    string

	ActorID   id.UserID
	ActorRole id.Role

	// SubjectType names the record the action touched (application, scheme,
	// staff_member, insight); SubjectID is its identifier.
	SubjectType string
	SubjectID   string

	FromStatus string
	ToStatus   string
	// NotesLength records that notes were given without copying their text.
	NotesLength int
	Reason      string

	RequestID      string
	ClientIPPrefix string
	Device         string
}

type EventCategory string

const (
	CategoryCompliance EventCategory = "compliance"
	CategorySecurity   EventCategory = "security"
	CategoryOperations EventCategory = "operations"
)

type AuditEvent string

const (
	EventApplicationSubmitted     AuditEvent = "application_submitted"
	EventApplicationStatusChanged AuditEvent = "application_status_changed"

	EventSchemeCreated       AuditEvent = "scheme_created"
	EventSchemeUpdated       AuditEvent = "scheme_updated"
	EventSchemeStatusChanged AuditEvent = "scheme_status_changed"
	EventSchemeDeleted       AuditEvent = "scheme_deleted"

	EventStaffUpserted          AuditEvent = "staff_upserted"
	EventStaffRoleChanged       AuditEvent = "staff_role_changed"
	EventStaffActivationChanged AuditEvent = "staff_activation_changed"

	EventInsightRecorded AuditEvent = "ai_insight_recorded"
	EventInsightApproved AuditEvent = "ai_insight_approved"
	EventInsightRejected AuditEvent = "ai_insight_rejected"
)

var categories = map[AuditEvent]EventCategory{
	EventApplicationSubmitted:     CategoryCompliance,
	EventApplicationStatusChanged: CategoryCompliance,
	EventInsightApproved:          CategoryCompliance,
	EventInsightRejected:          CategoryCompliance,

	EventStaffUpserted:          CategorySecurity,
	EventStaffRoleChanged:       CategorySecurity,
	EventStaffActivationChanged: CategorySecurity,
	EventSchemeDeleted:          CategorySecurity,
}

// Category returns the retention class of the event. Anything not listed is operations.
func (e AuditEvent) Category() EventCategory {
	if c, ok := categories[e]; ok {
		return c
	}
	return CategoryOperations
}

func (e AuditEvent) String() string { return string(e) }
