package audit

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mssola/useragent"

	"schemeportal/pkg/platform/privacy"
	"schemeportal/pkg/requestcontext"
)

// Emitter is the interface for audit event emission.
// Satisfied by publisher.Publisher.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// Logger writes every audit event to the structured log and, when an emitter
// is configured, to the audit store. Services hold one of these.
type Logger struct {
	textLogger *slog.Logger
	emitter    Emitter
}

// NewLogger creates an audit logger. Either argument may be nil.
func NewLogger(textLogger *slog.Logger, emitter Emitter) *Logger {
	return &Logger{textLogger: textLogger, emitter: emitter}
}

// Record enriches the event from the request context, logs it, and emits it.
// Emission failures are logged and never fail the business operation.
//
//	auditor.Record(ctx, audit.Event{Action: string(audit.EventSchemeCreated), SubjectType: "scheme", SubjectID: s.ID.String()})
func (l *Logger) Record(ctx context.Context, event Event) {
	if l == nil {
		return
	}
	Enrich(ctx, &event)
	l.logToText(ctx, event)

	if l.emitter == nil {
		return
	}
	if err := l.emitter.Emit(ctx, event); err != nil && l.textLogger != nil {
		l.textLogger.ErrorContext(ctx, "failed to emit audit event",
			"error", err,
			"event", event.Action,
			"request_id", event.RequestID,
		)
	}
}

func (l *Logger) logToText(ctx context.Context, e Event) {
	if l.textLogger == nil {
		return
	}
	args := []any{
		"log_type", "audit",
		"event", e.Action,
		"category", string(e.Category),
		"actor_id", e.ActorID.String(),
		"actor_role", e.ActorRole.String(),
		"subject_type", e.SubjectType,
		"subject_id", e.SubjectID,
		"request_id", e.RequestID,
	}
	if e.FromStatus != "" || e.ToStatus != "" {
		args = append(args, "from", e.FromStatus, "to", e.ToStatus)
	}
	l.textLogger.InfoContext(ctx, e.Action, args...)
}

// Enrich fills request-derived fields the caller left empty: actor, request
// ID, anonymized client IP, device name, timestamp and category.
func Enrich(ctx context.Context, e *Event) {
	if e.ActorID.IsNil() {
		e.ActorID = requestcontext.UserID(ctx)
		if e.ActorRole == "" && !e.ActorID.IsNil() {
			e.ActorRole = requestcontext.Role(ctx)
		}
	}
	if e.RequestID == "" {
		e.RequestID = requestcontext.RequestID(ctx)
	}
	if ip := requestcontext.ClientIP(ctx); e.ClientIPPrefix == "" && ip != "" {
		e.ClientIPPrefix = privacy.AnonymizeIP(ip)
	}
	if e.Device == "" {
		if ua := requestcontext.UserAgent(ctx); ua != "" {
			e.Device = DeviceName(ua)
		}
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = requestcontext.Now(ctx)
	}
	if e.Category == "" {
		e.Category = AuditEvent(e.Action).Category()
	}
}

// DeviceName turns a User-Agent into "Browser on OS" for audit display.
func DeviceName(userAgent string) string {
	if userAgent == "" {
		return "Unknown Device"
	}
	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()

	if ua.Bot() {
		return "Bot"
	}
	if ua.Mobile() {
		if platform := ua.Platform(); platform != "" && browser != "" {
			return strings.TrimSpace(browser + " on " + platform)
		}
	}

	os := ua.OS()
	if browser == "" {
		browser = "Unknown Browser"
	}
	if os == "" {
		os = "Unknown OS"
	}
	return strings.TrimSpace(browser + " on " + os)
}
