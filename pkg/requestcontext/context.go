// Package requestcontext carries per-request values (request ID, actor, client
// metadata, clock) through context.Context.
package requestcontext

import (
	"context"
	"time"

	id "schemeportal/pkg/domain"
)

type contextKey string

const (
	keyRequestID contextKey = "request_id"
	keyUserID    contextKey = "user_id"
	keyRole      contextKey = "role"
	keyClientIP  contextKey = "client_ip"
	keyUserAgent contextKey = "user_agent"
	keyNow       contextKey = "now"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, keyRequestID, requestID)
}

// RequestID returns the request id, or "" outside a request.
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(keyRequestID).(string)
	return v
}

// WithActor stores the authenticated user and the role resolved for them server-side.
func WithActor(ctx context.Context, userID id.UserID, role id.Role) context.Context {
	ctx = context.WithValue(ctx, keyUserID, userID)
	return context.WithValue(ctx, keyRole, role)
}

// UserID returns the authenticated user, or the zero id when unauthenticated.
func UserID(ctx context.Context) id.UserID {
	v, _ := ctx.Value(keyUserID).(id.UserID)
	return v
}

// Role returns the actor role, defaulting to public_user when unauthenticated.
func Role(ctx context.Context) id.Role {
	v, ok := ctx.Value(keyRole).(id.Role)
	if !ok {
		return id.RolePublicUser
	}
	return v
}

func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, keyClientIP, clientIP)
	return context.WithValue(ctx, keyUserAgent, userAgent)
}

// ClientIP returns the client address resolved by the metadata middleware.
func ClientIP(ctx context.Context) string {
	v, _ := ctx.Value(keyClientIP).(string)
	return v
}

func UserAgent(ctx context.Context) string {
	v, _ := ctx.Value(keyUserAgent).(string)
	return v
}

// WithTime pins the request clock. Tests use it for deterministic timestamps.
func WithTime(ctx context.Context, now time.Time) context.Context {
	return context.WithValue(ctx, keyNow, now)
}

// Now returns the pinned request time or the wall clock.
func Now(ctx context.Context) time.Time {
	if v, ok := ctx.Value(keyNow).(time.Time); ok {
		return v
	}
	return time.Now()
}
