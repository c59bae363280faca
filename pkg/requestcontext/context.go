// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values. Middleware sets them; services read them.
//
// Usage in services (read values):
//
//	app := requestcontext.Application(ctx)
//	requestID := requestcontext.RequestID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithApplication(ctx, requestcontext.Caller{...})
package requestcontext

import (
	"context"
	"time"

	id "trouwen/pkg/domain"
)

type (
	applicationKey struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Caller is the authenticated application on whose behalf a request runs.
// Records created in the request are owned by it.
type Caller struct {
	ApplicationID id.ApplicationID
	ClientID      string
	RSIN          id.RSIN
}

// IsZero reports whether no caller was resolved.
func (c Caller) IsZero() bool {
	return c.ApplicationID.IsNil()
}

// Application retrieves the authenticated caller. Returns the zero Caller if unset.
func Application(ctx context.Context) Caller {
	if c, ok := ctx.Value(applicationKey{}).(Caller); ok {
		return c
	}
	return Caller{}
}

// WithApplication injects the authenticated caller.
func WithApplication(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, applicationKey{}, c)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (CLI commands, fixtures, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
