package contexts

import (
	"context"

	"github.com/looplj/adminhub/internal/session"
)

// ContextKey defines the context key type.
type ContextKey string

// containerContextKey is the only key this package puts into a context.
const containerContextKey ContextKey = "context_container"

// WithSession stores the session in the context.
func WithSession(ctx context.Context, sess session.Session) context.Context {
	return update(ctx, func(c *container) { c.Session = &sess })
}

// GetSession retrieves the session from the context.
// The second return reports whether a session was attached at all; callers
// that only need an identity should use SessionOrAnonymous.
func GetSession(ctx context.Context) (session.Session, bool) {
	if c := lookup(ctx); c.Session != nil {
		return *c.Session, true
	}

	return session.Anonymous(), false
}

// SessionOrAnonymous retrieves the session from the context, degrading to the
// anonymous session when none was attached.
func SessionOrAnonymous(ctx context.Context) session.Session {
	sess, _ := GetSession(ctx)
	return sess
}

// WithTraceID stores the trace id in the context.
func WithTraceID(ctx context.Context, id string) context.Context {
	return update(ctx, func(c *container) { c.TraceID = &id })
}

// GetTraceID retrieves the trace id from the context.
func GetTraceID(ctx context.Context) (string, bool) {
	if c := lookup(ctx); c.TraceID != nil {
		return *c.TraceID, true
	}

	return "", false
}

// WithRequestID stores the request id in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return update(ctx, func(c *container) { c.RequestID = &id })
}

// GetRequestID retrieves the request id from the context.
func GetRequestID(ctx context.Context) (string, bool) {
	if c := lookup(ctx); c.RequestID != nil {
		return *c.RequestID, true
	}

	return "", false
}

// WithOperationName stores the operation name in the context.
func WithOperationName(ctx context.Context, name string) context.Context {
	return update(ctx, func(c *container) { c.OperationName = &name })
}

// GetOperationName retrieves the operation name from the context.
func GetOperationName(ctx context.Context) (string, bool) {
	if c := lookup(ctx); c.OperationName != nil {
		return *c.OperationName, true
	}

	return "", false
}

// AddError records an error on the request context for access logging. It is
// only effective on a context that already carries the container, which the
// tracing middleware attaches at the top of every request.
func AddError(ctx context.Context, err error) {
	if err == nil {
		return
	}

	c := lookup(ctx)
	c.mu.Lock()
	c.errors = append(c.errors, err)
	c.mu.Unlock()
}

// GetErrors returns a copy of the errors recorded on the request context.
func GetErrors(ctx context.Context) []error {
	c := lookup(ctx)
	c.mu.RLock()
	defer c.mu.RUnlock()

	errs := make([]error, len(c.errors))
	copy(errs, c.errors)

	return errs
}
