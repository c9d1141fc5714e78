package contexts

import (
	"context"
	"sync"

	"github.com/looplj/adminhub/internal/session"
)

// container bundles every request-scoped value this package tracks into one
// allocation. It is attached to the context once and mutated in place after
// that, so a value written through a derived context stays visible to readers
// holding an earlier one.
type container struct {
	Session       *session.Session
	Source        *Source
	TraceID       *string
	RequestID     *string
	OperationName *string

	mu     sync.RWMutex
	errors []error
}

// update applies fn to the container attached to ctx, attaching a fresh one
// first when the context does not carry any. It returns the context holding
// the container.
func update(ctx context.Context, fn func(*container)) context.Context {
	c, ok := ctx.Value(containerContextKey).(*container)
	if !ok {
		c = &container{}
		ctx = context.WithValue(ctx, containerContextKey, c)
	}

	fn(c)

	return ctx
}

// lookup returns the container attached to ctx. A context without one yields
// an empty container, reads never nil-check.
func lookup(ctx context.Context) *container {
	if c, ok := ctx.Value(containerContextKey).(*container); ok {
		return c
	}

	return &container{}
}
