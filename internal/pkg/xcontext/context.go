// Package xcontext has context helpers for work that outlives a request.
package xcontext

import (
	"context"
	"time"
)

// Detach returns a context carrying the values of ctx but none of its
// cancellation. Use it for work that must finish even when the request
// that triggered it goes away.
func Detach(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}

// DetachWithTimeout detaches ctx and caps the detached work at timeout,
// so a dropped request cannot leave it running forever either.
func DetachWithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(Detach(ctx), timeout)
}
