// Package tracing issues the per-request identifiers and resolves the header
// names they travel in. Storage lives in contexts, this package only owns the
// id formats.
package tracing

import (
	"context"

	"github.com/google/uuid"

	"github.com/looplj/adminhub/internal/contexts"
)

const (
	// DefaultTraceHeader is the request header read for an externally
	// assigned trace id when none is configured.
	DefaultTraceHeader = "ADH-Trace-Id"

	// DefaultRequestHeader is the response header the generated request id
	// is written to when none is configured.
	DefaultRequestHeader = "ADH-Request-Id"
)

type Config struct {
	TraceHeader   string `conf:"trace_header" yaml:"trace_header" json:"trace_header"`
	RequestHeader string `conf:"request_header" yaml:"request_header" json:"request_header"`
}

// TraceHeaderName returns the configured trace header, or DefaultTraceHeader.
func (c Config) TraceHeaderName() string {
	if c.TraceHeader != "" {
		return c.TraceHeader
	}

	return DefaultTraceHeader
}

// RequestHeaderName returns the configured request id header, or
// DefaultRequestHeader.
func (c Config) RequestHeaderName() string {
	if c.RequestHeader != "" {
		return c.RequestHeader
	}

	return DefaultRequestHeader
}

// GenerateTraceID returns a fresh trace id, "at-" followed by a uuid.
func GenerateTraceID() string {
	return prefixedID("at")
}

// GenerateRequestID returns a fresh request id, "ar-" followed by a uuid.
func GenerateRequestID() string {
	return prefixedID("ar")
}

func prefixedID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// The identifier accessors delegate to contexts, so packages that only
// produce or consume ids do not deal with the container directly.

func WithTraceID(ctx context.Context, id string) context.Context {
	return contexts.WithTraceID(ctx, id)
}

func GetTraceID(ctx context.Context) (string, bool) {
	return contexts.GetTraceID(ctx)
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return contexts.WithRequestID(ctx, id)
}

func GetRequestID(ctx context.Context) (string, bool) {
	return contexts.GetRequestID(ctx)
}

func WithOperationName(ctx context.Context, name string) context.Context {
	return contexts.WithOperationName(ctx, name)
}

func GetOperationName(ctx context.Context) (string, bool) {
	return contexts.GetOperationName(ctx)
}
