package log

import (
	"context"

	"github.com/looplj/adminhub/internal/contexts"
)

// Hook yields extra fields for every entry written through a context.
type Hook interface {
	Apply(ctx context.Context, msg string) []Field
}

// HookFunc adapts a function to the Hook interface.
type HookFunc func(ctx context.Context, msg string) []Field

func (f HookFunc) Apply(ctx context.Context, msg string) []Field {
	return f(ctx, msg)
}

// traceFields attaches the trace, request and operation identifiers carried by
// the context, when present.
func traceFields(ctx context.Context, _ string) []Field {
	if ctx == nil {
		return nil
	}

	var fields []Field

	if traceID, ok := contexts.GetTraceID(ctx); ok && traceID != "" {
		fields = append(fields, String("trace_id", traceID))
	}

	if requestID, ok := contexts.GetRequestID(ctx); ok && requestID != "" {
		fields = append(fields, String("request_id", requestID))
	}

	if operationName, ok := contexts.GetOperationName(ctx); ok && operationName != "" {
		fields = append(fields, String("operation_name", operationName))
	}

	return fields
}
