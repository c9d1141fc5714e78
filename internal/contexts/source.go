package contexts

import "context"

// Source identifies where an operation originated.
type Source string

const (
	// SourceAdmin marks operations issued through the admin HTTP API.
	SourceAdmin Source = "admin"
	// SourceSystem marks operations issued by internal workers.
	SourceSystem Source = "system"
	// SourceSnapshot marks operations issued by snapshot export/restore.
	SourceSnapshot Source = "snapshot"
)

// WithSource stores the operation source in the context.
func WithSource(ctx context.Context, source Source) context.Context {
	return update(ctx, func(c *container) { c.Source = &source })
}

// GetSource retrieves the operation source from the context.
func GetSource(ctx context.Context) (Source, bool) {
	if c := lookup(ctx); c.Source != nil {
		return *c.Source, true
	}

	return "", false
}
