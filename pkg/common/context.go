package common

import "context"

// ContextKey represents a context key type
type ContextKey string

// Context keys
const (
	ContextKeyEditMode ContextKey = "edit_mode"
)

// WithEditMode records whether the page was opened for editing
func WithEditMode(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, ContextKeyEditMode, enabled)
}

// IsEditMode reports whether the request asked for edit mode
func IsEditMode(ctx context.Context) bool {
	enabled, _ := ctx.Value(ContextKeyEditMode).(bool)
	return enabled
}
