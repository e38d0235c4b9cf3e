package logger

import (
	"context"
	"slices"
)

// TagsKey is the field name under which contextual tags are attached to log entries.
const TagsKey = "tags"

type tagsContextKey struct{}

// WithTags returns a copy of ctx carrying the tags already present in ctx followed by tags.
// The stored snapshot is never mutated, so it can be handed to another goroutine safely.
func WithTags(ctx context.Context, tags ...string) context.Context {
	if len(tags) == 0 {
		return ctx
	}

	current := Tags(ctx)
	snapshot := make([]string, 0, len(current)+len(tags))
	snapshot = append(snapshot, current...)
	snapshot = append(snapshot, tags...)

	return context.WithValue(ctx, tagsContextKey{}, snapshot)
}

// Tags returns a copy of the tags stored in ctx, or nil if there are none.
func Tags(ctx context.Context) []string {
	if ctx == nil {
		return nil
	}

	tags, _ := ctx.Value(tagsContextKey{}).([]string)

	return slices.Clone(tags)
}
