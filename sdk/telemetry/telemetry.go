// Package telemetry carries per-run identifiers through a context so every
// log record of a generation run can be correlated.
package telemetry

import (
	"context"

	"github.com/google/uuid"
)

type telKey int

const (
	runIDKey telKey = iota + 1
)

// NoRunID is reported when a context was never tagged.
const NoRunID = "--------NORUN--------"

// WithRunID returns a context tagged with a fresh run identifier.
func WithRunID(ctx context.Context) context.Context {
	id, err := uuid.NewRandom()
	if err != nil {
		return context.WithValue(ctx, runIDKey, NoRunID)
	}
	return context.WithValue(ctx, runIDKey, id.String())
}

// RunID returns the identifier stored by WithRunID.
func RunID(ctx context.Context) string {
	v, ok := ctx.Value(runIDKey).(string)
	if !ok {
		return NoRunID
	}
	return v
}
