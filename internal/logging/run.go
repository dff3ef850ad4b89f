package logging

import (
	"context"

	"go.uber.org/zap"
)

type runKey struct{}

// WithRun returns a context carrying logger tagged with the run ID, and the
// run ID itself for processes started on the run's behalf.
func WithRun(ctx context.Context, logger *zap.Logger, runID string) context.Context {
	if runID != "" {
		logger = logger.With(zap.String("run", runID))
	}
	ctx = context.WithValue(ctx, runKey{}, runID)
	return NewContext(ctx, logger)
}

// RunID returns the run ID set by WithRun, or "".
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runKey{}).(string)
	return id
}
