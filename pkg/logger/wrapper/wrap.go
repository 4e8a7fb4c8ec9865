package wrap

import (
	"context"
	"errors"
)

// Error wraps an error with the current LogCtx from the context
func Error(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	// If already wrapped, only refresh the log context
	var e *errorWithLogCtx
	if errors.As(err, &e) {
		if x, ok := ctx.Value(LogCtxKey).(LogCtx); ok {
			e.logCtx = x
		}
		return err
	}

	return &errorWithLogCtx{
		err:    err,
		logCtx: get(ctx),
	}
}
