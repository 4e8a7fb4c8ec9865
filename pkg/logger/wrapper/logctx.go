package wrap

import (
	"context"
)

type (
	// LogCtx holds contextual information for logging
	LogCtx struct {
		Action     string
		UserID     string
		RequestID  string
		DriverID   string
		DeliveryID string
	}

	// logCtxKeyStruct is an unexported type for context keys defined in this package.
	logCtxKeyStruct struct{}
)

// LogCtxKey is the key for log context values
var LogCtxKey = &logCtxKeyStruct{}

// WithLogCtx returns a new context with the provided LogCtx merged over the existing one.
func WithLogCtx(ctx context.Context, newLc LogCtx) context.Context {
	if lc, ok := ctx.Value(LogCtxKey).(LogCtx); ok {
		if newLc.Action == "" {
			newLc.Action = lc.Action
		}
		if newLc.UserID == "" {
			newLc.UserID = lc.UserID
		}
		if newLc.RequestID == "" {
			newLc.RequestID = lc.RequestID
		}
		if newLc.DriverID == "" {
			newLc.DriverID = lc.DriverID
		}
		if newLc.DeliveryID == "" {
			newLc.DeliveryID = lc.DeliveryID
		}
	}
	return context.WithValue(ctx, LogCtxKey, newLc)
}

func get(ctx context.Context) LogCtx {
	lc, _ := ctx.Value(LogCtxKey).(LogCtx)
	return lc
}

// WithUserID adds or updates the UserID in the LogCtx within the context
func WithUserID(ctx context.Context, userID string) context.Context {
	lc := get(ctx)
	lc.UserID = userID
	return context.WithValue(ctx, LogCtxKey, lc)
}

// WithRequestID adds or updates the RequestID in the LogCtx within the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	lc := get(ctx)
	lc.RequestID = requestID
	return context.WithValue(ctx, LogCtxKey, lc)
}

// WithDriverID adds or updates the DriverID in the LogCtx within the context
func WithDriverID(ctx context.Context, driverID string) context.Context {
	lc := get(ctx)
	lc.DriverID = driverID
	return context.WithValue(ctx, LogCtxKey, lc)
}

// WithDeliveryID adds or updates the DeliveryID in the LogCtx within the context
func WithDeliveryID(ctx context.Context, deliveryID string) context.Context {
	lc := get(ctx)
	lc.DeliveryID = deliveryID
	return context.WithValue(ctx, LogCtxKey, lc)
}

// WithAction adds or updates the Action in the LogCtx within the context
func WithAction(ctx context.Context, action string) context.Context {
	lc := get(ctx)
	lc.Action = action
	return context.WithValue(ctx, LogCtxKey, lc)
}

// RequestID returns request id stored in the context, if any.
func RequestID(ctx context.Context) string {
	return get(ctx).RequestID
}
