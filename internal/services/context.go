package services

import "context"

type contextKey string

const (
	eventIDKey contextKey = "event_id"
	driveKey   contextKey = "drive"
	flowKey    contextKey = "flow"
)

// WithEventID annotates context with the correlation identifier of one
// disc insertion or title query.
func WithEventID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, eventIDKey, id)
}

// EventIDFromContext extracts the correlation identifier if present.
func EventIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(eventIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithDrive annotates context with the device path being processed.
func WithDrive(ctx context.Context, device string) context.Context {
	if device == "" {
		return ctx
	}
	return context.WithValue(ctx, driveKey, device)
}

// DriveFromContext returns the device path if present.
func DriveFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(driveKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithFlow annotates context with the resolution flow name (disc or movie).
func WithFlow(ctx context.Context, flow string) context.Context {
	if flow == "" {
		return ctx
	}
	return context.WithValue(ctx, flowKey, flow)
}

// FlowFromContext returns the flow name if present.
func FlowFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(flowKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
