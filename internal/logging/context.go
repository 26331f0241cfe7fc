package logging

import (
	"context"
	"log/slog"

	"disclabel/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldEventType classifies a log line for filtering (retry_scheduled, disc_detected, ...).
	FieldEventType = "event_type"
	// FieldErrorHint suggests the operator's next step.
	FieldErrorHint = "error_hint"
	// FieldErrorKind carries the taxonomy name from services.Classify.
	FieldErrorKind = "error_kind"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldCorrelationID identifies one disc insertion or title query.
	FieldCorrelationID = "correlation_id"
	// FieldDrive is the optical device path.
	FieldDrive = "drive"
	// FieldFlow is the resolution flow (disc or movie).
	FieldFlow = "flow"
	// FieldFingerprint is the disc fingerprint being resolved.
	FieldFingerprint = "fingerprint"
	// FieldDecisionType names the branch point a decision_summary line describes.
	FieldDecisionType = "decision_type"
	// FieldSource is the resolution stage that produced a record.
	FieldSource = "source"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.EventIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, id))
	}
	if drive, ok := services.DriveFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldDrive, drive))
	}
	if flow, ok := services.FlowFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldFlow, flow))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
