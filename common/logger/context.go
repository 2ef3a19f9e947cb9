package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields are attached to every record logged with a context that carries them.
type LogFields struct {
	ConnectionID *int64
	UserID       *int64
	RequestID    *string
	ToStatus     *string // requested status of a transition
	Component    string  // e.g. "linkup.service.connection"
}

// WithLogFields enriches ctx. Newer non-empty values win over existing ones.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	merged := mergeFields(GetLogFields(ctx), fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, new LogFields) LogFields {
	result := existing

	if new.ConnectionID != nil {
		result.ConnectionID = new.ConnectionID
	}
	if new.UserID != nil {
		result.UserID = new.UserID
	}
	if new.RequestID != nil {
		result.RequestID = new.RequestID
	}
	if new.ToStatus != nil {
		result.ToStatus = new.ToStatus
	}
	if new.Component != "" {
		result.Component = new.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{UserID: logger.Ptr(id)})
func Ptr[T any](v T) *T {
	return &v
}
