package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventSessionEstablished ActivityEventType = "session.established"
	ActivityEventSessionEnded       ActivityEventType = "session.ended"
	ActivityEventOTPRequested       ActivityEventType = "auth.otp.requested"
	ActivityEventOTPVerified        ActivityEventType = "auth.otp.verified"
	ActivityEventOTPFailure         ActivityEventType = "auth.otp.failure"
)

// ActivityEvent captures audit-friendly information about a session or
// login-flow action.
type ActivityEvent struct {
	ID         uuid.UUID
	EventType  ActivityEventType
	Email      string
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
// Sinks run best-effort; errors are logged, never propagated.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}

func newActivityEvent(eventType ActivityEventType, email string, metadata map[string]any, occurredAt time.Time) ActivityEvent {
	return ActivityEvent{
		ID:         uuid.New(),
		EventType:  eventType,
		Email:      email,
		Metadata:   metadata,
		OccurredAt: occurredAt,
	}
}
