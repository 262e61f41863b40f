package frontdesk

import (
	"context"
	"time"
)

// ServiceOption configures a Service instance.
type ServiceOption func(*Service)

// OperationLogger records domain-level events emitted by Service operations.
type OperationLogger interface {
	LogOperation(ctx context.Context, entry OperationLog)
}

// OperationLog describes a state-changing front desk operation.
type OperationLog struct {
	Operation     string
	ReservationID ReservationID
	RoomID        RoomID
	Status        string
	Kind          FailureKind
	Message       string
	Error         error
}

// TransitionEvent is published after a successful check-in or check-out.
type TransitionEvent struct {
	Type          string
	ReservationID ReservationID
	RoomID        RoomID
	GuestID       GuestID
	OccurredAt    time.Time
}

// EventPublisher delivers transition events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event TransitionEvent) error
}

// TransitionLocker grants a short exclusive lease on key.
// The returned release function must be safe to call once.
type TransitionLocker interface {
	Acquire(ctx context.Context, key string) (release func(ctx context.Context) error, err error)
}

// WithOperationLogger wires a logger that receives callbacks for every operation.
func WithOperationLogger(logger OperationLogger) ServiceOption {
	return func(service *Service) {
		service.logger = logger
	}
}

// WithEventPublisher wires a publisher notified after successful transitions.
func WithEventPublisher(publisher EventPublisher) ServiceOption {
	return func(service *Service) {
		service.publisher = publisher
	}
}

// WithTransitionLocker serializes transitions per reservation through locker.
func WithTransitionLocker(locker TransitionLocker) ServiceOption {
	return func(service *Service) {
		service.locker = locker
	}
}

// WithLocation sets the hotel time zone used to decide "today".
func WithLocation(location *time.Location) ServiceOption {
	return func(service *Service) {
		if location != nil {
			service.location = location
		}
	}
}
