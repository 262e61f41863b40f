package frontdesk

import (
	"errors"
	"fmt"
)

// Domain-level error values returned by the front desk service and its stores.
var (
	ErrReservationNotFound       = errors.New("reservation not found")
	ErrRoomNotFound              = errors.New("room not found")
	ErrReservationExists         = errors.New("reservation already exists")
	ErrRoomExists                = errors.New("room already exists")
	ErrStaleRecord               = errors.New("record changed concurrently")
	ErrTransitionLocked          = errors.New("transition lease held")
	ErrRoomOccupied              = errors.New("room occupied")
	ErrRoomHasReservations       = errors.New("room has open reservations")
	ErrReservationActive         = errors.New("reservation active")
	ErrReservationNotCancellable = errors.New("reservation not cancellable")
	ErrRoomNotAdjustable         = errors.New("room status not adjustable")
	ErrPaymentExceedsPending     = errors.New("payment exceeds pending amount")
	ErrInvalidReservationID      = errors.New("invalid reservation id")
	ErrInvalidRoomID             = errors.New("invalid room id")
	ErrInvalidGuestID            = errors.New("invalid guest id")
	ErrInvalidRoomNumber         = errors.New("invalid room number")
	ErrInvalidAmountCents        = errors.New("invalid amount cents")
	ErrInvalidStayDates          = errors.New("invalid stay dates")
	ErrInvalidReservationStatus  = errors.New("invalid reservation status")
	ErrInvalidRoomStatus         = errors.New("invalid room status")
	ErrInvalidServiceConfig      = errors.New("invalid service config")
)

// failureKindOf classifies a record operation error. Unclassified errors are store failures.
func failureKindOf(err error) FailureKind {
	switch {
	case errors.Is(err, ErrReservationNotFound), errors.Is(err, ErrRoomNotFound):
		return FailureNotFound
	case errors.Is(err, ErrStaleRecord), errors.Is(err, ErrTransitionLocked),
		errors.Is(err, ErrReservationExists), errors.Is(err, ErrRoomExists):
		return FailureConflict
	case errors.Is(err, ErrRoomOccupied), errors.Is(err, ErrRoomHasReservations),
		errors.Is(err, ErrReservationActive), errors.Is(err, ErrReservationNotCancellable),
		errors.Is(err, ErrRoomNotAdjustable), errors.Is(err, ErrPaymentExceedsPending),
		errors.Is(err, ErrInvalidReservationID), errors.Is(err, ErrInvalidRoomID),
		errors.Is(err, ErrInvalidGuestID), errors.Is(err, ErrInvalidRoomNumber),
		errors.Is(err, ErrInvalidAmountCents), errors.Is(err, ErrInvalidStayDates),
		errors.Is(err, ErrInvalidReservationStatus), errors.Is(err, ErrInvalidRoomStatus):
		return FailureRejected
	default:
		return FailureStore
	}
}

// OperationError wraps a failure with a stable operation code.
type OperationError struct {
	operation string
	subject   string
	code      string
	err       error
}

// Error returns the formatted error message.
func (operationError OperationError) Error() string {
	return fmt.Sprintf("%s.%s.%s: %v", operationError.operation, operationError.subject, operationError.code, operationError.err)
}

// Unwrap returns the underlying error.
func (operationError OperationError) Unwrap() error {
	return operationError.err
}

// Operation returns the operation segment.
func (operationError OperationError) Operation() string {
	return operationError.operation
}

// Subject returns the subject segment.
func (operationError OperationError) Subject() string {
	return operationError.subject
}

// Code returns the stable error code segment.
func (operationError OperationError) Code() string {
	return operationError.code
}

// WrapError wraps an error with operation, subject, and code metadata.
func WrapError(operation string, subject string, code string, err error) error {
	if err == nil {
		return nil
	}
	return OperationError{
		operation: operation,
		subject:   subject,
		code:      code,
		err:       err,
	}
}
