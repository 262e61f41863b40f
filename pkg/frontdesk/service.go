// Package frontdesk validates and applies hotel check-in and check-out transitions.
package frontdesk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Service contains the front desk logic over a Store. It holds no mutable state
// and is safe for concurrent use.
type Service struct {
	store     Store
	nowFn     func() time.Time
	newID     func() string
	location  *time.Location
	logger    OperationLogger
	publisher EventPublisher
	locker    TransitionLocker
}

// NewService wires a Service.
func NewService(store Store, now func() time.Time, options ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store dependency is nil", ErrInvalidServiceConfig)
	}
	if now == nil {
		return nil, fmt.Errorf("%w: clock dependency is nil", ErrInvalidServiceConfig)
	}
	service := &Service{store: store, nowFn: now, newID: uuid.NewString, location: time.UTC}
	for _, option := range options {
		if option != nil {
			option(service)
		}
	}
	return service, nil
}

// WithIDGenerator overrides how identifiers are minted for new rooms and reservations.
func WithIDGenerator(generator func() string) ServiceOption {
	return func(service *Service) {
		if generator != nil {
			service.newID = generator
		}
	}
}

type transitionPlan struct {
	operation        string
	eventType        string
	failureMessage   string
	validate         func(ctx context.Context, store Store, reservationID ReservationID) Verdict
	reservationPatch func(at time.Time) ReservationPatch
	roomPatch        func(at time.Time) RoomPatch
}

// PerformCheckIn moves a confirmed reservation to active and its room to occupied.
func (service *Service) PerformCheckIn(ctx context.Context, reservationID ReservationID) TransitionResult {
	return service.runTransition(ctx, reservationID, transitionPlan{
		operation:      operationCheckIn,
		eventType:      EventTypeCheckedIn,
		failureMessage: MessageCheckInFailed,
		validate:       service.validateCheckIn,
		reservationPatch: func(at time.Time) ReservationPatch {
			return ReservationPatch{
				ExpectedStatus: statusRef(ReservationStatusConfirmed),
				Status:         statusRef(ReservationStatusActive),
				ActualCheckIn:  SetTimestamp(at),
				UpdatedAt:      at,
			}
		},
		roomPatch: func(at time.Time) RoomPatch {
			return RoomPatch{
				ExpectedStatus: roomStatusRef(RoomStatusAvailable),
				Status:         roomStatusRef(RoomStatusOccupied),
				UpdatedAt:      at,
			}
		},
	})
}

// PerformCheckOut moves an active, fully paid reservation to finished and frees its room.
func (service *Service) PerformCheckOut(ctx context.Context, reservationID ReservationID) TransitionResult {
	return service.runTransition(ctx, reservationID, transitionPlan{
		operation:      operationCheckOut,
		eventType:      EventTypeCheckedOut,
		failureMessage: MessageCheckOutFailed,
		validate:       service.validateCheckOut,
		reservationPatch: func(at time.Time) ReservationPatch {
			return ReservationPatch{
				ExpectedStatus: statusRef(ReservationStatusActive),
				Status:         statusRef(ReservationStatusFinished),
				ActualCheckOut: SetTimestamp(at),
				UpdatedAt:      at,
			}
		},
		roomPatch: func(at time.Time) RoomPatch {
			return RoomPatch{
				ExpectedStatus: roomStatusRef(RoomStatusOccupied),
				Status:         roomStatusRef(RoomStatusAvailable),
				UpdatedAt:      at,
			}
		},
	})
}

func (service *Service) runTransition(ctx context.Context, reservationID ReservationID, plan transitionPlan) TransitionResult {
	result, roomID, cause := service.executeTransition(ctx, reservationID, plan)
	service.logOperation(ctx, OperationLog{
		Operation:     plan.operation,
		ReservationID: reservationID,
		RoomID:        roomID,
		Kind:          result.Kind,
		Message:       result.Error,
		Error:         cause,
	})
	if result.Success {
		service.publishEvent(ctx, TransitionEvent{
			Type:          plan.eventType,
			ReservationID: result.Reservation.ID,
			RoomID:        result.Room.ID,
			GuestID:       result.Reservation.GuestID,
			OccurredAt:    result.Reservation.UpdatedAt,
		})
	}
	return result
}

func (service *Service) executeTransition(ctx context.Context, reservationID ReservationID, plan transitionPlan) (TransitionResult, RoomID, error) {
	if service.locker != nil {
		release, err := service.locker.Acquire(ctx, reservationLockKeyPrefix+reservationID.String())
		if err != nil {
			if errors.Is(err, ErrTransitionLocked) {
				return failed(FailureConflict, MessageTransitionInProgress), RoomID{}, err
			}
			return failed(FailureStore, plan.failureMessage), RoomID{}, err
		}
		// An unreleased lease expires on its own.
		defer func() { _ = release(context.WithoutCancel(ctx)) }()
	}

	verdict := plan.validate(ctx, service.store, reservationID)
	var roomID RoomID
	if verdict.Reservation != nil {
		roomID = verdict.Reservation.RoomID
	}
	if !verdict.Approved {
		return failed(verdict.Kind, verdict.Reason), roomID, verdict.Cause()
	}
	previous := *verdict.Reservation
	at := service.nowFn()

	if transactor, ok := service.store.(Transactor); ok {
		var (
			updatedReservation Reservation
			updatedRoom        Room
		)
		err := transactor.WithTx(ctx, func(ctx context.Context, txStore Store) error {
			var err error
			updatedReservation, err = txStore.UpdateReservation(ctx, previous.ID, plan.reservationPatch(at))
			if err != nil {
				return err
			}
			updatedRoom, err = txStore.UpdateRoom(ctx, previous.RoomID, plan.roomPatch(at))
			return err
		})
		if err != nil {
			return writeFailure(plan, err), roomID, err
		}
		return succeeded(updatedReservation, updatedRoom), roomID, nil
	}

	updatedReservation, err := service.store.UpdateReservation(ctx, previous.ID, plan.reservationPatch(at))
	if err != nil {
		return writeFailure(plan, err), roomID, err
	}
	updatedRoom, err := service.store.UpdateRoom(ctx, previous.RoomID, plan.roomPatch(at))
	if err != nil {
		if compensationErr := service.compensate(ctx, previous, updatedReservation, at); compensationErr != nil {
			result := failed(FailurePartiallyApplied, MessagePartiallyApplied)
			result.Reservation = &updatedReservation
			return result, roomID, errors.Join(err, compensationErr)
		}
		return writeFailure(plan, err), roomID, err
	}
	return succeeded(updatedReservation, updatedRoom), roomID, nil
}

// compensate restores the reservation fields a transition changed, guarded by the new status.
// It runs detached from the caller's cancellation.
func (service *Service) compensate(ctx context.Context, previous Reservation, applied Reservation, at time.Time) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()
	_, err := service.store.UpdateReservation(ctx, previous.ID, ReservationPatch{
		ExpectedStatus: statusRef(applied.Status),
		Status:         statusRef(previous.Status),
		ActualCheckIn:  RestoreTimestamp(previous.ActualCheckIn),
		ActualCheckOut: RestoreTimestamp(previous.ActualCheckOut),
		UpdatedAt:      at,
	})
	service.logOperation(ctx, OperationLog{
		Operation:     operationCompensate,
		ReservationID: previous.ID,
		RoomID:        previous.RoomID,
		Error:         err,
	})
	return err
}

func writeFailure(plan transitionPlan, err error) TransitionResult {
	switch {
	case errors.Is(err, ErrStaleRecord):
		return failed(FailureConflict, MessageConcurrentUpdate)
	case errors.Is(err, ErrReservationNotFound):
		return failed(FailureNotFound, MessageReservationNotFound)
	case errors.Is(err, ErrRoomNotFound):
		return failed(FailureNotFound, MessageRoomNotFound)
	default:
		return failed(FailureStore, plan.failureMessage)
	}
}

func (service *Service) publishEvent(ctx context.Context, event TransitionEvent) {
	if service.publisher == nil {
		return
	}
	if err := service.publisher.Publish(ctx, event); err != nil {
		service.logOperation(ctx, OperationLog{
			Operation:     operationPublishEvent,
			ReservationID: event.ReservationID,
			RoomID:        event.RoomID,
			Error:         err,
		})
	}
}

func (service *Service) logOperation(ctx context.Context, entry OperationLog) {
	if service.logger == nil {
		return
	}
	if entry.Kind == "" && entry.Error != nil {
		entry.Kind = failureKindOf(entry.Error)
	}
	if entry.Status == "" {
		switch {
		case entry.Kind == FailureRejected || entry.Kind == FailureNotFound:
			entry.Status = operationStatusRejected
		case entry.Error != nil:
			entry.Status = operationStatusError
		case entry.Kind != "":
			entry.Status = operationStatusRejected
		default:
			entry.Status = operationStatusOK
		}
	}
	service.logger.LogOperation(ctx, entry)
}

func statusRef(status ReservationStatus) *ReservationStatus {
	return &status
}

func roomStatusRef(status RoomStatus) *RoomStatus {
	return &status
}
