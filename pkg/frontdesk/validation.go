package frontdesk

import (
	"context"
	"errors"
)

// ValidateCheckIn decides whether the reservation may check in now. It only reads.
// Store failures are reported as a rejection, never as an error.
func (service *Service) ValidateCheckIn(ctx context.Context, reservationID ReservationID) Verdict {
	return service.validateCheckIn(ctx, service.store, reservationID)
}

// ValidateCheckOut decides whether the reservation may check out now. It only reads.
func (service *Service) ValidateCheckOut(ctx context.Context, reservationID ReservationID) Verdict {
	return service.validateCheckOut(ctx, service.store, reservationID)
}

func (service *Service) validateCheckIn(ctx context.Context, store Store, reservationID ReservationID) Verdict {
	reservation, err := store.GetReservation(ctx, reservationID)
	if err != nil {
		if errors.Is(err, ErrReservationNotFound) {
			return reject(FailureNotFound, MessageReservationNotFound, nil, nil)
		}
		return reject(FailureStore, MessageCheckInValidationFailed, nil, err)
	}
	if reservation.Status != ReservationStatusConfirmed {
		return reject(FailureRejected, MessageCheckInNotAllowedStatus, &reservation, nil)
	}
	today := DateOf(service.nowFn(), service.location)
	if reservation.CheckInDate.After(today) {
		return reject(FailureRejected, MessageCheckInTooEarly, &reservation, nil)
	}
	room, err := store.GetRoom(ctx, reservation.RoomID)
	if err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			return reject(FailureNotFound, MessageRoomNotFound, &reservation, nil)
		}
		return reject(FailureStore, MessageCheckInValidationFailed, &reservation, err)
	}
	switch room.Status {
	case RoomStatusOccupied:
		verdict := reject(FailureRejected, MessageRoomOccupied, &reservation, nil)
		verdict.Room = &room
		return verdict
	case RoomStatusMaintenance:
		verdict := reject(FailureRejected, MessageRoomUnderMaintenance, &reservation, nil)
		verdict.Room = &room
		return verdict
	}
	return approve(reservation, &room)
}

func (service *Service) validateCheckOut(ctx context.Context, store Store, reservationID ReservationID) Verdict {
	reservation, err := store.GetReservation(ctx, reservationID)
	if err != nil {
		if errors.Is(err, ErrReservationNotFound) {
			return reject(FailureNotFound, MessageReservationNotFound, nil, nil)
		}
		return reject(FailureStore, MessageCheckOutValidationFailed, nil, err)
	}
	if reservation.PendingAmount.IsPositive() {
		return reject(FailureRejected, MessagePendingBalance, &reservation, nil)
	}
	if reservation.Status != ReservationStatusActive {
		return reject(FailureRejected, MessageCheckOutNotAllowedStatus, &reservation, nil)
	}
	return approve(reservation, nil)
}
