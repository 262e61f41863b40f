package frontdesk

import (
	"context"
	"fmt"
	"strings"
)

// RoomInput describes a room to create. A zero ID is minted by the service.
type RoomInput struct {
	ID            RoomID
	Number        string
	Type          string
	PricePerNight AmountCents
}

// RoomUpdate changes descriptive room fields. Status is owned by transitions and maintenance.
type RoomUpdate struct {
	Number        *string
	Type          *string
	PricePerNight *AmountCents
}

// ReservationInput describes a booking to create. A nil PendingAmount defaults to TotalAmount.
type ReservationInput struct {
	ID            ReservationID
	RoomID        RoomID
	GuestID       GuestID
	CheckInDate   Date
	CheckOutDate  Date
	TotalAmount   AmountCents
	PendingAmount *AmountCents
}

// GetRoom fetches a room by id.
func (service *Service) GetRoom(ctx context.Context, roomID RoomID) (Room, error) {
	return service.store.GetRoom(ctx, roomID)
}

// ListRooms fetches every room.
func (service *Service) ListRooms(ctx context.Context) ([]Room, error) {
	return service.store.ListRooms(ctx)
}

// CreateRoom inserts an available room.
func (service *Service) CreateRoom(ctx context.Context, input RoomInput) (Room, error) {
	room, operationError := service.createRoom(ctx, input)
	service.logOperation(ctx, OperationLog{Operation: operationCreateRoom, RoomID: room.ID, Error: operationError})
	return room, operationError
}

func (service *Service) createRoom(ctx context.Context, input RoomInput) (Room, error) {
	roomID := input.ID
	if roomID.IsZero() {
		generated, err := NewRoomID(service.newID())
		if err != nil {
			return Room{}, err
		}
		roomID = generated
	}
	now := service.nowFn()
	room, err := NewRoom(Room{
		ID:            roomID,
		Number:        input.Number,
		Type:          input.Type,
		PricePerNight: input.PricePerNight,
		Status:        RoomStatusAvailable,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return Room{}, err
	}
	if err := service.store.CreateRoom(ctx, room); err != nil {
		return Room{}, err
	}
	return room, nil
}

// UpdateRoom patches descriptive room fields.
func (service *Service) UpdateRoom(ctx context.Context, roomID RoomID, update RoomUpdate) (Room, error) {
	patch := RoomPatch{Type: update.Type, PricePerNight: update.PricePerNight, UpdatedAt: service.nowFn()}
	var operationError error
	if update.Number != nil {
		number := strings.TrimSpace(*update.Number)
		if number == "" {
			operationError = fmt.Errorf("%w: empty room number", ErrInvalidRoomNumber)
		}
		patch.Number = &number
	}
	if update.PricePerNight != nil && *update.PricePerNight < 0 {
		operationError = fmt.Errorf("%w: must not be negative", ErrInvalidAmountCents)
	}
	var room Room
	if operationError == nil {
		room, operationError = service.store.UpdateRoom(ctx, roomID, patch)
	}
	service.logOperation(ctx, OperationLog{Operation: operationUpdateRoom, RoomID: roomID, Error: operationError})
	return room, operationError
}

// DeleteRoom removes a room that is not occupied and has no open reservations.
func (service *Service) DeleteRoom(ctx context.Context, roomID RoomID) error {
	operationError := func() error {
		room, err := service.store.GetRoom(ctx, roomID)
		if err != nil {
			return err
		}
		if room.Status == RoomStatusOccupied {
			return ErrRoomOccupied
		}
		reservations, err := service.store.ListReservations(ctx, ReservationFilter{RoomID: roomID})
		if err != nil {
			return err
		}
		for _, reservation := range reservations {
			if !reservation.Status.IsTerminal() {
				return fmt.Errorf("%w: reservation %s is %s", ErrRoomHasReservations, reservation.ID, reservation.Status)
			}
		}
		return service.store.DeleteRoom(ctx, roomID)
	}()
	service.logOperation(ctx, OperationLog{Operation: operationDeleteRoom, RoomID: roomID, Error: operationError})
	return operationError
}

// SetRoomMaintenance moves an available room into maintenance, or back out of it.
func (service *Service) SetRoomMaintenance(ctx context.Context, roomID RoomID, enabled bool) (Room, error) {
	from, to := RoomStatusMaintenance, RoomStatusAvailable
	if enabled {
		from, to = RoomStatusAvailable, RoomStatusMaintenance
	}
	room, operationError := func() (Room, error) {
		current, err := service.store.GetRoom(ctx, roomID)
		if err != nil {
			return Room{}, err
		}
		if current.Status == to {
			return current, nil
		}
		if current.Status != from {
			return Room{}, fmt.Errorf("%w: room is %s", ErrRoomNotAdjustable, current.Status)
		}
		return service.store.UpdateRoom(ctx, roomID, RoomPatch{
			ExpectedStatus: roomStatusRef(from),
			Status:         roomStatusRef(to),
			UpdatedAt:      service.nowFn(),
		})
	}()
	service.logOperation(ctx, OperationLog{Operation: operationRoomMaintenance, RoomID: roomID, Error: operationError})
	return room, operationError
}

// GetReservation fetches a reservation by id.
func (service *Service) GetReservation(ctx context.Context, reservationID ReservationID) (Reservation, error) {
	return service.store.GetReservation(ctx, reservationID)
}

// ListReservations fetches reservations matching filter.
func (service *Service) ListReservations(ctx context.Context, filter ReservationFilter) ([]Reservation, error) {
	return service.store.ListReservations(ctx, filter)
}

// CreateReservation books an existing room in the confirmed status.
func (service *Service) CreateReservation(ctx context.Context, input ReservationInput) (Reservation, error) {
	reservation, operationError := service.createReservation(ctx, input)
	service.logOperation(ctx, OperationLog{
		Operation:     operationCreateReservation,
		ReservationID: reservation.ID,
		RoomID:        input.RoomID,
		Error:         operationError,
	})
	return reservation, operationError
}

func (service *Service) createReservation(ctx context.Context, input ReservationInput) (Reservation, error) {
	reservationID := input.ID
	if reservationID.IsZero() {
		generated, err := NewReservationID(service.newID())
		if err != nil {
			return Reservation{}, err
		}
		reservationID = generated
	}
	pending := input.TotalAmount
	if input.PendingAmount != nil {
		pending = *input.PendingAmount
	}
	now := service.nowFn()
	reservation, err := NewReservation(Reservation{
		ID:            reservationID,
		RoomID:        input.RoomID,
		GuestID:       input.GuestID,
		CheckInDate:   input.CheckInDate,
		CheckOutDate:  input.CheckOutDate,
		Status:        ReservationStatusConfirmed,
		TotalAmount:   input.TotalAmount,
		PendingAmount: pending,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return Reservation{}, err
	}
	if _, err := service.store.GetRoom(ctx, reservation.RoomID); err != nil {
		return Reservation{}, err
	}
	if err := service.store.CreateReservation(ctx, reservation); err != nil {
		return Reservation{}, err
	}
	return reservation, nil
}

// RecordPayment lowers the pending amount of a reservation by amount.
func (service *Service) RecordPayment(ctx context.Context, reservationID ReservationID, amount AmountCents) (Reservation, error) {
	reservation, operationError := func() (Reservation, error) {
		if !amount.IsPositive() {
			return Reservation{}, fmt.Errorf("%w: payment must be greater than zero", ErrInvalidAmountCents)
		}
		current, err := service.store.GetReservation(ctx, reservationID)
		if err != nil {
			return Reservation{}, err
		}
		if current.Status == ReservationStatusCancelled {
			return Reservation{}, fmt.Errorf("%w: reservation is cancelled", ErrInvalidReservationStatus)
		}
		if amount > current.PendingAmount {
			return Reservation{}, ErrPaymentExceedsPending
		}
		pending := current.PendingAmount - amount
		return service.store.UpdateReservation(ctx, reservationID, ReservationPatch{
			ExpectedStatus: statusRef(current.Status),
			PendingAmount:  &pending,
			UpdatedAt:      service.nowFn(),
		})
	}()
	service.logOperation(ctx, OperationLog{
		Operation:     operationRecordPayment,
		ReservationID: reservationID,
		RoomID:        reservation.RoomID,
		Error:         operationError,
	})
	return reservation, operationError
}

// CancelReservation cancels a reservation that has not checked in yet.
func (service *Service) CancelReservation(ctx context.Context, reservationID ReservationID) (Reservation, error) {
	reservation, operationError := func() (Reservation, error) {
		current, err := service.store.GetReservation(ctx, reservationID)
		if err != nil {
			return Reservation{}, err
		}
		if current.Status != ReservationStatusConfirmed {
			return Reservation{}, fmt.Errorf("%w: reservation is %s", ErrReservationNotCancellable, current.Status)
		}
		return service.store.UpdateReservation(ctx, reservationID, ReservationPatch{
			ExpectedStatus: statusRef(ReservationStatusConfirmed),
			Status:         statusRef(ReservationStatusCancelled),
			UpdatedAt:      service.nowFn(),
		})
	}()
	service.logOperation(ctx, OperationLog{
		Operation:     operationCancelReservation,
		ReservationID: reservationID,
		RoomID:        reservation.RoomID,
		Error:         operationError,
	})
	return reservation, operationError
}

// DeleteReservation removes a reservation that is not checked in.
func (service *Service) DeleteReservation(ctx context.Context, reservationID ReservationID) error {
	operationError := func() error {
		current, err := service.store.GetReservation(ctx, reservationID)
		if err != nil {
			return err
		}
		if current.Status == ReservationStatusActive {
			return ErrReservationActive
		}
		return service.store.DeleteReservation(ctx, reservationID)
	}()
	service.logOperation(ctx, OperationLog{Operation: operationDeleteReservation, ReservationID: reservationID, Error: operationError})
	return operationError
}
