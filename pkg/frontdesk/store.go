package frontdesk

import (
	"context"
	"time"
)

// Store is the persistence contract used by Service. All writes are atomic per record.
type Store interface {
	GetReservation(ctx context.Context, reservationID ReservationID) (Reservation, error)
	ListReservations(ctx context.Context, filter ReservationFilter) ([]Reservation, error)
	CreateReservation(ctx context.Context, reservation Reservation) error
	UpdateReservation(ctx context.Context, reservationID ReservationID, patch ReservationPatch) (Reservation, error)
	DeleteReservation(ctx context.Context, reservationID ReservationID) error
	GetRoom(ctx context.Context, roomID RoomID) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	CreateRoom(ctx context.Context, room Room) error
	UpdateRoom(ctx context.Context, roomID RoomID, patch RoomPatch) (Room, error)
	DeleteRoom(ctx context.Context, roomID RoomID) error
}

// Transactor is implemented by stores that can apply several writes atomically.
// Service prefers it over compensating writes when available.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, txStore Store) error) error
}

// ReservationFilter narrows ListReservations. Zero values match everything.
type ReservationFilter struct {
	RoomID RoomID
	Status ReservationStatus
}

// Matches reports whether reservation passes the filter.
func (filter ReservationFilter) Matches(reservation Reservation) bool {
	if !filter.RoomID.IsZero() && reservation.RoomID != filter.RoomID {
		return false
	}
	if filter.Status != "" && reservation.Status != filter.Status {
		return false
	}
	return true
}

// TimestampPatch sets or clears a nullable timestamp when Set is true.
type TimestampPatch struct {
	Set   bool
	Value *time.Time
}

// SetTimestamp returns a patch writing value.
func SetTimestamp(value time.Time) TimestampPatch {
	return TimestampPatch{Set: true, Value: &value}
}

// RestoreTimestamp returns a patch writing value, which may be nil to clear the column.
func RestoreTimestamp(value *time.Time) TimestampPatch {
	return TimestampPatch{Set: true, Value: value}
}

// ReservationPatch is a partial update. Nil fields are left untouched.
// When ExpectedStatus is set the write only applies if the stored status matches,
// otherwise the store returns ErrStaleRecord.
type ReservationPatch struct {
	ExpectedStatus *ReservationStatus
	Status         *ReservationStatus
	RoomID         *RoomID
	CheckInDate    *Date
	CheckOutDate   *Date
	TotalAmount    *AmountCents
	PendingAmount  *AmountCents
	ActualCheckIn  TimestampPatch
	ActualCheckOut TimestampPatch
	UpdatedAt      time.Time
}

// Apply returns reservation with the patch applied. It does not check ExpectedStatus.
func (patch ReservationPatch) Apply(reservation Reservation) Reservation {
	if patch.Status != nil {
		reservation.Status = *patch.Status
	}
	if patch.RoomID != nil {
		reservation.RoomID = *patch.RoomID
	}
	if patch.CheckInDate != nil {
		reservation.CheckInDate = *patch.CheckInDate
	}
	if patch.CheckOutDate != nil {
		reservation.CheckOutDate = *patch.CheckOutDate
	}
	if patch.TotalAmount != nil {
		reservation.TotalAmount = *patch.TotalAmount
	}
	if patch.PendingAmount != nil {
		reservation.PendingAmount = *patch.PendingAmount
	}
	if patch.ActualCheckIn.Set {
		reservation.ActualCheckIn = copyTime(patch.ActualCheckIn.Value)
	}
	if patch.ActualCheckOut.Set {
		reservation.ActualCheckOut = copyTime(patch.ActualCheckOut.Value)
	}
	if !patch.UpdatedAt.IsZero() {
		reservation.UpdatedAt = patch.UpdatedAt
	}
	return reservation
}

// RoomPatch is a partial update. Nil fields are left untouched.
// ExpectedStatus guards the write like ReservationPatch.ExpectedStatus.
type RoomPatch struct {
	ExpectedStatus *RoomStatus
	Status         *RoomStatus
	Number         *string
	Type           *string
	PricePerNight  *AmountCents
	UpdatedAt      time.Time
}

// Apply returns room with the patch applied. It does not check ExpectedStatus.
func (patch RoomPatch) Apply(room Room) Room {
	if patch.Status != nil {
		room.Status = *patch.Status
	}
	if patch.Number != nil {
		room.Number = *patch.Number
	}
	if patch.Type != nil {
		room.Type = *patch.Type
	}
	if patch.PricePerNight != nil {
		room.PricePerNight = *patch.PricePerNight
	}
	if !patch.UpdatedAt.IsZero() {
		room.UpdatedAt = patch.UpdatedAt
	}
	return room
}

func copyTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}
