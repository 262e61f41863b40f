package frontdesk

import (
	"fmt"
	"strings"
	"time"
)

// ReservationID identifies a reservation.
type ReservationID struct {
	value string
}

// RoomID identifies a room.
type RoomID struct {
	value string
}

// GuestID identifies the guest holding a reservation.
type GuestID struct {
	value string
}

// AmountCents is a non-negative currency amount in cents.
type AmountCents int64

// ReservationStatus defines the reservation lifecycle.
type ReservationStatus string

const (
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusActive    ReservationStatus = "active"
	ReservationStatusFinished  ReservationStatus = "finished"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

// RoomStatus defines room occupancy.
type RoomStatus string

const (
	RoomStatusAvailable   RoomStatus = "available"
	RoomStatusOccupied    RoomStatus = "occupied"
	RoomStatusMaintenance RoomStatus = "maintenance"
)

// Reservation is a stay booked by a guest for a room.
type Reservation struct {
	ID             ReservationID
	RoomID         RoomID
	GuestID        GuestID
	CheckInDate    Date
	CheckOutDate   Date
	Status         ReservationStatus
	ActualCheckIn  *time.Time
	ActualCheckOut *time.Time
	TotalAmount    AmountCents
	PendingAmount  AmountCents
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Room is a physical unit occupied by at most one active reservation.
type Room struct {
	ID            RoomID
	Number        string
	Type          string
	PricePerNight AmountCents
	Status        RoomStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewReservationID validates and normalizes a reservation id.
func NewReservationID(raw string) (ReservationID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ReservationID{}, fmt.Errorf("%w: empty value", ErrInvalidReservationID)
	}
	return ReservationID{value: trimmed}, nil
}

// String returns the normalized identifier.
func (id ReservationID) String() string {
	return id.value
}

// IsZero reports whether the identifier is unset.
func (id ReservationID) IsZero() bool {
	return id.value == ""
}

// NewRoomID validates and normalizes a room id.
func NewRoomID(raw string) (RoomID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return RoomID{}, fmt.Errorf("%w: empty value", ErrInvalidRoomID)
	}
	return RoomID{value: trimmed}, nil
}

// String returns the normalized identifier.
func (id RoomID) String() string {
	return id.value
}

// IsZero reports whether the identifier is unset.
func (id RoomID) IsZero() bool {
	return id.value == ""
}

// NewGuestID validates and normalizes a guest id.
func NewGuestID(raw string) (GuestID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return GuestID{}, fmt.Errorf("%w: empty value", ErrInvalidGuestID)
	}
	return GuestID{value: trimmed}, nil
}

// String returns the normalized identifier.
func (id GuestID) String() string {
	return id.value
}

// IsZero reports whether the identifier is unset.
func (id GuestID) IsZero() bool {
	return id.value == ""
}

// NewAmountCents validates an amount and ensures it is not negative.
func NewAmountCents(raw int64) (AmountCents, error) {
	if raw < 0 {
		return 0, fmt.Errorf("%w: must not be negative", ErrInvalidAmountCents)
	}
	return AmountCents(raw), nil
}

// Int64 exposes the raw cents value.
func (amount AmountCents) Int64() int64 {
	return int64(amount)
}

// IsPositive reports whether the amount is above zero.
func (amount AmountCents) IsPositive() bool {
	return amount > 0
}

// ParseReservationStatus validates a reservation status string.
func ParseReservationStatus(raw string) (ReservationStatus, error) {
	status := ReservationStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch status {
	case ReservationStatusConfirmed, ReservationStatusActive, ReservationStatusFinished, ReservationStatusCancelled:
		return status, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidReservationStatus, raw)
	}
}

// String returns the stored representation.
func (status ReservationStatus) String() string {
	return string(status)
}

// IsTerminal reports whether no transition leaves the status.
func (status ReservationStatus) IsTerminal() bool {
	return status == ReservationStatusFinished || status == ReservationStatusCancelled
}

// ParseRoomStatus validates a room status string.
func ParseRoomStatus(raw string) (RoomStatus, error) {
	status := RoomStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch status {
	case RoomStatusAvailable, RoomStatusOccupied, RoomStatusMaintenance:
		return status, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRoomStatus, raw)
	}
}

// String returns the stored representation.
func (status RoomStatus) String() string {
	return string(status)
}

// NewReservation validates a complete reservation record.
func NewReservation(reservation Reservation) (Reservation, error) {
	if reservation.ID.IsZero() {
		return Reservation{}, fmt.Errorf("%w: empty value", ErrInvalidReservationID)
	}
	if reservation.RoomID.IsZero() {
		return Reservation{}, fmt.Errorf("%w: empty value", ErrInvalidRoomID)
	}
	if reservation.GuestID.IsZero() {
		return Reservation{}, fmt.Errorf("%w: empty value", ErrInvalidGuestID)
	}
	status, err := ParseReservationStatus(reservation.Status.String())
	if err != nil {
		return Reservation{}, err
	}
	reservation.Status = status
	if reservation.CheckInDate.IsZero() || reservation.CheckOutDate.IsZero() {
		return Reservation{}, fmt.Errorf("%w: stay dates are required", ErrInvalidStayDates)
	}
	if reservation.CheckOutDate.Before(reservation.CheckInDate) {
		return Reservation{}, fmt.Errorf("%w: check-out date before check-in date", ErrInvalidStayDates)
	}
	if reservation.TotalAmount < 0 || reservation.PendingAmount < 0 {
		return Reservation{}, fmt.Errorf("%w: must not be negative", ErrInvalidAmountCents)
	}
	if reservation.PendingAmount > reservation.TotalAmount {
		return Reservation{}, fmt.Errorf("%w: pending amount exceeds total amount", ErrInvalidAmountCents)
	}
	return reservation, nil
}

// NewRoom validates a complete room record.
func NewRoom(room Room) (Room, error) {
	if room.ID.IsZero() {
		return Room{}, fmt.Errorf("%w: empty value", ErrInvalidRoomID)
	}
	room.Number = strings.TrimSpace(room.Number)
	if room.Number == "" {
		return Room{}, fmt.Errorf("%w: empty room number", ErrInvalidRoomNumber)
	}
	room.Type = strings.TrimSpace(room.Type)
	if room.PricePerNight < 0 {
		return Room{}, fmt.Errorf("%w: must not be negative", ErrInvalidAmountCents)
	}
	status, err := ParseRoomStatus(room.Status.String())
	if err != nil {
		return Room{}, err
	}
	room.Status = status
	return room, nil
}
