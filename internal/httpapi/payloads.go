package httpapi

import (
	"fmt"

	"github.com/MarkoPoloResearchLab/frontdesk/pkg/frontdesk"
)

type createRoomRequest struct {
	ID                 string `json:"id"`
	Number             string `json:"number"`
	Type               string `json:"type"`
	PricePerNightCents int64  `json:"price_per_night_cents"`
}

func (request createRoomRequest) input() (frontdesk.RoomInput, error) {
	var input frontdesk.RoomInput
	if request.ID != "" {
		roomID, err := frontdesk.NewRoomID(request.ID)
		if err != nil {
			return frontdesk.RoomInput{}, err
		}
		input.ID = roomID
	}
	price, err := frontdesk.NewAmountCents(request.PricePerNightCents)
	if err != nil {
		return frontdesk.RoomInput{}, err
	}
	input.Number = request.Number
	input.Type = request.Type
	input.PricePerNight = price
	return input, nil
}

type updateRoomRequest struct {
	Number             *string `json:"number"`
	Type               *string `json:"type"`
	PricePerNightCents *int64  `json:"price_per_night_cents"`
}

func (request updateRoomRequest) update() (frontdesk.RoomUpdate, error) {
	update := frontdesk.RoomUpdate{Number: request.Number, Type: request.Type}
	if request.PricePerNightCents != nil {
		price, err := frontdesk.NewAmountCents(*request.PricePerNightCents)
		if err != nil {
			return frontdesk.RoomUpdate{}, err
		}
		update.PricePerNight = &price
	}
	return update, nil
}

type maintenanceRequest struct {
	Enabled *bool `json:"enabled"`
}

type createReservationRequest struct {
	ID                 string `json:"id"`
	RoomID             string `json:"room_id"`
	GuestID            string `json:"guest_id"`
	CheckInDate        string `json:"check_in_date"`
	CheckOutDate       string `json:"check_out_date"`
	TotalAmountCents   int64  `json:"total_amount_cents"`
	PendingAmountCents *int64 `json:"pending_amount_cents"`
}

func (request createReservationRequest) input() (frontdesk.ReservationInput, error) {
	var input frontdesk.ReservationInput
	if request.ID != "" {
		reservationID, err := frontdesk.NewReservationID(request.ID)
		if err != nil {
			return frontdesk.ReservationInput{}, err
		}
		input.ID = reservationID
	}
	roomID, err := frontdesk.NewRoomID(request.RoomID)
	if err != nil {
		return frontdesk.ReservationInput{}, err
	}
	guestID, err := frontdesk.NewGuestID(request.GuestID)
	if err != nil {
		return frontdesk.ReservationInput{}, err
	}
	checkIn, err := frontdesk.ParseDate(request.CheckInDate)
	if err != nil {
		return frontdesk.ReservationInput{}, fmt.Errorf("check_in_date: %w", err)
	}
	checkOut, err := frontdesk.ParseDate(request.CheckOutDate)
	if err != nil {
		return frontdesk.ReservationInput{}, fmt.Errorf("check_out_date: %w", err)
	}
	total, err := frontdesk.NewAmountCents(request.TotalAmountCents)
	if err != nil {
		return frontdesk.ReservationInput{}, err
	}
	if request.PendingAmountCents != nil {
		pending, err := frontdesk.NewAmountCents(*request.PendingAmountCents)
		if err != nil {
			return frontdesk.ReservationInput{}, err
		}
		input.PendingAmount = &pending
	}
	input.RoomID = roomID
	input.GuestID = guestID
	input.CheckInDate = checkIn
	input.CheckOutDate = checkOut
	input.TotalAmount = total
	return input, nil
}

type paymentRequest struct {
	AmountCents int64 `json:"amount_cents"`
}

type roomPayload struct {
	ID                 string `json:"id"`
	Number             string `json:"number"`
	Type               string `json:"type"`
	PricePerNightCents int64  `json:"price_per_night_cents"`
	Status             string `json:"status"`
}

func newRoomPayload(room frontdesk.Room) roomPayload {
	return roomPayload{
		ID:                 room.ID.String(),
		Number:             room.Number,
		Type:               room.Type,
		PricePerNightCents: room.PricePerNight.Int64(),
		Status:             room.Status.String(),
	}
}

type reservationPayload struct {
	ID                 string  `json:"id"`
	RoomID             string  `json:"room_id"`
	GuestID            string  `json:"guest_id"`
	CheckInDate        string  `json:"check_in_date"`
	CheckOutDate       string  `json:"check_out_date"`
	Status             string  `json:"status"`
	ActualCheckIn      *string `json:"actual_check_in"`
	ActualCheckOut     *string `json:"actual_check_out"`
	TotalAmountCents   int64   `json:"total_amount_cents"`
	PendingAmountCents int64   `json:"pending_amount_cents"`
}

func newReservationPayload(reservation frontdesk.Reservation) reservationPayload {
	return reservationPayload{
		ID:                 reservation.ID.String(),
		RoomID:             reservation.RoomID.String(),
		GuestID:            reservation.GuestID.String(),
		CheckInDate:        reservation.CheckInDate.String(),
		CheckOutDate:       reservation.CheckOutDate.String(),
		Status:             reservation.Status.String(),
		ActualCheckIn:      formatTime(reservation.ActualCheckIn),
		ActualCheckOut:     formatTime(reservation.ActualCheckOut),
		TotalAmountCents:   reservation.TotalAmount.Int64(),
		PendingAmountCents: reservation.PendingAmount.Int64(),
	}
}

type transitionPayload struct {
	Success     bool                `json:"success"`
	Reservation *reservationPayload `json:"reservation"`
	Room        *roomPayload        `json:"room"`
	Error       string              `json:"error,omitempty"`
	Kind        string              `json:"kind,omitempty"`
}

func newTransitionPayload(result frontdesk.TransitionResult) transitionPayload {
	payload := transitionPayload{Success: result.Success, Error: result.Error, Kind: result.Kind.String()}
	if result.Reservation != nil {
		reservation := newReservationPayload(*result.Reservation)
		payload.Reservation = &reservation
	}
	if result.Room != nil {
		room := newRoomPayload(*result.Room)
		payload.Room = &room
	}
	return payload
}
