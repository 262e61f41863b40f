package memstore

import (
	"context"
	"errors"
	"time"

	"github.com/MarkoPoloResearchLab/frontdesk/pkg/frontdesk"
)

type demoRoom struct {
	id     string
	number string
	kind   string
	price  int64
	status frontdesk.RoomStatus
}

type demoReservation struct {
	id           string
	roomID       string
	guestID      string
	checkInDays  int
	nights       int
	status       frontdesk.ReservationStatus
	totalCents   int64
	pendingCents int64
}

var demoRooms = []demoRoom{
	{id: "room-101", number: "101", kind: "single", price: 9000, status: frontdesk.RoomStatusAvailable},
	{id: "room-102", number: "102", kind: "double", price: 12000, status: frontdesk.RoomStatusOccupied},
	{id: "room-103", number: "103", kind: "double", price: 12000, status: frontdesk.RoomStatusMaintenance},
	{id: "room-201", number: "201", kind: "suite", price: 25000, status: frontdesk.RoomStatusOccupied},
	{id: "room-202", number: "202", kind: "suite", price: 25000, status: frontdesk.RoomStatusAvailable},
}

var demoReservations = []demoReservation{
	{id: "res-arrival", roomID: "room-101", guestID: "guest-ana", checkInDays: 0, nights: 2, status: frontdesk.ReservationStatusConfirmed, totalCents: 18000, pendingCents: 18000},
	{id: "res-future", roomID: "room-202", guestID: "guest-ben", checkInDays: 3, nights: 4, status: frontdesk.ReservationStatusConfirmed, totalCents: 100000, pendingCents: 100000},
	{id: "res-inhouse", roomID: "room-102", guestID: "guest-chen", checkInDays: -2, nights: 3, status: frontdesk.ReservationStatusActive, totalCents: 36000, pendingCents: 0},
	{id: "res-balance", roomID: "room-201", guestID: "guest-dara", checkInDays: -1, nights: 2, status: frontdesk.ReservationStatusActive, totalCents: 50000, pendingCents: 15000},
}

// SeedDemo loads a small hotel into store: arrivals, in-house guests and one
// guest with an open balance. Records that already exist are left as they are.
func SeedDemo(ctx context.Context, store frontdesk.Store, now time.Time, location *time.Location) error {
	for _, seed := range demoRooms {
		roomID, err := frontdesk.NewRoomID(seed.id)
		if err != nil {
			return err
		}
		room, err := frontdesk.NewRoom(frontdesk.Room{
			ID:            roomID,
			Number:        seed.number,
			Type:          seed.kind,
			PricePerNight: frontdesk.AmountCents(seed.price),
			Status:        seed.status,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		if err != nil {
			return err
		}
		if err := store.CreateRoom(ctx, room); err != nil && !errors.Is(err, frontdesk.ErrRoomExists) {
			return err
		}
	}
	today := frontdesk.DateOf(now, location)
	for _, seed := range demoReservations {
		reservation, err := seed.build(today, now)
		if err != nil {
			return err
		}
		if err := store.CreateReservation(ctx, reservation); err != nil && !errors.Is(err, frontdesk.ErrReservationExists) {
			return err
		}
	}
	return nil
}

func (seed demoReservation) build(today frontdesk.Date, now time.Time) (frontdesk.Reservation, error) {
	reservationID, err := frontdesk.NewReservationID(seed.id)
	if err != nil {
		return frontdesk.Reservation{}, err
	}
	roomID, err := frontdesk.NewRoomID(seed.roomID)
	if err != nil {
		return frontdesk.Reservation{}, err
	}
	guestID, err := frontdesk.NewGuestID(seed.guestID)
	if err != nil {
		return frontdesk.Reservation{}, err
	}
	checkIn := today.AddDays(seed.checkInDays)
	var actualCheckIn *time.Time
	if seed.status == frontdesk.ReservationStatusActive {
		arrived := now.AddDate(0, 0, seed.checkInDays)
		actualCheckIn = &arrived
	}
	return frontdesk.NewReservation(frontdesk.Reservation{
		ID:            reservationID,
		RoomID:        roomID,
		GuestID:       guestID,
		CheckInDate:   checkIn,
		CheckOutDate:  checkIn.AddDays(seed.nights),
		Status:        seed.status,
		ActualCheckIn: actualCheckIn,
		TotalAmount:   frontdesk.AmountCents(seed.totalCents),
		PendingAmount: frontdesk.AmountCents(seed.pendingCents),
		CreatedAt:     now,
		UpdatedAt:     now,
	})
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}
