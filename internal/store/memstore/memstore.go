// Package memstore keeps rooms and reservations in process memory.
// Each call is atomic for the record it touches; there is no multi-record transaction,
// so frontdesk.Service falls back to compensating writes.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/MarkoPoloResearchLab/frontdesk/pkg/frontdesk"
)

const (
	errorOperationStore     = "memstore"
	errorSubjectReservation = "reservation"
	errorSubjectRoom        = "room"
	errorCodeCreate         = "create"
	errorCodeDelete         = "delete"
	errorCodeGet            = "get"
	errorCodeStale          = "stale"
	errorCodeUpdate         = "update"
)

// Store implements frontdesk.Store with maps guarded by a mutex.
type Store struct {
	mu           sync.RWMutex
	rooms        map[frontdesk.RoomID]frontdesk.Room
	reservations map[frontdesk.ReservationID]frontdesk.Reservation
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		rooms:        make(map[frontdesk.RoomID]frontdesk.Room),
		reservations: make(map[frontdesk.ReservationID]frontdesk.Reservation),
	}
}

func (store *Store) GetReservation(ctx context.Context, reservationID frontdesk.ReservationID) (frontdesk.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return frontdesk.Reservation{}, wrapStoreError(errorSubjectReservation, errorCodeGet, err)
	}
	store.mu.RLock()
	defer store.mu.RUnlock()
	reservation, ok := store.reservations[reservationID]
	if !ok {
		return frontdesk.Reservation{}, wrapStoreError(errorSubjectReservation, errorCodeGet, frontdesk.ErrReservationNotFound)
	}
	return cloneReservation(reservation), nil
}

func (store *Store) ListReservations(ctx context.Context, filter frontdesk.ReservationFilter) ([]frontdesk.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrapStoreError(errorSubjectReservation, errorCodeGet, err)
	}
	store.mu.RLock()
	defer store.mu.RUnlock()
	reservations := make([]frontdesk.Reservation, 0, len(store.reservations))
	for _, reservation := range store.reservations {
		if filter.Matches(reservation) {
			reservations = append(reservations, cloneReservation(reservation))
		}
	}
	sort.Slice(reservations, func(left, right int) bool {
		if !reservations[left].CheckInDate.Equal(reservations[right].CheckInDate) {
			return reservations[left].CheckInDate.Before(reservations[right].CheckInDate)
		}
		return reservations[left].ID.String() < reservations[right].ID.String()
	})
	return reservations, nil
}

func (store *Store) CreateReservation(ctx context.Context, reservation frontdesk.Reservation) error {
	if err := ctx.Err(); err != nil {
		return wrapStoreError(errorSubjectReservation, errorCodeCreate, err)
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	if _, exists := store.reservations[reservation.ID]; exists {
		return wrapStoreError(errorSubjectReservation, errorCodeCreate, frontdesk.ErrReservationExists)
	}
	store.reservations[reservation.ID] = cloneReservation(reservation)
	return nil
}

func (store *Store) UpdateReservation(ctx context.Context, reservationID frontdesk.ReservationID, patch frontdesk.ReservationPatch) (frontdesk.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return frontdesk.Reservation{}, wrapStoreError(errorSubjectReservation, errorCodeUpdate, err)
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	current, ok := store.reservations[reservationID]
	if !ok {
		return frontdesk.Reservation{}, wrapStoreError(errorSubjectReservation, errorCodeUpdate, frontdesk.ErrReservationNotFound)
	}
	if patch.ExpectedStatus != nil && current.Status != *patch.ExpectedStatus {
		return frontdesk.Reservation{}, wrapStoreError(errorSubjectReservation, errorCodeStale, frontdesk.ErrStaleRecord)
	}
	updated := patch.Apply(current)
	store.reservations[reservationID] = updated
	return cloneReservation(updated), nil
}

func (store *Store) DeleteReservation(ctx context.Context, reservationID frontdesk.ReservationID) error {
	if err := ctx.Err(); err != nil {
		return wrapStoreError(errorSubjectReservation, errorCodeDelete, err)
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	if _, ok := store.reservations[reservationID]; !ok {
		return wrapStoreError(errorSubjectReservation, errorCodeDelete, frontdesk.ErrReservationNotFound)
	}
	delete(store.reservations, reservationID)
	return nil
}

func (store *Store) GetRoom(ctx context.Context, roomID frontdesk.RoomID) (frontdesk.Room, error) {
	if err := ctx.Err(); err != nil {
		return frontdesk.Room{}, wrapStoreError(errorSubjectRoom, errorCodeGet, err)
	}
	store.mu.RLock()
	defer store.mu.RUnlock()
	room, ok := store.rooms[roomID]
	if !ok {
		return frontdesk.Room{}, wrapStoreError(errorSubjectRoom, errorCodeGet, frontdesk.ErrRoomNotFound)
	}
	return room, nil
}

func (store *Store) ListRooms(ctx context.Context) ([]frontdesk.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrapStoreError(errorSubjectRoom, errorCodeGet, err)
	}
	store.mu.RLock()
	defer store.mu.RUnlock()
	rooms := make([]frontdesk.Room, 0, len(store.rooms))
	for _, room := range store.rooms {
		rooms = append(rooms, room)
	}
	sort.Slice(rooms, func(left, right int) bool {
		return rooms[left].Number < rooms[right].Number
	})
	return rooms, nil
}

func (store *Store) CreateRoom(ctx context.Context, room frontdesk.Room) error {
	if err := ctx.Err(); err != nil {
		return wrapStoreError(errorSubjectRoom, errorCodeCreate, err)
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	if _, exists := store.rooms[room.ID]; exists {
		return wrapStoreError(errorSubjectRoom, errorCodeCreate, frontdesk.ErrRoomExists)
	}
	if store.numberTaken(room.Number, room.ID) {
		return wrapStoreError(errorSubjectRoom, errorCodeCreate, frontdesk.ErrRoomExists)
	}
	store.rooms[room.ID] = room
	return nil
}

func (store *Store) UpdateRoom(ctx context.Context, roomID frontdesk.RoomID, patch frontdesk.RoomPatch) (frontdesk.Room, error) {
	if err := ctx.Err(); err != nil {
		return frontdesk.Room{}, wrapStoreError(errorSubjectRoom, errorCodeUpdate, err)
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	current, ok := store.rooms[roomID]
	if !ok {
		return frontdesk.Room{}, wrapStoreError(errorSubjectRoom, errorCodeUpdate, frontdesk.ErrRoomNotFound)
	}
	if patch.ExpectedStatus != nil && current.Status != *patch.ExpectedStatus {
		return frontdesk.Room{}, wrapStoreError(errorSubjectRoom, errorCodeStale, frontdesk.ErrStaleRecord)
	}
	if patch.Number != nil && store.numberTaken(*patch.Number, roomID) {
		return frontdesk.Room{}, wrapStoreError(errorSubjectRoom, errorCodeUpdate, frontdesk.ErrRoomExists)
	}
	updated := patch.Apply(current)
	store.rooms[roomID] = updated
	return updated, nil
}

func (store *Store) DeleteRoom(ctx context.Context, roomID frontdesk.RoomID) error {
	if err := ctx.Err(); err != nil {
		return wrapStoreError(errorSubjectRoom, errorCodeDelete, err)
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	if _, ok := store.rooms[roomID]; !ok {
		return wrapStoreError(errorSubjectRoom, errorCodeDelete, frontdesk.ErrRoomNotFound)
	}
	delete(store.rooms, roomID)
	return nil
}

// numberTaken must be called with the write lock held.
func (store *Store) numberTaken(number string, except frontdesk.RoomID) bool {
	for id, room := range store.rooms {
		if id != except && room.Number == number {
			return true
		}
	}
	return false
}

func cloneReservation(reservation frontdesk.Reservation) frontdesk.Reservation {
	reservation.ActualCheckIn = cloneTime(reservation.ActualCheckIn)
	reservation.ActualCheckOut = cloneTime(reservation.ActualCheckOut)
	return reservation
}

func wrapStoreError(subject string, code string, err error) error {
	return frontdesk.WrapError(errorOperationStore, subject, code, err)
}
