package frontdesk

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"
)

var fixedNow = time.Date(2026, time.March, 10, 14, 30, 0, 0, time.UTC)

func fixedClock() time.Time {
	return fixedNow
}

type stubStore struct {
	mu                      sync.Mutex
	reservations            map[ReservationID]Reservation
	rooms                   map[RoomID]Room
	getReservationError     error
	getRoomError            error
	listError               error
	createError             error
	deleteError             error
	updateRoomError         error
	updateReservationErrors []error
	updateReservationCalls  int
	updateRoomCalls         int
	afterReservationWrite   func()
}

func newStubStore(test *testing.T) *stubStore {
	test.Helper()
	return &stubStore{
		reservations: make(map[ReservationID]Reservation),
		rooms:        make(map[RoomID]Room),
	}
}

func (store *stubStore) GetReservation(ctx context.Context, reservationID ReservationID) (Reservation, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.getReservationError != nil {
		return Reservation{}, store.getReservationError
	}
	reservation, ok := store.reservations[reservationID]
	if !ok {
		return Reservation{}, ErrReservationNotFound
	}
	return reservation, nil
}

func (store *stubStore) ListReservations(ctx context.Context, filter ReservationFilter) ([]Reservation, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.listError != nil {
		return nil, store.listError
	}
	reservations := make([]Reservation, 0, len(store.reservations))
	for _, reservation := range store.reservations {
		if filter.Matches(reservation) {
			reservations = append(reservations, reservation)
		}
	}
	sort.Slice(reservations, func(left, right int) bool {
		return reservations[left].ID.String() < reservations[right].ID.String()
	})
	return reservations, nil
}

func (store *stubStore) CreateReservation(ctx context.Context, reservation Reservation) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.createError != nil {
		return store.createError
	}
	if _, exists := store.reservations[reservation.ID]; exists {
		return ErrReservationExists
	}
	store.reservations[reservation.ID] = reservation
	return nil
}

func (store *stubStore) UpdateReservation(ctx context.Context, reservationID ReservationID, patch ReservationPatch) (Reservation, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.updateReservationCalls++
	if err := ctx.Err(); err != nil {
		return Reservation{}, err
	}
	if len(store.updateReservationErrors) > 0 {
		queued := store.updateReservationErrors[0]
		store.updateReservationErrors = store.updateReservationErrors[1:]
		if queued != nil {
			return Reservation{}, queued
		}
	}
	reservation, ok := store.reservations[reservationID]
	if !ok {
		return Reservation{}, ErrReservationNotFound
	}
	if patch.ExpectedStatus != nil && reservation.Status != *patch.ExpectedStatus {
		return Reservation{}, ErrStaleRecord
	}
	updated := patch.Apply(reservation)
	store.reservations[reservationID] = updated
	if store.afterReservationWrite != nil {
		store.afterReservationWrite()
	}
	return updated, nil
}

func (store *stubStore) DeleteReservation(ctx context.Context, reservationID ReservationID) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.deleteError != nil {
		return store.deleteError
	}
	if _, ok := store.reservations[reservationID]; !ok {
		return ErrReservationNotFound
	}
	delete(store.reservations, reservationID)
	return nil
}

func (store *stubStore) GetRoom(ctx context.Context, roomID RoomID) (Room, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.getRoomError != nil {
		return Room{}, store.getRoomError
	}
	room, ok := store.rooms[roomID]
	if !ok {
		return Room{}, ErrRoomNotFound
	}
	return room, nil
}

func (store *stubStore) ListRooms(ctx context.Context) ([]Room, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.listError != nil {
		return nil, store.listError
	}
	rooms := make([]Room, 0, len(store.rooms))
	for _, room := range store.rooms {
		rooms = append(rooms, room)
	}
	sort.Slice(rooms, func(left, right int) bool {
		return rooms[left].Number < rooms[right].Number
	})
	return rooms, nil
}

func (store *stubStore) CreateRoom(ctx context.Context, room Room) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.createError != nil {
		return store.createError
	}
	if _, exists := store.rooms[room.ID]; exists {
		return ErrRoomExists
	}
	store.rooms[room.ID] = room
	return nil
}

func (store *stubStore) UpdateRoom(ctx context.Context, roomID RoomID, patch RoomPatch) (Room, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.updateRoomCalls++
	if err := ctx.Err(); err != nil {
		return Room{}, err
	}
	if store.updateRoomError != nil {
		return Room{}, store.updateRoomError
	}
	room, ok := store.rooms[roomID]
	if !ok {
		return Room{}, ErrRoomNotFound
	}
	if patch.ExpectedStatus != nil && room.Status != *patch.ExpectedStatus {
		return Room{}, ErrStaleRecord
	}
	updated := patch.Apply(room)
	store.rooms[roomID] = updated
	return updated, nil
}

func (store *stubStore) DeleteRoom(ctx context.Context, roomID RoomID) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.deleteError != nil {
		return store.deleteError
	}
	if _, ok := store.rooms[roomID]; !ok {
		return ErrRoomNotFound
	}
	delete(store.rooms, roomID)
	return nil
}

func (store *stubStore) putRoom(room Room) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.rooms[room.ID] = room
}

func (store *stubStore) putReservation(reservation Reservation) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.reservations[reservation.ID] = reservation
}

func (store *stubStore) mustReservation(test *testing.T, reservationID ReservationID) Reservation {
	test.Helper()
	store.mu.Lock()
	defer store.mu.Unlock()
	reservation, ok := store.reservations[reservationID]
	if !ok {
		test.Fatalf("reservation %s not found", reservationID.String())
	}
	return reservation
}

func (store *stubStore) mustRoom(test *testing.T, roomID RoomID) Room {
	test.Helper()
	store.mu.Lock()
	defer store.mu.Unlock()
	room, ok := store.rooms[roomID]
	if !ok {
		test.Fatalf("room %s not found", roomID.String())
	}
	return room
}

// transactionalStore applies WithTx atomically by restoring a snapshot on failure.
type transactionalStore struct {
	*stubStore
	transactions int
	rollbacks    int
}

func newTransactionalStore(test *testing.T) *transactionalStore {
	return &transactionalStore{stubStore: newStubStore(test)}
}

func (store *transactionalStore) WithTx(ctx context.Context, fn func(ctx context.Context, txStore Store) error) error {
	store.transactions++
	store.mu.Lock()
	reservations := make(map[ReservationID]Reservation, len(store.reservations))
	for key, value := range store.reservations {
		reservations[key] = value
	}
	rooms := make(map[RoomID]Room, len(store.rooms))
	for key, value := range store.rooms {
		rooms[key] = value
	}
	store.mu.Unlock()
	if err := fn(ctx, store.stubStore); err != nil {
		store.mu.Lock()
		store.reservations = reservations
		store.rooms = rooms
		store.mu.Unlock()
		store.rollbacks++
		return err
	}
	return nil
}

func mustNewService(test *testing.T, store Store, options ...ServiceOption) *Service {
	test.Helper()
	service, err := NewService(store, fixedClock, options...)
	if err != nil {
		test.Fatalf("new service: %v", err)
	}
	return service
}

func mustReservationID(test *testing.T, raw string) ReservationID {
	test.Helper()
	value, err := NewReservationID(raw)
	if err != nil {
		test.Fatalf("reservation id: %v", err)
	}
	return value
}

func mustRoomID(test *testing.T, raw string) RoomID {
	test.Helper()
	value, err := NewRoomID(raw)
	if err != nil {
		test.Fatalf("room id: %v", err)
	}
	return value
}

func mustGuestID(test *testing.T, raw string) GuestID {
	test.Helper()
	value, err := NewGuestID(raw)
	if err != nil {
		test.Fatalf("guest id: %v", err)
	}
	return value
}

func mustAmountCents(test *testing.T, raw int64) AmountCents {
	test.Helper()
	value, err := NewAmountCents(raw)
	if err != nil {
		test.Fatalf("amount: %v", err)
	}
	return value
}

func mustRoomRecord(test *testing.T, rawID string, status RoomStatus) Room {
	test.Helper()
	room, err := NewRoom(Room{
		ID:            mustRoomID(test, rawID),
		Number:        "10" + rawID,
		Type:          "double",
		PricePerNight: mustAmountCents(test, 12000),
		Status:        status,
		CreatedAt:     fixedNow.Add(-48 * time.Hour),
		UpdatedAt:     fixedNow.Add(-48 * time.Hour),
	})
	if err != nil {
		test.Fatalf("room: %v", err)
	}
	return room
}

func mustReservationRecord(test *testing.T, rawID string, roomID RoomID, status ReservationStatus, checkIn Date, pending int64) Reservation {
	test.Helper()
	reservation, err := NewReservation(Reservation{
		ID:            mustReservationID(test, rawID),
		RoomID:        roomID,
		GuestID:       mustGuestID(test, "guest-"+rawID),
		CheckInDate:   checkIn,
		CheckOutDate:  checkIn.AddDays(3),
		Status:        status,
		TotalAmount:   mustAmountCents(test, 36000),
		PendingAmount: mustAmountCents(test, pending),
		CreatedAt:     fixedNow.Add(-24 * time.Hour),
		UpdatedAt:     fixedNow.Add(-24 * time.Hour),
	})
	if err != nil {
		test.Fatalf("reservation: %v", err)
	}
	return reservation
}

func today() Date {
	return DateOf(fixedNow, time.UTC)
}

type recorderLogger struct {
	mu      sync.Mutex
	entries []OperationLog
}

func (logger *recorderLogger) LogOperation(_ context.Context, entry OperationLog) {
	logger.mu.Lock()
	defer logger.mu.Unlock()
	logger.entries = append(logger.entries, entry)
}

func (logger *recorderLogger) operations() []string {
	logger.mu.Lock()
	defer logger.mu.Unlock()
	operations := make([]string, 0, len(logger.entries))
	for _, entry := range logger.entries {
		operations = append(operations, entry.Operation)
	}
	return operations
}

type recorderPublisher struct {
	err    error
	events []TransitionEvent
}

func (publisher *recorderPublisher) Publish(_ context.Context, event TransitionEvent) error {
	publisher.events = append(publisher.events, event)
	return publisher.err
}

type stubLocker struct {
	err      error
	keys     []string
	releases int
}

func (locker *stubLocker) Acquire(_ context.Context, key string) (func(context.Context) error, error) {
	locker.keys = append(locker.keys, key)
	if locker.err != nil {
		return nil, locker.err
	}
	return func(context.Context) error {
		locker.releases++
		return nil
	}, nil
}
