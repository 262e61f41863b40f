package frontdesk

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

var errStoreFailure = errors.New("store error")

func TestPerformCheckInActivatesReservationAndOccupiesRoom(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	room := mustRoomRecord(test, "room1", RoomStatusAvailable)
	store.putRoom(room)
	reservation := mustReservationRecord(test, "r1", room.ID, ReservationStatusConfirmed, today(), 0)
	store.putReservation(reservation)
	service := mustNewService(test, store)

	result := service.PerformCheckIn(context.Background(), reservation.ID)
	if !result.Success {
		test.Fatalf("expected success, got %+v", result)
	}
	if result.Error != "" || result.Kind != "" {
		test.Fatalf("expected no error on success, got %q (%s)", result.Error, result.Kind)
	}
	if result.Reservation == nil || result.Room == nil {
		test.Fatalf("expected both records in result, got %+v", result)
	}
	stored := store.mustReservation(test, reservation.ID)
	if stored.Status != ReservationStatusActive {
		test.Fatalf("expected active reservation, got %s", stored.Status)
	}
	if stored.ActualCheckIn == nil || !stored.ActualCheckIn.Equal(fixedNow) {
		test.Fatalf("expected actual check-in %v, got %v", fixedNow, stored.ActualCheckIn)
	}
	if !stored.UpdatedAt.Equal(fixedNow) {
		test.Fatalf("expected updated_at %v, got %v", fixedNow, stored.UpdatedAt)
	}
	storedRoom := store.mustRoom(test, room.ID)
	if storedRoom.Status != RoomStatusOccupied {
		test.Fatalf("expected occupied room, got %s", storedRoom.Status)
	}
	if !storedRoom.UpdatedAt.Equal(*stored.ActualCheckIn) {
		test.Fatalf("expected room and reservation to share the transition timestamp")
	}
	if result.Reservation.Status != ReservationStatusActive || result.Room.Status != RoomStatusOccupied {
		test.Fatalf("expected result to carry updated records, got %+v / %+v", result.Reservation, result.Room)
	}
}

func TestPerformCheckOutFinishesReservationAndFreesRoom(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	room := mustRoomRecord(test, "room2", RoomStatusOccupied)
	store.putRoom(room)
	reservation := mustReservationRecord(test, "r2", room.ID, ReservationStatusActive, today().AddDays(-2), 0)
	store.putReservation(reservation)
	service := mustNewService(test, store)

	result := service.PerformCheckOut(context.Background(), reservation.ID)
	if !result.Success {
		test.Fatalf("expected success, got %+v", result)
	}
	stored := store.mustReservation(test, reservation.ID)
	if stored.Status != ReservationStatusFinished {
		test.Fatalf("expected finished reservation, got %s", stored.Status)
	}
	if stored.ActualCheckOut == nil || !stored.ActualCheckOut.Equal(fixedNow) {
		test.Fatalf("expected actual check-out %v, got %v", fixedNow, stored.ActualCheckOut)
	}
	if storedRoom := store.mustRoom(test, room.ID); storedRoom.Status != RoomStatusAvailable {
		test.Fatalf("expected available room, got %s", storedRoom.Status)
	}
}

func TestPerformCheckOutRejectsPendingBalance(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	room := mustRoomRecord(test, "room3", RoomStatusOccupied)
	store.putRoom(room)
	reservation := mustReservationRecord(test, "r3", room.ID, ReservationStatusActive, today().AddDays(-1), 15000)
	store.putReservation(reservation)
	service := mustNewService(test, store)

	result := service.PerformCheckOut(context.Background(), reservation.ID)
	if result.Success {
		test.Fatalf("expected failure, got %+v", result)
	}
	if !strings.Contains(result.Error, "pending") {
		test.Fatalf("expected pending balance message, got %q", result.Error)
	}
	if result.Kind != FailureRejected {
		test.Fatalf("expected rejected kind, got %s", result.Kind)
	}
	if stored := store.mustReservation(test, reservation.ID); stored.Status != ReservationStatusActive {
		test.Fatalf("expected reservation to stay active, got %s", stored.Status)
	}
	if store.updateReservationCalls != 0 || store.updateRoomCalls != 0 {
		test.Fatalf("expected no writes, got %d reservation and %d room writes", store.updateReservationCalls, store.updateRoomCalls)
	}
}

func TestPerformCheckInRejectsFutureCheckInDate(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	room := mustRoomRecord(test, "room4", RoomStatusAvailable)
	store.putRoom(room)
	reservation := mustReservationRecord(test, "r4", room.ID, ReservationStatusConfirmed, today().AddDays(1), 0)
	store.putReservation(reservation)
	service := mustNewService(test, store)

	result := service.PerformCheckIn(context.Background(), reservation.ID)
	if result.Success {
		test.Fatalf("expected failure, got %+v", result)
	}
	if result.Error != MessageCheckInTooEarly {
		test.Fatalf("expected %q, got %q", MessageCheckInTooEarly, result.Error)
	}
	if stored := store.mustReservation(test, reservation.ID); stored != reservation {
		test.Fatalf("expected reservation unchanged, got %+v", stored)
	}
	if storedRoom := store.mustRoom(test, room.ID); storedRoom != room {
		test.Fatalf("expected room unchanged, got %+v", storedRoom)
	}
}

func TestPerformCheckInHonoursHotelTimeZone(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	room := mustRoomRecord(test, "room5", RoomStatusAvailable)
	store.putRoom(room)
	// 14:30 UTC on March 10 is already March 11 in Auckland.
	reservation := mustReservationRecord(test, "r5", room.ID, ReservationStatusConfirmed, today().AddDays(1), 0)
	store.putReservation(reservation)
	service := mustNewService(test, store, WithLocation(time.FixedZone("NZDT", 13*60*60)))

	result := service.PerformCheckIn(context.Background(), reservation.ID)
	if !result.Success {
		test.Fatalf("expected success in hotel time zone, got %+v", result)
	}
}

func TestPerformTransitionRejections(test *testing.T) {
	test.Parallel()
	testCases := []struct {
		name        string
		checkIn     bool
		roomStatus  RoomStatus
		status      ReservationStatus
		pending     int64
		wantKind    FailureKind
		wantMessage string
	}{
		{name: "room occupied", checkIn: true, roomStatus: RoomStatusOccupied, status: ReservationStatusConfirmed, wantKind: FailureRejected, wantMessage: MessageRoomOccupied},
		{name: "room maintenance", checkIn: true, roomStatus: RoomStatusMaintenance, status: ReservationStatusConfirmed, wantKind: FailureRejected, wantMessage: MessageRoomUnderMaintenance},
		{name: "check-in when active", checkIn: true, roomStatus: RoomStatusAvailable, status: ReservationStatusActive, wantKind: FailureRejected, wantMessage: MessageCheckInNotAllowedStatus},
		{name: "check-in when cancelled", checkIn: true, roomStatus: RoomStatusAvailable, status: ReservationStatusCancelled, wantKind: FailureRejected, wantMessage: MessageCheckInNotAllowedStatus},
		{name: "check-out when confirmed", roomStatus: RoomStatusAvailable, status: ReservationStatusConfirmed, wantKind: FailureRejected, wantMessage: MessageCheckOutNotAllowedStatus},
		{name: "check-out when finished", roomStatus: RoomStatusAvailable, status: ReservationStatusFinished, wantKind: FailureRejected, wantMessage: MessageCheckOutNotAllowedStatus},
		{name: "check-out pending", roomStatus: RoomStatusOccupied, status: ReservationStatusActive, pending: 1, wantKind: FailureRejected, wantMessage: MessagePendingBalance},
	}

	for _, testCase := range testCases {
		testCase := testCase
		test.Run(testCase.name, func(test *testing.T) {
			test.Parallel()
			store := newStubStore(test)
			room := mustRoomRecord(test, "room", testCase.roomStatus)
			store.putRoom(room)
			reservation := mustReservationRecord(test, "res", room.ID, testCase.status, today(), testCase.pending)
			store.putReservation(reservation)
			service := mustNewService(test, store)

			var result TransitionResult
			if testCase.checkIn {
				result = service.PerformCheckIn(context.Background(), reservation.ID)
			} else {
				result = service.PerformCheckOut(context.Background(), reservation.ID)
			}
			if result.Success {
				test.Fatalf("expected failure, got %+v", result)
			}
			if result.Kind != testCase.wantKind || result.Error != testCase.wantMessage {
				test.Fatalf("expected %s %q, got %s %q", testCase.wantKind, testCase.wantMessage, result.Kind, result.Error)
			}
			if store.mustReservation(test, reservation.ID) != reservation || store.mustRoom(test, room.ID) != room {
				test.Fatalf("expected no state change")
			}
		})
	}
}

func TestPerformTransitionUnknownReservation(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	room := mustRoomRecord(test, "room", RoomStatusAvailable)
	store.putRoom(room)
	service := mustNewService(test, store)
	missing := mustReservationID(test, "missing")

	for name, perform := range map[string]func(context.Context, ReservationID) TransitionResult{
		"check-in":  service.PerformCheckIn,
		"check-out": service.PerformCheckOut,
	} {
		result := perform(context.Background(), missing)
		if result.Success || result.Kind != FailureNotFound || result.Error != MessageReservationNotFound {
			test.Fatalf("%s: expected not found failure, got %+v", name, result)
		}
	}
	if store.mustRoom(test, room.ID) != room || store.updateRoomCalls != 0 {
		test.Fatalf("expected room untouched")
	}
}

func TestPerformCheckInMissingRoom(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	reservation := mustReservationRecord(test, "orphan", mustRoomID(test, "gone"), ReservationStatusConfirmed, today(), 0)
	store.putReservation(reservation)
	service := mustNewService(test, store)

	result := service.PerformCheckIn(context.Background(), reservation.ID)
	if result.Kind != FailureNotFound || result.Error != MessageRoomNotFound {
		test.Fatalf("expected room not found, got %+v", result)
	}
}

func TestPerformCheckInTwiceFailsSecondTime(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	room := mustRoomRecord(test, "room", RoomStatusAvailable)
	store.putRoom(room)
	reservation := mustReservationRecord(test, "twice", room.ID, ReservationStatusConfirmed, today(), 0)
	store.putReservation(reservation)
	service := mustNewService(test, store)

	first := service.PerformCheckIn(context.Background(), reservation.ID)
	if !first.Success {
		test.Fatalf("expected first check-in to succeed, got %+v", first)
	}
	checkedIn := store.mustReservation(test, reservation.ID)
	second := service.PerformCheckIn(context.Background(), reservation.ID)
	if second.Success {
		test.Fatalf("expected second check-in to fail")
	}
	if second.Error != MessageCheckInNotAllowedStatus {
		test.Fatalf("expected status rejection, got %q", second.Error)
	}
	if again := store.mustReservation(test, reservation.ID); again != checkedIn {
		test.Fatalf("expected second call not to touch the reservation")
	}
}

func TestPerformCheckInSecondReservationForOccupiedRoom(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	room := mustRoomRecord(test, "shared", RoomStatusAvailable)
	store.putRoom(room)
	first := mustReservationRecord(test, "first", room.ID, ReservationStatusConfirmed, today(), 0)
	second := mustReservationRecord(test, "second", room.ID, ReservationStatusConfirmed, today(), 0)
	store.putReservation(first)
	store.putReservation(second)
	service := mustNewService(test, store)

	if result := service.PerformCheckIn(context.Background(), first.ID); !result.Success {
		test.Fatalf("expected first check-in to succeed, got %+v", result)
	}
	result := service.PerformCheckIn(context.Background(), second.ID)
	if result.Success || result.Error != MessageRoomOccupied {
		test.Fatalf("expected room occupied rejection, got %+v", result)
	}
	if stored := store.mustReservation(test, second.ID); stored.Status != ReservationStatusConfirmed {
		test.Fatalf("expected second reservation to stay confirmed, got %s", stored.Status)
	}
}

func TestValidationStoreFailuresBecomeGenericRejections(test *testing.T) {
	test.Parallel()
	testCases := []struct {
		name        string
		checkIn     bool
		configure   func(store *stubStore)
		wantMessage string
	}{
		{
			name:        "check-in reservation lookup",
			checkIn:     true,
			configure:   func(store *stubStore) { store.getReservationError = errStoreFailure },
			wantMessage: MessageCheckInValidationFailed,
		},
		{
			name:        "check-in room lookup",
			checkIn:     true,
			configure:   func(store *stubStore) { store.getRoomError = errStoreFailure },
			wantMessage: MessageCheckInValidationFailed,
		},
		{
			name:        "check-out reservation lookup",
			configure:   func(store *stubStore) { store.getReservationError = errStoreFailure },
			wantMessage: MessageCheckOutValidationFailed,
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		test.Run(testCase.name, func(test *testing.T) {
			test.Parallel()
			store := newStubStore(test)
			room := mustRoomRecord(test, "room", RoomStatusAvailable)
			store.putRoom(room)
			status := ReservationStatusActive
			if testCase.checkIn {
				status = ReservationStatusConfirmed
			}
			reservation := mustReservationRecord(test, "res", room.ID, status, today(), 0)
			store.putReservation(reservation)
			testCase.configure(store)
			logger := &recorderLogger{}
			service := mustNewService(test, store, WithOperationLogger(logger))

			var result TransitionResult
			if testCase.checkIn {
				result = service.PerformCheckIn(context.Background(), reservation.ID)
			} else {
				result = service.PerformCheckOut(context.Background(), reservation.ID)
			}
			if result.Success || result.Kind != FailureStore || result.Error != testCase.wantMessage {
				test.Fatalf("expected store failure %q, got %+v", testCase.wantMessage, result)
			}
			if strings.Contains(result.Error, errStoreFailure.Error()) {
				test.Fatalf("expected internal error detail to stay hidden, got %q", result.Error)
			}
			if len(logger.entries) != 1 || !errors.Is(logger.entries[0].Error, errStoreFailure) {
				test.Fatalf("expected store error to reach the operation log, got %+v", logger.entries)
			}
		})
	}
}

func TestPerformCheckInReservationWriteFailureLeavesRoomUntouched(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	room := mustRoomRecord(test, "room", RoomStatusAvailable)
	store.putRoom(room)
	reservation := mustReservationRecord(test, "res", room.ID, ReservationStatusConfirmed, today(), 0)
	store.putReservation(reservation)
	store.updateReservationErrors = []error{errStoreFailure}
	service := mustNewService(test, store)

	result := service.PerformCheckIn(context.Background(), reservation.ID)
	if result.Success || result.Kind != FailureStore || result.Error != MessageCheckInFailed {
		test.Fatalf("expected store failure, got %+v", result)
	}
	if store.updateRoomCalls != 0 {
		test.Fatalf("expected room write to be skipped, got %d calls", store.updateRoomCalls)
	}
	if store.mustRoom(test, room.ID) != room {
		test.Fatalf("expected room unchanged")
	}
}

func TestPerformCheckInCompensatesWhenRoomWriteFails(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	room := mustRoomRecord(test, "room", RoomStatusAvailable)
	store.putRoom(room)
	reservation := mustReservationRecord(test, "res", room.ID, ReservationStatusConfirmed, today(), 0)
	store.putReservation(reservation)
	store.updateRoomError = errStoreFailure
	logger := &recorderLogger{}
	service := mustNewService(test, store, WithOperationLogger(logger))

	result := service.PerformCheckIn(context.Background(), reservation.ID)
	if result.Success || result.Kind != FailureStore || result.Error != MessageCheckInFailed {
		test.Fatalf("expected store failure, got %+v", result)
	}
	restored := store.mustReservation(test, reservation.ID)
	if restored.Status != ReservationStatusConfirmed {
		test.Fatalf("expected reservation restored to confirmed, got %s", restored.Status)
	}
	if restored.ActualCheckIn != nil {
		test.Fatalf("expected actual check-in cleared, got %v", restored.ActualCheckIn)
	}
	if store.updateReservationCalls != 2 {
		test.Fatalf("expected transition and compensation writes, got %d", store.updateReservationCalls)
	}
	operations := logger.operations()
	if len(operations) != 2 || operations[0] != operationCompensate || operations[1] != operationCheckIn {
		test.Fatalf("unexpected operation log: %v", operations)
	}
	if logger.entries[0].Status != operationStatusOK {
		test.Fatalf("expected successful compensation log, got %+v", logger.entries[0])
	}
}

func TestPerformCheckInCompensatesAfterCallerCancellation(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	room := mustRoomRecord(test, "room", RoomStatusAvailable)
	store.putRoom(room)
	reservation := mustReservationRecord(test, "res", room.ID, ReservationStatusConfirmed, today(), 0)
	store.putReservation(reservation)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store.afterReservationWrite = cancel
	service := mustNewService(test, store)

	result := service.PerformCheckIn(ctx, reservation.ID)
	if result.Success || result.Kind != FailureStore || result.Error != MessageCheckInFailed {
		test.Fatalf("expected store failure, got %+v", result)
	}
	restored := store.mustReservation(test, reservation.ID)
	if restored.Status != ReservationStatusConfirmed || restored.ActualCheckIn != nil {
		test.Fatalf("expected reservation restored to confirmed, got %+v", restored)
	}
	if store.mustRoom(test, room.ID).Status != RoomStatusAvailable {
		test.Fatalf("expected room to stay available")
	}
	if store.updateReservationCalls != 2 {
		test.Fatalf("expected transition and compensation writes, got %d", store.updateReservationCalls)
	}
}

func TestPerformCheckOutReportsPartialApplication(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	room := mustRoomRecord(test, "room", RoomStatusOccupied)
	store.putRoom(room)
	reservation := mustReservationRecord(test, "res", room.ID, ReservationStatusActive, today().AddDays(-1), 0)
	store.putReservation(reservation)
	store.updateRoomError = errStoreFailure
	store.updateReservationErrors = []error{nil, errors.New("compensation failed")}
	service := mustNewService(test, store)

	result := service.PerformCheckOut(context.Background(), reservation.ID)
	if result.Success || result.Kind != FailurePartiallyApplied || result.Error != MessagePartiallyApplied {
		test.Fatalf("expected partial application, got %+v", result)
	}
	if result.Reservation == nil || result.Reservation.Status != ReservationStatusFinished {
		test.Fatalf("expected committed reservation in result, got %+v", result.Reservation)
	}
	if result.Room != nil {
		test.Fatalf("expected no room in result, got %+v", result.Room)
	}
	if stored := store.mustReservation(test, reservation.ID); stored.Status != ReservationStatusFinished {
		test.Fatalf("expected reservation to remain finished, got %s", stored.Status)
	}
}

func TestPerformCheckInUsesTransactionWhenAvailable(test *testing.T) {
	test.Parallel()
	store := newTransactionalStore(test)
	room := mustRoomRecord(test, "room", RoomStatusAvailable)
	store.putRoom(room)
	reservation := mustReservationRecord(test, "res", room.ID, ReservationStatusConfirmed, today(), 0)
	store.putReservation(reservation)
	store.updateRoomError = errStoreFailure
	service := mustNewService(test, store)

	result := service.PerformCheckIn(context.Background(), reservation.ID)
	if result.Success || result.Kind != FailureStore {
		test.Fatalf("expected store failure, got %+v", result)
	}
	if store.transactions != 1 || store.rollbacks != 1 {
		test.Fatalf("expected one rolled back transaction, got %d/%d", store.transactions, store.rollbacks)
	}
	if store.updateReservationCalls != 1 {
		test.Fatalf("expected no compensation write inside a transaction, got %d", store.updateReservationCalls)
	}
	if stored := store.mustReservation(test, reservation.ID); stored != reservation {
		test.Fatalf("expected reservation rolled back, got %+v", stored)
	}

	store.updateRoomError = nil
	result = service.PerformCheckIn(context.Background(), reservation.ID)
	if !result.Success {
		test.Fatalf("expected success after failure cleared, got %+v", result)
	}
	if store.transactions != 2 || store.rollbacks != 1 {
		test.Fatalf("expected committed second transaction, got %d/%d", store.transactions, store.rollbacks)
	}
}

func TestPerformCheckInGuardedRoomWriteReportsConflict(test *testing.T) {
	test.Parallel()
	store := newTransactionalStore(test)
	room := mustRoomRecord(test, "room", RoomStatusAvailable)
	store.putRoom(room)
	reservation := mustReservationRecord(test, "res", room.ID, ReservationStatusConfirmed, today(), 0)
	store.putReservation(reservation)
	store.updateRoomError = ErrStaleRecord
	service := mustNewService(test, store)

	result := service.PerformCheckIn(context.Background(), reservation.ID)
	if result.Kind != FailureConflict || result.Error != MessageConcurrentUpdate {
		test.Fatalf("expected conflict, got %+v", result)
	}
}

func TestPerformCheckInTakesReservationLease(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	room := mustRoomRecord(test, "room", RoomStatusAvailable)
	store.putRoom(room)
	reservation := mustReservationRecord(test, "leased", room.ID, ReservationStatusConfirmed, today(), 0)
	store.putReservation(reservation)
	locker := &stubLocker{}
	service := mustNewService(test, store, WithTransitionLocker(locker))

	if result := service.PerformCheckIn(context.Background(), reservation.ID); !result.Success {
		test.Fatalf("expected success, got %+v", result)
	}
	if len(locker.keys) != 1 || locker.keys[0] != "reservation:leased" {
		test.Fatalf("unexpected lease keys: %v", locker.keys)
	}
	if locker.releases != 1 {
		test.Fatalf("expected lease released once, got %d", locker.releases)
	}
}

func TestPerformCheckInLeaseHeldReportsConflict(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	room := mustRoomRecord(test, "room", RoomStatusAvailable)
	store.putRoom(room)
	reservation := mustReservationRecord(test, "leased", room.ID, ReservationStatusConfirmed, today(), 0)
	store.putReservation(reservation)
	locker := &stubLocker{err: ErrTransitionLocked}
	service := mustNewService(test, store, WithTransitionLocker(locker))

	result := service.PerformCheckIn(context.Background(), reservation.ID)
	if result.Kind != FailureConflict || result.Error != MessageTransitionInProgress {
		test.Fatalf("expected lease conflict, got %+v", result)
	}
	if store.updateReservationCalls != 0 {
		test.Fatalf("expected no writes without the lease")
	}

	locker.err = errStoreFailure
	result = service.PerformCheckIn(context.Background(), reservation.ID)
	if result.Kind != FailureStore || result.Error != MessageCheckInFailed {
		test.Fatalf("expected store failure when the locker is down, got %+v", result)
	}
}

func TestPerformTransitionPublishesEvents(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	room := mustRoomRecord(test, "room", RoomStatusAvailable)
	store.putRoom(room)
	reservation := mustReservationRecord(test, "evented", room.ID, ReservationStatusConfirmed, today(), 0)
	store.putReservation(reservation)
	publisher := &recorderPublisher{}
	service := mustNewService(test, store, WithEventPublisher(publisher))

	if result := service.PerformCheckIn(context.Background(), reservation.ID); !result.Success {
		test.Fatalf("check-in: %+v", result)
	}
	if result := service.PerformCheckOut(context.Background(), reservation.ID); !result.Success {
		test.Fatalf("check-out: %+v", result)
	}
	if len(publisher.events) != 2 {
		test.Fatalf("expected two events, got %d", len(publisher.events))
	}
	if publisher.events[0].Type != EventTypeCheckedIn || publisher.events[1].Type != EventTypeCheckedOut {
		test.Fatalf("unexpected event types: %+v", publisher.events)
	}
	event := publisher.events[0]
	if event.ReservationID != reservation.ID || event.RoomID != room.ID || event.GuestID != reservation.GuestID || !event.OccurredAt.Equal(fixedNow) {
		test.Fatalf("unexpected event payload: %+v", event)
	}
}

func TestPerformTransitionPublishFailureDoesNotFailTransition(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	room := mustRoomRecord(test, "room", RoomStatusAvailable)
	store.putRoom(room)
	reservation := mustReservationRecord(test, "evented", room.ID, ReservationStatusConfirmed, today(), 0)
	store.putReservation(reservation)
	publisher := &recorderPublisher{err: errors.New("broker down")}
	logger := &recorderLogger{}
	service := mustNewService(test, store, WithEventPublisher(publisher), WithOperationLogger(logger))

	if result := service.PerformCheckIn(context.Background(), reservation.ID); !result.Success {
		test.Fatalf("expected success despite publish failure, got %+v", result)
	}
	operations := logger.operations()
	if len(operations) != 2 || operations[1] != operationPublishEvent {
		test.Fatalf("expected publish failure to be logged, got %v", operations)
	}
	if logger.entries[1].Status != operationStatusError {
		test.Fatalf("expected error status for publish failure, got %+v", logger.entries[1])
	}
}

func TestNoEventOnRejectedTransition(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	publisher := &recorderPublisher{}
	service := mustNewService(test, store, WithEventPublisher(publisher))

	service.PerformCheckOut(context.Background(), mustReservationID(test, "missing"))
	if len(publisher.events) != 0 {
		test.Fatalf("expected no events, got %+v", publisher.events)
	}
}
