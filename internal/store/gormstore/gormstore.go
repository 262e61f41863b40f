package gormstore

import (
	"context"
	"errors"
	"time"

	"github.com/MarkoPoloResearchLab/frontdesk/pkg/frontdesk"
	gosqlite "github.com/glebarez/go-sqlite"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	pgUniqueViolationCode    = "23505"
	mysqlDuplicateEntryCode  = 1062
	sqliteConstraintCode     = 19
	errorOperationStore      = "store"
	errorSubjectReservation  = "reservation"
	errorSubjectRoom         = "room"
	errorCodeCreate          = "create"
	errorCodeDelete          = "delete"
	errorCodeDuplicate       = "duplicate"
	errorCodeGet             = "get"
	errorCodeInvalid         = "invalid"
	errorCodeList            = "list"
	errorCodeStale           = "stale"
	errorCodeUpdate          = "update"
	columnStatus             = "status"
	columnUpdatedAt          = "updated_at"
	whereID                  = "id = ?"
	whereStatus              = "status = ?"
	orderReservationsDefault = "check_in_date ASC, id ASC"
	orderRoomsDefault        = "number ASC"
)

// Store implements frontdesk.Store using GORM.
type Store struct {
	db *gorm.DB
}

// New returns a Store backed by gorm.DB.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// WithTx executes fn within a transaction.
func (store *Store) WithTx(ctx context.Context, fn func(ctx context.Context, txStore frontdesk.Store) error) error {
	return store.db.WithContext(ctx).Transaction(func(transaction *gorm.DB) error {
		return fn(ctx, &Store{db: transaction})
	})
}

func (store *Store) GetReservation(ctx context.Context, reservationID frontdesk.ReservationID) (frontdesk.Reservation, error) {
	var model Reservation
	err := store.db.WithContext(ctx).Where(whereID, reservationID.String()).Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return frontdesk.Reservation{}, wrapStoreError(errorSubjectReservation, errorCodeGet, frontdesk.ErrReservationNotFound)
		}
		return frontdesk.Reservation{}, wrapStoreError(errorSubjectReservation, errorCodeGet, err)
	}
	reservation, err := mapReservation(model)
	if err != nil {
		return frontdesk.Reservation{}, wrapStoreError(errorSubjectReservation, errorCodeInvalid, err)
	}
	return reservation, nil
}

func (store *Store) ListReservations(ctx context.Context, filter frontdesk.ReservationFilter) ([]frontdesk.Reservation, error) {
	query := store.db.WithContext(ctx).Model(&Reservation{})
	if !filter.RoomID.IsZero() {
		query = query.Where("room_id = ?", filter.RoomID.String())
	}
	if filter.Status != "" {
		query = query.Where(whereStatus, filter.Status.String())
	}
	var rows []Reservation
	if err := query.Order(orderReservationsDefault).Find(&rows).Error; err != nil {
		return nil, wrapStoreError(errorSubjectReservation, errorCodeList, err)
	}
	reservations := make([]frontdesk.Reservation, 0, len(rows))
	for _, row := range rows {
		reservation, err := mapReservation(row)
		if err != nil {
			return nil, wrapStoreError(errorSubjectReservation, errorCodeInvalid, err)
		}
		reservations = append(reservations, reservation)
	}
	return reservations, nil
}

func (store *Store) CreateReservation(ctx context.Context, reservation frontdesk.Reservation) error {
	model := Reservation{
		ID:                 reservation.ID.String(),
		RoomID:             reservation.RoomID.String(),
		GuestID:            reservation.GuestID.String(),
		CheckInDate:        datatypes.Date(reservation.CheckInDate.Time()),
		CheckOutDate:       datatypes.Date(reservation.CheckOutDate.Time()),
		Status:             reservation.Status.String(),
		ActualCheckIn:      utcPointer(reservation.ActualCheckIn),
		ActualCheckOut:     utcPointer(reservation.ActualCheckOut),
		TotalAmountCents:   reservation.TotalAmount.Int64(),
		PendingAmountCents: reservation.PendingAmount.Int64(),
		CreatedAt:          reservation.CreatedAt.UTC(),
		UpdatedAt:          reservation.UpdatedAt.UTC(),
	}
	err := store.db.WithContext(ctx).Create(&model).Error
	if isUniqueViolation(err) {
		return wrapStoreError(errorSubjectReservation, errorCodeDuplicate, frontdesk.ErrReservationExists)
	}
	if err != nil {
		return wrapStoreError(errorSubjectReservation, errorCodeCreate, err)
	}
	return nil
}

func (store *Store) UpdateReservation(ctx context.Context, reservationID frontdesk.ReservationID, patch frontdesk.ReservationPatch) (frontdesk.Reservation, error) {
	query := store.db.WithContext(ctx).Model(&Reservation{}).Where(whereID, reservationID.String())
	if patch.ExpectedStatus != nil {
		query = query.Where(whereStatus, patch.ExpectedStatus.String())
	}
	result := query.Updates(reservationValues(patch))
	if result.Error != nil {
		return frontdesk.Reservation{}, wrapStoreError(errorSubjectReservation, errorCodeUpdate, result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := store.GetReservation(ctx, reservationID); err != nil {
			return frontdesk.Reservation{}, err
		}
		return frontdesk.Reservation{}, wrapStoreError(errorSubjectReservation, errorCodeStale, frontdesk.ErrStaleRecord)
	}
	return store.GetReservation(ctx, reservationID)
}

func (store *Store) DeleteReservation(ctx context.Context, reservationID frontdesk.ReservationID) error {
	result := store.db.WithContext(ctx).Where(whereID, reservationID.String()).Delete(&Reservation{})
	if result.Error != nil {
		return wrapStoreError(errorSubjectReservation, errorCodeDelete, result.Error)
	}
	if result.RowsAffected == 0 {
		return wrapStoreError(errorSubjectReservation, errorCodeDelete, frontdesk.ErrReservationNotFound)
	}
	return nil
}

func (store *Store) GetRoom(ctx context.Context, roomID frontdesk.RoomID) (frontdesk.Room, error) {
	var model Room
	err := store.db.WithContext(ctx).Where(whereID, roomID.String()).Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return frontdesk.Room{}, wrapStoreError(errorSubjectRoom, errorCodeGet, frontdesk.ErrRoomNotFound)
		}
		return frontdesk.Room{}, wrapStoreError(errorSubjectRoom, errorCodeGet, err)
	}
	room, err := mapRoom(model)
	if err != nil {
		return frontdesk.Room{}, wrapStoreError(errorSubjectRoom, errorCodeInvalid, err)
	}
	return room, nil
}

func (store *Store) ListRooms(ctx context.Context) ([]frontdesk.Room, error) {
	var rows []Room
	if err := store.db.WithContext(ctx).Order(orderRoomsDefault).Find(&rows).Error; err != nil {
		return nil, wrapStoreError(errorSubjectRoom, errorCodeList, err)
	}
	rooms := make([]frontdesk.Room, 0, len(rows))
	for _, row := range rows {
		room, err := mapRoom(row)
		if err != nil {
			return nil, wrapStoreError(errorSubjectRoom, errorCodeInvalid, err)
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

func (store *Store) CreateRoom(ctx context.Context, room frontdesk.Room) error {
	model := Room{
		ID:                 room.ID.String(),
		Number:             room.Number,
		Type:               room.Type,
		PricePerNightCents: room.PricePerNight.Int64(),
		Status:             room.Status.String(),
		CreatedAt:          room.CreatedAt.UTC(),
		UpdatedAt:          room.UpdatedAt.UTC(),
	}
	err := store.db.WithContext(ctx).Create(&model).Error
	if isUniqueViolation(err) {
		return wrapStoreError(errorSubjectRoom, errorCodeDuplicate, frontdesk.ErrRoomExists)
	}
	if err != nil {
		return wrapStoreError(errorSubjectRoom, errorCodeCreate, err)
	}
	return nil
}

func (store *Store) UpdateRoom(ctx context.Context, roomID frontdesk.RoomID, patch frontdesk.RoomPatch) (frontdesk.Room, error) {
	query := store.db.WithContext(ctx).Model(&Room{}).Where(whereID, roomID.String())
	if patch.ExpectedStatus != nil {
		query = query.Where(whereStatus, patch.ExpectedStatus.String())
	}
	result := query.Updates(roomValues(patch))
	if isUniqueViolation(result.Error) {
		return frontdesk.Room{}, wrapStoreError(errorSubjectRoom, errorCodeDuplicate, frontdesk.ErrRoomExists)
	}
	if result.Error != nil {
		return frontdesk.Room{}, wrapStoreError(errorSubjectRoom, errorCodeUpdate, result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := store.GetRoom(ctx, roomID); err != nil {
			return frontdesk.Room{}, err
		}
		return frontdesk.Room{}, wrapStoreError(errorSubjectRoom, errorCodeStale, frontdesk.ErrStaleRecord)
	}
	return store.GetRoom(ctx, roomID)
}

func (store *Store) DeleteRoom(ctx context.Context, roomID frontdesk.RoomID) error {
	result := store.db.WithContext(ctx).Where(whereID, roomID.String()).Delete(&Room{})
	if result.Error != nil {
		return wrapStoreError(errorSubjectRoom, errorCodeDelete, result.Error)
	}
	if result.RowsAffected == 0 {
		return wrapStoreError(errorSubjectRoom, errorCodeDelete, frontdesk.ErrRoomNotFound)
	}
	return nil
}

func wrapStoreError(subject string, code string, err error) error {
	return frontdesk.WrapError(errorOperationStore, subject, code, err)
}

func reservationValues(patch frontdesk.ReservationPatch) map[string]interface{} {
	values := map[string]interface{}{columnUpdatedAt: updatedAt(patch.UpdatedAt)}
	if patch.Status != nil {
		values[columnStatus] = patch.Status.String()
	}
	if patch.RoomID != nil {
		values["room_id"] = patch.RoomID.String()
	}
	if patch.CheckInDate != nil {
		values["check_in_date"] = datatypes.Date(patch.CheckInDate.Time())
	}
	if patch.CheckOutDate != nil {
		values["check_out_date"] = datatypes.Date(patch.CheckOutDate.Time())
	}
	if patch.TotalAmount != nil {
		values["total_amount_cents"] = patch.TotalAmount.Int64()
	}
	if patch.PendingAmount != nil {
		values["pending_amount_cents"] = patch.PendingAmount.Int64()
	}
	if patch.ActualCheckIn.Set {
		values["actual_check_in"] = utcPointer(patch.ActualCheckIn.Value)
	}
	if patch.ActualCheckOut.Set {
		values["actual_check_out"] = utcPointer(patch.ActualCheckOut.Value)
	}
	return values
}

func roomValues(patch frontdesk.RoomPatch) map[string]interface{} {
	values := map[string]interface{}{columnUpdatedAt: updatedAt(patch.UpdatedAt)}
	if patch.Status != nil {
		values[columnStatus] = patch.Status.String()
	}
	if patch.Number != nil {
		values["number"] = *patch.Number
	}
	if patch.Type != nil {
		values["type"] = *patch.Type
	}
	if patch.PricePerNight != nil {
		values["price_per_night_cents"] = patch.PricePerNight.Int64()
	}
	return values
}

func mapReservation(row Reservation) (frontdesk.Reservation, error) {
	reservationID, err := frontdesk.NewReservationID(row.ID)
	if err != nil {
		return frontdesk.Reservation{}, err
	}
	roomID, err := frontdesk.NewRoomID(row.RoomID)
	if err != nil {
		return frontdesk.Reservation{}, err
	}
	guestID, err := frontdesk.NewGuestID(row.GuestID)
	if err != nil {
		return frontdesk.Reservation{}, err
	}
	status, err := frontdesk.ParseReservationStatus(row.Status)
	if err != nil {
		return frontdesk.Reservation{}, err
	}
	totalAmount, err := frontdesk.NewAmountCents(row.TotalAmountCents)
	if err != nil {
		return frontdesk.Reservation{}, err
	}
	pendingAmount, err := frontdesk.NewAmountCents(row.PendingAmountCents)
	if err != nil {
		return frontdesk.Reservation{}, err
	}
	return frontdesk.NewReservation(frontdesk.Reservation{
		ID:             reservationID,
		RoomID:         roomID,
		GuestID:        guestID,
		CheckInDate:    frontdesk.DateOf(time.Time(row.CheckInDate), time.UTC),
		CheckOutDate:   frontdesk.DateOf(time.Time(row.CheckOutDate), time.UTC),
		Status:         status,
		ActualCheckIn:  utcPointer(row.ActualCheckIn),
		ActualCheckOut: utcPointer(row.ActualCheckOut),
		TotalAmount:    totalAmount,
		PendingAmount:  pendingAmount,
		CreatedAt:      row.CreatedAt.UTC(),
		UpdatedAt:      row.UpdatedAt.UTC(),
	})
}

func mapRoom(row Room) (frontdesk.Room, error) {
	roomID, err := frontdesk.NewRoomID(row.ID)
	if err != nil {
		return frontdesk.Room{}, err
	}
	status, err := frontdesk.ParseRoomStatus(row.Status)
	if err != nil {
		return frontdesk.Room{}, err
	}
	price, err := frontdesk.NewAmountCents(row.PricePerNightCents)
	if err != nil {
		return frontdesk.Room{}, err
	}
	return frontdesk.NewRoom(frontdesk.Room{
		ID:            roomID,
		Number:        row.Number,
		Type:          row.Type,
		PricePerNight: price,
		Status:        status,
		CreatedAt:     row.CreatedAt.UTC(),
		UpdatedAt:     row.UpdatedAt.UTC(),
	})
}

func updatedAt(value time.Time) time.Time {
	if value.IsZero() {
		return time.Now().UTC()
	}
	return value.UTC()
}

func utcPointer(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	converted := value.UTC()
	return &converted
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolationCode
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlDuplicateEntryCode
	}
	var sqliteErr *gosqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()&0xFF == sqliteConstraintCode
	}
	return false
}
