package pgstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MarkoPoloResearchLab/frontdesk/pkg/frontdesk"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUniqueViolationCode   = "23505"
	errorOperationStore     = "store"
	errorSubjectReservation = "reservation"
	errorSubjectRoom        = "room"
	errorSubjectSchema      = "schema"
	errorSubjectTransaction = "transaction"
	errorCodeBegin          = "begin"
	errorCodeCommit         = "commit"
	errorCodeCreate         = "create"
	errorCodeDelete         = "delete"
	errorCodeDuplicate      = "duplicate"
	errorCodeGet            = "get"
	errorCodeInvalid        = "invalid"
	errorCodeList           = "list"
	errorCodeMigrate        = "migrate"
	errorCodeStale          = "stale"
	errorCodeUpdate         = "update"

	// Schema creates the tables used by Store.
	Schema = `
		create table if not exists rooms (
			id text primary key,
			number text not null unique,
			type text not null default '',
			price_per_night_cents bigint not null check (price_per_night_cents >= 0),
			status text not null check (status in ('available','occupied','maintenance')),
			created_at timestamptz not null default now(),
			updated_at timestamptz not null default now()
		);
		create table if not exists reservations (
			id text primary key,
			room_id text not null,
			guest_id text not null,
			check_in_date date not null,
			check_out_date date not null,
			status text not null check (status in ('confirmed','active','finished','cancelled')),
			actual_check_in timestamptz,
			actual_check_out timestamptz,
			total_amount_cents bigint not null check (total_amount_cents >= 0),
			pending_amount_cents bigint not null check (pending_amount_cents >= 0),
			created_at timestamptz not null default now(),
			updated_at timestamptz not null default now()
		);
		create index if not exists idx_reservations_room_status on reservations(room_id, status);
	`

	reservationColumns = `id, room_id, guest_id, check_in_date, check_out_date, status,
		actual_check_in, actual_check_out, total_amount_cents, pending_amount_cents, created_at, updated_at`
	roomColumns = `id, number, type, price_per_night_cents, status, created_at, updated_at`

	sqlSelectReservation = `select ` + reservationColumns + ` from reservations where id = $1`

	sqlListReservations = `
		select ` + reservationColumns + ` from reservations
		where ($1 = '' or room_id = $1) and ($2 = '' or status = $2)
		order by check_in_date asc, id asc
	`

	sqlInsertReservation = `
		insert into reservations(` + reservationColumns + `)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	sqlDeleteReservation = `delete from reservations where id = $1`

	sqlSelectRoom = `select ` + roomColumns + ` from rooms where id = $1`

	sqlListRooms = `select ` + roomColumns + ` from rooms order by number asc`

	sqlInsertRoom = `
		insert into rooms(` + roomColumns + `)
		values ($1, $2, $3, $4, $5, $6, $7)
	`

	sqlDeleteRoom = `delete from rooms where id = $1`
)

// querier is satisfied by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements frontdesk.Store using a pgx connection pool (autocommit)
// or, inside WithTx, a single transaction.
type Store struct {
	pool *pgxpool.Pool
	db   querier
}

// New returns a Store backed by a pgx pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, db: pool}
}

// Migrate applies Schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return wrapStoreError(errorSubjectSchema, errorCodeMigrate, err)
	}
	return nil
}

// WithTx executes fn within a transaction. Calls on a transaction-bound store join it.
func (store *Store) WithTx(ctx context.Context, fn func(ctx context.Context, txStore frontdesk.Store) error) error {
	if store.pool == nil {
		return fn(ctx, store)
	}
	tx, err := store.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return wrapStoreError(errorSubjectTransaction, errorCodeBegin, err)
	}
	transactionStore := &Store{db: tx}
	if err := fn(ctx, transactionStore); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return wrapStoreError(errorSubjectTransaction, errorCodeCommit, err)
	}
	return nil
}

func (store *Store) GetReservation(ctx context.Context, reservationID frontdesk.ReservationID) (frontdesk.Reservation, error) {
	reservation, err := scanReservation(store.db.QueryRow(ctx, sqlSelectReservation, reservationID.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return frontdesk.Reservation{}, wrapStoreError(errorSubjectReservation, errorCodeGet, frontdesk.ErrReservationNotFound)
		}
		return frontdesk.Reservation{}, wrapStoreError(errorSubjectReservation, errorCodeGet, err)
	}
	return reservation, nil
}

func (store *Store) ListReservations(ctx context.Context, filter frontdesk.ReservationFilter) ([]frontdesk.Reservation, error) {
	rows, err := store.db.Query(ctx, sqlListReservations, filter.RoomID.String(), filter.Status.String())
	if err != nil {
		return nil, wrapStoreError(errorSubjectReservation, errorCodeList, err)
	}
	defer rows.Close()
	reservations := make([]frontdesk.Reservation, 0)
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, wrapStoreError(errorSubjectReservation, errorCodeInvalid, err)
		}
		reservations = append(reservations, reservation)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStoreError(errorSubjectReservation, errorCodeList, err)
	}
	return reservations, nil
}

func (store *Store) CreateReservation(ctx context.Context, reservation frontdesk.Reservation) error {
	_, err := store.db.Exec(ctx, sqlInsertReservation,
		reservation.ID.String(),
		reservation.RoomID.String(),
		reservation.GuestID.String(),
		reservation.CheckInDate.Time(),
		reservation.CheckOutDate.Time(),
		reservation.Status.String(),
		reservation.ActualCheckIn,
		reservation.ActualCheckOut,
		reservation.TotalAmount.Int64(),
		reservation.PendingAmount.Int64(),
		reservation.CreatedAt.UTC(),
		reservation.UpdatedAt.UTC(),
	)
	if isUniqueViolation(err) {
		return wrapStoreError(errorSubjectReservation, errorCodeDuplicate, frontdesk.ErrReservationExists)
	}
	if err != nil {
		return wrapStoreError(errorSubjectReservation, errorCodeCreate, err)
	}
	return nil
}

func (store *Store) UpdateReservation(ctx context.Context, reservationID frontdesk.ReservationID, patch frontdesk.ReservationPatch) (frontdesk.Reservation, error) {
	update := newUpdateBuilder("reservations", reservationID.String(), patch.UpdatedAt)
	if patch.Status != nil {
		update.set("status", patch.Status.String())
	}
	if patch.RoomID != nil {
		update.set("room_id", patch.RoomID.String())
	}
	if patch.CheckInDate != nil {
		update.set("check_in_date", patch.CheckInDate.Time())
	}
	if patch.CheckOutDate != nil {
		update.set("check_out_date", patch.CheckOutDate.Time())
	}
	if patch.TotalAmount != nil {
		update.set("total_amount_cents", patch.TotalAmount.Int64())
	}
	if patch.PendingAmount != nil {
		update.set("pending_amount_cents", patch.PendingAmount.Int64())
	}
	if patch.ActualCheckIn.Set {
		update.set("actual_check_in", patch.ActualCheckIn.Value)
	}
	if patch.ActualCheckOut.Set {
		update.set("actual_check_out", patch.ActualCheckOut.Value)
	}
	if patch.ExpectedStatus != nil {
		update.expectStatus(patch.ExpectedStatus.String())
	}
	sql, args := update.build(reservationColumns)
	reservation, err := scanReservation(store.db.QueryRow(ctx, sql, args...))
	if err == nil {
		return reservation, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return frontdesk.Reservation{}, wrapStoreError(errorSubjectReservation, errorCodeUpdate, err)
	}
	if _, err := store.GetReservation(ctx, reservationID); err != nil {
		return frontdesk.Reservation{}, err
	}
	return frontdesk.Reservation{}, wrapStoreError(errorSubjectReservation, errorCodeStale, frontdesk.ErrStaleRecord)
}

func (store *Store) DeleteReservation(ctx context.Context, reservationID frontdesk.ReservationID) error {
	tag, err := store.db.Exec(ctx, sqlDeleteReservation, reservationID.String())
	if err != nil {
		return wrapStoreError(errorSubjectReservation, errorCodeDelete, err)
	}
	if tag.RowsAffected() == 0 {
		return wrapStoreError(errorSubjectReservation, errorCodeDelete, frontdesk.ErrReservationNotFound)
	}
	return nil
}

func (store *Store) GetRoom(ctx context.Context, roomID frontdesk.RoomID) (frontdesk.Room, error) {
	room, err := scanRoom(store.db.QueryRow(ctx, sqlSelectRoom, roomID.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return frontdesk.Room{}, wrapStoreError(errorSubjectRoom, errorCodeGet, frontdesk.ErrRoomNotFound)
		}
		return frontdesk.Room{}, wrapStoreError(errorSubjectRoom, errorCodeGet, err)
	}
	return room, nil
}

func (store *Store) ListRooms(ctx context.Context) ([]frontdesk.Room, error) {
	rows, err := store.db.Query(ctx, sqlListRooms)
	if err != nil {
		return nil, wrapStoreError(errorSubjectRoom, errorCodeList, err)
	}
	defer rows.Close()
	rooms := make([]frontdesk.Room, 0)
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, wrapStoreError(errorSubjectRoom, errorCodeInvalid, err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStoreError(errorSubjectRoom, errorCodeList, err)
	}
	return rooms, nil
}

func (store *Store) CreateRoom(ctx context.Context, room frontdesk.Room) error {
	_, err := store.db.Exec(ctx, sqlInsertRoom,
		room.ID.String(),
		room.Number,
		room.Type,
		room.PricePerNight.Int64(),
		room.Status.String(),
		room.CreatedAt.UTC(),
		room.UpdatedAt.UTC(),
	)
	if isUniqueViolation(err) {
		return wrapStoreError(errorSubjectRoom, errorCodeDuplicate, frontdesk.ErrRoomExists)
	}
	if err != nil {
		return wrapStoreError(errorSubjectRoom, errorCodeCreate, err)
	}
	return nil
}

func (store *Store) UpdateRoom(ctx context.Context, roomID frontdesk.RoomID, patch frontdesk.RoomPatch) (frontdesk.Room, error) {
	update := newUpdateBuilder("rooms", roomID.String(), patch.UpdatedAt)
	if patch.Status != nil {
		update.set("status", patch.Status.String())
	}
	if patch.Number != nil {
		update.set("number", *patch.Number)
	}
	if patch.Type != nil {
		update.set("type", *patch.Type)
	}
	if patch.PricePerNight != nil {
		update.set("price_per_night_cents", patch.PricePerNight.Int64())
	}
	if patch.ExpectedStatus != nil {
		update.expectStatus(patch.ExpectedStatus.String())
	}
	sql, args := update.build(roomColumns)
	room, err := scanRoom(store.db.QueryRow(ctx, sql, args...))
	if err == nil {
		return room, nil
	}
	if isUniqueViolation(err) {
		return frontdesk.Room{}, wrapStoreError(errorSubjectRoom, errorCodeDuplicate, frontdesk.ErrRoomExists)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return frontdesk.Room{}, wrapStoreError(errorSubjectRoom, errorCodeUpdate, err)
	}
	if _, err := store.GetRoom(ctx, roomID); err != nil {
		return frontdesk.Room{}, err
	}
	return frontdesk.Room{}, wrapStoreError(errorSubjectRoom, errorCodeStale, frontdesk.ErrStaleRecord)
}

func (store *Store) DeleteRoom(ctx context.Context, roomID frontdesk.RoomID) error {
	tag, err := store.db.Exec(ctx, sqlDeleteRoom, roomID.String())
	if err != nil {
		return wrapStoreError(errorSubjectRoom, errorCodeDelete, err)
	}
	if tag.RowsAffected() == 0 {
		return wrapStoreError(errorSubjectRoom, errorCodeDelete, frontdesk.ErrRoomNotFound)
	}
	return nil
}

// updateBuilder renders a guarded single-row update returning the new row.
type updateBuilder struct {
	table          string
	assignments    []string
	args           []any
	expectedStatus string
}

func newUpdateBuilder(table string, id string, updatedAt time.Time) *updateBuilder {
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	builder := &updateBuilder{table: table, args: []any{id}}
	builder.set("updated_at", updatedAt.UTC())
	return builder
}

func (builder *updateBuilder) set(column string, value any) {
	builder.args = append(builder.args, value)
	builder.assignments = append(builder.assignments, fmt.Sprintf("%s = $%d", column, len(builder.args)))
}

func (builder *updateBuilder) expectStatus(status string) {
	builder.expectedStatus = status
}

func (builder *updateBuilder) build(returning string) (string, []any) {
	args := append([]any(nil), builder.args...)
	where := "id = $1"
	if builder.expectedStatus != "" {
		args = append(args, builder.expectedStatus)
		where += fmt.Sprintf(" and status = $%d", len(args))
	}
	sql := fmt.Sprintf("update %s set %s where %s returning %s",
		builder.table, strings.Join(builder.assignments, ", "), where, returning)
	return sql, args
}

func scanReservation(row pgx.Row) (frontdesk.Reservation, error) {
	var (
		idValue        string
		roomValue      string
		guestValue     string
		checkInValue   time.Time
		checkOutValue  time.Time
		statusValue    string
		actualCheckIn  *time.Time
		actualCheckOut *time.Time
		totalValue     int64
		pendingValue   int64
		createdAt      time.Time
		updatedAt      time.Time
	)
	if err := row.Scan(
		&idValue,
		&roomValue,
		&guestValue,
		&checkInValue,
		&checkOutValue,
		&statusValue,
		&actualCheckIn,
		&actualCheckOut,
		&totalValue,
		&pendingValue,
		&createdAt,
		&updatedAt,
	); err != nil {
		return frontdesk.Reservation{}, err
	}
	reservationID, err := frontdesk.NewReservationID(idValue)
	if err != nil {
		return frontdesk.Reservation{}, err
	}
	roomID, err := frontdesk.NewRoomID(roomValue)
	if err != nil {
		return frontdesk.Reservation{}, err
	}
	guestID, err := frontdesk.NewGuestID(guestValue)
	if err != nil {
		return frontdesk.Reservation{}, err
	}
	status, err := frontdesk.ParseReservationStatus(statusValue)
	if err != nil {
		return frontdesk.Reservation{}, err
	}
	totalAmount, err := frontdesk.NewAmountCents(totalValue)
	if err != nil {
		return frontdesk.Reservation{}, err
	}
	pendingAmount, err := frontdesk.NewAmountCents(pendingValue)
	if err != nil {
		return frontdesk.Reservation{}, err
	}
	return frontdesk.NewReservation(frontdesk.Reservation{
		ID:             reservationID,
		RoomID:         roomID,
		GuestID:        guestID,
		CheckInDate:    frontdesk.DateOf(checkInValue, time.UTC),
		CheckOutDate:   frontdesk.DateOf(checkOutValue, time.UTC),
		Status:         status,
		ActualCheckIn:  utcPointer(actualCheckIn),
		ActualCheckOut: utcPointer(actualCheckOut),
		TotalAmount:    totalAmount,
		PendingAmount:  pendingAmount,
		CreatedAt:      createdAt.UTC(),
		UpdatedAt:      updatedAt.UTC(),
	})
}

func scanRoom(row pgx.Row) (frontdesk.Room, error) {
	var (
		idValue     string
		number      string
		roomType    string
		priceValue  int64
		statusValue string
		createdAt   time.Time
		updatedAt   time.Time
	)
	if err := row.Scan(&idValue, &number, &roomType, &priceValue, &statusValue, &createdAt, &updatedAt); err != nil {
		return frontdesk.Room{}, err
	}
	roomID, err := frontdesk.NewRoomID(idValue)
	if err != nil {
		return frontdesk.Room{}, err
	}
	status, err := frontdesk.ParseRoomStatus(statusValue)
	if err != nil {
		return frontdesk.Room{}, err
	}
	price, err := frontdesk.NewAmountCents(priceValue)
	if err != nil {
		return frontdesk.Room{}, err
	}
	return frontdesk.NewRoom(frontdesk.Room{
		ID:            roomID,
		Number:        number,
		Type:          roomType,
		PricePerNight: price,
		Status:        status,
		CreatedAt:     createdAt.UTC(),
		UpdatedAt:     updatedAt.UTC(),
	})
}

func utcPointer(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	converted := value.UTC()
	return &converted
}

func wrapStoreError(subject string, code string, err error) error {
	return frontdesk.WrapError(errorOperationStore, subject, code, err)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolationCode
	}
	return false
}
