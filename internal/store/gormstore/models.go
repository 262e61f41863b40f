package gormstore

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Room represents the rooms table.
type Room struct {
	ID                 string    `gorm:"primaryKey;size:64"`
	Number             string    `gorm:"not null;size:32;uniqueIndex:uniq_rooms_number"`
	Type               string    `gorm:"not null;size:64"`
	PricePerNightCents int64     `gorm:"not null"`
	Status             string    `gorm:"not null;size:16;index:idx_rooms_status"`
	CreatedAt          time.Time `gorm:"not null"`
	UpdatedAt          time.Time `gorm:"not null"`
}

func (Room) TableName() string { return "rooms" }

func (room *Room) BeforeCreate(tx *gorm.DB) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	return nil
}

// Reservation mirrors the reservations table.
type Reservation struct {
	ID                 string         `gorm:"primaryKey;size:64"`
	RoomID             string         `gorm:"not null;size:64;index:idx_reservations_room_status,priority:1"`
	GuestID            string         `gorm:"not null;size:64"`
	CheckInDate        datatypes.Date `gorm:"not null"`
	CheckOutDate       datatypes.Date `gorm:"not null"`
	Status             string         `gorm:"not null;size:16;index:idx_reservations_room_status,priority:2"`
	ActualCheckIn      *time.Time
	ActualCheckOut     *time.Time
	TotalAmountCents   int64     `gorm:"not null"`
	PendingAmountCents int64     `gorm:"not null"`
	CreatedAt          time.Time `gorm:"not null"`
	UpdatedAt          time.Time `gorm:"not null"`
}

func (Reservation) TableName() string { return "reservations" }

func (reservation *Reservation) BeforeCreate(tx *gorm.DB) error {
	if reservation.ID == "" {
		reservation.ID = uuid.NewString()
	}
	return nil
}

// AutoMigrate creates or updates the rooms and reservations tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Room{}, &Reservation{})
}
