package model

import (
	"time"

	"github.com/google/uuid"
)

// Booking is a confirmed interview slot. Written once on confirmation; the
// availability directory is the live source of truth for free time.
type Booking struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId      string    `gorm:"type:text;not null;index"`
	StartTime      time.Time `gorm:"not null"`
	EndTime        time.Time `gorm:"not null"`
	ParticipantIds string    `gorm:"type:text"` // comma-separated
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (Booking) TableName() string {
	return "bookings"
}
