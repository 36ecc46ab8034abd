package db

import (
	"time"

	"gorm.io/datatypes"
)

// Event is one push notification received from the tournament backend,
// journaled for auditing and replay during debugging.
type Event struct {
	ID        uint           `gorm:"primaryKey"`
	DebateID  *int           `gorm:"index"`
	Type      string         `gorm:"size:64;not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
}
