package models

import (
	"time"

	"gorm.io/datatypes"
)

// Session is a server-side session row keyed by an opaque id. Expired rows
// are swept by the scheduler.
type Session struct {
	SID       string `gorm:"primaryKey;column:sid"`
	UserID    uint   `gorm:"not null;index"`
	Data      datatypes.JSON
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
