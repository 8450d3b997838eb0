package models

import "gorm.io/gorm"

// Notification is append-only; only Status ever changes after creation.
// The auto-increment ID doubles as the client watermark, so delivery order
// is defined by ID.
type Notification struct {
	gorm.Model

	UserID  uint   `gorm:"not null;index"`
	Title   string `gorm:"not null"`
	Message string `gorm:"not null"`
	Type    string `gorm:"not null"`         // "site_up", "site_down", "slow_response"
	Status  string `gorm:"default:'unread'"` // "unread", "read"

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
