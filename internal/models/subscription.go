package models

import "gorm.io/gorm"

// Subscription holds one user's alert preferences for one category.
// "Disabled" is the soft-delete state; rows are never removed.
type Subscription struct {
	gorm.Model

	UserID        uint   `gorm:"not null;uniqueIndex:idx_user_type"`
	Type          string `gorm:"not null;uniqueIndex:idx_user_type"` // "site_monitoring"
	Enabled       bool   `gorm:"default:true"`
	EnableSound   bool   `gorm:"default:true"`
	EnableBrowser bool   `gorm:"default:true"`
	EnableEmail   bool   `gorm:"default:false"`
	FCMToken      string

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
