package models

import "gorm.io/gorm"

type User struct {
	gorm.Model

	Username        string `gorm:"uniqueIndex;not null"`
	Email           string
	FirstName       string
	LastName        string
	ProfileImageURL string
	PasswordHash    string `gorm:"not null"`

	// Relationships
	Subscriptions []Subscription `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Notifications []Notification `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Sessions      []Session      `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
