package model

import "time"

// Family groups parents and children; all tasks and rewards are scoped to one family.
type Family struct {
	ID         string `gorm:"primaryKey"`
	Name       string `gorm:"not null"`
	InviteCode string `gorm:"uniqueIndex;not null"`
	OwnerID    string `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
