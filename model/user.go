package model

import "time"

const (
	RoleParent = "parent"
	RoleChild  = "child"
	RoleAdmin  = "admin"
)

type User struct {
	ID          string `gorm:"primaryKey"`
	Email       string `gorm:"uniqueIndex"`
	Username    string `gorm:"uniqueIndex;not null"`
	Password    string
	Role        string  `gorm:"default:child"`
	FamilyID    *string `gorm:"index"`
	Birthday    *time.Time
	HonorPoints int  `gorm:"default:0"`
	IsActive    bool `gorm:"default:true"`
	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time `gorm:"index"`
}

// IsBirthday reports whether t falls on the user's birthday (month/day match).
func (u *User) IsBirthday(t time.Time) bool {
	if u.Birthday == nil {
		return false
	}
	return u.Birthday.Month() == t.Month() && u.Birthday.Day() == t.Day()
}
