package model

import "time"

const (
	RedemptionStatusPending   = "pending"
	RedemptionStatusFulfilled = "fulfilled"
	RedemptionStatusCancelled = "cancelled"
)

// Avatar is the per-user leveling companion. It owns the XP wallet the achievement
// engine credits (TotalXP never decreases, CurrentXP is spendable in the reward
// store) and the check-in streak consumed by streak_any_time conditions.
type Avatar struct {
	ID                 string `gorm:"primaryKey"`
	UserID             string `gorm:"uniqueIndex;not null"`
	Level              int    `gorm:"default:1"`
	TotalXP            int    `gorm:"default:0"`
	CurrentXP          int    `gorm:"default:0"`
	MaxConsecutiveDays int    `gorm:"default:0"`
	ImageURL           string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Reward is a store item a child can redeem with CurrentXP.
type Reward struct {
	ID          string `gorm:"primaryKey"`
	FamilyID    string `gorm:"index;not null"`
	Name        string `gorm:"not null"`
	Description string `gorm:"type:text"`
	ImageURL    string
	Cost        int  `gorm:"not null"`
	Stock       int  `gorm:"default:-1"` // -1 means unlimited
	IsActive    bool `gorm:"default:true"`
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type RewardRedemption struct {
	ID         string `gorm:"primaryKey"`
	RewardID   string `gorm:"index;not null"`
	UserID     string `gorm:"index;not null"`
	Cost       int    `gorm:"not null"` // cost at redemption time
	Status     string `gorm:"default:pending;index"`
	ReviewedBy *string
	ReviewedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Reward Reward `gorm:"foreignKey:RewardID"`
}
