package dto

import "time"

// ==================== AVATAR ====================

type AvatarResponse struct {
	UserID             string `json:"user_id"`
	Level              int    `json:"level"`
	TotalXP            int    `json:"total_xp"`
	CurrentXP          int    `json:"current_xp"`
	XPToNextLevel      int    `json:"xp_to_next_level"`
	MaxConsecutiveDays int    `json:"max_consecutive_days"`
	ImageURL           string `json:"image_url,omitempty"`
}

// ==================== REWARD STORE ====================

type CreateRewardRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=120" example:"Movie night"`
	Description string `json:"description,omitempty"`
	Cost        int    `json:"cost" validate:"gt=0" example:"50"`
	Stock       int    `json:"stock" validate:"gte=-1" example:"-1"` // -1 means unlimited
}

func (r CreateRewardRequest) Validate() error {
	return GetValidator().Struct(r)
}

type UpdateRewardRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Description *string `json:"description,omitempty"`
	Cost        *int    `json:"cost,omitempty" validate:"omitempty,gt=0"`
	Stock       *int    `json:"stock,omitempty" validate:"omitempty,gte=-1"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

func (r UpdateRewardRequest) Validate() error {
	return GetValidator().Struct(r)
}

type RewardResponse struct {
	ID          string    `json:"id"`
	FamilyID    string    `json:"family_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	Cost        int       `json:"cost"`
	Stock       int       `json:"stock"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

type RewardCollectionResponse struct {
	Rewards []RewardResponse `json:"rewards"`
	Total   int              `json:"total"`
}

type RedemptionResponse struct {
	ID         string     `json:"id"`
	RewardID   string     `json:"reward_id"`
	RewardName string     `json:"reward_name,omitempty"`
	UserID     string     `json:"user_id"`
	Cost       int        `json:"cost"`
	Status     string     `json:"status"`
	ReviewedBy *string    `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

type RedemptionCollectionResponse struct {
	Redemptions []RedemptionResponse `json:"redemptions"`
	Total       int                  `json:"total"`
}

// ==================== LEADERBOARD ====================

type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	Level       int    `json:"level"`
	TotalXP     int    `json:"total_xp"`
	HonorPoints int    `json:"honor_points"`
}

type LeaderboardResponse struct {
	FamilyID string             `json:"family_id"`
	Entries  []LeaderboardEntry `json:"entries"`
	CachedAt time.Time          `json:"cached_at"`
}
