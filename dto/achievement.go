package dto

import "time"

// ==================== ENGINE RESULT DTOs ====================

// ConditionResult is the outcome of evaluating one achievement condition against
// the current progress snapshot.
type ConditionResult struct {
	Unlocked bool `json:"unlocked"`
	Progress int  `json:"progress"`
}

// AwardedAchievement describes one achievement unlocked during a check pass,
// shaped for the approval response banner.
type AwardedAchievement struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Icon         string   `json:"icon,omitempty"`
	Dimension    string   `json:"dimension"`
	Level        string   `json:"level"`
	PointsReward int      `json:"points_reward"`
	HonorPoints  int      `json:"honor_points"`
	Privileges   []string `json:"privileges,omitempty"`
}

// CheckAndAwardResult is the best-effort outcome of one engine pass. Partial
// failures inside the pass reduce its contents rather than producing an error.
type CheckAndAwardResult struct {
	NewAchievements []AwardedAchievement `json:"new_achievements"`
	// UpdatedProgress maps achievement ID to the clamped progress value for
	// every definition evaluated in the pass, freshly unlocked ones included.
	// Previously earned definitions are skipped and never appear here.
	UpdatedProgress map[string]int `json:"updated_progress,omitempty"`
}

// ==================== ACHIEVEMENT QUERY DTOs ====================

type UserAchievementItem struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	Icon            string     `json:"icon,omitempty"`
	Dimension       string     `json:"dimension"`
	Category        string     `json:"category,omitempty"`
	Level           string     `json:"level"`
	Requirement     int        `json:"requirement"`
	PointsReward    int        `json:"points_reward"`
	HonorPoints     int        `json:"honor_points"`
	IsHidden        bool       `json:"is_hidden"`
	IsEarned        bool       `json:"is_earned"`
	Progress        int        `json:"progress"`
	ProgressPercent int        `json:"progress_percent"`
	EarnedAt        *time.Time `json:"earned_at,omitempty"`
	IsNew           bool       `json:"is_new"`
	Order           int        `json:"order"`
}

type AchievementListResponse struct {
	Achievements []UserAchievementItem `json:"achievements"`
	Total        int                   `json:"total"`
	Earned       int                   `json:"earned"`
}

type AchievementStatsResponse struct {
	Total             int            `json:"total"`
	Earned            int            `json:"earned"`
	NewCount          int            `json:"new_count"`
	HonorPoints       int            `json:"honor_points"`
	CompletionRate    float64        `json:"completion_rate"`
	EarnedByDimension map[string]int `json:"earned_by_dimension"`
	TotalByDimension  map[string]int `json:"total_by_dimension"`
}

type MarkViewedRequest struct {
	AchievementIDs []string `json:"achievement_ids" validate:"omitempty,dive,required"`
}

func (r MarkViewedRequest) Validate() error {
	return GetValidator().Struct(r)
}

// ==================== ADMIN CATALOG DTOs ====================

type CreateAchievementRequest struct {
	Name              string `json:"name" validate:"required,min=1,max=120"`
	Description       string `json:"description,omitempty"`
	Icon              string `json:"icon,omitempty"`
	Dimension         string `json:"dimension" validate:"required,oneof=accumulation behavior surprise"`
	Category          string `json:"category,omitempty"`
	Level             string `json:"level" validate:"required,oneof=bronze silver gold legendary"`
	ConditionType     string `json:"condition_type" validate:"required"`
	Requirement       int    `json:"requirement" validate:"gte=0"`
	RequirementDetail string `json:"requirement_detail,omitempty"` // JSON object
	PointsReward      int    `json:"points_reward" validate:"gte=0"`
	HonorPoints       int    `json:"honor_points" validate:"gte=0"`
	Privileges        string `json:"privileges,omitempty"` // JSON array of strings
	IsHidden          bool   `json:"is_hidden"`
	IsActive          bool   `json:"is_active"`
	Order             int    `json:"order"`
}

func (r CreateAchievementRequest) Validate() error {
	return GetValidator().Struct(r)
}

type UpdateAchievementRequest struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Description  *string `json:"description,omitempty"`
	Icon         *string `json:"icon,omitempty"`
	PointsReward *int    `json:"points_reward,omitempty" validate:"omitempty,gte=0"`
	HonorPoints  *int    `json:"honor_points,omitempty" validate:"omitempty,gte=0"`
	IsHidden     *bool   `json:"is_hidden,omitempty"`
	IsActive     *bool   `json:"is_active,omitempty"`
	Order        *int    `json:"order,omitempty"`
}

func (r UpdateAchievementRequest) Validate() error {
	return GetValidator().Struct(r)
}
