package model

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	DimensionAccumulation = "accumulation"
	DimensionBehavior     = "behavior"
	DimensionSurprise     = "surprise"

	LevelBronze    = "bronze"
	LevelSilver    = "silver"
	LevelGold      = "gold"
	LevelLegendary = "legendary"
)

// ConditionType selects the rule family used to decide whether a definition unlocks.
type ConditionType string

const (
	ConditionTotalTasks      ConditionType = "total_tasks"
	ConditionTotalPoints     ConditionType = "total_points"
	ConditionCategoryTasks   ConditionType = "category_tasks"
	ConditionConsecutiveDays ConditionType = "consecutive_days"
	ConditionEarlyCompletion ConditionType = "early_completion"
	ConditionSpecificTime    ConditionType = "specific_time"
	ConditionResubmitQuick   ConditionType = "resubmit_quick"
	ConditionBirthdayTask    ConditionType = "birthday_task"
	ConditionCategoryStreak  ConditionType = "category_streak"
	ConditionStreakAnyTime   ConditionType = "streak_any_time"
)

// RequirementDetail is the condition-specific payload of a definition. Which field
// is meaningful depends on ConditionType: Category for category_tasks and
// category_streak, Hour for specific_time, nothing for the rest.
type RequirementDetail struct {
	Category string `json:"category,omitempty"`
	Hour     *int   `json:"hour,omitempty"`
}

// AchievementDefinition is one catalog entry. The catalog is authored out of band
// (seeders, admin tooling) and is read-only to the awarding engine.
type AchievementDefinition struct {
	ID                string          `json:"id" gorm:"primaryKey"`
	Name              string          `json:"name" gorm:"not null"`
	Description       string          `json:"description"`
	Icon              string          `json:"icon"`
	Dimension         string          `json:"dimension" gorm:"index"` // accumulation, behavior, surprise
	Category          string          `json:"category"`
	Level             string          `json:"level"` // bronze, silver, gold, legendary
	ConditionType     ConditionType   `json:"condition_type" gorm:"not null"`
	Requirement       int             `json:"requirement" gorm:"not null"`
	RequirementDetail json.RawMessage `json:"requirement_detail" gorm:"type:jsonb"`
	PointsReward      int             `json:"points_reward" gorm:"default:0"`
	HonorPoints       int             `json:"honor_points" gorm:"default:0"`
	Privileges        json.RawMessage `json:"privileges" gorm:"type:jsonb"` // JSON array of strings
	IsHidden          bool            `json:"is_hidden" gorm:"default:false"`
	IsActive          bool            `json:"is_active" gorm:"default:true"`
	Order             int             `json:"order" gorm:"default:0"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Detail decodes RequirementDetail and checks the fields the condition type needs.
func (d *AchievementDefinition) Detail() (RequirementDetail, error) {
	var detail RequirementDetail
	if len(d.RequirementDetail) > 0 {
		if err := json.Unmarshal(d.RequirementDetail, &detail); err != nil {
			return detail, fmt.Errorf("achievement %s: bad requirement detail: %w", d.ID, err)
		}
	}

	switch d.ConditionType {
	case ConditionCategoryTasks, ConditionCategoryStreak:
		if detail.Category == "" {
			return detail, fmt.Errorf("achievement %s: %s requires a category", d.ID, d.ConditionType)
		}
	case ConditionSpecificTime:
		if detail.Hour == nil {
			return detail, fmt.Errorf("achievement %s: specific_time requires an hour", d.ID)
		}
	}

	return detail, nil
}

// PrivilegeList decodes the privileges array, empty when unset.
func (d *AchievementDefinition) PrivilegeList() []string {
	var privileges []string
	if len(d.Privileges) > 0 {
		if err := json.Unmarshal(d.Privileges, &privileges); err != nil {
			return nil
		}
	}
	return privileges
}

// UserAchievementProgress is the durable per-user counter snapshot consulted by the
// condition evaluator. One row per user, lazily created, never deleted. All counters
// except ConsecutiveDays only ever grow; the streak fields are guarded by Version
// (optimistic concurrency) because their update depends on the previous value.
type UserAchievementProgress struct {
	ID                   string          `json:"id" gorm:"primaryKey"`
	UserID               string          `json:"user_id" gorm:"uniqueIndex;not null"`
	TotalTasksCompleted  int             `json:"total_tasks_completed" gorm:"default:0"`
	TotalPointsEarned    int             `json:"total_points_earned" gorm:"default:0"`
	CategoryCounts       json.RawMessage `json:"category_counts" gorm:"type:jsonb"` // map category -> count
	ConsecutiveDays      int             `json:"consecutive_days" gorm:"default:0"`
	MaxConsecutiveDays   int             `json:"max_consecutive_days" gorm:"default:0"`
	EarlyCompletionCount int             `json:"early_completion_count" gorm:"default:0"`
	BirthdayTasks        int             `json:"birthday_tasks" gorm:"default:0"`
	ResubmitQuickCount   int             `json:"resubmit_quick_count" gorm:"default:0"`
	LastTaskDate         *time.Time      `json:"last_task_date"`
	LastResubmitAt       *time.Time      `json:"last_resubmit_at"`
	Version              int64           `json:"-" gorm:"default:0"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// CategoryCount returns the counter for one category, 0 when absent.
func (p *UserAchievementProgress) CategoryCount(category string) int {
	return p.CategoryCountMap()[category]
}

func (p *UserAchievementProgress) CategoryCountMap() map[string]int {
	counts := map[string]int{}
	if len(p.CategoryCounts) > 0 {
		_ = json.Unmarshal(p.CategoryCounts, &counts)
	}
	return counts
}

// UserAchievement records one earned badge. The (UserID, AchievementID) unique index
// is what makes awarding at-most-once under concurrent approvals: the second insert
// fails and the conflict is swallowed by the award path.
type UserAchievement struct {
	ID            string     `json:"id" gorm:"primaryKey"`
	UserID        string     `json:"user_id" gorm:"not null;uniqueIndex:idx_user_achievement,priority:1"`
	AchievementID string     `json:"achievement_id" gorm:"not null;uniqueIndex:idx_user_achievement,priority:2"`
	EarnedAt      time.Time  `json:"earned_at"`
	Progress      int        `json:"progress"` // requirement at creation time
	IsNew         bool       `json:"is_new" gorm:"default:true"`
	ViewedAt      *time.Time `json:"viewed_at"`
	CreatedAt     time.Time  `json:"created_at"`

	Achievement AchievementDefinition `json:"achievement" gorm:"foreignKey:AchievementID"`
}
