package repositories

import (
	"errors"
	"strings"
	"time"

	"github.com/famquest/famquest_api/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrStreakConflict is returned when an optimistic streak update lost its race
// and matched zero rows. Callers reload the row and retry.
var ErrStreakConflict = errors.New("streak update conflict")

// ProgressIncrements collects the counter deltas produced by one approved
// completion. Zero-valued fields are left out of the UPDATE.
type ProgressIncrements struct {
	Tasks         int
	Points        int
	Category      string
	Early         int
	Birthday      int
	ResubmitQuick int
}

// AchievementRepository handles achievement catalog, progress and award
// database operations
type AchievementRepository struct {
	BaseRepository
}

func NewAchievementRepository(db *gorm.DB) *AchievementRepository {
	return &AchievementRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// ==================== CATALOG ====================

func (ds *AchievementRepository) GetActiveDefinitions() ([]model.AchievementDefinition, error) {
	var definitions []model.AchievementDefinition
	err := ds.db.Where("is_active = ?", true).
		Order("\"order\" ASC, created_at ASC").Find(&definitions).Error
	if err != nil {
		return nil, err
	}
	return definitions, nil
}

func (ds *AchievementRepository) GetDefinition(id string) (*model.AchievementDefinition, error) {
	var definition model.AchievementDefinition
	if err := ds.db.Where("id = ?", id).First(&definition).Error; err != nil {
		return nil, err
	}
	return &definition, nil
}

func (ds *AchievementRepository) CreateDefinition(definition *model.AchievementDefinition) error {
	now := time.Now()
	if definition.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		definition.ID = id.String()
	}
	definition.CreatedAt = now
	definition.UpdatedAt = now
	return ds.db.Create(definition).Error
}

func (ds *AchievementRepository) UpdateDefinition(id string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	return ds.db.Model(&model.AchievementDefinition{}).Where("id = ?", id).Updates(updates).Error
}

// ==================== PROGRESS ====================

// GetOrCreateProgress loads the user's progress row, creating the zero row on
// first use. A lost insert race falls back to reloading the winner's row.
func (ds *AchievementRepository) GetOrCreateProgress(userID string) (*model.UserAchievementProgress, error) {
	var progress model.UserAchievementProgress
	err := ds.db.Where("user_id = ?", userID).First(&progress).Error
	if err == nil {
		return &progress, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	progress = model.UserAchievementProgress{
		ID:        id.String(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := ds.db.Create(&progress).Error; err != nil {
		if isDuplicateKey(err) {
			var existing model.UserAchievementProgress
			if err2 := ds.db.Where("user_id = ?", userID).First(&existing).Error; err2 != nil {
				return nil, err2
			}
			return &existing, nil
		}
		return nil, err
	}
	return &progress, nil
}

func (ds *AchievementRepository) GetProgress(userID string) (*model.UserAchievementProgress, error) {
	var progress model.UserAchievementProgress
	if err := ds.db.Where("user_id = ?", userID).First(&progress).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

// IncrementCounters applies the monotonic counter deltas in a single UPDATE so
// concurrent approvals never lose increments. The category counter lives inside
// a jsonb map and is bumped with jsonb_set in the same statement.
func (ds *AchievementRepository) IncrementCounters(userID string, inc ProgressIncrements) error {
	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if inc.Tasks != 0 {
		updates["total_tasks_completed"] = gorm.Expr("total_tasks_completed + ?", inc.Tasks)
	}
	if inc.Points != 0 {
		updates["total_points_earned"] = gorm.Expr("total_points_earned + ?", inc.Points)
	}
	if inc.Early != 0 {
		updates["early_completion_count"] = gorm.Expr("early_completion_count + ?", inc.Early)
	}
	if inc.Birthday != 0 {
		updates["birthday_tasks"] = gorm.Expr("birthday_tasks + ?", inc.Birthday)
	}
	if inc.ResubmitQuick != 0 {
		updates["resubmit_quick_count"] = gorm.Expr("resubmit_quick_count + ?", inc.ResubmitQuick)
	}
	if inc.Category != "" {
		updates["category_counts"] = gorm.Expr(
			"jsonb_set(COALESCE(category_counts, '{}'::jsonb), ARRAY[?], (COALESCE(category_counts->>?, '0')::int + 1)::text::jsonb)",
			inc.Category, inc.Category)
	}

	return ds.db.Model(&model.UserAchievementProgress{}).
		Where("user_id = ?", userID).Updates(updates).Error
}

// UpdateStreak writes the recomputed streak fields guarded by the version the
// caller read. Returns ErrStreakConflict when another writer got there first.
func (ds *AchievementRepository) UpdateStreak(progressID string, version int64, consecutive, maxConsecutive int, lastTaskDate time.Time) error {
	res := ds.db.Model(&model.UserAchievementProgress{}).
		Where("id = ? AND version = ?", progressID, version).
		Updates(map[string]interface{}{
			"consecutive_days":     consecutive,
			"max_consecutive_days": maxConsecutive,
			"last_task_date":       lastTaskDate,
			"version":              gorm.Expr("version + 1"),
			"updated_at":           time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStreakConflict
	}
	return nil
}

func (ds *AchievementRepository) SetLastResubmit(userID string, at time.Time) error {
	return ds.db.Model(&model.UserAchievementProgress{}).
		Where("user_id = ?", userID).Updates(map[string]interface{}{
			"last_resubmit_at": at,
			"updated_at":       time.Now(),
		}).Error
}

// ==================== AWARDS ====================

// CreateUserAchievement inserts one earned badge. The (user, achievement)
// unique index rejects the second writer; that case is reported as
// (false, nil) so award paths can treat it as already-earned.
func (ds *AchievementRepository) CreateUserAchievement(award *model.UserAchievement) (bool, error) {
	now := time.Now()
	if award.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return false, err
		}
		award.ID = id.String()
	}
	if award.EarnedAt.IsZero() {
		award.EarnedAt = now
	}
	award.IsNew = true
	award.CreatedAt = now

	if err := ds.db.Omit("Achievement").Create(award).Error; err != nil {
		if isDuplicateKey(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (ds *AchievementRepository) GetUserAchievements(userID string) ([]model.UserAchievement, error) {
	var awards []model.UserAchievement
	err := ds.db.Preload("Achievement").Where("user_id = ?", userID).
		Order("earned_at DESC").Find(&awards).Error
	if err != nil {
		return nil, err
	}
	return awards, nil
}

func (ds *AchievementRepository) GetEarnedDefinitionIDs(userID string) (map[string]bool, error) {
	var ids []string
	err := ds.db.Model(&model.UserAchievement{}).
		Where("user_id = ?", userID).Pluck("achievement_id", &ids).Error
	if err != nil {
		return nil, err
	}
	earned := make(map[string]bool, len(ids))
	for _, id := range ids {
		earned[id] = true
	}
	return earned, nil
}

func (ds *AchievementRepository) CountNewAchievements(userID string) (int64, error) {
	var count int64
	err := ds.db.Model(&model.UserAchievement{}).
		Where("user_id = ? AND is_new = ?", userID, true).Count(&count).Error
	return count, err
}

// MarkViewed clears the new flag, for all badges when ids is empty.
func (ds *AchievementRepository) MarkViewed(userID string, ids []string) error {
	now := time.Now()
	query := ds.db.Model(&model.UserAchievement{}).Where("user_id = ? AND is_new = ?", userID, true)
	if len(ids) > 0 {
		query = query.Where("achievement_id IN ?", ids)
	}
	return query.Updates(map[string]interface{}{
		"is_new":    false,
		"viewed_at": &now,
	}).Error
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "duplicate key value violates unique constraint")
}
