package repositories

import (
	"errors"
	"time"

	"github.com/famquest/famquest_api/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrInsufficientXP is returned when a redemption would push CurrentXP below
// zero. The guard lives in the UPDATE itself so concurrent redemptions cannot
// overspend.
var ErrInsufficientXP = errors.New("insufficient xp")

// ErrOutOfStock is returned when a stock-limited reward has none left.
var ErrOutOfStock = errors.New("reward out of stock")

// RewardRepository handles avatar, reward store and redemption database
// operations
type RewardRepository struct {
	BaseRepository
}

func NewRewardRepository(db *gorm.DB) *RewardRepository {
	return &RewardRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// ==================== AVATAR ====================

func (ds *RewardRepository) GetOrCreateAvatar(userID string) (*model.Avatar, error) {
	var avatar model.Avatar
	err := ds.db.Where("user_id = ?", userID).First(&avatar).Error
	if err == nil {
		return &avatar, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	avatar = model.Avatar{
		ID:        id.String(),
		UserID:    userID,
		Level:     1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := ds.db.Create(&avatar).Error; err != nil {
		if isDuplicateKey(err) {
			var existing model.Avatar
			if err2 := ds.db.Where("user_id = ?", userID).First(&existing).Error; err2 != nil {
				return nil, err2
			}
			return &existing, nil
		}
		return nil, err
	}
	return &avatar, nil
}

func (ds *RewardRepository) GetAvatar(userID string) (*model.Avatar, error) {
	var avatar model.Avatar
	if err := ds.db.Where("user_id = ?", userID).First(&avatar).Error; err != nil {
		return nil, err
	}
	return &avatar, nil
}

// CreditXP adds xp to both wallet columns atomically. Level is recomputed by
// the caller after reloading.
func (ds *RewardRepository) CreditXP(userID string, xp int) error {
	if xp == 0 {
		return nil
	}
	return ds.db.Model(&model.Avatar{}).Where("user_id = ?", userID).Updates(map[string]interface{}{
		"total_xp":   gorm.Expr("total_xp + ?", xp),
		"current_xp": gorm.Expr("current_xp + ?", xp),
		"updated_at": time.Now(),
	}).Error
}

func (ds *RewardRepository) SetLevel(userID string, level int) error {
	return ds.db.Model(&model.Avatar{}).Where("user_id = ? AND level < ?", userID, level).
		Updates(map[string]interface{}{
			"level":      level,
			"updated_at": time.Now(),
		}).Error
}

// RecordStreak lifts MaxConsecutiveDays to at least days without ever lowering it.
func (ds *RewardRepository) RecordStreak(userID string, days int) error {
	return ds.db.Model(&model.Avatar{}).
		Where("user_id = ? AND max_consecutive_days < ?", userID, days).
		Updates(map[string]interface{}{
			"max_consecutive_days": days,
			"updated_at":           time.Now(),
		}).Error
}

// SpendXP deducts cost with the balance check inside the UPDATE. Zero rows
// affected means the wallet could not cover it.
func (ds *RewardRepository) SpendXP(userID string, cost int) error {
	res := ds.db.Model(&model.Avatar{}).
		Where("user_id = ? AND current_xp >= ?", userID, cost).
		Updates(map[string]interface{}{
			"current_xp": gorm.Expr("current_xp - ?", cost),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientXP
	}
	return nil
}

// RefundXP returns spendable xp after a cancelled redemption. TotalXP is left
// alone, it only tracks lifetime earnings.
func (ds *RewardRepository) RefundXP(userID string, xp int) error {
	return ds.db.Model(&model.Avatar{}).Where("user_id = ?", userID).Updates(map[string]interface{}{
		"current_xp": gorm.Expr("current_xp + ?", xp),
		"updated_at": time.Now(),
	}).Error
}

// ==================== REWARD STORE ====================

func (ds *RewardRepository) CreateReward(reward *model.Reward) error {
	now := time.Now()
	if reward.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		reward.ID = id.String()
	}
	reward.CreatedAt = now
	reward.UpdatedAt = now
	return ds.db.Create(reward).Error
}

func (ds *RewardRepository) GetReward(rewardID string) (*model.Reward, error) {
	var reward model.Reward
	if err := ds.db.Where("id = ?", rewardID).First(&reward).Error; err != nil {
		return nil, err
	}
	return &reward, nil
}

func (ds *RewardRepository) GetFamilyRewards(familyID string, activeOnly bool) ([]model.Reward, error) {
	var rewards []model.Reward
	query := ds.db.Where("family_id = ?", familyID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("cost ASC").Find(&rewards).Error
	if err != nil {
		return nil, err
	}
	return rewards, nil
}

func (ds *RewardRepository) UpdateReward(rewardID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	return ds.db.Model(&model.Reward{}).Where("id = ?", rewardID).Updates(updates).Error
}

// DecrementStock takes one unit from a stock-limited reward. Unlimited rewards
// (stock = -1) pass through untouched.
func (ds *RewardRepository) DecrementStock(rewardID string) error {
	var reward model.Reward
	if err := ds.db.Select("stock").Where("id = ?", rewardID).First(&reward).Error; err != nil {
		return err
	}
	if reward.Stock < 0 {
		return nil
	}

	res := ds.db.Model(&model.Reward{}).
		Where("id = ? AND stock > 0", rewardID).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock - 1"),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOutOfStock
	}
	return nil
}

func (ds *RewardRepository) RestoreStock(rewardID string) error {
	return ds.db.Model(&model.Reward{}).
		Where("id = ? AND stock >= 0", rewardID).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock + 1"),
			"updated_at": time.Now(),
		}).Error
}

// ==================== REDEMPTIONS ====================

func (ds *RewardRepository) CreateRedemption(redemption *model.RewardRedemption) error {
	now := time.Now()
	if redemption.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		redemption.ID = id.String()
	}
	redemption.CreatedAt = now
	redemption.UpdatedAt = now
	return ds.db.Create(redemption).Error
}

func (ds *RewardRepository) GetRedemption(redemptionID string) (*model.RewardRedemption, error) {
	var redemption model.RewardRedemption
	if err := ds.db.Preload("Reward").Where("id = ?", redemptionID).First(&redemption).Error; err != nil {
		return nil, err
	}
	return &redemption, nil
}

func (ds *RewardRepository) GetUserRedemptions(userID string) ([]model.RewardRedemption, error) {
	var redemptions []model.RewardRedemption
	err := ds.db.Preload("Reward").Where("user_id = ?", userID).
		Order("created_at DESC").Find(&redemptions).Error
	if err != nil {
		return nil, err
	}
	return redemptions, nil
}

func (ds *RewardRepository) GetFamilyPendingRedemptions(familyID string) ([]model.RewardRedemption, error) {
	var redemptions []model.RewardRedemption
	err := ds.db.Preload("Reward").
		Joins("JOIN rewards ON rewards.id = reward_redemptions.reward_id").
		Where("rewards.family_id = ? AND reward_redemptions.status = ?", familyID, model.RedemptionStatusPending).
		Order("reward_redemptions.created_at ASC").
		Find(&redemptions).Error
	if err != nil {
		return nil, err
	}
	return redemptions, nil
}

// ReviewRedemption settles a pending redemption. The status guard keeps a
// double review from firing twice.
func (ds *RewardRepository) ReviewRedemption(redemptionID, reviewerID, status string) (bool, error) {
	now := time.Now()
	res := ds.db.Model(&model.RewardRedemption{}).
		Where("id = ? AND status = ?", redemptionID, model.RedemptionStatusPending).
		Updates(map[string]interface{}{
			"status":      status,
			"reviewed_by": reviewerID,
			"reviewed_at": &now,
			"updated_at":  now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ==================== LEADERBOARD ====================

// LeaderboardRow is the joined projection behind the family leaderboard.
type LeaderboardRow struct {
	UserID      string
	Username    string
	Level       int
	TotalXP     int
	HonorPoints int
}

func (ds *RewardRepository) GetFamilyLeaderboard(familyID string, limit int) ([]LeaderboardRow, error) {
	var rows []LeaderboardRow
	err := ds.db.Table("avatars").
		Select("avatars.user_id, users.username, avatars.level, avatars.total_xp, users.honor_points").
		Joins("JOIN users ON users.id = avatars.user_id").
		Where("users.family_id = ? AND users.deleted_at IS NULL", familyID).
		Order("avatars.total_xp DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
