package services

import (
	goContext "context"
	"errors"
	"fmt"
	"time"

	"github.com/famquest/famquest_api/dto"
	"github.com/famquest/famquest_api/model"
	"github.com/famquest/famquest_api/services/repositories"
	"github.com/famquest/famquest_api/shared"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
)

const leaderboardCacheTTL = 2 * time.Minute

type RewardService struct {
	context.DefaultService

	sqlSvc   *PostgresService
	redisSvc *RedisService
}

const REWARD_SVC = "reward_svc"

func (svc RewardService) Id() string {
	return REWARD_SVC
}

func (svc *RewardService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *RewardService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	return nil
}

// ==================== AVATAR / XP WALLET ====================

func (svc *RewardService) InitializeAvatar(userID string) error {
	_, err := svc.sqlSvc.Rewards().GetOrCreateAvatar(userID)
	return err
}

// CreditXP adds earned XP to both wallet columns and lifts the level when the
// lifetime total crosses the next threshold.
func (svc *RewardService) CreditXP(userID string, xp int) error {
	if xp <= 0 {
		return nil
	}

	if _, err := svc.sqlSvc.Rewards().GetOrCreateAvatar(userID); err != nil {
		return err
	}
	if err := svc.sqlSvc.Rewards().CreditXP(userID, xp); err != nil {
		return err
	}

	avatar, err := svc.sqlSvc.Rewards().GetAvatar(userID)
	if err != nil {
		return err
	}
	level := calculateLevel(avatar.TotalXP)
	if level > avatar.Level {
		if err := svc.sqlSvc.Rewards().SetLevel(userID, level); err != nil {
			log.WithError(err).WithField("user_id", userID).Warn("Failed to persist level up")
		} else {
			log.WithFields(log.Fields{"user_id": userID, "level": level}).Info("Avatar leveled up")
		}
	}
	return nil
}

// calculateLevel maps lifetime XP onto a level, each level costing 1.5x the
// previous one starting at 100.
func calculateLevel(totalXP int) int {
	level := 1
	requiredXP := 100

	for totalXP >= requiredXP {
		totalXP -= requiredXP
		level++
		requiredXP = int(float64(requiredXP) * 1.5)
	}

	return level
}

// xpToNextLevel reports how much more lifetime XP the next level costs.
func xpToNextLevel(totalXP int) int {
	requiredXP := 100

	for totalXP >= requiredXP {
		totalXP -= requiredXP
		requiredXP = int(float64(requiredXP) * 1.5)
	}

	return requiredXP - totalXP
}

func (svc *RewardService) GetAvatar(userID string) (*dto.AvatarResponse, error) {
	avatar, err := svc.sqlSvc.Rewards().GetOrCreateAvatar(userID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load avatar")
	}

	return &dto.AvatarResponse{
		UserID:             avatar.UserID,
		Level:              avatar.Level,
		TotalXP:            avatar.TotalXP,
		CurrentXP:          avatar.CurrentXP,
		XPToNextLevel:      xpToNextLevel(avatar.TotalXP),
		MaxConsecutiveDays: avatar.MaxConsecutiveDays,
		ImageURL:           avatar.ImageURL,
	}, nil
}

// ==================== REWARD STORE ====================

func (svc *RewardService) CreateReward(familyID, creatorID string, req dto.CreateRewardRequest) (*dto.RewardResponse, error) {
	reward := &model.Reward{
		FamilyID:    familyID,
		Name:        req.Name,
		Description: req.Description,
		Cost:        req.Cost,
		Stock:       req.Stock,
		IsActive:    true,
		CreatedBy:   creatorID,
	}
	if err := svc.sqlSvc.Rewards().CreateReward(reward); err != nil {
		return nil, shared.NewInternalError(err, "Failed to create reward")
	}
	resp := toRewardResponse(reward)
	return &resp, nil
}

func (svc *RewardService) UpdateReward(familyID, rewardID string, req dto.UpdateRewardRequest) (*dto.RewardResponse, error) {
	reward, err := svc.sqlSvc.Rewards().GetReward(rewardID)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "Reward not found")
	}
	if reward.FamilyID != familyID {
		return nil, shared.NewForbiddenError(nil, "Reward belongs to another family")
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Cost != nil {
		updates["cost"] = *req.Cost
	}
	if req.Stock != nil {
		updates["stock"] = *req.Stock
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) > 0 {
		if err := svc.sqlSvc.Rewards().UpdateReward(rewardID, updates); err != nil {
			return nil, shared.NewInternalError(err, "Failed to update reward")
		}
	}

	reward, err = svc.sqlSvc.Rewards().GetReward(rewardID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to reload reward")
	}
	resp := toRewardResponse(reward)
	return &resp, nil
}

func (svc *RewardService) GetFamilyRewards(familyID string, activeOnly bool) (*dto.RewardCollectionResponse, error) {
	rewards, err := svc.sqlSvc.Rewards().GetFamilyRewards(familyID, activeOnly)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load rewards")
	}

	items := make([]dto.RewardResponse, 0, len(rewards))
	for i := range rewards {
		items = append(items, toRewardResponse(&rewards[i]))
	}
	return &dto.RewardCollectionResponse{Rewards: items, Total: len(items)}, nil
}

// RedeemReward spends CurrentXP on a store item. The wallet deduction and the
// stock decrement are both guarded inside their UPDATEs, so two children
// racing for the last unit settle without overselling; a failed stock grab
// refunds the wallet.
func (svc *RewardService) RedeemReward(userID, rewardID string) (*dto.RedemptionResponse, error) {
	user, err := svc.sqlSvc.Users().GetUser(userID)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "User not found")
	}

	reward, err := svc.sqlSvc.Rewards().GetReward(rewardID)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "Reward not found")
	}
	if !reward.IsActive {
		return nil, shared.NewBadRequestError(nil, "Reward is no longer available")
	}
	if user.FamilyID == nil || *user.FamilyID != reward.FamilyID {
		return nil, shared.NewForbiddenError(nil, "Reward belongs to another family")
	}

	if err := svc.sqlSvc.Rewards().SpendXP(userID, reward.Cost); err != nil {
		if errors.Is(err, repositories.ErrInsufficientXP) {
			return nil, shared.NewBadRequestError(err, "Not enough XP for this reward")
		}
		return nil, shared.NewInternalError(err, "Failed to spend XP")
	}

	if err := svc.sqlSvc.Rewards().DecrementStock(rewardID); err != nil {
		if refundErr := svc.sqlSvc.Rewards().RefundXP(userID, reward.Cost); refundErr != nil {
			log.WithError(refundErr).WithField("user_id", userID).Error("Failed to refund XP after stock miss")
		}
		if errors.Is(err, repositories.ErrOutOfStock) {
			return nil, shared.NewConflictError(err, "Reward is out of stock")
		}
		return nil, shared.NewInternalError(err, "Failed to reserve reward stock")
	}

	redemption := &model.RewardRedemption{
		RewardID: rewardID,
		UserID:   userID,
		Cost:     reward.Cost,
		Status:   model.RedemptionStatusPending,
	}
	if err := svc.sqlSvc.Rewards().CreateRedemption(redemption); err != nil {
		return nil, shared.NewInternalError(err, "Failed to record redemption")
	}

	resp := svc.toRedemptionResponse(redemption, reward.Name)
	return &resp, nil
}

func (svc *RewardService) GetUserRedemptions(userID string) (*dto.RedemptionCollectionResponse, error) {
	redemptions, err := svc.sqlSvc.Rewards().GetUserRedemptions(userID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load redemptions")
	}
	return svc.toRedemptionCollection(redemptions), nil
}

func (svc *RewardService) GetFamilyPendingRedemptions(familyID string) (*dto.RedemptionCollectionResponse, error) {
	redemptions, err := svc.sqlSvc.Rewards().GetFamilyPendingRedemptions(familyID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load pending redemptions")
	}
	return svc.toRedemptionCollection(redemptions), nil
}

// ReviewRedemption settles a pending redemption. Cancelling refunds the wallet
// and puts the unit back on the shelf.
func (svc *RewardService) ReviewRedemption(familyID, redemptionID, reviewerID string, fulfill bool) (*dto.RedemptionResponse, error) {
	redemption, err := svc.sqlSvc.Rewards().GetRedemption(redemptionID)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "Redemption not found")
	}
	if redemption.Reward.FamilyID != familyID {
		return nil, shared.NewForbiddenError(nil, "Redemption belongs to another family")
	}

	status := model.RedemptionStatusFulfilled
	if !fulfill {
		status = model.RedemptionStatusCancelled
	}

	settled, err := svc.sqlSvc.Rewards().ReviewRedemption(redemptionID, reviewerID, status)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to review redemption")
	}
	if !settled {
		return nil, shared.NewConflictError(nil, "Redemption already reviewed")
	}

	if !fulfill {
		if err := svc.sqlSvc.Rewards().RefundXP(redemption.UserID, redemption.Cost); err != nil {
			log.WithError(err).WithField("redemption_id", redemptionID).Error("Failed to refund cancelled redemption")
		}
		if err := svc.sqlSvc.Rewards().RestoreStock(redemption.RewardID); err != nil {
			log.WithError(err).WithField("redemption_id", redemptionID).Error("Failed to restore stock for cancelled redemption")
		}
	}

	redemption, err = svc.sqlSvc.Rewards().GetRedemption(redemptionID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to reload redemption")
	}
	resp := svc.toRedemptionResponse(redemption, redemption.Reward.Name)
	return &resp, nil
}

// ==================== LEADERBOARD ====================

func (svc *RewardService) GetFamilyLeaderboard(familyID string, limit int) (*dto.LeaderboardResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	ctx := goContext.Background()
	cacheKey := fmt.Sprintf("leaderboard:%s:%d", familyID, limit)

	var cached dto.LeaderboardResponse
	if hit, err := svc.redisSvc.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	} else if err != nil {
		log.WithError(err).Warn("Leaderboard cache read failed")
	}

	rows, err := svc.sqlSvc.Rewards().GetFamilyLeaderboard(familyID, limit)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load leaderboard")
	}

	resp := &dto.LeaderboardResponse{
		FamilyID: familyID,
		Entries:  make([]dto.LeaderboardEntry, 0, len(rows)),
		CachedAt: time.Now(),
	}
	for i, row := range rows {
		resp.Entries = append(resp.Entries, dto.LeaderboardEntry{
			Rank:        i + 1,
			UserID:      row.UserID,
			Username:    row.Username,
			Level:       row.Level,
			TotalXP:     row.TotalXP,
			HonorPoints: row.HonorPoints,
		})
	}

	if err := svc.redisSvc.Set(ctx, cacheKey, resp, leaderboardCacheTTL); err != nil {
		log.WithError(err).Warn("Leaderboard cache write failed")
	}

	return resp, nil
}

// InvalidateLeaderboard drops cached leaderboard pages after a score change.
func (svc *RewardService) InvalidateLeaderboard(familyID string) {
	ctx := goContext.Background()
	keys, err := svc.redisSvc.Keys(ctx, fmt.Sprintf("leaderboard:%s:*", familyID))
	if err != nil || len(keys) == 0 {
		return
	}
	if err := svc.redisSvc.Delete(ctx, keys...); err != nil {
		log.WithError(err).Warn("Leaderboard cache invalidation failed")
	}
}

// ==================== MAPPING ====================

func toRewardResponse(reward *model.Reward) dto.RewardResponse {
	return dto.RewardResponse{
		ID:          reward.ID,
		FamilyID:    reward.FamilyID,
		Name:        reward.Name,
		Description: reward.Description,
		ImageURL:    reward.ImageURL,
		Cost:        reward.Cost,
		Stock:       reward.Stock,
		IsActive:    reward.IsActive,
		CreatedAt:   reward.CreatedAt,
	}
}

func (svc *RewardService) toRedemptionResponse(redemption *model.RewardRedemption, rewardName string) dto.RedemptionResponse {
	return dto.RedemptionResponse{
		ID:         redemption.ID,
		RewardID:   redemption.RewardID,
		RewardName: rewardName,
		UserID:     redemption.UserID,
		Cost:       redemption.Cost,
		Status:     redemption.Status,
		ReviewedBy: redemption.ReviewedBy,
		ReviewedAt: redemption.ReviewedAt,
		CreatedAt:  redemption.CreatedAt,
	}
}

func (svc *RewardService) toRedemptionCollection(redemptions []model.RewardRedemption) *dto.RedemptionCollectionResponse {
	items := make([]dto.RedemptionResponse, 0, len(redemptions))
	for i := range redemptions {
		items = append(items, svc.toRedemptionResponse(&redemptions[i], redemptions[i].Reward.Name))
	}
	return &dto.RedemptionCollectionResponse{Redemptions: items, Total: len(items)}
}
