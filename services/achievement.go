package services

import (
	"errors"
	"math"
	"time"

	"github.com/famquest/famquest_api/dto"
	"github.com/famquest/famquest_api/model"
	"github.com/famquest/famquest_api/services/repositories"
	"github.com/famquest/famquest_api/shared"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	earlyCompletionHour = 8
	resubmitQuickWindow = 30 * time.Minute
	streakRetryAttempts = 5
)

// Engine failure taxonomy. CheckAndAward absorbs all of these and returns a
// best-effort result; they exist so the absorption points log distinctly.
var (
	ErrCatalogUnavailable = errors.New("achievement catalog unavailable")
	ErrProgressPersist    = errors.New("progress update not persisted")
	ErrRewardCredit       = errors.New("reward credit failed")
)

// awardStore is the slice of achievement persistence the award issuer touches.
// AchievementRepository satisfies it; tests stand in a fake.
type awardStore interface {
	GetActiveDefinitions() ([]model.AchievementDefinition, error)
	GetOrCreateProgress(userID string) (*model.UserAchievementProgress, error)
	GetEarnedDefinitionIDs(userID string) (map[string]bool, error)
	CreateUserAchievement(award *model.UserAchievement) (bool, error)
}

// avatarReader supplies the avatar streak consumed by streak_any_time.
type avatarReader interface {
	GetAvatar(userID string) (*model.Avatar, error)
}

// awardCreditor pays out achievement rewards into the XP wallet and the
// honor-point ledger.
type awardCreditor interface {
	CreditXP(userID string, points int) error
	CreditHonorPoints(userID string, points int) error
}

type AchievementService struct {
	context.DefaultService

	sqlSvc    *PostgresService
	rewardSvc *RewardService

	awards  awardStore
	avatars avatarReader
	credits awardCreditor
}

// walletCreditor routes achievement payouts to the wired reward and user
// subsystems.
type walletCreditor struct {
	rewardSvc *RewardService
	users     *repositories.UserRepository
}

func (c walletCreditor) CreditXP(userID string, points int) error {
	return c.rewardSvc.CreditXP(userID, points)
}

func (c walletCreditor) CreditHonorPoints(userID string, points int) error {
	return c.users.CreditHonorPoints(userID, points)
}

const ACHIEVEMENT_SVC = "achievement_svc"

func (svc AchievementService) Id() string {
	return ACHIEVEMENT_SVC
}

func (svc *AchievementService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *AchievementService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.rewardSvc = svc.Service(REWARD_SVC).(*RewardService)
	svc.awards = svc.sqlSvc.Achievements()
	svc.avatars = svc.sqlSvc.Rewards()
	svc.credits = walletCreditor{rewardSvc: svc.rewardSvc, users: svc.sqlSvc.Users()}
	return nil
}

// ==================== PROGRESS AGGREGATOR ====================

// completionIncrements maps one approved completion onto the monotonic counter
// deltas. Streak fields are handled separately, their update is not a pure
// increment.
func completionIncrements(event dto.TaskCompletionContext) repositories.ProgressIncrements {
	inc := repositories.ProgressIncrements{
		Tasks:    1,
		Points:   event.TaskPoints,
		Category: event.TaskCategory,
	}
	if event.CompletedAt.Hour() < earlyCompletionHour {
		inc.Early = 1
	}
	if event.IsBirthday {
		inc.Birthday = 1
	}
	if event.IsResubmit && event.PreviousRejectedAt != nil &&
		event.CompletedAt.Sub(*event.PreviousRejectedAt) <= resubmitQuickWindow {
		inc.ResubmitQuick = 1
	}
	return inc
}

// dayNumber maps a timestamp to its local calendar date counted as days since
// the Unix epoch. The date components go through UTC so day arithmetic stays
// exact across DST transitions, where a local day is not 24 hours.
func dayNumber(t time.Time) int {
	y, m, d := t.Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

// nextStreak computes the streak transition for a completion at completedAt
// given the previous streak state. Same calendar day leaves the streak alone,
// the next day extends it, anything else resets to 1. MaxConsecutive never
// decreases.
func nextStreak(lastTaskDate *time.Time, consecutive, maxConsecutive int, completedAt time.Time) (int, int) {
	if lastTaskDate == nil {
		return 1, max(maxConsecutive, 1)
	}

	daysDiff := dayNumber(completedAt) - dayNumber(*lastTaskDate)
	switch daysDiff {
	case 0:
		return consecutive, maxConsecutive
	case 1:
		return consecutive + 1, max(maxConsecutive, consecutive+1)
	default:
		return 1, max(maxConsecutive, 1)
	}
}

// ApplyCompletion folds one approved completion into the user's durable
// progress snapshot. Counter deltas go down as atomic increments; the streak
// fields go through an optimistic loop keyed on the row version because their
// new value depends on the old one.
func (svc *AchievementService) ApplyCompletion(userID string, event dto.TaskCompletionContext) (*model.UserAchievementProgress, error) {
	if _, err := svc.sqlSvc.Achievements().GetOrCreateProgress(userID); err != nil {
		return nil, errors.Join(ErrProgressPersist, err)
	}

	inc := completionIncrements(event)
	if err := svc.sqlSvc.Achievements().IncrementCounters(userID, inc); err != nil {
		return nil, errors.Join(ErrProgressPersist, err)
	}
	if inc.ResubmitQuick > 0 {
		if err := svc.sqlSvc.Achievements().SetLastResubmit(userID, event.CompletedAt); err != nil {
			return nil, errors.Join(ErrProgressPersist, err)
		}
	}

	var err error
	for attempt := 0; attempt < streakRetryAttempts; attempt++ {
		var progress *model.UserAchievementProgress
		progress, err = svc.sqlSvc.Achievements().GetProgress(userID)
		if err != nil {
			return nil, errors.Join(ErrProgressPersist, err)
		}

		consecutive, maxConsecutive := nextStreak(progress.LastTaskDate, progress.ConsecutiveDays, progress.MaxConsecutiveDays, event.CompletedAt)
		err = svc.sqlSvc.Achievements().UpdateStreak(progress.ID, progress.Version, consecutive, maxConsecutive, event.CompletedAt)
		if err == nil {
			// Mirror the streak into the avatar so streak_any_time
			// conditions and the profile view stay in step.
			if streakErr := svc.sqlSvc.Rewards().RecordStreak(userID, maxConsecutive); streakErr != nil {
				log.WithError(streakErr).WithField("user_id", userID).Warn("Failed to mirror streak to avatar")
			}
			break
		}
		if !errors.Is(err, repositories.ErrStreakConflict) {
			return nil, errors.Join(ErrProgressPersist, err)
		}
	}
	if err != nil {
		return nil, errors.Join(ErrProgressPersist, err)
	}

	progress, err := svc.sqlSvc.Achievements().GetProgress(userID)
	if err != nil {
		return nil, errors.Join(ErrProgressPersist, err)
	}
	return progress, nil
}

// ==================== CONDITION EVALUATOR ====================

func clampProgress(value, requirement int) int {
	if value < 0 {
		return 0
	}
	if value > requirement {
		return requirement
	}
	return value
}

// EvaluateCondition decides one definition against a progress snapshot. event
// is nil on read-only display passes; event-scoped conditions degrade to their
// non-event approximation instead of failing. externalStreak carries the
// avatar's best streak for streak_any_time.
func EvaluateCondition(def *model.AchievementDefinition, snapshot *model.UserAchievementProgress, event *dto.TaskCompletionContext, externalStreak int) (dto.ConditionResult, error) {
	detail, err := def.Detail()
	if err != nil {
		return dto.ConditionResult{}, err
	}

	switch def.ConditionType {
	case model.ConditionTotalTasks:
		return thresholdResult(snapshot.TotalTasksCompleted, def.Requirement), nil

	case model.ConditionTotalPoints:
		return thresholdResult(snapshot.TotalPointsEarned, def.Requirement), nil

	case model.ConditionCategoryTasks:
		return thresholdResult(snapshot.CategoryCount(detail.Category), def.Requirement), nil

	case model.ConditionConsecutiveDays:
		// Unlock tracks the live streak; the progress bar holds its
		// historical best so a broken streak does not regress it.
		return dto.ConditionResult{
			Unlocked: snapshot.ConsecutiveDays >= def.Requirement,
			Progress: clampProgress(max(snapshot.ConsecutiveDays, snapshot.MaxConsecutiveDays), def.Requirement),
		}, nil

	case model.ConditionEarlyCompletion:
		return thresholdResult(snapshot.EarlyCompletionCount, def.Requirement), nil

	case model.ConditionSpecificTime:
		// Event-scoped: no durable counter backs this, so outside the
		// triggering call it reads as 0.
		satisfied := event != nil && event.CompletedAt.Hour() <= *detail.Hour
		value := 0
		if satisfied {
			value = 1
		}
		return dto.ConditionResult{
			Unlocked: satisfied,
			Progress: clampProgress(value, def.Requirement),
		}, nil

	case model.ConditionResubmitQuick:
		return thresholdResult(snapshot.ResubmitQuickCount, def.Requirement), nil

	case model.ConditionBirthdayTask:
		// Unlock needs the current event flagged as a birthday on top of
		// the counter; the displayed progress ignores that flag. The two
		// can disagree and that mismatch is kept as-is.
		return dto.ConditionResult{
			Unlocked: event != nil && event.IsBirthday && snapshot.BirthdayTasks >= def.Requirement,
			Progress: clampProgress(snapshot.BirthdayTasks, def.Requirement),
		}, nil

	case model.ConditionCategoryStreak:
		// Declares a category but evaluates the global best streak, the
		// category is validated and then unused. Kept as-is.
		return thresholdResult(snapshot.MaxConsecutiveDays, def.Requirement), nil

	case model.ConditionStreakAnyTime:
		return thresholdResult(externalStreak, def.Requirement), nil
	}

	return dto.ConditionResult{}, errors.New("unknown condition type: " + string(def.ConditionType))
}

func thresholdResult(value, requirement int) dto.ConditionResult {
	return dto.ConditionResult{
		Unlocked: value >= requirement,
		Progress: clampProgress(value, requirement),
	}
}

// ==================== AWARD ISSUER ====================

// CheckAndAward is the engine entry point, called once per task transition
// into approved. It never returns an error: every failure mode is logged and
// absorbed here so the approval that triggered it cannot be blocked by a
// missing badge. The worst user-visible outcome is a delayed notification.
func (svc *AchievementService) CheckAndAward(userID string, event *dto.TaskCompletionContext) *dto.CheckAndAwardResult {
	result := &dto.CheckAndAwardResult{
		NewAchievements: []dto.AwardedAchievement{},
		UpdatedProgress: map[string]int{},
	}

	if event != nil {
		if _, err := svc.ApplyCompletion(userID, *event); err != nil {
			progressPersistFailuresTotal.Inc()
			log.WithError(err).WithField("user_id", userID).Error("Failed to persist achievement progress")
		}
	}

	definitions, err := svc.awards.GetActiveDefinitions()
	if err != nil {
		catalogUnavailableTotal.Inc()
		log.WithError(errors.Join(ErrCatalogUnavailable, err)).Error("Skipping achievement check")
		return result
	}

	snapshot, err := svc.awards.GetOrCreateProgress(userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Failed to load achievement progress")
		return result
	}

	earned, err := svc.awards.GetEarnedDefinitionIDs(userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Failed to load earned achievements")
		return result
	}

	externalStreak := svc.externalStreak(userID)

	for i := range definitions {
		def := &definitions[i]
		if earned[def.ID] {
			continue
		}

		res, err := EvaluateCondition(def, snapshot, event, externalStreak)
		if err != nil {
			log.WithError(err).WithField("achievement_id", def.ID).Warn("Skipping unevaluable achievement")
			continue
		}
		result.UpdatedProgress[def.ID] = res.Progress

		if !res.Unlocked {
			continue
		}

		created, err := svc.awards.CreateUserAchievement(&model.UserAchievement{
			UserID:        userID,
			AchievementID: def.ID,
			Progress:      def.Requirement,
		})
		if err != nil {
			log.WithError(err).WithFields(log.Fields{
				"user_id":        userID,
				"achievement_id": def.ID,
			}).Error("Failed to create achievement award")
			continue
		}
		if !created {
			// Concurrent caller won the insert. Already awarded, never
			// credited twice.
			awardConflictsTotal.Inc()
			continue
		}

		achievementsAwardedTotal.WithLabelValues(def.Dimension, def.Level).Inc()
		svc.creditAward(userID, def)

		result.NewAchievements = append(result.NewAchievements, dto.AwardedAchievement{
			ID:           def.ID,
			Name:         def.Name,
			Description:  def.Description,
			Icon:         def.Icon,
			Dimension:    def.Dimension,
			Level:        def.Level,
			PointsReward: def.PointsReward,
			HonorPoints:  def.HonorPoints,
			Privileges:   def.PrivilegeList(),
		})
	}

	return result
}

// creditAward pays out a freshly created unlock row. Credits are keyed to that
// row, so a retry after a transient failure stays idempotent; the row is never
// rolled back to undo a partial credit.
func (svc *AchievementService) creditAward(userID string, def *model.AchievementDefinition) {
	if def.PointsReward > 0 {
		if err := svc.creditWithRetry(func() error {
			return svc.credits.CreditXP(userID, def.PointsReward)
		}); err != nil {
			rewardCreditFailuresTotal.Inc()
			log.WithError(errors.Join(ErrRewardCredit, err)).WithFields(log.Fields{
				"user_id":        userID,
				"achievement_id": def.ID,
			}).Error("Failed to credit achievement XP")
		}
	}
	if def.HonorPoints > 0 {
		if err := svc.creditWithRetry(func() error {
			return svc.credits.CreditHonorPoints(userID, def.HonorPoints)
		}); err != nil {
			rewardCreditFailuresTotal.Inc()
			log.WithError(errors.Join(ErrRewardCredit, err)).WithFields(log.Fields{
				"user_id":        userID,
				"achievement_id": def.ID,
			}).Error("Failed to credit honor points")
		}
	}
}

func (svc *AchievementService) creditWithRetry(credit func() error) error {
	err := credit()
	if err == nil {
		return nil
	}
	return credit()
}

func (svc *AchievementService) externalStreak(userID string) int {
	avatar, err := svc.avatars.GetAvatar(userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.WithError(err).WithField("user_id", userID).Warn("Failed to load avatar streak")
		}
		return 0
	}
	return avatar.MaxConsecutiveDays
}

// ==================== QUERY SERVICE ====================

func (svc *AchievementService) GetUserAchievements(userID string) (*dto.AchievementListResponse, error) {
	definitions, err := svc.sqlSvc.Achievements().GetActiveDefinitions()
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load achievements")
	}

	snapshot, err := svc.sqlSvc.Achievements().GetOrCreateProgress(userID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load achievement progress")
	}

	awards, err := svc.sqlSvc.Achievements().GetUserAchievements(userID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load earned achievements")
	}
	earnedByID := make(map[string]*model.UserAchievement, len(awards))
	for i := range awards {
		earnedByID[awards[i].AchievementID] = &awards[i]
	}

	externalStreak := svc.externalStreak(userID)

	items := make([]dto.UserAchievementItem, 0, len(definitions))
	earnedCount := 0
	for i := range definitions {
		def := &definitions[i]
		item := dto.UserAchievementItem{
			ID:           def.ID,
			Name:         def.Name,
			Description:  def.Description,
			Icon:         def.Icon,
			Dimension:    def.Dimension,
			Category:     def.Category,
			Level:        def.Level,
			Requirement:  def.Requirement,
			PointsReward: def.PointsReward,
			HonorPoints:  def.HonorPoints,
			IsHidden:     def.IsHidden,
			Order:        def.Order,
		}

		if award, ok := earnedByID[def.ID]; ok {
			earnedCount++
			item.IsEarned = true
			item.Progress = def.Requirement
			item.ProgressPercent = 100
			earnedAt := award.EarnedAt
			item.EarnedAt = &earnedAt
			item.IsNew = award.IsNew
		} else {
			res, err := EvaluateCondition(def, snapshot, nil, externalStreak)
			if err != nil {
				log.WithError(err).WithField("achievement_id", def.ID).Warn("Skipping unevaluable achievement")
				continue
			}
			item.Progress = res.Progress
			if def.Requirement > 0 {
				item.ProgressPercent = int(math.Round(100 * float64(res.Progress) / float64(def.Requirement)))
			}
			if def.IsHidden {
				item.Name = shared.HiddenAchievementName
				item.Description = shared.HiddenAchievementDescription
			}
		}

		items = append(items, item)
	}

	return &dto.AchievementListResponse{
		Achievements: items,
		Total:        len(items),
		Earned:       earnedCount,
	}, nil
}

func (svc *AchievementService) GetAchievementStats(userID string) (*dto.AchievementStatsResponse, error) {
	definitions, err := svc.sqlSvc.Achievements().GetActiveDefinitions()
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load achievements")
	}

	awards, err := svc.sqlSvc.Achievements().GetUserAchievements(userID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load earned achievements")
	}

	user, err := svc.sqlSvc.Users().GetUser(userID)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "User not found")
	}

	earnedByID := make(map[string]bool, len(awards))
	newCount := 0
	for i := range awards {
		earnedByID[awards[i].AchievementID] = true
		if awards[i].IsNew {
			newCount++
		}
	}

	stats := &dto.AchievementStatsResponse{
		Total:             len(definitions),
		NewCount:          newCount,
		HonorPoints:       user.HonorPoints,
		EarnedByDimension: map[string]int{},
		TotalByDimension:  map[string]int{},
	}
	for i := range definitions {
		def := &definitions[i]
		stats.TotalByDimension[def.Dimension]++
		if earnedByID[def.ID] {
			stats.Earned++
			stats.EarnedByDimension[def.Dimension]++
		}
	}
	if stats.Total > 0 {
		stats.CompletionRate = math.Round(10000*float64(stats.Earned)/float64(stats.Total)) / 100
	}

	return stats, nil
}

// MarkAchievementsViewed clears the new-badge flag, for all of the user's
// badges when ids is empty. View state only, progress and rewards untouched.
func (svc *AchievementService) MarkAchievementsViewed(userID string, ids []string) error {
	if err := svc.sqlSvc.Achievements().MarkViewed(userID, ids); err != nil {
		return shared.NewInternalError(err, "Failed to mark achievements viewed")
	}
	return nil
}

// ==================== ADMIN CATALOG ====================

func (svc *AchievementService) CreateDefinition(req dto.CreateAchievementRequest) (*model.AchievementDefinition, error) {
	def := &model.AchievementDefinition{
		Name:          req.Name,
		Description:   req.Description,
		Icon:          req.Icon,
		Dimension:     req.Dimension,
		Category:      req.Category,
		Level:         req.Level,
		ConditionType: model.ConditionType(req.ConditionType),
		Requirement:   req.Requirement,
		PointsReward:  req.PointsReward,
		HonorPoints:   req.HonorPoints,
		IsHidden:      req.IsHidden,
		IsActive:      req.IsActive,
		Order:         req.Order,
	}
	if req.RequirementDetail != "" {
		def.RequirementDetail = []byte(req.RequirementDetail)
	}
	if req.Privileges != "" {
		def.Privileges = []byte(req.Privileges)
	}

	if _, err := def.Detail(); err != nil {
		return nil, shared.NewBadRequestError(err, "Invalid requirement detail")
	}

	if err := svc.sqlSvc.Achievements().CreateDefinition(def); err != nil {
		return nil, shared.NewInternalError(err, "Failed to create achievement")
	}
	return def, nil
}

func (svc *AchievementService) UpdateDefinition(id string, req dto.UpdateAchievementRequest) (*model.AchievementDefinition, error) {
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Icon != nil {
		updates["icon"] = *req.Icon
	}
	if req.PointsReward != nil {
		updates["points_reward"] = *req.PointsReward
	}
	if req.HonorPoints != nil {
		updates["honor_points"] = *req.HonorPoints
	}
	if req.IsHidden != nil {
		updates["is_hidden"] = *req.IsHidden
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.Order != nil {
		updates["order"] = *req.Order
	}

	if len(updates) > 0 {
		if err := svc.sqlSvc.Achievements().UpdateDefinition(id, updates); err != nil {
			return nil, shared.NewInternalError(err, "Failed to update achievement")
		}
	}

	def, err := svc.sqlSvc.Achievements().GetDefinition(id)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "Achievement not found")
	}
	return def, nil
}
