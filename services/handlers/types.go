package handlers

import (
	"mime/multipart"

	"github.com/famquest/famquest_api/dto"
	"github.com/famquest/famquest_api/model"
	"github.com/famquest/famquest_api/shared"
	"github.com/gofiber/fiber/v2"
)

type AuthServiceInterface interface {
	Register(req dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(req dto.LoginRequest) (*dto.LoginResponse, error)
	RefreshToken(req dto.RefreshTokenRequest) (*dto.LoginResponse, error)
	GetProfile(userID string) (*dto.UserInfo, error)
	RequiredAuth() fiber.Handler
	RequireRole(role string) fiber.Handler
}

type TaskServiceInterface interface {
	CreateTask(familyID, creatorID string, req dto.CreateTaskRequest) (*dto.TaskResponse, error)
	UpdateTask(familyID, taskID string, req dto.UpdateTaskRequest) (*dto.TaskResponse, error)
	DeleteTask(familyID, taskID string) error
	GetFamilyTasks(familyID string, activeOnly bool) (*dto.TaskCollectionResponse, error)
	GetAssignedTasks(userID string) (*dto.TaskCollectionResponse, error)
	SubmitCompletion(familyID, userID, taskID string, req dto.SubmitCompletionRequest) (*dto.CompletionResponse, error)
	ApproveCompletion(familyID, reviewerID, completionID string) (*dto.ApproveCompletionResponse, error)
	RejectCompletion(familyID, reviewerID, completionID string, req dto.RejectCompletionRequest) (*dto.CompletionResponse, error)
	GetUserCompletions(userID, status string, page, limit int) (*dto.CompletionCollectionResponse, error)
	GetPendingReviews(familyID string) (*dto.CompletionCollectionResponse, error)
}

type AchievementServiceInterface interface {
	GetUserAchievements(userID string) (*dto.AchievementListResponse, error)
	GetAchievementStats(userID string) (*dto.AchievementStatsResponse, error)
	MarkAchievementsViewed(userID string, ids []string) error
	CreateDefinition(req dto.CreateAchievementRequest) (*model.AchievementDefinition, error)
	UpdateDefinition(id string, req dto.UpdateAchievementRequest) (*model.AchievementDefinition, error)
}

type RewardServiceInterface interface {
	GetAvatar(userID string) (*dto.AvatarResponse, error)
	CreateReward(familyID, creatorID string, req dto.CreateRewardRequest) (*dto.RewardResponse, error)
	UpdateReward(familyID, rewardID string, req dto.UpdateRewardRequest) (*dto.RewardResponse, error)
	GetFamilyRewards(familyID string, activeOnly bool) (*dto.RewardCollectionResponse, error)
	RedeemReward(userID, rewardID string) (*dto.RedemptionResponse, error)
	GetUserRedemptions(userID string) (*dto.RedemptionCollectionResponse, error)
	GetFamilyPendingRedemptions(familyID string) (*dto.RedemptionCollectionResponse, error)
	ReviewRedemption(familyID, redemptionID, reviewerID string, fulfill bool) (*dto.RedemptionResponse, error)
	GetFamilyLeaderboard(familyID string, limit int) (*dto.LeaderboardResponse, error)
}

type FamilyServiceInterface interface {
	CreateFamily(ownerID string, req dto.CreateFamilyRequest) (*dto.FamilyResponse, error)
	JoinFamily(userID string, req dto.JoinFamilyRequest) (*dto.FamilyResponse, error)
	GetFamilyDetail(familyID, viewerRole string) (*dto.FamilyDetailResponse, error)
	RegenerateInviteCode(familyID, callerID string) (*dto.FamilyResponse, error)
}

type MediaServiceInterface interface {
	UploadBadgeIcon(achievementID string, file *multipart.FileHeader) (*dto.MediaUploadResponse, error)
	UploadRewardImage(familyID, rewardID string, file *multipart.FileHeader) (*dto.MediaUploadResponse, error)
}

// requireFamily resolves the caller's family from their profile. Most routes
// are family-scoped, users outside a family get a 403 here.
func requireFamily(authSvc AuthServiceInterface, c *fiber.Ctx) (string, error) {
	userID := c.Locals(shared.UserID).(string)
	profile, err := authSvc.GetProfile(userID)
	if err != nil {
		return "", err
	}
	if profile.FamilyID == nil {
		return "", shared.NewForbiddenError(nil, "You must belong to a family first")
	}
	return *profile.FamilyID, nil
}
