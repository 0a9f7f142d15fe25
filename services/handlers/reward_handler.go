package handlers

import (
	"net/http"

	"github.com/famquest/famquest_api/dto"
	"github.com/famquest/famquest_api/shared"
	"github.com/gofiber/fiber/v2"
)

type RewardHandler struct {
	rewardSvc RewardServiceInterface
	authSvc   AuthServiceInterface
	mediaSvc  MediaServiceInterface
}

func NewRewardHandler(rewardSvc RewardServiceInterface, authSvc AuthServiceInterface, mediaSvc MediaServiceInterface) *RewardHandler {
	return &RewardHandler{
		rewardSvc: rewardSvc,
		authSvc:   authSvc,
		mediaSvc:  mediaSvc,
	}
}

// @Summary Get my avatar
// @Description The caller's level, XP and streak
// @Tags rewards
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Success 200 {object} shared.Response{data=dto.AvatarResponse}
// @Router /api/v1/avatar [get]
func (h *RewardHandler) GetAvatar(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.rewardSvc.GetAvatar(userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Create a reward
// @Tags rewards
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param createRewardRequest body dto.CreateRewardRequest true "Reward details"
// @Success 201 {object} shared.Response{data=dto.RewardResponse}
// @Router /api/v1/rewards [post]
func (h *RewardHandler) CreateReward(c *fiber.Ctx) error {
	var req dto.CreateRewardRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	familyID, err := requireFamily(h.authSvc, c)
	if err != nil {
		return err
	}
	creatorID := c.Locals(shared.UserID).(string)

	resp, err := h.rewardSvc.CreateReward(familyID, creatorID, req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "Reward created", resp)
}

// @Summary Update a reward
// @Tags rewards
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param rewardId path string true "Reward ID"
// @Param updateRewardRequest body dto.UpdateRewardRequest true "Fields to update"
// @Success 200 {object} shared.Response{data=dto.RewardResponse}
// @Router /api/v1/rewards/{rewardId} [put]
func (h *RewardHandler) UpdateReward(c *fiber.Ctx) error {
	var req dto.UpdateRewardRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	familyID, err := requireFamily(h.authSvc, c)
	if err != nil {
		return err
	}

	resp, err := h.rewardSvc.UpdateReward(familyID, c.Params("rewardId"), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Reward updated", resp)
}

// @Summary List family rewards
// @Tags rewards
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param active query bool false "Only active rewards"
// @Success 200 {object} shared.Response{data=dto.RewardCollectionResponse}
// @Router /api/v1/rewards [get]
func (h *RewardHandler) GetFamilyRewards(c *fiber.Ctx) error {
	familyID, err := requireFamily(h.authSvc, c)
	if err != nil {
		return err
	}

	resp, err := h.rewardSvc.GetFamilyRewards(familyID, c.QueryBool("active", true))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Redeem a reward
// @Description Spend XP on a reward, creating a redemption for parent fulfilment
// @Tags rewards
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param rewardId path string true "Reward ID"
// @Success 201 {object} shared.Response{data=dto.RedemptionResponse}
// @Router /api/v1/rewards/{rewardId}/redeem [post]
func (h *RewardHandler) RedeemReward(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.rewardSvc.RedeemReward(userID, c.Params("rewardId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "Reward redeemed", resp)
}

// @Summary List my redemptions
// @Tags rewards
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Success 200 {object} shared.Response{data=dto.RedemptionCollectionResponse}
// @Router /api/v1/redemptions [get]
func (h *RewardHandler) GetUserRedemptions(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.rewardSvc.GetUserRedemptions(userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary List pending redemptions
// @Description Redemptions awaiting fulfilment across the caller's family
// @Tags rewards
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Success 200 {object} shared.Response{data=dto.RedemptionCollectionResponse}
// @Router /api/v1/redemptions/pending [get]
func (h *RewardHandler) GetFamilyPendingRedemptions(c *fiber.Ctx) error {
	familyID, err := requireFamily(h.authSvc, c)
	if err != nil {
		return err
	}

	resp, err := h.rewardSvc.GetFamilyPendingRedemptions(familyID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Fulfil a redemption
// @Tags rewards
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param redemptionId path string true "Redemption ID"
// @Success 200 {object} shared.Response{data=dto.RedemptionResponse}
// @Router /api/v1/redemptions/{redemptionId}/fulfill [post]
func (h *RewardHandler) FulfillRedemption(c *fiber.Ctx) error {
	return h.reviewRedemption(c, true)
}

// @Summary Cancel a redemption
// @Description Cancel a pending redemption, refunding XP and restoring stock
// @Tags rewards
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param redemptionId path string true "Redemption ID"
// @Success 200 {object} shared.Response{data=dto.RedemptionResponse}
// @Router /api/v1/redemptions/{redemptionId}/cancel [post]
func (h *RewardHandler) CancelRedemption(c *fiber.Ctx) error {
	return h.reviewRedemption(c, false)
}

func (h *RewardHandler) reviewRedemption(c *fiber.Ctx, fulfill bool) error {
	familyID, err := requireFamily(h.authSvc, c)
	if err != nil {
		return err
	}
	reviewerID := c.Locals(shared.UserID).(string)

	resp, err := h.rewardSvc.ReviewRedemption(familyID, c.Params("redemptionId"), reviewerID, fulfill)
	if err != nil {
		return err
	}

	message := "Redemption fulfilled"
	if !fulfill {
		message = "Redemption cancelled"
	}
	return shared.ResponseJSON(c, http.StatusOK, message, resp)
}

// @Summary Family leaderboard
// @Description Family members ranked by total XP, cached briefly
// @Tags rewards
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param limit query int false "Maximum entries"
// @Success 200 {object} shared.Response{data=dto.LeaderboardResponse}
// @Router /api/v1/leaderboard [get]
func (h *RewardHandler) GetFamilyLeaderboard(c *fiber.Ctx) error {
	familyID, err := requireFamily(h.authSvc, c)
	if err != nil {
		return err
	}

	resp, err := h.rewardSvc.GetFamilyLeaderboard(familyID, c.QueryInt("limit", 10))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Upload a reward image
// @Tags rewards
// @Accept multipart/form-data
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param rewardId path string true "Reward ID"
// @Param image formData file true "Reward image"
// @Success 200 {object} shared.Response{data=dto.MediaUploadResponse}
// @Router /api/v1/rewards/{rewardId}/image [post]
func (h *RewardHandler) UploadRewardImage(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return shared.NewBadRequestError(err, "Image file is required")
	}

	familyID, err := requireFamily(h.authSvc, c)
	if err != nil {
		return err
	}

	resp, err := h.mediaSvc.UploadRewardImage(familyID, c.Params("rewardId"), file)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Reward image uploaded", resp)
}
