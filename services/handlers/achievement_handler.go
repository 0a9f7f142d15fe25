package handlers

import (
	"net/http"

	"github.com/famquest/famquest_api/dto"
	"github.com/famquest/famquest_api/shared"
	"github.com/gofiber/fiber/v2"
)

type AchievementHandler struct {
	achievementSvc AchievementServiceInterface
	mediaSvc       MediaServiceInterface
}

func NewAchievementHandler(achievementSvc AchievementServiceInterface, mediaSvc MediaServiceInterface) *AchievementHandler {
	return &AchievementHandler{
		achievementSvc: achievementSvc,
		mediaSvc:       mediaSvc,
	}
}

// @Summary List my achievements
// @Description All active achievements with the caller's progress, hidden ones masked until earned
// @Tags achievements
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Success 200 {object} shared.Response{data=dto.AchievementListResponse}
// @Router /api/v1/achievements [get]
func (h *AchievementHandler) GetUserAchievements(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.achievementSvc.GetUserAchievements(userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Achievement statistics
// @Tags achievements
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Success 200 {object} shared.Response{data=dto.AchievementStatsResponse}
// @Router /api/v1/achievements/stats [get]
func (h *AchievementHandler) GetAchievementStats(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.achievementSvc.GetAchievementStats(userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Mark achievements as viewed
// @Description Clear the new-achievement badge, all unviewed ones when no IDs are given
// @Tags achievements
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param markViewedRequest body dto.MarkViewedRequest true "Achievement IDs"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/achievements/viewed [post]
func (h *AchievementHandler) MarkViewed(c *fiber.Ctx) error {
	var req dto.MarkViewedRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	userID := c.Locals(shared.UserID).(string)

	if err := h.achievementSvc.MarkAchievementsViewed(userID, req.AchievementIDs); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Achievements marked as viewed", nil)
}

// ==================== ADMIN ====================

// @Summary Create an achievement definition
// @Tags admin
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Admin Bearer Token" default(Bearer <admin_token>)
// @Param createRequest body dto.CreateAchievementRequest true "Achievement definition"
// @Success 201 {object} shared.Response{data=model.AchievementDefinition}
// @Router /api/v1/admin/achievements [post]
func (h *AchievementHandler) CreateDefinition(c *fiber.Ctx) error {
	var req dto.CreateAchievementRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.achievementSvc.CreateDefinition(req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "Achievement created", resp)
}

// @Summary Update an achievement definition
// @Tags admin
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Admin Bearer Token" default(Bearer <admin_token>)
// @Param achievementId path string true "Achievement ID"
// @Param updateRequest body dto.UpdateAchievementRequest true "Fields to update"
// @Success 200 {object} shared.Response{data=model.AchievementDefinition}
// @Router /api/v1/admin/achievements/{achievementId} [put]
func (h *AchievementHandler) UpdateDefinition(c *fiber.Ctx) error {
	var req dto.UpdateAchievementRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.achievementSvc.UpdateDefinition(c.Params("achievementId"), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Achievement updated", resp)
}

// @Summary Upload a badge icon
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Admin Bearer Token" default(Bearer <admin_token>)
// @Param achievementId path string true "Achievement ID"
// @Param icon formData file true "Badge icon image"
// @Success 200 {object} shared.Response{data=dto.MediaUploadResponse}
// @Router /api/v1/admin/achievements/{achievementId}/icon [post]
func (h *AchievementHandler) UploadBadgeIcon(c *fiber.Ctx) error {
	file, err := c.FormFile("icon")
	if err != nil {
		return shared.NewBadRequestError(err, "Icon file is required")
	}

	resp, err := h.mediaSvc.UploadBadgeIcon(c.Params("achievementId"), file)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Badge icon uploaded", resp)
}
