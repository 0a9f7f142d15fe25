package handlers

import (
	"net/http"

	"github.com/famquest/famquest_api/dto"
	"github.com/famquest/famquest_api/shared"
	"github.com/gofiber/fiber/v2"
)

type FamilyHandler struct {
	familySvc FamilyServiceInterface
	authSvc   AuthServiceInterface
}

func NewFamilyHandler(familySvc FamilyServiceInterface, authSvc AuthServiceInterface) *FamilyHandler {
	return &FamilyHandler{
		familySvc: familySvc,
		authSvc:   authSvc,
	}
}

// @Summary Create a family
// @Description Create a family owned by the caller and join it
// @Tags family
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param createFamilyRequest body dto.CreateFamilyRequest true "Family details"
// @Success 201 {object} shared.Response{data=dto.FamilyResponse}
// @Router /api/v1/family [post]
func (h *FamilyHandler) CreateFamily(c *fiber.Ctx) error {
	var req dto.CreateFamilyRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	ownerID := c.Locals(shared.UserID).(string)

	resp, err := h.familySvc.CreateFamily(ownerID, req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "Family created", resp)
}

// @Summary Join a family
// @Description Join an existing family using its invite code
// @Tags family
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param joinFamilyRequest body dto.JoinFamilyRequest true "Invite code"
// @Success 200 {object} shared.Response{data=dto.FamilyResponse}
// @Router /api/v1/family/join [post]
func (h *FamilyHandler) JoinFamily(c *fiber.Ctx) error {
	var req dto.JoinFamilyRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	userID := c.Locals(shared.UserID).(string)

	resp, err := h.familySvc.JoinFamily(userID, req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Joined family", resp)
}

// @Summary Get family details
// @Description The caller's family with its member roster
// @Tags family
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Success 200 {object} shared.Response{data=dto.FamilyDetailResponse}
// @Router /api/v1/family [get]
func (h *FamilyHandler) GetFamilyDetail(c *fiber.Ctx) error {
	familyID, err := requireFamily(h.authSvc, c)
	if err != nil {
		return err
	}
	role, _ := c.Locals(shared.UserRole).(string)

	resp, err := h.familySvc.GetFamilyDetail(familyID, role)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Rotate the invite code
// @Description Replace the family invite code, invalidating the old one
// @Tags family
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Success 200 {object} shared.Response{data=dto.FamilyResponse}
// @Router /api/v1/family/invite-code [post]
func (h *FamilyHandler) RegenerateInviteCode(c *fiber.Ctx) error {
	familyID, err := requireFamily(h.authSvc, c)
	if err != nil {
		return err
	}
	callerID := c.Locals(shared.UserID).(string)

	resp, err := h.familySvc.RegenerateInviteCode(familyID, callerID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Invite code rotated", resp)
}
