package handlers

import (
	"net/http"

	"github.com/famquest/famquest_api/dto"
	"github.com/famquest/famquest_api/shared"
	"github.com/gofiber/fiber/v2"
)

type TaskHandler struct {
	taskSvc TaskServiceInterface
	authSvc AuthServiceInterface
}

func NewTaskHandler(taskSvc TaskServiceInterface, authSvc AuthServiceInterface) *TaskHandler {
	return &TaskHandler{
		taskSvc: taskSvc,
		authSvc: authSvc,
	}
}

// @Summary Create a task
// @Description Create a new chore in the caller's family
// @Tags tasks
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param createTaskRequest body dto.CreateTaskRequest true "Task details"
// @Success 201 {object} shared.Response{data=dto.TaskResponse}
// @Router /api/v1/tasks [post]
func (h *TaskHandler) CreateTask(c *fiber.Ctx) error {
	var req dto.CreateTaskRequest
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

	resp, err := h.taskSvc.CreateTask(familyID, creatorID, req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "Task created", resp)
}

// @Summary Update a task
// @Tags tasks
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param taskId path string true "Task ID"
// @Param updateTaskRequest body dto.UpdateTaskRequest true "Fields to update"
// @Success 200 {object} shared.Response{data=dto.TaskResponse}
// @Router /api/v1/tasks/{taskId} [put]
func (h *TaskHandler) UpdateTask(c *fiber.Ctx) error {
	var req dto.UpdateTaskRequest
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

	resp, err := h.taskSvc.UpdateTask(familyID, c.Params("taskId"), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Task updated", resp)
}

// @Summary Delete a task
// @Description Deactivate a task so it no longer appears or accepts submissions
// @Tags tasks
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param taskId path string true "Task ID"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/tasks/{taskId} [delete]
func (h *TaskHandler) DeleteTask(c *fiber.Ctx) error {
	familyID, err := requireFamily(h.authSvc, c)
	if err != nil {
		return err
	}

	if err := h.taskSvc.DeleteTask(familyID, c.Params("taskId")); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Task deleted", nil)
}

// @Summary List family tasks
// @Tags tasks
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param active query bool false "Only active tasks"
// @Success 200 {object} shared.Response{data=dto.TaskCollectionResponse}
// @Router /api/v1/tasks [get]
func (h *TaskHandler) GetFamilyTasks(c *fiber.Ctx) error {
	familyID, err := requireFamily(h.authSvc, c)
	if err != nil {
		return err
	}

	resp, err := h.taskSvc.GetFamilyTasks(familyID, c.QueryBool("active", true))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary List my tasks
// @Description Tasks assigned to the caller plus unassigned family tasks
// @Tags tasks
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Success 200 {object} shared.Response{data=dto.TaskCollectionResponse}
// @Router /api/v1/tasks/mine [get]
func (h *TaskHandler) GetAssignedTasks(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.taskSvc.GetAssignedTasks(userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Submit a task completion
// @Description Claim a task as done, creating a submission for parent review
// @Tags tasks
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param taskId path string true "Task ID"
// @Param submitRequest body dto.SubmitCompletionRequest true "Completion details"
// @Success 201 {object} shared.Response{data=dto.CompletionResponse}
// @Router /api/v1/tasks/{taskId}/submit [post]
func (h *TaskHandler) SubmitCompletion(c *fiber.Ctx) error {
	var req dto.SubmitCompletionRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	familyID, err := requireFamily(h.authSvc, c)
	if err != nil {
		return err
	}
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.taskSvc.SubmitCompletion(familyID, userID, c.Params("taskId"), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "Submission recorded", resp)
}

// @Summary Approve a submission
// @Description Approve a pending submission, credit points and evaluate achievements
// @Tags tasks
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param completionId path string true "Completion ID"
// @Success 200 {object} shared.Response{data=dto.ApproveCompletionResponse}
// @Router /api/v1/completions/{completionId}/approve [post]
func (h *TaskHandler) ApproveCompletion(c *fiber.Ctx) error {
	familyID, err := requireFamily(h.authSvc, c)
	if err != nil {
		return err
	}
	reviewerID := c.Locals(shared.UserID).(string)

	resp, err := h.taskSvc.ApproveCompletion(familyID, reviewerID, c.Params("completionId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Submission approved", resp)
}

// @Summary Reject a submission
// @Tags tasks
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param completionId path string true "Completion ID"
// @Param rejectRequest body dto.RejectCompletionRequest true "Rejection reason"
// @Success 200 {object} shared.Response{data=dto.CompletionResponse}
// @Router /api/v1/completions/{completionId}/reject [post]
func (h *TaskHandler) RejectCompletion(c *fiber.Ctx) error {
	var req dto.RejectCompletionRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	familyID, err := requireFamily(h.authSvc, c)
	if err != nil {
		return err
	}
	reviewerID := c.Locals(shared.UserID).(string)

	resp, err := h.taskSvc.RejectCompletion(familyID, reviewerID, c.Params("completionId"), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Submission rejected", resp)
}

// @Summary List my submissions
// @Tags tasks
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param status query string false "Filter by status" Enums(pending, approved, rejected)
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} shared.Response{data=dto.CompletionCollectionResponse}
// @Router /api/v1/completions [get]
func (h *TaskHandler) GetUserCompletions(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.taskSvc.GetUserCompletions(userID, c.Query("status"), c.QueryInt("page", 1), c.QueryInt("limit", 20))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary List pending submissions
// @Description Submissions awaiting review across the caller's family
// @Tags tasks
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Success 200 {object} shared.Response{data=dto.CompletionCollectionResponse}
// @Router /api/v1/completions/pending [get]
func (h *TaskHandler) GetPendingReviews(c *fiber.Ctx) error {
	familyID, err := requireFamily(h.authSvc, c)
	if err != nil {
		return err
	}

	resp, err := h.taskSvc.GetPendingReviews(familyID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}
