package services

import (
	"errors"
	"time"

	"github.com/famquest/famquest_api/dto"
	"github.com/famquest/famquest_api/model"
	"github.com/famquest/famquest_api/shared"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type TaskService struct {
	context.DefaultService

	sqlSvc         *PostgresService
	achievementSvc *AchievementService
	rewardSvc      *RewardService
}

const TASK_SVC = "task_svc"

func (svc TaskService) Id() string {
	return TASK_SVC
}

func (svc *TaskService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *TaskService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.achievementSvc = svc.Service(ACHIEVEMENT_SVC).(*AchievementService)
	svc.rewardSvc = svc.Service(REWARD_SVC).(*RewardService)
	return nil
}

// ==================== TASK CRUD ====================

func (svc *TaskService) CreateTask(familyID, creatorID string, req dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	task := &model.Task{
		FamilyID:       familyID,
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		Points:         req.Points,
		AssignedTo:     req.AssignedTo,
		RecurrenceRule: req.RecurrenceRule,
		DueDate:        req.DueDate,
		IsActive:       true,
		CreatedBy:      creatorID,
	}
	if err := svc.sqlSvc.Tasks().CreateTask(task); err != nil {
		return nil, shared.NewInternalError(err, "Failed to create task")
	}
	resp := toTaskResponse(task)
	return &resp, nil
}

func (svc *TaskService) UpdateTask(familyID, taskID string, req dto.UpdateTaskRequest) (*dto.TaskResponse, error) {
	task, err := svc.getFamilyTask(familyID, taskID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Points != nil {
		updates["points"] = *req.Points
	}
	if req.AssignedTo != nil {
		updates["assigned_to"] = *req.AssignedTo
	}
	if req.RecurrenceRule != nil {
		updates["recurrence_rule"] = *req.RecurrenceRule
	}
	if req.DueDate != nil {
		updates["due_date"] = *req.DueDate
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := svc.sqlSvc.Tasks().UpdateTask(task.ID, updates); err != nil {
			return nil, shared.NewInternalError(err, "Failed to update task")
		}
	}

	task, err = svc.sqlSvc.Tasks().GetTask(taskID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to reload task")
	}
	resp := toTaskResponse(task)
	return &resp, nil
}

func (svc *TaskService) DeleteTask(familyID, taskID string) error {
	task, err := svc.getFamilyTask(familyID, taskID)
	if err != nil {
		return err
	}
	if err := svc.sqlSvc.Tasks().DeactivateTask(task.ID); err != nil {
		return shared.NewInternalError(err, "Failed to delete task")
	}
	return nil
}

func (svc *TaskService) GetFamilyTasks(familyID string, activeOnly bool) (*dto.TaskCollectionResponse, error) {
	tasks, err := svc.sqlSvc.Tasks().GetFamilyTasks(familyID, activeOnly)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load tasks")
	}

	items := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		items = append(items, toTaskResponse(&tasks[i]))
	}
	return &dto.TaskCollectionResponse{Tasks: items, Total: len(items)}, nil
}

// GetAssignedTasks lists active tasks a child can pick up, both tasks assigned
// to them directly and unassigned family tasks.
func (svc *TaskService) GetAssignedTasks(userID string) (*dto.TaskCollectionResponse, error) {
	tasks, err := svc.sqlSvc.Tasks().GetAssignedTasks(userID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load tasks")
	}

	items := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		items = append(items, toTaskResponse(&tasks[i]))
	}
	return &dto.TaskCollectionResponse{Tasks: items, Total: len(items)}, nil
}

func (svc *TaskService) getFamilyTask(familyID, taskID string) (*model.Task, error) {
	task, err := svc.sqlSvc.Tasks().GetTask(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(err, "Task not found")
		}
		return nil, shared.NewInternalError(err, "Failed to load task")
	}
	if task.FamilyID != familyID {
		return nil, shared.NewForbiddenError(nil, "Task belongs to another family")
	}
	return task, nil
}

// ==================== SUBMISSION WORKFLOW ====================

// SubmitCompletion records a child's claim that a task is done. If their last
// completion of this task was rejected, the new submission carries the
// rejection timestamp so a quick turnaround can count toward resubmit_quick.
func (svc *TaskService) SubmitCompletion(familyID, userID, taskID string, req dto.SubmitCompletionRequest) (*dto.CompletionResponse, error) {
	task, err := svc.getFamilyTask(familyID, taskID)
	if err != nil {
		return nil, err
	}
	if !task.IsActive {
		return nil, shared.NewBadRequestError(nil, "Task is no longer active")
	}
	if task.AssignedTo != nil && *task.AssignedTo != userID {
		return nil, shared.NewForbiddenError(nil, "Task is assigned to someone else")
	}

	if _, err := svc.sqlSvc.Tasks().GetPendingCompletion(taskID, userID); err == nil {
		return nil, shared.NewConflictError(nil, "A submission for this task is already awaiting review")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.NewInternalError(err, "Failed to check pending submissions")
	}

	completedAt := time.Now()
	if req.CompletedAt != nil {
		completedAt = *req.CompletedAt
	}

	completion := &model.TaskCompletion{
		TaskID:      taskID,
		UserID:      userID,
		Status:      model.CompletionStatusPending,
		CompletedAt: completedAt,
		Note:        req.Note,
	}

	if last, err := svc.sqlSvc.Tasks().GetLastRejection(taskID, userID); err == nil {
		completion.IsResubmit = true
		completion.PreviousRejectedAt = last.ReviewedAt
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.NewInternalError(err, "Failed to check rejection history")
	}

	if err := svc.sqlSvc.Tasks().CreateCompletion(completion); err != nil {
		return nil, shared.NewInternalError(err, "Failed to record submission")
	}

	resp := toCompletionResponse(completion, task.Title)
	return &resp, nil
}

// ApproveCompletion settles a pending submission, credits the task's points to
// the child's wallet, and then hands the event to the achievement engine. The
// engine call is strictly best-effort: the approval has already committed and
// is never rolled back or blocked by it.
func (svc *TaskService) ApproveCompletion(familyID, reviewerID, completionID string) (*dto.ApproveCompletionResponse, error) {
	completion, err := svc.sqlSvc.Tasks().GetCompletion(completionID)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "Submission not found")
	}
	if completion.Task.FamilyID != familyID {
		return nil, shared.NewForbiddenError(nil, "Submission belongs to another family")
	}

	settled, err := svc.sqlSvc.Tasks().ReviewCompletion(completionID, reviewerID, model.CompletionStatusApproved, "")
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to approve submission")
	}
	if !settled {
		return nil, shared.NewConflictError(nil, "Submission already reviewed")
	}

	if err := svc.rewardSvc.CreditXP(completion.UserID, completion.Task.Points); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"completion_id": completionID,
			"user_id":       completion.UserID,
		}).Error("Failed to credit task points")
	}
	svc.rewardSvc.InvalidateLeaderboard(familyID)

	event := svc.buildCompletionContext(completion)
	engineResult := svc.achievementSvc.CheckAndAward(completion.UserID, &event)

	completion, err = svc.sqlSvc.Tasks().GetCompletion(completionID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to reload submission")
	}

	return &dto.ApproveCompletionResponse{
		Completion:      toCompletionResponse(completion, completion.Task.Title),
		PointsCredited:  completion.Task.Points,
		NewAchievements: engineResult.NewAchievements,
		Progress:        engineResult.UpdatedProgress,
	}, nil
}

func (svc *TaskService) RejectCompletion(familyID, reviewerID, completionID string, req dto.RejectCompletionRequest) (*dto.CompletionResponse, error) {
	completion, err := svc.sqlSvc.Tasks().GetCompletion(completionID)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "Submission not found")
	}
	if completion.Task.FamilyID != familyID {
		return nil, shared.NewForbiddenError(nil, "Submission belongs to another family")
	}

	settled, err := svc.sqlSvc.Tasks().ReviewCompletion(completionID, reviewerID, model.CompletionStatusRejected, req.Reason)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to reject submission")
	}
	if !settled {
		return nil, shared.NewConflictError(nil, "Submission already reviewed")
	}

	completion, err = svc.sqlSvc.Tasks().GetCompletion(completionID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to reload submission")
	}

	resp := toCompletionResponse(completion, completion.Task.Title)
	return &resp, nil
}

// buildCompletionContext shapes an approved completion into the engine's view
// of the event, resolving the birthday flag from the child's profile.
func (svc *TaskService) buildCompletionContext(completion *model.TaskCompletion) dto.TaskCompletionContext {
	event := dto.TaskCompletionContext{
		TaskCategory:       completion.Task.Category,
		TaskPoints:         completion.Task.Points,
		CompletedAt:        completion.CompletedAt,
		IsResubmit:         completion.IsResubmit,
		PreviousRejectedAt: completion.PreviousRejectedAt,
	}

	user, err := svc.sqlSvc.Users().GetUser(completion.UserID)
	if err != nil {
		log.WithError(err).WithField("user_id", completion.UserID).Warn("Failed to resolve birthday flag")
		return event
	}
	event.IsBirthday = user.IsBirthday(completion.CompletedAt)
	return event
}

// ==================== QUERIES ====================

func (svc *TaskService) GetUserCompletions(userID, status string, page, limit int) (*dto.CompletionCollectionResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	completions, total, err := svc.sqlSvc.Tasks().GetUserCompletions(userID, status, page, limit)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load submissions")
	}

	items := make([]dto.CompletionResponse, 0, len(completions))
	for i := range completions {
		items = append(items, toCompletionResponse(&completions[i], completions[i].Task.Title))
	}
	return &dto.CompletionCollectionResponse{Completions: items, Total: int(total)}, nil
}

func (svc *TaskService) GetPendingReviews(familyID string) (*dto.CompletionCollectionResponse, error) {
	completions, err := svc.sqlSvc.Tasks().GetFamilyPendingCompletions(familyID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load pending submissions")
	}

	items := make([]dto.CompletionResponse, 0, len(completions))
	for i := range completions {
		items = append(items, toCompletionResponse(&completions[i], completions[i].Task.Title))
	}
	return &dto.CompletionCollectionResponse{Completions: items, Total: len(items)}, nil
}

// ==================== MAPPING ====================

func toTaskResponse(task *model.Task) dto.TaskResponse {
	return dto.TaskResponse{
		ID:             task.ID,
		FamilyID:       task.FamilyID,
		Title:          task.Title,
		Description:    task.Description,
		Category:       task.Category,
		Points:         task.Points,
		AssignedTo:     task.AssignedTo,
		RecurrenceRule: task.RecurrenceRule,
		DueDate:        task.DueDate,
		IsActive:       task.IsActive,
		CreatedAt:      task.CreatedAt,
	}
}

func toCompletionResponse(completion *model.TaskCompletion, taskTitle string) dto.CompletionResponse {
	return dto.CompletionResponse{
		ID:          completion.ID,
		TaskID:      completion.TaskID,
		TaskTitle:   taskTitle,
		UserID:      completion.UserID,
		Status:      completion.Status,
		CompletedAt: completion.CompletedAt,
		Note:        completion.Note,
		IsResubmit:  completion.IsResubmit,
		ReviewedBy:  completion.ReviewedBy,
		ReviewedAt:  completion.ReviewedAt,
		ReviewNote:  completion.ReviewNote,
	}
}
