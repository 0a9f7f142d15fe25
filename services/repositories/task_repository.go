package repositories

import (
	"time"

	"github.com/famquest/famquest_api/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskRepository handles task and completion database operations
type TaskRepository struct {
	BaseRepository
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func (ds *TaskRepository) CreateTask(task *model.Task) error {
	now := time.Now()
	if task.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		task.ID = id.String()
	}
	task.CreatedAt = now
	task.UpdatedAt = now
	return ds.db.Create(task).Error
}

func (ds *TaskRepository) GetTask(taskID string) (*model.Task, error) {
	var task model.Task
	if err := ds.db.Where("id = ?", taskID).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (ds *TaskRepository) GetFamilyTasks(familyID string, activeOnly bool) ([]model.Task, error) {
	var tasks []model.Task
	query := ds.db.Where("family_id = ?", familyID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("created_at DESC").Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (ds *TaskRepository) GetAssignedTasks(userID string) ([]model.Task, error) {
	var tasks []model.Task
	err := ds.db.Where("(assigned_to = ? OR assigned_to IS NULL) AND is_active = ?", userID, true).
		Order("due_date ASC NULLS LAST").Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (ds *TaskRepository) UpdateTask(taskID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	return ds.db.Model(&model.Task{}).Where("id = ?", taskID).Updates(updates).Error
}

func (ds *TaskRepository) DeactivateTask(taskID string) error {
	return ds.UpdateTask(taskID, map[string]interface{}{"is_active": false})
}

// GetDueRecurringTasks returns active recurring tasks whose due date has passed,
// for the scheduler to advance.
func (ds *TaskRepository) GetDueRecurringTasks(before time.Time) ([]model.Task, error) {
	var tasks []model.Task
	err := ds.db.Where("recurrence_rule != '' AND is_active = ? AND due_date IS NOT NULL AND due_date < ?", true, before).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (ds *TaskRepository) AdvanceDueDate(taskID string, next time.Time) error {
	return ds.db.Model(&model.Task{}).Where("id = ?", taskID).Updates(map[string]interface{}{
		"due_date":   next,
		"updated_at": time.Now(),
	}).Error
}

// ==================== COMPLETIONS ====================

func (ds *TaskRepository) CreateCompletion(completion *model.TaskCompletion) error {
	now := time.Now()
	if completion.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		completion.ID = id.String()
	}
	completion.CreatedAt = now
	completion.UpdatedAt = now
	return ds.db.Create(completion).Error
}

func (ds *TaskRepository) GetCompletion(completionID string) (*model.TaskCompletion, error) {
	var completion model.TaskCompletion
	if err := ds.db.Preload("Task").Where("id = ?", completionID).First(&completion).Error; err != nil {
		return nil, err
	}
	return &completion, nil
}

func (ds *TaskRepository) GetPendingCompletion(taskID, userID string) (*model.TaskCompletion, error) {
	var completion model.TaskCompletion
	err := ds.db.Where("task_id = ? AND user_id = ? AND status = ?", taskID, userID, model.CompletionStatusPending).
		First(&completion).Error
	if err != nil {
		return nil, err
	}
	return &completion, nil
}

// GetLastRejection returns the most recent rejected completion of the task by the
// user, used to flag resubmissions.
func (ds *TaskRepository) GetLastRejection(taskID, userID string) (*model.TaskCompletion, error) {
	var completion model.TaskCompletion
	err := ds.db.Where("task_id = ? AND user_id = ? AND status = ?", taskID, userID, model.CompletionStatusRejected).
		Order("reviewed_at DESC").First(&completion).Error
	if err != nil {
		return nil, err
	}
	return &completion, nil
}

func (ds *TaskRepository) GetUserCompletions(userID string, status string, page, limit int) ([]model.TaskCompletion, int64, error) {
	var completions []model.TaskCompletion
	var total int64

	query := ds.db.Model(&model.TaskCompletion{}).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	query.Count(&total)

	offset := (page - 1) * limit
	err := query.Preload("Task").Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&completions).Error
	if err != nil {
		return nil, 0, err
	}

	return completions, total, nil
}

// GetFamilyPendingCompletions lists submissions awaiting review across a family,
// joined through the task so parents only see their own family's queue.
func (ds *TaskRepository) GetFamilyPendingCompletions(familyID string) ([]model.TaskCompletion, error) {
	var completions []model.TaskCompletion
	err := ds.db.Preload("Task").
		Joins("JOIN tasks ON tasks.id = task_completions.task_id").
		Where("tasks.family_id = ? AND task_completions.status = ?", familyID, model.CompletionStatusPending).
		Order("task_completions.created_at ASC").
		Find(&completions).Error
	if err != nil {
		return nil, err
	}
	return completions, nil
}

// ReviewCompletion moves a pending completion to approved or rejected. The status
// guard in the WHERE clause makes concurrent reviews settle on one winner: the
// second review matches zero rows.
func (ds *TaskRepository) ReviewCompletion(completionID, reviewerID, status, note string) (bool, error) {
	now := time.Now()
	res := ds.db.Model(&model.TaskCompletion{}).
		Where("id = ? AND status = ?", completionID, model.CompletionStatusPending).
		Updates(map[string]interface{}{
			"status":      status,
			"reviewed_by": reviewerID,
			"reviewed_at": &now,
			"review_note": note,
			"updated_at":  now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
