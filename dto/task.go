package dto

import "time"

// ==================== TASK REQUEST DTOs ====================

type CreateTaskRequest struct {
	Title          string     `json:"title" validate:"required,min=1,max=120" example:"Make your bed"`
	Description    string     `json:"description,omitempty"`
	Category       string     `json:"category" validate:"required,min=1,max=40" example:"daily"`
	Points         int        `json:"points" validate:"gte=0" example:"10"`
	AssignedTo     *string    `json:"assigned_to,omitempty"`
	RecurrenceRule string     `json:"recurrence_rule" validate:"omitempty,oneof=daily weekly" example:"daily"`
	DueDate        *time.Time `json:"due_date,omitempty"`
}

func (r CreateTaskRequest) Validate() error {
	return GetValidator().Struct(r)
}

type UpdateTaskRequest struct {
	Title          *string    `json:"title,omitempty" validate:"omitempty,min=1,max=120"`
	Description    *string    `json:"description,omitempty"`
	Category       *string    `json:"category,omitempty" validate:"omitempty,min=1,max=40"`
	Points         *int       `json:"points,omitempty" validate:"omitempty,gte=0"`
	AssignedTo     *string    `json:"assigned_to,omitempty"`
	RecurrenceRule *string    `json:"recurrence_rule,omitempty" validate:"omitempty,oneof='' daily weekly"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	IsActive       *bool      `json:"is_active,omitempty"`
}

func (r UpdateTaskRequest) Validate() error {
	return GetValidator().Struct(r)
}

type SubmitCompletionRequest struct {
	CompletedAt *time.Time `json:"completed_at,omitempty"` // defaults to now
	Note        string     `json:"note,omitempty"`
}

type RejectCompletionRequest struct {
	Reason string `json:"reason,omitempty" example:"Bed still looks like a battlefield"`
}

// ==================== TASK RESPONSE DTOs ====================

type TaskResponse struct {
	ID             string     `json:"id"`
	FamilyID       string     `json:"family_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Category       string     `json:"category"`
	Points         int        `json:"points"`
	AssignedTo     *string    `json:"assigned_to,omitempty"`
	RecurrenceRule string     `json:"recurrence_rule,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	IsActive       bool       `json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
}

type TaskCollectionResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Total int            `json:"total"`
}

type CompletionResponse struct {
	ID          string     `json:"id"`
	TaskID      string     `json:"task_id"`
	TaskTitle   string     `json:"task_title,omitempty"`
	UserID      string     `json:"user_id"`
	Status      string     `json:"status"`
	CompletedAt time.Time  `json:"completed_at"`
	Note        string     `json:"note,omitempty"`
	IsResubmit  bool       `json:"is_resubmit"`
	ReviewedBy  *string    `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	ReviewNote  string     `json:"review_note,omitempty"`
}

type CompletionCollectionResponse struct {
	Completions []CompletionResponse `json:"completions"`
	Total       int                  `json:"total"`
}

// ApproveCompletionResponse is what the parent sees after approving: the completion,
// the points credited, and any achievements the approval unlocked (for banners).
type ApproveCompletionResponse struct {
	Completion      CompletionResponse    `json:"completion"`
	PointsCredited  int                   `json:"points_credited"`
	NewAchievements []AwardedAchievement  `json:"new_achievements"`
	Progress        map[string]int        `json:"achievement_progress,omitempty"`
}

// ==================== ENGINE BOUNDARY ====================

// TaskCompletionContext is the engine's view of one approved completion. It is built
// by the task workflow at approval time and handed to CheckAndAward exactly once.
type TaskCompletionContext struct {
	TaskCategory       string     `json:"task_category"`
	TaskPoints         int        `json:"task_points"`
	CompletedAt        time.Time  `json:"completed_at"`
	IsResubmit         bool       `json:"is_resubmit"`
	PreviousRejectedAt *time.Time `json:"previous_rejected_at,omitempty"`
	IsBirthday         bool       `json:"is_birthday"`
}
