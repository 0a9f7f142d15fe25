package model

import "time"

const (
	CompletionStatusPending  = "pending"
	CompletionStatusApproved = "approved"
	CompletionStatusRejected = "rejected"

	RecurrenceNone   = ""
	RecurrenceDaily  = "daily"
	RecurrenceWeekly = "weekly"
)

// Task is a chore definition within a family. Recurring tasks keep their row and
// have their due date advanced by the scheduler after each cycle.
type Task struct {
	ID             string `gorm:"primaryKey"`
	FamilyID       string `gorm:"index;not null"`
	Title          string `gorm:"not null"`
	Description    string `gorm:"type:text"`
	Category       string `gorm:"index"` // free-form grouping: daily, study, hygiene, ...
	Points         int    `gorm:"default:0"`
	AssignedTo     *string
	RecurrenceRule string `gorm:"default:''"`
	DueDate        *time.Time
	IsActive       bool   `gorm:"default:true"`
	CreatedBy      string `gorm:"not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TaskCompletion is one submission of a task by a child, moving through
// pending -> approved | rejected. A rejected completion can be resubmitted;
// the new row records the previous rejection time for the resubmit-quick rule.
type TaskCompletion struct {
	ID                 string    `gorm:"primaryKey"`
	TaskID             string    `gorm:"index;not null"`
	UserID             string    `gorm:"index;not null"`
	Status             string    `gorm:"default:pending;index"`
	CompletedAt        time.Time `gorm:"not null"` // when the child says the chore was done
	Note               string
	IsResubmit         bool `gorm:"default:false"`
	PreviousRejectedAt *time.Time
	ReviewedBy         *string
	ReviewedAt         *time.Time
	ReviewNote         string // rejection reason, empty on approval
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Task Task `gorm:"foreignKey:TaskID"`
}
