package models

import (
	"time"
)

// TaskStatus represents the lifecycle state of a task
type TaskStatus string

const (
	StatusPending   TaskStatus = "PENDING"
	StatusCompleted TaskStatus = "COMPLETED"
	StatusSkipped   TaskStatus = "SKIPPED"
)

// TaskPriority represents the priority of a task
type TaskPriority string

const (
	PriorityHigh   TaskPriority = "HIGH"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityLow    TaskPriority = "LOW"
)

// Task represents a single actionable item owned by one user.
//
// ScheduledAt is a calendar date stored as UTC midnight; CompletedAt and
// SkippedAt are event timestamps. CompletedAt is non-nil iff the status is
// COMPLETED, SkippedAt non-nil iff SKIPPED, never both.
type Task struct {
	ID          string        `json:"id" gorm:"primaryKey"`
	Title       string        `json:"title" gorm:"not null"`
	Memo        *string       `json:"memo"`
	Status      TaskStatus    `json:"status" gorm:"not null;default:'PENDING';index"`
	Priority    *TaskPriority `json:"priority"`
	ScheduledAt *time.Time    `json:"scheduledAt" gorm:"column:scheduled_at;index"`
	CompletedAt *time.Time    `json:"completedAt" gorm:"column:completed_at"`
	SkippedAt   *time.Time    `json:"skippedAt" gorm:"column:skipped_at"`
	SkipReason  *string       `json:"skipReason" gorm:"column:skip_reason"`
	CategoryID  *string       `json:"categoryId" gorm:"column:category_id;index"`
	Category    *Category     `json:"category" gorm:"foreignKey:CategoryID"`
	UserID      string        `json:"-" gorm:"column:user_id;index;not null"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// TableName specifies the table name for Task Model
func (Task) TableName() string {
	return "tasks"
}
