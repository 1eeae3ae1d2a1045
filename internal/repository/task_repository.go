package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"yarukoto-api/internal/models"
)

// TaskRepository handles task rows scoped to the owning user. Every mutation
// carries the ownership predicate in the statement itself, so a zero
// rows-affected result means "not found or not owned" with no race between
// check and write.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// FindByID returns the task with its category preloaded, or
// gorm.ErrRecordNotFound if it does not exist or is not owned by userID.
func (r *TaskRepository) FindByID(ctx context.Context, userID, taskID string) (*models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("id = ? AND user_id = ?", taskID, userID).
		First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateFields applies the given column values in a single conditional
// UPDATE and reports the number of matched rows.
func (r *TaskRepository) UpdateFields(ctx context.Context, userID, taskID string, fields map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ? AND user_id = ?", taskID, userID).
		Updates(fields)
	return res.RowsAffected, res.Error
}

// DeleteByID hard-deletes the task and reports the number of matched rows.
func (r *TaskRepository) DeleteByID(ctx context.Context, userID, taskID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", taskID, userID).
		Delete(&models.Task{})
	return res.RowsAffected, res.Error
}

// ListPendingBefore returns pending tasks scheduled strictly before day,
// oldest first.
func (r *TaskRepository) ListPendingBefore(ctx context.Context, userID string, day time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("user_id = ? AND status = ? AND scheduled_at < ?", userID, models.StatusPending, day).
		Order("scheduled_at ASC").
		Find(&tasks).Error
	return tasks, err
}

// ListPendingOn returns pending tasks scheduled on the given day, newest
// created first.
func (r *TaskRepository) ListPendingOn(ctx context.Context, userID string, day time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("user_id = ? AND status = ? AND scheduled_at >= ? AND scheduled_at < ?",
			userID, models.StatusPending, day, day.AddDate(0, 0, 1)).
		Order("created_at DESC").
		Find(&tasks).Error
	return tasks, err
}

// ListPendingUndated returns pending tasks without a scheduled date, newest
// created first.
func (r *TaskRepository) ListPendingUndated(ctx context.Context, userID string) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("user_id = ? AND status = ? AND scheduled_at IS NULL", userID, models.StatusPending).
		Order("created_at DESC").
		Find(&tasks).Error
	return tasks, err
}

// ListCompletedBetween returns tasks completed within [start, end], most
// recently completed first.
func (r *TaskRepository) ListCompletedBetween(ctx context.Context, userID string, start, end time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("user_id = ? AND status = ? AND completed_at >= ? AND completed_at <= ?",
			userID, models.StatusCompleted, start, end).
		Order("completed_at DESC").
		Find(&tasks).Error
	return tasks, err
}

// ListSkippedBetween returns tasks skipped within [start, end], most
// recently skipped first.
func (r *TaskRepository) ListSkippedBetween(ctx context.Context, userID string, start, end time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("user_id = ? AND status = ? AND skipped_at >= ? AND skipped_at <= ?",
			userID, models.StatusSkipped, start, end).
		Order("skipped_at DESC").
		Find(&tasks).Error
	return tasks, err
}

// ListScheduledOn returns tasks of any status scheduled on the given day,
// newest created first.
func (r *TaskRepository) ListScheduledOn(ctx context.Context, userID string, day time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("user_id = ? AND scheduled_at >= ? AND scheduled_at < ?",
			userID, day, day.AddDate(0, 0, 1)).
		Order("created_at DESC").
		Find(&tasks).Error
	return tasks, err
}

// ListScheduledBetween returns tasks of any status with a scheduled date in
// [start, end). Used for monthly aggregation; no ordering guarantee.
func (r *TaskRepository) ListScheduledBetween(ctx context.Context, userID string, start, end time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND scheduled_at >= ? AND scheduled_at < ?", userID, start, end).
		Find(&tasks).Error
	return tasks, err
}

// TaskSearchQuery describes conjunctive search filters. FilterCategory and
// FilterPriority distinguish "no restriction" from "must be unset" (nil
// value with the flag set).
type TaskSearchQuery struct {
	Keyword        string
	Status         models.TaskStatus // empty = any status
	FilterCategory bool
	CategoryID     *string
	FilterPriority bool
	Priority       *models.TaskPriority
	From           *time.Time
	To             *time.Time // inclusive end-of-day bound
}

// Search returns matching tasks ordered by scheduled date descending then
// creation time descending; undated tasks sort last (SQLite places NULLs
// last in descending order).
func (r *TaskRepository) Search(ctx context.Context, userID string, q TaskSearchQuery) ([]models.Task, error) {
	db := r.db.WithContext(ctx).
		Preload("Category").
		Where("user_id = ?", userID)

	if kw := strings.TrimSpace(q.Keyword); kw != "" {
		pattern := "%" + strings.ToLower(kw) + "%"
		db = db.Where("(LOWER(title) LIKE ? OR LOWER(COALESCE(memo, '')) LIKE ?)", pattern, pattern)
	}
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}
	if q.FilterCategory {
		if q.CategoryID == nil {
			db = db.Where("category_id IS NULL")
		} else {
			db = db.Where("category_id = ?", *q.CategoryID)
		}
	}
	if q.FilterPriority {
		if q.Priority == nil {
			db = db.Where("priority IS NULL")
		} else {
			db = db.Where("priority = ?", *q.Priority)
		}
	}
	if q.From != nil {
		db = db.Where("scheduled_at >= ?", *q.From)
	}
	if q.To != nil {
		db = db.Where("scheduled_at <= ?", *q.To)
	}

	var tasks []models.Task
	err := db.Order("scheduled_at DESC, created_at DESC").Find(&tasks).Error
	return tasks, err
}
