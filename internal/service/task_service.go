package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"yarukoto-api/internal/apperr"
	"yarukoto-api/internal/cache"
	"yarukoto-api/internal/models"
	"yarukoto-api/internal/repository"
	"yarukoto-api/internal/validation"
)

// now is a small indirection to allow test stubbing.
var now = time.Now

const statsCacheTTL = 60 * time.Second

// TaskService is the task lifecycle and query engine. All date math is UTC:
// scheduled dates are UTC midnight, day windows run [00:00:00Z, 23:59:59.999Z],
// and "today" is the current instant's UTC date.
type TaskService struct {
	tasks      *repository.TaskRepository
	categories *repository.CategoryRepository
	statsCache *cache.TTLCache[string, models.MonthlyTaskStats] // nil disables caching
}

func NewTaskService(db *gorm.DB, statsCache *cache.TTLCache[string, models.MonthlyTaskStats]) *TaskService {
	return &TaskService{
		tasks:      repository.NewTaskRepository(db),
		categories: repository.NewCategoryRepository(db),
		statsCache: statsCache,
	}
}

func newTaskID() string {
	return fmt.Sprintf("task-%d", time.Now().UnixNano())
}

// todayStart returns UTC midnight of the current day.
func todayStart() time.Time {
	return now().UTC().Truncate(24 * time.Hour)
}

func todayString() string {
	return now().UTC().Format(validation.DateLayout)
}

// dayBounds returns the inclusive window [day 00:00:00.000Z, day 23:59:59.999Z]
// used to bound completion/skip event timestamps.
func dayBounds(day time.Time) (time.Time, time.Time) {
	return day, day.Add(24*time.Hour - time.Millisecond)
}

func taskErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("task not found")
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae
	}
	return apperr.Internal(err)
}

func trimToNil(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// verifyCategory checks that the category exists and belongs to userID.
func (s *TaskService) verifyCategory(ctx context.Context, userID, categoryID string) error {
	if _, err := s.categories.FindByID(ctx, userID, categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("category not found")
		}
		return apperr.Internal(err)
	}
	return nil
}

func (s *TaskService) viewByID(ctx context.Context, userID, taskID string) (*models.TaskView, error) {
	task, err := s.tasks.FindByID(ctx, userID, taskID)
	if err != nil {
		return nil, taskErr(err)
	}
	view := models.NewTaskView(*task)
	return &view, nil
}

// Create persists a new pending task after validating the input and, if a
// category is referenced, its ownership.
func (s *TaskService) Create(ctx context.Context, userID string, in validation.CreateTaskInput) (*models.TaskView, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	task := models.Task{
		ID:     newTaskID(),
		Title:  strings.TrimSpace(in.Title),
		Status: models.StatusPending,
		UserID: userID,
	}
	if in.Memo != nil {
		task.Memo = trimToNil(*in.Memo)
	}
	if in.ScheduledAt != nil {
		day, err := validation.ParseDate(*in.ScheduledAt)
		if err != nil {
			return nil, err
		}
		task.ScheduledAt = &day
	}
	if in.CategoryID != nil && *in.CategoryID != "" {
		if err := s.verifyCategory(ctx, userID, *in.CategoryID); err != nil {
			return nil, err
		}
		task.CategoryID = in.CategoryID
	}
	if in.Priority != nil {
		p := models.TaskPriority(*in.Priority)
		task.Priority = &p
	}

	if err := s.tasks.Create(ctx, &task); err != nil {
		return nil, apperr.Internal(err)
	}
	return s.viewByID(ctx, userID, task.ID)
}

// Update applies a partial update. Absent fields are left unchanged, null
// fields are cleared, values replace. Status is never touched here.
func (s *TaskService) Update(ctx context.Context, userID, taskID string, in validation.UpdateTaskInput) (*models.TaskView, error) {
	if taskID == "" {
		return nil, apperr.Validation("task id is required")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Title.Present {
		fields["title"] = strings.TrimSpace(in.Title.Value)
	}
	if in.Memo.Present {
		if in.Memo.Null {
			fields["memo"] = nil
		} else {
			fields["memo"] = trimToNil(in.Memo.Value)
		}
	}
	if in.ScheduledAt.Present {
		if in.ScheduledAt.Null {
			fields["scheduled_at"] = nil
		} else {
			day, err := validation.ParseDate(in.ScheduledAt.Value)
			if err != nil {
				return nil, err
			}
			fields["scheduled_at"] = day
		}
	}
	if in.CategoryID.Present {
		if in.CategoryID.Null {
			fields["category_id"] = nil
		} else {
			if err := s.verifyCategory(ctx, userID, in.CategoryID.Value); err != nil {
				return nil, err
			}
			fields["category_id"] = in.CategoryID.Value
		}
	}
	if in.Priority.Present {
		if in.Priority.Null {
			fields["priority"] = nil
		} else {
			fields["priority"] = in.Priority.Value
		}
	}

	if len(fields) == 0 {
		return s.viewByID(ctx, userID, taskID)
	}
	return s.applyFields(ctx, userID, taskID, fields)
}

// applyFields runs the conditional update and maps zero matched rows to
// NOT_FOUND.
func (s *TaskService) applyFields(ctx context.Context, userID, taskID string, fields map[string]any) (*models.TaskView, error) {
	rows, err := s.tasks.UpdateFields(ctx, userID, taskID, fields)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if rows == 0 {
		return nil, apperr.NotFound("task not found")
	}
	return s.viewByID(ctx, userID, taskID)
}

// Complete marks the task completed at the current instant. Completing an
// already-completed task refreshes the timestamp.
func (s *TaskService) Complete(ctx context.Context, userID, taskID string) (*models.TaskView, error) {
	if taskID == "" {
		return nil, apperr.Validation("task id is required")
	}
	return s.applyFields(ctx, userID, taskID, map[string]any{
		"status":       models.StatusCompleted,
		"completed_at": now().UTC(),
		"skipped_at":   nil,
		"skip_reason":  nil,
	})
}

// Uncomplete returns the task to pending. Permissive: callable from any
// status. The skip fields are cleared too so a pending task never carries
// event timestamps.
func (s *TaskService) Uncomplete(ctx context.Context, userID, taskID string) (*models.TaskView, error) {
	if taskID == "" {
		return nil, apperr.Validation("task id is required")
	}
	return s.applyFields(ctx, userID, taskID, map[string]any{
		"status":       models.StatusPending,
		"completed_at": nil,
		"skipped_at":   nil,
		"skip_reason":  nil,
	})
}

// Skip marks the task skipped at the current instant with an optional reason.
func (s *TaskService) Skip(ctx context.Context, userID, taskID string, in validation.SkipTaskInput) (*models.TaskView, error) {
	if taskID == "" {
		return nil, apperr.Validation("task id is required")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var reason *string
	if in.Reason != nil {
		reason = trimToNil(*in.Reason)
	}
	fields := map[string]any{
		"status":       models.StatusSkipped,
		"skipped_at":   now().UTC(),
		"completed_at": nil,
	}
	if reason != nil {
		fields["skip_reason"] = *reason
	} else {
		fields["skip_reason"] = nil
	}
	return s.applyFields(ctx, userID, taskID, fields)
}

// Unskip returns the task to pending and clears the skip fields. Permissive
// like Uncomplete.
func (s *TaskService) Unskip(ctx context.Context, userID, taskID string) (*models.TaskView, error) {
	if taskID == "" {
		return nil, apperr.Validation("task id is required")
	}
	return s.applyFields(ctx, userID, taskID, map[string]any{
		"status":       models.StatusPending,
		"skipped_at":   nil,
		"skip_reason":  nil,
		"completed_at": nil,
	})
}

// Delete hard-deletes the task.
func (s *TaskService) Delete(ctx context.Context, userID, taskID string) error {
	if taskID == "" {
		return apperr.Validation("task id is required")
	}
	rows, err := s.tasks.DeleteByID(ctx, userID, taskID)
	if err != nil {
		return apperr.Internal(err)
	}
	if rows == 0 {
		return apperr.NotFound("task not found")
	}
	return nil
}

// TodayView partitions the user's tasks into the five buckets of the today
// view. Future-scheduled pending tasks appear in none of them. The five
// queries are independent reads and run concurrently.
func (s *TaskService) TodayView(ctx context.Context, userID string) (*models.TodayTasksView, error) {
	day := todayStart()
	windowStart, windowEnd := dayBounds(day)

	var overdue, dueToday, undated, completed, skipped []models.Task
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		overdue, err = s.tasks.ListPendingBefore(gctx, userID, day)
		return err
	})
	g.Go(func() (err error) {
		dueToday, err = s.tasks.ListPendingOn(gctx, userID, day)
		return err
	})
	g.Go(func() (err error) {
		undated, err = s.tasks.ListPendingUndated(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		completed, err = s.tasks.ListCompletedBetween(gctx, userID, windowStart, windowEnd)
		return err
	})
	g.Go(func() (err error) {
		skipped, err = s.tasks.ListSkippedBetween(gctx, userID, windowStart, windowEnd)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperr.Internal(err)
	}

	return &models.TodayTasksView{
		Overdue:   models.NewTaskViews(overdue),
		Today:     models.NewTaskViews(dueToday),
		Undated:   models.NewTaskViews(undated),
		Completed: models.NewTaskViews(completed),
		Skipped:   models.NewTaskViews(skipped),
	}, nil
}

// ByDate returns the view for an arbitrary date: tasks scheduled on that day
// regardless of status, plus, for past dates only, tasks completed or
// skipped within that day's window.
func (s *TaskService) ByDate(ctx context.Context, userID string, in validation.GetTasksByDateInput) (*models.DateTasksView, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	day, err := validation.ParseDate(in.Date)
	if err != nil {
		return nil, err
	}

	today := todayString()
	isPast := in.Date < today
	isFuture := in.Date > today

	var completed, skipped, scheduled []models.Task
	g, gctx := errgroup.WithContext(ctx)
	if isPast {
		windowStart, windowEnd := dayBounds(day)
		g.Go(func() (err error) {
			completed, err = s.tasks.ListCompletedBetween(gctx, userID, windowStart, windowEnd)
			return err
		})
		g.Go(func() (err error) {
			skipped, err = s.tasks.ListSkippedBetween(gctx, userID, windowStart, windowEnd)
			return err
		})
	}
	g.Go(func() (err error) {
		scheduled, err = s.tasks.ListScheduledOn(gctx, userID, day)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperr.Internal(err)
	}

	return &models.DateTasksView{
		IsPast:    isPast,
		IsFuture:  isFuture,
		Completed: models.NewTaskViews(completed),
		Skipped:   models.NewTaskViews(skipped),
		Scheduled: models.NewTaskViews(scheduled),
	}, nil
}

// Search filters tasks conjunctively and groups the results by scheduled
// date. Dated groups are ordered newest date first; the undated group always
// sorts last.
func (s *TaskService) Search(ctx context.Context, userID string, in validation.SearchTasksInput) (*models.SearchTasksView, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	query := repository.TaskSearchQuery{Keyword: in.Keyword}
	if in.Status != "" && in.Status != validation.FilterAll {
		query.Status = models.TaskStatus(strings.ToUpper(in.Status))
	}
	if in.CategoryID != nil {
		query.FilterCategory = true
		if *in.CategoryID != validation.FilterNone {
			query.CategoryID = in.CategoryID
		}
	}
	if in.Priority != nil && *in.Priority != validation.FilterAll {
		query.FilterPriority = true
		if *in.Priority != validation.FilterNone {
			p := models.TaskPriority(*in.Priority)
			query.Priority = &p
		}
	}
	if in.DateFrom != "" {
		from, err := validation.ParseDate(in.DateFrom)
		if err != nil {
			return nil, err
		}
		query.From = &from
	}
	if in.DateTo != "" {
		to, err := validation.ParseDate(in.DateTo)
		if err != nil {
			return nil, err
		}
		_, endOfDay := dayBounds(to)
		query.To = &endOfDay
	}

	tasks, err := s.tasks.Search(ctx, userID, query)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	// Bucket by scheduled date; "" keys the undated group.
	groupMap := make(map[string][]models.TaskView)
	keys := make([]string, 0)
	for _, task := range tasks {
		key := ""
		if task.ScheduledAt != nil {
			key = task.ScheduledAt.UTC().Format(validation.DateLayout)
		}
		if _, seen := groupMap[key]; !seen {
			keys = append(keys, key)
		}
		groupMap[key] = append(groupMap[key], models.NewTaskView(task))
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i] == "" {
			return false
		}
		if keys[j] == "" {
			return true
		}
		return keys[i] > keys[j]
	})

	groups := make([]models.TaskGroupView, 0, len(keys))
	for _, key := range keys {
		group := models.TaskGroupView{Tasks: groupMap[key]}
		if key != "" {
			date := key
			group.Date = &date
		}
		groups = append(groups, group)
	}

	return &models.SearchTasksView{Groups: groups, Total: len(tasks)}, nil
}

// MonthlyStats aggregates the user's tasks by scheduled day for one month.
// Days without tasks have no entry. Overdue counts pending tasks scheduled
// strictly before today. Results are cached briefly per user and month.
func (s *TaskService) MonthlyStats(ctx context.Context, userID string, in validation.MonthlyStatsInput) (models.MonthlyTaskStats, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	monthStart, err := validation.ParseMonth(in.Month)
	if err != nil {
		return nil, err
	}
	monthEnd := monthStart.AddDate(0, 1, 0)

	cacheKey := userID + "|" + in.Month
	if s.statsCache != nil {
		if cached, ok := s.statsCache.Get(cacheKey); ok {
			return cached, nil
		}
	}

	tasks, err := s.tasks.ListScheduledBetween(ctx, userID, monthStart, monthEnd)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	today := todayStart()
	stats := models.MonthlyTaskStats{}
	for _, task := range tasks {
		if task.ScheduledAt == nil {
			continue
		}
		day := task.ScheduledAt.UTC().Format(validation.DateLayout)
		entry := stats[day]
		entry.Total++
		switch task.Status {
		case models.StatusCompleted:
			entry.Completed++
		case models.StatusSkipped:
			entry.Skipped++
		case models.StatusPending:
			if task.ScheduledAt.Before(today) {
				entry.Overdue++
			}
		}
		stats[day] = entry
	}

	if s.statsCache != nil {
		s.statsCache.Set(cacheKey, stats, statsCacheTTL)
	}
	return stats, nil
}
