package models

import (
	"time"
)

// Response views. Scheduled dates serialize as YYYY-MM-DD strings, event
// timestamps as RFC3339, and unset fields as JSON null (never "").

const dateLayout = "2006-01-02"

// CategorySummary is the category payload embedded in task responses.
type CategorySummary struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Color *string `json:"color"`
}

// TaskView is the wire representation of a task.
type TaskView struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Memo        *string          `json:"memo"`
	Status      TaskStatus       `json:"status"`
	Priority    *TaskPriority    `json:"priority"`
	ScheduledAt *string          `json:"scheduledAt"`
	CompletedAt *string          `json:"completedAt"`
	SkippedAt   *string          `json:"skippedAt"`
	SkipReason  *string          `json:"skipReason"`
	CreatedAt   string           `json:"createdAt"`
	UpdatedAt   string           `json:"updatedAt"`
	CategoryID  *string          `json:"categoryId"`
	Category    *CategorySummary `json:"category"`
}

// CategoryView is the wire representation of a category.
type CategoryView struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Color     *string `json:"color"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

// TodayTasksView holds the five buckets of the today view.
type TodayTasksView struct {
	Overdue   []TaskView `json:"overdue"`
	Today     []TaskView `json:"today"`
	Undated   []TaskView `json:"undated"`
	Completed []TaskView `json:"completed"`
	Skipped   []TaskView `json:"skipped"`
}

// DateTasksView holds the by-date view for a non-today date.
type DateTasksView struct {
	IsPast    bool       `json:"isPast"`
	IsFuture  bool       `json:"isFuture"`
	Completed []TaskView `json:"completed"`
	Skipped   []TaskView `json:"skipped"`
	Scheduled []TaskView `json:"scheduled"`
}

// TaskGroupView is a set of tasks sharing a scheduled date; Date is nil for
// the undated group.
type TaskGroupView struct {
	Date  *string    `json:"date"`
	Tasks []TaskView `json:"tasks"`
}

// SearchTasksView is the grouped result of a task search.
type SearchTasksView struct {
	Groups []TaskGroupView `json:"groups"`
	Total  int             `json:"total"`
}

// DayTaskStats aggregates one calendar day for the monthly view.
type DayTaskStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Overdue   int `json:"overdue"`
	Skipped   int `json:"skipped"`
}

// MonthlyTaskStats maps YYYY-MM-DD to that day's stats. Days without tasks
// have no entry.
type MonthlyTaskStats map[string]DayTaskStats

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(dateLayout)
	return &s
}

func formatTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

// NewTaskView converts a task row (with its preloaded category, if any) to
// its wire representation.
func NewTaskView(t Task) TaskView {
	v := TaskView{
		ID:          t.ID,
		Title:       t.Title,
		Memo:        t.Memo,
		Status:      t.Status,
		Priority:    t.Priority,
		ScheduledAt: formatDate(t.ScheduledAt),
		CompletedAt: formatTimestamp(t.CompletedAt),
		SkippedAt:   formatTimestamp(t.SkippedAt),
		SkipReason:  t.SkipReason,
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.UTC().Format(time.RFC3339),
		CategoryID:  t.CategoryID,
	}
	if t.Category != nil {
		v.Category = &CategorySummary{
			ID:    t.Category.ID,
			Name:  t.Category.Name,
			Color: t.Category.Color,
		}
	}
	return v
}

// NewTaskViews converts a slice of task rows; a nil or empty input yields an
// empty (non-nil) slice so it serializes as [].
func NewTaskViews(tasks []Task) []TaskView {
	views := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, NewTaskView(t))
	}
	return views
}

// NewCategoryView converts a category row to its wire representation.
func NewCategoryView(c Category) CategoryView {
	return CategoryView{
		ID:        c.ID,
		Name:      c.Name,
		Color:     c.Color,
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// NewCategoryViews converts a slice of category rows.
func NewCategoryViews(categories []Category) []CategoryView {
	views := make([]CategoryView, 0, len(categories))
	for _, c := range categories {
		views = append(views, NewCategoryView(c))
	}
	return views
}
