package validation

import (
	"regexp"
	"strings"
	"time"

	"yarukoto-api/internal/apperr"
	"yarukoto-api/internal/models"
	"yarukoto-api/internal/optional"
)

// Input validation gating every operation before it reaches the engines.
// Each Validate method reports only the first violated rule.

const (
	maxTitleLen        = 500
	maxMemoLen         = 10000
	maxSkipReasonLen   = 1000
	maxCategoryNameLen = 100

	// DateLayout is the wire format for calendar dates.
	DateLayout = "2006-01-02"
	// MonthLayout is the wire format for calendar months.
	MonthLayout = "2006-01"
)

var (
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)
)

// ParseDate parses a YYYY-MM-DD string into UTC midnight of that day.
func ParseDate(s string) (time.Time, error) {
	if !datePattern.MatchString(s) {
		return time.Time{}, apperr.Validation("date must be in YYYY-MM-DD format")
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, apperr.Validation("date must be in YYYY-MM-DD format")
	}
	return t, nil
}

// ParseMonth parses a YYYY-MM string into UTC midnight of the month's first day.
func ParseMonth(s string) (time.Time, error) {
	if !monthPattern.MatchString(s) {
		return time.Time{}, apperr.Validation("month must be in YYYY-MM format")
	}
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return time.Time{}, apperr.Validation("month must be in YYYY-MM format")
	}
	return t, nil
}

func validTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return apperr.Validation("title is required")
	}
	if len([]rune(title)) > maxTitleLen {
		return apperr.Validation("title must be at most 500 characters")
	}
	return nil
}

func validMemo(memo string) error {
	if len([]rune(memo)) > maxMemoLen {
		return apperr.Validation("memo must be at most 10000 characters")
	}
	return nil
}

func validPriority(priority string) error {
	switch models.TaskPriority(priority) {
	case models.PriorityHigh, models.PriorityMedium, models.PriorityLow:
		return nil
	}
	return apperr.Validation("priority must be one of HIGH, MEDIUM, LOW")
}

// CreateTaskInput carries the fields for creating a task. Optional fields
// use pointers; nil means not provided.
type CreateTaskInput struct {
	Title       string  `json:"title"`
	ScheduledAt *string `json:"scheduledAt"`
	CategoryID  *string `json:"categoryId"`
	Priority    *string `json:"priority"`
	Memo        *string `json:"memo"`
}

func (in CreateTaskInput) Validate() error {
	if err := validTitle(in.Title); err != nil {
		return err
	}
	if in.ScheduledAt != nil {
		if _, err := ParseDate(*in.ScheduledAt); err != nil {
			return err
		}
	}
	if in.Priority != nil {
		if err := validPriority(*in.Priority); err != nil {
			return err
		}
	}
	if in.Memo != nil {
		if err := validMemo(*in.Memo); err != nil {
			return err
		}
	}
	return nil
}

// UpdateTaskInput carries a partial update. Every field is three-state:
// absent leaves the field unchanged, null clears it, a value replaces it.
// Title is not nullable; clearing it is a validation error.
type UpdateTaskInput struct {
	Title       optional.Field[string] `json:"title"`
	ScheduledAt optional.Field[string] `json:"scheduledAt"`
	CategoryID  optional.Field[string] `json:"categoryId"`
	Priority    optional.Field[string] `json:"priority"`
	Memo        optional.Field[string] `json:"memo"`
}

func (in UpdateTaskInput) Validate() error {
	if in.Title.Present {
		if in.Title.Null {
			return apperr.Validation("title is required")
		}
		if err := validTitle(in.Title.Value); err != nil {
			return err
		}
	}
	if in.ScheduledAt.Set() {
		if _, err := ParseDate(in.ScheduledAt.Value); err != nil {
			return err
		}
	}
	if in.Priority.Set() {
		if err := validPriority(in.Priority.Value); err != nil {
			return err
		}
	}
	if in.Memo.Set() {
		if err := validMemo(in.Memo.Value); err != nil {
			return err
		}
	}
	return nil
}

// SkipTaskInput carries the optional reason for skipping a task.
type SkipTaskInput struct {
	Reason *string `json:"reason"`
}

func (in SkipTaskInput) Validate() error {
	if in.Reason != nil && len([]rune(*in.Reason)) > maxSkipReasonLen {
		return apperr.Validation("skip reason must be at most 1000 characters")
	}
	return nil
}

// GetTasksByDateInput identifies the date of a by-date view.
type GetTasksByDateInput struct {
	Date string `json:"date"`
}

func (in GetTasksByDateInput) Validate() error {
	_, err := ParseDate(in.Date)
	return err
}

// SearchTasksInput carries the conjunctive search filters. CategoryID and
// Priority are three-state: nil means no restriction and the literal "none"
// selects tasks without a category/priority.
type SearchTasksInput struct {
	Keyword    string
	Status     string
	CategoryID *string
	Priority   *string
	DateFrom   string
	DateTo     string
}

// FilterNone selects tasks where the filtered field is unset.
const FilterNone = "none"

// FilterAll is equivalent to leaving the filter out.
const FilterAll = "all"

func (in SearchTasksInput) Validate() error {
	switch in.Status {
	case "", FilterAll, "pending", "completed", "skipped":
	default:
		return apperr.Validation("status must be one of all, pending, completed, skipped")
	}
	if in.Priority != nil && *in.Priority != FilterAll && *in.Priority != FilterNone {
		if err := validPriority(*in.Priority); err != nil {
			return err
		}
	}
	if in.DateFrom != "" {
		if _, err := ParseDate(in.DateFrom); err != nil {
			return err
		}
	}
	if in.DateTo != "" {
		if _, err := ParseDate(in.DateTo); err != nil {
			return err
		}
	}
	return nil
}

// MonthlyStatsInput identifies the month of a stats query.
type MonthlyStatsInput struct {
	Month string `json:"month"`
}

func (in MonthlyStatsInput) Validate() error {
	_, err := ParseMonth(in.Month)
	return err
}

// CreateCategoryInput carries the fields for creating a category.
type CreateCategoryInput struct {
	Name  string  `json:"name"`
	Color *string `json:"color"`
}

func (in CreateCategoryInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return apperr.Validation("category name is required")
	}
	if len([]rune(in.Name)) > maxCategoryNameLen {
		return apperr.Validation("category name must be at most 100 characters")
	}
	return nil
}

// UpdateCategoryInput carries a partial category update. Name cannot be
// cleared; Color is three-state.
type UpdateCategoryInput struct {
	Name  *string                `json:"name"`
	Color optional.Field[string] `json:"color"`
}

func (in UpdateCategoryInput) Validate() error {
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return apperr.Validation("category name is required")
		}
		if len([]rune(*in.Name)) > maxCategoryNameLen {
			return apperr.Validation("category name must be at most 100 characters")
		}
	}
	return nil
}
