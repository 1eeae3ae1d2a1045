package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"yarukoto-api/internal/apperr"
	"yarukoto-api/internal/cache"
	"yarukoto-api/internal/models"
	"yarukoto-api/internal/repository"
	"yarukoto-api/internal/validation"
)

const categoryCacheTTL = 5 * time.Minute

// CategoryService manages user-owned categories and enforces per-user
// case-insensitive name uniqueness.
type CategoryService struct {
	categories *repository.CategoryRepository
	listCache  *cache.TTLCache[string, []models.CategoryView] // nil disables caching
}

func NewCategoryService(db *gorm.DB, listCache *cache.TTLCache[string, []models.CategoryView]) *CategoryService {
	return &CategoryService{
		categories: repository.NewCategoryRepository(db),
		listCache:  listCache,
	}
}

func newCategoryID() string {
	return fmt.Sprintf("cat-%d", time.Now().UnixNano())
}

func (s *CategoryService) invalidateList(userID string) {
	if s.listCache != nil {
		s.listCache.Delete(userID)
	}
}

// List returns the user's categories ordered by name.
func (s *CategoryService) List(ctx context.Context, userID string) ([]models.CategoryView, error) {
	if s.listCache != nil {
		if cached, ok := s.listCache.Get(userID); ok {
			return cached, nil
		}
	}
	categories, err := s.categories.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	views := models.NewCategoryViews(categories)
	if s.listCache != nil {
		s.listCache.Set(userID, views, categoryCacheTTL)
	}
	return views, nil
}

// Create adds a category; a name the user already holds (compared
// case-insensitively) is a conflict.
func (s *CategoryService) Create(ctx context.Context, userID string, in validation.CreateCategoryInput) (*models.CategoryView, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)

	exists, err := s.categories.NameExists(ctx, userID, name, "")
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if exists {
		return nil, apperr.Conflict("a category with this name already exists")
	}

	category := models.Category{
		ID:     newCategoryID(),
		Name:   name,
		Color:  in.Color,
		UserID: userID,
	}
	if err := s.categories.Create(ctx, &category); err != nil {
		return nil, apperr.Internal(err)
	}
	s.invalidateList(userID)

	view := models.NewCategoryView(category)
	return &view, nil
}

// Update renames and/or recolors a category. Renaming to the category's own
// name with different casing is not a conflict.
func (s *CategoryService) Update(ctx context.Context, userID, categoryID string, in validation.UpdateCategoryInput) (*models.CategoryView, error) {
	if categoryID == "" {
		return nil, apperr.Validation("category id is required")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.categories.FindByID(ctx, userID, categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("category not found")
		}
		return nil, apperr.Internal(err)
	}

	fields := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if !strings.EqualFold(name, existing.Name) {
			exists, err := s.categories.NameExists(ctx, userID, name, categoryID)
			if err != nil {
				return nil, apperr.Internal(err)
			}
			if exists {
				return nil, apperr.Conflict("a category with this name already exists")
			}
		}
		fields["name"] = name
	}
	if in.Color.Present {
		if in.Color.Null {
			fields["color"] = nil
		} else {
			fields["color"] = in.Color.Value
		}
	}

	if len(fields) > 0 {
		rows, err := s.categories.UpdateFields(ctx, userID, categoryID, fields)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		if rows == 0 {
			return nil, apperr.NotFound("category not found")
		}
		s.invalidateList(userID)
	}

	updated, err := s.categories.FindByID(ctx, userID, categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("category not found")
		}
		return nil, apperr.Internal(err)
	}
	view := models.NewCategoryView(*updated)
	return &view, nil
}

// Delete removes the category and detaches every task referencing it; the
// tasks themselves survive.
func (s *CategoryService) Delete(ctx context.Context, userID, categoryID string) error {
	if categoryID == "" {
		return apperr.Validation("category id is required")
	}
	rows, err := s.categories.DeleteAndDetach(ctx, userID, categoryID)
	if err != nil {
		return apperr.Internal(err)
	}
	if rows == 0 {
		return apperr.NotFound("category not found")
	}
	s.invalidateList(userID)
	return nil
}
