package repository

import (
	"context"

	"gorm.io/gorm"

	"yarukoto-api/internal/models"
)

// CategoryRepository manages user-owned categories.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

// FindByID returns the category or gorm.ErrRecordNotFound if it does not
// exist or is not owned by userID.
func (r *CategoryRepository) FindByID(ctx context.Context, userID, categoryID string) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", categoryID, userID).
		First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// ListByUser returns the user's categories ordered by name.
func (r *CategoryRepository) ListByUser(ctx context.Context, userID string) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&categories).Error
	return categories, err
}

// NameExists reports whether the user already has a category with the given
// name, compared case-insensitively. excludeID skips one category so a
// rename to the same name does not conflict with itself.
func (r *CategoryRepository) NameExists(ctx context.Context, userID, name, excludeID string) (bool, error) {
	var count int64
	db := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("user_id = ? AND LOWER(name) = LOWER(?)", userID, name)
	if excludeID != "" {
		db = db.Where("id <> ?", excludeID)
	}
	if err := db.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateFields applies the given column values in a single conditional
// UPDATE and reports the number of matched rows.
func (r *CategoryRepository) UpdateFields(ctx context.Context, userID, categoryID string, fields map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("id = ? AND user_id = ?", categoryID, userID).
		Updates(fields)
	return res.RowsAffected, res.Error
}

// DeleteAndDetach removes the category and clears the reference on all of
// the user's tasks pointing at it, in one transaction. Tasks are detached,
// never deleted. Reports the number of category rows removed.
func (r *CategoryRepository) DeleteAndDetach(ctx context.Context, userID, categoryID string) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Task{}).
			Where("user_id = ? AND category_id = ?", userID, categoryID).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		res := tx.Where("id = ? AND user_id = ?", categoryID, userID).
			Delete(&models.Category{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	return deleted, err
}
