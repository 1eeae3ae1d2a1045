package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"yarukoto-api/internal/apperr"
	"yarukoto-api/internal/cache"
	"yarukoto-api/internal/models"
	"yarukoto-api/internal/validation"
)

func TestCreateCategory_DuplicateNameCaseInsensitive(t *testing.T) {
	db := setupDB(t)
	svc := NewCategoryService(db, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, "u-1", validation.CreateCategoryInput{Name: "Work", Color: strPtr("#ff0000")})
	require.NoError(t, err)
	require.Equal(t, "Work", created.Name)

	_, err = svc.Create(ctx, "u-1", validation.CreateCategoryInput{Name: "work"})
	require.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	_, err = svc.Create(ctx, "u-1", validation.CreateCategoryInput{Name: "  WORK  "})
	require.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	// A different user may reuse the name.
	_, err = svc.Create(ctx, "u-2", validation.CreateCategoryInput{Name: "work"})
	require.NoError(t, err)
}

func TestUpdateCategory_RenameRules(t *testing.T) {
	db := setupDB(t)
	svc := NewCategoryService(db, nil)
	ctx := context.Background()

	work, err := svc.Create(ctx, "u-1", validation.CreateCategoryInput{Name: "Work"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "u-1", validation.CreateCategoryInput{Name: "Home"})
	require.NoError(t, err)

	// Renaming to its own name with different casing is not a conflict.
	renamed, err := svc.Update(ctx, "u-1", work.ID, validation.UpdateCategoryInput{Name: strPtr("WORK")})
	require.NoError(t, err)
	require.Equal(t, "WORK", renamed.Name)

	// Renaming onto another category's name is.
	_, err = svc.Update(ctx, "u-1", work.ID, validation.UpdateCategoryInput{Name: strPtr("home")})
	require.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	// Ownership is never leaked: a foreign id reads as not found.
	_, err = svc.Update(ctx, "u-2", work.ID, validation.UpdateCategoryInput{Name: strPtr("Mine")})
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestUpdateCategory_ColorThreeState(t *testing.T) {
	db := setupDB(t)
	svc := NewCategoryService(db, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, "u-1", validation.CreateCategoryInput{Name: "Work", Color: strPtr("#00ff00")})
	require.NoError(t, err)

	// Absent color is untouched by a rename.
	var renameOnly validation.UpdateCategoryInput
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Job"}`), &renameOnly))
	view, err := svc.Update(ctx, "u-1", created.ID, renameOnly)
	require.NoError(t, err)
	require.NotNil(t, view.Color)
	require.Equal(t, "#00ff00", *view.Color)

	// Explicit null clears it.
	var clearColor validation.UpdateCategoryInput
	require.NoError(t, json.Unmarshal([]byte(`{"color":null}`), &clearColor))
	view, err = svc.Update(ctx, "u-1", created.ID, clearColor)
	require.NoError(t, err)
	require.Nil(t, view.Color)
}

func TestDeleteCategory_DetachesTasks(t *testing.T) {
	db := setupDB(t)
	svc := NewCategoryService(db, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, "u-1", validation.CreateCategoryInput{Name: "Work"})
	require.NoError(t, err)

	task := seedTask(t, db, models.Task{ID: "t-tagged", UserID: "u-1", Title: "tagged", CategoryID: &created.ID})

	require.NoError(t, svc.Delete(ctx, "u-1", created.ID))

	// The task survives with its reference cleared.
	survivor := fetchTask(t, db, task.ID)
	require.Nil(t, survivor.CategoryID)

	err = svc.Delete(ctx, "u-1", created.ID)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestListCategories_OrderAndCacheInvalidation(t *testing.T) {
	db := setupDB(t)
	svc := NewCategoryService(db, cache.New[string, []models.CategoryView]())
	ctx := context.Background()

	_, err := svc.Create(ctx, "u-1", validation.CreateCategoryInput{Name: "Work"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "u-1", validation.CreateCategoryInput{Name: "Errands"})
	require.NoError(t, err)

	list, err := svc.List(ctx, "u-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "Errands", list[0].Name)
	require.Equal(t, "Work", list[1].Name)

	// A mutation after a cached read must be visible on the next read.
	_, err = svc.Create(ctx, "u-1", validation.CreateCategoryInput{Name: "Health"})
	require.NoError(t, err)
	list, err = svc.List(ctx, "u-1")
	require.NoError(t, err)
	require.Len(t, list, 3)
}

func TestCreateCategory_Validation(t *testing.T) {
	db := setupDB(t)
	svc := NewCategoryService(db, nil)

	_, err := svc.Create(context.Background(), "u-1", validation.CreateCategoryInput{Name: "   "})
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	require.Equal(t, "category name is required", ae.Message)
}
