package handlers

import (
	"net/http"

	"yarukoto-api/internal/apperr"
	"yarukoto-api/internal/cache"
	"yarukoto-api/internal/database"
	"yarukoto-api/internal/models"
	"yarukoto-api/internal/realtime"
	"yarukoto-api/internal/service"
	"yarukoto-api/internal/validation"

	"github.com/gin-gonic/gin"
)

// categoryListCache holds each user's category list; mutations invalidate it.
var categoryListCache = cache.New[string, []models.CategoryView]()

func newCategoryService() *service.CategoryService {
	return service.NewCategoryService(database.GetDB(), categoryListCache)
}

// GetCategories handles GET /api/categories
func GetCategories(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	categories, err := newCategoryService().List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// CreateCategory handles POST /api/categories
func CreateCategory(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var in validation.CreateCategoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, apperr.Validation("invalid request body"))
		return
	}
	category, err := newCategoryService().Create(c.Request.Context(), userID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	realtime.GetHub().Publish(userID, realtime.EventCategoryCreated, category.ID)
	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// UpdateCategory handles PATCH /api/categories/:id
func UpdateCategory(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var in validation.UpdateCategoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, apperr.Validation("invalid request body"))
		return
	}
	category, err := newCategoryService().Update(c.Request.Context(), userID, c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	realtime.GetHub().Publish(userID, realtime.EventCategoryUpdated, category.ID)
	c.JSON(http.StatusOK, gin.H{"category": category})
}

// DeleteCategory handles DELETE /api/categories/:id
// Referencing tasks are detached, never deleted.
func DeleteCategory(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	categoryID := c.Param("id")
	if err := newCategoryService().Delete(c.Request.Context(), userID, categoryID); err != nil {
		respondError(c, err)
		return
	}
	realtime.GetHub().Publish(userID, realtime.EventCategoryDeleted, categoryID)
	c.JSON(http.StatusOK, gin.H{"id": categoryID})
}
