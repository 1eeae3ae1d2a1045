package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"yarukoto-api/internal/database"
	"yarukoto-api/internal/middleware"
	"yarukoto-api/internal/models"
	"yarukoto-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func setupCategoryRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	database.DB = db

	r := gin.New()
	api := r.Group("/api", middleware.JWTAuthMiddleware())
	api.GET("/categories", GetCategories)
	api.POST("/categories", CreateCategory)
	api.DELETE("/categories/:id", DeleteCategory)
	return r
}

func TestCreateCategory_DuplicateConflict(t *testing.T) {
	r := setupCategoryRouter(t)
	token := bearerToken(t, "u-cat-dup")

	w := doJSON(t, r, http.MethodPost, "/api/categories", token, map[string]any{"name": "Work"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/categories", token, map[string]any{"name": "work"})
	require.Equal(t, http.StatusConflict, w.Code)

	var resp struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "CONFLICT", resp.Code)
}

func TestCategories_ListAndDelete(t *testing.T) {
	r := setupCategoryRouter(t)
	token := bearerToken(t, "u-cat-list")

	w := doJSON(t, r, http.MethodPost, "/api/categories", token, map[string]any{"name": "Errands", "color": "#336699"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Category models.CategoryView `json:"category"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, r, http.MethodGet, "/api/categories", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed struct {
		Categories []models.CategoryView `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed.Categories, 1)
	require.Equal(t, "Errands", listed.Categories[0].Name)

	w = doJSON(t, r, http.MethodDelete, "/api/categories/"+created.Category.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// The list cache was invalidated by the delete.
	w = doJSON(t, r, http.MethodGet, "/api/categories", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Empty(t, listed.Categories)
}
