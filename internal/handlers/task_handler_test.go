package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"yarukoto-api/internal/auth"
	"yarukoto-api/internal/database"
	"yarukoto-api/internal/middleware"
	"yarukoto-api/internal/models"
	"yarukoto-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func setupTaskRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	database.DB = db

	r := gin.New()
	api := r.Group("/api", middleware.JWTAuthMiddleware())
	api.GET("/tasks/today", GetTodayTasks)
	api.GET("/tasks/stats/monthly", GetMonthlyTaskStats)
	api.POST("/tasks", CreateTask)
	api.POST("/tasks/:id/complete", CompleteTask)
	api.DELETE("/tasks/:id", DeleteTask)
	return r
}

func bearerToken(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.GenerateToken(userID, userID)
	require.NoError(t, err)
	return token
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateAndCompleteTask_Flow(t *testing.T) {
	r := setupTaskRouter(t)
	token := bearerToken(t, "u-flow")

	w := doJSON(t, r, http.MethodPost, "/api/tasks", token, map[string]any{
		"title": "Water the plants",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Task models.TaskView `json:"task"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Equal(t, models.StatusPending, created.Task.Status)
	require.Nil(t, created.Task.ScheduledAt)

	w = doJSON(t, r, http.MethodPost, "/api/tasks/"+created.Task.ID+"/complete", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var completed struct {
		Task models.TaskView `json:"task"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &completed))
	require.Equal(t, models.StatusCompleted, completed.Task.Status)
	require.NotNil(t, completed.Task.CompletedAt)

	// The undated completed task lands in the today view's completed bucket.
	w = doJSON(t, r, http.MethodGet, "/api/tasks/today", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var today models.TodayTasksView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &today))
	require.Len(t, today.Completed, 1)
	require.Equal(t, created.Task.ID, today.Completed[0].ID)
	require.Empty(t, today.Today)
}

func TestCreateTask_ValidationError(t *testing.T) {
	r := setupTaskRouter(t)
	token := bearerToken(t, "u-val")

	w := doJSON(t, r, http.MethodPost, "/api/tasks", token, map[string]any{
		"title": "   ",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "VALIDATION_ERROR", resp.Code)
	require.Equal(t, "title is required", resp.Error)
}

func TestCompleteTask_NotFound(t *testing.T) {
	r := setupTaskRouter(t)
	token := bearerToken(t, "u-missing")

	w := doJSON(t, r, http.MethodPost, "/api/tasks/t-nope/complete", token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	var resp struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "NOT_FOUND", resp.Code)
}

func TestTasks_RequireAuth(t *testing.T) {
	r := setupTaskRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/tasks/today", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetMonthlyTaskStats_BadMonth(t *testing.T) {
	r := setupTaskRouter(t)
	token := bearerToken(t, "u-stats")

	w := doJSON(t, r, http.MethodGet, "/api/tasks/stats/monthly?month=march", token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteTask_ReturnsID(t *testing.T) {
	r := setupTaskRouter(t)
	token := bearerToken(t, "u-del")

	w := doJSON(t, r, http.MethodPost, "/api/tasks", token, map[string]any{"title": "gone soon"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Task models.TaskView `json:"task"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, r, http.MethodDelete, "/api/tasks/"+created.Task.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, created.Task.ID, resp.ID)

	w = doJSON(t, r, http.MethodDelete, "/api/tasks/"+created.Task.ID, token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
