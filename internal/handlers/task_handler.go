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

// monthlyStatsCache is shared across requests; entries expire on a short TTL
// (the calendar tolerates brief staleness, like the client it replaced).
var monthlyStatsCache = cache.New[string, models.MonthlyTaskStats]()

func newTaskService() *service.TaskService {
	return service.NewTaskService(database.GetDB(), monthlyStatsCache)
}

// GetTodayTasks handles GET /api/tasks/today
func GetTodayTasks(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	view, err := newTaskService().TodayView(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetTasksByDate handles GET /api/tasks/date/:date
func GetTasksByDate(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	in := validation.GetTasksByDateInput{Date: c.Param("date")}
	view, err := newTaskService().ByDate(c.Request.Context(), userID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// SearchTasks handles GET /api/tasks/search
// All filters are optional and conjunctive. categoryId and priority accept
// the literal "none" to select tasks without one; priority also accepts
// "all" as a no-op.
func SearchTasks(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	in := validation.SearchTasksInput{
		Keyword:  c.Query("keyword"),
		Status:   c.Query("status"),
		DateFrom: c.Query("dateFrom"),
		DateTo:   c.Query("dateTo"),
	}
	if v, exists := c.GetQuery("categoryId"); exists && v != "" {
		in.CategoryID = &v
	}
	if v, exists := c.GetQuery("priority"); exists && v != "" {
		in.Priority = &v
	}

	view, err := newTaskService().Search(c.Request.Context(), userID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetMonthlyTaskStats handles GET /api/tasks/stats/monthly?month=YYYY-MM
func GetMonthlyTaskStats(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	in := validation.MonthlyStatsInput{Month: c.Query("month")}
	stats, err := newTaskService().MonthlyStats(c.Request.Context(), userID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// CreateTask handles POST /api/tasks
func CreateTask(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var in validation.CreateTaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, apperr.Validation("invalid request body"))
		return
	}
	task, err := newTaskService().Create(c.Request.Context(), userID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	realtime.GetHub().Publish(userID, realtime.EventTaskCreated, task.ID)
	c.JSON(http.StatusCreated, gin.H{"task": task})
}

// UpdateTask handles PATCH /api/tasks/:id
// Absent fields are left unchanged; explicit null clears a nullable field.
func UpdateTask(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var in validation.UpdateTaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, apperr.Validation("invalid request body"))
		return
	}
	task, err := newTaskService().Update(c.Request.Context(), userID, c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	realtime.GetHub().Publish(userID, realtime.EventTaskUpdated, task.ID)
	c.JSON(http.StatusOK, gin.H{"task": task})
}

// CompleteTask handles POST /api/tasks/:id/complete
func CompleteTask(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	task, err := newTaskService().Complete(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	realtime.GetHub().Publish(userID, realtime.EventTaskCompleted, task.ID)
	c.JSON(http.StatusOK, gin.H{"task": task})
}

// UncompleteTask handles POST /api/tasks/:id/uncomplete
func UncompleteTask(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	task, err := newTaskService().Uncomplete(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	realtime.GetHub().Publish(userID, realtime.EventTaskUncompleted, task.ID)
	c.JSON(http.StatusOK, gin.H{"task": task})
}

// SkipTask handles POST /api/tasks/:id/skip
func SkipTask(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var in validation.SkipTaskInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&in); err != nil {
			respondError(c, apperr.Validation("invalid request body"))
			return
		}
	}
	task, err := newTaskService().Skip(c.Request.Context(), userID, c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	realtime.GetHub().Publish(userID, realtime.EventTaskSkipped, task.ID)
	c.JSON(http.StatusOK, gin.H{"task": task})
}

// UnskipTask handles POST /api/tasks/:id/unskip
func UnskipTask(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	task, err := newTaskService().Unskip(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	realtime.GetHub().Publish(userID, realtime.EventTaskUnskipped, task.ID)
	c.JSON(http.StatusOK, gin.H{"task": task})
}

// DeleteTask handles DELETE /api/tasks/:id
func DeleteTask(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	taskID := c.Param("id")
	if err := newTaskService().Delete(c.Request.Context(), userID, taskID); err != nil {
		respondError(c, err)
		return
	}
	realtime.GetHub().Publish(userID, realtime.EventTaskDeleted, taskID)
	c.JSON(http.StatusOK, gin.H{"id": taskID})
}
