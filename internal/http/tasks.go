package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"task-tracker/internal/domain"
	"task-tracker/internal/service"
)

type createTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// updateTaskRequest distinguishes an absent description from an explicit null.
type updateTaskRequest struct {
	Title       *string        `json:"title"`
	Description optionalString `json:"description"`
	Completed   *bool          `json:"completed"`
}

type optionalString struct {
	Set   bool
	Value *string
}

func (o *optionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

func (r updateTaskRequest) patch() domain.TaskPatch {
	return domain.TaskPatch{
		Title:          r.Title,
		Description:    r.Description.Value,
		SetDescription: r.Description.Set,
		Completed:      r.Completed,
	}
}

type TaskResponse struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Completed   bool    `json:"completed"`
	UserID      *int64  `json:"userId"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

type TaskStatsResponse struct {
	Total     int64 `json:"total"`
	Completed int64 `json:"completed"`
	Pending   int64 `json:"pending"`
}

func (h *Handler) listTasks(c *gin.Context) {
	tasks, err := h.tasks.ListTasks(c.Request.Context())
	if err != nil {
		h.taskError(c, err, "Failed to fetch tasks")
		return
	}
	c.JSON(http.StatusOK, tasksToResponse(tasks))
}

func (h *Handler) getTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	task, err := h.tasks.GetTask(c.Request.Context(), id)
	if err != nil {
		h.taskError(c, err, "Failed to fetch task")
		return
	}
	c.JSON(http.StatusOK, taskToResponse(*task))
}

func (h *Handler) createTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	var owner *int64
	if id, ok := IdentityFrom(c); ok {
		owner = &id.UserID
	}

	task, err := h.tasks.CreateTask(c.Request.Context(), req.Title, req.Description, owner)
	if err != nil {
		h.taskError(c, err, "Failed to create task")
		return
	}
	c.JSON(http.StatusCreated, taskToResponse(*task))
}

func (h *Handler) updateTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	// a missing body is an empty patch
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	task, err := h.tasks.UpdateTask(c.Request.Context(), id, req.patch())
	if err != nil {
		h.taskError(c, err, "Failed to update task")
		return
	}
	c.JSON(http.StatusOK, taskToResponse(*task))
}

func (h *Handler) deleteTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	if err := h.tasks.DeleteTask(c.Request.Context(), id); err != nil {
		h.taskError(c, err, "Failed to delete task")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) taskStats(c *gin.Context) {
	stats, err := h.tasks.Stats(c.Request.Context())
	if err != nil {
		h.taskError(c, err, "Failed to fetch task statistics")
		return
	}
	c.JSON(http.StatusOK, TaskStatsResponse{
		Total:     stats.Total,
		Completed: stats.Completed,
		Pending:   stats.Pending,
	})
}

func taskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return 0, false
	}
	return id, true
}

// taskError writes the task API's {"error": ...} body. Unexpected failures are
// logged and answered with the generic message for the operation.
func (h *Handler) taskError(c *gin.Context, err error, internalMsg string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
	default:
		h.log(c).WithError(err).Error(internalMsg)
		c.JSON(http.StatusInternalServerError, gin.H{"error": internalMsg})
	}
}

func tasksToResponse(tasks []domain.Task) []TaskResponse {
	resp := make([]TaskResponse, len(tasks))
	for i := range tasks {
		resp[i] = taskToResponse(tasks[i])
	}
	return resp
}

func taskToResponse(task domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		UserID:      task.UserID,
		CreatedAt:   task.CreatedAt.UTC().Format(isoMillis),
		UpdatedAt:   task.UpdatedAt.UTC().Format(isoMillis),
	}
}
