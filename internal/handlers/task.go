package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taskflow/internal/apperrors"
	"taskflow/internal/dto"
	"taskflow/internal/logger"
	"taskflow/internal/middleware"
	"taskflow/internal/models"
	"taskflow/internal/query"
	"taskflow/internal/services"
)

// TaskHandler coordinates task-related HTTP handlers. It only binds input,
// delegates to the service and translates typed errors into status codes.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// ListTasks returns the page of tasks visible to the current user.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	raw := query.RawTaskFilters{
		Status:      c.Query("status"),
		Priority:    c.Query("priority"),
		AssigneeID:  c.Query("assigneeId"),
		CreatorID:   c.Query("creatorId"),
		DueDateFrom: c.Query("dueDateFrom"),
		DueDateTo:   c.Query("dueDateTo"),
		Search:      c.Query("search"),
		Page:        c.Query("page"),
		Limit:       c.Query("limit"),
		SortBy:      c.Query("sortBy"),
		SortOrder:   c.Query("sortOrder"),
	}

	descriptor, err := query.Normalize(raw)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	result, err := h.taskService.ListTasks(userID, descriptor)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	apperrors.OK(c, http.StatusOK, dto.ToTaskListResponse(
		result.Tasks, result.Total, result.Page, result.Limit, result.TotalPages,
	))
}

// SearchTasks returns up to 50 visible tasks matching the q parameter.
func (h *TaskHandler) SearchTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	q := c.Query("q")

	tasks, err := h.taskService.SearchTasks(userID, q)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	items := dto.ToTaskDTOs(tasks)
	apperrors.OK(c, http.StatusOK, dto.TaskSearchResponse{
		Tasks: items,
		Query: q,
		Count: len(items),
	})
}

// GetTask returns a specific task by ID.
func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	task, err := h.taskService.GetTask(c.Param("id"), userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	apperrors.OK(c, http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a new task owned by the current user.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	type CreateTaskRequest struct {
		Title       string     `json:"title" binding:"required"`
		Description string     `json:"description"`
		Status      string     `json:"status"`
		Priority    string     `json:"priority"`
		DueDate     *time.Time `json:"due_date"`
		AssigneeID  *string    `json:"assignee_id"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(userID, services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      models.TaskStatus(req.Status),
		Priority:    models.TaskPriority(req.Priority),
		DueDate:     req.DueDate,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	apperrors.OK(c, http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial update. The body is bound as a raw map so an
// explicitly-null assignee_id or due_date can be told apart from an absent
// field.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		apperrors.BadRequest(c, "Invalid request body")
		return
	}

	input, err := patchFromRaw(raw)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	task, err := h.taskService.UpdateTask(c.Param("id"), userID, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	apperrors.OK(c, http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdateTaskStatus sets the task status.
func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	type UpdateStatusRequest struct {
		Status string `json:"status" binding:"required"`
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "status is required")
		return
	}

	task, err := h.taskService.UpdateTaskStatus(c.Param("id"), userID, models.TaskStatus(req.Status))
	if err != nil {
		respondTaskError(c, err)
		return
	}

	apperrors.OK(c, http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask deletes a task. Creator-only.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	if err := h.taskService.DeleteTask(c.Param("id"), userID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func patchFromRaw(raw map[string]any) (services.UpdateTaskInput, error) {
	var input services.UpdateTaskInput

	if v, ok := raw["title"]; ok {
		s, ok := v.(string)
		if !ok {
			return input, apperrors.NewValidationError("title", "must be a string")
		}
		input.Title = &s
	}
	if v, ok := raw["description"]; ok {
		s, ok := v.(string)
		if !ok {
			return input, apperrors.NewValidationError("description", "must be a string")
		}
		input.Description = &s
	}
	if v, ok := raw["status"]; ok {
		s, ok := v.(string)
		if !ok {
			return input, apperrors.NewValidationError("status", "must be a string")
		}
		status := models.TaskStatus(s)
		input.Status = &status
	}
	if v, ok := raw["priority"]; ok {
		s, ok := v.(string)
		if !ok {
			return input, apperrors.NewValidationError("priority", "must be a string")
		}
		priority := models.TaskPriority(s)
		input.Priority = &priority
	}
	if v, ok := raw["due_date"]; ok {
		if v == nil {
			input.ClearDueDate = true
		} else {
			s, ok := v.(string)
			if !ok {
				return input, apperrors.NewValidationError("dueDate", "must be an ISO 8601 date or null")
			}
			parsed, err := time.Parse(time.RFC3339, s)
			if err != nil {
				return input, apperrors.NewValidationError("dueDate", "must be an ISO 8601 date or null")
			}
			input.DueDate = &parsed
		}
	}
	if v, ok := raw["assignee_id"]; ok {
		if v == nil {
			input.ClearAssignee = true
		} else {
			s, ok := v.(string)
			if !ok {
				return input, apperrors.NewValidationError("assigneeId", "must be a string or null")
			}
			input.AssigneeID = &s
		}
	}

	return input, nil
}

func respondTaskError(c *gin.Context, err error) {
	var validationErr *apperrors.ValidationError
	var referenceErr *apperrors.ReferenceError

	switch {
	case errors.As(err, &validationErr):
		apperrors.BadRequest(c, validationErr.Error())
	case errors.As(err, &referenceErr):
		apperrors.BadRequest(c, referenceErr.Message)
	case errors.Is(err, services.ErrTaskNotFound):
		apperrors.NotFound(c, "Task not found")
	default:
		logger.Error("task operation failed", err)
		apperrors.InternalError(c)
	}
}
