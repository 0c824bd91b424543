package dto

import (
	"time"

	"taskflow/internal/models"
)

// UserDTO is the summary projection of a user. PasswordHash is never part of
// any projection.
type UserDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TaskDTO represents a task in API responses, joined with creator/assignee
// summaries when they were preloaded.
type TaskDTO struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	DueDate     *time.Time          `json:"due_date"`
	CreatorID   string              `json:"creator_id"`
	AssigneeID  *string             `json:"assignee_id"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Creator     *UserDTO            `json:"creator,omitempty"`
	Assignee    *UserDTO            `json:"assignee,omitempty"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO `json:"tasks"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"totalPages"`
}

// TaskSearchResponse represents the dedicated search result
type TaskSearchResponse struct {
	Tasks []TaskDTO `json:"tasks"`
	Query string    `json:"query"`
	Count int       `json:"count"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
}

// ToUserDTOs converts a slice of users
func ToUserDTOs(users []models.User) []UserDTO {
	out := make([]UserDTO, len(users))
	for i, u := range users {
		out[i] = ToUserDTO(u)
	}
	return out
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		DueDate:     task.DueDate,
		CreatorID:   task.CreatorID,
		AssigneeID:  task.AssigneeID,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	// Include creator if preloaded
	if task.Creator.ID != "" {
		creator := ToUserDTO(task.Creator)
		dto.Creator = &creator
	}

	// Include assignee if preloaded
	if task.Assignee != nil && task.Assignee.ID != "" {
		assignee := ToUserDTO(*task.Assignee)
		dto.Assignee = &assignee
	}

	return dto
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	out := make([]TaskDTO, len(tasks))
	for i, t := range tasks {
		out[i] = ToTaskDTO(t)
	}
	return out
}

// ToTaskListResponse builds the paginated list payload
func ToTaskListResponse(tasks []models.Task, total int64, page, limit, totalPages int) TaskListResponse {
	return TaskListResponse{
		Tasks:      ToTaskDTOs(tasks),
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}
