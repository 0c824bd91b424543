package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"taskflow/internal/apperrors"
	"taskflow/internal/constants"
	"taskflow/internal/events"
	"taskflow/internal/logger"
	"taskflow/internal/models"
	"taskflow/internal/query"
	"taskflow/internal/repository"
)

var (
	// ErrTaskNotFound covers both a genuinely missing task and an existing
	// task the actor is not allowed to see. Callers must never be able to
	// tell the two apart.
	ErrTaskNotFound = errors.New("task not found")

	ErrAssigneeNotFound = &apperrors.ReferenceError{Message: "Assigned user does not exist"}
)

var taskPreloads = []string{"Creator", "Assignee"}

// TaskService handles task business logic. It holds no state across calls;
// every operation re-checks authorization against current stored rows.
type TaskService struct {
	taskRepo  repository.TaskRepository
	userRepo  repository.UserRepository
	publisher events.Publisher
}

// NewTaskService creates a new TaskService. publisher may be nil when event
// publishing is disabled.
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository, publisher events.Publisher) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		userRepo:  userRepo,
		publisher: publisher,
	}
}

// TaskListResult holds a page of tasks plus pagination metadata.
type TaskListResult struct {
	Tasks      []models.Task
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	Status      models.TaskStatus
	Priority    models.TaskPriority
	DueDate     *time.Time
	AssigneeID  *string
}

// UpdateTaskInput represents a partial update. A nil pointer means the field
// was absent from the patch; the Clear flags carry an explicit null, which is
// a distinct signal.
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Status        *models.TaskStatus
	Priority      *models.TaskPriority
	DueDate       *time.Time
	ClearDueDate  bool
	AssigneeID    *string
	ClearAssignee bool
}

// ListTasks returns the page of tasks visible to the actor that match the
// descriptor. The visibility predicate is AND'ed on top of every filter the
// descriptor contributes; no filter combination can widen the result beyond
// what the actor may see.
func (s *TaskService) ListTasks(actorID string, d query.TaskQueryDescriptor) (*TaskListResult, error) {
	pred := query.And(query.Visibility(actorID, query.OpRead), d.Predicate())

	tasks, total, err := s.taskRepo.List(pred, d)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	totalPages := int(total) / d.Limit
	if int(total)%d.Limit > 0 {
		totalPages++
	}

	return &TaskListResult{
		Tasks:      tasks,
		Total:      total,
		Page:       d.Page,
		Limit:      d.Limit,
		TotalPages: totalPages,
	}, nil
}

// SearchTasks returns up to 50 visible tasks whose title or description
// contains the query, case-insensitively, newest update first. Empty or
// all-whitespace input short-circuits to an empty result without touching
// the store.
func (s *TaskService) SearchTasks(actorID, rawQuery string) ([]models.Task, error) {
	term := strings.TrimSpace(rawQuery)
	if term == "" {
		return []models.Task{}, nil
	}
	if n := utf8.RuneCountInString(term); n < constants.MinSearchLength || n > constants.MaxSearchLength {
		return nil, apperrors.NewValidationError("q", "must be between 2 and 255 characters")
	}

	pred := query.And(query.Visibility(actorID, query.OpRead), query.SearchClause(term))

	tasks, err := s.taskRepo.Search(pred, constants.SearchResultLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search tasks: %w", err)
	}

	return tasks, nil
}

// GetTask returns a task the actor can see, with creator and assignee loaded
func (s *TaskService) GetTask(taskID, actorID string) (*models.Task, error) {
	task, err := s.taskRepo.FindOne(taskID, query.Visibility(actorID, query.OpRead), taskPreloads...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// CreateTask validates input, verifies the assignee reference, and persists a
// new task owned by the creator.
func (s *TaskService) CreateTask(creatorID string, input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title", "is required")
	}
	if utf8.RuneCountInString(title) > constants.MaxTitleLength {
		return nil, apperrors.NewValidationError("title", "must be at most 255 characters")
	}
	if utf8.RuneCountInString(input.Description) > constants.MaxDescriptionLength {
		return nil, apperrors.NewValidationError("description", "must be at most 2000 characters")
	}
	if input.Status != "" && !models.ValidTaskStatus(input.Status) {
		return nil, apperrors.NewValidationError("status", "must be one of PENDING, IN_PROGRESS, COMPLETED")
	}
	if input.Priority != "" && !models.ValidTaskPriority(input.Priority) {
		return nil, apperrors.NewValidationError("priority", "must be one of LOW, MEDIUM, HIGH")
	}
	if input.DueDate != nil && input.DueDate.Before(time.Now()) {
		return nil, apperrors.NewValidationError("dueDate", "must not be in the past")
	}

	// Phase one: validate cross-entity references. Skipped entirely when no
	// assignee is supplied.
	if input.AssigneeID != nil {
		if err := s.ensureUserExists(*input.AssigneeID); err != nil {
			return nil, err
		}
	}

	if input.Status == "" {
		input.Status = models.TaskStatusPending
	}
	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	}

	task := &models.Task{
		Title:       title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
		CreatorID:   creatorID,
		AssigneeID:  input.AssigneeID,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	created, err := s.taskRepo.FindOne(task.ID, query.Visibility(creatorID, query.OpRead), taskPreloads...)
	if err != nil {
		return nil, fmt.Errorf("failed to reload task: %w", err)
	}

	s.publish(events.TaskCreated, created, creatorID)
	return created, nil
}

// UpdateTask applies a partial update to a task the actor may modify
func (s *TaskService) UpdateTask(taskID, actorID string, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindOne(taskID, query.Visibility(actorID, query.OpUpdate))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apperrors.NewValidationError("title", "cannot be empty")
		}
		if utf8.RuneCountInString(title) > constants.MaxTitleLength {
			return nil, apperrors.NewValidationError("title", "must be at most 255 characters")
		}
		task.Title = title
	}
	if input.Description != nil {
		if utf8.RuneCountInString(*input.Description) > constants.MaxDescriptionLength {
			return nil, apperrors.NewValidationError("description", "must be at most 2000 characters")
		}
		task.Description = *input.Description
	}
	if input.Status != nil {
		if !models.ValidTaskStatus(*input.Status) {
			return nil, apperrors.NewValidationError("status", "must be one of PENDING, IN_PROGRESS, COMPLETED")
		}
		task.Status = *input.Status
	}
	if input.Priority != nil {
		if !models.ValidTaskPriority(*input.Priority) {
			return nil, apperrors.NewValidationError("priority", "must be one of LOW, MEDIUM, HIGH")
		}
		task.Priority = *input.Priority
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		if input.DueDate.Before(time.Now()) {
			return nil, apperrors.NewValidationError("dueDate", "must not be in the past")
		}
		task.DueDate = input.DueDate
	}
	if input.ClearAssignee {
		task.AssigneeID = nil
	} else if input.AssigneeID != nil {
		if err := s.ensureUserExists(*input.AssigneeID); err != nil {
			return nil, err
		}
		task.AssigneeID = input.AssigneeID
	}

	if err := s.taskRepo.Save(task); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	updated, err := s.taskRepo.FindOne(task.ID, query.Visibility(actorID, query.OpRead), taskPreloads...)
	if err != nil {
		return nil, fmt.Errorf("failed to reload task: %w", err)
	}

	s.publish(events.TaskUpdated, updated, actorID)
	return updated, nil
}

// UpdateTaskStatus sets the status of a task the actor may modify. Any of the
// three values can follow any other; there is no transition graph.
func (s *TaskService) UpdateTaskStatus(taskID, actorID string, status models.TaskStatus) (*models.Task, error) {
	if !models.ValidTaskStatus(status) {
		return nil, apperrors.NewValidationError("status", "must be one of PENDING, IN_PROGRESS, COMPLETED")
	}

	task, err := s.taskRepo.FindOne(taskID, query.Visibility(actorID, query.OpStatusUpdate))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	task.Status = status

	if err := s.taskRepo.Save(task); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}

	updated, err := s.taskRepo.FindOne(task.ID, query.Visibility(actorID, query.OpRead), taskPreloads...)
	if err != nil {
		return nil, fmt.Errorf("failed to reload task: %w", err)
	}

	s.publish(events.TaskUpdated, updated, actorID)
	return updated, nil
}

// DeleteTask hard-deletes a task. Only the creator may delete; an assignee
// gets the same not-found outcome as a stranger.
func (s *TaskService) DeleteTask(taskID, actorID string) error {
	task, err := s.taskRepo.FindOne(taskID, query.Visibility(actorID, query.OpDelete))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if err := s.taskRepo.Delete(taskID, query.Visibility(actorID, query.OpDelete)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.publish(events.TaskDeleted, task, actorID)
	return nil
}

// ensureUserExists verifies an assignee reference against current rows
func (s *TaskService) ensureUserExists(userID string) error {
	exists, err := s.userRepo.Exists(userID)
	if err != nil {
		return fmt.Errorf("failed to verify assignee: %w", err)
	}
	if !exists {
		return ErrAssigneeNotFound
	}
	return nil
}

func (s *TaskService) publish(event string, task *models.Task, actorID string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTaskEvent(event, task, actorID); err != nil {
		logger.Error("failed to publish task event", err)
	}
}
