package query

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"taskflow/internal/apperrors"
	"taskflow/internal/constants"
	"taskflow/internal/models"
)

// RawTaskFilters holds the loosely-typed filter parameters exactly as they
// arrive from the transport layer.
type RawTaskFilters struct {
	Status      string
	Priority    string
	AssigneeID  string
	CreatorID   string
	DueDateFrom string
	DueDateTo   string
	Search      string
	Page        string
	Limit       string
	SortBy      string
	SortOrder   string
}

// TaskQueryDescriptor is the canonical, fully resolved form of a list query.
// Engines only ever see this type, never raw strings.
type TaskQueryDescriptor struct {
	Status      *models.TaskStatus
	Priority    *models.TaskPriority
	AssigneeID  *string
	CreatorID   *string
	DueDateFrom *time.Time
	DueDateTo   *time.Time
	Search      string
	Page        int
	Limit       int
	SortBy      string
	SortOrder   string
}

var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"dueDate":   "due_date",
	"title":     "title",
	"priority":  "priority",
	"status":    "status",
}

// Normalize validates raw filters and resolves defaults into a descriptor.
func Normalize(raw RawTaskFilters) (TaskQueryDescriptor, error) {
	d := TaskQueryDescriptor{
		Page:      constants.MinPage,
		Limit:     constants.DefaultPageSize,
		SortBy:    "created_at",
		SortOrder: "desc",
	}

	if raw.Status != "" {
		status := models.TaskStatus(raw.Status)
		if !models.ValidTaskStatus(status) {
			return d, apperrors.NewValidationError("status", "must be one of PENDING, IN_PROGRESS, COMPLETED")
		}
		d.Status = &status
	}

	if raw.Priority != "" {
		priority := models.TaskPriority(raw.Priority)
		if !models.ValidTaskPriority(priority) {
			return d, apperrors.NewValidationError("priority", "must be one of LOW, MEDIUM, HIGH")
		}
		d.Priority = &priority
	}

	if raw.AssigneeID != "" {
		assigneeID := raw.AssigneeID
		d.AssigneeID = &assigneeID
	}
	if raw.CreatorID != "" {
		creatorID := raw.CreatorID
		d.CreatorID = &creatorID
	}

	if raw.DueDateFrom != "" {
		from, err := parseDate(raw.DueDateFrom)
		if err != nil {
			return d, apperrors.NewValidationError("dueDateFrom", "must be an ISO 8601 date")
		}
		d.DueDateFrom = &from
	}
	if raw.DueDateTo != "" {
		to, err := parseDate(raw.DueDateTo)
		if err != nil {
			return d, apperrors.NewValidationError("dueDateTo", "must be an ISO 8601 date")
		}
		d.DueDateTo = &to
	}

	if raw.Search != "" {
		search := strings.TrimSpace(raw.Search)
		if n := utf8.RuneCountInString(search); n < constants.MinSearchLength || n > constants.MaxSearchLength {
			return d, apperrors.NewValidationError("search", "must be between 2 and 255 characters")
		}
		d.Search = search
	}

	if raw.Page != "" {
		page, err := strconv.Atoi(raw.Page)
		if err != nil || page < constants.MinPage {
			return d, apperrors.NewValidationError("page", "must be an integer greater than or equal to 1")
		}
		d.Page = page
	}

	if raw.Limit != "" {
		limit, err := strconv.Atoi(raw.Limit)
		if err != nil || limit < constants.MinPageSize || limit > constants.MaxPageSize {
			return d, apperrors.NewValidationError("limit", "must be an integer between 1 and 100")
		}
		d.Limit = limit
	}

	if raw.SortBy != "" {
		column, ok := sortColumns[raw.SortBy]
		if !ok {
			return d, apperrors.NewValidationError("sortBy", "must be one of createdAt, updatedAt, dueDate, title, priority, status")
		}
		d.SortBy = column
	}

	if raw.SortOrder != "" {
		order := strings.ToLower(raw.SortOrder)
		if order != "asc" && order != "desc" {
			return d, apperrors.NewValidationError("sortOrder", "must be asc or desc")
		}
		d.SortOrder = order
	}

	return d, nil
}

// Predicate builds the structural filter predicate from the descriptor. The
// search clause is OR'd internally but AND'ed against everything else. A
// descriptor with no filters yields nil.
func (d TaskQueryDescriptor) Predicate() Predicate {
	var nodes []Predicate
	if d.Status != nil {
		nodes = append(nodes, Eq("status", *d.Status))
	}
	if d.Priority != nil {
		nodes = append(nodes, Eq("priority", *d.Priority))
	}
	if d.AssigneeID != nil {
		nodes = append(nodes, Eq("assignee_id", *d.AssigneeID))
	}
	if d.CreatorID != nil {
		nodes = append(nodes, Eq("creator_id", *d.CreatorID))
	}
	if d.DueDateFrom != nil {
		nodes = append(nodes, Gte("due_date", *d.DueDateFrom))
	}
	if d.DueDateTo != nil {
		nodes = append(nodes, Lte("due_date", *d.DueDateTo))
	}
	if d.Search != "" {
		nodes = append(nodes, SearchClause(d.Search))
	}
	return And(nodes...)
}

// Offset returns the row offset for the current page.
func (d TaskQueryDescriptor) Offset() int {
	return (d.Page - 1) * d.Limit
}

// OrderClause returns the ORDER BY expression for the descriptor. SortBy is
// always one of the whitelisted column names, never caller input.
func (d TaskQueryDescriptor) OrderClause() string {
	order := "DESC"
	if d.SortOrder == "asc" {
		order = "ASC"
	}
	return d.SortBy + " " + order
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
