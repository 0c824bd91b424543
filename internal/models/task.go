package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
)

// ValidTaskStatus reports whether s is one of the known status values.
func ValidTaskStatus(s TaskStatus) bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
)

// ValidTaskPriority reports whether p is one of the known priority values.
func ValidTaskPriority(p TaskPriority) bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

type Task struct {
	ID          string       `gorm:"type:varchar(36);primarykey" json:"id"`
	Title       string       `gorm:"type:varchar(255);not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	Status      TaskStatus   `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	Priority    TaskPriority `gorm:"type:varchar(20);not null;default:'MEDIUM';index" json:"priority"`
	DueDate     *time.Time   `gorm:"index" json:"due_date"`
	CreatorID   string       `gorm:"type:varchar(36);not null;index" json:"creator_id"`
	AssigneeID  *string      `gorm:"type:varchar(36);index" json:"assignee_id"`
	CreatedAt   time.Time    `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`

	// Relations
	Creator  User  `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Assignee *User `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}
