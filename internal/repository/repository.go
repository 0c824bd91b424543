package repository

import (
	"taskflow/internal/models"
	"taskflow/internal/query"
)

// TaskRepository defines the interface for task data access. Every read and
// write that touches existing rows takes an explicit predicate so the caller's
// visibility scoping is applied inside the store, not after it.
type TaskRepository interface {
	// Create inserts a new task.
	Create(task *models.Task) error

	// FindOne returns the task matching id AND pred, with optional
	// preloading. A row hidden by pred and a missing row are
	// indistinguishable: both return gorm.ErrRecordNotFound.
	FindOne(id string, pred query.Predicate, preload ...string) (*models.Task, error)

	// List retrieves tasks matching pred with the descriptor's ordering and
	// pagination, plus the total match count. The count and the page fetch
	// are two independent reads with no shared transaction, so the total may
	// drift from the returned page under concurrent writes. That weak
	// consistency is accepted; do not wrap this in a transaction.
	List(pred query.Predicate, d query.TaskQueryDescriptor) ([]models.Task, int64, error)

	// Search retrieves at most limit tasks matching pred, newest update
	// first.
	Search(pred query.Predicate, limit int) ([]models.Task, error)

	// Save persists all fields of an already-loaded task. If the row
	// vanished since it was fetched, gorm.ErrRecordNotFound is returned
	// rather than silently succeeding.
	Save(task *models.Task) error

	// Delete hard-deletes the task matching id AND pred. No matching row
	// yields gorm.ErrRecordNotFound.
	Delete(id string, pred query.Predicate) error
}

// UserRepository defines the interface for user data access.
type UserRepository interface {
	// Create inserts a new user.
	Create(user *models.User) error

	// FindByID finds a user by ID.
	FindByID(id string) (*models.User, error)

	// FindByEmail finds a user by email. Emails are stored lowercase; the
	// caller is expected to normalize before lookup.
	FindByEmail(email string) (*models.User, error)

	// Exists reports whether a user with the given ID exists.
	Exists(id string) (bool, error)

	// List returns all users ordered by name.
	List() ([]models.User, error)

	// Save persists all fields of an already-loaded user.
	Save(user *models.User) error

	// Delete removes a user, deletes the tasks they created and clears
	// their assignments, all in one transaction.
	Delete(id string) error
}
