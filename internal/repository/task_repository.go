package repository

import (
	"gorm.io/gorm"

	"taskflow/internal/models"
	"taskflow/internal/query"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create inserts a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return translateError(r.db.Create(task).Error)
}

// FindOne returns the task matching id AND pred with optional preloading
func (r *GormTaskRepository) FindOne(id string, pred query.Predicate, preload ...string) (*models.Task, error) {
	var task models.Task

	q := r.db.Where("id = ?", id)
	if pred != nil {
		sql, args := pred.Compile()
		q = q.Where(sql, args...)
	}
	for _, p := range preload {
		q = q.Preload(p)
	}

	if err := q.First(&task).Error; err != nil {
		return nil, translateError(err)
	}

	return &task, nil
}

// List retrieves tasks matching pred plus the total match count. The count
// and the page fetch are deliberately two independent reads; see the
// interface contract.
func (r *GormTaskRepository) List(pred query.Predicate, d query.TaskQueryDescriptor) ([]models.Task, int64, error) {
	var sql string
	var args []any
	if pred != nil {
		sql, args = pred.Compile()
	}

	countQuery := r.db.Model(&models.Task{})
	if sql != "" {
		countQuery = countQuery.Where(sql, args...)
	}

	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	listQuery := r.db.Model(&models.Task{})
	if sql != "" {
		listQuery = listQuery.Where(sql, args...)
	}

	var tasks []models.Task
	err := listQuery.
		Order(d.OrderClause()).
		Offset(d.Offset()).
		Limit(d.Limit).
		Preload("Creator").
		Preload("Assignee").
		Find(&tasks).Error
	if err != nil {
		return nil, 0, translateError(err)
	}

	return tasks, total, nil
}

// Search retrieves at most limit tasks matching pred, newest update first
func (r *GormTaskRepository) Search(pred query.Predicate, limit int) ([]models.Task, error) {
	q := r.db.Model(&models.Task{})
	if pred != nil {
		sql, args := pred.Compile()
		q = q.Where(sql, args...)
	}

	var tasks []models.Task
	err := q.
		Order("updated_at DESC").
		Limit(limit).
		Preload("Creator").
		Preload("Assignee").
		Find(&tasks).Error
	if err != nil {
		return nil, translateError(err)
	}

	return tasks, nil
}

// Save persists all fields of an already-loaded task
func (r *GormTaskRepository) Save(task *models.Task) error {
	result := r.db.Save(task)
	if result.Error != nil {
		return translateError(result.Error)
	}
	// The row was deleted between the authorization fetch and this write.
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete hard-deletes the task matching id AND pred
func (r *GormTaskRepository) Delete(id string, pred query.Predicate) error {
	q := r.db.Where("id = ?", id)
	if pred != nil {
		sql, args := pred.Compile()
		q = q.Where(sql, args...)
	}

	result := q.Delete(&models.Task{})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
