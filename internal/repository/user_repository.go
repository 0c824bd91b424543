package repository

import (
	"gorm.io/gorm"

	"taskflow/internal/models"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create inserts a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return translateError(r.db.Create(user).Error)
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// Exists reports whether a user with the given ID exists
func (r *GormUserRepository) Exists(id string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, translateError(err)
	}
	return count > 0, nil
}

// List returns all users ordered by name
func (r *GormUserRepository) List() ([]models.User, error) {
	var users []models.User
	if err := r.db.Order("name ASC").Find(&users).Error; err != nil {
		return nil, translateError(err)
	}
	return users, nil
}

// Save persists all fields of an already-loaded user
func (r *GormUserRepository) Save(user *models.User) error {
	result := r.db.Save(user)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a user with its referential cleanup in one transaction:
// tasks the user created are deleted, tasks assigned to them keep existing
// with the assignment cleared.
func (r *GormUserRepository) Delete(id string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Task{}).
			Where("assignee_id = ?", id).
			Update("assignee_id", nil).Error; err != nil {
			return err
		}

		if err := tx.Where("creator_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&models.User{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return translateError(err)
}
