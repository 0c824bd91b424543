package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"taskflow/internal/apperrors"
	"taskflow/internal/models"
	"taskflow/internal/repository"
)

// UserService handles user listing and profile management.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// ListUsers returns all users for the assignment picker.
func (s *UserService) ListUsers() ([]models.User, error) {
	users, err := s.userRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// UpdateProfileInput represents a partial profile update.
type UpdateProfileInput struct {
	Name  *string
	Email *string
}

// UpdateProfile applies a partial update to the user's own profile.
func (s *UserService) UpdateProfile(userID string, input UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name", "cannot be empty")
		}
		user.Name = name
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email == "" {
			return nil, apperrors.NewValidationError("email", "cannot be empty")
		}
		user.Email = email
	}

	if err := s.userRepo.Save(user); err != nil {
		var storeErr *apperrors.StoreError
		if errors.As(err, &storeErr) && storeErr.Code == apperrors.StoreCodeUniqueViolation {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// DeleteUser removes a user. Tasks they created are deleted with them; tasks
// merely assigned to them stay, unassigned.
func (s *UserService) DeleteUser(userID string) error {
	if err := s.userRepo.Delete(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
