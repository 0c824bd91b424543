package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskflow/internal/apperrors"
	"taskflow/internal/dto"
	"taskflow/internal/middleware"
	"taskflow/internal/services"
)

// UserHandler coordinates user-related HTTP handlers.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// ListUsers returns all users as summary projections for the assignment
// picker.
func (h *UserHandler) ListUsers(c *gin.Context) {
	if _, exists := middleware.GetUserID(c); !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	users, err := h.userService.ListUsers()
	if err != nil {
		respondAuthError(c, err)
		return
	}

	apperrors.OK(c, http.StatusOK, dto.ToUserDTOs(users))
}

// UpdateProfile updates the current user's name and/or email.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	type UpdateProfileRequest struct {
		Name  *string `json:"name"`
		Email *string `json:"email"`
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.UpdateProfile(userID, services.UpdateProfileInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	apperrors.OK(c, http.StatusOK, dto.ToUserDTO(*user))
}

// DeleteAccount removes the current user, their created tasks and their
// assignments.
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	if err := h.userService.DeleteUser(userID); err != nil {
		respondAuthError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
