package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskflow/internal/apperrors"
	"taskflow/internal/dto"
	"taskflow/internal/logger"
	"taskflow/internal/middleware"
	"taskflow/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// AuthResponse carries the registered/authenticated user and their token.
type AuthResponse struct {
	User  dto.UserDTO `json:"user"`
	Token string      `json:"token"`
}

// Register creates a new user and returns a token for it.
func (h *AuthHandler) Register(c *gin.Context) {
	type RegisterRequest struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
		Name     string `json:"name" binding:"required"`
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.Register(services.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	apperrors.OK(c, http.StatusCreated, AuthResponse{User: dto.ToUserDTO(*user), Token: token})
}

// Login authenticates a user and returns a token.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.Login(services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	apperrors.OK(c, http.StatusOK, AuthResponse{User: dto.ToUserDTO(*user), Token: token})
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	user, err := h.authService.GetUser(userID)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	apperrors.OK(c, http.StatusOK, dto.ToUserDTO(*user))
}

func respondAuthError(c *gin.Context, err error) {
	var validationErr *apperrors.ValidationError

	switch {
	case errors.As(err, &validationErr):
		apperrors.BadRequest(c, validationErr.Error())
	case errors.Is(err, services.ErrEmailTaken):
		apperrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		apperrors.Unauthorized(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		apperrors.NotFound(c, err.Error())
	default:
		logger.Error("auth operation failed", err)
		apperrors.InternalError(c)
	}
}
