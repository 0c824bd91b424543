package apperrors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the error payload inside the response envelope.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Envelope is the uniform response shape for every endpoint.
type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// OK sends a success envelope.
func OK(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

// Fail sends an error envelope.
func Fail(c *gin.Context, status int, code, message string) {
	c.JSON(status, Envelope{Success: false, Error: &ErrorBody{Code: code, Message: message}})
}

// Unauthorized sends a 401 response.
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	Fail(c, http.StatusUnauthorized, CodeUnauthorized, message)
}

// Forbidden sends a 403 response.
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Access denied"
	}
	Fail(c, http.StatusForbidden, CodeForbidden, message)
}

// NotFound sends a 404 response.
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	Fail(c, http.StatusNotFound, CodeNotFound, message)
}

// BadRequest sends a 400 response.
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	Fail(c, http.StatusBadRequest, CodeValidationError, message)
}

// InternalError sends a 500 response with a generic message. Detail belongs
// in the server log, not the response.
func InternalError(c *gin.Context) {
	Fail(c, http.StatusInternalServerError, CodeInternalError, "Internal server error")
}
