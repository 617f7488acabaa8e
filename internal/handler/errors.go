package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lumenblog/auth-service/internal/dto"
	"github.com/lumenblog/auth-service/internal/service"
)

// respondServiceError maps the service error taxonomy onto HTTP once, here.
// Authentication failures are collapsed into one generic 401 so a caller
// cannot learn which check failed; conflicts carry a stable machine-readable
// code; transient failures are 5xx and safe to retry.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrInvalidPassword),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrTokenExpired):
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "Invalid credentials or token",
		})

	case errors.Is(err, service.ErrEmailTaken):
		respondConflict(c, "email_taken", "Email is already in use")

	case errors.Is(err, service.ErrHandleTaken):
		respondConflict(c, "handle_taken", "Handle is already in use")

	case errors.Is(err, service.ErrAlreadyLinked):
		respondConflict(c, "already_linked", "OAuth account is already linked")

	case errors.Is(err, service.ErrLastAuthMethod):
		respondConflict(c, "last_auth_method", "Cannot remove the last authentication method")

	case errors.Is(err, service.ErrNotLinked):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error:   "Not found",
			Message: "No connection exists for this provider",
			Code:    "not_linked",
		})

	case errors.Is(err, service.ErrEmailNotProvided):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Bad request",
			Message: "The OAuth provider did not provide an email address",
			Code:    "email_not_provided",
		})

	case errors.Is(err, service.ErrProviderUnavailable),
		errors.Is(err, service.ErrTransient):
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{
			Error:   "Service unavailable",
			Message: "Temporary failure, please retry",
		})

	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: "Something went wrong",
		})
	}
}

func respondConflict(c *gin.Context, code, message string) {
	c.JSON(http.StatusConflict, dto.ErrorResponse{
		Error:   "Conflict",
		Message: message,
		Code:    code,
	})
}

func respondValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error:   "Validation failed",
		Message: err.Error(),
	})
}
