package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"job-board-api/internal/api/middleware"
	"job-board-api/internal/authz"
	"job-board-api/internal/services"
	"job-board-api/internal/transport/dto"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Error codes returned in dto.ErrorResponse.Code.
const (
	CodeUnauthenticated      = "UNAUTHENTICATED"
	CodeForbidden            = "FORBIDDEN"
	CodeNotFound             = "NOT_FOUND"
	CodeInvalidArgument      = "INVALID_ARGUMENT"
	CodeConflict             = "CONFLICT"
	CodeDuplicateApplication = "DUPLICATE_APPLICATION"
	CodeRateLimited          = "RATE_LIMITED"
	CodeStorageUnavailable   = "STORAGE_UNAVAILABLE"
	CodeInternal             = "INTERNAL"
)

func FormatValidationErrors(err error) map[string]string {
	errorsMap := make(map[string]string)
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errorsMap["error"] = "Invalid validation error type"
		return errorsMap
	}
	for _, fieldError := range validationErrors {
		fieldName := fieldError.Field()
		errorsMap[fieldName] = fmt.Sprintf("Field validation for '%s' failed on the '%s' tag", fieldName, fieldError.Tag())
		switch fieldError.Tag() {
		case "required":
			errorsMap[fieldName] = fmt.Sprintf("Field '%s' is required", fieldName)
		case "max":
			errorsMap[fieldName] = fmt.Sprintf("Field '%s' must be at most %s characters long", fieldName, fieldError.Param())
		case "oneof":
			errorsMap[fieldName] = fmt.Sprintf("Field '%s' must be one of: %s", fieldName, fieldError.Param())
		case "gte", "lte":
			errorsMap[fieldName] = fmt.Sprintf("Field '%s' is out of range (%s %s)", fieldName, fieldError.Tag(), fieldError.Param())
		}
	}
	return errorsMap
}

// validationFailed writes a 400 with the per-field messages.
func validationFailed(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Validation failed",
		"code":    CodeInvalidArgument,
		"details": FormatValidationErrors(err),
	})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: msg, Code: CodeInvalidArgument})
}

// respondError maps service sentinels to a status code and error body.
// Internal errors are logged under op and hidden from the client.
func respondError(c *gin.Context, op string, err error) {
	status, code := http.StatusInternalServerError, CodeInternal
	msg := "Internal server error"

	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		status, code, msg = http.StatusUnauthorized, CodeUnauthenticated, "Unauthorized"
	case errors.Is(err, services.ErrForbidden):
		status, code, msg = http.StatusForbidden, CodeForbidden, err.Error()
	case errors.Is(err, services.ErrNotFound):
		status, code, msg = http.StatusNotFound, CodeNotFound, err.Error()
	case errors.Is(err, services.ErrValidation):
		status, code, msg = http.StatusBadRequest, CodeInvalidArgument, err.Error()
	case errors.Is(err, services.ErrConflict):
		status, code, msg = http.StatusConflict, CodeConflict, err.Error()
	case errors.Is(err, services.ErrRateLimited):
		status, code, msg = http.StatusTooManyRequests, CodeRateLimited, err.Error()
	case errors.Is(err, services.ErrStorageUnavailable):
		code, msg = CodeStorageUnavailable, "File storage is unavailable"
		log.Printf("%s: %v", op, err)
	default:
		log.Printf("%s: %v", op, err)
	}

	c.JSON(status, dto.ErrorResponse{Error: msg, Code: code})
}

// principal returns the caller or writes a 401.
func principal(c *gin.Context) (authz.Principal, bool) {
	p, err := middleware.GetPrincipalFromContext(c)
	if err != nil {
		log.Printf("Error getting principal from context: %v", err)
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized", Code: CodeUnauthenticated})
		return authz.Principal{}, false
	}
	return p, true
}

// uuidParam parses a path parameter or writes a 400.
func uuidParam(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, fmt.Sprintf("Invalid %s ID format", label))
		return uuid.Nil, false
	}
	return id, true
}
