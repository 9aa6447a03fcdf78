package api

import (
	"io"       // EOF detection for empty bodies
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"account_service/internal/service" // Account and login services

	"github.com/gin-gonic/gin"               // Gin web framework
	"github.com/go-playground/validator/v10" // Binding validation errors
	"github.com/pkg/errors"                  // Error inspection
)

// respondError writes the failure envelope shared by every endpoint
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"status": false, "message": message})
}

// bindingMessage turns a ShouldBindJSON error into a client facing message
func bindingMessage(err error) string {
	if errors.Is(err, io.EOF) {
		return "Please enter the details" // Empty body
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs)) // Names of the offending fields
		for _, fe := range verrs {
			fields = append(fields, strings.ToLower(fe.Field()))
		}
		return "Invalid field: " + strings.Join(fields, ", ")
	}
	return "Invalid request"
}

// writeStatus maps service errors from create and update to HTTP statuses
func writeStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidRole):
		return http.StatusUnauthorized // Invalid role is reported as unauthorized
	case errors.Is(err, service.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrCreateFailed),
		errors.Is(err, service.ErrRoleAssignFailed),
		errors.Is(err, service.ErrUpdateFailed),
		errors.Is(err, service.ErrRoleUpdateFailed):
		return http.StatusBadRequest // Row count mismatches are request level failures
	}
	switch service.ErrorKind(err) {
	case service.KindValidation, service.KindDuplicate:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeMessage hides driver details behind a generic message for unexpected failures
func writeMessage(err error, fallback string) string {
	if writeStatus(err) == http.StatusInternalServerError {
		return fallback
	}
	return err.Error()
}
