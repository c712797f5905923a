package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"job-auction/internal/auctionerrors"
	"job-auction/utils"

	"github.com/gin-gonic/gin"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, "invalid_input", wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code, stable error code and message
func MapErrorToHTTP(err error) (int, string, string) {
	code := auctionerrors.Kind(err)
	switch {
	case errors.Is(err, auctionerrors.ErrNotFound):
		return http.StatusNotFound, code, "resource not found"
	case errors.Is(err, auctionerrors.ErrInvalidInput):
		return http.StatusBadRequest, code, "invalid request"
	case errors.Is(err, auctionerrors.ErrInvalidAmount):
		return http.StatusUnprocessableEntity, code, "invalid bid amount"
	case errors.Is(err, auctionerrors.ErrWindowClosed):
		return http.StatusConflict, code, "bidding window closed"
	case errors.Is(err, auctionerrors.ErrInvalidTransition):
		return http.StatusConflict, code, "job status transition not allowed"
	case errors.Is(err, auctionerrors.ErrInvalidState):
		return http.StatusConflict, code, "operation not valid for current job status"
	case errors.Is(err, auctionerrors.ErrConflict):
		return http.StatusConflict, code, "concurrent modification, please retry"
	default:
		return http.StatusInternalServerError, "internal", "internal server error"
	}
}

// HandleServiceError writes the mapped error response and logs it.
// Internal errors are logged in full but never echoed to the caller.
func HandleServiceError(c *gin.Context, handlerName string, err error, fields map[string]any) {
	status, code, message := MapErrorToHTTP(err)
	if fields == nil {
		fields = map[string]any{}
	}
	fields["handler"] = handlerName
	fields["error"] = err.Error()

	if status == http.StatusInternalServerError {
		utils.JSONError(c, status, code, errors.New(message), message)
		utils.Error(handlerName+": request failed", fields)
		return
	}
	utils.JSONError(c, status, code, fmt.Errorf("%s: %w", message, err), message)
	utils.Warn(handlerName+": request rejected", fields)
}

// ProviderID reads the calling provider from the request header.
// It writes a 400 response and returns false when the header is missing.
func ProviderID(c *gin.Context, handlerName string) (string, bool) {
	providerID := c.GetHeader(ProviderHeader)
	if providerID == "" {
		err := fmt.Errorf("%w - missing %s header", auctionerrors.ErrInvalidInput, ProviderHeader)
		utils.JSONError(c, http.StatusBadRequest, "invalid_input", err, "provider identity required")
		utils.Warn(handlerName+": missing provider header", nil)
		return "", false
	}
	return providerID, true
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
