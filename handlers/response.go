package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"justicia-backend/engine"
	"justicia-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondServiceError maps service and engine errors onto HTTP responses.
// fallbackCode is used for unexpected failures.
func respondServiceError(c *gin.Context, err error, fallbackCode string) {
	switch {
	case errors.Is(err, engine.ErrMissingField):
		respondError(c, http.StatusBadRequest, "MISSING_FIELD", err.Error())
	case errors.Is(err, service.ErrInvalidFile):
		respondError(c, http.StatusBadRequest, "INVALID_FILE", err.Error())
	case errors.Is(err, service.ErrNotAnApprover):
		respondError(c, http.StatusForbidden, "NOT_AN_APPROVER", err.Error())
	case errors.Is(err, service.ErrCaseNotFound):
		respondError(c, http.StatusNotFound, "CASE_NOT_FOUND", "Case not found")
	case errors.Is(err, service.ErrDecisionNotFound):
		respondError(c, http.StatusNotFound, "DECISION_NOT_FOUND", "Decision not found")
	case errors.Is(err, service.ErrDocumentNotFound):
		respondError(c, http.StatusNotFound, "DOCUMENT_NOT_FOUND", "No archived document for this decision")
	case errors.Is(err, service.ErrFileNotFound):
		respondError(c, http.StatusNotFound, "FILE_NOT_FOUND", "File not found")
	case errors.Is(err, service.ErrUserNotFound):
		respondError(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	case errors.Is(err, engine.ErrLookupFailure):
		slog.ErrorContext(c.Request.Context(), "precedent lookup failed", "path", c.FullPath(), "error", err)
		respondError(c, http.StatusBadGateway, "PRECEDENT_LOOKUP_FAILED", err.Error())
	case errors.Is(err, engine.ErrInvalidTier):
		slog.ErrorContext(c.Request.Context(), "stored tier out of range", "path", c.FullPath(), "error", err)
		respondError(c, http.StatusInternalServerError, "INVALID_TIER", err.Error())
	default:
		slog.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		respondError(c, http.StatusInternalServerError, fallbackCode, err.Error())
	}
}

// parseID reads a UUID path parameter, answering 400 when it is malformed.
func parseID(c *gin.Context, param, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid "+what+" ID format")
		return uuid.Nil, false
	}
	return id, true
}
