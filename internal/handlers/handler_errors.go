package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/erpcore/ledger_governance/internal/apperrors"
)

// respondWithError maps application errors to HTTP statuses. Error context
// maps ride along in the body so callers can see which rule tripped.
func respondWithError(c *gin.Context, logger *slog.Logger, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrAuthorityViolation):
		status = http.StatusForbidden
	case errors.Is(err, apperrors.ErrIdempotency), errors.Is(err, apperrors.ErrDuplicate):
		status = http.StatusConflict
	case errors.Is(err, apperrors.ErrConcurrency):
		status = http.StatusConflict
	case errors.Is(err, apperrors.ErrGovernance), errors.Is(err, apperrors.ErrQuarantine):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		logger.Error("Request failed", slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}

	logger.Warn("Request rejected", slog.Int("status", status), slog.String("error", err.Error()))
	body := gin.H{"error": err.Error()}
	if errCtx := apperrors.ContextOf(err); len(errCtx) > 0 {
		body["context"] = errCtx
	}
	c.JSON(status, body)
}
