package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SeiwaLabs/invoice_kanri_app/internal/apperrors"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/middleware"
)

// respondServiceError maps service errors onto HTTP status codes. State and
// retention violations are conflicts, connector failures are bad gateways,
// integrity faults are surfaced loudly as server errors.
func respondServiceError(c *gin.Context, err error) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var stateErr *apperrors.StateTransitionError
	var retentionErr *apperrors.RetentionError
	var integrityErr *apperrors.IntegrityError
	var connectorErr *apperrors.ConnectorError

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &stateErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":          stateErr.Error(),
			"current_status": stateErr.Current,
		})
	case errors.As(err, &retentionErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":           retentionErr.Error(),
			"retention_until": retentionErr.Until.Format("2006-01-02"),
		})
	case errors.As(err, &integrityErr):
		logger.Error("File integrity fault", slog.String("expected", integrityErr.Expected), slog.String("actual", integrityErr.Actual))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":    "Stored file failed integrity verification",
			"expected": integrityErr.Expected,
			"actual":   integrityErr.Actual,
		})
	case errors.As(err, &connectorErr):
		logger.Error("Connector failure", slog.String("provider", connectorErr.Provider), slog.String("error", connectorErr.Error()))
		c.JSON(http.StatusBadGateway, gin.H{"error": connectorErr.Error()})
	default:
		logger.Error("Unhandled service error", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// actorFrom extracts the authenticated user and client address for audit
// attribution. Both may be absent for system-initiated work.
func actorFrom(c *gin.Context) (*int64, *string) {
	var actorID *int64
	if userID, ok := middleware.GetUserIDFromCtx(c.Request.Context()); ok {
		actorID = &userID
	}
	var origin *string
	if ip := c.ClientIP(); ip != "" {
		origin = &ip
	}
	return actorID, origin
}
