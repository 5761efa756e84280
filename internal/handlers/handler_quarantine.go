package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/erpcore/ledger_governance/internal/core/ports/services"
	"github.com/erpcore/ledger_governance/internal/dto"
	"github.com/erpcore/ledger_governance/internal/middleware"
)

// quarantineHandler handles HTTP requests for quarantine records.
type quarantineHandler struct {
	quarantineSvc portssvc.QuarantineSvcFacade
}

// newQuarantineHandler creates a new quarantineHandler.
func newQuarantineHandler(quarantineSvc portssvc.QuarantineSvcFacade) *quarantineHandler {
	return &quarantineHandler{quarantineSvc: quarantineSvc}
}

// quarantineData handles POST /quarantine
func (h *quarantineHandler) quarantineData(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	req := dto.QuarantineRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for quarantineData", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	gov, ok := middleware.GetGovernanceFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	record, err := h.quarantineSvc.QuarantineData(c.Request.Context(), gov, req)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	logger.Info("Data quarantined",
		slog.String("quarantine_id", record.QuarantineID),
		slog.String("model_name", record.ModelName),
		slog.String("object_id", record.ObjectID))
	c.JSON(http.StatusCreated, record)
}

// markUnderReview handles POST /quarantine/:quarantineID/review
func (h *quarantineHandler) markUnderReview(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	quarantineID := c.Param("quarantineID")

	gov, ok := middleware.GetGovernanceFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.quarantineSvc.MarkUnderReview(c.Request.Context(), gov, quarantineID); err != nil {
		respondWithError(c, logger, err)
		return
	}

	logger.Info("Quarantine record under review", slog.String("quarantine_id", quarantineID))
	c.JSON(http.StatusOK, gin.H{"quarantineID": quarantineID, "status": "UNDER_REVIEW"})
}

// resolveQuarantine handles POST /quarantine/:quarantineID/resolve
func (h *quarantineHandler) resolveQuarantine(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	quarantineID := c.Param("quarantineID")

	req := dto.ResolveQuarantineRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for resolveQuarantine", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	gov, ok := middleware.GetGovernanceFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.quarantineSvc.ResolveQuarantine(c.Request.Context(), gov, quarantineID, req.ResolutionNotes); err != nil {
		respondWithError(c, logger, err)
		return
	}

	logger.Info("Quarantine resolved", slog.String("quarantine_id", quarantineID))
	c.JSON(http.StatusOK, gin.H{"quarantineID": quarantineID, "resolved": true})
}

// getCorruptionSummary handles GET /quarantine/summary
func (h *quarantineHandler) getCorruptionSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	summary, err := h.quarantineSvc.GetCorruptionSummary(c.Request.Context())
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// registerQuarantineRoutes registers quarantine specific routes
func registerQuarantineRoutes(group *gin.RouterGroup, services *portssvc.ServiceContainer) {
	handler := newQuarantineHandler(services.Quarantine)

	quarantine := group.Group("/quarantine")
	{
		quarantine.POST("", handler.quarantineData)
		quarantine.POST("/:quarantineID/review", handler.markUnderReview)
		quarantine.POST("/:quarantineID/resolve", handler.resolveQuarantine)
		quarantine.GET("/summary", handler.getCorruptionSummary)
	}
}
