package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/erpcore/ledger_governance/internal/core/ports/services"
	"github.com/erpcore/ledger_governance/internal/dto"
	"github.com/erpcore/ledger_governance/internal/middleware"
)

// maintenanceHandler handles HTTP requests for integrity scans, repair runs
// and idempotency housekeeping.
type maintenanceHandler struct {
	linkageSvc     portssvc.LinkageSvcFacade
	repairExecSvc  portssvc.RepairExecutionSvcFacade
	repairValSvc   portssvc.RepairValidationSvcFacade
	idempotencySvc portssvc.IdempotencySvcFacade
}

// newMaintenanceHandler creates a new maintenanceHandler.
func newMaintenanceHandler(
	linkageSvc portssvc.LinkageSvcFacade,
	repairExecSvc portssvc.RepairExecutionSvcFacade,
	repairValSvc portssvc.RepairValidationSvcFacade,
	idempotencySvc portssvc.IdempotencySvcFacade,
) *maintenanceHandler {
	return &maintenanceHandler{
		linkageSvc:     linkageSvc,
		repairExecSvc:  repairExecSvc,
		repairValSvc:   repairValSvc,
		idempotencySvc: idempotencySvc,
	}
}

// scanOrphanedEntries handles POST /maintenance/scan
func (h *maintenanceHandler) scanOrphanedEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	req := dto.ScanRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for scanOrphanedEntries", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	report, err := h.linkageSvc.ScanOrphanedEntries(c.Request.Context(), req.BatchSize)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	logger.Info("Integrity scan completed",
		slog.Int("entries_scanned", report.ScannedCount),
		slog.Int("issues_found", len(report.Issues)))
	c.JSON(http.StatusOK, report)
}

// executeRepairs handles POST /maintenance/repairs
func (h *maintenanceHandler) executeRepairs(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	req := dto.ExecuteRepairsRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for executeRepairs", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	gov, ok := middleware.GetGovernanceFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	result, err := h.repairExecSvc.ExecuteApprovedRepairs(c.Request.Context(), gov, req.Report, req.Config)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	logger.Info("Repair run completed",
		slog.String("run_id", result.RunID),
		slog.String("status", string(result.OverallStatus)))
	c.JSON(http.StatusOK, result)
}

// validateRepairs handles POST /maintenance/repairs/validate
func (h *maintenanceHandler) validateRepairs(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	req := dto.ValidateRepairsRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for validateRepairs", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	validation, err := h.repairValSvc.ValidateRepairResults(c.Request.Context(), req.Result)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, validation)
}

// cleanupIdempotency handles POST /maintenance/cleanup
func (h *maintenanceHandler) cleanupIdempotency(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	req := dto.CleanupRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for cleanupIdempotency", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	report, err := h.idempotencySvc.CleanupExpiredRecords(c.Request.Context(), req)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	logger.Info("Idempotency cleanup completed",
		slog.Int64("expired_deleted", report.ExpiredDeleted),
		slog.Int64("aged_deleted", report.AgedDeleted))
	c.JSON(http.StatusOK, report)
}

// registerMaintenanceRoutes registers maintenance specific routes
func registerMaintenanceRoutes(group *gin.RouterGroup, services *portssvc.ServiceContainer) {
	handler := newMaintenanceHandler(services.Linkage, services.RepairExecution, services.RepairValidation, services.Idempotency)

	maintenance := group.Group("/maintenance")
	{
		maintenance.POST("/scan", handler.scanOrphanedEntries)
		maintenance.POST("/repairs", handler.executeRepairs)
		maintenance.POST("/repairs/validate", handler.validateRepairs)
		maintenance.POST("/cleanup", handler.cleanupIdempotency)
	}
}
