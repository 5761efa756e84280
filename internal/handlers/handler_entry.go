package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/erpcore/ledger_governance/internal/core/domain"
	portssvc "github.com/erpcore/ledger_governance/internal/core/ports/services"
	"github.com/erpcore/ledger_governance/internal/dto"
	"github.com/erpcore/ledger_governance/internal/middleware"
)

// entryHandler handles HTTP requests for journal entries: the only write
// path into the ledger.
type entryHandler struct {
	gatewaySvc portssvc.AccountingGatewaySvcFacade
	linkageSvc portssvc.LinkageSvcFacade
	auditSvc   portssvc.AuditTrailSvcFacade
}

// newEntryHandler creates a new entryHandler.
func newEntryHandler(gatewaySvc portssvc.AccountingGatewaySvcFacade, linkageSvc portssvc.LinkageSvcFacade, auditSvc portssvc.AuditTrailSvcFacade) *entryHandler {
	return &entryHandler{
		gatewaySvc: gatewaySvc,
		linkageSvc: linkageSvc,
		auditSvc:   auditSvc,
	}
}

// createEntry handles POST /entries
func (h *entryHandler) createEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	req := dto.CreateEntryRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	gov, ok := middleware.GetGovernanceFromContext(c)
	if !ok {
		logger.Error("Governance context not found in request")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.gatewaySvc.CreateJournalEntry(c.Request.Context(), gov, req)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	logger.Info("Entry created", slog.String("entry_id", entry.EntryID), slog.String("number", entry.Number))
	c.JSON(http.StatusCreated, dto.ToEntryResponse(entry))
}

// reverseEntry handles POST /entries/:entryID/reverse
func (h *entryHandler) reverseEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	req := dto.CreateReversalRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for reverseEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	gov, ok := middleware.GetGovernanceFromContext(c)
	if !ok {
		logger.Error("Governance context not found in request")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	reversal, err := h.gatewaySvc.CreateReversalEntry(c.Request.Context(), gov, entryID, req)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	logger.Info("Entry reversed", slog.String("entry_id", entryID), slog.String("reversal_entry_id", reversal.EntryID))
	c.JSON(http.StatusCreated, dto.ToEntryResponse(reversal))
}

// getEntry handles GET /entries/:entryID
func (h *entryHandler) getEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	gov, _ := middleware.GetGovernanceFromContext(c)
	entry, err := h.gatewaySvc.GetEntry(c.Request.Context(), gov, entryID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// backfillLinkage handles POST /entries/:entryID/backfill-linkage
func (h *entryHandler) backfillLinkage(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	req := dto.BackfillLinkageRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for backfillLinkage", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	gov, ok := middleware.GetGovernanceFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ref := domain.SourceRef{Module: req.SourceModule, Model: req.SourceModel, ID: req.SourceID}
	if err := h.linkageSvc.BackfillSourceLinkage(c.Request.Context(), gov, entryID, ref, req.DryRun); err != nil {
		respondWithError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entryID": entryID, "dryRun": req.DryRun})
}

// getEntryAudit handles GET /entries/:entryID/audit
func (h *entryHandler) getEntryAudit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	records, err := h.auditSvc.ListForObject(c.Request.Context(), "JournalEntry", entryID, 0)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entryID": entryID, "records": records})
}

// registerEntryRoutes registers entry specific routes
func registerEntryRoutes(group *gin.RouterGroup, services *portssvc.ServiceContainer) {
	handler := newEntryHandler(services.Gateway, services.Linkage, services.Audit)

	entries := group.Group("/entries")
	{
		entries.POST("", handler.createEntry)
		entries.GET("/:entryID", handler.getEntry)
		entries.POST("/:entryID/reverse", handler.reverseEntry)
		entries.POST("/:entryID/backfill-linkage", handler.backfillLinkage)
		entries.GET("/:entryID/audit", handler.getEntryAudit)
	}
}
