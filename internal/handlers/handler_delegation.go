package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/erpcore/ledger_governance/internal/core/ports/services"
	"github.com/erpcore/ledger_governance/internal/dto"
	"github.com/erpcore/ledger_governance/internal/middleware"
)

// delegationHandler handles HTTP requests for authority delegations.
type delegationHandler struct {
	authoritySvc portssvc.AuthoritySvcFacade
}

// newDelegationHandler creates a new delegationHandler.
func newDelegationHandler(authoritySvc portssvc.AuthoritySvcFacade) *delegationHandler {
	return &delegationHandler{authoritySvc: authoritySvc}
}

// delegateAuthority handles POST /delegations
func (h *delegationHandler) delegateAuthority(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	req := dto.DelegateAuthorityRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for delegateAuthority", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	gov, ok := middleware.GetGovernanceFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	delegation, err := h.authoritySvc.DelegateAuthority(c.Request.Context(), gov, req)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	logger.Info("Authority delegated",
		slog.String("delegation_id", delegation.DelegationID),
		slog.String("to_service", delegation.ToService),
		slog.String("model_name", delegation.ModelName))
	c.JSON(http.StatusCreated, dto.ToDelegationResponse(delegation))
}

// revokeDelegation handles POST /delegations/:delegationID/revoke
func (h *delegationHandler) revokeDelegation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	delegationID := c.Param("delegationID")

	req := dto.RevokeDelegationRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for revokeDelegation", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	gov, ok := middleware.GetGovernanceFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.authoritySvc.RevokeDelegation(c.Request.Context(), gov, delegationID, req.Reason); err != nil {
		respondWithError(c, logger, err)
		return
	}

	logger.Info("Delegation revoked", slog.String("delegation_id", delegationID))
	c.JSON(http.StatusOK, gin.H{"delegationID": delegationID, "revoked": true})
}

// registerDelegationRoutes registers delegation specific routes
func registerDelegationRoutes(group *gin.RouterGroup, services *portssvc.ServiceContainer) {
	handler := newDelegationHandler(services.Authority)

	delegations := group.Group("/delegations")
	{
		delegations.POST("", handler.delegateAuthority)
		delegations.POST("/:delegationID/revoke", handler.revokeDelegation)
	}
}
