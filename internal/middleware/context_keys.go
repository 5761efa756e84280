package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/erpcore/ledger_governance/internal/core/domain"
)

// governanceCtxKey is the key used to store the caller's governance context
// (service + user) in the request context.
const governanceCtxKey = contextKey("governanceContext")

// GetGovernanceFromContext retrieves the authenticated governance context
// from the Gin request. It returns the context and a boolean indicating
// whether the auth middleware populated it.
func GetGovernanceFromContext(c *gin.Context) (domain.GovernanceContext, bool) {
	val := c.Request.Context().Value(governanceCtxKey)
	if val == nil {
		return domain.GovernanceContext{}, false
	}
	gov, ok := val.(domain.GovernanceContext)
	if !ok {
		return domain.GovernanceContext{}, false
	}
	return gov, true
}
