package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/erpcore/ledger_governance/internal/core/domain"
)

// serviceClaims are the JWT claims issued to collaborator services. The
// subject carries the acting user; the svc claim carries the calling
// service's registered name, which is what authority checks run against.
type serviceClaims struct {
	Service string `json:"svc"`
	jwt.RegisteredClaims
}

// AuthMiddleware creates a Gin middleware handler that validates service JWTs
// and stores the resulting governance context in the request context.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Warn("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			logger.Warn("Authorization header format invalid")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		tokenString := parts[1]

		// Parse and validate the token
		token, err := jwt.ParseWithClaims(tokenString, &serviceClaims{}, func(token *jwt.Token) (interface{}, error) {
			// Check the signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(jwtSecret), nil
		})

		if err != nil {
			logger.Warn("Invalid token", "error", err)
			msg := "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Token has expired"
			} else if errors.Is(err, jwt.ErrTokenNotValidYet) {
				msg = "Token not valid yet"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		claims, ok := token.Claims.(*serviceClaims)
		if !ok || !token.Valid {
			logger.Warn("Invalid token claims or token is not valid")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		if claims.Service == "" || claims.Subject == "" {
			logger.Error("Service or user missing from valid token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}

		gov := domain.GovernanceContext{
			Service: claims.Service,
			User:    claims.Subject,
		}

		// Store the governance context in the standard context
		ctxWithGov := context.WithValue(c.Request.Context(), governanceCtxKey, gov)

		// Add caller identity to the logger and store the enriched logger back
		enrichedLogger := logger.With(
			slog.String("service", gov.Service),
			slog.String("user_id", gov.User),
		)
		ctxWithLoggerAndGov := context.WithValue(ctxWithGov, loggerCtxKey, enrichedLogger)

		// Update the request context
		c.Request = c.Request.WithContext(ctxWithLoggerAndGov)

		c.Next()
	}
}
