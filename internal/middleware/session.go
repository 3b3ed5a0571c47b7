package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-odoo-sync/internal/models"
	appErrors "github.com/noah-isme/sma-odoo-sync/pkg/errors"
	"github.com/noah-isme/sma-odoo-sync/pkg/response"
)

// ContextSessionKey is the gin context key storing the current Odoo session.
const ContextSessionKey = "currentSession"

// SessionLoader returns the stored session without a server round trip, so
// routes stay usable while Odoo is offline.
type SessionLoader interface {
	Current(ctx context.Context) (*models.UserSession, error)
}

// RequireSession rejects requests when nobody is logged in.
func RequireSession(sessions SessionLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := sessions.Current(c.Request.Context())
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if session == nil {
			response.Error(c, appErrors.ErrNoSession)
			c.Abort()
			return
		}
		c.Set(ContextSessionKey, session)
		c.Next()
	}
}

// SessionFromContext returns the session stored by RequireSession.
func SessionFromContext(c *gin.Context) *models.UserSession {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil
	}
	session, _ := value.(*models.UserSession)
	return session
}
