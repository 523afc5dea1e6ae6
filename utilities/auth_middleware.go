package utilities

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	SessionCookie = "arc_session"

	ctxUserID        = "user_id"
	ctxEmailVerified = "email_verified"
)

// AuthMiddleware ensures each request carries a valid arc_session cookie.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie(SessionCookie)
		if err != nil || tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}

		claims, err := ValidateSessionToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
			return
		}

		// Store claims in context for later use
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxEmailVerified, claims.EmailVerified)

		c.Next()
	}
}

// SessionUserID returns the user id set by AuthMiddleware.
func SessionUserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// SetSessionCookie writes the HTTP-only session cookie. secure should be set
// in production.
func SetSessionCookie(c *gin.Context, token string, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, int(SessionExpiry.Seconds()), "/", "", secure, true)
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", secure, true)
}
