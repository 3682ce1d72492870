package middleware

import (
	"net/http"
	"strings"

	"github.com/4dave/corralio/models"
	"github.com/4dave/corralio/services"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// SessionParser turns a session token into the caller's identity.
type SessionParser interface {
	ParseSession(token string) (*models.Identity, error)
}

// Session attaches the caller's identity when a valid session is present,
// from the session cookie or an "Authorization: Bearer" header. Requests
// without one continue anonymously.
func Session(p SessionParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		var raw string
		if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
			raw = strings.TrimPrefix(h, "Bearer ")
		} else {
			raw, _ = c.Cookie(services.SessionCookie)
		}
		if raw != "" {
			if who, err := p.ParseSession(raw); err == nil {
				c.Set(identityKey, who)
			}
		}
		c.Next()
	}
}

// GetIdentity returns the signed-in caller, or nil.
func GetIdentity(c *gin.Context) *models.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	who, _ := v.(*models.Identity)
	return who
}

// GetUserID returns the signed-in caller's id, or "".
func GetUserID(c *gin.Context) string {
	if who := GetIdentity(c); who != nil {
		return who.UserID
	}
	return ""
}

// RequireUser rejects anonymous JSON requests with 401.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetIdentity(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}
