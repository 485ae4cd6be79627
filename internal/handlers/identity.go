package handlers

import (
	"net/http"

	"lms-quiz-service/internal/models"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// Identity is the authenticated caller, decoded by the gateway and passed
// in as headers. It is carried as an explicit value, never read from
// globals inside handlers or services.
type Identity struct {
	UserID string
	Role   string
}

// RequireIdentity rejects requests missing the gateway identity headers.
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
				"code":  "MISSING_USER_ID",
			})
			c.Abort()
			return
		}
		c.Set(identityKey, Identity{
			UserID: userID,
			Role:   c.GetHeader("X-User-Role"),
		})
		c.Next()
	}
}

// RequireAdmin gates the authoring endpoints.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentIdentity(c).Role != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func CurrentIdentity(c *gin.Context) Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(Identity); ok {
			return id
		}
	}
	return Identity{}
}
