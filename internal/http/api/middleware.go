package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/service-panel/servicepanel/internal/models"
	"github.com/service-panel/servicepanel/internal/session"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Context keys set by the auth middleware chain.
const (
	// ContextSessionKey holds the resolved *models.Session.
	ContextSessionKey = "session"
	// ContextUserIDKey holds the session-bound user ID.
	ContextUserIDKey = "userID"
	// ContextUserKey holds the loaded *models.User.
	ContextUserKey = "user"
)

// SessionAuth validates the session cookie and stores the session in the
// gin context. It does not load the user row.
func SessionAuth(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, errResolve := sessions.Resolve(c)
		if errResolve != nil {
			if !errors.Is(errResolve, session.ErrNotFound) {
				log.WithError(errResolve).Error("resolve session failed")
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session"})
			return
		}
		c.Set(ContextSessionKey, sess)
		c.Set(ContextUserIDKey, sess.UserID)
		c.Next()
	}
}

// UserAuth loads the session-bound user record into the context. It must
// run after SessionAuth.
func UserAuth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(ContextUserIDKey)
		userID, okID := value.(uint64)
		if !exists || !okID || userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session"})
			return
		}

		var user models.User
		if errFind := db.WithContext(c.Request.Context()).First(&user, userID).Error; errFind != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		if !user.Active {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "user disabled"})
			return
		}

		c.Set(ContextUserKey, &user)
		c.Next()
	}
}

// AdminOnly rejects callers whose loaded user is not an admin. It must run
// after UserAuth.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(ContextUserKey)
		user, okUser := value.(*models.User)
		if !exists || !okUser {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session"})
			return
		}
		if !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin privilege required"})
			return
		}
		c.Next()
	}
}
