package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/service-panel/servicepanel/internal/models"
)

// getUserID extracts the session-bound user ID from gin context.
func getUserID(c *gin.Context) uint64 {
	val, exists := c.Get("userID")
	if !exists {
		return 0
	}
	id, ok := val.(uint64)
	if !ok {
		return 0
	}
	return id
}

// getUser extracts the loaded user record from gin context.
func getUser(c *gin.Context) *models.User {
	val, exists := c.Get("user")
	if !exists {
		return nil
	}
	user, ok := val.(*models.User)
	if !ok {
		return nil
	}
	return user
}
