package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/service-panel/servicepanel/internal/models"
)

// Field-level exposure is controlled entirely by these read-time
// projections: every read path shapes rows through the projection matching
// the caller's privilege before anything leaves the handler.

// adminUserView projects a user row into the admin-visible shape.
func adminUserView(u *models.User) gin.H {
	view := gin.H{
		"id":         u.ID,
		"username":   u.Username,
		"name":       u.Name,
		"email":      u.Email,
		"role":       u.Role,
		"active":     u.Active,
		"created_at": u.CreatedAt,
		"updated_at": u.UpdatedAt,
	}
	if u.UserGroup != nil {
		view["group"] = gin.H{
			"id":   u.UserGroup.ID,
			"name": u.UserGroup.Name,
		}
	}
	return view
}

// selfUserView projects a user row into the reduced self-visible shape.
func selfUserView(u *models.User) gin.H {
	return gin.H{
		"id":       u.ID,
		"username": u.Username,
		"name":     u.Name,
		"email":    u.Email,
		"role":     u.Role,
	}
}

// adminInstanceView projects an instance row including the opaque payload.
func adminInstanceView(si *models.ServiceInstance) gin.H {
	return gin.H{
		"id":          si.ID,
		"name":        si.Name,
		"description": si.Description,
		"url":         si.URL,
		"data":        si.Data,
		"created_at":  si.CreatedAt,
		"updated_at":  si.UpdatedAt,
	}
}

// userInstanceView projects an instance row into the user-visible shape.
func userInstanceView(si *models.ServiceInstance) gin.H {
	return gin.H{
		"id":          si.ID,
		"name":        si.Name,
		"description": si.Description,
		"url":         si.URL,
	}
}
