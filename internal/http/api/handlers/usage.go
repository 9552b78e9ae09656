package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/service-panel/servicepanel/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UsageHandler records and lists resource usage events.
type UsageHandler struct {
	db *gorm.DB
}

// NewUsageHandler constructs a UsageHandler.
func NewUsageHandler(db *gorm.DB) *UsageHandler {
	return &UsageHandler{db: db}
}

// reportUsageRequest defines the request body for usage reporting.
type reportUsageRequest struct {
	InstanceID string         `json:"instanceId"`
	UserToken  string         `json:"userToken"`
	Action     string         `json:"action"`
	Detail     datatypes.JSON `json:"detail"`
}

// Report appends a usage row on behalf of an instance. The caller
// authenticates with a grant token, checked the same way as the
// verification endpoint, and the row is attributed to that grant's user.
func (h *UsageHandler) Report(c *gin.Context) {
	var body reportUsageRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	instanceID := strings.TrimSpace(body.InstanceID)
	token := strings.TrimSpace(body.UserToken)
	if instanceID == "" || token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing instanceId or userToken"})
		return
	}

	grant, errResolve := resolveGrant(c.Request.Context(), h.db, instanceID, token)
	if errResolve != nil {
		switch {
		case errors.Is(errResolve, errGrantNotFound):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		case errors.Is(errResolve, errGrantRevoked):
			c.JSON(http.StatusForbidden, gin.H{"error": "access revoked"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		}
		return
	}

	userID := grant.UserID
	row := models.ResourceUsageLog{
		InstanceID: instanceID,
		UserID:     &userID,
		Action:     strings.TrimSpace(body.Action),
		Detail:     body.Detail,
		CreatedAt:  time.Now().UTC(),
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&row).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "record usage failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": row.ID})
}

// ListForInstance returns the usage rows for an instance, newest first.
// Admin only.
func (h *UsageHandler) ListForInstance(c *gin.Context) {
	instanceID := strings.TrimSpace(c.Param("id"))
	if instanceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing id"})
		return
	}

	var rows []models.ResourceUsageLog
	if errFind := h.db.WithContext(c.Request.Context()).
		Where("instance_id = ?", instanceID).
		Order("created_at DESC").
		Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list usage failed"})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, gin.H{
			"id":          row.ID,
			"instance_id": row.InstanceID,
			"user_id":     row.UserID,
			"action":      row.Action,
			"detail":      row.Detail,
			"created_at":  row.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"usage": out})
}
