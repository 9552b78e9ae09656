package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/service-panel/servicepanel/internal/models"
	"github.com/service-panel/servicepanel/internal/settings"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsHandler manages panel-level settings.
type SettingsHandler struct {
	db *gorm.DB
}

// NewSettingsHandler constructs a SettingsHandler.
func NewSettingsHandler(db *gorm.DB) *SettingsHandler {
	return &SettingsHandler{db: db}
}

// List returns all settings rows. Admin only.
func (h *SettingsHandler) List(c *gin.Context) {
	var rows []models.Setting
	if errFind := h.db.WithContext(c.Request.Context()).Order("key ASC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list settings failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, gin.H{
			"key":        row.Key,
			"value":      row.Value,
			"updated_at": row.UpdatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"settings": out})
}

// updateSettingsRequest maps setting keys to raw JSON values.
type updateSettingsRequest map[string]json.RawMessage

// Update upserts setting values and refreshes the in-memory snapshot.
// Admin only.
func (h *SettingsHandler) Update(c *gin.Context) {
	var body updateSettingsRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no settings provided"})
		return
	}

	now := time.Now().UTC()
	for key, value := range body {
		trimmedKey := strings.TrimSpace(key)
		if trimmedKey == "" || value == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid setting entry"})
			return
		}
		row := models.Setting{
			Key:       trimmedKey,
			Value:     datatypes.JSON(value),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if errUpsert := h.db.WithContext(c.Request.Context()).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.Assignments(map[string]any{"value": datatypes.JSON(value), "updated_at": now}),
		}).Create(&row).Error; errUpsert != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update settings failed"})
			return
		}
	}

	if errRefresh := settings.Refresh(c.Request.Context(), h.db); errRefresh != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "refresh settings failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GetPublicConfig exposes the settings the login page needs.
func GetPublicConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"site_name": settings.StringValue(settings.SiteNameKey, settings.DefaultSiteName),
	})
}
