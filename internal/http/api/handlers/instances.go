package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/service-panel/servicepanel/internal/models"
	"github.com/service-panel/servicepanel/internal/security"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// InstanceHandler manages service instance records.
type InstanceHandler struct {
	db *gorm.DB
}

// NewInstanceHandler constructs an InstanceHandler.
func NewInstanceHandler(db *gorm.DB) *InstanceHandler {
	return &InstanceHandler{db: db}
}

// createInstanceRequest defines the request body for instance creation.
type createInstanceRequest struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	URL         string         `json:"url"`
	Data        datatypes.JSON `json:"data"`
}

// Create registers a new service instance with a generated ID. Admin only.
func (h *InstanceHandler) Create(c *gin.Context) {
	var body createInstanceRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing name"})
		return
	}

	id, errGenerate := security.GenerateInstanceID()
	if errGenerate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "generate id failed"})
		return
	}

	now := time.Now().UTC()
	instance := models.ServiceInstance{
		ID:          id,
		Name:        name,
		Description: strings.TrimSpace(body.Description),
		URL:         strings.TrimSpace(body.URL),
		Data:        body.Data,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&instance).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create instance failed"})
		return
	}
	c.JSON(http.StatusCreated, adminInstanceView(&instance))
}

// updateInstanceRequest defines the request body for partial updates.
type updateInstanceRequest struct {
	ID          string  `json:"id"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	URL         *string `json:"url"`
}

// Update applies a partial update to an instance. The ID is required; the
// update timestamp is bumped on every write. Admin only.
func (h *InstanceHandler) Update(c *gin.Context) {
	var body updateInstanceRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	id := strings.TrimSpace(body.ID)
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing id"})
		return
	}

	var instance models.ServiceInstance
	if errFind := h.db.WithContext(c.Request.Context()).First(&instance, "id = ?", id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "instance not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if body.Name != nil {
		updates["name"] = strings.TrimSpace(*body.Name)
	}
	if body.Description != nil {
		updates["description"] = strings.TrimSpace(*body.Description)
	}
	if body.URL != nil {
		updates["url"] = strings.TrimSpace(*body.URL)
	}
	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&instance).Updates(updates).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update instance failed"})
		return
	}

	if errReload := h.db.WithContext(c.Request.Context()).First(&instance, "id = ?", id).Error; errReload != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, adminInstanceView(&instance))
}

// updateInstanceDataRequest defines the request body for payload updates.
type updateInstanceDataRequest struct {
	ID   string         `json:"id"`
	Data datatypes.JSON `json:"data"`
}

// UpdateData replaces only the opaque payload and bumps the timestamp.
// Admin only.
func (h *InstanceHandler) UpdateData(c *gin.Context) {
	var body updateInstanceDataRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	id := strings.TrimSpace(body.ID)
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing id"})
		return
	}

	var instance models.ServiceInstance
	if errFind := h.db.WithContext(c.Request.Context()).First(&instance, "id = ?", id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "instance not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	now := time.Now().UTC()
	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&instance).Updates(map[string]any{
		"data":       body.Data,
		"updated_at": now,
	}).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update instance failed"})
		return
	}

	instance.Data = body.Data
	instance.UpdatedAt = now
	c.JSON(http.StatusOK, adminInstanceView(&instance))
}

// ListAdmin returns all instances in the admin shape. Admin only.
func (h *InstanceHandler) ListAdmin(c *gin.Context) {
	var rows []models.ServiceInstance
	if errFind := h.db.WithContext(c.Request.Context()).
		Order("created_at DESC").
		Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list instances failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, adminInstanceView(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"instances": out})
}

// ListWithToken returns the instances the caller holds an active grant
// for, each annotated with that grant's token.
func (h *InstanceHandler) ListWithToken(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid session"})
		return
	}

	var grants []models.UserInstanceAbility
	if errFind := h.db.WithContext(c.Request.Context()).
		Preload("Instance").
		Where("user_id = ? AND can_use = ?", userID, true).
		Find(&grants).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list instances failed"})
		return
	}

	out := make([]gin.H, 0, len(grants))
	for i := range grants {
		grant := &grants[i]
		if grant.Instance == nil {
			continue
		}
		view := userInstanceView(grant.Instance)
		view["token"] = grant.Token
		out = append(out, view)
	}
	c.JSON(http.StatusOK, gin.H{"instances": out})
}

// GetByID returns a single instance in the user shape. Any authenticated
// session may read an instance; only the token-annotated listing is gated
// by grants.
func (h *InstanceHandler) GetByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing id"})
		return
	}

	var instance models.ServiceInstance
	if errFind := h.db.WithContext(c.Request.Context()).First(&instance, "id = ?", id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "instance not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, userInstanceView(&instance))
}

// Delete removes an instance, its grant rows, and optionally its usage
// logs in a single transaction. Admin only.
func (h *InstanceHandler) Delete(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing id"})
		return
	}
	deleteLogs := strings.EqualFold(strings.TrimSpace(c.Query("delete_logs")), "true")

	var instance models.ServiceInstance
	if errFind := h.db.WithContext(c.Request.Context()).First(&instance, "id = ?", id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "instance not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if errAbilities := tx.Where("instance_id = ?", id).Delete(&models.UserInstanceAbility{}).Error; errAbilities != nil {
			return errAbilities
		}
		if errInstance := tx.Delete(&models.ServiceInstance{}, "id = ?", id).Error; errInstance != nil {
			return errInstance
		}
		if deleteLogs {
			if errLogs := tx.Where("instance_id = ?", id).Delete(&models.ResourceUsageLog{}).Error; errLogs != nil {
				return errLogs
			}
		}
		return nil
	})
	if errTx != nil {
		log.WithError(errTx).WithField("instance_id", id).Error("delete instance failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete instance failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
