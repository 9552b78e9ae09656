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
	"gorm.io/gorm"
)

// GrantHandler manages access grant rows.
type GrantHandler struct {
	db *gorm.DB
}

// NewGrantHandler constructs a GrantHandler.
func NewGrantHandler(db *gorm.DB) *GrantHandler {
	return &GrantHandler{db: db}
}

// GrantToAllActiveUsers upserts a grant row for every active user inside
// one transaction. Missing rows get a fresh token; existing rows are
// reactivated with can_use = true but keep their token, so instances that
// already hold a user's token keep working.
func (h *GrantHandler) GrantToAllActiveUsers(c *gin.Context) {
	instanceID := strings.TrimSpace(c.Param("id"))
	if instanceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing id"})
		return
	}

	var instance models.ServiceInstance
	if errFind := h.db.WithContext(c.Request.Context()).First(&instance, "id = ?", instanceID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "instance not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var users []models.User
		if errUsers := tx.Where("active = ?", true).Find(&users).Error; errUsers != nil {
			return errUsers
		}

		now := time.Now().UTC()
		for _, user := range users {
			var grant models.UserInstanceAbility
			errFind := tx.Where("user_id = ? AND instance_id = ?", user.ID, instanceID).First(&grant).Error
			switch {
			case errFind == nil:
				if errUpdate := tx.Model(&grant).Updates(map[string]any{
					"can_use":    true,
					"updated_at": now,
				}).Error; errUpdate != nil {
					return errUpdate
				}
			case errors.Is(errFind, gorm.ErrRecordNotFound):
				token, errGenerate := security.GenerateAccessToken()
				if errGenerate != nil {
					return errGenerate
				}
				grant = models.UserInstanceAbility{
					UserID:     user.ID,
					InstanceID: instanceID,
					Token:      token,
					CanUse:     true,
					CreatedAt:  now,
					UpdatedAt:  now,
				}
				if errCreate := tx.Create(&grant).Error; errCreate != nil {
					return errCreate
				}
			default:
				return errFind
			}
		}
		return nil
	})
	if errTx != nil {
		log.WithError(errTx).WithField("instance_id", instanceID).Error("grant to all active users failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "grant failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
