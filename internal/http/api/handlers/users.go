package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/service-panel/servicepanel/internal/db"
	"github.com/service-panel/servicepanel/internal/models"
	"github.com/service-panel/servicepanel/internal/security"
	"github.com/service-panel/servicepanel/internal/settings"
	"gorm.io/gorm"
)

// UserHandler manages panel user accounts.
type UserHandler struct {
	db *gorm.DB
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// validatePassword enforces the configured minimum password length.
func validatePassword(password string) error {
	minLength := settings.IntValue(settings.MinPasswordLengthKey, settings.DefaultMinPasswordLength)
	if len(password) < minLength {
		return fmt.Errorf("password must be at least %d characters", minLength)
	}
	return nil
}

// createUserRequest defines the request body for user creation.
type createUserRequest struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Role     string  `json:"role"`
	Active   *bool   `json:"active"`
	GroupID  *uint64 `json:"group_id"`
}

// Create creates a new user account. Admin only.
func (h *UserHandler) Create(c *gin.Context) {
	var body createUserRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	username := strings.TrimSpace(body.Username)
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing username"})
		return
	}
	if errValidate := validatePassword(body.Password); errValidate != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errValidate.Error()})
		return
	}
	role := strings.TrimSpace(body.Role)
	if role == "" {
		role = models.RoleUser
	}
	if role != models.RoleAdmin && role != models.RoleUser {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		return
	}

	var exists models.User
	if errCheck := h.db.WithContext(c.Request.Context()).Where("username = ?", username).First(&exists).Error; errCheck == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "username already exists"})
		return
	}

	groupID := body.GroupID
	if groupID != nil {
		var group models.UserGroup
		if errFind := h.db.WithContext(c.Request.Context()).First(&group, *groupID).Error; errFind != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown user group"})
			return
		}
	} else {
		var defaultGroup models.UserGroup
		if errFind := h.db.WithContext(c.Request.Context()).Where("is_default = ?", true).First(&defaultGroup).Error; errFind == nil {
			groupID = &defaultGroup.ID
		}
	}

	hash, errHash := security.HashPassword(body.Password)
	if errHash != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "hash password failed"})
		return
	}

	active := true
	if body.Active != nil {
		active = *body.Active
	}
	now := time.Now().UTC()
	user := models.User{
		Username:    username,
		Password:    hash,
		Name:        strings.TrimSpace(body.Name),
		Email:       strings.TrimSpace(body.Email),
		Role:        role,
		Active:      active,
		UserGroupID: groupID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&user).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create user failed"})
		return
	}
	if user.UserGroupID != nil {
		_ = h.db.WithContext(c.Request.Context()).Preload("UserGroup").First(&user, user.ID).Error
	}
	c.JSON(http.StatusCreated, adminUserView(&user))
}

// GetSelf returns the caller's own record in the reduced shape.
func (h *UserHandler) GetSelf(c *gin.Context) {
	user := getUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid session"})
		return
	}
	c.JSON(http.StatusOK, selfUserView(user))
}

// Lookup returns a single user by exact unique filter. Admin only.
func (h *UserHandler) Lookup(c *gin.Context) {
	idQ := strings.TrimSpace(c.Query("id"))
	usernameQ := strings.TrimSpace(c.Query("username"))
	if idQ == "" && usernameQ == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing filter"})
		return
	}

	q := h.db.WithContext(c.Request.Context()).Preload("UserGroup")
	if idQ != "" {
		id, errParse := strconv.ParseUint(idQ, 10, 64)
		if errParse != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}
		q = q.Where("id = ?", id)
	} else {
		q = q.Where("username = ?", usernameQ)
	}

	var user models.User
	if errFind := q.First(&user).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, adminUserView(&user))
}

// updateSelfRequest defines the self-editable subset of user fields.
type updateSelfRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// UpdateSelf updates the caller's own profile fields.
func (h *UserHandler) UpdateSelf(c *gin.Context) {
	user := getUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid session"})
		return
	}

	var body updateSelfRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updates := map[string]any{}
	if body.Name != nil {
		updates["name"] = strings.TrimSpace(*body.Name)
	}
	if body.Email != nil {
		updates["email"] = strings.TrimSpace(*body.Email)
	}
	if len(updates) > 0 {
		updates["updated_at"] = time.Now().UTC()
		if errUpdate := h.db.WithContext(c.Request.Context()).Model(user).Updates(updates).Error; errUpdate != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update user failed"})
			return
		}
		if body.Name != nil {
			user.Name = strings.TrimSpace(*body.Name)
		}
		if body.Email != nil {
			user.Email = strings.TrimSpace(*body.Email)
		}
	}
	c.JSON(http.StatusOK, selfUserView(user))
}

// changePasswordRequest defines the request body for password changes.
type changePasswordRequest struct {
	ID       uint64 `json:"id"`
	Password string `json:"password"`
}

// ChangePassword re-hashes and stores a new password. The caller must be
// an admin or the owner of the targeted account; the privilege check runs
// before any write.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	caller := getUser(c)
	if caller == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid session"})
		return
	}

	var body changePasswordRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.ID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing id"})
		return
	}

	if !caller.IsAdmin() && caller.ID != body.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot change another user's password"})
		return
	}

	if errValidate := validatePassword(body.Password); errValidate != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errValidate.Error()})
		return
	}

	var target models.User
	if errFind := h.db.WithContext(c.Request.Context()).First(&target, body.ID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	hash, errHash := security.HashPassword(body.Password)
	if errHash != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "hash password failed"})
		return
	}

	now := time.Now().UTC()
	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&target).Updates(map[string]any{
		"password":   hash,
		"updated_at": now,
	}).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "change password failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": target.ID, "updated_at": now})
}

// List returns all users with their groups, optionally filtered by a
// case-insensitive substring match on username or name. Admin only.
func (h *UserHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).
		Preload("UserGroup").
		Order("id ASC")
	if search := strings.TrimSpace(c.Query("q")); search != "" {
		pattern := db.NormalizeLikePattern(h.db, "%"+search+"%")
		q = q.Where(
			h.db.Where(db.CaseInsensitiveLikeExpr(h.db, "username"), pattern).
				Or(db.CaseInsensitiveLikeExpr(h.db, "name"), pattern),
		)
	}

	var rows []models.User
	if errFind := q.Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list users failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, adminUserView(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}
