package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/service-panel/servicepanel/internal/models"
	"github.com/service-panel/servicepanel/internal/security"
	"github.com/service-panel/servicepanel/internal/session"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// invalidCredentialsMessage is returned verbatim for both unknown-username
// and wrong-password failures so that the two are not distinguishable.
const invalidCredentialsMessage = "invalid credentials"

// AuthHandler handles login and logout.
type AuthHandler struct {
	db       *gorm.DB
	sessions *session.Manager
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{db: db, sessions: sessions}
}

// loginRequest defines the request body for login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates a user and issues a session cookie.
//
// When the username is unknown, a decoy bcrypt comparison is still
// performed so the failure takes roughly as long as a wrong password on an
// existing account.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	username := strings.TrimSpace(body.Username)
	password := body.Password
	if username == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing username or password"})
		return
	}

	var user models.User
	if errFind := h.db.WithContext(c.Request.Context()).Where("username = ?", username).First(&user).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			security.BurnPasswordCheck(password)
			c.JSON(http.StatusUnauthorized, gin.H{"error": invalidCredentialsMessage})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	if !security.CheckPassword(user.Password, password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": invalidCredentialsMessage})
		return
	}

	if !user.Active {
		c.JSON(http.StatusForbidden, gin.H{"error": "user disabled"})
		return
	}

	if _, errIssue := h.sessions.Issue(c, user.ID, c.ClientIP()); errIssue != nil {
		log.WithError(errIssue).Error("issue session failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create session failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": selfUserView(&user)})
}

// Logout invalidates the session server-side and clears the cookie. A
// second logout with the same cookie succeeds as well.
func (h *AuthHandler) Logout(c *gin.Context) {
	if errRevoke := h.sessions.Revoke(c); errRevoke != nil {
		log.WithError(errRevoke).Error("revoke session failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
