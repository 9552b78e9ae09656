package handlers

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/service-panel/servicepanel/internal/models"
	"gorm.io/gorm"
)

// Errors returned by resolveGrant.
var (
	// errGrantNotFound indicates no grant matches the (instance, token) pair.
	errGrantNotFound = errors.New("grant not found")
	// errGrantRevoked indicates the matched grant has can_use = false.
	errGrantRevoked = errors.New("grant revoked")
)

// VerifyHandler serves the unauthenticated verification endpoint that
// service instances call with a bearer token.
type VerifyHandler struct {
	db *gorm.DB
}

// NewVerifyHandler constructs a VerifyHandler.
func NewVerifyHandler(db *gorm.DB) *VerifyHandler {
	return &VerifyHandler{db: db}
}

// resolveGrant looks up a grant by (instance, token) and checks that it is
// usable. Shared by the verification endpoint and the usage report.
func resolveGrant(ctx context.Context, db *gorm.DB, instanceID, token string) (*models.UserInstanceAbility, error) {
	var grant models.UserInstanceAbility
	if errFind := db.WithContext(ctx).
		Where("instance_id = ? AND token = ?", instanceID, token).
		First(&grant).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, errGrantNotFound
		}
		return nil, errFind
	}
	// Should be unreachable given the lookup predicate; kept as an explicit
	// guard against the token matching a row for a different instance.
	if grant.InstanceID != instanceID {
		return nil, errGrantNotFound
	}
	if !grant.CanUse {
		return nil, errGrantRevoked
	}
	return &grant, nil
}

// verifyAbilityRequest defines the request body for ability verification.
type verifyAbilityRequest struct {
	InstanceID string `json:"instanceId"`
	UserToken  string `json:"userToken"`
	RequestIP  string `json:"requestIp"`
	UserIP     string `json:"userIp"`
}

// VerifyUserAbility exchanges an access token for the owning user's ID.
//
// The IP fields are validated as well-formed addresses but take no part in
// the authorization decision; they are reserved for auditing and rate
// limiting.
func (h *VerifyHandler) VerifyUserAbility(c *gin.Context) {
	var body verifyAbilityRequest
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
	if net.ParseIP(strings.TrimSpace(body.RequestIP)) == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed requestIp"})
		return
	}
	if net.ParseIP(strings.TrimSpace(body.UserIP)) == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed userIp"})
		return
	}

	grant, errResolve := resolveGrant(c.Request.Context(), h.db, instanceID, token)
	switch {
	case errResolve == nil:
		c.JSON(http.StatusOK, gin.H{"userId": grant.UserID})
	case errors.Is(errResolve, errGrantNotFound):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
	case errors.Is(errResolve, errGrantRevoked):
		c.JSON(http.StatusForbidden, gin.H{"error": "access revoked"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
	}
}
