package session

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/service-panel/servicepanel/internal/models"
	"github.com/service-panel/servicepanel/internal/security"
)

// Manager issues, resolves, and revokes sessions and materializes the
// session cookie on the HTTP response.
type Manager struct {
	store        Store
	cookieName   string
	ttl          time.Duration
	cookieSecure bool
}

// NewManager constructs a Manager on top of a Store.
func NewManager(store Store, cookieName string, ttl time.Duration, cookieSecure bool) *Manager {
	return &Manager{store: store, cookieName: cookieName, ttl: ttl, cookieSecure: cookieSecure}
}

// CookieName returns the configured session cookie name.
func (m *Manager) CookieName() string { return m.cookieName }

// Issue creates a session bound to the user and sets the cookie.
func (m *Manager) Issue(c *gin.Context, userID uint64, clientIP string) (*models.Session, error) {
	id, errGenerate := security.GenerateSessionID()
	if errGenerate != nil {
		return nil, errGenerate
	}
	now := time.Now().UTC()
	sess := &models.Session{
		ID:        id,
		UserID:    userID,
		CurrentIP: clientIP,
		ExpiresAt: now.Add(m.ttl),
		CreatedAt: now,
	}
	if errCreate := m.store.Create(c.Request.Context(), sess); errCreate != nil {
		return nil, errCreate
	}
	c.SetCookie(m.cookieName, id, int(m.ttl/time.Second), "/", "", m.cookieSecure, true)
	return sess, nil
}

// Resolve returns the live session referenced by the request cookie, or
// ErrNotFound when the cookie is absent, unknown, or expired.
func (m *Manager) Resolve(c *gin.Context) (*models.Session, error) {
	id, errCookie := c.Cookie(m.cookieName)
	if errCookie != nil || id == "" {
		return nil, ErrNotFound
	}
	return m.store.Get(c.Request.Context(), id)
}

// Revoke invalidates the session server-side and clears the cookie.
// Revoking an already-invalidated session is not an error.
func (m *Manager) Revoke(c *gin.Context) error {
	id, errCookie := c.Cookie(m.cookieName)
	if errCookie == nil && id != "" {
		if errDelete := m.store.Delete(c.Request.Context(), id); errDelete != nil {
			return errDelete
		}
	}
	c.SetCookie(m.cookieName, "", -1, "/", "", m.cookieSecure, true)
	return nil
}
