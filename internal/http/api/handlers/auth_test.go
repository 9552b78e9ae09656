package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/service-panel/servicepanel/internal/models"
	"github.com/service-panel/servicepanel/internal/session"
)

func setupAuthHandler(t *testing.T) (*AuthHandler, *session.Manager, *models.User) {
	t.Helper()
	conn := setupTestDB(t)
	user := createTestUser(t, conn, "alice", "correct-horse", models.RoleUser, true)
	mgr := session.NewManager(session.NewGormStore(conn), "sp_session", time.Hour, false)
	return NewAuthHandler(conn, mgr), mgr, &user
}

func TestLoginUnknownUserAndWrongPasswordSameMessage(t *testing.T) {
	h, _, _ := setupAuthHandler(t)

	c, w := newJSONContext(t, http.MethodPost, "/v0/auth/login", map[string]string{
		"username": "nobody",
		"password": "whatever",
	})
	h.Login(c)
	requireStatus(t, w, http.StatusUnauthorized)
	var missing struct {
		Error string `json:"error"`
	}
	decodeJSONBody(t, w, &missing)

	c2, w2 := newJSONContext(t, http.MethodPost, "/v0/auth/login", map[string]string{
		"username": "alice",
		"password": "wrong-password",
	})
	h.Login(c2)
	requireStatus(t, w2, http.StatusUnauthorized)
	var wrong struct {
		Error string `json:"error"`
	}
	decodeJSONBody(t, w2, &wrong)

	if missing.Error != wrong.Error {
		t.Fatalf("expected identical error messages, got %q and %q", missing.Error, wrong.Error)
	}
	if missing.Error != "invalid credentials" {
		t.Fatalf("unexpected error message %q", missing.Error)
	}
}

func TestLoginSuccessSetsSessionCookie(t *testing.T) {
	h, mgr, user := setupAuthHandler(t)

	c, w := newJSONContext(t, http.MethodPost, "/v0/auth/login", map[string]string{
		"username": "alice",
		"password": "correct-horse",
	})
	h.Login(c)
	requireStatus(t, w, http.StatusOK)

	cookies := w.Result().Cookies()
	var sessionID string
	for _, cookie := range cookies {
		if cookie.Name == mgr.CookieName() {
			sessionID = cookie.Value
		}
	}
	if sessionID == "" {
		t.Fatalf("expected session cookie %q to be set", mgr.CookieName())
	}

	var sess models.Session
	if errFind := h.db.First(&sess, "id = ?", sessionID).Error; errFind != nil {
		t.Fatalf("expected session row for cookie value: %v", errFind)
	}
	if sess.UserID != user.ID {
		t.Fatalf("session bound to user %d, want %d", sess.UserID, user.ID)
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	h, mgr, user := setupAuthHandler(t)

	c, _ := newJSONContext(t, http.MethodPost, "/v0/auth/login", nil)
	sess, errIssue := mgr.Issue(c, user.ID, "127.0.0.1")
	if errIssue != nil {
		t.Fatalf("issue session: %v", errIssue)
	}

	c1, w1 := newJSONContext(t, http.MethodPost, "/v0/auth/logout", nil)
	c1.Request.AddCookie(&http.Cookie{Name: mgr.CookieName(), Value: sess.ID})
	h.Logout(c1)
	requireStatus(t, w1, http.StatusOK)

	var count int64
	if errCount := h.db.Model(&models.Session{}).Where("id = ?", sess.ID).Count(&count).Error; errCount != nil {
		t.Fatalf("count sessions: %v", errCount)
	}
	if count != 0 {
		t.Fatalf("expected session to be deleted, found %d rows", count)
	}

	// A second logout with the same dead cookie must still succeed.
	c2, w2 := newJSONContext(t, http.MethodPost, "/v0/auth/logout", nil)
	c2.Request.AddCookie(&http.Cookie{Name: mgr.CookieName(), Value: sess.ID})
	h.Logout(c2)
	requireStatus(t, w2, http.StatusOK)
}

func TestLoginDisabledUser(t *testing.T) {
	conn := setupTestDB(t)
	createTestUser(t, conn, "bob", "hunter2-long", models.RoleUser, false)
	mgr := session.NewManager(session.NewGormStore(conn), "sp_session", time.Hour, false)
	h := NewAuthHandler(conn, mgr)

	c, w := newJSONContext(t, http.MethodPost, "/v0/auth/login", map[string]string{
		"username": "bob",
		"password": "hunter2-long",
	})
	h.Login(c)
	requireStatus(t, w, http.StatusForbidden)
}
