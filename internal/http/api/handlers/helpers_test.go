package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/service-panel/servicepanel/internal/models"
	"github.com/service-panel/servicepanel/internal/security"
	"gorm.io/gorm"
)

var testDBSequence atomic.Uint64

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:handlers_%d_%d?mode=memory&cache=shared", testDBSequence.Add(1), time.Now().UnixNano())
	conn, errOpen := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := conn.AutoMigrate(
		&models.UserGroup{},
		&models.User{},
		&models.Session{},
		&models.ServiceInstance{},
		&models.UserInstanceAbility{},
		&models.ResourceUsageLog{},
		&models.Setting{},
	); errMigrate != nil {
		t.Fatalf("migrate db: %v", errMigrate)
	}
	return conn
}

// newJSONContext builds a gin test context carrying a JSON request body.
func newJSONContext(t *testing.T, method, target string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader *bytes.Reader
	if body != nil {
		payload, errMarshal := json.Marshal(body)
		if errMarshal != nil {
			t.Fatalf("marshal body: %v", errMarshal)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	c.Request = httptest.NewRequest(method, target, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func createTestUser(t *testing.T, conn *gorm.DB, username, password, role string, active bool) models.User {
	t.Helper()
	hash, errHash := security.HashPassword(password)
	if errHash != nil {
		t.Fatalf("hash password: %v", errHash)
	}
	now := time.Now().UTC()
	user := models.User{
		Username:  username,
		Password:  hash,
		Role:      role,
		Active:    active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if errCreate := conn.Create(&user).Error; errCreate != nil {
		t.Fatalf("create user: %v", errCreate)
	}
	// The column's default:true tag makes gorm substitute the default for a
	// zero-value Active on insert, so an inactive user needs an explicit
	// update to actually persist active=false.
	if !active {
		if errUpdate := conn.Model(&user).Update("active", false).Error; errUpdate != nil {
			t.Fatalf("deactivate user: %v", errUpdate)
		}
		user.Active = false
	}
	return user
}

func createTestInstance(t *testing.T, conn *gorm.DB, name string) models.ServiceInstance {
	t.Helper()
	id, errGenerate := security.GenerateInstanceID()
	if errGenerate != nil {
		t.Fatalf("generate instance id: %v", errGenerate)
	}
	now := time.Now().UTC()
	instance := models.ServiceInstance{
		ID:        id,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if errCreate := conn.Create(&instance).Error; errCreate != nil {
		t.Fatalf("create instance: %v", errCreate)
	}
	return instance
}

func createTestGrant(t *testing.T, conn *gorm.DB, userID uint64, instanceID string, canUse bool) models.UserInstanceAbility {
	t.Helper()
	token, errGenerate := security.GenerateAccessToken()
	if errGenerate != nil {
		t.Fatalf("generate access token: %v", errGenerate)
	}
	now := time.Now().UTC()
	grant := models.UserInstanceAbility{
		UserID:     userID,
		InstanceID: instanceID,
		Token:      token,
		CanUse:     canUse,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if errCreate := conn.Create(&grant).Error; errCreate != nil {
		t.Fatalf("create grant: %v", errCreate)
	}
	return grant
}

func decodeJSONBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if errDecode := json.Unmarshal(w.Body.Bytes(), out); errDecode != nil {
		t.Fatalf("decode response: %v body=%s", errDecode, w.Body.String())
	}
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected status %d, got %d body=%s", want, w.Code, w.Body.String())
	}
}
