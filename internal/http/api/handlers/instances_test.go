package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/service-panel/servicepanel/internal/models"
)

func TestUpdateInstanceWithoutIDFailsWithoutWrite(t *testing.T) {
	conn := setupTestDB(t)
	instance := createTestInstance(t, conn, "search")
	h := NewInstanceHandler(conn)

	c, w := newJSONContext(t, http.MethodPatch, "/v0/admin/instances", map[string]any{
		"name": "renamed",
	})
	h.Update(c)
	requireStatus(t, w, http.StatusBadRequest)

	var stored models.ServiceInstance
	if errFind := conn.First(&stored, "id = ?", instance.ID).Error; errFind != nil {
		t.Fatalf("find instance: %v", errFind)
	}
	if stored.Name != "search" {
		t.Fatalf("instance renamed despite missing id: %q", stored.Name)
	}
}

func TestUpdateDataWithoutIDFails(t *testing.T) {
	conn := setupTestDB(t)
	h := NewInstanceHandler(conn)

	c, w := newJSONContext(t, http.MethodPut, "/v0/admin/instances/data", map[string]any{
		"data": map[string]any{"k": "v"},
	})
	h.UpdateData(c)
	requireStatus(t, w, http.StatusBadRequest)
}

func TestUpdateInstanceBumpsUpdatedAt(t *testing.T) {
	conn := setupTestDB(t)
	instance := createTestInstance(t, conn, "relay")
	stale := time.Now().UTC().Add(-time.Hour)
	if errBackdate := conn.Model(&models.ServiceInstance{}).Where("id = ?", instance.ID).
		Update("updated_at", stale).Error; errBackdate != nil {
		t.Fatalf("backdate instance: %v", errBackdate)
	}
	h := NewInstanceHandler(conn)

	c, w := newJSONContext(t, http.MethodPatch, "/v0/admin/instances", map[string]any{
		"id":   instance.ID,
		"name": "relay-2",
	})
	h.Update(c)
	requireStatus(t, w, http.StatusOK)

	var stored models.ServiceInstance
	if errFind := conn.First(&stored, "id = ?", instance.ID).Error; errFind != nil {
		t.Fatalf("find instance: %v", errFind)
	}
	if stored.Name != "relay-2" {
		t.Fatalf("name not updated: %q", stored.Name)
	}
	if !stored.UpdatedAt.After(stale.Add(time.Minute)) {
		t.Fatalf("updated_at not bumped: %v", stored.UpdatedAt)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	conn := setupTestDB(t)
	h := NewInstanceHandler(conn)

	c, w := newJSONContext(t, http.MethodGet, "/v0/instances/si_missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "si_missing"}}
	h.GetByID(c)
	requireStatus(t, w, http.StatusNotFound)
}

func TestGetByIDHidesAdminFields(t *testing.T) {
	conn := setupTestDB(t)
	instance := createTestInstance(t, conn, "files")
	if errData := conn.Model(&models.ServiceInstance{}).Where("id = ?", instance.ID).
		Update("data", []byte(`{"secret":"stuff"}`)).Error; errData != nil {
		t.Fatalf("set data: %v", errData)
	}
	h := NewInstanceHandler(conn)

	c, w := newJSONContext(t, http.MethodGet, "/v0/instances/"+instance.ID, nil)
	c.Params = gin.Params{{Key: "id", Value: instance.ID}}
	h.GetByID(c)
	requireStatus(t, w, http.StatusOK)

	var resp map[string]any
	decodeJSONBody(t, w, &resp)
	if _, ok := resp["data"]; ok {
		t.Fatalf("user view leaks the opaque payload: %v", resp)
	}
	if resp["name"] != "files" {
		t.Fatalf("user view missing display fields: %v", resp)
	}
}

func TestListWithTokenFiltersByGrant(t *testing.T) {
	conn := setupTestDB(t)
	granted := createTestUser(t, conn, "kate", "kate-pass-1", models.RoleUser, true)
	ungranted := createTestUser(t, conn, "leo", "leo-pass-1", models.RoleUser, true)
	instance := createTestInstance(t, conn, "shared")
	revokedInstance := createTestInstance(t, conn, "revoked")
	grant := createTestGrant(t, conn, granted.ID, instance.ID, true)
	createTestGrant(t, conn, granted.ID, revokedInstance.ID, false)
	h := NewInstanceHandler(conn)

	c, w := newJSONContext(t, http.MethodGet, "/v0/instances", nil)
	c.Set("userID", granted.ID)
	h.ListWithToken(c)
	requireStatus(t, w, http.StatusOK)

	var resp struct {
		Instances []struct {
			ID    string `json:"id"`
			Token string `json:"token"`
		} `json:"instances"`
	}
	decodeJSONBody(t, w, &resp)
	if len(resp.Instances) != 1 {
		t.Fatalf("expected 1 instance, got %d", len(resp.Instances))
	}
	if resp.Instances[0].ID != instance.ID || resp.Instances[0].Token != grant.Token {
		t.Fatalf("unexpected listing entry: %+v", resp.Instances[0])
	}

	c2, w2 := newJSONContext(t, http.MethodGet, "/v0/instances", nil)
	c2.Set("userID", ungranted.ID)
	h.ListWithToken(c2)
	requireStatus(t, w2, http.StatusOK)

	var respEmpty struct {
		Instances []map[string]any `json:"instances"`
	}
	decodeJSONBody(t, w2, &respEmpty)
	if len(respEmpty.Instances) != 0 {
		t.Fatalf("expected empty listing for ungranted user, got %d", len(respEmpty.Instances))
	}
}

func TestDeleteInstanceCascades(t *testing.T) {
	conn := setupTestDB(t)
	user := createTestUser(t, conn, "mary", "mary-pass-1", models.RoleUser, true)
	instance := createTestInstance(t, conn, "doomed")
	createTestGrant(t, conn, user.ID, instance.ID, true)
	usage := models.ResourceUsageLog{InstanceID: instance.ID, Action: "query", CreatedAt: time.Now().UTC()}
	if errCreate := conn.Create(&usage).Error; errCreate != nil {
		t.Fatalf("create usage row: %v", errCreate)
	}
	h := NewInstanceHandler(conn)

	c, w := newJSONContext(t, http.MethodDelete, "/v0/admin/instances/"+instance.ID+"?delete_logs=true", nil)
	c.Params = gin.Params{{Key: "id", Value: instance.ID}}
	h.Delete(c)
	requireStatus(t, w, http.StatusOK)

	var grants, instances, logs int64
	conn.Model(&models.UserInstanceAbility{}).Where("instance_id = ?", instance.ID).Count(&grants)
	conn.Model(&models.ServiceInstance{}).Where("id = ?", instance.ID).Count(&instances)
	conn.Model(&models.ResourceUsageLog{}).Where("instance_id = ?", instance.ID).Count(&logs)
	if grants != 0 || instances != 0 || logs != 0 {
		t.Fatalf("cascade incomplete: grants=%d instances=%d logs=%d", grants, instances, logs)
	}
}

func TestDeleteInstanceKeepsLogsWhenAsked(t *testing.T) {
	conn := setupTestDB(t)
	instance := createTestInstance(t, conn, "kept-logs")
	usage := models.ResourceUsageLog{InstanceID: instance.ID, Action: "query", CreatedAt: time.Now().UTC()}
	if errCreate := conn.Create(&usage).Error; errCreate != nil {
		t.Fatalf("create usage row: %v", errCreate)
	}
	h := NewInstanceHandler(conn)

	c, w := newJSONContext(t, http.MethodDelete, "/v0/admin/instances/"+instance.ID, nil)
	c.Params = gin.Params{{Key: "id", Value: instance.ID}}
	h.Delete(c)
	requireStatus(t, w, http.StatusOK)

	var instances, logs int64
	conn.Model(&models.ServiceInstance{}).Where("id = ?", instance.ID).Count(&instances)
	conn.Model(&models.ResourceUsageLog{}).Where("instance_id = ?", instance.ID).Count(&logs)
	if instances != 0 {
		t.Fatalf("instance row survived delete")
	}
	if logs != 1 {
		t.Fatalf("expected usage logs to remain, found %d", logs)
	}
}
