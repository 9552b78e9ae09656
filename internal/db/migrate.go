package db

import (
	"fmt"

	"github.com/service-panel/servicepanel/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates the schema for all panel tables.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	return conn.AutoMigrate(
		&models.UserGroup{},
		&models.User{},
		&models.Session{},
		&models.ServiceInstance{},
		&models.UserInstanceAbility{},
		&models.ResourceUsageLog{},
		&models.Setting{},
	)
}
