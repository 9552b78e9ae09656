package models

import (
	"time"

	"gorm.io/datatypes"
)

// ServiceInstance represents an externally hosted resource managed by the panel.
type ServiceInstance struct {
	ID string `gorm:"primaryKey;type:text"` // Generated collision-resistant identifier.

	Name        string `gorm:"type:text;not null"` // Display name.
	Description string `gorm:"type:text"`          // Optional description.
	URL         string `gorm:"type:text"`          // Location of the hosted resource.

	Data datatypes.JSON `gorm:"type:jsonb"` // Opaque configuration payload.

	Abilities []UserInstanceAbility `gorm:"foreignKey:InstanceID"` // Related grant rows.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
