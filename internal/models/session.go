package models

import "time"

// Session stores a server-side login session referenced by the cookie value.
type Session struct {
	ID string `gorm:"primaryKey;type:text"` // Opaque session token.

	UserID uint64 `gorm:"not null;index"` // Owning user ID.

	CurrentIP string `gorm:"type:text"` // Client IP observed at login.

	ExpiresAt time.Time `gorm:"not null;index"`          // Expiry timestamp.
	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}
