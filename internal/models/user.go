package models

import "time"

// User roles.
const (
	// RoleAdmin grants access to the administrative surface.
	RoleAdmin = "admin"
	// RoleUser is the default role for panel users.
	RoleUser = "user"
)

// User represents a panel account stored in the database.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Username string `gorm:"type:text;not null;uniqueIndex"` // Unique login name.
	Password string `gorm:"type:text;not null"`             // Hashed password.

	Name  string `gorm:"type:text"` // Display name.
	Email string `gorm:"type:text"` // Contact email.

	Role   string `gorm:"type:text;not null;default:user"` // Either RoleAdmin or RoleUser.
	Active bool   `gorm:"not null;default:true"`           // Whether the user can sign in and receive grants.

	UserGroupID *uint64    `gorm:"index"`                  // Owning user group ID.
	UserGroup   *UserGroup `gorm:"foreignKey:UserGroupID"` // Associated group record.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
