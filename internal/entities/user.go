package entities

import (
	"time"

	"gorm.io/gorm"
)

// MaxNameLength bounds first/last name and other short text columns.
const MaxNameLength = 256

// Well-known role and permission names seeded on startup.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"

	PermissionAdminRead   = "admin:read"
	PermissionAdminWrite  = "admin:write"
	PermissionAdminUpdate = "admin:update"
	PermissionAdminDelete = "admin:delete"
)

// User is an account that can authenticate. PasswordHash never leaves the
// server: it is excluded from JSON and read projections.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UUID         string         `gorm:"uniqueIndex;size:36;not null" json:"uuid"`
	Email        string         `gorm:"uniqueIndex;size:256;not null" json:"email"`
	FirstName    string         `gorm:"size:256" json:"first_name"`
	LastName     string         `gorm:"size:256" json:"last_name"`
	PasswordHash string         `gorm:"size:255;not null" json:"-"`
	IsActive     bool           `gorm:"not null" json:"is_active"`
	IsSuperuser  bool           `gorm:"not null" json:"is_superuser"`
	LastLogin    *time.Time     `json:"last_login"`
	Roles        []Role         `gorm:"many2many:user_roles;" json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// PermissionNames returns the set of permission names granted through the
// user's roles. Roles and their permissions must be preloaded.
func (u *User) PermissionNames() map[string]struct{} {
	names := make(map[string]struct{})
	for _, role := range u.Roles {
		for _, p := range role.Permissions {
			names[p.Name] = struct{}{}
		}
	}
	return names
}

type Role struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"uniqueIndex;size:64;not null" json:"name"`
	Permissions []Permission `gorm:"many2many:role_permissions;" json:"permissions,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type Permission struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:64;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
