package entities

import (
	"time"

	"gorm.io/gorm"
)

// LoginSession is a server-side session created on cookie login. ID is an
// opaque random token and is also the cookie value.
type LoginSession struct {
	ID        string         `gorm:"primaryKey;size:128" json:"id"`
	UserUUID  string         `gorm:"index;size:36;not null" json:"user_id"`
	ExpiresAt time.Time      `gorm:"index;not null" json:"expires_at"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// Expired reports whether the session is no longer valid at now.
func (s *LoginSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
