package services

import (
	"time"

	"github.com/mrlokans/crudgate/internal/auth"
	"github.com/mrlokans/crudgate/internal/config"
	"github.com/mrlokans/crudgate/internal/entities"
)

// Page is a list response. Total counts every match, ignoring limit and
// offset.
type Page[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// UserRead is the outward projection of a user. It never carries the
// password hash.
type UserRead struct {
	UUID        string     `json:"uuid"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	IsActive    bool       `json:"is_active"`
	IsSuperuser bool       `json:"is_superuser"`
	LastLogin   *time.Time `json:"last_login"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at"`
}

func userToRead(u *entities.User) UserRead {
	read := UserRead{
		UUID:        u.UUID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		IsActive:    u.IsActive,
		IsSuperuser: u.IsSuperuser,
		LastLogin:   u.LastLogin,
		CreatedAt:   u.CreatedAt,
	}
	if !u.UpdatedAt.IsZero() {
		updated := u.UpdatedAt
		read.UpdatedAt = &updated
	}
	if u.DeletedAt.Valid {
		deleted := u.DeletedAt.Time
		read.DeletedAt = &deleted
	}
	return read
}

// UserCreate is the admin request to create an account.
type UserCreate struct {
	Email       string `json:"email" form:"email" validate:"required,email,max=256"`
	FirstName   string `json:"first_name" form:"first_name" validate:"max=256"`
	LastName    string `json:"last_name" form:"last_name" validate:"max=256"`
	Password    string `json:"password" form:"password" validate:"required,max=128"`
	IsActive    *bool  `json:"is_active" form:"is_active"`
	IsSuperuser bool   `json:"is_superuser" form:"is_superuser"`
	Role        string `json:"role" form:"role" validate:"omitempty,oneof=admin user"`
}

// UserListQuery holds the admin user list filters.
type UserListQuery struct {
	FirstNameEq   string `form:"first_name__eq"`
	FirstNameLike string `form:"first_name__like"`
	LastNameEq    string `form:"last_name__eq"`
	LastNameLike  string `form:"last_name__like"`
	EmailEq       string `form:"email__eq"`
	EmailLike     string `form:"email__like"`
	Limit         int    `form:"limit" validate:"gte=0,lte=1000"`
	Offset        int    `form:"offset" validate:"gte=0"`
}

// PayloadRead is a verified token payload with its times rendered as dates.
type PayloadRead struct {
	auth.Payload
	ExpDt *time.Time `json:"exp_dt"`
	NbfDt *time.Time `json:"nbf_dt"`
	IatDt *time.Time `json:"iat_dt"`
}

func unixToTime(sec int64) *time.Time {
	if sec == 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}

// PayloadToRead adds exp_dt, nbf_dt and iat_dt to p.
func PayloadToRead(p auth.Payload) PayloadRead {
	return PayloadRead{
		Payload: p,
		ExpDt:   unixToTime(p.ExpiresAt),
		NbfDt:   unixToTime(p.NotBefore),
		IatDt:   unixToTime(p.IssuedAt),
	}
}

// LoginRequest is the session login body.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required,min=1,max=512"`
	Password string `json:"password" form:"password" validate:"required,min=1,max=512"`
}

// SessionCookie is the cookie to set after a session login.
type SessionCookie struct {
	config.SessionCookieConfig
	Value string
}

// SessionRead is the outward projection of a login session. The id is
// omitted since it is the credential itself.
type SessionRead struct {
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func sessionToRead(s *entities.LoginSession) SessionRead {
	return SessionRead{UserID: s.UserUUID, ExpiresAt: s.ExpiresAt, CreatedAt: s.CreatedAt}
}

// SampleItemCreate is the body of a sample item create request.
type SampleItemCreate struct {
	Name        string  `json:"name" validate:"required,max=256"`
	Description *string `json:"description"`
}

// SampleItemUpdate is a partial update; omitted fields stay unchanged.
type SampleItemUpdate struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=256"`
	Description *string `json:"description"`
}

// SampleItemListQuery holds the sample item list filters.
type SampleItemListQuery struct {
	NameEq       string     `form:"name__eq"`
	NameLike     string     `form:"name__like"`
	CreatedAtGte *time.Time `form:"created_at__gte" time_format:"2006-01-02T15:04:05Z07:00"`
	CreatedAtLte *time.Time `form:"created_at__lte" time_format:"2006-01-02T15:04:05Z07:00"`
	CreatedAtAsc bool       `form:"created_at__asc"`
	CreatedAtDsc bool       `form:"created_at__desc"`
	Limit        int        `form:"limit" validate:"gte=0,lte=1000"`
	Offset       int        `form:"offset" validate:"gte=0"`
}

// SampleItemRead is the outward projection of a sample item. Meta is only
// filled when requested.
type SampleItemRead struct {
	ID          uint                        `json:"id"`
	UUID        string                      `json:"uuid"`
	Name        string                      `json:"name"`
	Description *string                     `json:"description"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
	Meta        *entities.SampleItemLengths `json:"meta,omitempty"`
}

func sampleItemToRead(item *entities.SampleItem, withMeta bool) SampleItemRead {
	read := SampleItemRead{
		ID:          item.ID,
		UUID:        item.UUID,
		Name:        item.Name,
		Description: item.Description,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
	if withMeta {
		meta := item.Lengths()
		read.Meta = &meta
	}
	return read
}
