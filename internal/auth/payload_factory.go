package auth

import (
	"time"

	"github.com/mrlokans/crudgate/internal/config"
)

// PayloadParams describes the token being issued. Audience, NotBefore and
// ID are optional overrides.
type PayloadParams struct {
	Subject        string
	Email          string
	IsRefreshToken bool
	Audience       string
	NotBefore      *time.Time
	ID             string
}

// PayloadFactory builds claim sets, deciding expiry from the refresh flag.
type PayloadFactory struct {
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewPayloadFactory(cfg config.Auth, now func() time.Time) *PayloadFactory {
	if now == nil {
		now = time.Now
	}
	return &PayloadFactory{
		issuer:     cfg.TokenIssuer,
		audience:   cfg.TokenAudience,
		accessTTL:  time.Duration(cfg.AccessTokenExpireMinutes) * time.Minute,
		refreshTTL: time.Duration(cfg.RefreshTokenExpireMinutes) * time.Minute,
		now:        now,
	}
}

// Create returns a payload with iat = now and exp = now + the access or
// refresh window.
func (f *PayloadFactory) Create(p PayloadParams) Payload {
	now := f.now()

	nbf := now
	if p.NotBefore != nil {
		nbf = *p.NotBefore
	}

	ttl := f.accessTTL
	if p.IsRefreshToken {
		ttl = f.refreshTTL
	}

	aud := f.audience
	if p.Audience != "" {
		aud = p.Audience
	}

	return Payload{
		Issuer:         f.issuer,
		Subject:        p.Subject,
		Audience:       aud,
		ExpiresAt:      now.Add(ttl).Unix(),
		NotBefore:      nbf.Unix(),
		IssuedAt:       now.Unix(),
		ID:             p.ID,
		Email:          p.Email,
		IsRefreshToken: p.IsRefreshToken,
	}
}
