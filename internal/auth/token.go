package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/mrlokans/crudgate/internal/apperr"
	"github.com/mrlokans/crudgate/internal/config"
)

// TokenTypeBearer is the only token type issued.
const TokenTypeBearer = "bearer"

// msgInvalidToken is returned for every verification failure so callers
// cannot tell which check rejected the token.
const msgInvalidToken = "Could not validate credentials"

// Payload is the JWT claim set. Times are UNIX seconds.
type Payload struct {
	Issuer         string `json:"iss"`
	Subject        string `json:"sub"`
	Audience       string `json:"aud"`
	ExpiresAt      int64  `json:"exp"`
	NotBefore      int64  `json:"nbf"`
	IssuedAt       int64  `json:"iat"`
	ID             string `json:"jti,omitempty"`
	Email          string `json:"email"`
	IsRefreshToken bool   `json:"is_refresh_token"`
}

func numericDate(sec int64) *jwt.NumericDate {
	if sec == 0 {
		return nil
	}
	return jwt.NewNumericDate(time.Unix(sec, 0))
}

func (p Payload) GetExpirationTime() (*jwt.NumericDate, error) { return numericDate(p.ExpiresAt), nil }
func (p Payload) GetIssuedAt() (*jwt.NumericDate, error)       { return numericDate(p.IssuedAt), nil }
func (p Payload) GetNotBefore() (*jwt.NumericDate, error)      { return numericDate(p.NotBefore), nil }
func (p Payload) GetIssuer() (string, error)                   { return p.Issuer, nil }
func (p Payload) GetSubject() (string, error)                  { return p.Subject, nil }

func (p Payload) GetAudience() (jwt.ClaimStrings, error) {
	if p.Audience == "" {
		return nil, nil
	}
	return jwt.ClaimStrings{p.Audience}, nil
}

// Validate enforces exp > nbf on top of the standard claim checks.
func (p Payload) Validate() error {
	if p.NotBefore != 0 && p.ExpiresAt <= p.NotBefore {
		return fmt.Errorf("exp must be after nbf")
	}
	return nil
}

// Token is the pair returned by login and refresh.
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
}

// TokenCodec signs and verifies JWTs with a symmetric key. It does not care
// whether a payload is an access or refresh token.
type TokenCodec struct {
	secret   []byte
	method   jwt.SigningMethod
	issuer   string
	audience string
	now      func() time.Time
	log      *zap.Logger
}

// NewTokenCodec creates a codec from auth configuration. Only HMAC
// algorithms are accepted.
func NewTokenCodec(cfg config.Auth, now func() time.Time, log *zap.Logger) (*TokenCodec, error) {
	if cfg.TokenSecret == "" {
		return nil, fmt.Errorf("token secret is empty")
	}
	method, ok := jwt.GetSigningMethod(cfg.TokenAlgorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported token algorithm %q", cfg.TokenAlgorithm)
	}
	if now == nil {
		now = time.Now
	}
	return &TokenCodec{
		secret:   []byte(cfg.TokenSecret),
		method:   method,
		issuer:   cfg.TokenIssuer,
		audience: cfg.TokenAudience,
		now:      now,
		log:      log.Named("token"),
	}, nil
}

// CreateToken signs payload. Empty optional claims are omitted.
func (c *TokenCodec) CreateToken(payload Payload) (string, error) {
	signed, err := jwt.NewWithClaims(c.method, payload).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken checks signature, algorithm, issuer, audience, exp and nbf.
// Any failure is reported as a generic Unauthorized error; the cause is
// only logged.
func (c *TokenCodec) VerifyToken(raw string) (*Payload, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	}
	// An empty expected claim would make the parser demand a claim the
	// payload factory never writes.
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}
	if c.audience != "" {
		opts = append(opts, jwt.WithAudience(c.audience))
	}

	var payload Payload
	_, err := jwt.ParseWithClaims(raw, &payload,
		func(*jwt.Token) (interface{}, error) { return c.secret, nil },
		opts...,
	)
	if err != nil {
		c.log.Warn("token verification failed", zap.Error(err))
		return nil, apperr.Wrap(apperr.KindUnauthorized, msgInvalidToken, err)
	}
	return &payload, nil
}
