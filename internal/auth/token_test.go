package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mrlokans/crudgate/internal/apperr"
	"github.com/mrlokans/crudgate/internal/config"
)

// frozenNow is 2025-01-02T00:00:00Z.
var frozenNow = time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func testAuthConfig() config.Auth {
	return config.Auth{
		Method:                    config.AuthMethodBearerAccessToken,
		TokenIssuer:               "https://fawapp.com",
		TokenAudience:             "https://fawapp.com",
		TokenSecret:               "test-secret",
		TokenAlgorithm:            "HS256",
		AccessTokenExpireMinutes:  30,
		RefreshTokenExpireMinutes: 60 * 24 * 7,
		PasswordHasher:            HasherBcrypt,
		BcryptCost:                4, // Low cost for faster tests
	}
}

func newTestCodec(t *testing.T, cfg config.Auth, now time.Time) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec(cfg, fixedClock(now), zap.NewNop())
	require.NoError(t, err)
	return codec
}

func TestPayloadFactory_Create(t *testing.T) {
	factory := NewPayloadFactory(testAuthConfig(), fixedClock(frozenNow))

	access := factory.Create(PayloadParams{Subject: "user-uuid", Email: "admin@fawapp.com"})
	refresh := factory.Create(PayloadParams{Subject: "user-uuid", Email: "admin@fawapp.com", IsRefreshToken: true})

	assert.Equal(t, int64(1735776000), access.IssuedAt)
	assert.Equal(t, int64(1735776000), access.NotBefore)
	assert.Equal(t, int64(1735777800), access.ExpiresAt)
	assert.False(t, access.IsRefreshToken)

	assert.Equal(t, int64(1735776000), refresh.IssuedAt)
	assert.Equal(t, int64(1735776000), refresh.NotBefore)
	assert.Equal(t, int64(1736380800), refresh.ExpiresAt)
	assert.Equal(t, refresh.IssuedAt+604800, refresh.ExpiresAt)
	assert.True(t, refresh.IsRefreshToken)

	assert.Equal(t, "https://fawapp.com", access.Issuer)
	assert.Equal(t, "https://fawapp.com", access.Audience)
	assert.Equal(t, "user-uuid", access.Subject)
}

func TestPayloadFactory_Overrides(t *testing.T) {
	factory := NewPayloadFactory(testAuthConfig(), fixedClock(frozenNow))
	nbf := frozenNow.Add(time.Minute)

	p := factory.Create(PayloadParams{
		Subject:   "u",
		Audience:  "https://other.example",
		NotBefore: &nbf,
		ID:        "jti-1",
	})

	assert.Equal(t, "https://other.example", p.Audience)
	assert.Equal(t, nbf.Unix(), p.NotBefore)
	assert.Equal(t, "jti-1", p.ID)
}

func TestTokenCodec_RoundTrip(t *testing.T) {
	cfg := testAuthConfig()
	factory := NewPayloadFactory(cfg, fixedClock(frozenNow))
	codec := newTestCodec(t, cfg, frozenNow.Add(time.Minute))

	for _, refresh := range []bool{false, true} {
		payload := factory.Create(PayloadParams{Subject: "user-uuid", Email: "admin@fawapp.com", IsRefreshToken: refresh})

		raw, err := codec.CreateToken(payload)
		require.NoError(t, err)
		assert.Equal(t, 3, len(strings.Split(raw, ".")))

		got, err := codec.VerifyToken(raw)
		require.NoError(t, err)
		assert.Equal(t, payload, *got)
	}
}

func TestTokenCodec_RoundTripWithoutAudience(t *testing.T) {
	cfg := testAuthConfig()
	cfg.TokenAudience = ""
	codec := newTestCodec(t, cfg, frozenNow)
	payload := NewPayloadFactory(cfg, fixedClock(frozenNow)).Create(PayloadParams{Subject: "user-uuid"})

	raw, err := codec.CreateToken(payload)
	require.NoError(t, err)

	got, err := codec.VerifyToken(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-uuid", got.Subject)
	assert.Empty(t, got.Audience)
}

func TestTokenCodec_OmitsEmptyJTI(t *testing.T) {
	cfg := testAuthConfig()
	codec := newTestCodec(t, cfg, frozenNow)
	payload := NewPayloadFactory(cfg, fixedClock(frozenNow)).Create(PayloadParams{Subject: "u"})

	raw, err := codec.CreateToken(payload)
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(raw, claims)
	require.NoError(t, err)

	assert.NotContains(t, claims, "jti")
	for _, key := range []string{"iss", "sub", "aud", "exp", "nbf", "iat", "email", "is_refresh_token"} {
		assert.Contains(t, claims, key)
	}
}

func TestTokenCodec_VerifyFailures(t *testing.T) {
	cfg := testAuthConfig()
	factory := NewPayloadFactory(cfg, fixedClock(frozenNow))
	payload := factory.Create(PayloadParams{Subject: "user-uuid", Email: "admin@fawapp.com"})

	signer := newTestCodec(t, cfg, frozenNow)
	valid, err := signer.CreateToken(payload)
	require.NoError(t, err)

	otherSecret := cfg
	otherSecret.TokenSecret = "another-secret"
	forged, err := newTestCodec(t, otherSecret, frozenNow).CreateToken(payload)
	require.NoError(t, err)

	otherAlg := cfg
	otherAlg.TokenAlgorithm = "HS512"
	wrongAlg, err := newTestCodec(t, otherAlg, frozenNow).CreateToken(payload)
	require.NoError(t, err)

	wrongAud := payload
	wrongAud.Audience = "https://evil.example"
	wrongAudToken, err := signer.CreateToken(wrongAud)
	require.NoError(t, err)

	wrongIss := payload
	wrongIss.Issuer = "https://evil.example"
	wrongIssToken, err := signer.CreateToken(wrongIss)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		now   time.Time
	}{
		{"expired", valid, frozenNow.Add(31 * time.Minute)},
		{"exactly at exp", valid, time.Unix(payload.ExpiresAt, 0)},
		{"not yet valid", valid, frozenNow.Add(-time.Minute)},
		{"different secret", forged, frozenNow},
		{"different algorithm", wrongAlg, frozenNow},
		{"wrong audience", wrongAudToken, frozenNow},
		{"wrong issuer", wrongIssToken, frozenNow},
		{"malformed", "not.a.jwt", frozenNow},
		{"empty", "", frozenNow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec := newTestCodec(t, cfg, tt.now)
			got, err := codec.VerifyToken(tt.token)

			assert.Nil(t, got)
			require.Error(t, err)
			assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
			e, _ := apperr.As(err)
			assert.Equal(t, "Could not validate credentials", e.Msg)
		})
	}
}

func TestNewTokenCodec_Rejects(t *testing.T) {
	cfg := testAuthConfig()
	cfg.TokenAlgorithm = "RS256"
	_, err := NewTokenCodec(cfg, nil, zap.NewNop())
	assert.Error(t, err)

	cfg = testAuthConfig()
	cfg.TokenSecret = ""
	_, err = NewTokenCodec(cfg, nil, zap.NewNop())
	assert.Error(t, err)
}
