package auth

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordLength is the outer bound accepted at the API, in characters.
const MaxPasswordLength = 128

// bcrypt only reads the first 72 bytes; longer input is rejected, not truncated.
const maxBcryptPasswordBytes = 72

const (
	HasherBcrypt   = "bcrypt"
	HasherArgon2id = "argon2id"
)

var (
	ErrPasswordRequired = errors.New("password is required")
	ErrPasswordTooLong  = errors.New("password exceeds the maximum supported length")
)

// PasswordHasher hashes new passwords with the configured algorithm and
// verifies stored hashes of either supported format.
type PasswordHasher struct {
	algorithm  string
	bcryptCost int
	argon      *argon2id.Params
}

// NewPasswordHasher creates a hasher. Unknown algorithms fall back to bcrypt.
func NewPasswordHasher(algorithm string, bcryptCost int) *PasswordHasher {
	if algorithm != HasherArgon2id {
		algorithm = HasherBcrypt
	}
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &PasswordHasher{
		algorithm:  algorithm,
		bcryptCost: bcryptCost,
		argon:      argon2id.DefaultParams,
	}
}

// Hash creates a one-way salted hash of password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrPasswordRequired
	}
	if len([]rune(password)) > MaxPasswordLength {
		return "", ErrPasswordTooLong
	}

	if h.algorithm == HasherArgon2id {
		return argon2id.CreateHash(password, h.argon)
	}

	if len(password) > maxBcryptPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether plain matches hash. A malformed hash never matches.
func (h *PasswordHasher) Verify(plain, hash string) bool {
	if hash == "" {
		return false
	}
	if strings.HasPrefix(hash, "$argon2id$") {
		match, err := argon2id.ComparePasswordAndHash(plain, hash)
		return err == nil && match
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// NewSessionID returns an unguessable opaque session identifier
// (32 random bytes, URL-safe base64).
func NewSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GenerateSecret creates a random 32-byte hex secret for token signing.
func GenerateSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
