package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the access token payload. Authority derives entirely from the
// HMAC signature and expiry; nothing is stored server-side.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// AdminID returns the subject as the admin's numeric ID.
func (c *Claims) AdminID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid subject %q: %w", c.Subject, err)
	}
	return id, nil
}

// TokenPair is a freshly issued access token plus the raw refresh secret.
// The raw secret exists only here and in the client's cookie.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenService signs and verifies access tokens, and generates and hashes
// the opaque refresh secrets.
type TokenService struct {
	secret       []byte
	accessTTL    time.Duration
	refreshTTL   time.Duration
	refreshBytes int
}

// NewTokenService creates a token service.
// The signing secret must be validated at startup (config.Validate); an
// empty secret here is a programming error, not a runtime condition.
func NewTokenService(secret string, accessTTL, refreshTTL time.Duration, refreshBytes int) *TokenService {
	return &TokenService{
		secret:       []byte(secret),
		accessTTL:    accessTTL,
		refreshTTL:   refreshTTL,
		refreshBytes: refreshBytes,
	}
}

// AccessTTL returns the access token lifetime.
func (s *TokenService) AccessTTL() time.Duration {
	return s.accessTTL
}

// RefreshTTL returns the refresh token lifetime.
func (s *TokenService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

// SignAccessToken mints a short-lived HS256 token for an admin.
func (s *TokenService) SignAccessToken(adminID int64, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(adminID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// VerifyAccessToken parses and verifies a token string.
// Any failure - bad signature, malformed structure, expiry - is reported as
// ErrInvalidToken so callers branch explicitly to the refresh flow instead
// of inspecting failure modes.
func (s *TokenService) VerifyAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GenerateRefreshSecret returns a new opaque refresh secret:
// cryptographically random bytes, hex encoded.
func (s *TokenService) GenerateRefreshSecret() (string, error) {
	b := make([]byte, s.refreshBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate refresh secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// HashRefreshSecret returns the SHA-256 storage hash of a refresh secret.
// Refresh secrets are high-entropy, so a fast deterministic hash is enough;
// this is a lookup key, not brute-force protection.
func (s *TokenService) HashRefreshSecret(secret string) string {
	h := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(h[:])
}

// RefreshExpiresAt returns the expiry for a refresh token issued now.
func (s *TokenService) RefreshExpiresAt(now time.Time) time.Time {
	return now.Add(s.refreshTTL)
}
