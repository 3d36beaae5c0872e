package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "finjar/internal/errors"
)

// expirySecondsCutoff is the smallest value (in milliseconds) taken at face
// value. Anything below it cannot plausibly be a millisecond TTL (~16.7
// minutes) and is treated as seconds supplied by a misconfigured deployment.
const expirySecondsCutoff = 1_000_000

// Claims represents the identity carried inside a bearer token.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	jwt.RegisteredClaims
}

// JWTService issues and verifies signed, time-bound identity tokens.
type JWTService struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTService creates a token service. expiryMS is the configured token
// lifetime in milliseconds, normalized through the seconds/milliseconds shim.
func NewJWTService(secret string, expiryMS int64) *JWTService {
	return &JWTService{
		secret: []byte(secret),
		ttl:    normalizeExpiry(expiryMS),
	}
}

// TTL returns the effective token lifetime.
func (s *JWTService) TTL() time.Duration {
	return s.ttl
}

// Generate issues a signed token for the user. The JTI is a fresh UUID so the
// token can be individually revoked at logout.
func (s *JWTService) Generate(userID uuid.UUID, name string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate checks signature and expiry and returns the claims. Malformed,
// unsigned and expired tokens all map to the same error.
func (s *JWTService) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

// normalizeExpiry converts a configured millisecond TTL to a duration,
// reinterpreting implausibly small values as seconds.
func normalizeExpiry(expiryMS int64) time.Duration {
	if expiryMS <= 0 {
		return time.Hour
	}
	if expiryMS < expirySecondsCutoff {
		return time.Duration(expiryMS) * time.Second
	}
	return time.Duration(expiryMS) * time.Millisecond
}
