package auth

import (
	"context"
	"time"

	"finjar/internal/cache"
)

const revokedTokenKeyPrefix = "revoked_token:"

// TokenStoreInterface defines revoked-token storage operations.
type TokenStoreInterface interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// TokenStore tracks revoked token IDs in Redis until they would have expired
// anyway. Lookups fail open: if Redis is unreachable a token is treated as
// live, matching the cache client's fail-safe behaviour.
type TokenStore struct {
	cache *cache.Client
}

// Ensure TokenStore implements TokenStoreInterface
var _ TokenStoreInterface = (*TokenStore)(nil)

// NewTokenStore creates a new token store.
func NewTokenStore(cache *cache.Client) *TokenStore {
	return &TokenStore{cache: cache}
}

// Revoke marks a token ID as revoked for the remaining token lifetime.
func (s *TokenStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.cache.Set(ctx, revokedTokenKeyPrefix+tokenID, []byte("1"), ttl)
}

// IsRevoked checks whether a token ID has been revoked.
func (s *TokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	data, err := s.cache.Get(ctx, revokedTokenKeyPrefix+tokenID)
	if err != nil {
		return false, nil
	}
	return data != nil, nil
}
