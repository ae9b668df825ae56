package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore remembers token ids that were logged out before expiry.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type redisRevocationStore struct {
	client redis.Cmdable
}

// NewRedisRevocationStore keeps revoked token ids in Redis until the token would have expired.
func NewRedisRevocationStore(client redis.Cmdable) RevocationStore {
	return &redisRevocationStore{client: client}
}

func revocationKey(tokenID string) string {
	return "demands:revoked:" + tokenID
}

func (s *redisRevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" {
		return errors.New("token id required")
	}
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, revocationKey(tokenID), 1, ttl).Err()
}

func (s *redisRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, revocationKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
