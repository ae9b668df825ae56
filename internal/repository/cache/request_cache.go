// Package cache wraps repositories with a Redis read-through cache.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/demand-service/internal/domain"
	"github.com/spec-kit/demand-service/internal/events"
	"github.com/spec-kit/demand-service/internal/repository"
)

const defaultTTL = time.Minute

// Client is the subset of the go-redis API the cache relies on.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	SAdd(ctx context.Context, key string, members ...any) *redis.IntCmd
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RequestRepository caches single request reads. Listings always hit storage.
type RequestRepository struct {
	repo   repository.RequestRepository
	client Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRequestRepository wraps repo with a cache keyed by request id.
func NewRequestRepository(repo repository.RequestRepository, client Client, ttl time.Duration, logger *zap.Logger) *RequestRepository {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestRepository{repo: repo, client: client, ttl: ttl, logger: logger}
}

func requestKey(id string) string {
	return "demands:request:" + id
}

// granteeKey holds the ids of cached requests assigned to a grantee.
func granteeKey(granteeID string) string {
	return "demands:grantee:" + granteeID + ":requests"
}

func (c *RequestRepository) GetByID(ctx context.Context, id string) (*domain.Request, error) {
	key := requestKey(id)
	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var cached domain.Request
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
		c.logger.Debug("discarding undecodable cache entry", zap.String("cache_key", key))
	} else if err != redis.Nil {
		c.logger.Warn("request cache read failed", zap.String("cache_key", key), zap.Error(err))
	}

	request, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(request)
	if err != nil {
		return request, nil
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("request cache write failed", zap.String("cache_key", key), zap.Error(err))
		return request, nil
	}
	if request.GranteeID != nil {
		c.indexGrantee(ctx, *request.GranteeID, id)
	}
	return request, nil
}

func (c *RequestRepository) indexGrantee(ctx context.Context, granteeID, requestID string) {
	key := granteeKey(granteeID)
	if err := c.client.SAdd(ctx, key, requestID).Err(); err != nil {
		// Without the index the entry cannot be found on grantee removal.
		c.logger.Warn("grantee index write failed", zap.String("cache_key", key), zap.Error(err))
		c.invalidate(ctx, requestID)
		return
	}
	if err := c.client.Expire(ctx, key, c.ttl).Err(); err != nil {
		c.logger.Warn("grantee index expiry failed", zap.String("cache_key", key), zap.Error(err))
	}
}

// InvalidateGrantee drops every cached request that was assigned to granteeID.
func (c *RequestRepository) InvalidateGrantee(ctx context.Context, granteeID string) error {
	key := granteeKey(granteeID)
	ids, err := c.client.SMembers(ctx, key).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, requestKey(id))
	}
	keys = append(keys, key)
	return c.client.Del(ctx, keys...).Err()
}

// RegisterHandlers evicts cached requests whose grantee account was removed.
func (c *RequestRepository) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventUserRemoved, func(ctx context.Context, event events.Event) error {
		if err := c.InvalidateGrantee(ctx, event.SubjectID); err != nil {
			c.logger.Warn("grantee cache invalidation failed", zap.String("user_id", event.SubjectID), zap.Error(err))
		}
		return nil
	})
}

func (c *RequestRepository) Create(ctx context.Context, request *domain.Request) error {
	return c.repo.Create(ctx, request)
}

func (c *RequestRepository) ListAll(ctx context.Context) ([]domain.Request, error) {
	return c.repo.ListAll(ctx)
}

func (c *RequestRepository) ListByRequester(ctx context.Context, requesterID string) ([]domain.Request, error) {
	return c.repo.ListByRequester(ctx, requesterID)
}

func (c *RequestRepository) ListByGrantee(ctx context.Context, granteeID string) ([]domain.Request, error) {
	return c.repo.ListByGrantee(ctx, granteeID)
}

func (c *RequestRepository) UpdateStatus(ctx context.Context, id string, status domain.RequestStatus, granteeID *string) error {
	c.invalidate(ctx, id)
	err := c.repo.UpdateStatus(ctx, id, status, granteeID)
	c.invalidate(ctx, id)
	return err
}

func (c *RequestRepository) UpdateGrantee(ctx context.Context, id string, granteeID *string) error {
	c.invalidate(ctx, id)
	err := c.repo.UpdateGrantee(ctx, id, granteeID)
	c.invalidate(ctx, id)
	return err
}

// invalidate runs on both sides of a write so a concurrent read cannot re-populate a stale entry
// that outlives the write.
func (c *RequestRepository) invalidate(ctx context.Context, id string) {
	key := requestKey(id)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("request cache invalidation failed", zap.String("cache_key", key), zap.Error(err))
	}
}
