package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/skillcam-io/skillcam-api/internal/dto"
)

const (
	listCacheKeyAll        = "submissions:list:all"
	listCacheKeyUserPrefix = "submissions:list:user:"
)

// SubmissionCache keeps enriched submission lists in Redis for a short TTL.
// All methods are best-effort: cache failures are logged and the caller falls
// through to the database. A nil cache disables caching entirely.
type SubmissionCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewSubmissionCache constructs the cache wrapper.
func NewSubmissionCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *SubmissionCache {
	return &SubmissionCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "submission_cache").Logger(),
	}
}

func listCacheKey(trainer bool, userID string) string {
	if trainer {
		return listCacheKeyAll
	}
	return listCacheKeyUserPrefix + userID
}

// GetList returns the cached list for the key, if present.
func (c *SubmissionCache) GetList(ctx context.Context, key string) ([]dto.SubmissionSummary, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}

	var items []dto.SubmissionSummary
	if err := json.Unmarshal(raw, &items); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("dropping corrupt cache entry")
		c.client.Del(ctx, key)
		return nil, false
	}

	return items, true
}

// SetList stores the list under the key for the configured TTL.
func (c *SubmissionCache) SetList(ctx context.Context, key string, items []dto.SubmissionSummary) {
	if c == nil || c.client == nil {
		return
	}

	raw, err := json.Marshal(items)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to marshal cache entry")
		return
	}

	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("failed to store cache entry")
	}
}

// Invalidate drops the trainer-wide list and the owner's list after any write
// that changes what a list view would show.
func (c *SubmissionCache) Invalidate(ctx context.Context, ownerID string) {
	if c == nil || c.client == nil {
		return
	}

	keys := []string{listCacheKeyAll}
	if ownerID != "" {
		keys = append(keys, listCacheKeyUserPrefix+ownerID)
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to invalidate cache")
	}
}
