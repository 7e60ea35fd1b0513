package reccache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/otakulab/anirec/internal/db"
	"github.com/otakulab/anirec/internal/domain"
)

// store is the consumer interface for the recommendation cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Cache stores computed recommendation lists per exact title. Failures are
// logged and treated as misses; the pipeline always has the answer.
type Cache struct {
	store      store
	ttl        time.Duration
	keyPrefix  string
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a recommendation cache.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"/"error"), passed explicitly.
func New(
	s store,
	ttl time.Duration,
	keyPrefix string,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *Cache {
	return &Cache{
		store:      s,
		ttl:        ttl,
		keyPrefix:  keyPrefix,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Get returns the cached recommendations for a title, if present.
func (c *Cache) Get(ctx context.Context, title string) ([]domain.Recommendation, bool) {
	key := c.cacheKey(title)

	data, err := c.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			c.incCache("miss")
		} else {
			c.incCache("error")
			c.logger.Warn("Failed to read recommendation cache", zap.String("title", title), zap.Error(err))
		}
		return nil, false
	}

	var recs []domain.Recommendation
	if err := json.Unmarshal(data, &recs); err != nil {
		c.incCache("error")
		c.logger.Warn("Failed to parse cached recommendations", zap.String("title", title), zap.Error(err))
		return nil, false
	}

	c.incCache("hit")
	return recs, true
}

// Put stores recommendations for a title with the configured TTL.
func (c *Cache) Put(ctx context.Context, title string, recs []domain.Recommendation) {
	data, err := json.Marshal(recs)
	if err != nil {
		c.logger.Warn("Failed to encode recommendations for cache", zap.String("title", title), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, c.cacheKey(title), data, c.ttl); err != nil {
		c.logger.Warn("Failed to write recommendation cache", zap.String("title", title), zap.Error(err))
	}
}

func (c *Cache) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// cacheKey hashes the title so arbitrary user text never becomes a raw key.
func (c *Cache) cacheKey(title string) string {
	h := sha256.Sum256([]byte(title))
	return c.keyPrefix + "rec:" + hex.EncodeToString(h[:])
}
