package anirec

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/otakulab/anirec/internal/db"
	dbMemory "github.com/otakulab/anirec/internal/db/memory"
	dbRedis "github.com/otakulab/anirec/internal/db/redis"
	"github.com/otakulab/anirec/internal/metrics"
	catalogrepo "github.com/otakulab/anirec/internal/repository/catalog"
	"github.com/otakulab/anirec/internal/repository/reccache"
	discoveruc "github.com/otakulab/anirec/internal/usecase/discover"
	healthuc "github.com/otakulab/anirec/internal/usecase/health"
	recommenduc "github.com/otakulab/anirec/internal/usecase/recommend"
	suggestuc "github.com/otakulab/anirec/internal/usecase/suggest"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultCacheKeyPrefix   = "anirec:"
)

// Client is the anirec SDK entry point.
type Client struct {
	store        db.Store
	suggestSvc   *suggestuc.Service
	recommendSvc *recommenduc.Service
	discoverSvc  *discoveruc.Service
	healthSvc    *healthuc.Service
}

// New loads the catalog and assembles the recommendation services.
// The provided context is used for catalog loading and the cache readiness
// check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		dataDir:      "data",
		cacheTTL:     time.Hour,
		suggestLimit: 10,
		logger:       zap.NewNop(),
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	loader := catalogrepo.NewLoader(cfg.dataDir, cfg.download, cfg.sourceURLs, cfg.logger)
	catalog, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("anirec: load catalog: %w", err)
	}

	var store db.Store
	if len(cfg.redisAddrs) > 0 {
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.redisAddrs,
			Password: cfg.redisPassword,
		})
		if err != nil {
			return nil, fmt.Errorf("anirec: create redis store: %w", err)
		}
		if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("anirec: cache not ready: %w", err)
		}
	} else {
		store = dbMemory.NewStore()
	}

	recCache := reccache.New(store, cfg.cacheTTL, defaultCacheKeyPrefix,
		metrics.RecommendCacheTotal, cfg.logger)

	recParams := recommenduc.DefaultParams()
	if cfg.jaccardThreshold > 0 {
		recParams.JaccardThreshold = cfg.jaccardThreshold
	}
	if cfg.svdComponents > 0 {
		recParams.Components = cfg.svdComponents
	}

	discParams := discoveruc.DefaultParams()
	if cfg.discoverComponents > 0 {
		discParams.Components = cfg.discoverComponents
	}
	if cfg.discoverLimit > 0 {
		discParams.DefaultLimit = cfg.discoverLimit
	}

	return &Client{
		store:        store,
		suggestSvc:   suggestuc.New(catalog, cfg.suggestLimit),
		recommendSvc: recommenduc.New(catalog, recParams, cfg.logger).WithCache(recCache),
		discoverSvc:  discoveruc.New(catalog, discParams, cfg.logger),
		healthSvc:    healthuc.New(catalog, store),
	}, nil
}

// Suggest returns up to the configured number of catalog titles starting
// with the query, case-insensitively. The result is never nil.
func (c *Client) Suggest(ctx context.Context, query string) []string {
	return c.suggestSvc.Suggest(ctx, query)
}

// Recommend returns ranked recommendations for an exact catalog title.
// Returns ErrTitleNotFound when the title is not in the catalog.
func (c *Client) Recommend(ctx context.Context, title string) ([]Recommendation, error) {
	recs, err := c.recommendSvc.Recommend(ctx, title)
	if err != nil {
		return nil, err
	}
	out := make([]Recommendation, len(recs))
	for i, r := range recs {
		out[i] = Recommendation{
			Anime:      animeFromDomain(r.Anime),
			Similarity: r.Similarity,
		}
	}
	return out, nil
}

// Discover returns catalog entries matching every requested filter
// dimension, best matches first.
func (c *Client) Discover(ctx context.Context, f DiscoverFilters) ([]DiscoveryResult, error) {
	results, err := c.discoverSvc.Discover(ctx, discoveruc.Filters{
		Genres:      f.Genres,
		Episodes:    f.Episodes,
		Studios:     f.Studios,
		Ratings:     f.Ratings,
		Description: f.Description,
		Limit:       f.Limit,
	})
	if err != nil {
		return nil, err
	}
	out := make([]DiscoveryResult, len(results))
	for i, r := range results {
		out[i] = DiscoveryResult{
			Anime:       animeFromDomain(r.Anime),
			FilterScore: r.FilterScore,
			Similarity:  r.Similarity,
		}
	}
	return out, nil
}

// Health reports catalog and cache health.
func (c *Client) Health(ctx context.Context) HealthReport {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthReport{Status: string(report.Status), Checks: checks}
}

// Close releases the cache store.
func (c *Client) Close() {
	c.store.Close()
}
