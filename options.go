package anirec

import (
	"time"

	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	dataDir    string
	download   bool
	sourceURLs map[string]string

	redisAddrs    []string
	redisPassword string
	cacheTTL      time.Duration

	suggestLimit     int
	jaccardThreshold float64
	svdComponents    int

	discoverComponents int
	discoverLimit      int

	logger *zap.Logger
}

// WithDataDir sets the directory the catalog files are read from.
// Defaults to "data".
func WithDataDir(dir string) Option {
	return optionFunc(func(c *clientConfig) { c.dataDir = dir })
}

// WithDownload enables fetching missing catalog files from the given
// file-name-to-URL map before loading.
func WithDownload(sourceURLs map[string]string) Option {
	return optionFunc(func(c *clientConfig) {
		c.download = true
		c.sourceURLs = sourceURLs
	})
}

// WithRedis caches computed recommendations in a Redis instance instead of
// in process memory.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.redisAddrs = []string{addr}
		c.redisPassword = password
	})
}

// WithCacheTTL sets how long cached recommendation lists live.
// Defaults to one hour.
func WithCacheTTL(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) { c.cacheTTL = ttl })
}

// WithSuggestLimit caps the number of autocomplete titles returned.
// Defaults to 10.
func WithSuggestLimit(limit int) Option {
	return optionFunc(func(c *clientConfig) { c.suggestLimit = limit })
}

// WithRecommendTuning overrides the recommendation pipeline's genre
// similarity threshold and SVD component count.
func WithRecommendTuning(jaccardThreshold float64, svdComponents int) Option {
	return optionFunc(func(c *clientConfig) {
		c.jaccardThreshold = jaccardThreshold
		c.svdComponents = svdComponents
	})
}

// WithDiscoverTuning overrides filtered discovery's SVD component count and
// default result limit.
func WithDiscoverTuning(svdComponents, defaultLimit int) Option {
	return optionFunc(func(c *clientConfig) {
		c.discoverComponents = svdComponents
		c.discoverLimit = defaultLimit
	})
}

// WithLogger attaches a zap logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) { c.logger = logger })
}
