package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the anirec service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Cache     CacheConfig     `yaml:"cache"`
	Suggest   SuggestConfig   `yaml:"suggest"`
	Recommend RecommendConfig `yaml:"recommend"`
	Discover  DiscoverConfig  `yaml:"discover"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// CatalogConfig holds dataset location settings. Each data file is read from
// DataDir; when Download is set, missing files are fetched from SourceURLs
// (file name -> URL) first.
type CatalogConfig struct {
	DataDir    string            `yaml:"data_dir"`
	Download   bool              `yaml:"download"`
	SourceURLs map[string]string `yaml:"source_urls"`
}

// CacheConfig holds recommendation cache settings.
type CacheConfig struct {
	Driver           string   `yaml:"driver"` // none, redis (default: none)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	TTLSec           int      `yaml:"ttl_sec"`
	KeyPrefix        string   `yaml:"key_prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// SuggestConfig holds autocomplete settings.
type SuggestConfig struct {
	Limit int `yaml:"limit"`
}

// RecommendConfig holds recommendation pipeline settings.
type RecommendConfig struct {
	JaccardThreshold float64 `yaml:"jaccard_threshold"`
	SVDComponents    int     `yaml:"svd_components"`
}

// DiscoverConfig holds filtered discovery settings.
type DiscoverConfig struct {
	SVDComponents int `yaml:"svd_components"`
	DefaultLimit  int `yaml:"default_limit"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Catalog.DataDir == "" {
		c.Catalog.DataDir = "data"
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = "none"
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 3600
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "anirec:"
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Suggest.Limit <= 0 {
		c.Suggest.Limit = 10
	}
	if c.Recommend.JaccardThreshold <= 0 {
		c.Recommend.JaccardThreshold = 0.45
	}
	if c.Recommend.SVDComponents <= 0 {
		c.Recommend.SVDComponents = 100
	}
	if c.Discover.SVDComponents <= 0 {
		c.Discover.SVDComponents = 60
	}
	if c.Discover.DefaultLimit <= 0 {
		c.Discover.DefaultLimit = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Cache.Driver {
	case "none", "redis":
		// ok
	default:
		return fmt.Errorf("cache.driver must be \"none\" or \"redis\", got %q", c.Cache.Driver)
	}
	if c.Cache.Driver == "redis" && len(c.Cache.Addrs) == 0 {
		return fmt.Errorf("cache.addrs is required for the redis driver")
	}
	if c.Recommend.JaccardThreshold > 1 {
		return fmt.Errorf("recommend.jaccard_threshold must be at most 1, got %v", c.Recommend.JaccardThreshold)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
