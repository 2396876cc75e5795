package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Database drivers.
const (
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Cache backends.
const (
	CacheRedis  = "redis"
	CacheMemory = "memory"
)

// Config holds the docsearch service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Cache     CacheConfig     `yaml:"cache"`
	Search    SearchConfig    `yaml:"search"`
	Storage   StorageConfig   `yaml:"storage"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
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

// DatabaseConfig holds document store connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis, postgres (default: redis)
	Addrs            []string `yaml:"addrs"`  // redis
	Password         string   `yaml:"password"`
	DSN              string   `yaml:"dsn"` // postgres
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// CacheConfig holds result cache settings.
type CacheConfig struct {
	Backend            string   `yaml:"backend"` // redis, memory (default: redis with the redis driver, memory otherwise)
	TTLSec             int      `yaml:"ttl_sec"`
	MaxEntries         int      `yaml:"max_entries"` // memory backend bound
	CleanupIntervalSec int      `yaml:"cleanup_interval_sec"`
	ExpiryGraceSec     int      `yaml:"expiry_grace_sec"` // redis native expiry slack past expires_at
	WarmupQueries      []string `yaml:"warmup_queries"`   // natural-mode first pages generated at startup
}

// SearchConfig holds result presentation and paging settings.
type SearchConfig struct {
	SnippetLength   int `yaml:"snippet_length"`
	SnippetStep     int `yaml:"snippet_step"`
	DefaultPageSize int `yaml:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix      string `yaml:"key_prefix"`
	BlobPath       string `yaml:"blob_path"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

// TelemetryConfig holds tracing settings.
type TelemetryConfig struct {
	OTLPEndpoint string  `yaml:"otlp_endpoint"` // empty disables tracing export
	Insecure     bool    `yaml:"insecure"`
	SamplingRate float64 `yaml:"sampling_rate"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes YAML with ${VAR} expansion, applies defaults and validates.
func Parse(data []byte) (Config, error) {
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
	if c.Database.Driver == "" {
		c.Database.Driver = DriverRedis
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheMemory
		if c.Database.Driver == DriverRedis {
			c.Cache.Backend = CacheRedis
		}
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 3600
	}
	if c.Cache.MaxEntries <= 0 {
		c.Cache.MaxEntries = 10000
	}
	if c.Cache.CleanupIntervalSec <= 0 {
		c.Cache.CleanupIntervalSec = 300
	}
	if c.Cache.ExpiryGraceSec <= 0 {
		c.Cache.ExpiryGraceSec = 60
	}
	if c.Search.SnippetLength <= 0 {
		c.Search.SnippetLength = 200
	}
	if c.Search.SnippetStep <= 0 {
		c.Search.SnippetStep = 50
	}
	if c.Search.DefaultPageSize <= 0 {
		c.Search.DefaultPageSize = 10
	}
	if c.Search.MaxPageSize <= 0 {
		c.Search.MaxPageSize = 100
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "docsearch:"
	}
	if c.Storage.BlobPath == "" {
		c.Storage.BlobPath = filepath.Join("data", "blobs.db")
	}
	if c.Storage.MaxUploadBytes <= 0 {
		c.Storage.MaxUploadBytes = 10 << 20
	}
	if c.Telemetry.SamplingRate <= 0 {
		c.Telemetry.SamplingRate = 1
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case DriverRedis:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for driver %q", DriverRedis)
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for driver %q", DriverPostgres)
		}
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverRedis, DriverPostgres, c.Database.Driver)
	}
	switch c.Cache.Backend {
	case CacheMemory:
	case CacheRedis:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("cache.backend %q requires database.addrs", CacheRedis)
		}
	default:
		return fmt.Errorf("cache.backend must be %q or %q, got %q", CacheRedis, CacheMemory, c.Cache.Backend)
	}
	if c.Search.DefaultPageSize > c.Search.MaxPageSize {
		return fmt.Errorf("search.default_page_size (%d) exceeds search.max_page_size (%d)",
			c.Search.DefaultPageSize, c.Search.MaxPageSize)
	}
	if c.Search.SnippetStep > c.Search.SnippetLength {
		return fmt.Errorf("search.snippet_step (%d) exceeds search.snippet_length (%d)",
			c.Search.SnippetStep, c.Search.SnippetLength)
	}
	if c.Telemetry.SamplingRate > 1 {
		return fmt.Errorf("telemetry.sampling_rate must be within (0, 1], got %v", c.Telemetry.SamplingRate)
	}
	return nil
}

// CacheTTL returns the result cache TTL.
func (c *Config) CacheTTL() time.Duration { return time.Duration(c.Cache.TTLSec) * time.Second }

// CleanupInterval returns the period of the expired-entry sweeper.
func (c *Config) CleanupInterval() time.Duration {
	return time.Duration(c.Cache.CleanupIntervalSec) * time.Second
}

// ExpiryGrace returns the slack added to native Redis key expiry.
func (c *Config) ExpiryGrace() time.Duration {
	return time.Duration(c.Cache.ExpiryGraceSec) * time.Second
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
