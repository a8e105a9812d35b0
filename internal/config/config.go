// Package config provides application configuration management using Viper.
// Configuration is loaded from YAML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"media-search-service/internal/domain"
	"media-search-service/internal/validator"
)

// Cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// DefaultCacheTTL applies when cache.ttl is missing or non-positive.
const DefaultCacheTTL = time.Hour

// Config holds all application configuration.
type Config struct {
	App    AppConfig    `mapstructure:"app"`
	OMDB   OMDBConfig   `mapstructure:"omdb"`
	Logger LoggerConfig `mapstructure:"logger"`
	Sentry SentryConfig `mapstructure:"sentry"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Warmup WarmupConfig `mapstructure:"warmup"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name  string `mapstructure:"name" validate:"required"`
	Env   string `mapstructure:"env"` // development, staging, production
	Port  int    `mapstructure:"port" validate:"gt=0,lte=65535"`
	Debug bool   `mapstructure:"debug"`
}

// OMDBConfig holds the metadata provider settings.
type OMDBConfig struct {
	BaseURL       string        `mapstructure:"base_url" validate:"required,url"`
	APIKey        string        `mapstructure:"api_key" validate:"required"`
	Referer       string        `mapstructure:"referer"`
	Retries       int           `mapstructure:"retries" validate:"gte=0"`
	TimeoutPerTry time.Duration `mapstructure:"timeout_per_try" validate:"gt=0"`
	TimeoutGlobal time.Duration `mapstructure:"timeout_global" validate:"gt=0"`
	Retry         RetryConfig   `mapstructure:"retry"`
	CB            CBConfig      `mapstructure:"circuit_breaker"`
}

// RetryConfig holds retry backoff settings.
type RetryConfig struct {
	WaitTime    time.Duration `mapstructure:"wait_time" validate:"gte=0"`
	MaxWaitTime time.Duration `mapstructure:"max_wait_time" validate:"gte=0"`
}

// CBConfig holds circuit breaker settings.
type CBConfig struct {
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval" validate:"gte=0"`
	Timeout      time.Duration `mapstructure:"timeout" validate:"gte=0"`
	FailureRatio float64       `mapstructure:"failure_ratio" validate:"gte=0,lte=1"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`                                        // debug, info, warn, error
	Format string `mapstructure:"format" validate:"omitempty,oneof=json console"` // json, console
	Output string `mapstructure:"output"`                                       // stdout, stderr, file path
}

// SentryConfig holds Sentry error tracking settings.
type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn" validate:"required_if=Enabled true"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

// CacheConfig holds lookup cache settings.
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Backend   string        `mapstructure:"backend" validate:"oneof=memory redis"`
	TTL       time.Duration `mapstructure:"ttl"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	LockTTL   time.Duration `mapstructure:"lock_ttl" validate:"gte=0"`
	// JanitorInterval is how often the memory backend drops expired entries.
	JanitorInterval time.Duration `mapstructure:"janitor_interval" validate:"gte=0"`
}

// RedisConfig holds Redis connection settings for the shared cache and locks.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the host:port address of the Redis server.
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// WarmupConfig holds cache warm-up job settings.
type WarmupConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval" validate:"required_if=Enabled true,gte=0"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"gte=0"`
	Titles   []string      `mapstructure:"titles"`
}

// Load reads configuration from file and environment variables.
// Priority: env vars > config file > defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Config file not found, continue with defaults + env vars
	}

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.Cache.TTL <= 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}

	return &cfg, nil
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	if err := validator.New().Validate(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	for _, title := range c.Warmup.Titles {
		if _, err := ParseWarmupTitle(title); err != nil {
			return fmt.Errorf("invalid config: warmup.titles: %w", err)
		}
	}

	return nil
}

// ParseWarmupTitle parses a "<type>:<name>" warm-up entry.
func ParseWarmupTitle(s string) (domain.LookupRequest, error) {
	rawType, name, ok := strings.Cut(s, ":")
	if !ok {
		return domain.LookupRequest{}, fmt.Errorf("%q is not in <type>:<name> form", s)
	}

	mediaType, ok := domain.ParseMediaType(strings.TrimSpace(rawType))
	if !ok {
		return domain.LookupRequest{}, fmt.Errorf("%q has unsupported media type %q", s, rawType)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return domain.LookupRequest{}, fmt.Errorf("%q has an empty name", s)
	}

	return domain.LookupRequest{Type: mediaType, Name: name}, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "media-search-service")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.debug", true)

	// OMDb defaults
	v.SetDefault("omdb.base_url", "http://www.omdbapi.com/")
	v.SetDefault("omdb.api_key", "")
	v.SetDefault("omdb.referer", "https://github.com/media-search-service")
	v.SetDefault("omdb.retries", 3)
	v.SetDefault("omdb.timeout_per_try", "5s")
	v.SetDefault("omdb.timeout_global", "15s")
	v.SetDefault("omdb.retry.wait_time", "100ms")
	v.SetDefault("omdb.retry.max_wait_time", "1s")
	v.SetDefault("omdb.circuit_breaker.max_requests", 3)
	v.SetDefault("omdb.circuit_breaker.interval", "60s")
	v.SetDefault("omdb.circuit_breaker.timeout", "30s")
	v.SetDefault("omdb.circuit_breaker.failure_ratio", 0.5)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output", "stdout")

	// Sentry defaults
	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "development")
	v.SetDefault("sentry.sample_rate", 1.0)

	// Cache defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.backend", CacheBackendMemory)
	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("cache.key_prefix", "media-search")
	v.SetDefault("cache.lock_ttl", "20s")
	v.SetDefault("cache.janitor_interval", "5m")

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Warm-up defaults
	v.SetDefault("warmup.enabled", false)
	v.SetDefault("warmup.interval", "30m")
	v.SetDefault("warmup.timeout", "1m")
	v.SetDefault("warmup.titles", []string{})
}
