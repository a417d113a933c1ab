package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Manifest  ManifestConfig
	Cache     CacheConfig
	Matching  MatchingConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ManifestConfig holds manifest API configuration
type ManifestConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type        string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL    string        `mapstructure:"redis_url"`
	ManifestTTL time.Duration `mapstructure:"manifest_ttl"`
	ScanTTL     time.Duration `mapstructure:"scan_ttl"`
}

// MatchingConfig holds matching engine configuration
type MatchingConfig struct {
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
	WindowTolerance     float64 `mapstructure:"window_tolerance"`
	EnableDebugLogging  bool    `mapstructure:"enable_debug_logging"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP    int `mapstructure:"per_ip"`
	Manifest int `mapstructure:"manifest"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/batchlens/")

	// Environment variable settings
	v.SetEnvPrefix("BATCHLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Manifest API defaults
	v.SetDefault("manifest.api_key", "")
	v.SetDefault("manifest.base_url", "https://manifests.batchlens.io")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.manifest_ttl", "1h")
	v.SetDefault("cache.scan_ttl", "24h")

	// Matching defaults
	v.SetDefault("matching.similarity_threshold", 75.0)
	v.SetDefault("matching.window_tolerance", 0.20)
	v.SetDefault("matching.enable_debug_logging", false)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.manifest", 600)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Manifest.APIKey == "" {
		return fmt.Errorf("manifest API key is required (set BATCHLENS_MANIFEST_API_KEY)")
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	if config.Matching.SimilarityThreshold < 0 || config.Matching.SimilarityThreshold > 100 {
		return fmt.Errorf("similarity threshold must be in [0, 100], got: %.1f", config.Matching.SimilarityThreshold)
	}

	if config.Matching.WindowTolerance < 0 || config.Matching.WindowTolerance >= 1 {
		return fmt.Errorf("window tolerance must be in [0, 1), got: %.2f", config.Matching.WindowTolerance)
	}

	return nil
}
