package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Clean up environment before tests
	cleanupEnv := func() {
		os.Unsetenv("BATCHLENS_SERVER_PORT")
		os.Unsetenv("BATCHLENS_SERVER_ENVIRONMENT")
		os.Unsetenv("BATCHLENS_MANIFEST_API_KEY")
		os.Unsetenv("BATCHLENS_MANIFEST_BASE_URL")
		os.Unsetenv("BATCHLENS_CACHE_TYPE")
		os.Unsetenv("BATCHLENS_CACHE_REDIS_URL")
		os.Unsetenv("BATCHLENS_CACHE_MANIFEST_TTL")
		os.Unsetenv("BATCHLENS_CACHE_SCAN_TTL")
		os.Unsetenv("BATCHLENS_MATCHING_SIMILARITY_THRESHOLD")
		os.Unsetenv("BATCHLENS_MATCHING_WINDOW_TOLERANCE")
		os.Unsetenv("BATCHLENS_RATELIMIT_PER_IP")
		os.Unsetenv("BATCHLENS_RATELIMIT_MANIFEST")
	}

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		// Set required API key
		os.Setenv("BATCHLENS_MANIFEST_API_KEY", "test-key")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		// Check defaults
		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.Manifest.BaseURL != "https://manifests.batchlens.io" {
			t.Errorf("Manifest.BaseURL = %s, want https://manifests.batchlens.io", cfg.Manifest.BaseURL)
		}
		if cfg.Cache.Type != "memory" {
			t.Errorf("Cache.Type = %s, want memory", cfg.Cache.Type)
		}
		if cfg.Cache.ManifestTTL != 1*time.Hour {
			t.Errorf("Cache.ManifestTTL = %v, want 1h", cfg.Cache.ManifestTTL)
		}
		if cfg.Cache.ScanTTL != 24*time.Hour {
			t.Errorf("Cache.ScanTTL = %v, want 24h", cfg.Cache.ScanTTL)
		}
		if cfg.Matching.SimilarityThreshold != 75.0 {
			t.Errorf("Matching.SimilarityThreshold = %v, want 75", cfg.Matching.SimilarityThreshold)
		}
		if cfg.Matching.WindowTolerance != 0.20 {
			t.Errorf("Matching.WindowTolerance = %v, want 0.20", cfg.Matching.WindowTolerance)
		}
		if cfg.RateLimit.PerIP != 100 {
			t.Errorf("RateLimit.PerIP = %d, want 100", cfg.RateLimit.PerIP)
		}
		if cfg.RateLimit.Manifest != 600 {
			t.Errorf("RateLimit.Manifest = %d, want 600", cfg.RateLimit.Manifest)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("BATCHLENS_SERVER_PORT", "9090")
		os.Setenv("BATCHLENS_SERVER_ENVIRONMENT", "production")
		os.Setenv("BATCHLENS_MANIFEST_API_KEY", "custom-api-key")
		os.Setenv("BATCHLENS_MANIFEST_BASE_URL", "https://custom.api.com")
		os.Setenv("BATCHLENS_CACHE_TYPE", "redis")
		os.Setenv("BATCHLENS_CACHE_REDIS_URL", "redis://localhost:6379")
		os.Setenv("BATCHLENS_CACHE_MANIFEST_TTL", "30m")
		os.Setenv("BATCHLENS_MATCHING_SIMILARITY_THRESHOLD", "85")
		os.Setenv("BATCHLENS_RATELIMIT_PER_IP", "200")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if cfg.Manifest.APIKey != "custom-api-key" {
			t.Errorf("Manifest.APIKey = %s, want custom-api-key", cfg.Manifest.APIKey)
		}
		if cfg.Manifest.BaseURL != "https://custom.api.com" {
			t.Errorf("Manifest.BaseURL = %s, want https://custom.api.com", cfg.Manifest.BaseURL)
		}
		if cfg.Cache.Type != "redis" {
			t.Errorf("Cache.Type = %s, want redis", cfg.Cache.Type)
		}
		if cfg.Cache.ManifestTTL != 30*time.Minute {
			t.Errorf("Cache.ManifestTTL = %v, want 30m", cfg.Cache.ManifestTTL)
		}
		if cfg.Matching.SimilarityThreshold != 85 {
			t.Errorf("Matching.SimilarityThreshold = %v, want 85", cfg.Matching.SimilarityThreshold)
		}
		if cfg.RateLimit.PerIP != 200 {
			t.Errorf("RateLimit.PerIP = %d, want 200", cfg.RateLimit.PerIP)
		}
	})

	t.Run("fails validation when API key is missing", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for missing API key")
		}
	})

	t.Run("fails validation for invalid cache type", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("BATCHLENS_MANIFEST_API_KEY", "test-key")
		os.Setenv("BATCHLENS_CACHE_TYPE", "invalid")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for invalid cache type")
		}
	})

	t.Run("fails validation when redis URL missing for redis cache", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("BATCHLENS_MANIFEST_API_KEY", "test-key")
		os.Setenv("BATCHLENS_CACHE_TYPE", "redis")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for missing Redis URL")
		}
	})

	t.Run("fails validation for out-of-range threshold", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("BATCHLENS_MANIFEST_API_KEY", "test-key")
		os.Setenv("BATCHLENS_MATCHING_SIMILARITY_THRESHOLD", "150")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for threshold 150")
		}
	})
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Manifest: ManifestConfig{
				APIKey:  "test-key",
				BaseURL: "https://manifests.batchlens.io",
			},
			Cache: CacheConfig{
				Type: "memory",
			},
			Matching: MatchingConfig{
				SimilarityThreshold: 75,
				WindowTolerance:     0.20,
			},
		}
	}

	t.Run("validates successfully with all required fields", func(t *testing.T) {
		if err := validate(base()); err != nil {
			t.Errorf("validate() error = %v, want nil", err)
		}
	})

	t.Run("fails when API key is empty", func(t *testing.T) {
		cfg := base()
		cfg.Manifest.APIKey = ""
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for empty API key")
		}
	})

	t.Run("fails for invalid cache type", func(t *testing.T) {
		cfg := base()
		cfg.Cache.Type = "invalid-type"
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for invalid cache type")
		}
	})

	t.Run("validates redis cache type with URL", func(t *testing.T) {
		cfg := base()
		cfg.Cache.Type = "redis"
		cfg.Cache.RedisURL = "redis://localhost:6379"
		if err := validate(cfg); err != nil {
			t.Errorf("validate() error = %v, want nil for valid redis config", err)
		}
	})

	t.Run("fails for redis cache without URL", func(t *testing.T) {
		cfg := base()
		cfg.Cache.Type = "redis"
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for redis without URL")
		}
	})

	t.Run("fails for window tolerance of 1 or more", func(t *testing.T) {
		cfg := base()
		cfg.Matching.WindowTolerance = 1.0
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for tolerance 1.0")
		}
	})
}
