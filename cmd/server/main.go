package main

import (
	"fmt"
	"log"
	"os"

	"github.com/batchlens/backend/config"
	httpDelivery "github.com/batchlens/backend/internal/delivery/http"
	"github.com/batchlens/backend/internal/infrastructure/cache"
	"github.com/batchlens/backend/internal/infrastructure/manifest"
	"github.com/batchlens/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting BatchLens Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Cache Type: %s", cfg.Cache.Type)

	// Initialize infrastructure dependencies
	memoryCache := cache.NewMemoryCache()
	log.Printf("Manifest cache TTL: %s, scan result TTL: %s", cfg.Cache.ManifestTTL, cfg.Cache.ScanTTL)

	manifestClient := manifest.NewClient(cfg.Manifest.APIKey, cfg.Manifest.BaseURL)

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		manifestClient.SetDebug(true)
		log.Printf("Manifest client debug mode enabled")
	}

	log.Printf("Manifest API configured: %s", cfg.Manifest.BaseURL)

	// Initialize usecase layer
	verificationService, err := usecase.NewVerificationService(
		memoryCache,
		manifestClient,
		usecase.VerificationServiceConfig{
			ManifestCacheTTL: cfg.Cache.ManifestTTL,
			ScanResultTTL:    cfg.Cache.ScanTTL,
			Matching: usecase.MatchConfig{
				SimilarityThreshold: &cfg.Matching.SimilarityThreshold,
				WindowTolerance:     &cfg.Matching.WindowTolerance,
				EnableDebugLogging:  cfg.Matching.EnableDebugLogging,
			},
		},
	)
	if err != nil {
		log.Fatalf("Failed to initialize verification service: %v", err)
	}

	log.Printf("Matching: threshold=%.0f%%, window tolerance=%.0f%%, debug=%v",
		cfg.Matching.SimilarityThreshold,
		cfg.Matching.WindowTolerance*100,
		cfg.Matching.EnableDebugLogging)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(verificationService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
