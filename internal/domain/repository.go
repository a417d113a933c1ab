package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// ManifestClient defines the interface for fetching a scan session's
// batch manifest from the manifest API
type ManifestClient interface {
	FetchManifest(ctx context.Context, sessionToken string) (*Manifest, error)
	SubmitResult(ctx context.Context, result *VerificationResult) error
}
