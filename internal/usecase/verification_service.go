package usecase

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/batchlens/backend/internal/domain"
)

// Package-level compiled regex for cache-key normalization
var sessionTokenRegex = regexp.MustCompile(`^[A-Za-z0-9\-_]{4,128}$`)

// VerificationServiceConfig holds configuration for the verification service
type VerificationServiceConfig struct {
	ManifestCacheTTL time.Duration
	ScanResultTTL    time.Duration
	Matching         MatchConfig
}

// VerificationService handles scan verification: it resolves a session
// token to its batch manifest, runs the matching engine over the OCR
// text, and records the outcome.
type VerificationService struct {
	cache            domain.CacheRepository
	manifests        domain.ManifestClient
	matcher          *MatchingService
	extractor        *FieldExtractor
	manifestCacheTTL time.Duration
	scanResultTTL    time.Duration
}

// NewVerificationService creates a new verification service with dependencies
func NewVerificationService(
	cache domain.CacheRepository,
	manifests domain.ManifestClient,
	config VerificationServiceConfig,
) (*VerificationService, error) {
	matcher, err := NewMatchingService(config.Matching)
	if err != nil {
		return nil, err
	}

	manifestTTL := config.ManifestCacheTTL
	if manifestTTL == 0 {
		manifestTTL = 1 * time.Hour // Sessions are short-lived
	}

	scanTTL := config.ScanResultTTL
	if scanTTL == 0 {
		scanTTL = 24 * time.Hour
	}

	return &VerificationService{
		cache:            cache,
		manifests:        manifests,
		matcher:          matcher,
		extractor:        NewFieldExtractor(config.Matching.EnableDebugLogging),
		manifestCacheTTL: manifestTTL,
		scanResultTTL:    scanTTL,
	}, nil
}

// VerifyScan matches one scan's OCR text against the session's
// manifest.
// Flow: validate -> resolve manifest (cache then API) -> score ->
// classify -> record -> submit
func (s *VerificationService) VerifyScan(
	ctx context.Context,
	request *domain.ScanRequest,
) (*domain.VerificationResult, error) {
	if request == nil || request.SessionToken == "" {
		return nil, domain.ErrInvalidInput
	}
	if !sessionTokenRegex.MatchString(request.SessionToken) {
		return nil, fmt.Errorf("%w: malformed session token", domain.ErrInvalidInput)
	}

	manifest, err := s.GetManifest(ctx, request.SessionToken)
	if err != nil {
		return nil, err
	}

	decision, err := s.matcher.Match(ctx, request.Extracted, manifest.Batches)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	result := &domain.VerificationResult{
		ScanID:    uuid.NewString(),
		Session:   request.SessionToken,
		Decision:  *decision,
		ScannedAt: now,
	}

	if decision.Kind == domain.DecisionExact && decision.Best != nil {
		if matched := findBatch(manifest.Batches, decision.Best.BatchID); matched != nil {
			result.Matched = matched
			result.Expired = isExpired(matched, now)
		}
	}

	if err := s.cache.Set(ctx, scanCacheKey(result.ScanID), result, s.scanResultTTL); err != nil {
		log.Printf("[VERIFY] Failed to record scan %s: %v", result.ScanID, err)
	}

	// Submission is best-effort: the scanner already has the decision,
	// so a flaky manifest API must not fail the scan.
	if err := s.manifests.SubmitResult(ctx, result); err != nil {
		log.Printf("[VERIFY] Failed to submit scan %s: %v", result.ScanID, err)
	}

	return result, nil
}

// GetManifest resolves a session token to its batch manifest, serving
// from cache when possible.
func (s *VerificationService) GetManifest(
	ctx context.Context,
	sessionToken string,
) (*domain.Manifest, error) {
	if sessionToken == "" {
		return nil, domain.ErrInvalidInput
	}

	cacheKey := manifestCacheKey(sessionToken)

	if value, err := s.cache.Get(ctx, cacheKey); err == nil {
		if cached, ok := value.(*domain.Manifest); ok {
			// The cached object is shared across requests; stamp Source
			// on a copy so concurrent readers never see a write.
			manifest := *cached
			manifest.Source = "Cache"
			return &manifest, nil
		}
	}

	manifest, err := s.manifests.FetchManifest(ctx, sessionToken)
	if err != nil {
		return nil, err
	}
	manifest.FetchedAt = time.Now()
	manifest.Source = "Manifest API"

	if err := s.cache.Set(ctx, cacheKey, manifest, s.manifestCacheTTL); err != nil {
		log.Printf("[VERIFY] Failed to cache manifest for session %s: %v", sessionToken, err)
	}

	return manifest, nil
}

// GetScan returns a previously recorded verification result.
func (s *VerificationService) GetScan(
	ctx context.Context,
	scanID string,
) (*domain.VerificationResult, error) {
	if scanID == "" {
		return nil, domain.ErrInvalidInput
	}

	value, err := s.cache.Get(ctx, scanCacheKey(scanID))
	if err != nil {
		return nil, domain.ErrScanNotFound
	}

	result, ok := value.(*domain.VerificationResult)
	if !ok {
		return nil, domain.ErrScanNotFound
	}

	return result, nil
}

// ExtractFields runs the heuristic label extractor over OCR text.
// Exposed so the scanner app can prefill its manual-entry form.
func (s *VerificationService) ExtractFields(extracted domain.ExtractedText) ExtractedFields {
	return s.extractor.Extract(extracted)
}

// manifestCacheKey builds the cache key for a session's manifest.
// Format: "manifest:{token}"
func manifestCacheKey(sessionToken string) string {
	return fmt.Sprintf("manifest:%s", strings.ToLower(sessionToken))
}

// scanCacheKey builds the cache key for a recorded scan.
// Format: "scan:{id}"
func scanCacheKey(scanID string) string {
	return fmt.Sprintf("scan:%s", scanID)
}

// findBatch returns the batch with the given ID, or nil.
func findBatch(batches []domain.BatchRecord, id string) *domain.BatchRecord {
	for i := range batches {
		if batches[i].ID == id {
			return &batches[i]
		}
	}
	return nil
}

// isExpired reports whether the record's expiry date falls strictly
// before the scan's calendar date. A missing expiry date is "not
// expired": absence of information, not a failure.
func isExpired(record *domain.BatchRecord, at time.Time) bool {
	if record.ExpiryDate == nil {
		return false
	}
	if sameCalendarDate(*record.ExpiryDate, at) {
		return false
	}
	return record.ExpiryDate.Before(at)
}
