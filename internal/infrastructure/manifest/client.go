package manifest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/batchlens/backend/internal/domain"
)

// maxAttempts bounds retries for transient manifest API failures
const maxAttempts = 3

// Client handles communication with the batch manifest API
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new manifest API client
func NewClient(apiKey, baseURL string) *Client {
	// The manifest API allows 600 requests per minute per key
	limiter := rate.NewLimiter(rate.Limit(10), 20) // burst of 20 requests

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiKey:      apiKey,
		baseURL:     baseURL,
		rateLimiter: limiter,
	}
}

// SetDebug toggles request/response logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// exponentialBackoff returns the sleep before retry number attempt+1:
// 500ms, 1s, 2s, ...
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500<<(attempt-1)) * time.Millisecond
}

// FetchManifest retrieves the batch manifest for a scan session
func (c *Client) FetchManifest(ctx context.Context, sessionToken string) (*domain.Manifest, error) {
	if c.debug {
		log.Printf("[MANIFEST] FetchManifest called for session: %q", sessionToken)
	}

	endpoint := fmt.Sprintf("%s/v1/sessions/%s/manifest", c.baseURL, url.PathEscape(sessionToken))
	params := url.Values{}
	params.Add("api_key", c.apiKey)
	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", "BatchLens/1.0")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if c.debug {
				log.Printf("[MANIFEST] Request error (attempt %d): %v", attempt, err)
			}
			lastErr = fmt.Errorf("%w: %v", domain.ErrManifestAPIFailure, err)
			time.Sleep(exponentialBackoff(attempt))
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		// 404 means the session does not exist; retrying won't help
		if resp.StatusCode == http.StatusNotFound {
			return nil, domain.ErrSessionNotFound
		}
		if resp.StatusCode != http.StatusOK {
			if c.debug {
				log.Printf("[MANIFEST] API error (attempt %d) - Status: %d, Body: %s",
					attempt, resp.StatusCode, string(body))
			}
			lastErr = fmt.Errorf("%w: status %d", domain.ErrManifestAPIFailure, resp.StatusCode)
			time.Sleep(exponentialBackoff(attempt))
			continue
		}

		var manifestResp manifestResponse
		if err := json.Unmarshal(body, &manifestResp); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}

		if c.debug {
			log.Printf("[MANIFEST] Session %q has %d batches", sessionToken, len(manifestResp.Batches))
		}
		return MapToManifest(&manifestResp), nil
	}

	return nil, lastErr
}

// SubmitResult reports a scan's verification outcome back to the
// manifest API
func (c *Client) SubmitResult(ctx context.Context, result *domain.VerificationResult) error {
	if result == nil {
		return domain.ErrInvalidInput
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/scans", c.baseURL)
	params := url.Values{}
	params.Add("api_key", c.apiKey)
	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "BatchLens/1.0")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrManifestAPIFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated &&
		resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status %d, body: %s", domain.ErrManifestAPIFailure, resp.StatusCode, string(body))
	}

	if c.debug {
		log.Printf("[MANIFEST] Submitted scan %s (status %d)", result.ScanID, resp.StatusCode)
	}
	return nil
}
