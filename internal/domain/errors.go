package domain

import "errors"

var (
	// ErrInvalidInput is returned when request or classifier parameters are malformed
	ErrInvalidInput = errors.New("invalid input parameters")

	// ErrSessionNotFound is returned when a session token has no manifest
	ErrSessionNotFound = errors.New("session not found in manifest service")

	// ErrScanNotFound is returned when a recorded scan cannot be looked up
	ErrScanNotFound = errors.New("scan result not found")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrManifestAPIFailure is returned when manifest API request fails
	ErrManifestAPIFailure = errors.New("manifest API request failed")
)
