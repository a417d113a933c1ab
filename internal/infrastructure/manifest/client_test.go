package manifest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/batchlens/backend/internal/domain"
)

func TestNewClient(t *testing.T) {
	client := NewClient("test-api-key", "https://api.example.com")

	assert.NotNil(t, client)
	assert.Equal(t, "test-api-key", client.apiKey)
	assert.Equal(t, "https://api.example.com", client.baseURL)
	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.rateLimiter)
	assert.False(t, client.debug)
}

func TestSetDebug(t *testing.T) {
	client := NewClient("test-api-key", "https://api.example.com")

	assert.False(t, client.debug)

	client.SetDebug(true)
	assert.True(t, client.debug)

	client.SetDebug(false)
	assert.False(t, client.debug)
}

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 500 * time.Millisecond},
		{2, 1000 * time.Millisecond},
		{3, 2000 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			result := exponentialBackoff(tt.attempt)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestFetchManifest_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/sessions/sess-1/manifest", r.URL.Path)
		assert.Equal(t, "test-api-key", r.URL.Query().Get("api_key"))

		response := manifestResponse{
			SessionToken: "sess-1",
			Batches: []batchDTO{
				{
					ID:               "b1",
					ProductName:      "Paracetamol 500mg",
					BatchCodes:       []string{"AB1234"},
					ExpiryDate:       "2026-03-15",
					ManufacturerName: "Acme Pharma",
				},
				{
					ID:          "b2",
					ProductName: "Ibuprofen 200mg",
					BatchCodes:  []string{"XK9921"},
				},
			},
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL)
	manifest, err := client.FetchManifest(context.Background(), "sess-1")

	require.NoError(t, err)
	require.Len(t, manifest.Batches, 2)
	assert.Equal(t, "sess-1", manifest.SessionToken)
	assert.Equal(t, "b1", manifest.Batches[0].ID)
	require.NotNil(t, manifest.Batches[0].ExpiryDate)
	assert.Equal(t, 2026, manifest.Batches[0].ExpiryDate.Year())
	assert.Equal(t, time.March, manifest.Batches[0].ExpiryDate.Month())
	assert.Nil(t, manifest.Batches[1].ExpiryDate)
}

func TestFetchManifest_SessionNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL)
	_, err := client.FetchManifest(context.Background(), "sess-missing")

	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestFetchManifest_RetriesTransientFailure(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(manifestResponse{SessionToken: "sess-1"})
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL)
	manifest, err := client.FetchManifest(context.Background(), "sess-1")

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, "sess-1", manifest.SessionToken)
}

func TestFetchManifest_AllRetriesFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL)
	_, err := client.FetchManifest(context.Background(), "sess-1")

	assert.ErrorIs(t, err, domain.ErrManifestAPIFailure)
}

func TestSubmitResult(t *testing.T) {
	t.Run("posts the result as JSON", func(t *testing.T) {
		var received domain.VerificationResult
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1/scans", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			w.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		client := NewClient("test-api-key", server.URL)
		result := &domain.VerificationResult{
			ScanID:   "scan-1",
			Session:  "sess-1",
			Decision: domain.MatchDecision{Kind: domain.DecisionNoMatch},
		}

		err := client.SubmitResult(context.Background(), result)
		require.NoError(t, err)
		assert.Equal(t, "scan-1", received.ScanID)
		assert.Equal(t, domain.DecisionNoMatch, received.Decision.Kind)
	})

	t.Run("non-2xx status is an API failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client := NewClient("test-api-key", server.URL)
		err := client.SubmitResult(context.Background(), &domain.VerificationResult{ScanID: "scan-1"})

		assert.ErrorIs(t, err, domain.ErrManifestAPIFailure)
	})

	t.Run("nil result is invalid input", func(t *testing.T) {
		client := NewClient("test-api-key", "https://api.example.com")
		err := client.SubmitResult(context.Background(), nil)

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestMapToManifest(t *testing.T) {
	t.Run("malformed dates map to nil", func(t *testing.T) {
		manifest := MapToManifest(&manifestResponse{
			SessionToken: "sess-1",
			Batches: []batchDTO{
				{ID: "b1", ExpiryDate: "not-a-date", ManufactureDate: "2024-13-40"},
			},
		})

		require.Len(t, manifest.Batches, 1)
		assert.Nil(t, manifest.Batches[0].ExpiryDate)
		assert.Nil(t, manifest.Batches[0].ManufactureDate)
	})

	t.Run("empty batch list maps to empty slice", func(t *testing.T) {
		manifest := MapToManifest(&manifestResponse{SessionToken: "sess-1"})
		assert.NotNil(t, manifest.Batches)
		assert.Len(t, manifest.Batches, 0)
	})
}
