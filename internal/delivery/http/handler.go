package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/batchlens/backend/internal/domain"
	"github.com/batchlens/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	verification *usecase.VerificationService
}

// NewHandler creates a new HTTP handler
func NewHandler(verification *usecase.VerificationService) *Handler {
	return &Handler{
		verification: verification,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "batchlens-backend",
		"version": "1.0.0",
	})
}

// VerifyScan matches one scan's OCR text against its session manifest
func (h *Handler) VerifyScan(c *gin.Context) {
	if h.verification == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "verification service not available"})
		return
	}

	var request domain.ScanRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	result, err := h.verification.VerifyScan(c.Request.Context(), &request)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetScan returns a previously recorded verification result
func (h *Handler) GetScan(c *gin.Context) {
	if h.verification == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "verification service not available"})
		return
	}

	result, err := h.verification.GetScan(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetManifest returns the batch manifest for a scan session
func (h *Handler) GetManifest(c *gin.Context) {
	if h.verification == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "verification service not available"})
		return
	}

	manifest, err := h.verification.GetManifest(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, manifest)
}

// ExtractFields runs the heuristic label extractor over OCR text so
// the scanner app can prefill its manual-entry form
func (h *Handler) ExtractFields(c *gin.Context) {
	if h.verification == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "verification service not available"})
		return
	}

	var extracted domain.ExtractedText
	if err := c.ShouldBindJSON(&extracted); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	fields := h.verification.ExtractFields(extracted)
	c.JSON(http.StatusOK, fields)
}

// writeError maps domain errors to HTTP status codes
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrScanNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrManifestAPIFailure):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
