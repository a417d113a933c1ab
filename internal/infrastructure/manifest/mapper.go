package manifest

import (
	"time"

	"github.com/batchlens/backend/internal/domain"
)

// wireDateLayout is how the manifest API renders calendar dates
const wireDateLayout = "2006-01-02"

// manifestResponse is the manifest API's wire format for a session
type manifestResponse struct {
	SessionToken string     `json:"sessionToken"`
	Batches      []batchDTO `json:"batches"`
}

// batchDTO is the manifest API's wire format for one batch record
type batchDTO struct {
	ID               string   `json:"id"`
	ProductName      string   `json:"productName"`
	BatchCodes       []string `json:"batchCodes"`
	ManufactureDate  string   `json:"manufactureDate,omitempty"`
	ExpiryDate       string   `json:"expiryDate,omitempty"`
	ManufacturerName string   `json:"manufacturerName,omitempty"`
}

// MapToManifest converts the manifest API response to our domain model
func MapToManifest(resp *manifestResponse) *domain.Manifest {
	batches := make([]domain.BatchRecord, 0, len(resp.Batches))
	for _, dto := range resp.Batches {
		batches = append(batches, domain.BatchRecord{
			ID:               dto.ID,
			ProductName:      dto.ProductName,
			BatchCodes:       dto.BatchCodes,
			ManufactureDate:  parseWireDate(dto.ManufactureDate),
			ExpiryDate:       parseWireDate(dto.ExpiryDate),
			ManufacturerName: dto.ManufacturerName,
		})
	}

	return &domain.Manifest{
		SessionToken: resp.SessionToken,
		Batches:      batches,
	}
}

// parseWireDate parses an API date string. Empty or malformed dates
// map to nil: missing data degrades matching, it never aborts it.
func parseWireDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	parsed, err := time.Parse(wireDateLayout, s)
	if err != nil {
		return nil
	}
	return &parsed
}
