package usecase

import (
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/batchlens/backend/internal/domain"
)

// Compiled label patterns for field extraction. Each pattern is
// independent: one failing to match never affects the others.
var (
	// Matches "LOT: AB1234", "Batch No. XK-991", "B.NO 44A2"
	lotLabelPattern = regexp.MustCompile(`(?i)\b(?:lot|batch)(?:\s*no\.?)?\s*[:#.]?\s*([A-Z0-9][A-Z0-9\-]{2,})`)

	// Matches "EXP 03/2026", "Expiry: 2026-03-15", "Use by 15 Mar 2026"
	expiryLabelPattern = regexp.MustCompile(`(?i)\b(?:exp(?:iry|\.)?(?:\s*date)?|use\s*by|best\s*before)\s*[:#.]?\s*([0-9A-Za-z][0-9A-Za-z ./\-]{3,})`)

	// Matches "MFG 01/2024", "MFD: 2024-01-10", "Manufactured 10 Jan 2024"
	mfgLabelPattern = regexp.MustCompile(`(?i)\b(?:mfg|mfd|manufactured)(?:\s*date)?\s*[:#.]?\s*([0-9A-Za-z][0-9A-Za-z ./\-]{3,})`)

	// Matches "Mfr: Acme Pharma", "Manufactured by Acme Pharma Ltd"
	manufacturerLabelPattern = regexp.MustCompile(`(?i)\b(?:mfr|manufacturer|manufactured\s+by)\s*[:#.]?\s*([A-Za-z][A-Za-z0-9&. ]{2,})`)

	// Matches "Product: Amoxicillin 500mg", "Name: Paracetamol"
	productLabelPattern = regexp.MustCompile(`(?i)\b(?:product|name|drug)\s*[:#.]?\s*([A-Za-z][A-Za-z0-9/%&. ]{2,})`)

	// Trailing label noise left behind a capture, e.g. "AB1234 EXP"
	trailingLabelPattern = regexp.MustCompile(`(?i)\s+(?:exp|mfg|mfd|lot|batch).*$`)
)

// ExtractedFields holds whatever labeled fields could be pulled out of
// the OCR text. Every field is optional; absence means the label was
// not found, never an error.
type ExtractedFields struct {
	LotCode         *string    `json:"lotCode,omitempty"`
	ExpiryDate      *time.Time `json:"expiryDate,omitempty"`
	ManufactureDate *time.Time `json:"manufactureDate,omitempty"`
	ProductName     *string    `json:"productName,omitempty"`
	Manufacturer    *string    `json:"manufacturer,omitempty"`
}

// FieldExtractor pulls labeled fields (lot code, dates, manufacturer)
// out of free-form OCR text. It is a heuristic front end for building
// scan metadata; the matching engine itself never depends on it.
type FieldExtractor struct {
	enableDebugLogging bool
}

// NewFieldExtractor creates a new field extractor
func NewFieldExtractor(enableDebugLogging bool) *FieldExtractor {
	return &FieldExtractor{
		enableDebugLogging: enableDebugLogging,
	}
}

// Extract runs every label pattern over the OCR output. Line segments
// are tried first since labels rarely span lines; the concatenated
// text is the fallback for oracles that return no segmentation.
func (e *FieldExtractor) Extract(extracted domain.ExtractedText) ExtractedFields {
	lines := extracted.Lines
	if len(lines) == 0 && extracted.Text != "" {
		lines = []string{extracted.Text}
	}

	fields := ExtractedFields{
		LotCode:         e.extractLot(lines),
		ExpiryDate:      e.extractDate(lines, expiryLabelPattern, "expiry"),
		ManufactureDate: e.extractDate(lines, mfgLabelPattern, "mfg"),
		ProductName:     e.extractName(lines, productLabelPattern),
		Manufacturer:    e.extractName(lines, manufacturerLabelPattern),
	}

	if e.enableDebugLogging {
		log.Printf("[EXTRACT] lot=%v expiry=%v mfg=%v product=%v manufacturer=%v",
			deref(fields.LotCode), fields.ExpiryDate, fields.ManufactureDate,
			deref(fields.ProductName), deref(fields.Manufacturer))
	}

	return fields
}

// extractLot returns the first lot/batch code capture, or nil.
func (e *FieldExtractor) extractLot(lines []string) *string {
	for _, line := range lines {
		m := lotLabelPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		code := strings.TrimSpace(m[1])
		if code != "" {
			return &code
		}
	}
	return nil
}

// extractDate returns the first capture of the pattern that parses as
// a printed date. Ambiguous numeric dates resolve to their first
// reading; callers that care about the alternatives use
// ParsePrintedDates directly.
func (e *FieldExtractor) extractDate(lines []string, pattern *regexp.Regexp, label string) *time.Time {
	for _, line := range lines {
		m := pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		capture := strings.TrimSpace(trailingLabelPattern.ReplaceAllString(m[1], ""))
		dates := ParsePrintedDates(capture)
		if len(dates) == 0 {
			if e.enableDebugLogging {
				log.Printf("[EXTRACT] %s label matched but %q is not a date", label, capture)
			}
			continue
		}
		return &dates[0]
	}
	return nil
}

// extractName returns the first free-text capture of the pattern, or nil.
func (e *FieldExtractor) extractName(lines []string, pattern *regexp.Regexp) *string {
	for _, line := range lines {
		m := pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(trailingLabelPattern.ReplaceAllString(m[1], ""))
		if name != "" {
			return &name
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return "<none>"
	}
	return *s
}
