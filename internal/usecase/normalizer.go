package usecase

import (
	"strings"

	"github.com/batchlens/backend/internal/domain"
)

// CandidateVariants holds every textual form a batch record's printed
// label may take: batch-code spellings and expiry-date renderings.
// Recomputed on demand, never stored.
type CandidateVariants struct {
	BatchCodes  []string
	ExpiryDates []string
}

// ExpandCandidate derives the full variant set for a batch record.
// A record with no batch codes yields an empty BatchCodes set and is
// effectively excluded from matching; a record with no expiry date
// yields an empty ExpiryDates set, which the matcher reports as
// "not corroborated" rather than an error.
func ExpandCandidate(record domain.BatchRecord) CandidateVariants {
	variants := CandidateVariants{}

	seen := make(map[string]bool)
	addCode := func(v string) {
		if v == "" || seen[v] {
			return
		}
		seen[v] = true
		variants.BatchCodes = append(variants.BatchCodes, v)
	}

	for _, code := range record.BatchCodes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		addCode(code)
		addCode(stripCodeNoise(code))
		addCode(strings.ToUpper(code))
		addCode(strings.ToUpper(stripCodeNoise(code)))
	}

	if record.ExpiryDate != nil {
		variants.ExpiryDates = DateVariants(*record.ExpiryDate)
	}

	return variants
}

// stripCodeNoise removes internal whitespace and punctuation from a
// batch code, keeping only letters and digits. OCR frequently inserts
// or drops separators inside printed codes.
func stripCodeNoise(code string) string {
	var b strings.Builder
	for _, r := range code {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		}
	}
	return b.String()
}
