package domain

import "time"

// BatchRecord represents one lot in a scan session's manifest.
// Optional fields are pointers so "no information" is distinguishable
// from an empty value.
type BatchRecord struct {
	ID               string     `json:"id"`
	ProductName      string     `json:"productName"`
	BatchCodes       []string   `json:"batchCodes"`
	ManufactureDate  *time.Time `json:"manufactureDate,omitempty"`
	ExpiryDate       *time.Time `json:"expiryDate,omitempty"`
	ManufacturerName string     `json:"manufacturerName,omitempty"`
}

// ExtractedText is the OCR oracle's output: the full recognized block
// plus its line segmentation. The engine treats it as immutable input.
type ExtractedText struct {
	Text  string   `json:"text"`
	Lines []string `json:"lines"`
}

// MatchCandidateScore pairs a batch with its similarity score (0-100)
// and an advisory expiry-corroboration flag. Produced fresh per matching
// call, never persisted.
type MatchCandidateScore struct {
	BatchID            string  `json:"batchId"`
	Score              float64 `json:"score"`
	ExpiryCorroborated bool    `json:"expiryCorroborated"`
}

// DecisionKind classifies the outcome of matching one scan against a
// candidate set.
type DecisionKind string

const (
	// DecisionExact means exactly one candidate cleared the threshold.
	DecisionExact DecisionKind = "exact"
	// DecisionAmbiguous means two or more candidates cleared the threshold.
	DecisionAmbiguous DecisionKind = "ambiguous"
	// DecisionNoMatch means no candidate cleared the threshold.
	DecisionNoMatch DecisionKind = "no_match"
)

// MatchDecision is the engine's verdict for a single scan.
// For DecisionExact, Best holds the winning candidate. For
// DecisionAmbiguous, Ranked holds all survivors in descending score
// order (ties broken by batch ID) so the caller can prompt the user.
type MatchDecision struct {
	Kind   DecisionKind          `json:"kind"`
	Best   *MatchCandidateScore  `json:"best,omitempty"`
	Ranked []MatchCandidateScore `json:"ranked,omitempty"`
}

// ScanRequest is a verification request: the session whose manifest to
// match against plus the OCR oracle's extracted text.
type ScanRequest struct {
	SessionToken string        `json:"sessionToken" binding:"required"`
	Extracted    ExtractedText `json:"extracted" binding:"required"`
}

// VerificationResult is what the service hands back to the scanner app:
// the decision, the matched record when there is one, and an advisory
// expired flag computed against the scan time.
type VerificationResult struct {
	ScanID    string        `json:"scanId"`
	Session   string        `json:"session"`
	Decision  MatchDecision `json:"decision"`
	Matched   *BatchRecord  `json:"matched,omitempty"`
	Expired   bool          `json:"expired"`
	ScannedAt time.Time     `json:"scannedAt"`
}

// Manifest is the set of batches a scan session may resolve to.
type Manifest struct {
	SessionToken string        `json:"sessionToken"`
	Batches      []BatchRecord `json:"batches"`
	FetchedAt    time.Time     `json:"fetchedAt,omitempty"`
	Source       string        `json:"source,omitempty"` // "Manifest API" or "Cache"
}
