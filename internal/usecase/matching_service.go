package usecase

import (
	"context"
	"log"
	"math"
	"strings"

	"github.com/batchlens/backend/internal/domain"
)

// Default tuning for the matcher
const (
	defaultSimilarityThreshold = 75.0 // Minimum score (0-100) for a candidate to survive
	defaultWindowTolerance     = 0.20 // Window length slack for OCR insertions/deletions
	expiryWindowThreshold      = 90.0 // Stricter bar for expiry-date corroboration
)

// MatchConfig holds configuration for the matching service.
// Nil numeric fields mean "use the default"; zero is a legal explicit
// value (threshold 0 admits every candidate, tolerance 0 scans only
// exact-length windows).
type MatchConfig struct {
	SimilarityThreshold *float64
	WindowTolerance     *float64
	EnableDebugLogging  bool
}

// MatchingService scores OCR-extracted text against batch candidates
// and classifies the outcome. It is pure: no shared mutable state, so
// one instance can serve concurrent scans.
type MatchingService struct {
	similarityThreshold float64
	windowTolerance     float64
	enableDebugLogging  bool
}

// NewMatchingService creates a new matching service with the given configuration
func NewMatchingService(config MatchConfig) (*MatchingService, error) {
	threshold := defaultSimilarityThreshold
	if config.SimilarityThreshold != nil {
		threshold = *config.SimilarityThreshold
	}
	if threshold < 0 || threshold > 100 {
		return nil, domain.ErrInvalidInput
	}

	tolerance := defaultWindowTolerance
	if config.WindowTolerance != nil {
		tolerance = *config.WindowTolerance
	}
	if tolerance < 0 || tolerance >= 1 {
		return nil, domain.ErrInvalidInput
	}

	return &MatchingService{
		similarityThreshold: threshold,
		windowTolerance:     tolerance,
		enableDebugLogging:  config.EnableDebugLogging,
	}, nil
}

// Threshold returns the configured similarity threshold.
func (s *MatchingService) Threshold() float64 {
	return s.similarityThreshold
}

// Match scores every candidate against the extracted text and
// classifies the result into one MatchDecision.
func (s *MatchingService) Match(
	ctx context.Context,
	extracted domain.ExtractedText,
	candidates []domain.BatchRecord,
) (*domain.MatchDecision, error) {
	scores, err := s.ScoreAll(ctx, extracted, candidates)
	if err != nil {
		return nil, err
	}
	return Classify(scores, s.similarityThreshold)
}

// ScoreAll computes a MatchCandidateScore for each candidate.
// Candidates are independent; the loop checks ctx so a caller that
// abandons the scan does not keep burning CPU on a large manifest.
func (s *MatchingService) ScoreAll(
	ctx context.Context,
	extracted domain.ExtractedText,
	candidates []domain.BatchRecord,
) ([]domain.MatchCandidateScore, error) {
	scores := make([]domain.MatchCandidateScore, 0, len(candidates))

	for _, candidate := range candidates {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		score := s.Score(extracted, candidate)

		if s.enableDebugLogging {
			log.Printf("[MATCH] Batch: %q | Score: %.1f | ExpiryCorroborated: %v",
				candidate.ID, score.Score, score.ExpiryCorroborated)
		}

		scores = append(scores, score)
	}

	return scores, nil
}

// Score computes the similarity between the extracted text and one
// candidate. The score is the maximum sliding-window similarity over
// all of the candidate's batch-code variants; expiry corroboration is
// an independent signal checked at a stricter window threshold.
func (s *MatchingService) Score(
	extracted domain.ExtractedText,
	candidate domain.BatchRecord,
) domain.MatchCandidateScore {
	result := domain.MatchCandidateScore{BatchID: candidate.ID}

	text := strings.ToLower(extracted.Text)
	if text == "" {
		return result
	}

	variants := ExpandCandidate(candidate)

	for _, code := range variants.BatchCodes {
		sim := s.bestWindowSimilarity(text, strings.ToLower(code))
		if sim > result.Score {
			result.Score = sim
		}
	}

	for _, date := range variants.ExpiryDates {
		if s.bestWindowSimilarity(text, strings.ToLower(date)) >= expiryWindowThreshold {
			result.ExpiryCorroborated = true
			break
		}
	}

	return result
}

// bestWindowSimilarity slides windows of the pattern's length (and
// ±tolerance of it) across the text and returns the best similarity
// found. A pattern longer than the text degenerates to one whole-text
// comparison.
func (s *MatchingService) bestWindowSimilarity(text, pattern string) float64 {
	if pattern == "" {
		return 0
	}

	textRunes := []rune(text)
	patternLen := len([]rune(pattern))

	if patternLen >= len(textRunes) {
		return Similarity(text, pattern)
	}

	widths := windowWidths(patternLen, s.windowTolerance, len(textRunes))

	best := 0.0
	for _, width := range widths {
		for offset := 0; offset+width <= len(textRunes); offset++ {
			window := string(textRunes[offset : offset+width])
			if sim := Similarity(window, pattern); sim > best {
				best = sim
				if best == 100 {
					return best
				}
			}
		}
	}

	return best
}

// windowWidths returns the deduplicated window lengths to try for a
// pattern of the given length: exact, shrunk and grown by the
// tolerance ratio, clamped to [1, textLen].
func windowWidths(patternLen int, tolerance float64, textLen int) []int {
	candidates := []int{
		patternLen,
		int(math.Ceil(float64(patternLen) * (1 - tolerance))),
		int(math.Ceil(float64(patternLen) * (1 + tolerance))),
	}

	seen := make(map[int]bool)
	var widths []int
	for _, w := range candidates {
		if w < 1 {
			w = 1
		}
		if w > textLen {
			w = textLen
		}
		if !seen[w] {
			seen[w] = true
			widths = append(widths, w)
		}
	}
	return widths
}

// Similarity computes an edit-distance-based similarity between two
// strings, normalized to [0, 100]. Symmetric; 100 for identical
// strings (including two empties), 0 when exactly one side is empty.
func Similarity(a, b string) float64 {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}

	distance := levenshteinDistance(a, b)
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}

	similarity := 100 * (1 - float64(distance)/float64(maxLen))
	if similarity < 0 {
		return 0
	}
	if similarity > 100 {
		return 100
	}
	return similarity
}

// levenshteinDistance calculates the edit distance between two strings
func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	r1 := []rune(s1)
	r2 := []rune(s2)
	m := len(r1)
	n := len(r2)

	// Use two rows instead of the full matrix for space efficiency
	prev := make([]int, n+1)
	curr := make([]int, n+1)

	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}
