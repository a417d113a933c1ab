package usecase

import (
	"fmt"
	"sort"

	"github.com/batchlens/backend/internal/domain"
)

// Classify partitions per-candidate scores into one MatchDecision.
// Candidates scoring at or above the threshold survive; zero survivors
// is NoMatch, one is Exact, two or more is Ambiguous with the full
// ranked list. Expiry corroboration never gates the decision; it rides
// along as advisory context for the caller.
//
// An empty score list is a normal NoMatch, not an error. A threshold
// outside [0, 100] or a score outside [0, 100] is rejected with
// ErrInvalidInput.
func Classify(scores []domain.MatchCandidateScore, threshold float64) (*domain.MatchDecision, error) {
	if threshold < 0 || threshold > 100 {
		return nil, fmt.Errorf("%w: threshold %.1f outside [0, 100]", domain.ErrInvalidInput, threshold)
	}

	var survivors []domain.MatchCandidateScore
	for _, score := range scores {
		if score.Score < 0 || score.Score > 100 {
			return nil, fmt.Errorf("%w: score %.1f for batch %q outside [0, 100]",
				domain.ErrInvalidInput, score.Score, score.BatchID)
		}
		if score.Score >= threshold {
			survivors = append(survivors, score)
		}
	}

	// Descending by score, ties broken by batch ID for determinism
	sort.Slice(survivors, func(i, j int) bool {
		if survivors[i].Score != survivors[j].Score {
			return survivors[i].Score > survivors[j].Score
		}
		return survivors[i].BatchID < survivors[j].BatchID
	})

	switch len(survivors) {
	case 0:
		return &domain.MatchDecision{Kind: domain.DecisionNoMatch}, nil
	case 1:
		best := survivors[0]
		return &domain.MatchDecision{Kind: domain.DecisionExact, Best: &best}, nil
	default:
		best := survivors[0]
		return &domain.MatchDecision{
			Kind:   domain.DecisionAmbiguous,
			Best:   &best,
			Ranked: survivors,
		}, nil
	}
}
