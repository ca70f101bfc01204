package eval

import (
	"fmt"
	"math"

	apperrors "github.com/rankeval/rank-eval/internal/pkg/errors"
)

// BleuScorer computes corpus-level BLEU over tokenized translations.
type BleuScorer struct {
	maxOrder int
	smooth   bool
}

// NewBleuScorer creates a BLEU scorer. A non-positive max order is a
// configuration error and is rejected here, not at computation time.
func NewBleuScorer(maxOrder int, smooth bool) (*BleuScorer, error) {
	if maxOrder <= 0 {
		return nil, apperrors.ValidationError(fmt.Sprintf("bleu max order must be positive, got %d", maxOrder))
	}
	return &BleuScorer{maxOrder: maxOrder, smooth: smooth}, nil
}

// CorpusStats holds the accumulators of a corpus pass, exposed for debugging
// and length-ratio inspection.
type CorpusStats struct {
	ReferenceLength   int // sum of shortest-reference lengths per instance
	TranslationLength int
	Precisions        []float64
}

// Compute scores a corpus of (reference set, translation) pairs, where each
// reference and translation is a token sequence. Reference n-gram counts are
// merged per instance via per-key max, then clipped against the translation's
// counts. The score is the geometric mean of per-order precisions; with
// smoothing disabled, any zero precision makes the score exactly 0. No
// brevity penalty is applied, matching the evaluation protocol this engine
// reproduces.
func (s *BleuScorer) Compute(referenceCorpus [][][]string, translations [][]string) (float64, CorpusStats) {
	matchesByOrder := make([]int, s.maxOrder)
	possibleByOrder := make([]int, s.maxOrder)
	stats := CorpusStats{}

	for i, translation := range translations {
		references := referenceCorpus[i]

		shortest := 0
		for j, ref := range references {
			if j == 0 || len(ref) < shortest {
				shortest = len(ref)
			}
		}
		stats.ReferenceLength += shortest
		stats.TranslationLength += len(translation)

		merged := make(counter)
		for _, ref := range references {
			merged.merge(ngramCounts(ref, s.maxOrder))
		}

		overlap := ngramCounts(translation, s.maxOrder).intersect(merged)
		for key, count := range overlap {
			matchesByOrder[ngramOrder(key)-1] += count
		}
		for order := 1; order <= s.maxOrder; order++ {
			if possible := len(translation) - order + 1; possible > 0 {
				possibleByOrder[order-1] += possible
			}
		}
	}

	precisions := make([]float64, s.maxOrder)
	for i := range precisions {
		switch {
		case s.smooth:
			precisions[i] = (float64(matchesByOrder[i]) + 1) / (float64(possibleByOrder[i]) + 1)
		case possibleByOrder[i] > 0:
			precisions[i] = float64(matchesByOrder[i]) / float64(possibleByOrder[i])
		}
	}
	stats.Precisions = precisions

	logSum := 0.0
	for _, p := range precisions {
		if p <= 0 {
			return 0.0, stats
		}
		logSum += math.Log(p)
	}
	return math.Exp(logSum / float64(s.maxOrder)), stats
}
