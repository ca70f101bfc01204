package eval

import "strings"

// exactMatch reports 1 if the normalized prediction equals any normalized
// reference, else 0. The first full match short-circuits.
func exactMatch(prediction string, references []string) float64 {
	normalized := NormalizeAnswer(prediction)
	for _, ref := range references {
		if NormalizeAnswer(ref) == normalized {
			return 1.0
		}
	}
	return 0.0
}

// containsMatch reports 1 if any normalized reference appears as a contiguous
// substring of the normalized prediction.
func containsMatch(prediction string, references []string) float64 {
	normalized := NormalizeAnswer(prediction)
	for _, ref := range references {
		if strings.Contains(normalized, NormalizeAnswer(ref)) {
			return 1.0
		}
	}
	return 0.0
}

// tokenScores holds the token-overlap scores for one prediction.
type tokenScores struct {
	F1        float64
	Precision float64
	Recall    float64
}

// tokenLevelScores computes F1, precision and recall between a prediction and
// each reference, keeping the best value per sub-metric independently. The
// best-matching reference may differ between F1, precision and recall.
// References with zero token overlap contribute nothing.
func tokenLevelScores(prediction string, references []string) tokenScores {
	var best tokenScores

	predTokens := Tokenize(prediction)
	predCounts := countTokens(predTokens)

	for _, ref := range references {
		refTokens := Tokenize(ref)
		numSame := predCounts.intersect(countTokens(refTokens)).total()
		if numSame == 0 {
			continue
		}

		// numSame > 0 implies both token lists are non-empty.
		precision := float64(numSame) / float64(len(predTokens))
		recall := float64(numSame) / float64(len(refTokens))
		f1 := 2 * precision * recall / (precision + recall)

		best.F1 = max(best.F1, f1)
		best.Precision = max(best.Precision, precision)
		best.Recall = max(best.Recall, recall)
	}

	return best
}
