package eval

import (
	"math"
	"testing"
)

func TestNewBleuScorer(t *testing.T) {
	tests := []struct {
		name     string
		maxOrder int
		wantErr  bool
	}{
		{name: "standard order", maxOrder: 4, wantErr: false},
		{name: "unigram only", maxOrder: 1, wantErr: false},
		{name: "zero order", maxOrder: 0, wantErr: true},
		{name: "negative order", maxOrder: -2, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBleuScorer(tt.maxOrder, false)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewBleuScorer(%d) error = %v, wantErr %v", tt.maxOrder, err, tt.wantErr)
			}
		})
	}
}

func TestBleuScorer_Compute(t *testing.T) {
	t.Run("identical corpus scores 1", func(t *testing.T) {
		scorer, err := NewBleuScorer(4, false)
		if err != nil {
			t.Fatalf("NewBleuScorer() error = %v", err)
		}

		translation := []string{"the", "cat", "sat", "on", "the", "mat"}
		score, stats := scorer.Compute(
			[][][]string{{translation}},
			[][]string{translation},
		)

		if math.Abs(score-1.0) > 1e-9 {
			t.Errorf("score = %v, want 1.0", score)
		}
		for i, p := range stats.Precisions {
			if math.Abs(p-1.0) > 1e-9 {
				t.Errorf("precision[%d] = %v, want 1.0", i, p)
			}
		}
	})

	t.Run("zero order precision zeroes the score", func(t *testing.T) {
		scorer, _ := NewBleuScorer(4, false)

		// Short translation with no 4-gram overlap.
		score, _ := scorer.Compute(
			[][][]string{{{"completely", "different", "reference", "text", "here"}}},
			[][]string{{"cat", "sat", "mat", "flat"}},
		)

		if score != 0 {
			t.Errorf("score = %v, want 0", score)
		}
	})

	t.Run("smoothing rescues zero precisions", func(t *testing.T) {
		scorer, _ := NewBleuScorer(4, true)

		score, _ := scorer.Compute(
			[][][]string{{{"completely", "different", "reference", "text", "here"}}},
			[][]string{{"cat", "sat", "mat", "flat"}},
		)

		if score <= 0 {
			t.Errorf("smoothed score = %v, want > 0", score)
		}
		if score >= 1 {
			t.Errorf("smoothed score = %v, want < 1", score)
		}
	})

	t.Run("multiple references merge by max count", func(t *testing.T) {
		scorer, _ := NewBleuScorer(1, false)

		// Translation repeats "the" twice; one reference has it twice,
		// so both occurrences are clipped-in.
		score, stats := scorer.Compute(
			[][][]string{{
				{"the", "cat"},
				{"the", "the", "dog"},
			}},
			[][]string{{"the", "the"}},
		)

		if math.Abs(score-1.0) > 1e-9 {
			t.Errorf("score = %v, want 1.0", score)
		}
		// Shortest reference has length 2.
		if stats.ReferenceLength != 2 {
			t.Errorf("ReferenceLength = %d, want 2", stats.ReferenceLength)
		}
		if stats.TranslationLength != 2 {
			t.Errorf("TranslationLength = %d, want 2", stats.TranslationLength)
		}
	})

	t.Run("longer translation than reference not penalized", func(t *testing.T) {
		scorer, _ := NewBleuScorer(1, false)

		// 3 of 4 unigrams match; no brevity or length penalty applies.
		score, _ := scorer.Compute(
			[][][]string{{{"a", "b", "c"}}},
			[][]string{{"a", "b", "c", "d"}},
		)

		if math.Abs(score-0.75) > 1e-9 {
			t.Errorf("score = %v, want 0.75", score)
		}
	})

	t.Run("empty corpus", func(t *testing.T) {
		scorer, _ := NewBleuScorer(4, false)
		score, _ := scorer.Compute(nil, nil)
		if score != 0 {
			t.Errorf("score = %v, want 0", score)
		}
	})
}
