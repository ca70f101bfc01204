package eval

import (
	"fmt"

	apperrors "github.com/rankeval/rank-eval/internal/pkg/errors"
)

// Metric names. Overlap metrics report on a 0-100 percentage scale,
// bleu_score on a 0-1 scale.
const (
	MetricExactMatch    = "exact_match"
	MetricF1            = "f1_score"
	MetricPrecision     = "precision"
	MetricRecall        = "recall"
	MetricContainsMatch = "contains_match"
	MetricBleu          = "bleu_score"
)

// Metric scores a batch, returning its aggregate mapping plus the
// per-instance score sequence (index-aligned with the batch).
type Metric interface {
	Name() string
	Compute(batch *Batch) (map[string]float64, []float64, error)
}

// NewMetric returns the implementation registered under name.
func NewMetric(name string, cfg Config) (Metric, error) {
	switch name {
	case MetricExactMatch:
		return &binaryMetric{name: MetricExactMatch, match: exactMatch}, nil
	case MetricContainsMatch:
		return &binaryMetric{name: MetricContainsMatch, match: containsMatch}, nil
	case MetricF1:
		return &overlapMetric{name: MetricF1, pick: func(s tokenScores) float64 { return s.F1 }}, nil
	case MetricPrecision:
		return &overlapMetric{name: MetricPrecision, pick: func(s tokenScores) float64 { return s.Precision }}, nil
	case MetricRecall:
		return &overlapMetric{name: MetricRecall, pick: func(s tokenScores) float64 { return s.Recall }}, nil
	case MetricBleu:
		return newBleuMetric(cfg)
	default:
		return nil, apperrors.ValidationError(fmt.Sprintf("unknown metric: %s", name))
	}
}

// GenerationMetricNames lists the token-overlap metrics the calculator
// computes by default.
func GenerationMetricNames() []string {
	return []string{MetricExactMatch, MetricF1, MetricPrecision, MetricRecall, MetricContainsMatch}
}

// meanPercent averages per-instance scores onto the 0-100 scale. Callers
// guarantee a non-empty slice via Batch.Validate.
func meanPercent(scores []float64) float64 {
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores)) * 100
}

// binaryMetric scores each instance 0 or 1 and reports the hit percentage.
// Covers exact_match and contains_match.
type binaryMetric struct {
	name  string
	match func(prediction string, references []string) float64
}

func (m *binaryMetric) Name() string { return m.name }

func (m *binaryMetric) Compute(batch *Batch) (map[string]float64, []float64, error) {
	if err := batch.Validate(); err != nil {
		return nil, nil, err
	}

	scores := make([]float64, len(batch.Predictions))
	for i, pred := range batch.Predictions {
		scores[i] = m.match(pred, batch.Documents[i].Answers)
	}
	return map[string]float64{m.name: meanPercent(scores)}, scores, nil
}

// overlapMetric projects one sub-metric out of the shared token-level
// computation. Covers f1_score, precision and recall.
type overlapMetric struct {
	name string
	pick func(tokenScores) float64
}

func (m *overlapMetric) Name() string { return m.name }

func (m *overlapMetric) Compute(batch *Batch) (map[string]float64, []float64, error) {
	if err := batch.Validate(); err != nil {
		return nil, nil, err
	}

	scores := make([]float64, len(batch.Predictions))
	for i, pred := range batch.Predictions {
		scores[i] = m.pick(tokenLevelScores(pred, batch.Documents[i].Answers))
	}
	return map[string]float64{m.name: meanPercent(scores)}, scores, nil
}

// bleuMetric scores the batch as a single corpus and broadcasts the
// corpus-level score into the per-instance sequence.
type bleuMetric struct {
	scorer *BleuScorer
}

func newBleuMetric(cfg Config) (*bleuMetric, error) {
	scorer, err := NewBleuScorer(cfg.BleuMaxOrder, cfg.BleuSmooth)
	if err != nil {
		return nil, err
	}
	return &bleuMetric{scorer: scorer}, nil
}

func (m *bleuMetric) Name() string { return MetricBleu }

func (m *bleuMetric) Compute(batch *Batch) (map[string]float64, []float64, error) {
	if err := batch.Validate(); err != nil {
		return nil, nil, err
	}

	translations := make([][]string, len(batch.Predictions))
	references := make([][][]string, len(batch.Predictions))
	for i, pred := range batch.Predictions {
		translations[i] = Tokenize(pred)
		refs := make([][]string, len(batch.Documents[i].Answers))
		for j, ans := range batch.Documents[i].Answers {
			refs[j] = Tokenize(ans)
		}
		references[i] = refs
	}

	score, _ := m.scorer.Compute(references, translations)

	scores := make([]float64, len(batch.Predictions))
	for i := range scores {
		scores[i] = score
	}
	return map[string]float64{MetricBleu: score}, scores, nil
}
