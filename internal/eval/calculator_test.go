package eval

import (
	"context"
	"testing"
)

func TestNewCalculator(t *testing.T) {
	t.Run("defaults applied", func(t *testing.T) {
		calc, err := NewCalculator(Config{}, nil)
		if err != nil {
			t.Fatalf("NewCalculator() error = %v", err)
		}

		cfg := calc.Config()
		if cfg.DatasetName != "default" {
			t.Errorf("DatasetName = %q, want %q", cfg.DatasetName, "default")
		}
		if cfg.BleuMaxOrder != 4 {
			t.Errorf("BleuMaxOrder = %d, want 4", cfg.BleuMaxOrder)
		}
	})

	t.Run("invalid bleu order rejected", func(t *testing.T) {
		_, err := NewCalculator(Config{BleuMaxOrder: -1, IncludeBleu: true}, nil)
		if err == nil {
			t.Error("expected error for negative BLEU order")
		}
	})
}

func TestCalculator_GenerationMetrics(t *testing.T) {
	docs := []Document{
		{Question: "capital of france?", Answers: []string{"Paris"}},
		{Question: "capital of germany?", Answers: []string{"Berlin"}},
	}
	predictions := []string{"Paris", "Munich"}

	calc, err := NewCalculator(Config{DatasetName: "test"}, nil)
	if err != nil {
		t.Fatalf("NewCalculator() error = %v", err)
	}

	results, err := calc.GenerationMetrics(context.Background(), docs, predictions)
	if err != nil {
		t.Fatalf("GenerationMetrics() error = %v", err)
	}

	for _, name := range GenerationMetricNames() {
		if _, ok := results[name]; !ok {
			t.Errorf("missing metric %q in results", name)
		}
	}
	if _, ok := results[MetricBleu]; ok {
		t.Error("bleu_score present without IncludeBleu")
	}

	// One of two predictions matches exactly.
	if results[MetricExactMatch] != 50 {
		t.Errorf("exact_match = %v, want 50", results[MetricExactMatch])
	}
	if results[MetricContainsMatch] != 50 {
		t.Errorf("contains_match = %v, want 50", results[MetricContainsMatch])
	}
	if results[MetricF1] != 50 {
		t.Errorf("f1_score = %v, want 50", results[MetricF1])
	}
}

func TestCalculator_GenerationMetrics_WithBleu(t *testing.T) {
	docs := []Document{
		{Question: "q", Answers: []string{"the cat sat on the mat"}},
	}
	predictions := []string{"the cat sat on the mat"}

	calc, err := NewCalculator(Config{IncludeBleu: true}, nil)
	if err != nil {
		t.Fatalf("NewCalculator() error = %v", err)
	}

	results, err := calc.GenerationMetrics(context.Background(), docs, predictions)
	if err != nil {
		t.Fatalf("GenerationMetrics() error = %v", err)
	}

	if results[MetricBleu] != 1.0 {
		t.Errorf("bleu_score = %v, want 1.0", results[MetricBleu])
	}
	if results[MetricExactMatch] != 100 {
		t.Errorf("exact_match = %v, want 100", results[MetricExactMatch])
	}
}

func TestCalculator_GenerationMetrics_Validation(t *testing.T) {
	calc, err := NewCalculator(Config{}, nil)
	if err != nil {
		t.Fatalf("NewCalculator() error = %v", err)
	}

	tests := []struct {
		name        string
		documents   []Document
		predictions []string
	}{
		{
			name:        "empty batch",
			documents:   nil,
			predictions: nil,
		},
		{
			name:        "count mismatch",
			documents:   []Document{{Question: "q", Answers: []string{"a"}}},
			predictions: []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := calc.GenerationMetrics(context.Background(), tt.documents, tt.predictions)
			if err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestCalculator_RetrievalMetrics(t *testing.T) {
	calc, err := NewCalculator(Config{}, nil)
	if err != nil {
		t.Fatalf("NewCalculator() error = %v", err)
	}

	docs := []Document{
		{Question: "q1", Contexts: []Context{{ID: "a", HasAnswer: true}}},
		{Question: "q2", Contexts: []Context{{ID: "b", HasAnswer: false}}},
	}

	results := calc.RetrievalMetrics(docs, []int{1}, false)
	if results["top_1"] != 50 {
		t.Errorf("top_1 = %v, want 50", results["top_1"])
	}
}
