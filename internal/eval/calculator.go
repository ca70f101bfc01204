package eval

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/rankeval/rank-eval/internal/pkg/logger"
)

// Calculator orchestrates metric computation over evaluation batches.
type Calculator struct {
	cfg     Config
	log     *logger.Logger
	metrics []Metric
}

// NewCalculator builds a calculator for the configured metric set. Invalid
// BLEU configuration is rejected here rather than at computation time.
func NewCalculator(cfg Config, log *logger.Logger) (*Calculator, error) {
	if cfg.DatasetName == "" {
		cfg.DatasetName = "default"
	}
	if cfg.BleuMaxOrder == 0 {
		cfg.BleuMaxOrder = 4
	}
	if log == nil {
		log = logger.Default()
	}

	names := GenerationMetricNames()
	if cfg.IncludeBleu {
		names = append(names, MetricBleu)
	}

	metrics := make([]Metric, len(names))
	for i, name := range names {
		m, err := NewMetric(name, cfg)
		if err != nil {
			return nil, err
		}
		metrics[i] = m
	}

	return &Calculator{cfg: cfg, log: log.WithDataset(cfg.DatasetName), metrics: metrics}, nil
}

// Config returns the calculator's metric settings.
func (c *Calculator) Config() Config {
	return c.cfg
}

// GenerationMetrics scores predictions against reference answers and merges
// every scorer's aggregate into one mapping. Scorers read the same immutable
// batch and accumulate independently, so they fan out concurrently; any
// scorer failure fails the whole batch, with no partial results.
func (c *Calculator) GenerationMetrics(ctx context.Context, documents []Document, predictions []string) (map[string]float64, error) {
	batch := &Batch{Documents: documents, Predictions: predictions, Config: c.cfg}
	if err := batch.Validate(); err != nil {
		return nil, err
	}

	var mu sync.Mutex
	results := make(map[string]float64)

	g, _ := errgroup.WithContext(ctx)
	for _, m := range c.metrics {
		g.Go(func() error {
			aggregate, _, err := m.Compute(batch)
			if err != nil {
				return err
			}
			mu.Lock()
			for name, score := range aggregate {
				results[name] = score
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.log.Debug("Computed generation metrics", "documents", len(documents), "metrics", len(results))
	return results, nil
}

// RetrievalMetrics computes top-k retrieval accuracy for the requested
// cutoffs, optionally over the reranked context order.
func (c *Calculator) RetrievalMetrics(documents []Document, ks []int, useReordered bool) map[string]float64 {
	results := RetrievalMetrics(documents, ks, useReordered)
	c.log.Debug("Computed retrieval metrics", "documents", len(documents), "cutoffs", len(results))
	return results
}
