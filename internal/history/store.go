// Package history persists completed evaluation runs for later inspection.
package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rankeval/rank-eval/internal/config"
)

// Run kinds.
const (
	KindGeneration = "generation"
	KindRetrieval  = "retrieval"
)

// Run is a completed evaluation run. InputHash fingerprints the evaluated
// batch, so repeated evaluations of the same input are recognizable.
type Run struct {
	ID        string             `json:"id"`
	Dataset   string             `json:"dataset"`
	Kind      string             `json:"kind"`
	Documents int                `json:"documents"`
	InputHash string             `json:"input_hash,omitempty"`
	Metrics   map[string]float64 `json:"metrics"`
	CreatedAt time.Time          `json:"created_at"`
}

// Store persists evaluation runs.
type Store interface {
	// SaveRun stores a completed run.
	SaveRun(ctx context.Context, run Run) error

	// ListRuns returns the most recent runs, newest first. An empty dataset
	// returns runs across all datasets. If limit > 0, at most that many
	// runs are returned.
	ListRuns(ctx context.Context, dataset string, limit int) ([]Run, error)

	// Close releases store resources.
	Close() error
}

// NewStore creates a Store based on the configuration.
func NewStore(cfg config.HistoryConfig) (Store, error) {
	switch strings.ToLower(cfg.Type) {
	case "memory", "":
		return NewMemoryStore(cfg.MaxRuns), nil

	case "redis":
		ttl := time.Duration(cfg.TTLHours) * time.Hour
		return NewRedisStore(cfg.RedisURL, cfg.MaxRuns, ttl)

	default:
		return nil, fmt.Errorf("unknown history type: %s", cfg.Type)
	}
}
