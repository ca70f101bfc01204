package history

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore provides Redis-backed persistence for evaluation runs.
// Runs are kept in a per-dataset list, newest first, trimmed to maxRuns.
type RedisStore struct {
	client  *redis.Client
	prefix  string
	maxRuns int
	ttl     time.Duration // 0 = no expiry
}

// NewRedisStore creates a new Redis store backend.
// Returns error if connection fails.
func NewRedisStore(url string, maxRuns int, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	if maxRuns < 1 {
		maxRuns = 100
	}

	return &RedisStore{
		client:  client,
		prefix:  "rankeval:runs:",
		maxRuns: maxRuns,
		ttl:     ttl,
	}, nil
}

// SaveRun stores a run in the dataset's list and trims it to capacity.
func (rs *RedisStore) SaveRun(ctx context.Context, run Run) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshaling run: %w", err)
	}

	key := rs.prefix + run.Dataset

	// Use pipeline for atomic push + trim
	pipe := rs.client.Pipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, int64(rs.maxRuns-1))
	if rs.ttl > 0 {
		pipe.Expire(ctx, key, rs.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("saving run: %w", err)
	}

	return nil
}

// ListRuns returns recent runs, newest first. An empty dataset scans all
// dataset keys.
func (rs *RedisStore) ListRuns(ctx context.Context, dataset string, limit int) ([]Run, error) {
	keys := []string{rs.prefix + dataset}
	if dataset == "" {
		var err error
		keys, err = rs.client.Keys(ctx, rs.prefix+"*").Result()
		if err != nil {
			return nil, fmt.Errorf("listing run keys: %w", err)
		}
	}

	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}

	var runs []Run
	for _, key := range keys {
		entries, err := rs.client.LRange(ctx, key, 0, stop).Result()
		if err != nil {
			return nil, fmt.Errorf("loading runs: %w", err)
		}

		for _, entry := range entries {
			var run Run
			if err := json.Unmarshal([]byte(entry), &run); err != nil {
				// Skip invalid entries
				continue
			}
			runs = append(runs, run)
		}
	}

	// Runs from multiple datasets interleave by key order; re-sort newest first.
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})

	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}

	return runs, nil
}

// Close closes the Redis connection.
func (rs *RedisStore) Close() error {
	return rs.client.Close()
}
