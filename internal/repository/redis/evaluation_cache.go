package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/arklim/passmeter/internal/core/domain"
	"github.com/arklim/passmeter/internal/core/port"
	"github.com/arklim/passmeter/internal/repository"
)

const defaultEvaluationCachePrefix = "passmeter:evaluation"

// EvaluationCache keeps recent evaluations keyed by password fingerprint.
type EvaluationCache struct {
	client *red.Client
	prefix string
}

// NewEvaluationCache constructs the cache using the provided Redis client.
func NewEvaluationCache(client *red.Client, keyPrefix string) *EvaluationCache {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultEvaluationCachePrefix
	}
	return &EvaluationCache{client: client, prefix: prefix}
}

var _ port.EvaluationCache = (*EvaluationCache)(nil)

type cachedEvaluation struct {
	Level       domain.StrengthLevel   `json:"level"`
	Counts      domain.CharacterCounts `json:"counts"`
	Breakdown   domain.ScoreBreakdown  `json:"breakdown"`
	Estimate    domain.Estimate        `json:"estimate"`
	EvaluatedAt time.Time              `json:"evaluated_at"`
}

// Get returns the cached evaluation, or repository.ErrNotFound on a miss.
func (c *EvaluationCache) Get(ctx context.Context, fingerprint string) (*domain.Evaluation, error) {
	key := c.key(fingerprint)
	if key == "" {
		return nil, fmt.Errorf("fingerprint is required")
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("redis get evaluation: %w", err)
	}

	var entry cachedEvaluation
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("%w: decode evaluation: %v", repository.ErrCorrupted, err)
	}

	return &domain.Evaluation{
		Level:       entry.Level,
		Counts:      entry.Counts,
		Breakdown:   entry.Breakdown,
		Estimate:    entry.Estimate,
		EvaluatedAt: entry.EvaluatedAt,
	}, nil
}

// Set stores the evaluation under the fingerprint with the provided TTL.
func (c *EvaluationCache) Set(ctx context.Context, fingerprint string, evaluation domain.Evaluation, ttl time.Duration) error {
	key := c.key(fingerprint)
	if key == "" {
		return fmt.Errorf("fingerprint is required")
	}
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive")
	}

	payload, err := json.Marshal(cachedEvaluation{
		Level:       evaluation.Level,
		Counts:      evaluation.Counts,
		Breakdown:   evaluation.Breakdown,
		Estimate:    evaluation.Estimate,
		EvaluatedAt: evaluation.EvaluatedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode evaluation: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set evaluation: %w", err)
	}
	return nil
}

func (c *EvaluationCache) key(fingerprint string) string {
	trimmed := strings.TrimSpace(fingerprint)
	if trimmed == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s", c.prefix, trimmed)
}
