package port

import (
	"context"
	"time"

	"github.com/arklim/passmeter/internal/core/domain"
)

// EvaluationCache stores evaluations keyed by password fingerprint.
// Get returns repository.ErrNotFound on a miss.
type EvaluationCache interface {
	Get(ctx context.Context, fingerprint string) (*domain.Evaluation, error)
	Set(ctx context.Context, fingerprint string, evaluation domain.Evaluation, ttl time.Duration) error
}
