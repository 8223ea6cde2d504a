package port

import (
	"context"
	"time"

	"github.com/arklim/passmeter/internal/core/domain"
)

// EvaluationRepository persists anonymous evaluation statistics.
type EvaluationRepository interface {
	Save(ctx context.Context, record domain.EvaluationRecord) error
	CountByLevel(ctx context.Context, since time.Time) (map[domain.StrengthLevel]int, error)
}
