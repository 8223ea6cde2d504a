package postgres

import (
	"context"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/arklim/passmeter/internal/core/domain"
	"github.com/arklim/passmeter/internal/core/port"
	"github.com/arklim/passmeter/internal/repository"
)

const evaluationsTable = "passmeter.strength_evaluations"

// EvaluationRepository stores anonymous evaluation statistics in PostgreSQL.
type EvaluationRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewEvaluationRepository constructs the repository from a generic executor.
func NewEvaluationRepository(exec pgExecutor) *EvaluationRepository {
	return &EvaluationRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx binds the repository to execute statements within the supplied transaction.
func (r *EvaluationRepository) WithTx(tx pgx.Tx) *EvaluationRepository {
	if tx == nil {
		return r
	}
	return &EvaluationRepository{exec: tx, builder: r.builder}
}

var _ port.EvaluationRepository = (*EvaluationRepository)(nil)

// Save inserts one evaluation record, generating an id when missing.
func (r *EvaluationRepository) Save(ctx context.Context, record domain.EvaluationRecord) error {
	if !record.Level.Valid() {
		return fmt.Errorf("invalid strength level %d", int(record.Level))
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.EvaluatedAt.IsZero() {
		record.EvaluatedAt = time.Now().UTC()
	}

	stmt, args, err := r.builder.
		Insert(evaluationsTable).
		Columns(
			"id",
			"level",
			"score",
			"length",
			"digits",
			"symbols",
			"lowercase",
			"uppercase",
			"zxcvbn_score",
			"source",
			"evaluated_at",
		).
		Values(
			record.ID,
			record.Level.String(),
			record.Score,
			record.Counts.Length,
			record.Counts.Digits,
			record.Counts.Symbols,
			record.Counts.Lowercase,
			record.Counts.Uppercase,
			record.ZxcvbnScore,
			record.Source,
			record.EvaluatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert evaluation sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert evaluation: %w", err)
	}
	return nil
}

// CountByLevel returns how many evaluations fell into each level since the given time.
// A zero since counts every stored evaluation.
func (r *EvaluationRepository) CountByLevel(ctx context.Context, since time.Time) (map[domain.StrengthLevel]int, error) {
	query := r.builder.
		Select("level", "COUNT(*)").
		From(evaluationsTable).
		GroupBy("level")
	if !since.IsZero() {
		query = query.Where(squirrel.GtOrEq{"evaluated_at": since})
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build count evaluations sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query evaluation counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.StrengthLevel]int)
	for rows.Next() {
		var (
			name  string
			count int64
		)
		if err := rows.Scan(&name, &count); err != nil {
			return nil, fmt.Errorf("scan evaluation count: %w", err)
		}
		level, err := domain.ParseStrengthLevel(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", repository.ErrCorrupted, err)
		}
		counts[level] = int(count)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evaluation counts: %w", err)
	}

	return counts, nil
}
