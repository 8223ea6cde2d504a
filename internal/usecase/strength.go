package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/arklim/passmeter/internal/core/domain"
	"github.com/arklim/passmeter/internal/core/port"
	"github.com/arklim/passmeter/internal/infra/logger"
	"github.com/arklim/passmeter/internal/infra/security"
	"github.com/arklim/passmeter/internal/repository"
)

const (
	defaultMaxPasswordLength = 256
	defaultCacheTTL          = 10 * time.Minute
	defaultSource            = "api"
	tracerName               = "github.com/arklim/passmeter/internal/usecase"
)

const (
	// MaxUserInputs bounds how many user inputs are fed to the estimator.
	MaxUserInputs = 16
	// MaxUserInputLength bounds each user input in runes; longer inputs are truncated.
	MaxUserInputLength = 128
)

var (
	// ErrPasswordTooLong indicates the password exceeds the configured evaluation limit.
	ErrPasswordTooLong = errors.New("password exceeds maximum evaluated length")
	// ErrPasswordRejected indicates the password does not satisfy the validation policy.
	ErrPasswordRejected = errors.New("password rejected by policy")
	// ErrStatsUnavailable indicates that no evaluation repository is configured.
	ErrStatsUnavailable = errors.New("evaluation statistics unavailable")
)

// StrengthMetrics receives evaluation and rejection observations.
type StrengthMetrics interface {
	ObserveEvaluation(level domain.StrengthLevel, score int, source string)
	IncCacheHit()
	IncCacheMiss()
	IncRejection(code string)
}

// EvaluateInput describes a single strength evaluation request.
type EvaluateInput struct {
	Password   string
	UserInputs []string
	Source     string
}

// EvaluateResult carries the evaluation and whether it came from the cache.
type EvaluateResult struct {
	Evaluation domain.Evaluation
	Cached     bool
}

// ValidateInput describes a policy check for a candidate password.
type ValidateInput struct {
	Password string
	Context  domain.PasswordContext
	Source   string
}

// ValidateResult is returned when the password satisfies the policy.
type ValidateResult struct {
	Level domain.StrengthLevel
}

// StrengthService classifies passwords and keeps anonymous statistics about the results.
type StrengthService struct {
	classifier    *security.Classifier
	estimator     *security.Estimator
	policy        *security.PasswordPolicy
	fingerprinter *security.Fingerprinter
	cache         port.EvaluationCache
	cacheTTL      time.Duration
	evaluations   port.EvaluationRepository
	events        port.EventPublisher
	metrics       StrengthMetrics
	logger        *zap.Logger
	tracer        trace.Tracer
	maxLength     int
	record        bool
	now           func() time.Time
}

// NewStrengthService constructs a StrengthService. Nil collaborators fall back to the defaults.
func NewStrengthService(classifier *security.Classifier, estimator *security.Estimator, policy *security.PasswordPolicy, logger *zap.Logger) *StrengthService {
	if classifier == nil {
		classifier = security.NewClassifier()
	}
	if estimator == nil {
		estimator = security.NewEstimator()
	}
	if policy == nil {
		policy = security.NewPasswordPolicy(security.DefaultPolicyConfig(), classifier)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StrengthService{
		classifier: classifier,
		estimator:  estimator,
		policy:     policy,
		logger:     logger,
		tracer:     otel.Tracer(tracerName),
		maxLength:  defaultMaxPasswordLength,
		cacheTTL:   defaultCacheTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithCache enables evaluation caching keyed by password fingerprints.
func (s *StrengthService) WithCache(cache port.EvaluationCache, fingerprinter *security.Fingerprinter, ttl time.Duration) *StrengthService {
	if cache == nil || fingerprinter == nil {
		return s
	}
	s.cache = cache
	s.fingerprinter = fingerprinter
	if ttl > 0 {
		s.cacheTTL = ttl
	}
	return s
}

// WithRepository enables anonymous evaluation statistics. Records are written only when record is true.
func (s *StrengthService) WithRepository(evaluations port.EvaluationRepository, record bool) *StrengthService {
	if evaluations != nil {
		s.evaluations = evaluations
		s.record = record
	}
	return s
}

// WithPublisher attaches an event publisher.
func (s *StrengthService) WithPublisher(events port.EventPublisher) *StrengthService {
	if events != nil {
		s.events = events
	}
	return s
}

// WithMetrics attaches a metrics sink.
func (s *StrengthService) WithMetrics(metrics StrengthMetrics) *StrengthService {
	if metrics != nil {
		s.metrics = metrics
	}
	return s
}

// WithMaxLength overrides the maximum number of runes accepted by Evaluate.
func (s *StrengthService) WithMaxLength(maxLength int) *StrengthService {
	if maxLength > 0 {
		s.maxLength = maxLength
	}
	return s
}

// WithClock overrides the internal clock for deterministic tests.
func (s *StrengthService) WithClock(clock func() time.Time) *StrengthService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// Classify returns the strength level of password.
func (s *StrengthService) Classify(password string) domain.StrengthLevel {
	return s.classifier.Classify(password)
}

// Levels lists the score bands of every strength level, weakest first.
func (s *StrengthService) Levels() []domain.LevelBand {
	return security.LevelBands()
}

// Evaluate classifies the password, attaches the zxcvbn estimate and records anonymous statistics.
func (s *StrengthService) Evaluate(ctx context.Context, input EvaluateInput) (*EvaluateResult, error) {
	ctx, span := s.tracer.Start(ctx, "StrengthService.Evaluate")
	defer span.End()

	if utf8.RuneCountInString(input.Password) > s.maxLength {
		span.SetStatus(codes.Error, ErrPasswordTooLong.Error())
		return nil, ErrPasswordTooLong
	}

	source := normalizeSource(input.Source)
	userInputs := normalizeUserInputs(input.UserInputs)

	var fingerprint string
	if s.cache != nil {
		fingerprint = s.fingerprinter.Fingerprint(input.Password, userInputs...)
		if cached := s.lookupCache(ctx, fingerprint); cached != nil {
			result := &EvaluateResult{Evaluation: *cached, Cached: true}
			s.afterEvaluation(ctx, result, source)
			annotateSpan(span, result)
			return result, nil
		}
	}

	counts, breakdown, level := s.classifier.Evaluate(input.Password)
	evaluation := domain.Evaluation{
		Level:       level,
		Counts:      counts,
		Breakdown:   breakdown,
		Estimate:    s.estimator.Estimate(input.Password, userInputs),
		EvaluatedAt: s.now(),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, fingerprint, evaluation, s.cacheTTL); err != nil {
			logger.WithContext(ctx, s.logger).Warn("failed to cache evaluation", zap.Error(err))
		}
	}

	result := &EvaluateResult{Evaluation: evaluation}
	s.afterEvaluation(ctx, result, source)
	annotateSpan(span, result)
	return result, nil
}

// Validate checks the password against the policy. Violations are returned as ErrPasswordRejected
// wrapping the *security.PasswordValidationError.
func (s *StrengthService) Validate(ctx context.Context, input ValidateInput) (*ValidateResult, error) {
	ctx, span := s.tracer.Start(ctx, "StrengthService.Validate")
	defer span.End()

	source := normalizeSource(input.Source)
	level := s.classifier.Classify(input.Password)
	span.SetAttributes(attribute.String("strength.level", level.String()))

	err := s.policy.Validate(input.Password, input.Context)
	if err == nil {
		return &ValidateResult{Level: level}, nil
	}

	var violation *security.PasswordValidationError
	if !errors.As(err, &violation) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "policy evaluation failed")
		return nil, fmt.Errorf("validate password: %w", err)
	}

	span.SetAttributes(attribute.String("policy.violation", violation.Code))
	if s.metrics != nil {
		s.metrics.IncRejection(violation.Code)
	}
	if s.events != nil {
		event := domain.PasswordRejectedEvent{
			EventID:    uuid.NewString(),
			Code:       violation.Code,
			Level:      level,
			Source:     source,
			RejectedAt: s.now(),
		}
		if perr := s.events.PublishPasswordRejected(ctx, event); perr != nil {
			logger.WithContext(ctx, s.logger).Warn("failed to publish password rejected event", zap.Error(perr))
		}
	}

	return nil, fmt.Errorf("%w: %w", ErrPasswordRejected, violation)
}

// Distribution counts recorded evaluations per level since the given instant. A zero since counts everything.
func (s *StrengthService) Distribution(ctx context.Context, since time.Time) (map[domain.StrengthLevel]int, error) {
	if s.evaluations == nil {
		return nil, ErrStatsUnavailable
	}

	ctx, span := s.tracer.Start(ctx, "StrengthService.Distribution")
	defer span.End()

	counts, err := s.evaluations.CountByLevel(ctx, since)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count evaluations failed")
		return nil, fmt.Errorf("count evaluations by level: %w", err)
	}

	distribution := make(map[domain.StrengthLevel]int, len(domain.AllStrengthLevels()))
	for _, level := range domain.AllStrengthLevels() {
		distribution[level] = counts[level]
	}
	return distribution, nil
}

func (s *StrengthService) lookupCache(ctx context.Context, fingerprint string) *domain.Evaluation {
	cached, err := s.cache.Get(ctx, fingerprint)
	switch {
	case err == nil && cached != nil:
		if s.metrics != nil {
			s.metrics.IncCacheHit()
		}
		return cached
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		logger.WithContext(ctx, s.logger).Warn("evaluation cache lookup failed", zap.Error(err))
	}
	if s.metrics != nil {
		s.metrics.IncCacheMiss()
	}
	return nil
}

func (s *StrengthService) afterEvaluation(ctx context.Context, result *EvaluateResult, source string) {
	evaluation := result.Evaluation
	score := evaluation.Score()

	if s.record && s.evaluations != nil {
		record := domain.EvaluationRecord{
			ID:          uuid.NewString(),
			Level:       evaluation.Level,
			Score:       score,
			Counts:      evaluation.Counts,
			ZxcvbnScore: evaluation.Estimate.Score,
			Source:      source,
			EvaluatedAt: s.now(),
		}
		if err := s.evaluations.Save(ctx, record); err != nil {
			logger.WithContext(ctx, s.logger).Warn("failed to record evaluation", zap.Error(err))
		}
	}

	if s.events != nil {
		event := domain.StrengthEvaluatedEvent{
			EventID:     uuid.NewString(),
			Level:       evaluation.Level,
			Score:       score,
			ZxcvbnScore: evaluation.Estimate.Score,
			Cached:      result.Cached,
			Source:      source,
			EvaluatedAt: s.now(),
		}
		if err := s.events.PublishStrengthEvaluated(ctx, event); err != nil {
			logger.WithContext(ctx, s.logger).Warn("failed to publish strength evaluated event", zap.Error(err))
		}
	}

	if s.metrics != nil {
		s.metrics.ObserveEvaluation(evaluation.Level, score, source)
	}

	logger.WithContext(ctx, s.logger).Debug("password evaluated",
		zap.Stringer("level", evaluation.Level),
		zap.Int("score", score),
		zap.Bool("cached", result.Cached),
		zap.String("source", source),
	)
}

func annotateSpan(span trace.Span, result *EvaluateResult) {
	span.SetAttributes(
		attribute.String("strength.level", result.Evaluation.Level.String()),
		attribute.Int("strength.score", result.Evaluation.Score()),
		attribute.Bool("strength.cached", result.Cached),
	)
}

func normalizeSource(source string) string {
	trimmed := strings.ToLower(strings.TrimSpace(source))
	if trimmed == "" {
		return defaultSource
	}
	return trimmed
}

func normalizeUserInputs(inputs []string) []string {
	if len(inputs) == 0 {
		return nil
	}
	normalized := make([]string, 0, len(inputs))
	for _, input := range inputs {
		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			continue
		}
		if utf8.RuneCountInString(trimmed) > MaxUserInputLength {
			trimmed = string([]rune(trimmed)[:MaxUserInputLength])
		}
		normalized = append(normalized, trimmed)
		if len(normalized) == MaxUserInputs {
			break
		}
	}
	return normalized
}
