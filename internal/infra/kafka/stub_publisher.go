package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/passmeter/internal/core/domain"
	"github.com/arklim/passmeter/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType string, at time.Time, fields ...zap.Field) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Debug("stub event published",
		append([]zap.Field{
			zap.String("event_type", eventType),
			zap.Time("timestamp", at.UTC()),
		}, fields...)...,
	)
}

// PublishStrengthEvaluated logs strength.evaluated events.
func (p *StubPublisher) PublishStrengthEvaluated(_ context.Context, event domain.StrengthEvaluatedEvent) error {
	p.logEvent(EventStrengthEvaluated, event.EvaluatedAt,
		zap.Stringer("level", event.Level),
		zap.Int("score", event.Score),
		zap.Int("zxcvbn_score", event.ZxcvbnScore),
		zap.Bool("cached", event.Cached),
		zap.String("source", event.Source),
	)
	return nil
}

// PublishPasswordRejected logs password.rejected events.
func (p *StubPublisher) PublishPasswordRejected(_ context.Context, event domain.PasswordRejectedEvent) error {
	p.logEvent(EventPasswordRejected, event.RejectedAt,
		zap.String("code", event.Code),
		zap.Stringer("level", event.Level),
		zap.String("source", event.Source),
	)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
