package port

import (
	"context"

	"github.com/arklim/passmeter/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	PublishStrengthEvaluated(ctx context.Context, event domain.StrengthEvaluatedEvent) error
	PublishPasswordRejected(ctx context.Context, event domain.PasswordRejectedEvent) error
}
