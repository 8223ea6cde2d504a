package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/arklim/passmeter/internal/core/domain"
	"github.com/arklim/passmeter/internal/core/port"
	"github.com/arklim/passmeter/internal/infra/config"
)

const schemaVersion = "1.0"

const (
	EventStrengthEvaluated = "strength.evaluated"
	EventPasswordRejected  = "password.rejected"
)

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		metadata["trace_id"] = sc.TraceID().String()
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Key:   sarama.StringEncoder(id),
		Value: sarama.ByteEncoder(bytes),
	}
	otel.GetTextMapPropagator().Inject(ctx, headerCarrier{msg: message})

	select {
	case p.producer.Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishStrengthEvaluated publishes strength.evaluated events.
func (p *EventPublisher) PublishStrengthEvaluated(ctx context.Context, event domain.StrengthEvaluatedEvent) error {
	payload := struct {
		Level       domain.StrengthLevel `json:"level"`
		Score       int                  `json:"score"`
		ZxcvbnScore int                  `json:"zxcvbn_score"`
		Cached      bool                 `json:"cached"`
		Source      string               `json:"source,omitempty"`
		EvaluatedAt time.Time            `json:"evaluated_at"`
		Metadata    map[string]any       `json:"metadata,omitempty"`
	}{
		Level:       event.Level,
		Score:       event.Score,
		ZxcvbnScore: event.ZxcvbnScore,
		Cached:      event.Cached,
		Source:      event.Source,
		EvaluatedAt: event.EvaluatedAt.UTC(),
		Metadata:    event.Metadata,
	}

	return p.publish(ctx, event.EventID, EventStrengthEvaluated, event.EvaluatedAt, payload)
}

// PublishPasswordRejected publishes password.rejected events.
func (p *EventPublisher) PublishPasswordRejected(ctx context.Context, event domain.PasswordRejectedEvent) error {
	payload := struct {
		Code       string               `json:"code"`
		Level      domain.StrengthLevel `json:"level"`
		Source     string               `json:"source,omitempty"`
		RejectedAt time.Time            `json:"rejected_at"`
		Metadata   map[string]any       `json:"metadata,omitempty"`
	}{
		Code:       event.Code,
		Level:      event.Level,
		Source:     event.Source,
		RejectedAt: event.RejectedAt.UTC(),
		Metadata:   event.Metadata,
	}

	return p.publish(ctx, event.EventID, EventPasswordRejected, event.RejectedAt, payload)
}

// headerCarrier adapts Kafka record headers for trace context propagation.
type headerCarrier struct {
	msg *sarama.ProducerMessage
}

func (c headerCarrier) Get(key string) string {
	for _, h := range c.msg.Headers {
		if string(h.Key) == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c headerCarrier) Set(key, value string) {
	for i, h := range c.msg.Headers {
		if string(h.Key) == key {
			c.msg.Headers[i].Value = []byte(value)
			return
		}
	}
	c.msg.Headers = append(c.msg.Headers, sarama.RecordHeader{Key: []byte(key), Value: []byte(value)})
}

func (c headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c.msg.Headers))
	for _, h := range c.msg.Headers {
		keys = append(keys, string(h.Key))
	}
	return keys
}

var (
	_ port.EventPublisher        = (*EventPublisher)(nil)
	_ propagation.TextMapCarrier = headerCarrier{}
)
