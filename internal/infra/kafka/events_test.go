package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap/zaptest"

	"github.com/arklim/passmeter/internal/core/domain"
	"github.com/arklim/passmeter/internal/infra/config"
)

func newTestPublisher(t *testing.T) (*EventPublisher, *mocks.AsyncProducer, *Producer) {
	t.Helper()

	mock := mocks.NewAsyncProducer(t, nil)
	producer := newProducer(mock, config.KafkaSettings{TopicPrefix: "passmeter"}, zaptest.NewLogger(t))
	publisher := NewEventPublisher(producer, config.AppSettings{Name: "passmeter", Env: "test"}, zaptest.NewLogger(t))
	return publisher, mock, producer
}

func TestPublishStrengthEvaluated(t *testing.T) {
	publisher, mock, producer := newTestPublisher(t)

	evaluatedAt := time.Date(2025, 10, 31, 12, 0, 0, 0, time.UTC)
	mock.ExpectInputWithCheckerFunctionAndSucceed(func(value []byte) error {
		var envelope struct {
			EventID   string            `json:"event_id"`
			EventType string            `json:"event_type"`
			Version   string            `json:"version"`
			Metadata  map[string]string `json:"metadata"`
			Payload   struct {
				Level       string    `json:"level"`
				Score       int       `json:"score"`
				ZxcvbnScore int       `json:"zxcvbn_score"`
				EvaluatedAt time.Time `json:"evaluated_at"`
			} `json:"payload"`
		}
		if err := json.Unmarshal(value, &envelope); err != nil {
			return err
		}
		if envelope.EventID != "event-123" || envelope.EventType != EventStrengthEvaluated {
			return fmt.Errorf("unexpected envelope %+v", envelope)
		}
		if envelope.Version != schemaVersion || envelope.Metadata["service"] != "passmeter" {
			return fmt.Errorf("unexpected metadata %+v", envelope)
		}
		if envelope.Payload.Level != "very_strong" || envelope.Payload.Score != 80 || envelope.Payload.ZxcvbnScore != 3 {
			return fmt.Errorf("unexpected payload %+v", envelope.Payload)
		}
		if !envelope.Payload.EvaluatedAt.Equal(evaluatedAt) {
			return fmt.Errorf("unexpected evaluated_at %s", envelope.Payload.EvaluatedAt)
		}
		return nil
	})

	err := publisher.PublishStrengthEvaluated(context.Background(), domain.StrengthEvaluatedEvent{
		EventID:     "event-123",
		Level:       domain.StrengthVeryStrong,
		Score:       80,
		ZxcvbnScore: 3,
		EvaluatedAt: evaluatedAt,
	})
	if err != nil {
		t.Fatalf("PublishStrengthEvaluated returned error: %v", err)
	}

	if err := producer.Close(); err != nil {
		t.Fatalf("close producer: %v", err)
	}
}

func TestPublishPasswordRejectedGeneratesEventID(t *testing.T) {
	publisher, mock, producer := newTestPublisher(t)

	mock.ExpectInputWithCheckerFunctionAndSucceed(func(value []byte) error {
		var envelope struct {
			EventID   string `json:"event_id"`
			EventType string `json:"event_type"`
			Payload   struct {
				Code string `json:"code"`
			} `json:"payload"`
		}
		if err := json.Unmarshal(value, &envelope); err != nil {
			return err
		}
		if envelope.EventID == "" {
			return fmt.Errorf("expected generated event id")
		}
		if envelope.EventType != EventPasswordRejected || envelope.Payload.Code != "strength_level" {
			return fmt.Errorf("unexpected envelope %+v", envelope)
		}
		return nil
	})

	err := publisher.PublishPasswordRejected(context.Background(), domain.PasswordRejectedEvent{
		Code:  "strength_level",
		Level: domain.StrengthWeak,
	})
	if err != nil {
		t.Fatalf("PublishPasswordRejected returned error: %v", err)
	}

	if err := producer.Close(); err != nil {
		t.Fatalf("close producer: %v", err)
	}
}

func TestTopicName(t *testing.T) {
	p := &Producer{prefix: "passmeter"}

	if got := p.TopicName(EventStrengthEvaluated); got != "passmeter.strength.evaluated" {
		t.Fatalf("unexpected topic %q", got)
	}
	if got := p.TopicName("passmeter.password.rejected"); got != "passmeter.password.rejected" {
		t.Fatalf("prefix must not be doubled, got %q", got)
	}

	p.prefix = ""
	if got := p.TopicName(EventPasswordRejected); got != EventPasswordRejected {
		t.Fatalf("unexpected topic without prefix %q", got)
	}
}

func TestProducerCountsFailedDeliveries(t *testing.T) {
	publisher, mock, producer := newTestPublisher(t)

	mock.ExpectInputAndFail(sarama.ErrOutOfBrokers)
	err := publisher.PublishPasswordRejected(context.Background(), domain.PasswordRejectedEvent{Code: "min_length"})
	if err != nil {
		t.Fatalf("publish must not block on delivery: %v", err)
	}

	if err := producer.Close(); err != nil {
		t.Fatalf("close producer: %v", err)
	}
	if got := producer.Failed(); got != 1 {
		t.Fatalf("expected 1 failed delivery, got %d", got)
	}
}

func TestSaramaConfig(t *testing.T) {
	sc := SaramaConfig(config.KafkaSettings{Async: true})
	if sc.Producer.RequiredAcks != sarama.WaitForLocal {
		t.Fatalf("async mode must wait for leader only, got %v", sc.Producer.RequiredAcks)
	}
	if !sc.Producer.Return.Errors || sc.Producer.Return.Successes {
		t.Fatalf("unexpected return settings %+v", sc.Producer.Return)
	}
	if err := sc.Validate(); err != nil {
		t.Fatalf("invalid sarama config: %v", err)
	}

	if got := SaramaConfig(config.KafkaSettings{}).Producer.RequiredAcks; got != sarama.WaitForAll {
		t.Fatalf("sync mode must wait for all replicas, got %v", got)
	}
}

func TestHeaderCarrierPropagatesTraceContext(t *testing.T) {
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	msg := &sarama.ProducerMessage{}
	propagation.TraceContext{}.Inject(ctx, headerCarrier{msg: msg})

	want := "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"
	if got := (headerCarrier{msg: msg}).Get("traceparent"); got != want {
		t.Fatalf("unexpected traceparent %q", got)
	}

	extracted := trace.SpanContextFromContext(propagation.TraceContext{}.Extract(context.Background(), headerCarrier{msg: msg}))
	if extracted.TraceID() != traceID {
		t.Fatalf("trace id not round-tripped: %s", extracted.TraceID())
	}
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	if _, err := NewProducer(config.KafkaSettings{}, zaptest.NewLogger(t)); err == nil {
		t.Fatalf("expected error without brokers")
	}
}

func TestStubPublisherAcceptsEvents(t *testing.T) {
	stub := NewStubPublisher(zaptest.NewLogger(t))

	if err := stub.PublishStrengthEvaluated(context.Background(), domain.StrengthEvaluatedEvent{Level: domain.StrengthWeak}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := stub.PublishPasswordRejected(context.Background(), domain.PasswordRejectedEvent{Code: "min_length"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
