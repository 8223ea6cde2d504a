package kafka

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/arklim/passmeter/internal/infra/config"
)

const clientID = "passmeter"

// Producer publishes through a Sarama async producer. Delivery failures are
// logged and counted; callers never block on acknowledgements.
type Producer struct {
	producer sarama.AsyncProducer
	logger   *zap.Logger
	prefix   string
	failed   atomic.Int64
	drained  sync.WaitGroup
}

// SaramaConfig translates the settings into a Sarama producer configuration.
// Async mode settles for leader acks; otherwise every in-sync replica must ack.
func SaramaConfig(cfg config.KafkaSettings) *sarama.Config {
	sc := sarama.NewConfig()
	sc.Version = sarama.V3_5_0_0
	sc.ClientID = clientID

	sc.Producer.RequiredAcks = sarama.WaitForAll
	if cfg.Async {
		sc.Producer.RequiredAcks = sarama.WaitForLocal
	}
	sc.Producer.Compression = sarama.CompressionSnappy
	sc.Producer.Flush.Frequency = 100 * time.Millisecond
	sc.Producer.Flush.Messages = 100
	sc.Producer.Retry.Max = 3
	sc.Producer.Return.Successes = false
	sc.Producer.Return.Errors = true

	sc.Metadata.Retry.Max = 3
	sc.Metadata.Retry.Backoff = 250 * time.Millisecond
	return sc
}

func NewProducer(cfg config.KafkaSettings, logger *zap.Logger) (*Producer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}

	producer, err := sarama.NewAsyncProducer(cfg.Brokers, SaramaConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	logger.Info("kafka producer initialized",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic_prefix", cfg.TopicPrefix),
		zap.Bool("async", cfg.Async),
	)
	return newProducer(producer, cfg, logger), nil
}

func newProducer(producer sarama.AsyncProducer, cfg config.KafkaSettings, logger *zap.Logger) *Producer {
	p := &Producer{
		producer: producer,
		logger:   logger,
		prefix:   strings.TrimSuffix(cfg.TopicPrefix, "."),
	}
	p.drained.Add(1)
	go p.drainErrors()
	return p
}

// drainErrors runs until Sarama closes the error channel during Close.
func (p *Producer) drainErrors() {
	defer p.drained.Done()
	for perr := range p.producer.Errors() {
		p.failed.Add(1)
		p.logger.Error("kafka delivery failed",
			zap.Error(perr.Err),
			zap.String("topic", perr.Msg.Topic),
		)
	}
}

func (p *Producer) Input() chan<- *sarama.ProducerMessage {
	return p.producer.Input()
}

// Failed reports how many messages could not be delivered.
func (p *Producer) Failed() int64 {
	return p.failed.Load()
}

// Close flushes buffered messages and waits for pending failures to be logged.
func (p *Producer) Close() error {
	p.logger.Info("closing kafka producer")
	p.producer.AsyncClose()
	p.drained.Wait()
	return nil
}

// TopicName prefixes eventType with the configured topic prefix once.
func (p *Producer) TopicName(eventType string) string {
	if p.prefix == "" || strings.HasPrefix(eventType, p.prefix+".") {
		return eventType
	}
	return p.prefix + "." + eventType
}
