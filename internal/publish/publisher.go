package publish

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"cropsight/internal/entity"
)

// Publisher emits finished diagnostic results to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, res *entity.DiagnosticResult) error
	Close() error
}

func ConnectProducer(brokers []string) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 2

	return sarama.NewSyncProducer(brokers, config)
}

// KafkaPublisher produces each result as a JSON message keyed by result ID.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *zap.Logger
}

func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) (*KafkaPublisher, error) {
	producer, err := ConnectProducer(brokers)
	if err != nil {
		return nil, fmt.Errorf("create producer: %w", err)
	}

	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger.Named("publish"),
	}, nil
}

func (r *KafkaPublisher) Publish(_ context.Context, res *entity.DiagnosticResult) error {
	b, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: r.topic,
		Key:   sarama.StringEncoder(res.ID),
		Value: sarama.StringEncoder(b),
	}

	if _, _, err = r.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("send msg: %w", err)
	}

	return nil
}

func (r *KafkaPublisher) Close() error {
	return r.producer.Close()
}

// NopPublisher is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *entity.DiagnosticResult) error {
	return nil
}

func (NopPublisher) Close() error {
	return nil
}
