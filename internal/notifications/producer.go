package notifications

import (
	"context"
	"fmt"
	"time"

	"carebaby/pkg/logger"

	"github.com/IBM/sarama"
)

// TagChangeProducer publishes child tag changes
type TagChangeProducer interface {
	PublishTagChange(ctx context.Context, childID string, slugs []string) error
	Close() error
}

// KafkaProducerConfig contains configuration for the Kafka tag change producer
type KafkaProducerConfig struct {
	Brokers          []string
	Topic            string
	RetryMax         int
	TimeoutMs        int
	RequiredAcks     sarama.RequiredAcks
	CompressionType  sarama.CompressionCodec
	IdempotentWrites bool
	MaxMessageBytes  int
}

// DefaultKafkaProducerConfig returns a default producer configuration
func DefaultKafkaProducerConfig() *KafkaProducerConfig {
	return &KafkaProducerConfig{
		Brokers:          []string{"localhost:9092"},
		Topic:            "child-tag-changes",
		RetryMax:         3,
		TimeoutMs:        10000,
		RequiredAcks:     sarama.WaitForAll,
		CompressionType:  sarama.CompressionSnappy,
		IdempotentWrites: true,
		MaxMessageBytes:  1000000,
	}
}

// SaramaConfig builds the sarama producer settings for c
func (c *KafkaProducerConfig) SaramaConfig() *sarama.Config {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = c.RequiredAcks
	saramaConfig.Producer.Compression = c.CompressionType
	saramaConfig.Producer.Retry.Max = c.RetryMax
	saramaConfig.Producer.Timeout = time.Duration(c.TimeoutMs) * time.Millisecond
	saramaConfig.Producer.Idempotent = c.IdempotentWrites
	saramaConfig.Producer.MaxMessageBytes = c.MaxMessageBytes

	// idempotent producers require a single in-flight request
	if c.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}

	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner
	return saramaConfig
}

// KafkaTagChangeProducer handles publishing tag changes to Kafka
type KafkaTagChangeProducer struct {
	producer sarama.SyncProducer
	config   *KafkaProducerConfig
	log      *logger.Logger
}

// NewKafkaTagChangeProducer dials the brokers and creates a sync producer
func NewKafkaTagChangeProducer(config *KafkaProducerConfig, log *logger.Logger) (*KafkaTagChangeProducer, error) {
	producer, err := sarama.NewSyncProducer(config.Brokers, config.SaramaConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	return NewKafkaTagChangeProducerWith(producer, config, log), nil
}

// NewKafkaTagChangeProducerWith wraps an existing sarama producer
func NewKafkaTagChangeProducerWith(producer sarama.SyncProducer, config *KafkaProducerConfig, log *logger.Logger) *KafkaTagChangeProducer {
	if log == nil {
		log = logger.GetDefault()
	}
	return &KafkaTagChangeProducer{
		producer: producer,
		config:   config,
		log:      log,
	}
}

// PublishTagChange publishes one child.tags.replaced message keyed by child id
func (p *KafkaTagChangeProducer) PublishTagChange(ctx context.Context, childID string, slugs []string) error {
	notification := NewTagChangeNotification(childID, slugs)

	messageBytes, err := notification.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal tag change: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     p.config.Topic,
		Key:       sarama.StringEncoder(notification.GetPartitionKey()),
		Value:     sarama.ByteEncoder(messageBytes),
		Headers:   createHeaders(notification),
		Timestamp: notification.OccurredAt,
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send tag change to Kafka: %w", err)
	}

	p.log.InfoContext(ctx, "tag change published",
		"topic", p.config.Topic,
		"partition", partition,
		"offset", offset,
		"child_id", childID,
	)
	return nil
}

func createHeaders(n *TagChangeNotification) []sarama.RecordHeader {
	return []sarama.RecordHeader{
		{Key: []byte("event_id"), Value: []byte(n.ID.String())},
		{Key: []byte("event_type"), Value: []byte(n.Type)},
		{Key: []byte("child_id"), Value: []byte(n.ChildID)},
		{Key: []byte("producer"), Value: []byte("carebaby-tags")},
		{Key: []byte("occurred_at"), Value: []byte(n.OccurredAt.Format(time.RFC3339))},
	}
}

// Close closes the Kafka producer
func (p *KafkaTagChangeProducer) Close() error {
	if p.producer == nil {
		return nil
	}
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	return nil
}

// NoopProducer drops every message. Used when Kafka is disabled.
type NoopProducer struct{}

func (NoopProducer) PublishTagChange(ctx context.Context, childID string, slugs []string) error {
	return nil
}

func (NoopProducer) Close() error { return nil }
