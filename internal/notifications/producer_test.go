package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"carebaby/pkg/logger"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func headerValue(msg *sarama.ProducerMessage, key string) string {
	for _, h := range msg.Headers {
		if string(h.Key) == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestPublishTagChange(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	cfg := DefaultKafkaProducerConfig()
	producer := NewKafkaTagChangeProducerWith(mock, cfg, logger.Discard())

	mock.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != cfg.Topic {
			return errors.New("wrong topic " + msg.Topic)
		}
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "child-1" {
			return errors.New("wrong key " + string(key))
		}
		if headerValue(msg, "event_type") != string(EventTypeChildTagsReplaced) {
			return errors.New("missing event_type header")
		}
		if headerValue(msg, "child_id") != "child-1" {
			return errors.New("missing child_id header")
		}

		value, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var n TagChangeNotification
		if err := json.Unmarshal(value, &n); err != nil {
			return err
		}
		if len(n.Slugs) != 2 || n.Slugs[0] != "topic_sleep" || n.Slugs[1] != "cond_eczema" {
			return errors.New("unexpected slugs")
		}
		return nil
	})

	err := producer.PublishTagChange(context.Background(), "child-1", []string{"topic_sleep", "cond_eczema"})
	require.NoError(t, err)
	require.NoError(t, producer.Close())
}

func TestPublishTagChange_SendError(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	producer := NewKafkaTagChangeProducerWith(mock, DefaultKafkaProducerConfig(), logger.Discard())

	mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	err := producer.PublishTagChange(context.Background(), "child-1", nil)
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, producer.Close())
}

func TestNewTagChangeNotification(t *testing.T) {
	n := NewTagChangeNotification("child-1", nil)

	assert.Equal(t, EventTypeChildTagsReplaced, n.Type)
	assert.Equal(t, "child-1", n.GetPartitionKey())
	assert.NotNil(t, n.Slugs)

	raw, err := n.ToJSON()
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, []interface{}{}, doc["slugs"])
	assert.Equal(t, "child.tags.replaced", doc["type"])
}

func TestSaramaConfig(t *testing.T) {
	cfg := DefaultKafkaProducerConfig()
	sc := cfg.SaramaConfig()

	assert.True(t, sc.Producer.Return.Successes)
	assert.Equal(t, sarama.WaitForAll, sc.Producer.RequiredAcks)
	assert.Equal(t, 1, sc.Net.MaxOpenRequests)
	assert.NoError(t, sc.Validate())
}

func TestNoopProducer(t *testing.T) {
	var p TagChangeProducer = NoopProducer{}
	assert.NoError(t, p.PublishTagChange(context.Background(), "child-1", []string{"topic_sleep"}))
	assert.NoError(t, p.Close())
}
