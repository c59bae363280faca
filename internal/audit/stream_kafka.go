package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaStreamer produces log entries to a topic, keyed by object so all
// versions of one object land on the same partition in order.
type KafkaStreamer struct {
	client *kgo.Client
	topic  string
}

// NewKafkaStreamer connects a producer. The caller closes it with Close.
func NewKafkaStreamer(brokers []string, topic, clientID string) (*KafkaStreamer, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.AllowAutoTopicCreation(),
	}
	if clientID != "" {
		opts = append(opts, kgo.ClientID(clientID))
	}
	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &KafkaStreamer{client: client, topic: topic}, nil
}

func (k *KafkaStreamer) Stream(ctx context.Context, entry LogEntry) error {
	value, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal log entry: %w", err)
	}
	record := &kgo.Record{
		Topic: k.topic,
		Key:   []byte(entry.ObjectClass + ":" + entry.ObjectID.String()),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "action", Value: []byte(entry.Action)},
		},
	}
	if err := k.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce log entry: %w", err)
	}
	return nil
}

func (k *KafkaStreamer) Ping(ctx context.Context) error {
	return k.client.Ping(ctx)
}

func (k *KafkaStreamer) Close() {
	k.client.Close()
}
