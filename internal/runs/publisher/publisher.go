// Package publisher emits run-completed events.
package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"bizverify/internal/runs/models"
)

// EventType is the value of the event_type record header.
const EventType = "dedup.run.completed"

// KafkaPublisher writes one JSON record per run, keyed by run ID.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
}

// NewKafka connects a producer to brokers. The client is lazy: broker
// failures surface on Publish, not here.
func NewKafka(brokers []string, topic string) (*KafkaPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerLinger(0),
		kgo.RecordDeliveryTimeout(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &KafkaPublisher{client: client, topic: topic}, nil
}

// EnsureTopic creates the topic with broker-default partitions and
// replication. An existing topic is not an error.
func (p *KafkaPublisher) EnsureTopic(ctx context.Context) error {
	resps, err := kadm.NewClient(p.client).CreateTopics(ctx, -1, -1, nil, p.topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", p.topic, err)
	}
	for _, r := range resps {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}

// Publish produces the run synchronously.
func (p *KafkaPublisher) Publish(ctx context.Context, run models.RunSummary) error {
	record, err := NewRecord(p.topic, run)
	if err != nil {
		return err
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce run event: %w", err)
	}
	return nil
}

// Close flushes pending records and closes the client.
func (p *KafkaPublisher) Close() {
	p.client.Close()
}

// NewRecord encodes a run as a Kafka record.
func NewRecord(topic string, run models.RunSummary) (*kgo.Record, error) {
	value, err := json.Marshal(run)
	if err != nil {
		return nil, fmt.Errorf("marshal run event: %w", err)
	}
	return &kgo.Record{
		Topic: topic,
		Key:   []byte(run.RunID.String()),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(EventType)},
			{Key: "status", Value: []byte(run.Status)},
		},
	}, nil
}

// Noop discards events; used when no brokers are configured.
type Noop struct{}

func (Noop) Publish(context.Context, models.RunSummary) error { return nil }
