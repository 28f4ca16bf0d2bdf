// Package kafka forwards audit events to a Kafka topic so downstream
// compliance tooling can consume the trail without touching the ledger
// database.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "carbonledger/pkg/platform/audit"
)

// Sink publishes audit events to a Kafka topic using franz-go.
type Sink struct {
	client *kgo.Client
	topic  string
}

var _ audit.Sink = (*Sink)(nil)

// message is the wire shape of an audit event. Field names are stable;
// consumers key on action and company_id.
type message struct {
	Timestamp time.Time `json:"timestamp"`
	CompanyID string    `json:"company_id"`
	Subject   string    `json:"subject"`
	Action    string    `json:"action"`
	Actor     string    `json:"actor,omitempty"`
	Reason    string    `json:"reason,omitempty"`
}

// New connects to the given brokers. Delivery order within a company is
// preserved by keying records on the company ID.
func New(brokers []string, topic string) (*Sink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Sink{client: client, topic: topic}, nil
}

// Publish sends one event and waits for broker acknowledgement.
func (s *Sink) Publish(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(message{
		Timestamp: event.Timestamp,
		CompanyID: event.CompanyID.String(),
		Subject:   event.Subject,
		Action:    event.Action,
		Actor:     event.Actor,
		Reason:    event.Reason,
	})
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.CompanyID.String()),
		Value: payload,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Close flushes pending records and releases the client.
func (s *Sink) Close() {
	s.client.Close()
}
