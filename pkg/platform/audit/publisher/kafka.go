package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "hrgate/pkg/platform/audit"
)

// KafkaPublisher emits audit events to a Kafka topic. Records are keyed by
// employee ID so per-employee ordering is preserved within a partition.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafkaPublisher connects to the given brokers. Close must be called to
// flush buffered records.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) (*KafkaPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchMaxBytes(1<<20),
		kgo.RecordRetries(3),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &KafkaPublisher{client: client, topic: topic, logger: logger}, nil
}

// kafkaPayload is the JSON structure written to the topic.
type kafkaPayload struct {
	Category      string   `json:"category"`
	Timestamp     string   `json:"timestamp"`
	EmployeeID    string   `json:"employee_id,omitempty"`
	Subject       string   `json:"subject,omitempty"`
	Action        string   `json:"action"`
	Decision      string   `json:"decision,omitempty"`
	Reason        string   `json:"reason,omitempty"`
	RequestID     string   `json:"request_id,omitempty"`
	IP            string   `json:"ip,omitempty"`
	SecurityFlags []string `json:"security_flags,omitempty"`
}

// Emit publishes one event. Delivery is asynchronous; failures are logged,
// never surfaced to the request path.
func (k *KafkaPublisher) Emit(ctx context.Context, event audit.Event) error {
	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	category := event.Category
	if category == "" {
		category = audit.AuditEvent(event.Action).Category()
	}

	payload, err := json.Marshal(kafkaPayload{
		Category:      string(category),
		Timestamp:     ts.Format(time.RFC3339Nano),
		EmployeeID:    event.EmployeeID,
		Subject:       event.Subject,
		Action:        event.Action,
		Decision:      event.Decision,
		Reason:        event.Reason,
		RequestID:     event.RequestID,
		IP:            event.IP,
		SecurityFlags: event.SecurityFlags,
	})
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	record := &kgo.Record{
		Topic: k.topic,
		Key:   []byte(event.EmployeeID),
		Value: payload,
	}
	k.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil && k.logger != nil {
			k.logger.Error("failed to publish audit event", "action", event.Action, "error", err)
		}
	})
	return nil
}

// Close flushes outstanding records and releases the client.
func (k *KafkaPublisher) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := k.client.Flush(ctx); err != nil && k.logger != nil {
		k.logger.Warn("audit kafka flush incomplete", "error", err)
	}
	k.client.Close()
}
