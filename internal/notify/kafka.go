package notify

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/brgy-egov/assets-api/internal/app"
)

// KafkaNotifier publishes request lifecycle events to a kafka topic, keyed by
// request id so events for one request stay ordered within a partition.
// Publishing is fire and forget: a broker failure never fails the business
// operation that produced the event.
type KafkaNotifier struct {
	writer *kafka.Writer
}

func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	return &KafkaNotifier{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

func (n *KafkaNotifier) Notify(ctx context.Context, ev app.Event) {
	b, err := json.Marshal(ev)
	if err != nil {
		log.Printf("WARN: marshal event for request %s: %v", ev.RequestID, err)
		return
	}
	msg := kafka.Message{
		Key:   []byte(ev.RequestID),
		Value: b,
	}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		log.Printf("WARN: publish %s event for request %s: %v", ev.NewStatus, ev.RequestID, err)
	}
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
