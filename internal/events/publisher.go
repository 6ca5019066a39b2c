// Package events emits domain events to Kafka on a best-effort basis.
// Publishing never blocks a request and never fails one: a full buffer
// or a broker outage costs the event, not the write that produced it.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/agendaly/agendaly-api/libs/kafkax"
)

type event struct {
	id        string
	eventType string
	key       string
	payload   []byte
	headers   []kafka.Header
}

type Publisher struct {
	writer  *kafka.Writer
	queue   chan event
	log     *slog.Logger
	enabled bool
}

// NewPublisher builds a publisher for the given broker list. An empty
// list disables publishing entirely.
func NewPublisher(brokers []string, log *slog.Logger) *Publisher {
	p := &Publisher{
		queue: make(chan event, 512),
		log:   log,
	}
	if len(brokers) == 0 {
		log.Warn("kafka brokers not configured, event publishing disabled")
		return p
	}
	p.enabled = true
	p.writer = kafka.NewWriter(kafka.WriterConfig{
		Brokers:  brokers,
		Balancer: &kafka.Hash{},
	})
	return p
}

func (p *Publisher) Enabled() bool { return p.enabled }

// Publish enqueues one event. The topic is the event type; the key
// keeps events about one aggregate in order within a partition.
func (p *Publisher) Publish(ctx context.Context, eventType, key string, payload map[string]any) {
	if !p.enabled {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		p.log.Error("event payload marshal failed", "event_type", eventType, "error", err)
		return
	}
	ev := event{
		id:        uuid.NewString(),
		eventType: eventType,
		key:       key,
		payload:   body,
	}
	ev.headers = kafkax.InjectTraceHeaders(ctx, []kafka.Header{
		{Key: "event_id", Value: []byte(ev.id)},
		{Key: "event_type", Value: []byte(eventType)},
	})

	select {
	case p.queue <- ev:
	default:
		p.log.Warn("event queue full, dropping event", "event_type", eventType, "key", key)
	}
}

// Run drains the queue until ctx is cancelled, then closes the writer.
func (p *Publisher) Run(ctx context.Context) {
	if !p.enabled {
		return
	}
	defer p.writer.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-p.queue:
			writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := p.writer.WriteMessages(writeCtx, kafka.Message{
				Topic:   ev.eventType,
				Key:     []byte(ev.key),
				Value:   ev.payload,
				Headers: ev.headers,
			})
			cancel()
			if err != nil {
				p.log.Error("event publish failed",
					"event_type", ev.eventType, "key", ev.key, "error", err)
			}
		}
	}
}
