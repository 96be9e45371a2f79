// Package events publishes scheduling domain events to Kafka for downstream
// reminder and analytics consumers. Publishing is best-effort: the booking
// flow never fails because a broker is down.
package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/rfaria/traindesk/libs/kafkax"
	"github.com/segmentio/kafka-go"
)

// Topic names double as event types, one event per topic.
const (
	TopicAppointmentBooked  = "scheduling.appointment.booked.v1"
	TopicAppointmentRemoved = "scheduling.appointment.removed.v1"
	TopicCalendarSynced     = "scheduling.calendar.synced.v1"
)

type Publisher struct {
	writer *kafka.Writer
	logger *slog.Logger
	queue  chan kafka.Message
}

// NewPublisher returns a publisher draining an in-memory queue to Kafka, or
// a disabled one when no brokers are configured.
func NewPublisher(brokers string, logger *slog.Logger) *Publisher {
	list := kafkax.SplitBrokers(brokers)
	p := &Publisher{
		logger: logger,
		queue:  make(chan kafka.Message, 256),
	}
	if len(list) == 0 {
		logger.Warn("event publisher disabled (no kafka brokers configured)")
		return p
	}
	p.writer = &kafka.Writer{
		Addr:     kafka.TCP(list...),
		Balancer: &kafka.Hash{},
	}
	return p
}

// Run drains the queue until ctx is cancelled. No-op when disabled.
func (p *Publisher) Run(ctx context.Context) {
	if p.writer == nil {
		return
	}
	defer p.writer.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-p.queue:
			if err := p.writer.WriteMessages(ctx, msg); err != nil {
				p.logger.Error("event publish failed", "topic", msg.Topic, "err", err)
			}
		}
	}
}

// Publish enqueues one event keyed by aggregate id. Events are dropped with
// a log line when the queue is full or the publisher is disabled.
func (p *Publisher) Publish(ctx context.Context, topic, aggregateID string, payload any) {
	if p.writer == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("event payload encode failed", "topic", topic, "err", err)
		return
	}
	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(aggregateID),
		Value: body,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(uuid.NewString())},
			{Key: "event_type", Value: []byte(topic)},
		},
	}
	msg.Headers = kafkax.InjectTraceHeaders(ctx, msg.Headers)

	select {
	case p.queue <- msg:
	default:
		p.logger.Warn("event queue full; dropping event", "topic", topic, "aggregate_id", aggregateID)
	}
}
