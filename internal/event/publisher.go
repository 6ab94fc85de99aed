package event

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"mca-api/internal/domain"
	"mca-api/pkg/logger"
)

// NominationQueue receives every nomination created/deleted event
const NominationQueue = "mca_nomination_events"

// channel is the part of *amqp.Channel the publisher uses
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// NominationPublisher publishes nomination events to RabbitMQ
type NominationPublisher struct {
	ch     channel
	logger *logger.Logger

	mu                sync.Mutex
	declared          bool
	messagesPublished int64
	messagesFailed    int64
	lastPublishTime   time.Time
}

// NewNominationPublisher creates a publisher on conn's channel
func NewNominationPublisher(conn *RabbitMQConnection, log *logger.Logger) *NominationPublisher {
	return newPublisher(conn.Channel, log)
}

func newPublisher(ch channel, log *logger.Logger) *NominationPublisher {
	return &NominationPublisher{ch: ch, logger: log}
}

// PublishNominationEvent publishes event as a persistent JSON message
func (p *NominationPublisher) PublishNominationEvent(ctx context.Context, event domain.NominationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.declared {
		if _, err := p.ch.QueueDeclare(NominationQueue, true, false, false, false, nil); err != nil {
			p.messagesFailed++
			return fmt.Errorf("failed to declare queue: %w", err)
		}
		p.declared = true
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to marshal nomination event: %w", err)
	}

	err = p.ch.PublishWithContext(ctx, "", NominationQueue, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Type:         string(event.Type),
		Body:         body,
		Timestamp:    event.OccurredAt,
	})
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to publish nomination event: %w", err)
	}

	p.messagesPublished++
	p.lastPublishTime = time.Now()

	p.logger.WithFields(map[string]interface{}{
		"queue":         NominationQueue,
		"type":          event.Type,
		"nomination_id": event.NominationID,
	}).Debug("Nomination event published")
	return nil
}

// PublisherStats is a snapshot of publisher counters
type PublisherStats struct {
	MessagesPublished int64     `json:"messagesPublished"`
	MessagesFailed    int64     `json:"messagesFailed"`
	LastPublishTime   time.Time `json:"lastPublishTime"`
	Queue             string    `json:"queue"`
}

// Stats returns the publisher counters
func (p *NominationPublisher) Stats() PublisherStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PublisherStats{
		MessagesPublished: p.messagesPublished,
		MessagesFailed:    p.messagesFailed,
		LastPublishTime:   p.lastPublishTime,
		Queue:             NominationQueue,
	}
}

// LogPublisher logs events instead of sending them; used when no broker is configured
type LogPublisher struct {
	logger *logger.Logger
}

func NewLogPublisher(log *logger.Logger) *LogPublisher {
	return &LogPublisher{logger: log}
}

func (p *LogPublisher) PublishNominationEvent(_ context.Context, event domain.NominationEvent) error {
	p.logger.WithFields(map[string]interface{}{
		"type":          event.Type,
		"nomination_id": event.NominationID,
		"nominator_id":  event.NominatorID,
		"category_id":   event.CategoryID,
	}).Info("Nomination event")
	return nil
}
