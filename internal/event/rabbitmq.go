package event

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	amqp "github.com/rabbitmq/amqp091-go"

	"mca-api/pkg/logger"
)

// RabbitMQConnection holds the RabbitMQ connection and channel
type RabbitMQConnection struct {
	Connection *amqp.Connection
	Channel    *amqp.Channel
}

// ConnectRabbitMQ dials the broker, retrying while it is still starting
func ConnectRabbitMQ(ctx context.Context, url string, log *logger.Logger) (*RabbitMQConnection, error) {
	var conn *amqp.Connection
	err := retry.Do(
		func() error {
			c, err := amqp.Dial(url)
			if err != nil {
				return err
			}
			conn = c
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(5),
		retry.Delay(time.Second),
		retry.OnRetry(func(n uint, err error) {
			log.WithError(err).WithField("attempt", n+1).Warn("RabbitMQ dial failed, retrying")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	log.Info("Connected to RabbitMQ")
	return &RabbitMQConnection{Connection: conn, Channel: ch}, nil
}

// IsHealthy reports whether the connection is still open
func (r *RabbitMQConnection) IsHealthy() bool {
	return r != nil && r.Connection != nil && !r.Connection.IsClosed()
}

// Close closes the RabbitMQ channel and connection
func (r *RabbitMQConnection) Close() error {
	if r.Channel != nil {
		_ = r.Channel.Close()
	}
	if r.Connection != nil {
		if err := r.Connection.Close(); err != nil {
			return fmt.Errorf("failed to close RabbitMQ connection: %w", err)
		}
	}
	return nil
}
