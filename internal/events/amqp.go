package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// AMQPPublisher publishes events to a durable direct exchange.
type AMQPPublisher struct {
	conn       *amqp091.Connection
	channel    *amqp091.Channel
	exchange   string
	routingKey string
}

func NewAMQPPublisher(url, exchange, routingKey string) (*AMQPPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"direct", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()

		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &AMQPPublisher{
		conn:       conn,
		channel:    channel,
		exchange:   exchange,
		routingKey: routingKey,
	}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, e Event) error {
	body, err := e.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,   // exchange
		p.routingKey, // routing key
		false,        // mandatory
		false,        // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Type:         string(e.Type),
			MessageId:    e.ChargeID.String(),
			Timestamp:    e.At,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	slog.DebugContext(ctx, "published charge event",
		"type", e.Type,
		"charge_id", e.ChargeID,
		"exchange", p.exchange)

	return nil
}

func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}

	if p.conn != nil {
		return p.conn.Close()
	}

	return nil
}

// Connect returns an AMQP publisher, or Nop when url is empty. The returned
// func closes the connection.
func Connect(url, exchange, routingKey string) (Publisher, func(), error) {
	if url == "" {
		return Nop{}, func() {}, nil
	}

	pub, err := NewAMQPPublisher(url, exchange, routingKey)
	if err != nil {
		return nil, nil, err
	}

	return pub, func() {
		if err := pub.Close(); err != nil {
			slog.Error("failed to close publisher", "error", err)
		}
	}, nil
}
