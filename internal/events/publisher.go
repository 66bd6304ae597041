package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/Veraticus/caixa/internal/common"
	"github.com/Veraticus/caixa/internal/model"
	"github.com/Veraticus/caixa/internal/service"
)

const publishTimeout = 5 * time.Second

// channel is the subset of *amqp091.Channel the publisher needs.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Publisher sends events to a durable topic exchange, routed by
// "<entity>.<action>".
type Publisher struct {
	ch       channel
	conn     *amqp091.Connection
	exchange string
	mu       sync.Mutex
}

// Dial connects to the broker, retrying transient failures, and declares the exchange.
func Dial(ctx context.Context, url, exchange string, retry service.RetryOptions) (*Publisher, error) {
	var conn *amqp091.Connection
	err := common.WithRetry(ctx, func() error {
		var dialErr error
		conn, dialErr = amqp091.Dial(url)
		if errors.Is(dialErr, amqp091.ErrCredentials) || errors.Is(dialErr, amqp091.ErrSASL) {
			return common.Permanent(dialErr)
		}
		return dialErr
	}, retry)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	p, err := newPublisher(ch, exchange)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn

	slog.Info("connected to event broker", "exchange", exchange)
	return p, nil
}

func newPublisher(ch channel, exchange string) (*Publisher, error) {
	err := ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &Publisher{ch: ch, exchange: exchange}, nil
}

// Publish sends one persistent JSON message.
func (p *Publisher) Publish(ctx context.Context, event model.Event) error {
	body, err := Encode(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(
		ctx,
		p.exchange,         // exchange
		event.RoutingKey(), // routing key
		false,              // mandatory
		false,              // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    event.Timestamp,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

// Close releases the channel and the connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// Noop discards every event. It stands in when no broker is configured.
type Noop struct{}

// Publish does nothing.
func (Noop) Publish(context.Context, model.Event) error { return nil }

// Close does nothing.
func (Noop) Close() error { return nil }
