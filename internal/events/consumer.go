package events

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rabbitmq/amqp091-go"

	"github.com/Veraticus/caixa/internal/model"
)

// Watch binds an exclusive, auto-deleted queue to the exchange for the
// given routing pattern ("#" for everything) and calls handler for each
// event until ctx is done. Messages that fail to decode are dropped;
// handler failures are requeued once.
func (p *Publisher) Watch(ctx context.Context, pattern string, handler func(model.Event) error) error {
	ch, ok := p.ch.(*amqp091.Channel)
	if !ok {
		return fmt.Errorf("watch requires a broker connection")
	}

	queue, err := ch.QueueDeclare(
		"",    // name
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(queue.Name, pattern, p.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	deliveries, err := ch.ConsumeWithContext(ctx,
		queue.Name, // queue
		"",         // consumer
		false,      // auto-ack
		true,       // exclusive
		false,      // no-local
		false,      // no-wait
		nil,        // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "watching events", "exchange", p.exchange, "pattern", pattern)
	return consume(ctx, deliveries, handler)
}

// acknowledger is the subset of amqp091.Delivery used when settling a message.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

type delivery struct {
	ack         acknowledger
	body        []byte
	redelivered bool
}

func consume(ctx context.Context, deliveries <-chan amqp091.Delivery, handler func(model.Event) error) error {
	adapted := make(chan delivery)
	go func() {
		defer close(adapted)
		for d := range deliveries {
			select {
			case adapted <- delivery{ack: &d, body: d.Body, redelivered: d.Redelivered}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return dispatch(ctx, adapted, handler)
}

func dispatch(ctx context.Context, deliveries <-chan delivery, handler func(model.Event) error) error {
	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "stopping event watch", "reason", ctx.Err())
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}

			event, err := Decode(d.body)
			if err != nil {
				slog.ErrorContext(ctx, "failed to decode event", "error", err)
				_ = d.ack.Nack(false, false)
				continue
			}

			if err := handler(*event); err != nil {
				slog.ErrorContext(ctx, "failed to handle event",
					"error", err,
					"routing_key", event.RoutingKey(),
					"id", event.ID)
				_ = d.ack.Nack(false, !d.redelivered)
				continue
			}

			_ = d.ack.Ack(false)
		}
	}
}
