// Package ledger implements the category and transaction use cases on top of
// the storage layer. Every multi-step write runs inside one storage
// transaction and events are published only after it commits.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/caixa/internal/common"
	"github.com/Veraticus/caixa/internal/model"
	"github.com/Veraticus/caixa/internal/service"
)

// Validation errors surfaced to callers. They all wrap common.ErrInvalidInput.
var (
	ErrUnknownType     = fmt.Errorf("%w: unknown transaction type", common.ErrInvalidInput)
	ErrUnknownCategory = fmt.Errorf("%w: unknown category", common.ErrInvalidInput)
	ErrMissingName     = fmt.Errorf("%w: name is required", common.ErrInvalidInput)
)

// withTx runs fn inside a storage transaction, committing only when fn
// succeeds. Any error rolls back every write made through tx.
func withTx(ctx context.Context, storage service.Storage, fn func(tx service.Transaction) error) error {
	tx, err := storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		// Rollback after a successful commit returns sql.ErrTxDone.
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// notifier publishes change events, logging failures instead of returning them.
type notifier struct {
	publisher service.EventPublisher
}

func (n notifier) notify(ctx context.Context, entity, action string, id int64) {
	if n.publisher == nil {
		return
	}

	event := model.Event{
		Entity:    entity,
		Action:    action,
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
	if err := n.publisher.Publish(ctx, event); err != nil {
		common.LogError(ctx, errors.Join(common.ErrPublishFailed, err), "failed to publish event", common.Fields{
			"routing_key": event.RoutingKey(),
			"id":          id,
		})
		return
	}
	slog.Debug("published event", "routing_key", event.RoutingKey(), "id", id)
}
