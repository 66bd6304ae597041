package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/caixa/internal/common"
	"github.com/Veraticus/caixa/internal/model"
	"github.com/Veraticus/caixa/internal/service"
)

// TransactionService manages transactions.
type TransactionService struct {
	storage service.Storage
	events  notifier
}

// NewTransactionService creates a transaction service. A nil publisher disables events.
func NewTransactionService(storage service.Storage, publisher service.EventPublisher) *TransactionService {
	return &TransactionService{
		storage: storage,
		events:  notifier{publisher: publisher},
	}
}

// Store inserts a transaction and, when in.Category is set, finds or creates
// that category and links it. Both steps share one storage transaction so a
// failure in either leaves nothing behind. The stored row is returned with
// its category and type attached.
func (s *TransactionService) Store(ctx context.Context, in model.NewTransaction) (*model.Transaction, error) {
	status := in.Status
	if status == "" {
		status = model.StatusPending
	}

	var result *model.Transaction
	err := withTx(ctx, s.storage, func(tx service.Transaction) error {
		if err := requireType(ctx, tx, in.TypeID); err != nil {
			return err
		}
		if in.CategoryID != nil {
			if err := requireCategory(ctx, tx, *in.CategoryID); err != nil {
				return err
			}
		}

		txn := &model.Transaction{
			Amount:     in.Amount,
			DueDate:    in.DueDate,
			Status:     status,
			Notes:      in.Notes,
			CategoryID: in.CategoryID,
			TypeID:     in.TypeID,
		}
		if err := tx.CreateTransaction(ctx, txn); err != nil {
			return err
		}

		if in.Category != nil {
			category, err := resolveCategory(ctx, tx, *in.Category)
			if err != nil {
				return err
			}
			if err := tx.SetTransactionCategory(ctx, txn.ID, category.ID); err != nil {
				return err
			}
		}

		var err error
		result, err = tx.GetTransactionWithRelations(ctx, txn.ID)
		if err != nil {
			return err
		}
		if result == nil {
			return common.NotFoundf("transaction %d", txn.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.notify(ctx, model.EntityTransaction, model.ActionCreated, result.ID)
	slog.Info("stored transaction", "operation", "store", "id", result.ID, "type_id", result.TypeID)
	return result, nil
}

// Index lists transactions matching the query, latest due date first. The
// period filter applies only when both Year and Month are set and covers
// the whole month.
func (s *TransactionService) Index(ctx context.Context, query model.TransactionQuery) ([]model.Transaction, error) {
	filter := service.TransactionFilter{
		CategoryID: query.CategoryID,
		TypeID:     query.TypeID,
		Status:     query.Status,
	}
	if query.HasPeriod() {
		from, to := MonthWindow(*query.Year, *query.Month)
		filter.DueFrom = &from
		filter.DueTo = &to
	}

	return s.storage.GetTransactions(ctx, filter)
}

// IndexByPK returns one transaction without its relations.
func (s *TransactionService) IndexByPK(ctx context.Context, id int64) (*model.Transaction, error) {
	txn, err := s.storage.GetTransactionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, common.NotFoundf("transaction %d", id)
	}
	return txn, nil
}

// Update applies a partial update and returns the updated row. Categories
// are referenced by ID only; nothing is created on the way.
func (s *TransactionService) Update(ctx context.Context, id int64, patch model.TransactionPatch) (*model.Transaction, error) {
	var result *model.Transaction

	err := withTx(ctx, s.storage, func(tx service.Transaction) error {
		txn, err := tx.GetTransactionByID(ctx, id)
		if err != nil {
			return err
		}
		if txn == nil {
			return common.NotFoundf("transaction %d", id)
		}

		if patch.TypeID != nil {
			if err := requireType(ctx, tx, *patch.TypeID); err != nil {
				return err
			}
		}
		if patch.CategoryID != nil {
			if err := requireCategory(ctx, tx, *patch.CategoryID); err != nil {
				return err
			}
		}

		patch.Apply(txn)
		if err := tx.UpdateTransaction(ctx, txn); err != nil {
			return err
		}

		result, err = tx.GetTransactionByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.events.notify(ctx, model.EntityTransaction, model.ActionUpdated, id)
	slog.Info("updated transaction", "operation", "update", "id", id)
	return result, nil
}

// Remove deletes a transaction and returns how many rows were removed; zero
// means it did not exist.
func (s *TransactionService) Remove(ctx context.Context, id int64) (int64, error) {
	removed, err := s.storage.DeleteTransaction(ctx, id)
	if err != nil {
		return 0, err
	}

	if removed > 0 {
		s.events.notify(ctx, model.EntityTransaction, model.ActionRemoved, id)
		slog.Info("removed transaction", "operation", "remove", "id", id)
	}
	return removed, nil
}

func requireType(ctx context.Context, store service.Store, id int64) error {
	t, err := store.GetTypeByID(ctx, id)
	if err != nil {
		return err
	}
	if t == nil {
		return fmt.Errorf("%w: %d", ErrUnknownType, id)
	}
	return nil
}

func requireCategory(ctx context.Context, store service.Store, id int64) error {
	category, err := store.GetCategoryByID(ctx, id)
	if err != nil {
		return err
	}
	if category == nil {
		return fmt.Errorf("%w: %d", ErrUnknownCategory, id)
	}
	return nil
}
