package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/caixa/internal/model"
	"github.com/Veraticus/caixa/internal/service"
	"github.com/Veraticus/caixa/internal/testutil"
)

var errInjected = errors.New("injected storage failure")

// failingStorage wraps a real storage and fails the named step inside
// transactions opened through it.
type failingStorage struct {
	service.Storage
	failOn string
}

func (f *failingStorage) BeginTx(ctx context.Context) (service.Transaction, error) {
	tx, err := f.Storage.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	return &failingTx{Transaction: tx, failOn: f.failOn}, nil
}

type failingTx struct {
	service.Transaction
	failOn string
}

func (f *failingTx) SetTransactionCategory(ctx context.Context, transactionID, categoryID int64) error {
	if f.failOn == "SetTransactionCategory" {
		return errInjected
	}
	return f.Transaction.SetTransactionCategory(ctx, transactionID, categoryID)
}

func (f *failingTx) SetCategoryTypes(ctx context.Context, categoryID int64, typeIDs []int64) error {
	if f.failOn == "SetCategoryTypes" {
		return errInjected
	}
	return f.Transaction.SetCategoryTypes(ctx, categoryID, typeIDs)
}

func (f *failingTx) GetTransactionWithRelations(ctx context.Context, id int64) (*model.Transaction, error) {
	if f.failOn == "GetTransactionWithRelations" {
		return nil, errInjected
	}
	return f.Transaction.GetTransactionWithRelations(ctx, id)
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	err    error
	events []model.Event
	mu     sync.Mutex
}

func (r *recordingPublisher) Publish(_ context.Context, event model.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, event)
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

func (r *recordingPublisher) keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, len(r.events))
	for i, e := range r.events {
		keys[i] = e.RoutingKey()
	}
	return keys
}

func newTestDB(t *testing.T) *testutil.TestDB {
	t.Helper()
	return testutil.SetupTestDB(t)
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr[T any](v T) *T {
	return &v
}
