package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/caixa/internal/common"
	"github.com/Veraticus/caixa/internal/model"
	"github.com/Veraticus/caixa/internal/storage"
	"github.com/Veraticus/caixa/internal/testutil"
	"github.com/Veraticus/caixa/internal/testutil/categories"
)

func TestTransactionService_Store(t *testing.T) {
	ctx := context.Background()

	t.Run("creates and links nested category", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewTransactionService(db.Storage, nil)

		txn, err := svc.Store(ctx, model.NewTransaction{
			Amount:   amount("50.00"),
			DueDate:  date(2020, time.July, 15),
			TypeID:   model.TypeExpenseID,
			Category: &model.CategoryDescriptor{Name: "comida"},
		})
		require.NoError(t, err)

		require.NotNil(t, txn.Category)
		require.NotNil(t, txn.Type)
		assert.Equal(t, "COMIDA", txn.Category.Name)
		assert.Equal(t, model.TypeExpense, txn.Type.Name)
		assert.Equal(t, model.StatusPending, txn.Status)
		assert.True(t, amount("50").Equal(txn.Amount))
		require.NotNil(t, txn.CategoryID)
		assert.Equal(t, txn.Category.ID, *txn.CategoryID)
	})

	t.Run("reuses an existing category", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewTransactionService(db.Storage, nil)

		first, err := svc.Store(ctx, model.NewTransaction{
			Amount: amount("10"), DueDate: date(2020, time.July, 1), TypeID: model.TypeExpenseID,
			Category: &model.CategoryDescriptor{Name: "Comida"},
		})
		require.NoError(t, err)
		second, err := svc.Store(ctx, model.NewTransaction{
			Amount: amount("20"), DueDate: date(2020, time.July, 2), TypeID: model.TypeExpenseID,
			Category: &model.CategoryDescriptor{Name: "COMIDA"},
		})
		require.NoError(t, err)
		assert.Equal(t, first.Category.ID, second.Category.ID)
	})

	t.Run("without category", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewTransactionService(db.Storage, nil)

		txn, err := svc.Store(ctx, model.NewTransaction{
			Amount:  amount("1200"),
			DueDate: date(2020, time.July, 5),
			TypeID:  model.TypeIncomeID,
			Status:  model.StatusSettled,
			Notes:   "salario de julho",
		})
		require.NoError(t, err)
		assert.Nil(t, txn.Category)
		assert.Nil(t, txn.CategoryID)
		assert.Equal(t, model.TypeIncome, txn.Type.Name)
		assert.Equal(t, "salario de julho", txn.Notes)
	})

	t.Run("unknown type", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewTransactionService(db.Storage, nil)

		_, err := svc.Store(ctx, model.NewTransaction{
			Amount: amount("1"), DueDate: date(2020, time.July, 5), TypeID: 999,
			Category: &model.CategoryDescriptor{Name: "orfa"},
		})
		require.ErrorIs(t, err, ErrUnknownType)
		assert.ErrorIs(t, err, common.ErrInvalidInput)

		categories, err := db.Storage.GetCategories(ctx)
		require.NoError(t, err)
		assert.Empty(t, categories)
	})

	t.Run("rejected row leaves no orphan category", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewTransactionService(db.Storage, nil)

		_, err := svc.Store(ctx, model.NewTransaction{
			Amount: amount("-5"), DueDate: date(2020, time.July, 5), TypeID: model.TypeExpenseID,
			Category: &model.CategoryDescriptor{Name: "orfa"},
		})
		require.ErrorIs(t, err, storage.ErrInvalidAmount)

		categories, err := db.Storage.GetCategories(ctx)
		require.NoError(t, err)
		assert.Empty(t, categories)
	})

	t.Run("failed link rolls back row and category", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewTransactionService(&failingStorage{Storage: db.Storage, failOn: "SetTransactionCategory"}, nil)

		_, err := svc.Store(ctx, model.NewTransaction{
			Amount: amount("5"), DueDate: date(2020, time.July, 5), TypeID: model.TypeExpenseID,
			Category: &model.CategoryDescriptor{Name: "efemera"},
		})
		require.ErrorIs(t, err, errInjected)

		transactions, err := NewTransactionService(db.Storage, nil).Index(ctx, model.TransactionQuery{})
		require.NoError(t, err)
		assert.Empty(t, transactions)

		categories, err := db.Storage.GetCategories(ctx)
		require.NoError(t, err)
		assert.Empty(t, categories)
	})

	t.Run("failed re-fetch rolls back", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewTransactionService(&failingStorage{Storage: db.Storage, failOn: "GetTransactionWithRelations"}, nil)

		_, err := svc.Store(ctx, model.NewTransaction{
			Amount: amount("5"), DueDate: date(2020, time.July, 5), TypeID: model.TypeExpenseID,
		})
		require.ErrorIs(t, err, errInjected)

		got, err := db.Storage.GetTransactionByID(ctx, 1)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("unknown category id", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewTransactionService(db.Storage, nil)

		_, err := svc.Store(ctx, model.NewTransaction{
			Amount: amount("5"), DueDate: date(2020, time.July, 5), TypeID: model.TypeExpenseID,
			CategoryID: ptr(int64(42)),
		})
		require.ErrorIs(t, err, ErrUnknownCategory)
	})
}

func TestTransactionService_Index(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewTransactionService(db.Storage, nil)

	july := []time.Time{
		date(2020, time.July, 1),
		date(2020, time.July, 9),
		date(2020, time.July, 15),
		date(2020, time.July, 22),
		date(2020, time.July, 31),
	}
	elsewhere := []time.Time{
		date(2020, time.June, 30),
		date(2020, time.August, 1),
		date(2019, time.July, 15),
		date(2021, time.July, 15),
		date(2020, time.January, 10),
	}
	for _, due := range append(append([]time.Time{}, july...), elsewhere...) {
		_, err := svc.Store(ctx, model.NewTransaction{Amount: amount("10"), DueDate: due, TypeID: model.TypeExpenseID})
		require.NoError(t, err)
	}

	t.Run("period returns the whole month latest first", func(t *testing.T) {
		got, err := svc.Index(ctx, model.TransactionQuery{Year: ptr(2020), Month: ptr(7)})
		require.NoError(t, err)
		require.Len(t, got, 5)
		for i, txn := range got {
			assert.Equal(t, july[len(july)-1-i], txn.DueDate)
		}
	})

	t.Run("year alone is ignored", func(t *testing.T) {
		got, err := svc.Index(ctx, model.TransactionQuery{Year: ptr(2020)})
		require.NoError(t, err)
		assert.Len(t, got, 10)
	})

	t.Run("everything sorted by due date descending", func(t *testing.T) {
		got, err := svc.Index(ctx, model.TransactionQuery{})
		require.NoError(t, err)
		require.Len(t, got, 10)
		for i := 1; i < len(got); i++ {
			assert.False(t, got[i].DueDate.After(got[i-1].DueDate))
		}
	})

	t.Run("empty month", func(t *testing.T) {
		got, err := svc.Index(ctx, model.TransactionQuery{Year: ptr(2020), Month: ptr(3)})
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestTransactionService_IndexFilters(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewTransactionService(db.Storage, nil)

	salary, err := svc.Store(ctx, model.NewTransaction{
		Amount: amount("3000"), DueDate: date(2020, time.July, 5), TypeID: model.TypeIncomeID,
		Status: model.StatusSettled, Category: &model.CategoryDescriptor{Name: "salario"},
	})
	require.NoError(t, err)
	_, err = svc.Store(ctx, model.NewTransaction{
		Amount: amount("80"), DueDate: date(2020, time.July, 6), TypeID: model.TypeExpenseID,
		Category: &model.CategoryDescriptor{Name: "comida"},
	})
	require.NoError(t, err)

	byCategory, err := svc.Index(ctx, model.TransactionQuery{CategoryID: salary.CategoryID})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, salary.ID, byCategory[0].ID)

	byType, err := svc.Index(ctx, model.TransactionQuery{TypeID: ptr(model.TypeExpenseID)})
	require.NoError(t, err)
	assert.Len(t, byType, 1)

	byStatus, err := svc.Index(ctx, model.TransactionQuery{Status: ptr(model.StatusSettled), Year: ptr(2020), Month: ptr(7)})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, salary.ID, byStatus[0].ID)
}

func TestTransactionService_StoreReusesSeededCategory(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDBWithBuilder(t, func(b categories.Builder) categories.Builder {
		return b.WithBasicCategories()
	})
	svc := NewTransactionService(db.Storage, nil)
	aluguel := db.MustGetCategory(categories.CategoryAluguel)

	byID, err := svc.Store(ctx, model.NewTransaction{
		Amount: amount("1200"), DueDate: date(2020, time.July, 10), TypeID: model.TypeExpenseID,
		CategoryID: &aluguel,
	})
	require.NoError(t, err)
	require.NotNil(t, byID.Category)
	assert.Equal(t, "ALUGUEL", byID.Category.Name)

	byName, err := svc.Store(ctx, model.NewTransaction{
		Amount: amount("1200"), DueDate: date(2020, time.August, 10), TypeID: model.TypeIncomeID,
		Category: &model.CategoryDescriptor{Name: " aluguel "},
	})
	require.NoError(t, err)
	require.NotNil(t, byName.CategoryID)
	assert.Equal(t, aluguel, *byName.CategoryID)

	all, err := db.Storage.GetCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(db.Categories))
}

func TestTransactionService_IndexByPK(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewTransactionService(db.Storage, nil)

	stored, err := svc.Store(ctx, model.NewTransaction{
		Amount: amount("9.99"), DueDate: date(2020, time.July, 5), TypeID: model.TypeExpenseID,
		Category: &model.CategoryDescriptor{Name: "streaming"},
	})
	require.NoError(t, err)

	got, err := svc.IndexByPK(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, got.ID)
	assert.Nil(t, got.Category)
	assert.Nil(t, got.Type)
	assert.Equal(t, stored.CategoryID, got.CategoryID)

	_, err = svc.IndexByPK(ctx, 999)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestTransactionService_Update(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewTransactionService(db.Storage, nil)

	stored, err := svc.Store(ctx, model.NewTransaction{
		Amount: amount("100"), DueDate: date(2020, time.July, 5), TypeID: model.TypeExpenseID,
	})
	require.NoError(t, err)

	t.Run("partial update", func(t *testing.T) {
		updated, err := svc.Update(ctx, stored.ID, model.TransactionPatch{
			Amount: ptr(amount("120.50")),
			Status: ptr(model.StatusSettled),
		})
		require.NoError(t, err)
		assert.True(t, amount("120.50").Equal(updated.Amount))
		assert.Equal(t, model.StatusSettled, updated.Status)
		assert.Equal(t, date(2020, time.July, 5), updated.DueDate)
	})

	t.Run("link existing category by id", func(t *testing.T) {
		category, err := NewCategoryService(db.Storage, nil).Store(ctx, model.CategoryInput{Name: "contas"})
		require.NoError(t, err)

		updated, err := svc.Update(ctx, stored.ID, model.TransactionPatch{CategoryID: &category.ID})
		require.NoError(t, err)
		require.NotNil(t, updated.CategoryID)
		assert.Equal(t, category.ID, *updated.CategoryID)
	})

	t.Run("unknown category id", func(t *testing.T) {
		_, err := svc.Update(ctx, stored.ID, model.TransactionPatch{CategoryID: ptr(int64(777))})
		require.ErrorIs(t, err, ErrUnknownCategory)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := svc.Update(ctx, stored.ID, model.TransactionPatch{TypeID: ptr(int64(777))})
		require.ErrorIs(t, err, ErrUnknownType)
	})

	t.Run("missing transaction", func(t *testing.T) {
		_, err := svc.Update(ctx, 999, model.TransactionPatch{Notes: ptr("x")})
		require.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestTransactionService_Remove(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewTransactionService(db.Storage, nil)

	removed, err := svc.Remove(ctx, 999)
	require.NoError(t, err)
	assert.Zero(t, removed)

	stored, err := svc.Store(ctx, model.NewTransaction{Amount: amount("1"), DueDate: date(2020, time.July, 5), TypeID: model.TypeExpenseID})
	require.NoError(t, err)

	removed, err = svc.Remove(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestTransactionService_Events(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	t.Run("published after commit", func(t *testing.T) {
		pub := &recordingPublisher{}
		svc := NewTransactionService(db.Storage, pub)

		stored, err := svc.Store(ctx, model.NewTransaction{Amount: amount("1"), DueDate: date(2020, time.July, 5), TypeID: model.TypeExpenseID})
		require.NoError(t, err)
		_, err = svc.Update(ctx, stored.ID, model.TransactionPatch{Notes: ptr("pago")})
		require.NoError(t, err)
		_, err = svc.Remove(ctx, stored.ID)
		require.NoError(t, err)
		_, err = svc.Remove(ctx, stored.ID)
		require.NoError(t, err)

		assert.Equal(t, []string{"transacao.created", "transacao.updated", "transacao.removed"}, pub.keys())
		assert.Equal(t, stored.ID, pub.events[0].ID)
	})

	t.Run("publish failure does not fail the write", func(t *testing.T) {
		pub := &recordingPublisher{err: errors.New("broker down")}
		svc := NewTransactionService(db.Storage, pub)

		stored, err := svc.Store(ctx, model.NewTransaction{Amount: amount("1"), DueDate: date(2020, time.July, 5), TypeID: model.TypeExpenseID})
		require.NoError(t, err)

		got, err := svc.IndexByPK(ctx, stored.ID)
		require.NoError(t, err)
		assert.Equal(t, stored.ID, got.ID)
	})

	t.Run("nothing published on rollback", func(t *testing.T) {
		pub := &recordingPublisher{}
		svc := NewTransactionService(&failingStorage{Storage: db.Storage, failOn: "SetTransactionCategory"}, pub)

		_, err := svc.Store(ctx, model.NewTransaction{
			Amount: amount("1"), DueDate: date(2020, time.July, 5), TypeID: model.TypeExpenseID,
			Category: &model.CategoryDescriptor{Name: "x"},
		})
		require.Error(t, err)
		assert.Empty(t, pub.keys())
	})
}
