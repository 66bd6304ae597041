package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/caixa/internal/model"
)

func TestFindOrCreateType(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	seeded, created, err := store.FindOrCreateType(ctx, model.TypeDescriptor{Name: model.TypeIncome})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, model.TypeIncomeID, seeded.ID)

	transfer, created, err := store.FindOrCreateType(ctx, model.TypeDescriptor{Name: "TRANSFERENCIA"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Greater(t, transfer.ID, model.TypeExpenseID)

	again, created, err := store.FindOrCreateType(ctx, model.TypeDescriptor{Name: "TRANSFERENCIA"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, transfer.ID, again.ID)

	types, err := store.GetTypes(ctx)
	require.NoError(t, err)
	assert.Len(t, types, 3)

	_, _, err = store.FindOrCreateType(ctx, model.TypeDescriptor{})
	require.ErrorIs(t, err, ErrInvalidType)
}

func TestGetTypeByID(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	got, err := store.GetTypeByID(ctx, model.TypeExpenseID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.TypeExpense, got.Name)

	missing, err := store.GetTypeByID(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
