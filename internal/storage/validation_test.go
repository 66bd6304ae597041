package storage

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/caixa/internal/model"
	"github.com/Veraticus/caixa/internal/service"
)

func TestValidateContext(t *testing.T) {
	tests := []struct {
		ctx     context.Context
		name    string
		wantErr bool
	}{
		{
			name:    "valid context",
			ctx:     context.Background(),
			wantErr: false,
		},
		{
			name:    "nil context",
			ctx:     nil,
			wantErr: true,
		},
		{
			name: "canceled context still valid",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			}(),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateContext(tt.ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateContext() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateString(t *testing.T) {
	tests := []struct {
		name    string
		str     string
		wantErr bool
	}{
		{name: "valid string", str: "caixa.db"},
		{name: "empty string", str: "", wantErr: true},
		{name: "whitespace only", str: " \t\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateString(tt.str, "param")
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrEmptyString)
				assert.Contains(t, err.Error(), "param")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateID(t *testing.T) {
	assert.NoError(t, validateID(1, "id"))
	assert.ErrorIs(t, validateID(0, "id"), ErrInvalidID)
	assert.ErrorIs(t, validateID(-7, "id"), ErrInvalidID)
}

func TestValidateTransaction(t *testing.T) {
	valid := func() *model.Transaction {
		return &model.Transaction{
			Amount:  decimal.RequireFromString("10.50"),
			DueDate: time.Date(2020, time.July, 1, 0, 0, 0, 0, time.UTC),
			Status:  model.StatusPending,
			TypeID:  model.TypeExpenseID,
		}
	}
	badCategory := int64(0)

	tests := []struct {
		modify  func(*model.Transaction)
		wantErr error
		name    string
	}{
		{name: "valid", modify: func(*model.Transaction) {}},
		{name: "negative amount", modify: func(txn *model.Transaction) { txn.Amount = decimal.NewFromInt(-1) }, wantErr: ErrInvalidAmount},
		{name: "zero due date", modify: func(txn *model.Transaction) { txn.DueDate = time.Time{} }, wantErr: ErrInvalidTransaction},
		{name: "empty status", modify: func(txn *model.Transaction) { txn.Status = "" }, wantErr: ErrInvalidStatus},
		{name: "no type", modify: func(txn *model.Transaction) { txn.TypeID = 0 }, wantErr: ErrInvalidTransaction},
		{name: "non-positive category", modify: func(txn *model.Transaction) { txn.CategoryID = &badCategory }, wantErr: ErrInvalidTransaction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := valid()
			tt.modify(txn)
			err := validateTransaction(txn)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.ErrorIs(t, validateTransaction(nil), ErrNilParameter)
}

func TestValidateCategory(t *testing.T) {
	assert.NoError(t, validateCategory(&model.Category{Name: "COMIDA"}))
	assert.ErrorIs(t, validateCategory(&model.Category{Name: "  "}), ErrInvalidCategory)
	assert.ErrorIs(t, validateCategory(nil), ErrNilParameter)

	assert.NoError(t, validateCategoryDescriptor(model.CategoryDescriptor{Name: "COMIDA"}))
	assert.ErrorIs(t, validateCategoryDescriptor(model.CategoryDescriptor{}), ErrInvalidCategory)

	assert.NoError(t, validateTypeDescriptor(model.TypeDescriptor{Name: "RECEITA"}))
	assert.ErrorIs(t, validateTypeDescriptor(model.TypeDescriptor{Name: ""}), ErrInvalidType)
}

func TestValidateFilter(t *testing.T) {
	early := time.Date(2020, time.July, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2020, time.July, 31, 0, 0, 0, 0, time.UTC)
	bogus := model.TransactionStatus("void")

	assert.NoError(t, validateFilter(service.TransactionFilter{}))
	assert.NoError(t, validateFilter(service.TransactionFilter{DueFrom: &early, DueTo: &late}))
	assert.NoError(t, validateFilter(service.TransactionFilter{DueFrom: &early, DueTo: &early}))
	assert.ErrorIs(t, validateFilter(service.TransactionFilter{DueFrom: &late, DueTo: &early}), ErrInvalidDateRange)
	assert.ErrorIs(t, validateFilter(service.TransactionFilter{Status: &bogus}), ErrInvalidStatus)
}
