// Package storage provides the data persistence layer for the caixa application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/caixa/internal/model"
	"github.com/Veraticus/caixa/internal/service"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrInvalidID          = errors.New("identifier must be positive")
	ErrInvalidDateRange   = errors.New("start date must be before end date")
	ErrInvalidAmount      = errors.New("amount must not be negative")
	ErrInvalidStatus      = errors.New("invalid transaction status")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidType        = errors.New("invalid transaction type")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateID ensures an identifier is positive.
func validateID(id int64, paramName string) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s=%d", ErrInvalidID, paramName, id)
	}
	return nil
}

// validateTransaction validates a single transaction before it is written.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.Amount.IsNegative() {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, txn.Amount.String())
	}
	if txn.DueDate.IsZero() {
		return fmt.Errorf("%w: missing due date", ErrInvalidTransaction)
	}
	if !txn.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, txn.Status)
	}
	if txn.TypeID <= 0 {
		return fmt.Errorf("%w: missing type", ErrInvalidTransaction)
	}
	if txn.CategoryID != nil && *txn.CategoryID <= 0 {
		return fmt.Errorf("%w: category id %d", ErrInvalidTransaction, *txn.CategoryID)
	}
	return nil
}

// validateCategory validates a category before it is written.
func validateCategory(category *model.Category) error {
	if category == nil {
		return fmt.Errorf("%w: category", ErrNilParameter)
	}
	if strings.TrimSpace(category.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidCategory)
	}
	return nil
}

// validateCategoryDescriptor validates a find-or-create key for categories.
func validateCategoryDescriptor(d model.CategoryDescriptor) error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidCategory)
	}
	return nil
}

// validateTypeDescriptor validates a find-or-create key for transaction types.
func validateTypeDescriptor(d model.TypeDescriptor) error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidType)
	}
	return nil
}

// validateFilter checks the date bounds of a transaction filter.
func validateFilter(filter service.TransactionFilter) error {
	if filter.DueFrom != nil && filter.DueTo != nil && filter.DueTo.Before(*filter.DueFrom) {
		return fmt.Errorf("%w: %s > %s", ErrInvalidDateRange,
			filter.DueFrom.Format(dateLayout), filter.DueTo.Format(dateLayout))
	}
	if filter.Status != nil && !filter.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, *filter.Status)
	}
	return nil
}
