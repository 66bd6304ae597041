// Package model defines the core domain models used throughout the application.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus tracks whether a transaction has been paid or received.
type TransactionStatus string

// Transaction status constants.
const (
	StatusPending TransactionStatus = "pending"
	StatusSettled TransactionStatus = "settled"
)

// Valid reports whether s is one of the known statuses.
func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusSettled:
		return true
	default:
		return false
	}
}

// Transaction represents a single financial movement.
type Transaction struct {
	DueDate    time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Category   *Category        // Populated only by eager lookups
	Type       *TransactionType // Populated only by eager lookups
	CategoryID *int64
	Amount     decimal.Decimal
	Status     TransactionStatus
	Notes      string
	ID         int64
	TypeID     int64
}

// NewTransaction holds the fields accepted when storing a transaction.
// Category, when set, is resolved with find-or-create after the row exists.
type NewTransaction struct {
	DueDate    time.Time
	Category   *CategoryDescriptor
	CategoryID *int64
	Amount     decimal.Decimal
	Status     TransactionStatus
	Notes      string
	TypeID     int64
}

// TransactionPatch is a partial update. Nil fields are left untouched.
type TransactionPatch struct {
	DueDate    *time.Time
	Amount     *decimal.Decimal
	Status     *TransactionStatus
	Notes      *string
	CategoryID *int64
	TypeID     *int64
}

// IsEmpty reports whether the patch changes nothing.
func (p TransactionPatch) IsEmpty() bool {
	return p.DueDate == nil && p.Amount == nil && p.Status == nil &&
		p.Notes == nil && p.CategoryID == nil && p.TypeID == nil
}

// Apply copies the patched fields onto txn.
func (p TransactionPatch) Apply(txn *Transaction) {
	if p.DueDate != nil {
		txn.DueDate = *p.DueDate
	}
	if p.Amount != nil {
		txn.Amount = *p.Amount
	}
	if p.Status != nil {
		txn.Status = *p.Status
	}
	if p.Notes != nil {
		txn.Notes = *p.Notes
	}
	if p.CategoryID != nil {
		id := *p.CategoryID
		txn.CategoryID = &id
	}
	if p.TypeID != nil {
		txn.TypeID = *p.TypeID
	}
}

// TransactionQuery filters transaction listings. Year and Month only take
// effect when both are set.
type TransactionQuery struct {
	CategoryID *int64
	TypeID     *int64
	Status     *TransactionStatus
	Year       *int
	Month      *int
}

// HasPeriod reports whether the period filter is active.
func (q TransactionQuery) HasPeriod() bool {
	return q.Year != nil && q.Month != nil
}
