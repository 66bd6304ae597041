// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/caixa/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
// All set fields are combined with AND; DueFrom and DueTo are inclusive.
type TransactionFilter struct {
	CategoryID *int64
	TypeID     *int64
	Status     *model.TransactionStatus
	DueFrom    *time.Time
	DueTo      *time.Time
}

// Store is the set of entity operations available both on the storage and
// inside a storage transaction.
type Store interface {
	// Transaction operations
	CreateTransaction(ctx context.Context, txn *model.Transaction) error
	GetTransactionByID(ctx context.Context, id int64) (*model.Transaction, error)
	GetTransactionWithRelations(ctx context.Context, id int64) (*model.Transaction, error)
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	UpdateTransaction(ctx context.Context, txn *model.Transaction) error
	SetTransactionCategory(ctx context.Context, transactionID, categoryID int64) error
	DeleteTransaction(ctx context.Context, id int64) (int64, error)

	// Category operations
	FindOrCreateCategory(ctx context.Context, descriptor model.CategoryDescriptor) (*model.Category, bool, error)
	GetCategoryByID(ctx context.Context, id int64) (*model.Category, error)
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategoriesByType(ctx context.Context, typeID int64) ([]model.Category, error)
	UpdateCategory(ctx context.Context, category *model.Category) error
	SetCategoryTypes(ctx context.Context, categoryID int64, typeIDs []int64) error
	DeleteCategory(ctx context.Context, id int64) (int64, error)

	// Transaction type operations
	FindOrCreateType(ctx context.Context, descriptor model.TypeDescriptor) (*model.TransactionType, bool, error)
	GetTypeByID(ctx context.Context, id int64) (*model.TransactionType, error)
	GetTypes(ctx context.Context) ([]model.TransactionType, error)
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	Store

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Store methods for use within transaction
	Store
}

// EventPublisher announces committed changes to other systems.
type EventPublisher interface {
	Publish(ctx context.Context, event model.Event) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
