package model

// Canonical transaction type names seeded by the migrations.
const (
	TypeIncome  = "RECEITA"
	TypeExpense = "DESPESA"
)

// Seeded identifiers of the canonical types.
const (
	TypeIncomeID  int64 = 1
	TypeExpenseID int64 = 2
)

// TransactionType classifies a transaction as income, expense or any other
// name created on demand.
type TransactionType struct {
	Name string
	ID   int64
}

// TypeDescriptor identifies a transaction type for find-or-create.
type TypeDescriptor struct {
	Name string
}
