package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/caixa/internal/common"
	"github.com/Veraticus/caixa/internal/model"
	"github.com/Veraticus/caixa/internal/service"
)

// dateLayout is how due dates are persisted. Lexical order equals
// chronological order, so range predicates work on the TEXT column.
const dateLayout = "2006-01-02"

const transactionColumns = `t.id, t.amount, t.due_date, t.status, t.notes,
	t.category_id, t.type_id, t.created_at, t.updated_at`

// CreateTransaction inserts a transaction and sets its generated ID.
func (s queries) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	now := time.Now().UTC()
	result, err := s.q.ExecContext(ctx, `
		INSERT INTO transactions (amount, due_date, status, notes, category_id, type_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.Amount,
		txn.DueDate.Format(dateLayout),
		string(txn.Status),
		nullString(txn.Notes),
		nullInt64(txn.CategoryID),
		txn.TypeID,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get transaction ID: %w", err)
	}

	txn.ID = id
	txn.CreatedAt = now
	txn.UpdatedAt = now

	slog.Debug("created transaction", "id", id, "type_id", txn.TypeID)
	return nil
}

// GetTransactionByID returns a transaction without relations, or nil when absent.
func (s queries) GetTransactionByID(ctx context.Context, id int64) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.q.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions t WHERE t.id = ?`, id)
	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction %d: %w", id, err)
	}
	return txn, nil
}

// GetTransactionWithRelations returns a transaction with its category and
// type attached, or nil when absent.
func (s queries) GetTransactionWithRelations(ctx context.Context, id int64) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.q.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`,
		       c.id, c.name, c.description, c.created_at, c.updated_at,
		       tt.id, tt.name
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		JOIN transaction_types tt ON tt.id = t.type_id
		WHERE t.id = ?`, id)

	var (
		txn        model.Transaction
		amount     string
		dueDate    string
		status     string
		notes      sql.NullString
		categoryID sql.NullInt64
		catID      sql.NullInt64
		catName    sql.NullString
		catDesc    sql.NullString
		catCreated sql.NullTime
		catUpdated sql.NullTime
		txnType    model.TransactionType
	)
	err := row.Scan(
		&txn.ID, &amount, &dueDate, &status, &notes,
		&categoryID, &txn.TypeID, &txn.CreatedAt, &txn.UpdatedAt,
		&catID, &catName, &catDesc, &catCreated, &catUpdated,
		&txnType.ID, &txnType.Name,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction %d: %w", id, err)
	}

	if err := fillTransaction(&txn, amount, dueDate, status, notes, categoryID); err != nil {
		return nil, err
	}
	txn.Type = &txnType

	if catID.Valid {
		category := &model.Category{
			ID:        catID.Int64,
			Name:      catName.String,
			CreatedAt: catCreated.Time,
			UpdatedAt: catUpdated.Time,
		}
		if catDesc.Valid {
			desc := catDesc.String
			category.Description = &desc
		}
		txn.Category = category
	}

	return &txn, nil
}

// GetTransactions lists transactions matching the filter, latest due date first.
func (s queries) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)
	if filter.CategoryID != nil {
		where = append(where, "t.category_id = ?")
		args = append(args, *filter.CategoryID)
	}
	if filter.TypeID != nil {
		where = append(where, "t.type_id = ?")
		args = append(args, *filter.TypeID)
	}
	if filter.Status != nil {
		where = append(where, "t.status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.DueFrom != nil {
		where = append(where, "t.due_date >= ?")
		args = append(args, filter.DueFrom.Format(dateLayout))
	}
	if filter.DueTo != nil {
		where = append(where, "t.due_date <= ?")
		args = append(args, filter.DueTo.Format(dateLayout))
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions t`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY t.due_date DESC, t.id DESC"

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	transactions := []model.Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	slog.Debug("retrieved transactions", "count", len(transactions))
	return transactions, nil
}

// UpdateTransaction writes every mutable field of txn.
func (s queries) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}
	if err := validateID(txn.ID, "id"); err != nil {
		return err
	}

	now := time.Now().UTC()
	result, err := s.q.ExecContext(ctx, `
		UPDATE transactions
		SET amount = ?, due_date = ?, status = ?, notes = ?, category_id = ?, type_id = ?, updated_at = ?
		WHERE id = ?`,
		txn.Amount,
		txn.DueDate.Format(dateLayout),
		string(txn.Status),
		nullString(txn.Notes),
		nullInt64(txn.CategoryID),
		txn.TypeID,
		now,
		txn.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction %d: %w", txn.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return common.NotFoundf("transaction %d", txn.ID)
	}

	txn.UpdatedAt = now
	return nil
}

// SetTransactionCategory links a transaction to a category.
func (s queries) SetTransactionCategory(ctx context.Context, transactionID, categoryID int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(transactionID, "transactionID"); err != nil {
		return err
	}
	if err := validateID(categoryID, "categoryID"); err != nil {
		return err
	}

	result, err := s.q.ExecContext(ctx,
		`UPDATE transactions SET category_id = ?, updated_at = ? WHERE id = ?`,
		categoryID, time.Now().UTC(), transactionID)
	if err != nil {
		return fmt.Errorf("failed to link transaction %d to category %d: %w", transactionID, categoryID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return common.NotFoundf("transaction %d", transactionID)
	}
	return nil
}

// DeleteTransaction removes a transaction and reports how many rows went away.
func (s queries) DeleteTransaction(ctx context.Context, id int64) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	result, err := s.q.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete transaction %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return affected, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var (
		txn        model.Transaction
		amount     string
		dueDate    string
		status     string
		notes      sql.NullString
		categoryID sql.NullInt64
	)
	if err := row.Scan(
		&txn.ID, &amount, &dueDate, &status, &notes,
		&categoryID, &txn.TypeID, &txn.CreatedAt, &txn.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := fillTransaction(&txn, amount, dueDate, status, notes, categoryID); err != nil {
		return nil, err
	}
	return &txn, nil
}

func fillTransaction(txn *model.Transaction, amount, dueDate, status string, notes sql.NullString, categoryID sql.NullInt64) error {
	if err := txn.Amount.Scan(amount); err != nil {
		return fmt.Errorf("failed to parse amount %q: %w", amount, err)
	}

	due, err := time.Parse(dateLayout, dueDate)
	if err != nil {
		return fmt.Errorf("failed to parse due date %q: %w", dueDate, err)
	}
	txn.DueDate = due
	txn.Status = model.TransactionStatus(status)
	txn.Notes = notes.String
	if categoryID.Valid {
		id := categoryID.Int64
		txn.CategoryID = &id
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
