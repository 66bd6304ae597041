package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/caixa/internal/model"
)

// FindOrCreateType returns the type matching the descriptor, creating it
// when absent. The boolean reports whether a row was created.
func (s queries) FindOrCreateType(ctx context.Context, d model.TypeDescriptor) (*model.TransactionType, bool, error) {
	if err := validateContext(ctx); err != nil {
		return nil, false, err
	}
	if err := validateTypeDescriptor(d); err != nil {
		return nil, false, err
	}

	existing, err := s.findType(ctx, d)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	now := time.Now().UTC()
	result, err := s.q.ExecContext(ctx,
		`INSERT INTO transaction_types (name, created_at, updated_at) VALUES (?, ?, ?)`,
		d.Name, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			existing, findErr := s.findType(ctx, d)
			if findErr == nil && existing != nil {
				return existing, false, nil
			}
		}
		return nil, false, wrapConstraint(err, "create transaction type")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get transaction type ID: %w", err)
	}

	slog.Info("created new transaction type", "name", d.Name, "id", id)
	return &model.TransactionType{ID: id, Name: d.Name}, true, nil
}

func (s queries) findType(ctx context.Context, d model.TypeDescriptor) (*model.TransactionType, error) {
	var t model.TransactionType
	err := s.q.QueryRowContext(ctx,
		`SELECT id, name FROM transaction_types WHERE name = ?`, d.Name).Scan(&t.ID, &t.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check existing transaction type: %w", err)
	}
	return &t, nil
}

// GetTypeByID returns a transaction type, or nil when absent.
func (s queries) GetTypeByID(ctx context.Context, id int64) (*model.TransactionType, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var t model.TransactionType
	err := s.q.QueryRowContext(ctx,
		`SELECT id, name FROM transaction_types WHERE id = ?`, id).Scan(&t.ID, &t.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction type %d: %w", id, err)
	}
	return &t, nil
}

// GetTypes returns every transaction type ordered by ID.
func (s queries) GetTypes(ctx context.Context) ([]model.TransactionType, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx, `SELECT id, name FROM transaction_types ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction types: %w", err)
	}
	defer func() { _ = rows.Close() }()

	types := []model.TransactionType{}
	for rows.Next() {
		var t model.TransactionType
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("failed to scan transaction type: %w", err)
		}
		types = append(types, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction types: %w", err)
	}
	return types, nil
}
