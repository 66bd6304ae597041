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
)

const categoryColumns = `c.id, c.name, c.description, c.created_at, c.updated_at`

// FindOrCreateCategory returns the oldest category matching every supplied
// field of the descriptor, creating one when none matches. The boolean
// reports whether a row was created.
func (s queries) FindOrCreateCategory(ctx context.Context, d model.CategoryDescriptor) (*model.Category, bool, error) {
	if err := validateContext(ctx); err != nil {
		return nil, false, err
	}
	if err := validateCategoryDescriptor(d); err != nil {
		return nil, false, err
	}

	existing, err := s.findCategory(ctx, d)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	now := time.Now().UTC()
	var desc sql.NullString
	if d.Description != nil {
		desc = sql.NullString{String: *d.Description, Valid: true}
	}

	result, err := s.q.ExecContext(ctx,
		`INSERT INTO categories (name, description, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		d.Name, desc, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			// Lost a race against a concurrent insert of the same descriptor.
			existing, findErr := s.findCategory(ctx, d)
			if findErr == nil && existing != nil {
				return existing, false, nil
			}
		}
		return nil, false, wrapConstraint(err, "create category")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get category ID: %w", err)
	}

	category := &model.Category{
		ID:          id,
		Name:        d.Name,
		Description: d.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	slog.Info("created new category", "name", d.Name, "id", id)
	return category, true, nil
}

func (s queries) findCategory(ctx context.Context, d model.CategoryDescriptor) (*model.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories c WHERE c.name = ?`
	args := []any{d.Name}
	if d.Description != nil {
		query += ` AND c.description = ?`
		args = append(args, *d.Description)
	}
	query += ` ORDER BY c.id LIMIT 1`

	category, err := scanCategory(s.q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check existing category: %w", err)
	}
	return category, nil
}

// GetCategoryByID returns a category with its types, or nil when absent.
func (s queries) GetCategoryByID(ctx context.Context, id int64) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	category, err := scanCategory(s.q.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories c WHERE c.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category %d: %w", id, err)
	}

	categories := []model.Category{*category}
	if err := s.attachTypes(ctx, categories); err != nil {
		return nil, err
	}
	return &categories[0], nil
}

// GetCategories returns every category with its types.
func (s queries) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	categories, err := s.queryCategories(ctx,
		`SELECT `+categoryColumns+` FROM categories c ORDER BY c.name, c.id`)
	if err != nil {
		return nil, err
	}

	if err := s.attachTypes(ctx, categories); err != nil {
		return nil, err
	}

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

// GetCategoriesByType returns the categories linked to a type, each with all of its types.
func (s queries) GetCategoriesByType(ctx context.Context, typeID int64) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	categories, err := s.queryCategories(ctx, `
		SELECT `+categoryColumns+`
		FROM categories c
		JOIN category_types ct ON ct.category_id = c.id
		WHERE ct.type_id = ?
		ORDER BY c.name, c.id`, typeID)
	if err != nil {
		return nil, err
	}

	if err := s.attachTypes(ctx, categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// UpdateCategory writes the name and description of a category.
func (s queries) UpdateCategory(ctx context.Context, category *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategory(category); err != nil {
		return err
	}

	var desc sql.NullString
	if category.Description != nil {
		desc = sql.NullString{String: *category.Description, Valid: true}
	}

	now := time.Now().UTC()
	result, err := s.q.ExecContext(ctx,
		`UPDATE categories SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
		category.Name, desc, now, category.ID)
	if err != nil {
		return wrapConstraint(err, "update category")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return common.NotFoundf("category %d", category.ID)
	}

	category.UpdatedAt = now
	return nil
}

// SetCategoryTypes replaces the full set of types linked to a category.
// Callers must run it inside a transaction for the replacement to be atomic.
func (s queries) SetCategoryTypes(ctx context.Context, categoryID int64, typeIDs []int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(categoryID, "categoryID"); err != nil {
		return err
	}

	if _, err := s.q.ExecContext(ctx, `DELETE FROM category_types WHERE category_id = ?`, categoryID); err != nil {
		return fmt.Errorf("failed to clear types of category %d: %w", categoryID, err)
	}

	for _, typeID := range typeIDs {
		if _, err := s.q.ExecContext(ctx,
			`INSERT OR IGNORE INTO category_types (category_id, type_id) VALUES (?, ?)`,
			categoryID, typeID); err != nil {
			return fmt.Errorf("failed to link category %d to type %d: %w", categoryID, typeID, err)
		}
	}

	slog.Debug("replaced category types", "category_id", categoryID, "count", len(typeIDs))
	return nil
}

// DeleteCategory removes a category and reports how many rows went away.
// Links are cascaded and referencing transactions lose their category.
func (s queries) DeleteCategory(ctx context.Context, id int64) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	result, err := s.q.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete category %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return affected, nil
}

func (s queries) queryCategories(ctx context.Context, query string, args ...any) ([]model.Category, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	categories := []model.Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, *category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

// attachTypes loads the linked types of every category in one query.
func (s queries) attachTypes(ctx context.Context, categories []model.Category) error {
	if len(categories) == 0 {
		return nil
	}

	index := make(map[int64]int, len(categories))
	placeholders := make([]string, len(categories))
	args := make([]any, len(categories))
	for i, c := range categories {
		index[c.ID] = i
		placeholders[i] = "?"
		args[i] = c.ID
		categories[i].Types = []model.TransactionType{}
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT ct.category_id, tt.id, tt.name
		FROM category_types ct
		JOIN transaction_types tt ON tt.id = ct.type_id
		WHERE ct.category_id IN (`+strings.Join(placeholders, ", ")+`)
		ORDER BY tt.id`, args...)
	if err != nil {
		return fmt.Errorf("failed to query category types: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			categoryID int64
			t          model.TransactionType
		)
		if err := rows.Scan(&categoryID, &t.ID, &t.Name); err != nil {
			return fmt.Errorf("failed to scan category type: %w", err)
		}
		if i, ok := index[categoryID]; ok {
			categories[i].Types = append(categories[i].Types, t)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating category types: %w", err)
	}
	return nil
}

func scanCategory(row rowScanner) (*model.Category, error) {
	var (
		category model.Category
		desc     sql.NullString
	)
	if err := row.Scan(&category.ID, &category.Name, &desc, &category.CreatedAt, &category.UpdatedAt); err != nil {
		return nil, err
	}
	if desc.Valid {
		d := desc.String
		category.Description = &d
	}
	return &category, nil
}
