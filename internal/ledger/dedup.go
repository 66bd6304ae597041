package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/caixa/internal/model"
	"github.com/Veraticus/caixa/internal/service"
)

// resolveCategory finds or creates the category named by d on store.
func resolveCategory(ctx context.Context, store service.Store, d model.CategoryDescriptor) (*model.Category, error) {
	normalized, err := normalizeCategory(d)
	if err != nil {
		return nil, err
	}

	category, created, err := store.FindOrCreateCategory(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve category %q: %w", normalized.Name, err)
	}
	if created {
		slog.Info("category created on demand", "name", category.Name, "id", category.ID)
	}
	return category, nil
}

// resolveTypes finds or creates every named type and returns their IDs in
// input order without duplicates.
func resolveTypes(ctx context.Context, store service.Store, descriptors []model.TypeDescriptor) ([]int64, error) {
	ids := make([]int64, 0, len(descriptors))
	seen := make(map[int64]bool, len(descriptors))

	for _, d := range descriptors {
		name := NormalizeName(d.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: transaction type", ErrMissingName)
		}

		t, created, err := store.FindOrCreateType(ctx, model.TypeDescriptor{Name: name})
		if err != nil {
			return nil, fmt.Errorf("failed to resolve transaction type %q: %w", name, err)
		}
		if created {
			slog.Info("transaction type created on demand", "name", t.Name, "id", t.ID)
		}

		if !seen[t.ID] {
			seen[t.ID] = true
			ids = append(ids, t.ID)
		}
	}
	return ids, nil
}
