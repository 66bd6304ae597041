package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/caixa/internal/common"
	"github.com/Veraticus/caixa/internal/model"
	"github.com/Veraticus/caixa/internal/service"
)

// CategoryService manages categories and their links to transaction types.
type CategoryService struct {
	storage service.Storage
	events  notifier
}

// NewCategoryService creates a category service. A nil publisher disables events.
func NewCategoryService(storage service.Storage, publisher service.EventPublisher) *CategoryService {
	return &CategoryService{
		storage: storage,
		events:  notifier{publisher: publisher},
	}
}

// Store finds or creates the category described by in. When in.Types is
// supplied every named type is found or created and becomes the category's
// complete link set.
func (s *CategoryService) Store(ctx context.Context, in model.CategoryInput) (*model.Category, error) {
	var (
		result  *model.Category
		created bool
	)

	err := withTx(ctx, s.storage, func(tx service.Transaction) error {
		descriptor, err := normalizeCategory(in.Descriptor())
		if err != nil {
			return err
		}

		category, isNew, err := tx.FindOrCreateCategory(ctx, descriptor)
		if err != nil {
			return fmt.Errorf("failed to resolve category %q: %w", descriptor.Name, err)
		}
		created = isNew

		if in.Types != nil {
			typeIDs, err := resolveTypes(ctx, tx, *in.Types)
			if err != nil {
				return err
			}
			if err := tx.SetCategoryTypes(ctx, category.ID, typeIDs); err != nil {
				return fmt.Errorf("failed to link types to category %d: %w", category.ID, err)
			}
		}

		result, err = tx.GetCategoryByID(ctx, category.ID)
		if err != nil {
			return err
		}
		if result == nil {
			return common.NotFoundf("category %d", category.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch {
	case created:
		s.events.notify(ctx, model.EntityCategory, model.ActionCreated, result.ID)
	case in.Types != nil:
		s.events.notify(ctx, model.EntityCategory, model.ActionUpdated, result.ID)
	}

	slog.Info("stored category", "operation", "store", "id", result.ID, "created", created)
	return result, nil
}

// Index lists categories with their types. With filter.TypeID set only the
// categories linked to that type are returned, and an unknown type is
// reported as not found.
func (s *CategoryService) Index(ctx context.Context, filter model.CategoryFilter) ([]model.Category, error) {
	if filter.TypeID == nil {
		return s.storage.GetCategories(ctx)
	}

	t, err := s.storage.GetTypeByID(ctx, *filter.TypeID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, common.NotFoundf("transaction type %d", *filter.TypeID)
	}

	return s.storage.GetCategoriesByType(ctx, t.ID)
}

// IndexByID returns one category with its types.
func (s *CategoryService) IndexByID(ctx context.Context, id int64) (*model.Category, error) {
	category, err := s.storage.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, common.NotFoundf("category %d", id)
	}
	return category, nil
}

// Update applies a partial update. A supplied Types list, even an empty one,
// replaces the category's link set entirely.
func (s *CategoryService) Update(ctx context.Context, id int64, patch model.CategoryPatch) (*model.Category, error) {
	var result *model.Category

	err := withTx(ctx, s.storage, func(tx service.Transaction) error {
		category, err := tx.GetCategoryByID(ctx, id)
		if err != nil {
			return err
		}
		if category == nil {
			return common.NotFoundf("category %d", id)
		}

		if patch.Name != nil {
			name := NormalizeName(*patch.Name)
			if name == "" {
				return ErrMissingName
			}
			category.Name = name
		}
		if patch.Description != nil {
			category.Description = normalizeDescription(patch.Description)
		}

		if err := tx.UpdateCategory(ctx, category); err != nil {
			return err
		}

		if patch.Types != nil {
			typeIDs, err := resolveTypes(ctx, tx, *patch.Types)
			if err != nil {
				return err
			}
			if err := tx.SetCategoryTypes(ctx, id, typeIDs); err != nil {
				return fmt.Errorf("failed to link types to category %d: %w", id, err)
			}
		}

		result, err = tx.GetCategoryByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.events.notify(ctx, model.EntityCategory, model.ActionUpdated, id)
	slog.Info("updated category", "operation", "update", "id", id)
	return result, nil
}

// Remove deletes a category and returns how many rows were removed; zero
// means it did not exist. Transactions in the category keep existing
// without one.
func (s *CategoryService) Remove(ctx context.Context, id int64) (int64, error) {
	removed, err := s.storage.DeleteCategory(ctx, id)
	if err != nil {
		return 0, err
	}

	if removed > 0 {
		s.events.notify(ctx, model.EntityCategory, model.ActionRemoved, id)
		slog.Info("removed category", "operation", "remove", "id", id)
	}
	return removed, nil
}

// Types lists every transaction type.
func (s *CategoryService) Types(ctx context.Context) ([]model.TransactionType, error) {
	return s.storage.GetTypes(ctx)
}
