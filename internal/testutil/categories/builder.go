// Package categories seeds categories for tests through a fluent builder.
//
// Example usage:
//
//	db := testutil.SetupTestDBWithBuilder(t, func(b categories.Builder) categories.Builder {
//		return b.WithBasicCategories().WithCategory(categories.CategoryLazer)
//	})
package categories

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/Veraticus/caixa/internal/model"
	"github.com/Veraticus/caixa/internal/service"
)

// Builder provides a fluent interface for constructing test categories.
type Builder interface {
	// WithCategory adds a category linked to the given type IDs.
	WithCategory(name CategoryName, typeIDs ...int64) Builder

	// WithBasicCategories adds the income and expense categories most tests use.
	WithBasicCategories() Builder

	// Build creates the categories in the provided store and returns them
	// ordered by name.
	Build(ctx context.Context, store service.Store) (Categories, error)
}

// CategoryName represents a strongly-typed category name.
type CategoryName string

// String returns the string representation of the category name.
func (c CategoryName) String() string {
	return string(c)
}

// Common category names used across tests.
const (
	CategorySalario  CategoryName = "SALARIO"
	CategoryComida   CategoryName = "COMIDA"
	CategoryAluguel  CategoryName = "ALUGUEL"
	CategoryLazer    CategoryName = "LAZER"
	CategoryPix      CategoryName = "PIX"
	CategoryMercado  CategoryName = "MERCADO"
	CategoryTarifas  CategoryName = "TARIFAS"
	CategoryRefund   CategoryName = "REEMBOLSO"
)

// Categories represents a collection of created test categories.
type Categories []model.Category

// Find returns the category with the given name, or nil if not found.
func (c Categories) Find(name CategoryName) *model.Category {
	for i := range c {
		if c[i].Name == name.String() {
			return &c[i]
		}
	}
	return nil
}

// MustFind returns the category with the given name, or fails the test if not found.
func (c Categories) MustFind(t *testing.T, name CategoryName) model.Category {
	t.Helper()
	cat := c.Find(name)
	if cat == nil {
		t.Fatalf("category %q not found in test data", name)
	}
	return *cat
}

// Names returns all category names as a slice of strings.
func (c Categories) Names() []string {
	names := make([]string, len(c))
	for i, cat := range c {
		names[i] = cat.Name
	}
	return names
}

// categoryBuilder implements the Builder interface.
type categoryBuilder struct {
	t          *testing.T
	categories map[CategoryName][]int64
}

// NewBuilder creates a new category builder for the given test.
func NewBuilder(t *testing.T) Builder {
	t.Helper()
	return &categoryBuilder{
		t:          t,
		categories: make(map[CategoryName][]int64),
	}
}

func (b *categoryBuilder) WithCategory(name CategoryName, typeIDs ...int64) Builder {
	b.categories[name] = append(b.categories[name], typeIDs...)
	return b
}

func (b *categoryBuilder) WithBasicCategories() Builder {
	return b.
		WithCategory(CategorySalario, model.TypeIncomeID).
		WithCategory(CategoryComida, model.TypeExpenseID).
		WithCategory(CategoryAluguel, model.TypeIncomeID, model.TypeExpenseID)
}

func (b *categoryBuilder) Build(ctx context.Context, store service.Store) (Categories, error) {
	b.t.Helper()

	names := make([]CategoryName, 0, len(b.categories))
	for name := range b.categories {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	result := make(Categories, 0, len(names))
	for _, name := range names {
		created, _, err := store.FindOrCreateCategory(ctx, model.CategoryDescriptor{Name: name.String()})
		if err != nil {
			return nil, fmt.Errorf("failed to create category %q: %w", name, err)
		}

		if typeIDs := b.categories[name]; len(typeIDs) > 0 {
			if err := store.SetCategoryTypes(ctx, created.ID, typeIDs); err != nil {
				return nil, fmt.Errorf("failed to link types to category %q: %w", name, err)
			}
		}

		category, err := store.GetCategoryByID(ctx, created.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to reload category %q: %w", name, err)
		}
		result = append(result, *category)
	}

	return result, nil
}
