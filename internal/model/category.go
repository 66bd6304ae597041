package model

import "time"

// Category is a user-defined label for grouping transactions.
type Category struct {
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Description *string
	Name        string
	Types       []TransactionType
	ID          int64
}

// CategoryDescriptor identifies a category for find-or-create. Every
// supplied field takes part in the match, so a descriptor with a
// description never matches a row that has a different one.
type CategoryDescriptor struct {
	Description *string
	Name        string
}

// CategoryInput holds the fields accepted when storing a category.
// Types nil means "not supplied"; a non-nil empty slice clears every link.
type CategoryInput struct {
	Description *string
	Types       *[]TypeDescriptor
	Name        string
}

// Descriptor returns the find-or-create key for the input.
func (in CategoryInput) Descriptor() CategoryDescriptor {
	return CategoryDescriptor{Name: in.Name, Description: in.Description}
}

// CategoryPatch is a partial category update.
type CategoryPatch struct {
	Name        *string
	Description *string
	Types       *[]TypeDescriptor
}

// CategoryFilter narrows category listings.
type CategoryFilter struct {
	TypeID *int64
}
