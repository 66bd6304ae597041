package ledger

import (
	"strings"

	"github.com/Veraticus/caixa/internal/model"
)

// NormalizeName is the canonical form of category and type names: trimmed
// and upper-cased, so "comida" and " Comida" resolve to the same row.
func NormalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// normalizeDescription maps blank descriptions to nil.
func normalizeDescription(desc *string) *string {
	if desc == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*desc)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func normalizeCategory(d model.CategoryDescriptor) (model.CategoryDescriptor, error) {
	out := model.CategoryDescriptor{
		Name:        NormalizeName(d.Name),
		Description: normalizeDescription(d.Description),
	}
	if out.Name == "" {
		return out, ErrMissingName
	}
	return out, nil
}
