package api

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

// ValidationError describes one rejected request field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report wire names instead of Go field names.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return field.Name
	})

	// Let numeric rules such as gte=0 apply to decimal amounts.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	v.RegisterStructValidation(validatePeriod, listTransactionsQuery{})
	return v
}

// validatePeriod requires ano and mes to be given together.
func validatePeriod(sl validator.StructLevel) {
	q, ok := sl.Current().Interface().(listTransactionsQuery)
	if !ok {
		return
	}
	if q.Ano != nil && q.Mes == nil {
		sl.ReportError(q.Mes, "mes", "Mes", "required_with", "ano")
	}
	if q.Mes != nil && q.Ano == nil {
		sl.ReportError(q.Ano, "ano", "Ano", "required_with", "mes")
	}
}

// ValidateRequest runs the struct rules of obj and returns one entry per
// failed field, or nil when obj is valid.
func ValidateRequest(obj any) []ValidationError {
	err := validate.Struct(obj)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return []ValidationError{{Field: "", Message: err.Error(), Type: "invalid"}}
	}

	validationErrors := make([]ValidationError, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		validationErrors = append(validationErrors, ValidationError{
			Field:   fieldPath(fe),
			Message: getErrorMsg(fe),
			Type:    fe.Tag(),
		})
	}
	return validationErrors
}

// fieldPath drops the request struct name from the namespace, so nested
// fields read "categoria.nome".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func getErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Campo obrigatório"
	case "required_with":
		return "Campo obrigatório quando " + fe.Param() + " é informado"
	case "min":
		return "Valor abaixo do mínimo permitido (" + fe.Param() + ")"
	case "max":
		return "Valor acima do máximo permitido (" + fe.Param() + ")"
	case "gt":
		return "Valor deve ser maior que " + fe.Param()
	case "gte":
		return "Valor deve ser maior ou igual a " + fe.Param()
	case "lte":
		return "Valor deve ser menor ou igual a " + fe.Param()
	case "oneof":
		return "Valor deve ser um de: " + fe.Param()
	case "datetime":
		return "Data inválida, use o formato AAAA-MM-DD"
	default:
		return "Valor inválido"
	}
}
