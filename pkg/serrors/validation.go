package serrors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationErrors is a field-scoped error set. Keys are request field names,
// values are the messages collected for that field. A ValidationErrors value
// always aborts the write that produced it; it is never partially applied.
type ValidationErrors map[string][]string

func NewValidationErrors() ValidationErrors {
	return make(ValidationErrors)
}

func (e ValidationErrors) Add(field, message string) {
	e[field] = append(e[field], message)
}

func (e ValidationErrors) Any() bool {
	return len(e) > 0
}

func (e ValidationErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(e[field], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func NewFieldRequiredError(field string) ValidationErrors {
	errs := NewValidationErrors()
	errs.Add(field, "this field is required")
	return errs
}

func NewFieldError(field, message string) ValidationErrors {
	errs := NewValidationErrors()
	errs.Add(field, message)
	return errs
}

// ProcessValidatorErrors converts go-playground validator output into a
// field-scoped set keyed by the struct's json-ish field name.
func ProcessValidatorErrors(validatorErrs validator.ValidationErrors) ValidationErrors {
	errs := NewValidationErrors()
	for _, fieldErr := range validatorErrs {
		field := toSnakeCase(fieldErr.Field())
		switch fieldErr.Tag() {
		case "required":
			errs.Add(field, "this field is required")
		case "email":
			errs.Add(field, "must be a valid email address")
		case "min":
			errs.Add(field, fmt.Sprintf("must be at least %s characters", fieldErr.Param()))
		case "max":
			errs.Add(field, fmt.Sprintf("must be at most %s characters", fieldErr.Param()))
		default:
			errs.Add(field, fmt.Sprintf("failed validation rule %q", fieldErr.Tag()))
		}
	}
	return errs
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
