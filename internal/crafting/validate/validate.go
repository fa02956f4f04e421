// Package validate wraps go-playground/validator with readable field paths
// and messages.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Error lists every problem found in a value.
type Error struct {
	Problems []string
}

func (e *Error) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

// Problemf returns an Error carrying one formatted problem.
func Problemf(format string, args ...any) *Error {
	return &Error{Problems: []string{fmt.Sprintf(format, args...)}}
}

// Validator validates tagged structs.
type Validator struct {
	validate *validator.Validate
}

// New returns a Validator that names fields by the given struct tag, such as
// "json" or "mapstructure". Fields without the tag keep their Go name.
func New(tagKey string) *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get(tagKey), ",")
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		default:
			return name
		}
	})
	return &Validator{validate: v}
}

// Struct validates s and returns an *Error describing every failed field.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validation error: %w", err)
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		problems = append(problems, formatFieldError(e))
	}
	return &Error{Problems: problems}
}

// formatFieldError formats a single validation error with field path and details.
func formatFieldError(e validator.FieldError) string {
	path := fieldPath(e.Namespace())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", path)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s (got: %v)", path, e.Param(), e.Value())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s (got: %v)", path, e.Param(), e.Value())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s (got: %v)", path, e.Param(), e.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s] (got: %v)", path, e.Param(), e.Value())
	default:
		return fmt.Sprintf("%s failed validation '%s' (got: %v)", path, e.Tag(), e.Value())
	}
}

// fieldPath drops the root struct name from a validator namespace.
// Example: "MacroRequest.playerStatus.cp" -> "playerStatus.cp"
func fieldPath(namespace string) string {
	_, rest, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}
	return rest
}
