// Package validation checks service input structs against their validate tags.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/aimd54/cricket-predictor/internal/domain"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonName)
	})
	return validate
}

// Struct validates s. Failures are returned wrapping domain.ErrValidation with
// one message per offending field.
func Struct(s interface{}) error {
	err := get().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	fields := FieldErrors(validationErrors)
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+fields[name])
	}
	return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(parts, "; "))
}

// FieldErrors formats validator errors into a field to message map.
func FieldErrors(errs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		field := e.Field()
		switch e.Tag() {
		case "required":
			out[field] = "is required"
		case "oneof":
			out[field] = fmt.Sprintf("must be one of [%s]", e.Param())
		case "max":
			out[field] = fmt.Sprintf("must be at most %s characters", e.Param())
		case "min":
			out[field] = fmt.Sprintf("must be at least %s characters", e.Param())
		case "email":
			out[field] = "must be a valid email"
		case "gtfield":
			out[field] = fmt.Sprintf("must be after %s", e.Param())
		case "gtefield":
			out[field] = fmt.Sprintf("must not be before %s", e.Param())
		case "nefield":
			out[field] = fmt.Sprintf("must differ from %s", e.Param())
		default:
			out[field] = "is invalid"
		}
	}
	return out
}

func jsonName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}
