package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jaldrishti/jaldrishti"
)

// Validator implements echo.Validator using go-playground/validator.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a Validator that reports fields by their JSON name.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form", "query"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	return &Validator{validate: v}
}

// Validate validates a request struct. Field failures are returned as an
// EINVALID error carrying one message per field.
func (v *Validator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return jaldrishti.ErrorWithFields(FormatValidationErrors(validationErrors))
	}
	return jaldrishti.Invalid("Invalid request")
}

// FormatValidationErrors converts validator errors into field -> message pairs.
func FormatValidationErrors(validationErrors validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		name := fieldErr.Field()
		isString := fieldErr.Kind() == reflect.String

		switch fieldErr.Tag() {
		case "required":
			fields[name] = "is required"
		case "min":
			if isString {
				fields[name] = fmt.Sprintf("must be at least %s characters", fieldErr.Param())
			} else {
				fields[name] = fmt.Sprintf("must be at least %s", fieldErr.Param())
			}
		case "max":
			if isString {
				fields[name] = fmt.Sprintf("must be no more than %s characters", fieldErr.Param())
			} else {
				fields[name] = fmt.Sprintf("must be no more than %s", fieldErr.Param())
			}
		case "gte":
			fields[name] = fmt.Sprintf("must be greater than or equal to %s", fieldErr.Param())
		case "lte":
			fields[name] = fmt.Sprintf("must be less than or equal to %s", fieldErr.Param())
		case "gt":
			fields[name] = fmt.Sprintf("must be greater than %s", fieldErr.Param())
		case "oneof":
			fields[name] = fmt.Sprintf("must be one of: %s", fieldErr.Param())
		case "url":
			fields[name] = "must be a valid URL"
		case "latitude":
			fields[name] = "must be a valid latitude"
		case "longitude":
			fields[name] = "must be a valid longitude"
		default:
			fields[name] = fmt.Sprintf("failed validation: %s", fieldErr.Tag())
		}
	}
	return fields
}
