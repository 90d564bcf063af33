package models

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"expensetracker/cli/internal/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks a request body against its validate tags and returns an
// errors.Validation error naming every failing field.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return errors.Wrap(errors.Validation, "invalid input", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.New(errors.Validation, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "required_without":
		return fmt.Sprintf("%s or %s is required", field, strings.ToLower(fe.Param()))
	case "email":
		return field + " must be a valid email address"
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
