package handlers

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Global validator instance (reused across all handlers)
var validate = validator.New()

// Row ids are platform ObjectIDs or UUIDs
const rowIDRule = "required,max=64,alphanum|uuid"

// DeleteForm is the submitted confirmation dialog
type DeleteForm struct {
	ID    string `validate:"required,max=64,alphanum|uuid"`
	Token string `validate:"required,jwt"`
}

// ValidateRowID checks a row id taken from the URL
func ValidateRowID(id string) error {
	if err := validate.Var(id, rowIDRule); err != nil {
		return errors.New("validation failed: id: must be a valid row id")
	}
	return nil
}

// ValidateRequest validates a request struct using go-playground/validator.
// Returns a user-friendly error message for the first failing field.
func ValidateRequest(req any) error {
	if err := validate.Struct(req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			return fmt.Errorf("validation failed: %s: %s", ve[0].Field(), formatValidationError(ve[0]))
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// formatValidationError converts a validator FieldError to a user-friendly message
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "max":
		return fmt.Sprintf("must have a maximum of %s characters", fe.Param())
	case "jwt":
		return "must be a confirmation token"
	case "alphanum|uuid":
		return "must be a valid row id"
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}
