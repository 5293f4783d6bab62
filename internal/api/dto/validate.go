package dto

import (
	"github.com/go-playground/validator/v10"

	apperrors "github.com/quickdesk/helpdesk/pkg/util"
)

var validate = validator.New()

// Validate checks a request struct against its validation tags, mapping
// failures to a ValidationError with per-field details.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	details := make(map[string]any, len(errs))
	for _, fieldErr := range errs {
		details[fieldErr.Field()] = fieldErr.Tag()
	}
	return apperrors.NewValidationError("invalid payload", details)
}
