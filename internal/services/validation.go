package services

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/mrlokans/crudgate/internal/apperr"
	"github.com/mrlokans/crudgate/internal/auth"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks a request DTO against its validate tags. Failures are
// returned as validator.ValidationErrors and render as 422.
func Validate(dto any) error {
	return validate.Struct(dto)
}

func passwordError(err error) error {
	switch {
	case errors.Is(err, auth.ErrPasswordTooLong):
		return apperr.Wrap(apperr.KindValidation, "Password is too long", err)
	case errors.Is(err, auth.ErrPasswordRequired):
		return apperr.Wrap(apperr.KindValidation, "Password is required", err)
	default:
		return err
	}
}
