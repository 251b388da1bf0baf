package validators

import (
	"github.com/go-playground/validator/v10"

	"github.com/anonto42/gamematch/backend/pkg/errorx"
)

// CustomValidator adapts go-playground/validator to echo.Validator.
type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate reports struct tag violations as InvalidInput errors.
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return errorx.Wrap(errorx.InvalidInput, err, "invalid request")
	}
	return nil
}
