package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/usermgmt/admin-console/internal/pkg/validation"
)

// echoValidator lets Echo call c.Validate(req) with the shared validator.
type echoValidator struct{}

// NewValidator returns an echo.Validator backed by go-playground/validator.
func NewValidator() echo.Validator {
	return echoValidator{}
}

// Validate satisfies the echo.Validator interface.
func (echoValidator) Validate(i any) error {
	return validation.Struct(i)
}
