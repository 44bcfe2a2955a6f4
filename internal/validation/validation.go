// Package validation wires go-playground/validator into Echo and registers
// the custom rules the account endpoints rely on.
package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// New returns a validator with the application's custom rules registered.
// The `notpassword` rule rejects any password that contains the literal
// word "password", case-insensitively.
func New() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("notpassword", func(fl validator.FieldLevel) bool {
		return !strings.Contains(strings.ToLower(fl.Field().String()), "password")
	})
	return v
}

// EchoValidator adapts a *validator.Validate to Echo's Validator interface
// so handlers can call c.Validate(dto) after binding.
type EchoValidator struct{ V *validator.Validate }

func (ev *EchoValidator) Validate(i interface{}) error { return ev.V.Struct(i) }
