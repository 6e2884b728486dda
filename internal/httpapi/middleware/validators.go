package middleware

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"reviewhub/internal/httpapi/service"
)

// RegisterValidators installs custom binding validators on gin's validator
// engine. Call once at startup before the first request.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return service.ValidateUsername(fl.Field().String()) == nil
	})
}
