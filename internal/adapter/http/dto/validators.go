package dto

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	// safeIDPattern limits usernames to URL- and log-safe characters.
	safeIDPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
	// vpaPattern matches UPI virtual payment addresses (handle@psp).
	vpaPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{2,64}@[a-zA-Z]{2,32}$`)
)

// RegisterValidators installs custom binding validators on gin's validator
// engine. Call once at startup before serving requests.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := v.RegisterValidation("safe_id", validateSafeID); err != nil {
		return err
	}
	return v.RegisterValidation("vpa", validateVPA)
}

func validateSafeID(fl validator.FieldLevel) bool {
	return safeIDPattern.MatchString(fl.Field().String())
}

func validateVPA(fl validator.FieldLevel) bool {
	return vpaPattern.MatchString(fl.Field().String())
}
