// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// syncIDRegex bounds sync identifiers to characters that are safe as file
// names. Server-issued identifiers are 16 lower-case hex characters.
var syncIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// currencyCodeRegex accepts upper-case codes such as "USD" or "USDT".
var currencyCodeRegex = regexp.MustCompile(`^[A-Z0-9]{2,10}$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn registers the custom validators on v.
func RegisterOn(v *validator.Validate) {
	_ = v.RegisterValidation("sync_id", validateSyncID)
}

// IsSyncID reports whether s is a well-formed sync identifier.
func IsSyncID(s string) bool {
	return syncIDRegex.MatchString(s)
}

// IsCurrencyCode reports whether s is a well-formed currency code.
func IsCurrencyCode(s string) bool {
	return currencyCodeRegex.MatchString(s)
}

func validateSyncID(fl validator.FieldLevel) bool {
	return IsSyncID(fl.Field().String())
}
