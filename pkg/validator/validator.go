// Package validator installs the custom binding rules the request DTOs
// use on top of gin's validator engine.
package validator

import (
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register installs the custom rules. Call once at startup, before the
// first request binds.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("password", password)
	}
}

// password requires 8+ characters with at least one letter and one
// digit. A plain min=8 lets "aaaaaaaa" through.
func password(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) < 8 {
		return false
	}
	var letter, digit bool
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}
