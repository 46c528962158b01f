package services

import (
	"errors"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// contactEmailPattern is deliberately permissive: local@domain.tld without whitespace
var contactEmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// validate holds struct metadata only; it is safe for concurrent use
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("contact_email", func(fl validator.FieldLevel) bool {
		return contactEmailPattern.MatchString(fl.Field().String())
	})
	return v
}

// ValidationMessenger lets a request type choose the message for a failed rule
type ValidationMessenger interface {
	ValidationMessage(field, tag string) string
}

// ValidateStruct runs the `validate` tags on s and reports the first failure
// as a *ValidationError. Failures are reported in field declaration order.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	first := fieldErrs[0]
	msg := first.Error()
	if m, ok := s.(ValidationMessenger); ok {
		if custom := m.ValidationMessage(first.Field(), first.Tag()); custom != "" {
			msg = custom
		}
	}
	return NewValidationError(first.Field(), msg)
}

// RequestValidator adapts ValidateStruct to echo's Validator interface
type RequestValidator struct{}

func (RequestValidator) Validate(i interface{}) error {
	return ValidateStruct(i)
}

// IsValidContactEmail reports whether email has the local@domain.tld shape
func IsValidContactEmail(email string) bool {
	return contactEmailPattern.MatchString(email)
}
