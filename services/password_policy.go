package services

import (
	"fmt"
	"unicode"
)

// MinPasswordLength applies to administrator accounts
const MinPasswordLength = 12

// ValidatePassword checks an administrator password: at least
// MinPasswordLength characters mixing upper and lower case letters,
// a number and a symbol.
func ValidatePassword(password string) error {
	if len([]rune(password)) < MinPasswordLength {
		return NewValidationError("password", fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	switch {
	case !hasUpper:
		return NewValidationError("password", "Password must contain an uppercase letter")
	case !hasLower:
		return NewValidationError("password", "Password must contain a lowercase letter")
	case !hasNumber:
		return NewValidationError("password", "Password must contain a number")
	case !hasSpecial:
		return NewValidationError("password", "Password must contain a special character")
	}
	return nil
}
