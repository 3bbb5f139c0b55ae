// Package validation holds pure input-validation rules.
package validation

import (
	"errors"
	"strings"
	"unicode"
)

const allowedSpecials = "!@#$%^&*()_+-=[]{}"

// ErrWeakPassword is returned when a password fails the complexity rule.
var ErrWeakPassword = errors.New("password does not meet the complexity requirements")

// PasswordComplexity requires at least two uppercase letters, two
// lowercase letters, two digits, and two special characters.
func PasswordComplexity(raw string) error {
	var upper, lower, digits, special int

	for _, ch := range raw {
		switch {
		case unicode.IsLower(ch):
			lower++
		case unicode.IsUpper(ch):
			upper++
		case unicode.IsDigit(ch):
			digits++
		case strings.ContainsRune(allowedSpecials, ch):
			special++
		}
	}

	if upper >= 2 && lower >= 2 && digits >= 2 && special >= 2 {
		return nil
	}
	return ErrWeakPassword
}
