package vault

import (
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPINLength = 8
	pinHashCost  = 10
)

// ValidPIN reports whether pin has at least MinPINLength characters with at
// least one letter, one digit and one character that is neither.
func ValidPIN(pin string) bool {
	var length int
	var letter, digit, other bool
	for _, r := range pin {
		length++
		switch {
		case r < unicode.MaxASCII && unicode.IsLetter(r):
			letter = true
		case r < unicode.MaxASCII && unicode.IsDigit(r):
			digit = true
		default:
			other = true
		}
	}
	return length >= MinPINLength && letter && digit && other
}

func HashPIN(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), pinHashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash pin: %w", err)
	}
	return string(hash), nil
}

func PINMatches(hash, pin string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}
