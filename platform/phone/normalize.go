// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "KR"

// NormalizeDashed canonicalizes a raw phone string into the dashed format used
// throughout the CRM. All non-digit characters are stripped; 11-digit numbers
// become DDD-DDDD-DDDD and 10-digit numbers DDD-DDD-DDDD. Anything else is
// returned unchanged rather than guessed at. Empty input yields an empty
// string. The function is idempotent: normalizing an already-normalized
// number returns the same string.
func NormalizeDashed(input string) string {
	if input == "" {
		return ""
	}

	digits := stripNonDigits(input)
	switch len(digits) {
	case 11:
		return digits[:3] + "-" + digits[3:7] + "-" + digits[7:]
	case 10:
		return digits[:3] + "-" + digits[3:6] + "-" + digits[6:]
	default:
		return input
	}
}

// Digits strips every non-digit character from the input. Used for wire
// formats (Solapi) that expect bare digit strings.
func Digits(input string) string {
	return stripNonDigits(input)
}

// IsPlausibleKR reports whether the input parses as a valid Korean number.
// Advisory only: callers log the result, they never reject on it, because the
// CRM stores whatever the form submitted.
func IsPlausibleKR(input string) bool {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return false
	}

	number, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(number)
}

func stripNonDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
