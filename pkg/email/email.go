// Package email contains small helpers for working with email addresses.
package email

import (
	"strings"
	"unicode"
)

// DeriveNameFromEmail guesses a first and last name from the local part of an
// email address. Anonymous applicants who skip the name fields still get a
// readable candidate record this way.
func DeriveNameFromEmail(email string) (string, string) {
	localPart := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		localPart = email[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})

	if len(parts) == 0 {
		return "Applicant", "Applicant"
	}

	first := capitalize(parts[0])
	last := "Applicant"
	if len(parts) > 1 {
		last = capitalize(parts[len(parts)-1])
	}

	return first, last
}

// Domain returns the part after '@', lowercased, or "" when the address has
// no domain.
func Domain(email string) string {
	at := strings.LastIndexByte(email, '@')
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(email[at+1:])
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
