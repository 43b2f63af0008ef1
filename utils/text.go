package utils

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
)

// ErrNotNumeric is returned when a cleaned amount still contains non-digits.
var ErrNotNumeric = errors.New("not a number")

// CleanText strips leading/trailing whitespace and collapses internal
// whitespace (including non-breaking spaces) to single spaces.
func CleanText(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// ParseAmount turns "130 000 000 сум" into 130000000. The unit token, all
// whitespace and thousands separators are removed before parsing; anything
// else left over makes the text non-numeric.
func ParseAmount(text, unitToken string) (int64, error) {
	if unitToken != "" {
		text = strings.ReplaceAll(text, unitToken, "")
	}
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == ',' || r == '\'' {
			return -1
		}
		return r
	}, text)

	if !IsDigits(cleaned) {
		return 0, ErrNotNumeric
	}
	return strconv.ParseInt(cleaned, 10, 64)
}

// IsDigits reports whether s is a non-empty run of ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
