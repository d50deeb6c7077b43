// Package codec derives the 4-letter message codes and normalises code input.
//
// Each of the first four UTF-16 code units of a message is reduced modulo 26
// onto A-Z. Distinct messages can share a code and a code cannot be turned
// back into its message; recovery is a store lookup.
package codec

import (
	"regexp"
	"strings"
	"unicode/utf16"
)

const (
	// CodeLength is the fixed number of letters in every code
	CodeLength = 4

	// Fallback is the code unit used for positions past the end of the message
	// and for NUL code units. 65 mod 26 = 13, so it encodes as 'N'.
	Fallback = 'A'
)

var codePattern = regexp.MustCompile(`^[A-Z]{4}$`)

// Encode maps text onto its 4-letter code.
// Existing stored codes depend on the exact output, including the fallback.
func Encode(text string) string {
	units := utf16.Encode([]rune(text))

	var b strings.Builder
	b.Grow(CodeLength)
	for i := 0; i < CodeLength; i++ {
		unit := uint16(Fallback)
		if i < len(units) && units[i] != 0 {
			unit = units[i]
		}
		b.WriteByte(byte('A' + unit%26))
	}

	return b.String()
}

// NormalizeCodeInput keeps the first four ASCII letters of raw, uppercased.
func NormalizeCodeInput(raw string) string {
	var b strings.Builder
	b.Grow(CodeLength)
	for i := 0; i < len(raw) && b.Len() < CodeLength; i++ {
		c := raw[i]
		switch {
		case c >= 'a' && c <= 'z':
			b.WriteByte(c - 'a' + 'A')
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c)
		}
	}
	return b.String()
}

// IsCode reports whether s is a complete code ready to look up
func IsCode(s string) bool {
	return codePattern.MatchString(s)
}
