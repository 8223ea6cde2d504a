package security

import (
	"strings"
	"unicode"

	"github.com/arklim/passmeter/internal/core/domain"
)

// SymbolCharacters is the fixed set of punctuation and symbol characters counted as symbols.
const SymbolCharacters = "`~!?@#$€£¥§%^&*()_+-={}[]:\";.,<>'•\\|/"

// IsSymbol reports whether r belongs to SymbolCharacters.
func IsSymbol(r rune) bool {
	return strings.ContainsRune(SymbolCharacters, r)
}

// IsASCIIDigit reports whether r is one of '0' through '9'.
func IsASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// CountCharacters tallies the password's characters by category in a single pass.
// Length counts runes; characters outside every category only add to Length.
func CountCharacters(password string) domain.CharacterCounts {
	var counts domain.CharacterCounts
	for _, r := range password {
		counts.Length++
		switch {
		case IsASCIIDigit(r):
			counts.Digits++
		case unicode.IsLower(r):
			counts.Lowercase++
		case unicode.IsUpper(r):
			counts.Uppercase++
		case IsSymbol(r):
			counts.Symbols++
		}
	}
	return counts
}
