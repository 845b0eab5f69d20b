package game

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// fold returns the case-folded form of s. A Caser is not safe for concurrent use,
// so a fresh one is built per call.
func fold(s string) string {
	return cases.Fold().String(s)
}

// parseLetter validates a single-letter guess and returns its folded form.
func parseLetter(letter string) (string, error) {
	letter = strings.TrimSpace(letter)
	if utf8.RuneCountInString(letter) != 1 {
		return "", ErrInvalidGuess
	}
	r, _ := utf8.DecodeRuneInString(letter)
	if !unicode.IsLetter(r) {
		return "", ErrInvalidGuess
	}
	return fold(letter), nil
}

// hasLetter reports whether s contains at least one Unicode letter.
func hasLetter(s string) bool {
	return strings.IndexFunc(s, unicode.IsLetter) >= 0
}
