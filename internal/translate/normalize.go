package translate

import (
	"regexp"
	"strings"
)

var (
	letterThenDigit = regexp.MustCompile(`([a-zA-ZÀ-ÿ])(\d)`)
	digitThenLetter = regexp.MustCompile(`(\d)([a-zA-ZÀ-ÿ])`)
	multiSpace      = regexp.MustCompile(`\s+`)
)

// Normalize tidies text before and after translation. Product names
// like "Vaso30cm" confuse the backends, so a space is forced between
// letters and digits, then runs of whitespace collapse to one space.
func Normalize(text string) string {
	if text == "" {
		return text
	}
	text = letterThenDigit.ReplaceAllString(text, "$1 $2")
	text = digitThenLetter.ReplaceAllString(text, "$1 $2")
	text = multiSpace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
