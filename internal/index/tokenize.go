package index

import (
	"regexp"
	"strings"
)

// wordRE matches maximal runs of ASCII letters, digits and underscore.
// Everything else is a separator.
var wordRE = regexp.MustCompile(`[a-z0-9_]+`)

// Tokenize lower-cases text and splits it into word tokens. Empty or
// separator-only input yields nil.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	return wordRE.FindAllString(strings.ToLower(text), -1)
}
