package common

import (
	"regexp"
	"strings"
)

var wordStart = regexp.MustCompile(`\b\w`)

// TitleWords upper-cases the first character of every word and leaves the
// rest of the string untouched ("new york" -> "New York", "mcDonald" -> "McDonald").
func TitleWords(s string) string {
	return wordStart.ReplaceAllStringFunc(s, strings.ToUpper)
}
