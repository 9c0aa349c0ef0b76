package pattern

import (
	"strings"
	"unicode"

	"github.com/fatih/camelcase"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SplitWords breaks an identifier into words at case changes and at any
// non-alphanumeric separator. Digits stay attached to the preceding word.
//
//	assertStrictEquals -> [assert Strict Equals]
//	HTTPServer         -> [HTTP Server]
//	my_custom-check    -> [my custom check]
func SplitWords(s string) []string {
	var words []string
	joined := false
	for _, tok := range camelcase.Split(s) {
		if !strings.ContainsFunc(tok, isWordRune) {
			joined = false
			continue
		}
		if joined && isDigits(tok) {
			words[len(words)-1] += tok
			continue
		}
		words = append(words, tok)
		joined = true
	}
	return words
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isDigits(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) }) < 0
}

// TitleCase capitalizes every word of an identifier: "describe" -> "Describe".
func TitleCase(s string) string {
	words := SplitWords(s)
	caser := cases.Title(language.Und)
	for i, w := range words {
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}

// SentenceCase capitalizes the first word and lower-cases the rest:
// "assertCustomThing" -> "Assert custom thing".
func SentenceCase(s string) string {
	words := SplitWords(s)
	if len(words) == 0 {
		return ""
	}
	title := cases.Title(language.Und)
	lower := cases.Lower(language.Und)
	words[0] = title.String(words[0])
	for i := 1; i < len(words); i++ {
		words[i] = lower.String(words[i])
	}
	return strings.Join(words, " ")
}
