package nlp

import (
	"strings"
	"unicode"
)

// Tokenize splits text into words and punctuation. Whitespace separates
// tokens; every punctuation or symbol rune is its own token except a dot or
// apostrophe sitting between two letters or digits, which stays inside the
// word ("vb.net", "don't").
func Tokenize(text string) []string {
	var tokens []string
	runes := []rune(text)
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for i, r := range runes {
		switch {
		case unicode.IsSpace(r):
			flush()
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			current.WriteRune(r)
		case (r == '.' || r == '\'') && current.Len() > 0 && i+1 < len(runes) && isWordRune(runes[i+1]):
			current.WriteRune(r)
		default:
			flush()
			tokens = append(tokens, string(r))
		}
	}
	flush()
	return tokens
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func toLower(s string) string {
	return strings.ToLower(s)
}
