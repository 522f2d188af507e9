package extract

import (
	"regexp"
	"strings"
)

var (
	horizontalSpace = regexp.MustCompile(`[ \t]+`)
	newlineRun      = regexp.MustCompile(`\s*\n\s*`)
)

// Normalize collapses runs of spaces and tabs, squeezes whitespace around
// line breaks into a single newline and trims the result.
func Normalize(text string) string {
	text = horizontalSpace.ReplaceAllString(text, " ")
	text = newlineRun.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}
