// Package sections splits normalized resume text into the standard
// sections by walking it line by line and switching on heading lines.
package sections

import (
	"strings"

	"resumescan/internal/rules"
	"resumescan/internal/types"
)

const maxHeadingWords = 4

// Segmenter assigns lines to sections using a heading table.
type Segmenter struct {
	headings map[string]string
}

// New builds a segmenter from the headings of table.
func New(table *rules.Table) *Segmenter {
	return &Segmenter{headings: table.HeadingIndex()}
}

// Segment returns every section key mapped to the lines that follow its
// heading, up to the next heading. Heading lines themselves are dropped,
// as is anything before the first heading.
func (s *Segmenter) Segment(text string) types.SectionMap {
	collected := make(map[string][]string, len(types.SectionKeys))
	current := ""

	for _, line := range strings.Split(text, "\n") {
		if section, ok := s.heading(line); ok {
			current = section
			continue
		}
		if current != "" {
			collected[current] = append(collected[current], line)
		}
	}

	result := make(types.SectionMap, len(types.SectionKeys))
	for _, key := range types.SectionKeys {
		result[key] = strings.TrimSpace(strings.Join(collected[key], "\n"))
	}
	return result
}

// heading reports whether line is a section heading and which section it
// opens. Only exact matches count.
func (s *Segmenter) heading(line string) (string, bool) {
	cleaned := rules.NormalizeHeading(line)
	if n := len(strings.Fields(cleaned)); n < 1 || n > maxHeadingWords {
		return "", false
	}
	section, ok := s.headings[cleaned]
	return section, ok
}
