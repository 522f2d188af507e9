// Package match measures how much of a job description's vocabulary a
// resume covers.
package match

import (
	"sort"
	"strings"

	"resumescan/internal/nlp"
	"resumescan/internal/types"
)

// Matcher compares lemma sets of a resume and a job description.
type Matcher struct {
	lemmatizer nlp.Lemmatizer
}

// New creates a matcher backed by lemmatizer.
func New(lemmatizer nlp.Lemmatizer) *Matcher {
	return &Matcher{lemmatizer: lemmatizer}
}

// Match returns the share of job description lemmas found in the resume,
// rounded to the nearest integer, with the missing and overlapping lemmas
// sorted ascending. Without a usable lemmatizer the result is zero.
func (m *Matcher) Match(resumeText, jdText string) types.MatchResult {
	empty := types.MatchResult{MissingKeywords: []string{}, OverlapKeywords: []string{}}
	if m.lemmatizer == nil || !m.lemmatizer.Loaded() {
		return empty
	}

	resume, err := m.lemmas(resumeText)
	if err != nil {
		return empty
	}
	jd, err := m.lemmas(jdText)
	if err != nil || len(jd) == 0 {
		return empty
	}

	result := empty
	for lemma := range jd {
		if _, ok := resume[lemma]; ok {
			result.OverlapKeywords = append(result.OverlapKeywords, lemma)
		} else {
			result.MissingKeywords = append(result.MissingKeywords, lemma)
		}
	}
	sort.Strings(result.OverlapKeywords)
	sort.Strings(result.MissingKeywords)
	result.Score = roundPercent(len(result.OverlapKeywords), len(jd))
	return result
}

func (m *Matcher) lemmas(text string) (map[string]struct{}, error) {
	tokens, err := m.lemmatizer.Analyze(strings.ToLower(text))
	if err != nil {
		return nil, err
	}
	return nlp.ContentLemmas(tokens), nil
}

// roundPercent returns round(100*part/whole) with halves rounded up.
func roundPercent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return (200*part + whole) / (2 * whole)
}
