// Package issues runs the rule-based formatting and content checks.
package issues

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"resumescan/internal/nlp"
	"resumescan/internal/rules"
	"resumescan/internal/types"
)

// Issue texts. Recommendation rules key off substrings of these, so they
// are part of the contract.
const (
	MissingSkills        = "A dedicated 'Skills' section is crucial for ATS and is missing."
	MissingExperience    = "A standard 'Work Experience' section was not found."
	WeakValueProposition = "Profile summary may lack a clear value proposition."
	MissingDegree        = "Education section may be missing degree or institution information."
	MissingGradYear      = "Education section is missing a clear graduation year."
	MissingEducation     = "An 'Education' section was not found."
	LacksQuantification  = "Work experience lacks quantification. Add metrics to show impact."
	GraphicsHeavy        = "Resume appears to be graphics-heavy or image-based."

	buzzwordsFormat = "Profile summary uses buzzwords: %s."
)

var graduationYear = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// Compiler checks sections against one rule table.
type Compiler struct {
	table      *rules.Table
	lemmatizer nlp.Lemmatizer
	buzzwords  map[string]*regexp.Regexp
	verbs      *regexp.Regexp
	outdated   map[string]struct{}
}

// New prepares the patterns of table.
func New(table *rules.Table, lemmatizer nlp.Lemmatizer) *Compiler {
	c := &Compiler{
		table:      table,
		lemmatizer: lemmatizer,
		buzzwords:  make(map[string]*regexp.Regexp, len(table.Buzzwords)),
		outdated:   make(map[string]struct{}, len(table.OutdatedTech)),
	}
	for _, b := range table.Buzzwords {
		c.buzzwords[b] = wholeWord(b)
	}
	if len(table.ActionVerbs) > 0 {
		quoted := make([]string, len(table.ActionVerbs))
		for i, v := range table.ActionVerbs {
			quoted[i] = regexp.QuoteMeta(v)
		}
		c.verbs = regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
	}
	for _, tech := range table.OutdatedTech {
		c.outdated[tech] = struct{}{}
	}
	return c
}

func wholeWord(term string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)
}

// Compile returns the formatting issues, content issues and outdated
// technology mentions of a segmented resume.
func (c *Compiler) Compile(sections types.SectionMap, rawText string) types.IssueSet {
	set := types.IssueSet{
		FormattingIssues: []string{},
		ContentIssues:    []string{},
	}

	if sections[types.SectionSkills] == "" {
		set.FormattingIssues = append(set.FormattingIssues, MissingSkills)
	}
	if sections[types.SectionWorkExperience] == "" {
		set.FormattingIssues = append(set.FormattingIssues, MissingExperience)
	}

	set.ContentIssues = append(set.ContentIssues, c.checkSummary(sections[types.SectionProfileSummary])...)
	set.ContentIssues = append(set.ContentIssues, c.checkEducation(sections[types.SectionEducation])...)
	if c.lacksQuantification(sections[types.SectionWorkExperience]) {
		set.ContentIssues = append(set.ContentIssues, LacksQuantification)
	}

	set.OutdatedTech = c.outdatedTech(rawText)
	return set
}

func (c *Compiler) checkSummary(summary string) []string {
	if summary == "" {
		return nil
	}

	var found []string
	var out []string
	for term, pattern := range c.buzzwords {
		if pattern.MatchString(summary) {
			found = append(found, term)
		}
	}
	if len(found) > 0 {
		sort.Strings(found)
		out = append(out, fmt.Sprintf(buzzwordsFormat, strings.Join(found, ", ")))
	}

	hasVerb := c.verbs != nil && c.verbs.MatchString(summary)
	if !containsDigit(summary) && !hasVerb {
		out = append(out, WeakValueProposition)
	}
	return out
}

func (c *Compiler) checkEducation(education string) []string {
	if education == "" {
		return []string{MissingEducation}
	}

	var out []string
	lower := strings.ToLower(education)
	hasTerm := false
	for _, term := range c.table.EducationTerms {
		if strings.Contains(lower, term) {
			hasTerm = true
			break
		}
	}
	if !hasTerm {
		out = append(out, MissingDegree)
	}
	if !graduationYear.MatchString(education) {
		out = append(out, MissingGradYear)
	}
	return out
}

// lacksQuantification reports whether fewer than the threshold share of
// substantial experience lines carry a number. Experience with no
// substantial lines counts as unquantified.
func (c *Compiler) lacksQuantification(experience string) bool {
	if experience == "" {
		return false
	}

	total, quantified := 0, 0
	for _, line := range strings.Split(experience, "\n") {
		line = strings.TrimSpace(line)
		if len([]rune(line)) <= c.table.Thresholds.MinLineLength {
			continue
		}
		total++
		if containsDigit(line) {
			quantified++
		}
	}
	if total == 0 {
		return true
	}
	return quantified*100 < c.table.Thresholds.QuantifiedPercent*total
}

func (c *Compiler) outdatedTech(rawText string) []string {
	found := []string{}
	if c.lemmatizer == nil || !c.lemmatizer.Loaded() || len(c.outdated) == 0 {
		return found
	}
	tokens, err := c.lemmatizer.Analyze(strings.ToLower(rawText))
	if err != nil {
		return found
	}
	for term := range nlp.LemmaTerms(tokens) {
		if _, ok := c.outdated[term]; ok {
			found = append(found, term)
		}
	}
	sort.Strings(found)
	return found
}

func containsDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}
