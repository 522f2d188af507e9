// Package rules holds the heuristic tables that drive section detection,
// issue compilation, scoring and domain inference. Tables are plain data so
// they can be versioned, loaded from a file and swapped at runtime.
package rules

import (
	"fmt"
	"slices"
	"strings"

	"resumescan/internal/types"
)

// Domain is a job family used when no job description is supplied.
type Domain struct {
	Name           string   `mapstructure:"name" json:"name"`
	Keywords       []string `mapstructure:"keywords" json:"keywords"`
	JobDescription string   `mapstructure:"jobDescription" json:"jobDescription"`
}

// GradeBand maps a minimum final score to a letter grade.
type GradeBand struct {
	Min   int    `mapstructure:"min" json:"min"`
	Grade string `mapstructure:"grade" json:"grade"`
}

// Scoring holds the weights of the scoring engine. Weights are percentages.
type Scoring struct {
	IssuePenalty    int         `mapstructure:"issuePenalty" json:"issuePenalty"`
	OutdatedPenalty int         `mapstructure:"outdatedPenalty" json:"outdatedPenalty"`
	QualityWeight   int         `mapstructure:"qualityWeight" json:"qualityWeight"`
	MatchWeight     int         `mapstructure:"matchWeight" json:"matchWeight"`
	Grades          []GradeBand `mapstructure:"grades" json:"grades"`
	FallbackGrade   string      `mapstructure:"fallbackGrade" json:"fallbackGrade"`
}

// Thresholds holds the numeric cut-offs of the issue compiler, the
// recommendation generator and domain inference.
type Thresholds struct {
	MinLineLength      int `mapstructure:"minLineLength" json:"minLineLength"`
	QuantifiedPercent  int `mapstructure:"quantifiedPercent" json:"quantifiedPercent"`
	JobFitTarget       int `mapstructure:"jobFitTarget" json:"jobFitTarget"`
	MaxMissingKeywords int `mapstructure:"maxMissingKeywords" json:"maxMissingKeywords"`
	DomainMinHits      int `mapstructure:"domainMinHits" json:"domainMinHits"`
}

// Table is one versioned rule set.
type Table struct {
	Version               string              `mapstructure:"version" json:"version"`
	Headings              map[string][]string `mapstructure:"headings" json:"headings"`
	Buzzwords             []string            `mapstructure:"buzzwords" json:"buzzwords"`
	ActionVerbs           []string            `mapstructure:"actionVerbs" json:"actionVerbs"`
	EducationTerms        []string            `mapstructure:"educationTerms" json:"educationTerms"`
	OutdatedTech          []string            `mapstructure:"outdatedTech" json:"outdatedTech"`
	Domains               []Domain            `mapstructure:"domains" json:"domains"`
	GenericJobDescription string              `mapstructure:"genericJobDescription" json:"genericJobDescription"`
	Scoring               Scoring             `mapstructure:"scoring" json:"scoring"`
	Thresholds            Thresholds          `mapstructure:"thresholds" json:"thresholds"`
}

// HeadingIndex maps every normalized heading variant to its section key.
func (t *Table) HeadingIndex() map[string]string {
	index := make(map[string]string)
	for section, variants := range t.Headings {
		for _, v := range variants {
			index[v] = section
		}
	}
	return index
}

// DomainNames returns the domain names in tie-break order.
func (t *Table) DomainNames() []string {
	names := make([]string, len(t.Domains))
	for i, d := range t.Domains {
		names[i] = d.Name
	}
	return names
}

// NormalizeHeading lowercases a heading line, drops colons and collapses
// whitespace runs to single spaces. Table variants and document lines go
// through the same transformation before they are compared.
func NormalizeHeading(line string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(strings.ToLower(line), ":", "")), " ")
}

// normalize lowercases and trims every keyword list and orders grade bands
// highest first. It mutates t.
func (t *Table) normalize() {
	for section, variants := range t.Headings {
		normalized := make([]string, len(variants))
		for i, v := range variants {
			normalized[i] = NormalizeHeading(v)
		}
		t.Headings[section] = normalized
	}
	t.Buzzwords = lowerAll(t.Buzzwords)
	t.ActionVerbs = lowerAll(t.ActionVerbs)
	t.EducationTerms = lowerAll(t.EducationTerms)
	t.OutdatedTech = lowerAll(t.OutdatedTech)
	for i := range t.Domains {
		t.Domains[i].Name = strings.TrimSpace(t.Domains[i].Name)
		t.Domains[i].Keywords = lowerAll(t.Domains[i].Keywords)
	}
	slices.SortStableFunc(t.Scoring.Grades, func(a, b GradeBand) int {
		return b.Min - a.Min
	})
}

// Validate checks the table for internal consistency.
func (t *Table) Validate() error {
	if strings.TrimSpace(t.Version) == "" {
		return fmt.Errorf("rules version is required")
	}

	seenHeading := make(map[string]string)
	for section, variants := range t.Headings {
		if !slices.Contains(types.SectionKeys, section) {
			return fmt.Errorf("unknown section %q in headings", section)
		}
		for _, v := range variants {
			if n := len(strings.Fields(v)); n < 1 || n > 4 {
				return fmt.Errorf("heading %q for %s must have 1 to 4 words", v, section)
			}
			if other, dup := seenHeading[v]; dup && other != section {
				return fmt.Errorf("heading %q is mapped to both %s and %s", v, other, section)
			}
			seenHeading[v] = section
		}
	}

	seenDomain := make(map[string]bool)
	for _, d := range t.Domains {
		if d.Name == "" {
			return fmt.Errorf("domain name is required")
		}
		if seenDomain[d.Name] {
			return fmt.Errorf("duplicate domain %q", d.Name)
		}
		seenDomain[d.Name] = true
		if strings.TrimSpace(d.JobDescription) == "" {
			return fmt.Errorf("domain %q has no job description", d.Name)
		}
	}
	if strings.TrimSpace(t.GenericJobDescription) == "" {
		return fmt.Errorf("generic job description is required")
	}

	s := t.Scoring
	if s.QualityWeight < 0 || s.MatchWeight < 0 || s.QualityWeight+s.MatchWeight != 100 {
		return fmt.Errorf("quality and match weights must be non-negative and sum to 100, got %d and %d",
			s.QualityWeight, s.MatchWeight)
	}
	if s.IssuePenalty < 0 || s.OutdatedPenalty < 0 {
		return fmt.Errorf("penalties must not be negative")
	}
	if s.FallbackGrade == "" {
		return fmt.Errorf("fallback grade is required")
	}

	th := t.Thresholds
	if th.QuantifiedPercent < 0 || th.QuantifiedPercent > 100 {
		return fmt.Errorf("quantifiedPercent must be within 0-100, got %d", th.QuantifiedPercent)
	}
	if th.JobFitTarget < 0 || th.JobFitTarget > 100 {
		return fmt.Errorf("jobFitTarget must be within 0-100, got %d", th.JobFitTarget)
	}
	if th.MinLineLength < 0 || th.MaxMissingKeywords < 0 || th.DomainMinHits < 0 {
		return fmt.Errorf("thresholds must not be negative")
	}

	return nil
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
