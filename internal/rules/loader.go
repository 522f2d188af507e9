package rules

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"resumescan/internal/errors"
)

// LoadFile reads a rule table from path. The format follows the file
// extension (yaml, yml, json or toml). Fields the file leaves out keep their
// built-in values, so a file may override just one list.
func LoadFile(path string) (*Table, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotFound, "rules file not accessible", err).
			WithContext("file", path)
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidRules, "failed to parse rules file", err).
			WithContext("file", path)
	}

	var loaded Table
	if err := v.Unmarshal(&loaded); err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidRules, "failed to decode rules file", err).
			WithContext("file", path)
	}

	table := mergeOnto(Default(), &loaded)
	table.normalize()
	if err := table.Validate(); err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidRules, "rules file is invalid", err).
			WithContext("file", path)
	}
	return table, nil
}

// Load returns the built-in table when path is empty, otherwise the table
// read from path.
func Load(path string) (*Table, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// mergeOnto copies every field set in override onto base. Zero values count
// as unset.
func mergeOnto(base, override *Table) *Table {
	if override.Version != "" {
		base.Version = override.Version
	}
	if len(override.Headings) > 0 {
		for section, variants := range override.Headings {
			base.Headings[section] = variants
		}
	}
	if len(override.Buzzwords) > 0 {
		base.Buzzwords = override.Buzzwords
	}
	if len(override.ActionVerbs) > 0 {
		base.ActionVerbs = override.ActionVerbs
	}
	if len(override.EducationTerms) > 0 {
		base.EducationTerms = override.EducationTerms
	}
	if len(override.OutdatedTech) > 0 {
		base.OutdatedTech = override.OutdatedTech
	}
	if len(override.Domains) > 0 {
		base.Domains = override.Domains
	}
	if override.GenericJobDescription != "" {
		base.GenericJobDescription = override.GenericJobDescription
	}

	s := override.Scoring
	if s.IssuePenalty != 0 {
		base.Scoring.IssuePenalty = s.IssuePenalty
	}
	if s.OutdatedPenalty != 0 {
		base.Scoring.OutdatedPenalty = s.OutdatedPenalty
	}
	// weights travel as a pair so a partial override cannot break the sum
	if s.QualityWeight != 0 || s.MatchWeight != 0 {
		base.Scoring.QualityWeight = s.QualityWeight
		base.Scoring.MatchWeight = s.MatchWeight
	}
	if len(s.Grades) > 0 {
		base.Scoring.Grades = s.Grades
	}
	if s.FallbackGrade != "" {
		base.Scoring.FallbackGrade = s.FallbackGrade
	}

	th := override.Thresholds
	if th.MinLineLength != 0 {
		base.Thresholds.MinLineLength = th.MinLineLength
	}
	if th.QuantifiedPercent != 0 {
		base.Thresholds.QuantifiedPercent = th.QuantifiedPercent
	}
	if th.JobFitTarget != 0 {
		base.Thresholds.JobFitTarget = th.JobFitTarget
	}
	if th.MaxMissingKeywords != 0 {
		base.Thresholds.MaxMissingKeywords = th.MaxMissingKeywords
	}
	if th.DomainMinHits != 0 {
		base.Thresholds.DomainMinHits = th.DomainMinHits
	}

	return base
}

// Describe renders a one-line summary of the table for logs and the CLI.
func (t *Table) Describe() string {
	headings := 0
	for _, v := range t.Headings {
		headings += len(v)
	}
	return fmt.Sprintf("version=%s headings=%d buzzwords=%d verbs=%d outdated=%d domains=%d",
		t.Version, headings, len(t.Buzzwords), len(t.ActionVerbs), len(t.OutdatedTech), len(t.Domains))
}
