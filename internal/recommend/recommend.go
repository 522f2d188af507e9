// Package recommend turns classified checks into actionable advice.
package recommend

import (
	"fmt"
	"strings"

	"resumescan/internal/rules"
	"resumescan/internal/types"
)

// Recommendation texts. The ** markers are emphasis for renderers that
// support it.
const (
	jobFitFormat = "**Improve Job Fit:** Your resume is missing key terms from the job description. " +
		"To better match the role, integrate these keywords: **%s**."
	SectionHeaders = "**Check Section Headers:** To ensure automated systems read your resume correctly, " +
		"use standard titles like **'Work Experience'** and **'Technical Skills'**."
	RewriteSummary = "**Rewrite Your Profile Summary:** Your summary may use generic phrases. " +
		"Create a stronger value proposition with powerful action verbs and achievements."
	Quantify = "**Quantify Your Achievements:** Your work experience lacks metrics. " +
		"Strengthen your bullet points by adding numbers, percentages (%), or dollar amounts ($)."
	UpdateStack = "**Update Your Technology Stack:** Your resume mentions potentially outdated technologies. " +
		"Prioritize highlighting modern tools relevant to the job."
	NoMajorIssues = "Your resume is strong and well-aligned. No major recommendations at this time."
)

// Generate returns the recommendations for checks in their fixed order.
// At least one recommendation is always returned.
func Generate(checks types.ClassifiedChecks, th rules.Thresholds) []string {
	var out []string

	fit := checks.JobFit
	if fit.Score < th.JobFitTarget && len(fit.MissingKeywords) > 0 {
		keywords := fit.MissingKeywords
		if len(keywords) > th.MaxMissingKeywords {
			keywords = keywords[:th.MaxMissingKeywords]
		}
		out = append(out, fmt.Sprintf(jobFitFormat, strings.Join(keywords, ", ")))
	}
	if anyContains(checks.FormattingATS.Issues, "section") {
		out = append(out, SectionHeaders)
	}
	if anyContains(checks.ContentImpact.Issues, "value proposition") {
		out = append(out, RewriteSummary)
	}
	if anyContains(checks.ContentImpact.Issues, "quantification") {
		out = append(out, Quantify)
	}
	if len(checks.TechFreshness.OutdatedTech) > 0 {
		out = append(out, UpdateStack)
	}

	if len(out) == 0 {
		return []string{NoMajorIssues}
	}
	return out
}

func anyContains(issues []string, fragment string) bool {
	for _, issue := range issues {
		if strings.Contains(issue, fragment) {
			return true
		}
	}
	return false
}
