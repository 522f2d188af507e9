// Package scoring folds issue counts and job fit into a final score and
// letter grade.
package scoring

import (
	"resumescan/internal/rules"
	"resumescan/internal/types"
)

// Quality is the resume quality score before job fit is considered.
func Quality(issues types.IssueSet, s rules.Scoring) int {
	failures := len(issues.FormattingIssues) + len(issues.ContentIssues)
	q := 100 - s.IssuePenalty*failures - s.OutdatedPenalty*len(issues.OutdatedTech)
	return max(0, q)
}

// Final blends quality and job fit by the configured weights, rounding to
// the nearest integer.
func Final(quality, jobFit int, s rules.Scoring) int {
	weighted := s.QualityWeight*quality + s.MatchWeight*jobFit
	return min(100, max(0, (weighted+50)/100))
}

// Grade maps a final score to the first band whose minimum it reaches.
// Bands are ordered highest first.
func Grade(final int, s rules.Scoring) string {
	for _, band := range s.Grades {
		if final >= band.Min {
			return band.Grade
		}
	}
	return s.FallbackGrade
}

// Score returns the final score and grade for an issue set and job fit.
func Score(issues types.IssueSet, jobFit int, s rules.Scoring) (int, string) {
	final := Final(Quality(issues, s), jobFit, s)
	return final, Grade(final, s)
}
