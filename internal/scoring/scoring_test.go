package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"resumescan/internal/rules"
	"resumescan/internal/types"
)

func issueSet(formatting, content, outdated int) types.IssueSet {
	set := types.IssueSet{}
	for i := 0; i < formatting; i++ {
		set.FormattingIssues = append(set.FormattingIssues, "f")
	}
	for i := 0; i < content; i++ {
		set.ContentIssues = append(set.ContentIssues, "c")
	}
	for i := 0; i < outdated; i++ {
		set.OutdatedTech = append(set.OutdatedTech, "o")
	}
	return set
}

func TestScore(t *testing.T) {
	s := rules.Default().Scoring

	tests := []struct {
		name      string
		issues    types.IssueSet
		jobFit    int
		wantScore int
		wantGrade string
	}{
		{"no issues and no fit", issueSet(0, 0, 0), 0, 40, "D"},
		{"perfect", issueSet(0, 0, 0), 100, 100, "A"},
		{"quality floors at zero", issueSet(6, 6, 3), 50, 30, "F"},
		{"mixed penalties", issueSet(1, 2, 1), 60, 62, "C"},
		{"outdated only", issueSet(0, 0, 2), 70, 78, "B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, grade := Score(tt.issues, tt.jobFit, s)
			assert.Equal(t, tt.wantScore, score)
			assert.Equal(t, tt.wantGrade, grade)
		})
	}
}

func TestQuality(t *testing.T) {
	s := rules.Default().Scoring
	assert.Equal(t, 100, Quality(issueSet(0, 0, 0), s))
	assert.Equal(t, 65, Quality(issueSet(2, 1, 1), s))
	assert.Equal(t, 0, Quality(issueSet(10, 5, 0), s))
}

func TestGradeBoundaries(t *testing.T) {
	s := rules.Default().Scoring
	tests := []struct {
		score int
		want  string
	}{
		{100, "A"}, {80, "A"}, {79, "B"}, {70, "B"}, {69, "C"},
		{60, "C"}, {59, "D"}, {40, "D"}, {39, "F"}, {0, "F"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Grade(tt.score, s), "score %d", tt.score)
	}
}

func TestFinalUsesConfiguredWeights(t *testing.T) {
	s := rules.Default().Scoring
	s.QualityWeight, s.MatchWeight = 50, 50
	assert.Equal(t, 75, Final(100, 50, s))
	// 0.5*33 + 0.5*0 = 16.5 rounds up
	assert.Equal(t, 17, Final(33, 0, s))
}
