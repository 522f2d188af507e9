package issues

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"resumescan/internal/nlp"
	"resumescan/internal/rules"
	"resumescan/internal/types"
)

func sectionsWith(kv map[string]string) types.SectionMap {
	m := types.SectionMap{}
	for _, k := range types.SectionKeys {
		m[k] = kv[k]
	}
	return m
}

func newCompiler() *Compiler {
	return New(rules.Default(), nlp.NewStaticPipeline(nil))
}

func TestCompileNoSections(t *testing.T) {
	got := newCompiler().Compile(sectionsWith(nil), "Jane Doe")

	assert.Equal(t, []string{MissingSkills, MissingExperience}, got.FormattingIssues)
	assert.Equal(t, []string{MissingEducation}, got.ContentIssues)
	assert.Empty(t, got.OutdatedTech)
}

func TestCompileSummaryChecks(t *testing.T) {
	tests := []struct {
		name    string
		summary string
		want    []string
	}{
		{
			name:    "buzzwords sorted including multi word",
			summary: "A dynamic team player and Synergy lover who increased revenue",
			want:    []string{"Profile summary uses buzzwords: dynamic, synergy, team player."},
		},
		{
			name:    "no digit and no action verb",
			summary: "Friendly engineer who likes code",
			want:    []string{WeakValueProposition},
		},
		{
			name:    "digit is enough",
			summary: "Engineer with 8 years in payments",
			want:    nil,
		},
		{
			name:    "verb must be a whole word",
			summary: "Engineer misled by nothing, a ledger expert",
			want:    []string{WeakValueProposition},
		},
		{
			name:    "action verb is enough",
			summary: "Engineer who Launched three products",
			want:    nil,
		},
		{
			name:    "buzzword and weak value",
			summary: "Proactive self-starter",
			want:    []string{"Profile summary uses buzzwords: proactive, self-starter.", WeakValueProposition},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newCompiler().Compile(sectionsWith(map[string]string{
				types.SectionProfileSummary: tt.summary,
				types.SectionEducation:      "BSc, State University, 2012",
			}), tt.summary)

			if tt.want == nil {
				assert.Empty(t, got.ContentIssues)
			} else {
				assert.Equal(t, tt.want, got.ContentIssues)
			}
		})
	}
}

func TestCompileEducation(t *testing.T) {
	tests := []struct {
		name      string
		education string
		want      []string
	}{
		{"complete", "Master of Science, 2019", nil},
		{"no term", "Lots of learning in 2019", []string{MissingDegree}},
		{"no year", "Bachelor of Arts", []string{MissingGradYear}},
		{"year must be a whole number", "College 20190", []string{MissingGradYear}},
		{"neither", "Self taught", []string{MissingDegree, MissingGradYear}},
		{"abbreviation", "Ph.D. in Physics 1998", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newCompiler().Compile(sectionsWith(map[string]string{
				types.SectionEducation: tt.education,
			}), tt.education)
			if tt.want == nil {
				assert.Empty(t, got.ContentIssues)
			} else {
				assert.Equal(t, tt.want, got.ContentIssues)
			}
		})
	}
}

func TestCompileQuantification(t *testing.T) {
	tests := []struct {
		name       string
		experience string
		flagged    bool
	}{
		{
			name:       "exactly thirty percent passes",
			experience: "Grew revenue by 40 percent\nMentored the backend engineers\nOwned the billing platform\nRan the weekly incident review\nMigrated services to containers\nDesigned the public REST API\nCut infrastructure cost by 12k\nWrote the onboarding handbook\nLed 3 cross team projects\nImproved the deploy pipeline",
			flagged:    false,
		},
		{
			name:       "below thirty percent",
			experience: "Grew revenue by 40 percent\nMentored the backend engineers\nOwned the billing platform\nRan the weekly incident review",
			flagged:    true,
		},
		{
			name:       "only short lines",
			experience: "Acme Corp\n2019-2021\nEngineer",
			flagged:    true,
		},
		{
			name:       "short lines are ignored",
			experience: "Acme Corp\nEngineer\nShipped 5 major releases on time",
			flagged:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newCompiler().Compile(sectionsWith(map[string]string{
				types.SectionWorkExperience: tt.experience,
				types.SectionEducation:      "University, 2010",
				types.SectionSkills:         "Go",
			}), tt.experience)
			if tt.flagged {
				assert.Equal(t, []string{LacksQuantification}, got.ContentIssues)
			} else {
				assert.Empty(t, got.ContentIssues)
			}
			assert.Empty(t, got.FormattingIssues)
		})
	}
}

func TestCompileOutdatedTech(t *testing.T) {
	raw := "Built SOAP services with jQuery and Visual Basic. Migrated from SVN to git."
	got := newCompiler().Compile(sectionsWith(nil), raw)
	assert.Equal(t, []string{"jquery", "soap", "svn", "visual basic"}, got.OutdatedTech)
}

func TestCompileOutdatedTechWithoutLemmatizer(t *testing.T) {
	c := New(rules.Default(), nlp.Unavailable{})
	got := c.Compile(sectionsWith(nil), "jQuery and Flash")
	assert.NotNil(t, got.OutdatedTech)
	assert.Empty(t, got.OutdatedTech)
}
