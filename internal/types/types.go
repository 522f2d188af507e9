package types

// Format is the detected document format of a resume.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// Document is a resume file scheduled for extraction.
type Document struct {
	Path   string
	Format Format
}

// RawText is the normalized output of extraction.
type RawText struct {
	Text          string
	GraphicsHeavy bool
}

// Section keys. The set is fixed and exhaustive.
const (
	SectionProfileSummary = "profile_summary"
	SectionWorkExperience = "work_experience"
	SectionEducation      = "education"
	SectionSkills         = "skills"
)

// SectionKeys lists every section key in report order.
var SectionKeys = []string{
	SectionProfileSummary,
	SectionWorkExperience,
	SectionEducation,
	SectionSkills,
}

// SectionMap holds the text found under each section heading. Every key in
// SectionKeys is present; values may be empty.
type SectionMap map[string]string

// MatchResult is the lexical overlap between a resume and a job description.
type MatchResult struct {
	Score           int      `json:"score"`
	MissingKeywords []string `json:"missing_keywords"`
	OverlapKeywords []string `json:"overlap_keywords"`
}

// IssueSet collects the findings of the issue compiler.
type IssueSet struct {
	FormattingIssues []string
	ContentIssues    []string
	OutdatedTech     []string
}

// IssueCategory is a report category holding free-form issues.
type IssueCategory struct {
	Issues []string `json:"issues"`
}

// TechFreshness is the report category for outdated technology mentions.
type TechFreshness struct {
	OutdatedTech []string `json:"outdated_tech"`
}

// ClassifiedChecks groups findings into the four report categories.
type ClassifiedChecks struct {
	FormattingATS IssueCategory `json:"Formatting & ATS"`
	ContentImpact IssueCategory `json:"Content & Impact"`
	JobFit        MatchResult   `json:"Job Fit"`
	TechFreshness TechFreshness `json:"Technology Freshness"`
}

// Report is the final output of one analysis.
type Report struct {
	OverallScore    int              `json:"overall_score"`
	Grade           string           `json:"resume_grade"`
	Summary         string           `json:"ai_generated_summary"`
	Checks          ClassifiedChecks `json:"classified_checks"`
	Recommendations []string         `json:"personalized_recommendations"`

	InferredDomain string `json:"inferred_domain,omitempty"`
	GraphicsHeavy  bool   `json:"graphics_heavy,omitempty"`
	RulesVersion   string `json:"rules_version,omitempty"`
}

// BatchItem is the outcome for one file of a batch run.
type BatchItem struct {
	File   string  `json:"file"`
	Report *Report `json:"report,omitempty"`
	Error  string  `json:"error,omitempty"`
	Code   string  `json:"error_code,omitempty"`
}

// BatchReport is the ordered outcome of a batch run.
type BatchReport struct {
	Items []BatchItem `json:"items"`
}
