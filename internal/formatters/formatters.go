package formatters

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"resumescan/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "Report", &ReportTextFormatter{})
	registry.RegisterFormatter("markdown", "Report", &ReportMarkdownFormatter{})
	registry.RegisterFormatter("text", "BatchReport", &BatchTextFormatter{})
	registry.RegisterFormatter("markdown", "BatchReport", &BatchMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.Report, *types.Report:
		return "Report"
	case types.BatchReport, *types.BatchReport:
		return "BatchReport"
	default:
		return "any"
	}
}

func asReport(data any) (*types.Report, error) {
	switch r := data.(type) {
	case types.Report:
		return &r, nil
	case *types.Report:
		if r == nil {
			return nil, fmt.Errorf("expected Report, got nil")
		}
		return r, nil
	default:
		return nil, fmt.Errorf("expected Report, got %T", data)
	}
}

func asBatch(data any) (*types.BatchReport, error) {
	switch b := data.(type) {
	case types.BatchReport:
		return &b, nil
	case *types.BatchReport:
		if b == nil {
			return nil, fmt.Errorf("expected BatchReport, got nil")
		}
		return b, nil
	default:
		return nil, fmt.Errorf("expected BatchReport, got %T", data)
	}
}

// JSONFormatter handles JSON formatting for any data type. Category names
// such as "Formatting & ATS" are written without HTML escaping.
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// category is one block of the detailed issue listing.
type category struct {
	name   string
	issues []string
}

// detailedIssues lists the report categories that carry findings, in
// report order. Job Fit has no free-form issues and never appears.
func detailedIssues(r *types.Report) []category {
	var out []category
	if len(r.Checks.FormattingATS.Issues) > 0 {
		out = append(out, category{"Formatting & ATS", r.Checks.FormattingATS.Issues})
	}
	if len(r.Checks.ContentImpact.Issues) > 0 {
		out = append(out, category{"Content & Impact", r.Checks.ContentImpact.Issues})
	}
	if len(r.Checks.TechFreshness.OutdatedTech) > 0 {
		out = append(out, category{"Technology Freshness", []string{
			"Mentions outdated tech: " + strings.Join(r.Checks.TechFreshness.OutdatedTech, ", "),
		}})
	}
	return out
}

// plain strips the emphasis markers used in recommendation texts.
func plain(s string) string {
	return strings.ReplaceAll(s, "*", "")
}

// ReportTextFormatter renders a report for terminals
type ReportTextFormatter struct{}

func (rtf *ReportTextFormatter) Format(data any) (string, error) {
	report, err := asReport(data)
	if err != nil {
		return "", err
	}
	var output strings.Builder
	writeReportText(&output, report)
	return output.String(), nil
}

func writeReportText(output *strings.Builder, r *types.Report) {
	output.WriteString("=== RESUME ANALYSIS ===\n\n")
	output.WriteString(fmt.Sprintf("Overall Score: %d/100 (Grade: %s)\n", r.OverallScore, r.Grade))
	output.WriteString(fmt.Sprintf("Job Fit: %d%%\n", r.Checks.JobFit.Score))
	if r.InferredDomain != "" {
		output.WriteString(fmt.Sprintf("Compared against the default '%s' profile\n", r.InferredDomain))
	}
	output.WriteString("\nSummary:\n")
	output.WriteString(r.Summary)
	output.WriteString("\n\n")

	output.WriteString("=== PERSONALIZED ACTION PLAN ===\n")
	for _, rec := range r.Recommendations {
		output.WriteString(fmt.Sprintf("- %s\n", plain(rec)))
	}
	output.WriteString("\n")

	output.WriteString("=== DETAILED ISSUES FOUND ===\n")
	categories := detailedIssues(r)
	if len(categories) == 0 {
		output.WriteString("No issues found.\n")
	}
	for _, c := range categories {
		output.WriteString(fmt.Sprintf("[%s]\n", c.name))
		for _, issue := range c.issues {
			output.WriteString(fmt.Sprintf("  - %s\n", issue))
		}
	}
}

func (rtf *ReportTextFormatter) SupportedType() string {
	return "Report"
}

// ReportMarkdownFormatter renders a report as markdown, keeping emphasis
type ReportMarkdownFormatter struct{}

func (rmf *ReportMarkdownFormatter) Format(data any) (string, error) {
	report, err := asReport(data)
	if err != nil {
		return "", err
	}
	var output strings.Builder
	writeReportMarkdown(&output, report, "#")
	return output.String(), nil
}

// writeReportMarkdown writes r with its title at heading level h.
func writeReportMarkdown(output *strings.Builder, r *types.Report, h string) {
	output.WriteString(h + " Resume Analysis\n\n")
	output.WriteString(fmt.Sprintf("**Overall Score:** %d/100 (Grade: **%s**)\n\n", r.OverallScore, r.Grade))
	output.WriteString(fmt.Sprintf("**Job Fit:** %d%%\n\n", r.Checks.JobFit.Score))
	if r.InferredDomain != "" {
		output.WriteString(fmt.Sprintf("_Compared against the default '%s' profile._\n\n", r.InferredDomain))
	}

	output.WriteString(h + "# Summary\n\n")
	output.WriteString(r.Summary)
	output.WriteString("\n\n")

	output.WriteString(h + "# Personalized Action Plan\n\n")
	for i, rec := range r.Recommendations {
		output.WriteString(fmt.Sprintf("%d. %s\n", i+1, rec))
	}
	output.WriteString("\n")

	output.WriteString(h + "# Detailed Issues\n\n")
	categories := detailedIssues(r)
	if len(categories) == 0 {
		output.WriteString("No issues found.\n")
	}
	for _, c := range categories {
		output.WriteString(fmt.Sprintf("%s## %s\n\n", h, c.name))
		for _, issue := range c.issues {
			output.WriteString(fmt.Sprintf("- %s\n", issue))
		}
		output.WriteString("\n")
	}

	if missing := r.Checks.JobFit.MissingKeywords; len(missing) > 0 {
		output.WriteString(h + "# Missing Keywords\n\n")
		output.WriteString(strings.Join(missing, ", "))
		output.WriteString("\n")
	}
}

func (rmf *ReportMarkdownFormatter) SupportedType() string {
	return "Report"
}

// BatchTextFormatter renders every item of a batch run
type BatchTextFormatter struct{}

func (btf *BatchTextFormatter) Format(data any) (string, error) {
	batch, err := asBatch(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder
	for i, item := range batch.Items {
		if i > 0 {
			output.WriteString("\n")
		}
		output.WriteString(fmt.Sprintf("##### %s #####\n", item.File))
		if item.Report == nil {
			output.WriteString(fmt.Sprintf("Error: %s\n", item.Error))
			continue
		}
		writeReportText(&output, item.Report)
	}
	return output.String(), nil
}

func (btf *BatchTextFormatter) SupportedType() string {
	return "BatchReport"
}

// BatchMarkdownFormatter renders a batch run as one markdown document
type BatchMarkdownFormatter struct{}

func (bmf *BatchMarkdownFormatter) Format(data any) (string, error) {
	batch, err := asBatch(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder
	output.WriteString("# Resume Analyses\n\n")
	for _, item := range batch.Items {
		output.WriteString(fmt.Sprintf("## %s\n\n", item.File))
		if item.Report == nil {
			output.WriteString(fmt.Sprintf("**Error:** %s\n\n", item.Error))
			continue
		}
		writeReportMarkdown(&output, item.Report, "###")
		output.WriteString("\n")
	}
	return output.String(), nil
}

func (bmf *BatchMarkdownFormatter) SupportedType() string {
	return "BatchReport"
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
