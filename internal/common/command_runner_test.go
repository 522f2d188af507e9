package common

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"resumescan/internal/ai"
	"resumescan/internal/config"
	"resumescan/internal/errors"
	"resumescan/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Workers: 2},
		Extract: config.ExtractConfig{
			MinTextChars: 150,
			OCR:          config.OCRConfig{Enabled: false, DPI: 300},
		},
		Summarizer: config.SummarizerConfig{Provider: config.ProviderNone},
	}
}

// writeDocx writes a minimal DOCX with one paragraph per line.
func writeDocx(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	var body strings.Builder
	for _, line := range lines {
		body.WriteString("<w:p><w:r><w:t>" + line + "</w:t></w:r></w:p>")
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`,
		"_rels/.rels": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
			body.String() + `</w:body></w:document>`,
	}
	for fileName, content := range files {
		w, err := zw.Create(fileName)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0600))
	return path
}

func sampleResume(t *testing.T, dir, name string) string {
	return writeDocx(t, dir, name,
		"Jane Doe",
		"Summary",
		"Backend engineer building payment services in Go.",
		"Experience",
		"Led a team of five and reduced latency by 40%.",
		"Education",
		"BSc Computer Science",
		"Skills",
		"Go, PostgreSQL, Kubernetes",
	)
}

func newTestRuntime(t *testing.T) *Runtime {
	t.Helper()
	rt, err := NewRuntime(testConfig(), errors.Discard(), nil)
	require.NoError(t, err)
	t.Cleanup(rt.Close)
	return rt
}

func TestNewRuntime(t *testing.T) {
	rt := newTestRuntime(t)

	assert.NotNil(t, rt.Analyzer)
	assert.NotEmpty(t, rt.Analyzer.RulesVersion())
	assert.False(t, rt.Summaries.Available())
	assert.Nil(t, rt.RulesWatcher)

	// watching is off, so this must not create a watcher
	require.NoError(t, rt.StartRulesWatcher())
	assert.Nil(t, rt.RulesWatcher)
}

func TestNewRuntimeBadRulesFile(t *testing.T) {
	cfg := testConfig()
	cfg.Rules.File = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := NewRuntime(cfg, errors.Discard(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, &errors.AppError{Code: errors.ErrCodeInvalidRules}))
}

func TestStartRulesWatcher(t *testing.T) {
	dir := t.TempDir()
	rulesFile := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(rulesFile, []byte("version: watched\n"), 0600))

	cfg := testConfig()
	cfg.Rules.File = rulesFile
	cfg.Rules.Watch = true

	rt, err := NewRuntime(cfg, errors.Discard(), nil)
	require.NoError(t, err)
	defer rt.Close()

	assert.Equal(t, "watched", rt.Analyzer.RulesVersion())
	require.NoError(t, rt.StartRulesWatcher())
	require.NotNil(t, rt.RulesWatcher)
	assert.True(t, rt.RulesWatcher.IsRunning())
}

func TestRunAnalyzeCommandSingle(t *testing.T) {
	dir := t.TempDir()
	resume := sampleResume(t, dir, "jane.docx")
	out := filepath.Join(dir, "out", "report.json")

	rt := newTestRuntime(t)
	err := RunAnalyzeCommand(context.Background(), rt, AnalyzeOptions{
		Output:             CommandConfig{OutputFile: out, OutputFormat: "json"},
		JobDescriptionFile: filepath.Join(dir, "missing-jd.txt"),
	}, []string{resume})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var report types.Report
	require.NoError(t, json.Unmarshal(data, &report))
	assert.NotEmpty(t, report.Grade)
	assert.Equal(t, ai.SummaryUnavailable, report.Summary)
	assert.Equal(t, rt.Analyzer.RulesVersion(), report.RulesVersion)
}

func TestRunAnalyzeCommandBatch(t *testing.T) {
	dir := t.TempDir()
	good := sampleResume(t, dir, "good.docx")
	broken := filepath.Join(dir, "broken.pdf")
	require.NoError(t, os.WriteFile(broken, []byte("not a pdf"), 0600))
	out := filepath.Join(dir, "batch.json")

	rt := newTestRuntime(t)
	err := RunAnalyzeCommand(context.Background(), rt, AnalyzeOptions{
		Output:  CommandConfig{OutputFile: out, OutputFormat: "json"},
		Workers: 2,
	}, []string{good, broken})
	require.NoError(t, err, "a partly failed batch still succeeds")

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var batch types.BatchReport
	require.NoError(t, json.Unmarshal(data, &batch))
	require.Len(t, batch.Items, 2)
	assert.Equal(t, good, batch.Items[0].File)
	assert.NotNil(t, batch.Items[0].Report)
	assert.Equal(t, broken, batch.Items[1].File)
	assert.Equal(t, "Failed to extract text. File may be corrupted or an unsupported format.", batch.Items[1].Error)
}

func TestRunAnalyzeCommandRejectsInput(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "resume.txt")
	require.NoError(t, os.WriteFile(txt, []byte("plain"), 0600))

	rt := newTestRuntime(t)
	opts := AnalyzeOptions{Output: CommandConfig{OutputFormat: "json"}}

	err := RunAnalyzeCommand(context.Background(), rt, opts, []string{txt})
	assert.True(t, errors.Is(err, errors.ErrUnsupportedFormat))

	err = RunAnalyzeCommand(context.Background(), rt, opts, []string{filepath.Join(dir, "absent.pdf")})
	assert.Error(t, err)

	err = RunAnalyzeCommand(context.Background(), rt, opts, nil)
	assert.Error(t, err)
}

func TestBatchError(t *testing.T) {
	assert.NoError(t, batchError(types.BatchReport{}))
	assert.NoError(t, batchError(types.BatchReport{Items: []types.BatchItem{
		{File: "a.pdf", Report: &types.Report{}},
		{File: "b.pdf", Error: "boom"},
	}}))
	assert.Error(t, batchError(types.BatchReport{Items: []types.BatchItem{
		{File: "a.pdf", Error: "boom"},
		{File: "b.pdf", Error: "boom"},
	}}))
}

func TestReadJobDescription(t *testing.T) {
	dir := t.TempDir()
	jd := filepath.Join(dir, "jd.txt")
	require.NoError(t, os.WriteFile(jd, []byte("Senior Go engineer"), 0600))

	fp := NewFileProcessor(nil)
	assert.Equal(t, "Senior Go engineer", fp.ReadJobDescription(jd))
	assert.Equal(t, "", fp.ReadJobDescription(filepath.Join(dir, "nope.txt")))
	assert.Equal(t, "", fp.ReadJobDescription(""))
}

func TestOutputHandlerWritesToWriter(t *testing.T) {
	var buf bytes.Buffer
	oh := NewOutputHandlerTo(&buf, nil)

	report := &types.Report{OverallScore: 91, Grade: "A"}
	require.NoError(t, oh.HandleOutput(report, CommandConfig{OutputFormat: "text"}))
	assert.Contains(t, buf.String(), "Overall Score: 91/100 (Grade: A)")

	err := oh.HandleOutput(report, CommandConfig{OutputFormat: "xml"})
	assert.True(t, errors.Is(err, &errors.AppError{Code: errors.ErrCodeInvalidFormat}))
}
