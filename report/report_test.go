package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valence-dev/valence/models"
)

func sampleResults() []models.ValidationResult {
	return []models.ValidationResult{
		{
			Validator: "V1",
			Passed:    true,
			Message:   "All checks passed",
		},
		{
			Validator: "V2",
			Passed:    false,
			Message:   "Some checks failed",
			Violations: []models.Violation{
				{Rule: "mustContain", FilePath: "a.ts", Line: 3, Message: "missing marker", Severity: models.SeverityError, Confidence: 0.95},
			},
			LowConfidenceViolations: []models.Violation{
				{Rule: "mustContain", FilePath: "b.ts", Line: 5, Message: "maybe missing", Severity: models.SeverityWarning, Confidence: 0.5},
			},
		},
	}
}

func TestNewRun_ComputesStatsOnce(t *testing.T) {
	run := NewRun(sampleResults(), Options{ConfidenceThreshold: 0.8, TotalFilesAnalyzed: 2}, "2026-01-01T00:00:00Z")
	assert.Equal(t, 1, run.Stats.Passed)
	assert.Equal(t, 1, run.Stats.Failed)
	assert.Equal(t, 2, run.Stats.TotalViolations)
	assert.Equal(t, 1, run.Stats.LowConfidenceCount)
}

func TestNewRun_ConfidenceBucketsOverActiveSet(t *testing.T) {
	results := []models.ValidationResult{
		{Validator: "V", Violations: []models.Violation{
			{Rule: "r", Confidence: 0.95},
			{Rule: "r", Confidence: 0.8},
			{Rule: "r", Confidence: 0.5},
		}},
	}
	run := NewRun(results, Options{}, "now")
	assert.Equal(t, 1, run.ConfidenceBuckets.High.Count)
	assert.Equal(t, 1, run.ConfidenceBuckets.Medium.Count)
	assert.Equal(t, 1, run.ConfidenceBuckets.Low.Count)
}

func TestWriteJSON_IsDeterministic(t *testing.T) {
	run := NewRun(sampleResults(), Options{ConfidenceThreshold: 0.8}, "2026-01-01T00:00:00Z")
	dir := t.TempDir()
	path := filepath.Join(dir, "report.json")

	require.NoError(t, WriteJSON(path, run))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, WriteJSON(path, run))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	var decoded Run
	require.NoError(t, json.Unmarshal(first, &decoded))
	assert.Equal(t, run.Stats, decoded.Stats)
}

func TestWriteMarkdown_ListsViolations(t *testing.T) {
	run := NewRun(sampleResults(), Options{ConfidenceThreshold: 0.8, ShowLowConfidence: true}, "2026-01-01T00:00:00Z")
	path := filepath.Join(t.TempDir(), "report.md")
	require.NoError(t, WriteMarkdown(path, run))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "V2")
	assert.Contains(t, content, "missing marker")
	assert.Contains(t, content, "maybe missing")
}

func TestWriteHTML_IsSelfContained(t *testing.T) {
	run := NewRun(sampleResults(), Options{ConfidenceThreshold: 0.8}, "2026-01-01T00:00:00Z")
	path := filepath.Join(t.TempDir(), "report.html")
	require.NoError(t, WriteHTML(path, run))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "<style>")
	assert.Contains(t, content, "Confidence bucket analysis")
	assert.NotContains(t, content, "<script")
}

func TestGenerate_WritesAllThreeFiles(t *testing.T) {
	run := NewRun(sampleResults(), Options{ConfidenceThreshold: 0.8}, "2026-01-01T00:00:00Z")
	dir := t.TempDir()
	require.NoError(t, Generate(dir, run))

	assert.FileExists(t, filepath.Join(dir, "validation-report.json"))
	assert.FileExists(t, filepath.Join(dir, "validation-report.md"))
	assert.FileExists(t, filepath.Join(dir, "validation-report.html"))
}

func TestPrintTree_RendersFailingValidator(t *testing.T) {
	run := NewRun(sampleResults(), Options{ConfidenceThreshold: 0.8}, "2026-01-01T00:00:00Z")
	var buf bytes.Buffer
	PrintTree(&buf, run)
	assert.Contains(t, buf.String(), "V2")
	assert.Contains(t, buf.String(), "a.ts")
}
