// Package report turns a set of merged ValidationResults into the
// engine's three required artifacts: a canonical JSON document, a
// human-readable markdown document, and a self-contained styled HTML
// document, following the same per-format-function shape as the
// teacher's output.OutputManager (one method per output kind, fed the
// same result set).
package report

import (
	"encoding/json"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/valence-dev/valence/models"
)

// Options controls what a report includes, per the engine's report
// request shape.
type Options struct {
	ConfidenceThreshold float64
	IncludeCodeSnippets bool
	ShowLowConfidence   bool
	TotalFilesAnalyzed  int
}

// Stats are computed once over a result set and reused by every output
// format, so "passed"/"failed"/"totalViolations"/"lowConfidenceCount"
// never disagree between documents.
type Stats struct {
	Passed             int `json:"passed"`
	Failed             int `json:"failed"`
	TotalViolations    int `json:"totalViolations"`
	LowConfidenceCount int `json:"lowConfidenceCount"`
}

// ConfidenceBucket is one band of the confidence-bucket analysis: a
// count plus its percentage of the active-violation set.
type ConfidenceBucket struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// ConfidenceBuckets classifies active violations as high (>=0.9),
// medium (0.7-0.9), or low (<0.7) confidence.
type ConfidenceBuckets struct {
	High   ConfidenceBucket `json:"high"`
	Medium ConfidenceBucket `json:"medium"`
	Low    ConfidenceBucket `json:"low"`
}

// Run is the full input to report generation: every validator's merged
// result plus the options and timestamp every output format shares.
type Run struct {
	GeneratedAt       string                   `json:"generatedAt"`
	Options           Options                  `json:"options"`
	Stats             Stats                    `json:"stats"`
	ConfidenceBuckets ConfidenceBuckets         `json:"confidenceBuckets"`
	Results           []models.ValidationResult `json:"results"`
}

// NewRun computes Stats and ConfidenceBuckets once over results and
// returns the assembled Run, stamped with generatedAt (an RFC3339 UTC
// timestamp supplied by the caller so every output format agrees).
func NewRun(results []models.ValidationResult, opts Options, generatedAt string) Run {
	stats := Stats{}
	var active []models.Violation

	for _, r := range results {
		if r.Passed {
			stats.Passed++
		} else {
			stats.Failed++
		}
		stats.TotalViolations += r.RawViolationCount()
		stats.LowConfidenceCount += len(r.LowConfidenceViolations)
		active = append(active, r.Violations...)
	}

	return Run{
		GeneratedAt:       generatedAt,
		Options:           opts,
		Stats:             stats,
		ConfidenceBuckets: confidenceBuckets(active),
		Results:           results,
	}
}

func confidenceBuckets(violations []models.Violation) ConfidenceBuckets {
	total := len(violations)
	high := lo.CountBy(violations, func(v models.Violation) bool { return v.Confidence >= 0.9 })
	low := lo.CountBy(violations, func(v models.Violation) bool { return v.Confidence < 0.7 })
	medium := total - high - low

	pct := func(n int) float64 {
		if total == 0 {
			return 0
		}
		return float64(n) / float64(total) * 100
	}

	return ConfidenceBuckets{
		High:   ConfidenceBucket{Count: high, Percentage: pct(high)},
		Medium: ConfidenceBucket{Count: medium, Percentage: pct(medium)},
		Low:    ConfidenceBucket{Count: low, Percentage: pct(low)},
	}
}

// Generate writes all three required artifacts under dir, creating it
// if necessary. Filenames are fixed; repeated runs overwrite (last
// writer wins).
func Generate(dir string, run Run) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	if err := WriteJSON(filepath.Join(dir, "validation-report.json"), run); err != nil {
		return err
	}
	if err := WriteMarkdown(filepath.Join(dir, "validation-report.md"), run); err != nil {
		return err
	}
	if err := WriteHTML(filepath.Join(dir, "validation-report.html"), run); err != nil {
		return err
	}
	return nil
}

// WriteJSON writes the canonical, pretty-printed structured report.
// Identical input produces byte-identical output.
func WriteJSON(path string, run Run) error {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding structured report: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// WriteMarkdown writes the human-readable report: passed/failed
// validators and per-violation detail lines.
func WriteMarkdown(path string, run Run) error {
	var b strings.Builder

	fmt.Fprintln(&b, "# Valence Validation Report")
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "Generated at %s\n\n", run.GeneratedAt)
	fmt.Fprintln(&b, "## Summary")
	fmt.Fprintf(&b, "- **Files analyzed:** %d\n", run.Options.TotalFilesAnalyzed)
	fmt.Fprintf(&b, "- **Validators passed:** %d\n", run.Stats.Passed)
	fmt.Fprintf(&b, "- **Validators failed:** %d\n", run.Stats.Failed)
	fmt.Fprintf(&b, "- **Total violations:** %d\n", run.Stats.TotalViolations)
	fmt.Fprintf(&b, "- **Low-confidence violations:** %d\n\n", run.Stats.LowConfidenceCount)

	sorted := sortedResults(run.Results)

	for _, r := range sorted {
		icon := "✓"
		if !r.Passed {
			icon = "✗"
		}
		fmt.Fprintf(&b, "## %s %s\n\n", icon, r.Validator)
		fmt.Fprintf(&b, "%s\n\n", r.Message)

		writeViolationList(&b, "Active violations", r.Violations, run.Options)
		if run.Options.ShowLowConfidence {
			writeViolationList(&b, "Low-confidence violations", r.LowConfidenceViolations, run.Options)
		}
		writeViolationList(&b, "Overridden violations", r.OverriddenViolations, run.Options)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func writeViolationList(b *strings.Builder, heading string, violations []models.Violation, opts Options) {
	if len(violations) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n", heading)
	for _, v := range violations {
		fmt.Fprintf(b, "- `%s` %s:%d — %s (%s, confidence %.0f%%)\n",
			v.Rule, v.FilePath, v.Line, v.Message, severityIcon(v.Severity), v.Confidence*100)
		if v.Confidence < opts.ConfidenceThreshold {
			fmt.Fprintf(b, "  - ⚠ below confidence threshold (%.0f%%)\n", opts.ConfidenceThreshold*100)
		}
		if v.Details != nil {
			if v.Details.AutoFixSuggestion != "" {
				fmt.Fprintf(b, "  - fix: %s\n", v.Details.AutoFixSuggestion)
			}
			if v.Details.Impact != "" {
				fmt.Fprintf(b, "  - impact: %s\n", v.Details.Impact)
			}
		}
		if v.OverrideReason != "" {
			fmt.Fprintf(b, "  - overridden by %s: %s\n", v.OverriddenBy, v.OverrideReason)
		}
	}
	fmt.Fprintln(b)
}

func severityIcon(s models.Severity) string {
	switch s {
	case models.SeverityWarning:
		return "⚠"
	case models.SeverityInfo:
		return "ℹ"
	default:
		return "✗"
	}
}

// WriteHTML writes the self-contained styled document: the same
// information as the markdown report plus the confidence-bucket
// analysis, with no external stylesheet or script dependency.
func WriteHTML(path string, run Run) error {
	var b strings.Builder

	fmt.Fprintln(&b, `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Valence Validation Report</title>
<style>
body { font-family: -apple-system, Arial, sans-serif; margin: 2rem; color: #1a1a1a; }
h1 { color: #222; }
.summary { background: #f3f3f3; padding: 1rem; border-radius: 6px; margin-bottom: 1.5rem; }
table { border-collapse: collapse; width: 100%; margin-bottom: 1.5rem; }
th, td { border: 1px solid #ddd; padding: 6px 10px; text-align: left; font-size: 0.9rem; }
th { background: #f2f2f2; }
.passed { color: #2e7d32; }
.failed { color: #c62828; }
.low-confidence { color: #b36b00; }
.overridden { color: #555; font-style: italic; }
</style>
</head>
<body>`)
	fmt.Fprintf(&b, "<h1>Valence Validation Report</h1>\n")
	fmt.Fprintf(&b, "<p>Generated at %s</p>\n", html.EscapeString(run.GeneratedAt))

	fmt.Fprintln(&b, `<div class="summary">`)
	fmt.Fprintf(&b, "<p>Files analyzed: %d</p>\n", run.Options.TotalFilesAnalyzed)
	fmt.Fprintf(&b, "<p>Validators passed: %d, failed: %d</p>\n", run.Stats.Passed, run.Stats.Failed)
	fmt.Fprintf(&b, "<p>Total violations: %d (low-confidence: %d)</p>\n", run.Stats.TotalViolations, run.Stats.LowConfidenceCount)
	fmt.Fprintln(&b, "<h2>Confidence bucket analysis</h2>")
	fmt.Fprintln(&b, "<table><tr><th>Bucket</th><th>Count</th><th>Percentage</th></tr>")
	fmt.Fprintf(&b, "<tr><td>High (&ge;0.9)</td><td>%d</td><td>%.1f%%</td></tr>\n", run.ConfidenceBuckets.High.Count, run.ConfidenceBuckets.High.Percentage)
	fmt.Fprintf(&b, "<tr><td>Medium (0.7-0.9)</td><td>%d</td><td>%.1f%%</td></tr>\n", run.ConfidenceBuckets.Medium.Count, run.ConfidenceBuckets.Medium.Percentage)
	fmt.Fprintf(&b, "<tr><td>Low (&lt;0.7)</td><td>%d</td><td>%.1f%%</td></tr>\n", run.ConfidenceBuckets.Low.Count, run.ConfidenceBuckets.Low.Percentage)
	fmt.Fprintln(&b, "</table></div>")

	for _, r := range sortedResults(run.Results) {
		class := "passed"
		if !r.Passed {
			class = "failed"
		}
		fmt.Fprintf(&b, `<h2 class="%s">%s</h2>`+"\n", class, html.EscapeString(r.Validator))
		fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(r.Message))
		writeViolationTable(&b, "Active violations", "failed", r.Violations)
		if run.Options.ShowLowConfidence {
			writeViolationTable(&b, "Low-confidence violations", "low-confidence", r.LowConfidenceViolations)
		}
		writeViolationTable(&b, "Overridden violations", "overridden", r.OverriddenViolations)
	}

	fmt.Fprintln(&b, "</body></html>")

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func writeViolationTable(b *strings.Builder, heading, class string, violations []models.Violation) {
	if len(violations) == 0 {
		return
	}
	fmt.Fprintf(b, "<h3 class=\"%s\">%s</h3>\n", class, heading)
	fmt.Fprintln(b, "<table><tr><th>Rule</th><th>File</th><th>Line</th><th>Message</th><th>Confidence</th></tr>")
	for _, v := range violations {
		fmt.Fprintf(b, "<tr><td>%s</td><td>%s</td><td>%d</td><td>%s</td><td>%.0f%%</td></tr>\n",
			html.EscapeString(v.Rule), html.EscapeString(v.FilePath), v.Line, html.EscapeString(v.Message), v.Confidence*100)
	}
	fmt.Fprintln(b, "</table>")
}

// sortedResults returns results ordered by validator name, so report
// output is deterministic regardless of validator execution order.
func sortedResults(results []models.ValidationResult) []models.ValidationResult {
	sorted := append([]models.ValidationResult(nil), results...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Validator < sorted[j].Validator })
	return sorted
}
