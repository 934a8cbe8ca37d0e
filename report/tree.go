package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
)

var (
	validatorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	ruleStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	passColor      = color.New(color.FgGreen)
	failColor      = color.New(color.FgRed)
)

// PrintTree renders run as a tree grouped by validator, then rule,
// then violation, directly modeled on the teacher's tree console
// output: a bold validator header, dimmed rule grouping, and one line
// per violation with its file:line.
func PrintTree(w io.Writer, run Run) {
	for _, r := range sortedResults(run.Results) {
		header := validatorStyle.Render(r.Validator)
		if r.Passed {
			passColor.Fprintf(w, "✓ %s\n", header)
			continue
		}
		failColor.Fprintf(w, "✗ %s\n", header)

		byRule := make(map[string][]int)
		for i, v := range r.Violations {
			byRule[v.Rule] = append(byRule[v.Rule], i)
		}
		rules := make([]string, 0, len(byRule))
		for rule := range byRule {
			rules = append(rules, rule)
		}
		sort.Strings(rules)

		for i, rule := range rules {
			last := i == len(rules)-1
			branch := "├──"
			if last {
				branch = "└──"
			}
			fmt.Fprintf(w, "  %s %s\n", branch, ruleStyle.Render(rule))

			prefix := "  │   "
			if last {
				prefix = "      "
			}
			indices := byRule[rule]
			for j, idx := range indices {
				v := r.Violations[idx]
				vbranch := "├──"
				if j == len(indices)-1 {
					vbranch = "└──"
				}
				fmt.Fprintf(w, "%s%s %s:%d %s\n", prefix, vbranch, v.FilePath, v.Line, v.Message)
			}
		}
	}
}
