package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/flanksource/commons/logger"
	"github.com/spf13/cobra"
	"github.com/valence-dev/valence/docstore"
	"github.com/valence-dev/valence/engine"
	"github.com/valence-dev/valence/override"
	"github.com/valence-dev/valence/report"
)

var (
	profileFlag      string
	confidenceFlag   float64
	reportDirFlag    string
	overridePathFlag string
	compactFlag      bool
)

var validateCmd = &cobra.Command{
	Use:   "validate [validator...]",
	Short: "Validate the file set against a profile or an explicit validator list",
	Long: `validate resolves a profile (--profile) or the given validator names into
runnable validators, applies each to the files under --cwd, merges results
against the override store, and writes validation-report.{json,md,html}
under the report directory. Exit code is 0 iff every validator passed
after merging.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVar(&profileFlag, "profile", "", "profile name to resolve (mutually exclusive with explicit validator args)")
	validateCmd.Flags().Float64Var(&confidenceFlag, "confidence-threshold", -1, "override the configured default confidence threshold")
	validateCmd.Flags().StringVar(&reportDirFlag, "report-dir", "", "override the configured report output directory")
	validateCmd.Flags().StringVar(&overridePathFlag, "override-store", "", "override the configured override-store path")
	validateCmd.Flags().BoolVarP(&compactFlag, "compact", "c", false, "print only the summary, not the violation tree")
}

func runValidate(cmd *cobra.Command, args []string) error {
	root, err := resolvedRoot()
	if err != nil {
		return err
	}

	confidence := settings.ConfidenceThreshold
	if confidenceFlag >= 0 {
		confidence = confidenceFlag
	}
	reportDir := settings.ReportDir
	if reportDirFlag != "" {
		reportDir = reportDirFlag
	}
	overridePath := settings.OverrideStorePath
	if overridePathFlag != "" {
		overridePath = overridePathFlag
	}
	overridePath = resolveOverridePath(root, overridePath)
	if !filepath.IsAbs(reportDir) {
		reportDir = filepath.Join(root, reportDir)
	}

	store := docstore.NewDocumentStore(resolvedDocsDir(root))
	overrides, err := override.Load(overridePath)
	if err != nil {
		return fmt.Errorf("loading override store: %w", err)
	}

	e := engine.New(engine.Options{
		Root:                root,
		PluginRoot:          root,
		DefaultConfidence:   confidence,
		ReportDir:           reportDir,
		ShowLowConfidence:   settings.ShowLowConfidence,
		IncludeCodeSnippets: settings.IncludeCodeSnippets,
		MaxWorkers:          settings.MaxWorkers,
	}, store)

	run, passed, err := e.Run(profileFlag, args, overrides)
	if err != nil {
		return err
	}

	if err := report.Generate(reportDir, run); err != nil {
		return fmt.Errorf("writing reports: %w", err)
	}
	logger.Infof("validate: wrote reports to %s", reportDir)

	if !compactFlag {
		report.PrintTree(cmd.OutOrStdout(), run)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d passed, %d failed, %d violation(s), %d low-confidence\n",
		run.Stats.Passed, run.Stats.Failed, run.Stats.TotalViolations, run.Stats.LowConfidenceCount)

	if !passed {
		return &exitError{code: 1}
	}
	return nil
}

// exitError carries a non-zero exit code through cobra's error return
// without printing an extra "Error: ..." line for what is really just
// a failed-validation status, not a usage or execution error.
type exitError struct{ code int }

func (e *exitError) Error() string { return "" }
