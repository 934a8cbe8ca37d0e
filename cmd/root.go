// Package cmd is the thin cobra front-end over the engine: it resolves
// flags and documents on disk, calls straight into engine.Engine, and
// sets the process exit code. No validation or merge logic lives here,
// mirroring the teacher's cmd/root.go + cmd/check.go split between
// flag plumbing and the analysis engine itself.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/flanksource/commons/logger"
	"github.com/spf13/cobra"
	"github.com/valence-dev/valence/config"
	"github.com/valence-dev/valence/engine"
	"github.com/valence-dev/valence/internal/gitinfo"
)

var (
	workingDir  string
	docsDir     string
	gopsEnabled bool
	settings    config.Settings
)

var rootCmd = &cobra.Command{
	Use:           "valence",
	Short:         "Architecture validation engine",
	SilenceErrors: true,
	SilenceUsage:  true,
	Long: `valence applies declaratively defined validators (content, structure, and
naming rules) to a set of source files and emits a structured violation
report. Individual violations may be marked as false positives through
a persistent override store so future runs suppress them.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(workingDir)
		if err != nil {
			return err
		}
		settings = loaded

		if gopsEnabled {
			if _, err := engine.StartDiagnostics(); err != nil {
				logger.Warnf("gops: failed to start diagnostics agent: %v", err)
			}
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if exitErr, ok := err.(*exitError); ok {
			os.Exit(exitErr.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&workingDir, "cwd", ".", "working directory containing the file set to validate")
	rootCmd.PersistentFlags().StringVar(&docsDir, "docs", ".valence", "directory holding profiles/ and validators/ documents")
	rootCmd.PersistentFlags().BoolVar(&gopsEnabled, "gops", false, "start a gops diagnostics agent for this process")
}

// resolvedRoot makes workingDir absolute, matching the teacher's
// GetWorkingDir contract.
func resolvedRoot() (string, error) {
	abs, err := filepath.Abs(workingDir)
	if err != nil {
		return "", fmt.Errorf("resolving working directory: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("working directory does not exist: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("working directory is not a directory: %s", abs)
	}
	return abs, nil
}

func resolvedDocsDir(root string) string {
	if filepath.IsAbs(docsDir) {
		return docsDir
	}
	return filepath.Join(root, docsDir)
}

// resolveOverridePath makes a configured override-store path absolute.
// A relative path is resolved against the git repository root
// containing root, not against root itself, so the override store
// lives in one place regardless of which subdirectory --cwd names;
// when root isn't inside a git repository, it falls back to root.
func resolveOverridePath(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	base := root
	if repoRoot, err := gitinfo.RepoRoot(root); err == nil {
		base = repoRoot
	}
	return filepath.Join(base, path)
}
