package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"github.com/valence-dev/valence/internal/gitinfo"
	"github.com/valence-dev/valence/models"
	"github.com/valence-dev/valence/override"
)

var overridesCmd = &cobra.Command{
	Use:   "overrides",
	Short: "Manage the persistent violation override store",
	Long: `overrides manages the .valence-overrides.json document that suppresses
known-false-positive violations across runs. A suppressed violation still
appears in reports, but as an overridden entry rather than an active
failure.`,
}

var (
	addFilePath string
	addLine     int
	addReason   string
	addUser     string
	addRule     string
	addMessage  string

	importMerge bool
)

func init() {
	rootCmd.AddCommand(overridesCmd)

	addCmd := &cobra.Command{Use: "add", Short: "Suppress a violation", RunE: runOverridesAdd}
	addCmd.Flags().StringVar(&addRule, "rule", "", "the violating rule's operator/plugin name")
	addCmd.Flags().StringVar(&addFilePath, "file", "", "the violating file's path")
	addCmd.Flags().IntVar(&addLine, "line", 0, "the violating line number, if any")
	addCmd.Flags().StringVar(&addMessage, "message", "", "the violation message, as reported")
	addCmd.Flags().StringVar(&addReason, "reason", "", "why this violation is a false positive")
	addCmd.Flags().StringVar(&addUser, "user", "", "identity recorded as addedBy (defaults to the local git user)")
	overridesCmd.AddCommand(addCmd)

	overridesCmd.AddCommand(&cobra.Command{Use: "remove <fingerprint>", Short: "Un-suppress a violation", Args: cobra.ExactArgs(1), RunE: runOverridesRemove})
	overridesCmd.AddCommand(&cobra.Command{Use: "list", Short: "List stored overrides", RunE: runOverridesList})
	overridesCmd.AddCommand(&cobra.Command{Use: "stats", Short: "Summarize the override store", RunE: runOverridesStats})
	overridesCmd.AddCommand(&cobra.Command{Use: "export <path>", Short: "Export the override store as JSON", Args: cobra.ExactArgs(1), RunE: runOverridesExport})

	importCmd := &cobra.Command{Use: "import <path>", Short: "Import overrides from a JSON document", Args: cobra.ExactArgs(1), RunE: runOverridesImport}
	importCmd.Flags().BoolVar(&importMerge, "merge", false, "merge into the existing store instead of replacing it")
	overridesCmd.AddCommand(importCmd)
}

func openOverrideStore() (*override.Store, string, error) {
	root, err := resolvedRoot()
	if err != nil {
		return nil, "", err
	}
	path := settings.OverrideStorePath
	if overridePathFlag != "" {
		path = overridePathFlag
	}
	path = resolveOverridePath(root, path)
	store, err := override.Load(path)
	if err != nil {
		return nil, "", fmt.Errorf("loading override store: %w", err)
	}
	return store, root, nil
}

func runOverridesAdd(cmd *cobra.Command, args []string) error {
	store, root, err := openOverrideStore()
	if err != nil {
		return err
	}
	user := addUser
	if user == "" {
		if detected, err := gitinfo.DefaultUser(root); err == nil {
			user = detected
		} else {
			user = "unknown"
		}
	}

	v := models.Violation{Rule: addRule, FilePath: addFilePath, Line: addLine, Message: addMessage}
	record, err := store.Add(v, addFilePath, addReason, user)
	if err != nil {
		return fmt.Errorf("adding override: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "added override %s\n", record.Fingerprint)
	return nil
}

func runOverridesRemove(cmd *cobra.Command, args []string) error {
	store, _, err := openOverrideStore()
	if err != nil {
		return err
	}
	existed, err := store.Remove(args[0])
	if err != nil {
		return fmt.Errorf("removing override: %w", err)
	}
	if !existed {
		return fmt.Errorf("no override found for fingerprint %q", args[0])
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed override %s\n", args[0])
	return nil
}

func runOverridesList(cmd *cobra.Command, args []string) error {
	store, _, err := openOverrideStore()
	if err != nil {
		return err
	}
	for _, fp := range store.Fingerprints() {
		record, _ := store.GetByFingerprint(fp)
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %-20s %-40s %s\n", fp, record.Rule, record.FilePath, record.Reason)
	}
	return nil
}

func runOverridesStats(cmd *cobra.Command, args []string) error {
	store, _, err := openOverrideStore()
	if err != nil {
		return err
	}
	stats := store.Stats()
	fmt.Fprintf(cmd.OutOrStdout(), "total: %d\nadded in the last 7 days: %d\n", stats.Total, stats.Recent7d)

	rules := make([]string, 0, len(stats.ByRule))
	for rule := range stats.ByRule {
		rules = append(rules, rule)
	}
	sort.Strings(rules)
	for _, rule := range rules {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s: %d\n", rule, stats.ByRule[rule])
	}
	return nil
}

func runOverridesExport(cmd *cobra.Command, args []string) error {
	store, _, err := openOverrideStore()
	if err != nil {
		return err
	}
	doc := store.Export()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}
	return os.WriteFile(args[0], data, 0o644)
}

func runOverridesImport(cmd *cobra.Command, args []string) error {
	store, _, err := openOverrideStore()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	var doc models.OverrideDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}
	if err := store.Import(doc, importMerge); err != nil {
		return fmt.Errorf("importing overrides: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d override(s)\n", len(doc.Overrides))
	return nil
}
