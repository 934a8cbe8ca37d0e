package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valence-dev/valence/docstore"
)

var validatorsCmd = &cobra.Command{
	Use:   "validators",
	Short: "List configured validator documents and their resolved rule counts",
	RunE:  runValidators,
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List configured profile documents and the validators they reference",
	RunE:  runProfiles,
}

func init() {
	rootCmd.AddCommand(validatorsCmd)
	rootCmd.AddCommand(profilesCmd)
}

func documentNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		seen[name] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func runValidators(cmd *cobra.Command, args []string) error {
	root, err := resolvedRoot()
	if err != nil {
		return err
	}
	store := docstore.NewDocumentStore(resolvedDocsDir(root))

	names, err := documentNames(filepath.Join(resolvedDocsDir(root), "validators"))
	if err != nil {
		return fmt.Errorf("listing validators: %w", err)
	}
	for _, name := range names {
		v, err := store.LoadValidator(name)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%-30s <error: %v>\n", name, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-30s type=%-10s rules=%d\n", v.Name, v.Type, len(v.Rules))
	}
	return nil
}

func runProfiles(cmd *cobra.Command, args []string) error {
	root, err := resolvedRoot()
	if err != nil {
		return err
	}
	store := docstore.NewDocumentStore(resolvedDocsDir(root))

	names, err := documentNames(filepath.Join(resolvedDocsDir(root), "profiles"))
	if err != nil {
		return fmt.Errorf("listing profiles: %w", err)
	}
	for _, name := range names {
		p, err := store.LoadProfile(name)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%-30s <error: %v>\n", name, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-30s validators=%s\n", p.Name, strings.Join(p.Validators, ", "))
	}
	return nil
}
