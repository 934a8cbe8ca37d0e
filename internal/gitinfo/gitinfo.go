// Package gitinfo resolves the ambient git identity used as a default
// override "addedBy" user, and locates a repository's root so the
// override-store path can be resolved relative to it rather than to
// whatever directory the engine happens to be invoked from. Grounded
// in the teacher's git package, which also opens a local repository
// with go-git to read its configuration and state.
package gitinfo

import (
	"fmt"
	"path/filepath"

	"github.com/go-git/go-git/v5"
)

// DefaultUser returns "name <email>" from the repository's git config
// at or above dir, for use as an override record's addedBy when the
// caller (CLI) didn't supply one explicitly. Returns an error if dir
// isn't inside a git repository or has no user identity configured.
func DefaultUser(dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("opening git repository at %s: %w", dir, err)
	}

	cfg, err := repo.ConfigScoped(0)
	if err != nil {
		return "", fmt.Errorf("reading git config: %w", err)
	}

	name := cfg.User.Name
	email := cfg.User.Email
	if name == "" && email == "" {
		return "", fmt.Errorf("no git user identity configured")
	}
	if email == "" {
		return name, nil
	}
	if name == "" {
		return email, nil
	}
	return fmt.Sprintf("%s <%s>", name, email), nil
}

// RepoRoot returns the top-level working directory of the git
// repository containing dir, so the override store can default to
// "<repo root>/.valence-overrides.json" regardless of the engine's
// invocation directory.
func RepoRoot(dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("opening git repository at %s: %w", dir, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("resolving worktree: %w", err)
	}
	return filepath.Clean(worktree.Filesystem.Root()), nil
}
