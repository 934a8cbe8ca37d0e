package docstore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/valence-dev/valence/models"
)

// DocumentStore resolves profile and validator documents by name from
// conventional subdirectories of a root directory: "profiles/<name>.*"
// and "validators/<name>.*". Each is tried against yaml, yml, json, and
// toml extensions in turn; the first that exists wins.
type DocumentStore struct {
	root string
}

func NewDocumentStore(root string) *DocumentStore {
	return &DocumentStore{root: root}
}

var candidateExtensions = []string{".yaml", ".yml", ".json", ".toml"}

func (s *DocumentStore) resolve(subdir, name string) (string, error) {
	for _, ext := range candidateExtensions {
		candidate := filepath.Join(s.root, subdir, name+ext)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no document found for %q under %s", name, filepath.Join(s.root, subdir))
}

// LoadProfile resolves and decodes the named profile document.
func (s *DocumentStore) LoadProfile(name string) (*models.Profile, error) {
	path, err := s.resolve("profiles", name)
	if err != nil {
		return nil, err
	}
	var p models.Profile
	if err := Load(path, &p); err != nil {
		return nil, fmt.Errorf("loading profile %q: %w", name, err)
	}
	return &p, nil
}

// LoadValidator resolves and decodes the named validator document.
func (s *DocumentStore) LoadValidator(name string) (*models.Validator, error) {
	path, err := s.resolve("validators", name)
	if err != nil {
		return nil, err
	}
	var v models.Validator
	if err := Load(path, &v); err != nil {
		return nil, fmt.Errorf("loading validator %q: %w", name, err)
	}
	if err := v.Validate(); err != nil {
		return nil, fmt.Errorf("validator %q: %w", name, err)
	}
	return &v, nil
}
