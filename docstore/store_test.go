package docstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T, root, subdir, name, ext, content string) {
	t.Helper()
	dir := filepath.Join(root, subdir)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+ext), []byte(content), 0o644))
}

func TestDocumentStore_LoadProfile(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "profiles", "default", ".yaml", `
name: default
description: the default profile
validators: [V1, V2]
validationLevels:
  critical: [V1]
`)

	store := NewDocumentStore(root)
	p, err := store.LoadProfile("default")
	require.NoError(t, err)
	assert.Equal(t, "default", p.Name)
	assert.Equal(t, []string{"V1", "V2"}, p.Validators)
	require.NotNil(t, p.ValidationLevels)
	assert.Equal(t, []string{"V1"}, p.ValidationLevels.Critical)
}

func TestDocumentStore_LoadValidator_JSON(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "validators", "V1", ".json", `
{"name":"V1","type":"content","rules":[{"operator":"mustContain","value":"x"}]}
`)

	store := NewDocumentStore(root)
	v, err := store.LoadValidator("V1")
	require.NoError(t, err)
	assert.Equal(t, "V1", v.Name)
	assert.True(t, v.MatchesFile("anything.go"))
}

func TestDocumentStore_LoadValidator_TOML(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "validators", "V2", ".toml", `
name = "V2"
type = "naming"

[[rules]]
operator = "hasExtension"
value = ["go"]
`)

	store := NewDocumentStore(root)
	v, err := store.LoadValidator("V2")
	require.NoError(t, err)
	assert.Equal(t, "V2", v.Name)
}

func TestDocumentStore_MissingProfile(t *testing.T) {
	store := NewDocumentStore(t.TempDir())
	_, err := store.LoadProfile("nope")
	assert.Error(t, err)
}

func TestDocumentStore_InvalidValidatorFailsValidation(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "validators", "bad", ".yaml", `
name: bad
type: not-a-real-type
rules: []
`)
	store := NewDocumentStore(root)
	_, err := store.LoadValidator("bad")
	assert.Error(t, err)
}
