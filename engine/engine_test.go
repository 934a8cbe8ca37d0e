package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valence-dev/valence/models"
)

type fakeStore struct {
	profiles   map[string]*models.Profile
	validators map[string]*models.Validator
}

func (f *fakeStore) LoadProfile(name string) (*models.Profile, error) {
	p, ok := f.profiles[name]
	if !ok {
		return nil, assert.AnError
	}
	return p, nil
}

func (f *fakeStore) LoadValidator(name string) (*models.Validator, error) {
	v, ok := f.validators[name]
	if !ok {
		return nil, assert.AnError
	}
	return v, nil
}

type fakeOverrides struct{}

func (fakeOverrides) Get(models.Violation, string) (models.OverrideRecord, bool) {
	return models.OverrideRecord{}, false
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestEngine_Run_PassesWhenNoViolations(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "package main // TODO marker\n")

	store := &fakeStore{validators: map[string]*models.Validator{
		"hasTODO": {
			Name: "hasTODO", Type: models.ValidatorTypeContent, FilePattern: `\.go$`,
			Rules: []models.Rule{{Operator: "mustContain", Value: "TODO"}},
		},
	}}

	e := New(Options{Root: root, DefaultConfidence: 0.8, MaxWorkers: 1}, store)
	run, passed, err := e.Run("", []string{"hasTODO"}, fakeOverrides{})
	require.NoError(t, err)
	assert.True(t, passed)
	assert.Equal(t, 1, run.Stats.Passed)
	assert.Equal(t, 0, run.Stats.Failed)
}

func TestEngine_Run_FailsAndMergesOverrides(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "package main\n")

	store := &fakeStore{validators: map[string]*models.Validator{
		"hasTODO": {
			Name: "hasTODO", Type: models.ValidatorTypeContent, FilePattern: `\.go$`,
			Rules: []models.Rule{{Operator: "mustContain", Value: "TODO", Message: "missing TODO marker"}},
		},
	}}

	e := New(Options{Root: root, DefaultConfidence: 0.8, MaxWorkers: 1}, store)
	run, passed, err := e.Run("", []string{"hasTODO"}, fakeOverrides{})
	require.NoError(t, err)
	assert.False(t, passed)
	assert.Equal(t, 1, run.Stats.Failed)
	require.Len(t, run.Results, 1)
	require.Len(t, run.Results[0].Violations, 1)
	assert.Equal(t, filepath.Join(root, "a.go"), run.Results[0].Violations[0].FilePath)
}

func TestEngine_Run_UnresolvableProfileIsFatalBeforeExecution(t *testing.T) {
	root := t.TempDir()
	store := &fakeStore{profiles: map[string]*models.Profile{}}

	e := New(Options{Root: root, DefaultConfidence: 0.8}, store)
	_, _, err := e.Run("missing", nil, fakeOverrides{})
	require.Error(t, err)
	var confErr *models.ConfigurationError
	assert.ErrorAs(t, err, &confErr)
}

func TestEngine_Run_ResolvesProfileValidators(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "package main\n")

	store := &fakeStore{
		profiles: map[string]*models.Profile{
			"default": {Name: "default", Validators: []string{"hasTODO"}},
		},
		validators: map[string]*models.Validator{
			"hasTODO": {Name: "hasTODO", Type: models.ValidatorTypeStructure, Rules: []models.Rule{{Operator: "fileExists", Value: filepath.Join(root, "a.go")}}},
		},
	}

	e := New(Options{Root: root, DefaultConfidence: 0.8}, store)
	run, passed, err := e.Run("default", nil, fakeOverrides{})
	require.NoError(t, err)
	assert.True(t, passed)
	require.Len(t, run.Results, 1)
	assert.Equal(t, "hasTODO", run.Results[0].Validator)
}

func TestEngine_Registry_IncludesBuiltins(t *testing.T) {
	e := New(Options{Root: t.TempDir()}, &fakeStore{})
	_, ok := e.Registry().Lookup("mustContain")
	assert.True(t, ok)
}
