package profile

import (
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

func TestResolver_ResolveProfile(t *testing.T) {
	v1 := &models.Validator{Name: "V1", Type: models.ValidatorTypeContent, Rules: []models.Rule{{Operator: "mustContain", Value: "x"}}}
	store := &fakeStore{
		profiles: map[string]*models.Profile{
			"default": {Name: "default", Validators: []string{"V1"}, ValidationLevels: &models.SeverityBuckets{Critical: []string{"V1"}}},
		},
		validators: map[string]*models.Validator{"V1": v1},
	}

	resolved, err := NewResolver(store).ResolveProfile("default")
	require.NoError(t, err)
	assert.Equal(t, "default", resolved.Name)
	require.Len(t, resolved.Validators, 1)
	assert.Equal(t, "V1", resolved.Validators[0].Name)
	assert.Equal(t, []string{"V1"}, resolved.SeverityBuckets.Critical)
}

func TestResolver_MissingProfileIsFatal(t *testing.T) {
	store := &fakeStore{profiles: map[string]*models.Profile{}, validators: map[string]*models.Validator{}}
	_, err := NewResolver(store).ResolveProfile("nope")
	require.Error(t, err)
	var confErr *models.ConfigurationError
	assert.ErrorAs(t, err, &confErr)
}

func TestResolver_MissingReferencedValidatorIsFatal(t *testing.T) {
	store := &fakeStore{
		profiles:   map[string]*models.Profile{"default": {Name: "default", Validators: []string{"Ghost"}}},
		validators: map[string]*models.Validator{},
	}
	_, err := NewResolver(store).ResolveProfile("default")
	require.Error(t, err)
	var confErr *models.ConfigurationError
	assert.ErrorAs(t, err, &confErr)
}

func TestResolver_ResolveValidatorsWithoutProfile(t *testing.T) {
	v1 := &models.Validator{Name: "V1", Type: models.ValidatorTypeContent}
	store := &fakeStore{validators: map[string]*models.Validator{"V1": v1}}

	resolved, err := NewResolver(store).ResolveValidators([]string{"V1"})
	require.NoError(t, err)
	require.Len(t, resolved.Validators, 1)
	assert.Equal(t, "V1", resolved.Validators[0].Name)
}
