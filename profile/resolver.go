// Package profile materializes a named profile into the concrete
// validator objects the engine runs, resolving each validator
// reference against a document store. Grounded in the same two-phase
// "look up a name, load its document, fail fast if absent" shape as
// the teacher's config.ConfigLoader.LoadConfig.
package profile

import (
	"github.com/valence-dev/valence/models"
)

// Store is the document-store dependency the resolver needs: enough of
// docstore.DocumentStore to load profiles and validators by name.
type Store interface {
	LoadProfile(name string) (*models.Profile, error)
	LoadValidator(name string) (*models.Validator, error)
}

// Resolved is a profile materialized into runnable validators plus its
// severity-bucket metadata, ready for the engine to iterate.
type Resolved struct {
	Name            string
	Description     string
	Validators      []*models.Validator
	SeverityBuckets models.SeverityBuckets
}

// Resolver materializes profiles (or bare validator lists) against a Store.
type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// ResolveProfile loads profile name and every validator it references.
// A missing profile or a missing/invalid referenced validator is a
// fatal configuration error, surfaced before any file is evaluated.
func (r *Resolver) ResolveProfile(name string) (*Resolved, error) {
	p, err := r.store.LoadProfile(name)
	if err != nil {
		return nil, models.NewConfigurationError("profile %q: %s", name, err.Error())
	}

	validators, err := r.resolveValidators(p.Validators)
	if err != nil {
		return nil, err
	}

	buckets := models.SeverityBuckets{}
	if p.ValidationLevels != nil {
		buckets = *p.ValidationLevels
	}

	return &Resolved{
		Name:            p.Name,
		Description:     p.Description,
		Validators:      validators,
		SeverityBuckets: buckets,
	}, nil
}

// ResolveValidators materializes a bare list of validator names with no
// enclosing profile, for CLI invocations that name validators directly.
func (r *Resolver) ResolveValidators(names []string) (*Resolved, error) {
	validators, err := r.resolveValidators(names)
	if err != nil {
		return nil, err
	}
	return &Resolved{Validators: validators}, nil
}

func (r *Resolver) resolveValidators(names []string) ([]*models.Validator, error) {
	validators := make([]*models.Validator, 0, len(names))
	for _, name := range names {
		v, err := r.store.LoadValidator(name)
		if err != nil {
			return nil, models.NewConfigurationError("validator %q: %s", name, err.Error())
		}
		validators = append(validators, v)
	}
	return validators, nil
}
