// Package registry holds the central lookup of rule evaluators by name,
// mapping an operator or plugin name to the Evaluator that runs it.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/flanksource/commons/logger"
	"github.com/valence-dev/valence/models"
)

// Registry is the mapping from operator/plugin name to Evaluator.
// Built-ins are registered eagerly at construction; plugin entries are
// populated lazily by the plugin loader. Read-only during execution.
type Registry struct {
	mu        sync.RWMutex
	operators map[string]models.Evaluator
	builtins  map[string]bool
}

// New creates a registry with every built-in operator already registered.
func New() *Registry {
	r := &Registry{
		operators: make(map[string]models.Evaluator),
		builtins:  make(map[string]bool),
	}
	for name, eval := range builtinOperators() {
		r.operators[name] = eval
		r.builtins[name] = true
	}
	return r
}

// Lookup returns the evaluator registered under name, if any.
func (r *Registry) Lookup(name string) (models.Evaluator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	eval, ok := r.operators[name]
	return eval, ok
}

// Register inserts an evaluator under name. Overwriting a built-in is
// forbidden and returns an error; last-writer-wins is only permitted for
// plugin-supplied names.
func (r *Registry) Register(name string, eval models.Evaluator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.builtins[name] {
		return fmt.Errorf("cannot overwrite built-in operator %q", name)
	}
	if _, exists := r.operators[name]; exists {
		logger.Debugf("registry: replacing previously registered plugin %q", name)
	}
	r.operators[name] = eval
	return nil
}

// Names returns every registered evaluator name, sorted, for diagnostics.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.operators))
	for name := range r.operators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsBuiltin reports whether name is a built-in operator (as opposed to a
// plugin-registered one).
func (r *Registry) IsBuiltin(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.builtins[name]
}
