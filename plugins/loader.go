// Package plugins discovers evaluator modules under a conventional
// directory tree and loads them into an operator registry by
// interpreting each one as a small Go source file with an embedded
// scripting runtime, so new operators can be added without recompiling
// the engine.
package plugins

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/flanksource/commons/logger"
	"github.com/valence-dev/valence/models"
	"github.com/valence-dev/valence/registry"
)

// discoveryPatterns are checked in order. Any subset may be present;
// absent directories are not errors.
var discoveryPatterns = []string{
	"plugins/*",
	"plugins/SPA/*",
	"plugins/AppCore/*",
	"plugins/Backend/*",
	"plugins/Shared/*",
	"plugins/CIA/*",
}

// Loader discovers plugin modules under root and registers them into a
// Registry. Loading is performed once, up front; the per-run cache then
// serves both bulk-discovered and lazily-resolved plugins.
type Loader struct {
	root     string
	registry *registry.Registry

	mu    sync.Mutex
	cache map[string]models.Evaluator
}

// NewLoader creates a Loader rooted at root (typically the working
// directory containing a plugins/ tree).
func NewLoader(root string, reg *registry.Registry) *Loader {
	return &Loader{
		root:     root,
		registry: reg,
		cache:    make(map[string]models.Evaluator),
	}
}

// DiscoverAndLoad walks every discovery pattern and registers whatever
// it finds. A module that fails to load (bad syntax, missing exports)
// is logged as a warning and skipped; discovery continues with the
// rest. Never returns an error itself, since no individual failure is
// fatal to startup.
func (l *Loader) DiscoverAndLoad() {
	for _, pattern := range discoveryPatterns {
		full := joinRoot(l.root, pattern)
		matches, err := doublestar.FilepathGlob(full)
		if err != nil {
			logger.Debugf("plugin discovery: pattern %q: %v", full, err)
			continue
		}
		for _, match := range matches {
			if info, statErr := os.Stat(match); statErr != nil || info.IsDir() {
				continue
			}
			l.loadFile(match)
		}
	}
}

// loadFile interprets one plugin source file and registers whatever it
// exports, isolating any failure as a non-fatal warning.
func (l *Loader) loadFile(path string) {
	ops, single, err := interpretModule(path)
	if err != nil {
		logger.Warnf("plugin %q failed to load: %v", path, err)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if ops != nil {
		for name, fn := range ops {
			eval := asEvaluator(fn)
			l.cache[name] = eval
			if regErr := l.registry.Register(name, eval); regErr != nil {
				logger.Warnf("plugin %q: %v", path, regErr)
			}
		}
		return
	}

	name := moduleNameFromPath(path)
	eval := asEvaluator(single)
	l.cache[name] = eval
	if regErr := l.registry.Register(name, eval); regErr != nil {
		logger.Warnf("plugin %q: %v", path, regErr)
	}
}

// Resolve looks up (or lazily loads) the evaluator for a rule's plugin
// name. Concurrent first-loads of the same name converge on one cached
// instance because the whole resolve-and-cache sequence runs under the
// loader's lock.
func (l *Loader) Resolve(name string) (models.Evaluator, error) {
	l.mu.Lock()
	if eval, ok := l.cache[name]; ok {
		l.mu.Unlock()
		return eval, nil
	}
	l.mu.Unlock()

	if eval, ok := l.registry.Lookup(name); ok {
		l.mu.Lock()
		l.cache[name] = eval
		l.mu.Unlock()
		return eval, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Re-check under the lock: another goroutine may have resolved it
	// while we waited.
	if eval, ok := l.cache[name]; ok {
		return eval, nil
	}

	for _, candidate := range candidatePaths(l.root+"/plugins", name) {
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		ops, single, err := interpretModule(candidate)
		if err != nil {
			return nil, fmt.Errorf("plugin %q: %w", name, err)
		}
		if single != nil {
			eval := asEvaluator(single)
			l.cache[name] = eval
			return eval, nil
		}
		for opName, fn := range ops {
			l.cache[opName] = asEvaluator(fn)
		}
		if eval, ok := l.cache[name]; ok {
			return eval, nil
		}
	}

	return nil, fmt.Errorf("plugin %q not found", name)
}

func joinRoot(root, pattern string) string {
	if root == "" {
		return pattern
	}
	return filepath.Join(root, pattern)
}

func moduleNameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
