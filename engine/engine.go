// Package engine is the orchestrator: it resolves a profile into
// validators, runs the executor over each one in profile order,
// merges results against an override store, and assembles the report
// run that report.Generate writes out. It is
// the single entry point the cmd/ front-end calls into, mirroring how
// the teacher's cmd/check.go drives config.Parser, linters, and
// output.OutputManager as one sequence with no business logic living
// in cmd/ itself.
package engine

import (
	"fmt"

	"github.com/flanksource/commons/logger"
	"github.com/valence-dev/valence/dispatch"
	"github.com/valence-dev/valence/executor"
	"github.com/valence-dev/valence/internal/source"
	"github.com/valence-dev/valence/merge"
	"github.com/valence-dev/valence/models"
	"github.com/valence-dev/valence/plugins"
	"github.com/valence-dev/valence/profile"
	"github.com/valence-dev/valence/registry"
	"github.com/valence-dev/valence/report"
)

// OverrideStore is the subset of override.Store the engine needs: the
// read-side lookup merge uses.
type OverrideStore interface {
	merge.OverrideLookup
}

// Options configures one Engine instance. Multiple instances may
// coexist in the same process (e.g. under test), since nothing here is
// a package-level global.
type Options struct {
	Root                string
	PluginRoot          string
	DefaultConfidence   float64
	ReportDir           string
	ShowLowConfidence   bool
	IncludeCodeSnippets bool
	MaxWorkers          int
}

// Engine ties the registry, plugin loader, dispatcher, and executor
// into one reusable orchestrator instance.
type Engine struct {
	opts     Options
	registry *registry.Registry
	loader   *plugins.Loader
	exec     *executor.Executor
	resolver *profile.Resolver
}

// New constructs an Engine against a document store (profiles/
// validators) and discovers plugins once, up front, per the
// read-only-during-execution registry contract.
func New(opts Options, store profile.Store) *Engine {
	reg := registry.New()
	loader := plugins.NewLoader(opts.PluginRoot, reg)
	loader.DiscoverAndLoad()

	disp := dispatch.New(reg, loader)
	exec := executor.New(disp)
	if opts.MaxWorkers > 0 {
		exec = exec.WithMaxWorkers(opts.MaxWorkers)
	}

	return &Engine{
		opts:     opts,
		registry: reg,
		loader:   loader,
		exec:     exec,
		resolver: profile.NewResolver(store),
	}
}

// Run resolves profileName (if set) or validatorNames (if profileName
// is empty) into runnable validators, discovers the file set under
// opts.Root, runs each validator in order, merges against overrides,
// and returns the assembled report run plus the pass/fail exit status.
// A resolution failure (missing profile/validator) is fatal and
// returned before any file is touched, never producing a partial
// report — matching the "configuration errors abort before execution"
// error-handling rule.
func (e *Engine) Run(profileName string, validatorNames []string, overrides OverrideStore) (report.Run, bool, error) {
	resolved, err := e.resolveTargets(profileName, validatorNames)
	if err != nil {
		return report.Run{}, false, err
	}

	files, err := source.DiscoverFiles(e.opts.Root)
	if err != nil {
		return report.Run{}, false, fmt.Errorf("discovering files under %s: %w", e.opts.Root, err)
	}

	logger.Infof("engine: running %d validator(s) over %d file(s)", len(resolved.Validators), len(files))

	results := make([]models.ValidationResult, 0, len(resolved.Validators))
	allPassed := true
	for _, v := range resolved.Validators {
		raw := e.exec.Run(v, files)
		threshold := v.Threshold(e.opts.DefaultConfidence)
		merged := merge.Merge(raw, overrides, threshold)
		if !merged.Passed {
			allPassed = false
		}
		results = append(results, merged)
	}

	run := report.NewRun(results, report.Options{
		ConfidenceThreshold: e.opts.DefaultConfidence,
		IncludeCodeSnippets: e.opts.IncludeCodeSnippets,
		ShowLowConfidence:   e.opts.ShowLowConfidence,
		TotalFilesAnalyzed:  len(files),
	}, nowRFC3339())

	return run, allPassed, nil
}

func (e *Engine) resolveTargets(profileName string, validatorNames []string) (*profile.Resolved, error) {
	if profileName != "" {
		return e.resolver.ResolveProfile(profileName)
	}
	return e.resolver.ResolveValidators(validatorNames)
}

// Registry exposes the engine's operator registry for inspection
// commands (e.g. listing available built-in/plugin operator names).
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}
