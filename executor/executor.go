// Package executor applies one validator (a set of rules plus a
// file-pattern filter) to a file set.
package executor

import (
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/samber/lo"
	"github.com/valence-dev/valence/dispatch"
	"github.com/valence-dev/valence/internal/source"
	"github.com/valence-dev/valence/models"
)

// Executor runs one validator over its target file set. Per-file I/O
// and rule evaluation within a validator may run in parallel; the
// validator-to-validator order is the caller's (the engine's)
// responsibility, not this type's.
type Executor struct {
	dispatcher *dispatch.Dispatcher
	// maxWorkers bounds per-file goroutine fan-out. Zero means
	// runtime.GOMAXPROCS(0).
	maxWorkers int
}

func New(d *dispatch.Dispatcher) *Executor {
	return &Executor{dispatcher: d}
}

// WithMaxWorkers overrides the per-file concurrency cap; mostly useful
// in tests wanting deterministic single-threaded execution.
func (e *Executor) WithMaxWorkers(n int) *Executor {
	e.maxWorkers = n
	return e
}

func (e *Executor) workers() int {
	if e.maxWorkers > 0 {
		return e.maxWorkers
	}
	return runtime.GOMAXPROCS(0)
}

// fileOutcome is the per-file result of running a content/naming
// validator against one target, before being folded into the
// validator-level ValidationResult.
type fileOutcome struct {
	path       string
	passed     bool
	detail     string
	violations []models.Violation
}

// Run evaluates validator against files and returns the composed
// ValidationResult.
func (e *Executor) Run(v *models.Validator, files []string) models.ValidationResult {
	targets := lo.Filter(files, func(f string, _ int) bool { return v.MatchesFile(f) })

	switch v.Type {
	case models.ValidatorTypeStructure:
		return e.runStructure(v, targets)
	default:
		return e.runPerFile(v, targets)
	}
}

// runPerFile handles both content and naming validators: same
// per-file, fail-fast-per-file policy, differing only in what payload
// each file contributes.
func (e *Executor) runPerFile(v *models.Validator, targets []string) models.ValidationResult {
	outcomes := make([]fileOutcome, len(targets))
	var wg sync.WaitGroup
	sem := make(chan struct{}, e.workers())
	var fatalErr error
	var fatalMu sync.Mutex

	for i, path := range targets {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-sem }()

			outcome, err := e.evaluateOneFile(v, path)
			if err != nil {
				fatalMu.Lock()
				if fatalErr == nil {
					fatalErr = err
				}
				fatalMu.Unlock()
				return
			}
			outcomes[i] = outcome
		}(i, path)
	}
	wg.Wait()

	if fatalErr != nil {
		return models.ValidationResult{
			Validator: v.Name,
			Passed:    false,
			Message:   fmt.Sprintf("Validation error: %s", fatalErr.Error()),
		}
	}

	return composeResult(v, outcomes)
}

// evaluateOneFile runs v's rules, in declaration order, against one
// file. The first failing rule stops further rules for that file
// (content/naming only).
func (e *Executor) evaluateOneFile(v *models.Validator, path string) (fileOutcome, error) {
	payload, err := e.buildPayload(v.Type, path)
	if err != nil {
		return fileOutcome{
			path:   path,
			passed: false,
			detail: fmt.Sprintf("%s: %s", path, err.Error()),
		}, nil
	}

	for _, rule := range v.Rules {
		result, dispatchErr := e.dispatcher.Dispatch(payload, rule, models.EvaluatorContext{})
		if dispatchErr != nil {
			return fileOutcome{}, dispatchErr
		}
		if !result.Passed {
			violations := violationsFor(result, rule, path)
			return fileOutcome{
				path:       path,
				passed:     false,
				detail:     fmt.Sprintf("%s: %s", path, result.Message),
				violations: violations,
			}, nil
		}
	}

	return fileOutcome{path: path, passed: true}, nil
}

func (e *Executor) buildPayload(t models.ValidatorType, path string) (models.Payload, error) {
	switch t {
	case models.ValidatorTypeNaming:
		return models.NewFileNamePayload(source.BaseName(path)), nil
	default:
		content, err := source.ReadFile(path)
		if err != nil {
			return models.Payload{}, err
		}
		return models.NewContentPayload(content), nil
	}
}

// runStructure evaluates every rule exactly once against the full
// target-file list, with no short-circuit: every failing rule
// contributes its own detail line.
func (e *Executor) runStructure(v *models.Validator, targets []string) models.ValidationResult {
	payload := models.NewPathListPayload(targets)

	var details []string
	var violations []models.Violation
	passed := true

	for _, rule := range v.Rules {
		result, err := e.dispatcher.Dispatch(payload, rule, models.EvaluatorContext{})
		if err != nil {
			return models.ValidationResult{
				Validator: v.Name,
				Passed:    false,
				Message:   fmt.Sprintf("Validation error: %s", err.Error()),
			}
		}
		if !result.Passed {
			passed = false
			details = append(details, result.Message)
			violations = append(violations, violationsFor(result, rule, "")...)
		}
	}

	message := "All checks passed"
	if !passed {
		message = "Some checks failed"
	}

	return models.ValidationResult{
		Validator:  v.Name,
		Passed:     passed,
		Message:    message,
		Violations: violations,
		Details:    details,
	}
}

// composeResult folds per-file outcomes into a validator-level result,
// sorting detail lines by file path for determinism since parallel
// per-file evaluation doesn't guarantee order.
func composeResult(v *models.Validator, outcomes []fileOutcome) models.ValidationResult {
	passed := true
	var details []string
	var violations []models.Violation

	sorted := append([]fileOutcome(nil), outcomes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].path < sorted[j].path })

	for _, o := range sorted {
		if o.passed {
			continue
		}
		passed = false
		if o.detail != "" {
			details = append(details, o.detail)
		}
		violations = append(violations, o.violations...)
	}

	message := "All checks passed"
	if !passed {
		message = "Some checks failed"
	}

	return models.ValidationResult{
		Validator:  v.Name,
		Passed:     passed,
		Message:    message,
		Violations: violations,
		Details:    details,
	}
}

// violationsFor materializes the Violation(s) a failing rule produced.
// When the evaluator returned partial violations directly (the richer
// plugin path), they're used after clamping and default-filling. When
// only the legacy pass/fail boolean was returned, a minimal violation
// is synthesized from the rule and file identity.
func violationsFor(result models.EvaluatorResult, rule models.Rule, path string) []models.Violation {
	if len(result.Violations) > 0 {
		out := make([]models.Violation, len(result.Violations))
		for i, v := range result.Violations {
			if v.Rule == "" {
				v.Rule = rule.Name()
			}
			if v.FilePath == "" {
				v.FilePath = path
			}
			if v.Message == "" {
				v.Message = result.Message
			}
			if v.Severity == "" {
				v.Severity = models.SeverityError
			}
			if v.Confidence == 0 {
				v.Confidence = 1.0
			}
			v.ClampConfidence()
			out[i] = v
		}
		return out
	}

	v := models.NewViolation(rule.Name(), path, result.Message)
	return []models.Violation{v}
}
