package plugins

import (
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
	"github.com/valence-dev/valence/models"
)

var packageNameRegexp = regexp.MustCompile(`(?m)^\s*package\s+(\w+)`)

// packageName extracts the declared package name from plugin source,
// since the interpreter evaluates symbols qualified by it (e.g.
// "plugin.Evaluate"). Defaults to "plugin" if none is found.
func packageName(src string) string {
	if m := packageNameRegexp.FindStringSubmatch(src); m != nil {
		return m[1]
	}
	return "plugin"
}

// Violation is the primitive-only violation shape a plugin's richer
// evaluator signature may construct and return, mirroring the optional
// fields of models.Violation (confidence, severity, code, and the two
// details fields) without requiring the plugin source to import this
// module's own models package — yaegi only sees types this package
// explicitly exposes to it via valenceSymbols below.
type Violation struct {
	Message           string
	Line              int
	Column            int
	Confidence        float64
	Severity          string
	Code              string
	AutoFixSuggestion string
	Impact            string
}

// valenceSymbols exposes Violation to interpreted plugin source under
// the "valence" import path, the same Exports-map mechanism yaegi's own
// stdlib.Symbols uses to expose the standard library. A plugin opts
// into the richer ABI by declaring its Evaluate (or an Operators map
// entry) as func(string, string) (bool, string, []valence.Violation)
// instead of the legacy func(string, string) (bool, string).
var valenceSymbols = interp.Exports{
	"valence/valence": map[string]reflect.Value{
		"Violation": reflect.ValueOf((*Violation)(nil)),
	},
}

// pluginResult is the normalized outcome of calling a plugin's
// evaluator function, regardless of which of the two ABI shapes it was
// declared with.
type pluginResult struct {
	passed     bool
	message    string
	violations []Violation
}

// pluginFunc is the uniform, in-process shape every interpreted
// evaluator is adapted to, once toPluginFunc has resolved which of the
// two exported signatures it actually has.
type pluginFunc func(content, path string) pluginResult

// legacyEvaluateFunc is the simple pass/fail ABI: a plugin that only
// needs to report a single boolean outcome per invocation.
type legacyEvaluateFunc = func(string, string) (bool, string)

// detailedEvaluateFunc is the richer ABI: a plugin that wants to
// surface the full violation model (multiple findings per invocation,
// each with its own confidence, severity, and remediation metadata).
type detailedEvaluateFunc = func(string, string) (bool, string, []Violation)

// interpretModule evaluates a plugin source file and returns either a
// bulk operators map (name -> pluginFunc) or nil, plus a single
// "Evaluate" pluginFunc or nil, matching the two export shapes a plugin
// module may expose.
func interpretModule(path string) (map[string]pluginFunc, pluginFunc, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading plugin source: %w", err)
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, nil, fmt.Errorf("loading stdlib symbols: %w", err)
	}
	if err := i.Use(valenceSymbols); err != nil {
		return nil, nil, fmt.Errorf("loading valence symbols: %w", err)
	}

	if _, err := i.Eval(string(src)); err != nil {
		return nil, nil, fmt.Errorf("interpreting plugin source: %w", err)
	}

	pkgName := packageName(string(src))

	if v, err := i.Eval(pkgName + ".Operators"); err == nil {
		ops, convErr := toPluginFuncMap(v)
		if convErr != nil {
			return nil, nil, fmt.Errorf("plugin exports Operators with unexpected shape: %w", convErr)
		}
		return ops, nil, nil
	}

	v, err := i.Eval(pkgName + ".Evaluate")
	if err != nil {
		return nil, nil, fmt.Errorf("plugin exposes neither Operators nor Evaluate: %w", err)
	}
	fn, convErr := toPluginFunc(v)
	if convErr != nil {
		return nil, nil, fmt.Errorf("plugin's Evaluate has unexpected signature: %w", convErr)
	}
	return nil, fn, nil
}

// toPluginFunc adapts whichever of the two recognized evaluator
// signatures v holds into the uniform pluginFunc shape.
func toPluginFunc(v reflect.Value) (pluginFunc, error) {
	if v.Kind() != reflect.Func {
		return nil, fmt.Errorf("evaluator must be a callable, got %s", v.Kind())
	}
	if fn, ok := v.Interface().(legacyEvaluateFunc); ok {
		return func(content, path string) pluginResult {
			passed, message := fn(content, path)
			return pluginResult{passed: passed, message: message}
		}, nil
	}
	if fn, ok := v.Interface().(detailedEvaluateFunc); ok {
		return func(content, path string) pluginResult {
			passed, message, violations := fn(content, path)
			return pluginResult{passed: passed, message: message, violations: violations}
		}, nil
	}
	return nil, fmt.Errorf("evaluator must have signature func(string, string) (bool, string) or func(string, string) (bool, string, []valence.Violation)")
}

func toPluginFuncMap(v reflect.Value) (map[string]pluginFunc, error) {
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Map {
		return nil, fmt.Errorf("Operators must be a map, got %s", v.Kind())
	}
	out := make(map[string]pluginFunc, v.Len())
	for _, key := range v.MapKeys() {
		name, ok := key.Interface().(string)
		if !ok {
			return nil, fmt.Errorf("Operators keys must be strings")
		}
		fn, err := toPluginFunc(v.MapIndex(key))
		if err != nil {
			return nil, fmt.Errorf("Operators[%q]: %w", name, err)
		}
		out[name] = fn
	}
	return out, nil
}

// asEvaluator adapts a pluginFunc into the models.Evaluator contract,
// reducing whatever payload the calling validator passes to the plain
// strings the interpreted function understands, then lifting its
// pluginResult into a full EvaluatorResult — including any rich
// violations a detailed-ABI plugin returned.
func asEvaluator(fn pluginFunc) models.Evaluator {
	return models.EvaluatorFunc(func(payload models.Payload, rule models.Rule, _ models.EvaluatorContext) (models.EvaluatorResult, error) {
		content, path := reducePayload(payload)

		result := fn(content, path)
		message := result.message
		if message == "" {
			message = rule.Message
		}

		var violations []models.Violation
		for _, pv := range result.violations {
			violations = append(violations, toModelViolation(pv))
		}

		return models.EvaluatorResult{Passed: result.passed, Message: message, Violations: violations}, nil
	})
}

func reducePayload(payload models.Payload) (content, path string) {
	switch payload.Kind() {
	case models.PayloadContent:
		return payload.Content, ""
	case models.PayloadFileName:
		return "", payload.FileName
	case models.PayloadPathList:
		return "", strings.Join(payload.Paths, ",")
	default:
		return "", ""
	}
}

// toModelViolation converts a plugin's primitive Violation into the
// engine's canonical models.Violation, filling the same defaults
// executor.violationsFor applies to the legacy single-violation path
// (confidence 1.0, severity "error") so both ABI shapes end up
// normalized the same way.
func toModelViolation(pv Violation) models.Violation {
	v := models.Violation{
		Message:    pv.Message,
		Line:       pv.Line,
		Column:     pv.Column,
		Confidence: pv.Confidence,
		Severity:   models.Severity(pv.Severity),
		Code:       pv.Code,
	}
	if v.Confidence == 0 {
		v.Confidence = 1.0
	}
	v.ClampConfidence()
	if v.Severity == "" {
		v.Severity = models.SeverityError
	}
	if pv.AutoFixSuggestion != "" || pv.Impact != "" {
		v.Details = &models.ViolationDetails{
			AutoFixSuggestion: pv.AutoFixSuggestion,
			Impact:            pv.Impact,
		}
	}
	return v
}
