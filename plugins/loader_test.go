package plugins

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valence-dev/valence/models"
	"github.com/valence-dev/valence/registry"
)

const singleEvaluatePlugin = `package plugin

import "strings"

func Evaluate(content string, path string) (bool, string) {
	if strings.Contains(content, "TODO") {
		return false, "content contains a TODO marker"
	}
	return true, ""
}
`

const bulkOperatorsPlugin = `package plugin

import "strings"

func checkNoDebugger(content string, path string) (bool, string) {
	return !strings.Contains(content, "debugger"), "debugger statement found"
}

var Operators = map[string]func(string, string) (bool, string){
	"noDebugger": checkNoDebugger,
}
`

const detailedEvaluatePlugin = `package plugin

import (
	"strings"
	"valence"
)

func Evaluate(content string, path string) (bool, string, []valence.Violation) {
	var violations []valence.Violation
	if strings.Contains(content, "console.log") {
		violations = append(violations, valence.Violation{
			Message:    "stray console.log",
			Confidence: 0.95,
			Severity:   "warning",
		})
	}
	if strings.Contains(content, "debugger") {
		violations = append(violations, valence.Violation{
			Message:           "stray debugger statement",
			Confidence:        0.6,
			Severity:          "error",
			AutoFixSuggestion: "remove the debugger statement",
		})
	}
	return len(violations) == 0, "", violations
}
`

func writePlugin(t *testing.T, dir, name, source string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(source), 0o644))
}

func TestLoader_DiscoversFlatSingleEvaluatePlugin(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, filepath.Join(root, "plugins"), "checkTodo.go", singleEvaluatePlugin)

	reg := registry.New()
	l := NewLoader(root, reg)
	l.DiscoverAndLoad()

	eval, ok := reg.Lookup("checkTodo")
	require.True(t, ok)

	result, err := eval.Evaluate(models.NewContentPayload("no markers here"), models.Rule{}, models.EvaluatorContext{})
	require.NoError(t, err)
	assert.True(t, result.Passed)

	result, err = eval.Evaluate(models.NewContentPayload("// TODO: fix this"), models.Rule{}, models.EvaluatorContext{})
	require.NoError(t, err)
	assert.False(t, result.Passed)
}

func TestLoader_DiscoversBulkOperatorsPlugin(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, filepath.Join(root, "plugins"), "debugChecks.go", bulkOperatorsPlugin)

	reg := registry.New()
	l := NewLoader(root, reg)
	l.DiscoverAndLoad()

	eval, ok := reg.Lookup("noDebugger")
	require.True(t, ok)

	result, err := eval.Evaluate(models.NewContentPayload("debugger;"), models.Rule{}, models.EvaluatorContext{})
	require.NoError(t, err)
	assert.False(t, result.Passed)
}

func TestLoader_AbsentDirectoriesAreNotErrors(t *testing.T) {
	root := t.TempDir()
	reg := registry.New()
	l := NewLoader(root, reg)
	assert.NotPanics(t, func() { l.DiscoverAndLoad() })
	assert.Equal(t, 5, len(reg.Names())) // only built-ins
}

func TestLoader_ResolveArchitectureSpecificPath(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, filepath.Join(root, "plugins", "SPA"), "validateFoo.go", singleEvaluatePlugin)

	reg := registry.New()
	l := NewLoader(root, reg)

	eval, err := l.Resolve("validateSpaFoo")
	require.NoError(t, err)
	result, err := eval.Evaluate(models.NewContentPayload("fine"), models.Rule{}, models.EvaluatorContext{})
	require.NoError(t, err)
	assert.True(t, result.Passed)
}

func TestLoader_DetailedPluginCarriesPerViolationConfidenceAndSeverity(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, filepath.Join(root, "plugins"), "debugClutter.go", detailedEvaluatePlugin)

	reg := registry.New()
	l := NewLoader(root, reg)
	l.DiscoverAndLoad()

	eval, ok := reg.Lookup("debugClutter")
	require.True(t, ok)

	result, err := eval.Evaluate(models.NewContentPayload("console.log('x'); debugger;"), models.Rule{}, models.EvaluatorContext{})
	require.NoError(t, err)
	assert.False(t, result.Passed)
	require.Len(t, result.Violations, 2)

	assert.Equal(t, "stray console.log", result.Violations[0].Message)
	assert.Equal(t, 0.95, result.Violations[0].Confidence)
	assert.Equal(t, models.SeverityWarning, result.Violations[0].Severity)

	assert.Equal(t, "stray debugger statement", result.Violations[1].Message)
	assert.Equal(t, 0.6, result.Violations[1].Confidence)
	assert.Equal(t, models.SeverityError, result.Violations[1].Severity)
	require.NotNil(t, result.Violations[1].Details)
	assert.Equal(t, "remove the debugger statement", result.Violations[1].Details.AutoFixSuggestion)
}

func TestLoader_ResolveNotFound(t *testing.T) {
	root := t.TempDir()
	reg := registry.New()
	l := NewLoader(root, reg)

	_, err := l.Resolve("doesNotExist")
	assert.Error(t, err)
}
