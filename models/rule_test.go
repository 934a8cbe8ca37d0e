package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRule_ValidateXOR(t *testing.T) {
	assert.NoError(t, Rule{Operator: "mustContain"}.Validate())
	assert.NoError(t, Rule{Plugin: "validateFoo"}.Validate())
	assert.Error(t, Rule{Operator: "a", Plugin: "b"}.Validate())
	assert.Error(t, Rule{}.Validate())
}

func TestValidator_ValidateCompilesPattern(t *testing.T) {
	v := &Validator{
		Name: "no-secrets",
		Type: ValidatorTypeContent,
		Rules: []Rule{{Operator: "mustContain", Value: "ok"}},
		FilePattern: `\.go$`,
	}
	require.NoError(t, v.Validate())
	assert.True(t, v.MatchesFile("main.go"))
	assert.False(t, v.MatchesFile("main.py"))
}

func TestValidator_ValidateRejectsUnknownType(t *testing.T) {
	v := &Validator{Name: "x", Type: "bogus"}
	assert.Error(t, v.Validate())
}

func TestValidator_ValidateRejectsBadPattern(t *testing.T) {
	v := &Validator{Name: "x", Type: ValidatorTypeContent, FilePattern: "("}
	assert.Error(t, v.Validate())
}

func TestValidator_ThresholdFallsBackToDefault(t *testing.T) {
	v := &Validator{Name: "x", Type: ValidatorTypeContent}
	assert.Equal(t, 0.5, v.Threshold(0.5))

	custom := 0.9
	v.ConfidenceThreshold = &custom
	assert.Equal(t, 0.9, v.Threshold(0.5))
}

func TestValidator_ValidateAcceptsEmptyRuleList(t *testing.T) {
	v := &Validator{Name: "x", Type: ValidatorTypeContent, Rules: nil}
	require.NoError(t, v.Validate())
}
