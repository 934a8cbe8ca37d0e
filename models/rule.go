package models

import (
	"fmt"
	"regexp"
)

// ValidatorType dictates what payload the executor passes to each rule's
// evaluator. See Payload in payload.go.
type ValidatorType string

const (
	ValidatorTypeContent   ValidatorType = "content"
	ValidatorTypeStructure ValidatorType = "structure"
	ValidatorTypeNaming    ValidatorType = "naming"
)

// Rule is a single evaluator invocation unit. Exactly one of Operator and
// Plugin is set; rules violating this fail validator load.
type Rule struct {
	Operator string `yaml:"operator,omitempty" json:"operator,omitempty"`
	Plugin   string `yaml:"plugin,omitempty" json:"plugin,omitempty"`
	Value    any    `yaml:"value,omitempty" json:"value,omitempty"`
	Message  string `yaml:"message,omitempty" json:"message,omitempty"`

	// Extra carries evaluator-specific recognized fields passed through
	// verbatim to plugin evaluators (e.g. a rule's own nested options).
	Extra map[string]any `yaml:",inline" json:"-"`
}

// IsOperator reports whether this rule references a built-in operator.
func (r Rule) IsOperator() bool { return r.Operator != "" }

// IsPlugin reports whether this rule references a loaded plugin evaluator.
func (r Rule) IsPlugin() bool { return r.Plugin != "" }

// Validate enforces the operator-XOR-plugin invariant.
func (r Rule) Validate() error {
	if r.Operator != "" && r.Plugin != "" {
		return fmt.Errorf("rule specifies both operator %q and plugin %q, exactly one is allowed", r.Operator, r.Plugin)
	}
	if r.Operator == "" && r.Plugin == "" {
		return fmt.Errorf("rule specifies neither operator nor plugin")
	}
	return nil
}

// Name returns the operator or plugin name, whichever is set, for
// diagnostics and fingerprinting.
func (r Rule) Name() string {
	if r.Operator != "" {
		return r.Operator
	}
	return r.Plugin
}

// Validator is a named rule bundle applied to a file set.
type Validator struct {
	Name                string        `yaml:"name" json:"name"`
	Type                ValidatorType `yaml:"type" json:"type"`
	Rules               []Rule        `yaml:"rules" json:"rules"`
	FilePattern         string        `yaml:"filePattern,omitempty" json:"filePattern,omitempty"`
	ConfidenceThreshold *float64      `yaml:"confidenceThreshold,omitempty" json:"confidenceThreshold,omitempty"`

	compiledPattern *regexp.Regexp
}

// Validate checks the validator's own shape, independent of its rules'
// evaluator resolution (that happens at dispatch time).
func (v *Validator) Validate() error {
	switch v.Type {
	case ValidatorTypeContent, ValidatorTypeStructure, ValidatorTypeNaming:
	default:
		return fmt.Errorf("validator %q: unknown type %q", v.Name, v.Type)
	}
	if v.Name == "" {
		return fmt.Errorf("validator has no name")
	}
	for i, r := range v.Rules {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("validator %q rule #%d: %w", v.Name, i, err)
		}
	}
	if v.FilePattern != "" {
		re, err := regexp.Compile(v.FilePattern)
		if err != nil {
			return fmt.Errorf("validator %q: invalid filePattern %q: %w", v.Name, v.FilePattern, err)
		}
		v.compiledPattern = re
	}
	return nil
}

// CompiledPattern returns the validator's compiled filePattern, or nil if
// none was configured. Validate must be called first.
func (v *Validator) CompiledPattern() *regexp.Regexp {
	return v.compiledPattern
}

// MatchesFile reports whether path is a target of this validator.
func (v *Validator) MatchesFile(path string) bool {
	if v.compiledPattern == nil {
		return true
	}
	return v.compiledPattern.MatchString(path)
}

// Threshold resolves the effective confidence threshold for this
// validator, falling back to def when unset.
func (v *Validator) Threshold(def float64) float64 {
	if v.ConfidenceThreshold != nil {
		return *v.ConfidenceThreshold
	}
	return def
}

// SeverityBuckets partitions a profile's validator references by
// validation level for report weighting.
type SeverityBuckets struct {
	Critical    []string `yaml:"critical,omitempty" json:"critical,omitempty"`
	Important   []string `yaml:"important,omitempty" json:"important,omitempty"`
	Recommended []string `yaml:"recommended,omitempty" json:"recommended,omitempty"`
}

// Profile is an ordered list of validator references plus optional
// severity-bucket metadata.
type Profile struct {
	Name              string           `yaml:"name" json:"name"`
	Description       string           `yaml:"description,omitempty" json:"description,omitempty"`
	Validators        []string         `yaml:"validators" json:"validators"`
	ValidationLevels  *SeverityBuckets `yaml:"validationLevels,omitempty" json:"validationLevels,omitempty"`
}
