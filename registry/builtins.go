package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/valence-dev/valence/models"
)

// builtinOperators returns every predefined operator keyed by name. All
// are synchronous except fileExists, which performs a filesystem stat.
func builtinOperators() map[string]models.Evaluator {
	return map[string]models.Evaluator{
		"mustContain":    models.BoolEvaluatorFunc(mustContain),
		"matchesPattern": models.BoolEvaluatorFunc(matchesPattern),
		"fileExists":     models.BoolEvaluatorFunc(fileExists),
		"hasExtension":   models.BoolEvaluatorFunc(hasExtension),
		"cel":            models.BoolEvaluatorFunc(celOperator),
	}
}

// patternCache compiles each rule's pattern once and reuses it across
// files rather than recompiling per file evaluated.
var patternCache sync.Map // map[string]*regexp.Regexp

func compilePattern(key, expr string) (*regexp.Regexp, error) {
	if cached, ok := patternCache.Load(key); ok {
		return cached.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", expr, err)
	}
	patternCache.Store(key, re)
	return re, nil
}

func valueAsString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected a string value, got %T", v)
	}
	return s, nil
}

func valueAsStringSlice(v any) ([]string, error) {
	switch t := v.(type) {
	case []string:
		return t, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected a list of strings, element %T is not a string", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a list of strings, got %T", v)
	}
}

// mustContain performs a case-insensitive regex search over file
// content; true iff the pattern matched anywhere.
func mustContain(payload models.Payload, rule models.Rule) (bool, error) {
	if payload.Kind() != models.PayloadContent {
		return false, fmt.Errorf("mustContain requires content payload")
	}
	pattern, err := valueAsString(rule.Value)
	if err != nil {
		return false, fmt.Errorf("mustContain: %w", err)
	}
	re, err := compilePattern("mustContain:ci:"+pattern, "(?i)"+pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(payload.Content), nil
}

// matchesPattern performs a multiline, global regex search; true iff
// the pattern matched anywhere in the content.
func matchesPattern(payload models.Payload, rule models.Rule) (bool, error) {
	if payload.Kind() != models.PayloadContent {
		return false, fmt.Errorf("matchesPattern requires content payload")
	}
	pattern, err := valueAsString(rule.Value)
	if err != nil {
		return false, fmt.Errorf("matchesPattern: %w", err)
	}
	re, err := compilePattern("matchesPattern:ml:"+pattern, "(?m)"+pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(payload.Content), nil
}

// fileExists reports whether the filesystem has an accessible entry at
// the given path. The path is taken from the rule's value when set
// (allowing a structure validator to assert a specific file's
// existence); otherwise it falls back to a naming payload's file name.
func fileExists(payload models.Payload, rule models.Rule) (bool, error) {
	path := ""
	if rule.Value != nil {
		p, err := valueAsString(rule.Value)
		if err != nil {
			return false, fmt.Errorf("fileExists: %w", err)
		}
		path = p
	} else if payload.Kind() == models.PayloadFileName {
		path = payload.FileName
	} else {
		return false, fmt.Errorf("fileExists requires a path value or a naming payload")
	}

	_, err := os.Stat(path)
	return err == nil, nil
}

// hasExtension reports whether the payload's file name has one of the
// given (case-insensitive) extensions.
func hasExtension(payload models.Payload, rule models.Rule) (bool, error) {
	if payload.Kind() != models.PayloadFileName {
		return false, fmt.Errorf("hasExtension requires naming payload")
	}
	extensions, err := valueAsStringSlice(rule.Value)
	if err != nil {
		return false, fmt.Errorf("hasExtension: %w", err)
	}

	actual := strings.ToLower(filepath.Ext(payload.FileName))
	for _, ext := range extensions {
		want := strings.ToLower(ext)
		if !strings.HasPrefix(want, ".") {
			want = "." + want
		}
		if actual == want {
			return true, nil
		}
	}
	return false, nil
}
