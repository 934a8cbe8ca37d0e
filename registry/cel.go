package registry

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/valence-dev/valence/models"
)

// celEnv is the shared CEL environment for the "cel" operator: every
// rule's expression sees the same three variables regardless of
// validator type, with unused ones left at their zero value.
var celEnv = sync.OnceValues(func() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("content", cel.StringType),
		cel.Variable("path", cel.StringType),
		cel.Variable("lines", cel.IntType),
	)
})

var celProgramCache sync.Map // map[string]cel.Program

func compileCEL(expr string) (cel.Program, error) {
	if cached, ok := celProgramCache.Load(expr); ok {
		return cached.(cel.Program), nil
	}

	env, err := celEnv()
	if err != nil {
		return nil, fmt.Errorf("cel: environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("cel: invalid expression %q: %w", expr, issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("cel: program construction: %w", err)
	}

	celProgramCache.Store(expr, prg)
	return prg, nil
}

// celOperator evaluates a boolean CEL expression (rule.Value) against
// the payload, supplementing the built-in regex operators for
// conditions that aren't expressible as a single pattern — e.g.
// "content.size() < 500 && !content.contains('TODO')".
func celOperator(payload models.Payload, rule models.Rule) (bool, error) {
	expr, err := valueAsString(rule.Value)
	if err != nil {
		return false, fmt.Errorf("cel: %w", err)
	}

	prg, err := compileCEL(expr)
	if err != nil {
		return false, err
	}

	content := payload.Content
	path := ""
	switch payload.Kind() {
	case models.PayloadFileName:
		path = payload.FileName
	case models.PayloadPathList:
		path = strings.Join(payload.Paths, ",")
	}

	out, _, err := prg.Eval(map[string]any{
		"content": content,
		"path":    path,
		"lines":   strings.Count(content, "\n") + boolToInt(content != ""),
	})
	if err != nil {
		return false, fmt.Errorf("cel: evaluation error: %w", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("cel: expression %q did not evaluate to a boolean (got %s)", expr, strconv.Quote(fmt.Sprintf("%v", out.Value())))
	}
	return result, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
