// Package dispatch resolves one rule to an evaluator and normalizes its
// result.
package dispatch

import (
	"fmt"

	"github.com/valence-dev/valence/models"
	"github.com/valence-dev/valence/plugins"
	"github.com/valence-dev/valence/registry"
)

// Dispatcher resolves and invokes the evaluator for one rule.
type Dispatcher struct {
	registry *registry.Registry
	plugins  *plugins.Loader
}

func New(reg *registry.Registry, loader *plugins.Loader) *Dispatcher {
	return &Dispatcher{registry: reg, plugins: loader}
}

// Dispatch runs rule against payload and returns a normalized result.
// The second return value reports a validator-fatal condition (an
// unknown operator); all other failure modes are carried inside the
// returned EvaluatorResult.Passed=false.
func (d *Dispatcher) Dispatch(payload models.Payload, rule models.Rule, ctx models.EvaluatorContext) (models.EvaluatorResult, error) {
	var eval models.Evaluator

	switch {
	case rule.IsPlugin():
		resolved, err := d.plugins.Resolve(rule.Plugin)
		if err != nil {
			return models.EvaluatorResult{
				Passed:  false,
				Message: fmt.Sprintf("Plugin %s not found", rule.Plugin),
			}, nil
		}
		eval = resolved

	case rule.IsOperator():
		resolved, ok := d.registry.Lookup(rule.Operator)
		if !ok {
			return models.EvaluatorResult{}, &models.UnknownOperatorError{Operator: rule.Operator}
		}
		eval = resolved

	default:
		return models.EvaluatorResult{}, fmt.Errorf("rule has neither operator nor plugin set")
	}

	result, err := d.safeEvaluate(eval, payload, rule, ctx)
	if err != nil {
		return models.EvaluatorResult{
			Passed:  false,
			Message: fmt.Sprintf("Plugin execution error: %s", err.Error()),
		}, nil
	}

	if rule.IsOperator() && result.Message == "" {
		message := rule.Message
		if message == "" {
			message = fmt.Sprintf("Failed %s check", rule.Operator)
		}
		result.Message = message
	}

	return result, nil
}

// safeEvaluate converts a panicking evaluator into an error, since
// plugin-supplied code (interpreted or not) is not trusted to be as
// disciplined as built-in operators.
func (d *Dispatcher) safeEvaluate(eval models.Evaluator, payload models.Payload, rule models.Rule, ctx models.EvaluatorContext) (result models.EvaluatorResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return eval.Evaluate(payload, rule, ctx)
}
