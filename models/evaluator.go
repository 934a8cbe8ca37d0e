package models

import "context"

// EvaluatorContext carries the ambient information an evaluator may need
// beyond its payload and rule: any run-scoped values (currently just a
// context.Context for cancellation).
type EvaluatorContext struct {
	Ctx context.Context
}

// EvaluatorResult is the normalized outcome of one evaluator invocation.
// Built-in operators return a plain bool, which the dispatcher lifts into
// this shape.
type EvaluatorResult struct {
	Passed     bool
	Message    string
	Violations []Violation
}

// Evaluator is the uniform contract every rule evaluator satisfies,
// whether built-in or plugin-supplied.
type Evaluator interface {
	Evaluate(payload Payload, rule Rule, ctx EvaluatorContext) (EvaluatorResult, error)
}

// EvaluatorFunc adapts a plain function to the Evaluator interface.
type EvaluatorFunc func(payload Payload, rule Rule, ctx EvaluatorContext) (EvaluatorResult, error)

func (f EvaluatorFunc) Evaluate(payload Payload, rule Rule, ctx EvaluatorContext) (EvaluatorResult, error) {
	return f(payload, rule, ctx)
}

// BoolEvaluatorFunc adapts a built-in operator's (payload, rule) -> bool
// signature to the Evaluator interface. The lifted result's Message is
// filled in by the dispatcher, not here, since only the dispatcher knows
// the rule's own Message override and the operator's name.
type BoolEvaluatorFunc func(payload Payload, rule Rule) (bool, error)

func (f BoolEvaluatorFunc) Evaluate(payload Payload, rule Rule, _ EvaluatorContext) (EvaluatorResult, error) {
	ok, err := f(payload, rule)
	if err != nil {
		return EvaluatorResult{}, err
	}
	return EvaluatorResult{Passed: ok}, nil
}
