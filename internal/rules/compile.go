// internal/rules/compile.go
package rules

import (
	"github.com/solatis/dosecalc/internal/types"
)

/*
 * Rule compilation and validation.
 *
 * Compiles types.Rule to CompiledRule with a parsed condition, the
 * condition's age unit, and a validated formula.
 *
 * Compilation is how callers vet rules at authoring time (store writes,
 * "dosecalc rules validate"). Selection does not require it: Engine.Select
 * parses lazily and in order, so a malformed formula on a rule that never
 * matches does not fail the call, and a malformed condition fails it only
 * once selection reaches that rule.
 */

// CompiledRule is fully pre-processed and ready for evaluation.
type CompiledRule struct {
	Rule      types.Rule
	Condition *Condition
	AgeUnit   types.AgeUnit
	Formula   *Formula
}

// Compile validates a rule's condition and formula.
// Errors are *RuleError wrapping *ConditionError or *FormulaError.
func Compile(rule types.Rule) (*CompiledRule, error) {
	cond, err := ParseCondition(rule.Condition)
	if err != nil {
		return nil, &RuleError{RuleID: rule.ID, DrugID: rule.DrugID, Err: err}
	}
	formula, err := CompileFormula(rule.Formula)
	if err != nil {
		return nil, &RuleError{RuleID: rule.ID, DrugID: rule.DrugID, Err: err}
	}
	return &CompiledRule{
		Rule:      rule,
		Condition: cond,
		AgeUnit:   cond.AgeUnit(),
		Formula:   formula,
	}, nil
}

// CompileAll compiles rules in order and stops at the first failure.
func CompileAll(rules []types.Rule) ([]*CompiledRule, error) {
	compiled := make([]*CompiledRule, 0, len(rules))
	for _, r := range rules {
		cr, err := Compile(r)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, cr)
	}
	return compiled, nil
}

// Evaluate returns the rule's result when its condition holds, or nil.
func (cr *CompiledRule) Evaluate(patient types.PatientInput) (*types.CalculationResult, error) {
	age, err := ConvertAge(patient.Age, patient.AgeUnit, cr.AgeUnit)
	if err != nil {
		return nil, err
	}
	if !cr.Condition.Eval(float64(age), patient.Weight) {
		return nil, nil
	}
	dose, err := cr.Formula.Eval(age, patient.Weight)
	if err != nil {
		return nil, &RuleError{RuleID: cr.Rule.ID, DrugID: cr.Rule.DrugID, Err: err}
	}
	return resultFor(cr.Rule, dose), nil
}

func resultFor(rule types.Rule, dose types.Dose) *types.CalculationResult {
	return &types.CalculationResult{
		Dose:      dose,
		Unit:      rule.Unit,
		Frequency: rule.Frequency,
		Route:     rule.Route,
	}
}
