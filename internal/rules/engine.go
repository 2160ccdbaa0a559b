// internal/rules/engine.go
package rules

import (
	"fmt"
	"io"
	"math"

	"github.com/sirupsen/logrus"
	"github.com/solatis/dosecalc/internal/types"
)

/*
 * Rule selection.
 *
 * Select walks an ordered rule list and returns the result of the first
 * rule whose condition holds. Later rules are never looked at, even when
 * they would also match or are malformed.
 *
 * Outcomes:
 *   - match: *CalculationResult with the rule's unit, frequency and route
 *   - no match: nil result, nil error
 *   - malformed condition/formula on a visited rule: *RuleError, selection aborts
 *
 * The engine holds no state besides its logger and is safe for concurrent
 * use as long as callers do not mutate the rule slice during a call.
 */

// Engine selects and evaluates dosing rules.
type Engine struct {
	log logrus.FieldLogger
}

// NewEngine creates an engine logging to log. A nil logger discards output.
func NewEngine(log logrus.FieldLogger) *Engine {
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}
	return &Engine{log: log}
}

// Select returns the result of the first rule whose condition matches the
// patient, or nil when none does.
func (e *Engine) Select(rules []types.Rule, patient types.PatientInput) (*types.CalculationResult, error) {
	if err := ValidatePatient(patient); err != nil {
		return nil, err
	}

	for _, rule := range rules {
		log := e.log.WithFields(logrus.Fields{"rule_id": rule.ID, "drug_id": rule.DrugID})

		cond, err := ParseCondition(rule.Condition)
		if err != nil {
			log.WithError(err).Warn("rule condition rejected")
			return nil, &RuleError{RuleID: rule.ID, DrugID: rule.DrugID, Err: err}
		}
		unit := cond.AgeUnit()
		age, err := ConvertAge(patient.Age, patient.AgeUnit, unit)
		if err != nil {
			return nil, err
		}

		if !cond.Eval(float64(age), patient.Weight) {
			log.WithField("condition", rule.Condition).Debug("condition not met, skipping rule")
			continue
		}

		formula, err := CompileFormula(rule.Formula)
		if err != nil {
			log.WithError(err).Warn("rule formula rejected")
			return nil, &RuleError{RuleID: rule.ID, DrugID: rule.DrugID, Err: err}
		}
		dose, err := formula.Eval(age, patient.Weight)
		if err != nil {
			log.WithError(err).Warn("rule formula failed")
			return nil, &RuleError{RuleID: rule.ID, DrugID: rule.DrugID, Err: err}
		}

		log.WithFields(logrus.Fields{
			"age":      age,
			"age_unit": unit,
			"dose":     dose.String(),
		}).Debug("rule matched")
		return resultFor(rule, dose), nil
	}

	e.log.WithField("rules", len(rules)).Debug("no rule matched")
	return nil, nil
}

// SelectCompiled is Select over rules compiled ahead of time.
func (e *Engine) SelectCompiled(rules []*CompiledRule, patient types.PatientInput) (*types.CalculationResult, error) {
	if err := ValidatePatient(patient); err != nil {
		return nil, err
	}
	for _, cr := range rules {
		result, err := cr.Evaluate(patient)
		if err != nil {
			return nil, err
		}
		if result != nil {
			e.log.WithFields(logrus.Fields{"rule_id": cr.Rule.ID, "drug_id": cr.Rule.DrugID}).Debug("rule matched")
			return result, nil
		}
	}
	return nil, nil
}

// ValidatePatient rejects negative or non-finite inputs and unknown age units.
func ValidatePatient(p types.PatientInput) error {
	if p.Age < 0 {
		return fmt.Errorf("%w: age %d is negative", types.ErrInvalidPatient, p.Age)
	}
	if math.IsNaN(p.Weight) || math.IsInf(p.Weight, 0) || p.Weight < 0 {
		return fmt.Errorf("%w: weight %v", types.ErrInvalidPatient, p.Weight)
	}
	if !knownAgeUnit(p.AgeUnit) {
		return fmt.Errorf("%w: %q", types.ErrUnsupportedUnit, p.AgeUnit)
	}
	return nil
}
