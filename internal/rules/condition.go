// internal/rules/condition.go
package rules

import (
	"github.com/solatis/dosecalc/internal/types"
)

/*
 * Condition evaluation.
 *
 * Evaluation flow:
 *   1. Parse the condition (grammar and unit checks, see parser.go)
 *   2. Take the condition's age unit (year when none is written)
 *   3. Convert the patient's age into that unit (month -> year truncates)
 *   4. Fold the atom chain left to right with Age and Weight bound
 *
 * Units carry no meaning past step 2: Weight is always kilograms and Age
 * has already been converted.
 */

// EvaluateCondition reports whether condition holds for the patient.
// Returns a *ConditionError for text that does not parse.
func EvaluateCondition(condition string, age int, ageUnit types.AgeUnit, weight float64) (bool, error) {
	cond, err := ParseCondition(condition)
	if err != nil {
		return false, err
	}
	return cond.Matches(types.PatientInput{Age: age, AgeUnit: ageUnit, Weight: weight})
}

// Matches evaluates the parsed condition for a patient.
func (c *Condition) Matches(patient types.PatientInput) (bool, error) {
	age, err := ConvertAge(patient.Age, patient.AgeUnit, c.AgeUnit())
	if err != nil {
		return false, err
	}
	return c.Eval(float64(age), patient.Weight), nil
}
