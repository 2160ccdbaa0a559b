// internal/rules/errors.go
package rules

import (
	"fmt"

	"github.com/solatis/dosecalc/internal/types"
)

// ConditionError reports a condition that does not conform to the grammar.
// errors.Is matches types.ErrConditionParse and, when set, the specific cause.
type ConditionError struct {
	Condition string
	Offset    int // byte offset of the offending token, -1 if not positional
	Msg       string
	Err       error
}

func (e *ConditionError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("condition %q: %s at offset %d", e.Condition, e.Msg, e.Offset)
	}
	return fmt.Sprintf("condition %q: %s", e.Condition, e.Msg)
}

func (e *ConditionError) Unwrap() []error {
	if e.Err == nil {
		return []error{types.ErrConditionParse}
	}
	return []error{types.ErrConditionParse, e.Err}
}

// FormulaError reports a malformed or unsupported formula.
type FormulaError struct {
	Formula string
	Msg     string
	Err     error
}

func (e *FormulaError) Error() string {
	return fmt.Sprintf("formula %q: %s", e.Formula, e.Msg)
}

func (e *FormulaError) Unwrap() []error {
	if e.Err == nil {
		return []error{types.ErrFormulaParse}
	}
	return []error{types.ErrFormulaParse, e.Err}
}

// RuleError attaches rule identity to a condition or formula failure.
type RuleError struct {
	RuleID types.RuleID
	DrugID types.DrugID
	Err    error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %s (drug %s): %v", e.RuleID, e.DrugID, e.Err)
}

func (e *RuleError) Unwrap() error {
	return e.Err
}
