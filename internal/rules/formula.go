// internal/rules/formula.go
package rules

import (
	"fmt"
	"math"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	exprparser "github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"
	"github.com/solatis/dosecalc/internal/types"
)

/*
 * Dosage formula evaluation.
 *
 * Formulas are parsed by expr and then checked against a whitelist before
 * compilation: numeric literals, Age, Weight, unary +/-, binary + - * /.
 * Parentheses are accepted since they leave no node in the tree. Anything
 * else (comparisons, logic, calls, member access, other names) is rejected
 * so a formula can never produce a non-numeric result.
 *
 * Division always yields float64 in expr. A non-finite result (division by
 * zero) is reported as a FormulaError rather than returned as a dose.
 *
 * The raw result is tagged by types.NewDose: 0 and -1 become the
 * NotApplicable and ConsultPhysician doses.
 */

// Formula is a validated, compiled dosage formula.
type Formula struct {
	Source  string
	program *vm.Program
}

// CompileFormula parses and validates a formula.
func CompileFormula(src string) (*Formula, error) {
	if strings.TrimSpace(src) == "" {
		return nil, &FormulaError{Formula: src, Msg: "formula is empty"}
	}

	tree, err := exprparser.Parse(src)
	if err != nil {
		return nil, &FormulaError{Formula: src, Msg: err.Error()}
	}
	if err := checkArithmetic(tree.Node); err != nil {
		return nil, &FormulaError{Formula: src, Msg: err.Error()}
	}

	program, err := expr.Compile(src, expr.Env(formulaEnv(0, 0)))
	if err != nil {
		return nil, &FormulaError{Formula: src, Msg: err.Error()}
	}
	return &Formula{Source: src, program: program}, nil
}

// Eval runs the formula with age already converted into the rule's unit.
func (f *Formula) Eval(age int, weight float64) (types.Dose, error) {
	out, err := expr.Run(f.program, formulaEnv(float64(age), weight))
	if err != nil {
		return types.Dose{}, &FormulaError{Formula: f.Source, Msg: err.Error()}
	}

	var v float64
	switch n := out.(type) {
	case float64:
		v = n
	case int:
		v = float64(n)
	case int64:
		v = float64(n)
	default:
		return types.Dose{}, &FormulaError{Formula: f.Source, Msg: fmt.Sprintf("result %v is not a number", out)}
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return types.Dose{}, &FormulaError{Formula: f.Source, Msg: "result is not finite"}
	}
	return types.NewDose(v), nil
}

// EvaluateFormula converts the patient's age into ruleAgeUnit and evaluates
// formula against it.
func EvaluateFormula(formula string, age int, ageUnit, ruleAgeUnit types.AgeUnit, weight float64) (types.Dose, error) {
	f, err := CompileFormula(formula)
	if err != nil {
		return types.Dose{}, err
	}
	converted, err := ConvertAge(age, ageUnit, ruleAgeUnit)
	if err != nil {
		return types.Dose{}, err
	}
	return f.Eval(converted, weight)
}

func formulaEnv(age, weight float64) map[string]any {
	return map[string]any{
		"Age":    age,
		"Weight": weight,
	}
}

// checkArithmetic walks the expr tree and rejects every node outside the
// formula whitelist.
func checkArithmetic(node ast.Node) error {
	switch n := node.(type) {
	case *ast.IntegerNode, *ast.FloatNode:
		return nil
	case *ast.IdentifierNode:
		if n.Value != "Age" && n.Value != "Weight" {
			return fmt.Errorf("unknown variable %q (only Age and Weight are allowed)", n.Value)
		}
		return nil
	case *ast.UnaryNode:
		if n.Operator != "-" && n.Operator != "+" {
			return fmt.Errorf("operator %q is not allowed in a formula", n.Operator)
		}
		return checkArithmetic(n.Node)
	case *ast.BinaryNode:
		switch n.Operator {
		case "+", "-", "*", "/":
		default:
			return fmt.Errorf("operator %q is not allowed in a formula", n.Operator)
		}
		if err := checkArithmetic(n.Left); err != nil {
			return err
		}
		return checkArithmetic(n.Right)
	default:
		return fmt.Errorf("unsupported expression %T", node)
	}
}
