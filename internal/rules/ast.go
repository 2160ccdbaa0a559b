// internal/rules/ast.go
package rules

import (
	"strconv"
	"strings"

	"github.com/solatis/dosecalc/internal/types"
)

/*
 * Condition AST.
 *
 * A condition is a flat chain of atoms joined by && / ||. There is no
 * grouping and no precedence: Eval folds the chain strictly left to right,
 * so "A || B && C" means "(A || B) && C". A range atom is a single node and
 * behaves like a parenthesized "v >= min && v <= max".
 *
 * The same AST backs the machine grammar (parser.go, String) and the
 * human vocabulary in internal/localize, which only swaps token spellings.
 */

// Variable is a patient parameter a condition can test.
type Variable int

const (
	VarAge Variable = iota
	VarWeight
)

func (v Variable) String() string {
	if v == VarWeight {
		return "Weight"
	}
	return "Age"
}

// Operator is the comparison an atom performs.
type Operator int

const (
	OpLt Operator = iota
	OpGt
	OpLte
	OpGte
	OpEq
	OpRange
)

func (op Operator) String() string {
	switch op {
	case OpLt:
		return "<"
	case OpGt:
		return ">"
	case OpLte:
		return "<="
	case OpGte:
		return ">="
	case OpEq:
		return "="
	case OpRange:
		return "at"
	default:
		return "?"
	}
}

// Unit is the unit token attached to an atom. UnitNone means the atom was
// written without one.
type Unit string

const (
	UnitNone  Unit = ""
	UnitYear  Unit = "year"
	UnitMonth Unit = "month"
	UnitKg    Unit = "Kg"
)

// Logic joins an atom to the running result of the chain.
type Logic int

const (
	LogicAnd Logic = iota
	LogicOr
)

func (l Logic) String() string {
	if l == LogicOr {
		return "||"
	}
	return "&&"
}

// Atom is one comparison or inclusive range test.
type Atom struct {
	Var   Variable
	Op    Operator
	Value float64 // comparison operand, or lower bound for OpRange
	Max   float64 // upper bound, OpRange only
	Unit  Unit
}

// Term is an atom with the connector that precedes it. Logic of the first
// term in a condition is ignored.
type Term struct {
	Logic Logic
	Atom  Atom
}

// Condition is a parsed condition chain.
type Condition struct {
	Terms []Term
}

// AgeUnit reports the age unit the condition is written in. Conditions
// without an explicit unit are read in years.
func (c *Condition) AgeUnit() types.AgeUnit {
	for _, t := range c.Terms {
		switch t.Atom.Unit {
		case UnitMonth:
			return types.AgeUnitMonth
		case UnitYear:
			return types.AgeUnitYear
		}
	}
	return types.AgeUnitYear
}

// Eval evaluates the chain with age already converted into AgeUnit().
func (c *Condition) Eval(age, weight float64) bool {
	if len(c.Terms) == 0 {
		return false
	}
	acc := c.Terms[0].Atom.Eval(age, weight)
	for _, t := range c.Terms[1:] {
		v := t.Atom.Eval(age, weight)
		if t.Logic == LogicOr {
			acc = acc || v
		} else {
			acc = acc && v
		}
	}
	return acc
}

// Eval tests the atom against the bound variable.
func (a Atom) Eval(age, weight float64) bool {
	x := age
	if a.Var == VarWeight {
		x = weight
	}
	switch a.Op {
	case OpLt:
		return x < a.Value
	case OpGt:
		return x > a.Value
	case OpLte:
		return x <= a.Value
	case OpGte:
		return x >= a.Value
	case OpEq:
		return x == a.Value
	case OpRange:
		return x >= a.Value && x <= a.Max
	default:
		return false
	}
}

// UnitAllowed reports whether u may follow variable v.
func UnitAllowed(v Variable, u Unit) bool {
	switch u {
	case UnitNone:
		return true
	case UnitYear, UnitMonth:
		return v == VarAge
	case UnitKg:
		return v == VarWeight
	default:
		return false
	}
}

// FormatNumber renders a numeric operand the way rules are written:
// integers without a decimal point, everything else in shortest form.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// String renders the atom in the machine grammar.
func (a Atom) String() string {
	var b strings.Builder
	b.WriteString(a.Var.String())
	b.WriteByte(' ')
	if a.Op == OpRange {
		b.WriteString("at [")
		b.WriteString(FormatNumber(a.Value))
		b.WriteByte(',')
		b.WriteString(FormatNumber(a.Max))
		b.WriteByte(']')
	} else {
		b.WriteString(a.Op.String())
		b.WriteByte(' ')
		b.WriteString(FormatNumber(a.Value))
	}
	if a.Unit != UnitNone {
		b.WriteByte(' ')
		b.WriteString(string(a.Unit))
	}
	return b.String()
}

// String renders the condition in the machine grammar.
func (c *Condition) String() string {
	var b strings.Builder
	for i, t := range c.Terms {
		if i > 0 {
			b.WriteByte(' ')
			b.WriteString(t.Logic.String())
			b.WriteByte(' ')
		}
		b.WriteString(t.Atom.String())
	}
	return b.String()
}
