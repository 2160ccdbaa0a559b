// internal/rules/parser.go
package rules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/solatis/dosecalc/internal/types"
)

/*
 * Recursive-descent parser for the machine condition grammar.
 *
 *   condition := atom (("&&" | "||") atom)*
 *   atom      := var op number [unit]
 *              | var "at" "[" number "," number "]" [unit]
 *   var       := "Age" | "Weight"
 *   op        := "<" | ">" | "<=" | ">=" | "=" | "=="
 *   unit      := "year" | "month"     (Age)
 *              | "Kg"                 (Weight)
 *
 * Keywords match case-insensitively and year/month accept a plural "s".
 * Validation done here rather than at evaluation time:
 *   - a unit must belong to its variable (no "Weight < 3 year")
 *   - year and month may not both appear in one condition
 *   - range bounds must be ordered (min <= max)
 */

// ParseCondition parses a machine condition string.
func ParseCondition(src string) (*Condition, error) {
	if strings.TrimSpace(src) == "" {
		return nil, &ConditionError{Condition: src, Offset: -1, Msg: "condition is empty", Err: types.ErrEmptyCondition}
	}

	toks, lerr := lex(src)
	if lerr != nil {
		return nil, &ConditionError{Condition: src, Offset: lerr.pos, Msg: lerr.msg}
	}

	p := &parser{src: src, toks: toks}
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	return cond, nil
}

type parser struct {
	src  string
	toks []token
	pos  int
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) errorf(t token, format string, args ...any) *ConditionError {
	return &ConditionError{Condition: p.src, Offset: t.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) parseCondition() (*Condition, error) {
	cond := &Condition{}

	atom, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	cond.Terms = append(cond.Terms, Term{Atom: atom})

	for {
		t := p.next()
		var logic Logic
		switch t.kind {
		case tokEOF:
			if err := p.checkAgeUnits(cond); err != nil {
				return nil, err
			}
			return cond, nil
		case tokAnd:
			logic = LogicAnd
		case tokOr:
			logic = LogicOr
		default:
			return nil, p.errorf(t, "expected && or || but found %q", t.text)
		}

		atom, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		cond.Terms = append(cond.Terms, Term{Logic: logic, Atom: atom})
	}
}

func (p *parser) parseAtom() (Atom, error) {
	t := p.next()
	if t.kind != tokIdent {
		return Atom{}, p.errorf(t, "expected Age or Weight but found %s", describe(t))
	}

	var atom Atom
	switch {
	case strings.EqualFold(t.text, "Age"):
		atom.Var = VarAge
	case strings.EqualFold(t.text, "Weight"):
		atom.Var = VarWeight
	default:
		return Atom{}, p.errorf(t, "unknown variable %q", t.text)
	}

	t = p.next()
	switch {
	case t.kind == tokOp:
		op, ok := parseOperator(t.text)
		if !ok {
			return Atom{}, p.errorf(t, "unknown operator %q", t.text)
		}
		atom.Op = op
		v, err := p.parseNumber()
		if err != nil {
			return Atom{}, err
		}
		atom.Value = v
	case t.kind == tokIdent && strings.EqualFold(t.text, "at"):
		atom.Op = OpRange
		if err := p.expect(tokLBrack); err != nil {
			return Atom{}, err
		}
		lo, err := p.parseNumber()
		if err != nil {
			return Atom{}, err
		}
		if err := p.expect(tokComma); err != nil {
			return Atom{}, err
		}
		hi, err := p.parseNumber()
		if err != nil {
			return Atom{}, err
		}
		closing := p.peek()
		if err := p.expect(tokRBrack); err != nil {
			return Atom{}, err
		}
		if lo > hi {
			return Atom{}, p.errorf(closing, "range lower bound %s exceeds upper bound %s", FormatNumber(lo), FormatNumber(hi))
		}
		atom.Value, atom.Max = lo, hi
	default:
		return Atom{}, p.errorf(t, "expected comparison operator or 'at' but found %s", describe(t))
	}

	if t := p.peek(); t.kind == tokIdent {
		u, ok := parseUnit(t.text)
		if !ok {
			return Atom{}, p.errorf(t, "unknown unit %q", t.text)
		}
		if !UnitAllowed(atom.Var, u) {
			return Atom{}, p.errorf(t, "unit %s is not valid for %s", u, atom.Var)
		}
		atom.Unit = u
		p.next()
	}

	return atom, nil
}

func (p *parser) parseNumber() (float64, error) {
	t := p.next()
	if t.kind != tokNumber {
		return 0, p.errorf(t, "expected number but found %s", describe(t))
	}
	f, err := strconv.ParseFloat(t.text, 64)
	if err != nil {
		return 0, p.errorf(t, "invalid number %q", t.text)
	}
	return f, nil
}

func (p *parser) expect(kind tokenKind) error {
	t := p.next()
	if t.kind != kind {
		return p.errorf(t, "expected %s but found %s", kind, describe(t))
	}
	return nil
}

// checkAgeUnits enforces one age unit per condition.
func (p *parser) checkAgeUnits(cond *Condition) error {
	var seen Unit
	for _, t := range cond.Terms {
		u := t.Atom.Unit
		if u != UnitYear && u != UnitMonth {
			continue
		}
		if seen != UnitNone && seen != u {
			return &ConditionError{
				Condition: p.src,
				Offset:    -1,
				Msg:       "year and month cannot be mixed in one condition",
				Err:       types.ErrMixedAgeUnits,
			}
		}
		seen = u
	}
	return nil
}

func parseOperator(s string) (Operator, bool) {
	switch s {
	case "<":
		return OpLt, true
	case ">":
		return OpGt, true
	case "<=":
		return OpLte, true
	case ">=":
		return OpGte, true
	case "=", "==":
		return OpEq, true
	default:
		return 0, false
	}
}

func parseUnit(s string) (Unit, bool) {
	switch strings.ToLower(s) {
	case "year", "years":
		return UnitYear, true
	case "month", "months":
		return UnitMonth, true
	case "kg":
		return UnitKg, true
	default:
		return UnitNone, false
	}
}

func describe(t token) string {
	if t.kind == tokEOF {
		return t.kind.String()
	}
	return fmt.Sprintf("%q", t.text)
}
