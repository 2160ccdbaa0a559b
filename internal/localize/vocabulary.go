// Package localize translates between machine condition strings and the
// human-editable condition rows shown by the rule editor.
package localize

import (
	"sort"

	"github.com/solatis/dosecalc/internal/rules"
)

// Vocabulary holds the human spelling of every machine token. It is passed
// to NewLocalizer explicitly; there is no package-level default in use.
type Vocabulary struct {
	Variables   map[rules.Variable]string
	Comparisons map[rules.Operator]string
	Units       map[rules.Unit]string
	Logic       map[rules.Logic]string

	// RangeSeparator joins range bounds in human text ("3-14").
	RangeSeparator string
}

// DefaultVocabulary returns the Chinese editor vocabulary.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Variables: map[rules.Variable]string{
			rules.VarAge:    "年龄",
			rules.VarWeight: "体重",
		},
		Comparisons: map[rules.Operator]string{
			rules.OpLt:    "小于",
			rules.OpGt:    "大于",
			rules.OpLte:   "小于等于",
			rules.OpGte:   "大于等于",
			rules.OpEq:    "等于",
			rules.OpRange: "范围在",
		},
		Units: map[rules.Unit]string{
			rules.UnitYear:  "岁",
			rules.UnitMonth: "月",
			rules.UnitKg:    "Kg",
		},
		Logic: map[rules.Logic]string{
			rules.LogicAnd: "且",
			rules.LogicOr:  "或",
		},
		RangeSeparator: "-",
	}
}

// reverse lookups, built once per Localizer
type lexicon struct {
	variables   map[string]rules.Variable
	comparisons map[string]rules.Operator
	units       map[string]rules.Unit
	logic       map[string]rules.Logic
	// connectors in match order, longest first
	connectors []string
}

func newLexicon(v Vocabulary) lexicon {
	lx := lexicon{
		variables:   make(map[string]rules.Variable, len(v.Variables)),
		comparisons: make(map[string]rules.Operator, len(v.Comparisons)),
		units:       make(map[string]rules.Unit, len(v.Units)),
		logic:       make(map[string]rules.Logic, len(v.Logic)),
	}
	for k, s := range v.Variables {
		lx.variables[s] = k
	}
	for k, s := range v.Comparisons {
		lx.comparisons[s] = k
	}
	for k, s := range v.Units {
		lx.units[s] = k
	}
	for k, s := range v.Logic {
		lx.logic[s] = k
		lx.connectors = append(lx.connectors, s)
	}
	sort.Slice(lx.connectors, func(i, j int) bool {
		if len(lx.connectors[i]) != len(lx.connectors[j]) {
			return len(lx.connectors[i]) > len(lx.connectors[j])
		}
		return lx.connectors[i] < lx.connectors[j]
	})
	return lx
}
