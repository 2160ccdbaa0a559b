package localize

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/width"

	"github.com/solatis/dosecalc/internal/rules"
	"github.com/solatis/dosecalc/internal/types"
)

// Localizer converts conditions between the machine grammar and editor rows.
// It is immutable after construction and safe for concurrent use.
type Localizer struct {
	vocab Vocabulary
	lx    lexicon
}

// NewLocalizer builds a Localizer for the given vocabulary.
func NewLocalizer(v Vocabulary) *Localizer {
	return &Localizer{vocab: v, lx: newLexicon(v)}
}

// Localize renders a machine condition as human text, e.g.
// "Age < 3 year && Weight < 40 Kg" becomes "年龄 小于 3 岁且体重 小于 40 Kg".
func (l *Localizer) Localize(machine string) (string, error) {
	cond, err := rules.ParseCondition(machine)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i, t := range cond.Terms {
		if i > 0 {
			b.WriteString(l.vocab.Logic[t.Logic])
		}
		b.WriteString(l.atomText(t.Atom))
	}
	return b.String(), nil
}

func (l *Localizer) atomText(a rules.Atom) string {
	fields := []string{l.vocab.Variables[a.Var], l.vocab.Comparisons[a.Op]}
	if a.Op == rules.OpRange {
		fields = append(fields, rules.FormatNumber(a.Value)+l.vocab.RangeSeparator+rules.FormatNumber(a.Max))
	} else {
		fields = append(fields, rules.FormatNumber(a.Value))
	}
	if a.Unit != rules.UnitNone {
		fields = append(fields, l.vocab.Units[a.Unit])
	}
	return strings.Join(fields, " ")
}

// Atoms parses a machine condition straight into editor rows.
func (l *Localizer) Atoms(machine string) ([]types.ConditionAtom, error) {
	text, err := l.Localize(machine)
	if err != nil {
		return nil, err
	}
	return l.Parse(text), nil
}

// Parse splits human text into editor rows. It never fails: words it does
// not know are kept verbatim so the editor can show them for correction.
// Fullwidth input (as typed with a CJK IME) is folded to halfwidth first.
func (l *Localizer) Parse(text string) []types.ConditionAtom {
	text = width.Fold.String(text)

	var (
		atoms []types.ConditionAtom
		logic string
	)
	rest := text
	for len(rest) > 0 {
		idx, conn := l.nextConnector(rest)
		seg := rest
		if idx >= 0 {
			seg, rest = rest[:idx], rest[idx+len(conn):]
		} else {
			rest = ""
		}

		if strings.TrimSpace(seg) != "" {
			atom := parseRow(seg)
			if types.ShowLogic(len(atoms)) {
				atom.Logic = logic
			}
			atoms = append(atoms, atom)
			logic = ""
		}
		if idx >= 0 {
			// consecutive connectors: the last one wins
			logic = conn
		}
	}
	return atoms
}

// nextConnector finds the earliest connector in s. On a tie the longer
// spelling wins.
func (l *Localizer) nextConnector(s string) (int, string) {
	best, conn := -1, ""
	for _, c := range l.lx.connectors {
		if c == "" {
			continue
		}
		i := strings.Index(s, c)
		if i >= 0 && (best < 0 || i < best) {
			best, conn = i, c
		}
	}
	return best, conn
}

func parseRow(seg string) types.ConditionAtom {
	f := strings.Fields(seg)
	field := func(i int) string {
		if i < len(f) {
			return f[i]
		}
		return ""
	}
	return types.ConditionAtom{
		ConditionType: field(0),
		Comparison:    field(1),
		Value:         field(2),
		Unit:          field(3),
	}
}

// Serialize turns editor rows back into a machine condition. Rows that use
// unknown terms are written out term by term with the unknown words left as
// they are; the resulting string then fails ParseCondition, which is where
// the error is reported. A row without a connector joins with &&.
func (l *Localizer) Serialize(atoms []types.ConditionAtom) string {
	var b strings.Builder
	for i, a := range atoms {
		if i > 0 {
			b.WriteByte(' ')
			b.WriteString(l.machineLogic(a.Logic))
			b.WriteByte(' ')
		}
		if atom, ok := l.ruleAtom(a); ok {
			b.WriteString(atom.String())
		} else {
			b.WriteString(l.passThrough(a))
		}
	}
	return b.String()
}

func (l *Localizer) machineLogic(s string) string {
	if s == "" {
		return rules.LogicAnd.String()
	}
	if lg, ok := l.lx.logic[s]; ok {
		return lg.String()
	}
	return s
}

// ruleAtom maps a fully understood row onto the AST.
func (l *Localizer) ruleAtom(a types.ConditionAtom) (rules.Atom, bool) {
	v, ok := l.lx.variables[a.ConditionType]
	if !ok {
		return rules.Atom{}, false
	}
	op, ok := l.lx.comparisons[a.Comparison]
	if !ok {
		return rules.Atom{}, false
	}
	atom := rules.Atom{Var: v, Op: op}

	if op == rules.OpRange {
		lo, hi, ok := splitRange(a.Value)
		if !ok {
			return rules.Atom{}, false
		}
		var err error
		if atom.Value, err = strconv.ParseFloat(lo, 64); err != nil {
			return rules.Atom{}, false
		}
		if atom.Max, err = strconv.ParseFloat(hi, 64); err != nil {
			return rules.Atom{}, false
		}
	} else {
		f, err := strconv.ParseFloat(a.Value, 64)
		if err != nil {
			return rules.Atom{}, false
		}
		atom.Value = f
	}

	if a.Unit != "" {
		u, ok := l.lx.units[a.Unit]
		if !ok || !rules.UnitAllowed(v, u) {
			return rules.Atom{}, false
		}
		atom.Unit = u
	}
	return atom, true
}

func (l *Localizer) passThrough(a types.ConditionAtom) string {
	var fields []string
	add := func(s string) {
		if s != "" {
			fields = append(fields, s)
		}
	}

	if v, ok := l.lx.variables[a.ConditionType]; ok {
		add(v.String())
	} else {
		add(a.ConditionType)
	}

	op, known := l.lx.comparisons[a.Comparison]
	switch {
	case known && op == rules.OpRange:
		add(op.String())
		if lo, hi, ok := splitRange(a.Value); ok {
			add("[" + lo + "," + hi + "]")
		} else {
			add(a.Value)
		}
	case known:
		add(op.String())
		add(a.Value)
	default:
		add(a.Comparison)
		add(a.Value)
	}

	if u, ok := l.lx.units[a.Unit]; ok {
		add(string(u))
	} else {
		add(a.Unit)
	}
	return strings.Join(fields, " ")
}

// splitRange reads "3-14" style bounds. Any run of characters that is not
// part of a number separates the two bounds. A minus directly before a digit
// is a sign unless it follows a bound, so "-4--2" reads as -4 and -2.
func splitRange(s string) (lo, hi string, ok bool) {
	var (
		parts []string
		cur   strings.Builder
	)
	flush := func() {
		if cur.Len() > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
		}
	}
	for i, r := range s {
		switch {
		case unicode.IsDigit(r) || r == '.':
			cur.WriteRune(r)
		case r == '-' && cur.Len() == 0 && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '9':
			cur.WriteRune(r)
		default:
			flush()
		}
	}
	flush()

	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// Options is the set of choices the editor offers for a row.
type Options struct {
	ConditionTypes []string            `json:"condition_types"`
	Comparisons    []string            `json:"comparisons"`
	Units          map[string][]string `json:"units"`
}

// Options returns the editor choice lists, with units keyed by condition type.
func (l *Localizer) Options() Options {
	names := l.ConditionTypes()
	units := make(map[string][]string, len(names))
	for _, n := range names {
		units[n] = l.UnitOptions(n)
	}
	return Options{ConditionTypes: names, Comparisons: l.Comparisons(), Units: units}
}

// ConditionTypes lists the variable names offered by the editor.
func (l *Localizer) ConditionTypes() []string {
	return []string{l.vocab.Variables[rules.VarAge], l.vocab.Variables[rules.VarWeight]}
}

// Comparisons lists the comparison names offered by the editor.
func (l *Localizer) Comparisons() []string {
	ops := []rules.Operator{rules.OpLt, rules.OpGt, rules.OpLte, rules.OpGte, rules.OpEq, rules.OpRange}
	out := make([]string, 0, len(ops))
	for _, op := range ops {
		out = append(out, l.vocab.Comparisons[op])
	}
	return out
}

// UnitOptions lists the units the editor offers for a variable. The first
// entry is the default. Unknown variables have no options.
func (l *Localizer) UnitOptions(conditionType string) []string {
	v, ok := l.lx.variables[conditionType]
	if !ok {
		return nil
	}
	if v == rules.VarWeight {
		return []string{l.vocab.Units[rules.UnitKg]}
	}
	return []string{l.vocab.Units[rules.UnitYear], l.vocab.Units[rules.UnitMonth]}
}

// NormalizeAtom fixes up a row after its variable changed in the editor:
// weight rows always use Kg, and an age row holding a unit that is not an
// age unit falls back to years.
func (l *Localizer) NormalizeAtom(a types.ConditionAtom) types.ConditionAtom {
	opts := l.UnitOptions(a.ConditionType)
	if len(opts) == 0 {
		return a
	}
	if l.lx.variables[a.ConditionType] == rules.VarWeight {
		a.Unit = opts[0]
		return a
	}
	if a.Unit == "" {
		return a
	}
	for _, o := range opts {
		if a.Unit == o {
			return a
		}
	}
	a.Unit = opts[0]
	return a
}

// NormalizeAll applies NormalizeAtom to every row.
func (l *Localizer) NormalizeAll(atoms []types.ConditionAtom) []types.ConditionAtom {
	out := make([]types.ConditionAtom, len(atoms))
	for i, a := range atoms {
		out[i] = l.NormalizeAtom(a)
	}
	return out
}
