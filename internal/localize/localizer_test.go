package localize

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/solatis/dosecalc/internal/rules"
	"github.com/solatis/dosecalc/internal/types"
)

func newTestLocalizer() *Localizer {
	return NewLocalizer(DefaultVocabulary())
}

func TestLocalize(t *testing.T) {
	tests := []struct {
		name    string
		machine string
		want    string
	}{
		{"two atoms", "Age < 3 year && Weight < 40 Kg", "年龄 小于 3 岁且体重 小于 40 Kg"},
		{"range", "Age at [3,14] year", "年龄 范围在 3-14 岁"},
		{"or", "Age >= 12 year || Weight > 50 Kg", "年龄 大于等于 12 岁或体重 大于 50 Kg"},
		{"months", "Age <= 6 month", "年龄 小于等于 6 月"},
		{"no unit", "Weight = 12.5", "体重 等于 12.5"},
		{"negative range", "Weight at [-4,-2] Kg", "体重 范围在 -4--2 Kg"},
	}

	l := newTestLocalizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := l.Localize(tt.machine)
			if err != nil {
				t.Fatalf("Localize() error = %v, want nil", err)
			}
			if got != tt.want {
				t.Errorf("Localize(%q) = %q, want %q", tt.machine, got, tt.want)
			}
		})
	}
}

func TestLocalize_RejectsMalformed(t *testing.T) {
	_, err := newTestLocalizer().Localize("Age lessthan 3")
	if !errors.Is(err, types.ErrConditionParse) {
		t.Errorf("Localize() error = %v, want ErrConditionParse", err)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []types.ConditionAtom
	}{
		{
			name: "two atoms",
			text: "年龄 小于 3 岁且体重 小于 40 Kg",
			want: []types.ConditionAtom{
				{ConditionType: "年龄", Comparison: "小于", Value: "3", Unit: "岁"},
				{ConditionType: "体重", Comparison: "小于", Value: "40", Unit: "Kg", Logic: "且"},
			},
		},
		{
			name: "range",
			text: "年龄 范围在 3-14 岁",
			want: []types.ConditionAtom{
				{ConditionType: "年龄", Comparison: "范围在", Value: "3-14", Unit: "岁"},
			},
		},
		{
			name: "missing fields are empty",
			text: "体重 大于",
			want: []types.ConditionAtom{
				{ConditionType: "体重", Comparison: "大于"},
			},
		},
		{
			name: "extra fields are dropped",
			text: "体重 大于 5 Kg 以上",
			want: []types.ConditionAtom{
				{ConditionType: "体重", Comparison: "大于", Value: "5", Unit: "Kg"},
			},
		},
		{
			name: "last connector wins",
			text: "年龄 小于 3 岁且或体重 大于 5 Kg",
			want: []types.ConditionAtom{
				{ConditionType: "年龄", Comparison: "小于", Value: "3", Unit: "岁"},
				{ConditionType: "体重", Comparison: "大于", Value: "5", Unit: "Kg", Logic: "或"},
			},
		},
		{
			name: "leading connector ignored on first atom",
			text: "或年龄 小于 3",
			want: []types.ConditionAtom{
				{ConditionType: "年龄", Comparison: "小于", Value: "3"},
			},
		},
		{
			name: "fullwidth input",
			text: "体重　大于　４０　Ｋｇ",
			want: []types.ConditionAtom{
				{ConditionType: "体重", Comparison: "大于", Value: "40", Unit: "Kg"},
			},
		},
		{
			name: "unknown words kept",
			text: "身高 小于 150 cm",
			want: []types.ConditionAtom{
				{ConditionType: "身高", Comparison: "小于", Value: "150", Unit: "cm"},
			},
		},
		{name: "empty", text: "   ", want: nil},
	}

	l := newTestLocalizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := l.Parse(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestSerialize(t *testing.T) {
	tests := []struct {
		name  string
		atoms []types.ConditionAtom
		want  string
	}{
		{
			name: "two atoms",
			atoms: []types.ConditionAtom{
				{ConditionType: "年龄", Comparison: "小于", Value: "3", Unit: "岁"},
				{ConditionType: "体重", Comparison: "小于", Value: "40", Unit: "Kg", Logic: "且"},
			},
			want: "Age < 3 year && Weight < 40 Kg",
		},
		{
			name: "range with other separator",
			atoms: []types.ConditionAtom{
				{ConditionType: "年龄", Comparison: "范围在", Value: "3~14", Unit: "岁"},
			},
			want: "Age at [3,14] year",
		},
		{
			name: "missing connector defaults to and",
			atoms: []types.ConditionAtom{
				{ConditionType: "年龄", Comparison: "大于", Value: "1"},
				{ConditionType: "体重", Comparison: "大于", Value: "5", Unit: "Kg"},
			},
			want: "Age > 1 && Weight > 5 Kg",
		},
		{
			name: "or",
			atoms: []types.ConditionAtom{
				{ConditionType: "年龄", Comparison: "小于", Value: "6", Unit: "月"},
				{ConditionType: "体重", Comparison: "小于", Value: "5", Logic: "或"},
			},
			want: "Age < 6 month || Weight < 5",
		},
		{
			name: "negative bounds",
			atoms: []types.ConditionAtom{
				{ConditionType: "体重", Comparison: "范围在", Value: "-4--2", Unit: "Kg"},
				{ConditionType: "体重", Comparison: "大于", Value: "-1", Logic: "或"},
			},
			want: "Weight at [-4,-2] Kg || Weight > -1",
		},
		{
			name: "spaced separator",
			atoms: []types.ConditionAtom{
				{ConditionType: "年龄", Comparison: "范围在", Value: "3 - 14", Unit: "岁"},
			},
			want: "Age at [3,14] year",
		},
		{
			name: "unknown terms pass through",
			atoms: []types.ConditionAtom{
				{ConditionType: "身高", Comparison: "小于", Value: "150", Unit: "cm"},
			},
			want: "身高 < 150 cm",
		},
	}

	l := newTestLocalizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := l.Serialize(tt.atoms); got != tt.want {
				t.Errorf("Serialize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSerialize_UnknownTermsFailToParse(t *testing.T) {
	machine := newTestLocalizer().Serialize([]types.ConditionAtom{
		{ConditionType: "身高", Comparison: "小于", Value: "150", Unit: "cm"},
	})
	if _, err := rules.ParseCondition(machine); !errors.Is(err, types.ErrConditionParse) {
		t.Errorf("ParseCondition(%q) error = %v, want ErrConditionParse", machine, err)
	}
}

func TestAtoms(t *testing.T) {
	atoms, err := newTestLocalizer().Atoms("Age at [1,2] year || Weight < 10 Kg")
	if err != nil {
		t.Fatalf("Atoms() error = %v, want nil", err)
	}
	want := []types.ConditionAtom{
		{ConditionType: "年龄", Comparison: "范围在", Value: "1-2", Unit: "岁"},
		{ConditionType: "体重", Comparison: "小于", Value: "10", Unit: "Kg", Logic: "或"},
	}
	if !reflect.DeepEqual(atoms, want) {
		t.Errorf("Atoms() = %+v, want %+v", atoms, want)
	}
}

func TestUnitOptions(t *testing.T) {
	l := newTestLocalizer()
	if got := l.UnitOptions("年龄"); !reflect.DeepEqual(got, []string{"岁", "月"}) {
		t.Errorf("UnitOptions(年龄) = %v", got)
	}
	if got := l.UnitOptions("体重"); !reflect.DeepEqual(got, []string{"Kg"}) {
		t.Errorf("UnitOptions(体重) = %v", got)
	}
	if got := l.UnitOptions("身高"); got != nil {
		t.Errorf("UnitOptions(身高) = %v, want nil", got)
	}
}

func TestNormalizeAtom(t *testing.T) {
	tests := []struct {
		name string
		in   types.ConditionAtom
		want string
	}{
		{"age with kg falls back to years", types.ConditionAtom{ConditionType: "年龄", Unit: "Kg"}, "岁"},
		{"age keeps months", types.ConditionAtom{ConditionType: "年龄", Unit: "月"}, "月"},
		{"age keeps empty unit", types.ConditionAtom{ConditionType: "年龄"}, ""},
		{"weight forced to kg", types.ConditionAtom{ConditionType: "体重", Unit: "岁"}, "Kg"},
		{"weight without unit gets kg", types.ConditionAtom{ConditionType: "体重"}, "Kg"},
		{"unknown variable untouched", types.ConditionAtom{ConditionType: "身高", Unit: "cm"}, "cm"},
	}

	l := newTestLocalizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := l.NormalizeAtom(tt.in).Unit; got != tt.want {
				t.Errorf("NormalizeAtom().Unit = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOptions(t *testing.T) {
	got := newTestLocalizer().Options()
	want := Options{
		ConditionTypes: []string{"年龄", "体重"},
		Comparisons:    []string{"小于", "大于", "小于等于", "大于等于", "等于", "范围在"},
		Units:          map[string][]string{"年龄": {"岁", "月"}, "体重": {"Kg"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Options() = %+v, want %+v", got, want)
	}
}

func TestNormalizeAll(t *testing.T) {
	l := newTestLocalizer()
	atoms := []types.ConditionAtom{
		{ConditionType: "体重", Comparison: "小于", Value: "40", Unit: "岁"},
		{ConditionType: "年龄", Comparison: "小于", Value: "3", Unit: "Kg", Logic: "且"},
	}
	if got, want := l.Serialize(l.NormalizeAll(atoms)), "Weight < 40 Kg && Age < 3 year"; got != want {
		t.Errorf("Serialize(NormalizeAll()) = %q, want %q", got, want)
	}
	if atoms[0].Unit != "岁" {
		t.Errorf("NormalizeAll modified its input")
	}
}

func TestEditorOptions(t *testing.T) {
	l := newTestLocalizer()
	if got := l.ConditionTypes(); !reflect.DeepEqual(got, []string{"年龄", "体重"}) {
		t.Errorf("ConditionTypes() = %v", got)
	}
	want := []string{"小于", "大于", "小于等于", "大于等于", "等于", "范围在"}
	if got := l.Comparisons(); !reflect.DeepEqual(got, want) {
		t.Errorf("Comparisons() = %v, want %v", got, want)
	}
}

// buildCondition derives a well-formed machine condition from random seeds.
func buildCondition(seeds []int, n int, months bool) string {
	ops := []string{"<", ">", "<=", ">=", "="}
	if n > len(seeds) {
		n = len(seeds)
	}
	if n == 0 {
		return "Age >= 0"
	}
	var b strings.Builder
	for i := 0; i < n; i++ {
		s := seeds[i]
		if i > 0 {
			if (s/7200)%2 == 0 {
				b.WriteString(" && ")
			} else {
				b.WriteString(" || ")
			}
		}
		withUnit := (s/3600)%2 == 0
		v := (s / 12) % 30

		if s%2 == 0 {
			b.WriteString("Age ")
		} else {
			b.WriteString("Weight ")
		}
		if op := (s / 2) % 6; op == 5 {
			b.WriteString("at [" + strconv.Itoa(v) + "," + strconv.Itoa(v+(s/360)%10) + "]")
		} else {
			b.WriteString(ops[op] + " " + strconv.Itoa(v))
		}
		if withUnit {
			switch {
			case s%2 == 1:
				b.WriteString(" Kg")
			case months:
				b.WriteString(" month")
			default:
				b.WriteString(" year")
			}
		}
	}
	return b.String()
}

// Property-based test: localizing, parsing and serializing a condition
// yields a condition that evaluates identically for every patient.
func TestRoundTrip_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)
	l := newTestLocalizer()

	ages := []int{0, 1, 2, 5, 11, 12, 18, 25, 36}
	weights := []float64{0, 5, 10, 12.5, 25, 40}

	properties.Property("Serialize(Parse(Localize(c))) evaluates like c", prop.ForAll(
		func(seeds []int, n int, months bool) bool {
			machine := buildCondition(seeds, n, months)
			text, err := l.Localize(machine)
			if err != nil {
				return false
			}
			back := l.Serialize(l.Parse(text))

			for _, unit := range []types.AgeUnit{types.AgeUnitYear, types.AgeUnitMonth} {
				for _, age := range ages {
					for _, w := range weights {
						want, err := rules.EvaluateCondition(machine, age, unit, w)
						if err != nil {
							return false
						}
						got, err := rules.EvaluateCondition(back, age, unit, w)
						if err != nil || got != want {
							return false
						}
					}
				}
			}
			return true
		},
		gen.SliceOfN(4, gen.IntRange(0, 1<<20)),
		gen.IntRange(1, 4),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
