// internal/rules/condition_test.go
package rules

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/solatis/dosecalc/internal/types"
)

func TestEvaluateCondition(t *testing.T) {
	tests := []struct {
		name      string
		condition string
		age       int
		unit      types.AgeUnit
		weight    float64
		want      bool
	}{
		{"both atoms hold", "Age < 3 year && Weight < 40 Kg", 2, types.AgeUnitYear, 10, true},
		{"weight fails", "Age < 3 year && Weight < 40 Kg", 2, types.AgeUnitYear, 45, false},
		{"range inclusive lower", "Age at [3,14] year", 3, types.AgeUnitYear, 20, true},
		{"range inclusive upper", "Age at [3,14] year", 14, types.AgeUnitYear, 20, true},
		{"range outside", "Age at [3,14] year", 15, types.AgeUnitYear, 20, false},
		{"months converted to years", "Age < 2 year", 18, types.AgeUnitMonth, 10, true},
		{"truncation keeps 23 months at 1 year", "Age = 1 year", 23, types.AgeUnitMonth, 10, true},
		{"years converted to months", "Age at [6,11] month", 1, types.AgeUnitYear, 10, false},
		{"month condition with month input", "Age at [6,11] month", 8, types.AgeUnitMonth, 8, true},
		{"no unit defaults to year", "Age >= 12", 144, types.AgeUnitMonth, 50, true},
		{"or", "Age < 1 year || Weight > 100 Kg", 30, types.AgeUnitYear, 120, true},
		{"equality", "Weight = 12.5", 3, types.AgeUnitYear, 12.5, true},
		{"double equals", "Age == 4 year", 4, types.AgeUnitYear, 0, true},
		{"negative operand", "Weight > -1", 3, types.AgeUnitYear, 0, true},
		{"negative range bound", "Weight at [-2.5,0] Kg", 3, types.AgeUnitYear, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EvaluateCondition(tt.condition, tt.age, tt.unit, tt.weight)
			if err != nil {
				t.Fatalf("EvaluateCondition() error = %v, want nil", err)
			}
			if got != tt.want {
				t.Errorf("EvaluateCondition(%q) = %v, want %v", tt.condition, got, tt.want)
			}
		})
	}
}

// && and || have equal precedence and fold left to right.
func TestEvaluateCondition_LeftToRight(t *testing.T) {
	// (true || false) && false = false; with && binding tighter it would be true.
	got, err := EvaluateCondition("Age < 1 || Age > 5 && Weight > 100", 0, types.AgeUnitYear, 10)
	if err != nil {
		t.Fatalf("EvaluateCondition() error = %v, want nil", err)
	}
	if got {
		t.Errorf("EvaluateCondition() = true, want false (left-to-right fold)")
	}

	// (false && x) || true = true
	got, err = EvaluateCondition("Age > 5 && Weight > 100 || Weight < 20", 0, types.AgeUnitYear, 10)
	if err != nil {
		t.Fatalf("EvaluateCondition() error = %v, want nil", err)
	}
	if !got {
		t.Errorf("EvaluateCondition() = false, want true")
	}
}

func TestEvaluateCondition_Errors(t *testing.T) {
	_, err := EvaluateCondition("Age lt 3", 2, types.AgeUnitYear, 10)
	if !errors.Is(err, types.ErrConditionParse) {
		t.Errorf("EvaluateCondition() error = %v, want ErrConditionParse", err)
	}

	_, err = EvaluateCondition("Age < 3 year", 2, types.AgeUnit("day"), 10)
	if !errors.Is(err, types.ErrUnsupportedUnit) {
		t.Errorf("EvaluateCondition() error = %v, want ErrUnsupportedUnit", err)
	}
}

// Property-based test: a range atom is equivalent to its inequality pair.
func TestEvaluateCondition_PropertyRangeEquivalence(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("at [lo,hi] == (>= lo && <= hi)", prop.ForAll(
		func(lo, span, age int) bool {
			hi := lo + span
			rangeCond := "Age at [" + FormatNumber(float64(lo)) + "," + FormatNumber(float64(hi)) + "] year"
			pairCond := "Age >= " + FormatNumber(float64(lo)) + " year && Age <= " + FormatNumber(float64(hi)) + " year"

			a, err1 := EvaluateCondition(rangeCond, age, types.AgeUnitYear, 0)
			b, err2 := EvaluateCondition(pairCond, age, types.AgeUnitYear, 0)
			return err1 == nil && err2 == nil && a == b
		},
		gen.IntRange(0, 50),
		gen.IntRange(0, 30),
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t)
}

// Property-based test: a condition mentioning month reads the patient's age in months.
func TestEvaluateCondition_PropertyMonthDetection(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("month conditions compare months, others compare years", prop.ForAll(
		func(years, threshold int) bool {
			inMonths, err := EvaluateCondition("Age >= "+FormatNumber(float64(threshold))+" month", years, types.AgeUnitYear, 0)
			if err != nil {
				return false
			}
			inYears, err := EvaluateCondition("Age >= "+FormatNumber(float64(threshold)), years, types.AgeUnitYear, 0)
			if err != nil {
				return false
			}
			return inMonths == (years*12 >= threshold) && inYears == (years >= threshold)
		},
		gen.IntRange(0, 20),
		gen.IntRange(0, 240),
	))

	properties.TestingRun(t)
}
