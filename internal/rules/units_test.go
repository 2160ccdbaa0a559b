package rules

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/solatis/dosecalc/internal/types"
)

func TestConvertAge(t *testing.T) {
	tests := []struct {
		name string
		age  int
		from types.AgeUnit
		to   types.AgeUnit
		want int
	}{
		{"same unit", 7, types.AgeUnitYear, types.AgeUnitYear, 7},
		{"year to month", 3, types.AgeUnitYear, types.AgeUnitMonth, 36},
		{"month to year truncates", 18, types.AgeUnitMonth, types.AgeUnitYear, 1},
		{"under a year", 11, types.AgeUnitMonth, types.AgeUnitYear, 0},
		{"exact years", 24, types.AgeUnitMonth, types.AgeUnitYear, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConvertAge(tt.age, tt.from, tt.to)
			if err != nil {
				t.Fatalf("ConvertAge() error = %v, want nil", err)
			}
			if got != tt.want {
				t.Errorf("ConvertAge(%d, %s, %s) = %d, want %d", tt.age, tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestConvertAge_UnsupportedUnit(t *testing.T) {
	if _, err := ConvertAge(3, "day", types.AgeUnitYear); !errors.Is(err, types.ErrUnsupportedUnit) {
		t.Errorf("ConvertAge(from=day) error = %v, want ErrUnsupportedUnit", err)
	}
	if _, err := ConvertAge(3, types.AgeUnitYear, "week"); !errors.Is(err, types.ErrUnsupportedUnit) {
		t.Errorf("ConvertAge(to=week) error = %v, want ErrUnsupportedUnit", err)
	}
}

// Property-based test: month -> year is integer division, year -> month is exact.
func TestConvertAge_PropertyLossyMonthToYear(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("month to year truncates", prop.ForAll(
		func(months int) bool {
			years, err := ConvertAge(months, types.AgeUnitMonth, types.AgeUnitYear)
			return err == nil && years == months/12
		},
		gen.IntRange(0, 1500),
	))

	properties.Property("year to month to year is identity", prop.ForAll(
		func(years int) bool {
			months, err := ConvertAge(years, types.AgeUnitYear, types.AgeUnitMonth)
			if err != nil || months != years*12 {
				return false
			}
			back, err := ConvertAge(months, types.AgeUnitMonth, types.AgeUnitYear)
			return err == nil && back == years
		},
		gen.IntRange(0, 125),
	))

	properties.TestingRun(t)
}
