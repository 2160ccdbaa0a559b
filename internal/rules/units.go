// internal/rules/units.go
package rules

import (
	"fmt"

	"github.com/solatis/dosecalc/internal/types"
)

// ConvertAge converts an age between year and month.
// Month to year truncates: 18 months is 1 year.
// Any unit other than year or month returns ErrUnsupportedUnit.
func ConvertAge(age int, from, to types.AgeUnit) (int, error) {
	if !knownAgeUnit(from) {
		return 0, fmt.Errorf("%w: %q", types.ErrUnsupportedUnit, from)
	}
	if !knownAgeUnit(to) {
		return 0, fmt.Errorf("%w: %q", types.ErrUnsupportedUnit, to)
	}

	switch {
	case from == to:
		return age, nil
	case from == types.AgeUnitYear:
		return age * 12, nil
	default:
		return age / 12, nil
	}
}

func knownAgeUnit(u types.AgeUnit) bool {
	return u == types.AgeUnitYear || u == types.AgeUnitMonth
}
