package types

import "errors"

// Sentinel errors for dosecalc operations.
var (
	// ErrConditionParse indicates a condition does not conform to the grammar.
	ErrConditionParse = errors.New("condition parse error")

	// ErrFormulaParse indicates a formula is malformed or uses unsupported constructs.
	ErrFormulaParse = errors.New("formula parse error")

	// ErrUnsupportedUnit indicates an age unit other than year or month.
	ErrUnsupportedUnit = errors.New("unsupported unit")

	// ErrEmptyCondition indicates a rule has no condition text.
	ErrEmptyCondition = errors.New("condition is empty")

	// ErrMixedAgeUnits indicates a condition mentions both year and month.
	ErrMixedAgeUnits = errors.New("condition mixes year and month")

	// ErrDrugNotFound indicates no drug exists with the requested id.
	ErrDrugNotFound = errors.New("drug not found")

	// ErrInvalidDrug indicates a drug record missing required fields.
	ErrInvalidDrug = errors.New("invalid drug")

	// ErrInvalidPatient indicates patient input outside the accepted domain.
	ErrInvalidPatient = errors.New("invalid patient input")
)
