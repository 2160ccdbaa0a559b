// Package types provides domain models shared across dosecalc components.
//
// Zero-dependency design: types.go, rules.go and errors.go use only the
// standard library so the engine can be embedded without pulling in storage
// or transport deps. ID utilities in ids.go import uuid but are isolated.
package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RuleID identifies a dosing rule. UUIDv7 for rules created by dosecalc;
// imported rules may carry any non-empty string.
type RuleID string

// DrugID identifies the drug a rule set belongs to.
type DrugID string

// AgeUnit is the unit a patient's age is expressed in.
type AgeUnit string

const (
	AgeUnitYear  AgeUnit = "year"
	AgeUnitMonth AgeUnit = "month"
)

// ParseAgeUnit validates an age unit string. Matching is case-insensitive
// and tolerates a plural "s" ("years", "months").
func ParseAgeUnit(s string) (AgeUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "year", "years":
		return AgeUnitYear, nil
	case "month", "months":
		return AgeUnitMonth, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedUnit, s)
	}
}

// PatientInput holds the patient parameters for one evaluation.
type PatientInput struct {
	Age     int
	AgeUnit AgeUnit
	Weight  float64 // kilograms
}

// DoseKind tags how a formula result must be read.
type DoseKind int

const (
	// DoseFixed is a computed numeric dose.
	DoseFixed DoseKind = iota
	// DoseNotApplicable means the drug must not be used for this patient (formula result 0).
	DoseNotApplicable
	// DoseConsultPhysician means the dose is left to clinical judgement (formula result -1).
	DoseConsultPhysician
)

func (k DoseKind) String() string {
	switch k {
	case DoseNotApplicable:
		return "not_applicable"
	case DoseConsultPhysician:
		return "consult_physician"
	default:
		return "fixed"
	}
}

// Sentinel formula results understood by callers of the engine.
const (
	NotApplicableDosage    = 0
	ConsultPhysicianDosage = -1
)

// Dose is the tagged outcome of a formula.
type Dose struct {
	Kind  DoseKind
	value float64
}

// NewDose classifies a raw formula result.
func NewDose(v float64) Dose {
	switch v {
	case NotApplicableDosage:
		return Dose{Kind: DoseNotApplicable}
	case ConsultPhysicianDosage:
		return Dose{Kind: DoseConsultPhysician, value: ConsultPhysicianDosage}
	default:
		return Dose{Kind: DoseFixed, value: v}
	}
}

// Value returns the numeric dosage, including the sentinel encodings.
func (d Dose) Value() float64 {
	return d.value
}

func (d Dose) String() string {
	if d.Kind == DoseFixed {
		return fmt.Sprintf("%g", d.value)
	}
	return d.Kind.String()
}

// CalculationResult is the outcome of a successful rule selection.
type CalculationResult struct {
	Dose      Dose
	Unit      string
	Frequency string
	Route     string
}

type resultJSON struct {
	Dosage    float64 `json:"Dosage"`
	Unit      string  `json:"Unit"`
	Frequency string  `json:"Frequency"`
	Route     string  `json:"Route"`
}

// MarshalJSON emits the flat wire shape; sentinels are encoded as 0 / -1.
func (r CalculationResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON{
		Dosage:    r.Dose.Value(),
		Unit:      r.Unit,
		Frequency: r.Frequency,
		Route:     r.Route,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *CalculationResult) UnmarshalJSON(data []byte) error {
	var raw resultJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = CalculationResult{
		Dose:      NewDose(raw.Dosage),
		Unit:      raw.Unit,
		Frequency: raw.Frequency,
		Route:     raw.Route,
	}
	return nil
}

// EncodeResult serializes a selection outcome. A nil result (no rule
// matched) encodes as the empty object.
func EncodeResult(r *CalculationResult) ([]byte, error) {
	if r == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(r)
}
