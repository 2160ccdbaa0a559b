package api

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"github.com/solatis/dosecalc/internal/types"
	"google.golang.org/protobuf/types/known/structpb"
)

// Calculate selects a dose for a patient from a stored drug's rules.
//
// Request:  {drug_id: string, age: number, age_unit: "year"|"month", weight: number}
// Response: {Dosage, Unit, Frequency, Route}, or {} when no rule matches.
// age_unit defaults to year.
func (s *DosageService) Calculate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	drugID, err := types.ParseDrugID(stringField(req, "drug_id"))
	if err != nil {
		return nil, invalidArgument(fmt.Sprintf("drug_id: %v", err))
	}
	patient, err := patientFrom(req)
	if err != nil {
		return nil, toStatus(err)
	}

	list, err := s.source.Rules(ctx, drugID)
	if err != nil {
		return nil, toStatus(err)
	}

	result, err := s.engine.Select(list, patient)
	if err != nil {
		s.log.WithError(err).WithField("drug_id", drugID).Warn("calculation failed")
		return nil, toStatus(err)
	}

	s.log.WithFields(logrus.Fields{
		"drug_id": drugID,
		"matched": result != nil,
	}).Debug("calculated dose")
	return resultStruct(result)
}

// patientFrom reads age, age_unit and weight. Age must be a whole number.
func patientFrom(req *structpb.Struct) (types.PatientInput, error) {
	age, ok := numberField(req, "age")
	if !ok {
		return types.PatientInput{}, fmt.Errorf("%w: age is required", types.ErrInvalidPatient)
	}
	if age != math.Trunc(age) || math.IsInf(age, 0) || age > math.MaxInt32 {
		return types.PatientInput{}, fmt.Errorf("%w: age must be a whole number, got %v", types.ErrInvalidPatient, age)
	}
	weight, ok := numberField(req, "weight")
	if !ok {
		return types.PatientInput{}, fmt.Errorf("%w: weight is required", types.ErrInvalidPatient)
	}

	unit := types.AgeUnitYear
	if u := stringField(req, "age_unit"); u != "" {
		parsed, err := types.ParseAgeUnit(u)
		if err != nil {
			return types.PatientInput{}, err
		}
		unit = parsed
	}

	return types.PatientInput{Age: int(age), AgeUnit: unit, Weight: weight}, nil
}

// resultStruct converts a result through its JSON form so the Struct
// carries exactly the documented field names.
func resultStruct(result *types.CalculationResult) (*structpb.Struct, error) {
	b, err := types.EncodeResult(result)
	if err != nil {
		return nil, toStatus(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, toStatus(err)
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, toStatus(err)
	}
	return out, nil
}

func stringField(s *structpb.Struct, name string) string {
	v, ok := s.GetFields()[name]
	if !ok {
		return ""
	}
	return v.GetStringValue()
}

func numberField(s *structpb.Struct, name string) (float64, bool) {
	v, ok := s.GetFields()[name]
	if !ok {
		return 0, false
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, false
	}
	return n.NumberValue, true
}
