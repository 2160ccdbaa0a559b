package api

import (
	"context"
	"strings"

	"github.com/solatis/dosecalc/internal/localize"
	"github.com/solatis/dosecalc/internal/rules"
	"github.com/solatis/dosecalc/internal/types"
	"google.golang.org/protobuf/types/known/structpb"
)

// Localize renders a machine condition for the editor.
//
// Request:  {condition: string}
// Response: {text: string, atoms: [{condition_type, comparison, value, unit, logic}],
//            options: {condition_types, comparisons, units: {<condition_type>: [...]}}}
func (s *DosageService) Localize(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	condition := stringField(req, "condition")
	if strings.TrimSpace(condition) == "" {
		return nil, invalidArgument("condition is required")
	}

	text, err := s.localizer.Localize(condition)
	if err != nil {
		return nil, toStatus(err)
	}

	out, err := structpb.NewStruct(map[string]any{
		"text":    text,
		"atoms":   atomList(s.localizer.Parse(text)),
		"options": optionsStruct(s.localizer.Options()),
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return out, nil
}

// Delocalize turns editor text back into a machine condition. The text is
// never rejected; valid reports whether the result parses, and error
// carries the parse failure when it does not. With normalize set, row units
// are first reset to match their condition type.
//
// Request:  {text: string, normalize?: bool}
// Response: {condition: string, valid: bool, error?: string}
func (s *DosageService) Delocalize(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	atoms := s.localizer.Parse(stringField(req, "text"))
	if req.GetFields()["normalize"].GetBoolValue() {
		atoms = s.localizer.NormalizeAll(atoms)
	}
	condition := s.localizer.Serialize(atoms)

	fields := map[string]any{"condition": condition, "valid": true}
	if _, err := rules.ParseCondition(condition); err != nil {
		fields["valid"] = false
		fields["error"] = err.Error()
	}

	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, toStatus(err)
	}
	return out, nil
}

func atomList(atoms []types.ConditionAtom) []any {
	out := make([]any, len(atoms))
	for i, a := range atoms {
		out[i] = map[string]any{
			"condition_type": a.ConditionType,
			"comparison":     a.Comparison,
			"value":          a.Value,
			"unit":           a.Unit,
			"logic":          a.Logic,
		}
	}
	return out
}

func optionsStruct(o localize.Options) map[string]any {
	units := make(map[string]any, len(o.Units))
	for name, list := range o.Units {
		units[name] = stringList(list)
	}
	return map[string]any{
		"condition_types": stringList(o.ConditionTypes),
		"comparisons":     stringList(o.Comparisons),
		"units":           units,
	}
}

func stringList(list []string) []any {
	out := make([]any, len(list))
	for i, v := range list {
		out[i] = v
	}
	return out
}
