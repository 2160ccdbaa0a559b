// internal/types/rules.go
package types

/*
 * Domain types for dosing rules.
 *
 * Rule is the record handed to the engine by storage or rule files.
 * ConditionAtom is the editor-side row produced by internal/localize; its
 * fields stay in the human vocabulary so partially edited input survives.
 *
 * Key types:
 *   - Drug: owner of an ordered rule list
 *   - Rule: condition + formula + presentation metadata
 *   - ConditionAtom: one editable comparison with its connector
 */

// Drug groups the rules that dose it.
type Drug struct {
	DrugID        DrugID
	Name          string
	Description   string
	Usage         string
	Specification string
}

// Rule is a single dosing rule. Order within a drug's rule list is
// significant: the first rule whose condition holds wins.
type Rule struct {
	ID        RuleID `json:"id,omitempty" yaml:"id,omitempty"`
	DrugID    DrugID `json:"drug_id,omitempty" yaml:"drug_id,omitempty"`
	Condition string `json:"condition" yaml:"condition"`
	Formula   string `json:"formula" yaml:"formula"`
	Unit      string `json:"unit" yaml:"unit"`
	Frequency string `json:"frequency" yaml:"frequency"`
	Route     string `json:"route" yaml:"route"`
}

// ConditionAtom is one row of the condition editor.
// Logic is the connector joining the atom to its predecessor and is
// ignored for the first atom.
type ConditionAtom struct {
	ConditionType string `json:"condition_type"`
	Comparison    string `json:"comparison"`
	Value         string `json:"value"`
	Unit          string `json:"unit"`
	Logic         string `json:"logic,omitempty"`
}

// ShowLogic reports whether the atom at index renders its connector.
func ShowLogic(index int) bool {
	return index > 0
}
