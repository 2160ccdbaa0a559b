// Package ruleset reads and writes rule files: one drug with its ordered
// rule list, as YAML. JSON documents are accepted since JSON is YAML.
//
// Two shapes are understood:
//
//	drug: {name: ..., usage: ...}
//	rules: [{condition: ..., formula: ..., unit: ..., frequency: ..., route: ...}]
//
// and the generator output shape, a bare rule list under
// "DrugCalculationRules" with capitalized field names.
package ruleset

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/solatis/dosecalc/internal/rules"
	"github.com/solatis/dosecalc/internal/types"
)

// Document is a decoded rule file.
type Document struct {
	Drug  types.Drug
	Rules []types.Rule
}

type drugDoc struct {
	ID            string `yaml:"id,omitempty"`
	Name          string `yaml:"name"`
	Description   string `yaml:"description,omitempty"`
	Usage         string `yaml:"usage,omitempty"`
	Specification string `yaml:"specification,omitempty"`
}

type generatedRule struct {
	Condition string `yaml:"Condition"`
	Formula   string `yaml:"Formula"`
	Unit      string `yaml:"Unit"`
	Frequency string `yaml:"Frequency"`
	Route     string `yaml:"Route"`
}

type fileDoc struct {
	Drug      *drugDoc        `yaml:"drug,omitempty"`
	Rules     []types.Rule    `yaml:"rules,omitempty"`
	Generated []generatedRule `yaml:"DrugCalculationRules,omitempty"`
}

// Load reads a rule file from path.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open rule file: %w", err)
	}
	defer f.Close()

	doc, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Decode parses a rule document. Rules keep file order and rules without
// an id are given one. Decode does not compile rules; see Validate.
func Decode(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var fd fileDoc
	if err := dec.Decode(&fd); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("rule file is empty")
		}
		return nil, fmt.Errorf("failed to parse rule file: %w", err)
	}

	if len(fd.Rules) > 0 && len(fd.Generated) > 0 {
		return nil, errors.New("rule file has both rules and DrugCalculationRules")
	}

	doc := &Document{Rules: fd.Rules}
	for _, g := range fd.Generated {
		doc.Rules = append(doc.Rules, types.Rule{
			Condition: g.Condition,
			Formula:   g.Formula,
			Unit:      g.Unit,
			Frequency: g.Frequency,
			Route:     g.Route,
		})
	}
	if len(doc.Rules) == 0 {
		return nil, errors.New("rule file has no rules")
	}

	if fd.Drug != nil {
		doc.Drug = types.Drug{
			Name:          fd.Drug.Name,
			Description:   fd.Drug.Description,
			Usage:         fd.Drug.Usage,
			Specification: fd.Drug.Specification,
		}
		if fd.Drug.ID != "" {
			id, err := types.ParseDrugID(fd.Drug.ID)
			if err != nil {
				return nil, fmt.Errorf("invalid drug id %q: %w", fd.Drug.ID, err)
			}
			doc.Drug.DrugID = id
		}
	}

	for i := range doc.Rules {
		if doc.Rules[i].ID == "" {
			doc.Rules[i].ID = types.NewRuleID()
		}
		if doc.Drug.DrugID != "" {
			doc.Rules[i].DrugID = doc.Drug.DrugID
		}
	}
	return doc, nil
}

// Validate compiles every rule and returns all failures joined, so a
// rule author sees every bad rule in one pass.
func (d *Document) Validate() error {
	var errs []error
	for _, r := range d.Rules {
		if _, err := rules.Compile(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Encode writes doc in the drug/rules shape.
func Encode(w io.Writer, doc *Document) error {
	fd := fileDoc{
		Drug: &drugDoc{
			ID:            string(doc.Drug.DrugID),
			Name:          doc.Drug.Name,
			Description:   doc.Drug.Description,
			Usage:         doc.Drug.Usage,
			Specification: doc.Drug.Specification,
		},
		Rules: make([]types.Rule, len(doc.Rules)),
	}
	for i, r := range doc.Rules {
		// implied by the drug section
		r.DrugID = ""
		fd.Rules[i] = r
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&fd); err != nil {
		return fmt.Errorf("failed to write rule file: %w", err)
	}
	return enc.Close()
}
