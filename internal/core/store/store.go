// Package store persists drugs and their ordered dosing rules.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/solatis/dosecalc/internal/core/db"
	"github.com/solatis/dosecalc/internal/rules"
	"github.com/solatis/dosecalc/internal/types"
)

// Store reads and writes drugs and rules through named queries.
// Safe for concurrent use; the underlying pool serializes as needed.
type Store struct {
	q   *db.Queries
	log logrus.FieldLogger
	now func() time.Time
}

// New returns a Store over q. A nil logger discards output.
func New(q *db.Queries, log logrus.FieldLogger) *Store {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Store{q: q, log: log, now: func() time.Time { return time.Now().UTC() }}
}

type drugRow struct {
	DrugID        string `db:"drug_id"`
	Name          string `db:"name"`
	Description   string `db:"description"`
	Usage         string `db:"usage"`
	Specification string `db:"specification"`
}

func (r drugRow) drug() types.Drug {
	return types.Drug{
		DrugID:        types.DrugID(r.DrugID),
		Name:          r.Name,
		Description:   r.Description,
		Usage:         r.Usage,
		Specification: r.Specification,
	}
}

type ruleRow struct {
	RuleID    string `db:"rule_id"`
	DrugID    string `db:"drug_id"`
	Condition string `db:"condition_expr"`
	Formula   string `db:"formula"`
	Unit      string `db:"unit"`
	Frequency string `db:"frequency"`
	Route     string `db:"route"`
}

func (r ruleRow) rule() types.Rule {
	return types.Rule{
		ID:        types.RuleID(r.RuleID),
		DrugID:    types.DrugID(r.DrugID),
		Condition: r.Condition,
		Formula:   r.Formula,
		Unit:      r.Unit,
		Frequency: r.Frequency,
		Route:     r.Route,
	}
}

// CreateDrug inserts a drug. A missing DrugID is generated.
func (s *Store) CreateDrug(ctx context.Context, drug types.Drug) (types.Drug, error) {
	if strings.TrimSpace(drug.Name) == "" {
		return types.Drug{}, fmt.Errorf("%w: name is required", types.ErrInvalidDrug)
	}
	if drug.DrugID == "" {
		drug.DrugID = types.NewDrugID()
	}

	_, err := s.q.Exec(ctx, "create-drug",
		string(drug.DrugID), drug.Name, drug.Description, drug.Usage, drug.Specification, s.now())
	if err != nil {
		return types.Drug{}, fmt.Errorf("failed to create drug: %w", err)
	}

	s.log.WithField("drug_id", drug.DrugID).Info("created drug")
	return drug, nil
}

// UpdateDrug overwrites a drug's descriptive fields.
func (s *Store) UpdateDrug(ctx context.Context, drug types.Drug) error {
	if strings.TrimSpace(drug.Name) == "" {
		return fmt.Errorf("%w: name is required", types.ErrInvalidDrug)
	}
	res, err := s.q.Exec(ctx, "update-drug",
		drug.Name, drug.Description, drug.Usage, drug.Specification, string(drug.DrugID))
	if err != nil {
		return fmt.Errorf("failed to update drug: %w", err)
	}
	return expectOne(res, drug.DrugID)
}

// GetDrug returns the drug with id, or types.ErrDrugNotFound.
func (s *Store) GetDrug(ctx context.Context, id types.DrugID) (types.Drug, error) {
	return getDrug(ctx, s.q, id)
}

func getDrug(ctx context.Context, q *db.Queries, id types.DrugID) (types.Drug, error) {
	var row drugRow
	if err := q.Get(ctx, "get-drug", &row, string(id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Drug{}, fmt.Errorf("%w: %s", types.ErrDrugNotFound, id)
		}
		return types.Drug{}, fmt.Errorf("failed to get drug: %w", err)
	}
	return row.drug(), nil
}

// ListDrugs returns all drugs ordered by name.
func (s *Store) ListDrugs(ctx context.Context) ([]types.Drug, error) {
	var rows []drugRow
	if err := s.q.Select(ctx, "list-drugs", &rows); err != nil {
		return nil, fmt.Errorf("failed to list drugs: %w", err)
	}
	return drugs(rows), nil
}

// SearchDrugs returns drugs whose name contains term, case-insensitively.
func (s *Store) SearchDrugs(ctx context.Context, term string) ([]types.Drug, error) {
	var rows []drugRow
	if err := s.q.Select(ctx, "search-drugs", &rows, "%"+stripWildcards(term)+"%"); err != nil {
		return nil, fmt.Errorf("failed to search drugs: %w", err)
	}
	return drugs(rows), nil
}

// DeleteDrug removes a drug and, by cascade, its rules.
func (s *Store) DeleteDrug(ctx context.Context, id types.DrugID) error {
	err := s.q.WithTx(ctx, func(tx *db.Queries) error {
		// explicit delete keeps postgres and sqlite-without-fk in step
		if _, err := tx.Exec(ctx, "delete-rules-for-drug", string(id)); err != nil {
			return fmt.Errorf("failed to delete rules: %w", err)
		}
		res, err := tx.Exec(ctx, "delete-drug", string(id))
		if err != nil {
			return fmt.Errorf("failed to delete drug: %w", err)
		}
		return expectOne(res, id)
	})
	if err != nil {
		return err
	}
	s.log.WithField("drug_id", id).Info("deleted drug")
	return nil
}

// ReplaceRules swaps a drug's rule list for rules, in order. Every rule
// must compile; nothing is written otherwise. Rules without an id get one.
func (s *Store) ReplaceRules(ctx context.Context, drugID types.DrugID, list []types.Rule) ([]types.Rule, error) {
	out := make([]types.Rule, len(list))
	for i, r := range list {
		r.DrugID = drugID
		if r.ID == "" {
			r.ID = types.NewRuleID()
		}
		out[i] = r
	}

	if _, err := rules.CompileAll(out); err != nil {
		return nil, err
	}

	err := s.q.WithTx(ctx, func(tx *db.Queries) error {
		if _, err := getDrug(ctx, tx, drugID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, "delete-rules-for-drug", string(drugID)); err != nil {
			return fmt.Errorf("failed to delete rules: %w", err)
		}
		for i, r := range out {
			_, err := tx.Exec(ctx, "insert-rule",
				string(r.ID), string(drugID), i, r.Condition, r.Formula, r.Unit, r.Frequency, r.Route)
			if err != nil {
				return fmt.Errorf("failed to insert rule %s: %w", r.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"drug_id": drugID,
		"rules":   len(out),
	}).Info("replaced rules")
	return out, nil
}

// Rules returns a drug's rules in evaluation order. Unknown drugs return
// types.ErrDrugNotFound; a known drug may have no rules.
func (s *Store) Rules(ctx context.Context, drugID types.DrugID) ([]types.Rule, error) {
	var rows []ruleRow
	if err := s.q.Select(ctx, "list-rules-for-drug", &rows, string(drugID)); err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	if len(rows) == 0 {
		if _, err := s.GetDrug(ctx, drugID); err != nil {
			return nil, err
		}
	}

	out := make([]types.Rule, len(rows))
	for i, r := range rows {
		out[i] = r.rule()
	}
	return out, nil
}

func drugs(rows []drugRow) []types.Drug {
	out := make([]types.Drug, len(rows))
	for i, r := range rows {
		out[i] = r.drug()
	}
	return out
}

func expectOne(res sql.Result, id types.DrugID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", types.ErrDrugNotFound, id)
	}
	return nil
}

// stripWildcards drops LIKE wildcards from user input.
func stripWildcards(s string) string {
	return strings.NewReplacer(`%`, ``, `_`, ``).Replace(s)
}
