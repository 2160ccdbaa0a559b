package cmd

import (
	"fmt"

	"github.com/solatis/dosecalc/internal/core/ruleset"
	"github.com/solatis/dosecalc/internal/rules"
	"github.com/solatis/dosecalc/internal/types"
	"github.com/spf13/cobra"
)

var calculateCmd = &cobra.Command{
	Use:   "calculate",
	Short: "Select a dose for a patient",
	Long: `Evaluates a drug's rules in order and prints the first match as JSON:
{"Dosage":...,"Unit":...,"Frequency":...,"Route":...}, or {} when no rule matches.
Rules come from the database (--drug) or a rule file (--rules).`,
	RunE: runCalculate,
}

func init() {
	rootCmd.AddCommand(calculateCmd)
	calculateCmd.Flags().String("drug", "", "drug id to load rules from the database")
	calculateCmd.Flags().String("rules", "", "rule file (YAML or JSON)")
	calculateCmd.Flags().Int("age", 0, "patient age")
	calculateCmd.Flags().String("age-unit", "year", "age unit (year, month)")
	calculateCmd.Flags().Float64("weight", 0, "patient weight in Kg")
	calculateCmd.MarkFlagsMutuallyExclusive("drug", "rules")
	calculateCmd.MarkFlagsOneRequired("drug", "rules")
	calculateCmd.MarkFlagRequired("age")
	calculateCmd.MarkFlagRequired("weight")
}

func runCalculate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	age, _ := cmd.Flags().GetInt("age")
	weight, _ := cmd.Flags().GetFloat64("weight")
	unitFlag, _ := cmd.Flags().GetString("age-unit")
	unit, err := types.ParseAgeUnit(unitFlag)
	if err != nil {
		return err
	}
	patient := types.PatientInput{Age: age, AgeUnit: unit, Weight: weight}

	engine := rules.NewEngine(logger)

	var result *types.CalculationResult
	if path, _ := cmd.Flags().GetString("rules"); path != "" {
		doc, err := ruleset.Load(path)
		if err != nil {
			return err
		}
		// a rule file is checked as a whole before any patient is evaluated
		compiled, err := rules.CompileAll(doc.Rules)
		if err != nil {
			return err
		}
		if result, err = engine.SelectCompiled(compiled, patient); err != nil {
			return err
		}
	} else {
		drugFlag, _ := cmd.Flags().GetString("drug")
		drugID, err := types.ParseDrugID(drugFlag)
		if err != nil {
			return fmt.Errorf("invalid --drug: %w", err)
		}
		s, closeDB, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closeDB()
		list, err := s.Rules(ctx, drugID)
		if err != nil {
			return err
		}
		if result, err = engine.Select(list, patient); err != nil {
			return err
		}
	}

	out, err := types.EncodeResult(result)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
