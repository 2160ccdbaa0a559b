package cmd

import (
	"errors"
	"fmt"

	"github.com/solatis/dosecalc/internal/core/config"
	"github.com/solatis/dosecalc/internal/core/ruleset"
	"github.com/solatis/dosecalc/internal/types"
	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Validate, import and export rule files",
}

var rulesValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check every rule in a rule file",
	Long: `Compiles every condition and formula in the file and reports all failures.
Units, frequencies and routes outside the configured option lists are
reported as warnings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("rules")
		doc, err := ruleset.Load(path)
		if err != nil {
			return err
		}

		warnUnknownOptions(doc.Rules, cfg.Options)
		if err := doc.Validate(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d rules ok\n", len(doc.Rules))
		return nil
	},
}

var rulesImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Store a rule file, replacing the drug's rules",
	Long: `Imports a rule file. A drug section with an id replaces that drug's rules
(creating the drug when it does not exist yet); without an id a new drug is
created from the drug section. --drug targets an existing drug instead.`,
	RunE: runRulesImport,
}

var rulesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a drug and its rules as a YAML rule file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
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

		drug, err := s.GetDrug(ctx, drugID)
		if err != nil {
			return err
		}
		list, err := s.Rules(ctx, drugID)
		if err != nil {
			return err
		}
		return ruleset.Encode(cmd.OutOrStdout(), &ruleset.Document{Drug: drug, Rules: list})
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesValidateCmd, rulesImportCmd, rulesExportCmd)

	rulesValidateCmd.Flags().String("rules", "", "rule file (YAML or JSON)")
	rulesValidateCmd.MarkFlagRequired("rules")

	rulesImportCmd.Flags().String("rules", "", "rule file (YAML or JSON)")
	rulesImportCmd.Flags().String("drug", "", "existing drug id to attach the rules to")
	rulesImportCmd.MarkFlagRequired("rules")

	rulesExportCmd.Flags().String("drug", "", "drug id")
	rulesExportCmd.MarkFlagRequired("drug")
}

func runRulesImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path, _ := cmd.Flags().GetString("rules")
	doc, err := ruleset.Load(path)
	if err != nil {
		return err
	}
	warnUnknownOptions(doc.Rules, cfg.Options)

	s, closeDB, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	drugID := doc.Drug.DrugID
	if drugFlag, _ := cmd.Flags().GetString("drug"); drugFlag != "" {
		if drugID, err = types.ParseDrugID(drugFlag); err != nil {
			return fmt.Errorf("invalid --drug: %w", err)
		}
		if _, err := s.GetDrug(ctx, drugID); err != nil {
			return err
		}
	} else {
		_, err := s.GetDrug(ctx, drugID)
		switch {
		case drugID != "" && err == nil:
		case drugID == "" || errors.Is(err, types.ErrDrugNotFound):
			created, err := s.CreateDrug(ctx, doc.Drug)
			if err != nil {
				return err
			}
			drugID = created.DrugID
		default:
			return err
		}
	}

	saved, err := s.ReplaceRules(ctx, drugID, doc.Rules)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d rules for drug %s\n", len(saved), drugID)
	return nil
}

// warnUnknownOptions logs rule metadata outside the editor option lists.
// The engine copies these fields verbatim, so they never fail a rule.
func warnUnknownOptions(list []types.Rule, opts config.Options) {
	for _, r := range list {
		log := logger.WithField("rule_id", r.ID)
		if r.Unit != "" && !config.Contains(opts.Units, r.Unit) {
			log.WithField("unit", r.Unit).Warn("unit not in configured options")
		}
		if r.Frequency != "" && !config.Contains(opts.Frequencies, r.Frequency) {
			log.WithField("frequency", r.Frequency).Warn("frequency not in configured options")
		}
		if r.Route != "" && !config.Contains(opts.Routes, r.Route) {
			log.WithField("route", r.Route).Warn("route not in configured options")
		}
	}
}
