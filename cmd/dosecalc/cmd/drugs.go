package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/solatis/dosecalc/internal/types"
	"github.com/spf13/cobra"
)

var drugsCmd = &cobra.Command{
	Use:   "drugs",
	Short: "List, search and delete stored drugs",
}

var drugsListCmd = &cobra.Command{
	Use:   "list [name]",
	Short: "List drugs, optionally filtered by a name substring",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, closeDB, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closeDB()

		var drugs []types.Drug
		if len(args) == 1 {
			drugs, err = s.SearchDrugs(ctx, args[0])
		} else {
			drugs, err = s.ListDrugs(ctx)
		}
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSPECIFICATION")
		for _, d := range drugs {
			fmt.Fprintf(w, "%s\t%s\t%s\n", d.DrugID, d.Name, d.Specification)
		}
		return w.Flush()
	},
}

var drugsDeleteCmd = &cobra.Command{
	Use:   "delete <drug-id>",
	Short: "Delete a drug and its rules",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		drugID, err := types.ParseDrugID(args[0])
		if err != nil {
			return fmt.Errorf("invalid drug id: %w", err)
		}

		s, closeDB, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closeDB()

		return s.DeleteDrug(ctx, drugID)
	},
}

func init() {
	rootCmd.AddCommand(drugsCmd)
	drugsCmd.AddCommand(drugsListCmd, drugsDeleteCmd)
}
