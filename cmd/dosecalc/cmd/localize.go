package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/solatis/dosecalc/internal/localize"
	"github.com/solatis/dosecalc/internal/rules"
	"github.com/solatis/dosecalc/internal/types"
	"github.com/spf13/cobra"
)

var localizeCmd = &cobra.Command{
	Use:   "localize <condition>",
	Short: "Render a machine condition as editor text",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l := localize.NewLocalizer(localize.DefaultVocabulary())
		text, err := l.Localize(strings.Join(args, " "))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetEscapeHTML(false)
			return enc.Encode(struct {
				Text    string                `json:"text"`
				Atoms   []types.ConditionAtom `json:"atoms"`
				Options localize.Options      `json:"options"`
			}{text, l.Parse(text), l.Options()})
		}
		fmt.Fprintln(out, text)
		return nil
	},
}

var delocalizeCmd = &cobra.Command{
	Use:   "delocalize <text>",
	Short: "Convert editor text to a machine condition",
	Long: `Prints the machine condition for editor text. Unknown words are kept as
typed; the command then fails with the parse error after printing.
--normalize resets each row's unit to one valid for its condition type.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l := localize.NewLocalizer(localize.DefaultVocabulary())
		atoms := l.Parse(strings.Join(args, " "))
		if normalize, _ := cmd.Flags().GetBool("normalize"); normalize {
			atoms = l.NormalizeAll(atoms)
		}
		condition := l.Serialize(atoms)
		fmt.Fprintln(cmd.OutOrStdout(), condition)

		if _, err := rules.ParseCondition(condition); err != nil {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(localizeCmd)
	rootCmd.AddCommand(delocalizeCmd)
	localizeCmd.Flags().Bool("json", false, "print text, editor rows and editor options as JSON")
	delocalizeCmd.Flags().Bool("normalize", false, "reset row units to match their condition type")
}
