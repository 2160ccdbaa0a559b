package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const testDrugID = "0190a5b2-7c1e-7d3a-9f00-0123456789ab"

const testRuleFile = `
drug:
  id: ` + testDrugID + `
  name: 布洛芬混悬液
rules:
  - condition: "Age < 3 year && Weight < 40 Kg"
    formula: "7.5"
    unit: mg
    frequency: TID
    route: 口服
  - condition: "Age at [3,14] year"
    formula: "31.25*Weight"
    unit: mg
    frequency: TID
    route: 口服
`

// resetFlags restores every flag to its default, since cobra keeps parsed
// values on the package-level commands between Execute calls.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	dbFlag := "--db-url=sqlite://" + filepath.Join(dir, "dosecalc.db")
	rulesPath := filepath.Join(dir, "ibuprofen.yaml")
	if err := os.WriteFile(rulesPath, []byte(testRuleFile), 0o644); err != nil {
		t.Fatal(err)
	}

	if out, err := run(t, "migrate", dbFlag); err != nil || !strings.Contains(out, "up to date") {
		t.Fatalf("migrate: %q, %v", out, err)
	}

	if out, err := run(t, "rules", "validate", dbFlag, "--rules", rulesPath); err != nil || !strings.Contains(out, "2 rules ok") {
		t.Fatalf("rules validate: %q, %v", out, err)
	}

	if out, err := run(t, "rules", "import", dbFlag, "--rules", rulesPath); err != nil || !strings.Contains(out, "imported 2 rules") {
		t.Fatalf("rules import: %q, %v", out, err)
	}

	out, err := run(t, "drugs", "list", dbFlag)
	if err != nil || !strings.Contains(out, testDrugID) {
		t.Fatalf("drugs list: %q, %v", out, err)
	}

	out, err = run(t, "calculate", dbFlag, "--drug", testDrugID, "--age", "5", "--weight", "20")
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	want := `{"Dosage":625,"Unit":"mg","Frequency":"TID","Route":"口服"}`
	if strings.TrimSpace(out) != want {
		t.Errorf("calculate = %q, want %q", out, want)
	}

	out, err = run(t, "rules", "export", dbFlag, "--drug", testDrugID)
	if err != nil || !strings.Contains(out, "31.25*Weight") {
		t.Errorf("rules export: %q, %v", out, err)
	}

	out, err = run(t, "localize", "Age at [3,14] year")
	if err != nil || strings.TrimSpace(out) != "年龄 范围在 3-14 岁" {
		t.Errorf("localize = %q, %v", out, err)
	}

	out, err = run(t, "delocalize", "年龄 小于 3 岁且体重 小于 40 Kg")
	if err != nil || strings.TrimSpace(out) != "Age < 3 year && Weight < 40 Kg" {
		t.Errorf("delocalize = %q, %v", out, err)
	}

	out, err = run(t, "delocalize", "--normalize", "体重 小于 40 岁")
	if err != nil || strings.TrimSpace(out) != "Weight < 40 Kg" {
		t.Errorf("delocalize --normalize = %q, %v", out, err)
	}

	out, err = run(t, "localize", "--json", "Weight at [-4,-2] Kg")
	if err != nil {
		t.Fatalf("localize --json: %v", err)
	}
	var localized struct {
		Text    string `json:"text"`
		Options struct {
			Comparisons []string            `json:"comparisons"`
			Units       map[string][]string `json:"units"`
		} `json:"options"`
	}
	if err := json.Unmarshal([]byte(out), &localized); err != nil {
		t.Fatalf("localize --json output %q: %v", out, err)
	}
	if localized.Text != "体重 范围在 -4--2 Kg" {
		t.Errorf("localize --json text = %q", localized.Text)
	}
	if len(localized.Options.Comparisons) != 6 || len(localized.Options.Units["年龄"]) != 2 {
		t.Errorf("localize --json options = %+v", localized.Options)
	}

	out, err = run(t, "calculate", "--rules", rulesPath, "--age", "24", "--age-unit", "month", "--weight", "12")
	if err != nil {
		t.Fatalf("calculate --rules: %v", err)
	}
	want = `{"Dosage":7.5,"Unit":"mg","Frequency":"TID","Route":"口服"}`
	if strings.TrimSpace(out) != want {
		t.Errorf("calculate --rules = %q, want %q", out, want)
	}
}
