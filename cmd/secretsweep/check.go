package secretsweep

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/accrava/secretsweep/internal/collect"
	"github.com/accrava/secretsweep/internal/report"
	"github.com/accrava/secretsweep/internal/types"
	"github.com/accrava/secretsweep/pkg/core"
)

var (
	flagLabel     string
	flagCheckJSON bool
)

func init() {
	check := &cobra.Command{
		Use:   "check [TEXT]",
		Short: "Check a piece of text (stdin when no argument) against the keyword catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCheck,
	}
	check.Flags().StringVar(&flagLabel, "label", "text", "source label recorded on each issue")
	check.Flags().BoolVar(&flagCheckJSON, "json", false, "emit JSON")
	check.Flags().StringVar(&flagFailOn, "fail-on", "", "lowest severity that fails (low|medium|high, default medium)")
	rootCmd.AddCommand(check)

	storage := &cobra.Command{
		Use:   "storage FILE",
		Short: "Scan a JSON or YAML storage dump",
		Args:  cobra.ExactArgs(1),
		RunE:  runStorage,
	}
	addFilterFlags(storage)
	storage.Flags().BoolVar(&flagCheckJSON, "json", false, "emit JSON")
	storage.Flags().StringVar(&flagFailOn, "fail-on", "", "lowest severity that fails (low|medium|high, default medium)")
	storage.Flags().BoolVar(&flagNoColor, "no-color", false, "disable colored output")
	rootCmd.AddCommand(storage)
}

func runCheck(cmd *cobra.Command, args []string) error {
	var text string
	if len(args) == 1 {
		text = args[0]
	} else {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(b)
	}

	gcfg, lcfg := loadConfigs()
	issues := core.New(core.Options{}).CheckText(text, flagLabel)
	res := types.ScanResult{}
	if len(issues) > 0 {
		res.Scripts = []types.Finding{{Kind: types.KindInlineScript, Label: flagLabel, Issues: issues}}
	}

	w := cmd.OutOrStdout()
	if flagCheckJSON {
		if err := report.WriteJSON(w, res); err != nil {
			return err
		}
	} else if len(issues) == 0 {
		fmt.Fprintln(w, report.NoIssues)
	} else {
		for _, is := range issues {
			fmt.Fprintf(w, "! %s: %s (%d occurrences)\n", is.Severity, is.Keyword, is.Count)
		}
	}

	if report.ShouldFail(res, pickString(flagFailOn, lcfg.FailOn, gcfg.FailOn)) {
		return errFindings
	}
	return nil
}

func runStorage(cmd *cobra.Command, args []string) error {
	gcfg, lcfg := loadConfigs()
	ecfg, err := engineConfig(lcfg, gcfg)
	if err != nil {
		return err
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	st, err := collect.ParseStorage(f)
	f.Close()
	if err != nil {
		return err
	}

	res := core.New(core.Options{Engine: ecfg, Storage: collect.StorageCollector{Storage: st}}).CheckStorage(cmd.Context())
	w := cmd.OutOrStdout()
	if flagCheckJSON {
		if err := report.WriteJSON(w, res); err != nil {
			return err
		}
	} else {
		text := report.Render(res)
		report.Print(w, text, report.PrintOptions{NoColor: pickBool(flagNoColor, lcfg.NoColor, gcfg.NoColor)})
	}

	if report.ShouldFail(res, pickString(flagFailOn, lcfg.FailOn, gcfg.FailOn)) {
		return errFindings
	}
	return nil
}
