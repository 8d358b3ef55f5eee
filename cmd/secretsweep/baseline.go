package secretsweep

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/accrava/secretsweep/internal/report"
	"github.com/accrava/secretsweep/pkg/core"
)

func init() {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Manage baselines",
	}

	update := &cobra.Command{
		Use:   "update",
		Short: "Update baseline from current scan",
		RunE: func(cmd *cobra.Command, _ []string) error {
			gcfg, lcfg := loadConfigs()
			ecfg, err := engineConfig(lcfg, gcfg)
			if err != nil {
				return err
			}
			scripts, storage, err := collectors(lcfg, gcfg)
			if err != nil {
				return err
			}
			out := core.New(core.Options{Engine: ecfg, Scripts: scripts, Storage: storage}).Run(cmd.Context())
			if len(out.Errors) > 0 {
				return fmt.Errorf("scan incomplete: %w", out.Errors[0])
			}
			if err := report.SaveBaseline(report.BaselineFile, out.ScanResult); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Baseline updated: %d issues.\n", len(out.Issues()))
			return nil
		},
	}
	addSourceFlags(update)
	addFilterFlags(update)

	rootCmd.AddCommand(cmd)
	cmd.AddCommand(update)
}
