package secretsweep

import (
	"github.com/spf13/cobra"

	"github.com/accrava/secretsweep/internal/engine"
	"github.com/accrava/secretsweep/internal/report"
	"github.com/accrava/secretsweep/internal/tui"
)

func init() {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Scan and browse the findings interactively",
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
			var cs []engine.Collector
			for _, c := range []engine.Collector{scripts, storage} {
				if c != nil {
					cs = append(cs, c)
				}
			}
			res := engine.Scan(cmd.Context(), ecfg, cs...)

			baselined := map[string]bool{}
			if base, err := report.LoadBaseline(report.BaselineFile); err == nil {
				baselined = base.Items
			}
			return tui.Run(res.ScanResult, baselined)
		},
	}
	addSourceFlags(cmd)
	addFilterFlags(cmd)
	rootCmd.AddCommand(cmd)
}
