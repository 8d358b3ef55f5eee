package secretsweep

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionString())
		},
	}
	rootCmd.AddCommand(cmd)
}

func versionString() string {
	rev, ts := "", ""
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				rev = s.Value
			case "vcs.time":
				ts = s.Value
			}
		}
	}
	if rev != "" || ts != "" {
		return fmt.Sprintf("secretsweep %s (commit %s, built %s)", version, short(rev), ts)
	}
	return "secretsweep " + version
}

func short(s string) string {
	if len(s) > 7 {
		return s[:7]
	}
	return s
}
