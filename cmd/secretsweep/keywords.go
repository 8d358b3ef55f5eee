package secretsweep

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/accrava/secretsweep/internal/detectors"
	"github.com/accrava/secretsweep/pkg/core"
)

func init() {
	cmd := &cobra.Command{
		Use:   "keywords",
		Short: "List the keyword catalog with its severity",
		Run: func(cmd *cobra.Command, _ []string) {
			for _, kw := range core.New(core.Options{}).Keywords() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-6s  %s\n", detectors.Classify(kw), quoted(kw))
			}
		},
	}
	rootCmd.AddCommand(cmd)
}

// quoted shows keywords with significant whitespace, like "Basic ".
func quoted(kw string) string {
	if strings.TrimSpace(kw) != kw {
		return fmt.Sprintf("%q", kw)
	}
	return kw
}
