package secretsweep

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/accrava/secretsweep/internal/logging"
)

var version = "dev"

var flagDebug bool

// errFindings signals exit code 1: the scan worked and found issues at or
// above the fail-on threshold.
var errFindings = errors.New("issues found")

var rootCmd = &cobra.Command{
	Use:           "secretsweep",
	Short:         "Scan page scripts and web storage for hardcoded secrets",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return logging.Init(flagDebug)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "verbose logging to stderr")
}

// Execute runs the CLI and returns the process exit code:
// 0 ok, 1 findings at or above fail-on, 2 error.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	logging.Sync()
	code := exitCode(err)
	if code == 2 {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	return code
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errFindings):
		return 1
	}
	return 2
}
