package secretsweep

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/accrava/secretsweep/internal/clipboard"
	"github.com/accrava/secretsweep/internal/config"
	"github.com/accrava/secretsweep/internal/engine"
	"github.com/accrava/secretsweep/internal/logging"
	"github.com/accrava/secretsweep/internal/report"
	"github.com/accrava/secretsweep/pkg/core"
)

// copyReport and copyWait are swapped in tests.
var (
	copyReport = clipboard.CopyAsync
	copyWait   = 2 * time.Second
)

var (
	flagJSON        bool
	flagSARIF       bool
	flagTOML        bool
	flagFailOn      string
	flagNoClipboard bool
	flagNoColor     bool
	flagNoBaseline  bool
)

func init() {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan page scripts and web storage for secrets",
		Example: `  secretsweep scan --url https://app.example.com
  secretsweep scan --html page.html --storage storage.json --json`,
		RunE: runScan,
	}
	rootCmd.AddCommand(cmd)

	addSourceFlags(cmd)
	addFilterFlags(cmd)
	cmd.Flags().BoolVar(&flagJSON, "json", false, "emit JSON")
	cmd.Flags().BoolVar(&flagSARIF, "sarif", false, "emit SARIF 2.1.0")
	cmd.Flags().BoolVar(&flagTOML, "toml", false, "emit TOML")
	cmd.Flags().StringVar(&flagFailOn, "fail-on", "", "lowest severity that fails (low|medium|high, default medium)")
	cmd.Flags().BoolVar(&flagNoClipboard, "no-clipboard", false, "do not copy the report to the clipboard")
	cmd.Flags().BoolVar(&flagNoColor, "no-color", false, "disable colored output")
	cmd.Flags().BoolVar(&flagNoBaseline, "no-baseline", false, "report issues already in "+report.BaselineFile)
}

func runScan(cmd *cobra.Command, _ []string) error {
	gcfg, lcfg := loadConfigs()
	ecfg, err := engineConfig(lcfg, gcfg)
	if err != nil {
		return err
	}
	scripts, storage, err := collectors(lcfg, gcfg)
	if err != nil {
		return err
	}
	return scanWith(cmd, ecfg, lcfg, gcfg, scripts, storage)
}

func scanWith(cmd *cobra.Command, ecfg engine.Config, lcfg, gcfg config.FileConfig, scripts, storage engine.Collector) error {
	structured := flagJSON || flagSARIF || flagTOML
	if stderrIsTerminal() {
		ecfg.Progress = progressPrinter(cmd.ErrOrStderr())
	}
	opts := core.Options{
		Engine:    ecfg,
		Scripts:   scripts,
		Storage:   storage,
		NoColor:   pickBool(flagNoColor, lcfg.NoColor, gcfg.NoColor),
		Clipboard: !structured && !pickBool(flagNoClipboard, lcfg.NoClipboard, gcfg.NoClipboard),
		Copy:      copyReport,
	}
	if !structured {
		opts.Out = cmd.OutOrStdout()
	}
	if !flagNoBaseline {
		if base, err := report.LoadBaseline(report.BaselineFile); err == nil {
			opts.Baseline = base
		}
	}

	out := core.New(opts).Run(cmd.Context())
	for _, e := range out.Errors {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", e)
	}

	var err error
	w := cmd.OutOrStdout()
	switch {
	case flagSARIF:
		err = report.WriteSARIF(w, out.ScanResult, version)
	case flagJSON:
		err = report.WriteJSON(w, out.ScanResult)
	case flagTOML:
		err = report.WriteTOML(w, out.ScanResult)
	}
	if err != nil {
		return err
	}
	waitCopy(out.Copied)

	if n := countCollectors(scripts, storage); n > 0 && len(out.Failed) == n {
		return fmt.Errorf("every source failed: %w", out.Errors[0])
	}
	if report.ShouldFail(out.ScanResult, pickString(flagFailOn, lcfg.FailOn, gcfg.FailOn)) {
		return errFindings
	}
	return nil
}

// waitCopy gives a started clipboard copy up to copyWait to finish, so the
// process does not exit underneath it.
func waitCopy(done <-chan error) {
	if done == nil {
		return
	}
	select {
	case <-done:
	case <-time.After(copyWait):
		logging.Logger.Warnw("clipboard copy still running, not waiting", "after", copyWait)
	}
}

func countCollectors(cs ...engine.Collector) int {
	n := 0
	for _, c := range cs {
		if c != nil {
			n++
		}
	}
	return n
}

// stderrIsTerminal is used to decide whether progress goes to stderr.
func stderrIsTerminal() bool {
	fi, err := os.Stderr.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}

func progressPrinter(w io.Writer) engine.ProgressFunc {
	return func(e engine.ProgressEvent) {
		switch {
		case !e.Done:
			fmt.Fprintf(w, "[%d/%d] collecting %s\n", e.Index+1, e.Total, e.Name)
		case e.Err != nil:
			fmt.Fprintf(w, "[%d/%d] %s failed: %v\n", e.Index+1, e.Total, e.Name, e.Err)
		default:
			fmt.Fprintf(w, "[%d/%d] %s: %d units\n", e.Index+1, e.Total, e.Name, e.Units)
		}
	}
}
