package secretsweep

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/accrava/secretsweep/internal/collect"
	"github.com/accrava/secretsweep/internal/config"
	"github.com/accrava/secretsweep/internal/engine"
	"github.com/accrava/secretsweep/internal/ignore"
	"github.com/accrava/secretsweep/internal/logging"
	"github.com/accrava/secretsweep/internal/types"
)

const defaultTimeout = 30 * time.Second

// source flags, shared by scan, view and baseline update
var (
	flagURL        string
	flagHTML       string
	flagStorage    string
	flagTimeout    time.Duration
	flagChromePath string
)

// filter flags, shared by every command that scans
var (
	flagMinSeverity string
	flagIgnoreFile  string
	flagMask        bool
)

func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagURL, "url", "", "load a live page in headless Chrome")
	cmd.Flags().StringVar(&flagHTML, "html", "", "scan the scripts of a saved HTML file")
	cmd.Flags().StringVar(&flagStorage, "storage", "", "scan a JSON or YAML storage dump")
	cmd.Flags().DurationVar(&flagTimeout, "timeout", 0, "page load timeout (default 30s)")
	cmd.Flags().StringVar(&flagChromePath, "chrome-path", "", "Chrome executable for --url")
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagMinSeverity, "min-severity", "", "drop issues below this severity (low|medium|high)")
	cmd.Flags().StringVar(&flagIgnoreFile, "ignore", "", "ignore file (default "+ignore.FileName+")")
	cmd.Flags().BoolVar(&flagMask, "mask", false, "mask assigned values in previews")
}

// loadConfigs returns the global and local file configs. Missing files are
// not an error; unreadable ones are logged and skipped.
func loadConfigs() (gcfg, lcfg config.FileConfig) {
	if c, err := config.LoadGlobal(); err == nil {
		gcfg = c
	}
	abs, _ := filepath.Abs(".")
	if c, err := config.LoadLocal(abs); err == nil {
		lcfg = c
	} else {
		logging.Logger.Debugw("no local config", "dir", abs, "error", err)
	}
	return gcfg, lcfg
}

// engineConfig resolves the scan filters with CLI > local > global precedence.
func engineConfig(lcfg, gcfg config.FileConfig) (engine.Config, error) {
	var cfg engine.Config

	if s := pickString(flagMinSeverity, lcfg.MinSeverity, gcfg.MinSeverity); s != "" {
		cfg.MinSeverity = types.ParseSeverity(s)
		if cfg.MinSeverity == "" {
			return cfg, fmt.Errorf("invalid min severity %q", s)
		}
	}
	cfg.MaskPreviews = pickBool(flagMask, lcfg.MaskPreviews, gcfg.MaskPreviews)

	path := pickString(flagIgnoreFile, lcfg.IgnoreFile, gcfg.IgnoreFile)
	if path == "" {
		path = ignore.FileName
	}
	m, err := ignore.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("load ignore file: %w", err)
	}
	cfg.Ignore = m
	return cfg, nil
}

// collectors builds the script and storage collectors from the source flags.
func collectors(lcfg, gcfg config.FileConfig) (scripts, storage engine.Collector, err error) {
	if flagURL != "" && flagHTML != "" {
		return nil, nil, fmt.Errorf("--url and --html are mutually exclusive")
	}
	timeout, err := resolveTimeout(flagTimeout, lcfg, gcfg, defaultTimeout)
	if err != nil {
		return nil, nil, err
	}
	switch {
	case flagURL != "":
		scripts = collect.Browser{
			URL:         flagURL,
			Timeout:     timeout,
			ExecPath:    pickString(flagChromePath, lcfg.ChromePath, gcfg.ChromePath),
			SkipStorage: flagStorage != "",
		}
	case flagHTML != "":
		scripts = collect.HTMLDocument{Path: flagHTML}
	}
	if flagStorage != "" {
		storage = collect.StorageDump{Path: flagStorage}
	}
	if scripts == nil && storage == nil {
		return nil, nil, fmt.Errorf("nothing to scan: pass --url, --html or --storage")
	}
	return scripts, storage, nil
}

func resolveTimeout(flag time.Duration, lcfg, gcfg config.FileConfig, def time.Duration) (time.Duration, error) {
	if flag > 0 {
		return flag, nil
	}
	for _, s := range []*string{lcfg.Timeout, gcfg.Timeout} {
		if s == nil || *s == "" {
			continue
		}
		d, err := time.ParseDuration(*s)
		if err != nil {
			return 0, fmt.Errorf("invalid timeout %q: %w", *s, err)
		}
		return d, nil
	}
	return def, nil
}

func pickString(flag string, local, global *string) string {
	if flag != "" {
		return flag
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return ""
}

func pickBool(flag bool, local, global *bool) bool {
	if flag {
		return true
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return false
}
