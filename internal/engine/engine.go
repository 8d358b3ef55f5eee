package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/accrava/secretsweep/internal/detectors"
	"github.com/accrava/secretsweep/internal/ignore"
	"github.com/accrava/secretsweep/internal/logging"
	"github.com/accrava/secretsweep/internal/redact"
	"github.com/accrava/secretsweep/internal/types"
)

const (
	WarnExternal   = "External script - check manually"
	WarnUnreadable = "Content unavailable - check manually"
	WarnBinary     = "Non-text content - check manually"
)

// Collector enumerates units of text from some host environment.
type Collector interface {
	Name() string
	Collect(ctx context.Context) ([]types.ScanUnit, error)
}

type Config struct {
	// Registry defaults to detectors.Default().
	Registry     *detectors.Registry
	Ignore       ignore.Matcher
	MinSeverity  types.Severity
	MaskPreviews bool
	Progress     ProgressFunc
	// Now defaults to time.Now; tests pin it.
	Now func() time.Time
}

// ProgressEvent is emitted before (Done=false) and after (Done=true) each collector.
type ProgressEvent struct {
	Name  string
	Index int
	Total int
	Done  bool
	Units int
	Err   error
}

type ProgressFunc func(ProgressEvent)

// Result wraps the scan result with run statistics.
type Result struct {
	types.ScanResult
	UnitsScanned int
	UnitsIgnored int
	Duration     time.Duration
	// Errors holds collector failures. They never abort the scan.
	Errors []error
	// Failed names the collectors that returned an error and no units.
	Failed []string
}

// Scan runs every collector in order and matches each unit it yields.
// Failures are isolated: a collector error drops only that collector's
// units, and an unreadable unit becomes a manual-review finding.
func Scan(ctx context.Context, cfg Config, collectors ...Collector) Result {
	start := time.Now()
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	var res Result
	total := len(collectors)
	for i, c := range collectors {
		if cfg.Progress != nil {
			cfg.Progress(ProgressEvent{Name: c.Name(), Index: i, Total: total})
		}
		units, err := c.Collect(ctx)
		if err != nil {
			logging.Logger.Warnw("collector failed", "collector", c.Name(), "error", err)
			res.Errors = append(res.Errors, fmt.Errorf("collector %s: %w", c.Name(), err))
			if len(units) == 0 {
				res.Failed = append(res.Failed, c.Name())
			}
		}
		for _, u := range units {
			if cfg.Ignore.Match(u.Label) {
				logging.Logger.Debugw("unit ignored", "label", u.Label)
				res.UnitsIgnored++
				continue
			}
			res.UnitsScanned++
			f, ok := processUnit(cfg, u)
			if !ok {
				continue
			}
			if u.Kind.IsStorage() {
				res.Storage = append(res.Storage, f)
			} else {
				res.Scripts = append(res.Scripts, f)
			}
		}
		if cfg.Progress != nil {
			cfg.Progress(ProgressEvent{Name: c.Name(), Index: i, Total: total, Done: true, Units: len(units), Err: err})
		}
	}
	res.Timestamp = now().UTC()
	res.Duration = time.Since(start)
	return res
}

// ScanUnits is Scan over an already collected slice of units.
func ScanUnits(ctx context.Context, cfg Config, units []types.ScanUnit) Result {
	return Scan(ctx, cfg, Static("units", units))
}

// processUnit returns the finding for one unit, or false when the unit
// contributes nothing to the result.
func processUnit(cfg Config, u types.ScanUnit) (types.Finding, bool) {
	f := types.Finding{
		Kind:      u.Kind,
		Label:     u.Label,
		Namespace: u.Namespace,
		Key:       u.Key,
		Src:       u.Src,
	}
	switch {
	case u.Kind == types.KindExternalScript:
		f.Warning = WarnExternal
		return f, true
	case u.Err != nil:
		logging.Logger.Warnw("unit unreadable", "label", u.Label, "error", u.Err)
		f.Warning = fmt.Sprintf("%s (%v)", WarnUnreadable, u.Err)
		return f, true
	case looksBinary(u.Content):
		logging.Logger.Warnw("unit holds non-text content", "label", u.Label)
		f.Warning = WarnBinary
		return f, true
	}

	reg := cfg.Registry
	if reg == nil {
		reg = detectors.Default()
	}
	issues := filterSeverity(reg.FindIssues(u.Content, u.Label), cfg.MinSeverity)
	if len(issues) == 0 {
		return f, false
	}
	f.Issues = issues

	content := u.Content
	if cfg.MaskPreviews {
		content = redact.Mask(content)
	}
	n := redact.ScriptPreviewLen
	if u.Kind.IsStorage() {
		n = redact.StoragePreviewLen
	}
	f.Preview = redact.Preview(content, n)
	return f, true
}

func filterSeverity(issues []types.Issue, min types.Severity) []types.Issue {
	if min.Rank() <= types.SevLow.Rank() {
		return issues
	}
	var out []types.Issue
	for _, is := range issues {
		if is.Severity.Rank() >= min.Rank() {
			out = append(out, is)
		}
	}
	return out
}

// crude binary sniff over the first bytes
func looksBinary(s string) bool {
	const sniff = 800
	n := sniff
	if len(s) < n {
		n = len(s)
	}
	for i := 0; i < n; i++ {
		if s[i] == 0 {
			return true
		}
	}
	return false
}
