// Package core is the stable entry point to secretsweep. A Checker exposes
// the full scan, ad-hoc text and storage checks, and the keyword catalog.
package core

import (
	"context"
	"io"

	"github.com/accrava/secretsweep/internal/clipboard"
	"github.com/accrava/secretsweep/internal/detectors"
	"github.com/accrava/secretsweep/internal/engine"
	"github.com/accrava/secretsweep/internal/logging"
	"github.com/accrava/secretsweep/internal/report"
	"github.com/accrava/secretsweep/internal/types"
)

type Options struct {
	// Engine carries the registry, ignore patterns and filters. A nil
	// Engine.Registry means the default catalog.
	Engine engine.Config
	// Scripts and Storage are the collectors used by Run; either may be nil.
	// CheckStorage uses Storage only.
	Scripts engine.Collector
	Storage engine.Collector
	// Out receives the rendered report. Nil discards it.
	Out     io.Writer
	NoColor bool
	// Clipboard enables the best-effort copy of the report after Run.
	Clipboard bool
	// Copy overrides the clipboard sink.
	Copy func(text string) <-chan error
	// Baseline drops already accepted issues from Run before rendering.
	Baseline report.Baseline
}

// Outcome is what Run returns: the structured result, its rendering, and
// any collector failures that were isolated during the scan.
type Outcome struct {
	types.ScanResult
	Report       string
	UnitsScanned int
	Errors       []error
	// Failed names the collectors that produced nothing.
	Failed []string
	// Copied receives the clipboard outcome once. Nil when no copy was started.
	Copied <-chan error
}

type Checker struct {
	opts Options
	reg  *detectors.Registry
}

func New(opts Options) *Checker {
	reg := opts.Engine.Registry
	if reg == nil {
		reg = detectors.Default()
		opts.Engine.Registry = reg
	}
	if opts.Copy == nil {
		opts.Copy = clipboard.CopyAsync
	}
	return &Checker{opts: opts, reg: reg}
}

// Run collects scripts and storage, renders the report, writes it to Out and
// starts the clipboard copy without waiting for it. Callers that exit right
// after Run may wait on Outcome.Copied for a bounded time.
func (c *Checker) Run(ctx context.Context) Outcome {
	logging.Logger.Infow("starting security scan")
	var cs []engine.Collector
	if c.opts.Scripts != nil {
		cs = append(cs, c.opts.Scripts)
	}
	if c.opts.Storage != nil {
		cs = append(cs, c.opts.Storage)
	}
	res := engine.Scan(ctx, c.opts.Engine, cs...)
	if len(c.opts.Baseline.Items) > 0 {
		res.ScanResult = report.FilterNew(res.ScanResult, c.opts.Baseline)
	}
	text := report.Render(res.ScanResult)

	logging.Logger.Infow("scan complete",
		"scripts", len(res.Scripts),
		"storage", len(res.Storage),
		"units", res.UnitsScanned,
		"total", report.Total(res.ScanResult),
		"timestamp", res.Timestamp,
	)
	logging.Logger.Debugw("scan result", "result", res.ScanResult, "report", text)
	if c.opts.Out != nil {
		report.Print(c.opts.Out, text, report.PrintOptions{NoColor: c.opts.NoColor})
	}
	out := Outcome{
		ScanResult:   res.ScanResult,
		Report:       text,
		UnitsScanned: res.UnitsScanned,
		Errors:       res.Errors,
		Failed:       res.Failed,
	}
	if c.opts.Clipboard {
		out.Copied = c.opts.Copy(text)
	}
	return out
}

// CheckText matches a single piece of text against the catalog.
func (c *Checker) CheckText(text, label string) []types.Issue {
	return c.reg.FindIssues(text, label)
}

// CheckStorage scans only the storage collector.
func (c *Checker) CheckStorage(ctx context.Context) types.ScanResult {
	if c.opts.Storage == nil {
		return engine.Scan(ctx, c.opts.Engine).ScanResult
	}
	return engine.Scan(ctx, c.opts.Engine, c.opts.Storage).ScanResult
}

// Keywords returns a copy of the catalog.
func (c *Checker) Keywords() []string {
	return c.reg.Keywords()
}
