package secretsweep

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/accrava/secretsweep/internal/clipboard"
	"github.com/accrava/secretsweep/internal/config"
	"github.com/accrava/secretsweep/internal/engine"
	"github.com/accrava/secretsweep/internal/report"
	"github.com/accrava/secretsweep/internal/types"
)

func strptr(s string) *string { return &s }
func boolptr(b bool) *bool    { return &b }

func TestResolveTimeout_Precedence(t *testing.T) {
	// Case 1: flag wins
	d, err := resolveTimeout(5*time.Second, config.FileConfig{Timeout: strptr("2s")}, config.FileConfig{}, time.Minute)
	if err != nil || d != 5*time.Second {
		t.Fatalf("flag precedence failed: got (%v,%v)", d, err)
	}

	// Case 2: local overrides global
	d, err = resolveTimeout(0, config.FileConfig{Timeout: strptr("2s")}, config.FileConfig{Timeout: strptr("9s")}, time.Minute)
	if err != nil || d != 2*time.Second {
		t.Fatalf("local override failed: got (%v,%v)", d, err)
	}

	// Case 3: global applies when local absent
	d, err = resolveTimeout(0, config.FileConfig{}, config.FileConfig{Timeout: strptr("9s")}, time.Minute)
	if err != nil || d != 9*time.Second {
		t.Fatalf("global fallback failed: got (%v,%v)", d, err)
	}

	// Case 4: default
	d, err = resolveTimeout(0, config.FileConfig{}, config.FileConfig{}, time.Minute)
	if err != nil || d != time.Minute {
		t.Fatalf("default failed: got (%v,%v)", d, err)
	}

	if _, err := resolveTimeout(0, config.FileConfig{Timeout: strptr("soon")}, config.FileConfig{}, time.Minute); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

func TestPick(t *testing.T) {
	if got := pickString("cli", strptr("local"), strptr("global")); got != "cli" {
		t.Errorf("pickString flag: got %q", got)
	}
	if got := pickString("", strptr("local"), strptr("global")); got != "local" {
		t.Errorf("pickString local: got %q", got)
	}
	if got := pickString("", nil, strptr("global")); got != "global" {
		t.Errorf("pickString global: got %q", got)
	}
	if !pickBool(true, boolptr(false), nil) {
		t.Error("pickBool: flag should win")
	}
	if pickBool(false, boolptr(false), boolptr(true)) {
		t.Error("pickBool: local false should override global true")
	}
	if !pickBool(false, nil, boolptr(true)) {
		t.Error("pickBool: global should apply")
	}
}

func TestExitCode(t *testing.T) {
	if exitCode(nil) != 0 || exitCode(errFindings) != 1 || exitCode(os.ErrNotExist) != 2 {
		t.Fatal("unexpected exit code mapping")
	}
}

// resetFlags restores every package-level flag to its default.
func resetFlags() {
	flagURL, flagHTML, flagStorage, flagChromePath = "", "", "", ""
	flagTimeout = 0
	flagMinSeverity, flagIgnoreFile, flagMask = "", "", false
	flagJSON, flagSARIF, flagTOML = false, false, false
	flagFailOn, flagNoClipboard, flagNoColor, flagNoBaseline = "", false, false, false
	flagLabel, flagCheckJSON = "text", false
	flagAddr, flagMCPPort = "", 0
	flagDebug = false
	copyReport, copyWait = clipboard.CopyAsync, 2*time.Second
}

// execute runs the CLI in a temp working directory with an empty global config.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func workdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(dir)
	return dir
}

const page = `<html><head>
<script src="https://cdn.example.com/lib.js"></script>
<script>window.cfg = {client_secret: "abc"};</script>
</head></html>`

const dump = `{"localStorage": {"jwt": "Bearer eyJ", "theme": "dark"}}`

func writeFixtures(t *testing.T, dir string) (html, storage string) {
	t.Helper()
	html = filepath.Join(dir, "page.html")
	storage = filepath.Join(dir, "storage.json")
	if err := os.WriteFile(html, []byte(page), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(storage, []byte(dump), 0644); err != nil {
		t.Fatal(err)
	}
	return html, storage
}

func TestCLI_ScanJSON(t *testing.T) {
	dir := workdir(t)
	html, storage := writeFixtures(t, dir)

	out, err := execute(t, "", "scan", "--html", html, "--storage", storage, "--json", "--fail-on", "high")
	if exitCode(err) != 1 {
		t.Fatalf("expected exit 1 for a HIGH issue, got %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("json unmarshal: %v\n%s", err, out)
	}
	if len(doc["scripts"].([]any)) != 2 {
		t.Errorf("expected inline finding and external placeholder, got %v", doc["scripts"])
	}
	if len(doc["storage"].([]any)) != 1 {
		t.Errorf("expected one storage finding, got %v", doc["storage"])
	}
}

func TestCLI_ScanReport(t *testing.T) {
	dir := workdir(t)
	html, storage := writeFixtures(t, dir)

	out, err := execute(t, "", "scan", "--html", html, "--storage", storage, "--no-clipboard", "--no-color", "--fail-on", "high", "--min-severity", "medium")
	if exitCode(err) != 1 {
		t.Fatalf("expected exit 1, got %v", err)
	}
	for _, want := range []string{"SECURITY SCAN REPORT", "Script: inline_script_1", "! HIGH: client_secret", "Total issues found: 1", "https://cdn.example.com/lib.js: External script - check manually"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "STORAGE WITH ISSUES") {
		t.Error("LOW storage issue should be filtered by --min-severity")
	}
}

func TestCLI_ScanNothing(t *testing.T) {
	workdir(t)
	_, err := execute(t, "", "scan", "--json")
	if exitCode(err) != 2 {
		t.Fatalf("expected exit 2, got %v", err)
	}
}

func TestCLI_BaselineThenScan(t *testing.T) {
	dir := workdir(t)
	html, storage := writeFixtures(t, dir)

	out, err := execute(t, "", "baseline", "update", "--html", html, "--storage", storage)
	if err != nil {
		t.Fatalf("baseline update: %v", err)
	}
	if !strings.Contains(out, "Baseline updated") {
		t.Errorf("unexpected output %q", out)
	}
	if _, err := report.LoadBaseline(filepath.Join(dir, report.BaselineFile)); err != nil {
		t.Fatalf("baseline not written: %v", err)
	}

	out, err = execute(t, "", "scan", "--html", html, "--storage", storage, "--no-clipboard", "--no-color", "--fail-on", "low")
	if err != nil {
		t.Fatalf("expected clean scan after baseline, got %v", err)
	}
	if !strings.Contains(out, report.NoIssues) {
		t.Errorf("expected no issues:\n%s", out)
	}
}

func TestCLI_Check(t *testing.T) {
	workdir(t)

	out, err := execute(t, "", "check", "password=hunter2")
	if exitCode(err) != 1 {
		t.Fatalf("expected exit 1, got %v", err)
	}
	if !strings.Contains(out, "! MEDIUM: password (1 occurrences)") {
		t.Errorf("unexpected output %q", out)
	}

	out, err = execute(t, "hello world", "check")
	if err != nil {
		t.Fatalf("stdin check: %v", err)
	}
	if strings.TrimSpace(out) != report.NoIssues {
		t.Errorf("unexpected output %q", out)
	}
}

func TestCLI_Check_LocalConfigFailOn(t *testing.T) {
	dir := workdir(t)
	if err := os.WriteFile(filepath.Join(dir, ".secretsweep.yaml"), []byte("fail_on: high\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "", "check", "password=hunter2"); err != nil {
		t.Fatalf("local fail_on: high should pass a MEDIUM issue, got %v", err)
	}
}

func TestCLI_Storage(t *testing.T) {
	dir := workdir(t)
	_, storage := writeFixtures(t, dir)

	out, err := execute(t, "", "storage", storage, "--no-color", "--fail-on", "high")
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	if !strings.Contains(out, "localStorage: jwt") || !strings.Contains(out, "Total issues found: 1") {
		t.Errorf("unexpected report:\n%s", out)
	}

	if _, err := execute(t, "", "storage", filepath.Join(dir, "missing.json")); exitCode(err) != 2 {
		t.Fatalf("expected exit 2 for missing file, got %v", err)
	}
}

func TestCLI_Keywords(t *testing.T) {
	workdir(t)
	out, err := execute(t, "", "keywords")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 27 {
		t.Fatalf("expected 27 keywords, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "HIGH") || !strings.HasSuffix(lines[0], "client_secret") {
		t.Errorf("unexpected first line %q", lines[0])
	}
	if !strings.Contains(out, `"Basic "`) {
		t.Error("keywords with trailing space should be quoted")
	}
}

func TestCLI_Version(t *testing.T) {
	out, err := execute(t, "", "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "secretsweep ") {
		t.Errorf("unexpected version output %q", out)
	}
}

// scanCmd returns a command wired to buffers for calling scanWith directly.
func scanCmd(t *testing.T) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	workdir(t)
	resetFlags()
	t.Cleanup(resetFlags)
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	return cmd, &out
}

func inlineScript(content string) types.ScanUnit {
	return types.ScanUnit{Kind: types.KindInlineScript, Label: types.ScriptLabel(0), Content: content}
}

func TestCLI_ScanPartialCollectorStillReports(t *testing.T) {
	cmd, out := scanCmd(t)
	flagJSON = true

	partial := engine.CollectorFunc{ID: "page", Fn: func(context.Context) ([]types.ScanUnit, error) {
		return []types.ScanUnit{inlineScript(`var client_secret = "abc";`)}, errors.New("storage: devtools closed")
	}}
	err := scanWith(cmd, engine.Config{}, config.FileConfig{}, config.FileConfig{}, partial, nil)
	if exitCode(err) != 1 {
		t.Fatalf("expected exit 1 for a HIGH issue, got %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatalf("json unmarshal: %v\n%s", err, out.String())
	}
	if len(doc["scripts"].([]any)) != 1 {
		t.Errorf("expected the inline finding, got %v", doc["scripts"])
	}
}

func TestCLI_ScanEverySourceFailed(t *testing.T) {
	cmd, out := scanCmd(t)
	flagJSON = true

	failing := engine.CollectorFunc{ID: "page", Fn: func(context.Context) ([]types.ScanUnit, error) {
		return nil, errors.New("navigate: timeout")
	}}
	err := scanWith(cmd, engine.Config{}, config.FileConfig{}, config.FileConfig{}, failing, nil)
	if exitCode(err) != 2 || !strings.Contains(err.Error(), "every source failed") {
		t.Fatalf("expected exit 2, got %v", err)
	}
	if !json.Valid(out.Bytes()) {
		t.Errorf("structured output should still be written:\n%s", out.String())
	}
}

func TestCLI_ScanWaitsForClipboard(t *testing.T) {
	cmd, out := scanCmd(t)
	var copied atomic.Bool
	copyReport = func(string) <-chan error {
		done := make(chan error, 1)
		go func() {
			time.Sleep(50 * time.Millisecond)
			copied.Store(true)
			done <- nil
		}()
		return done
	}

	err := scanWith(cmd, engine.Config{}, config.FileConfig{}, config.FileConfig{}, engine.Static("page", []types.ScanUnit{inlineScript("console.log(1)")}), nil)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !copied.Load() {
		t.Fatal("scan returned before the clipboard copy finished")
	}
	if !strings.Contains(out.String(), "SECURITY SCAN REPORT") {
		t.Errorf("report not printed:\n%s", out.String())
	}
}

func TestCLI_ScanClipboardWaitIsBounded(t *testing.T) {
	cmd, _ := scanCmd(t)
	copyWait = 20 * time.Millisecond
	copyReport = func(string) <-chan error { return make(chan error) }

	start := time.Now()
	err := scanWith(cmd, engine.Config{}, config.FileConfig{}, config.FileConfig{}, engine.Static("page", []types.ScanUnit{inlineScript("console.log(1)")}), nil)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if d := time.Since(start); d > time.Second {
		t.Fatalf("scan blocked on a stuck clipboard for %v", d)
	}
}
