package benchviolin

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwiater/benchviolin/internal/bench"
	"github.com/mwiater/benchviolin/internal/config"
	"github.com/mwiater/benchviolin/internal/suite"
)

func TestRoot_SubcommandsPresent(t *testing.T) {
	have := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		have[c.Name()] = true
		if c.Name() == "list" {
			sub := map[string]bool{}
			for _, sc := range c.Commands() {
				sub[sc.Name()] = true
			}
			if !sub["suites"] || !sub["commands"] {
				t.Fatalf("list subcommands missing: %v", sub)
			}
		}
	}
	for _, want := range []string{"run", "list", "view", "version"} {
		if !have[want] {
			t.Fatalf("missing subcommand %s", want)
		}
	}
}

func TestCommands_HaveDescriptions(t *testing.T) {
	var check func(*cobra.Command)
	check = func(cmd *cobra.Command) {
		if cmd.Short == "" || cmd.Long == "" {
			t.Fatalf("command %s missing Short/Long", cmd.Name())
		}
		for _, sc := range cmd.Commands() {
			if sc.Name() == "help" || sc.Name() == "completion" {
				continue
			}
			check(sc)
		}
	}
	check(rootCmd)
}

func TestListCommands_PrintsTree(t *testing.T) {
	var buf bytes.Buffer
	listAllCommands(&buf, rootCmd)
	out := buf.String()
	if !strings.Contains(out, "benchviolin run") {
		t.Fatalf("expected command path in output, got: %s", out)
	}
	assert.Contains(t, out, "    benchviolin list suites")
}

func TestRoot_UnknownCommand(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"nonexistent"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown command "nonexistent" for "benchviolin"`)
}

func TestListSuites(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"list", "suites", "--filter", "mult/*"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "mult/div float L1")
	assert.NotContains(t, buf.String(), "add/sub int L1")
}

func TestView_PassesPath(t *testing.T) {
	called := ""
	old := startViewer
	startViewer = func(path string) error { called = path; return nil }
	defer func() { startViewer = old }()

	rootCmd.SetArgs([]string{"view", "results.json"})
	defer rootCmd.SetArgs(nil)
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "results.json", called)
}

// withRegistry swaps the command registry for one fast suite.
func withRegistry(t *testing.T, fail bool) {
	t.Helper()
	r := suite.NewRegistry()
	r.Register("tiny", func(env *suite.Env) error {
		s, err := env.NewSession(env.Defaults.WithTitle("tiny").WithRelative(true))
		if err != nil {
			return err
		}
		if err := s.Run("a", func() {}); err != nil {
			return err
		}
		if err := s.Run("b", func() { bench.DoNotOptimizeAway(make([]byte, 64)) }); err != nil {
			return err
		}
		if fail {
			return assert.AnError
		}
		return env.Render(s, "")
	})
	old := registry
	registry = r
	t.Cleanup(func() { registry = old })
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	v, err := config.New("")
	require.NoError(t, err)
	v.Set("session.epochs", 3)
	v.Set("session.min_epoch_time", "0s")
	v.Set("session.min_epoch_iterations", 10)
	cfg, err := config.Load(v)
	require.NoError(t, err)
	return cfg
}

func TestRunSuites_WritesReports(t *testing.T) {
	withRegistry(t, false)
	dir := t.TempDir()
	cfg := testConfig(t)
	cfg.Output = filepath.Join(dir, "report.html")
	cfg.JSON = filepath.Join(dir, "results.json")

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetContext(context.Background())
	require.NoError(t, runSuites(cmd, cfg, false))

	out := buf.String()
	assert.Contains(t, out, "tiny")
	assert.Contains(t, out, "relative")
	assert.Contains(t, out, "Report written to")
	assert.Contains(t, out, "Results written to")

	page, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)
	assert.Contains(t, string(page), `<div id="plot0">`)
	assert.Contains(t, string(page), "</html>")

	raw, err := os.ReadFile(cfg.JSON)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Len(t, decoded["sessions"], 1)
}

func TestRunSuites_FailureStillClosesReport(t *testing.T) {
	withRegistry(t, true)
	cfg := testConfig(t)
	cfg.Output = filepath.Join(t.TempDir(), "report.html")

	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetContext(context.Background())
	err := runSuites(cmd, cfg, false)
	require.ErrorIs(t, err, assert.AnError)

	page, readErr := os.ReadFile(cfg.Output)
	require.NoError(t, readErr)
	assert.True(t, strings.HasSuffix(string(page), "</html>\n"))
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, os.ErrClosed }

func TestRunSuites_ConsoleFailureStillWritesReports(t *testing.T) {
	withRegistry(t, false)
	dir := t.TempDir()
	cfg := testConfig(t)
	cfg.Output = filepath.Join(dir, "report.html")
	cfg.JSON = filepath.Join(dir, "results.json")

	cmd := &cobra.Command{}
	cmd.SetOut(brokenWriter{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetContext(context.Background())
	err := runSuites(cmd, cfg, false)
	require.ErrorIs(t, err, os.ErrClosed)

	page, readErr := os.ReadFile(cfg.Output)
	require.NoError(t, readErr)
	assert.Contains(t, string(page), `<div id="plot0">`)
	assert.True(t, strings.HasSuffix(string(page), "</html>\n"))
	assert.FileExists(t, cfg.JSON)
}

func TestRunSuites_BadOutput(t *testing.T) {
	withRegistry(t, false)
	cfg := testConfig(t)
	cfg.Output = filepath.Join(t.TempDir(), "missing", "report.html")

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	assert.Error(t, runSuites(cmd, cfg, false))
}

func TestRun_Command(t *testing.T) {
	withRegistry(t, false)
	t.Setenv("BENCHVIOLIN_SESSION_EPOCHS", "2")
	t.Setenv("BENCHVIOLIN_SESSION_MIN_EPOCH_TIME", "0s")

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"run", "--filter", "tiny"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "ok")
	assert.Contains(t, buf.String(), "tiny")
}
