package commands

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/overfastsite/internal/config"
	"git.home.luguber.info/inful/overfastsite/internal/eventstore"
	ferrors "git.home.luguber.info/inful/overfastsite/internal/foundation/errors"
	"git.home.luguber.info/inful/overfastsite/internal/metrics"
	"git.home.luguber.info/inful/overfastsite/internal/overfast"
	"git.home.luguber.info/inful/overfastsite/internal/overfast/overfasttest"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T, server *overfasttest.Server) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.API.BaseURL = server.URL
	return cfg
}

func newParser(t *testing.T, cli *CLI, g *Global) *kong.Kong {
	t.Helper()
	parser, err := kong.New(cli,
		kong.Name("overfastsite"),
		kong.Vars{"version": "test"},
		kong.Bind(g),
		kong.Exit(func(int) { t.Fatal("unexpected exit") }),
	)
	require.NoError(t, err)
	return parser
}

func TestCLI_BuildIsDefaultCommand(t *testing.T) {
	var cli CLI
	g := &Global{}
	ctx, err := newParser(t, &cli, g).Parse([]string{"./dist"})
	require.NoError(t, err)
	require.Contains(t, ctx.Command(), "build")
	require.Equal(t, "./dist", cli.Build.OutputDir)
	require.Equal(t, "overfastsite.yaml", cli.Config)
	require.NotNil(t, g.Logger, "AfterApply sets up logging")

	cli = CLI{}
	ctx, err = newParser(t, &cli, g).Parse(nil)
	require.NoError(t, err)
	require.Equal(t, "build", ctx.Command())
	require.Empty(t, cli.Build.OutputDir)
}

func TestCLI_Subcommands(t *testing.T) {
	var cli CLI
	ctx, err := newParser(t, &cli, &Global{}).Parse([]string{"-c", "site.yaml", "-v", "serve", "out", "--addr", "127.0.0.1:9000"})
	require.NoError(t, err)
	require.Equal(t, "serve <outputDir>", ctx.Command())
	require.Equal(t, "site.yaml", cli.Config)
	require.True(t, cli.Verbose)
	require.Equal(t, "127.0.0.1:9000", cli.Serve.Addr)

	cli = CLI{}
	_, err = newParser(t, &cli, &Global{}).Parse([]string{"history", "-n", "3"})
	require.NoError(t, err)
	require.Equal(t, 3, cli.History.Limit)
}

func TestResolveOutputDir(t *testing.T) {
	cfg := config.Default()
	require.Equal(t, ".", ResolveOutputDir("", cfg))
	cfg.Output.Directory = "public"
	require.Equal(t, "public", ResolveOutputDir("", cfg))
	require.Equal(t, "dist", ResolveOutputDir("dist", cfg))
}

func TestRunBuild_PrintsRelativePath(t *testing.T) {
	server := overfasttest.NewServer(t)
	t.Chdir(t.TempDir())

	var out bytes.Buffer
	report, err := RunBuild(context.Background(), testConfig(t, server), "./dist", discardLogger(), &out)
	require.NoError(t, err)
	require.Equal(t, "index.html has been generated successfully at dist/index.html\n", out.String())
	require.Equal(t, filepath.Join("dist", "index.html"), report.OutputPath)
	require.FileExists(t, filepath.Join("dist", "index.html"))
}

func TestRunBuild_RecordsHistoryAndMetrics(t *testing.T) {
	server := overfasttest.NewServer(t)
	tmp := t.TempDir()
	cfg := testConfig(t, server)
	cfg.History.Path = filepath.Join(tmp, "state", "runs.db")
	cfg.Metrics.Textfile = filepath.Join(tmp, "metrics", "overfastsite.prom")
	dir := filepath.Join(tmp, "site")

	report, err := RunBuild(context.Background(), cfg, dir, discardLogger(), io.Discard)
	require.NoError(t, err)
	require.Equal(t, metrics.OutcomeSuccess, report.Outcome)

	prom, err := os.ReadFile(cfg.Metrics.Textfile)
	require.NoError(t, err)
	require.Contains(t, string(prom), "overfastsite_generation_outcomes_total")

	var out bytes.Buffer
	outline, err := RunVerify(dir, &out)
	require.NoError(t, err)
	require.Len(t, outline.HeroKeys, len(overfasttest.SampleHeroes))
	require.Contains(t, out.String(), "OK")

	out.Reset()
	runs, err := RunHistory(context.Background(), cfg, 5, &out)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, report.RunID, runs[0].RunID)
	require.Equal(t, eventstore.StatusSuccess, runs[0].Status)
	require.Contains(t, out.String(), report.RunID)
}

func TestRunBuild_DegradedStillSucceeds(t *testing.T) {
	server := overfasttest.NewServer(t)
	server.Fail(overfast.EndpointMaps, http.StatusInternalServerError)
	dir := t.TempDir()

	var out bytes.Buffer
	report, err := RunBuild(context.Background(), testConfig(t, server), dir, discardLogger(), &out)
	require.NoError(t, err)
	require.True(t, report.Degraded())
	require.Contains(t, out.String(), "generated successfully")

	out.Reset()
	_, err = RunVerify(filepath.Join(dir, "index.html"), &out)
	require.NoError(t, err)
	require.Contains(t, out.String(), "Placeholder: Error loading maps.")
}

func TestRunBuild_WriteFailureMapsToFilesystemExitCode(t *testing.T) {
	server := overfasttest.NewServer(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	var out bytes.Buffer
	_, err := RunBuild(context.Background(), testConfig(t, server), filepath.Join(blocker, "dist"), discardLogger(), &out)
	require.Error(t, err)
	require.Empty(t, out.String())
	require.Equal(t, 11, ferrors.NewCLIErrorAdapter(false, discardLogger()).ExitCodeFor(err))
}

func TestRunVerify_Errors(t *testing.T) {
	_, err := RunVerify(filepath.Join(t.TempDir(), "missing"), io.Discard)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryNotFound))

	path := filepath.Join(t.TempDir(), "index.html")
	require.NoError(t, os.WriteFile(path, []byte(`<html><body><section id="heroes" class="content"></section></body></html>`), 0o600))
	outline, err := RunVerify(path, io.Discard)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
	require.NotEmpty(t, outline.Problems())
}

func TestRunHistory_RequiresPath(t *testing.T) {
	_, err := RunHistory(context.Background(), config.Default(), 10, io.Discard)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))

	cfg := config.Default()
	cfg.History.Path = filepath.Join(t.TempDir(), "runs.db")
	var out bytes.Buffer
	runs, err := RunHistory(context.Background(), cfg, 10, &out)
	require.NoError(t, err)
	require.Empty(t, runs)
	require.Equal(t, "No runs recorded\n", out.String())
}

func TestRunInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overfastsite.yaml")
	require.NoError(t, RunInit(path, false))
	require.FileExists(t, path)

	err := RunInit(path, false)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
	require.NoError(t, RunInit(path, true))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, config.DefaultAPIBaseURL, cfg.API.BaseURL)
}

func TestRunServe_BuildsThenStopsWithContext(t *testing.T) {
	server := overfasttest.NewServer(t)
	tmp := t.TempDir()
	configPath := filepath.Join(tmp, "overfastsite.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("api:\n  base_url: "+server.URL+"\n"), 0o600))

	cfg, err := config.Load(configPath)
	require.NoError(t, err)
	cmd := ServeCmd{OutputDir: filepath.Join(tmp, "site"), Addr: "127.0.0.1:0"}
	opts := cmd.resolve(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- RunServe(ctx, configPath, cfg, opts, discardLogger()) }()

	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(opts.OutputDir, "index.html"))
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop")
	}
}
