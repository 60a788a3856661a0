package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/overfastsite/internal/config"
	"git.home.luguber.info/inful/overfastsite/internal/generator"
)

// BuildCmd implements the default 'build' command.
type BuildCmd struct {
	OutputDir string `arg:"" optional:"" name:"outputDir" help:"Directory to write index.html into (default: output.directory or .)"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, err = RunBuild(ctx, cfg, ResolveOutputDir(b.OutputDir, cfg), g.Logger, os.Stdout)
	return err
}

// RunBuild generates one page and prints where it was written to out.
func RunBuild(ctx context.Context, cfg *config.Config, outputDir string, logger *slog.Logger, out io.Writer) (*generator.Report, error) {
	rt, err := newRuntime(cfg, logger)
	if err != nil {
		return nil, err
	}
	defer rt.Close()

	report, err := rt.newGenerator(cfg).Run(ctx, outputDir)
	rt.afterRun()
	if err != nil {
		return report, err
	}

	if report.Degraded() {
		logger.Warn("Page generated with placeholders", slog.Any("failed", report.Failed()))
	}
	_, _ = fmt.Fprintf(out, "index.html has been generated successfully at %s\n", report.OutputPath)
	return report, nil
}
