package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/overfastsite/internal/config"
	"git.home.luguber.info/inful/overfastsite/internal/daemon"
	"git.home.luguber.info/inful/overfastsite/internal/generator"
	"git.home.luguber.info/inful/overfastsite/internal/metrics"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	OutputDir string `arg:"" optional:"" name:"outputDir" help:"Directory to generate and serve (default: output.directory or .)"`
	Addr      string `help:"HTTP listen address (default: serve.addr)"`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return RunServe(ctx, root.Config, cfg, s.resolve(cfg), g.Logger)
}

func (s *ServeCmd) resolve(cfg *config.Config) daemon.Options {
	addr := s.Addr
	if addr == "" {
		addr = cfg.Serve.Addr
	}
	return daemon.Options{
		OutputDir: ResolveOutputDir(s.OutputDir, cfg),
		Addr:      addr,
		Interval:  cfg.Serve.Interval,
	}
}

// RunServe builds, serves and keeps the page fresh until ctx is canceled.
// Every rebuild re-reads configPath so edits to the site settings apply
// without a restart; an unreadable config fails that rebuild only.
func RunServe(ctx context.Context, configPath string, cfg *config.Config, opts daemon.Options, logger *slog.Logger) error {
	rt, err := newRuntime(cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	build := func(ctx context.Context) (*generator.Report, error) {
		current, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		report, err := rt.newGenerator(current).Run(ctx, opts.OutputDir)
		rt.afterRun()
		return report, err
	}

	opts.ConfigPath = configPath
	opts.Metrics = metrics.HTTPHandler(rt.registry)
	opts.History = rt.history

	d, err := daemon.New(opts, build)
	if err != nil {
		return err
	}

	go func() {
		select {
		case <-d.Ready():
			fmt.Printf("Serving %s on http://%s\n", opts.OutputDir, d.Addr())
		case <-ctx.Done():
		}
	}()
	return d.Run(ctx)
}
