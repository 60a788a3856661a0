package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/overfastsite/internal/config"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (optional)" default:"overfastsite.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" default:"withargs" help:"Generate index.html from the OverFast API (default command)"`
	Init    InitCmd    `cmd:"" help:"Initialize a new configuration file"`
	Verify  VerifyCmd  `cmd:"" help:"Inspect a generated page and report its sections"`
	Serve   ServeCmd   `cmd:"" help:"Serve the generated site and rebuild it on a schedule"`
	History HistoryCmd `cmd:"" help:"List recent generation runs"`
}

// AfterApply runs after flag parsing; sets up logging before any config is read.
// The level may be raised later by loadConfig once log settings are known.
func (c *CLI) AfterApply(g *Global) error {
	logCfg := config.LogConfig{Level: os.Getenv(config.EnvLogLevel)}
	g.Logger = logCfg.NewLogger(os.Stderr, c.Verbose)
	slog.SetDefault(g.Logger)
	return nil
}

// loadConfig reads the root configuration and reconfigures logging from it.
func loadConfig(g *Global, root *CLI) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	g.Logger = cfg.Log.NewLogger(os.Stderr, root.Verbose)
	slog.SetDefault(g.Logger)
	return cfg, nil
}

// ResolveOutputDir picks the output directory: positional argument first,
// then output.directory from the configuration.
func ResolveOutputDir(arg string, cfg *config.Config) string {
	if arg != "" {
		return arg
	}
	if cfg.Output.Directory != "" {
		return cfg.Output.Directory
	}
	return "."
}
