package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/overfastsite/cmd/overfastsite/commands"
	ferrors "git.home.luguber.info/inful/overfastsite/internal/foundation/errors"
	"git.home.luguber.info/inful/overfastsite/internal/version"
)

func main() {
	var cli commands.CLI
	global := &commands.Global{Logger: slog.Default()}

	parser := kong.Parse(&cli,
		kong.Name("overfastsite"),
		kong.Description("Generate a static index.html from the OverFast API."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version + " (" + version.GitCommit + ", " + version.BuildTime + ")"},
		kong.Bind(global),
	)

	err := parser.Run(&cli)
	ferrors.NewCLIErrorAdapter(cli.Verbose, global.Logger).HandleError(err)
}
