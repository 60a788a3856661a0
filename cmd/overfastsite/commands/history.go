package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/overfastsite/internal/config"
	"git.home.luguber.info/inful/overfastsite/internal/eventstore"
	ferrors "git.home.luguber.info/inful/overfastsite/internal/foundation/errors"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int `short:"n" help:"Number of runs to show" default:"10"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	_, err = RunHistory(context.Background(), cfg, h.Limit, os.Stdout)
	return err
}

// RunHistory prints the most recent runs recorded in history.path.
func RunHistory(ctx context.Context, cfg *config.Config, limit int, out io.Writer) ([]eventstore.RunSummary, error) {
	if cfg.History.Path == "" {
		return nil, ferrors.ConfigError("run history is not configured").
			WithContext("key", "history.path").
			UserAction().
			Build()
	}
	if limit <= 0 {
		return nil, ferrors.ValidationError("limit must be > 0").Build()
	}

	store, err := eventstore.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()

	projection := eventstore.NewRunHistoryProjection(store, limit)
	if err := projection.Rebuild(ctx); err != nil {
		return nil, err
	}
	runs := projection.History()
	if len(runs) > limit {
		runs = runs[:limit]
	}

	if len(runs) == 0 {
		_, _ = fmt.Fprintln(out, "No runs recorded")
		return runs, nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "RUN ID\tSTARTED\tTRIGGER\tSTATUS\tDURATION\tDETAIL")
	for _, r := range runs {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.RunID,
			r.StartedAt.Local().Format(time.DateTime),
			r.Trigger,
			r.Status,
			r.Duration.Round(time.Millisecond),
			detail(r))
	}
	return runs, tw.Flush()
}

func detail(r eventstore.RunSummary) string {
	switch {
	case r.ErrorMessage != "":
		return r.ErrorStage + ": " + r.ErrorMessage
	case len(r.Failed) > 0:
		return "failed: " + strings.Join(r.Failed, ",")
	default:
		return r.OutputPath
	}
}
