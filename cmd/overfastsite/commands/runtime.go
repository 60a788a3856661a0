package commands

import (
	"log/slog"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/overfastsite/internal/config"
	"git.home.luguber.info/inful/overfastsite/internal/eventstore"
	"git.home.luguber.info/inful/overfastsite/internal/generator"
	"git.home.luguber.info/inful/overfastsite/internal/logfields"
	"git.home.luguber.info/inful/overfastsite/internal/metrics"
	"git.home.luguber.info/inful/overfastsite/internal/notify"
	"git.home.luguber.info/inful/overfastsite/internal/overfast"
)

// runtime holds the long-lived collaborators of a generation: metrics,
// run history and notifications. Generators are cheap and built per run.
type runtime struct {
	logger   *slog.Logger
	registry *prom.Registry
	recorder *metrics.PrometheusRecorder
	store    *eventstore.SQLiteStore
	history  *eventstore.RunHistoryProjection
	notifier notify.Notifier
	textfile string
}

// newRuntime opens the optional run history and notifier. Neither is
// required to produce a page, so failures to reach the broker only warn.
func newRuntime(cfg *config.Config, logger *slog.Logger) (*runtime, error) {
	reg := prom.NewRegistry()
	rt := &runtime{
		logger:   logger,
		registry: reg,
		recorder: metrics.NewPrometheusRecorder(reg),
		notifier: notify.NoopNotifier{},
		textfile: cfg.Metrics.Textfile,
	}

	if cfg.History.Path != "" {
		store, err := eventstore.NewSQLiteStore(cfg.History.Path)
		if err != nil {
			return nil, err
		}
		rt.store = store
		rt.history = eventstore.NewRunHistoryProjection(store, 0)
	}

	n, err := notify.New(cfg.Notify.NATSURL, cfg.Notify.Subject)
	if err != nil {
		logger.Warn("Notifications disabled", slog.String("nats_url", cfg.Notify.NATSURL), logfields.Error(err))
	} else {
		rt.notifier = n
	}
	return rt, nil
}

// newGenerator builds a Generator for cfg sharing the runtime's collaborators.
func (rt *runtime) newGenerator(cfg *config.Config) *generator.Generator {
	client := overfast.NewClient(cfg.API.BaseURL,
		overfast.WithTimeout(cfg.API.Timeout),
		overfast.WithLogger(rt.logger),
		overfast.WithRecorder(rt.recorder),
	)
	opts := []generator.Option{
		generator.WithSite(generator.Site{
			Title:      cfg.Site.Title,
			Intro:      cfg.Site.Intro,
			Stylesheet: cfg.Site.Stylesheet,
		}),
		generator.WithLogger(rt.logger),
		generator.WithRecorder(rt.recorder),
		generator.WithNotifier(rt.notifier),
	}
	if rt.store != nil {
		opts = append(opts, generator.WithEventStore(rt.store))
	}
	return generator.New(client, opts...)
}

// afterRun exports metrics for node_exporter when a textfile is configured.
func (rt *runtime) afterRun() {
	if rt.textfile == "" {
		return
	}
	if err := metrics.WriteTextfile(rt.textfile, rt.registry); err != nil {
		rt.logger.Warn("Failed to write metrics textfile", logfields.Path(rt.textfile), logfields.Error(err))
	}
}

func (rt *runtime) Close() {
	if err := rt.notifier.Close(); err != nil {
		rt.logger.Warn("Notifier close error", logfields.Error(err))
	}
	if rt.store != nil {
		if err := rt.store.Close(); err != nil {
			rt.logger.Warn("Event store close error", logfields.Error(err))
		}
	}
}
