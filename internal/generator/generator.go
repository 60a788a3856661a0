// Package generator runs one site generation: fetch the four collections,
// render them, assemble the page and write it. Fetch failures degrade the
// page; only a failure to produce or write the document fails the run.
package generator

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/overfastsite/internal/eventstore"
	"git.home.luguber.info/inful/overfastsite/internal/foundation"
	ferrors "git.home.luguber.info/inful/overfastsite/internal/foundation/errors"
	"git.home.luguber.info/inful/overfastsite/internal/logfields"
	"git.home.luguber.info/inful/overfastsite/internal/metrics"
	"git.home.luguber.info/inful/overfastsite/internal/notify"
	"git.home.luguber.info/inful/overfastsite/internal/overfast"
	"git.home.luguber.info/inful/overfastsite/internal/page"
	"git.home.luguber.info/inful/overfastsite/internal/render"
	"git.home.luguber.info/inful/overfastsite/internal/version"
)

// Fetcher is the upstream API as seen by the generator.
type Fetcher interface {
	BaseURL() string
	FetchAll(ctx context.Context) overfast.Collections
}

// Site carries the page chrome.
type Site struct {
	Title      string
	Intro      string
	Stylesheet string
}

// Generator produces index.html from the upstream API.
type Generator struct {
	fetcher  Fetcher
	site     Site
	logger   *slog.Logger
	recorder metrics.Recorder
	store    eventstore.Store
	notifier notify.Notifier
	now      func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithSite sets the page chrome.
func WithSite(s Site) Option { return func(g *Generator) { g.site = s } }

// WithLogger sets the run logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithRecorder injects a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(g *Generator) {
		if r != nil {
			g.recorder = r
		}
	}
}

// WithEventStore records run events in s.
func WithEventStore(s eventstore.Store) Option { return func(g *Generator) { g.store = s } }

// WithNotifier publishes a notification after each written page.
func WithNotifier(n notify.Notifier) Option {
	return func(g *Generator) {
		if n != nil {
			g.notifier = n
		}
	}
}

// New creates a generator reading from client.
func New(client Fetcher, opts ...Option) *Generator {
	g := &Generator{
		fetcher:  client,
		site:     Site{Title: "OverFast API Website"},
		logger:   slog.Default(),
		recorder: metrics.NoopRecorder{},
		notifier: notify.NoopNotifier{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type triggerKey struct{}

// WithTrigger tags runs started with ctx, e.g. "schedule" or "config_change".
func WithTrigger(ctx context.Context, trigger string) context.Context {
	return context.WithValue(ctx, triggerKey{}, trigger)
}

func triggerFrom(ctx context.Context) string {
	if t, ok := ctx.Value(triggerKey{}).(string); ok && t != "" {
		return t
	}
	return "cli"
}

// Run generates outputDir/index.html. The returned report is non-nil even
// when err is set.
func (g *Generator) Run(ctx context.Context, outputDir string) (*Report, error) {
	report := &Report{
		RunID:   uuid.NewString(),
		Trigger: triggerFrom(ctx),
		Start:   g.now(),
	}
	log := g.logger.With(logfields.RunID(report.RunID))
	log.Info("Generation started", logfields.Trigger(report.Trigger), logfields.Path(outputDir))

	g.record(ctx, log, func() (eventstore.Event, error) {
		return eventstore.NewRunStarted(report.RunID, eventstore.RunStartedMeta{
			Trigger:    report.Trigger,
			OutputDir:  outputDir,
			APIBaseURL: g.fetcher.BaseURL(),
		})
	})

	collections := g.fetcher.FetchAll(ctx)
	if err := ctx.Err(); err != nil {
		return g.fail(ctx, log, report, "fetch",
			ferrors.WrapError(err, ferrors.CategoryRuntime, "generation canceled").Build())
	}
	report.Endpoints = endpointStatuses(collections)
	for _, st := range report.Endpoints {
		if !st.OK {
			log.Warn("Collection unavailable, rendering placeholder",
				logfields.Endpoint(st.Endpoint), slog.String(logfields.KeyError, st.Error))
		}
		g.record(ctx, log, func() (eventstore.Event, error) {
			return eventstore.NewCollectionFetched(report.RunID, eventstore.CollectionFetchedMeta{
				Endpoint: st.Endpoint,
				Success:  st.OK,
				Count:    st.Count,
				Error:    st.Error,
			})
		})
	}

	doc, err := g.build(collections)
	if err != nil {
		return g.fail(ctx, log, report, "render", err)
	}

	path, err := page.Write(outputDir, doc)
	if err != nil {
		return g.fail(ctx, log, report, "write", err)
	}
	report.OutputPath = path
	report.PageBytes = len(doc)
	g.record(ctx, log, func() (eventstore.Event, error) {
		return eventstore.NewPageWritten(report.RunID, path, len(doc))
	})

	report.Outcome = metrics.OutcomeSuccess
	if len(report.Failed()) > 0 {
		report.Outcome = metrics.OutcomeDegraded
	}
	report.End = g.now()

	g.recorder.ObserveGenerationDuration(report.Duration())
	g.recorder.IncGenerationOutcome(report.Outcome)
	g.recorder.SetPageBytes(report.PageBytes)
	g.recorder.SetLastSuccess(report.End)

	g.record(ctx, log, func() (eventstore.Event, error) {
		return eventstore.NewRunCompleted(report.RunID, eventstore.RunCompletedMeta{
			Outcome:    string(report.Outcome),
			OutputPath: path,
			DurationMS: report.Duration().Milliseconds(),
			Failed:     report.Failed(),
		})
	})
	g.publish(ctx, log, report)

	log.Info("Generation finished",
		logfields.Path(path),
		slog.String("outcome", string(report.Outcome)),
		logfields.Duration(report.Duration()))
	return report, nil
}

func (g *Generator) build(c overfast.Collections) ([]byte, error) {
	data, err := render.Data(c, g.fetcher.BaseURL())
	if err != nil {
		return nil, err
	}
	return page.Assemble(page.Page{
		Title:      g.site.Title,
		Intro:      g.site.Intro,
		Stylesheet: g.site.Stylesheet,
		Heroes:     render.Heroes(c.Heroes),
		Roles:      render.Roles(c.Roles),
		Gamemodes:  render.Gamemodes(c.Gamemodes),
		Maps:       render.Maps(c.Maps),
		Data:       data,
	})
}

func (g *Generator) fail(ctx context.Context, log *slog.Logger, report *Report, stage string, err error) (*Report, error) {
	report.Outcome = metrics.OutcomeFailed
	report.End = g.now()
	g.recorder.ObserveGenerationDuration(report.Duration())
	g.recorder.IncGenerationOutcome(report.Outcome)

	// Event recording must outlive a canceled run context.
	g.record(context.WithoutCancel(ctx), log, func() (eventstore.Event, error) {
		return eventstore.NewRunFailed(report.RunID, stage, err.Error())
	})
	log.Error("Generation failed", slog.String("stage", stage), logfields.Error(err))
	return report, err
}

// record appends an event; storage problems never fail a run.
func (g *Generator) record(ctx context.Context, log *slog.Logger, build func() (eventstore.Event, error)) {
	if g.store == nil {
		return
	}
	ev, err := build()
	if err == nil {
		err = eventstore.AppendEvent(ctx, g.store, ev)
	}
	if err != nil {
		log.Warn("Failed to record run event", logfields.Error(err))
	}
}

func (g *Generator) publish(ctx context.Context, log *slog.Logger, report *Report) {
	err := g.notifier.Notify(ctx, notify.RunNotification{
		RunID:       report.RunID,
		Outcome:     string(report.Outcome),
		OutputPath:  report.OutputPath,
		PageBytes:   report.PageBytes,
		Failed:      report.Failed(),
		DurationMS:  report.Duration().Milliseconds(),
		GeneratedAt: report.End,
		Version:     version.Version,
	})
	if err != nil {
		log.Warn("Failed to publish run notification", logfields.Error(err))
	}
}

func endpointStatuses(c overfast.Collections) []EndpointStatus {
	return []EndpointStatus{
		status(overfast.EndpointHeroes, c.Heroes),
		status(overfast.EndpointRoles, c.Roles),
		status(overfast.EndpointGamemodes, c.Gamemodes),
		status(overfast.EndpointMaps, c.Maps),
	}
}

func status[T any](endpoint string, r foundation.Result[[]T, error]) EndpointStatus {
	s := EndpointStatus{Endpoint: endpoint, OK: r.IsOk()}
	if r.IsOk() {
		s.Count = len(r.Unwrap())
		return s
	}
	s.Error = "unknown error"
	if err := r.UnwrapErr(); err != nil {
		s.Error = err.Error()
	}
	return s
}
