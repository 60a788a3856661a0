// Package daemon keeps a generated site fresh: it serves the output directory
// over HTTP and rebuilds the page on a schedule and when the configuration
// file changes.
package daemon

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"git.home.luguber.info/inful/overfastsite/internal/eventstore"
	ferrors "git.home.luguber.info/inful/overfastsite/internal/foundation/errors"
	"git.home.luguber.info/inful/overfastsite/internal/generator"
	"git.home.luguber.info/inful/overfastsite/internal/logfields"
)

// TriggerStartup tags the build performed before serving starts.
const TriggerStartup = "startup"

// BuildFunc runs one generation. The trigger is carried in ctx.
type BuildFunc func(ctx context.Context) (*generator.Report, error)

// Options configures a Daemon.
type Options struct {
	// ConfigPath is watched for changes; empty disables watching.
	ConfigPath string
	OutputDir  string
	Addr       string
	Interval   time.Duration
	Debounce   time.Duration
	// Metrics is mounted on /metrics when set.
	Metrics http.Handler
	// History is exposed on /history when set.
	History *eventstore.RunHistoryProjection
}

// Daemon wires the rebuild worker, scheduler, config watcher and HTTP server.
type Daemon struct {
	opts      Options
	build     BuildFunc
	status    *runStatus
	rebuilder *Rebuilder
	scheduler *Scheduler
	server    *HTTPServer
	ready     chan struct{}
}

// New validates opts and creates a Daemon.
func New(opts Options, build BuildFunc) (*Daemon, error) {
	if build == nil {
		return nil, ferrors.ValidationError("build function is required").Build()
	}
	if opts.Interval <= 0 {
		return nil, ferrors.ValidationError("rebuild interval must be > 0").Build()
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}

	d := &Daemon{opts: opts, build: build, status: newRunStatus(), ready: make(chan struct{})}
	d.rebuilder = NewRebuilder(d.rebuild, opts.Debounce)
	d.server = &HTTPServer{
		addr:    opts.Addr,
		root:    opts.OutputDir,
		metrics: opts.Metrics,
		history: opts.History,
		health:  d.Health,
	}
	return d, nil
}

// Ready is closed once the HTTP server is listening.
func (d *Daemon) Ready() <-chan struct{} {
	return d.ready
}

// Addr returns the address the HTTP server is bound to.
func (d *Daemon) Addr() string {
	return d.server.Addr()
}

// Health reports the state of the last rebuild.
func (d *Daemon) Health() HealthResponse {
	var next time.Time
	var hasNext bool
	if d.scheduler != nil {
		next, hasNext = d.scheduler.NextRun()
	}
	return d.status.health(d.rebuilder.Running(), next, hasNext)
}

// Run builds once, then serves and rebuilds until ctx is canceled. A failed
// initial build is reported but does not stop the daemon; the next trigger
// may succeed.
func (d *Daemon) Run(ctx context.Context) error {
	scheduler, err := NewScheduler()
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "create scheduler").Build()
	}
	if _, err := scheduler.SchedulePeriodicRebuild(d.opts.Interval, d.rebuilder); err != nil {
		_ = scheduler.Stop()
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "schedule rebuild").Build()
	}
	d.scheduler = scheduler

	d.rebuild(ctx, TriggerStartup)
	d.rebuilder.Start(ctx)

	if err := d.server.Start(ctx); err != nil {
		_ = scheduler.Stop()
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "start HTTP server").
			WithContext("addr", d.opts.Addr).
			Build()
	}
	scheduler.Start()

	var watcher *ConfigWatcher
	if d.opts.ConfigPath != "" {
		watcher, err = NewConfigWatcher(d.opts.ConfigPath, d.rebuilder)
		if err == nil {
			err = watcher.Start(ctx)
		}
		if err != nil {
			slog.Warn("Config watching disabled", logfields.Path(d.opts.ConfigPath), logfields.Error(err))
			if watcher != nil {
				_ = watcher.Stop()
			}
			watcher = nil
		}
	}

	close(d.ready)
	<-ctx.Done()

	d.shutdown(watcher)
	return nil
}

func (d *Daemon) shutdown(watcher *ConfigWatcher) {
	slog.Info("Shutting down server")
	if watcher != nil {
		if err := watcher.Stop(); err != nil {
			slog.Warn("Config watcher shutdown error", logfields.Error(err))
		}
	}
	if d.scheduler != nil {
		if err := d.scheduler.Stop(); err != nil {
			slog.Warn("Scheduler shutdown error", logfields.Error(err))
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.server.Stop(ctx); err != nil {
		slog.Warn("HTTP server shutdown error", logfields.Error(err))
	}
	d.rebuilder.Wait()
}

func (d *Daemon) rebuild(ctx context.Context, trigger string) {
	report, err := d.build(generator.WithTrigger(ctx, trigger))
	if err != nil {
		slog.Warn("Rebuild failed", logfields.Trigger(trigger), logfields.Error(err))
	}
	d.status.record(report, err)
}
