package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/overfastsite/internal/logfields"
)

// DefaultDebounce coalesces bursts of file events into one rebuild request.
const DefaultDebounce = 300 * time.Millisecond

// RebuildFunc performs one rebuild for trigger.
type RebuildFunc func(ctx context.Context, trigger string)

// Rebuilder serializes rebuilds: at most one runs at a time and any number of
// requests that arrive meanwhile collapse into a single follow-up run.
type Rebuilder struct {
	run      RebuildFunc
	debounce time.Duration
	requests chan string
	inflight sync.WaitGroup

	mu      sync.Mutex
	timer   *time.Timer
	running bool
	pending string
}

// NewRebuilder creates a Rebuilder; debounce <= 0 uses DefaultDebounce.
func NewRebuilder(run RebuildFunc, debounce time.Duration) *Rebuilder {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Rebuilder{run: run, debounce: debounce, requests: make(chan string, 1)}
}

// Request asks for a rebuild as soon as the worker is free.
func (r *Rebuilder) Request(trigger string) {
	select {
	case r.requests <- trigger:
	default:
		// A request is already queued.
	}
}

// Trigger asks for a rebuild after the debounce window has passed without
// another Trigger call.
func (r *Rebuilder) Trigger(trigger string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.debounce, func() { r.Request(trigger) })
}

// Running reports whether a rebuild is in progress.
func (r *Rebuilder) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Start runs the worker until ctx is done.
func (r *Rebuilder) Start(ctx context.Context) {
	go r.loop(ctx)
}

func (r *Rebuilder) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			r.mu.Lock()
			if r.timer != nil {
				r.timer.Stop()
			}
			r.mu.Unlock()
			return
		case trigger := <-r.requests:
			if ctx.Err() != nil {
				return
			}
			r.mu.Lock()
			if r.running {
				r.pending = trigger
				r.mu.Unlock()
				continue
			}
			r.running = true
			r.inflight.Add(1)
			r.mu.Unlock()

			go r.execute(ctx, trigger)
		}
	}
}

// Wait blocks until the rebuild in progress, if any, has returned.
func (r *Rebuilder) Wait() {
	r.inflight.Wait()
}

func (r *Rebuilder) execute(ctx context.Context, trigger string) {
	defer r.inflight.Done()
	slog.Info("Rebuilding site", logfields.Trigger(trigger))
	r.run(ctx, trigger)

	r.mu.Lock()
	r.running = false
	next := r.pending
	r.pending = ""
	r.mu.Unlock()

	if next != "" && ctx.Err() == nil {
		r.Request(next)
	}
}
