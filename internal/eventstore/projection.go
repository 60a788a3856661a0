// Package eventstore records generation runs as append-only events in SQLite
// and projects them into a run history.
package eventstore

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"
)

// Run statuses.
const (
	StatusRunning  = "running"
	StatusSuccess  = "success"
	StatusDegraded = "degraded"
	StatusFailed   = "failed"
)

// RunSummary is the read model of one generation run.
type RunSummary struct {
	RunID        string        `json:"run_id"`
	Trigger      string        `json:"trigger,omitempty"`
	Status       string        `json:"status"`
	StartedAt    time.Time     `json:"started_at"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
	Duration     time.Duration `json:"duration,omitempty"`
	OutputPath   string        `json:"output_path,omitempty"`
	PageBytes    int           `json:"page_bytes,omitempty"`
	Fetched      int           `json:"fetched"`
	Failed       []string      `json:"failed_endpoints,omitempty"`
	ErrorStage   string        `json:"error_stage,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// RunHistoryProjection maintains an in-memory view of run history rebuilt
// from the store.
type RunHistoryProjection struct {
	mu       sync.RWMutex
	store    Store
	runs     map[string]*RunSummary
	history  []*RunSummary // newest first
	maxSize  int
	lastSync time.Time
}

// NewRunHistoryProjection creates a projection backed by store.
func NewRunHistoryProjection(store Store, maxHistorySize int) *RunHistoryProjection {
	if maxHistorySize <= 0 {
		maxHistorySize = 100
	}
	return &RunHistoryProjection{
		store:   store,
		runs:    make(map[string]*RunSummary),
		history: make([]*RunSummary, 0, maxHistorySize),
		maxSize: maxHistorySize,
	}
}

// Rebuild reconstructs the projection from every stored event.
func (p *RunHistoryProjection) Rebuild(ctx context.Context) error {
	events, err := p.store.GetRange(ctx, time.Time{}, time.Now().Add(time.Hour))
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.runs = make(map[string]*RunSummary)
	p.history = make([]*RunSummary, 0, p.maxSize)
	for _, event := range events {
		p.applyEventLocked(event)
	}
	sort.SliceStable(p.history, func(i, j int) bool {
		return p.history[i].StartedAt.After(p.history[j].StartedAt)
	})
	if len(p.history) > p.maxSize {
		p.history = p.history[:p.maxSize]
	}
	p.pruneRunsLocked()

	p.lastSync = time.Now()
	return nil
}

// Apply processes a single event as it is emitted.
func (p *RunHistoryProjection) Apply(event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.applyEventLocked(event)
}

func (p *RunHistoryProjection) applyEventLocked(event Event) {
	runID := event.RunID()
	if runID == "" {
		return
	}

	summary, exists := p.runs[runID]
	if !exists {
		summary = &RunSummary{RunID: runID, Status: StatusRunning, StartedAt: event.Timestamp()}
		p.runs[runID] = summary
	}

	switch event.Type() {
	case TypeRunStarted:
		summary.StartedAt = event.Timestamp()
		summary.Status = StatusRunning
		var meta RunStartedMeta
		if err := json.Unmarshal(event.Payload(), &meta); err == nil {
			summary.Trigger = meta.Trigger
		}

	case TypeCollectionFetched:
		var meta CollectionFetchedMeta
		if err := json.Unmarshal(event.Payload(), &meta); err == nil {
			if meta.Success {
				summary.Fetched++
			} else {
				summary.Failed = append(summary.Failed, meta.Endpoint)
			}
		}

	case TypePageWritten:
		var payload struct {
			Path  string `json:"path"`
			Bytes int    `json:"bytes"`
		}
		if err := json.Unmarshal(event.Payload(), &payload); err == nil {
			summary.OutputPath = payload.Path
			summary.PageBytes = payload.Bytes
		}

	case TypeRunCompleted:
		p.finishLocked(summary, event.Timestamp())
		summary.Status = StatusSuccess
		var meta RunCompletedMeta
		if err := json.Unmarshal(event.Payload(), &meta); err == nil {
			if meta.Outcome != "" {
				summary.Status = meta.Outcome
			}
			if meta.OutputPath != "" {
				summary.OutputPath = meta.OutputPath
			}
		}
		p.addToHistoryLocked(summary)

	case TypeRunFailed:
		p.finishLocked(summary, event.Timestamp())
		summary.Status = StatusFailed
		var payload struct {
			Stage string `json:"stage"`
			Error string `json:"error"`
		}
		if err := json.Unmarshal(event.Payload(), &payload); err == nil {
			summary.ErrorStage = payload.Stage
			summary.ErrorMessage = payload.Error
		}
		p.addToHistoryLocked(summary)
	}
}

func (p *RunHistoryProjection) finishLocked(summary *RunSummary, at time.Time) {
	summary.CompletedAt = &at
	summary.Duration = at.Sub(summary.StartedAt)
}

func (p *RunHistoryProjection) addToHistoryLocked(summary *RunSummary) {
	for _, h := range p.history {
		if h.RunID == summary.RunID {
			return
		}
	}
	p.history = append([]*RunSummary{summary}, p.history...)
	if len(p.history) > p.maxSize {
		p.history = p.history[:p.maxSize]
	}
	p.pruneRunsLocked()
}

// pruneRunsLocked drops finished runs that fell out of the bounded history.
func (p *RunHistoryProjection) pruneRunsLocked() {
	keep := make(map[string]struct{}, len(p.history))
	for _, h := range p.history {
		keep[h.RunID] = struct{}{}
	}
	for id, summary := range p.runs {
		if summary.Status == StatusRunning {
			continue
		}
		if _, ok := keep[id]; !ok {
			delete(p.runs, id)
		}
	}
}

// History returns finished runs, newest first.
func (p *RunHistoryProjection) History() []RunSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]RunSummary, len(p.history))
	for i, h := range p.history {
		out[i] = *h
	}
	return out
}

// Run returns the summary of one run.
func (p *RunHistoryProjection) Run(runID string) (RunSummary, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	summary, ok := p.runs[runID]
	if !ok {
		return RunSummary{}, false
	}
	return *summary, true
}

// LastCompleted returns the most recently finished run.
func (p *RunHistoryProjection) LastCompleted() (RunSummary, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if len(p.history) == 0 {
		return RunSummary{}, false
	}
	return *p.history[0], true
}

// LastSyncTime returns when the projection was last rebuilt.
func (p *RunHistoryProjection) LastSyncTime() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastSync
}
