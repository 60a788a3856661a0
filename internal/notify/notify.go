// Package notify announces finished generation runs to downstream systems.
package notify

import (
	"context"
	"time"
)

// RunNotification is the message published after a run writes a page.
type RunNotification struct {
	RunID       string    `json:"run_id"`
	Outcome     string    `json:"outcome"`
	OutputPath  string    `json:"output_path"`
	PageBytes   int       `json:"page_bytes"`
	Failed      []string  `json:"failed_endpoints,omitempty"`
	DurationMS  int64     `json:"duration_ms"`
	GeneratedAt time.Time `json:"generated_at"`
	Version     string    `json:"version"`
}

// Notifier publishes run notifications.
type Notifier interface {
	Notify(ctx context.Context, n RunNotification) error
	Close() error
}

// NoopNotifier discards notifications (default when no broker is configured).
type NoopNotifier struct{}

func (NoopNotifier) Notify(context.Context, RunNotification) error { return nil }
func (NoopNotifier) Close() error                                  { return nil }
