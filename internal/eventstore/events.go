package eventstore

import (
	"encoding/json"
	"time"
)

// Event type names.
const (
	TypeRunStarted        = "RunStarted"
	TypeCollectionFetched = "CollectionFetched"
	TypePageWritten       = "PageWritten"
	TypeRunCompleted      = "RunCompleted"
	TypeRunFailed         = "RunFailed"
)

// RunStartedMeta describes what triggered a run and where it writes.
type RunStartedMeta struct {
	Trigger    string `json:"trigger"` // "cli", "schedule", "config_change"
	OutputDir  string `json:"output_dir"`
	APIBaseURL string `json:"api_base_url"`
}

// CollectionFetchedMeta is the outcome of one endpoint fetch.
type CollectionFetchedMeta struct {
	Endpoint string `json:"endpoint"`
	Success  bool   `json:"success"`
	Count    int    `json:"count"`
	Error    string `json:"error,omitempty"`
}

// RunCompletedMeta closes a run that produced a page.
type RunCompletedMeta struct {
	Outcome    string   `json:"outcome"` // "success" or "degraded"
	OutputPath string   `json:"output_path"`
	DurationMS int64    `json:"duration_ms"`
	Failed     []string `json:"failed_endpoints,omitempty"`
}

func newEvent(runID, eventType string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, wrap(ErrMarshalPayloadFailed, err)
	}
	return &BaseEvent{
		EventRunID:     runID,
		EventType:      eventType,
		EventTimestamp: time.Now(),
		EventPayload:   data,
	}, nil
}

// NewRunStarted creates a RunStarted event.
func NewRunStarted(runID string, meta RunStartedMeta) (Event, error) {
	return newEvent(runID, TypeRunStarted, meta)
}

// NewCollectionFetched creates a CollectionFetched event.
func NewCollectionFetched(runID string, meta CollectionFetchedMeta) (Event, error) {
	return newEvent(runID, TypeCollectionFetched, meta)
}

// NewPageWritten creates a PageWritten event.
func NewPageWritten(runID, path string, size int) (Event, error) {
	return newEvent(runID, TypePageWritten, map[string]any{
		"path":  path,
		"bytes": size,
	})
}

// NewRunCompleted creates a RunCompleted event.
func NewRunCompleted(runID string, meta RunCompletedMeta) (Event, error) {
	return newEvent(runID, TypeRunCompleted, meta)
}

// NewRunFailed creates a RunFailed event.
func NewRunFailed(runID, stage, errorMsg string) (Event, error) {
	return newEvent(runID, TypeRunFailed, map[string]string{
		"stage": stage,
		"error": errorMsg,
	})
}
