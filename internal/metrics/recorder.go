package metrics

import "time"

// OutcomeLabel enumerates generation run outcomes.
type OutcomeLabel string

const (
	// OutcomeSuccess means every collection was fetched and the page written.
	OutcomeSuccess OutcomeLabel = "success"
	// OutcomeDegraded means the page was written with one or more placeholders.
	OutcomeDegraded OutcomeLabel = "degraded"
	OutcomeFailed   OutcomeLabel = "failed"
)

// Recorder defines observability hooks for fetches and generation runs.
type Recorder interface {
	ObserveFetchDuration(endpoint string, d time.Duration, success bool)
	IncFetchResult(endpoint string, success bool)
	ObserveGenerationDuration(d time.Duration)
	IncGenerationOutcome(outcome OutcomeLabel)
	SetPageBytes(n int)
	SetLastSuccess(t time.Time)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveFetchDuration(string, time.Duration, bool) {}
func (NoopRecorder) IncFetchResult(string, bool)                      {}
func (NoopRecorder) ObserveGenerationDuration(time.Duration)          {}
func (NoopRecorder) IncGenerationOutcome(OutcomeLabel)                {}
func (NoopRecorder) SetPageBytes(int)                                 {}
func (NoopRecorder) SetLastSuccess(time.Time)                         {}
