package generator

import (
	"time"

	"git.home.luguber.info/inful/overfastsite/internal/metrics"
)

// EndpointStatus is the fetch outcome of one collection.
type EndpointStatus struct {
	Endpoint string `json:"endpoint"`
	OK       bool   `json:"ok"`
	Count    int    `json:"count"`
	Error    string `json:"error,omitempty"`
}

// Report summarizes one generation run.
type Report struct {
	RunID      string               `json:"run_id"`
	Trigger    string               `json:"trigger"`
	OutputPath string               `json:"output_path,omitempty"`
	PageBytes  int                  `json:"page_bytes"`
	Outcome    metrics.OutcomeLabel `json:"outcome"`
	Endpoints  []EndpointStatus     `json:"endpoints"`
	Start      time.Time            `json:"start"`
	End        time.Time            `json:"end"`
}

// Duration is the wall time of the run.
func (r *Report) Duration() time.Duration {
	if r.End.IsZero() {
		return 0
	}
	return r.End.Sub(r.Start)
}

// Failed lists endpoints whose fetch failed, in page order.
func (r *Report) Failed() []string {
	var out []string
	for _, e := range r.Endpoints {
		if !e.OK {
			out = append(out, e.Endpoint)
		}
	}
	return out
}

// Degraded reports whether a page was written with at least one placeholder.
func (r *Report) Degraded() bool {
	return r.Outcome == metrics.OutcomeDegraded
}
