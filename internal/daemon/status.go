package daemon

import (
	"sync"
	"time"

	"git.home.luguber.info/inful/overfastsite/internal/generator"
	"git.home.luguber.info/inful/overfastsite/internal/version"
)

// HealthStatus represents the overall health of the server.
type HealthStatus string

const (
	HealthStatusStarting  HealthStatus = "starting"
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthResponse is served on /healthz.
type HealthResponse struct {
	Status     HealthStatus      `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Uptime     string            `json:"uptime"`
	Version    string            `json:"version"`
	Rebuilding bool              `json:"rebuilding"`
	NextRun    *time.Time        `json:"next_run,omitempty"`
	LastRun    *generator.Report `json:"last_run,omitempty"`
	LastError  string            `json:"last_error,omitempty"`
}

// runStatus tracks the outcome of the most recent rebuild.
type runStatus struct {
	mu        sync.RWMutex
	started   time.Time
	last      *generator.Report
	lastError error
	hasPage   bool
}

func newRunStatus() *runStatus {
	return &runStatus{started: time.Now()}
}

func (s *runStatus) record(report *generator.Report, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = report
	s.lastError = err
	if err == nil && report != nil {
		s.hasPage = true
	}
}

func (s *runStatus) health(rebuilding bool, nextRun time.Time, hasNext bool) HealthResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resp := HealthResponse{
		Timestamp:  time.Now(),
		Uptime:     time.Since(s.started).Round(time.Second).String(),
		Version:    version.Version,
		Rebuilding: rebuilding,
		LastRun:    s.last,
	}
	if hasNext {
		resp.NextRun = &nextRun
	}
	if s.lastError != nil {
		resp.LastError = s.lastError.Error()
	}

	switch {
	case s.last == nil && s.lastError == nil:
		resp.Status = HealthStatusStarting
	case !s.hasPage:
		resp.Status = HealthStatusUnhealthy
	case s.lastError != nil || (s.last != nil && s.last.Degraded()):
		resp.Status = HealthStatusDegraded
	default:
		resp.Status = HealthStatusHealthy
	}
	return resp
}
