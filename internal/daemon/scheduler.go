package daemon

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// TriggerSchedule tags runs started by the periodic job.
const TriggerSchedule = "schedule"

// Scheduler wraps gocron for the periodic rebuild.
type Scheduler struct {
	scheduler gocron.Scheduler
}

// NewScheduler creates a new scheduler instance.
func NewScheduler() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	return &Scheduler{scheduler: s}, nil
}

// SchedulePeriodicRebuild requests a rebuild from r every interval and
// returns the job id.
func (s *Scheduler) SchedulePeriodicRebuild(interval time.Duration, r *Rebuilder) (string, error) {
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(r.Request, TriggerSchedule),
		gocron.WithName("periodic-rebuild"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create periodic rebuild job: %w", err)
	}
	return job.ID().String(), nil
}

// NextRun returns when the first scheduled job fires next.
func (s *Scheduler) NextRun() (time.Time, bool) {
	for _, job := range s.scheduler.Jobs() {
		if next, err := job.NextRun(); err == nil {
			return next, true
		}
	}
	return time.Time{}, false
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	slog.Info("Starting scheduler")
	s.scheduler.Start()
}

// Stop shuts the scheduler down.
func (s *Scheduler) Stop() error {
	slog.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}
