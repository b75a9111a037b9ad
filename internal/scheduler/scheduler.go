// Package scheduler runs the periodic marketplace sweeps on a cron clock.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one periodic task. Run returns the number of rows it touched.
type Job struct {
	Name    string
	Spec    string
	Timeout time.Duration
	Run     func(ctx context.Context) (int64, error)
}

type Scheduler struct {
	cron *cron.Cron
	jobs map[string]Job
}

// New builds a scheduler on the given location (nil means UTC). Overlapping
// runs of the same job are skipped and panics are recovered.
func New(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	logger := cronLogger{}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		jobs: make(map[string]Job),
	}
}

// Add registers a job. Spec takes the standard five-field cron syntax or
// descriptors such as "@hourly".
func (s *Scheduler) Add(job Job) error {
	if job.Timeout <= 0 {
		job.Timeout = 5 * time.Minute
	}
	if _, err := s.cron.AddFunc(job.Spec, func() { s.execute(job) }); err != nil {
		return fmt.Errorf("invalid schedule for %s: %w", job.Name, err)
	}
	s.jobs[job.Name] = job
	slog.Info("job scheduled", "job", job.Name, "spec", job.Spec)
	return nil
}

// RunNow executes a registered job synchronously.
func (s *Scheduler) RunNow(name string) error {
	job, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	return s.execute(job)
}

func (s *Scheduler) execute(job Job) error {
	ctx, cancel := context.WithTimeout(context.Background(), job.Timeout)
	defer cancel()

	start := time.Now()
	n, err := job.Run(ctx)
	if err != nil {
		slog.Error("scheduled job failed", "action", "job_"+job.Name, "error", err.Error())
		return err
	}
	slog.Info("scheduled job finished", "action", "job_"+job.Name, "rows", n, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop prevents new runs and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		slog.Warn("scheduler stop timed out")
	}
}

// cronLogger routes cron's internal messages into slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error("cron: "+msg, append(keysAndValues, "error", err.Error())...)
}
