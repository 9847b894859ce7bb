// Package schedule runs the pipeline once a day at a fixed local time.
package schedule

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/krishisewa/agrinews/internal/config"
)

// Runner triggers a job at the configured wall-clock time every day.
type Runner struct {
	hour   int
	minute int
	loc    *time.Location
	job    func(ctx context.Context) error
}

// New validates the schedule config and builds a Runner.
func New(cfg config.Schedule, job func(ctx context.Context) error) (*Runner, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(cfg.Time, "%d:%d", &hour, &minute); err != nil {
		return nil, fmt.Errorf("invalid schedule time %q: %w", cfg.Time, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return nil, fmt.Errorf("invalid schedule time %q", cfg.Time)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}

	return &Runner{hour: hour, minute: minute, loc: loc, job: job}, nil
}

// Run blocks, executing the job at each daily trigger until the
// context is cancelled. Job failures are logged and do not stop the
// schedule.
func (r *Runner) Run(ctx context.Context) error {
	for {
		next := r.nextRun(time.Now())
		log.Printf("Next run scheduled for %s", next.Format("2006-01-02 15:04 MST"))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		if err := r.job(ctx); err != nil {
			log.Printf("Scheduled run failed: %v", err)
		}
	}
}

// nextRun returns the next occurrence of the configured wall-clock
// time strictly after now.
func (r *Runner) nextRun(now time.Time) time.Time {
	local := now.In(r.loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), r.hour, r.minute, 0, 0, r.loc)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
