// Package schedule runs a job once per calendar day at a fixed local time.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is invoked with the time the run was triggered.
type Job func(ctx context.Context, now time.Time)

// Daily fires Job once a day at a wall-clock time. When started after
// today's time and today has not run yet, it fires once immediately.
type Daily struct {
	hour, minute int
	spec         string
	schedule     cron.Schedule
	job          Job
	loc          *time.Location
	now          func() time.Time
	logger       *slog.Logger

	mu      sync.Mutex
	lastRun string
}

// NewDaily parses at as "HH:MM" and returns a Daily trigger for job.
func NewDaily(at string, job Job, logger *slog.Logger) (*Daily, error) {
	t, err := time.Parse("15:04", at)
	if err != nil {
		return nil, fmt.Errorf("parse schedule time %q: %w", at, err)
	}
	spec := fmt.Sprintf("%d %d * * *", t.Minute(), t.Hour())
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse cron spec %q: %w", spec, err)
	}
	return &Daily{
		hour:     t.Hour(),
		minute:   t.Minute(),
		spec:     spec,
		schedule: sched,
		job:      job,
		loc:      time.Local,
		now:      time.Now,
		logger:   logger.With("component", "scheduler"),
	}, nil
}

// Run blocks until ctx is cancelled and waits for a running job to finish.
func (d *Daily) Run(ctx context.Context) error {
	c := cron.New(
		cron.WithLogger(cronLogger{logger: d.logger}),
		cron.WithLocation(d.loc),
	)
	if _, err := c.AddFunc(d.spec, func() { d.tick(ctx) }); err != nil {
		return fmt.Errorf("add cron job: %w", err)
	}

	d.logger.Info("daily schedule started", "at", fmt.Sprintf("%02d:%02d", d.hour, d.minute), "spec", d.spec)
	d.catchUp(ctx)

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	d.logger.Info("daily schedule stopped")
	return ctx.Err()
}

// Next returns the first scheduled time strictly after now.
func (d *Daily) Next(now time.Time) time.Time {
	return d.schedule.Next(now)
}

// LastRun returns the day (YYYY-MM-DD) of the most recent run.
func (d *Daily) LastRun() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastRun
}

// catchUp fires once when today's time has already passed without a run.
func (d *Daily) catchUp(ctx context.Context) {
	now := d.now()
	y, m, day := now.Date()
	if now.Before(time.Date(y, m, day, d.hour, d.minute, 0, 0, now.Location())) {
		return
	}
	d.fire(ctx, now, "catch-up")
}

// tick is the cron callback.
func (d *Daily) tick(ctx context.Context) {
	d.fire(ctx, d.now(), "scheduled")
}

// fire runs the job unless it already ran on now's calendar day.
func (d *Daily) fire(ctx context.Context, now time.Time, reason string) {
	today := now.Format("2006-01-02")
	d.mu.Lock()
	if d.lastRun == today {
		d.mu.Unlock()
		d.logger.Debug("already ran today", "day", today, "reason", reason)
		return
	}
	d.lastRun = today
	d.mu.Unlock()

	d.logger.Info("scheduled run", "time", now.Format(time.RFC3339), "reason", reason)
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("scheduled run panicked", "panic", r)
		}
	}()
	d.job(ctx, now)
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
