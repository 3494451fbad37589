package schedule

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func at(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.ParseInLocation("2006-01-02 15:04", s, time.Local)
	require.NoError(t, err)
	return v
}

type recorder struct {
	fired []time.Time
}

func (r *recorder) job(_ context.Context, now time.Time) { r.fired = append(r.fired, now) }

func newTestDaily(t *testing.T, r *recorder, clock *time.Time) *Daily {
	t.Helper()
	d, err := NewDaily("14:00", r.job, testLogger)
	require.NoError(t, err)
	d.now = func() time.Time { return *clock }
	return d
}

func TestDailyNoCatchUpBeforeScheduledTime(t *testing.T) {
	r := &recorder{}
	now := at(t, "2024-06-10 09:30")
	d := newTestDaily(t, r, &now)

	d.catchUp(context.Background())
	assert.Empty(t, r.fired)

	now = at(t, "2024-06-10 14:00")
	d.tick(context.Background())
	require.Len(t, r.fired, 1)
	assert.Equal(t, at(t, "2024-06-10 14:00"), r.fired[0])
}

func TestDailyCatchesUpOnce(t *testing.T) {
	r := &recorder{}
	now := at(t, "2024-06-10 17:45")
	d := newTestDaily(t, r, &now)
	ctx := context.Background()

	d.catchUp(ctx)
	d.catchUp(ctx)
	d.tick(ctx)
	require.Len(t, r.fired, 1, "catch-up and the cron tick share one run per day")
	assert.Equal(t, "2024-06-10", d.LastRun())

	now = at(t, "2024-06-11 14:00")
	d.tick(ctx)
	require.Len(t, r.fired, 2)
	assert.Equal(t, at(t, "2024-06-11 14:00"), r.fired[1])
}

func TestDailyRunCatchesUpAndStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var fired []time.Time
	d, err := NewDaily("00:00", func(_ context.Context, now time.Time) {
		fired = append(fired, now)
		cancel()
	}, testLogger)
	require.NoError(t, err)
	now := at(t, "2024-06-10 08:00")
	d.now = func() time.Time { return now }

	err = d.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, fired, 1)
}

func TestDailyNext(t *testing.T) {
	d, err := NewDaily("14:00", func(context.Context, time.Time) {}, testLogger)
	require.NoError(t, err)

	assert.Equal(t, at(t, "2024-06-10 14:00"), d.Next(at(t, "2024-06-10 13:59")))
	assert.Equal(t, at(t, "2024-06-11 14:00"), d.Next(at(t, "2024-06-10 14:00")))
}

func TestNewDailyRejectsBadTime(t *testing.T) {
	_, err := NewDaily("25:00", func(context.Context, time.Time) {}, testLogger)
	assert.Error(t, err)
}

func TestDailyJobPanicIsContained(t *testing.T) {
	var logs bytes.Buffer
	d, err := NewDaily("14:00", func(context.Context, time.Time) { panic("boom") },
		slog.New(slog.NewTextHandler(&logs, nil)))
	require.NoError(t, err)
	now := at(t, "2024-06-10 14:00")
	d.now = func() time.Time { return now }

	assert.NotPanics(t, func() { d.tick(context.Background()) })
	assert.Contains(t, logs.String(), "scheduled run panicked")
}

func TestCronLoggerError(t *testing.T) {
	var logs bytes.Buffer
	l := cronLogger{logger: slog.New(slog.NewTextHandler(&logs, nil))}

	l.Error(errors.New("job failed"), "panic", "entry", 1)
	assert.Contains(t, logs.String(), "cron: panic")
	assert.Contains(t, logs.String(), "error=\"job failed\"")
}
