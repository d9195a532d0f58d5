package scheduler_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/epis-academic/academic-records/internal/infrastructure/scheduler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJob struct {
	name  string
	runs  atomic.Int32
	err   error
	panics bool
}

func (j *fakeJob) Name() string        { return j.name }
func (j *fakeJob) Description() string { return "test job " + j.name }

func (j *fakeJob) Run(context.Context) error {
	j.runs.Add(1)
	if j.panics {
		panic("boom")
	}
	return j.err
}

func newScheduler() *scheduler.Scheduler {
	return scheduler.NewScheduler(scheduler.SchedulerConfig{
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		TickInterval: 5 * time.Millisecond,
	})
}

func TestScheduler_Register(t *testing.T) {
	s := newScheduler()
	daily := scheduler.NewDailySchedule(0, 5)

	require.NoError(t, s.Register(&fakeJob{name: "b"}, daily))
	require.NoError(t, s.Register(&fakeJob{name: "a"}, scheduler.NewIntervalSchedule(time.Hour)))

	assert.ErrorIs(t, s.Register(&fakeJob{name: "a"}, daily), scheduler.ErrJobAlreadyExists)
	assert.ErrorIs(t, s.Register(nil, daily), scheduler.ErrNilJob)
	assert.ErrorIs(t, s.Register(&fakeJob{name: "c"}, nil), scheduler.ErrNilSchedule)

	jobs := s.ListJobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, "a", jobs[0].Name)
	assert.Equal(t, "@every 1h0m0s", jobs[0].Schedule)
	assert.Equal(t, "@daily 00:05", jobs[1].Schedule)
	assert.Equal(t, "test job b", jobs[1].Description)
	assert.False(t, jobs[1].NextRun.IsZero())
}

func TestScheduler_RunNow(t *testing.T) {
	s := newScheduler()
	ok := &fakeJob{name: "ok"}
	failing := &fakeJob{name: "failing", err: errors.New("database is down")}
	panicking := &fakeJob{name: "panicking", panics: true}
	for _, j := range []*fakeJob{ok, failing, panicking} {
		require.NoError(t, s.Register(j, scheduler.NewDailySchedule(0, 5)))
	}
	ctx := context.Background()

	result, err := s.RunNow(ctx, "ok")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, result.Manual)
	assert.Equal(t, int32(1), ok.runs.Load())

	result, err = s.RunNow(ctx, "failing")
	assert.EqualError(t, err, "database is down")
	assert.False(t, result.Success)

	result, err = s.RunNow(ctx, "panicking")
	assert.ErrorContains(t, err, "job panicked")
	assert.False(t, result.Success)

	_, err = s.RunNow(ctx, "missing")
	assert.ErrorIs(t, err, scheduler.ErrJobNotFound)

	for _, info := range s.ListJobs() {
		require.NotNil(t, info.LastResult, info.Name)
		assert.Zero(t, info.RunCount, "manual runs do not count as scheduled runs")
	}
}

func TestScheduler_RunsDueJobs(t *testing.T) {
	s := newScheduler()
	job := &fakeJob{name: "tick", err: errors.New("transient")}
	require.NoError(t, s.Register(job, scheduler.NewIntervalSchedule(time.Millisecond)))

	var completed atomic.Int32
	s.OnJobComplete(func(result scheduler.JobResult) {
		assert.Equal(t, "tick", result.JobName)
		assert.False(t, result.Manual)
		completed.Add(1)
	})

	require.NoError(t, s.Start(context.Background()))
	assert.ErrorIs(t, s.Start(context.Background()), scheduler.ErrSchedulerAlreadyRunning)
	assert.True(t, s.IsRunning())

	assert.Eventually(t, func() bool { return completed.Load() >= 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	assert.ErrorIs(t, s.Stop(), scheduler.ErrSchedulerNotRunning)

	info := s.ListJobs()[0]
	assert.GreaterOrEqual(t, info.RunCount, int64(2))
	assert.Equal(t, info.RunCount, info.FailCount)
}

func TestDailySchedule_Next(t *testing.T) {
	s := scheduler.NewDailySchedule(0, 5)

	tests := []struct {
		name string
		from time.Time
		want time.Time
	}{
		{
			name: "later today",
			from: time.Date(2025, time.September, 10, 0, 1, 0, 0, time.UTC),
			want: time.Date(2025, time.September, 10, 0, 5, 0, 0, time.UTC),
		},
		{
			name: "exactly at the time",
			from: time.Date(2025, time.September, 10, 0, 5, 0, 0, time.UTC),
			want: time.Date(2025, time.September, 11, 0, 5, 0, 0, time.UTC),
		},
		{
			name: "year end",
			from: time.Date(2025, time.December, 31, 18, 0, 0, 0, time.UTC),
			want: time.Date(2026, time.January, 1, 0, 5, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Next(tt.from))
		})
	}
}

func TestIntervalSchedule_Next(t *testing.T) {
	s := scheduler.NewIntervalSchedule(15 * time.Minute)
	from := time.Date(2025, time.September, 10, 23, 50, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2025, time.September, 11, 0, 5, 0, 0, time.UTC), s.Next(from))
	assert.Equal(t, "@every 15m0s", s.String())
}
