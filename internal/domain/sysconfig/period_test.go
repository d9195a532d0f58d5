package sysconfig_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/epis-academic/academic-records/internal/domain/shared"
	"github.com/epis-academic/academic-records/internal/domain/sysconfig"
	"github.com/epis-academic/academic-records/internal/testutil/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestEnrollmentPeriod_IsOpen(t *testing.T) {
	period := sysconfig.EnrollmentPeriod{Start: day(2025, time.September, 1), Deadline: day(2025, time.September, 10)}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{name: "before start", now: time.Date(2025, time.August, 31, 23, 59, 0, 0, time.UTC)},
		{name: "first day", now: time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC), want: true},
		{name: "last day, late", now: time.Date(2025, time.September, 10, 23, 59, 59, 0, time.UTC), want: true},
		{name: "day after deadline", now: time.Date(2025, time.September, 11, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, period.IsOpen(tt.now))
		})
	}

	unconfigured := sysconfig.EnrollmentPeriod{}
	assert.False(t, unconfigured.IsOpen(day(2025, time.September, 5)))
	assert.ErrorIs(t, unconfigured.Ensure(day(2025, time.September, 5)), shared.ErrOutsideEnrollmentPeriod)

	openEnded := sysconfig.EnrollmentPeriod{Deadline: day(2025, time.September, 10)}
	assert.True(t, openEnded.IsOpen(day(2000, time.January, 1)))
	assert.NoError(t, openEnded.Ensure(day(2025, time.September, 10)))
	assert.ErrorIs(t, openEnded.Ensure(day(2025, time.September, 11)), shared.ErrOutsideEnrollmentPeriod)
}

func TestLoadEnrollmentPeriod(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		settings map[string]string
		want     sysconfig.EnrollmentPeriod
		wantErr  error
	}{
		{name: "missing deadline", settings: map[string]string{sysconfig.KeyLabEnrollmentStart: "2025-09-01"}},
		{name: "blank deadline", settings: map[string]string{sysconfig.KeyLabEnrollmentDeadline: "  "}},
		{
			name:     "deadline only",
			settings: map[string]string{sysconfig.KeyLabEnrollmentDeadline: "2025-09-10"},
			want:     sysconfig.EnrollmentPeriod{Deadline: day(2025, time.September, 10)},
		},
		{
			name: "RFC 3339 values",
			settings: map[string]string{
				sysconfig.KeyLabEnrollmentStart:    "2025-09-01T08:00:00-05:00",
				sysconfig.KeyLabEnrollmentDeadline: "2025-09-10T23:00:00Z",
			},
			want: sysconfig.EnrollmentPeriod{Start: day(2025, time.September, 1), Deadline: day(2025, time.September, 10)},
		},
		{
			name:     "malformed deadline",
			settings: map[string]string{sysconfig.KeyLabEnrollmentDeadline: "10/09/2025"},
			wantErr:  shared.ErrInternal,
		},
		{
			name: "malformed start",
			settings: map[string]string{
				sysconfig.KeyLabEnrollmentStart:    "soon",
				sysconfig.KeyLabEnrollmentDeadline: "2025-09-10",
			},
			wantErr: shared.ErrInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			period, err := sysconfig.LoadEnrollmentPeriod(ctx, memstore.NewSettings(tt.settings))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Start.Equal(period.Start), "start %v", period.Start)
			assert.True(t, tt.want.Deadline.Equal(period.Deadline), "deadline %v", period.Deadline)
		})
	}
}

func TestLoadEnrollmentPeriod_StoreFailure(t *testing.T) {
	settings := memstore.NewSettings(nil)
	cause := errors.New("connection refused")
	settings.Err = cause

	_, err := sysconfig.LoadEnrollmentPeriod(context.Background(), settings)

	assert.ErrorIs(t, err, shared.ErrInternal)
	assert.ErrorIs(t, err, cause)
}
