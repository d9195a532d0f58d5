package attendance_test

import (
	"testing"
	"time"

	"github.com/epis-academic/academic-records/internal/domain/attendance"
	"github.com/epis-academic/academic-records/internal/domain/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, time.September, 10, 9, 30, 0, 0, time.UTC)

func TestNewAttendance(t *testing.T) {
	a, err := attendance.NewAttendance(attendance.NewAttendanceParams{
		EnrollmentID: shared.NewID().String(),
		ClassType:    "lab",
		Date:         time.Date(2025, time.September, 10, 21, 0, 0, 0, time.UTC),
		Status:       "present",
	}, now)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, time.September, 10, 0, 0, 0, 0, time.UTC), a.Date, "later today is still today")
	assert.Equal(t, shared.ClassLab, a.ClassType)
	assert.Equal(t, shared.Present, a.Status)

	require.NoError(t, a.UpdateStatus("ABSENT"))
	assert.Equal(t, shared.Absent, a.Status)
	assert.ErrorIs(t, a.UpdateStatus("LATE"), shared.ErrInvalidAttendanceStatus)
	assert.Equal(t, shared.Absent, a.Status)
}

func TestNewAttendance_Rejections(t *testing.T) {
	valid := func() attendance.NewAttendanceParams {
		return attendance.NewAttendanceParams{
			EnrollmentID: shared.NewID().String(),
			ClassType:    "THEORY",
			Date:         now.AddDate(0, 0, -7),
			Status:       "PRESENT",
		}
	}

	tests := []struct {
		name    string
		mutate  func(p *attendance.NewAttendanceParams)
		wantErr error
	}{
		{name: "tomorrow", mutate: func(p *attendance.NewAttendanceParams) { p.Date = now.AddDate(0, 0, 1) }, wantErr: shared.ErrFutureAttendanceDate},
		{name: "no date", mutate: func(p *attendance.NewAttendanceParams) { p.Date = time.Time{} }, wantErr: shared.ErrAttendanceCreation},
		{name: "unknown status", mutate: func(p *attendance.NewAttendanceParams) { p.Status = "EXCUSED" }, wantErr: shared.ErrInvalidAttendanceStatus},
		{name: "unknown class type", mutate: func(p *attendance.NewAttendanceParams) { p.ClassType = "SEMINAR" }, wantErr: shared.ErrInvalidClassType},
		{name: "bad enrollment", mutate: func(p *attendance.NewAttendanceParams) { p.EnrollmentID = "e-1" }, wantErr: shared.ErrInvalidID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(&p)
			_, err := attendance.NewAttendance(p, now)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSessionDay_UsesUTC(t *testing.T) {
	lima := time.FixedZone("PET", -5*60*60)

	// 20:00 in Lima on the 10th is already the 11th in UTC.
	_, err := attendance.SessionDay(time.Date(2025, time.September, 10, 20, 0, 0, 0, lima), now)

	assert.ErrorIs(t, err, shared.ErrFutureAttendanceDate)
}
