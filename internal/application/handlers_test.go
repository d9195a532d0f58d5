package application_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/epis-academic/academic-records/internal/application"
	"github.com/epis-academic/academic-records/internal/application/command"
	"github.com/epis-academic/academic-records/internal/application/query"
	"github.com/epis-academic/academic-records/internal/domain/course"
	"github.com/epis-academic/academic-records/internal/domain/schedule"
	"github.com/epis-academic/academic-records/internal/domain/shared"
	"github.com/epis-academic/academic-records/internal/testutil/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHandlers_WritesAreVisibleToQueries(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	settings := memstore.NewSettings(nil)
	events := &memstore.EventRecorder{}

	c, err := course.NewCourse(course.NewCourseParams{Code: "11701101", Name: "Operating Systems", Credits: 4, Type: "THEORY_LAB"})
	require.NoError(t, err)
	room, err := schedule.NewClassroom(schedule.NewClassroomParams{Name: "Lab 2", Capacity: 25, Type: "LAB"})
	require.NoError(t, err)
	store.Seed(c, room)

	h := application.NewHandlers(application.Dependencies{
		TxManager:      store,
		Repositories:   store.Repositories(),
		Settings:       settings,
		EventPublisher: events,
		Clock:          func() time.Time { return time.Date(2025, time.September, 10, 12, 0, 0, 0, time.UTC) },
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	created, err := h.Commands.CreateLabGroup.Handle(ctx, command.CreateLabGroupCommand{
		CourseID:    c.ID.String(),
		ProfessorID: shared.NewID().String(),
		GroupLetter: "A",
		Capacity:    25,
		Semester:    "2025-II",
		Schedules:   []command.ScheduleInput{{ClassroomID: room.ID.String(), Day: "TUESDAY", StartTime: "08:00", EndTime: "10:00"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []shared.EventType{shared.EventLabGroupCreated}, events.Types())

	all, err := h.Queries.GetAllLabGroups.Handle(ctx)
	require.NoError(t, err)
	require.Len(t, all.Groups, 1)
	assert.Equal(t, created.LabGroupID, all.Groups[0].ID)
	assert.Equal(t, "Operating Systems", all.Groups[0].CourseName)
	assert.Equal(t, 25, all.Groups[0].AvailableSeats)
	require.Len(t, all.Groups[0].Schedules, 1)
	assert.Equal(t, "Lab 2", all.Groups[0].Schedules[0].ClassroomName)

	occupancy, err := h.Queries.GetClassroomSchedule.Handle(ctx, query.GetClassroomScheduleQuery{ClassroomID: room.ID.String(), Semester: "2025-II"})
	require.NoError(t, err)
	require.Len(t, occupancy, 1)
	assert.Equal(t, query.EntryLab, occupancy[0].Kind)
	assert.Equal(t, "TUESDAY", occupancy[0].Day)

	_, err = h.Commands.SetEnrollmentPeriod.Handle(ctx, command.SetEnrollmentPeriodCommand{Start: "2025-09-01", Deadline: "2025-09-05"})
	require.NoError(t, err)

	period, err := h.Queries.GetEnrollmentPeriod.Handle(ctx)
	require.NoError(t, err)
	assert.Equal(t, query.EnrollmentPeriodDTO{Start: "2025-09-01", Deadline: "2025-09-05"}, *period, "the injected clock is past the deadline")
}

func TestNewHandlers_DefaultsReservationPolicy(t *testing.T) {
	store := memstore.New()

	h := application.NewHandlers(application.Dependencies{
		TxManager:    store,
		Repositories: store.Repositories(),
		Settings:     memstore.NewSettings(nil),
	})

	assert.NotNil(t, h.Commands.CreateRoomReservation)
	assert.NotNil(t, h.Commands.CompleteElapsedReservations)
	assert.NotNil(t, h.Queries.GetAccreditationDashboard)
	assert.NotNil(t, h.Queries.GetTeacherSchedule)
}
