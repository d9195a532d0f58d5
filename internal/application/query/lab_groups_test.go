package query_test

import (
	"testing"
	"time"

	"github.com/epis-academic/academic-records/internal/application/query"
	"github.com/epis-academic/academic-records/internal/domain/shared"
	"github.com/epis-academic/academic-records/internal/domain/sysconfig"
	"github.com/epis-academic/academic-records/internal/testutil/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) availableHandler() *query.GetAvailableLabGroupsHandler {
	r := f.store.Repositories()
	return query.NewGetAvailableLabGroupsHandler(r.Enrollments, r.TheoryGroups, r.LabGroups, r.Schedules, r.Classrooms)
}

func TestGetAvailableLabGroups(t *testing.T) {
	f := newFixture(t)
	c := f.course("11701101", "Algorithms and Data Structures")
	other := f.course("11701102", "Discrete Mathematics")
	room := f.room("Lab 3")

	open := f.labGroup(c, "A", 20, 5)
	f.labSession(open, room, "MONDAY", "14:00", "16:00")
	f.labGroup(c, "B", 2, 2)
	f.labGroup(other, "A", 20, 0)

	studentID := shared.NewID()
	e := f.enroll(studentID, f.theoryGroup(c, shared.NewID(), "2025-II"), nil)

	result, err := f.availableHandler().Handle(f.ctx, query.GetAvailableLabGroupsQuery{
		StudentProfileID: studentID.String(),
		EnrollmentID:     e.ID.String(),
	})
	require.NoError(t, err)

	assert.False(t, result.AlreadyEnrolled)
	require.Len(t, result.Groups, 1, "full groups and other courses are hidden")
	g := result.Groups[0]
	assert.Equal(t, open.ID.String(), g.ID)
	assert.Equal(t, 15, g.AvailableSeats)
	assert.Equal(t, []query.ScheduleDTO{{
		Day:           "MONDAY",
		StartTime:     "14:00",
		EndTime:       "16:00",
		Semester:      "2025-II",
		ClassroomID:   room.ID.String(),
		ClassroomName: "Lab 3",
	}}, g.Schedules)
}

func TestGetAvailableLabGroups_AlreadyEnrolled(t *testing.T) {
	f := newFixture(t)
	c := f.course("11701101", "Algorithms and Data Structures")
	g := f.labGroup(c, "A", 20, 1)
	studentID := shared.NewID()
	e := f.enroll(studentID, f.theoryGroup(c, shared.NewID(), "2025-II"), g)

	result, err := f.availableHandler().Handle(f.ctx, query.GetAvailableLabGroupsQuery{
		StudentProfileID: studentID.String(),
		EnrollmentID:     e.ID.String(),
	})

	require.NoError(t, err)
	assert.True(t, result.AlreadyEnrolled)
	assert.Empty(t, result.Groups)
}

func TestGetAvailableLabGroups_Rejections(t *testing.T) {
	f := newFixture(t)
	c := f.course("11701101", "Algorithms and Data Structures")
	studentID := shared.NewID()
	e := f.enroll(studentID, f.theoryGroup(c, shared.NewID(), "2025-II"), nil)

	tests := []struct {
		name    string
		query   query.GetAvailableLabGroupsQuery
		wantErr error
	}{
		{
			name:    "another student's enrollment",
			query:   query.GetAvailableLabGroupsQuery{StudentProfileID: shared.NewID().String(), EnrollmentID: e.ID.String()},
			wantErr: shared.ErrNotAuthorized,
		},
		{
			name:    "unknown enrollment",
			query:   query.GetAvailableLabGroupsQuery{StudentProfileID: studentID.String(), EnrollmentID: shared.NewID().String()},
			wantErr: shared.ErrEnrollmentNotFound,
		},
		{
			name:    "malformed id",
			query:   query.GetAvailableLabGroupsQuery{StudentProfileID: studentID.String(), EnrollmentID: "42"},
			wantErr: shared.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.availableHandler().Handle(f.ctx, tt.query)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorContains(t, err, "get_available_lab_groups: ")
		})
	}
}

func TestGetAllLabGroups_SortedByCourseThenLetter(t *testing.T) {
	f := newFixture(t)
	algorithms := f.course("11701101", "Algorithms and Data Structures")
	networks := f.course("11701201", "Computer Networks")
	f.labGroup(networks, "A", 20, 0)
	f.labGroup(algorithms, "B", 20, 0)
	f.labGroup(algorithms, "A", 20, 20)

	r := f.store.Repositories()
	result, err := query.NewGetAllLabGroupsHandler(r.LabGroups, r.Courses, r.Schedules, r.Classrooms).Handle(f.ctx)
	require.NoError(t, err)

	var got []string
	for _, g := range result.Groups {
		got = append(got, g.CourseName+"/"+g.GroupLetter)
	}
	assert.Equal(t, []string{
		"Algorithms and Data Structures/A",
		"Algorithms and Data Structures/B",
		"Computer Networks/A",
	}, got)
	assert.Zero(t, result.Groups[0].AvailableSeats, "full groups are listed too")
}

func TestGetAllLabGroups_Empty(t *testing.T) {
	f := newFixture(t)
	r := f.store.Repositories()

	result, err := query.NewGetAllLabGroupsHandler(r.LabGroups, r.Courses, r.Schedules, r.Classrooms).Handle(f.ctx)

	require.NoError(t, err)
	assert.NotNil(t, result.Groups)
	assert.Empty(t, result.Groups)
}

func TestGetStudentsInLab(t *testing.T) {
	f := newFixture(t)
	c := f.course("11701101", "Algorithms and Data Structures")
	theory := f.theoryGroup(c, shared.NewID(), "2025-II")
	g := f.labGroup(c, "A", 20, 2)

	zoe := f.student("Zoe", "Vargas", "20230002")
	ana := f.student("Ana", "Quispe", "20230001")
	f.enroll(zoe.ID, theory, g)
	f.enroll(ana.ID, theory, g)
	f.enroll(f.student("Luis", "Mamani", "20230003").ID, theory, nil)

	r := f.store.Repositories()
	result, err := query.NewGetStudentsInLabHandler(r.LabGroups, r.Enrollments, r.StudentProfiles, r.Users).
		Handle(f.ctx, query.GetStudentsInLabQuery{LabGroupID: g.ID.String()})
	require.NoError(t, err)

	assert.Equal(t, g.ID.String(), result.LabGroup.ID)
	require.Len(t, result.Students, 2)
	assert.Equal(t, "Ana Quispe", result.Students[0].FullName)
	assert.Equal(t, "20230001", result.Students[0].StudentCode)
	assert.Equal(t, ana.ID.String(), result.Students[0].StudentProfileID)
	assert.Contains(t, result.Students[0].Email, "@unsa.edu.pe")
	assert.Equal(t, "Zoe Vargas", result.Students[1].FullName)
}

func TestGetStudentsInLab_UnknownGroup(t *testing.T) {
	f := newFixture(t)
	r := f.store.Repositories()

	_, err := query.NewGetStudentsInLabHandler(r.LabGroups, r.Enrollments, r.StudentProfiles, r.Users).
		Handle(f.ctx, query.GetStudentsInLabQuery{LabGroupID: shared.NewID().String()})

	assert.ErrorIs(t, err, shared.ErrLabGroupNotFound)
	assert.True(t, shared.IsNotFound(err))
	assert.ErrorContains(t, err, "get_students_in_lab: ")
}

func TestGetEnrollmentPeriod(t *testing.T) {
	clock := func() time.Time { return now }

	tests := []struct {
		name     string
		settings map[string]string
		want     query.EnrollmentPeriodDTO
	}{
		{
			name: "open",
			settings: map[string]string{
				sysconfig.KeyLabEnrollmentStart:    "2025-09-01",
				sysconfig.KeyLabEnrollmentDeadline: "2025-09-10T23:00:00Z",
			},
			want: query.EnrollmentPeriodDTO{Start: "2025-09-01", Deadline: "2025-09-10", Open: true},
		},
		{
			name:     "deadline only",
			settings: map[string]string{sysconfig.KeyLabEnrollmentDeadline: "2025-09-30"},
			want:     query.EnrollmentPeriodDTO{Deadline: "2025-09-30", Open: true},
		},
		{
			name:     "closed",
			settings: map[string]string{sysconfig.KeyLabEnrollmentDeadline: "2025-09-09"},
			want:     query.EnrollmentPeriodDTO{Deadline: "2025-09-09"},
		},
		{
			name: "not configured",
			want: query.EnrollmentPeriodDTO{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dto, err := query.NewGetEnrollmentPeriodHandler(memstore.NewSettings(tt.settings), clock).Handle(newFixture(t).ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *dto)
		})
	}
}

func TestGetEnrollmentPeriod_MalformedDeadline(t *testing.T) {
	settings := memstore.NewSettings(map[string]string{sysconfig.KeyLabEnrollmentDeadline: "next friday"})

	_, err := query.NewGetEnrollmentPeriodHandler(settings, nil).Handle(newFixture(t).ctx)

	assert.ErrorIs(t, err, shared.ErrInternal)
	assert.ErrorContains(t, err, "get_enrollment_period: ")
}
