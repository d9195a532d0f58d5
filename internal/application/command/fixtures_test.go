package command_test

import (
	"context"
	"testing"
	"time"

	"github.com/epis-academic/academic-records/internal/domain/course"
	"github.com/epis-academic/academic-records/internal/domain/enrollment"
	"github.com/epis-academic/academic-records/internal/domain/lab"
	"github.com/epis-academic/academic-records/internal/domain/schedule"
	"github.com/epis-academic/academic-records/internal/domain/shared"
	"github.com/epis-academic/academic-records/internal/domain/sysconfig"
	"github.com/epis-academic/academic-records/internal/testutil/memstore"

	"github.com/stretchr/testify/require"
)

// now is a Wednesday in the second semester of 2025.
var now = time.Date(2025, time.September, 10, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

const semester = "2025-II"

type world struct {
	t        *testing.T
	ctx      context.Context
	store    *memstore.Store
	settings *memstore.Settings
	events   *memstore.EventRecorder

	professorID shared.ID
	course      *course.Course
	theory      *course.TheoryGroup
	labRoom     *schedule.Classroom
	theoryRoom  *schedule.Classroom
}

// newWorld seeds a THEORY_LAB course with one theory group taught by
// professorID, a lab room and a theory room. Lab enrollment is open from
// 2025-09-01 to 2025-09-20.
func newWorld(t *testing.T) *world {
	t.Helper()

	w := &world{
		t:     t,
		ctx:   context.Background(),
		store: memstore.New(),
		settings: memstore.NewSettings(map[string]string{
			sysconfig.KeyLabEnrollmentStart:    "2025-09-01",
			sysconfig.KeyLabEnrollmentDeadline: "2025-09-20",
		}),
		events:      &memstore.EventRecorder{},
		professorID: shared.NewID(),
	}
	w.course = w.newCourse("11701101", "Algorithms and Data Structures", "THEORY_LAB")
	w.theory = w.newTheoryGroup(w.course, w.professorID, "A")

	var err error
	w.labRoom, err = schedule.NewClassroom(schedule.NewClassroomParams{Name: "Lab 101", Capacity: 30, Type: "LAB"})
	require.NoError(t, err)
	w.theoryRoom, err = schedule.NewClassroom(schedule.NewClassroomParams{Name: "Room 201", Capacity: 60, Type: "THEORY"})
	require.NoError(t, err)
	w.store.Seed(w.labRoom, w.theoryRoom)
	return w
}

func (w *world) newCourse(code, name, courseType string) *course.Course {
	w.t.Helper()
	c, err := course.NewCourse(course.NewCourseParams{Code: code, Name: name, Credits: 4, Type: courseType})
	require.NoError(w.t, err)
	w.store.Seed(c)
	return c
}

func (w *world) newTheoryGroup(c *course.Course, professorID shared.ID, letter string) *course.TheoryGroup {
	w.t.Helper()
	g, err := course.NewTheoryGroup(course.NewTheoryGroupParams{
		CourseID:    c.ID.String(),
		ProfessorID: professorID.String(),
		Semester:    semester,
		GroupLetter: letter,
	})
	require.NoError(w.t, err)
	w.store.Seed(g)
	return g
}

func (w *world) newLabGroup(c *course.Course, professorID shared.ID, letter string, capacity int) *lab.LabGroup {
	w.t.Helper()
	g, err := lab.NewLabGroup(lab.NewLabGroupParams{
		CourseID:    c.ID.String(),
		ProfessorID: professorID.String(),
		GroupLetter: letter,
		Capacity:    capacity,
	})
	require.NoError(w.t, err)
	w.store.Seed(g)
	return g
}

// theorySession seeds a weekly session of a theory group.
func (w *world) theorySession(g *course.TheoryGroup, room *schedule.Classroom, day, start, end string) *schedule.ClassSchedule {
	w.t.Helper()
	s, err := schedule.NewClassSchedule(schedule.NewClassScheduleParams{
		ClassroomID:   room.ID.String(),
		Day:           day,
		StartTime:     start,
		EndTime:       end,
		Semester:      semester,
		TheoryGroupID: g.ID.String(),
	})
	require.NoError(w.t, err)
	w.store.Seed(s)
	return s
}

// labSession seeds a weekly session of a lab group.
func (w *world) labSession(g *lab.LabGroup, room *schedule.Classroom, day, start, end string) *schedule.ClassSchedule {
	w.t.Helper()
	s, err := schedule.NewClassSchedule(schedule.NewClassScheduleParams{
		ClassroomID: room.ID.String(),
		Day:         day,
		StartTime:   start,
		EndTime:     end,
		Semester:    semester,
		LabGroupID:  g.ID.String(),
	})
	require.NoError(w.t, err)
	w.store.Seed(s)
	return s
}

// enroll seeds a theory enrollment of a new student and returns it.
func (w *world) enroll(g *course.TheoryGroup) *enrollment.Enrollment {
	w.t.Helper()
	return w.enrollStudent(shared.NewID(), g)
}

func (w *world) enrollStudent(studentID shared.ID, g *course.TheoryGroup) *enrollment.Enrollment {
	w.t.Helper()
	e, err := enrollment.NewEnrollment(enrollment.NewEnrollmentParams{
		StudentID:     studentID.String(),
		TheoryGroupID: g.ID.String(),
	})
	require.NoError(w.t, err)
	w.store.Seed(e)
	return e
}

func (w *world) reservation(room *schedule.Classroom, professorID shared.ID, date, start, end, status string) *schedule.RoomReservation {
	w.t.Helper()
	r, err := schedule.NewRoomReservation(schedule.NewRoomReservationParams{
		ClassroomID: room.ID.String(),
		ProfessorID: professorID.String(),
		Semester:    semester,
		Date:        date,
		StartTime:   start,
		EndTime:     end,
		Status:      status,
	})
	require.NoError(w.t, err)
	w.store.Seed(r)
	return r
}

func (w *world) labGroup(id shared.ID) *lab.LabGroup {
	w.t.Helper()
	g, err := w.store.Repositories().LabGroups.FindByID(w.ctx, id)
	require.NoError(w.t, err)
	require.NotNil(w.t, g)
	return g
}

func (w *world) enrollment(id shared.ID) *enrollment.Enrollment {
	w.t.Helper()
	e, err := w.store.Repositories().Enrollments.FindByID(w.ctx, id)
	require.NoError(w.t, err)
	require.NotNil(w.t, e)
	return e
}
