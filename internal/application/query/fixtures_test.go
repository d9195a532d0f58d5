package query_test

import (
	"context"
	"testing"
	"time"

	"github.com/epis-academic/academic-records/internal/domain/course"
	"github.com/epis-academic/academic-records/internal/domain/enrollment"
	"github.com/epis-academic/academic-records/internal/domain/grading"
	"github.com/epis-academic/academic-records/internal/domain/lab"
	"github.com/epis-academic/academic-records/internal/domain/schedule"
	"github.com/epis-academic/academic-records/internal/domain/shared"
	"github.com/epis-academic/academic-records/internal/domain/user"
	"github.com/epis-academic/academic-records/internal/testutil/memstore"

	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, time.September, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *memstore.Store
}

func newFixture(t *testing.T) *fixture {
	return &fixture{t: t, ctx: context.Background(), store: memstore.New()}
}

func (f *fixture) course(code, name string) *course.Course {
	f.t.Helper()
	c, err := course.NewCourse(course.NewCourseParams{Code: code, Name: name, Credits: 4, Type: "THEORY_LAB"})
	require.NoError(f.t, err)
	f.store.Seed(c)
	return c
}

func (f *fixture) theoryGroup(c *course.Course, professorID shared.ID, sem string) *course.TheoryGroup {
	f.t.Helper()
	g, err := course.NewTheoryGroup(course.NewTheoryGroupParams{
		CourseID:    c.ID.String(),
		ProfessorID: professorID.String(),
		Semester:    sem,
		GroupLetter: "A",
	})
	require.NoError(f.t, err)
	f.store.Seed(g)
	return g
}

func (f *fixture) labGroup(c *course.Course, letter string, capacity, enrolled int) *lab.LabGroup {
	f.t.Helper()
	g, err := lab.NewLabGroup(lab.NewLabGroupParams{
		CourseID:          c.ID.String(),
		ProfessorID:       shared.NewID().String(),
		GroupLetter:       letter,
		Capacity:          capacity,
		CurrentEnrollment: enrolled,
	})
	require.NoError(f.t, err)
	f.store.Seed(g)
	return g
}

func (f *fixture) room(name string) *schedule.Classroom {
	f.t.Helper()
	r, err := schedule.NewClassroom(schedule.NewClassroomParams{Name: name, Capacity: 30, Type: "LAB"})
	require.NoError(f.t, err)
	f.store.Seed(r)
	return r
}

func (f *fixture) labSession(g *lab.LabGroup, room *schedule.Classroom, day, start, end string) {
	f.t.Helper()
	s, err := schedule.NewClassSchedule(schedule.NewClassScheduleParams{
		ClassroomID: room.ID.String(),
		Day:         day,
		StartTime:   start,
		EndTime:     end,
		Semester:    "2025-II",
		LabGroupID:  g.ID.String(),
	})
	require.NoError(f.t, err)
	f.store.Seed(s)
}

// student registers a STUDENT user with a profile and returns the profile.
func (f *fixture) student(name, surname, code string) *user.StudentProfile {
	f.t.Helper()
	u := f.user(name, surname, "STUDENT")
	p, err := user.NewStudentProfile("", u.ID.String(), code)
	require.NoError(f.t, err)
	f.store.Seed(p)
	return p
}

func (f *fixture) user(name, surname, role string) *user.User {
	f.t.Helper()
	u, err := user.NewUser(user.NewUserParams{
		Email:        shared.NewID().String() + "@unsa.edu.pe",
		Name:         name,
		Surname:      surname,
		PasswordHash: "$2a$10$not-a-real-hash",
		Role:         role,
	}, now)
	require.NoError(f.t, err)
	f.store.Seed(u)
	return u
}

func (f *fixture) enroll(studentID shared.ID, g *course.TheoryGroup, labGroup *lab.LabGroup) *enrollment.Enrollment {
	f.t.Helper()
	e, err := enrollment.NewEnrollment(enrollment.NewEnrollmentParams{
		StudentID:     studentID.String(),
		TheoryGroupID: g.ID.String(),
	})
	require.NoError(f.t, err)
	if labGroup != nil {
		require.NoError(f.t, e.AssignLab(labGroup.ID))
	}
	f.store.Seed(e)
	return e
}

func (f *fixture) grade(e *enrollment.Enrollment, gradeType string, score float64) {
	f.t.Helper()
	g, err := grading.NewGrade(grading.NewGradeParams{EnrollmentID: e.ID.String(), Type: gradeType, Score: score})
	require.NoError(f.t, err)
	f.store.Seed(g)
}

// weights seeds a weight set given as type, percentage pairs.
func (f *fixture) weights(g *course.TheoryGroup, pairs ...interface{}) {
	f.t.Helper()
	set := grading.WeightSet{}
	for i := 0; i < len(pairs); i += 2 {
		w, err := grading.NewGradeWeight(grading.NewGradeWeightParams{
			TheoryGroupID: g.ID.String(),
			Type:          pairs[i].(string),
			Weight:        pairs[i+1].(float64),
		})
		require.NoError(f.t, err)
		set = append(set, w)
	}
	f.store.Seed(set)
}
