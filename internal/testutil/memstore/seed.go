package memstore

import (
	"fmt"

	"github.com/epis-academic/academic-records/internal/domain/attendance"
	"github.com/epis-academic/academic-records/internal/domain/course"
	"github.com/epis-academic/academic-records/internal/domain/enrollment"
	"github.com/epis-academic/academic-records/internal/domain/grading"
	"github.com/epis-academic/academic-records/internal/domain/lab"
	"github.com/epis-academic/academic-records/internal/domain/schedule"
	"github.com/epis-academic/academic-records/internal/domain/syllabus"
	"github.com/epis-academic/academic-records/internal/domain/user"
)

// Seed stores entities in the committed data without a transaction. It
// panics on a type it does not know.
func (s *Store) Seed(entities ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.committed
	for _, e := range entities {
		switch v := e.(type) {
		case *course.Course:
			d.courses[v.ID] = *v
		case *course.TheoryGroup:
			d.theoryGroups[v.ID] = *v
		case *lab.LabGroup:
			d.labGroups[v.ID] = *v
		case *enrollment.Enrollment:
			d.enrollments[v.ID] = *v
		case *grading.Grade:
			d.grades[v.ID] = *v
		case grading.WeightSet:
			for _, w := range v {
				d.weights[w.TheoryGroupID] = append(d.weights[w.TheoryGroupID], *w)
			}
		case *schedule.ClassSchedule:
			d.schedules[v.ID] = *v
		case *schedule.Classroom:
			d.classrooms[v.ID] = *v
		case *schedule.RoomReservation:
			d.reservations[v.ID] = *v
		case *attendance.Attendance:
			d.attendance[v.ID] = *v
		case *syllabus.CourseContent:
			d.contents[v.ID] = *v
		case *syllabus.GroupPortfolio:
			d.portfolios[v.GroupID] = *v
		case *user.User:
			d.users[v.ID] = *v
		case *user.StudentProfile:
			d.students[v.ID] = *v
		case *user.TeacherProfile:
			d.teachers[v.ID] = *v
		default:
			panic(fmt.Sprintf("memstore: cannot seed %T", e))
		}
	}
}
