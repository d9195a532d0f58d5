// Package uow defines the transaction boundary used by write use cases.
package uow

import (
	"context"

	"github.com/epis-academic/academic-records/internal/domain/attendance"
	"github.com/epis-academic/academic-records/internal/domain/authorization"
	"github.com/epis-academic/academic-records/internal/domain/course"
	"github.com/epis-academic/academic-records/internal/domain/enrollment"
	"github.com/epis-academic/academic-records/internal/domain/grading"
	"github.com/epis-academic/academic-records/internal/domain/lab"
	"github.com/epis-academic/academic-records/internal/domain/schedule"
	"github.com/epis-academic/academic-records/internal/domain/syllabus"
	"github.com/epis-academic/academic-records/internal/domain/user"
)

// Repositories is the set of repository ports bound to one transaction.
type Repositories struct {
	Courses         course.Repository
	TheoryGroups    course.TheoryGroupRepository
	LabGroups       lab.Repository
	Enrollments     enrollment.Repository
	Grades          grading.GradeRepository
	GradeWeights    grading.WeightRepository
	Schedules       schedule.ClassScheduleRepository
	Classrooms      schedule.ClassroomRepository
	Reservations    schedule.ReservationRepository
	Attendance      attendance.Repository
	Contents        syllabus.ContentRepository
	Portfolios      syllabus.PortfolioRepository
	Users           user.Repository
	StudentProfiles user.StudentProfileRepository
	TeacherProfiles user.TeacherProfileRepository
}

// TxManager runs fn inside one transaction. The transaction commits when fn
// returns nil and rolls back otherwise.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

// Authorizer returns a teacher authorization service reading through the
// same transaction.
func (r Repositories) Authorizer() *authorization.Service {
	return authorization.NewService(r.TheoryGroups, r.LabGroups)
}
