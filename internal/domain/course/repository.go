package course

import (
	"context"

	"github.com/epis-academic/academic-records/internal/domain/shared"
)

// Repository stores catalog courses. Absence is reported as a nil course.
type Repository interface {
	FindByID(ctx context.Context, id shared.ID) (*Course, error)
	FindByCode(ctx context.Context, code shared.CourseCode) (*Course, error)
	FindByIDs(ctx context.Context, ids []shared.ID) ([]*Course, error)
	FindAll(ctx context.Context) ([]*Course, error)
	Save(ctx context.Context, course *Course) error
	Delete(ctx context.Context, id shared.ID) error
}

// TheoryGroupRepository stores theory groups. Absence is reported as a nil group.
type TheoryGroupRepository interface {
	FindByID(ctx context.Context, id shared.ID) (*TheoryGroup, error)
	FindByIDs(ctx context.Context, ids []shared.ID) ([]*TheoryGroup, error)
	FindByCourseAndSemester(ctx context.Context, courseID shared.ID, semester shared.AcademicSemester) ([]*TheoryGroup, error)
	FindByProfessorAndSemester(ctx context.Context, professorID shared.ID, semester shared.AcademicSemester) ([]*TheoryGroup, error)
	Save(ctx context.Context, group *TheoryGroup) error
	Delete(ctx context.Context, id shared.ID) error
}
