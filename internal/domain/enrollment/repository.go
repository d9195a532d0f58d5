package enrollment

import (
	"context"

	"github.com/epis-academic/academic-records/internal/domain/shared"
)

// Repository stores enrollments. Absence is reported as a nil enrollment.
type Repository interface {
	FindByID(ctx context.Context, id shared.ID) (*Enrollment, error)

	// FindByIDForUpdate loads the enrollment and locks its row until the
	// surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id shared.ID) (*Enrollment, error)

	FindByIDs(ctx context.Context, ids []shared.ID) ([]*Enrollment, error)
	FindByStudent(ctx context.Context, studentID shared.ID) ([]*Enrollment, error)
	FindByStudentAndTheoryGroup(ctx context.Context, studentID, theoryGroupID shared.ID) (*Enrollment, error)
	FindByTheoryGroup(ctx context.Context, theoryGroupID shared.ID) ([]*Enrollment, error)
	FindByLabGroup(ctx context.Context, labGroupID shared.ID) ([]*Enrollment, error)
	Save(ctx context.Context, enrollment *Enrollment) error
	Delete(ctx context.Context, id shared.ID) error
}
