package lab

import (
	"context"

	"github.com/epis-academic/academic-records/internal/domain/shared"
)

// Repository stores lab groups. Absence is reported as a nil group.
type Repository interface {
	FindByID(ctx context.Context, id shared.ID) (*LabGroup, error)

	// FindByIDForUpdate loads the group and locks its row until the
	// surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id shared.ID) (*LabGroup, error)

	FindByCourse(ctx context.Context, courseID shared.ID) ([]*LabGroup, error)
	FindByProfessor(ctx context.Context, professorID shared.ID) ([]*LabGroup, error)
	FindAll(ctx context.Context) ([]*LabGroup, error)
	Save(ctx context.Context, group *LabGroup) error
	Delete(ctx context.Context, id shared.ID) error
}
