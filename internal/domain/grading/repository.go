package grading

import (
	"context"

	"github.com/epis-academic/academic-records/internal/domain/shared"
)

// GroupStats aggregates the scores of one grade type within a theory group.
type GroupStats struct {
	TheoryGroupID shared.ID
	Type          shared.GradeType
	Average       float64
	Max           float64
	Min           float64
}

// GradeRepository stores grades. Absence is reported as a nil grade.
type GradeRepository interface {
	FindByID(ctx context.Context, id shared.ID) (*Grade, error)
	FindByEnrollmentID(ctx context.Context, enrollmentID shared.ID) ([]*Grade, error)
	FindByEnrollmentAndType(ctx context.Context, enrollmentID shared.ID, gradeType shared.GradeType) (*Grade, error)
	FindStatsByTheoryGroupIDs(ctx context.Context, theoryGroupIDs []shared.ID) ([]GroupStats, error)

	// SaveMany upserts by (enrollment, type).
	SaveMany(ctx context.Context, grades []*Grade) error
	Delete(ctx context.Context, id shared.ID) error
}

// WeightRepository stores grade weights.
type WeightRepository interface {
	FindByTheoryGroupID(ctx context.Context, theoryGroupID shared.ID) (WeightSet, error)

	// ReplaceForGroup replaces the whole weight set of a theory group.
	ReplaceForGroup(ctx context.Context, theoryGroupID shared.ID, weights WeightSet) error
}
