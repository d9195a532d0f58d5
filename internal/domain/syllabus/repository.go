package syllabus

import (
	"context"

	"github.com/epis-academic/academic-records/internal/domain/shared"
)

// ContentRepository stores syllabus topics.
type ContentRepository interface {
	FindByID(ctx context.Context, id shared.ID) (*CourseContent, error)

	// FindByTheoryGroupID returns the topics ordered by week.
	FindByTheoryGroupID(ctx context.Context, theoryGroupID shared.ID) ([]*CourseContent, error)
	Save(ctx context.Context, topic *CourseContent) error
	Delete(ctx context.Context, id shared.ID) error
}

// PortfolioRepository stores group portfolios. Absence is reported as nil.
type PortfolioRepository interface {
	FindByGroupID(ctx context.Context, groupID shared.ID) (*GroupPortfolio, error)
	Save(ctx context.Context, portfolio *GroupPortfolio) error
}
