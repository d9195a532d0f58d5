package attendance

import (
	"context"
	"time"

	"github.com/epis-academic/academic-records/internal/domain/shared"
)

// Repository stores attendance records.
type Repository interface {
	FindByID(ctx context.Context, id shared.ID) (*Attendance, error)
	FindByEnrollmentID(ctx context.Context, enrollmentID shared.ID) ([]*Attendance, error)
	FindByEnrollmentDateAndType(ctx context.Context, enrollmentID shared.ID, day time.Time, classType shared.ClassType) (*Attendance, error)
	FindManyByEnrollmentsDateAndType(ctx context.Context, enrollmentIDs []shared.ID, day time.Time, classType shared.ClassType) ([]*Attendance, error)

	// SaveMany upserts by (enrollment, class type, date).
	SaveMany(ctx context.Context, records []*Attendance) error
}
