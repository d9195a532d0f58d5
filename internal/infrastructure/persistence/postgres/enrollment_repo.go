package postgres

import (
	"context"
	"fmt"

	"github.com/epis-academic/academic-records/internal/domain/enrollment"
	"github.com/epis-academic/academic-records/internal/domain/shared"

	"github.com/jackc/pgx/v5"
)

const enrollmentSelect = `SELECT id, student_id, theory_group_id, lab_group_id FROM enrollments `

// EnrollmentRepository implements enrollment.Repository for PostgreSQL.
type EnrollmentRepository struct {
	q Querier
}

// NewEnrollmentRepository creates a new EnrollmentRepository.
func NewEnrollmentRepository(q Querier) *EnrollmentRepository {
	return &EnrollmentRepository{q: q}
}

// FindByID returns the enrollment or nil.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id shared.ID) (*enrollment.Enrollment, error) {
	e, err := queryOne(ctx, r.q, scanEnrollment, enrollmentSelect+"WHERE id = $1", id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}
	return e, nil
}

// FindByIDForUpdate returns the enrollment and holds its row lock until the
// transaction ends.
func (r *EnrollmentRepository) FindByIDForUpdate(ctx context.Context, id shared.ID) (*enrollment.Enrollment, error) {
	e, err := queryOne(ctx, r.q, scanEnrollment, enrollmentSelect+"WHERE id = $1 FOR UPDATE", id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to lock enrollment: %w", err)
	}
	return e, nil
}

// FindByIDs returns the enrollments that exist among ids.
func (r *EnrollmentRepository) FindByIDs(ctx context.Context, ids []shared.ID) ([]*enrollment.Enrollment, error) {
	enrollments, err := queryIn(ctx, r.q, scanEnrollment, "enrollments",
		columns("id", "student_id", "theory_group_id", "lab_group_id"), "id", ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrollments by ids: %w", err)
	}
	return enrollments, nil
}

// FindByStudent returns every enrollment of a student profile.
func (r *EnrollmentRepository) FindByStudent(ctx context.Context, studentID shared.ID) ([]*enrollment.Enrollment, error) {
	return r.list(ctx, "WHERE student_id = $1", studentID.String())
}

// FindByStudentAndTheoryGroup returns the enrollment of a student in a
// section or nil.
func (r *EnrollmentRepository) FindByStudentAndTheoryGroup(ctx context.Context, studentID, theoryGroupID shared.ID) (*enrollment.Enrollment, error) {
	e, err := queryOne(ctx, r.q, scanEnrollment,
		enrollmentSelect+"WHERE student_id = $1 AND theory_group_id = $2",
		studentID.String(), theoryGroupID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get enrollment by student and group: %w", err)
	}
	return e, nil
}

// FindByTheoryGroup returns the enrollments of a section.
func (r *EnrollmentRepository) FindByTheoryGroup(ctx context.Context, theoryGroupID shared.ID) ([]*enrollment.Enrollment, error) {
	return r.list(ctx, "WHERE theory_group_id = $1", theoryGroupID.String())
}

// FindByLabGroup returns the enrollments assigned to a lab group.
func (r *EnrollmentRepository) FindByLabGroup(ctx context.Context, labGroupID shared.ID) ([]*enrollment.Enrollment, error) {
	return r.list(ctx, "WHERE lab_group_id = $1", labGroupID.String())
}

// Save inserts or updates the enrollment. An update never moves an
// enrollment from one lab group straight to another: the stored lab must be
// empty, cleared by this save, or unchanged.
func (r *EnrollmentRepository) Save(ctx context.Context, e *enrollment.Enrollment) error {
	tag, err := r.q.Exec(ctx, saveEnrollmentSQL,
		e.ID.String(), e.StudentID.String(), e.TheoryGroupID.String(), nullableID(e.LabGroupID))
	if err != nil {
		switch {
		case IsUniqueViolation(err):
			return shared.ErrAlreadyEnrolled.Withf("student %s is already enrolled in theory group %s", e.StudentID, e.TheoryGroupID)
		case IsForeignKeyViolation(err):
			return shared.ErrEnrollmentCreation.Wrap(err)
		}
		return fmt.Errorf("failed to save enrollment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrStudentAlreadyEnrolledInLab.Withf("enrollment %s already has a different lab group", e.ID)
	}
	return nil
}

const saveEnrollmentSQL = `
	INSERT INTO enrollments (id, student_id, theory_group_id, lab_group_id)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (id) DO UPDATE SET lab_group_id = EXCLUDED.lab_group_id
	WHERE enrollments.lab_group_id IS NULL
	   OR EXCLUDED.lab_group_id IS NULL
	   OR enrollments.lab_group_id = EXCLUDED.lab_group_id
`

// Delete removes the enrollment with its grades and attendance.
func (r *EnrollmentRepository) Delete(ctx context.Context, id shared.ID) error {
	if err := execDelete(ctx, r.q, "enrollments", id); err != nil {
		return fmt.Errorf("failed to delete enrollment: %w", err)
	}
	return nil
}

func (r *EnrollmentRepository) list(ctx context.Context, where string, args ...interface{}) ([]*enrollment.Enrollment, error) {
	enrollments, err := queryAll(ctx, r.q, scanEnrollment, enrollmentSelect+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrollments: %w", err)
	}
	return enrollments, nil
}

func scanEnrollment(row pgx.Row) (*enrollment.Enrollment, error) {
	var id, studentID, theoryGroupID string
	var labGroupID *string
	if err := row.Scan(&id, &studentID, &theoryGroupID, &labGroupID); err != nil {
		return nil, err
	}
	return &enrollment.Enrollment{
		ID:            shared.ID(id),
		StudentID:     shared.ID(studentID),
		TheoryGroupID: shared.ID(theoryGroupID),
		LabGroupID:    idPtr(labGroupID),
	}, nil
}
