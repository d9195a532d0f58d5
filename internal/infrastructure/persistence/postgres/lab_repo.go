package postgres

import (
	"context"
	"fmt"

	"github.com/epis-academic/academic-records/internal/domain/lab"
	"github.com/epis-academic/academic-records/internal/domain/shared"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// LAB GROUP REPOSITORY
// The capacity invariant is also enforced by the valid_current_enrollment
// CHECK constraint; a violation is reported as ErrInvalidCapacity.
// ══════════════════════════════════════════════════════════════════════════════

const labGroupSelect = `
	SELECT id, course_id, professor_id, group_letter, capacity, current_enrollment
	FROM lab_groups
`

// LabGroupRepository implements lab.Repository for PostgreSQL.
type LabGroupRepository struct {
	q Querier
}

// NewLabGroupRepository creates a new LabGroupRepository.
func NewLabGroupRepository(q Querier) *LabGroupRepository {
	return &LabGroupRepository{q: q}
}

// FindByID returns the group or nil.
func (r *LabGroupRepository) FindByID(ctx context.Context, id shared.ID) (*lab.LabGroup, error) {
	g, err := queryOne(ctx, r.q, scanLabGroup, labGroupSelect+"WHERE id = $1", id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get lab group: %w", err)
	}
	return g, nil
}

// FindByIDForUpdate returns the group and holds its row lock until the
// transaction ends. Outside a transaction the lock is released at once.
func (r *LabGroupRepository) FindByIDForUpdate(ctx context.Context, id shared.ID) (*lab.LabGroup, error) {
	g, err := queryOne(ctx, r.q, scanLabGroup, labGroupSelect+"WHERE id = $1 FOR UPDATE", id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to lock lab group: %w", err)
	}
	return g, nil
}

// FindByCourse returns the lab groups of a course ordered by letter.
func (r *LabGroupRepository) FindByCourse(ctx context.Context, courseID shared.ID) ([]*lab.LabGroup, error) {
	groups, err := queryAll(ctx, r.q, scanLabGroup,
		labGroupSelect+"WHERE course_id = $1 ORDER BY group_letter", courseID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query lab groups by course: %w", err)
	}
	return groups, nil
}

// FindByProfessor returns the lab groups taught by a professor.
func (r *LabGroupRepository) FindByProfessor(ctx context.Context, professorID shared.ID) ([]*lab.LabGroup, error) {
	groups, err := queryAll(ctx, r.q, scanLabGroup,
		labGroupSelect+"WHERE professor_id = $1", professorID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query lab groups by professor: %w", err)
	}
	return groups, nil
}

// FindAll returns every lab group.
func (r *LabGroupRepository) FindAll(ctx context.Context) ([]*lab.LabGroup, error) {
	groups, err := queryAll(ctx, r.q, scanLabGroup, labGroupSelect)
	if err != nil {
		return nil, fmt.Errorf("failed to list lab groups: %w", err)
	}
	return groups, nil
}

// Save inserts or updates the group.
func (r *LabGroupRepository) Save(ctx context.Context, g *lab.LabGroup) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO lab_groups (id, course_id, professor_id, group_letter, capacity, current_enrollment)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			professor_id = EXCLUDED.professor_id,
			group_letter = EXCLUDED.group_letter,
			capacity = EXCLUDED.capacity,
			current_enrollment = EXCLUDED.current_enrollment
	`, g.ID.String(), g.CourseID.String(), g.ProfessorID.String(), g.GroupLetter.String(), g.Capacity, g.CurrentEnrollment)
	if err != nil {
		switch {
		case IsUniqueViolation(err):
			return shared.ErrDuplicateLabGroup.Withf("lab group %s already exists for course %s", g.GroupLetter, g.CourseID)
		case IsCheckViolation(err):
			return shared.ErrInvalidCapacity.Withf("lab group %s: %d/%d violates the capacity bounds",
				g.ID, g.CurrentEnrollment, g.Capacity)
		}
		return fmt.Errorf("failed to save lab group: %w", err)
	}
	return nil
}

// Delete removes the group. Enrollments pointing at it lose their lab.
func (r *LabGroupRepository) Delete(ctx context.Context, id shared.ID) error {
	if err := execDelete(ctx, r.q, "lab_groups", id); err != nil {
		return fmt.Errorf("failed to delete lab group: %w", err)
	}
	return nil
}

func scanLabGroup(row pgx.Row) (*lab.LabGroup, error) {
	var id, courseID, professorID, letter string
	g := &lab.LabGroup{}
	if err := row.Scan(&id, &courseID, &professorID, &letter, &g.Capacity, &g.CurrentEnrollment); err != nil {
		return nil, err
	}
	g.ID = shared.ID(id)
	g.CourseID = shared.ID(courseID)
	g.ProfessorID = shared.ID(professorID)
	g.GroupLetter = shared.GroupLetter(letter)
	return g, nil
}
