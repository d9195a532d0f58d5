package postgres

import (
	"context"
	"fmt"

	"github.com/epis-academic/academic-records/internal/domain/course"
	"github.com/epis-academic/academic-records/internal/domain/shared"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// COURSE REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

const courseSelect = `SELECT id, code, name, credits, type FROM courses `

// CourseRepository implements course.Repository for PostgreSQL.
type CourseRepository struct {
	q Querier
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(q Querier) *CourseRepository {
	return &CourseRepository{q: q}
}

// FindByID returns the course or nil.
func (r *CourseRepository) FindByID(ctx context.Context, id shared.ID) (*course.Course, error) {
	c, err := queryOne(ctx, r.q, scanCourse, courseSelect+"WHERE id = $1", id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return c, nil
}

// FindByCode returns the course with the catalog code or nil.
func (r *CourseRepository) FindByCode(ctx context.Context, code shared.CourseCode) (*course.Course, error) {
	c, err := queryOne(ctx, r.q, scanCourse, courseSelect+"WHERE code = $1", code.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get course by code: %w", err)
	}
	return c, nil
}

// FindByIDs returns the courses that exist among ids.
func (r *CourseRepository) FindByIDs(ctx context.Context, ids []shared.ID) ([]*course.Course, error) {
	courses, err := queryIn(ctx, r.q, scanCourse, "courses",
		columns("id", "code", "name", "credits", "type"), "id", ids, orderBy("name"))
	if err != nil {
		return nil, fmt.Errorf("failed to query courses by ids: %w", err)
	}
	return courses, nil
}

// FindAll returns the catalog ordered by name.
func (r *CourseRepository) FindAll(ctx context.Context) ([]*course.Course, error) {
	courses, err := queryAll(ctx, r.q, scanCourse, courseSelect+"ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

// Save inserts or updates the course.
func (r *CourseRepository) Save(ctx context.Context, c *course.Course) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO courses (id, code, name, credits, type)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			code = EXCLUDED.code,
			name = EXCLUDED.name,
			credits = EXCLUDED.credits,
			type = EXCLUDED.type
	`, c.ID.String(), c.Code.String(), c.Name, c.Credits.Int(), string(c.Type))
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrCourseCreation.Withf("course code %s already exists", c.Code)
		}
		return fmt.Errorf("failed to save course: %w", err)
	}
	return nil
}

// Delete removes the course with its groups.
func (r *CourseRepository) Delete(ctx context.Context, id shared.ID) error {
	if err := execDelete(ctx, r.q, "courses", id); err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	return nil
}

func scanCourse(row pgx.Row) (*course.Course, error) {
	var id, code, name, courseType string
	var credits int
	if err := row.Scan(&id, &code, &name, &credits, &courseType); err != nil {
		return nil, err
	}
	return &course.Course{
		ID:      shared.ID(id),
		Code:    shared.CourseCode(code),
		Name:    name,
		Credits: shared.Credits(credits),
		Type:    shared.CourseType(courseType),
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// THEORY GROUP REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

var theoryGroupColumns = columns("id", "course_id", "professor_id", "semester", "group_letter")

const theoryGroupSelect = `SELECT id, course_id, professor_id, semester, group_letter FROM theory_groups `

// TheoryGroupRepository implements course.TheoryGroupRepository.
type TheoryGroupRepository struct {
	q Querier
}

// NewTheoryGroupRepository creates a new TheoryGroupRepository.
func NewTheoryGroupRepository(q Querier) *TheoryGroupRepository {
	return &TheoryGroupRepository{q: q}
}

// FindByID returns the group or nil.
func (r *TheoryGroupRepository) FindByID(ctx context.Context, id shared.ID) (*course.TheoryGroup, error) {
	g, err := queryOne(ctx, r.q, scanTheoryGroup, theoryGroupSelect+"WHERE id = $1", id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get theory group: %w", err)
	}
	return g, nil
}

// FindByIDs returns the groups that exist among ids.
func (r *TheoryGroupRepository) FindByIDs(ctx context.Context, ids []shared.ID) ([]*course.TheoryGroup, error) {
	groups, err := queryIn(ctx, r.q, scanTheoryGroup, "theory_groups", theoryGroupColumns, "id", ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query theory groups by ids: %w", err)
	}
	return groups, nil
}

// FindByCourseAndSemester returns the sections of a course in a semester.
func (r *TheoryGroupRepository) FindByCourseAndSemester(ctx context.Context, courseID shared.ID, semester shared.AcademicSemester) ([]*course.TheoryGroup, error) {
	groups, err := queryAll(ctx, r.q, scanTheoryGroup,
		theoryGroupSelect+"WHERE course_id = $1 AND semester = $2 ORDER BY group_letter",
		courseID.String(), semester.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query theory groups by course: %w", err)
	}
	return groups, nil
}

// FindByProfessorAndSemester returns the sections a professor teaches.
func (r *TheoryGroupRepository) FindByProfessorAndSemester(ctx context.Context, professorID shared.ID, semester shared.AcademicSemester) ([]*course.TheoryGroup, error) {
	groups, err := queryAll(ctx, r.q, scanTheoryGroup,
		theoryGroupSelect+"WHERE professor_id = $1 AND semester = $2",
		professorID.String(), semester.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query theory groups by professor: %w", err)
	}
	return groups, nil
}

// Save inserts or updates the group.
func (r *TheoryGroupRepository) Save(ctx context.Context, g *course.TheoryGroup) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO theory_groups (id, course_id, professor_id, semester, group_letter)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			professor_id = EXCLUDED.professor_id,
			semester = EXCLUDED.semester,
			group_letter = EXCLUDED.group_letter
	`, g.ID.String(), g.CourseID.String(), g.ProfessorID.String(), g.Semester.String(), g.GroupLetter.String())
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrTheoryGroupCreation.Withf("group %s already exists for the course in %s", g.GroupLetter, g.Semester)
		}
		return fmt.Errorf("failed to save theory group: %w", err)
	}
	return nil
}

// Delete removes the group.
func (r *TheoryGroupRepository) Delete(ctx context.Context, id shared.ID) error {
	if err := execDelete(ctx, r.q, "theory_groups", id); err != nil {
		return fmt.Errorf("failed to delete theory group: %w", err)
	}
	return nil
}

func scanTheoryGroup(row pgx.Row) (*course.TheoryGroup, error) {
	var id, courseID, professorID, semester, letter string
	if err := row.Scan(&id, &courseID, &professorID, &semester, &letter); err != nil {
		return nil, err
	}
	return &course.TheoryGroup{
		ID:          shared.ID(id),
		CourseID:    shared.ID(courseID),
		ProfessorID: shared.ID(professorID),
		Semester:    shared.AcademicSemester(semester),
		GroupLetter: shared.GroupLetter(letter),
	}, nil
}
