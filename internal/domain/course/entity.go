// Package course models the course catalog and the theory groups that offer
// each course in a semester.
package course

import (
	"strings"
	"unicode/utf8"

	"github.com/epis-academic/academic-records/internal/domain/shared"
)

// minNameLength is the shortest accepted course name.
const minNameLength = 5

// ══════════════════════════════════════════════════════════════════════════════
// COURSE
// ══════════════════════════════════════════════════════════════════════════════

// Course is an entry of the course catalog.
type Course struct {
	ID      shared.ID
	Code    shared.CourseCode
	Name    string
	Credits shared.Credits
	Type    shared.CourseType
}

// NewCourseParams holds the raw input for NewCourse.
type NewCourseParams struct {
	ID      string
	Code    string
	Name    string
	Credits int
	Type    string
}

// NewCourse validates and builds a Course.
func NewCourse(params NewCourseParams) (*Course, error) {
	id, err := idOrNew(params.ID)
	if err != nil {
		return nil, err
	}
	code, err := shared.NewCourseCode(params.Code)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(params.Name)
	if utf8.RuneCountInString(name) < minNameLength {
		return nil, shared.ErrInvalidCourseName.Withf("invalid course name %q", params.Name)
	}
	credits, err := shared.NewCredits(params.Credits)
	if err != nil {
		return nil, err
	}
	courseType, err := shared.ParseCourseType(params.Type)
	if err != nil {
		return nil, err
	}

	return &Course{
		ID:      id,
		Code:    code,
		Name:    name,
		Credits: credits,
		Type:    courseType,
	}, nil
}

// Identity implements shared.Identifiable.
func (c *Course) Identity() shared.ID {
	return c.ID
}

// HasLab reports whether the course has lab sessions.
func (c *Course) HasLab() bool {
	return c.Type == shared.CourseLab || c.Type == shared.CourseTheoryLab
}

// ══════════════════════════════════════════════════════════════════════════════
// THEORY GROUP
// ══════════════════════════════════════════════════════════════════════════════

// TheoryGroup is a section of a course taught by one professor in a semester.
type TheoryGroup struct {
	ID          shared.ID
	CourseID    shared.ID
	ProfessorID shared.ID
	Semester    shared.AcademicSemester
	GroupLetter shared.GroupLetter
}

// NewTheoryGroupParams holds the raw input for NewTheoryGroup.
type NewTheoryGroupParams struct {
	ID          string
	CourseID    string
	ProfessorID string
	Semester    string
	GroupLetter string
}

// NewTheoryGroup validates and builds a TheoryGroup.
func NewTheoryGroup(params NewTheoryGroupParams) (*TheoryGroup, error) {
	id, err := idOrNew(params.ID)
	if err != nil {
		return nil, err
	}
	courseID, err := shared.ParseID(params.CourseID)
	if err != nil {
		return nil, err
	}
	professorID, err := shared.ParseID(params.ProfessorID)
	if err != nil {
		return nil, err
	}
	semester, err := shared.NewAcademicSemester(params.Semester)
	if err != nil {
		return nil, err
	}
	letter, err := shared.NewGroupLetter(params.GroupLetter)
	if err != nil {
		return nil, err
	}

	return &TheoryGroup{
		ID:          id,
		CourseID:    courseID,
		ProfessorID: professorID,
		Semester:    semester,
		GroupLetter: letter,
	}, nil
}

// Identity implements shared.Identifiable.
func (g *TheoryGroup) Identity() shared.ID {
	return g.ID
}

// TaughtBy reports whether the given professor owns the group.
func (g *TheoryGroup) TaughtBy(professorID shared.ID) bool {
	return g.ProfessorID == professorID
}

func idOrNew(raw string) (shared.ID, error) {
	if strings.TrimSpace(raw) == "" {
		return shared.NewID(), nil
	}
	return shared.ParseID(raw)
}
