package query

import (
	"context"
	"fmt"
	"errors"
	"strings"

	"github.com/epis-academic/academic-records/internal/domain/course"
	"github.com/epis-academic/academic-records/internal/domain/enrollment"
	"github.com/epis-academic/academic-records/internal/domain/grading"
	"github.com/epis-academic/academic-records/internal/domain/shared"
	"github.com/epis-academic/academic-records/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET STUDENT GRADES QUERY
// The grade report of a student: every course, its scores, the configured
// weights, the weighted final average and the group statistics.
// ══════════════════════════════════════════════════════════════════════════════

// GetStudentGradesQuery selects the student and, optionally, a semester.
type GetStudentGradesQuery struct {
	StudentProfileID string

	// Semester filters the report; empty means every semester.
	Semester string
}

// GradeDTO is one recorded score.
type GradeDTO struct {
	Type  string  `json:"type"`
	Score float64 `json:"score"`
}

// WeightDTO is one configured weight.
type WeightDTO struct {
	Type       string  `json:"type"`
	Percentage float64 `json:"percentage"`
}

// GroupStatDTO holds the group average, max and min of one grade type.
type GroupStatDTO struct {
	Type    string  `json:"type"`
	Average float64 `json:"average"`
	Max     float64 `json:"max"`
	Min     float64 `json:"min"`
}

// CourseGradesDTO is one course of the report.
type CourseGradesDTO struct {
	EnrollmentID  string         `json:"enrollment_id"`
	CourseID      string         `json:"course_id"`
	CourseCode    string         `json:"course_code"`
	CourseName    string         `json:"course_name"`
	TheoryGroupID string         `json:"theory_group_id"`
	GroupLetter   string         `json:"group_letter"`
	Semester      string         `json:"semester"`
	ProfessorName string         `json:"professor_name,omitempty"`
	Grades        []GradeDTO     `json:"grades"`
	Weights       []WeightDTO    `json:"weights"`
	WeightsFinal  bool           `json:"weights_final"`
	FinalAverage  *float64       `json:"final_average"`
	Status        string         `json:"status"`
	GroupStats    []GroupStatDTO `json:"group_stats"`
}

// GetStudentGradesResult is the grade report.
type GetStudentGradesResult struct {
	StudentProfileID string            `json:"student_profile_id"`
	Courses          []CourseGradesDTO `json:"courses"`
}

// GetStudentGradesHandler handles GetStudentGradesQuery.
type GetStudentGradesHandler struct {
	enrollments  enrollment.Repository
	theoryGroups course.TheoryGroupRepository
	courses      course.Repository
	users        user.Repository
	grades       grading.GradeRepository
	weights      grading.WeightRepository
}

// NewGetStudentGradesHandler creates a new handler.
func NewGetStudentGradesHandler(
	enrollments enrollment.Repository,
	theoryGroups course.TheoryGroupRepository,
	courses course.Repository,
	users user.Repository,
	grades grading.GradeRepository,
	weights grading.WeightRepository,
) *GetStudentGradesHandler {
	return &GetStudentGradesHandler{
		enrollments:  enrollments,
		theoryGroups: theoryGroups,
		courses:      courses,
		users:        users,
		grades:       grades,
		weights:      weights,
	}
}

// Handle runs the query. A course whose weights are missing or still a
// draft has a nil average and stays IN_PROGRESS.
func (h *GetStudentGradesHandler) Handle(ctx context.Context, q GetStudentGradesQuery) (*GetStudentGradesResult, error) {
	result, err := h.handle(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("get_student_grades: %w", err)
	}
	return result, nil
}

func (h *GetStudentGradesHandler) handle(ctx context.Context, q GetStudentGradesQuery) (*GetStudentGradesResult, error) {
	studentID, err := shared.ParseID(q.StudentProfileID)
	if err != nil {
		return nil, err
	}
	var semester shared.AcademicSemester
	if strings.TrimSpace(q.Semester) != "" {
		if semester, err = shared.NewAcademicSemester(q.Semester); err != nil {
			return nil, err
		}
	}

	enrollments, err := h.enrollments.FindByStudent(ctx, studentID)
	if err != nil {
		return nil, internalErr("GetStudentGrades", err)
	}
	result := &GetStudentGradesResult{StudentProfileID: studentID.String(), Courses: []CourseGradesDTO{}}
	if len(enrollments) == 0 {
		return result, nil
	}

	groupIDs := make([]shared.ID, 0, len(enrollments))
	for _, e := range enrollments {
		groupIDs = append(groupIDs, e.TheoryGroupID)
	}
	groups, err := h.theoryGroups.FindByIDs(ctx, groupIDs)
	if err != nil {
		return nil, internalErr("GetStudentGrades", err)
	}
	groupByID := make(map[shared.ID]*course.TheoryGroup, len(groups))
	courseIDs := make([]shared.ID, 0, len(groups))
	professorIDs := make([]shared.ID, 0, len(groups))
	for _, g := range groups {
		if semester != "" && g.Semester != semester {
			continue
		}
		groupByID[g.ID] = g
		courseIDs = append(courseIDs, g.CourseID)
		professorIDs = append(professorIDs, g.ProfessorID)
	}
	if len(groupByID) == 0 {
		return result, nil
	}

	courses, err := h.courses.FindByIDs(ctx, courseIDs)
	if err != nil {
		return nil, internalErr("GetStudentGrades", err)
	}
	courseByID := make(map[shared.ID]*course.Course, len(courses))
	for _, c := range courses {
		courseByID[c.ID] = c
	}
	professors, err := h.users.FindByIDs(ctx, professorIDs)
	if err != nil {
		return nil, internalErr("GetStudentGrades", err)
	}
	professorName := make(map[shared.ID]string, len(professors))
	for _, p := range professors {
		professorName[p.ID] = p.FullName()
	}

	selected := make([]shared.ID, 0, len(groupByID))
	for id := range groupByID {
		selected = append(selected, id)
	}
	stats, err := h.grades.FindStatsByTheoryGroupIDs(ctx, selected)
	if err != nil {
		return nil, internalErr("GetStudentGrades", err)
	}
	statsByGroup := make(map[shared.ID][]GroupStatDTO)
	for _, s := range stats {
		statsByGroup[s.TheoryGroupID] = append(statsByGroup[s.TheoryGroupID], GroupStatDTO{
			Type:    string(s.Type),
			Average: s.Average,
			Max:     s.Max,
			Min:     s.Min,
		})
	}

	for _, e := range enrollments {
		g, ok := groupByID[e.TheoryGroupID]
		if !ok {
			continue
		}
		dto, err := h.courseGrades(ctx, e, g)
		if err != nil {
			return nil, err
		}
		if c := courseByID[g.CourseID]; c != nil {
			dto.CourseCode = c.Code.String()
			dto.CourseName = c.Name
		}
		dto.ProfessorName = professorName[g.ProfessorID]
		dto.GroupStats = statsByGroup[g.ID]
		if dto.GroupStats == nil {
			dto.GroupStats = []GroupStatDTO{}
		}
		result.Courses = append(result.Courses, dto)
	}
	return result, nil
}

func (h *GetStudentGradesHandler) courseGrades(ctx context.Context, e *enrollment.Enrollment, g *course.TheoryGroup) (CourseGradesDTO, error) {
	dto := CourseGradesDTO{
		EnrollmentID:  e.ID.String(),
		CourseID:      g.CourseID.String(),
		TheoryGroupID: g.ID.String(),
		GroupLetter:   g.GroupLetter.String(),
		Semester:      g.Semester.String(),
		Grades:        []GradeDTO{},
		Weights:       []WeightDTO{},
	}

	grades, err := h.grades.FindByEnrollmentID(ctx, e.ID)
	if err != nil {
		return dto, internalErr("GetStudentGrades", err)
	}
	for _, gr := range grades {
		dto.Grades = append(dto.Grades, GradeDTO{Type: string(gr.Type), Score: gr.Score.Float64()})
	}

	weights, err := h.weights.FindByTheoryGroupID(ctx, g.ID)
	if err != nil {
		return dto, internalErr("GetStudentGrades", err)
	}
	for _, w := range weights {
		dto.Weights = append(dto.Weights, WeightDTO{Type: string(w.Type), Percentage: w.Weight.Float64()})
	}
	dto.WeightsFinal = weights.IsFinal()

	avg, err := grading.ComputeAverage(grades, weights)
	if err != nil && !errors.Is(err, shared.ErrGradeWeightsNotFinal) {
		return dto, err
	}
	dto.FinalAverage = avg.Value
	dto.Status = string(avg.Status)
	return dto, nil
}
