package query_test

import (
	"testing"

	"github.com/epis-academic/academic-records/internal/application/query"
	"github.com/epis-academic/academic-records/internal/domain/authorization"
	"github.com/epis-academic/academic-records/internal/domain/shared"
	"github.com/epis-academic/academic-records/internal/domain/syllabus"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) studentGradesHandler() *query.GetStudentGradesHandler {
	r := f.store.Repositories()
	return query.NewGetStudentGradesHandler(r.Enrollments, r.TheoryGroups, r.Courses, r.Users, r.Grades, r.GradeWeights)
}

func (f *fixture) dashboardHandler() *query.GetAccreditationDashboardHandler {
	r := f.store.Repositories()
	return query.NewGetAccreditationDashboardHandler(
		authorization.NewService(r.TheoryGroups, r.LabGroups),
		r.Enrollments, r.Grades, r.GradeWeights, r.Portfolios,
	)
}

// gradedGroup is a 2025-II theory group weighted 40/60 with three students:
// approved (10.8), incomplete (3.2 so far) and failed (10.0).
type gradedGroup struct {
	*fixture
	professorID shared.ID
	groupID     shared.ID
	approved    shared.ID
	incomplete  shared.ID
	failed      shared.ID
}

func newGradedGroup(t *testing.T) gradedGroup {
	f := newFixture(t)
	professor := f.user("Maria", "Torres", "PROFESSOR")
	c := f.course("11701101", "Algorithms and Data Structures")
	g := f.theoryGroup(c, professor.ID, "2025-II")
	f.weights(g, "PARTIAL_1", 40.0, "PARTIAL_2", 60.0)

	gg := gradedGroup{fixture: f, professorID: professor.ID, groupID: g.ID}

	gg.approved = shared.NewID()
	a := f.enroll(gg.approved, g, nil)
	f.grade(a, "PARTIAL_1", 12)
	f.grade(a, "PARTIAL_2", 10)

	gg.incomplete = shared.NewID()
	b := f.enroll(gg.incomplete, g, nil)
	f.grade(b, "PARTIAL_1", 8)

	gg.failed = shared.NewID()
	c2 := f.enroll(gg.failed, g, nil)
	f.grade(c2, "PARTIAL_1", 10)
	f.grade(c2, "PARTIAL_2", 10)
	return gg
}

func TestGetStudentGrades_FinalAverageAndStatus(t *testing.T) {
	gg := newGradedGroup(t)

	tests := []struct {
		name       string
		studentID  shared.ID
		wantAvg    float64
		wantStatus string
	}{
		{name: "approved", studentID: gg.approved, wantAvg: 10.8, wantStatus: "APPROVED"},
		{name: "missing grade", studentID: gg.incomplete, wantAvg: 3.2, wantStatus: "IN_PROGRESS"},
		{name: "failed", studentID: gg.failed, wantAvg: 10, wantStatus: "FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := gg.studentGradesHandler().Handle(gg.ctx, query.GetStudentGradesQuery{StudentProfileID: tt.studentID.String()})
			require.NoError(t, err)
			require.Len(t, result.Courses, 1)

			c := result.Courses[0]
			require.NotNil(t, c.FinalAverage)
			assert.InDelta(t, tt.wantAvg, *c.FinalAverage, 1e-9)
			assert.Equal(t, tt.wantStatus, c.Status)
			assert.True(t, c.WeightsFinal)
			assert.Equal(t, "Algorithms and Data Structures", c.CourseName)
			assert.Equal(t, "11701101", c.CourseCode)
			assert.Equal(t, "Maria Torres", c.ProfessorName)
			assert.Len(t, c.Weights, 2)
		})
	}
}

func TestGetStudentGrades_GroupStatistics(t *testing.T) {
	gg := newGradedGroup(t)

	result, err := gg.studentGradesHandler().Handle(gg.ctx, query.GetStudentGradesQuery{StudentProfileID: gg.approved.String()})
	require.NoError(t, err)
	require.Len(t, result.Courses, 1)

	stats := map[string]query.GroupStatDTO{}
	for _, s := range result.Courses[0].GroupStats {
		stats[s.Type] = s
	}
	require.Len(t, stats, 2)
	assert.InDelta(t, 10, stats["PARTIAL_1"].Average, 1e-9)
	assert.InDelta(t, 12, stats["PARTIAL_1"].Max, 1e-9)
	assert.InDelta(t, 8, stats["PARTIAL_1"].Min, 1e-9)
	assert.InDelta(t, 10, stats["PARTIAL_2"].Average, 1e-9)
}

func TestGetStudentGrades_DraftWeightsAndSemesterFilter(t *testing.T) {
	gg := newGradedGroup(t)
	older := gg.course("11701102", "Discrete Mathematics")
	draftGroup := gg.theoryGroup(older, gg.professorID, "2025-I")
	gg.weights(draftGroup, "PARTIAL_1", 50.0)
	e := gg.enroll(gg.approved, draftGroup, nil)
	gg.grade(e, "PARTIAL_1", 19)

	all, err := gg.studentGradesHandler().Handle(gg.ctx, query.GetStudentGradesQuery{StudentProfileID: gg.approved.String()})
	require.NoError(t, err)
	require.Len(t, all.Courses, 2)

	var draft *query.CourseGradesDTO
	for i := range all.Courses {
		if all.Courses[i].Semester == "2025-I" {
			draft = &all.Courses[i]
		}
	}
	require.NotNil(t, draft)
	assert.Nil(t, draft.FinalAverage)
	assert.Equal(t, "IN_PROGRESS", draft.Status)
	assert.False(t, draft.WeightsFinal)
	assert.Len(t, draft.Grades, 1)

	filtered, err := gg.studentGradesHandler().Handle(gg.ctx, query.GetStudentGradesQuery{
		StudentProfileID: gg.approved.String(),
		Semester:         "2025-II",
	})
	require.NoError(t, err)
	require.Len(t, filtered.Courses, 1)
	assert.Equal(t, "2025-II", filtered.Courses[0].Semester)
}

func TestGetStudentGrades_NoEnrollments(t *testing.T) {
	f := newFixture(t)

	result, err := f.studentGradesHandler().Handle(f.ctx, query.GetStudentGradesQuery{StudentProfileID: shared.NewID().String()})

	require.NoError(t, err)
	assert.NotNil(t, result.Courses)
	assert.Empty(t, result.Courses)
}

func TestGetStudentGrades_InvalidSemester(t *testing.T) {
	f := newFixture(t)

	_, err := f.studentGradesHandler().Handle(f.ctx, query.GetStudentGradesQuery{
		StudentProfileID: shared.NewID().String(),
		Semester:         "2025-III",
	})

	assert.ErrorIs(t, err, shared.ErrInvalidSemester)
	assert.ErrorContains(t, err, "get_student_grades: ")
}

func TestGetAccreditationDashboard(t *testing.T) {
	gg := newGradedGroup(t)
	portfolio := syllabus.NewGroupPortfolio(gg.groupID)
	require.NoError(t, portfolio.UpdateEvidence(shared.EvidenceSyllabus, "https://files.example.edu/syllabus.pdf"))
	gg.store.Seed(portfolio)

	result, err := gg.dashboardHandler().Handle(gg.ctx, query.GetAccreditationDashboardQuery{
		TeacherID:     gg.professorID.String(),
		TheoryGroupID: gg.groupID.String(),
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Enrolled)
	assert.True(t, result.WeightsFinal)

	require.Len(t, result.ByType, len(shared.AllGradeTypes))
	assert.Equal(t, "PARTIAL_1", result.ByType[0].Type)
	assert.Equal(t, 3, result.ByType[0].Graded)
	assert.Equal(t, query.DistributionDTO{AtRisk: 2, Regular: 1}, result.ByType[0].Distribution)
	assert.Equal(t, 2, result.ByType[1].Graded)
	assert.Equal(t, query.DistributionDTO{AtRisk: 2}, result.ByType[1].Distribution)
	assert.Zero(t, result.ByType[5].Graded)

	final := result.Final
	assert.Equal(t, 3, final.Students)
	require.NotNil(t, final.Average)
	assert.InDelta(t, 8, *final.Average, 1e-9)
	assert.InDelta(t, 10.8, *final.Max, 1e-9)
	assert.InDelta(t, 3.2, *final.Min, 1e-9)
	assert.Equal(t, query.DistributionDTO{AtRisk: 2, Regular: 1}, final.Distribution)

	assert.Equal(t, "https://files.example.edu/syllabus.pdf", result.Evidence.SyllabusURL)
	assert.Empty(t, result.Evidence.HighGradeEvidenceURL)
}

func TestGetAccreditationDashboard_DraftWeightsHaveNoFinals(t *testing.T) {
	f := newFixture(t)
	professorID := shared.NewID()
	g := f.theoryGroup(f.course("11701101", "Algorithms and Data Structures"), professorID, "2025-II")
	f.weights(g, "PARTIAL_1", 30.0)
	f.grade(f.enroll(shared.NewID(), g, nil), "PARTIAL_1", 17)

	result, err := f.dashboardHandler().Handle(f.ctx, query.GetAccreditationDashboardQuery{
		TeacherID:     professorID.String(),
		TheoryGroupID: g.ID.String(),
	})

	require.NoError(t, err)
	assert.False(t, result.WeightsFinal)
	assert.Zero(t, result.Final.Students)
	assert.Nil(t, result.Final.Average)
	assert.Equal(t, query.DistributionDTO{Excellent: 1}, result.ByType[0].Distribution)
	assert.Equal(t, query.EvidenceDTO{}, result.Evidence)
}

func TestGetAccreditationDashboard_OtherTeacher(t *testing.T) {
	gg := newGradedGroup(t)

	_, err := gg.dashboardHandler().Handle(gg.ctx, query.GetAccreditationDashboardQuery{
		TeacherID:     shared.NewID().String(),
		TheoryGroupID: gg.groupID.String(),
	})

	assert.ErrorIs(t, err, shared.ErrNotAuthorized)
	assert.True(t, shared.IsForbidden(err))
	assert.ErrorContains(t, err, "get_accreditation_dashboard: ")
}
