package command_test

import (
	"errors"
	"testing"

	"github.com/epis-academic/academic-records/internal/application/command"
	"github.com/epis-academic/academic-records/internal/domain/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (w *world) configureWeights(finalize bool, weights ...command.WeightInput) (*command.ConfigureGradeWeightsResult, error) {
	return command.NewConfigureGradeWeightsHandler(w.store).Handle(w.ctx, command.ConfigureGradeWeightsCommand{
		TeacherID:     w.professorID.String(),
		TheoryGroupID: w.theory.ID.String(),
		Weights:       weights,
		Finalize:      finalize,
	})
}

func TestConfigureGradeWeights_Finalized(t *testing.T) {
	w := newWorld(t)

	result, err := w.configureWeights(true,
		command.WeightInput{Type: "PARTIAL_1", Percentage: 30},
		command.WeightInput{Type: "PARTIAL_2", Percentage: 30},
		command.WeightInput{Type: "continuous_1", Percentage: 40},
	)

	require.NoError(t, err)
	assert.True(t, result.Final)
	assert.InDelta(t, 100, result.Sum, 1e-9)

	stored, err := w.store.Repositories().GradeWeights.FindByTheoryGroupID(w.ctx, w.theory.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 3)
	assert.True(t, stored.IsFinal())
}

func TestConfigureGradeWeights_ReplacesPreviousSet(t *testing.T) {
	w := newWorld(t)
	_, err := w.configureWeights(true,
		command.WeightInput{Type: "PARTIAL_1", Percentage: 50},
		command.WeightInput{Type: "PARTIAL_2", Percentage: 50},
	)
	require.NoError(t, err)

	_, err = w.configureWeights(false, command.WeightInput{Type: "PARTIAL_3", Percentage: 20})
	require.NoError(t, err)

	stored, err := w.store.Repositories().GradeWeights.FindByTheoryGroupID(w.ctx, w.theory.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, shared.Partial3, stored[0].Type)
}

func TestConfigureGradeWeights_DraftMayNotSumTo100(t *testing.T) {
	w := newWorld(t)

	result, err := w.configureWeights(false, command.WeightInput{Type: "PARTIAL_1", Percentage: 35})

	require.NoError(t, err)
	assert.False(t, result.Final)
	assert.InDelta(t, 35, result.Sum, 1e-9)
}

func TestConfigureGradeWeights_FinalizeRejectsWrongTotal(t *testing.T) {
	w := newWorld(t)

	_, err := w.configureWeights(true,
		command.WeightInput{Type: "PARTIAL_1", Percentage: 30},
		command.WeightInput{Type: "PARTIAL_2", Percentage: 30},
		command.WeightInput{Type: "PARTIAL_3", Percentage: 30.5},
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInvalidGradeWeightSum)
	var sumErr *shared.WeightSumError
	require.True(t, errors.As(err, &sumErr))
	assert.InDelta(t, 90.5, sumErr.Sum, 1e-9)

	stored, err := w.store.Repositories().GradeWeights.FindByTheoryGroupID(w.ctx, w.theory.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestConfigureGradeWeights_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		cmd     func(w *world) command.ConfigureGradeWeightsCommand
		wantErr error
	}{
		{
			name: "repeated type",
			cmd: func(w *world) command.ConfigureGradeWeightsCommand {
				return command.ConfigureGradeWeightsCommand{
					TeacherID:     w.professorID.String(),
					TheoryGroupID: w.theory.ID.String(),
					Weights: []command.WeightInput{
						{Type: "PARTIAL_1", Percentage: 50},
						{Type: "PARTIAL_1", Percentage: 50},
					},
				}
			},
			wantErr: shared.ErrInvalidGradeWeightType,
		},
		{
			name: "unknown type",
			cmd: func(w *world) command.ConfigureGradeWeightsCommand {
				return command.ConfigureGradeWeightsCommand{
					TeacherID:     w.professorID.String(),
					TheoryGroupID: w.theory.ID.String(),
					Weights:       []command.WeightInput{{Type: "FINAL_EXAM", Percentage: 100}},
				}
			},
			wantErr: shared.ErrInvalidGradeWeightType,
		},
		{
			name: "percentage out of range",
			cmd: func(w *world) command.ConfigureGradeWeightsCommand {
				return command.ConfigureGradeWeightsCommand{
					TeacherID:     w.professorID.String(),
					TheoryGroupID: w.theory.ID.String(),
					Weights:       []command.WeightInput{{Type: "PARTIAL_1", Percentage: 101}},
				}
			},
			wantErr: shared.ErrInvalidPercentage,
		},
		{
			name: "teacher does not own the group",
			cmd: func(w *world) command.ConfigureGradeWeightsCommand {
				return command.ConfigureGradeWeightsCommand{
					TeacherID:     shared.NewID().String(),
					TheoryGroupID: w.theory.ID.String(),
					Weights:       []command.WeightInput{{Type: "PARTIAL_1", Percentage: 100}},
					Finalize:      true,
				}
			},
			wantErr: shared.ErrNotAuthorized,
		},
		{
			name: "unknown group",
			cmd: func(w *world) command.ConfigureGradeWeightsCommand {
				return command.ConfigureGradeWeightsCommand{
					TeacherID:     w.professorID.String(),
					TheoryGroupID: shared.NewID().String(),
					Weights:       []command.WeightInput{{Type: "PARTIAL_1", Percentage: 100}},
				}
			},
			wantErr: shared.ErrTheoryGroupNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorld(t)

			_, err := command.NewConfigureGradeWeightsHandler(w.store).Handle(w.ctx, tt.cmd(w))

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, w.store.Commits)
		})
	}
}

func (w *world) saveGradesHandler() *command.SaveBulkGradesHandler {
	return command.NewSaveBulkGradesHandler(w.store, w.events, clock)
}

func TestSaveBulkGrades_CreatesThenUpdates(t *testing.T) {
	w := newWorld(t)
	a := w.enroll(w.theory)
	b := w.enroll(w.theory)
	handler := w.saveGradesHandler()

	first, err := handler.Handle(w.ctx, command.SaveBulkGradesCommand{
		TeacherID: w.professorID.String(),
		GroupID:   w.theory.ID.String(),
		ClassType: "THEORY",
		Grades: []command.GradeInput{
			{EnrollmentID: a.ID.String(), Type: "PARTIAL_1", Score: 14},
			{EnrollmentID: b.ID.String(), Type: "PARTIAL_1", Score: 9.5},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, command.SaveBulkGradesResult{Saved: 2, Created: 2}, *first)

	second, err := handler.Handle(w.ctx, command.SaveBulkGradesCommand{
		TeacherID: w.professorID.String(),
		GroupID:   w.theory.ID.String(),
		ClassType: "THEORY",
		Grades: []command.GradeInput{
			{EnrollmentID: a.ID.String(), Type: "PARTIAL_1", Score: 16},
			{EnrollmentID: a.ID.String(), Type: "PARTIAL_2", Score: 12},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, command.SaveBulkGradesResult{Saved: 2, Created: 1, Updated: 1}, *second)

	grades, err := w.store.Repositories().Grades.FindByEnrollmentID(w.ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, grades, 2)

	p1, err := w.store.Repositories().Grades.FindByEnrollmentAndType(w.ctx, a.ID, shared.Partial1)
	require.NoError(t, err)
	assert.InDelta(t, 16, p1.Score.Float64(), 1e-9)

	assert.Equal(t, []shared.EventType{shared.EventGradesRecorded, shared.EventGradesRecorded}, w.events.Types())
}

func TestSaveBulkGrades_LastScoreWins(t *testing.T) {
	w := newWorld(t)
	e := w.enroll(w.theory)

	result, err := w.saveGradesHandler().Handle(w.ctx, command.SaveBulkGradesCommand{
		TeacherID: w.professorID.String(),
		GroupID:   w.theory.ID.String(),
		ClassType: "THEORY",
		Grades: []command.GradeInput{
			{EnrollmentID: e.ID.String(), Type: "PARTIAL_1", Score: 8},
			{EnrollmentID: e.ID.String(), Type: "PARTIAL_1", Score: 18},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Saved)
	g, err := w.store.Repositories().Grades.FindByEnrollmentAndType(w.ctx, e.ID, shared.Partial1)
	require.NoError(t, err)
	assert.InDelta(t, 18, g.Score.Float64(), 1e-9)
}

func TestSaveBulkGrades_LabGroupMembers(t *testing.T) {
	w := newWorld(t)
	g := w.newLabGroup(w.course, w.professorID, "A", 10)
	member := w.enroll(w.theory)
	require.NoError(t, member.AssignLab(g.ID))
	w.store.Seed(member)

	_, err := w.saveGradesHandler().Handle(w.ctx, command.SaveBulkGradesCommand{
		TeacherID: w.professorID.String(),
		GroupID:   g.ID.String(),
		ClassType: "LAB",
		Grades:    []command.GradeInput{{EnrollmentID: member.ID.String(), Type: "CONTINUOUS_1", Score: 20}},
	})

	assert.NoError(t, err)
}

func TestSaveBulkGrades_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		grades  func(w *world) []command.GradeInput
		teacher func(w *world) shared.ID
		wantErr error
	}{
		{
			name: "score above 20",
			grades: func(w *world) []command.GradeInput {
				return []command.GradeInput{{EnrollmentID: w.enroll(w.theory).ID.String(), Type: "PARTIAL_1", Score: 21}}
			},
			wantErr: shared.ErrInvalidScore,
		},
		{
			name: "negative score",
			grades: func(w *world) []command.GradeInput {
				return []command.GradeInput{{EnrollmentID: w.enroll(w.theory).ID.String(), Type: "PARTIAL_1", Score: -1}}
			},
			wantErr: shared.ErrInvalidScore,
		},
		{
			name: "unknown grade type",
			grades: func(w *world) []command.GradeInput {
				return []command.GradeInput{{EnrollmentID: w.enroll(w.theory).ID.String(), Type: "PARTIAL_4", Score: 10}}
			},
			wantErr: shared.ErrInvalidGradeType,
		},
		{
			name: "enrollment outside the group",
			grades: func(w *world) []command.GradeInput {
				other := w.newTheoryGroup(w.course, w.professorID, "B")
				return []command.GradeInput{
					{EnrollmentID: w.enroll(w.theory).ID.String(), Type: "PARTIAL_1", Score: 15},
					{EnrollmentID: w.enroll(other).ID.String(), Type: "PARTIAL_1", Score: 15},
				}
			},
			wantErr: shared.ErrNotAuthorized,
		},
		{
			name: "teacher does not own the group",
			grades: func(w *world) []command.GradeInput {
				return []command.GradeInput{{EnrollmentID: w.enroll(w.theory).ID.String(), Type: "PARTIAL_1", Score: 15}}
			},
			teacher: func(*world) shared.ID { return shared.NewID() },
			wantErr: shared.ErrNotAuthorized,
		},
		{
			name:    "no grades",
			grades:  func(*world) []command.GradeInput { return nil },
			wantErr: shared.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorld(t)
			teacherID := w.professorID
			if tt.teacher != nil {
				teacherID = tt.teacher(w)
			}

			_, err := w.saveGradesHandler().Handle(w.ctx, command.SaveBulkGradesCommand{
				TeacherID: teacherID.String(),
				GroupID:   w.theory.ID.String(),
				ClassType: "THEORY",
				Grades:    tt.grades(w),
			})

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, w.store.Commits)
			assert.Empty(t, w.events.Events())
		})
	}
}
