package command_test

import (
	"testing"
	"time"

	"github.com/epis-academic/academic-records/internal/application/command"
	"github.com/epis-academic/academic-records/internal/domain/shared"
	"github.com/epis-academic/academic-records/internal/domain/syllabus"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (w *world) attendanceHandler() *command.TakeAttendanceHandler {
	return command.NewTakeAttendanceHandler(w.store, w.events, clock)
}

func TestTakeAttendance_CreatesThenUpserts(t *testing.T) {
	w := newWorld(t)
	a := w.enroll(w.theory)
	b := w.enroll(w.theory)
	session := time.Date(2025, time.September, 8, 10, 30, 0, 0, time.UTC)
	handler := w.attendanceHandler()

	first, err := handler.Handle(w.ctx, command.TakeAttendanceCommand{
		TeacherID: w.professorID.String(),
		GroupID:   w.theory.ID.String(),
		ClassType: "THEORY",
		Date:      session,
		Records: []command.AttendanceInput{
			{EnrollmentID: a.ID.String(), Status: "PRESENT"},
			{EnrollmentID: b.ID.String(), Status: "absent"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, command.TakeAttendanceResult{Saved: 2, Created: 2}, *first)

	// a later call for the same day corrects a record in place
	second, err := handler.Handle(w.ctx, command.TakeAttendanceCommand{
		TeacherID: w.professorID.String(),
		GroupID:   w.theory.ID.String(),
		ClassType: "THEORY",
		Date:      session.Add(5 * time.Hour),
		Records:   []command.AttendanceInput{{EnrollmentID: b.ID.String(), Status: "PRESENT"}},
	})
	require.NoError(t, err)
	assert.Equal(t, command.TakeAttendanceResult{Saved: 1, Updated: 1}, *second)

	records, err := w.store.Repositories().Attendance.FindByEnrollmentID(w.ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, shared.Present, records[0].Status)
	assert.Equal(t, time.Date(2025, time.September, 8, 0, 0, 0, 0, time.UTC), records[0].Date)

	assert.Equal(t, []shared.EventType{shared.EventAttendanceTaken, shared.EventAttendanceTaken}, w.events.Types())
}

func TestTakeAttendance_TodayIsAllowed(t *testing.T) {
	w := newWorld(t)
	e := w.enroll(w.theory)

	_, err := w.attendanceHandler().Handle(w.ctx, command.TakeAttendanceCommand{
		TeacherID: w.professorID.String(),
		GroupID:   w.theory.ID.String(),
		ClassType: "THEORY",
		Date:      now.Add(11 * time.Hour),
		Records:   []command.AttendanceInput{{EnrollmentID: e.ID.String(), Status: "PRESENT"}},
	})

	assert.NoError(t, err)
}

func TestTakeAttendance_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		cmd     func(w *world) command.TakeAttendanceCommand
		wantErr error
	}{
		{
			name: "future date",
			cmd: func(w *world) command.TakeAttendanceCommand {
				return command.TakeAttendanceCommand{
					TeacherID: w.professorID.String(),
					GroupID:   w.theory.ID.String(),
					ClassType: "THEORY",
					Date:      now.AddDate(0, 0, 1),
					Records:   []command.AttendanceInput{{EnrollmentID: w.enroll(w.theory).ID.String(), Status: "PRESENT"}},
				}
			},
			wantErr: shared.ErrFutureAttendanceDate,
		},
		{
			name: "unknown status",
			cmd: func(w *world) command.TakeAttendanceCommand {
				return command.TakeAttendanceCommand{
					TeacherID: w.professorID.String(),
					GroupID:   w.theory.ID.String(),
					ClassType: "THEORY",
					Date:      now,
					Records:   []command.AttendanceInput{{EnrollmentID: w.enroll(w.theory).ID.String(), Status: "LATE"}},
				}
			},
			wantErr: shared.ErrInvalidAttendanceStatus,
		},
		{
			name: "student not in the lab",
			cmd: func(w *world) command.TakeAttendanceCommand {
				g := w.newLabGroup(w.course, w.professorID, "A", 10)
				return command.TakeAttendanceCommand{
					TeacherID: w.professorID.String(),
					GroupID:   g.ID.String(),
					ClassType: "LAB",
					Date:      now,
					Records:   []command.AttendanceInput{{EnrollmentID: w.enroll(w.theory).ID.String(), Status: "PRESENT"}},
				}
			},
			wantErr: shared.ErrNotAuthorized,
		},
		{
			name: "lab of another professor",
			cmd: func(w *world) command.TakeAttendanceCommand {
				g := w.newLabGroup(w.course, shared.NewID(), "A", 10)
				e := w.enroll(w.theory)
				require.NoError(w.t, e.AssignLab(g.ID))
				w.store.Seed(e)
				return command.TakeAttendanceCommand{
					TeacherID: w.professorID.String(),
					GroupID:   g.ID.String(),
					ClassType: "LAB",
					Date:      now,
					Records:   []command.AttendanceInput{{EnrollmentID: e.ID.String(), Status: "PRESENT"}},
				}
			},
			wantErr: shared.ErrNotAuthorized,
		},
		{
			name: "unknown enrollment",
			cmd: func(w *world) command.TakeAttendanceCommand {
				return command.TakeAttendanceCommand{
					TeacherID: w.professorID.String(),
					GroupID:   w.theory.ID.String(),
					ClassType: "THEORY",
					Date:      now,
					Records:   []command.AttendanceInput{{EnrollmentID: shared.NewID().String(), Status: "PRESENT"}},
				}
			},
			wantErr: shared.ErrEnrollmentNotFound,
		},
		{
			name: "missing date",
			cmd: func(w *world) command.TakeAttendanceCommand {
				return command.TakeAttendanceCommand{
					TeacherID: w.professorID.String(),
					GroupID:   w.theory.ID.String(),
					ClassType: "THEORY",
					Records:   []command.AttendanceInput{{EnrollmentID: shared.NewID().String(), Status: "PRESENT"}},
				}
			},
			wantErr: shared.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorld(t)

			_, err := w.attendanceHandler().Handle(w.ctx, tt.cmd(w))

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, w.store.Commits)
			assert.Empty(t, w.events.Events())
		})
	}
}

func TestTakeAttendance_LabMembers(t *testing.T) {
	w := newWorld(t)
	g := w.newLabGroup(w.course, w.professorID, "A", 10)
	e := w.enroll(w.theory)
	require.NoError(t, e.AssignLab(g.ID))
	w.store.Seed(e)

	result, err := w.attendanceHandler().Handle(w.ctx, command.TakeAttendanceCommand{
		TeacherID: w.professorID.String(),
		GroupID:   g.ID.String(),
		ClassType: "LAB",
		Date:      now,
		Records:   []command.AttendanceInput{{EnrollmentID: e.ID.String(), Status: "ABSENT"}},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
}

func (w *world) topic(week int, name string) *syllabus.CourseContent {
	w.t.Helper()
	c, err := syllabus.NewCourseContent(syllabus.NewCourseContentParams{
		TheoryGroupID: w.theory.ID.String(),
		Week:          week,
		TopicName:     name,
	})
	require.NoError(w.t, err)
	w.store.Seed(c)
	return c
}

func TestUpdateTopicStatus(t *testing.T) {
	w := newWorld(t)
	topic := w.topic(3, "Binary search trees")
	handler := command.NewUpdateTopicStatusHandler(w.store)

	result, err := handler.Handle(w.ctx, command.UpdateTopicStatusCommand{
		TeacherID: w.professorID.String(),
		TopicID:   topic.ID.String(),
		Status:    "completed",
	})
	require.NoError(t, err)
	assert.Equal(t, shared.TopicCompleted, result.Status)

	stored, err := w.store.Repositories().Contents.FindByID(w.ctx, topic.ID)
	require.NoError(t, err)
	assert.Equal(t, shared.TopicCompleted, stored.Status)

	_, err = handler.Handle(w.ctx, command.UpdateTopicStatusCommand{
		TeacherID: w.professorID.String(),
		TopicID:   topic.ID.String(),
		Status:    "PENDING",
	})
	require.NoError(t, err)
	stored, err = w.store.Repositories().Contents.FindByID(w.ctx, topic.ID)
	require.NoError(t, err)
	assert.Equal(t, shared.TopicPending, stored.Status)
}

func TestUpdateTopicStatus_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		cmd     func(w *world, topicID shared.ID) command.UpdateTopicStatusCommand
		wantErr error
	}{
		{
			name: "other teacher",
			cmd: func(w *world, topicID shared.ID) command.UpdateTopicStatusCommand {
				return command.UpdateTopicStatusCommand{TeacherID: shared.NewID().String(), TopicID: topicID.String(), Status: "COMPLETED"}
			},
			wantErr: shared.ErrNotAuthorized,
		},
		{
			name: "unknown topic",
			cmd: func(w *world, _ shared.ID) command.UpdateTopicStatusCommand {
				return command.UpdateTopicStatusCommand{TeacherID: w.professorID.String(), TopicID: shared.NewID().String(), Status: "COMPLETED"}
			},
			wantErr: shared.ErrTopicNotFound,
		},
		{
			name: "unknown status",
			cmd: func(w *world, topicID shared.ID) command.UpdateTopicStatusCommand {
				return command.UpdateTopicStatusCommand{TeacherID: w.professorID.String(), TopicID: topicID.String(), Status: "SKIPPED"}
			},
			wantErr: shared.ErrInvalidTopicStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorld(t)
			topic := w.topic(1, "Asymptotic analysis")

			_, err := command.NewUpdateTopicStatusHandler(w.store).Handle(w.ctx, tt.cmd(w, topic.ID))

			assert.ErrorIs(t, err, tt.wantErr)
			stored, findErr := w.store.Repositories().Contents.FindByID(w.ctx, topic.ID)
			require.NoError(t, findErr)
			assert.Equal(t, shared.TopicPending, stored.Status)
		})
	}
}

func TestSaveGroupEvidence_CreatesPortfolioOnFirstUse(t *testing.T) {
	w := newWorld(t)
	handler := command.NewSaveGroupEvidenceHandler(w.store)

	first, err := handler.Handle(w.ctx, command.SaveGroupEvidenceCommand{
		TeacherID: w.professorID.String(),
		GroupID:   w.theory.ID.String(),
		ClassType: "THEORY",
		Kind:      "low",
		URL:       "https://files.example.edu/low.pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://files.example.edu/low.pdf", first.Portfolio.LowGradeEvidenceURL)

	second, err := handler.Handle(w.ctx, command.SaveGroupEvidenceCommand{
		TeacherID: w.professorID.String(),
		GroupID:   w.theory.ID.String(),
		ClassType: "THEORY",
		Kind:      "SYLLABUS",
		URL:       " https://files.example.edu/syllabus.pdf ",
	})
	require.NoError(t, err)
	assert.Equal(t, first.Portfolio.ID, second.Portfolio.ID)

	stored, err := w.store.Repositories().Portfolios.FindByGroupID(w.ctx, w.theory.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "https://files.example.edu/low.pdf", stored.LowGradeEvidenceURL)
	assert.Equal(t, "https://files.example.edu/syllabus.pdf", stored.SyllabusURL)
	assert.Empty(t, stored.HighGradeEvidenceURL)
}

func TestSaveGroupEvidence_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		kind    string
		url     string
		teacher func(w *world) shared.ID
		wantErr error
	}{
		{name: "unknown kind", kind: "median", url: "https://files.example.edu/x.pdf", wantErr: shared.ErrInvalidEvidenceKind},
		{name: "relative url", kind: "high", url: "x.pdf", wantErr: shared.ErrValidation},
		{name: "empty url", kind: "high", url: "", wantErr: shared.ErrValidation},
		{
			name:    "other teacher",
			kind:    "high",
			url:     "https://files.example.edu/x.pdf",
			teacher: func(*world) shared.ID { return shared.NewID() },
			wantErr: shared.ErrNotAuthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorld(t)
			teacherID := w.professorID
			if tt.teacher != nil {
				teacherID = tt.teacher(w)
			}

			_, err := command.NewSaveGroupEvidenceHandler(w.store).Handle(w.ctx, command.SaveGroupEvidenceCommand{
				TeacherID: teacherID.String(),
				GroupID:   w.theory.ID.String(),
				ClassType: "THEORY",
				Kind:      tt.kind,
				URL:       tt.url,
			})

			assert.ErrorIs(t, err, tt.wantErr)
			stored, findErr := w.store.Repositories().Portfolios.FindByGroupID(w.ctx, w.theory.ID)
			require.NoError(t, findErr)
			assert.Nil(t, stored)
		})
	}
}
