package query

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/epis-academic/academic-records/internal/domain/course"
	"github.com/epis-academic/academic-records/internal/domain/enrollment"
	"github.com/epis-academic/academic-records/internal/domain/lab"
	"github.com/epis-academic/academic-records/internal/domain/schedule"
	"github.com/epis-academic/academic-records/internal/domain/shared"
	"github.com/epis-academic/academic-records/internal/domain/user"
	"github.com/epis-academic/academic-records/pkg/timeutil"
)

// Kinds of timetable entries.
const (
	EntryTheory      = "THEORY"
	EntryLab         = "LAB"
	EntryReservation = "RESERVATION"
)

// ScheduleEntryDTO is one timetable slot. Reservations carry a date and
// their notes as the title; weekly sessions carry the course and group.
type ScheduleEntryDTO struct {
	Kind          string `json:"kind"`
	Title         string `json:"title"`
	GroupLetter   string `json:"group_letter,omitempty"`
	Day           string `json:"day"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Date          string `json:"date,omitempty"`
	ClassroomID   string `json:"classroom_id"`
	ClassroomName string `json:"classroom_name,omitempty"`
	ProfessorName string `json:"professor_name,omitempty"`
}

const defaultReservationTitle = "Room reservation"

// sortEntries orders a timetable by weekday, start time and title.
func sortEntries(entries []ScheduleEntryDTO) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if da, db := shared.DayOfWeek(a.Day).Ordinal(), shared.DayOfWeek(b.Day).Ordinal(); da != db {
			return da < db
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.Title < b.Title
	})
}

// timetable collects entries, resolving names once per id.
type timetable struct {
	courses    course.Repository
	users      user.Repository
	rooms      *classroomNames
	courseName map[shared.ID]string
	userName   map[shared.ID]string
	entries    []ScheduleEntryDTO
}

func newTimetable(courses course.Repository, users user.Repository, classrooms schedule.ClassroomRepository) *timetable {
	return &timetable{
		courses:    courses,
		users:      users,
		rooms:      newClassroomNames(classrooms),
		courseName: make(map[shared.ID]string),
		userName:   make(map[shared.ID]string),
		entries:    []ScheduleEntryDTO{},
	}
}

func (t *timetable) course(ctx context.Context, id shared.ID) (string, error) {
	if n, ok := t.courseName[id]; ok {
		return n, nil
	}
	c, err := t.courses.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	n := ""
	if c != nil {
		n = c.Name
	}
	t.courseName[id] = n
	return n, nil
}

func (t *timetable) professor(ctx context.Context, id shared.ID) (string, error) {
	if n, ok := t.userName[id]; ok {
		return n, nil
	}
	u, err := t.users.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	n := ""
	if u != nil {
		n = u.FullName()
	}
	t.userName[id] = n
	return n, nil
}

func (t *timetable) addSessions(ctx context.Context, kind string, courseID, professorID shared.ID, letter shared.GroupLetter, sessions []*schedule.ClassSchedule) error {
	if len(sessions) == 0 {
		return nil
	}
	title, err := t.course(ctx, courseID)
	if err != nil {
		return err
	}
	professor, err := t.professor(ctx, professorID)
	if err != nil {
		return err
	}
	for _, s := range sessions {
		room, err := t.rooms.name(ctx, s.ClassroomID)
		if err != nil {
			return err
		}
		t.entries = append(t.entries, ScheduleEntryDTO{
			Kind:          kind,
			Title:         title,
			GroupLetter:   letter.String(),
			Day:           string(s.TimeSlot.Day),
			StartTime:     s.TimeSlot.Start.String(),
			EndTime:       s.TimeSlot.End.String(),
			ClassroomID:   s.ClassroomID.String(),
			ClassroomName: room,
			ProfessorName: professor,
		})
	}
	return nil
}

func (t *timetable) addReservation(ctx context.Context, r *schedule.RoomReservation) error {
	room, err := t.rooms.name(ctx, r.ClassroomID)
	if err != nil {
		return err
	}
	professor, err := t.professor(ctx, r.ProfessorID)
	if err != nil {
		return err
	}
	title := r.Notes
	if title == "" {
		title = defaultReservationTitle
	}
	t.entries = append(t.entries, ScheduleEntryDTO{
		Kind:          EntryReservation,
		Title:         title,
		Day:           string(r.Date.Weekday()),
		StartTime:     r.StartTime.String(),
		EndTime:       r.EndTime.String(),
		Date:          r.Date.String(),
		ClassroomID:   r.ClassroomID.String(),
		ClassroomName: room,
		ProfessorName: professor,
	})
	return nil
}

func (t *timetable) sorted() []ScheduleEntryDTO {
	sortEntries(t.entries)
	return t.entries
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT SCHEDULE
// ══════════════════════════════════════════════════════════════════════════════

// GetStudentScheduleQuery selects a student's weekly timetable.
type GetStudentScheduleQuery struct {
	StudentProfileID string
	Semester         string
}

// GetStudentScheduleHandler lists the theory and lab sessions of every
// enrollment of a student in a semester.
type GetStudentScheduleHandler struct {
	enrollments  enrollment.Repository
	theoryGroups course.TheoryGroupRepository
	labGroups    lab.Repository
	schedules    schedule.ClassScheduleRepository
	courses      course.Repository
	classrooms   schedule.ClassroomRepository
	users        user.Repository
}

// NewGetStudentScheduleHandler creates a new handler.
func NewGetStudentScheduleHandler(
	enrollments enrollment.Repository,
	theoryGroups course.TheoryGroupRepository,
	labGroups lab.Repository,
	schedules schedule.ClassScheduleRepository,
	courses course.Repository,
	classrooms schedule.ClassroomRepository,
	users user.Repository,
) *GetStudentScheduleHandler {
	return &GetStudentScheduleHandler{
		enrollments:  enrollments,
		theoryGroups: theoryGroups,
		labGroups:    labGroups,
		schedules:    schedules,
		courses:      courses,
		classrooms:   classrooms,
		users:        users,
	}
}

// Handle runs the query.
func (h *GetStudentScheduleHandler) Handle(ctx context.Context, q GetStudentScheduleQuery) ([]ScheduleEntryDTO, error) {
	entries, err := h.handle(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("get_student_schedule: %w", err)
	}
	return entries, nil
}

func (h *GetStudentScheduleHandler) handle(ctx context.Context, q GetStudentScheduleQuery) ([]ScheduleEntryDTO, error) {
	studentID, err := shared.ParseID(q.StudentProfileID)
	if err != nil {
		return nil, err
	}
	semester, err := shared.NewAcademicSemester(q.Semester)
	if err != nil {
		return nil, err
	}

	enrollments, err := h.enrollments.FindByStudent(ctx, studentID)
	if err != nil {
		return nil, internalErr("GetStudentSchedule", err)
	}
	tt := newTimetable(h.courses, h.users, h.classrooms)
	for _, e := range enrollments {
		if err := h.addEnrollment(ctx, tt, e, semester); err != nil {
			return nil, internalErr("GetStudentSchedule", err)
		}
	}
	return tt.sorted(), nil
}

func (h *GetStudentScheduleHandler) addEnrollment(ctx context.Context, tt *timetable, e *enrollment.Enrollment, semester shared.AcademicSemester) error {
	theory, err := h.theoryGroups.FindByID(ctx, e.TheoryGroupID)
	if err != nil {
		return err
	}
	if theory == nil || theory.Semester != semester {
		return nil
	}
	sessions, err := h.schedules.FindByTheoryGroup(ctx, theory.ID)
	if err != nil {
		return err
	}
	if err := tt.addSessions(ctx, EntryTheory, theory.CourseID, theory.ProfessorID, theory.GroupLetter, sessions); err != nil {
		return err
	}

	if !e.HasLab() {
		return nil
	}
	group, err := h.labGroups.FindByID(ctx, *e.LabGroupID)
	if err != nil || group == nil {
		return err
	}
	labSessions, err := h.schedules.FindByLabGroup(ctx, group.ID)
	if err != nil {
		return err
	}
	return tt.addSessions(ctx, EntryLab, group.CourseID, group.ProfessorID, group.GroupLetter, inSemester(labSessions, semester))
}

func inSemester(sessions []*schedule.ClassSchedule, semester shared.AcademicSemester) []*schedule.ClassSchedule {
	out := sessions[:0:0]
	for _, s := range sessions {
		if s.Semester == semester {
			out = append(out, s)
		}
	}
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// TEACHER SCHEDULE
// ══════════════════════════════════════════════════════════════════════════════

// GetTeacherScheduleQuery selects a teacher's timetable.
type GetTeacherScheduleQuery struct {
	TeacherID string
	Semester  string

	// Date (YYYY-MM-DD) picks the week whose reservations are listed.
	// Empty means the current week.
	Date string
}

// GetTeacherScheduleHandler lists the weekly sessions a teacher gives plus
// their active reservations in one Monday-to-Sunday week.
type GetTeacherScheduleHandler struct {
	theoryGroups course.TheoryGroupRepository
	labGroups    lab.Repository
	schedules    schedule.ClassScheduleRepository
	reservations schedule.ReservationRepository
	courses      course.Repository
	classrooms   schedule.ClassroomRepository
	users        user.Repository
	now          func() time.Time
}

// NewGetTeacherScheduleHandler creates a new handler. A nil now uses
// timeutil.Now.
func NewGetTeacherScheduleHandler(
	theoryGroups course.TheoryGroupRepository,
	labGroups lab.Repository,
	schedules schedule.ClassScheduleRepository,
	reservations schedule.ReservationRepository,
	courses course.Repository,
	classrooms schedule.ClassroomRepository,
	users user.Repository,
	now func() time.Time,
) *GetTeacherScheduleHandler {
	if now == nil {
		now = timeutil.Now
	}
	return &GetTeacherScheduleHandler{
		theoryGroups: theoryGroups,
		labGroups:    labGroups,
		schedules:    schedules,
		reservations: reservations,
		courses:      courses,
		classrooms:   classrooms,
		users:        users,
		now:          now,
	}
}

// Handle runs the query.
func (h *GetTeacherScheduleHandler) Handle(ctx context.Context, q GetTeacherScheduleQuery) ([]ScheduleEntryDTO, error) {
	entries, err := h.handle(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("get_teacher_schedule: %w", err)
	}
	return entries, nil
}

func (h *GetTeacherScheduleHandler) handle(ctx context.Context, q GetTeacherScheduleQuery) ([]ScheduleEntryDTO, error) {
	teacherID, err := shared.ParseID(q.TeacherID)
	if err != nil {
		return nil, err
	}
	semester, err := shared.NewAcademicSemester(q.Semester)
	if err != nil {
		return nil, err
	}
	reference := h.now()
	if q.Date != "" {
		d, err := shared.NewReservationDate(q.Date)
		if err != nil {
			return nil, err
		}
		reference = d.Time()
	}

	tt := newTimetable(h.courses, h.users, h.classrooms)
	if err := h.addGroups(ctx, tt, teacherID, semester); err != nil {
		return nil, internalErr("GetTeacherSchedule", err)
	}

	reservations, err := h.reservations.FindByProfessorAndSemester(ctx, teacherID, semester)
	if err != nil {
		return nil, internalErr("GetTeacherSchedule", err)
	}
	from, to := timeutil.StartOfWeek(reference), timeutil.EndOfWeek(reference)
	for _, r := range reservations {
		day := r.Date.Time()
		if !r.IsActive() || day.Before(from) || day.After(to) {
			continue
		}
		if err := tt.addReservation(ctx, r); err != nil {
			return nil, internalErr("GetTeacherSchedule", err)
		}
	}
	return tt.sorted(), nil
}

func (h *GetTeacherScheduleHandler) addGroups(ctx context.Context, tt *timetable, teacherID shared.ID, semester shared.AcademicSemester) error {
	theoryGroups, err := h.theoryGroups.FindByProfessorAndSemester(ctx, teacherID, semester)
	if err != nil {
		return err
	}
	for _, g := range theoryGroups {
		sessions, err := h.schedules.FindByTheoryGroup(ctx, g.ID)
		if err != nil {
			return err
		}
		if err := tt.addSessions(ctx, EntryTheory, g.CourseID, g.ProfessorID, g.GroupLetter, sessions); err != nil {
			return err
		}
	}

	labGroups, err := h.labGroups.FindByProfessor(ctx, teacherID)
	if err != nil {
		return err
	}
	for _, g := range labGroups {
		sessions, err := h.schedules.FindByLabGroup(ctx, g.ID)
		if err != nil {
			return err
		}
		if err := tt.addSessions(ctx, EntryLab, g.CourseID, g.ProfessorID, g.GroupLetter, inSemester(sessions, semester)); err != nil {
			return err
		}
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// CLASSROOM SCHEDULE
// ══════════════════════════════════════════════════════════════════════════════

// GetClassroomScheduleQuery selects the occupancy of one classroom.
type GetClassroomScheduleQuery struct {
	ClassroomID string
	Semester    string
}

// GetClassroomScheduleHandler lists the weekly sessions held in a classroom
// and its active reservations in a semester.
type GetClassroomScheduleHandler struct {
	classrooms   schedule.ClassroomRepository
	schedules    schedule.ClassScheduleRepository
	reservations schedule.ReservationRepository
	theoryGroups course.TheoryGroupRepository
	labGroups    lab.Repository
	courses      course.Repository
	users        user.Repository
}

// NewGetClassroomScheduleHandler creates a new handler.
func NewGetClassroomScheduleHandler(
	classrooms schedule.ClassroomRepository,
	schedules schedule.ClassScheduleRepository,
	reservations schedule.ReservationRepository,
	theoryGroups course.TheoryGroupRepository,
	labGroups lab.Repository,
	courses course.Repository,
	users user.Repository,
) *GetClassroomScheduleHandler {
	return &GetClassroomScheduleHandler{
		classrooms:   classrooms,
		schedules:    schedules,
		reservations: reservations,
		theoryGroups: theoryGroups,
		labGroups:    labGroups,
		courses:      courses,
		users:        users,
	}
}

// Handle runs the query.
func (h *GetClassroomScheduleHandler) Handle(ctx context.Context, q GetClassroomScheduleQuery) ([]ScheduleEntryDTO, error) {
	entries, err := h.handle(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("get_classroom_schedule: %w", err)
	}
	return entries, nil
}

func (h *GetClassroomScheduleHandler) handle(ctx context.Context, q GetClassroomScheduleQuery) ([]ScheduleEntryDTO, error) {
	roomID, err := shared.ParseID(q.ClassroomID)
	if err != nil {
		return nil, err
	}
	semester, err := shared.NewAcademicSemester(q.Semester)
	if err != nil {
		return nil, err
	}
	room, err := h.classrooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, internalErr("GetClassroomSchedule", err)
	}
	if room == nil {
		return nil, shared.ErrClassroomNotFound.Withf("classroom %s not found", roomID)
	}

	sessions, err := h.schedules.FindByClassroomAndSemester(ctx, roomID, semester)
	if err != nil {
		return nil, internalErr("GetClassroomSchedule", err)
	}
	tt := newTimetable(h.courses, h.users, h.classrooms)
	for _, s := range sessions {
		if err := h.addSession(ctx, tt, s); err != nil {
			return nil, internalErr("GetClassroomSchedule", err)
		}
	}

	reservations, err := h.reservations.FindByClassroomAndSemester(ctx, roomID, semester)
	if err != nil {
		return nil, internalErr("GetClassroomSchedule", err)
	}
	for _, r := range reservations {
		if !r.IsActive() {
			continue
		}
		if err := tt.addReservation(ctx, r); err != nil {
			return nil, internalErr("GetClassroomSchedule", err)
		}
	}
	return tt.sorted(), nil
}

func (h *GetClassroomScheduleHandler) addSession(ctx context.Context, tt *timetable, s *schedule.ClassSchedule) error {
	one := []*schedule.ClassSchedule{s}
	switch {
	case s.TheoryGroupID != nil:
		g, err := h.theoryGroups.FindByID(ctx, *s.TheoryGroupID)
		if err != nil || g == nil {
			return err
		}
		return tt.addSessions(ctx, EntryTheory, g.CourseID, g.ProfessorID, g.GroupLetter, one)
	case s.LabGroupID != nil:
		g, err := h.labGroups.FindByID(ctx, *s.LabGroupID)
		if err != nil || g == nil {
			return err
		}
		return tt.addSessions(ctx, EntryLab, g.CourseID, g.ProfessorID, g.GroupLetter, one)
	}
	return nil
}
