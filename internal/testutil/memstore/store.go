// Package memstore is an in-memory implementation of every repository port
// and of uow.TxManager, for use in tests.
//
// Transactions run one at a time against a copy of the data. The copy
// replaces the committed data only when the transaction function returns
// nil, so a failed use case leaves no trace.
package memstore

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/epis-academic/academic-records/internal/application/uow"
	"github.com/epis-academic/academic-records/internal/domain/attendance"
	"github.com/epis-academic/academic-records/internal/domain/course"
	"github.com/epis-academic/academic-records/internal/domain/enrollment"
	"github.com/epis-academic/academic-records/internal/domain/grading"
	"github.com/epis-academic/academic-records/internal/domain/lab"
	"github.com/epis-academic/academic-records/internal/domain/schedule"
	"github.com/epis-academic/academic-records/internal/domain/shared"
	"github.com/epis-academic/academic-records/internal/domain/syllabus"
	"github.com/epis-academic/academic-records/internal/domain/user"
)

type data struct {
	courses      map[shared.ID]course.Course
	theoryGroups map[shared.ID]course.TheoryGroup
	labGroups    map[shared.ID]lab.LabGroup
	enrollments  map[shared.ID]enrollment.Enrollment
	grades       map[shared.ID]grading.Grade
	weights      map[shared.ID][]grading.GradeWeight
	schedules    map[shared.ID]schedule.ClassSchedule
	classrooms   map[shared.ID]schedule.Classroom
	reservations map[shared.ID]schedule.RoomReservation
	attendance   map[shared.ID]attendance.Attendance
	contents     map[shared.ID]syllabus.CourseContent
	portfolios   map[shared.ID]syllabus.GroupPortfolio
	users        map[shared.ID]user.User
	students     map[shared.ID]user.StudentProfile
	teachers     map[shared.ID]user.TeacherProfile
}

func newData() *data {
	return &data{
		courses:      make(map[shared.ID]course.Course),
		theoryGroups: make(map[shared.ID]course.TheoryGroup),
		labGroups:    make(map[shared.ID]lab.LabGroup),
		enrollments:  make(map[shared.ID]enrollment.Enrollment),
		grades:       make(map[shared.ID]grading.Grade),
		weights:      make(map[shared.ID][]grading.GradeWeight),
		schedules:    make(map[shared.ID]schedule.ClassSchedule),
		classrooms:   make(map[shared.ID]schedule.Classroom),
		reservations: make(map[shared.ID]schedule.RoomReservation),
		attendance:   make(map[shared.ID]attendance.Attendance),
		contents:     make(map[shared.ID]syllabus.CourseContent),
		portfolios:   make(map[shared.ID]syllabus.GroupPortfolio),
		users:        make(map[shared.ID]user.User),
		students:     make(map[shared.ID]user.StudentProfile),
		teachers:     make(map[shared.ID]user.TeacherProfile),
	}
}

// clone copies every table. Rows are stored by value and weight slices are
// only ever replaced, so a shallow map copy is enough.
func (d *data) clone() *data {
	return &data{
		courses:      maps.Clone(d.courses),
		theoryGroups: maps.Clone(d.theoryGroups),
		labGroups:    maps.Clone(d.labGroups),
		enrollments:  maps.Clone(d.enrollments),
		grades:       maps.Clone(d.grades),
		weights:      maps.Clone(d.weights),
		schedules:    maps.Clone(d.schedules),
		classrooms:   maps.Clone(d.classrooms),
		reservations: maps.Clone(d.reservations),
		attendance:   maps.Clone(d.attendance),
		contents:     maps.Clone(d.contents),
		portfolios:   maps.Clone(d.portfolios),
		users:        maps.Clone(d.users),
		students:     maps.Clone(d.students),
		teachers:     maps.Clone(d.teachers),
	}
}

// Store holds the committed data.
type Store struct {
	txMu sync.Mutex

	mu        sync.RWMutex
	committed *data

	// Commits counts successful transactions.
	Commits int
	// Rollbacks counts failed transactions.
	Rollbacks int
}

// New returns an empty store.
func New() *Store {
	return &Store{committed: newData()}
}

var _ uow.TxManager = (*Store)(nil)

// WithTx runs fn against a private copy of the data and commits the copy
// when fn returns nil.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, repos uow.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	work := s.committed.clone()
	s.mu.RUnlock()

	if err := fn(ctx, repositoriesOver(func() *data { return work })); err != nil {
		s.mu.Lock()
		s.Rollbacks++
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.committed = work
	s.Commits++
	s.mu.Unlock()
	return nil
}

// Repositories returns ports reading and writing the committed data
// directly, outside any transaction. Tests use them for seeding and for
// queries.
func (s *Store) Repositories() uow.Repositories {
	return repositoriesOver(func() *data {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return s.committed
	})
}

func repositoriesOver(get func() *data) uow.Repositories {
	return uow.Repositories{
		Courses:         courseRepo{get},
		TheoryGroups:    theoryGroupRepo{get},
		LabGroups:       labRepo{get},
		Enrollments:     enrollmentRepo{get},
		Grades:          gradeRepo{get},
		GradeWeights:    weightRepo{get},
		Schedules:       scheduleRepo{get},
		Classrooms:      classroomRepo{get},
		Reservations:    reservationRepo{get},
		Attendance:      attendanceRepo{get},
		Contents:        contentRepo{get},
		Portfolios:      portfolioRepo{get},
		Users:           userRepo{get},
		StudentProfiles: studentProfileRepo{get},
		TeacherProfiles: teacherProfileRepo{get},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func find[T any](m map[shared.ID]T, id shared.ID) *T {
	v, ok := m[id]
	if !ok {
		return nil
	}
	return &v
}

// filter returns copies of the rows matching keep, ordered by cmpFn.
func filter[T any](m map[shared.ID]T, keep func(T) bool, cmpFn func(a, b T) int) []*T {
	rows := make([]T, 0, len(m))
	for _, v := range m {
		if keep == nil || keep(v) {
			rows = append(rows, v)
		}
	}
	slices.SortFunc(rows, cmpFn)
	out := make([]*T, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out
}

func byIDs[T any](m map[shared.ID]T, ids []shared.ID, cmpFn func(a, b T) int) []*T {
	wanted := make(map[shared.ID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	rows := make([]T, 0, len(ids))
	for id, v := range m {
		if wanted[id] {
			rows = append(rows, v)
		}
	}
	slices.SortFunc(rows, cmpFn)
	out := make([]*T, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// COURSES
// ══════════════════════════════════════════════════════════════════════════════

type courseRepo struct{ get func() *data }

func cmpCourse(a, b course.Course) int { return cmp.Compare(a.Name, b.Name) }

func (r courseRepo) FindByID(_ context.Context, id shared.ID) (*course.Course, error) {
	return find(r.get().courses, id), nil
}

func (r courseRepo) FindByCode(_ context.Context, code shared.CourseCode) (*course.Course, error) {
	rows := filter(r.get().courses, func(c course.Course) bool { return c.Code == code }, cmpCourse)
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r courseRepo) FindByIDs(_ context.Context, ids []shared.ID) ([]*course.Course, error) {
	return byIDs(r.get().courses, ids, cmpCourse), nil
}

func (r courseRepo) FindAll(_ context.Context) ([]*course.Course, error) {
	return filter(r.get().courses, nil, cmpCourse), nil
}

func (r courseRepo) Save(_ context.Context, c *course.Course) error {
	r.get().courses[c.ID] = *c
	return nil
}

func (r courseRepo) Delete(_ context.Context, id shared.ID) error {
	delete(r.get().courses, id)
	return nil
}

type theoryGroupRepo struct{ get func() *data }

func cmpTheoryGroup(a, b course.TheoryGroup) int {
	return cmp.Or(cmp.Compare(a.GroupLetter, b.GroupLetter), cmp.Compare(a.ID, b.ID))
}

func (r theoryGroupRepo) FindByID(_ context.Context, id shared.ID) (*course.TheoryGroup, error) {
	return find(r.get().theoryGroups, id), nil
}

func (r theoryGroupRepo) FindByIDs(_ context.Context, ids []shared.ID) ([]*course.TheoryGroup, error) {
	return byIDs(r.get().theoryGroups, ids, cmpTheoryGroup), nil
}

func (r theoryGroupRepo) FindByCourseAndSemester(_ context.Context, courseID shared.ID, semester shared.AcademicSemester) ([]*course.TheoryGroup, error) {
	return filter(r.get().theoryGroups, func(g course.TheoryGroup) bool {
		return g.CourseID == courseID && g.Semester == semester
	}, cmpTheoryGroup), nil
}

func (r theoryGroupRepo) FindByProfessorAndSemester(_ context.Context, professorID shared.ID, semester shared.AcademicSemester) ([]*course.TheoryGroup, error) {
	return filter(r.get().theoryGroups, func(g course.TheoryGroup) bool {
		return g.ProfessorID == professorID && g.Semester == semester
	}, cmpTheoryGroup), nil
}

func (r theoryGroupRepo) Save(_ context.Context, g *course.TheoryGroup) error {
	r.get().theoryGroups[g.ID] = *g
	return nil
}

func (r theoryGroupRepo) Delete(_ context.Context, id shared.ID) error {
	delete(r.get().theoryGroups, id)
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// LAB GROUPS AND ENROLLMENTS
// ══════════════════════════════════════════════════════════════════════════════

type labRepo struct{ get func() *data }

func cmpLabGroup(a, b lab.LabGroup) int {
	return cmp.Or(cmp.Compare(a.GroupLetter, b.GroupLetter), cmp.Compare(a.ID, b.ID))
}

func (r labRepo) FindByID(_ context.Context, id shared.ID) (*lab.LabGroup, error) {
	return find(r.get().labGroups, id), nil
}

// FindByIDForUpdate needs no lock: transactions are already serialized.
func (r labRepo) FindByIDForUpdate(ctx context.Context, id shared.ID) (*lab.LabGroup, error) {
	return r.FindByID(ctx, id)
}

func (r labRepo) FindByCourse(_ context.Context, courseID shared.ID) ([]*lab.LabGroup, error) {
	return filter(r.get().labGroups, func(g lab.LabGroup) bool { return g.CourseID == courseID }, cmpLabGroup), nil
}

func (r labRepo) FindByProfessor(_ context.Context, professorID shared.ID) ([]*lab.LabGroup, error) {
	return filter(r.get().labGroups, func(g lab.LabGroup) bool { return g.ProfessorID == professorID }, cmpLabGroup), nil
}

func (r labRepo) FindAll(_ context.Context) ([]*lab.LabGroup, error) {
	return filter(r.get().labGroups, nil, cmpLabGroup), nil
}

func (r labRepo) Save(_ context.Context, g *lab.LabGroup) error {
	r.get().labGroups[g.ID] = *g
	return nil
}

func (r labRepo) Delete(_ context.Context, id shared.ID) error {
	delete(r.get().labGroups, id)
	return nil
}

type enrollmentRepo struct{ get func() *data }

func cmpEnrollment(a, b enrollment.Enrollment) int { return cmp.Compare(a.ID, b.ID) }

func (r enrollmentRepo) FindByID(_ context.Context, id shared.ID) (*enrollment.Enrollment, error) {
	return find(r.get().enrollments, id), nil
}

// FindByIDForUpdate needs no lock: transactions are already serialized.
func (r enrollmentRepo) FindByIDForUpdate(ctx context.Context, id shared.ID) (*enrollment.Enrollment, error) {
	return r.FindByID(ctx, id)
}

func (r enrollmentRepo) FindByIDs(_ context.Context, ids []shared.ID) ([]*enrollment.Enrollment, error) {
	return byIDs(r.get().enrollments, ids, cmpEnrollment), nil
}

func (r enrollmentRepo) FindByStudent(_ context.Context, studentID shared.ID) ([]*enrollment.Enrollment, error) {
	return filter(r.get().enrollments, func(e enrollment.Enrollment) bool { return e.StudentID == studentID }, cmpEnrollment), nil
}

func (r enrollmentRepo) FindByStudentAndTheoryGroup(_ context.Context, studentID, theoryGroupID shared.ID) (*enrollment.Enrollment, error) {
	rows := filter(r.get().enrollments, func(e enrollment.Enrollment) bool {
		return e.StudentID == studentID && e.TheoryGroupID == theoryGroupID
	}, cmpEnrollment)
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r enrollmentRepo) FindByTheoryGroup(_ context.Context, theoryGroupID shared.ID) ([]*enrollment.Enrollment, error) {
	return filter(r.get().enrollments, func(e enrollment.Enrollment) bool { return e.TheoryGroupID == theoryGroupID }, cmpEnrollment), nil
}

func (r enrollmentRepo) FindByLabGroup(_ context.Context, labGroupID shared.ID) ([]*enrollment.Enrollment, error) {
	return filter(r.get().enrollments, func(e enrollment.Enrollment) bool { return e.InLabGroup(labGroupID) }, cmpEnrollment), nil
}

// Save enforces the same constraints as the enrollments table: one
// enrollment per student and theory group, and no direct move between lab
// groups.
func (r enrollmentRepo) Save(_ context.Context, e *enrollment.Enrollment) error {
	d := r.get()
	for id, other := range d.enrollments {
		if id != e.ID && other.StudentID == e.StudentID && other.TheoryGroupID == e.TheoryGroupID {
			return shared.ErrAlreadyEnrolled.Withf("student %s is already enrolled in theory group %s", e.StudentID, e.TheoryGroupID)
		}
	}
	if stored, ok := d.enrollments[e.ID]; ok && stored.HasLab() && e.HasLab() && *stored.LabGroupID != *e.LabGroupID {
		return shared.ErrStudentAlreadyEnrolledInLab.Withf("enrollment %s already has a different lab group", e.ID)
	}
	d.enrollments[e.ID] = *e
	return nil
}

func (r enrollmentRepo) Delete(_ context.Context, id shared.ID) error {
	delete(r.get().enrollments, id)
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// GRADING
// ══════════════════════════════════════════════════════════════════════════════

type gradeRepo struct{ get func() *data }

func cmpGrade(a, b grading.Grade) int {
	return cmp.Or(cmp.Compare(a.Type, b.Type), cmp.Compare(a.ID, b.ID))
}

func (r gradeRepo) FindByID(_ context.Context, id shared.ID) (*grading.Grade, error) {
	return find(r.get().grades, id), nil
}

func (r gradeRepo) FindByEnrollmentID(_ context.Context, enrollmentID shared.ID) ([]*grading.Grade, error) {
	return filter(r.get().grades, func(g grading.Grade) bool { return g.EnrollmentID == enrollmentID }, cmpGrade), nil
}

func (r gradeRepo) FindByEnrollmentAndType(_ context.Context, enrollmentID shared.ID, gradeType shared.GradeType) (*grading.Grade, error) {
	rows := filter(r.get().grades, func(g grading.Grade) bool {
		return g.EnrollmentID == enrollmentID && g.Type == gradeType
	}, cmpGrade)
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r gradeRepo) FindStatsByTheoryGroupIDs(_ context.Context, theoryGroupIDs []shared.ID) ([]grading.GroupStats, error) {
	d := r.get()
	wanted := make(map[shared.ID]bool, len(theoryGroupIDs))
	for _, id := range theoryGroupIDs {
		wanted[id] = true
	}

	type key struct {
		group shared.ID
		typ   shared.GradeType
	}
	type acc struct {
		sum, max, min float64
		n             int
	}
	accs := make(map[key]*acc)
	for _, g := range d.grades {
		e, ok := d.enrollments[g.EnrollmentID]
		if !ok || !wanted[e.TheoryGroupID] {
			continue
		}
		k := key{group: e.TheoryGroupID, typ: g.Type}
		v := g.Score.Float64()
		a, ok := accs[k]
		if !ok {
			a = &acc{max: v, min: v}
			accs[k] = a
		}
		a.sum += v
		a.n++
		a.max = max(a.max, v)
		a.min = min(a.min, v)
	}

	stats := make([]grading.GroupStats, 0, len(accs))
	for k, a := range accs {
		stats = append(stats, grading.GroupStats{
			TheoryGroupID: k.group,
			Type:          k.typ,
			Average:       a.sum / float64(a.n),
			Max:           a.max,
			Min:           a.min,
		})
	}
	slices.SortFunc(stats, func(a, b grading.GroupStats) int {
		return cmp.Or(cmp.Compare(a.TheoryGroupID, b.TheoryGroupID), cmp.Compare(a.Type, b.Type))
	})
	return stats, nil
}

// SaveMany upserts by (enrollment, type), keeping the stored row's ID.
func (r gradeRepo) SaveMany(_ context.Context, grades []*grading.Grade) error {
	d := r.get()
	for _, g := range grades {
		row := *g
		for id, existing := range d.grades {
			if existing.EnrollmentID == g.EnrollmentID && existing.Type == g.Type {
				row.ID = id
				break
			}
		}
		d.grades[row.ID] = row
	}
	return nil
}

func (r gradeRepo) Delete(_ context.Context, id shared.ID) error {
	delete(r.get().grades, id)
	return nil
}

type weightRepo struct{ get func() *data }

func (r weightRepo) FindByTheoryGroupID(_ context.Context, theoryGroupID shared.ID) (grading.WeightSet, error) {
	rows := r.get().weights[theoryGroupID]
	set := make(grading.WeightSet, len(rows))
	for i := range rows {
		w := rows[i]
		set[i] = &w
	}
	return set, nil
}

func (r weightRepo) ReplaceForGroup(_ context.Context, theoryGroupID shared.ID, weights grading.WeightSet) error {
	rows := make([]grading.GradeWeight, len(weights))
	for i, w := range weights {
		rows[i] = *w
	}
	r.get().weights[theoryGroupID] = rows
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULING
// ══════════════════════════════════════════════════════════════════════════════

type classroomRepo struct{ get func() *data }

func cmpClassroom(a, b schedule.Classroom) int { return cmp.Compare(a.Name, b.Name) }

func (r classroomRepo) FindByID(_ context.Context, id shared.ID) (*schedule.Classroom, error) {
	return find(r.get().classrooms, id), nil
}

func (r classroomRepo) FindByType(_ context.Context, classType shared.ClassType) ([]*schedule.Classroom, error) {
	return filter(r.get().classrooms, func(c schedule.Classroom) bool { return c.Type == classType }, cmpClassroom), nil
}

func (r classroomRepo) FindAll(_ context.Context) ([]*schedule.Classroom, error) {
	return filter(r.get().classrooms, nil, cmpClassroom), nil
}

func (r classroomRepo) Save(_ context.Context, c *schedule.Classroom) error {
	r.get().classrooms[c.ID] = *c
	return nil
}

func (r classroomRepo) Delete(_ context.Context, id shared.ID) error {
	delete(r.get().classrooms, id)
	return nil
}

type scheduleRepo struct{ get func() *data }

func cmpSchedule(a, b schedule.ClassSchedule) int {
	return cmp.Or(
		cmp.Compare(a.TimeSlot.Day, b.TimeSlot.Day),
		cmp.Compare(a.TimeSlot.Start, b.TimeSlot.Start),
		cmp.Compare(a.ID, b.ID),
	)
}

func (r scheduleRepo) FindByID(_ context.Context, id shared.ID) (*schedule.ClassSchedule, error) {
	return find(r.get().schedules, id), nil
}

func (r scheduleRepo) FindByTheoryGroup(_ context.Context, theoryGroupID shared.ID) ([]*schedule.ClassSchedule, error) {
	return filter(r.get().schedules, func(s schedule.ClassSchedule) bool {
		return s.TheoryGroupID != nil && *s.TheoryGroupID == theoryGroupID
	}, cmpSchedule), nil
}

func (r scheduleRepo) FindByLabGroup(_ context.Context, labGroupID shared.ID) ([]*schedule.ClassSchedule, error) {
	return filter(r.get().schedules, func(s schedule.ClassSchedule) bool {
		return s.LabGroupID != nil && *s.LabGroupID == labGroupID
	}, cmpSchedule), nil
}

func (r scheduleRepo) FindByClassroomAndSemester(_ context.Context, classroomID shared.ID, semester shared.AcademicSemester) ([]*schedule.ClassSchedule, error) {
	return filter(r.get().schedules, func(s schedule.ClassSchedule) bool {
		return s.ClassroomID == classroomID && s.Semester == semester
	}, cmpSchedule), nil
}

func (r scheduleRepo) Save(_ context.Context, s *schedule.ClassSchedule) error {
	r.get().schedules[s.ID] = *s
	return nil
}

func (r scheduleRepo) Delete(_ context.Context, id shared.ID) error {
	delete(r.get().schedules, id)
	return nil
}

type reservationRepo struct{ get func() *data }

func cmpReservation(a, b schedule.RoomReservation) int {
	return cmp.Or(
		a.Date.Time().Compare(b.Date.Time()),
		cmp.Compare(a.StartTime, b.StartTime),
		cmp.Compare(a.ID, b.ID),
	)
}

// LockBooking is a no-op: memstore transactions already run one at a time.
func (r reservationRepo) LockBooking(context.Context, shared.ID, shared.ID) error {
	return nil
}

func (r reservationRepo) FindByID(_ context.Context, id shared.ID) (*schedule.RoomReservation, error) {
	return find(r.get().reservations, id), nil
}

func (r reservationRepo) FindByProfessorAndSemester(_ context.Context, professorID shared.ID, semester shared.AcademicSemester) ([]*schedule.RoomReservation, error) {
	return filter(r.get().reservations, func(res schedule.RoomReservation) bool {
		return res.ProfessorID == professorID && res.Semester == semester
	}, cmpReservation), nil
}

func (r reservationRepo) FindByClassroomAndSemester(_ context.Context, classroomID shared.ID, semester shared.AcademicSemester) ([]*schedule.RoomReservation, error) {
	return filter(r.get().reservations, func(res schedule.RoomReservation) bool {
		return res.ClassroomID == classroomID && res.Semester == semester
	}, cmpReservation), nil
}

func (r reservationRepo) FindOverlapping(_ context.Context, classroomID shared.ID, semester shared.AcademicSemester, date shared.ReservationDate, start, end shared.TimeOfDay) ([]*schedule.RoomReservation, error) {
	return filter(r.get().reservations, func(res schedule.RoomReservation) bool {
		return res.ClassroomID == classroomID && res.Semester == semester && res.OverlapsWith(date, start, end)
	}, cmpReservation), nil
}

func (r reservationRepo) CountByProfessorAndDateRange(_ context.Context, professorID shared.ID, from, to time.Time) (int, error) {
	rows := filter(r.get().reservations, func(res schedule.RoomReservation) bool {
		d := res.Date.Time()
		return res.ProfessorID == professorID && res.IsActive() && !d.Before(from) && !d.After(to)
	}, cmpReservation)
	return len(rows), nil
}

func (r reservationRepo) FindReservedBefore(_ context.Context, day time.Time) ([]*schedule.RoomReservation, error) {
	return filter(r.get().reservations, func(res schedule.RoomReservation) bool {
		return res.IsActive() && res.Date.Time().Before(day)
	}, cmpReservation), nil
}

func (r reservationRepo) Save(_ context.Context, res *schedule.RoomReservation) error {
	r.get().reservations[res.ID] = *res
	return nil
}

func (r reservationRepo) Delete(_ context.Context, id shared.ID) error {
	delete(r.get().reservations, id)
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ATTENDANCE AND SYLLABUS
// ══════════════════════════════════════════════════════════════════════════════

type attendanceRepo struct{ get func() *data }

func cmpAttendance(a, b attendance.Attendance) int {
	return cmp.Or(a.Date.Compare(b.Date), cmp.Compare(a.ClassType, b.ClassType), cmp.Compare(a.ID, b.ID))
}

func (r attendanceRepo) FindByID(_ context.Context, id shared.ID) (*attendance.Attendance, error) {
	return find(r.get().attendance, id), nil
}

func (r attendanceRepo) FindByEnrollmentID(_ context.Context, enrollmentID shared.ID) ([]*attendance.Attendance, error) {
	return filter(r.get().attendance, func(a attendance.Attendance) bool { return a.EnrollmentID == enrollmentID }, cmpAttendance), nil
}

func (r attendanceRepo) FindByEnrollmentDateAndType(_ context.Context, enrollmentID shared.ID, day time.Time, classType shared.ClassType) (*attendance.Attendance, error) {
	rows := filter(r.get().attendance, func(a attendance.Attendance) bool {
		return a.EnrollmentID == enrollmentID && a.Date.Equal(day) && a.ClassType == classType
	}, cmpAttendance)
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r attendanceRepo) FindManyByEnrollmentsDateAndType(_ context.Context, enrollmentIDs []shared.ID, day time.Time, classType shared.ClassType) ([]*attendance.Attendance, error) {
	wanted := make(map[shared.ID]bool, len(enrollmentIDs))
	for _, id := range enrollmentIDs {
		wanted[id] = true
	}
	return filter(r.get().attendance, func(a attendance.Attendance) bool {
		return wanted[a.EnrollmentID] && a.Date.Equal(day) && a.ClassType == classType
	}, cmpAttendance), nil
}

// SaveMany upserts by (enrollment, class type, date).
func (r attendanceRepo) SaveMany(_ context.Context, records []*attendance.Attendance) error {
	d := r.get()
	for _, a := range records {
		row := *a
		for id, existing := range d.attendance {
			if existing.EnrollmentID == a.EnrollmentID && existing.ClassType == a.ClassType && existing.Date.Equal(a.Date) {
				row.ID = id
				break
			}
		}
		d.attendance[row.ID] = row
	}
	return nil
}

type contentRepo struct{ get func() *data }

func cmpContent(a, b syllabus.CourseContent) int {
	return cmp.Or(cmp.Compare(a.Week, b.Week), cmp.Compare(a.TopicName, b.TopicName))
}

func (r contentRepo) FindByID(_ context.Context, id shared.ID) (*syllabus.CourseContent, error) {
	return find(r.get().contents, id), nil
}

func (r contentRepo) FindByTheoryGroupID(_ context.Context, theoryGroupID shared.ID) ([]*syllabus.CourseContent, error) {
	return filter(r.get().contents, func(c syllabus.CourseContent) bool { return c.TheoryGroupID == theoryGroupID }, cmpContent), nil
}

func (r contentRepo) Save(_ context.Context, c *syllabus.CourseContent) error {
	r.get().contents[c.ID] = *c
	return nil
}

func (r contentRepo) Delete(_ context.Context, id shared.ID) error {
	delete(r.get().contents, id)
	return nil
}

// portfolioRepo keys portfolios by group, one per group.
type portfolioRepo struct{ get func() *data }

func (r portfolioRepo) FindByGroupID(_ context.Context, groupID shared.ID) (*syllabus.GroupPortfolio, error) {
	return find(r.get().portfolios, groupID), nil
}

func (r portfolioRepo) Save(_ context.Context, p *syllabus.GroupPortfolio) error {
	r.get().portfolios[p.GroupID] = *p
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// USERS
// ══════════════════════════════════════════════════════════════════════════════

type userRepo struct{ get func() *data }

func cmpUser(a, b user.User) int {
	return cmp.Or(cmp.Compare(a.Surname, b.Surname), cmp.Compare(a.Name, b.Name))
}

func (r userRepo) FindByID(_ context.Context, id shared.ID) (*user.User, error) {
	return find(r.get().users, id), nil
}

func (r userRepo) FindByEmail(_ context.Context, email shared.Email) (*user.User, error) {
	rows := filter(r.get().users, func(u user.User) bool { return u.Email == email }, cmpUser)
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r userRepo) FindByIDs(_ context.Context, ids []shared.ID) ([]*user.User, error) {
	return byIDs(r.get().users, ids, cmpUser), nil
}

func (r userRepo) FindAll(_ context.Context) ([]*user.User, error) {
	return filter(r.get().users, nil, cmpUser), nil
}

func (r userRepo) Save(_ context.Context, u *user.User) error {
	r.get().users[u.ID] = *u
	return nil
}

func (r userRepo) Delete(_ context.Context, id shared.ID) error {
	delete(r.get().users, id)
	return nil
}

type studentProfileRepo struct{ get func() *data }

func cmpStudent(a, b user.StudentProfile) int { return cmp.Compare(a.StudentCode, b.StudentCode) }

func (r studentProfileRepo) FindByID(_ context.Context, id shared.ID) (*user.StudentProfile, error) {
	return find(r.get().students, id), nil
}

func (r studentProfileRepo) FindByIDs(_ context.Context, ids []shared.ID) ([]*user.StudentProfile, error) {
	return byIDs(r.get().students, ids, cmpStudent), nil
}

func (r studentProfileRepo) FindByUserID(_ context.Context, userID shared.ID) (*user.StudentProfile, error) {
	rows := filter(r.get().students, func(p user.StudentProfile) bool { return p.UserID == userID }, cmpStudent)
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r studentProfileRepo) Save(_ context.Context, p *user.StudentProfile) error {
	r.get().students[p.ID] = *p
	return nil
}

type teacherProfileRepo struct{ get func() *data }

func (r teacherProfileRepo) FindByID(_ context.Context, id shared.ID) (*user.TeacherProfile, error) {
	return find(r.get().teachers, id), nil
}

func (r teacherProfileRepo) FindByUserID(_ context.Context, userID shared.ID) (*user.TeacherProfile, error) {
	rows := filter(r.get().teachers, func(p user.TeacherProfile) bool { return p.UserID == userID },
		func(a, b user.TeacherProfile) int { return cmp.Compare(a.ID, b.ID) })
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r teacherProfileRepo) Save(_ context.Context, p *user.TeacherProfile) error {
	r.get().teachers[p.ID] = *p
	return nil
}
