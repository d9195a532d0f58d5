package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/epis-academic/academic-records/internal/domain/schedule"
	"github.com/epis-academic/academic-records/internal/domain/shared"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// CLASSROOM REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

const classroomSelect = `SELECT id, name, capacity, type FROM classrooms `

// ClassroomRepository implements schedule.ClassroomRepository.
type ClassroomRepository struct {
	q Querier
}

// NewClassroomRepository creates a new ClassroomRepository.
func NewClassroomRepository(q Querier) *ClassroomRepository {
	return &ClassroomRepository{q: q}
}

// FindByID returns the classroom or nil.
func (r *ClassroomRepository) FindByID(ctx context.Context, id shared.ID) (*schedule.Classroom, error) {
	c, err := queryOne(ctx, r.q, scanClassroom, classroomSelect+"WHERE id = $1", id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get classroom: %w", err)
	}
	return c, nil
}

// FindByType returns the theory rooms or the lab rooms.
func (r *ClassroomRepository) FindByType(ctx context.Context, classType shared.ClassType) ([]*schedule.Classroom, error) {
	rooms, err := queryAll(ctx, r.q, scanClassroom, classroomSelect+"WHERE type = $1 ORDER BY name", string(classType))
	if err != nil {
		return nil, fmt.Errorf("failed to query classrooms by type: %w", err)
	}
	return rooms, nil
}

// FindAll returns every classroom ordered by name.
func (r *ClassroomRepository) FindAll(ctx context.Context) ([]*schedule.Classroom, error) {
	rooms, err := queryAll(ctx, r.q, scanClassroom, classroomSelect+"ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list classrooms: %w", err)
	}
	return rooms, nil
}

// Save inserts or updates the classroom.
func (r *ClassroomRepository) Save(ctx context.Context, c *schedule.Classroom) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO classrooms (id, name, capacity, type)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			capacity = EXCLUDED.capacity,
			type = EXCLUDED.type
	`, c.ID.String(), c.Name, c.Capacity, string(c.Type))
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrClassroomCreation.Withf("classroom %q already exists", c.Name)
		}
		return fmt.Errorf("failed to save classroom: %w", err)
	}
	return nil
}

// Delete removes the classroom.
func (r *ClassroomRepository) Delete(ctx context.Context, id shared.ID) error {
	if err := execDelete(ctx, r.q, "classrooms", id); err != nil {
		return fmt.Errorf("failed to delete classroom: %w", err)
	}
	return nil
}

func scanClassroom(row pgx.Row) (*schedule.Classroom, error) {
	var id, classType string
	c := &schedule.Classroom{}
	if err := row.Scan(&id, &c.Name, &c.Capacity, &classType); err != nil {
		return nil, err
	}
	c.ID = shared.ID(id)
	c.Type = shared.ClassType(classType)
	return c, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// CLASS SCHEDULE REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

const classScheduleSelect = `
	SELECT id, classroom_id, day, start_minutes, end_minutes, semester, theory_group_id, lab_group_id
	FROM class_schedules
`

// ClassScheduleRepository implements schedule.ClassScheduleRepository.
type ClassScheduleRepository struct {
	q Querier
}

// NewClassScheduleRepository creates a new ClassScheduleRepository.
func NewClassScheduleRepository(q Querier) *ClassScheduleRepository {
	return &ClassScheduleRepository{q: q}
}

// FindByID returns the slot or nil.
func (r *ClassScheduleRepository) FindByID(ctx context.Context, id shared.ID) (*schedule.ClassSchedule, error) {
	s, err := queryOne(ctx, r.q, scanClassSchedule, classScheduleSelect+"WHERE id = $1", id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get class schedule: %w", err)
	}
	return s, nil
}

// FindByTheoryGroup returns the weekly slots of a theory group.
func (r *ClassScheduleRepository) FindByTheoryGroup(ctx context.Context, theoryGroupID shared.ID) ([]*schedule.ClassSchedule, error) {
	return r.list(ctx, "WHERE theory_group_id = $1", theoryGroupID.String())
}

// FindByLabGroup returns the weekly slots of a lab group.
func (r *ClassScheduleRepository) FindByLabGroup(ctx context.Context, labGroupID shared.ID) ([]*schedule.ClassSchedule, error) {
	return r.list(ctx, "WHERE lab_group_id = $1", labGroupID.String())
}

// FindByClassroomAndSemester returns the slots booked in a classroom.
func (r *ClassScheduleRepository) FindByClassroomAndSemester(ctx context.Context, classroomID shared.ID, semester shared.AcademicSemester) ([]*schedule.ClassSchedule, error) {
	return r.list(ctx, "WHERE classroom_id = $1 AND semester = $2", classroomID.String(), semester.String())
}

// Save inserts or updates the slot.
func (r *ClassScheduleRepository) Save(ctx context.Context, s *schedule.ClassSchedule) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO class_schedules (id, classroom_id, day, start_minutes, end_minutes, semester, theory_group_id, lab_group_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			classroom_id = EXCLUDED.classroom_id,
			day = EXCLUDED.day,
			start_minutes = EXCLUDED.start_minutes,
			end_minutes = EXCLUDED.end_minutes,
			semester = EXCLUDED.semester
	`,
		s.ID.String(),
		s.ClassroomID.String(),
		string(s.TimeSlot.Day),
		s.TimeSlot.Start.Minutes(),
		s.TimeSlot.End.Minutes(),
		s.Semester.String(),
		nullableID(s.TheoryGroupID),
		nullableID(s.LabGroupID),
	)
	if err != nil {
		if IsCheckViolation(err) {
			return shared.ErrScheduleAssignment.Wrap(err)
		}
		return fmt.Errorf("failed to save class schedule: %w", err)
	}
	return nil
}

// Delete removes the slot.
func (r *ClassScheduleRepository) Delete(ctx context.Context, id shared.ID) error {
	if err := execDelete(ctx, r.q, "class_schedules", id); err != nil {
		return fmt.Errorf("failed to delete class schedule: %w", err)
	}
	return nil
}

func (r *ClassScheduleRepository) list(ctx context.Context, where string, args ...interface{}) ([]*schedule.ClassSchedule, error) {
	slots, err := queryAll(ctx, r.q, scanClassSchedule, classScheduleSelect+where+" ORDER BY day, start_minutes", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query class schedules: %w", err)
	}
	return slots, nil
}

func scanClassSchedule(row pgx.Row) (*schedule.ClassSchedule, error) {
	var id, classroomID, day, semester string
	var start, end int
	var theoryGroupID, labGroupID *string
	if err := row.Scan(&id, &classroomID, &day, &start, &end, &semester, &theoryGroupID, &labGroupID); err != nil {
		return nil, err
	}
	return &schedule.ClassSchedule{
		ID:          shared.ID(id),
		ClassroomID: shared.ID(classroomID),
		TimeSlot: shared.TimeSlot{
			Day:   shared.DayOfWeek(day),
			Start: shared.TimeOfDay(start),
			End:   shared.TimeOfDay(end),
		},
		Semester:      shared.AcademicSemester(semester),
		TheoryGroupID: idPtr(theoryGroupID),
		LabGroupID:    idPtr(labGroupID),
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ROOM RESERVATION REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

const reservationSelect = `
	SELECT id, classroom_id, professor_id, semester, date, start_minutes, end_minutes, status, notes
	FROM room_reservations
`

// ReservationRepository implements schedule.ReservationRepository.
type ReservationRepository struct {
	q Querier
}

// NewReservationRepository creates a new ReservationRepository.
func NewReservationRepository(q Querier) *ReservationRepository {
	return &ReservationRepository{q: q}
}

// FindByID returns the reservation or nil.
func (r *ReservationRepository) FindByID(ctx context.Context, id shared.ID) (*schedule.RoomReservation, error) {
	res, err := queryOne(ctx, r.q, scanReservation, reservationSelect+"WHERE id = $1", id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return res, nil
}

// FindByProfessorAndSemester returns the reservations of a professor in
// any status.
func (r *ReservationRepository) FindByProfessorAndSemester(ctx context.Context, professorID shared.ID, semester shared.AcademicSemester) ([]*schedule.RoomReservation, error) {
	return r.list(ctx, "WHERE professor_id = $1 AND semester = $2", professorID.String(), semester.String())
}

// FindByClassroomAndSemester returns the reservations of a classroom in
// any status.
func (r *ReservationRepository) FindByClassroomAndSemester(ctx context.Context, classroomID shared.ID, semester shared.AcademicSemester) ([]*schedule.RoomReservation, error) {
	return r.list(ctx, "WHERE classroom_id = $1 AND semester = $2", classroomID.String(), semester.String())
}

// FindOverlapping returns the RESERVED bookings of the classroom on date
// whose range intersects [start, end).
func (r *ReservationRepository) FindOverlapping(ctx context.Context, classroomID shared.ID, semester shared.AcademicSemester, date shared.ReservationDate, start, end shared.TimeOfDay) ([]*schedule.RoomReservation, error) {
	return r.list(ctx, `
		WHERE classroom_id = $1
		  AND semester = $2
		  AND date = $3
		  AND status = 'RESERVED'
		  AND start_minutes < $5
		  AND $4 < end_minutes`,
		classroomID.String(), semester.String(), date.Time(), start.Minutes(), end.Minutes())
}

// Advisory lock namespaces. Every booking takes its room lock before its
// professor lock, so two bookings never wait on each other in a cycle.
const (
	lockSpaceRoom      = 1
	lockSpaceProfessor = 2
)

// LockBooking takes transaction-scoped advisory locks on the classroom and
// the professor. Outside a transaction the locks are released at once.
func (r *ReservationRepository) LockBooking(ctx context.Context, classroomID, professorID shared.ID) error {
	for _, key := range []struct {
		space int
		id    shared.ID
	}{{lockSpaceRoom, classroomID}, {lockSpaceProfessor, professorID}} {
		if _, err := r.q.Exec(ctx, "SELECT pg_advisory_xact_lock($1, hashtext($2))", key.space, key.id.String()); err != nil {
			return fmt.Errorf("failed to lock booking: %w", err)
		}
	}
	return nil
}

// CountByProfessorAndDateRange counts RESERVED bookings dated in [from, to].
func (r *ReservationRepository) CountByProfessorAndDateRange(ctx context.Context, professorID shared.ID, from, to time.Time) (int, error) {
	var count int
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM room_reservations
		WHERE professor_id = $1 AND status = 'RESERVED' AND date BETWEEN $2 AND $3
	`, professorID.String(), shared.StartOfUTCDay(from), shared.StartOfUTCDay(to)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count reservations: %w", err)
	}
	return count, nil
}

// FindReservedBefore returns the RESERVED bookings dated before day.
func (r *ReservationRepository) FindReservedBefore(ctx context.Context, day time.Time) ([]*schedule.RoomReservation, error) {
	return r.list(ctx, "WHERE status = 'RESERVED' AND date < $1", shared.StartOfUTCDay(day))
}

// Save inserts or updates the reservation.
func (r *ReservationRepository) Save(ctx context.Context, res *schedule.RoomReservation) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO room_reservations (id, classroom_id, professor_id, semester, date, start_minutes, end_minutes, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			notes = EXCLUDED.notes
	`,
		res.ID.String(),
		res.ClassroomID.String(),
		res.ProfessorID.String(),
		res.Semester.String(),
		res.Date.Time(),
		res.StartTime.Minutes(),
		res.EndTime.Minutes(),
		string(res.Status),
		res.Notes,
	)
	if err != nil {
		if IsCheckViolation(err) {
			return shared.ErrInvalidReservationTime.Wrap(err)
		}
		return fmt.Errorf("failed to save reservation: %w", err)
	}
	return nil
}

// Delete removes the reservation.
func (r *ReservationRepository) Delete(ctx context.Context, id shared.ID) error {
	if err := execDelete(ctx, r.q, "room_reservations", id); err != nil {
		return fmt.Errorf("failed to delete reservation: %w", err)
	}
	return nil
}

func (r *ReservationRepository) list(ctx context.Context, where string, args ...interface{}) ([]*schedule.RoomReservation, error) {
	list, err := queryAll(ctx, r.q, scanReservation, reservationSelect+where+" ORDER BY date, start_minutes", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	return list, nil
}

func scanReservation(row pgx.Row) (*schedule.RoomReservation, error) {
	var id, classroomID, professorID, semester, status string
	var date time.Time
	var start, end int
	res := &schedule.RoomReservation{}
	if err := row.Scan(&id, &classroomID, &professorID, &semester, &date, &start, &end, &status, &res.Notes); err != nil {
		return nil, err
	}
	res.ID = shared.ID(id)
	res.ClassroomID = shared.ID(classroomID)
	res.ProfessorID = shared.ID(professorID)
	res.Semester = shared.AcademicSemester(semester)
	res.Date = shared.ReservationDateFromTime(date)
	res.StartTime = shared.TimeOfDay(start)
	res.EndTime = shared.TimeOfDay(end)
	res.Status = shared.ReservationStatus(status)
	return res, nil
}
