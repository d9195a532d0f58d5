package schedule

import (
	"context"
	"time"

	"github.com/epis-academic/academic-records/internal/domain/shared"
)

// ClassroomRepository stores classrooms. Absence is reported as nil.
type ClassroomRepository interface {
	FindByID(ctx context.Context, id shared.ID) (*Classroom, error)
	FindByType(ctx context.Context, classType shared.ClassType) ([]*Classroom, error)
	FindAll(ctx context.Context) ([]*Classroom, error)
	Save(ctx context.Context, classroom *Classroom) error
	Delete(ctx context.Context, id shared.ID) error
}

// ClassScheduleRepository stores the weekly timetable.
type ClassScheduleRepository interface {
	FindByID(ctx context.Context, id shared.ID) (*ClassSchedule, error)
	FindByTheoryGroup(ctx context.Context, theoryGroupID shared.ID) ([]*ClassSchedule, error)
	FindByLabGroup(ctx context.Context, labGroupID shared.ID) ([]*ClassSchedule, error)
	FindByClassroomAndSemester(ctx context.Context, classroomID shared.ID, semester shared.AcademicSemester) ([]*ClassSchedule, error)
	Save(ctx context.Context, schedule *ClassSchedule) error
	Delete(ctx context.Context, id shared.ID) error
}

// ReservationRepository stores room reservations.
type ReservationRepository interface {
	// LockBooking serializes bookings of the classroom and bookings by the
	// professor until the transaction ends. Call it before the conflict and
	// quota checks.
	LockBooking(ctx context.Context, classroomID, professorID shared.ID) error

	FindByID(ctx context.Context, id shared.ID) (*RoomReservation, error)
	FindByProfessorAndSemester(ctx context.Context, professorID shared.ID, semester shared.AcademicSemester) ([]*RoomReservation, error)
	FindByClassroomAndSemester(ctx context.Context, classroomID shared.ID, semester shared.AcademicSemester) ([]*RoomReservation, error)

	// FindOverlapping returns RESERVED reservations of the classroom on the
	// date whose time range intersects [start, end).
	FindOverlapping(ctx context.Context, classroomID shared.ID, semester shared.AcademicSemester, date shared.ReservationDate, start, end shared.TimeOfDay) ([]*RoomReservation, error)

	// CountByProfessorAndDateRange counts RESERVED reservations with a date
	// in [from, to].
	CountByProfessorAndDateRange(ctx context.Context, professorID shared.ID, from, to time.Time) (int, error)

	// FindReservedBefore returns RESERVED reservations dated before day.
	FindReservedBefore(ctx context.Context, day time.Time) ([]*RoomReservation, error)

	Save(ctx context.Context, reservation *RoomReservation) error
	Delete(ctx context.Context, id shared.ID) error
}
