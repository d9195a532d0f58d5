package command

import (
	"context"
	"fmt"

	"github.com/epis-academic/academic-records/internal/application/uow"
	"github.com/epis-academic/academic-records/internal/domain/schedule"
	"github.com/epis-academic/academic-records/internal/domain/shared"
	"github.com/epis-academic/academic-records/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE ROOM RESERVATION COMMAND
// Books a classroom for a single date. The room must be free of fixed
// classes and other reservations, the professor must be free too, and the
// professor's weekly quota must not be exhausted.
// ══════════════════════════════════════════════════════════════════════════════

// ReservationPolicy holds the booking limits.
type ReservationPolicy struct {
	// MaxPerWeek is the number of active reservations a professor may hold
	// in one Monday to Sunday week.
	MaxPerWeek int

	// MaxDaysAhead is how far in the future a date may be booked.
	MaxDaysAhead int
}

// DefaultReservationPolicy allows two bookings per week up to 14 days ahead.
var DefaultReservationPolicy = ReservationPolicy{MaxPerWeek: 2, MaxDaysAhead: 14}

// CreateRoomReservationCommand contains the booking request.
type CreateRoomReservationCommand struct {
	ProfessorID string
	ClassroomID string

	// Semester the date belongs to, e.g. "2025-II".
	Semester string

	// Date is YYYY-MM-DD.
	Date string

	// StartTime and EndTime are HH:MM, half-open.
	StartTime string
	EndTime   string

	Notes string
}

// Validate validates the command.
func (c CreateRoomReservationCommand) Validate() error {
	if err := required("create_room_reservation", "professor_id", c.ProfessorID); err != nil {
		return err
	}
	if err := required("create_room_reservation", "classroom_id", c.ClassroomID); err != nil {
		return err
	}
	return required("create_room_reservation", "date", c.Date)
}

// CreateRoomReservationResult contains the created reservation.
type CreateRoomReservationResult struct {
	Reservation *schedule.RoomReservation
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// CreateRoomReservationHandler handles the CreateRoomReservationCommand.
type CreateRoomReservationHandler struct {
	txManager      uow.TxManager
	policy         ReservationPolicy
	eventPublisher shared.EventPublisher
	clock          Clock
}

// NewCreateRoomReservationHandler creates a new CreateRoomReservationHandler.
func NewCreateRoomReservationHandler(
	txManager uow.TxManager,
	policy ReservationPolicy,
	eventPublisher shared.EventPublisher,
	clock Clock,
) *CreateRoomReservationHandler {
	return &CreateRoomReservationHandler{
		txManager:      txManager,
		policy:         policy,
		eventPublisher: publisherOrNop(eventPublisher),
		clock:          clock,
	}
}

// Handle executes the create room reservation command.
func (h *CreateRoomReservationHandler) Handle(ctx context.Context, cmd CreateRoomReservationCommand) (*CreateRoomReservationResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("create_room_reservation: validation failed: %w", err)
	}
	res, err := schedule.NewRoomReservation(schedule.NewRoomReservationParams{
		ClassroomID: cmd.ClassroomID,
		ProfessorID: cmd.ProfessorID,
		Semester:    cmd.Semester,
		Date:        cmd.Date,
		StartTime:   cmd.StartTime,
		EndTime:     cmd.EndTime,
		Notes:       cmd.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("create_room_reservation: %w", err)
	}

	now := h.clock.now()
	if err := res.Date.WithinWindow(now, h.policy.MaxDaysAhead); err != nil {
		return nil, fmt.Errorf("create_room_reservation: %w", err)
	}
	if !res.Semester.Contains(res.Date.Time()) {
		return nil, fmt.Errorf("create_room_reservation: %w",
			shared.ErrReservationWindow.Withf("date %s is outside semester %s", res.Date, res.Semester))
	}

	err = h.txManager.WithTx(ctx, func(ctx context.Context, repos uow.Repositories) error {
		// Held until commit, so a concurrent booking of the same room or by
		// the same professor sees this one in its checks.
		if err := repos.Reservations.LockBooking(ctx, res.ClassroomID, res.ProfessorID); err != nil {
			return shared.Internal("schedule", "LockBooking", err)
		}

		room, err := repos.Classrooms.FindByID(ctx, res.ClassroomID)
		if err != nil {
			return shared.Internal("schedule", "FindClassroom", err)
		}
		if room == nil {
			return shared.ErrClassroomNotFound.Withf("classroom %s not found", res.ClassroomID)
		}

		weekStart := timeutil.StartOfWeek(res.Date.Time())
		count, err := repos.Reservations.CountByProfessorAndDateRange(ctx, res.ProfessorID, weekStart, timeutil.EndOfWeek(weekStart))
		if err != nil {
			return shared.Internal("schedule", "CountReservations", err)
		}
		if count >= h.policy.MaxPerWeek {
			return shared.ErrReservationLimit.Withf("professor already holds %d reservations in the week of %s", count, timeutil.FormatDateStr(weekStart))
		}

		candidate := schedule.DatedCandidate(res.ClassroomID, res.Semester, res.Date, res.StartTime, res.EndTime)

		fixed, err := repos.Schedules.FindByClassroomAndSemester(ctx, res.ClassroomID, res.Semester)
		if err != nil {
			return shared.Internal("schedule", "FindByClassroomAndSemester", err)
		}
		overlapping, err := repos.Reservations.FindOverlapping(ctx, res.ClassroomID, res.Semester, res.Date, res.StartTime, res.EndTime)
		if err != nil {
			return shared.Internal("schedule", "FindOverlapping", err)
		}
		if err := candidate.CheckClassroom(fixed, overlapping); err != nil {
			return err
		}

		taught, err := professorSchedules(ctx, repos, res.ProfessorID, res.Semester)
		if err != nil {
			return err
		}
		own, err := repos.Reservations.FindByProfessorAndSemester(ctx, res.ProfessorID, res.Semester)
		if err != nil {
			return shared.Internal("schedule", "FindByProfessorAndSemester", err)
		}
		if s, r := candidate.FirstPersonalConflict(taught, own); s != nil {
			return shared.ErrReservationConflict.Withf("professor teaches a class on %s at that time", s.TimeSlot)
		} else if r != nil {
			return shared.ErrReservationConflict.Withf("professor already has a reservation on %s %s-%s", r.Date, r.StartTime, r.EndTime)
		}

		if err := repos.Reservations.Save(ctx, res); err != nil {
			return shared.Internal("schedule", "SaveReservation", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create_room_reservation: %w", err)
	}

	_ = h.eventPublisher.Publish(shared.NewReservationEvent(shared.EventRoomReserved, res.ID, res.ClassroomID, res.ProfessorID, res.Date, now))

	return &CreateRoomReservationResult{Reservation: res}, nil
}
