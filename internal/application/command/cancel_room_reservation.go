package command

import (
	"context"
	"fmt"

	"github.com/epis-academic/academic-records/internal/application/uow"
	"github.com/epis-academic/academic-records/internal/domain/schedule"
	"github.com/epis-academic/academic-records/internal/domain/shared"
)

// CancelRoomReservationCommand frees a reservation held by the professor.
type CancelRoomReservationCommand struct {
	ProfessorID   string
	ReservationID string
}

// Validate validates the command.
func (c CancelRoomReservationCommand) Validate() error {
	if err := required("cancel_room_reservation", "professor_id", c.ProfessorID); err != nil {
		return err
	}
	return required("cancel_room_reservation", "reservation_id", c.ReservationID)
}

// CancelRoomReservationHandler handles the CancelRoomReservationCommand.
type CancelRoomReservationHandler struct {
	txManager      uow.TxManager
	eventPublisher shared.EventPublisher
	clock          Clock
}

// NewCancelRoomReservationHandler creates a new CancelRoomReservationHandler.
func NewCancelRoomReservationHandler(
	txManager uow.TxManager,
	eventPublisher shared.EventPublisher,
	clock Clock,
) *CancelRoomReservationHandler {
	return &CancelRoomReservationHandler{
		txManager:      txManager,
		eventPublisher: publisherOrNop(eventPublisher),
		clock:          clock,
	}
}

// Handle executes the command. Only the professor who booked the room may
// cancel, and a completed reservation stays completed.
func (h *CancelRoomReservationHandler) Handle(ctx context.Context, cmd CancelRoomReservationCommand) (*schedule.RoomReservation, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("cancel_room_reservation: validation failed: %w", err)
	}
	professorID, err := shared.ParseID(cmd.ProfessorID)
	if err != nil {
		return nil, fmt.Errorf("cancel_room_reservation: %w", err)
	}
	reservationID, err := shared.ParseID(cmd.ReservationID)
	if err != nil {
		return nil, fmt.Errorf("cancel_room_reservation: %w", err)
	}

	var res *schedule.RoomReservation
	err = h.txManager.WithTx(ctx, func(ctx context.Context, repos uow.Repositories) error {
		res, err = repos.Reservations.FindByID(ctx, reservationID)
		if err != nil {
			return shared.Internal("schedule", "FindReservation", err)
		}
		if res == nil {
			return shared.ErrReservationNotFound.Withf("reservation %s not found", reservationID)
		}
		if res.ProfessorID != professorID {
			return shared.ErrNotAuthorized.Withf("reservation %s belongs to another professor", reservationID)
		}
		if err := res.Cancel(); err != nil {
			return err
		}
		if err := repos.Reservations.Save(ctx, res); err != nil {
			return shared.Internal("schedule", "SaveReservation", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cancel_room_reservation: %w", err)
	}

	_ = h.eventPublisher.Publish(shared.NewReservationEvent(shared.EventReservationCancelled, res.ID, res.ClassroomID, res.ProfessorID, res.Date, h.clock.now()))

	return res, nil
}
