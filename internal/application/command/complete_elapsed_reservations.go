package command

import (
	"context"
	"fmt"

	"github.com/epis-academic/academic-records/internal/application/uow"
	"github.com/epis-academic/academic-records/internal/domain/shared"
)

// CompleteElapsedReservationsResult reports how many reservations were closed.
type CompleteElapsedReservationsResult struct {
	Completed int
}

// CompleteElapsedReservationsHandler marks every RESERVED reservation dated
// before today as COMPLETED. It is run periodically by the scheduler.
type CompleteElapsedReservationsHandler struct {
	txManager      uow.TxManager
	eventPublisher shared.EventPublisher
	clock          Clock
}

// NewCompleteElapsedReservationsHandler creates a new CompleteElapsedReservationsHandler.
func NewCompleteElapsedReservationsHandler(
	txManager uow.TxManager,
	eventPublisher shared.EventPublisher,
	clock Clock,
) *CompleteElapsedReservationsHandler {
	return &CompleteElapsedReservationsHandler{
		txManager:      txManager,
		eventPublisher: publisherOrNop(eventPublisher),
		clock:          clock,
	}
}

// Handle closes the elapsed reservations in one transaction.
func (h *CompleteElapsedReservationsHandler) Handle(ctx context.Context) (*CompleteElapsedReservationsResult, error) {
	now := h.clock.now()
	today := shared.StartOfUTCDay(now)

	result := &CompleteElapsedReservationsResult{}
	var completed []shared.Event
	err := h.txManager.WithTx(ctx, func(ctx context.Context, repos uow.Repositories) error {
		elapsed, err := repos.Reservations.FindReservedBefore(ctx, today)
		if err != nil {
			return shared.Internal("schedule", "FindReservedBefore", err)
		}
		for _, r := range elapsed {
			r.MarkAsCompleted()
			if err := repos.Reservations.Save(ctx, r); err != nil {
				return shared.Internal("schedule", "SaveReservation", err)
			}
			completed = append(completed, shared.NewReservationEvent(shared.EventReservationsCompleted, r.ID, r.ClassroomID, r.ProfessorID, r.Date, now))
		}
		result.Completed = len(elapsed)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("complete_elapsed_reservations: %w", err)
	}

	for _, event := range completed {
		_ = h.eventPublisher.Publish(event)
	}
	return result, nil
}
