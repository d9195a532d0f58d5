// Package jobs contains the scheduled jobs of the academic records service.
package jobs

import (
	"context"
	"log/slog"

	"github.com/epis-academic/academic-records/internal/application/command"
)

// ReservationCompleter closes reservations whose date has passed.
type ReservationCompleter interface {
	Handle(ctx context.Context) (*command.CompleteElapsedReservationsResult, error)
}

// CompleteReservationsJob marks RESERVED room reservations dated before
// today as COMPLETED so they stop counting as upcoming bookings.
type CompleteReservationsJob struct {
	completer ReservationCompleter
	logger    *slog.Logger
}

// NewCompleteReservationsJob creates a new CompleteReservationsJob.
func NewCompleteReservationsJob(completer ReservationCompleter, logger *slog.Logger) *CompleteReservationsJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &CompleteReservationsJob{
		completer: completer,
		logger:    logger.With("job", "complete_reservations"),
	}
}

// Name implements scheduler.Job.
func (j *CompleteReservationsJob) Name() string {
	return "complete_reservations"
}

// Description implements scheduler.Job.
func (j *CompleteReservationsJob) Description() string {
	return "Marks elapsed room reservations as completed"
}

// Run implements scheduler.Job.
func (j *CompleteReservationsJob) Run(ctx context.Context) error {
	result, err := j.completer.Handle(ctx)
	if err != nil {
		return err
	}
	if result.Completed > 0 {
		j.logger.Info("reservations completed", "count", result.Completed)
	}
	return nil
}
