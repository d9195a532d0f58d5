package command_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/epis-academic/academic-records/internal/application/command"
	"github.com/epis-academic/academic-records/internal/application/uow"
	"github.com/epis-academic/academic-records/internal/domain/schedule"
	"github.com/epis-academic/academic-records/internal/domain/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bookingLog wraps a TxManager and records the reservation calls made inside
// each transaction.
type bookingLog struct {
	uow.TxManager
	lockErr error

	mu    sync.Mutex
	calls []string
}

func (l *bookingLog) record(call string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, call)
}

func (l *bookingLog) WithTx(ctx context.Context, fn func(ctx context.Context, repos uow.Repositories) error) error {
	return l.TxManager.WithTx(ctx, func(ctx context.Context, repos uow.Repositories) error {
		repos.Reservations = recordingReservations{ReservationRepository: repos.Reservations, log: l}
		return fn(ctx, repos)
	})
}

type recordingReservations struct {
	schedule.ReservationRepository
	log *bookingLog
}

func (r recordingReservations) LockBooking(ctx context.Context, classroomID, professorID shared.ID) error {
	r.log.record("lock room " + classroomID.String() + " professor " + professorID.String())
	if r.log.lockErr != nil {
		return r.log.lockErr
	}
	return r.ReservationRepository.LockBooking(ctx, classroomID, professorID)
}

func (r recordingReservations) CountByProfessorAndDateRange(ctx context.Context, professorID shared.ID, from, to time.Time) (int, error) {
	r.log.record("count")
	return r.ReservationRepository.CountByProfessorAndDateRange(ctx, professorID, from, to)
}

func (r recordingReservations) FindOverlapping(ctx context.Context, classroomID shared.ID, semester shared.AcademicSemester, date shared.ReservationDate, start, end shared.TimeOfDay) ([]*schedule.RoomReservation, error) {
	r.log.record("overlapping")
	return r.ReservationRepository.FindOverlapping(ctx, classroomID, semester, date, start, end)
}

func (r recordingReservations) Save(ctx context.Context, res *schedule.RoomReservation) error {
	r.log.record("save")
	return r.ReservationRepository.Save(ctx, res)
}

func TestCreateRoomReservation_LocksBeforeChecking(t *testing.T) {
	w := newWorld(t)
	log := &bookingLog{TxManager: w.store}

	_, err := command.NewCreateRoomReservationHandler(log, command.DefaultReservationPolicy, w.events, clock).
		Handle(w.ctx, w.reserveCommand(thursday, "10:00", "12:00"))

	require.NoError(t, err)
	assert.Equal(t, []string{
		"lock room " + w.labRoom.ID.String() + " professor " + w.professorID.String(),
		"count",
		"overlapping",
		"save",
	}, log.calls)
}

func TestCreateRoomReservation_LockFailure(t *testing.T) {
	w := newWorld(t)
	log := &bookingLog{TxManager: w.store, lockErr: errors.New("deadlock detected")}

	_, err := command.NewCreateRoomReservationHandler(log, command.DefaultReservationPolicy, w.events, clock).
		Handle(w.ctx, w.reserveCommand(thursday, "10:00", "12:00"))

	require.Error(t, err)
	assert.Equal(t, shared.ClassInternal, shared.Classify(err))
	assert.Len(t, log.calls, 1, "nothing is checked or saved without the lock")
	assert.Empty(t, w.events.Events())
}

func TestCreateRoomReservation_ConcurrentBookings(t *testing.T) {
	tests := []struct {
		name    string
		policy  command.ReservationPolicy
		command func(w *world, i int) command.CreateRoomReservationCommand
		wantErr error
	}{
		{
			name:   "same room and slot, two professors",
			policy: command.DefaultReservationPolicy,
			command: func(w *world, i int) command.CreateRoomReservationCommand {
				cmd := w.reserveCommand(thursday, "10:00", "12:00")
				if i == 1 {
					cmd.ProfessorID = shared.NewID().String()
				}
				return cmd
			},
			wantErr: shared.ErrReservationConflict,
		},
		{
			name:   "same professor, two rooms, one booking left this week",
			policy: command.ReservationPolicy{MaxPerWeek: 1, MaxDaysAhead: 14},
			command: func(w *world, i int) command.CreateRoomReservationCommand {
				cmd := w.reserveCommand(thursday, "10:00", "12:00")
				if i == 1 {
					cmd.ClassroomID = w.theoryRoom.ID.String()
					cmd.StartTime, cmd.EndTime = "14:00", "16:00"
				}
				return cmd
			},
			wantErr: shared.ErrReservationLimit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorld(t)
			handler := command.NewCreateRoomReservationHandler(w.store, tt.policy, w.events, clock)

			errs := make([]error, 2)
			var wg sync.WaitGroup
			for i := range errs {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, errs[i] = handler.Handle(w.ctx, tt.command(w, i))
				}(i)
			}
			wg.Wait()

			succeeded := 0
			for _, err := range errs {
				if err == nil {
					succeeded++
					continue
				}
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Equal(t, 1, succeeded)

			all, err := w.store.Repositories().Reservations.FindReservedBefore(w.ctx, now.AddDate(0, 1, 0))
			require.NoError(t, err)
			assert.Len(t, all, 1)
		})
	}
}
