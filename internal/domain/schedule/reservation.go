package schedule

import (
	"strings"

	"github.com/epis-academic/academic-records/internal/domain/shared"
)

// RoomReservation is a one-off booking of a classroom by a professor.
type RoomReservation struct {
	ID          shared.ID
	ClassroomID shared.ID
	ProfessorID shared.ID
	Semester    shared.AcademicSemester
	Date        shared.ReservationDate
	StartTime   shared.TimeOfDay
	EndTime     shared.TimeOfDay
	Status      shared.ReservationStatus
	Notes       string
}

// NewRoomReservationParams holds the raw input for NewRoomReservation.
type NewRoomReservationParams struct {
	ID          string
	ClassroomID string
	ProfessorID string
	Semester    string
	Date        string
	StartTime   string
	EndTime     string
	Status      string
	Notes       string
}

// NewRoomReservation validates and builds a RoomReservation. An empty
// status means RESERVED.
func NewRoomReservation(params NewRoomReservationParams) (*RoomReservation, error) {
	id, err := idOrNew(params.ID)
	if err != nil {
		return nil, err
	}
	classroomID, err := shared.ParseID(params.ClassroomID)
	if err != nil {
		return nil, err
	}
	professorID, err := shared.ParseID(params.ProfessorID)
	if err != nil {
		return nil, err
	}
	semester, err := shared.NewAcademicSemester(params.Semester)
	if err != nil {
		return nil, err
	}
	date, err := shared.NewReservationDate(params.Date)
	if err != nil {
		return nil, err
	}
	start, err := shared.NewTimeOfDay(params.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := shared.NewTimeOfDay(params.EndTime)
	if err != nil {
		return nil, err
	}
	if !start.Before(end) {
		return nil, shared.ErrInvalidReservationTime.Withf("reservation %s-%s has no duration", start, end)
	}
	status := shared.ReservationReserved
	if strings.TrimSpace(params.Status) != "" {
		if status, err = shared.ParseReservationStatus(params.Status); err != nil {
			return nil, err
		}
	}

	return &RoomReservation{
		ID:          id,
		ClassroomID: classroomID,
		ProfessorID: professorID,
		Semester:    semester,
		Date:        date,
		StartTime:   start,
		EndTime:     end,
		Status:      status,
		Notes:       strings.TrimSpace(params.Notes),
	}, nil
}

// Identity implements shared.Identifiable.
func (r *RoomReservation) Identity() shared.ID {
	return r.ID
}

// IsActive reports whether the reservation still blocks the room.
func (r *RoomReservation) IsActive() bool {
	return r.Status == shared.ReservationReserved
}

// Cancel frees the room. A completed reservation cannot be cancelled.
func (r *RoomReservation) Cancel() error {
	if r.Status == shared.ReservationCompleted {
		return shared.ErrCompletedReservation.Withf("reservation %s is completed and cannot be cancelled", r.ID)
	}
	r.Status = shared.ReservationFree
	return nil
}

// MarkAsCompleted closes the reservation once it has taken place.
func (r *RoomReservation) MarkAsCompleted() {
	r.Status = shared.ReservationCompleted
}

// OverlapsWith reports whether an active reservation blocks the given date
// and half-open time range.
func (r *RoomReservation) OverlapsWith(date shared.ReservationDate, start, end shared.TimeOfDay) bool {
	if !r.IsActive() || !r.Date.Equal(date) {
		return false
	}
	return shared.IntervalsOverlap(r.StartTime, r.EndTime, start, end)
}

// Slot returns the weekly slot equivalent of the reservation.
func (r *RoomReservation) Slot() shared.TimeSlot {
	return shared.TimeSlot{Day: r.Date.Weekday(), Start: r.StartTime, End: r.EndTime}
}
