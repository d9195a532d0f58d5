package schedule

import (
	"github.com/epis-academic/academic-records/internal/domain/shared"
)

// Candidate is a classroom slot someone wants to occupy: either a weekly
// recurring slot for a semester (Date is nil) or a single date.
type Candidate struct {
	ClassroomID shared.ID
	Slot        shared.TimeSlot
	Semester    shared.AcademicSemester
	Date        *shared.ReservationDate
}

// WeeklyCandidate builds a recurring candidate.
func WeeklyCandidate(classroomID shared.ID, slot shared.TimeSlot, semester shared.AcademicSemester) Candidate {
	return Candidate{ClassroomID: classroomID, Slot: slot, Semester: semester}
}

// DatedCandidate builds a single-date candidate. The slot day is derived
// from the date.
func DatedCandidate(classroomID shared.ID, semester shared.AcademicSemester, date shared.ReservationDate, start, end shared.TimeOfDay) Candidate {
	d := date
	return Candidate{
		ClassroomID: classroomID,
		Slot:        shared.TimeSlot{Day: date.Weekday(), Start: start, End: end},
		Semester:    semester,
		Date:        &d,
	}
}

// ConflictsWithSchedule reports whether the candidate overlaps a fixed
// class schedule of the same classroom. A dated candidate only meets a
// recurring schedule when its weekday matches and the date falls inside the
// schedule's semester.
func (c Candidate) ConflictsWithSchedule(s *ClassSchedule) bool {
	if s.ClassroomID != c.ClassroomID {
		return false
	}
	return c.overlapsSchedule(s)
}

// ConflictsWithReservation reports whether the candidate overlaps an active
// reservation of the same classroom. A weekly candidate meets a reservation
// whose weekday matches and whose date falls inside the candidate semester.
func (c Candidate) ConflictsWithReservation(r *RoomReservation) bool {
	if r.ClassroomID != c.ClassroomID {
		return false
	}
	return c.overlapsReservation(r)
}

// CheckClassroom reports the first booking of the classroom the candidate
// would overlap. Dated candidates fail with ErrReservationConflict, weekly
// ones with ErrScheduleConflict.
func (c Candidate) CheckClassroom(schedules []*ClassSchedule, reservations []*RoomReservation) error {
	for _, s := range schedules {
		if c.ConflictsWithSchedule(s) {
			return c.conflictErr().Withf("classroom is already occupied by a fixed class on %s", s.TimeSlot)
		}
	}
	for _, r := range reservations {
		if c.ConflictsWithReservation(r) {
			return c.conflictErr().Withf("classroom is already reserved on %s %s-%s", r.Date, r.StartTime, r.EndTime)
		}
	}
	return nil
}

func (c Candidate) conflictErr() *shared.DomainError {
	if c.Date != nil {
		return shared.ErrReservationConflict
	}
	return shared.ErrScheduleConflict
}

// FirstPersonalConflict returns the first schedule or reservation of one
// person (professor or student), in any classroom, that the candidate
// overlaps. Both results are nil when the person is free.
func (c Candidate) FirstPersonalConflict(schedules []*ClassSchedule, reservations []*RoomReservation) (*ClassSchedule, *RoomReservation) {
	for _, s := range schedules {
		if c.overlapsSchedule(s) {
			return s, nil
		}
	}
	for _, r := range reservations {
		if c.overlapsReservation(r) {
			return nil, r
		}
	}
	return nil, nil
}

func (c Candidate) overlapsSchedule(s *ClassSchedule) bool {
	if c.Date == nil {
		return s.Semester == c.Semester && s.OverlapsWith(c.Slot)
	}
	return s.OccupiesDate(c.Date.Time()) &&
		shared.IntervalsOverlap(s.TimeSlot.Start, s.TimeSlot.End, c.Slot.Start, c.Slot.End)
}

func (c Candidate) overlapsReservation(r *RoomReservation) bool {
	if !r.IsActive() {
		return false
	}
	if c.Date != nil {
		return r.OverlapsWith(*c.Date, c.Slot.Start, c.Slot.End)
	}
	return c.Semester.Contains(r.Date.Time()) && r.Slot().Overlaps(c.Slot)
}

// SchedulesOverlap reports whether two weekly schedules of the same semester
// intersect, regardless of classroom.
func SchedulesOverlap(a, b *ClassSchedule) bool {
	return a.Semester == b.Semester && a.TimeSlot.Overlaps(b.TimeSlot)
}
