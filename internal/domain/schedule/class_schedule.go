package schedule

import (
	"strings"
	"time"

	"github.com/epis-academic/academic-records/internal/domain/shared"
)

// ClassSchedule is a weekly recurring slot of a classroom, owned by exactly
// one theory group or one lab group.
type ClassSchedule struct {
	ID            shared.ID
	ClassroomID   shared.ID
	TimeSlot      shared.TimeSlot
	Semester      shared.AcademicSemester
	TheoryGroupID *shared.ID
	LabGroupID    *shared.ID
}

// NewClassScheduleParams holds the raw input for NewClassSchedule.
type NewClassScheduleParams struct {
	ID            string
	ClassroomID   string
	Day           string
	StartTime     string
	EndTime       string
	Semester      string
	TheoryGroupID string
	LabGroupID    string
}

// NewClassSchedule validates and builds a ClassSchedule.
func NewClassSchedule(params NewClassScheduleParams) (*ClassSchedule, error) {
	hasTheory := strings.TrimSpace(params.TheoryGroupID) != ""
	hasLab := strings.TrimSpace(params.LabGroupID) != ""
	switch {
	case hasTheory && hasLab:
		return nil, shared.ErrScheduleConflict.Withf("schedule cannot belong to both a theory group and a lab group")
	case !hasTheory && !hasLab:
		return nil, shared.ErrScheduleAssignment
	}

	id, err := idOrNew(params.ID)
	if err != nil {
		return nil, err
	}
	classroomID, err := shared.ParseID(params.ClassroomID)
	if err != nil {
		return nil, err
	}
	day, err := shared.ParseDayOfWeek(params.Day)
	if err != nil {
		return nil, err
	}
	slot, err := shared.NewTimeSlot(day, params.StartTime, params.EndTime)
	if err != nil {
		return nil, err
	}
	semester, err := shared.NewAcademicSemester(params.Semester)
	if err != nil {
		return nil, err
	}

	s := &ClassSchedule{
		ID:          id,
		ClassroomID: classroomID,
		TimeSlot:    slot,
		Semester:    semester,
	}
	if hasTheory {
		groupID, err := shared.ParseID(params.TheoryGroupID)
		if err != nil {
			return nil, err
		}
		s.TheoryGroupID = &groupID
		return s, nil
	}
	labID, err := shared.ParseID(params.LabGroupID)
	if err != nil {
		return nil, err
	}
	s.LabGroupID = &labID
	return s, nil
}

// Identity implements shared.Identifiable.
func (s *ClassSchedule) Identity() shared.ID {
	return s.ID
}

// OverlapsWith reports whether the weekly slots intersect.
func (s *ClassSchedule) OverlapsWith(slot shared.TimeSlot) bool {
	return s.TimeSlot.Overlaps(slot)
}

// OccupiesDate reports whether the recurring slot takes place on the given
// day, i.e. the weekday matches and the day lies inside the semester.
func (s *ClassSchedule) OccupiesDate(day time.Time) bool {
	return shared.DayOfWeekFromTime(day) == s.TimeSlot.Day && s.Semester.Contains(day)
}
