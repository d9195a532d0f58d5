// Package attendance models per-session presence records.
package attendance

import (
	"errors"
	"strings"
	"time"

	"github.com/epis-academic/academic-records/internal/domain/shared"
)

var errMissingDate = errors.New("attendance date is required")

// Attendance is the presence of one enrollment in one session. There is at
// most one record per (enrollment, class type, date).
type Attendance struct {
	ID           shared.ID
	EnrollmentID shared.ID
	ClassType    shared.ClassType
	Date         time.Time
	Status       shared.AttendanceStatus
}

// NewAttendanceParams holds the raw input for NewAttendance.
type NewAttendanceParams struct {
	ID           string
	EnrollmentID string
	ClassType    string
	Date         time.Time
	Status       string
}

// NewAttendance validates and builds an Attendance record. The date is
// normalized to its UTC day and may not be later than the day of now.
func NewAttendance(params NewAttendanceParams, now time.Time) (*Attendance, error) {
	id := shared.NewID()
	if strings.TrimSpace(params.ID) != "" {
		parsed, err := shared.ParseID(params.ID)
		if err != nil {
			return nil, err
		}
		id = parsed
	}
	enrollmentID, err := shared.ParseID(params.EnrollmentID)
	if err != nil {
		return nil, err
	}
	classType, err := shared.ParseClassType(params.ClassType)
	if err != nil {
		return nil, err
	}
	status, err := shared.ParseAttendanceStatus(params.Status)
	if err != nil {
		return nil, err
	}
	if params.Date.IsZero() {
		return nil, shared.ErrAttendanceCreation.Wrap(errMissingDate)
	}
	day, err := SessionDay(params.Date, now)
	if err != nil {
		return nil, err
	}

	return &Attendance{
		ID:           id,
		EnrollmentID: enrollmentID,
		ClassType:    classType,
		Date:         day,
		Status:       status,
	}, nil
}

// SessionDay normalizes a session date to its UTC day and rejects days after
// the day of now.
func SessionDay(date, now time.Time) (time.Time, error) {
	day := shared.StartOfUTCDay(date)
	if day.After(shared.StartOfUTCDay(now)) {
		return time.Time{}, shared.ErrFutureAttendanceDate.Withf("attendance date %s is in the future", day.Format("2006-01-02"))
	}
	return day, nil
}

// Identity implements shared.Identifiable.
func (a *Attendance) Identity() shared.ID {
	return a.ID
}

// UpdateStatus replaces the recorded status.
func (a *Attendance) UpdateStatus(raw string) error {
	status, err := shared.ParseAttendanceStatus(raw)
	if err != nil {
		return err
	}
	a.Status = status
	return nil
}
