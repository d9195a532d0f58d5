package shared

import (
	"strings"
	"time"
)

// DayOfWeek is a teaching day.
type DayOfWeek string

const (
	Monday    DayOfWeek = "MONDAY"
	Tuesday   DayOfWeek = "TUESDAY"
	Wednesday DayOfWeek = "WEDNESDAY"
	Thursday  DayOfWeek = "THURSDAY"
	Friday    DayOfWeek = "FRIDAY"
	Saturday  DayOfWeek = "SATURDAY"
	Sunday    DayOfWeek = "SUNDAY"
)

var weekdays = map[time.Weekday]DayOfWeek{
	time.Monday:    Monday,
	time.Tuesday:   Tuesday,
	time.Wednesday: Wednesday,
	time.Thursday:  Thursday,
	time.Friday:    Friday,
	time.Saturday:  Saturday,
	time.Sunday:    Sunday,
}

// Week lists the days Monday first.
var Week = []DayOfWeek{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Ordinal is the position of d in Week, or len(Week) for an unknown day.
func (d DayOfWeek) Ordinal() int {
	for i, day := range Week {
		if day == d {
			return i
		}
	}
	return len(Week)
}

// IsValid checks if the day is one of the known values.
func (d DayOfWeek) IsValid() bool {
	switch d {
	case Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday:
		return true
	default:
		return false
	}
}

// ParseDayOfWeek validates a day name (case-insensitive).
func ParseDayOfWeek(raw string) (DayOfWeek, error) {
	d := DayOfWeek(strings.ToUpper(strings.TrimSpace(raw)))
	if !d.IsValid() {
		return "", ErrInvalidDayOfWeek.Withf("invalid day of week %q", raw)
	}
	return d, nil
}

// DayOfWeekFromTime returns the UTC weekday of t.
func DayOfWeekFromTime(t time.Time) DayOfWeek {
	return weekdays[t.UTC().Weekday()]
}

// ClassType distinguishes theory sessions from lab sessions.
type ClassType string

const (
	ClassTheory ClassType = "THEORY"
	ClassLab    ClassType = "LAB"
)

// IsValid checks if the class type is valid.
func (c ClassType) IsValid() bool {
	return c == ClassTheory || c == ClassLab
}

// ParseClassType validates a class type.
func ParseClassType(raw string) (ClassType, error) {
	c := ClassType(strings.ToUpper(strings.TrimSpace(raw)))
	if !c.IsValid() {
		return "", ErrInvalidClassType.Withf("invalid class type %q", raw)
	}
	return c, nil
}

// CourseType tells which kinds of sessions a course has.
type CourseType string

const (
	CourseTheory    CourseType = "THEORY"
	CourseLab       CourseType = "LAB"
	CourseTheoryLab CourseType = "THEORY_LAB"
)

// IsValid checks if the course type is valid.
func (c CourseType) IsValid() bool {
	switch c {
	case CourseTheory, CourseLab, CourseTheoryLab:
		return true
	default:
		return false
	}
}

// ParseCourseType validates a course type.
func ParseCourseType(raw string) (CourseType, error) {
	c := CourseType(strings.ToUpper(strings.TrimSpace(raw)))
	if !c.IsValid() {
		return "", ErrInvalidCourseType.Withf("invalid course type %q", raw)
	}
	return c, nil
}

// AttendanceStatus records presence in a session.
type AttendanceStatus string

const (
	Present AttendanceStatus = "PRESENT"
	Absent  AttendanceStatus = "ABSENT"
)

// IsValid checks if the status is valid.
func (s AttendanceStatus) IsValid() bool {
	return s == Present || s == Absent
}

// ParseAttendanceStatus validates an attendance status.
func ParseAttendanceStatus(raw string) (AttendanceStatus, error) {
	s := AttendanceStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", ErrInvalidAttendanceStatus.Withf("invalid attendance status %q", raw)
	}
	return s, nil
}

// GradeType is one of the six evaluation slots of a theory group.
type GradeType string

const (
	Partial1    GradeType = "PARTIAL_1"
	Partial2    GradeType = "PARTIAL_2"
	Partial3    GradeType = "PARTIAL_3"
	Continuous1 GradeType = "CONTINUOUS_1"
	Continuous2 GradeType = "CONTINUOUS_2"
	Continuous3 GradeType = "CONTINUOUS_3"
)

// AllGradeTypes lists the grade types in display order.
var AllGradeTypes = []GradeType{Partial1, Partial2, Partial3, Continuous1, Continuous2, Continuous3}

// IsValid checks if the grade type is valid.
func (g GradeType) IsValid() bool {
	switch g {
	case Partial1, Partial2, Partial3, Continuous1, Continuous2, Continuous3:
		return true
	default:
		return false
	}
}

// ParseGradeType validates a grade type.
func ParseGradeType(raw string) (GradeType, error) {
	g := GradeType(strings.ToUpper(strings.TrimSpace(raw)))
	if !g.IsValid() {
		return "", ErrInvalidGradeType.Withf("invalid grade type %q", raw)
	}
	return g, nil
}

// ReservationStatus is the lifecycle state of a room reservation.
type ReservationStatus string

const (
	ReservationFree      ReservationStatus = "FREE"
	ReservationReserved  ReservationStatus = "RESERVED"
	ReservationCompleted ReservationStatus = "COMPLETED"
)

// IsValid checks if the status is valid.
func (s ReservationStatus) IsValid() bool {
	switch s {
	case ReservationFree, ReservationReserved, ReservationCompleted:
		return true
	default:
		return false
	}
}

// ParseReservationStatus validates a reservation status.
func ParseReservationStatus(raw string) (ReservationStatus, error) {
	s := ReservationStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", ErrInvalidReservationStatus.Withf("invalid reservation status %q", raw)
	}
	return s, nil
}

// TopicStatus is the progress of a syllabus topic.
type TopicStatus string

const (
	TopicPending   TopicStatus = "PENDING"
	TopicCompleted TopicStatus = "COMPLETED"
)

// IsValid checks if the status is valid.
func (s TopicStatus) IsValid() bool {
	return s == TopicPending || s == TopicCompleted
}

// ParseTopicStatus validates a topic status.
func ParseTopicStatus(raw string) (TopicStatus, error) {
	s := TopicStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", ErrInvalidTopicStatus.Withf("invalid topic status %q", raw)
	}
	return s, nil
}

// UserRole is the role of an account.
type UserRole string

const (
	RoleAdmin     UserRole = "ADMIN"
	RoleSecretary UserRole = "SECRETARY"
	RoleProfessor UserRole = "PROFESSOR"
	RoleStudent   UserRole = "STUDENT"
)

// IsValid checks if the role is valid.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleSecretary, RoleProfessor, RoleStudent:
		return true
	default:
		return false
	}
}

// ParseUserRole validates a role.
func ParseUserRole(raw string) (UserRole, error) {
	r := UserRole(strings.ToUpper(strings.TrimSpace(raw)))
	if !r.IsValid() {
		return "", ErrInvalidUserRole.Withf("invalid user role %q", raw)
	}
	return r, nil
}

// EvidenceKind selects a slot of a group portfolio.
type EvidenceKind string

const (
	EvidenceLow      EvidenceKind = "low"
	EvidenceAverage  EvidenceKind = "avg"
	EvidenceHigh     EvidenceKind = "high"
	EvidenceSyllabus EvidenceKind = "syllabus"
)

// IsValid checks if the evidence kind is known.
func (k EvidenceKind) IsValid() bool {
	switch k {
	case EvidenceLow, EvidenceAverage, EvidenceHigh, EvidenceSyllabus:
		return true
	default:
		return false
	}
}

// ParseEvidenceKind validates an evidence kind.
func ParseEvidenceKind(raw string) (EvidenceKind, error) {
	k := EvidenceKind(strings.ToLower(strings.TrimSpace(raw)))
	if !k.IsValid() {
		return "", ErrInvalidEvidenceKind.Withf("unknown evidence kind %q", raw)
	}
	return k, nil
}
