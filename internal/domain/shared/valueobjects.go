package shared

import (
	"math"
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ═══════════════════════════════════════════════════════════════════════════
// Identity
// ═══════════════════════════════════════════════════════════════════════════

// ID is the opaque identifier of every aggregate (canonical lowercase UUID).
type ID string

// NewID generates a fresh random identifier.
func NewID() ID {
	return ID(uuid.NewString())
}

// ParseID validates s as a UUID and returns its canonical form.
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", ErrInvalidID.Withf("invalid identifier %q", s)
	}
	return ID(u.String()), nil
}

// MustParseID is ParseID for trusted constants; it panics on invalid input.
func MustParseID(s string) ID {
	id, err := ParseID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// IsZero reports whether the identifier is unset.
func (id ID) IsZero() bool {
	return id == ""
}

// String returns the string representation.
func (id ID) String() string {
	return string(id)
}

// Identifiable is implemented by every entity.
type Identifiable interface {
	Identity() ID
}

// SameIdentity reports whether two entities share the same identifier.
func SameIdentity(a, b Identifiable) bool {
	if a == nil || b == nil {
		return false
	}
	return !a.Identity().IsZero() && a.Identity() == b.Identity()
}

// ═══════════════════════════════════════════════════════════════════════════
// Contact and person values
// ═══════════════════════════════════════════════════════════════════════════

// Email is a validated, lowercased email address.
type Email string

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NewEmail validates and normalizes an email address.
func NewEmail(raw string) (Email, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if !emailRegex.MatchString(value) {
		return "", ErrInvalidEmail.Withf("invalid email %q", raw)
	}
	if _, err := mail.ParseAddress(value); err != nil {
		return "", ErrInvalidEmail.Withf("invalid email %q", raw)
	}
	return Email(value), nil
}

// String returns the string representation.
func (e Email) String() string {
	return string(e)
}

// PersonName is a first name or surname with at least two characters.
type PersonName string

// NewPersonName validates a person name.
func NewPersonName(raw string) (PersonName, error) {
	value := strings.TrimSpace(raw)
	if utf8.RuneCountInString(value) < 2 {
		return "", ErrInvalidName.Withf("invalid name %q", raw)
	}
	return PersonName(value), nil
}

// String returns the string representation.
func (n PersonName) String() string {
	return string(n)
}

// Birthdate is a calendar day that is not in the future.
type Birthdate struct {
	value time.Time
}

// NewBirthdate validates a birthdate against now.
func NewBirthdate(t, now time.Time) (Birthdate, error) {
	day := truncateToUTCDay(t)
	if day.After(truncateToUTCDay(now)) {
		return Birthdate{}, ErrInvalidBirthdate
	}
	return Birthdate{value: day}, nil
}

// Time returns the birthdate at UTC midnight.
func (b Birthdate) Time() time.Time {
	return b.value
}

// ═══════════════════════════════════════════════════════════════════════════
// Academic codes
// ═══════════════════════════════════════════════════════════════════════════

var eightDigits = regexp.MustCompile(`^[0-9]{8}$`)

// CourseCode is an 8-digit course catalog code, e.g. "11701101".
type CourseCode string

// NewCourseCode validates a course code.
func NewCourseCode(raw string) (CourseCode, error) {
	value := strings.TrimSpace(raw)
	if !eightDigits.MatchString(value) {
		return "", ErrInvalidCourseCode.Withf("invalid course code %q", raw)
	}
	return CourseCode(value), nil
}

// String returns the string representation.
func (c CourseCode) String() string {
	return string(c)
}

// StudentCode is an 8-digit student registration code.
type StudentCode string

// NewStudentCode validates a student code.
func NewStudentCode(raw string) (StudentCode, error) {
	value := strings.TrimSpace(raw)
	if !eightDigits.MatchString(value) {
		return "", ErrInvalidStudentCode.Withf("invalid student code %q", raw)
	}
	return StudentCode(value), nil
}

// String returns the string representation.
func (s StudentCode) String() string {
	return string(s)
}

// Credits is the positive number of credits of a course.
type Credits int

// NewCredits validates a credit count.
func NewCredits(n int) (Credits, error) {
	if n <= 0 {
		return 0, ErrInvalidCredits.Withf("invalid credits %d", n)
	}
	return Credits(n), nil
}

// Int returns the underlying value.
func (c Credits) Int() int {
	return int(c)
}

// GroupLetter identifies a group within a course (A-Z).
type GroupLetter string

// NewGroupLetter validates and uppercases a group letter.
func NewGroupLetter(raw string) (GroupLetter, error) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	if len(value) != 1 || value[0] < 'A' || value[0] > 'Z' {
		return "", ErrInvalidGroupLetter.Withf("invalid group letter %q", raw)
	}
	return GroupLetter(value), nil
}

// String returns the string representation.
func (g GroupLetter) String() string {
	return string(g)
}

// ═══════════════════════════════════════════════════════════════════════════
// Numeric values
// ═══════════════════════════════════════════════════════════════════════════

// Score limits on the vigesimal scale.
const (
	MinScore = 0.0
	MaxScore = 20.0
)

// Score is a grade on the 0-20 scale. Decimals are allowed.
type Score float64

// NewScore validates a score.
func NewScore(v float64) (Score, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < MinScore || v > MaxScore {
		return 0, ErrInvalidScore.Withf("invalid score %v", v)
	}
	return Score(v), nil
}

// Float64 returns the underlying value.
func (s Score) Float64() float64 {
	return float64(s)
}

// Percentage is a value in [0, 100]. Decimals are allowed.
type Percentage float64

// NewPercentage validates a percentage.
func NewPercentage(v float64) (Percentage, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 100 {
		return 0, ErrInvalidPercentage.Withf("invalid percentage %v", v)
	}
	return Percentage(v), nil
}

// Float64 returns the underlying value.
func (p Percentage) Float64() float64 {
	return float64(p)
}

// Fraction returns the percentage as a factor in [0, 1].
func (p Percentage) Fraction() float64 {
	return float64(p) / 100
}

// ═══════════════════════════════════════════════════════════════════════════
// Calendar values
// ═══════════════════════════════════════════════════════════════════════════

var semesterRegex = regexp.MustCompile(`^(\d{4})-(I|II)$`)

// AcademicSemester is a semester label such as "2025-I" or "2025-II".
type AcademicSemester string

// NewAcademicSemester validates a semester label.
func NewAcademicSemester(raw string) (AcademicSemester, error) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	if !semesterRegex.MatchString(value) {
		return "", ErrInvalidSemester.Withf("invalid semester %q", raw)
	}
	return AcademicSemester(value), nil
}

// String returns the string representation.
func (s AcademicSemester) String() string {
	return string(s)
}

// Window returns the first and last UTC day of the semester. The first
// semester covers January to June and the second July to December.
func (s AcademicSemester) Window() (start, end time.Time) {
	m := semesterRegex.FindStringSubmatch(string(s))
	if m == nil {
		return time.Time{}, time.Time{}
	}
	year := 0
	for _, r := range m[1] {
		year = year*10 + int(r-'0')
	}
	if m[2] == "I" {
		return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
			time.Date(year, time.June, 30, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(year, time.July, 1, 0, 0, 0, 0, time.UTC),
		time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
}

// Contains reports whether the given day falls inside the semester window.
func (s AcademicSemester) Contains(t time.Time) bool {
	start, end := s.Window()
	if start.IsZero() {
		return false
	}
	day := truncateToUTCDay(t)
	return !day.Before(start) && !day.After(end)
}

const dateLayout = "2006-01-02"

// ReservationDate is a calendar day normalized to UTC midnight.
type ReservationDate struct {
	value time.Time
	iso   string
}

// NewReservationDate parses a YYYY-MM-DD date. Impossible dates such as
// 2024-02-30 are rejected.
func NewReservationDate(raw string) (ReservationDate, error) {
	value := strings.TrimSpace(raw)
	t, err := time.ParseInLocation(dateLayout, value, time.UTC)
	if err != nil || t.Format(dateLayout) != value {
		return ReservationDate{}, ErrInvalidReservationDate.Withf("invalid reservation date %q", raw)
	}
	return ReservationDate{value: t, iso: value}, nil
}

// ReservationDateFromTime normalizes t to its UTC day.
func ReservationDateFromTime(t time.Time) ReservationDate {
	day := truncateToUTCDay(t)
	return ReservationDate{value: day, iso: day.Format(dateLayout)}
}

// Time returns the UTC midnight instant.
func (d ReservationDate) Time() time.Time {
	return d.value
}

// String returns the canonical YYYY-MM-DD form.
func (d ReservationDate) String() string {
	return d.iso
}

// Equal compares two dates by instant.
func (d ReservationDate) Equal(other ReservationDate) bool {
	return d.value.Equal(other.value)
}

// Weekday returns the day of week of the date.
func (d ReservationDate) Weekday() DayOfWeek {
	return DayOfWeekFromTime(d.value)
}

// WithinWindow checks that the date is not before today and at most
// maxDaysAhead days after today.
func (d ReservationDate) WithinWindow(now time.Time, maxDaysAhead int) error {
	today := truncateToUTCDay(now)
	limit := today.AddDate(0, 0, maxDaysAhead)
	if d.value.Before(today) {
		return ErrReservationWindow.Withf("reservation date %s is in the past", d.iso)
	}
	if d.value.After(limit) {
		return ErrReservationWindow.Withf("reservation date %s is more than %d days ahead", d.iso, maxDaysAhead)
	}
	return nil
}

// TimeOfDay is a wall-clock time in 24h format, stored as minutes since midnight.
type TimeOfDay int

var timeOfDayRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])$`)

// NewTimeOfDay parses an HH:MM time.
func NewTimeOfDay(raw string) (TimeOfDay, error) {
	m := timeOfDayRegex.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0, ErrInvalidTimeFormat.Withf("invalid time %q", raw)
	}
	hours := int(m[1][0]-'0')*10 + int(m[1][1]-'0')
	minutes := int(m[2][0]-'0')*10 + int(m[2][1]-'0')
	return TimeOfDay(hours*60 + minutes), nil
}

// Minutes returns minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return int(t)
}

// String returns the HH:MM form.
func (t TimeOfDay) String() string {
	h, m := int(t)/60, int(t)%60
	return string([]byte{byte('0' + h/10), byte('0' + h%10), ':', byte('0' + m/10), byte('0' + m%10)})
}

// Before reports whether t is strictly earlier than other.
func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t < other
}

// After reports whether t is strictly later than other.
func (t TimeOfDay) After(other TimeOfDay) bool {
	return t > other
}

// TimeSlot is a weekly recurring half-open interval [Start, End) on a day.
type TimeSlot struct {
	Day   DayOfWeek
	Start TimeOfDay
	End   TimeOfDay
}

// NewTimeSlot validates a time slot.
func NewTimeSlot(day DayOfWeek, start, end string) (TimeSlot, error) {
	if !day.IsValid() {
		return TimeSlot{}, ErrInvalidDayOfWeek.Withf("invalid day of week %q", day)
	}
	s, err := NewTimeOfDay(start)
	if err != nil {
		return TimeSlot{}, err
	}
	e, err := NewTimeOfDay(end)
	if err != nil {
		return TimeSlot{}, err
	}
	if !s.Before(e) {
		return TimeSlot{}, ErrInvalidTimeSlot.Withf("invalid time slot %s-%s", start, end)
	}
	return TimeSlot{Day: day, Start: s, End: e}, nil
}

// Overlaps reports whether both slots share the day and their half-open
// intervals intersect.
func (s TimeSlot) Overlaps(other TimeSlot) bool {
	return s.Day == other.Day && IntervalsOverlap(s.Start, s.End, other.Start, other.End)
}

// String returns e.g. "MONDAY 10:00-12:00".
func (s TimeSlot) String() string {
	return string(s.Day) + " " + s.Start.String() + "-" + s.End.String()
}

// IntervalsOverlap compares [s1,e1) and [s2,e2).
func IntervalsOverlap(s1, e1, s2, e2 TimeOfDay) bool {
	return s1 < e2 && s2 < e1
}

func truncateToUTCDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// StartOfUTCDay returns midnight UTC of t's day.
func StartOfUTCDay(t time.Time) time.Time {
	return truncateToUTCDay(t)
}
