package shared_test

import (
	"math"
	"testing"
	"time"

	"github.com/epis-academic/academic-records/internal/domain/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	id := shared.NewID()

	parsed, err := shared.ParseID("  " + id.String() + " ")
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = shared.ParseID("not-a-uuid")
	assert.ErrorIs(t, err, shared.ErrInvalidID)
	assert.True(t, shared.IsValidation(err))

	assert.Panics(t, func() { shared.MustParseID("") })
}

type entity struct{ id shared.ID }

func (e entity) Identity() shared.ID { return e.id }

func TestSameIdentity(t *testing.T) {
	id := shared.NewID()

	assert.True(t, shared.SameIdentity(entity{id}, entity{id}))
	assert.False(t, shared.SameIdentity(entity{id}, entity{shared.NewID()}))
	assert.False(t, shared.SameIdentity(entity{}, entity{}), "unsaved entities are never the same")
	assert.False(t, shared.SameIdentity(nil, entity{id}))
}

func TestNewEmail(t *testing.T) {
	email, err := shared.NewEmail("  Ana.Quispe@UNSA.edu.pe ")
	require.NoError(t, err)
	assert.Equal(t, shared.Email("ana.quispe@unsa.edu.pe"), email)

	for _, raw := range []string{"", "ana", "ana@", "ana@unsa", "ana quispe@unsa.edu.pe", "@unsa.edu.pe"} {
		_, err := shared.NewEmail(raw)
		assert.ErrorIs(t, err, shared.ErrInvalidEmail, raw)
	}
}

func TestNewPersonName(t *testing.T) {
	name, err := shared.NewPersonName("  Ñu ")
	require.NoError(t, err)
	assert.Equal(t, "Ñu", name.String())

	_, err = shared.NewPersonName(" A ")
	assert.ErrorIs(t, err, shared.ErrInvalidName)
}

func TestNewBirthdate(t *testing.T) {
	now := time.Date(2025, time.September, 10, 8, 0, 0, 0, time.UTC)

	b, err := shared.NewBirthdate(time.Date(2025, time.September, 10, 23, 0, 0, 0, time.UTC), now)
	require.NoError(t, err, "today is not in the future")
	assert.Equal(t, time.Date(2025, time.September, 10, 0, 0, 0, 0, time.UTC), b.Time())

	_, err = shared.NewBirthdate(now.AddDate(0, 0, 1), now)
	assert.ErrorIs(t, err, shared.ErrInvalidBirthdate)
}

func TestEightDigitCodes(t *testing.T) {
	tests := []struct {
		raw   string
		valid bool
	}{
		{"20231234", true},
		{" 20231234 ", true},
		{"2023123", false},
		{"202312345", false},
		{"2023123a", false},
		{"２０２３１２３４", false},
	}

	for _, tt := range tests {
		_, courseErr := shared.NewCourseCode(tt.raw)
		_, studentErr := shared.NewStudentCode(tt.raw)
		if tt.valid {
			assert.NoError(t, courseErr, tt.raw)
			assert.NoError(t, studentErr, tt.raw)
			continue
		}
		assert.ErrorIs(t, courseErr, shared.ErrInvalidCourseCode, tt.raw)
		assert.ErrorIs(t, studentErr, shared.ErrInvalidStudentCode, tt.raw)
	}
}

func TestNewCredits(t *testing.T) {
	c, err := shared.NewCredits(4)
	require.NoError(t, err)
	assert.Equal(t, 4, c.Int())

	for _, n := range []int{0, -3} {
		_, err := shared.NewCredits(n)
		assert.ErrorIs(t, err, shared.ErrInvalidCredits)
	}
}

func TestNewGroupLetter(t *testing.T) {
	g, err := shared.NewGroupLetter(" b ")
	require.NoError(t, err)
	assert.Equal(t, "B", g.String())

	for _, raw := range []string{"", "AB", "1", "Ñ"} {
		_, err := shared.NewGroupLetter(raw)
		assert.ErrorIs(t, err, shared.ErrInvalidGroupLetter, raw)
	}
}

func TestScoreAndPercentageBounds(t *testing.T) {
	tests := []struct {
		name      string
		value     float64
		scoreOK   bool
		percentOK bool
	}{
		{name: "zero", value: 0, scoreOK: true, percentOK: true},
		{name: "decimal", value: 15.75, scoreOK: true, percentOK: true},
		{name: "score max", value: 20, scoreOK: true, percentOK: true},
		{name: "above score max", value: 20.01, percentOK: true},
		{name: "percent max", value: 100, percentOK: true},
		{name: "above percent max", value: 100.5},
		{name: "negative", value: -0.01},
		{name: "NaN", value: math.NaN()},
		{name: "infinity", value: math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := shared.NewScore(tt.value)
			if tt.scoreOK {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, shared.ErrInvalidScore)
			}

			_, err = shared.NewPercentage(tt.value)
			if tt.percentOK {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, shared.ErrInvalidPercentage)
			}
		})
	}
}

func TestAcademicSemester(t *testing.T) {
	first, err := shared.NewAcademicSemester("2025-i")
	require.NoError(t, err)
	assert.Equal(t, "2025-I", first.String())

	start, end := first.Window()
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC), end)

	second, err := shared.NewAcademicSemester("2025-II")
	require.NoError(t, err)
	assert.True(t, second.Contains(time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, second.Contains(time.Date(2025, time.December, 31, 23, 59, 0, 0, time.UTC)))
	assert.False(t, second.Contains(time.Date(2025, time.June, 30, 12, 0, 0, 0, time.UTC)))

	for _, raw := range []string{"2025", "2025-III", "25-I", "2025-1"} {
		_, err := shared.NewAcademicSemester(raw)
		assert.ErrorIs(t, err, shared.ErrInvalidSemester, raw)
	}
}

func TestNewReservationDate(t *testing.T) {
	d, err := shared.NewReservationDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", d.String())
	assert.Equal(t, shared.Thursday, d.Weekday())
	assert.True(t, d.Equal(shared.ReservationDateFromTime(time.Date(2024, time.February, 29, 18, 30, 0, 0, time.UTC))))

	for _, raw := range []string{"2024-02-30", "2025-02-29", "2025-13-01", "2025-9-1", "01/09/2025", ""} {
		_, err := shared.NewReservationDate(raw)
		assert.ErrorIs(t, err, shared.ErrInvalidReservationDate, raw)
	}
}

func TestReservationDate_WithinWindow(t *testing.T) {
	now := time.Date(2025, time.September, 10, 22, 0, 0, 0, time.UTC)

	tests := []struct {
		date string
		ok   bool
	}{
		{"2025-09-10", true},
		{"2025-09-24", true},
		{"2025-09-25", false},
		{"2025-09-09", false},
	}

	for _, tt := range tests {
		d, err := shared.NewReservationDate(tt.date)
		require.NoError(t, err)

		err = d.WithinWindow(now, 14)
		if tt.ok {
			assert.NoError(t, err, tt.date)
		} else {
			assert.ErrorIs(t, err, shared.ErrReservationWindow, tt.date)
		}
	}
}

func TestNewTimeOfDay(t *testing.T) {
	tod, err := shared.NewTimeOfDay("07:05")
	require.NoError(t, err)
	assert.Equal(t, 425, tod.Minutes())
	assert.Equal(t, "07:05", tod.String())

	for _, raw := range []string{"7:05", "24:00", "12:60", "noon", "12:00:00"} {
		_, err := shared.NewTimeOfDay(raw)
		assert.ErrorIs(t, err, shared.ErrInvalidTimeFormat, raw)
	}
}

func TestTimeSlot(t *testing.T) {
	slot := func(day shared.DayOfWeek, start, end string) shared.TimeSlot {
		s, err := shared.NewTimeSlot(day, start, end)
		require.NoError(t, err)
		return s
	}
	base := slot(shared.Monday, "10:00", "12:00")

	tests := []struct {
		name  string
		other shared.TimeSlot
		want  bool
	}{
		{name: "same slot", other: base, want: true},
		{name: "partial overlap", other: slot(shared.Monday, "11:00", "13:00"), want: true},
		{name: "contained", other: slot(shared.Monday, "10:30", "11:00"), want: true},
		{name: "touching end", other: slot(shared.Monday, "12:00", "14:00")},
		{name: "touching start", other: slot(shared.Monday, "08:00", "10:00")},
		{name: "other day", other: slot(shared.Tuesday, "10:00", "12:00")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Overlaps(tt.other))
			assert.Equal(t, tt.want, tt.other.Overlaps(base), "overlap is symmetric")
		})
	}

	assert.Equal(t, "MONDAY 10:00-12:00", base.String())
}

func TestNewTimeSlot_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		day     shared.DayOfWeek
		start   string
		end     string
		wantErr error
	}{
		{name: "empty range", day: shared.Monday, start: "10:00", end: "10:00", wantErr: shared.ErrInvalidTimeSlot},
		{name: "reversed", day: shared.Monday, start: "12:00", end: "10:00", wantErr: shared.ErrInvalidTimeSlot},
		{name: "unknown day", day: "FUNDAY", start: "10:00", end: "12:00", wantErr: shared.ErrInvalidDayOfWeek},
		{name: "bad time", day: shared.Monday, start: "10h", end: "12:00", wantErr: shared.ErrInvalidTimeFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := shared.NewTimeSlot(tt.day, tt.start, tt.end)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseEnums(t *testing.T) {
	day, err := shared.ParseDayOfWeek(" friday ")
	require.NoError(t, err)
	assert.Equal(t, shared.Friday, day)

	kind, err := shared.ParseEvidenceKind("SYLLABUS")
	require.NoError(t, err)
	assert.Equal(t, shared.EvidenceSyllabus, kind)

	_, err = shared.ParseEvidenceKind("transcript")
	assert.ErrorIs(t, err, shared.ErrInvalidEvidenceKind)

	_, err = shared.ParseGradeType("PARTIAL_4")
	assert.ErrorIs(t, err, shared.ErrInvalidGradeType)

	_, err = shared.ParseAttendanceStatus("LATE")
	assert.ErrorIs(t, err, shared.ErrInvalidAttendanceStatus)

	assert.Equal(t, shared.Wednesday, shared.DayOfWeekFromTime(time.Date(2025, time.September, 10, 23, 0, 0, 0, time.UTC)))

	assert.Equal(t, 0, shared.Monday.Ordinal())
	assert.Equal(t, 6, shared.Sunday.Ordinal())
	assert.Equal(t, len(shared.Week), shared.DayOfWeek("FUNDAY").Ordinal())
}
