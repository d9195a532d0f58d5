package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/epis-academic/academic-records/internal/domain/attendance"
	"github.com/epis-academic/academic-records/internal/domain/shared"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5"
)

var attendanceColumns = columns("id", "enrollment_id", "class_type", "date", "status")

const attendanceSelect = `SELECT id, enrollment_id, class_type, date, status FROM attendance `

// AttendanceRepository implements attendance.Repository for PostgreSQL.
type AttendanceRepository struct {
	q Querier
}

// NewAttendanceRepository creates a new AttendanceRepository.
func NewAttendanceRepository(q Querier) *AttendanceRepository {
	return &AttendanceRepository{q: q}
}

// FindByID returns the record or nil.
func (r *AttendanceRepository) FindByID(ctx context.Context, id shared.ID) (*attendance.Attendance, error) {
	a, err := queryOne(ctx, r.q, scanAttendance, attendanceSelect+"WHERE id = $1", id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}
	return a, nil
}

// FindByEnrollmentID returns the records of an enrollment ordered by date.
func (r *AttendanceRepository) FindByEnrollmentID(ctx context.Context, enrollmentID shared.ID) ([]*attendance.Attendance, error) {
	records, err := queryAll(ctx, r.q, scanAttendance,
		attendanceSelect+"WHERE enrollment_id = $1 ORDER BY date, class_type", enrollmentID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	return records, nil
}

// FindByEnrollmentDateAndType returns the record of one session or nil.
func (r *AttendanceRepository) FindByEnrollmentDateAndType(ctx context.Context, enrollmentID shared.ID, day time.Time, classType shared.ClassType) (*attendance.Attendance, error) {
	a, err := queryOne(ctx, r.q, scanAttendance,
		attendanceSelect+"WHERE enrollment_id = $1 AND date = $2 AND class_type = $3",
		enrollmentID.String(), shared.StartOfUTCDay(day), string(classType))
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance by session: %w", err)
	}
	return a, nil
}

// FindManyByEnrollmentsDateAndType returns the records of one session for
// several enrollments.
func (r *AttendanceRepository) FindManyByEnrollmentsDateAndType(ctx context.Context, enrollmentIDs []shared.ID, day time.Time, classType shared.ClassType) ([]*attendance.Attendance, error) {
	if len(enrollmentIDs) == 0 {
		return []*attendance.Attendance{}, nil
	}
	sql, args, err := builder.From("attendance").
		Select(attendanceColumns...).
		Where(
			goqu.C("enrollment_id").In(idStrings(enrollmentIDs)),
			goqu.C("date").Eq(shared.StartOfUTCDay(day)),
			goqu.C("class_type").Eq(string(classType)),
		).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build attendance query: %w", err)
	}
	records, err := queryAll(ctx, r.q, scanAttendance, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance by session: %w", err)
	}
	return records, nil
}

// SaveMany upserts the records by (enrollment, class type, date).
func (r *AttendanceRepository) SaveMany(ctx context.Context, records []*attendance.Attendance) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([]interface{}, len(records))
	for i, a := range records {
		rows[i] = goqu.Record{
			"id":            a.ID.String(),
			"enrollment_id": a.EnrollmentID.String(),
			"class_type":    string(a.ClassType),
			"date":          shared.StartOfUTCDay(a.Date),
			"status":        string(a.Status),
		}
	}
	sql, args, err := builder.Insert("attendance").
		Rows(rows...).
		OnConflict(goqu.DoUpdate("enrollment_id, class_type, date", goqu.Record{"status": goqu.L("EXCLUDED.status")})).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build attendance upsert: %w", err)
	}
	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to save attendance: %w", err)
	}
	return nil
}

func scanAttendance(row pgx.Row) (*attendance.Attendance, error) {
	var id, enrollmentID, classType, status string
	a := &attendance.Attendance{}
	if err := row.Scan(&id, &enrollmentID, &classType, &a.Date, &status); err != nil {
		return nil, err
	}
	a.ID = shared.ID(id)
	a.EnrollmentID = shared.ID(enrollmentID)
	a.ClassType = shared.ClassType(classType)
	a.Status = shared.AttendanceStatus(status)
	a.Date = shared.StartOfUTCDay(a.Date)
	return a, nil
}
