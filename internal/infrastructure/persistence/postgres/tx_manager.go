package postgres

import (
	"context"
	"log/slog"

	"github.com/epis-academic/academic-records/internal/application/uow"

	"github.com/jackc/pgx/v5"
)

// NewRepositories binds every repository to q. Pass the Connection for
// plain reads and a pgx.Tx for work that must commit atomically.
func NewRepositories(q Querier) uow.Repositories {
	return uow.Repositories{
		Courses:         NewCourseRepository(q),
		TheoryGroups:    NewTheoryGroupRepository(q),
		LabGroups:       NewLabGroupRepository(q),
		Enrollments:     NewEnrollmentRepository(q),
		Grades:          NewGradeRepository(q),
		GradeWeights:    NewWeightRepository(q),
		Schedules:       NewClassScheduleRepository(q),
		Classrooms:      NewClassroomRepository(q),
		Reservations:    NewReservationRepository(q),
		Attendance:      NewAttendanceRepository(q),
		Contents:        NewContentRepository(q),
		Portfolios:      NewPortfolioRepository(q),
		Users:           NewUserRepository(q),
		StudentProfiles: NewStudentProfileRepository(q),
		TeacherProfiles: NewTeacherProfileRepository(q),
	}
}

// TxManager implements uow.TxManager with READ COMMITTED transactions.
// Row locks taken through the FindByIDForUpdate methods are held until the
// callback returns.
type TxManager struct {
	conn   *Connection
	opts   TxOptions
	logger *slog.Logger
}

// NewTxManager creates a new TxManager.
func NewTxManager(conn *Connection, logger *slog.Logger) *TxManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &TxManager{
		conn:   conn,
		opts:   DefaultTxOptions(),
		logger: logger,
	}
}

// WithTx implements uow.TxManager.
func (m *TxManager) WithTx(ctx context.Context, fn func(ctx context.Context, repos uow.Repositories) error) error {
	err := m.conn.WithTx(ctx, m.opts, func(tx pgx.Tx) error {
		return fn(ctx, NewRepositories(tx))
	})
	if err != nil {
		m.logger.Debug("transaction rolled back", "error", err)
	}
	return err
}
