// Package application assembles the command and query handlers of the
// academic records service from their ports.
package application

import (
	"log/slog"
	"time"

	"github.com/epis-academic/academic-records/internal/application/command"
	"github.com/epis-academic/academic-records/internal/application/query"
	"github.com/epis-academic/academic-records/internal/application/uow"
	"github.com/epis-academic/academic-records/internal/domain/shared"
	"github.com/epis-academic/academic-records/internal/domain/sysconfig"
)

// Dependencies are the ports the handlers are built from.
type Dependencies struct {
	// TxManager runs write use cases.
	TxManager uow.TxManager

	// Repositories serve read-only queries outside a transaction.
	Repositories uow.Repositories

	Settings          sysconfig.Store
	EventPublisher    shared.EventPublisher
	ReservationPolicy command.ReservationPolicy
	Clock             command.Clock
	Logger            *slog.Logger
}

// Commands groups the write use cases.
type Commands struct {
	RegisterUser                *command.RegisterUserHandler
	CreateLabGroup              *command.CreateLabGroupHandler
	UpdateLabGroupCapacity      *command.UpdateLabGroupCapacityHandler
	EnrollInLabGroup            *command.EnrollInLabGroupHandler
	EnrollInLabGroups           *command.EnrollInLabGroupsHandler
	SetEnrollmentPeriod         *command.SetEnrollmentPeriodHandler
	ConfigureGradeWeights       *command.ConfigureGradeWeightsHandler
	SaveBulkGrades              *command.SaveBulkGradesHandler
	TakeAttendance              *command.TakeAttendanceHandler
	UpdateTopicStatus           *command.UpdateTopicStatusHandler
	SaveGroupEvidence           *command.SaveGroupEvidenceHandler
	CreateRoomReservation       *command.CreateRoomReservationHandler
	CancelRoomReservation       *command.CancelRoomReservationHandler
	CompleteElapsedReservations *command.CompleteElapsedReservationsHandler
}

// Queries groups the read use cases.
type Queries struct {
	GetAvailableLabGroups     *query.GetAvailableLabGroupsHandler
	GetAllLabGroups           *query.GetAllLabGroupsHandler
	GetStudentsInLab          *query.GetStudentsInLabHandler
	GetStudentGrades          *query.GetStudentGradesHandler
	GetAccreditationDashboard *query.GetAccreditationDashboardHandler
	GetEnrollmentPeriod       *query.GetEnrollmentPeriodHandler
	GetAttendanceReport       *query.GetStudentAttendanceReportHandler
	GetCourseProgress         *query.GetCourseProgressHandler
	GetStudentSchedule        *query.GetStudentScheduleHandler
	GetTeacherSchedule        *query.GetTeacherScheduleHandler
	GetClassroomSchedule      *query.GetClassroomScheduleHandler
}

// Handlers is the full set of use cases.
type Handlers struct {
	Commands Commands
	Queries  Queries
}

// NewHandlers wires every handler. A zero ReservationPolicy falls back to
// command.DefaultReservationPolicy.
func NewHandlers(deps Dependencies) *Handlers {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.ReservationPolicy == (command.ReservationPolicy{}) {
		deps.ReservationPolicy = command.DefaultReservationPolicy
	}

	tx, events, clock := deps.TxManager, deps.EventPublisher, deps.Clock
	repos := deps.Repositories

	var now func() time.Time
	if clock != nil {
		now = clock
	}

	return &Handlers{
		Commands: Commands{
			RegisterUser:                command.NewRegisterUserHandler(tx, clock),
			CreateLabGroup:              command.NewCreateLabGroupHandler(tx, events, clock),
			UpdateLabGroupCapacity:      command.NewUpdateLabGroupCapacityHandler(tx),
			EnrollInLabGroup:            command.NewEnrollInLabGroupHandler(tx, deps.Settings, events, clock),
			EnrollInLabGroups:           command.NewEnrollInLabGroupsHandler(tx, deps.Settings, events, deps.Logger, clock),
			SetEnrollmentPeriod:         command.NewSetEnrollmentPeriodHandler(deps.Settings),
			ConfigureGradeWeights:       command.NewConfigureGradeWeightsHandler(tx),
			SaveBulkGrades:              command.NewSaveBulkGradesHandler(tx, events, clock),
			TakeAttendance:              command.NewTakeAttendanceHandler(tx, events, clock),
			UpdateTopicStatus:           command.NewUpdateTopicStatusHandler(tx),
			SaveGroupEvidence:           command.NewSaveGroupEvidenceHandler(tx),
			CreateRoomReservation:       command.NewCreateRoomReservationHandler(tx, deps.ReservationPolicy, events, clock),
			CancelRoomReservation:       command.NewCancelRoomReservationHandler(tx, events, clock),
			CompleteElapsedReservations: command.NewCompleteElapsedReservationsHandler(tx, events, clock),
		},
		Queries: Queries{
			GetAvailableLabGroups: query.NewGetAvailableLabGroupsHandler(
				repos.Enrollments, repos.TheoryGroups, repos.LabGroups, repos.Schedules, repos.Classrooms),
			GetAllLabGroups: query.NewGetAllLabGroupsHandler(
				repos.LabGroups, repos.Courses, repos.Schedules, repos.Classrooms),
			GetStudentsInLab: query.NewGetStudentsInLabHandler(
				repos.LabGroups, repos.Enrollments, repos.StudentProfiles, repos.Users),
			GetStudentGrades: query.NewGetStudentGradesHandler(
				repos.Enrollments, repos.TheoryGroups, repos.Courses, repos.Users, repos.Grades, repos.GradeWeights),
			GetAccreditationDashboard: query.NewGetAccreditationDashboardHandler(
				repos.Authorizer(), repos.Enrollments, repos.Grades, repos.GradeWeights, repos.Portfolios),
			GetEnrollmentPeriod: query.NewGetEnrollmentPeriodHandler(deps.Settings, now),
			GetAttendanceReport: query.NewGetStudentAttendanceReportHandler(
				repos.Enrollments, repos.TheoryGroups, repos.Courses, repos.Attendance, repos.Schedules, repos.Classrooms),
			GetCourseProgress: query.NewGetCourseProgressHandler(repos.Enrollments, repos.Contents),
			GetStudentSchedule: query.NewGetStudentScheduleHandler(
				repos.Enrollments, repos.TheoryGroups, repos.LabGroups, repos.Schedules, repos.Courses, repos.Classrooms, repos.Users),
			GetTeacherSchedule: query.NewGetTeacherScheduleHandler(
				repos.TheoryGroups, repos.LabGroups, repos.Schedules, repos.Reservations, repos.Courses, repos.Classrooms, repos.Users, now),
			GetClassroomSchedule: query.NewGetClassroomScheduleHandler(
				repos.Classrooms, repos.Schedules, repos.Reservations, repos.TheoryGroups, repos.LabGroups, repos.Courses, repos.Users),
		},
	}
}
