package command

import (
	"context"
	"fmt"

	"github.com/epis-academic/academic-records/internal/application/uow"
	"github.com/epis-academic/academic-records/internal/domain/lab"
	"github.com/epis-academic/academic-records/internal/domain/schedule"
	"github.com/epis-academic/academic-records/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE LAB GROUP COMMAND
// Opens a lab group for a course together with its weekly sessions. The
// sessions may not collide with the professor's other classes nor with
// anything already booked in the chosen classrooms.
// ══════════════════════════════════════════════════════════════════════════════

// ScheduleInput is one weekly session of a new group.
type ScheduleInput struct {
	ClassroomID string
	Day         string
	StartTime   string
	EndTime     string
}

// CreateLabGroupCommand contains the data to create a lab group.
type CreateLabGroupCommand struct {
	// CourseID is the course the lab belongs to.
	CourseID string

	// ProfessorID is the user who teaches the lab.
	ProfessorID string

	// GroupLetter must be unique among the course's lab groups.
	GroupLetter string

	// Capacity is the number of seats, 1 to 50.
	Capacity int

	// Semester of the weekly sessions, e.g. "2025-I".
	Semester string

	// Schedules are the weekly sessions of the lab.
	Schedules []ScheduleInput
}

// Validate validates the command.
func (c CreateLabGroupCommand) Validate() error {
	if err := required("create_lab_group", "course_id", c.CourseID); err != nil {
		return err
	}
	if err := required("create_lab_group", "professor_id", c.ProfessorID); err != nil {
		return err
	}
	if err := required("create_lab_group", "group_letter", c.GroupLetter); err != nil {
		return err
	}
	return required("create_lab_group", "semester", c.Semester)
}

// CreateLabGroupResult contains the created group.
type CreateLabGroupResult struct {
	LabGroupID  string
	ScheduleIDs []string
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// CreateLabGroupHandler handles the CreateLabGroupCommand.
type CreateLabGroupHandler struct {
	txManager      uow.TxManager
	eventPublisher shared.EventPublisher
	clock          Clock
}

// NewCreateLabGroupHandler creates a new CreateLabGroupHandler.
func NewCreateLabGroupHandler(
	txManager uow.TxManager,
	eventPublisher shared.EventPublisher,
	clock Clock,
) *CreateLabGroupHandler {
	return &CreateLabGroupHandler{
		txManager:      txManager,
		eventPublisher: publisherOrNop(eventPublisher),
		clock:          clock,
	}
}

// Handle executes the create lab group command.
func (h *CreateLabGroupHandler) Handle(ctx context.Context, cmd CreateLabGroupCommand) (*CreateLabGroupResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("create_lab_group: validation failed: %w", err)
	}

	group, err := lab.NewLabGroup(lab.NewLabGroupParams{
		CourseID:    cmd.CourseID,
		ProfessorID: cmd.ProfessorID,
		GroupLetter: cmd.GroupLetter,
		Capacity:    cmd.Capacity,
	})
	if err != nil {
		return nil, fmt.Errorf("create_lab_group: %w", err)
	}
	sessions, err := buildLabSchedules(group.ID, cmd.Semester, cmd.Schedules)
	if err != nil {
		return nil, fmt.Errorf("create_lab_group: %w", err)
	}

	err = h.txManager.WithTx(ctx, func(ctx context.Context, repos uow.Repositories) error {
		c, err := repos.Courses.FindByID(ctx, group.CourseID)
		if err != nil {
			return shared.Internal("course", "FindByID", err)
		}
		if c == nil {
			return shared.ErrCourseNotFound.Withf("course %s not found", group.CourseID)
		}
		if !c.HasLab() {
			return shared.ErrCourseMismatch.Withf("course %s has no lab sessions", c.Code)
		}

		existing, err := repos.LabGroups.FindByCourse(ctx, group.CourseID)
		if err != nil {
			return shared.Internal("lab", "FindByCourse", err)
		}
		for _, g := range existing {
			if g.GroupLetter == group.GroupLetter {
				return shared.ErrDuplicateLabGroup.Withf("course %s already has lab group %s", c.Code, group.GroupLetter)
			}
		}

		if err := checkProfessorTimetable(ctx, repos, group.ProfessorID, sessions); err != nil {
			return err
		}
		if err := checkClassrooms(ctx, repos, sessions); err != nil {
			return err
		}

		if err := repos.LabGroups.Save(ctx, group); err != nil {
			return shared.Internal("lab", "Save", err)
		}
		for _, s := range sessions {
			if err := repos.Schedules.Save(ctx, s); err != nil {
				return shared.Internal("schedule", "Save", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create_lab_group: %w", err)
	}

	_ = h.eventPublisher.Publish(shared.NewLabGroupCreatedEvent(group.ID, group.CourseID, group.GroupLetter, group.Capacity, h.clock.now()))

	result := &CreateLabGroupResult{LabGroupID: group.ID.String()}
	for _, s := range sessions {
		result.ScheduleIDs = append(result.ScheduleIDs, s.ID.String())
	}
	return result, nil
}

func buildLabSchedules(labGroupID shared.ID, semester string, inputs []ScheduleInput) ([]*schedule.ClassSchedule, error) {
	sessions := make([]*schedule.ClassSchedule, 0, len(inputs))
	for _, in := range inputs {
		s, err := schedule.NewClassSchedule(schedule.NewClassScheduleParams{
			ClassroomID: in.ClassroomID,
			Day:         in.Day,
			StartTime:   in.StartTime,
			EndTime:     in.EndTime,
			Semester:    semester,
			LabGroupID:  labGroupID.String(),
		})
		if err != nil {
			return nil, err
		}
		for _, prev := range sessions {
			if schedule.SchedulesOverlap(prev, s) {
				return nil, shared.ErrScheduleConflict.Withf("sessions %s and %s overlap", prev.TimeSlot, s.TimeSlot)
			}
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

// checkProfessorTimetable fails when a new session overlaps a theory or lab
// session the professor already teaches in the same semester.
func checkProfessorTimetable(ctx context.Context, repos uow.Repositories, professorID shared.ID, sessions []*schedule.ClassSchedule) error {
	if len(sessions) == 0 {
		return nil
	}
	taught, err := professorSchedules(ctx, repos, professorID, sessions[0].Semester)
	if err != nil {
		return err
	}
	if conflict := firstOverlap(sessions, taught); conflict != nil {
		return shared.ErrScheduleConflict.Withf("professor already teaches a class overlapping %s", conflict.TimeSlot)
	}
	return nil
}

// professorSchedules returns every weekly session the professor teaches in
// the semester, theory first.
func professorSchedules(ctx context.Context, repos uow.Repositories, professorID shared.ID, semester shared.AcademicSemester) ([]*schedule.ClassSchedule, error) {
	var taught []*schedule.ClassSchedule

	theoryGroups, err := repos.TheoryGroups.FindByProfessorAndSemester(ctx, professorID, semester)
	if err != nil {
		return nil, shared.Internal("course", "FindByProfessorAndSemester", err)
	}
	for _, g := range theoryGroups {
		s, err := repos.Schedules.FindByTheoryGroup(ctx, g.ID)
		if err != nil {
			return nil, shared.Internal("schedule", "FindByTheoryGroup", err)
		}
		taught = append(taught, s...)
	}

	labGroups, err := repos.LabGroups.FindByProfessor(ctx, professorID)
	if err != nil {
		return nil, shared.Internal("lab", "FindByProfessor", err)
	}
	for _, g := range labGroups {
		s, err := repos.Schedules.FindByLabGroup(ctx, g.ID)
		if err != nil {
			return nil, shared.Internal("schedule", "FindByLabGroup", err)
		}
		for _, session := range s {
			if session.Semester == semester {
				taught = append(taught, session)
			}
		}
	}
	return taught, nil
}

// checkClassrooms fails when a session's classroom does not exist or is
// already booked by a fixed class or a reservation at that time.
func checkClassrooms(ctx context.Context, repos uow.Repositories, sessions []*schedule.ClassSchedule) error {
	for _, s := range sessions {
		room, err := repos.Classrooms.FindByID(ctx, s.ClassroomID)
		if err != nil {
			return shared.Internal("schedule", "FindClassroom", err)
		}
		if room == nil {
			return shared.ErrClassroomNotFound.Withf("classroom %s not found", s.ClassroomID)
		}
		fixed, err := repos.Schedules.FindByClassroomAndSemester(ctx, s.ClassroomID, s.Semester)
		if err != nil {
			return shared.Internal("schedule", "FindByClassroomAndSemester", err)
		}
		reserved, err := repos.Reservations.FindByClassroomAndSemester(ctx, s.ClassroomID, s.Semester)
		if err != nil {
			return shared.Internal("schedule", "FindReservationsByClassroom", err)
		}
		candidate := schedule.WeeklyCandidate(s.ClassroomID, s.TimeSlot, s.Semester)
		if err := candidate.CheckClassroom(fixed, reserved); err != nil {
			return err
		}
	}
	return nil
}
