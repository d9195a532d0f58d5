package command

import (
	"context"
	"fmt"
	"time"

	"github.com/epis-academic/academic-records/internal/application/uow"
	"github.com/epis-academic/academic-records/internal/domain/enrollment"
	"github.com/epis-academic/academic-records/internal/domain/lab"
	"github.com/epis-academic/academic-records/internal/domain/schedule"
	"github.com/epis-academic/academic-records/internal/domain/shared"
	"github.com/epis-academic/academic-records/internal/domain/sysconfig"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENROLL IN LAB GROUP COMMAND
// Places a student's theory enrollment into one lab group of the same course.
// The seat is taken under a row lock on the lab group so two concurrent
// requests can never push the counter past the capacity.
// ══════════════════════════════════════════════════════════════════════════════

// EnrollInLabGroupCommand contains the data to enroll in a lab group.
type EnrollInLabGroupCommand struct {
	// StudentProfileID is the student acting on their own enrollment.
	StudentProfileID string

	// EnrollmentID is the theory enrollment that receives the lab.
	EnrollmentID string

	// LabGroupID is the chosen lab group.
	LabGroupID string
}

// Validate validates the command.
func (c EnrollInLabGroupCommand) Validate() error {
	if err := required("enroll_in_lab_group", "student_profile_id", c.StudentProfileID); err != nil {
		return err
	}
	if err := required("enroll_in_lab_group", "enrollment_id", c.EnrollmentID); err != nil {
		return err
	}
	return required("enroll_in_lab_group", "lab_group_id", c.LabGroupID)
}

// EnrollInLabGroupResult contains the outcome of a lab enrollment.
type EnrollInLabGroupResult struct {
	// EnrollmentID is the enrollment that now carries the lab.
	EnrollmentID string

	// LabGroupID is the lab group the student was placed in.
	LabGroupID string

	// CurrentEnrollment is the seat count after the enrollment.
	CurrentEnrollment int

	// Capacity is the lab group capacity.
	Capacity int
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// EnrollInLabGroupHandler handles the EnrollInLabGroupCommand.
type EnrollInLabGroupHandler struct {
	txManager      uow.TxManager
	settings       sysconfig.Store
	eventPublisher shared.EventPublisher
	clock          Clock
}

// NewEnrollInLabGroupHandler creates a new EnrollInLabGroupHandler.
func NewEnrollInLabGroupHandler(
	txManager uow.TxManager,
	settings sysconfig.Store,
	eventPublisher shared.EventPublisher,
	clock Clock,
) *EnrollInLabGroupHandler {
	return &EnrollInLabGroupHandler{
		txManager:      txManager,
		settings:       settings,
		eventPublisher: publisherOrNop(eventPublisher),
		clock:          clock,
	}
}

// Handle executes the enroll in lab group command.
func (h *EnrollInLabGroupHandler) Handle(ctx context.Context, cmd EnrollInLabGroupCommand) (*EnrollInLabGroupResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("enroll_in_lab_group: validation failed: %w", err)
	}
	sel, err := parseSelection(cmd.StudentProfileID, cmd.EnrollmentID, cmd.LabGroupID)
	if err != nil {
		return nil, fmt.Errorf("enroll_in_lab_group: %w", err)
	}

	now := h.clock.now()
	if err := ensureEnrollmentOpen(ctx, h.settings, now); err != nil {
		return nil, fmt.Errorf("enroll_in_lab_group: %w", err)
	}

	var placed *placement
	err = h.txManager.WithTx(ctx, func(ctx context.Context, repos uow.Repositories) error {
		var err error
		placed, err = enrollInLab(ctx, repos, sel)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("enroll_in_lab_group: %w", err)
	}

	_ = h.eventPublisher.Publish(placed.event(now))

	return placed.result(), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SHARED LAB ENROLLMENT STEPS
// ══════════════════════════════════════════════════════════════════════════════

// labSelection is a parsed (student, enrollment, lab group) triple.
type labSelection struct {
	studentID    shared.ID
	enrollmentID shared.ID
	labGroupID   shared.ID
}

func parseSelection(studentID, enrollmentID, labGroupID string) (labSelection, error) {
	var (
		sel labSelection
		err error
	)
	if sel.studentID, err = shared.ParseID(studentID); err != nil {
		return sel, err
	}
	if sel.enrollmentID, err = shared.ParseID(enrollmentID); err != nil {
		return sel, err
	}
	if sel.labGroupID, err = shared.ParseID(labGroupID); err != nil {
		return sel, err
	}
	return sel, nil
}

// placement is a committed lab enrollment.
type placement struct {
	enrollment *enrollment.Enrollment
	group      *lab.LabGroup
}

func (p *placement) result() *EnrollInLabGroupResult {
	return &EnrollInLabGroupResult{
		EnrollmentID:      p.enrollment.ID.String(),
		LabGroupID:        p.group.ID.String(),
		CurrentEnrollment: p.group.CurrentEnrollment,
		Capacity:          p.group.Capacity,
	}
}

func (p *placement) event(now time.Time) shared.Event {
	return shared.NewLabEnrollmentCompletedEvent(p.group.ID, p.enrollment.ID, p.enrollment.StudentID, p.group.CurrentEnrollment, now)
}

func ensureEnrollmentOpen(ctx context.Context, settings sysconfig.Store, now time.Time) error {
	period, err := sysconfig.LoadEnrollmentPeriod(ctx, settings)
	if err != nil {
		return err
	}
	return period.Ensure(now)
}

// enrollInLab runs every lab enrollment rule against repos and persists the
// seat and the assignment. It must run inside a transaction. The enrollment
// row is locked before the lab group row, so two requests for the same
// enrollment cannot both see it without a lab.
func enrollInLab(ctx context.Context, repos uow.Repositories, sel labSelection) (*placement, error) {
	enr, err := repos.Enrollments.FindByIDForUpdate(ctx, sel.enrollmentID)
	if err != nil {
		return nil, shared.Internal("enrollment", "FindByIDForUpdate", err)
	}
	if enr == nil {
		return nil, shared.ErrEnrollmentNotFound.Withf("enrollment %s not found", sel.enrollmentID)
	}
	if !enr.BelongsTo(sel.studentID) {
		return nil, shared.ErrNotAuthorized.Withf("enrollment %s does not belong to student %s", enr.ID, sel.studentID)
	}
	if enr.HasLab() {
		return nil, shared.ErrStudentAlreadyEnrolledInLab.Withf("enrollment %s already has a lab group", enr.ID)
	}

	group, err := repos.LabGroups.FindByIDForUpdate(ctx, sel.labGroupID)
	if err != nil {
		return nil, shared.Internal("lab", "FindByIDForUpdate", err)
	}
	if group == nil {
		return nil, shared.ErrLabGroupNotFound.Withf("lab group %s not found", sel.labGroupID)
	}
	if group.IsFull() {
		return nil, shared.ErrLabGroupFull.Withf("lab group %s is full (%d/%d)", group.GroupLetter, group.CurrentEnrollment, group.Capacity)
	}

	theory, err := repos.TheoryGroups.FindByID(ctx, enr.TheoryGroupID)
	if err != nil {
		return nil, shared.Internal("course", "FindTheoryGroup", err)
	}
	if theory == nil {
		return nil, shared.ErrTheoryGroupNotFound.Withf("theory group %s not found", enr.TheoryGroupID)
	}
	if err := enrollment.CheckLabEligibility(enr, theory.CourseID, group); err != nil {
		return nil, err
	}

	if err := checkStudentTimetable(ctx, repos, sel.studentID, group.ID); err != nil {
		return nil, err
	}

	if err := enrollment.EnrollInLab(enr, theory.CourseID, group); err != nil {
		return nil, err
	}
	if err := repos.LabGroups.Save(ctx, group); err != nil {
		return nil, shared.Internal("lab", "Save", err)
	}
	if err := repos.Enrollments.Save(ctx, enr); err != nil {
		return nil, shared.Internal("enrollment", "Save", err)
	}
	return &placement{enrollment: enr, group: group}, nil
}

// checkStudentTimetable fails when a session of the lab group overlaps a
// session the student already attends in the same semester.
func checkStudentTimetable(ctx context.Context, repos uow.Repositories, studentID, labGroupID shared.ID) error {
	labSchedules, err := repos.Schedules.FindByLabGroup(ctx, labGroupID)
	if err != nil {
		return shared.Internal("schedule", "FindByLabGroup", err)
	}
	if len(labSchedules) == 0 {
		return nil
	}

	enrollments, err := repos.Enrollments.FindByStudent(ctx, studentID)
	if err != nil {
		return shared.Internal("enrollment", "FindByStudent", err)
	}
	for _, e := range enrollments {
		taken, err := repos.Schedules.FindByTheoryGroup(ctx, e.TheoryGroupID)
		if err != nil {
			return shared.Internal("schedule", "FindByTheoryGroup", err)
		}
		if e.HasLab() {
			labTaken, err := repos.Schedules.FindByLabGroup(ctx, *e.LabGroupID)
			if err != nil {
				return shared.Internal("schedule", "FindByLabGroup", err)
			}
			taken = append(taken, labTaken...)
		}
		if conflict := firstOverlap(labSchedules, taken); conflict != nil {
			return shared.ErrScheduleConflict.Withf("lab session on %s overlaps a class the student already attends", conflict.TimeSlot)
		}
	}
	return nil
}

// firstOverlap returns the first schedule of wanted that overlaps any of taken.
func firstOverlap(wanted, taken []*schedule.ClassSchedule) *schedule.ClassSchedule {
	for _, w := range wanted {
		for _, t := range taken {
			if schedule.SchedulesOverlap(w, t) {
				return w
			}
		}
	}
	return nil
}
