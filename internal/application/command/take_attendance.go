package command

import (
	"context"
	"fmt"
	"time"

	"github.com/epis-academic/academic-records/internal/application/uow"
	"github.com/epis-academic/academic-records/internal/domain/attendance"
	"github.com/epis-academic/academic-records/internal/domain/enrollment"
	"github.com/epis-academic/academic-records/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// TAKE ATTENDANCE COMMAND
// Records presence for one session of a theory or lab group. Records that
// already exist for the same enrollment, class type and day are updated.
// ══════════════════════════════════════════════════════════════════════════════

// AttendanceInput is the status of one enrollment.
type AttendanceInput struct {
	EnrollmentID string
	Status       string
}

// TakeAttendanceCommand contains one session roll call.
type TakeAttendanceCommand struct {
	// TeacherID must own the group.
	TeacherID string

	// GroupID is a theory group or a lab group depending on ClassType.
	GroupID string

	// ClassType is THEORY or LAB.
	ClassType string

	// Date of the session. Only the UTC day is kept.
	Date time.Time

	// Records lists each enrollment once. A repeated enrollment keeps its
	// last status.
	Records []AttendanceInput
}

// Validate validates the command.
func (c TakeAttendanceCommand) Validate() error {
	if err := required("take_attendance", "teacher_id", c.TeacherID); err != nil {
		return err
	}
	if err := required("take_attendance", "group_id", c.GroupID); err != nil {
		return err
	}
	if c.Date.IsZero() {
		return invalid("take_attendance", "date is required")
	}
	if len(c.Records) == 0 {
		return invalid("take_attendance", "at least one record is required")
	}
	return nil
}

// TakeAttendanceResult summarizes the saved records.
type TakeAttendanceResult struct {
	Saved   int
	Created int
	Updated int
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// TakeAttendanceHandler handles the TakeAttendanceCommand.
type TakeAttendanceHandler struct {
	txManager      uow.TxManager
	eventPublisher shared.EventPublisher
	clock          Clock
}

// NewTakeAttendanceHandler creates a new TakeAttendanceHandler.
func NewTakeAttendanceHandler(
	txManager uow.TxManager,
	eventPublisher shared.EventPublisher,
	clock Clock,
) *TakeAttendanceHandler {
	return &TakeAttendanceHandler{
		txManager:      txManager,
		eventPublisher: publisherOrNop(eventPublisher),
		clock:          clock,
	}
}

// Handle executes the take attendance command.
func (h *TakeAttendanceHandler) Handle(ctx context.Context, cmd TakeAttendanceCommand) (*TakeAttendanceResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("take_attendance: validation failed: %w", err)
	}
	teacherID, err := shared.ParseID(cmd.TeacherID)
	if err != nil {
		return nil, fmt.Errorf("take_attendance: %w", err)
	}
	groupID, err := shared.ParseID(cmd.GroupID)
	if err != nil {
		return nil, fmt.Errorf("take_attendance: %w", err)
	}
	classType, err := shared.ParseClassType(cmd.ClassType)
	if err != nil {
		return nil, fmt.Errorf("take_attendance: %w", err)
	}
	now := h.clock.now()
	day, err := attendance.SessionDay(cmd.Date, now)
	if err != nil {
		return nil, fmt.Errorf("take_attendance: %w", err)
	}

	order, statuses, err := dedupeAttendance(cmd.Records)
	if err != nil {
		return nil, fmt.Errorf("take_attendance: %w", err)
	}

	result := &TakeAttendanceResult{}
	err = h.txManager.WithTx(ctx, func(ctx context.Context, repos uow.Repositories) error {
		if err := repos.Authorizer().AuthorizeTeacherForGroup(ctx, teacherID, groupID, classType); err != nil {
			return err
		}

		enrollments, err := repos.Enrollments.FindByIDs(ctx, order)
		if err != nil {
			return shared.Internal("enrollment", "FindByIDs", err)
		}
		byID := make(map[shared.ID]*enrollment.Enrollment, len(enrollments))
		for _, e := range enrollments {
			byID[e.ID] = e
		}

		existing, err := repos.Attendance.FindManyByEnrollmentsDateAndType(ctx, order, day, classType)
		if err != nil {
			return shared.Internal("attendance", "FindManyByEnrollmentsDateAndType", err)
		}
		recorded := make(map[shared.ID]*attendance.Attendance, len(existing))
		for _, a := range existing {
			recorded[a.EnrollmentID] = a
		}

		toSave := make([]*attendance.Attendance, 0, len(order))
		for _, id := range order {
			e, ok := byID[id]
			if !ok {
				return shared.ErrEnrollmentNotFound.Withf("enrollment %s not found", id)
			}
			if !inGroup(e, groupID, classType) {
				return shared.ErrNotAuthorized.Withf("enrollment %s is not part of %s group %s", id, classType, groupID)
			}

			if a, ok := recorded[id]; ok {
				if err := a.UpdateStatus(statuses[id]); err != nil {
					return err
				}
				toSave = append(toSave, a)
				result.Updated++
				continue
			}
			a, err := attendance.NewAttendance(attendance.NewAttendanceParams{
				EnrollmentID: id.String(),
				ClassType:    string(classType),
				Date:         day,
				Status:       statuses[id],
			}, now)
			if err != nil {
				return err
			}
			toSave = append(toSave, a)
			result.Created++
		}

		if err := repos.Attendance.SaveMany(ctx, toSave); err != nil {
			return shared.Internal("attendance", "SaveMany", err)
		}
		result.Saved = len(toSave)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("take_attendance: %w", err)
	}

	_ = h.eventPublisher.Publish(shared.NewAttendanceTakenEvent(groupID, teacherID, classType, result.Saved, now))

	return result, nil
}

// dedupeAttendance parses the inputs, keeping first-seen order and the last
// status given for each enrollment.
func dedupeAttendance(records []AttendanceInput) ([]shared.ID, map[shared.ID]string, error) {
	order := make([]shared.ID, 0, len(records))
	statuses := make(map[shared.ID]string, len(records))
	for _, r := range records {
		id, err := shared.ParseID(r.EnrollmentID)
		if err != nil {
			return nil, nil, err
		}
		if _, err := shared.ParseAttendanceStatus(r.Status); err != nil {
			return nil, nil, err
		}
		if _, seen := statuses[id]; !seen {
			order = append(order, id)
		}
		statuses[id] = r.Status
	}
	return order, statuses, nil
}

// inGroup reports whether the enrollment attends the given theory or lab group.
func inGroup(e *enrollment.Enrollment, groupID shared.ID, classType shared.ClassType) bool {
	if classType == shared.ClassLab {
		return e.InLabGroup(groupID)
	}
	return e.TheoryGroupID == groupID
}
