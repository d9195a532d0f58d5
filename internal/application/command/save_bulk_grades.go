package command

import (
	"context"
	"fmt"

	"github.com/epis-academic/academic-records/internal/application/uow"
	"github.com/epis-academic/academic-records/internal/domain/enrollment"
	"github.com/epis-academic/academic-records/internal/domain/grading"
	"github.com/epis-academic/academic-records/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SAVE BULK GRADES COMMAND
// Stores the scores a teacher entered for a group. There is one grade per
// (enrollment, grade type); an existing grade gets its score replaced.
// ══════════════════════════════════════════════════════════════════════════════

// GradeInput is one score.
type GradeInput struct {
	EnrollmentID string
	Type         string
	Score        float64
}

// SaveBulkGradesCommand contains the scores for one group.
type SaveBulkGradesCommand struct {
	// TeacherID must own the group.
	TeacherID string

	// GroupID is a theory group or a lab group depending on ClassType.
	GroupID string

	// ClassType is THEORY or LAB.
	ClassType string

	// Grades may repeat an (enrollment, type) pair; the last score wins.
	Grades []GradeInput
}

// Validate validates the command.
func (c SaveBulkGradesCommand) Validate() error {
	if err := required("save_bulk_grades", "teacher_id", c.TeacherID); err != nil {
		return err
	}
	if err := required("save_bulk_grades", "group_id", c.GroupID); err != nil {
		return err
	}
	if len(c.Grades) == 0 {
		return invalid("save_bulk_grades", "at least one grade is required")
	}
	return nil
}

// SaveBulkGradesResult summarizes the saved grades.
type SaveBulkGradesResult struct {
	Saved   int
	Created int
	Updated int
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// SaveBulkGradesHandler handles the SaveBulkGradesCommand.
type SaveBulkGradesHandler struct {
	txManager      uow.TxManager
	eventPublisher shared.EventPublisher
	clock          Clock
}

// NewSaveBulkGradesHandler creates a new SaveBulkGradesHandler.
func NewSaveBulkGradesHandler(
	txManager uow.TxManager,
	eventPublisher shared.EventPublisher,
	clock Clock,
) *SaveBulkGradesHandler {
	return &SaveBulkGradesHandler{
		txManager:      txManager,
		eventPublisher: publisherOrNop(eventPublisher),
		clock:          clock,
	}
}

type gradeKey struct {
	enrollmentID shared.ID
	gradeType    shared.GradeType
}

// Handle executes the save bulk grades command.
func (h *SaveBulkGradesHandler) Handle(ctx context.Context, cmd SaveBulkGradesCommand) (*SaveBulkGradesResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("save_bulk_grades: validation failed: %w", err)
	}
	teacherID, err := shared.ParseID(cmd.TeacherID)
	if err != nil {
		return nil, fmt.Errorf("save_bulk_grades: %w", err)
	}
	groupID, err := shared.ParseID(cmd.GroupID)
	if err != nil {
		return nil, fmt.Errorf("save_bulk_grades: %w", err)
	}
	classType, err := shared.ParseClassType(cmd.ClassType)
	if err != nil {
		return nil, fmt.Errorf("save_bulk_grades: %w", err)
	}

	order := make([]gradeKey, 0, len(cmd.Grades))
	scores := make(map[gradeKey]shared.Score, len(cmd.Grades))
	for _, in := range cmd.Grades {
		id, err := shared.ParseID(in.EnrollmentID)
		if err != nil {
			return nil, fmt.Errorf("save_bulk_grades: %w", err)
		}
		gradeType, err := shared.ParseGradeType(in.Type)
		if err != nil {
			return nil, fmt.Errorf("save_bulk_grades: %w", err)
		}
		score, err := shared.NewScore(in.Score)
		if err != nil {
			return nil, fmt.Errorf("save_bulk_grades: %w", err)
		}
		key := gradeKey{enrollmentID: id, gradeType: gradeType}
		if _, seen := scores[key]; !seen {
			order = append(order, key)
		}
		scores[key] = score
	}

	result := &SaveBulkGradesResult{}
	err = h.txManager.WithTx(ctx, func(ctx context.Context, repos uow.Repositories) error {
		if err := repos.Authorizer().AuthorizeTeacherForGroup(ctx, teacherID, groupID, classType); err != nil {
			return err
		}

		members, err := groupEnrollments(ctx, repos, groupID, classType)
		if err != nil {
			return err
		}

		toSave := make([]*grading.Grade, 0, len(order))
		for _, key := range order {
			if _, ok := members[key.enrollmentID]; !ok {
				return shared.ErrNotAuthorized.Withf("enrollment %s is not part of %s group %s", key.enrollmentID, classType, groupID)
			}

			g, err := repos.Grades.FindByEnrollmentAndType(ctx, key.enrollmentID, key.gradeType)
			if err != nil {
				return shared.Internal("grading", "FindByEnrollmentAndType", err)
			}
			if g != nil {
				if err := g.UpdateScore(scores[key].Float64()); err != nil {
					return err
				}
				result.Updated++
			} else {
				g, err = grading.NewGrade(grading.NewGradeParams{
					EnrollmentID: key.enrollmentID.String(),
					Type:         string(key.gradeType),
					Score:        scores[key].Float64(),
				})
				if err != nil {
					return err
				}
				result.Created++
			}
			toSave = append(toSave, g)
		}

		if err := repos.Grades.SaveMany(ctx, toSave); err != nil {
			return shared.Internal("grading", "SaveMany", err)
		}
		result.Saved = len(toSave)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("save_bulk_grades: %w", err)
	}

	_ = h.eventPublisher.Publish(shared.NewGradesRecordedEvent(groupID, teacherID, classType, result.Saved, h.clock.now()))

	return result, nil
}

// groupEnrollments indexes the enrollments attending a theory or lab group.
func groupEnrollments(ctx context.Context, repos uow.Repositories, groupID shared.ID, classType shared.ClassType) (map[shared.ID]*enrollment.Enrollment, error) {
	var (
		list []*enrollment.Enrollment
		err  error
	)
	if classType == shared.ClassLab {
		list, err = repos.Enrollments.FindByLabGroup(ctx, groupID)
	} else {
		list, err = repos.Enrollments.FindByTheoryGroup(ctx, groupID)
	}
	if err != nil {
		return nil, shared.Internal("enrollment", "FindByGroup", err)
	}
	out := make(map[shared.ID]*enrollment.Enrollment, len(list))
	for _, e := range list {
		out[e.ID] = e
	}
	return out, nil
}
