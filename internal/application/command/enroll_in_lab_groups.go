package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/epis-academic/academic-records/internal/application/uow"
	"github.com/epis-academic/academic-records/internal/domain/shared"
	"github.com/epis-academic/academic-records/internal/domain/sysconfig"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENROLL IN LAB GROUPS COMMAND
// Applies several lab selections of one student. Each selection commits in
// its own transaction; a rejected selection never rolls back the others.
// ══════════════════════════════════════════════════════════════════════════════

// LabSelection is one (enrollment, lab group) choice.
type LabSelection struct {
	EnrollmentID string
	LabGroupID   string
}

// EnrollInLabGroupsCommand contains the selections of one student.
type EnrollInLabGroupsCommand struct {
	// StudentProfileID is the student acting on their own enrollments.
	StudentProfileID string

	// Selections are processed in order.
	Selections []LabSelection
}

// Validate validates the command. Malformed selections are reported per
// item by Handle, not here.
func (c EnrollInLabGroupsCommand) Validate() error {
	if err := required("enroll_in_lab_groups", "student_profile_id", c.StudentProfileID); err != nil {
		return err
	}
	if len(c.Selections) == 0 {
		return invalid("enroll_in_lab_groups", "at least one selection is required")
	}
	return nil
}

// EnrollInLabGroupsResult lists the committed selections.
type EnrollInLabGroupsResult struct {
	Enrolled []EnrollInLabGroupResult
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// EnrollInLabGroupsHandler handles the EnrollInLabGroupsCommand.
type EnrollInLabGroupsHandler struct {
	txManager      uow.TxManager
	settings       sysconfig.Store
	eventPublisher shared.EventPublisher
	logger         *slog.Logger
	clock          Clock
}

// NewEnrollInLabGroupsHandler creates a new EnrollInLabGroupsHandler.
func NewEnrollInLabGroupsHandler(
	txManager uow.TxManager,
	settings sysconfig.Store,
	eventPublisher shared.EventPublisher,
	logger *slog.Logger,
	clock Clock,
) *EnrollInLabGroupsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EnrollInLabGroupsHandler{
		txManager:      txManager,
		settings:       settings,
		eventPublisher: publisherOrNop(eventPublisher),
		logger:         logger,
		clock:          clock,
	}
}

// Handle executes the bulk enrollment. The result always lists what was
// committed. When any selection failed the error is a
// *shared.BulkEnrollmentError describing every failure.
func (h *EnrollInLabGroupsHandler) Handle(ctx context.Context, cmd EnrollInLabGroupsCommand) (*EnrollInLabGroupsResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("enroll_in_lab_groups: validation failed: %w", err)
	}
	if _, err := shared.ParseID(cmd.StudentProfileID); err != nil {
		return nil, fmt.Errorf("enroll_in_lab_groups: %w", err)
	}

	now := h.clock.now()
	if err := ensureEnrollmentOpen(ctx, h.settings, now); err != nil {
		return nil, fmt.Errorf("enroll_in_lab_groups: %w", err)
	}

	result := &EnrollInLabGroupsResult{Enrolled: make([]EnrollInLabGroupResult, 0, len(cmd.Selections))}
	var failures []shared.SelectionFailure

	for i, s := range cmd.Selections {
		placed, err := h.enrollOne(ctx, cmd.StudentProfileID, s)
		if err != nil {
			failures = append(failures, shared.SelectionFailure{
				Index:        i,
				EnrollmentID: s.EnrollmentID,
				LabGroupID:   s.LabGroupID,
				Err:          err,
			})
			continue
		}
		result.Enrolled = append(result.Enrolled, *placed.result())
		_ = h.eventPublisher.Publish(placed.event(now))
	}

	if len(failures) > 0 {
		h.logger.Warn("bulk lab enrollment partially failed",
			"student_id", cmd.StudentProfileID,
			"enrolled", len(result.Enrolled),
			"failed", len(failures),
		)
		return result, &shared.BulkEnrollmentError{Failures: failures}
	}
	return result, nil
}

func (h *EnrollInLabGroupsHandler) enrollOne(ctx context.Context, studentID string, s LabSelection) (*placement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sel, err := parseSelection(studentID, s.EnrollmentID, s.LabGroupID)
	if err != nil {
		return nil, err
	}

	var placed *placement
	err = h.txManager.WithTx(ctx, func(ctx context.Context, repos uow.Repositories) error {
		var err error
		placed, err = enrollInLab(ctx, repos, sel)
		return err
	})
	return placed, err
}
