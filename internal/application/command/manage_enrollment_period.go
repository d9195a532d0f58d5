package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/epis-academic/academic-records/internal/domain/shared"
	"github.com/epis-academic/academic-records/internal/domain/sysconfig"
	"github.com/epis-academic/academic-records/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// SET ENROLLMENT PERIOD COMMAND
// Stores the lab enrollment window in the system settings.
// ══════════════════════════════════════════════════════════════════════════════

// SetEnrollmentPeriodCommand contains the new window. Both days are
// inclusive; an empty Start means the window is open until the deadline.
type SetEnrollmentPeriodCommand struct {
	Start    string
	Deadline string
}

// Validate validates the command.
func (c SetEnrollmentPeriodCommand) Validate() error {
	return required("set_enrollment_period", "deadline", c.Deadline)
}

// SetEnrollmentPeriodResult echoes the stored window.
type SetEnrollmentPeriodResult struct {
	Period sysconfig.EnrollmentPeriod
}

// SetEnrollmentPeriodHandler handles the SetEnrollmentPeriodCommand.
type SetEnrollmentPeriodHandler struct {
	settings sysconfig.Store
}

// NewSetEnrollmentPeriodHandler creates a new SetEnrollmentPeriodHandler.
func NewSetEnrollmentPeriodHandler(settings sysconfig.Store) *SetEnrollmentPeriodHandler {
	return &SetEnrollmentPeriodHandler{settings: settings}
}

// Handle executes the command. The start key is written before the deadline
// so a reader never sees a new deadline paired with a stale start.
func (h *SetEnrollmentPeriodHandler) Handle(ctx context.Context, cmd SetEnrollmentPeriodCommand) (*SetEnrollmentPeriodResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("set_enrollment_period: validation failed: %w", err)
	}

	var period sysconfig.EnrollmentPeriod
	deadline, err := sysconfig.ParseDay(cmd.Deadline)
	if err != nil {
		return nil, fmt.Errorf("set_enrollment_period: %w", invalid("set_enrollment_period", "invalid deadline %q", cmd.Deadline))
	}
	period.Deadline = deadline
	if strings.TrimSpace(cmd.Start) != "" {
		start, err := sysconfig.ParseDay(cmd.Start)
		if err != nil {
			return nil, fmt.Errorf("set_enrollment_period: %w", invalid("set_enrollment_period", "invalid start %q", cmd.Start))
		}
		if start.After(deadline) {
			return nil, fmt.Errorf("set_enrollment_period: %w", invalid("set_enrollment_period", "start %s is after deadline %s",
				timeutil.FormatDateStr(start), timeutil.FormatDateStr(deadline)))
		}
		period.Start = start
	}

	startValue := ""
	if !period.Start.IsZero() {
		startValue = timeutil.FormatDateStr(period.Start)
	}
	if err := h.settings.Set(ctx, sysconfig.KeyLabEnrollmentStart, startValue); err != nil {
		return nil, fmt.Errorf("set_enrollment_period: %w", shared.Internal("sysconfig", "Set", err))
	}
	if err := h.settings.Set(ctx, sysconfig.KeyLabEnrollmentDeadline, timeutil.FormatDateStr(period.Deadline)); err != nil {
		return nil, fmt.Errorf("set_enrollment_period: %w", shared.Internal("sysconfig", "Set", err))
	}
	return &SetEnrollmentPeriodResult{Period: period}, nil
}
