package query

import (
	"context"
	"fmt"
	"time"

	"github.com/epis-academic/academic-records/internal/domain/sysconfig"
	"github.com/epis-academic/academic-records/pkg/timeutil"
)

// EnrollmentPeriodDTO is the lab enrollment window as shown to users.
type EnrollmentPeriodDTO struct {
	// Start is empty when the window has no start day.
	Start string `json:"start,omitempty"`

	// Deadline is empty when no period is configured.
	Deadline string `json:"deadline,omitempty"`

	Open bool `json:"open"`
}

// GetEnrollmentPeriodHandler reads the lab enrollment window.
type GetEnrollmentPeriodHandler struct {
	settings sysconfig.Store
	now      func() time.Time
}

// NewGetEnrollmentPeriodHandler creates a new handler. A nil now uses
// timeutil.Now.
func NewGetEnrollmentPeriodHandler(settings sysconfig.Store, now func() time.Time) *GetEnrollmentPeriodHandler {
	if now == nil {
		now = timeutil.Now
	}
	return &GetEnrollmentPeriodHandler{settings: settings, now: now}
}

// Handle runs the query.
func (h *GetEnrollmentPeriodHandler) Handle(ctx context.Context) (*EnrollmentPeriodDTO, error) {
	result, err := h.handle(ctx)
	if err != nil {
		return nil, fmt.Errorf("get_enrollment_period: %w", err)
	}
	return result, nil
}

func (h *GetEnrollmentPeriodHandler) handle(ctx context.Context) (*EnrollmentPeriodDTO, error) {
	period, err := sysconfig.LoadEnrollmentPeriod(ctx, h.settings)
	if err != nil {
		return nil, err
	}
	dto := &EnrollmentPeriodDTO{Open: period.IsOpen(h.now())}
	if !period.Start.IsZero() {
		dto.Start = timeutil.FormatDateStr(period.Start)
	}
	if period.Configured() {
		dto.Deadline = timeutil.FormatDateStr(period.Deadline)
	}
	return dto, nil
}
