// Package sysconfig reads institutional settings kept in the system
// key/value store.
package sysconfig

import (
	"context"
	"strings"
	"time"

	"github.com/epis-academic/academic-records/internal/domain/shared"
)

// Keys of the lab enrollment window.
const (
	KeyLabEnrollmentStart    = "LAB_ENROLLMENT_START"
	KeyLabEnrollmentDeadline = "LAB_ENROLLMENT_DEADLINE"
)

// Store is the system key/value store. Get reports a missing key with
// found == false rather than an error.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}

// EnrollmentPeriod is the window during which students may enroll in labs.
// Both bounds are whole UTC days, inclusive. A zero Start means the window
// is open from the beginning.
type EnrollmentPeriod struct {
	Start    time.Time
	Deadline time.Time
}

// Configured reports whether a deadline exists.
func (p EnrollmentPeriod) Configured() bool {
	return !p.Deadline.IsZero()
}

// IsOpen reports whether now falls within the period. An unconfigured
// period is closed.
func (p EnrollmentPeriod) IsOpen(now time.Time) bool {
	if !p.Configured() {
		return false
	}
	today := shared.StartOfUTCDay(now)
	if !p.Start.IsZero() && today.Before(p.Start) {
		return false
	}
	return !today.After(p.Deadline)
}

// Ensure returns ErrOutsideEnrollmentPeriod when the period is closed.
func (p EnrollmentPeriod) Ensure(now time.Time) error {
	if p.IsOpen(now) {
		return nil
	}
	if !p.Configured() {
		return shared.ErrOutsideEnrollmentPeriod.Withf("lab enrollment period has not been configured")
	}
	return shared.ErrOutsideEnrollmentPeriod.Withf("lab enrollment is open from %s to %s",
		formatDay(p.Start), formatDay(p.Deadline))
}

// LoadEnrollmentPeriod reads the period from the store. A missing deadline
// yields an unconfigured (closed) period.
func LoadEnrollmentPeriod(ctx context.Context, store Store) (EnrollmentPeriod, error) {
	var period EnrollmentPeriod

	deadline, found, err := store.Get(ctx, KeyLabEnrollmentDeadline)
	if err != nil {
		return period, shared.Internal("sysconfig", "LoadEnrollmentPeriod", err)
	}
	if !found || strings.TrimSpace(deadline) == "" {
		return period, nil
	}
	if period.Deadline, err = ParseDay(deadline); err != nil {
		return EnrollmentPeriod{}, shared.Internal("sysconfig", "LoadEnrollmentPeriod", err)
	}

	start, found, err := store.Get(ctx, KeyLabEnrollmentStart)
	if err != nil {
		return period, shared.Internal("sysconfig", "LoadEnrollmentPeriod", err)
	}
	if found && strings.TrimSpace(start) != "" {
		if period.Start, err = ParseDay(start); err != nil {
			return EnrollmentPeriod{}, shared.Internal("sysconfig", "LoadEnrollmentPeriod", err)
		}
	}
	return period, nil
}

// ParseDay accepts YYYY-MM-DD or RFC 3339 and returns the UTC day.
func ParseDay(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if d, err := shared.NewReservationDate(value); err == nil {
		return d.Time(), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, shared.ErrValidation
	}
	return shared.StartOfUTCDay(t), nil
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return "the beginning"
	}
	return t.Format("2006-01-02")
}
