// Package command contains write operations (CQRS - Commands).
//
// Every handler validates its command, runs its reads and writes inside one
// uow.TxManager transaction and publishes domain events only after the
// transaction committed.
package command

import (
	"fmt"
	"strings"
	"time"

	"github.com/epis-academic/academic-records/internal/domain/shared"
	"github.com/epis-academic/academic-records/pkg/timeutil"
)

// Clock returns the current instant. Handlers built with a nil Clock use
// timeutil.Now.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return timeutil.Now()
	}
	return c().UTC()
}

// invalid builds a validation error for the named use case.
func invalid(useCase, format string, args ...interface{}) error {
	return shared.NewDomainError(useCase, "Validate", shared.ErrValidation, fmt.Sprintf(format, args...))
}

// required fails when value is blank.
func required(useCase, field, value string) error {
	if strings.TrimSpace(value) == "" {
		return invalid(useCase, "%s is required", field)
	}
	return nil
}

func publisherOrNop(p shared.EventPublisher) shared.EventPublisher {
	if p == nil {
		return shared.NopPublisher{}
	}
	return p
}
