// Package schedule models classrooms, the weekly class timetable and
// one-off room reservations, together with the rules that keep them from
// overlapping.
package schedule

import (
	"strings"
	"unicode/utf8"

	"github.com/epis-academic/academic-records/internal/domain/shared"
)

// Classroom limits.
const (
	minClassroomName     = 3
	maxClassroomName     = 50
	minClassroomCapacity = 1
	maxClassroomCapacity = 100
)

// Classroom is a theory room or a lab room.
type Classroom struct {
	ID       shared.ID
	Name     string
	Capacity int
	Type     shared.ClassType
}

// NewClassroomParams holds the raw input for NewClassroom.
type NewClassroomParams struct {
	ID       string
	Name     string
	Capacity int
	Type     string
}

// NewClassroom validates and builds a Classroom.
func NewClassroom(params NewClassroomParams) (*Classroom, error) {
	id, err := idOrNew(params.ID)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(params.Name)
	if n := utf8.RuneCountInString(name); n < minClassroomName || n > maxClassroomName {
		return nil, shared.ErrClassroomCreation.Withf("classroom name must have between %d and %d characters", minClassroomName, maxClassroomName)
	}
	if params.Capacity < minClassroomCapacity || params.Capacity > maxClassroomCapacity {
		return nil, shared.ErrClassroomCreation.Withf("classroom capacity must be between %d and %d", minClassroomCapacity, maxClassroomCapacity)
	}
	classType, err := shared.ParseClassType(params.Type)
	if err != nil {
		return nil, err
	}

	return &Classroom{
		ID:       id,
		Name:     name,
		Capacity: params.Capacity,
		Type:     classType,
	}, nil
}

// Identity implements shared.Identifiable.
func (c *Classroom) Identity() shared.ID {
	return c.ID
}

func idOrNew(raw string) (shared.ID, error) {
	if strings.TrimSpace(raw) == "" {
		return shared.NewID(), nil
	}
	return shared.ParseID(raw)
}
