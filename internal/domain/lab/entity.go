// Package lab models lab groups and their seat counter.
//
// The counter invariant is 0 <= CurrentEnrollment <= Capacity. Every mutator
// re-checks it; callers that read, check and then save a LabGroup must do so
// under a row lock (see Repository.FindByIDForUpdate).
package lab

import (
	"fmt"
	"strings"

	"github.com/epis-academic/academic-records/internal/domain/shared"
)

// Capacity bounds of a lab group.
const (
	MinCapacity = 1
	MaxCapacity = 50
)

// LabGroup is a lab section of a course with a bounded number of seats.
type LabGroup struct {
	ID                shared.ID
	CourseID          shared.ID
	ProfessorID       shared.ID
	GroupLetter       shared.GroupLetter
	Capacity          int
	CurrentEnrollment int
}

// NewLabGroupParams holds the raw input for NewLabGroup.
type NewLabGroupParams struct {
	ID                string
	CourseID          string
	ProfessorID       string
	GroupLetter       string
	Capacity          int
	CurrentEnrollment int
}

// NewLabGroup validates and builds a LabGroup.
func NewLabGroup(params NewLabGroupParams) (*LabGroup, error) {
	id := shared.NewID()
	if strings.TrimSpace(params.ID) != "" {
		parsed, err := shared.ParseID(params.ID)
		if err != nil {
			return nil, err
		}
		id = parsed
	}
	courseID, err := shared.ParseID(params.CourseID)
	if err != nil {
		return nil, err
	}
	professorID, err := shared.ParseID(params.ProfessorID)
	if err != nil {
		return nil, err
	}
	letter, err := shared.NewGroupLetter(params.GroupLetter)
	if err != nil {
		return nil, err
	}
	if err := validateCapacity(params.Capacity, 0); err != nil {
		return nil, err
	}
	if params.CurrentEnrollment < 0 || params.CurrentEnrollment > params.Capacity {
		return nil, shared.ErrLabGroupCreation.Wrap(
			fmt.Errorf("current enrollment %d outside [0, %d]", params.CurrentEnrollment, params.Capacity))
	}

	return &LabGroup{
		ID:                id,
		CourseID:          courseID,
		ProfessorID:       professorID,
		GroupLetter:       letter,
		Capacity:          params.Capacity,
		CurrentEnrollment: params.CurrentEnrollment,
	}, nil
}

// Identity implements shared.Identifiable.
func (g *LabGroup) Identity() shared.ID {
	return g.ID
}

// IsFull reports whether no seat is left.
func (g *LabGroup) IsFull() bool {
	return g.CurrentEnrollment >= g.Capacity
}

// AvailableSeats returns the number of free seats.
func (g *LabGroup) AvailableSeats() int {
	if g.IsFull() {
		return 0
	}
	return g.Capacity - g.CurrentEnrollment
}

// EnrollOne takes one seat.
func (g *LabGroup) EnrollOne() error {
	if g.IsFull() {
		return shared.ErrLabGroupFull.Withf("lab group %s is full (%d/%d)", g.GroupLetter, g.CurrentEnrollment, g.Capacity)
	}
	g.CurrentEnrollment++
	return nil
}

// UnenrollOne releases one seat. The counter never goes below zero.
func (g *LabGroup) UnenrollOne() {
	if g.CurrentEnrollment > 0 {
		g.CurrentEnrollment--
	}
}

// UpdateCapacity changes the number of seats. It cannot drop below the
// students already enrolled.
func (g *LabGroup) UpdateCapacity(newCapacity int) error {
	if err := validateCapacity(newCapacity, g.CurrentEnrollment); err != nil {
		return err
	}
	g.Capacity = newCapacity
	return nil
}

// TaughtBy reports whether the given professor owns the group.
func (g *LabGroup) TaughtBy(professorID shared.ID) bool {
	return g.ProfessorID == professorID
}

func validateCapacity(capacity, enrolled int) error {
	switch {
	case capacity < MinCapacity || capacity > MaxCapacity:
		return shared.ErrInvalidCapacity.Withf("capacity %d must be between %d and %d", capacity, MinCapacity, MaxCapacity)
	case capacity < enrolled:
		return shared.ErrInvalidCapacity.Withf("capacity %d is below the %d students already enrolled", capacity, enrolled)
	}
	return nil
}

