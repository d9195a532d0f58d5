// Package enrollment models a student's registration in a theory group and
// the optional lab group assigned on top of it.
package enrollment

import (
	"strings"

	"github.com/epis-academic/academic-records/internal/domain/lab"
	"github.com/epis-academic/academic-records/internal/domain/shared"
)

// Enrollment links a student profile to a theory group and, once
// lab-enrolled, to a lab group.
type Enrollment struct {
	ID            shared.ID
	StudentID     shared.ID
	TheoryGroupID shared.ID
	LabGroupID    *shared.ID
}

// NewEnrollmentParams holds the raw input for NewEnrollment.
type NewEnrollmentParams struct {
	ID            string
	StudentID     string
	TheoryGroupID string
	LabGroupID    string
}

// NewEnrollment validates and builds an Enrollment.
func NewEnrollment(params NewEnrollmentParams) (*Enrollment, error) {
	id := shared.NewID()
	if strings.TrimSpace(params.ID) != "" {
		parsed, err := shared.ParseID(params.ID)
		if err != nil {
			return nil, err
		}
		id = parsed
	}
	studentID, err := shared.ParseID(params.StudentID)
	if err != nil {
		return nil, err
	}
	theoryGroupID, err := shared.ParseID(params.TheoryGroupID)
	if err != nil {
		return nil, err
	}

	e := &Enrollment{
		ID:            id,
		StudentID:     studentID,
		TheoryGroupID: theoryGroupID,
	}
	if strings.TrimSpace(params.LabGroupID) != "" {
		labID, err := shared.ParseID(params.LabGroupID)
		if err != nil {
			return nil, err
		}
		e.LabGroupID = &labID
	}
	return e, nil
}

// Identity implements shared.Identifiable.
func (e *Enrollment) Identity() shared.ID {
	return e.ID
}

// HasLab reports whether a lab group is assigned.
func (e *Enrollment) HasLab() bool {
	return e.LabGroupID != nil
}

// BelongsTo reports whether the enrollment is owned by the student.
func (e *Enrollment) BelongsTo(studentID shared.ID) bool {
	return e.StudentID == studentID
}

// InLabGroup reports whether the enrollment is assigned to the given lab group.
func (e *Enrollment) InLabGroup(labGroupID shared.ID) bool {
	return e.LabGroupID != nil && *e.LabGroupID == labGroupID
}

// AssignLab records the lab group. A theory enrollment holds at most one lab.
func (e *Enrollment) AssignLab(labGroupID shared.ID) error {
	if e.HasLab() {
		return shared.ErrStudentAlreadyEnrolledInLab.Withf("enrollment %s already has lab group %s", e.ID, *e.LabGroupID)
	}
	id := labGroupID
	e.LabGroupID = &id
	return nil
}

// UnassignLab clears the lab group.
func (e *Enrollment) UnassignLab() {
	e.LabGroupID = nil
}

// CheckLabEligibility applies the lab-enrollment rules that do not depend on
// seat availability: the enrollment has no lab yet and the lab group teaches
// the same course as the enrollment's theory group.
func CheckLabEligibility(e *Enrollment, theoryCourseID shared.ID, group *lab.LabGroup) error {
	if e.HasLab() {
		return shared.ErrStudentAlreadyEnrolledInLab.Withf("enrollment %s already has a lab group", e.ID)
	}
	if group.CourseID != theoryCourseID {
		return shared.ErrCourseMismatch.Withf("lab group %s belongs to course %s, enrollment is for course %s",
			group.ID, group.CourseID, theoryCourseID)
	}
	return nil
}

// EnrollInLab runs the full lab-enrollment rule: eligibility, a seat in the
// lab group, and the assignment on the enrollment. Nothing is mutated when
// a rule fails.
func EnrollInLab(e *Enrollment, theoryCourseID shared.ID, group *lab.LabGroup) error {
	if err := CheckLabEligibility(e, theoryCourseID, group); err != nil {
		return err
	}
	if err := group.EnrollOne(); err != nil {
		return err
	}
	if err := e.AssignLab(group.ID); err != nil {
		group.UnenrollOne()
		return err
	}
	return nil
}
