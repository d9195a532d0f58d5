// Package authorization gates teacher-facing operations on group ownership.
package authorization

import (
	"context"

	"github.com/epis-academic/academic-records/internal/domain/course"
	"github.com/epis-academic/academic-records/internal/domain/lab"
	"github.com/epis-academic/academic-records/internal/domain/shared"
)

// Service checks that a teacher owns the theory or lab group they act on.
type Service struct {
	theoryGroups course.TheoryGroupRepository
	labGroups    lab.Repository
}

// NewService creates an authorization service over the given ports.
func NewService(theoryGroups course.TheoryGroupRepository, labGroups lab.Repository) *Service {
	return &Service{
		theoryGroups: theoryGroups,
		labGroups:    labGroups,
	}
}

// AuthorizeTeacherForGroup loads the group selected by classType and fails
// with ErrNotAuthorized unless teacherID is its professor. It never mutates.
func (s *Service) AuthorizeTeacherForGroup(ctx context.Context, teacherID, groupID shared.ID, classType shared.ClassType) error {
	switch classType {
	case shared.ClassTheory:
		group, err := s.theoryGroups.FindByID(ctx, groupID)
		if err != nil {
			return shared.Internal("authorization", "FindTheoryGroup", err)
		}
		if group == nil {
			return shared.ErrTheoryGroupNotFound.Withf("theory group %s not found", groupID)
		}
		if !group.TaughtBy(teacherID) {
			return shared.ErrNotAuthorized.Withf("teacher %s does not teach theory group %s", teacherID, groupID)
		}
		return nil

	case shared.ClassLab:
		group, err := s.labGroups.FindByID(ctx, groupID)
		if err != nil {
			return shared.Internal("authorization", "FindLabGroup", err)
		}
		if group == nil {
			return shared.ErrLabGroupNotFound.Withf("lab group %s not found", groupID)
		}
		if !group.TaughtBy(teacherID) {
			return shared.ErrNotAuthorized.Withf("teacher %s does not teach lab group %s", teacherID, groupID)
		}
		return nil

	default:
		return shared.ErrInvalidClassType.Withf("invalid class type %q", classType)
	}
}
