package query

import (
	"context"
	"fmt"

	"github.com/epis-academic/academic-records/internal/domain/course"
	"github.com/epis-academic/academic-records/internal/domain/enrollment"
	"github.com/epis-academic/academic-records/internal/domain/lab"
	"github.com/epis-academic/academic-records/internal/domain/schedule"
	"github.com/epis-academic/academic-records/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET AVAILABLE LAB GROUPS QUERY
// Lists the lab groups a student may still choose for one theory enrollment.
// ══════════════════════════════════════════════════════════════════════════════

// GetAvailableLabGroupsQuery selects the enrollment to offer labs for.
type GetAvailableLabGroupsQuery struct {
	// StudentProfileID must own the enrollment.
	StudentProfileID string

	// EnrollmentID is the theory enrollment.
	EnrollmentID string
}

// GetAvailableLabGroupsResult lists the open lab groups.
type GetAvailableLabGroupsResult struct {
	// AlreadyEnrolled is true when the enrollment already has a lab; Groups
	// is then empty.
	AlreadyEnrolled bool          `json:"already_enrolled"`
	Groups          []LabGroupDTO `json:"groups"`
}

// GetAvailableLabGroupsHandler handles GetAvailableLabGroupsQuery.
type GetAvailableLabGroupsHandler struct {
	enrollments  enrollment.Repository
	theoryGroups course.TheoryGroupRepository
	labGroups    lab.Repository
	schedules    schedule.ClassScheduleRepository
	classrooms   schedule.ClassroomRepository
}

// NewGetAvailableLabGroupsHandler creates a new handler.
func NewGetAvailableLabGroupsHandler(
	enrollments enrollment.Repository,
	theoryGroups course.TheoryGroupRepository,
	labGroups lab.Repository,
	schedules schedule.ClassScheduleRepository,
	classrooms schedule.ClassroomRepository,
) *GetAvailableLabGroupsHandler {
	return &GetAvailableLabGroupsHandler{
		enrollments:  enrollments,
		theoryGroups: theoryGroups,
		labGroups:    labGroups,
		schedules:    schedules,
		classrooms:   classrooms,
	}
}

// Handle runs the query. Full groups are left out.
func (h *GetAvailableLabGroupsHandler) Handle(ctx context.Context, q GetAvailableLabGroupsQuery) (*GetAvailableLabGroupsResult, error) {
	result, err := h.handle(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("get_available_lab_groups: %w", err)
	}
	return result, nil
}

func (h *GetAvailableLabGroupsHandler) handle(ctx context.Context, q GetAvailableLabGroupsQuery) (*GetAvailableLabGroupsResult, error) {
	enr, err := ownedEnrollment(ctx, h.enrollments, q.StudentProfileID, q.EnrollmentID)
	if err != nil {
		return nil, err
	}
	if enr.HasLab() {
		return &GetAvailableLabGroupsResult{AlreadyEnrolled: true, Groups: []LabGroupDTO{}}, nil
	}

	theory, err := h.theoryGroups.FindByID(ctx, enr.TheoryGroupID)
	if err != nil {
		return nil, internalErr("GetAvailableLabGroups", err)
	}
	if theory == nil {
		return nil, shared.ErrTheoryGroupNotFound.Withf("theory group %s not found", enr.TheoryGroupID)
	}

	groups, err := h.labGroups.FindByCourse(ctx, theory.CourseID)
	if err != nil {
		return nil, internalErr("GetAvailableLabGroups", err)
	}

	rooms := newClassroomNames(h.classrooms)
	result := &GetAvailableLabGroupsResult{Groups: make([]LabGroupDTO, 0, len(groups))}
	for _, g := range groups {
		if g.IsFull() {
			continue
		}
		sessions, err := h.schedules.FindByLabGroup(ctx, g.ID)
		if err != nil {
			return nil, internalErr("GetAvailableLabGroups", err)
		}
		dtos, err := toScheduleDTOs(ctx, rooms, sessions)
		if err != nil {
			return nil, internalErr("GetAvailableLabGroups", err)
		}
		result.Groups = append(result.Groups, toLabGroupDTO(g, "", dtos))
	}
	return result, nil
}
