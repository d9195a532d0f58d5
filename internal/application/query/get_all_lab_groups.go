package query

import (
	"context"
	"fmt"
	"sort"

	"github.com/epis-academic/academic-records/internal/domain/course"
	"github.com/epis-academic/academic-records/internal/domain/lab"
	"github.com/epis-academic/academic-records/internal/domain/schedule"
	"github.com/epis-academic/academic-records/internal/domain/shared"
)

// GetAllLabGroupsResult lists every lab group.
type GetAllLabGroupsResult struct {
	Groups []LabGroupDTO `json:"groups"`
}

// GetAllLabGroupsHandler returns the administrative overview of lab groups.
type GetAllLabGroupsHandler struct {
	labGroups  lab.Repository
	courses    course.Repository
	schedules  schedule.ClassScheduleRepository
	classrooms schedule.ClassroomRepository
}

// NewGetAllLabGroupsHandler creates a new handler.
func NewGetAllLabGroupsHandler(
	labGroups lab.Repository,
	courses course.Repository,
	schedules schedule.ClassScheduleRepository,
	classrooms schedule.ClassroomRepository,
) *GetAllLabGroupsHandler {
	return &GetAllLabGroupsHandler{
		labGroups:  labGroups,
		courses:    courses,
		schedules:  schedules,
		classrooms: classrooms,
	}
}

// Handle runs the query. Groups are ordered by course name, then letter.
func (h *GetAllLabGroupsHandler) Handle(ctx context.Context) (*GetAllLabGroupsResult, error) {
	result, err := h.handle(ctx)
	if err != nil {
		return nil, fmt.Errorf("get_all_lab_groups: %w", err)
	}
	return result, nil
}

func (h *GetAllLabGroupsHandler) handle(ctx context.Context) (*GetAllLabGroupsResult, error) {
	groups, err := h.labGroups.FindAll(ctx)
	if err != nil {
		return nil, internalErr("GetAllLabGroups", err)
	}
	result := &GetAllLabGroupsResult{Groups: make([]LabGroupDTO, 0, len(groups))}
	if len(groups) == 0 {
		return result, nil
	}

	courseIDs := make([]shared.ID, 0, len(groups))
	for _, g := range groups {
		courseIDs = append(courseIDs, g.CourseID)
	}
	courses, err := h.courses.FindByIDs(ctx, courseIDs)
	if err != nil {
		return nil, internalErr("GetAllLabGroups", err)
	}
	courseName := make(map[shared.ID]string, len(courses))
	for _, c := range courses {
		courseName[c.ID] = c.Name
	}

	rooms := newClassroomNames(h.classrooms)
	for _, g := range groups {
		sessions, err := h.schedules.FindByLabGroup(ctx, g.ID)
		if err != nil {
			return nil, internalErr("GetAllLabGroups", err)
		}
		dtos, err := toScheduleDTOs(ctx, rooms, sessions)
		if err != nil {
			return nil, internalErr("GetAllLabGroups", err)
		}
		result.Groups = append(result.Groups, toLabGroupDTO(g, courseName[g.CourseID], dtos))
	}
	sort.SliceStable(result.Groups, func(i, j int) bool {
		a, b := result.Groups[i], result.Groups[j]
		if a.CourseName != b.CourseName {
			return a.CourseName < b.CourseName
		}
		return a.GroupLetter < b.GroupLetter
	})
	return result, nil
}
