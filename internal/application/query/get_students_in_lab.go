package query

import (
	"context"
	"fmt"
	"sort"

	"github.com/epis-academic/academic-records/internal/domain/enrollment"
	"github.com/epis-academic/academic-records/internal/domain/lab"
	"github.com/epis-academic/academic-records/internal/domain/shared"
	"github.com/epis-academic/academic-records/internal/domain/user"
)

// GetStudentsInLabQuery selects a lab group.
type GetStudentsInLabQuery struct {
	LabGroupID string
}

// LabStudentDTO is one student of a lab roster.
type LabStudentDTO struct {
	EnrollmentID     string `json:"enrollment_id"`
	StudentProfileID string `json:"student_profile_id"`
	StudentCode      string `json:"student_code"`
	FullName         string `json:"full_name"`
	Email            string `json:"email"`
}

// GetStudentsInLabResult is the roster of a lab group.
type GetStudentsInLabResult struct {
	LabGroup LabGroupDTO     `json:"lab_group"`
	Students []LabStudentDTO `json:"students"`
}

// GetStudentsInLabHandler handles GetStudentsInLabQuery.
type GetStudentsInLabHandler struct {
	labGroups   lab.Repository
	enrollments enrollment.Repository
	profiles    user.StudentProfileRepository
	users       user.Repository
}

// NewGetStudentsInLabHandler creates a new handler.
func NewGetStudentsInLabHandler(
	labGroups lab.Repository,
	enrollments enrollment.Repository,
	profiles user.StudentProfileRepository,
	users user.Repository,
) *GetStudentsInLabHandler {
	return &GetStudentsInLabHandler{
		labGroups:   labGroups,
		enrollments: enrollments,
		profiles:    profiles,
		users:       users,
	}
}

// Handle runs the query. Students are sorted by full name.
func (h *GetStudentsInLabHandler) Handle(ctx context.Context, q GetStudentsInLabQuery) (*GetStudentsInLabResult, error) {
	result, err := h.handle(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("get_students_in_lab: %w", err)
	}
	return result, nil
}

func (h *GetStudentsInLabHandler) handle(ctx context.Context, q GetStudentsInLabQuery) (*GetStudentsInLabResult, error) {
	labID, err := shared.ParseID(q.LabGroupID)
	if err != nil {
		return nil, err
	}
	group, err := h.labGroups.FindByID(ctx, labID)
	if err != nil {
		return nil, internalErr("GetStudentsInLab", err)
	}
	if group == nil {
		return nil, shared.ErrLabGroupNotFound.Withf("lab group %s not found", labID)
	}

	enrollments, err := h.enrollments.FindByLabGroup(ctx, labID)
	if err != nil {
		return nil, internalErr("GetStudentsInLab", err)
	}
	result := &GetStudentsInLabResult{
		LabGroup: toLabGroupDTO(group, "", []ScheduleDTO{}),
		Students: make([]LabStudentDTO, 0, len(enrollments)),
	}
	if len(enrollments) == 0 {
		return result, nil
	}

	profileIDs := make([]shared.ID, 0, len(enrollments))
	for _, e := range enrollments {
		profileIDs = append(profileIDs, e.StudentID)
	}
	profiles, err := h.profiles.FindByIDs(ctx, profileIDs)
	if err != nil {
		return nil, internalErr("GetStudentsInLab", err)
	}
	profileByID := make(map[shared.ID]*user.StudentProfile, len(profiles))
	userIDs := make([]shared.ID, 0, len(profiles))
	for _, p := range profiles {
		profileByID[p.ID] = p
		userIDs = append(userIDs, p.UserID)
	}
	users, err := h.users.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, internalErr("GetStudentsInLab", err)
	}
	userByID := make(map[shared.ID]*user.User, len(users))
	for _, u := range users {
		userByID[u.ID] = u
	}

	for _, e := range enrollments {
		dto := LabStudentDTO{
			EnrollmentID:     e.ID.String(),
			StudentProfileID: e.StudentID.String(),
		}
		if p, ok := profileByID[e.StudentID]; ok {
			dto.StudentCode = p.StudentCode.String()
			if u, ok := userByID[p.UserID]; ok {
				dto.FullName = u.FullName()
				dto.Email = u.Email.String()
			}
		}
		result.Students = append(result.Students, dto)
	}
	sort.SliceStable(result.Students, func(i, j int) bool {
		return result.Students[i].FullName < result.Students[j].FullName
	})
	return result, nil
}
