// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"

	"github.com/epis-academic/academic-records/internal/domain/enrollment"
	"github.com/epis-academic/academic-records/internal/domain/lab"
	"github.com/epis-academic/academic-records/internal/domain/schedule"
	"github.com/epis-academic/academic-records/internal/domain/shared"
)

// ScheduleDTO is one weekly session.
type ScheduleDTO struct {
	Day           string `json:"day"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Semester      string `json:"semester"`
	ClassroomID   string `json:"classroom_id"`
	ClassroomName string `json:"classroom_name,omitempty"`
}

// LabGroupDTO describes a lab group with its seats and sessions.
type LabGroupDTO struct {
	ID                string        `json:"id"`
	CourseID          string        `json:"course_id"`
	CourseName        string        `json:"course_name,omitempty"`
	ProfessorID       string        `json:"professor_id"`
	GroupLetter       string        `json:"group_letter"`
	Capacity          int           `json:"capacity"`
	CurrentEnrollment int           `json:"current_enrollment"`
	AvailableSeats    int           `json:"available_seats"`
	Schedules         []ScheduleDTO `json:"schedules"`
}

// classroomNames resolves classroom names, looking each room up once.
type classroomNames struct {
	repo  schedule.ClassroomRepository
	names map[shared.ID]string
}

func newClassroomNames(repo schedule.ClassroomRepository) *classroomNames {
	return &classroomNames{repo: repo, names: make(map[shared.ID]string)}
}

func (c *classroomNames) name(ctx context.Context, id shared.ID) (string, error) {
	if n, ok := c.names[id]; ok {
		return n, nil
	}
	room, err := c.repo.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	n := ""
	if room != nil {
		n = room.Name
	}
	c.names[id] = n
	return n, nil
}

func toScheduleDTOs(ctx context.Context, rooms *classroomNames, schedules []*schedule.ClassSchedule) ([]ScheduleDTO, error) {
	out := make([]ScheduleDTO, 0, len(schedules))
	for _, s := range schedules {
		name, err := rooms.name(ctx, s.ClassroomID)
		if err != nil {
			return nil, err
		}
		out = append(out, ScheduleDTO{
			Day:           string(s.TimeSlot.Day),
			StartTime:     s.TimeSlot.Start.String(),
			EndTime:       s.TimeSlot.End.String(),
			Semester:      s.Semester.String(),
			ClassroomID:   s.ClassroomID.String(),
			ClassroomName: name,
		})
	}
	return out, nil
}

func toLabGroupDTO(g *lab.LabGroup, courseName string, schedules []ScheduleDTO) LabGroupDTO {
	return LabGroupDTO{
		ID:                g.ID.String(),
		CourseID:          g.CourseID.String(),
		CourseName:        courseName,
		ProfessorID:       g.ProfessorID.String(),
		GroupLetter:       g.GroupLetter.String(),
		Capacity:          g.Capacity,
		CurrentEnrollment: g.CurrentEnrollment,
		AvailableSeats:    g.AvailableSeats(),
		Schedules:         schedules,
	}
}

// ownedEnrollment loads an enrollment and checks it belongs to the student.
func ownedEnrollment(ctx context.Context, repo enrollment.Repository, studentProfileID, enrollmentID string) (*enrollment.Enrollment, error) {
	studentID, err := shared.ParseID(studentProfileID)
	if err != nil {
		return nil, err
	}
	id, err := shared.ParseID(enrollmentID)
	if err != nil {
		return nil, err
	}

	enr, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, internalErr("FindEnrollment", err)
	}
	if enr == nil {
		return nil, shared.ErrEnrollmentNotFound.Withf("enrollment %s not found", id)
	}
	if !enr.BelongsTo(studentID) {
		return nil, shared.ErrNotAuthorized.Withf("enrollment %s does not belong to student %s", id, studentID)
	}
	return enr, nil
}

func internalErr(op string, err error) error {
	return shared.Internal("query", op, err)
}
