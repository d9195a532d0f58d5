package query

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/epis-academic/academic-records/internal/domain/attendance"
	"github.com/epis-academic/academic-records/internal/domain/course"
	"github.com/epis-academic/academic-records/internal/domain/enrollment"
	"github.com/epis-academic/academic-records/internal/domain/schedule"
	"github.com/epis-academic/academic-records/internal/domain/shared"
)

// GetStudentAttendanceReportQuery selects one enrollment of a student.
type GetStudentAttendanceReportQuery struct {
	StudentProfileID string
	EnrollmentID     string
}

// AttendanceRecordDTO is one recorded session. The time and room come from
// the weekly session of the same class type on that weekday, when there is
// one.
type AttendanceRecordDTO struct {
	Date          string `json:"date"`
	Day           string `json:"day"`
	ClassType     string `json:"class_type"`
	Status        string `json:"status"`
	StartTime     string `json:"start_time,omitempty"`
	EndTime       string `json:"end_time,omitempty"`
	ClassroomName string `json:"classroom_name,omitempty"`
}

// GetStudentAttendanceReportResult summarizes attendance in one course.
type GetStudentAttendanceReportResult struct {
	EnrollmentID string `json:"enrollment_id"`
	CourseName   string `json:"course_name"`
	Present      int    `json:"present"`
	Absent       int    `json:"absent"`

	// Percentage is the rounded share of PRESENT records, 100 when
	// nothing was recorded yet.
	Percentage int                   `json:"percentage"`
	Records    []AttendanceRecordDTO `json:"records"`
}

// GetStudentAttendanceReportHandler handles GetStudentAttendanceReportQuery.
type GetStudentAttendanceReportHandler struct {
	enrollments  enrollment.Repository
	theoryGroups course.TheoryGroupRepository
	courses      course.Repository
	attendance   attendance.Repository
	schedules    schedule.ClassScheduleRepository
	classrooms   schedule.ClassroomRepository
}

// NewGetStudentAttendanceReportHandler creates a new handler.
func NewGetStudentAttendanceReportHandler(
	enrollments enrollment.Repository,
	theoryGroups course.TheoryGroupRepository,
	courses course.Repository,
	attendance attendance.Repository,
	schedules schedule.ClassScheduleRepository,
	classrooms schedule.ClassroomRepository,
) *GetStudentAttendanceReportHandler {
	return &GetStudentAttendanceReportHandler{
		enrollments:  enrollments,
		theoryGroups: theoryGroups,
		courses:      courses,
		attendance:   attendance,
		schedules:    schedules,
		classrooms:   classrooms,
	}
}

// Handle runs the query. Records are listed newest first.
func (h *GetStudentAttendanceReportHandler) Handle(ctx context.Context, q GetStudentAttendanceReportQuery) (*GetStudentAttendanceReportResult, error) {
	result, err := h.handle(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("get_student_attendance_report: %w", err)
	}
	return result, nil
}

func (h *GetStudentAttendanceReportHandler) handle(ctx context.Context, q GetStudentAttendanceReportQuery) (*GetStudentAttendanceReportResult, error) {
	enr, err := ownedEnrollment(ctx, h.enrollments, q.StudentProfileID, q.EnrollmentID)
	if err != nil {
		return nil, err
	}
	theory, err := h.theoryGroups.FindByID(ctx, enr.TheoryGroupID)
	if err != nil {
		return nil, internalErr("GetStudentAttendanceReport", err)
	}
	if theory == nil {
		return nil, shared.ErrTheoryGroupNotFound.Withf("theory group %s not found", enr.TheoryGroupID)
	}
	c, err := h.courses.FindByID(ctx, theory.CourseID)
	if err != nil {
		return nil, internalErr("GetStudentAttendanceReport", err)
	}

	records, err := h.attendance.FindByEnrollmentID(ctx, enr.ID)
	if err != nil {
		return nil, internalErr("GetStudentAttendanceReport", err)
	}
	sessions, err := h.sessions(ctx, enr)
	if err != nil {
		return nil, internalErr("GetStudentAttendanceReport", err)
	}

	result := &GetStudentAttendanceReportResult{
		EnrollmentID: enr.ID.String(),
		Records:      make([]AttendanceRecordDTO, 0, len(records)),
	}
	if c != nil {
		result.CourseName = c.Name
	}

	rooms := newClassroomNames(h.classrooms)
	sort.SliceStable(records, func(i, j int) bool { return records[i].Date.After(records[j].Date) })
	for _, r := range records {
		day := shared.DayOfWeekFromTime(r.Date)
		dto := AttendanceRecordDTO{
			Date:      r.Date.Format("2006-01-02"),
			Day:       string(day),
			ClassType: string(r.ClassType),
			Status:    string(r.Status),
		}
		if s := sessionOn(sessions[r.ClassType], day); s != nil {
			dto.StartTime = s.TimeSlot.Start.String()
			dto.EndTime = s.TimeSlot.End.String()
			if dto.ClassroomName, err = rooms.name(ctx, s.ClassroomID); err != nil {
				return nil, internalErr("GetStudentAttendanceReport", err)
			}
		}
		if r.Status == shared.Present {
			result.Present++
		} else {
			result.Absent++
		}
		result.Records = append(result.Records, dto)
	}

	result.Percentage = 100
	if total := len(records); total > 0 {
		result.Percentage = int(math.Round(float64(result.Present) / float64(total) * 100))
	}
	return result, nil
}

// sessions returns the weekly sessions the enrollment attends by class type.
func (h *GetStudentAttendanceReportHandler) sessions(ctx context.Context, enr *enrollment.Enrollment) (map[shared.ClassType][]*schedule.ClassSchedule, error) {
	theory, err := h.schedules.FindByTheoryGroup(ctx, enr.TheoryGroupID)
	if err != nil {
		return nil, err
	}
	out := map[shared.ClassType][]*schedule.ClassSchedule{shared.ClassTheory: theory}
	if enr.HasLab() {
		if out[shared.ClassLab], err = h.schedules.FindByLabGroup(ctx, *enr.LabGroupID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func sessionOn(sessions []*schedule.ClassSchedule, day shared.DayOfWeek) *schedule.ClassSchedule {
	for _, s := range sessions {
		if s.TimeSlot.Day == day {
			return s
		}
	}
	return nil
}
