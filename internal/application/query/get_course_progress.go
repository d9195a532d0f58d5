package query

import (
	"context"
	"fmt"
	"math"

	"github.com/epis-academic/academic-records/internal/domain/enrollment"
	"github.com/epis-academic/academic-records/internal/domain/shared"
	"github.com/epis-academic/academic-records/internal/domain/syllabus"
)

// GetCourseProgressQuery selects one enrollment of a student.
type GetCourseProgressQuery struct {
	StudentProfileID string
	EnrollmentID     string
}

// TopicDTO is one syllabus topic.
type TopicDTO struct {
	Week   int    `json:"week"`
	Topic  string `json:"topic"`
	Status string `json:"status"`
}

// GetCourseProgressResult is the syllabus of the enrolled theory group.
type GetCourseProgressResult struct {
	Topics []TopicDTO `json:"topics"`

	// Percentage is the rounded share of COMPLETED topics, 0 without topics.
	Percentage int `json:"percentage"`
}

// GetCourseProgressHandler handles GetCourseProgressQuery.
type GetCourseProgressHandler struct {
	enrollments enrollment.Repository
	contents    syllabus.ContentRepository
}

// NewGetCourseProgressHandler creates a new handler.
func NewGetCourseProgressHandler(enrollments enrollment.Repository, contents syllabus.ContentRepository) *GetCourseProgressHandler {
	return &GetCourseProgressHandler{enrollments: enrollments, contents: contents}
}

// Handle runs the query. Topics are ordered by week.
func (h *GetCourseProgressHandler) Handle(ctx context.Context, q GetCourseProgressQuery) (*GetCourseProgressResult, error) {
	enr, err := ownedEnrollment(ctx, h.enrollments, q.StudentProfileID, q.EnrollmentID)
	if err != nil {
		return nil, fmt.Errorf("get_course_progress: %w", err)
	}
	topics, err := h.contents.FindByTheoryGroupID(ctx, enr.TheoryGroupID)
	if err != nil {
		return nil, fmt.Errorf("get_course_progress: %w", internalErr("GetCourseProgress", err))
	}

	result := &GetCourseProgressResult{Topics: make([]TopicDTO, 0, len(topics))}
	completed := 0
	for _, t := range topics {
		if t.Status == shared.TopicCompleted {
			completed++
		}
		result.Topics = append(result.Topics, TopicDTO{Week: t.Week, Topic: t.TopicName, Status: string(t.Status)})
	}
	if len(topics) > 0 {
		result.Percentage = int(math.Round(float64(completed) / float64(len(topics)) * 100))
	}
	return result, nil
}
