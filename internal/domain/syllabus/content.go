// Package syllabus models the weekly topics of a theory group and the
// evidence portfolio kept for accreditation.
package syllabus

import (
	"strings"
	"unicode/utf8"

	"github.com/epis-academic/academic-records/internal/domain/shared"
)

// Syllabus limits.
const (
	FirstWeek          = 1
	LastWeek           = 18
	minTopicNameLength = 5
)

// CourseContent is one syllabus topic of a theory group.
type CourseContent struct {
	ID            shared.ID
	TheoryGroupID shared.ID
	Week          int
	TopicName     string
	Status        shared.TopicStatus
}

// NewCourseContentParams holds the raw input for NewCourseContent.
type NewCourseContentParams struct {
	ID            string
	TheoryGroupID string
	Week          int
	TopicName     string
	Status        string
}

// NewCourseContent validates and builds a topic. An empty status means PENDING.
func NewCourseContent(params NewCourseContentParams) (*CourseContent, error) {
	id, err := idOrNew(params.ID)
	if err != nil {
		return nil, err
	}
	groupID, err := shared.ParseID(params.TheoryGroupID)
	if err != nil {
		return nil, err
	}
	if params.Week < FirstWeek || params.Week > LastWeek {
		return nil, shared.ErrCourseContentCreation.Withf("week %d must be between %d and %d", params.Week, FirstWeek, LastWeek)
	}
	name := strings.TrimSpace(params.TopicName)
	if utf8.RuneCountInString(name) < minTopicNameLength {
		return nil, shared.ErrCourseContentCreation.Withf("topic name must have at least %d characters", minTopicNameLength)
	}
	status := shared.TopicPending
	if strings.TrimSpace(params.Status) != "" {
		if status, err = shared.ParseTopicStatus(params.Status); err != nil {
			return nil, err
		}
	}

	return &CourseContent{
		ID:            id,
		TheoryGroupID: groupID,
		Week:          params.Week,
		TopicName:     name,
		Status:        status,
	}, nil
}

// Identity implements shared.Identifiable.
func (c *CourseContent) Identity() shared.ID {
	return c.ID
}

// MarkAsCompleted moves the topic to COMPLETED.
func (c *CourseContent) MarkAsCompleted() {
	c.Status = shared.TopicCompleted
}

// MarkAsPending moves the topic back to PENDING.
func (c *CourseContent) MarkAsPending() {
	c.Status = shared.TopicPending
}

func idOrNew(raw string) (shared.ID, error) {
	if strings.TrimSpace(raw) == "" {
		return shared.NewID(), nil
	}
	return shared.ParseID(raw)
}
