package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types emitted after a use case has persisted its changes.
const (
	// Lab events
	EventLabGroupCreated        EventType = "lab.group_created"
	EventLabEnrollmentCompleted EventType = "lab.enrollment_completed"

	// Teaching events
	EventGradesRecorded  EventType = "teaching.grades_recorded"
	EventAttendanceTaken EventType = "teaching.attendance_taken"

	// Reservation events
	EventRoomReserved          EventType = "reservation.reserved"
	EventReservationCancelled  EventType = "reservation.cancelled"
	EventReservationsCompleted EventType = "reservation.completed"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregate_id"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID ID, at time.Time) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   at,
		AggregateId: aggregateID.String(),
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Lab Events
// ═══════════════════════════════════════════════════════════════════════════

// LabGroupCreatedEvent is emitted when the secretary opens a new lab group.
type LabGroupCreatedEvent struct {
	BaseEvent
	CourseID    string `json:"course_id"`
	GroupLetter string `json:"group_letter"`
	Capacity    int    `json:"capacity"`
}

// Payload implements Event interface.
func (e LabGroupCreatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"course_id":    e.CourseID,
		"group_letter": e.GroupLetter,
		"capacity":     e.Capacity,
	}
}

// NewLabGroupCreatedEvent creates a new LabGroupCreatedEvent.
func NewLabGroupCreatedEvent(labGroupID, courseID ID, letter GroupLetter, capacity int, at time.Time) LabGroupCreatedEvent {
	return LabGroupCreatedEvent{
		BaseEvent:   NewBaseEvent(EventLabGroupCreated, labGroupID, at),
		CourseID:    courseID.String(),
		GroupLetter: letter.String(),
		Capacity:    capacity,
	}
}

// LabEnrollmentCompletedEvent is emitted when a student is placed in a lab group.
type LabEnrollmentCompletedEvent struct {
	BaseEvent
	EnrollmentID      string `json:"enrollment_id"`
	StudentID         string `json:"student_id"`
	CurrentEnrollment int    `json:"current_enrollment"`
}

// Payload implements Event interface.
func (e LabEnrollmentCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"enrollment_id":      e.EnrollmentID,
		"student_id":         e.StudentID,
		"current_enrollment": e.CurrentEnrollment,
	}
}

// NewLabEnrollmentCompletedEvent creates a new LabEnrollmentCompletedEvent.
func NewLabEnrollmentCompletedEvent(labGroupID, enrollmentID, studentID ID, current int, at time.Time) LabEnrollmentCompletedEvent {
	return LabEnrollmentCompletedEvent{
		BaseEvent:         NewBaseEvent(EventLabEnrollmentCompleted, labGroupID, at),
		EnrollmentID:      enrollmentID.String(),
		StudentID:         studentID.String(),
		CurrentEnrollment: current,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Teaching Events
// ═══════════════════════════════════════════════════════════════════════════

// GroupRecordsEvent is emitted when a teacher saves grades or attendance for a group.
type GroupRecordsEvent struct {
	BaseEvent
	TeacherID string    `json:"teacher_id"`
	ClassType ClassType `json:"class_type"`
	Records   int       `json:"records"`
}

// Payload implements Event interface.
func (e GroupRecordsEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"teacher_id": e.TeacherID,
		"class_type": string(e.ClassType),
		"records":    e.Records,
	}
}

// NewGradesRecordedEvent creates a GroupRecordsEvent for saved grades.
func NewGradesRecordedEvent(groupID, teacherID ID, classType ClassType, records int, at time.Time) GroupRecordsEvent {
	return GroupRecordsEvent{
		BaseEvent: NewBaseEvent(EventGradesRecorded, groupID, at),
		TeacherID: teacherID.String(),
		ClassType: classType,
		Records:   records,
	}
}

// NewAttendanceTakenEvent creates a GroupRecordsEvent for saved attendance.
func NewAttendanceTakenEvent(groupID, teacherID ID, classType ClassType, records int, at time.Time) GroupRecordsEvent {
	return GroupRecordsEvent{
		BaseEvent: NewBaseEvent(EventAttendanceTaken, groupID, at),
		TeacherID: teacherID.String(),
		ClassType: classType,
		Records:   records,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Reservation Events
// ═══════════════════════════════════════════════════════════════════════════

// ReservationEvent is emitted when a reservation changes state.
type ReservationEvent struct {
	BaseEvent
	ClassroomID string `json:"classroom_id"`
	ProfessorID string `json:"professor_id"`
	Date        string `json:"date"`
}

// Payload implements Event interface.
func (e ReservationEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"classroom_id": e.ClassroomID,
		"professor_id": e.ProfessorID,
		"date":         e.Date,
	}
}

// NewReservationEvent creates a ReservationEvent of the given type.
func NewReservationEvent(eventType EventType, reservationID, classroomID, professorID ID, date ReservationDate, at time.Time) ReservationEvent {
	return ReservationEvent{
		BaseEvent:   NewBaseEvent(eventType, reservationID, at),
		ClassroomID: classroomID.String(),
		ProfessorID: professorID.String(),
		Date:        date.String(),
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Bus contracts
// ═══════════════════════════════════════════════════════════════════════════

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}

// NopPublisher discards every event.
type NopPublisher struct{}

// Publish implements EventPublisher.
func (NopPublisher) Publish(Event) error { return nil }
