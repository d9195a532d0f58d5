// Package shared contains common domain types, errors, events, and value objects
// that are used across all academic domain packages.
package shared

import (
	"errors"
	"fmt"
)

// Base error kinds. Every domain failure carries exactly one of these as its
// Kind so callers can tell error classes apart with errors.Is().
var (
	// ErrValidation marks malformed input rejected by a value object or factory.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks a referenced aggregate that does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrBusinessRule marks a well-formed request that violates an invariant.
	ErrBusinessRule = errors.New("business rule violation")

	// ErrForbidden marks an actor that is not allowed to perform the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrInternal marks an unexpected failure (storage, driver, bug).
	ErrInternal = errors.New("internal error")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "lab", "grading", "schedule"
	Op      string // Operation that failed, e.g., "Create", "EnrollOne"
	Kind    error  // Base error kind for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying cause (optional)

	// origin is the named error this instance was derived from.
	origin *DomainError
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching. A derived error matches the named
// error it was derived from as well as its kind and cause.
func (e *DomainError) Is(target error) bool {
	if t, ok := target.(*DomainError); ok {
		if e == t || (e.origin != nil && e.origin == t) {
			return true
		}
	}
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// Withf returns a copy of the error with a specialised message.
func (e *DomainError) Withf(format string, args ...interface{}) *DomainError {
	derived := *e
	derived.Message = fmt.Sprintf(format, args...)
	derived.origin = e.root()
	return &derived
}

// Wrap returns a copy of the error that records cause as the underlying error.
func (e *DomainError) Wrap(cause error) *DomainError {
	derived := *e
	derived.Err = cause
	derived.origin = e.root()
	return &derived
}

func (e *DomainError) root() *DomainError {
	if e.origin != nil {
		return e.origin
	}
	return e
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECT ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	ErrInvalidID                = NewDomainError("shared", "NewID", ErrValidation, "invalid identifier, expected a UUID")
	ErrInvalidEmail             = NewDomainError("shared", "NewEmail", ErrValidation, "invalid email address")
	ErrInvalidBirthdate         = NewDomainError("shared", "NewBirthdate", ErrValidation, "birthdate cannot be in the future")
	ErrInvalidTimeFormat        = NewDomainError("shared", "NewTimeOfDay", ErrValidation, "time must use the 24h HH:MM format")
	ErrInvalidTimeSlot          = NewDomainError("shared", "NewTimeSlot", ErrValidation, "start time must be before end time")
	ErrInvalidDayOfWeek         = NewDomainError("shared", "ParseDayOfWeek", ErrValidation, "invalid day of week")
	ErrInvalidName              = NewDomainError("shared", "NewPersonName", ErrValidation, "name must have at least 2 characters")
	ErrInvalidPassword          = NewDomainError("shared", "Password", ErrValidation, "password must have at least 10 characters")
	ErrInvalidStudentCode       = NewDomainError("shared", "NewStudentCode", ErrValidation, "student code must be exactly 8 digits")
	ErrInvalidCourseCode        = NewDomainError("shared", "NewCourseCode", ErrValidation, "course code must be exactly 8 digits")
	ErrInvalidCredits           = NewDomainError("shared", "NewCredits", ErrValidation, "credits must be a positive integer")
	ErrInvalidSemester          = NewDomainError("shared", "NewAcademicSemester", ErrValidation, "semester must match YYYY-I or YYYY-II")
	ErrInvalidPercentage        = NewDomainError("shared", "NewPercentage", ErrValidation, "percentage must be between 0 and 100")
	ErrInvalidCourseName        = NewDomainError("shared", "NewCourse", ErrValidation, "course name must have at least 5 characters")
	ErrInvalidScore             = NewDomainError("shared", "NewScore", ErrValidation, "score must be between 0 and 20")
	ErrInvalidGroupLetter       = NewDomainError("shared", "NewGroupLetter", ErrValidation, "group letter must be a single letter A-Z")
	ErrInvalidReservationDate   = NewDomainError("shared", "NewReservationDate", ErrValidation, "reservation date must be a real YYYY-MM-DD date")
	ErrReservationWindow        = NewDomainError("shared", "WithinWindow", ErrValidation, "reservation date is outside the allowed window")
	ErrInvalidClassType         = NewDomainError("shared", "ParseClassType", ErrValidation, "class type must be THEORY or LAB")
	ErrInvalidCourseType        = NewDomainError("shared", "ParseCourseType", ErrValidation, "course type must be THEORY, LAB or THEORY_LAB")
	ErrInvalidGradeType         = NewDomainError("shared", "ParseGradeType", ErrValidation, "invalid grade type")
	ErrInvalidAttendanceStatus  = NewDomainError("shared", "ParseAttendanceStatus", ErrValidation, "attendance status must be PRESENT or ABSENT")
	ErrInvalidTopicStatus       = NewDomainError("shared", "ParseTopicStatus", ErrValidation, "topic status must be PENDING or COMPLETED")
	ErrInvalidReservationStatus = NewDomainError("shared", "ParseReservationStatus", ErrValidation, "invalid reservation status")
	ErrInvalidUserRole          = NewDomainError("shared", "ParseUserRole", ErrValidation, "invalid user role")
	ErrInvalidEvidenceKind      = NewDomainError("shared", "ParseEvidenceKind", ErrValidation, "evidence kind must be low, avg, high or syllabus")
)

// ══════════════════════════════════════════════════════════════════════════════
// ENTITY ERRORS
// ══════════════════════════════════════════════════════════════════════════════

// Course and group errors
var (
	ErrCourseCreation      = NewDomainError("course", "Create", ErrInternal, "failed to create course")
	ErrTheoryGroupCreation = NewDomainError("course", "CreateTheoryGroup", ErrInternal, "failed to create theory group")
	ErrCourseNotFound      = NewDomainError("course", "Find", ErrNotFound, "course not found")
	ErrTheoryGroupNotFound = NewDomainError("course", "FindTheoryGroup", ErrNotFound, "theory group not found")
)

// Lab errors
var (
	ErrLabGroupCreation  = NewDomainError("lab", "Create", ErrInternal, "failed to create lab group")
	ErrLabGroupFull      = NewDomainError("lab", "EnrollOne", ErrBusinessRule, "lab group is full")
	ErrLabGroupNotFound  = NewDomainError("lab", "Find", ErrNotFound, "lab group not found")
	ErrInvalidCapacity   = NewDomainError("lab", "UpdateCapacity", ErrValidation, "capacity must be between 1 and 50 and not below current enrollment")
	ErrDuplicateLabGroup = NewDomainError("lab", "Create", ErrBusinessRule, "a lab group with this letter already exists for the course")
)

// Enrollment errors
var (
	ErrEnrollmentCreation          = NewDomainError("enrollment", "Create", ErrInternal, "failed to create enrollment")
	ErrAlreadyEnrolled             = NewDomainError("enrollment", "Create", ErrBusinessRule, "student is already enrolled in this theory group")
	ErrCourseMismatch              = NewDomainError("enrollment", "AssignLab", ErrBusinessRule, "lab group does not belong to the enrolled course")
	ErrStudentAlreadyEnrolledInLab = NewDomainError("enrollment", "AssignLab", ErrBusinessRule, "student is already enrolled in a lab for this course")
	ErrEnrollmentNotFound          = NewDomainError("enrollment", "Find", ErrNotFound, "enrollment not found")
	ErrBulkEnrollment              = NewDomainError("enrollment", "EnrollMany", ErrBusinessRule, "one or more lab enrollments failed")
	ErrOutsideEnrollmentPeriod     = NewDomainError("enrollment", "CheckPeriod", ErrBusinessRule, "lab enrollment is outside the allowed period")
)

// Grading errors
var (
	ErrGradeCreation          = NewDomainError("grading", "CreateGrade", ErrInternal, "failed to create grade")
	ErrGradeWeightCreation    = NewDomainError("grading", "CreateWeight", ErrInternal, "failed to create grade weight")
	ErrInvalidGradeWeightSum  = NewDomainError("grading", "Finalize", ErrBusinessRule, "grade weights must sum to 100")
	ErrInvalidGradeWeightType = NewDomainError("grading", "Finalize", ErrBusinessRule, "grade weight type is invalid or repeated")
	ErrGradeWeightsNotFinal   = NewDomainError("grading", "Average", ErrBusinessRule, "grade weights are not finalized")
)

// Schedule, classroom and reservation errors
var (
	ErrClassScheduleCreation  = NewDomainError("schedule", "Create", ErrInternal, "failed to create class schedule")
	ErrScheduleConflict       = NewDomainError("schedule", "Create", ErrBusinessRule, "schedule conflict")
	ErrScheduleAssignment     = NewDomainError("schedule", "Create", ErrBusinessRule, "schedule must belong to a theory group or a lab group")
	ErrClassroomCreation      = NewDomainError("schedule", "CreateClassroom", ErrValidation, "invalid classroom")
	ErrClassroomNotFound      = NewDomainError("schedule", "FindClassroom", ErrNotFound, "classroom not found")
	ErrReservationCreation    = NewDomainError("schedule", "CreateReservation", ErrInternal, "failed to create reservation")
	ErrReservationConflict    = NewDomainError("schedule", "Reserve", ErrBusinessRule, "reservation conflicts with an existing booking")
	ErrInvalidReservationTime = NewDomainError("schedule", "Reserve", ErrValidation, "reservation start time must be before end time")
	ErrCompletedReservation   = NewDomainError("schedule", "Cancel", ErrBusinessRule, "a completed reservation cannot be modified")
	ErrReservationLimit       = NewDomainError("schedule", "Reserve", ErrBusinessRule, "weekly reservation limit reached")
	ErrReservationNotFound    = NewDomainError("schedule", "FindReservation", ErrNotFound, "reservation not found")
)

// Attendance errors
var (
	ErrAttendanceCreation   = NewDomainError("attendance", "Create", ErrInternal, "failed to create attendance record")
	ErrFutureAttendanceDate = NewDomainError("attendance", "Create", ErrValidation, "attendance date cannot be in the future")
)

// Syllabus and portfolio errors
var (
	ErrCourseContentCreation = NewDomainError("syllabus", "CreateTopic", ErrValidation, "invalid syllabus topic")
	ErrTopicNotFound         = NewDomainError("syllabus", "FindTopic", ErrNotFound, "topic not found")
)

// User and profile errors
var (
	ErrUserCreation           = NewDomainError("user", "Create", ErrInternal, "failed to create user")
	ErrStudentProfileCreation = NewDomainError("user", "CreateStudentProfile", ErrInternal, "failed to create student profile")
	ErrTeacherProfileCreation = NewDomainError("user", "CreateTeacherProfile", ErrValidation, "specialization must have between 3 and 150 characters")
	ErrUserNotFound           = NewDomainError("user", "Find", ErrNotFound, "user not found")
	ErrEmailAlreadyRegistered = NewDomainError("user", "Register", ErrBusinessRule, "email is already registered")
)

// Application-level errors
var (
	ErrNotAuthorized = NewDomainError("authorization", "Authorize", ErrForbidden, "not authorized to perform this action")
)

// ══════════════════════════════════════════════════════════════════════════════
// TYPED ERRORS WITH PAYLOAD
// ══════════════════════════════════════════════════════════════════════════════

// WeightSumError reports a grade weight set whose percentages do not add up to 100.
type WeightSumError struct {
	Sum float64
}

func (e *WeightSumError) Error() string {
	return fmt.Sprintf("%s (got %.2f)", ErrInvalidGradeWeightSum.Error(), e.Sum)
}

// Unwrap links the error to ErrInvalidGradeWeightSum.
func (e *WeightSumError) Unwrap() error {
	return ErrInvalidGradeWeightSum
}

// SelectionFailure describes one rejected item of a bulk lab enrollment.
type SelectionFailure struct {
	Index        int
	EnrollmentID string
	LabGroupID   string
	Err          error
}

// BulkEnrollmentError lists every selection of a bulk lab enrollment that was
// rejected. Selections not listed were committed.
type BulkEnrollmentError struct {
	Failures []SelectionFailure
}

func (e *BulkEnrollmentError) Error() string {
	msg := fmt.Sprintf("%s: %d failed", ErrBulkEnrollment.Error(), len(e.Failures))
	for _, f := range e.Failures {
		msg += fmt.Sprintf("; #%d enrollment=%s lab=%s: %v", f.Index+1, f.EnrollmentID, f.LabGroupID, f.Err)
	}
	return msg
}

// Unwrap links the error to ErrBulkEnrollment.
func (e *BulkEnrollmentError) Unwrap() error {
	return ErrBulkEnrollment
}

// ══════════════════════════════════════════════════════════════════════════════
// CLASSIFICATION
// ══════════════════════════════════════════════════════════════════════════════

// ErrorClass is the coarse category of a failure as seen by a caller.
type ErrorClass string

const (
	ClassValidation   ErrorClass = "validation"
	ClassNotFound     ErrorClass = "not_found"
	ClassBusinessRule ErrorClass = "business_rule"
	ClassForbidden    ErrorClass = "forbidden"
	ClassInternal     ErrorClass = "internal"
)

// Classify maps any error to its ErrorClass. Errors outside the domain
// taxonomy are internal.
func Classify(err error) ErrorClass {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return ClassValidation
	case errors.Is(err, ErrNotFound):
		return ClassNotFound
	case errors.Is(err, ErrForbidden):
		return ClassForbidden
	case errors.Is(err, ErrBusinessRule):
		return ClassBusinessRule
	default:
		return ClassInternal
	}
}

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsForbidden checks if the error is an authorization error.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// Internal wraps an unexpected error (driver, I/O) so it classifies as
// internal. Errors that already carry another kind, such as a constraint a
// repository mapped to a business rule, are returned unchanged.
func Internal(domain, op string, err error) error {
	if err == nil {
		return nil
	}
	if Classify(err) != ClassInternal {
		return err
	}
	return WrapError(domain, op, ErrInternal, "unexpected failure", err)
}
