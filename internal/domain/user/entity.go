// Package user models accounts and the role profiles attached to them.
package user

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/epis-academic/academic-records/internal/domain/shared"
)

// User is an account of the platform.
type User struct {
	ID           shared.ID
	Email        shared.Email
	Name         shared.PersonName
	Surname      shared.PersonName
	PasswordHash string
	Role         shared.UserRole
	Birthdate    *shared.Birthdate
	CreatedAt    time.Time
}

// NewUserParams holds the raw input for NewUser. PasswordHash must already
// be hashed with HashPassword.
type NewUserParams struct {
	ID           string
	Email        string
	Name         string
	Surname      string
	PasswordHash string
	Role         string
	Birthdate    *time.Time
}

// NewUser validates and builds a User.
func NewUser(params NewUserParams, now time.Time) (*User, error) {
	id, err := idOrNew(params.ID)
	if err != nil {
		return nil, err
	}
	email, err := shared.NewEmail(params.Email)
	if err != nil {
		return nil, err
	}
	name, err := shared.NewPersonName(params.Name)
	if err != nil {
		return nil, err
	}
	surname, err := shared.NewPersonName(params.Surname)
	if err != nil {
		return nil, err
	}
	if len(params.PasswordHash) < MinPasswordLength {
		return nil, shared.ErrInvalidPassword
	}
	role, err := shared.ParseUserRole(params.Role)
	if err != nil {
		return nil, err
	}

	u := &User{
		ID:           id,
		Email:        email,
		Name:         name,
		Surname:      surname,
		PasswordHash: params.PasswordHash,
		Role:         role,
		CreatedAt:    now.UTC(),
	}
	if params.Birthdate != nil {
		b, err := shared.NewBirthdate(*params.Birthdate, now)
		if err != nil {
			return nil, err
		}
		u.Birthdate = &b
	}
	return u, nil
}

// Identity implements shared.Identifiable.
func (u *User) Identity() shared.ID {
	return u.ID
}

// FullName returns "Name Surname".
func (u *User) FullName() string {
	return u.Name.String() + " " + u.Surname.String()
}

// ══════════════════════════════════════════════════════════════════════════════
// PROFILES
// ══════════════════════════════════════════════════════════════════════════════

// StudentProfile is the student-specific data of a STUDENT user.
type StudentProfile struct {
	ID          shared.ID
	UserID      shared.ID
	StudentCode shared.StudentCode
}

// NewStudentProfile validates and builds a StudentProfile.
func NewStudentProfile(id, userID, code string) (*StudentProfile, error) {
	profileID, err := idOrNew(id)
	if err != nil {
		return nil, err
	}
	uid, err := shared.ParseID(userID)
	if err != nil {
		return nil, err
	}
	studentCode, err := shared.NewStudentCode(code)
	if err != nil {
		return nil, err
	}
	return &StudentProfile{ID: profileID, UserID: uid, StudentCode: studentCode}, nil
}

// Identity implements shared.Identifiable.
func (p *StudentProfile) Identity() shared.ID {
	return p.ID
}

// Specialization limits.
const (
	minSpecialization = 3
	maxSpecialization = 150
)

// TeacherProfile is the teacher-specific data of a PROFESSOR user.
type TeacherProfile struct {
	ID             shared.ID
	UserID         shared.ID
	Specialization string
}

// NewTeacherProfile validates and builds a TeacherProfile.
func NewTeacherProfile(id, userID, specialization string) (*TeacherProfile, error) {
	profileID, err := idOrNew(id)
	if err != nil {
		return nil, err
	}
	uid, err := shared.ParseID(userID)
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(specialization)
	if n := utf8.RuneCountInString(trimmed); n < minSpecialization || n > maxSpecialization {
		return nil, shared.ErrTeacherProfileCreation.Withf("invalid specialization %q", specialization)
	}
	return &TeacherProfile{ID: profileID, UserID: uid, Specialization: trimmed}, nil
}

// Identity implements shared.Identifiable.
func (p *TeacherProfile) Identity() shared.ID {
	return p.ID
}

func idOrNew(raw string) (shared.ID, error) {
	if strings.TrimSpace(raw) == "" {
		return shared.NewID(), nil
	}
	return shared.ParseID(raw)
}
