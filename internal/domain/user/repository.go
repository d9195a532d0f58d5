package user

import (
	"context"

	"github.com/epis-academic/academic-records/internal/domain/shared"
)

// Repository stores users. Absence is reported as a nil user.
type Repository interface {
	FindByID(ctx context.Context, id shared.ID) (*User, error)
	FindByEmail(ctx context.Context, email shared.Email) (*User, error)
	FindByIDs(ctx context.Context, ids []shared.ID) ([]*User, error)
	FindAll(ctx context.Context) ([]*User, error)
	Save(ctx context.Context, user *User) error
	Delete(ctx context.Context, id shared.ID) error
}

// StudentProfileRepository stores student profiles.
type StudentProfileRepository interface {
	FindByID(ctx context.Context, id shared.ID) (*StudentProfile, error)
	FindByIDs(ctx context.Context, ids []shared.ID) ([]*StudentProfile, error)
	FindByUserID(ctx context.Context, userID shared.ID) (*StudentProfile, error)
	Save(ctx context.Context, profile *StudentProfile) error
}

// TeacherProfileRepository stores teacher profiles.
type TeacherProfileRepository interface {
	FindByID(ctx context.Context, id shared.ID) (*TeacherProfile, error)
	FindByUserID(ctx context.Context, userID shared.ID) (*TeacherProfile, error)
	Save(ctx context.Context, profile *TeacherProfile) error
}
