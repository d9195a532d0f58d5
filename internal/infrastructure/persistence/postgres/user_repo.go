package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/epis-academic/academic-records/internal/domain/shared"
	"github.com/epis-academic/academic-records/internal/domain/user"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// USER REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

var userColumns = columns("id", "email", "name", "surname", "password_hash", "role", "birthdate", "created_at")

const userSelect = `
	SELECT id, email, name, surname, password_hash, role, birthdate, created_at
	FROM users
`

// UserRepository implements user.Repository for PostgreSQL.
type UserRepository struct {
	q Querier
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(q Querier) *UserRepository {
	return &UserRepository{q: q}
}

// FindByID returns the user or nil.
func (r *UserRepository) FindByID(ctx context.Context, id shared.ID) (*user.User, error) {
	u, err := queryOne(ctx, r.q, scanUser, userSelect+"WHERE id = $1", id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// FindByEmail returns the user registered with the email or nil.
func (r *UserRepository) FindByEmail(ctx context.Context, email shared.Email) (*user.User, error) {
	u, err := queryOne(ctx, r.q, scanUser, userSelect+"WHERE email = $1", email.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

// FindByIDs returns the users that exist among ids.
func (r *UserRepository) FindByIDs(ctx context.Context, ids []shared.ID) ([]*user.User, error) {
	users, err := queryIn(ctx, r.q, scanUser, "users", userColumns, "id", ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query users by ids: %w", err)
	}
	return users, nil
}

// FindAll returns every user ordered by surname.
func (r *UserRepository) FindAll(ctx context.Context) ([]*user.User, error) {
	users, err := queryAll(ctx, r.q, scanUser, userSelect+"ORDER BY surname, name")
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Save inserts or updates the user.
func (r *UserRepository) Save(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (id, email, name, surname, password_hash, role, birthdate, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			surname = EXCLUDED.surname,
			password_hash = EXCLUDED.password_hash,
			role = EXCLUDED.role,
			birthdate = EXCLUDED.birthdate
	`

	var birthdate *time.Time
	if u.Birthdate != nil {
		t := u.Birthdate.Time()
		birthdate = &t
	}

	_, err := r.q.Exec(ctx, query,
		u.ID.String(),
		u.Email.String(),
		u.Name.String(),
		u.Surname.String(),
		u.PasswordHash,
		string(u.Role),
		birthdate,
		u.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrEmailAlreadyRegistered.Withf("email %s is already registered", u.Email)
		}
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// Delete removes the user and its profiles.
func (r *UserRepository) Delete(ctx context.Context, id shared.ID) error {
	if err := execDelete(ctx, r.q, "users", id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	var id, email, name, surname, role string
	var birthdate *time.Time

	err := row.Scan(&id, &email, &name, &surname, &u.PasswordHash, &role, &birthdate, &u.CreatedAt)
	if err != nil {
		return nil, err
	}

	u.ID = shared.ID(id)
	u.Email = shared.Email(email)
	u.Name = shared.PersonName(name)
	u.Surname = shared.PersonName(surname)
	u.Role = shared.UserRole(role)
	if birthdate != nil {
		b, err := shared.NewBirthdate(*birthdate, *birthdate)
		if err != nil {
			return nil, err
		}
		u.Birthdate = &b
	}
	return &u, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT PROFILE REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// StudentProfileRepository implements user.StudentProfileRepository.
type StudentProfileRepository struct {
	q Querier
}

// NewStudentProfileRepository creates a new StudentProfileRepository.
func NewStudentProfileRepository(q Querier) *StudentProfileRepository {
	return &StudentProfileRepository{q: q}
}

// FindByID returns the profile or nil.
func (r *StudentProfileRepository) FindByID(ctx context.Context, id shared.ID) (*user.StudentProfile, error) {
	p, err := queryOne(ctx, r.q, scanStudentProfile,
		"SELECT id, user_id, student_code FROM student_profiles WHERE id = $1", id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get student profile: %w", err)
	}
	return p, nil
}

// FindByIDs returns the profiles that exist among ids.
func (r *StudentProfileRepository) FindByIDs(ctx context.Context, ids []shared.ID) ([]*user.StudentProfile, error) {
	profiles, err := queryIn(ctx, r.q, scanStudentProfile, "student_profiles",
		columns("id", "user_id", "student_code"), "id", ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query student profiles: %w", err)
	}
	return profiles, nil
}

// FindByUserID returns the profile of the user or nil.
func (r *StudentProfileRepository) FindByUserID(ctx context.Context, userID shared.ID) (*user.StudentProfile, error) {
	p, err := queryOne(ctx, r.q, scanStudentProfile,
		"SELECT id, user_id, student_code FROM student_profiles WHERE user_id = $1", userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get student profile by user: %w", err)
	}
	return p, nil
}

// Save inserts or updates the profile.
func (r *StudentProfileRepository) Save(ctx context.Context, p *user.StudentProfile) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO student_profiles (id, user_id, student_code)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET student_code = EXCLUDED.student_code
	`, p.ID.String(), p.UserID.String(), p.StudentCode.String())
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrStudentProfileCreation.Withf("student code %s is already taken", p.StudentCode)
		}
		return fmt.Errorf("failed to save student profile: %w", err)
	}
	return nil
}

func scanStudentProfile(row pgx.Row) (*user.StudentProfile, error) {
	var id, userID, code string
	if err := row.Scan(&id, &userID, &code); err != nil {
		return nil, err
	}
	return &user.StudentProfile{
		ID:          shared.ID(id),
		UserID:      shared.ID(userID),
		StudentCode: shared.StudentCode(code),
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// TEACHER PROFILE REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// TeacherProfileRepository implements user.TeacherProfileRepository.
type TeacherProfileRepository struct {
	q Querier
}

// NewTeacherProfileRepository creates a new TeacherProfileRepository.
func NewTeacherProfileRepository(q Querier) *TeacherProfileRepository {
	return &TeacherProfileRepository{q: q}
}

// FindByID returns the profile or nil.
func (r *TeacherProfileRepository) FindByID(ctx context.Context, id shared.ID) (*user.TeacherProfile, error) {
	p, err := queryOne(ctx, r.q, scanTeacherProfile,
		"SELECT id, user_id, specialization FROM teacher_profiles WHERE id = $1", id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get teacher profile: %w", err)
	}
	return p, nil
}

// FindByUserID returns the profile of the user or nil.
func (r *TeacherProfileRepository) FindByUserID(ctx context.Context, userID shared.ID) (*user.TeacherProfile, error) {
	p, err := queryOne(ctx, r.q, scanTeacherProfile,
		"SELECT id, user_id, specialization FROM teacher_profiles WHERE user_id = $1", userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get teacher profile by user: %w", err)
	}
	return p, nil
}

// Save inserts or updates the profile.
func (r *TeacherProfileRepository) Save(ctx context.Context, p *user.TeacherProfile) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO teacher_profiles (id, user_id, specialization)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET specialization = EXCLUDED.specialization
	`, p.ID.String(), p.UserID.String(), p.Specialization)
	if err != nil {
		return fmt.Errorf("failed to save teacher profile: %w", err)
	}
	return nil
}

func scanTeacherProfile(row pgx.Row) (*user.TeacherProfile, error) {
	var id, userID string
	p := &user.TeacherProfile{}
	if err := row.Scan(&id, &userID, &p.Specialization); err != nil {
		return nil, err
	}
	p.ID = shared.ID(id)
	p.UserID = shared.ID(userID)
	return p, nil
}

