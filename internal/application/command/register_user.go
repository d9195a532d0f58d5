package command

import (
	"context"
	"fmt"
	"time"

	"github.com/epis-academic/academic-records/internal/application/uow"
	"github.com/epis-academic/academic-records/internal/domain/shared"
	"github.com/epis-academic/academic-records/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER USER COMMAND
// Creates an account and, for students and professors, its role profile.
// ══════════════════════════════════════════════════════════════════════════════

// RegisterUserCommand contains the account data.
type RegisterUserCommand struct {
	Email    string
	Name     string
	Surname  string
	Password string
	Role     string

	// Birthdate is optional.
	Birthdate *time.Time

	// StudentCode is required for STUDENT accounts.
	StudentCode string

	// Specialization is required for PROFESSOR accounts.
	Specialization string
}

// Validate validates the command.
func (c RegisterUserCommand) Validate() error {
	if err := required("register_user", "email", c.Email); err != nil {
		return err
	}
	return required("register_user", "role", c.Role)
}

// RegisterUserResult contains the identifiers created.
type RegisterUserResult struct {
	UserID string

	// ProfileID is empty for roles without a profile.
	ProfileID string
}

// RegisterUserHandler handles the RegisterUserCommand.
type RegisterUserHandler struct {
	txManager uow.TxManager
	clock     Clock
}

// NewRegisterUserHandler creates a new RegisterUserHandler.
func NewRegisterUserHandler(txManager uow.TxManager, clock Clock) *RegisterUserHandler {
	return &RegisterUserHandler{txManager: txManager, clock: clock}
}

// Handle executes the register user command.
func (h *RegisterUserHandler) Handle(ctx context.Context, cmd RegisterUserCommand) (*RegisterUserResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("register_user: validation failed: %w", err)
	}
	hash, err := user.HashPassword(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("register_user: %w", err)
	}
	u, err := user.NewUser(user.NewUserParams{
		Email:        cmd.Email,
		Name:         cmd.Name,
		Surname:      cmd.Surname,
		PasswordHash: hash,
		Role:         cmd.Role,
		Birthdate:    cmd.Birthdate,
	}, h.clock.now())
	if err != nil {
		return nil, fmt.Errorf("register_user: %w", err)
	}

	result := &RegisterUserResult{UserID: u.ID.String()}
	err = h.txManager.WithTx(ctx, func(ctx context.Context, repos uow.Repositories) error {
		existing, err := repos.Users.FindByEmail(ctx, u.Email)
		if err != nil {
			return shared.Internal("user", "FindByEmail", err)
		}
		if existing != nil {
			return shared.ErrEmailAlreadyRegistered.Withf("email %s is already registered", u.Email)
		}
		if err := repos.Users.Save(ctx, u); err != nil {
			return shared.Internal("user", "Save", err)
		}

		switch u.Role {
		case shared.RoleStudent:
			p, err := user.NewStudentProfile("", u.ID.String(), cmd.StudentCode)
			if err != nil {
				return err
			}
			if err := repos.StudentProfiles.Save(ctx, p); err != nil {
				return shared.Internal("user", "SaveStudentProfile", err)
			}
			result.ProfileID = p.ID.String()
		case shared.RoleProfessor:
			p, err := user.NewTeacherProfile("", u.ID.String(), cmd.Specialization)
			if err != nil {
				return err
			}
			if err := repos.TeacherProfiles.Save(ctx, p); err != nil {
				return shared.Internal("user", "SaveTeacherProfile", err)
			}
			result.ProfileID = p.ID.String()
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("register_user: %w", err)
	}
	return result, nil
}
