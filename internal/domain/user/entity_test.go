package user_test

import (
	"testing"
	"time"

	"github.com/epis-academic/academic-records/internal/domain/shared"
	"github.com/epis-academic/academic-records/internal/domain/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, time.September, 10, 12, 0, 0, 0, time.UTC)

func TestHashPassword(t *testing.T) {
	hash, err := user.HashPassword("correct-horse-battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse-battery", hash)

	u, err := user.NewUser(user.NewUserParams{
		Email:        "ana@unsa.edu.pe",
		Name:         "Ana",
		Surname:      "Quispe",
		PasswordHash: hash,
		Role:         "STUDENT",
	}, now)
	require.NoError(t, err)
	assert.True(t, u.CheckPassword("correct-horse-battery"))
	assert.False(t, u.CheckPassword("correct-horse-batter"))

	_, err = user.HashPassword("123456789")
	assert.ErrorIs(t, err, shared.ErrInvalidPassword)
}

func TestNewUser(t *testing.T) {
	birthdate := time.Date(2003, time.May, 4, 15, 0, 0, 0, time.UTC)

	u, err := user.NewUser(user.NewUserParams{
		Email:        " Ana@UNSA.edu.pe",
		Name:         " Ana ",
		Surname:      "Quispe",
		PasswordHash: "$2a$10$not-a-real-hash",
		Role:         "student",
		Birthdate:    &birthdate,
	}, now.In(time.FixedZone("PET", -5*60*60)))
	require.NoError(t, err)

	assert.Equal(t, shared.Email("ana@unsa.edu.pe"), u.Email)
	assert.Equal(t, "Ana Quispe", u.FullName())
	assert.Equal(t, shared.RoleStudent, u.Role)
	assert.Equal(t, now, u.CreatedAt)
	assert.Equal(t, time.UTC, u.CreatedAt.Location())
	require.NotNil(t, u.Birthdate)
	assert.Equal(t, time.Date(2003, time.May, 4, 0, 0, 0, 0, time.UTC), u.Birthdate.Time())
}

func TestProfiles(t *testing.T) {
	userID := shared.NewID().String()

	sp, err := user.NewStudentProfile("", userID, "20231234")
	require.NoError(t, err)
	assert.Equal(t, "20231234", sp.StudentCode.String())

	_, err = user.NewStudentProfile("", userID, "2023-1234")
	assert.ErrorIs(t, err, shared.ErrInvalidStudentCode)

	tp, err := user.NewTeacherProfile("", userID, " Databases ")
	require.NoError(t, err)
	assert.Equal(t, "Databases", tp.Specialization)

	_, err = user.NewTeacherProfile("", userID, "AI")
	assert.ErrorIs(t, err, shared.ErrTeacherProfileCreation)
	assert.True(t, shared.IsValidation(err))
}
