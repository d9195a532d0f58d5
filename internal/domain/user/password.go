package user

import (
	"github.com/epis-academic/academic-records/internal/domain/shared"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength applies to plain passwords and to stored hashes.
const MinPasswordLength = 10

// HashPassword validates a plain password and returns its bcrypt hash.
func HashPassword(plain string) (string, error) {
	if len(plain) < MinPasswordLength {
		return "", shared.ErrInvalidPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", shared.ErrUserCreation.Wrap(err)
	}
	return string(hash), nil
}

// CheckPassword reports whether plain matches the user's stored hash.
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain)) == nil
}
