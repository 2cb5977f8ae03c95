package domain

import (
	"errors"
	"regexp"

	"github.com/google/uuid"
	"github.com/nbutton23/zxcvbn-go"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordStrengthScore = 3

	usernamePattern   = `^[a-zA-Z0-9_]+$` // Alphanumeric with underscores
	minUsernameLength = 3
	maxUsernameLength = 20

	passwordHashCost = 12
)

var (
	usernameRegex = regexp.MustCompile(usernamePattern)
)

// User validation errors.
var (
	ErrUsernameTooShort      = errors.New("username too short")
	ErrUsernameTooLong       = errors.New("username too long")
	ErrInvalidUsernameFormat = errors.New("invalid username format")
	ErrWeakPassword          = errors.New("weak password")
)

// User is a registered player.
type User struct {
	ID              uuid.UUID `bson:"_id"`
	Username        string    `bson:"username"`
	PasswordHash    string    `bson:"passwordHash"`
	LevelsCompleted int       `bson:"levelsCompleted"`
}

// UserConfig holds parameters for creating a User from a plain password.
type UserConfig struct {
	ID            uuid.UUID
	Username      string
	PlainPassword string
}

// NewUser creates a new User with the provided configuration.
func NewUser(config UserConfig) (*User, error) {
	if err := validateUsername(config.Username); err != nil {
		return nil, err
	}

	if err := validatePassword(config.PlainPassword); err != nil {
		return nil, err
	}

	passwordHash, err := hashPassword(config.PlainPassword)
	if err != nil {
		return nil, err
	}

	return &User{
		ID:           config.ID,
		Username:     config.Username,
		PasswordHash: passwordHash,
	}, nil
}

// VerifyPassword verifies if the given password matches the stored hash.
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// validateUsername validates the username.
func validateUsername(username string) error {
	if len(username) < minUsernameLength {
		return ErrUsernameTooShort
	}
	if len(username) > maxUsernameLength {
		return ErrUsernameTooLong
	}
	if !usernameRegex.MatchString(username) {
		return ErrInvalidUsernameFormat
	}
	return nil
}

// validatePassword checks the strength of the password.
func validatePassword(password string) error {
	result := zxcvbn.PasswordStrength(password, nil)
	if result.Score < minPasswordStrengthScore {
		return ErrWeakPassword
	}
	return nil
}

// hashPassword generates a bcrypt hash for the given password.
func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	return string(bytes), err
}
