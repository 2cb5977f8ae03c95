package service

import (
	"errors"
	"time"

	dmn "github.com/beka-birhanu/vinom-labyrinth/domain"
	"github.com/beka-birhanu/vinom-labyrinth/service/i"
	"github.com/google/uuid"
)

const tokenLifetime = 24 * time.Hour

// Auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNilDependency      = errors.New("missing dependency")
)

var _ i.Authenticator = &Auth{}

// Auth registers players and issues their tokens.
type Auth struct {
	userRepo  i.UserRepo
	tokenizer i.Tokenizer
}

// NewAuthService creates an Auth service.
func NewAuthService(userRepo i.UserRepo, tokenizer i.Tokenizer) (*Auth, error) {
	if userRepo == nil || tokenizer == nil {
		return nil, ErrNilDependency
	}
	return &Auth{
		userRepo:  userRepo,
		tokenizer: tokenizer,
	}, nil
}

// Register implements i.Authenticator.
func (a *Auth) Register(username, password string) error {
	userConfig := dmn.UserConfig{
		ID:            uuid.New(),
		Username:      username,
		PlainPassword: password,
	}

	user, err := dmn.NewUser(userConfig)
	if err != nil {
		return err
	}

	return a.userRepo.Save(user)
}

// SignIn implements i.Authenticator.
func (a *Auth) SignIn(username, password string) (*dmn.User, string, error) {
	user, err := a.userRepo.ByUsername(username)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if !user.VerifyPassword(password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := a.tokenizer.Generate(map[string]interface{}{
		"userID":   user.ID,
		"username": user.Username,
	}, tokenLifetime)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}
