package service

import (
	"context"
	"errors"

	"github.com/Skotchmaster/forum/internal/hash"
	"github.com/Skotchmaster/forum/internal/logging"
	"github.com/Skotchmaster/forum/internal/models"
	"github.com/Skotchmaster/forum/internal/repo"
	"github.com/Skotchmaster/forum/internal/token"
)

var ErrValidation = errors.New("validation error")

type AuthService struct {
	Users *repo.UserRepo
	Codec *token.Codec
}

type LoginResult struct {
	AccessToken string
	IsAdmin     bool
}

// Register creates a user with the "user" role and logs them straight in.
func (s *AuthService) Register(ctx context.Context, username, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if username == "" || password == "" {
		return nil, ErrValidation
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register failed", "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := models.User{
		Username:     username,
		PasswordHash: pwHash,
		Role:         "user",
	}
	if err := s.Users.Create(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrUserExists) {
			l.Warn("register failed", "reason", "user already exists", "username", username)
		} else {
			l.Error("register failed", "error", err)
		}
		return nil, err
	}

	accessToken, err := s.Codec.Issue(user.Username, user.Role, 0)
	if err != nil {
		l.Error("register failed", "reason", "cannot sign token", "error", err)
		return nil, err
	}

	return &LoginResult{AccessToken: accessToken}, nil
}

// Login verifies the credentials and issues a fresh access token. Unknown
// username and wrong password both come back as ErrInvalidCredentials so
// usernames cannot be enumerated.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	if username == "" || password == "" {
		return nil, ErrValidation
	}

	user, err := s.Users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("login failed", "reason", "unknown user")
			return nil, repo.ErrInvalidCredentials
		}
		l.Error("login failed", "error", err)
		return nil, err
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login failed", "reason", "wrong password")
		return nil, repo.ErrInvalidCredentials
	}

	accessToken, err := s.Codec.Issue(user.Username, user.Role, 0)
	if err != nil {
		l.Error("login failed", "reason", "cannot sign token", "error", err)
		return nil, err
	}

	return &LoginResult{
		AccessToken: accessToken,
		IsAdmin:     user.Role == "admin",
	}, nil
}
