package service

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/forum/internal/authz"
	"github.com/Skotchmaster/forum/internal/models"
	"github.com/Skotchmaster/forum/internal/repo"
	"github.com/Skotchmaster/forum/internal/token"
)

func newTestAuthService(t *testing.T) *AuthService {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Post{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return &AuthService{
		Users: &repo.UserRepo{DB: db},
		Codec: token.NewCodec([]byte("test-jwt-secret")),
	}
}

func TestAuthService_RegisterThenLogin(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, "newuser", "pw123")
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)
	assert.False(t, res.IsAdmin)

	claims, err := svc.Codec.Verify(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "newuser", claims.Username)
	assert.Equal(t, "user", claims.Role)

	role, ok := authz.ParseRole(claims.Role)
	require.True(t, ok)
	p := authz.Principal{Username: claims.Username, Role: role}
	assert.True(t, authz.Can(authz.ActionCreatePost, p, ""))

	loginRes, err := svc.Login(ctx, "newuser", "pw123")
	require.NoError(t, err)
	require.NotEmpty(t, loginRes.AccessToken)
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "dupe", "pw123")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "dupe", "other")
	assert.ErrorIs(t, err, repo.ErrUserExists)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "carol", "right")
	require.NoError(t, err)

	res, err := svc.Login(ctx, "carol", "wrong")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, repo.ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)

	// Same error as wrong password so usernames cannot be enumerated.
	res, err := svc.Login(context.Background(), "nobody", "pw123")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, repo.ErrInvalidCredentials)
}

func TestAuthService_Validation(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "empty username", username: "", password: "secret"},
		{name: "empty password", username: "user", password: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := svc.Register(ctx, tt.username, tt.password)
			assert.ErrorIs(t, err, ErrValidation)

			res, err := svc.Login(ctx, tt.username, tt.password)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestAuthService_Login_AdminFlag(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "boss", "pw123")
	require.NoError(t, err)
	require.NoError(t, svc.Users.UpdateRole(ctx, "boss", "admin"))

	res, err := svc.Login(ctx, "boss", "pw123")
	require.NoError(t, err)
	assert.True(t, res.IsAdmin)

	claims, err := svc.Codec.Verify(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
}
