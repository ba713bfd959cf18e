package seed

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"log"

	"github.com/Skotchmaster/forum/internal/hash"
	"github.com/Skotchmaster/forum/internal/models"
	"github.com/Skotchmaster/forum/internal/repo"
)

// BootstrapAdmin creates the initial "admin" account when no admin exists.
// Idempotent: a second run does nothing. When password is empty a random
// one is generated and logged once so the operator can pick it up.
func BootstrapAdmin(ctx context.Context, users *repo.UserRepo, password string) error {
	has, err := users.HasAdmin(ctx)
	if err != nil {
		return err
	}
	if has {
		return nil
	}

	generated := false
	if password == "" {
		password, err = randomPassword(24)
		if err != nil {
			return err
		}
		generated = true
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return err
	}

	admin := models.User{
		Username:     "admin",
		PasswordHash: pwHash,
		Role:         "admin",
	}
	if err := users.Create(ctx, &admin); err != nil {
		return err
	}

	if generated {
		log.Printf("initial admin created username=admin password=%s", password)
	} else {
		log.Printf("initial admin created username=admin")
	}
	return nil
}

func randomPassword(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf)[:n], nil
}
