package admins

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
)

// EnsureAdmin creates the administrator if the username is not present
// yet, so a fresh deployment always has someone who can log in.
func EnsureAdmin(ctx context.Context, store Store, username, password string) (*Administrator, error) {
	admin, err := store.GetByUsername(ctx, username)
	if err == nil {
		return admin, nil
	}
	if !errors.Is(err, ErrAdminNotFound) {
		return nil, fmt.Errorf("get admin %s: %w", username, err)
	}

	admin, err = store.Create(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("create admin %s: %w", username, err)
	}

	log.Infof("seeded administrator [%s]", username)
	return admin, nil
}
