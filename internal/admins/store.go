package admins

import (
	"context"
	"errors"

	"github.com/mkezman/coindrop/pkg"
)

var _ Store = (*Repo)(nil)
var _ Store = (*InMemStore)(nil)

var (
	ErrAdminNotFound      = errors.New("administrator not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// DefaultBalance is shown for every administrator.
const DefaultBalance = "1000.00"

type Store interface {
	GetByID(ctx context.Context, id string) (*Administrator, error)
	GetByUsername(ctx context.Context, username string) (*Administrator, error)
	// Create hashes the given plaintext password and stores a new
	// active administrator. Fails with ErrUsernameTaken on a duplicate
	// username.
	Create(ctx context.Context, username, password string) (*Administrator, error)
	// VerifyCredentials returns ErrInvalidCredentials for an unknown
	// username, a wrong password and an inactive administrator alike.
	VerifyCredentials(ctx context.Context, username, password string) (*Administrator, error)
}

func verifyCredentials(admin *Administrator, err error, password string) (*Administrator, error) {
	if err != nil {
		if errors.Is(err, ErrAdminNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !admin.Active {
		return nil, ErrInvalidCredentials
	}
	if !pkg.CheckPasswordHash(password, admin.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return admin, nil
}
