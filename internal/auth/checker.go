package auth

import "context"

var _ Checker = (*LoginChecker)(nil)
var _ Checker = (*LoginTestChecker)(nil)

type Checker interface {
	IsLogged(ctx context.Context, token string) (bool, error)
	// GetSession resolves a token to the bound administrator identity.
	// Returns ErrNoSession for an unknown, revoked or expired token.
	GetSession(ctx context.Context, token string) (*Session, error)
}
