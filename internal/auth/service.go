package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mkezman/coindrop/internal/admins"
	"github.com/mkezman/coindrop/pkg"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

// Service issues and revokes login sessions. Tokens are random opaque
// strings; a token not present in the session store was either never
// issued or has been revoked, and is rejected either way.
type Service struct {
	adminsStore admins.Store
	ttl         time.Duration
	redisClient *redis.Client
	// ability to inject random string generator func for tokens (for unit and dev testing)
	RandStringFunc func(s int) (string, error)
}

func NewService(
	adminsStore admins.Store,
	ttl time.Duration,
	redisClient *redis.Client,
) *Service {
	return &Service{
		adminsStore:    adminsStore,
		ttl:            ttl,
		redisClient:    redisClient,
		RandStringFunc: pkg.GenerateRandomString,
	}
}

// Login verifies the credentials and establishes a new session bound to
// the administrator. Returns admins.ErrInvalidCredentials on any
// verification failure, never distinguishing unknown username from
// wrong password.
func (as *Service) Login(
	ctx context.Context,
	username, password string,
	createdAt time.Time,
) (string, *admins.Administrator, error) {
	admin, err := as.adminsStore.VerifyCredentials(ctx, username, password)
	if err != nil {
		return "", nil, err
	}

	token, err := as.RandStringFunc(35)
	if err != nil {
		return "", nil, fmt.Errorf("generate session token: %w", err)
	}

	session := Session{
		AdminID:       admin.ID,
		AdminUsername: admin.Username,
		CreatedAtUnix: createdAt.Unix(),
	}
	sessionJson, err := json.Marshal(session)
	if err != nil {
		return "", nil, fmt.Errorf("marshal session: %w", err)
	}

	sessionKey := sessionKeyPrefix + token
	if err := as.redisClient.Set(ctx, sessionKey, sessionJson, 0).Err(); err != nil {
		return "", nil, err
	}

	// add token to the set of live sessions
	if err := as.redisClient.SAdd(ctx, tokensSetKey, token).Err(); err != nil {
		return "", nil, err
	}

	return token, admin, nil
}

// Logout revokes the session. Idempotent: revoking an unknown or
// already-revoked token is not an error.
func (as *Service) Logout(ctx context.Context, token string) error {
	sessionKey := sessionKeyPrefix + token

	if err := as.redisClient.Del(ctx, sessionKey).Err(); err != nil {
		return err
	}
	if err := as.redisClient.SRem(ctx, tokensSetKey, token).Err(); err != nil {
		return err
	}

	return nil
}

// ScanAndClean will run through all sessions, check the TTL, and clean them if old
func (as *Service) ScanAndClean(ctx context.Context) {
	cmd := as.redisClient.SMembers(ctx, tokensSetKey)
	if err := cmd.Err(); err != nil {
		log.Errorf("!!! auth service, scan and clean, get sessions: %s", err)
		return
	}

	sessionTokens := cmd.Val()
	if len(sessionTokens) == 0 {
		log.Debugln("=> auth service, scan and clean abort, no sessions")
		return
	}

	log.Debugf("=> auth service, scan and clean [%d sessions] start ...", len(sessionTokens))
	var toRemove []string
	for _, token := range sessionTokens {
		sessionKey := sessionKeyPrefix + token
		sessionJson, err := as.redisClient.Get(ctx, sessionKey).Result()
		if err != nil {
			log.Errorf("=> auth service, scan and clean token %s: %s", token, err)
			continue
		}

		var session Session
		if err := json.Unmarshal([]byte(sessionJson), &session); err != nil {
			log.Errorf("=> auth service, scan and clean token %s: %s", token, err)
			toRemove = append(toRemove, token)
			continue
		}

		if time.Since(session.CreatedAt()) > as.ttl {
			toRemove = append(toRemove, token)
		}
	}

	for _, token := range toRemove {
		if err := as.Logout(ctx, token); err != nil {
			log.Errorf("=> auth service, clean token %s: %s", token, err)
		}
	}
	log.Debugf("=> auth service, scan and clean done, removed %d", len(toRemove))
}
