package admins

import (
	"context"
	"fmt"
	"sync"

	"github.com/mkezman/coindrop/pkg"

	"github.com/google/uuid"
)

// InMemStore keeps administrators in process memory, indexed by id and
// by username. Picked via the store_backend config; data does not
// survive a restart.
type InMemStore struct {
	mutex       sync.RWMutex
	byID        map[string]*Administrator
	usernameIdx map[string]string
}

func NewInMemStore() *InMemStore {
	return &InMemStore{
		byID:        make(map[string]*Administrator),
		usernameIdx: make(map[string]string),
	}
}

func (s *InMemStore) GetByID(_ context.Context, id string) (*Administrator, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	admin, ok := s.byID[id]
	if !ok {
		return nil, ErrAdminNotFound
	}
	adminCopy := *admin
	return &adminCopy, nil
}

func (s *InMemStore) GetByUsername(_ context.Context, username string) (*Administrator, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	id, ok := s.usernameIdx[username]
	if !ok {
		return nil, ErrAdminNotFound
	}
	adminCopy := *s.byID[id]
	return &adminCopy, nil
}

func (s *InMemStore) Create(_ context.Context, username, password string) (*Administrator, error) {
	passwordHash, err := pkg.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, taken := s.usernameIdx[username]; taken {
		return nil, ErrUsernameTaken
	}

	admin := &Administrator{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		Active:       true,
		Balance:      DefaultBalance,
	}
	s.byID[admin.ID] = admin
	s.usernameIdx[admin.Username] = admin.ID

	adminCopy := *admin
	return &adminCopy, nil
}

func (s *InMemStore) VerifyCredentials(ctx context.Context, username, password string) (*Administrator, error) {
	admin, err := s.GetByUsername(ctx, username)
	return verifyCredentials(admin, err, password)
}
