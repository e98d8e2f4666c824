package distributions

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemStore keeps the ledger in an append-ordered slice. Appends are
// strictly newer than everything before them (time.Now is monotonic
// within a process), so reverse slice order is the recency order, with
// timestamp ties broken by insertion order.
type InMemStore struct {
	mutex        sync.RWMutex
	transactions []Transaction
}

func NewInMemStore() *InMemStore {
	return &InMemStore{}
}

func (s *InMemStore) Append(_ context.Context, tx Transaction) (*Transaction, error) {
	tx.ID = uuid.NewString()
	tx.Status = StatusCompleted
	tx.CreatedAt = time.Now()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.transactions = append(s.transactions, tx)
	return &tx, nil
}

func (s *InMemStore) ListRecent(_ context.Context, limit, offset int) ([]Transaction, int, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	total := len(s.transactions)
	page := []Transaction{}
	for i := total - 1 - offset; i >= 0 && len(page) < limit; i-- {
		page = append(page, s.transactions[i])
	}
	return page, total, nil
}

func (s *InMemStore) ListByUID(_ context.Context, uid string) ([]Transaction, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	matched := []Transaction{}
	for i := len(s.transactions) - 1; i >= 0; i-- {
		if s.transactions[i].UserUID == uid {
			matched = append(matched, s.transactions[i])
		}
	}
	return matched, nil
}

func (s *InMemStore) Count(_ context.Context) (int, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.transactions), nil
}
