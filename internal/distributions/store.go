package distributions

import "context"

var _ Store = (*Repo)(nil)
var _ Store = (*InMemStore)(nil)

// Store is the append-only transaction ledger. All reads reflect all
// writes that completed before the read began; there is no cache layer
// in between.
//
// ListRecent uses plain offset pagination with no snapshot isolation
// across concurrent writes: a write landing between two paginated reads
// may shift result membership by one position. Accepted for this tool's
// scale, by the spec of the product, and deliberately not "fixed" here.
type Store interface {
	// Append assigns the identifier, creation timestamp and completed
	// status, then stores the record.
	Append(ctx context.Context, tx Transaction) (*Transaction, error)
	// ListRecent returns up to limit transactions starting at offset,
	// most recent first, plus the total number of stored transactions.
	ListRecent(ctx context.Context, limit, offset int) ([]Transaction, int, error)
	// ListByUID returns all transactions for the given user UID, most
	// recent first.
	ListByUID(ctx context.Context, uid string) ([]Transaction, error)
	Count(ctx context.Context) (int, error)
}
