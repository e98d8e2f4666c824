//go:build integration_test || all_tests

package distributions

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/mkezman/coindrop/internal/admins"
	"github.com/mkezman/coindrop/internal/db"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRepoSetup(t *testing.T) (*Repo, *admins.Repo, func()) {
	t.Helper()

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	host := os.Getenv("POSTGRES_HOST")
	if host == "" {
		host = "localhost"
	}
	t.Logf("using postgres host: %s", host)

	dbPool, err := db.NewDBPool(timeoutCtx, db.NewDBPoolParams{
		DBHost:         host,
		DBPort:         "5432",
		DBName:         "coindrop",
		TracingEnabled: false,
	})
	require.NoError(t, err)

	return NewRepo(dbPool), admins.NewRepo(dbPool), func() {
		dbPool.Close()
	}
}

func TestRepo_Append_List(t *testing.T) {
	ctx := context.Background()
	repo, adminsRepo, shutdown := testRepoSetup(t)
	defer shutdown()

	admin, err := adminsRepo.Create(
		ctx,
		gofakeit.Username(),
		gofakeit.Password(true, true, true, false, false, 12),
	)
	require.NoError(t, err)

	uid := gofakeit.UUID()
	tx, err := repo.Append(ctx, Transaction{
		UserUID:       uid,
		UCAmount:      100,
		CoinsAmount:   0,
		AdminID:       admin.ID,
		AdminUsername: admin.Username,
	})
	require.NoError(t, err)
	require.NotNil(t, tx)
	assert.NotEmpty(t, tx.ID)
	assert.Equal(t, StatusCompleted, tx.Status)

	tx2, err := repo.Append(ctx, Transaction{
		UserUID:       uid,
		CoinsAmount:   50,
		AdminID:       admin.ID,
		AdminUsername: admin.Username,
	})
	require.NoError(t, err)

	transactions, err := repo.ListByUID(ctx, uid)
	require.NoError(t, err)
	require.Len(t, transactions, 2)
	assert.Equal(t, tx2.ID, transactions[0].ID)
	assert.Equal(t, tx.ID, transactions[1].ID)

	page, total, err := repo.ListRecent(ctx, 2, 0)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, total, 2)
	require.Len(t, page, 2)
	assert.Equal(t, tx2.ID, page[0].ID)
	assert.Equal(t, tx.ID, page[1].ID)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, total, count)
}

func TestRepo_Append_UnknownAdmin(t *testing.T) {
	ctx := context.Background()
	repo, _, shutdown := testRepoSetup(t)
	defer shutdown()

	tx, err := repo.Append(ctx, Transaction{
		UserUID:       gofakeit.UUID(),
		UCAmount:      10,
		AdminID:       gofakeit.UUID(),
		AdminUsername: "ghost",
	})
	assert.Nil(t, tx)
	assert.Error(t, err)
}
