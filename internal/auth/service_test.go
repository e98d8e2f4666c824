package auth

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mkezman/coindrop/internal/admins"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// INFO: https://github.com/go-redis/redis/issues/1029
		goleak.IgnoreTopFunction(
			"github.com/go-redis/redis/v8/internal/pool.(*ConnPool).reaper",
		),
	)
}

func testAdminsStore(t *testing.T) (admins.Store, *admins.Administrator) {
	t.Helper()
	store := admins.NewInMemStore()
	admin, err := store.Create(context.Background(), "testadmin", "testpass")
	require.NoError(t, err)
	return store, admin
}

func TestService_Login(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer rdb.Close()

	store, admin := testAdminsStore(t)
	authService := NewService(store, time.Hour, rdb)
	require.NotNil(t, authService)

	testToken := "test_token"
	authService.RandStringFunc = func(s int) (string, error) {
		return testToken, nil
	}

	now := time.Now()
	sessionJson, err := json.Marshal(Session{
		AdminID:       admin.ID,
		AdminUsername: admin.Username,
		CreatedAtUnix: now.Unix(),
	})
	require.NoError(t, err)

	sessionKey := sessionKeyPrefix + testToken
	mock.ExpectSet(sessionKey, sessionJson, 0).SetVal("OK")
	mock.ExpectSAdd(tokensSetKey, testToken).SetVal(1)

	token, loggedAdmin, err := authService.Login(context.Background(), "testadmin", "testpass", now)
	require.NoError(t, err)
	assert.Equal(t, testToken, token)
	require.NotNil(t, loggedAdmin)
	assert.Equal(t, admin.ID, loggedAdmin.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Login_InvalidCredentials(t *testing.T) {
	rdb, _ := redismock.NewClientMock()
	defer rdb.Close()

	store, _ := testAdminsStore(t)
	authService := NewService(store, time.Hour, rdb)

	for name, creds := range map[string]struct {
		username string
		password string
	}{
		"wrong password":   {username: "testadmin", password: "invalid_pass"},
		"unknown username": {username: "whoisthis", password: "testpass"},
	} {
		t.Run(name, func(t *testing.T) {
			token, admin, err := authService.Login(context.Background(), creds.username, creds.password, time.Now())
			assert.ErrorIs(t, err, admins.ErrInvalidCredentials)
			assert.Empty(t, token)
			assert.Nil(t, admin)
		})
	}
}

func TestService_Logout(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer rdb.Close()

	store, _ := testAdminsStore(t)
	authService := NewService(store, time.Hour, rdb)

	testToken := "test_token"
	sessionKey := sessionKeyPrefix + testToken
	mock.ExpectDel(sessionKey).SetVal(1)
	mock.ExpectSRem(tokensSetKey, testToken).SetVal(1)

	require.NoError(t, authService.Logout(context.Background(), testToken))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Logout_UnknownToken_Idempotent(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer rdb.Close()

	store, _ := testAdminsStore(t)
	authService := NewService(store, time.Hour, rdb)

	// nothing deleted, still not an error
	sessionKey := sessionKeyPrefix + "never-issued"
	mock.ExpectDel(sessionKey).SetVal(0)
	mock.ExpectSRem(tokensSetKey, "never-issued").SetVal(0)

	require.NoError(t, authService.Logout(context.Background(), "never-issued"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestService_ScanAndClean(t *testing.T) {
	ttl := time.Hour
	now := time.Now()
	then := now.Add(-2 * time.Hour)

	rdb, mock := redismock.NewClientMock()
	defer rdb.Close()

	store, admin := testAdminsStore(t)
	authService := NewService(store, ttl, rdb)

	freshJson, err := json.Marshal(Session{AdminID: admin.ID, AdminUsername: admin.Username, CreatedAtUnix: now.Unix()})
	require.NoError(t, err)
	staleJson, err := json.Marshal(Session{AdminID: admin.ID, AdminUsername: admin.Username, CreatedAtUnix: then.Unix()})
	require.NoError(t, err)

	t1, t2 := "token1", "token2"
	mock.ExpectSMembers(tokensSetKey).SetVal([]string{t1, t2})
	mock.ExpectGet(sessionKeyPrefix + t1).SetVal(string(staleJson))
	mock.ExpectGet(sessionKeyPrefix + t2).SetVal(string(freshJson))
	// only the stale session gets removed
	mock.ExpectDel(sessionKeyPrefix + t1).SetVal(1)
	mock.ExpectSRem(tokensSetKey, t1).SetVal(1)

	authService.ScanAndClean(context.Background())
	require.NoError(t, mock.ExpectationsWereMet())
}
