package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/mkezman/coindrop/internal/admins"
	"github.com/mkezman/coindrop/internal/telemetry/metrics"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLoginHandlerSetup(t *testing.T) (*Handler, redismock.ClientMock, *admins.Administrator) {
	t.Helper()

	rdb, mock := redismock.NewClientMock()
	t.Cleanup(func() { _ = rdb.Close() })

	store, admin := testAdminsStore(t)
	authService := NewService(store, DefaultTTL, rdb)
	handler := NewHandler(
		authService,
		NewLoginChecker(DefaultTTL, rdb),
		store,
		metrics.NewTestManager(),
	)
	return handler, mock, admin
}

func TestHandler_Login(t *testing.T) {
	handler, mock, admin := testLoginHandlerSetup(t)

	testToken := "test_token"
	handler.authService.RandStringFunc = func(s int) (string, error) {
		return testToken, nil
	}

	mock.Regexp().ExpectSet(regexp.QuoteMeta(sessionKeyPrefix+testToken), `.+`, 0).SetVal("OK")
	mock.ExpectSAdd(tokensSetKey, testToken).SetVal(1)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(`{"username":"testadmin","password":"testpass"}`))
	req.Header.Set("Content-Type", "application/json")

	handler.handleLogin(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var loginResp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &loginResp))
	assert.Equal(t, admin.ID, loginResp.Admin.ID)
	assert.Equal(t, "testadmin", loginResp.Admin.Username)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.Equal(t, testToken, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestHandler_Login_InvalidCredentials(t *testing.T) {
	handler, _, _ := testLoginHandlerSetup(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(`{"username":"testadmin","password":"nope"}`))
	req.Header.Set("Content-Type", "application/json")

	handler.handleLogin(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid credentials")
	assert.Empty(t, rec.Result().Cookies())
}

func TestHandler_Login_Validation(t *testing.T) {
	handler, _, _ := testLoginHandlerSetup(t)

	for name, tc := range map[string]struct {
		body          string
		expectedField string
	}{
		"empty username": {body: `{"username":"","password":"testpass"}`, expectedField: "username"},
		"empty password": {body: `{"username":"testadmin","password":""}`, expectedField: "password"},
		"broken json":    {body: `{]`, expectedField: "body"},
	} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")

			handler.handleLogin(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.expectedField)
		})
	}
}

func TestHandler_Logout(t *testing.T) {
	handler, mock, _ := testLoginHandlerSetup(t)

	testToken := "test_token"
	mock.ExpectDel(sessionKeyPrefix + testToken).SetVal(1)
	mock.ExpectSRem(tokensSetKey, testToken).SetVal(1)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: testToken})

	handler.handleLogout(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "logged out")

	// session cookie cleared
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
}

func TestHandler_Logout_NoToken(t *testing.T) {
	handler, _, _ := testLoginHandlerSetup(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/logout", nil)

	handler.handleLogout(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_Me(t *testing.T) {
	store := admins.NewInMemStore()
	admin, err := store.Create(context.Background(), "testadmin", "testpass")
	require.NoError(t, err)

	testChecker := NewLoginTestChecker()
	testChecker.LoggedSessions["test_token"] = &Session{
		AdminID:       admin.ID,
		AdminUsername: admin.Username,
		CreatedAtUnix: time.Now().Unix(),
	}

	handler := NewHandler(nil, testChecker, store, metrics.NewTestManager())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/auth/me", nil)
	req.Header.Set(TokenHeaderName, "test_token")

	handler.handleMe(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var meResp MeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &meResp))
	assert.Equal(t, admin.ID, meResp.Admin.ID)
	assert.Equal(t, "testadmin", meResp.Admin.Username)
	assert.Equal(t, admins.DefaultBalance, meResp.Admin.Balance)
}

func TestHandler_Me_Anonymous(t *testing.T) {
	store := admins.NewInMemStore()
	handler := NewHandler(nil, NewLoginTestChecker(), store, metrics.NewTestManager())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/auth/me", nil)
	req.Header.Set(TokenHeaderName, "unknown_token")

	handler.handleMe(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_Me_AdminVanished(t *testing.T) {
	store := admins.NewInMemStore()
	testChecker := NewLoginTestChecker()
	testChecker.LoggedSessions["test_token"] = &Session{
		AdminID:       "gone-admin-id",
		AdminUsername: "ghost",
		CreatedAtUnix: time.Now().Unix(),
	}

	handler := NewHandler(nil, testChecker, store, metrics.NewTestManager())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/auth/me", nil)
	req.Header.Set(TokenHeaderName, "test_token")

	handler.handleMe(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
