package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testCorsSetup() http.Handler {
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return Cors()(nextHandler)
}

func TestCors_AllowedOrigin(t *testing.T) {
	handler := testCorsSetup()

	req := httptest.NewRequest("GET", "/transactions", nil)
	req.Header.Set("Origin", "http://localhost:8080")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "http://localhost:8080", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCors_NoOrigin(t *testing.T) {
	handler := testCorsSetup()

	// non-browser clients send no origin and get no CORS headers
	req := httptest.NewRequest("GET", "/transactions", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestCors_ForbiddenOrigin(t *testing.T) {
	handler := testCorsSetup()

	req := httptest.NewRequest("GET", "/transactions", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestCors_TestAgent(t *testing.T) {
	handler := testCorsSetup()

	req := httptest.NewRequest("GET", "/transactions", nil)
	req.Header.Set("Origin", "https://unknown.example.com")
	req.Header.Set("User-Agent", "test-agent")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "https://unknown.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
}
