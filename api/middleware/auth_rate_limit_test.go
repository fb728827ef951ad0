package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/joymart/joymart-backend/pkg/logger"
	pkgredis "github.com/joymart/joymart-backend/pkg/redis"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "middleware-test", Output: io.Discard})
}

func newRateLimitedHandler(t *testing.T, policy AuthRateLimitPolicy) http.Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	client := pkgredis.NewFromAddr(mr.Addr())
	t.Cleanup(func() { _ = client.Close() })

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return AuthRateLimit(policy, client, testLogger())(next)
}

func loginAttempt(handler http.Handler, ip, email string) *httptest.ResponseRecorder {
	body := strings.NewReader(`{"email":"` + email + `","password":"pw"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", body)
	req.Header.Set("X-Forwarded-For", ip)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAuthRateLimitPerIP(t *testing.T) {
	handler := newRateLimitedHandler(t, NewAuthRateLimitPolicy("login", time.Minute, 2, 0))

	require.Equal(t, http.StatusOK, loginAttempt(handler, "10.0.0.1", "a@example.com").Code)
	require.Equal(t, http.StatusOK, loginAttempt(handler, "10.0.0.1", "b@example.com").Code)
	require.Equal(t, http.StatusTooManyRequests, loginAttempt(handler, "10.0.0.1", "c@example.com").Code)

	// a different source address has its own counter
	require.Equal(t, http.StatusOK, loginAttempt(handler, "10.0.0.2", "a@example.com").Code)
}

func TestAuthRateLimitPerEmail(t *testing.T) {
	handler := newRateLimitedHandler(t, NewAuthRateLimitPolicy("login", time.Minute, 0, 2))

	// attempts against one account are capped across source addresses
	require.Equal(t, http.StatusOK, loginAttempt(handler, "10.0.0.1", "victim@example.com").Code)
	require.Equal(t, http.StatusOK, loginAttempt(handler, "10.0.0.2", "Victim@Example.com").Code)
	require.Equal(t, http.StatusTooManyRequests, loginAttempt(handler, "10.0.0.3", "victim@example.com").Code)

	require.Equal(t, http.StatusOK, loginAttempt(handler, "10.0.0.4", "other@example.com").Code)
}

func TestAuthRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	handler := newRateLimitedHandler(t, NewAuthRateLimitPolicy("login", 0, 0, 0))
	for i := 0; i < 10; i++ {
		require.Equal(t, http.StatusOK, loginAttempt(handler, "10.0.0.1", "a@example.com").Code)
	}
}

func TestAuthRateLimitBodyStillReadableDownstream(t *testing.T) {
	mr := miniredis.RunT(t)
	client := pkgredis.NewFromAddr(mr.Addr())
	t.Cleanup(func() { _ = client.Close() })

	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		seen = string(payload)
		w.WriteHeader(http.StatusOK)
	})
	handler := AuthRateLimit(NewAuthRateLimitPolicy("login", time.Minute, 0, 5), client, testLogger())(next)

	rec := loginAttempt(handler, "10.0.0.1", "a@example.com")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, seen, "a@example.com")
}

func TestClientIPPrefersForwardedHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:4411"
	require.Equal(t, "192.168.1.5", clientIP(req))

	req.Header.Set("X-Real-IP", "203.0.113.9")
	require.Equal(t, "203.0.113.9", clientIP(req))

	req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
	require.Equal(t, "198.51.100.7", clientIP(req))
}
