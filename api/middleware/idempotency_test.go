package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	pkgredis "github.com/joymart/joymart-backend/pkg/redis"
)

func newIdempotentRouter(t *testing.T, calls *int) http.Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	client := pkgredis.NewFromAddr(mr.Addr())
	t.Cleanup(func() { _ = client.Close() })

	r := chi.NewRouter()
	r.Use(Idempotency(client, testLogger()))
	r.Post("/api/v1/payment/initiate", func(w http.ResponseWriter, req *http.Request) {
		*calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"data":{"transactionId":"JMART_TXN1"}}`))
	})
	r.Post("/api/v1/booking", func(w http.ResponseWriter, req *http.Request) {
		*calls++
		w.WriteHeader(http.StatusCreated)
	})
	return r
}

func initiateRequest(handler http.Handler, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payment/initiate", strings.NewReader(body))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	var calls int
	handler := newIdempotentRouter(t, &calls)
	body := `{"totalAmount":"100.00","paymentMethod":"online"}`

	first := initiateRequest(handler, "key-1", body)
	require.Equal(t, http.StatusCreated, first.Code)
	require.Equal(t, 1, calls)

	second := initiateRequest(handler, "key-1", body)
	require.Equal(t, http.StatusCreated, second.Code)
	require.Equal(t, first.Body.String(), second.Body.String())
	require.Equal(t, "application/json", second.Header().Get("Content-Type"))
	// the handler must not run twice for the same key
	require.Equal(t, 1, calls)
}

func TestIdempotencyRejectsKeyReuseWithDifferentBody(t *testing.T) {
	var calls int
	handler := newIdempotentRouter(t, &calls)

	first := initiateRequest(handler, "key-2", `{"totalAmount":"100.00"}`)
	require.Equal(t, http.StatusCreated, first.Code)

	conflict := initiateRequest(handler, "key-2", `{"totalAmount":"999.00"}`)
	require.Equal(t, http.StatusConflict, conflict.Code)
	require.Equal(t, 1, calls)
}

func TestIdempotencyWithoutKeyIsPassive(t *testing.T) {
	var calls int
	handler := newIdempotentRouter(t, &calls)
	body := `{"totalAmount":"100.00"}`

	require.Equal(t, http.StatusCreated, initiateRequest(handler, "", body).Code)
	require.Equal(t, http.StatusCreated, initiateRequest(handler, "", body).Code)
	require.Equal(t, 2, calls)
}

func TestIdempotencyOnlyGuardsConfiguredRoutes(t *testing.T) {
	var calls int
	handler := newIdempotentRouter(t, &calls)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/booking", strings.NewReader(`{}`))
		req.Header.Set("Idempotency-Key", "key-3")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	require.Equal(t, 2, calls)
}

func TestIdempotencyScopesKeysPerUser(t *testing.T) {
	mr := miniredis.RunT(t)
	client := pkgredis.NewFromAddr(mr.Addr())
	t.Cleanup(func() { _ = client.Close() })

	var calls int
	r := chi.NewRouter()
	r.Use(Idempotency(client, testLogger()))
	r.Post("/api/v1/payment/initiate", func(w http.ResponseWriter, req *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	})

	body := `{"totalAmount":"100.00"}`
	for _, userID := range []string{"user-a", "user-b"} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payment/initiate", strings.NewReader(body))
		req.Header.Set("Idempotency-Key", "shared-key")
		req = req.WithContext(WithUserID(req.Context(), userID))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	// same key from two different accounts runs the handler twice
	require.Equal(t, 2, calls)
}
