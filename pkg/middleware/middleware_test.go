package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"barbershop/pkg/cache"
	"barbershop/pkg/logger"
	"barbershop/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const clientID = "3f2b8a8e-6c1d-4a53-9d8e-2b3c4d5e6f70"

func TestIdentity(t *testing.T) {
	log := logger.Discard()

	var seen model.Actor
	var present bool
	h := Identity(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, present = ActorFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name    string
		userID  string
		role    string
		status  int
		present bool
		want    model.Actor
	}{
		{"anonymous", "", "", http.StatusOK, false, model.Actor{}},
		{"client", clientID, "client", http.StatusOK, true, model.Actor{UserID: clientID, Role: model.RoleClient}},
		{"admin upper case", clientID, "ADMIN", http.StatusOK, true, model.Actor{UserID: clientID, Role: model.RoleAdmin}},
		{"bad uuid", "user-1", "CLIENT", http.StatusUnauthorized, false, model.Actor{}},
		{"unknown role", clientID, "OWNER", http.StatusUnauthorized, false, model.Actor{}},
		{"role without id", "", "ADMIN", http.StatusUnauthorized, false, model.Actor{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen, present = model.Actor{}, false
			r := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
			if tt.userID != "" {
				r.Header.Set(HeaderUserID, tt.userID)
			}
			if tt.role != "" {
				r.Header.Set(HeaderUserRole, tt.role)
			}
			w := httptest.NewRecorder()

			h.ServeHTTP(w, r)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.present, present)
			assert.Equal(t, tt.want, seen)
		})
	}
}

func TestUserRateLimiter_SlidingWindow(t *testing.T) {
	rl := NewUserRateLimiter(2, time.Minute, logger.Discard())
	defer rl.Stop()

	now := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("u1"))
	assert.True(t, rl.Allow("u1"))
	assert.False(t, rl.Allow("u1"))
	assert.True(t, rl.Allow("u2"))
	assert.True(t, rl.Allow(""))

	now = now.Add(61 * time.Second)
	assert.True(t, rl.Allow("u1"))
}

func TestUserRateLimit_Middleware(t *testing.T) {
	rl := NewUserRateLimiter(1, time.Minute, logger.Discard())
	defer rl.Stop()

	h := Identity(logger.Discard())(UserRateLimit(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	send := func() int {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
		r.Header.Set(HeaderUserID, clientID)
		r.Header.Set(HeaderUserRole, "CLIENT")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}

func TestIdempotency_ReplaysPerCaller(t *testing.T) {
	store := cache.NewMemory()

	var calls int32
	h := Identity(logger.Discard())(Idempotency(logger.Discard(), store, time.Hour, "")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte{byte('0' + n)})
	})))

	send := func(userID string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
		r.Header.Set(HeaderUserID, userID)
		r.Header.Set(HeaderUserRole, "CLIENT")
		r.Header.Set(IdempotencyHeader, "abc")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w
	}

	first := send(clientID)
	replay := send(clientID)
	other := send("9a1c2b3d-4e5f-4a6b-8c7d-0e1f2a3b4c5d")

	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, "1", first.Body.String())
	assert.Equal(t, "1", replay.Body.String())
	assert.Equal(t, "true", replay.Header().Get(ReplayedHeader))
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "2", other.Body.String())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestIdempotency_FailuresAreNotStored(t *testing.T) {
	store := cache.NewMemory()

	var calls int32
	h := Idempotency(logger.Discard(), store, time.Hour, "")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusConflict)
	}))

	for i := 0; i < 2; i++ {
		r := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/id/b1/confirm", nil)
		r.Header.Set(IdempotencyHeader, "retry-me")
		h.ServeHTTP(httptest.NewRecorder(), r)
	}

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, 0, store.Len())
}

func TestContentTypeValidation(t *testing.T) {
	h := ContentTypeValidation(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{}`))
	r.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	r = httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{}`))
	r.Header.Set("Content-Type", "application/json; charset=utf-8")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)

	r = httptest.NewRequest(http.MethodPost, "/api/v1/bookings/id/x/confirm", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMaxRequestSize(t *testing.T) {
	h := MaxRequestSize(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"notes":"far too long"}`))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRequestTimeout(t *testing.T) {
	h := RequestTimeout(20 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRecovery(t *testing.T) {
	h := RequestLogging(logger.Discard())(Recovery(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestRecovery_AfterHeadersKeepsStatus(t *testing.T) {
	h := Recovery(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		panic("late")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestRecovery_AbortHandlerPropagates(t *testing.T) {
	h := Recovery(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

type unwritableCache struct{ cache.Noop }

func (unwritableCache) Set(context.Context, string, any, time.Duration) error {
	return errors.New("redis: connection refused")
}

func TestIdempotency_CacheWriteFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Output: &buf, Level: logger.WARN})
	calls := 0
	h := Idempotency(log, unwritableCache{}, time.Hour, "")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
		req.Header.Set(IdempotencyHeader, "key-1")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusCreated, w.Code)
	}

	assert.Equal(t, 2, calls)
	assert.Contains(t, buf.String(), "Idempotency cache write failed")
	assert.Contains(t, buf.String(), "connection refused")
}
