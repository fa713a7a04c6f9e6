package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type memAttemptStore struct {
	attempts map[string][]time.Time
	failing  bool
}

func newMemAttemptStore() *memAttemptStore {
	return &memAttemptStore{attempts: make(map[string][]time.Time)}
}

func (s *memAttemptStore) RecordAttempt(_ context.Context, id string, at time.Time) error {
	if s.failing {
		return errors.New("store down")
	}
	s.attempts[id] = append(s.attempts[id], at)
	return nil
}

func (s *memAttemptStore) CountAttempts(_ context.Context, id string, window time.Duration, reference time.Time) (int, error) {
	if s.failing {
		return 0, errors.New("store down")
	}
	count := 0
	for _, at := range s.attempts[id] {
		if !at.Before(reference.Add(-window)) {
			count++
		}
	}
	return count, nil
}

func (s *memAttemptStore) TrimWindow(_ context.Context, id string, window time.Duration, reference time.Time) error {
	if s.failing {
		return errors.New("store down")
	}
	var kept []time.Time
	for _, at := range s.attempts[id] {
		if !at.Before(reference.Add(-window)) {
			kept = append(kept, at)
		}
	}
	s.attempts[id] = kept
	return nil
}

func (s *memAttemptStore) OldestAttempt(_ context.Context, id string, window time.Duration, reference time.Time) (time.Time, bool, error) {
	if s.failing {
		return time.Time{}, false, errors.New("store down")
	}
	var oldest time.Time
	found := false
	for _, at := range s.attempts[id] {
		if at.Before(reference.Add(-window)) {
			continue
		}
		if !found || at.Before(oldest) {
			oldest = at
			found = true
		}
	}
	return oldest, found, nil
}

func throttledRouter(store RateLimitStore, limit int, now func() time.Time) *gin.Engine {
	gin.SetMode(gin.TestMode)

	limiter := NewRateLimiter(store, nil).WithClock(now)
	router := gin.New()
	router.POST("/login", limiter.RateLimit(RateLimitRule{
		Name:       "login",
		Limit:      limit,
		Window:     time.Minute,
		Identifier: ClientIPIdentifier(),
	}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func postFrom(router *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = ip + ":1234"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitThrottlesAfterLimit(t *testing.T) {
	store := newMemAttemptStore()
	base := time.Now()
	router := throttledRouter(store, 3, func() time.Time { return base })

	for i := 0; i < 3; i++ {
		rec := postFrom(router, "203.0.113.7")
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := postFrom(router, "203.0.113.7")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
	require.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimitScopesByClientIP(t *testing.T) {
	store := newMemAttemptStore()
	base := time.Now()
	router := throttledRouter(store, 1, func() time.Time { return base })

	require.Equal(t, http.StatusOK, postFrom(router, "203.0.113.7").Code)
	require.Equal(t, http.StatusTooManyRequests, postFrom(router, "203.0.113.7").Code)

	// A different client is unaffected.
	require.Equal(t, http.StatusOK, postFrom(router, "198.51.100.2").Code)
}

func TestRateLimitResetsAfterWindow(t *testing.T) {
	store := newMemAttemptStore()
	now := time.Now()
	router := throttledRouter(store, 1, func() time.Time { return now })

	require.Equal(t, http.StatusOK, postFrom(router, "203.0.113.7").Code)
	require.Equal(t, http.StatusTooManyRequests, postFrom(router, "203.0.113.7").Code)

	now = now.Add(2 * time.Minute)
	require.Equal(t, http.StatusOK, postFrom(router, "203.0.113.7").Code)
}

func TestRateLimitFailsOpenOnStoreErrors(t *testing.T) {
	store := newMemAttemptStore()
	store.failing = true
	router := throttledRouter(store, 1, time.Now)

	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, postFrom(router, "203.0.113.7").Code)
	}
}
