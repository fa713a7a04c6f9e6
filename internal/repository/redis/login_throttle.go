package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kristinefung/personal-website-server/internal/core/port"
)

const loginThrottleKeyPrefix = "login_throttle"

// LoginThrottle tracks recent login attempts per client in Redis sorted sets,
// scored by attempt time in nanoseconds. It backs the sliding-window throttle
// on the login endpoint; the credential lockout lives in the Postgres ledger
// and is unaffected by anything stored here.
type LoginThrottle struct {
	client    *redis.Client
	retention time.Duration
}

// NewLoginThrottle builds the throttle store. Retention caps how long an idle
// client's attempt set survives; it should exceed the throttle window so
// in-window attempts are never expired out from under a count.
func NewLoginThrottle(client *redis.Client, retention time.Duration) *LoginThrottle {
	return &LoginThrottle{client: client, retention: retention}
}

// RecordAttempt appends one attempt for the client and refreshes the key's
// retention in a single round trip.
func (t *LoginThrottle) RecordAttempt(ctx context.Context, clientID string, at time.Time) error {
	key := loginThrottleKey(clientID)
	ns := at.UnixNano()

	_, err := t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, key, redis.Z{
			Score:  float64(ns),
			Member: strconv.FormatInt(ns, 10),
		})
		if t.retention > 0 {
			pipe.Expire(ctx, key, t.retention)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("record login attempt: %w", err)
	}

	return nil
}

// CountAttempts reports how many attempts the client made inside the window
// ending at reference.
func (t *LoginThrottle) CountAttempts(ctx context.Context, clientID string, window time.Duration, reference time.Time) (int, error) {
	if window <= 0 {
		return 0, errors.New("throttle window must be positive")
	}

	floor, ceil := throttleBounds(window, reference)
	count, err := t.client.ZCount(ctx, loginThrottleKey(clientID), floor, ceil).Result()
	if err != nil {
		return 0, fmt.Errorf("count login attempts: %w", err)
	}

	return int(count), nil
}

// TrimWindow drops attempts that fell out of the window ending at reference.
func (t *LoginThrottle) TrimWindow(ctx context.Context, clientID string, window time.Duration, reference time.Time) error {
	if window <= 0 {
		return errors.New("throttle window must be positive")
	}

	floor, _ := throttleBounds(window, reference)
	err := t.client.ZRemRangeByScore(ctx, loginThrottleKey(clientID), "-inf", "("+floor).Err()
	if err != nil {
		return fmt.Errorf("trim login attempts: %w", err)
	}

	return nil
}

// OldestAttempt returns the earliest in-window attempt, which determines when
// a throttled client may retry.
func (t *LoginThrottle) OldestAttempt(ctx context.Context, clientID string, window time.Duration, reference time.Time) (time.Time, bool, error) {
	if window <= 0 {
		return time.Time{}, false, errors.New("throttle window must be positive")
	}

	floor, ceil := throttleBounds(window, reference)
	members, err := t.client.ZRangeByScore(ctx, loginThrottleKey(clientID), &redis.ZRangeBy{
		Min:   floor,
		Max:   ceil,
		Count: 1,
	}).Result()
	if err != nil {
		return time.Time{}, false, fmt.Errorf("find oldest login attempt: %w", err)
	}
	if len(members) == 0 {
		return time.Time{}, false, nil
	}

	ns, err := strconv.ParseInt(members[0], 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse login attempt member %q: %w", members[0], err)
	}

	return time.Unix(0, ns), true, nil
}

func loginThrottleKey(clientID string) string {
	return loginThrottleKeyPrefix + ":" + clientID
}

// throttleBounds returns inclusive integer score bounds for the window ending
// at reference.
func throttleBounds(window time.Duration, reference time.Time) (string, string) {
	floor := reference.Add(-window).UnixNano()
	return strconv.FormatInt(floor, 10), strconv.FormatInt(reference.UnixNano(), 10)
}

var _ port.RateLimitStore = (*LoginThrottle)(nil)
