package redis

import (
	"strconv"
	"testing"
	"time"
)

func TestLoginThrottleKeyScoping(t *testing.T) {
	if got := loginThrottleKey("203.0.113.7"); got != "login_throttle:203.0.113.7" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestThrottleBounds(t *testing.T) {
	reference := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	floor, ceil := throttleBounds(time.Minute, reference)

	wantFloor := strconv.FormatInt(reference.Add(-time.Minute).UnixNano(), 10)
	wantCeil := strconv.FormatInt(reference.UnixNano(), 10)

	if floor != wantFloor {
		t.Errorf("floor = %s, want %s", floor, wantFloor)
	}
	if ceil != wantCeil {
		t.Errorf("ceil = %s, want %s", ceil, wantCeil)
	}
}
