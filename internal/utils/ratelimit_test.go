package utils

import (
	"testing"
	"time"
)

func TestKeyLimiterWindow(t *testing.T) {
	limiter := NewKeyLimiter(24 * time.Hour)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	if !limiter.Allow("a", now) {
		t.Fatalf("first call denied")
	}
	if limiter.Allow("a", now.Add(time.Hour)) {
		t.Fatalf("allowed inside window")
	}
	if !limiter.Allow("b", now) {
		t.Fatalf("keys should be independent")
	}
	if !limiter.Allow("a", now.Add(24*time.Hour)) {
		t.Fatalf("denied after window elapsed")
	}
}

func TestKeyLimiterForget(t *testing.T) {
	limiter := NewKeyLimiter(time.Hour)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	limiter.Allow("a", now)
	limiter.Forget("a")
	if !limiter.Allow("a", now) {
		t.Fatalf("forgotten key still limited")
	}
}
