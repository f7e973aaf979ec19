package presence

import (
	"testing"
	"time"
)

type manualClock struct {
	now time.Time
}

func (c *manualClock) Now() time.Time { return c.now }

func TestObserveAndLastStatus(t *testing.T) {
	clock := &manualClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	tracker := NewTracker(time.Hour).WithClock(clock)

	if _, ok := tracker.LastStatus("u1"); ok {
		t.Fatalf("unknown user reported a status")
	}

	tracker.Observe("u1", "online")
	status, ok := tracker.LastStatus("u1")
	if !ok || status != "online" {
		t.Fatalf("status = %q, %v", status, ok)
	}

	tracker.Observe("u1", "idle")
	if status, _ := tracker.LastStatus("u1"); status != "idle" {
		t.Fatalf("status not updated: %q", status)
	}
}

func TestStaleEntriesExpire(t *testing.T) {
	clock := &manualClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	tracker := NewTracker(time.Hour).WithClock(clock)

	tracker.Observe("u1", "online")
	clock.now = clock.now.Add(2 * time.Hour)
	if _, ok := tracker.LastStatus("u1"); ok {
		t.Fatalf("stale entry survived the TTL")
	}
}

func TestEmptyInputsIgnored(t *testing.T) {
	tracker := NewTracker(time.Hour)
	tracker.Observe("", "online")
	tracker.Observe("u1", "")
	if _, ok := tracker.LastStatus("u1"); ok {
		t.Fatalf("empty status recorded")
	}
}
