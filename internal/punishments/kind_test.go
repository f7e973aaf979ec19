package punishments

import (
	"testing"
	"time"
)

func TestParseKind(t *testing.T) {
	cases := []struct {
		input string
		want  Kind
		ok    bool
	}{
		{"ban", KindBan, true},
		{"tier2", KindWarnTier2, true},
		{"warnclear", KindWarnClear, true},
		{"destrike", KindDestrike, true},
		{"", "", false},
		{"tier4", "", false},
		{"banana", "", false},
	}
	for _, c := range cases {
		kind, err := ParseKind(c.input)
		if c.ok && err != nil {
			t.Fatalf("ParseKind(%q): %v", c.input, err)
		}
		if !c.ok && err == nil {
			t.Fatalf("ParseKind(%q): expected error", c.input)
		}
		if c.ok && kind != c.want {
			t.Fatalf("ParseKind(%q) = %q, want %q", c.input, kind, c.want)
		}
	}
}

func TestWarnTierRoundTrip(t *testing.T) {
	for tier := 1; tier <= MaxWarnTier; tier++ {
		kind, err := WarnKindForTier(tier)
		if err != nil {
			t.Fatalf("WarnKindForTier(%d): %v", tier, err)
		}
		if !kind.IsWarnTier() {
			t.Fatalf("%q not recognized as a warning tier", kind)
		}
		if got := kind.WarnTier(); got != tier {
			t.Fatalf("WarnTier(%q) = %d, want %d", kind, got, tier)
		}
	}
	if _, err := WarnKindForTier(0); err == nil {
		t.Fatalf("tier 0 accepted")
	}
	if _, err := WarnKindForTier(MaxWarnTier + 1); err == nil {
		t.Fatalf("tier above the cap accepted")
	}
}

func TestEscalationCapsAtTierThree(t *testing.T) {
	kind, err := NextWarnKind("")
	if err != nil || kind != KindWarnTier1 {
		t.Fatalf("first warning = %q, %v", kind, err)
	}
	kind, err = NextWarnKind(kind)
	if err != nil || kind != KindWarnTier2 {
		t.Fatalf("second warning = %q, %v", kind, err)
	}
	kind, err = NextWarnKind(kind)
	if err != nil || kind != KindWarnTier3 {
		t.Fatalf("third warning = %q, %v", kind, err)
	}
	if _, err := NextWarnKind(kind); err == nil {
		t.Fatalf("escalation past tier 3 accepted")
	}
	if _, err := NextWarnKind(KindMute); err == nil {
		t.Fatalf("escalating a mute accepted")
	}
}

func TestNonWarnKindsHaveNoTier(t *testing.T) {
	for _, kind := range []Kind{KindBan, KindMute, KindWarnClear, KindNote} {
		if kind.IsWarnTier() {
			t.Fatalf("%q should not be a warning tier", kind)
		}
		if kind.WarnTier() != 0 {
			t.Fatalf("%q reports tier %d", kind, kind.WarnTier())
		}
	}
}

func TestRecordExpired(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	if (Record{Expiry: nil}).Expired(now) {
		t.Fatalf("permanent record reported expired")
	}
	if !(Record{Expiry: &past}).Expired(now) {
		t.Fatalf("past expiry not reported expired")
	}
	if (Record{Expiry: &future}).Expired(now) {
		t.Fatalf("future expiry reported expired")
	}
}

func TestTruncateReason(t *testing.T) {
	short := "spam"
	if got := TruncateReason(short); got != short {
		t.Fatalf("short reason changed: %q", got)
	}
	long := make([]byte, MaxReasonLength+100)
	for i := range long {
		long[i] = 'x'
	}
	if got := TruncateReason(string(long)); len(got) != MaxReasonLength {
		t.Fatalf("truncated length = %d, want %d", len(got), MaxReasonLength)
	}
}
