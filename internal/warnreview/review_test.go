package warnreview

import (
	"context"
	"testing"
	"time"

	"github.com/rNintendoSwitch/MechaBowser-sub000/internal/punishments"

	"go.uber.org/zap"
)

type fakeStore struct {
	records map[string]punishments.Record
}

func newFakeStore(records ...punishments.Record) *fakeStore {
	store := &fakeStore{records: make(map[string]punishments.Record)}
	for _, record := range records {
		store.records[record.ID] = record
	}
	return store
}

func (s *fakeStore) Insert(ctx context.Context, record punishments.Record) error {
	if _, exists := s.records[record.ID]; exists {
		return punishments.ErrDuplicateID
	}
	s.records[record.ID] = record
	return nil
}

func (s *fakeStore) Get(ctx context.Context, id string) (punishments.Record, error) {
	record, ok := s.records[id]
	if !ok {
		return punishments.Record{}, punishments.ErrNotFound
	}
	return record, nil
}

func (s *fakeStore) SetActive(ctx context.Context, id string, active bool) error {
	record, ok := s.records[id]
	if !ok {
		return punishments.ErrNotFound
	}
	record.Active = active
	s.records[id] = record
	return nil
}

func (s *fakeStore) SetExpiry(ctx context.Context, id string, expiry *time.Time) error {
	record, ok := s.records[id]
	if !ok {
		return punishments.ErrNotFound
	}
	record.Expiry = expiry
	s.records[id] = record
	return nil
}

func (s *fakeStore) SetReason(ctx context.Context, id string, reason string) error {
	record, ok := s.records[id]
	if !ok {
		return punishments.ErrNotFound
	}
	record.Reason = reason
	s.records[id] = record
	return nil
}

func (s *fakeStore) ActiveWithExpiry(ctx context.Context, limit int) ([]punishments.Record, error) {
	return nil, nil
}

func (s *fakeStore) History(ctx context.Context, userID string, limit int) ([]punishments.Record, error) {
	return nil, nil
}

func (s *fakeStore) ActiveByKind(ctx context.Context, userID string, kinds ...punishments.Kind) ([]punishments.Record, error) {
	var result []punishments.Record
	for _, record := range s.records {
		if !record.Active || record.UserID != userID {
			continue
		}
		for _, kind := range kinds {
			if record.Kind == kind {
				result = append(result, record)
				break
			}
		}
	}
	return result, nil
}

type fakeClock struct {
	now     time.Time
	timeout chan time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{
		now:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		timeout: make(chan time.Time, 1),
	}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) After(d time.Duration) <-chan time.Time { return c.timeout }

func (c *fakeClock) fire() { c.timeout <- c.now }

func testRecord(kind punishments.Kind) punishments.Record {
	expiry := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
	return punishments.Record{
		ID:       "warn-1",
		UserID:   "u1",
		Kind:     kind,
		Reason:   "spam",
		IssuedAt: expiry.Add(-30 * 24 * time.Hour),
		Expiry:   &expiry,
		Active:   true,
	}
}

func allowAll(string) bool { return true }

func newTestSession(store *fakeStore, allowed func(string) bool, clock Clock) *Session {
	issuer := punishments.NewIssuer(store, zap.NewNop())
	return New(Config{Timeout: 900 * time.Second, WarningExpiry: 30 * 24 * time.Hour},
		store, issuer, allowed, zap.NewNop()).WithClock(clock)
}

func runWithReactions(t *testing.T, session *Session, record punishments.Record, reactions ...Reaction) Outcome {
	t.Helper()
	ch := make(chan Reaction, len(reactions))
	for _, reaction := range reactions {
		ch <- reaction
	}
	outcome, err := session.Run(context.Background(), record, ch)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return outcome
}

func TestRunRejectsNonWarning(t *testing.T) {
	store := newFakeStore()
	session := newTestSession(store, allowAll, newFakeClock())
	record := testRecord(punishments.KindMute)
	if _, err := session.Run(context.Background(), record, make(chan Reaction)); err == nil {
		t.Fatalf("expected error for non-warning record")
	}
}

func TestPostponeChoices(t *testing.T) {
	cases := []struct {
		emoji string
		days  int
	}{
		{"1️⃣", 30},
		{"2️⃣", 14},
		{"3️⃣", 7},
	}
	for _, c := range cases {
		record := testRecord(punishments.KindWarnTier2)
		store := newFakeStore(record)
		clock := newFakeClock()
		session := newTestSession(store, allowAll, clock)

		outcome := runWithReactions(t, session, record, Reaction{UserID: "mod", Emoji: c.emoji})
		if outcome.State != StateResolved {
			t.Fatalf("%s: state = %v", c.emoji, outcome.State)
		}

		got, _ := store.Get(context.Background(), record.ID)
		if got.Expiry == nil {
			t.Fatalf("%s: expiry cleared", c.emoji)
		}
		want := clock.now.Add(time.Duration(c.days) * 24 * time.Hour)
		if !got.Expiry.Equal(want) {
			t.Fatalf("%s: expiry = %v, want %v", c.emoji, got.Expiry, want)
		}
		if !got.Active {
			t.Fatalf("%s: postponed warning deactivated", c.emoji)
		}
	}
}

func TestMakePermanent(t *testing.T) {
	record := testRecord(punishments.KindWarnTier3)
	store := newFakeStore(record)
	session := newTestSession(store, allowAll, newFakeClock())

	outcome := runWithReactions(t, session, record, Reaction{UserID: "mod", Emoji: "5️⃣"})
	if outcome.Choice != ChoicePermanent {
		t.Fatalf("choice = %v", outcome.Choice)
	}

	got, _ := store.Get(context.Background(), record.ID)
	if got.Expiry != nil {
		t.Fatalf("permanent warning still has an expiry")
	}
	if !got.Active {
		t.Fatalf("permanent warning deactivated")
	}
}

func TestReduceTierIssuesLowerWarning(t *testing.T) {
	record := testRecord(punishments.KindWarnTier3)
	store := newFakeStore(record)
	clock := newFakeClock()
	session := newTestSession(store, allowAll, clock)

	outcome := runWithReactions(t, session, record, Reaction{UserID: "mod", Emoji: "4️⃣"})
	if outcome.NewRecordID == "" {
		t.Fatalf("reduce from tier 3 issued no replacement")
	}

	old, _ := store.Get(context.Background(), record.ID)
	if old.Active {
		t.Fatalf("original warning still active")
	}

	replacement, err := store.Get(context.Background(), outcome.NewRecordID)
	if err != nil {
		t.Fatalf("replacement missing: %v", err)
	}
	if replacement.Kind != punishments.KindWarnTier2 {
		t.Fatalf("replacement kind = %q, want tier2", replacement.Kind)
	}
	if replacement.Context != record.ID {
		t.Fatalf("replacement context = %q, want %q", replacement.Context, record.ID)
	}
	if replacement.Expiry == nil || !replacement.Expiry.Equal(clock.now.Add(30*24*time.Hour)) {
		t.Fatalf("replacement expiry = %v", replacement.Expiry)
	}
}

func TestReduceTierOneDeactivatesOnly(t *testing.T) {
	record := testRecord(punishments.KindWarnTier1)
	store := newFakeStore(record)
	session := newTestSession(store, allowAll, newFakeClock())

	outcome := runWithReactions(t, session, record, Reaction{UserID: "mod", Emoji: "4️⃣"})
	if outcome.NewRecordID != "" {
		t.Fatalf("tier 1 reduce issued a replacement")
	}
	if len(store.records) != 1 {
		t.Fatalf("unexpected record count %d", len(store.records))
	}
	got, _ := store.Get(context.Background(), record.ID)
	if got.Active {
		t.Fatalf("tier 1 warning still active after reduce")
	}
}

func TestIgnoresUnknownEmojiAndUnauthorizedUsers(t *testing.T) {
	record := testRecord(punishments.KindWarnTier2)
	store := newFakeStore(record)
	allowed := func(userID string) bool { return userID == "mod" }
	session := newTestSession(store, allowed, newFakeClock())

	outcome := runWithReactions(t, session, record,
		Reaction{UserID: "mod", Emoji: "🎉"},
		Reaction{UserID: "rando", Emoji: "5️⃣"},
		Reaction{UserID: "mod", Emoji: "1️⃣"},
	)
	if outcome.Choice != ChoicePostpone30 {
		t.Fatalf("choice = %v, want postpone 30", outcome.Choice)
	}
}

func TestFirstQualifyingReactionWins(t *testing.T) {
	record := testRecord(punishments.KindWarnTier2)
	store := newFakeStore(record)
	session := newTestSession(store, allowAll, newFakeClock())

	outcome := runWithReactions(t, session, record,
		Reaction{UserID: "mod1", Emoji: "5️⃣"},
		Reaction{UserID: "mod2", Emoji: "4️⃣"},
	)
	if outcome.Choice != ChoicePermanent {
		t.Fatalf("choice = %v, want the first reaction's choice", outcome.Choice)
	}
	got, _ := store.Get(context.Background(), record.ID)
	if !got.Active {
		t.Fatalf("second reaction was applied")
	}
}

func TestTimeoutLeavesRecordUntouched(t *testing.T) {
	record := testRecord(punishments.KindWarnTier2)
	store := newFakeStore(record)
	clock := newFakeClock()
	session := newTestSession(store, allowAll, clock)

	clock.fire()
	outcome, err := session.Run(context.Background(), record, make(chan Reaction))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if outcome.State != StateTimedOut {
		t.Fatalf("state = %v, want timed out", outcome.State)
	}

	got, _ := store.Get(context.Background(), record.ID)
	if !got.Active || got.Expiry == nil {
		t.Fatalf("timed-out review mutated the record")
	}
}

func TestContextCancelStopsReview(t *testing.T) {
	record := testRecord(punishments.KindWarnTier2)
	store := newFakeStore(record)
	session := newTestSession(store, allowAll, newFakeClock())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	outcome, err := session.Run(ctx, record, make(chan Reaction))
	if err == nil {
		t.Fatalf("expected context error")
	}
	if outcome.State != StateTimedOut {
		t.Fatalf("state = %v", outcome.State)
	}
}
