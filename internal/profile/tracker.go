package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ErrNotFound is returned by Store.Get for users never observed.
var ErrNotFound = errors.New("profile not found")

// NameKind distinguishes entries in a profile's name history.
type NameKind string

const (
	NameUsername NameKind = "name"
	NameNickname NameKind = "nick"
)

type NameEntry struct {
	Value     string    `bson:"value"`
	Kind      NameKind  `bson:"kind"`
	Timestamp time.Time `bson:"timestamp"`
}

// Profile is one document in the users collection. Created on first
// observed join or first moderation action; never deleted.
type Profile struct {
	ID          string      `bson:"_id"`
	Roles       []string    `bson:"roles"`
	Joins       []time.Time `bson:"joins"`
	Leaves      []time.Time `bson:"leaves"`
	NameHistory []NameEntry `bson:"name_history"`
}

// LastName returns the most recent recorded name of the given kind.
func (p Profile) LastName(kind NameKind) string {
	for i := len(p.NameHistory) - 1; i >= 0; i-- {
		if p.NameHistory[i].Kind == kind {
			return p.NameHistory[i].Value
		}
	}
	return ""
}

// Store is the persistence surface the tracker needs; implemented by
// storage.Store against the users collection.
type Store interface {
	Ensure(ctx context.Context, userID string) error
	GetProfile(ctx context.Context, userID string) (Profile, error)
	RecordJoin(ctx context.Context, userID string, at time.Time) error
	RecordLeave(ctx context.Context, userID string, at time.Time) error
	SetRoles(ctx context.Context, userID string, roles []string) error
	AppendName(ctx context.Context, userID string, entry NameEntry) error
}

// Tracker applies membership and profile events to user documents.
type Tracker struct {
	store  Store
	clock  Clock
	logger *zap.Logger
}

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func NewTracker(store Store, logger *zap.Logger) *Tracker {
	return &Tracker{store: store, clock: realClock{}, logger: logger}
}

func (t *Tracker) WithClock(clock Clock) *Tracker {
	t.clock = clock
	return t
}

// HandleJoin records the join timestamp, the current role set and the
// username under which the member arrived.
func (t *Tracker) HandleJoin(ctx context.Context, userID, username string, roles []string) error {
	if err := t.store.Ensure(ctx, userID); err != nil {
		return fmt.Errorf("ensure profile %s: %w", userID, err)
	}
	now := t.clock.Now()
	if err := t.store.RecordJoin(ctx, userID, now); err != nil {
		return fmt.Errorf("record join %s: %w", userID, err)
	}
	if err := t.store.SetRoles(ctx, userID, roles); err != nil {
		return fmt.Errorf("set roles %s: %w", userID, err)
	}
	if username != "" {
		if err := t.recordNameIfChanged(ctx, userID, username, NameUsername); err != nil {
			return err
		}
	}
	t.logger.Info("member joined", zap.String("user_id", userID))
	return nil
}

func (t *Tracker) HandleLeave(ctx context.Context, userID string) error {
	if err := t.store.Ensure(ctx, userID); err != nil {
		return fmt.Errorf("ensure profile %s: %w", userID, err)
	}
	if err := t.store.RecordLeave(ctx, userID, t.clock.Now()); err != nil {
		return fmt.Errorf("record leave %s: %w", userID, err)
	}
	t.logger.Info("member left", zap.String("user_id", userID))
	return nil
}

// HandleMemberUpdate syncs the role set and records nickname changes.
func (t *Tracker) HandleMemberUpdate(ctx context.Context, userID string, roles []string, nickname string) error {
	if err := t.store.Ensure(ctx, userID); err != nil {
		return fmt.Errorf("ensure profile %s: %w", userID, err)
	}
	if err := t.store.SetRoles(ctx, userID, roles); err != nil {
		return fmt.Errorf("set roles %s: %w", userID, err)
	}
	if nickname != "" {
		return t.recordNameIfChanged(ctx, userID, nickname, NameNickname)
	}
	return nil
}

// HandleUserUpdate records username changes.
func (t *Tracker) HandleUserUpdate(ctx context.Context, userID, username string) error {
	if username == "" {
		return nil
	}
	if err := t.store.Ensure(ctx, userID); err != nil {
		return fmt.Errorf("ensure profile %s: %w", userID, err)
	}
	return t.recordNameIfChanged(ctx, userID, username, NameUsername)
}

func (t *Tracker) recordNameIfChanged(ctx context.Context, userID, value string, kind NameKind) error {
	current, err := t.store.GetProfile(ctx, userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("get profile %s: %w", userID, err)
	}
	if current.LastName(kind) == value {
		return nil
	}
	entry := NameEntry{Value: value, Kind: kind, Timestamp: t.clock.Now()}
	if err := t.store.AppendName(ctx, userID, entry); err != nil {
		return fmt.Errorf("append name %s: %w", userID, err)
	}
	return nil
}
