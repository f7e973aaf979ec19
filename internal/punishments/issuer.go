package punishments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrDuplicateID is returned by RecordStore.Insert when the generated
// identifier already exists.
var ErrDuplicateID = errors.New("punishment id already exists")

// ErrNotFound is returned by RecordStore lookups for unknown ids.
var ErrNotFound = errors.New("punishment not found")

// RecordStore is the persistence surface the issuer and reconciler need.
// Implemented by storage.Store against the puns collection.
type RecordStore interface {
	Insert(ctx context.Context, record Record) error
	Get(ctx context.Context, id string) (Record, error)
	SetActive(ctx context.Context, id string, active bool) error
	SetExpiry(ctx context.Context, id string, expiry *time.Time) error
	SetReason(ctx context.Context, id string, reason string) error
	ActiveWithExpiry(ctx context.Context, limit int) ([]Record, error)
	History(ctx context.Context, userID string, limit int) ([]Record, error)
	ActiveByKind(ctx context.Context, userID string, kinds ...Kind) ([]Record, error)
}

// Request describes a punishment to record. Zero-value optional fields fall
// back to defaults at issuance.
type Request struct {
	UserID      string
	ModeratorID string
	Kind        Kind
	Reason      string
	Expiry      *time.Time
	Context     string
	// IssuedAt overrides the issuance timestamp for back-dated records.
	IssuedAt time.Time
	// Inactive records history-only entries such as unmutes and clears.
	Inactive bool
}

// Issuer creates durably stored punishment records with unique identifiers.
// It performs no business-invariant checks; callers decide whether an action
// is permissible before issuing.
type Issuer struct {
	store  RecordStore
	clock  Clock
	logger *zap.Logger
}

func NewIssuer(store RecordStore, logger *zap.Logger) *Issuer {
	return &Issuer{store: store, clock: realClock{}, logger: logger}
}

func (i *Issuer) WithClock(clock Clock) *Issuer {
	i.clock = clock
	return i
}

// Issue inserts a new record and returns its generated identifier. On an id
// collision it regenerates and retries until the insert succeeds.
func (i *Issuer) Issue(ctx context.Context, req Request) (string, error) {
	if !req.Kind.Valid() {
		return "", fmt.Errorf("issue punishment: unknown kind %q", req.Kind)
	}

	reason := req.Reason
	if reason == "" {
		reason = DefaultReason
	}
	issuedAt := req.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = i.clock.Now()
	}

	record := Record{
		UserID:      req.UserID,
		ModeratorID: req.ModeratorID,
		Kind:        req.Kind,
		Reason:      TruncateReason(reason),
		IssuedAt:    issuedAt,
		Expiry:      req.Expiry,
		Active:      !req.Inactive,
		Context:     req.Context,
	}

	for {
		record.ID = uuid.NewString()
		err := i.store.Insert(ctx, record)
		if err == nil {
			i.logger.Info("punishment issued",
				zap.String("id", record.ID),
				zap.String("user_id", record.UserID),
				zap.String("moderator_id", record.ModeratorID),
				zap.String("kind", string(record.Kind)))
			return record.ID, nil
		}
		if errors.Is(err, ErrDuplicateID) {
			continue
		}
		return "", fmt.Errorf("issue punishment: %w", err)
	}
}

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }
