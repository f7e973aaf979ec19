// Package warnreview resolves overdue warnings through a reaction-driven
// state machine: a pending review either receives one qualifying moderator
// reaction and resolves, or times out and is left for the reconciler to
// re-notify later.
package warnreview

import (
	"context"
	"fmt"
	"time"

	"github.com/rNintendoSwitch/MechaBowser-sub000/internal/punishments"

	"go.uber.org/zap"
)

type State int

const (
	StatePending State = iota
	StateResolved
	StateTimedOut
)

type Choice string

const (
	ChoicePostpone30 Choice = "postpone_30d"
	ChoicePostpone14 Choice = "postpone_14d"
	ChoicePostpone7  Choice = "postpone_7d"
	ChoiceReduceTier Choice = "reduce_tier"
	ChoicePermanent  Choice = "make_permanent"
)

// DefaultEmojiChoices maps the reaction emoji posted under a review notice
// to its choice.
var DefaultEmojiChoices = map[string]Choice{
	"1️⃣": ChoicePostpone30,
	"2️⃣": ChoicePostpone14,
	"3️⃣": ChoicePostpone7,
	"4️⃣": ChoiceReduceTier,
	"5️⃣": ChoicePermanent,
}

// Reaction is one observed reaction on the review message.
type Reaction struct {
	UserID string
	Emoji  string
}

// Outcome reports how a review invocation ended. NewRecordID is set only
// when reduce-tier issued a replacement record.
type Outcome struct {
	State       State
	Choice      Choice
	NewRecordID string
}

type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

type Config struct {
	Timeout time.Duration
	// WarningExpiry is the fresh review window applied by postpone-30d and
	// by the record a reduce-tier issues.
	WarningExpiry time.Duration
}

// Session runs one review for one record.
type Session struct {
	cfg     Config
	store   punishments.RecordStore
	issuer  *punishments.Issuer
	allowed func(userID string) bool
	emojis  map[string]Choice
	clock   Clock
	logger  *zap.Logger
}

// New builds a review session. allowed gates reactions to holders of the
// designated moderator role.
func New(cfg Config, store punishments.RecordStore, issuer *punishments.Issuer, allowed func(userID string) bool, logger *zap.Logger) *Session {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 900 * time.Second
	}
	if cfg.WarningExpiry <= 0 {
		cfg.WarningExpiry = 30 * 24 * time.Hour
	}
	return &Session{
		cfg:     cfg,
		store:   store,
		issuer:  issuer,
		allowed: allowed,
		emojis:  DefaultEmojiChoices,
		clock:   realClock{},
		logger:  logger,
	}
}

func (s *Session) WithClock(clock Clock) *Session {
	s.clock = clock
	return s
}

// Run waits for the first qualifying reaction and applies its transition.
// Non-qualifying reactions (unknown emoji, user without the role) are
// ignored. On timeout the record is left untouched: still active and still
// expired, so the reconciler re-notifies after its cooldown.
func (s *Session) Run(ctx context.Context, record punishments.Record, reactions <-chan Reaction) (Outcome, error) {
	if !record.Kind.IsWarnTier() {
		return Outcome{}, fmt.Errorf("review: record %s is not a warning", record.ID)
	}

	timeout := s.clock.After(s.cfg.Timeout)
	for {
		select {
		case <-ctx.Done():
			return Outcome{State: StateTimedOut}, ctx.Err()
		case <-timeout:
			s.logger.Info("warning review timed out", zap.String("id", record.ID))
			return Outcome{State: StateTimedOut}, nil
		case reaction, ok := <-reactions:
			if !ok {
				return Outcome{State: StateTimedOut}, nil
			}
			choice, known := s.emojis[reaction.Emoji]
			if !known {
				continue
			}
			if s.allowed != nil && !s.allowed(reaction.UserID) {
				continue
			}
			outcome, err := s.apply(ctx, record, choice, reaction.UserID)
			if err != nil {
				return Outcome{}, err
			}
			return outcome, nil
		}
	}
}

func (s *Session) apply(ctx context.Context, record punishments.Record, choice Choice, moderatorID string) (Outcome, error) {
	outcome := Outcome{State: StateResolved, Choice: choice}

	switch choice {
	case ChoicePostpone30, ChoicePostpone14, ChoicePostpone7:
		expiry := s.clock.Now().Add(postponeDuration(choice, s.cfg.WarningExpiry))
		if err := s.store.SetExpiry(ctx, record.ID, &expiry); err != nil {
			return Outcome{}, fmt.Errorf("postpone warning %s: %w", record.ID, err)
		}
	case ChoicePermanent:
		if err := s.store.SetExpiry(ctx, record.ID, nil); err != nil {
			return Outcome{}, fmt.Errorf("make warning %s permanent: %w", record.ID, err)
		}
	case ChoiceReduceTier:
		if err := s.store.SetActive(ctx, record.ID, false); err != nil {
			return Outcome{}, fmt.Errorf("deactivate warning %s: %w", record.ID, err)
		}
		tier := record.Kind.WarnTier()
		if tier > 1 {
			lower, err := punishments.WarnKindForTier(tier - 1)
			if err != nil {
				return Outcome{}, err
			}
			expiry := s.clock.Now().Add(s.cfg.WarningExpiry)
			id, err := s.issuer.Issue(ctx, punishments.Request{
				UserID:      record.UserID,
				ModeratorID: moderatorID,
				Kind:        lower,
				Reason:      record.Reason,
				Expiry:      &expiry,
				Context:     record.ID,
			})
			if err != nil {
				return Outcome{}, fmt.Errorf("issue reduced warning: %w", err)
			}
			outcome.NewRecordID = id
		}
	default:
		return Outcome{}, fmt.Errorf("review: unknown choice %q", choice)
	}

	s.logger.Info("warning review resolved",
		zap.String("id", record.ID),
		zap.String("choice", string(choice)),
		zap.String("moderator_id", moderatorID))
	return outcome, nil
}

func postponeDuration(choice Choice, full time.Duration) time.Duration {
	switch choice {
	case ChoicePostpone14:
		return 14 * 24 * time.Hour
	case ChoicePostpone7:
		return 7 * 24 * time.Hour
	default:
		return full
	}
}
