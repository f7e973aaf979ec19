package punishments

import (
	"time"
	"unicode/utf8"
)

// DefaultReason is recorded when a moderator issues an action without one.
const DefaultReason = "No reason specified"

// MaxReasonLength bounds reasons so they fit embed field limits downstream.
const MaxReasonLength = 1000

// Record is one punishment document in the puns collection. Records are
// append-only: after insertion only Active, Expiry and Reason are mutated.
type Record struct {
	ID          string     `bson:"_id"`
	UserID      string     `bson:"user"`
	ModeratorID string     `bson:"moderator"`
	Kind        Kind       `bson:"type"`
	Reason      string     `bson:"reason"`
	IssuedAt    time.Time  `bson:"timestamp"`
	Expiry      *time.Time `bson:"expiry,omitempty"`
	Active      bool       `bson:"active"`
	Context     string     `bson:"context,omitempty"`
}

// Expired reports whether the record has an expiry that has passed.
func (r Record) Expired(now time.Time) bool {
	return r.Expiry != nil && !now.Before(*r.Expiry)
}

// TruncateReason caps a reason at MaxReasonLength runes.
func TruncateReason(reason string) string {
	if utf8.RuneCountInString(reason) <= MaxReasonLength {
		return reason
	}
	runes := []rune(reason)
	return string(runes[:MaxReasonLength])
}
