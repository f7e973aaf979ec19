package punishments

import "fmt"

// Kind is the tagged variant for the punishment type of a record.
type Kind string

const (
	KindBan         Kind = "ban"
	KindUnban       Kind = "unban"
	KindKick        Kind = "kick"
	KindMute        Kind = "mute"
	KindUnmute      Kind = "unmute"
	KindWarnTier1   Kind = "tier1"
	KindWarnTier2   Kind = "tier2"
	KindWarnTier3   Kind = "tier3"
	KindWarnClear   Kind = "warnclear"
	KindBlacklist   Kind = "blacklist"
	KindUnblacklist Kind = "unblacklist"
	KindNote        Kind = "note"
	KindStrike      Kind = "strike"
	KindDestrike    Kind = "destrike"
)

// MaxWarnTier is the highest warning tier; escalation past it is rejected.
const MaxWarnTier = 3

var allKinds = map[Kind]struct{}{
	KindBan: {}, KindUnban: {}, KindKick: {}, KindMute: {}, KindUnmute: {},
	KindWarnTier1: {}, KindWarnTier2: {}, KindWarnTier3: {}, KindWarnClear: {},
	KindBlacklist: {}, KindUnblacklist: {}, KindNote: {}, KindStrike: {}, KindDestrike: {},
}

func ParseKind(value string) (Kind, error) {
	kind := Kind(value)
	if _, ok := allKinds[kind]; !ok {
		return "", fmt.Errorf("unknown punishment kind %q", value)
	}
	return kind, nil
}

func (k Kind) Valid() bool {
	_, ok := allKinds[k]
	return ok
}

// WarnTier returns 1-3 for warning kinds and 0 for everything else.
func (k Kind) WarnTier() int {
	switch k {
	case KindWarnTier1:
		return 1
	case KindWarnTier2:
		return 2
	case KindWarnTier3:
		return 3
	default:
		return 0
	}
}

func (k Kind) IsWarnTier() bool {
	return k.WarnTier() > 0
}

// WarnKindForTier returns the warning kind for a tier between 1 and MaxWarnTier.
func WarnKindForTier(tier int) (Kind, error) {
	switch tier {
	case 1:
		return KindWarnTier1, nil
	case 2:
		return KindWarnTier2, nil
	case 3:
		return KindWarnTier3, nil
	default:
		return "", fmt.Errorf("warning tier %d out of range", tier)
	}
}

// NextWarnKind returns the escalation of the current warning, where an
// empty current kind means the user has no active warning. Escalating past
// MaxWarnTier is an error, never a clamp.
func NextWarnKind(current Kind) (Kind, error) {
	if current == "" {
		return KindWarnTier1, nil
	}
	tier := current.WarnTier()
	if tier == 0 {
		return "", fmt.Errorf("cannot escalate non-warning kind %q", current)
	}
	if tier >= MaxWarnTier {
		return "", fmt.Errorf("warning already at tier %d", MaxWarnTier)
	}
	return WarnKindForTier(tier + 1)
}

// Label is the human-readable form used in embeds and confirmations.
func (k Kind) Label() string {
	switch k {
	case KindBan:
		return "Ban"
	case KindUnban:
		return "Unban"
	case KindKick:
		return "Kick"
	case KindMute:
		return "Mute"
	case KindUnmute:
		return "Unmute"
	case KindWarnTier1:
		return "Warning (tier 1)"
	case KindWarnTier2:
		return "Warning (tier 2)"
	case KindWarnTier3:
		return "Warning (tier 3)"
	case KindWarnClear:
		return "Warning cleared"
	case KindBlacklist:
		return "Blacklist"
	case KindUnblacklist:
		return "Unblacklist"
	case KindNote:
		return "Note"
	case KindStrike:
		return "Strike"
	case KindDestrike:
		return "Strike removed"
	default:
		return string(k)
	}
}
