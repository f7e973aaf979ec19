package punishments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Gateway is the slice of Discord the reconciler touches. Implemented by
// bot.SessionGateway over a discordgo session.
type Gateway interface {
	Member(userID string) (*discordgo.Member, error)
	User(userID string) (*discordgo.User, error)
	RemoveRole(userID, roleID string) error
	DirectMessage(userID string, embed *discordgo.MessageEmbed) error
	SendEmbed(channelID string, embed *discordgo.MessageEmbed) error
}

// PresenceSource reports the last known presence for a user, if any.
type PresenceSource interface {
	LastStatus(userID string) (string, bool)
}

// NotifyLimiter throttles review notifications per record id. Forget
// releases a key whose notification did not actually go out.
type NotifyLimiter interface {
	Allow(key string, now time.Time) bool
	Forget(key string)
}

type ReconcilerConfig struct {
	MuteRoleID    string
	ModLogChannel string
	AdminChannel  string
	BatchSize     int
	HistoryLimit  int
	ActionColor   int
	WarningColor  int
}

// Reconciler keeps punishment records with an expiry consistent with guild
// state. It polls: each cycle queries active records carrying an expiry and
// acts on the ones whose expiry has passed. Worst-case latency is the
// polling interval.
type Reconciler struct {
	cfg      ReconcilerConfig
	store    RecordStore
	issuer   *Issuer
	gateway  Gateway
	presence PresenceSource
	limiter  NotifyLimiter
	clock    Clock
	logger   *zap.Logger
}

func NewReconciler(cfg ReconcilerConfig, store RecordStore, issuer *Issuer, gateway Gateway, presence PresenceSource, limiter NotifyLimiter, logger *zap.Logger) *Reconciler {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 200
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 5
	}
	return &Reconciler{
		cfg:      cfg,
		store:    store,
		issuer:   issuer,
		gateway:  gateway,
		presence: presence,
		limiter:  limiter,
		clock:    realClock{},
		logger:   logger,
	}
}

func (r *Reconciler) WithClock(clock Clock) *Reconciler {
	r.clock = clock
	return r
}

// Run polls until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Cycle(ctx)
		}
	}
}

// Cycle performs one reconciliation pass. Records are processed in
// isolation: a failure on one record never prevents processing the rest,
// and a record that fails stays active so the next cycle retries it.
func (r *Reconciler) Cycle(ctx context.Context) {
	records, err := r.store.ActiveWithExpiry(ctx, r.cfg.BatchSize)
	if err != nil {
		r.logger.Error("reconciler query failed", zap.Error(err))
		return
	}

	now := r.clock.Now()
	for _, record := range records {
		if !record.Expired(now) {
			continue
		}
		switch {
		case record.Kind == KindMute:
			if err := r.expireMute(ctx, record); err != nil {
				r.logger.Warn("mute expiry failed",
					zap.String("id", record.ID),
					zap.String("user_id", record.UserID),
					zap.Error(err))
			}
		case record.Kind.IsWarnTier():
			r.notifyWarningDue(ctx, record, now)
		}
	}
}

// expireMute removes the mute role, then deactivates the record and records
// a complementary unmute, notifies the user best-effort and posts to the mod
// log. The role comes off before the record flips: any failure up to the
// deactivation leaves the record active so the next cycle retries it.
func (r *Reconciler) expireMute(ctx context.Context, record Record) error {
	if r.cfg.MuteRoleID == "" {
		return fmt.Errorf("mute role not configured")
	}
	if _, err := r.gateway.Member(record.UserID); err != nil {
		return fmt.Errorf("resolve member: %w", err)
	}
	if err := r.gateway.RemoveRole(record.UserID, r.cfg.MuteRoleID); err != nil {
		return fmt.Errorf("remove mute role: %w", err)
	}

	if err := r.store.SetActive(ctx, record.ID, false); err != nil {
		return fmt.Errorf("deactivate: %w", err)
	}

	if _, err := r.issuer.Issue(ctx, Request{
		UserID:      record.UserID,
		ModeratorID: record.ModeratorID,
		Kind:        KindUnmute,
		Reason:      "Mute expired",
		Context:     record.ID,
		Inactive:    true,
	}); err != nil {
		return fmt.Errorf("record unmute: %w", err)
	}

	// DMs are best-effort; users with closed DMs are routine.
	_ = r.gateway.DirectMessage(record.UserID, r.unmuteDMEmbed(record))

	if r.cfg.ModLogChannel != "" {
		if err := r.gateway.SendEmbed(r.cfg.ModLogChannel, r.unmuteLogEmbed(record)); err != nil {
			r.logger.Warn("mod log post failed", zap.String("id", record.ID), zap.Error(err))
		}
	}

	r.logger.Info("mute expired",
		zap.String("id", record.ID),
		zap.String("user_id", record.UserID))
	return nil
}

// notifyWarningDue flags an overdue warning for manual review instead of
// auto-expiring it. At most one notification per record per limiter window.
func (r *Reconciler) notifyWarningDue(ctx context.Context, record Record, now time.Time) {
	if r.cfg.AdminChannel == "" {
		r.logger.Error("admin channel not configured, skipping warning review notice",
			zap.String("id", record.ID))
		return
	}
	if r.limiter != nil && !r.limiter.Allow(record.ID, now) {
		return
	}

	history, err := r.store.History(ctx, record.UserID, r.cfg.HistoryLimit)
	if err != nil {
		r.logger.Warn("history fetch failed", zap.String("user_id", record.UserID), zap.Error(err))
	}

	embed := r.warningDueEmbed(record, history)
	if err := r.gateway.SendEmbed(r.cfg.AdminChannel, embed); err != nil {
		// Release the window so the next cycle retries instead of going
		// silent for the full cooldown.
		if r.limiter != nil {
			r.limiter.Forget(record.ID)
		}
		r.logger.Warn("review notice post failed", zap.String("id", record.ID), zap.Error(err))
		return
	}
	r.logger.Info("warning due for review",
		zap.String("id", record.ID),
		zap.String("user_id", record.UserID))
}

func (r *Reconciler) unmuteDMEmbed(record Record) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "You have been unmuted",
		Description: "Your mute has expired. Please continue to follow the server rules.",
		Color:       r.cfg.ActionColor,
		Timestamp:   r.clock.Now().Format(time.RFC3339),
	}
}

func (r *Reconciler) unmuteLogEmbed(record Record) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Mute expired",
		Color:       r.cfg.ActionColor,
		Timestamp:   r.clock.Now().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "User", Value: "<@" + record.UserID + ">", Inline: true},
			{Name: "Record", Value: record.ID, Inline: true},
			{Name: "Reason", Value: record.Reason, Inline: false},
		},
	}
}

func (r *Reconciler) warningDueEmbed(record Record, history []Record) *discordgo.MessageEmbed {
	presence := "unknown"
	if r.presence != nil {
		if status, ok := r.presence.LastStatus(record.UserID); ok {
			presence = status
		}
	}

	// Prefer the member entry; fall back to a user fetch for people who
	// have since left the guild.
	display := "<@" + record.UserID + ">"
	if member, err := r.gateway.Member(record.UserID); err == nil && member != nil && member.User != nil {
		display = fmt.Sprintf("%s (<@%s>)", member.User.Username, record.UserID)
	} else if user, err := r.gateway.User(record.UserID); err == nil && user != nil {
		display = fmt.Sprintf("%s (<@%s>, left)", user.Username, record.UserID)
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "User", Value: display, Inline: true},
		{Name: "Warning", Value: record.Kind.Label(), Inline: true},
		{Name: "Last seen", Value: presence, Inline: true},
		{Name: "Record", Value: record.ID, Inline: false},
	}
	if lines := formatHistory(history); lines != "" {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "Recent history", Value: lines, Inline: false,
		})
	}

	return &discordgo.MessageEmbed{
		Title:       "Warning due for review",
		Description: "This warning has reached its review point. Use `/warn review` to resolve it.",
		Color:       r.cfg.WarningColor,
		Timestamp:   r.clock.Now().Format(time.RFC3339),
		Fields:      fields,
	}
}

func formatHistory(history []Record) string {
	lines := make([]string, 0, len(history))
	for _, record := range history {
		lines = append(lines, fmt.Sprintf("%s — %s (%s)",
			record.IssuedAt.Format("2006-01-02"), record.Kind.Label(), record.Reason))
	}
	return strings.Join(lines, "\n")
}
