package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rNintendoSwitch/MechaBowser-sub000/internal/modlog"
	"github.com/rNintendoSwitch/MechaBowser-sub000/internal/punishments"
	"github.com/rNintendoSwitch/MechaBowser-sub000/internal/warnreview"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const (
	glyphOK    = "✅"
	glyphFail  = "🚫"
	glyphAlert = "⚠️"
)

func (b *Bot) onInteractionCreate(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	if interaction.Type != discordgo.InteractionApplicationCommand {
		return
	}
	if interaction.GuildID != b.cfg.GuildID {
		return
	}

	invoker := ""
	if interaction.Member != nil && interaction.Member.User != nil {
		invoker = interaction.Member.User.ID
	}
	if !b.hasModRole(invoker) {
		b.respond(session, interaction, glyphFail+" You do not have permission to use this command.", true)
		return
	}

	ctx := context.Background()
	data := interaction.ApplicationCommandData()

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("command handler panicked",
				zap.String("command", data.Name),
				zap.Any("panic", r))
			b.respond(session, interaction, glyphFail+" An unknown exception has occurred.", true)
		}
	}()

	switch data.Name {
	case "ban":
		b.handleBan(ctx, session, interaction, invoker, data.Options)
	case "unban":
		b.handleUnban(ctx, session, interaction, invoker, data.Options)
	case "kick":
		b.handleKick(ctx, session, interaction, invoker, data.Options)
	case "mute":
		b.handleMute(ctx, session, interaction, invoker, data.Options)
	case "unmute":
		b.handleUnmute(ctx, session, interaction, invoker, data.Options)
	case "warn":
		b.handleWarn(ctx, session, interaction, invoker, data.Options)
	case "note":
		b.handleNote(ctx, session, interaction, invoker, data.Options)
	case "strike":
		b.handleStrike(ctx, session, interaction, invoker, data.Options)
	case "blacklist":
		b.handleBlacklist(ctx, session, interaction, invoker, data.Options)
	case "history":
		b.handleHistory(ctx, session, interaction, data.Options)
	}
}

func (b *Bot) handleBan(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, invoker string, options []*discordgo.ApplicationCommandInteractionDataOption) {
	opts := optionMap(options)
	target := opts["user"].UserValue(session)
	reason := stringOption(opts, "reason")

	if _, err := session.GuildBan(b.cfg.GuildID, target.ID); err == nil {
		b.respond(session, interaction, glyphFail+" That user is already banned.", true)
		return
	}

	id, err := b.issuer.Issue(ctx, punishments.Request{
		UserID:      target.ID,
		ModeratorID: invoker,
		Kind:        punishments.KindBan,
		Reason:      reason,
	})
	if err != nil {
		b.failUnknown(session, interaction, "ban", err)
		return
	}

	// DM before the ban lands, while a shared guild still exists.
	b.dmPunishment(target.ID, punishments.KindBan, reason, nil)

	if err := session.GuildBanCreateWithReason(b.cfg.GuildID, target.ID, reason, 0); err != nil {
		b.modlog.Log(ctx, modlog.LevelWarn, target.ID, invoker, "ban_failed", id, err.Error())
		b.respond(session, interaction, glyphFail+" Failed to ban the user; the record was kept.", true)
		return
	}

	b.modlog.Log(ctx, modlog.LevelCrit, target.ID, invoker, "ban", id, reasonOrDefault(reason))
	b.respond(session, interaction, fmt.Sprintf("%s Banned <@%s> (record `%s`).", glyphOK, target.ID, id), false)
}

func (b *Bot) handleUnban(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, invoker string, options []*discordgo.ApplicationCommandInteractionDataOption) {
	opts := optionMap(options)
	target := opts["user"].UserValue(session)
	reason := stringOption(opts, "reason")

	if _, err := session.GuildBan(b.cfg.GuildID, target.ID); err != nil {
		b.respond(session, interaction, glyphFail+" That user is not banned.", true)
		return
	}

	if err := session.GuildBanDelete(b.cfg.GuildID, target.ID); err != nil {
		b.failUnknown(session, interaction, "unban", err)
		return
	}

	b.deactivateActive(ctx, target.ID, punishments.KindBan)

	id, err := b.issuer.Issue(ctx, punishments.Request{
		UserID:      target.ID,
		ModeratorID: invoker,
		Kind:        punishments.KindUnban,
		Reason:      reason,
		Inactive:    true,
	})
	if err != nil {
		b.failUnknown(session, interaction, "unban", err)
		return
	}

	b.modlog.Log(ctx, modlog.LevelInfo, target.ID, invoker, "unban", id, reasonOrDefault(reason))
	b.respond(session, interaction, fmt.Sprintf("%s Unbanned <@%s>.", glyphOK, target.ID), false)
}

func (b *Bot) handleKick(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, invoker string, options []*discordgo.ApplicationCommandInteractionDataOption) {
	opts := optionMap(options)
	target := opts["user"].UserValue(session)
	reason := stringOption(opts, "reason")

	if b.memberForUser(target.ID) == nil {
		b.respond(session, interaction, glyphFail+" That user is not in the server.", true)
		return
	}

	id, err := b.issuer.Issue(ctx, punishments.Request{
		UserID:      target.ID,
		ModeratorID: invoker,
		Kind:        punishments.KindKick,
		Reason:      reason,
		Inactive:    true,
	})
	if err != nil {
		b.failUnknown(session, interaction, "kick", err)
		return
	}

	b.dmPunishment(target.ID, punishments.KindKick, reason, nil)

	if err := session.GuildMemberDeleteWithReason(b.cfg.GuildID, target.ID, reason); err != nil {
		b.modlog.Log(ctx, modlog.LevelWarn, target.ID, invoker, "kick_failed", id, err.Error())
		b.respond(session, interaction, glyphFail+" Failed to kick the user; the record was kept.", true)
		return
	}

	b.modlog.Log(ctx, modlog.LevelWarn, target.ID, invoker, "kick", id, reasonOrDefault(reason))
	b.respond(session, interaction, fmt.Sprintf("%s Kicked <@%s>.", glyphOK, target.ID), false)
}

func (b *Bot) handleMute(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, invoker string, options []*discordgo.ApplicationCommandInteractionDataOption) {
	opts := optionMap(options)
	target := opts["user"].UserValue(session)
	reason := stringOption(opts, "reason")

	duration, err := parseModDuration(opts["duration"].StringValue())
	if err != nil {
		b.respond(session, interaction, glyphFail+" Invalid duration: "+err.Error(), true)
		return
	}

	active, err := b.store.ActiveByKind(ctx, target.ID, punishments.KindMute)
	if err != nil {
		b.failUnknown(session, interaction, "mute", err)
		return
	}
	if len(active) > 0 {
		b.respond(session, interaction, glyphFail+" That user is already muted.", true)
		return
	}
	if b.memberForUser(target.ID) == nil {
		b.respond(session, interaction, glyphFail+" That user is not in the server.", true)
		return
	}

	expiry := time.Now().Add(duration)
	id, err := b.issuer.Issue(ctx, punishments.Request{
		UserID:      target.ID,
		ModeratorID: invoker,
		Kind:        punishments.KindMute,
		Reason:      reason,
		Expiry:      &expiry,
	})
	if err != nil {
		b.failUnknown(session, interaction, "mute", err)
		return
	}

	if err := session.GuildMemberRoleAdd(b.cfg.GuildID, target.ID, b.cfg.Roles.Mute); err != nil {
		b.modlog.Log(ctx, modlog.LevelWarn, target.ID, invoker, "mute_failed", id, err.Error())
		b.respond(session, interaction, glyphFail+" Failed to apply the mute role; the record was kept.", true)
		return
	}

	b.dmPunishment(target.ID, punishments.KindMute, reason, &expiry)
	b.modlog.Log(ctx, modlog.LevelWarn, target.ID, invoker, "mute", id,
		fmt.Sprintf("duration=%s reason=%s", formatModDuration(duration), reasonOrDefault(reason)))
	b.respond(session, interaction, fmt.Sprintf("%s Muted <@%s> for %s.", glyphOK, target.ID, formatModDuration(duration)), false)
}

func (b *Bot) handleUnmute(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, invoker string, options []*discordgo.ApplicationCommandInteractionDataOption) {
	opts := optionMap(options)
	target := opts["user"].UserValue(session)
	reason := stringOption(opts, "reason")

	active, err := b.store.ActiveByKind(ctx, target.ID, punishments.KindMute)
	if err != nil {
		b.failUnknown(session, interaction, "unmute", err)
		return
	}
	if len(active) == 0 {
		b.respond(session, interaction, glyphFail+" That user is not currently muted.", true)
		return
	}
	mute := active[0]

	if err := b.store.SetActive(ctx, mute.ID, false); err != nil {
		b.failUnknown(session, interaction, "unmute", err)
		return
	}
	id, err := b.issuer.Issue(ctx, punishments.Request{
		UserID:      target.ID,
		ModeratorID: invoker,
		Kind:        punishments.KindUnmute,
		Reason:      reason,
		Context:     mute.ID,
		Inactive:    true,
	})
	if err != nil {
		b.failUnknown(session, interaction, "unmute", err)
		return
	}

	if err := session.GuildMemberRoleRemove(b.cfg.GuildID, target.ID, b.cfg.Roles.Mute); err != nil {
		b.modlog.Log(ctx, modlog.LevelWarn, target.ID, invoker, "unmute_failed", id, err.Error())
	}

	b.modlog.Log(ctx, modlog.LevelInfo, target.ID, invoker, "unmute", id, reasonOrDefault(reason))
	b.respond(session, interaction, fmt.Sprintf("%s Unmuted <@%s>.", glyphOK, target.ID), false)
}

func (b *Bot) handleWarn(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, invoker string, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if len(options) == 0 {
		b.respond(session, interaction, glyphFail+" Missing subcommand.", true)
		return
	}
	sub := options[0]
	opts := optionMap(sub.Options)
	target := opts["user"].UserValue(session)

	switch sub.Name {
	case "issue":
		b.warnEscalate(ctx, session, interaction, invoker, target.ID, stringOption(opts, "reason"))
	case "clear":
		b.warnClear(ctx, session, interaction, invoker, target.ID, stringOption(opts, "reason"))
	case "level":
		tier := int(opts["tier"].IntValue())
		b.warnSetLevel(ctx, session, interaction, invoker, target.ID, tier, stringOption(opts, "reason"))
	case "review":
		b.warnReview(ctx, session, interaction, target.ID)
	}
}

// warnEscalate raises the user's warning tier by one. Tier is capped at
// MaxWarnTier; escalating past it is rejected rather than clamped.
func (b *Bot) warnEscalate(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, invoker, targetID, reason string) {
	current, err := b.activeWarning(ctx, targetID)
	if err != nil {
		b.failUnknown(session, interaction, "warn", err)
		return
	}

	currentKind := punishments.Kind("")
	contextID := ""
	if current != nil {
		currentKind = current.Kind
		contextID = current.ID
	}
	kind, err := punishments.NextWarnKind(currentKind)
	if err != nil {
		b.respond(session, interaction, glyphFail+" That user is already at the maximum warning tier.", true)
		return
	}
	if current != nil {
		if err := b.store.SetActive(ctx, current.ID, false); err != nil {
			b.failUnknown(session, interaction, "warn", err)
			return
		}
	}
	expiry := time.Now().Add(b.warningExpiry())
	id, err := b.issuer.Issue(ctx, punishments.Request{
		UserID:      targetID,
		ModeratorID: invoker,
		Kind:        kind,
		Reason:      reason,
		Expiry:      &expiry,
		Context:     contextID,
	})
	if err != nil {
		b.failUnknown(session, interaction, "warn", err)
		return
	}

	b.dmPunishment(targetID, kind, reason, &expiry)
	b.modlog.Log(ctx, modlog.LevelWarn, targetID, invoker, "warn", id, reasonOrDefault(reason))
	b.respond(session, interaction, fmt.Sprintf("%s <@%s> is now at warning tier %d.", glyphOK, targetID, kind.WarnTier()), false)
}

func (b *Bot) warnClear(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, invoker, targetID, reason string) {
	current, err := b.activeWarning(ctx, targetID)
	if err != nil {
		b.failUnknown(session, interaction, "warn", err)
		return
	}
	if current == nil {
		b.respond(session, interaction, glyphFail+" That user has no active warning.", true)
		return
	}

	if err := b.store.SetActive(ctx, current.ID, false); err != nil {
		b.failUnknown(session, interaction, "warn", err)
		return
	}
	id, err := b.issuer.Issue(ctx, punishments.Request{
		UserID:      targetID,
		ModeratorID: invoker,
		Kind:        punishments.KindWarnClear,
		Reason:      reason,
		Context:     current.ID,
		Inactive:    true,
	})
	if err != nil {
		b.failUnknown(session, interaction, "warn", err)
		return
	}

	b.modlog.Log(ctx, modlog.LevelInfo, targetID, invoker, "warn_clear", id, reasonOrDefault(reason))
	b.respond(session, interaction, fmt.Sprintf("%s Cleared the active warning for <@%s>.", glyphOK, targetID), false)
}

func (b *Bot) warnSetLevel(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, invoker, targetID string, tier int, reason string) {
	kind, err := punishments.WarnKindForTier(tier)
	if err != nil {
		b.respond(session, interaction, glyphFail+" Warning tier must be between 1 and 3.", true)
		return
	}

	current, err := b.activeWarning(ctx, targetID)
	if err != nil {
		b.failUnknown(session, interaction, "warn", err)
		return
	}
	contextID := ""
	if current != nil {
		if current.Kind == kind {
			b.respond(session, interaction, fmt.Sprintf("%s That user is already at tier %d.", glyphFail, tier), true)
			return
		}
		if err := b.store.SetActive(ctx, current.ID, false); err != nil {
			b.failUnknown(session, interaction, "warn", err)
			return
		}
		contextID = current.ID
	}

	expiry := time.Now().Add(b.warningExpiry())
	id, err := b.issuer.Issue(ctx, punishments.Request{
		UserID:      targetID,
		ModeratorID: invoker,
		Kind:        kind,
		Reason:      reason,
		Expiry:      &expiry,
		Context:     contextID,
	})
	if err != nil {
		b.failUnknown(session, interaction, "warn", err)
		return
	}

	b.modlog.Log(ctx, modlog.LevelWarn, targetID, invoker, "warn_level", id,
		fmt.Sprintf("tier=%d reason=%s", tier, reasonOrDefault(reason)))
	b.respond(session, interaction, fmt.Sprintf("%s Set <@%s> to warning tier %d.", glyphOK, targetID, tier), false)
}

// warnReview posts the review choices for an overdue warning and runs the
// review session against reactions on that message.
func (b *Bot) warnReview(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, targetID string) {
	current, err := b.activeWarning(ctx, targetID)
	if err != nil {
		b.failUnknown(session, interaction, "warn", err)
		return
	}
	if current == nil {
		b.respond(session, interaction, glyphFail+" That user has no active warning.", true)
		return
	}
	if !current.Expired(time.Now()) {
		b.respond(session, interaction, glyphFail+" That warning is not yet due for review.", true)
		return
	}

	msg, err := session.ChannelMessageSendEmbed(interaction.ChannelID, b.buildReviewEmbed(*current))
	if err != nil {
		b.failUnknown(session, interaction, "warn", err)
		return
	}
	for _, emoji := range []string{"1️⃣", "2️⃣", "3️⃣", "4️⃣", "5️⃣"} {
		_ = session.MessageReactionAdd(msg.ChannelID, msg.ID, emoji)
	}

	reactions := make(chan warnreview.Reaction, 16)
	b.reviewMu.Lock()
	b.reviews[msg.ID] = reactions
	b.reviewMu.Unlock()

	review := warnreview.New(warnreview.Config{
		Timeout:       time.Duration(b.cfg.Review.TimeoutSeconds) * time.Second,
		WarningExpiry: b.warningExpiry(),
	}, b.store, b.issuer, b.hasModRole, b.logger)

	b.respond(session, interaction, glyphOK+" Review started; react on the posted message.", true)

	record := *current
	go func() {
		defer func() {
			b.reviewMu.Lock()
			delete(b.reviews, msg.ID)
			b.reviewMu.Unlock()
		}()

		outcome, err := review.Run(context.Background(), record, reactions)
		if err != nil {
			b.logger.Error("warning review failed", zap.String("id", record.ID), zap.Error(err))
			_, _ = session.ChannelMessageSend(msg.ChannelID, glyphFail+" An unknown exception has occurred.")
			return
		}
		switch outcome.State {
		case warnreview.StateTimedOut:
			_, _ = session.ChannelMessageSend(msg.ChannelID, glyphAlert+" Review timed out; the warning stays pending.")
		case warnreview.StateResolved:
			summary := reviewSummary(outcome)
			_, _ = session.ChannelMessageSend(msg.ChannelID, glyphOK+" "+summary)
			b.modlog.Log(context.Background(), modlog.LevelInfo, record.UserID, "", "warn_review", record.ID, string(outcome.Choice))
		}
	}()
}

func (b *Bot) handleNote(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, invoker string, options []*discordgo.ApplicationCommandInteractionDataOption) {
	opts := optionMap(options)
	target := opts["user"].UserValue(session)
	text := opts["text"].StringValue()

	id, err := b.issuer.Issue(ctx, punishments.Request{
		UserID:      target.ID,
		ModeratorID: invoker,
		Kind:        punishments.KindNote,
		Reason:      text,
		Inactive:    true,
	})
	if err != nil {
		b.failUnknown(session, interaction, "note", err)
		return
	}

	b.modlog.Log(ctx, modlog.LevelInfo, target.ID, invoker, "note", id, text)
	b.respond(session, interaction, fmt.Sprintf("%s Note recorded for <@%s>.", glyphOK, target.ID), true)
}

func (b *Bot) handleStrike(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, invoker string, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if len(options) == 0 {
		b.respond(session, interaction, glyphFail+" Missing subcommand.", true)
		return
	}
	sub := options[0]
	opts := optionMap(sub.Options)
	target := opts["user"].UserValue(session)
	reason := stringOption(opts, "reason")

	switch sub.Name {
	case "add":
		id, err := b.issuer.Issue(ctx, punishments.Request{
			UserID:      target.ID,
			ModeratorID: invoker,
			Kind:        punishments.KindStrike,
			Reason:      reason,
		})
		if err != nil {
			b.failUnknown(session, interaction, "strike", err)
			return
		}
		b.dmPunishment(target.ID, punishments.KindStrike, reason, nil)
		b.modlog.Log(ctx, modlog.LevelWarn, target.ID, invoker, "strike", id, reasonOrDefault(reason))
		b.respond(session, interaction, fmt.Sprintf("%s Strike recorded for <@%s>.", glyphOK, target.ID), false)
	case "remove":
		active, err := b.store.ActiveByKind(ctx, target.ID, punishments.KindStrike)
		if err != nil {
			b.failUnknown(session, interaction, "strike", err)
			return
		}
		if len(active) == 0 {
			b.respond(session, interaction, glyphFail+" That user has no active strikes.", true)
			return
		}
		// Most recent strike goes first.
		latest := active[0]
		for _, record := range active[1:] {
			if record.IssuedAt.After(latest.IssuedAt) {
				latest = record
			}
		}
		if err := b.store.SetActive(ctx, latest.ID, false); err != nil {
			b.failUnknown(session, interaction, "strike", err)
			return
		}
		id, err := b.issuer.Issue(ctx, punishments.Request{
			UserID:      target.ID,
			ModeratorID: invoker,
			Kind:        punishments.KindDestrike,
			Reason:      reason,
			Context:     latest.ID,
			Inactive:    true,
		})
		if err != nil {
			b.failUnknown(session, interaction, "strike", err)
			return
		}
		b.modlog.Log(ctx, modlog.LevelInfo, target.ID, invoker, "destrike", id, reasonOrDefault(reason))
		b.respond(session, interaction, fmt.Sprintf("%s Removed a strike from <@%s>.", glyphOK, target.ID), false)
	}
}

func (b *Bot) handleBlacklist(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, invoker string, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if len(options) == 0 {
		b.respond(session, interaction, glyphFail+" Missing subcommand.", true)
		return
	}
	sub := options[0]
	opts := optionMap(sub.Options)
	target := opts["user"].UserValue(session)
	channel := opts["channel"].ChannelValue(session)
	reason := stringOption(opts, "reason")
	if channel == nil {
		b.respond(session, interaction, glyphFail+" Unknown channel.", true)
		return
	}

	existing, err := b.activeBlacklist(ctx, target.ID, channel.ID)
	if err != nil {
		b.failUnknown(session, interaction, "blacklist", err)
		return
	}

	switch sub.Name {
	case "add":
		if existing != nil {
			b.respond(session, interaction, glyphFail+" That user is already blacklisted from that channel.", true)
			return
		}
		id, err := b.issuer.Issue(ctx, punishments.Request{
			UserID:      target.ID,
			ModeratorID: invoker,
			Kind:        punishments.KindBlacklist,
			Reason:      reason,
			Context:     channel.ID,
		})
		if err != nil {
			b.failUnknown(session, interaction, "blacklist", err)
			return
		}
		if err := session.ChannelPermissionSet(channel.ID, target.ID, discordgo.PermissionOverwriteTypeMember, 0, discordgo.PermissionViewChannel); err != nil {
			b.modlog.Log(ctx, modlog.LevelWarn, target.ID, invoker, "blacklist_failed", id, err.Error())
		}
		b.modlog.Log(ctx, modlog.LevelWarn, target.ID, invoker, "blacklist", id,
			fmt.Sprintf("channel=%s reason=%s", channel.ID, reasonOrDefault(reason)))
		b.respond(session, interaction, fmt.Sprintf("%s Blacklisted <@%s> from <#%s>.", glyphOK, target.ID, channel.ID), false)
	case "remove":
		if existing == nil {
			b.respond(session, interaction, glyphFail+" That user is not blacklisted from that channel.", true)
			return
		}
		if err := b.store.SetActive(ctx, existing.ID, false); err != nil {
			b.failUnknown(session, interaction, "blacklist", err)
			return
		}
		id, err := b.issuer.Issue(ctx, punishments.Request{
			UserID:      target.ID,
			ModeratorID: invoker,
			Kind:        punishments.KindUnblacklist,
			Reason:      reason,
			Context:     channel.ID,
			Inactive:    true,
		})
		if err != nil {
			b.failUnknown(session, interaction, "blacklist", err)
			return
		}
		if err := session.ChannelPermissionDelete(channel.ID, target.ID); err != nil {
			b.modlog.Log(ctx, modlog.LevelWarn, target.ID, invoker, "unblacklist_failed", id, err.Error())
		}
		b.modlog.Log(ctx, modlog.LevelInfo, target.ID, invoker, "unblacklist", id,
			fmt.Sprintf("channel=%s", channel.ID))
		b.respond(session, interaction, fmt.Sprintf("%s Lifted the blacklist for <@%s> in <#%s>.", glyphOK, target.ID, channel.ID), false)
	}
}

func (b *Bot) handleHistory(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	opts := optionMap(options)
	target := opts["user"].UserValue(session)

	history, err := b.store.History(ctx, target.ID, 10)
	if err != nil {
		b.failUnknown(session, interaction, "history", err)
		return
	}
	b.respondEmbed(session, interaction, b.buildHistoryEmbed(target, history), true)
}

// activeWarning returns the user's single active warning-tier record, nil
// when there is none. More than one active warning violates the issuing
// invariant; the oldest wins and the rest are surfaced in the log.
func (b *Bot) activeWarning(ctx context.Context, userID string) (*punishments.Record, error) {
	records, err := b.store.ActiveByKind(ctx, userID,
		punishments.KindWarnTier1, punishments.KindWarnTier2, punishments.KindWarnTier3)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	if len(records) > 1 {
		b.logger.Warn("multiple active warnings", zap.String("user_id", userID), zap.Int("count", len(records)))
	}
	return &records[0], nil
}

func (b *Bot) activeBlacklist(ctx context.Context, userID, channelID string) (*punishments.Record, error) {
	records, err := b.store.ActiveByKind(ctx, userID, punishments.KindBlacklist)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].Context == channelID {
			return &records[i], nil
		}
	}
	return nil, nil
}

func (b *Bot) deactivateActive(ctx context.Context, userID string, kind punishments.Kind) {
	records, err := b.store.ActiveByKind(ctx, userID, kind)
	if err != nil {
		b.logger.Warn("active lookup failed", zap.String("user_id", userID), zap.Error(err))
		return
	}
	for _, record := range records {
		if err := b.store.SetActive(ctx, record.ID, false); err != nil && !errors.Is(err, punishments.ErrNotFound) {
			b.logger.Warn("deactivate failed", zap.String("id", record.ID), zap.Error(err))
		}
	}
}

func (b *Bot) warningExpiry() time.Duration {
	days := b.cfg.Review.WarningExpiryDays
	if days <= 0 {
		days = 30
	}
	return time.Duration(days) * 24 * time.Hour
}

func (b *Bot) dmPunishment(userID string, kind punishments.Kind, reason string, expiry *time.Time) {
	if !b.cfg.Notifications.DMOnPunishment {
		return
	}
	channel, err := b.session.UserChannelCreate(userID)
	if err != nil {
		return
	}
	_, _ = b.session.ChannelMessageSendEmbed(channel.ID, b.buildPunishmentDMEmbed(kind, reason, expiry))
}

func (b *Bot) failUnknown(session *discordgo.Session, interaction *discordgo.InteractionCreate, command string, err error) {
	b.logger.Error("command failed", zap.String("command", command), zap.Error(err))
	b.respond(session, interaction, glyphFail+" An unknown exception has occurred.", true)
}

func (b *Bot) respond(session *discordgo.Session, interaction *discordgo.InteractionCreate, content string, ephemeral bool) {
	flags := discordgo.MessageFlags(0)
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	_ = session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   flags,
		},
	})
}

func (b *Bot) respondEmbed(session *discordgo.Session, interaction *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, ephemeral bool) {
	flags := discordgo.MessageFlags(0)
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	_ = session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  flags,
		},
	})
}

func reviewSummary(outcome warnreview.Outcome) string {
	switch outcome.Choice {
	case warnreview.ChoicePostpone30:
		return "Review postponed 30 days."
	case warnreview.ChoicePostpone14:
		return "Review postponed 14 days."
	case warnreview.ChoicePostpone7:
		return "Review postponed 7 days."
	case warnreview.ChoiceReduceTier:
		if outcome.NewRecordID != "" {
			return fmt.Sprintf("Warning reduced one tier (record `%s`).", outcome.NewRecordID)
		}
		return "Warning was at tier 1 and has been deactivated."
	case warnreview.ChoicePermanent:
		return "Warning made permanent."
	default:
		return "Review resolved."
	}
}

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	result := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, option := range options {
		result[option.Name] = option
	}
	return result
}

func stringOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	if option, ok := opts[name]; ok {
		return option.StringValue()
	}
	return ""
}

func reasonOrDefault(reason string) string {
	if reason == "" {
		return punishments.DefaultReason
	}
	return reason
}
