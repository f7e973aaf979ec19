package bot

import (
	"context"
	"sync"
	"time"

	"github.com/rNintendoSwitch/MechaBowser-sub000/internal/analytics"
	"github.com/rNintendoSwitch/MechaBowser-sub000/internal/config"
	"github.com/rNintendoSwitch/MechaBowser-sub000/internal/modlog"
	"github.com/rNintendoSwitch/MechaBowser-sub000/internal/presence"
	"github.com/rNintendoSwitch/MechaBowser-sub000/internal/profile"
	"github.com/rNintendoSwitch/MechaBowser-sub000/internal/punishments"
	"github.com/rNintendoSwitch/MechaBowser-sub000/internal/storage"
	"github.com/rNintendoSwitch/MechaBowser-sub000/internal/utils"
	"github.com/rNintendoSwitch/MechaBowser-sub000/internal/warnreview"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type Bot struct {
	cfg        config.Config
	logger     *zap.Logger
	store      *storage.Store
	issuer     *punishments.Issuer
	reconciler *punishments.Reconciler
	tracker    *profile.Tracker
	presence   *presence.Tracker
	modlog     *modlog.Logger
	analytics  *analytics.Service
	session    *discordgo.Session

	reviewMu sync.Mutex
	// reviews routes reactions on a review message to its running session.
	reviews map[string]chan warnreview.Reaction

	reconcilerCancel context.CancelFunc
}

func New(cfg config.Config, logger *zap.Logger, store *storage.Store, modLogger *modlog.Logger, analyticsSvc *analytics.Service) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, err
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildBans |
		discordgo.IntentsGuildPresences |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsMessageContent

	b := &Bot{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		modlog:    modLogger,
		analytics: analyticsSvc,
		session:   session,
		reviews:   make(map[string]chan warnreview.Reaction),
	}

	b.issuer = punishments.NewIssuer(store, logger)
	b.tracker = profile.NewTracker(store, logger)
	b.presence = presence.NewTracker(time.Duration(cfg.Review.PresenceTTLMinutes) * time.Minute)

	limiter := utils.NewKeyLimiter(time.Duration(cfg.Review.NotifyCooldownHrs) * time.Hour)
	b.reconciler = punishments.NewReconciler(punishments.ReconcilerConfig{
		MuteRoleID:    cfg.Roles.Mute,
		ModLogChannel: cfg.Channels.ModLog,
		AdminChannel:  cfg.Channels.Admin,
		BatchSize:     cfg.Reconciler.BatchSize,
		ActionColor:   cfg.Notifications.EmbedColors.Action,
		WarningColor:  cfg.Notifications.EmbedColors.Warning,
	}, store, b.issuer, &sessionGateway{bot: b}, b.presence, limiter, logger)

	modLogger.SetNotifier(func(ctx context.Context, entry modlog.Entry) {
		b.notifyModLog(ctx, entry)
	})

	return b, nil
}

func (b *Bot) Start() error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onGuildMemberAdd)
	b.session.AddHandler(b.onGuildMemberRemove)
	b.session.AddHandler(b.onGuildMemberUpdate)
	b.session.AddHandler(b.onUserUpdate)
	b.session.AddHandler(b.onPresenceUpdate)
	b.session.AddHandler(b.onMessageCreate)
	b.session.AddHandler(b.onMessageUpdate)
	b.session.AddHandler(b.onMessageDelete)
	b.session.AddHandler(b.onMessageReactionAdd)
	b.session.AddHandler(b.onInteractionCreate)

	if err := b.session.Open(); err != nil {
		return err
	}

	if err := b.registerCommands(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	b.reconcilerCancel = cancel
	go b.reconciler.Run(ctx, time.Duration(b.cfg.Reconciler.IntervalSeconds)*time.Second)

	b.startDailySummary(ctx)

	return nil
}

func (b *Bot) Close(ctx context.Context) {
	_ = ctx
	if b.reconcilerCancel != nil {
		b.reconcilerCancel()
	}
	if b.session != nil {
		_ = b.session.Close()
	}
}

func (b *Bot) onReady(session *discordgo.Session, event *discordgo.Ready) {
	b.logger.Info("discord ready", zap.String("user", session.State.User.Username))
}

func (b *Bot) onGuildMemberAdd(session *discordgo.Session, event *discordgo.GuildMemberAdd) {
	if event.GuildID != b.cfg.GuildID || event.User == nil {
		return
	}
	ctx := context.Background()
	if err := b.tracker.HandleJoin(ctx, event.User.ID, event.User.Username, event.Roles); err != nil {
		b.logger.Warn("join tracking failed", zap.String("user_id", event.User.ID), zap.Error(err))
	}
}

func (b *Bot) onGuildMemberRemove(session *discordgo.Session, event *discordgo.GuildMemberRemove) {
	if event.GuildID != b.cfg.GuildID || event.User == nil {
		return
	}
	ctx := context.Background()
	if err := b.tracker.HandleLeave(ctx, event.User.ID); err != nil {
		b.logger.Warn("leave tracking failed", zap.String("user_id", event.User.ID), zap.Error(err))
	}
}

func (b *Bot) onGuildMemberUpdate(session *discordgo.Session, event *discordgo.GuildMemberUpdate) {
	if event.GuildID != b.cfg.GuildID || event.User == nil {
		return
	}
	ctx := context.Background()
	if err := b.tracker.HandleMemberUpdate(ctx, event.User.ID, event.Roles, event.Nick); err != nil {
		b.logger.Warn("member update tracking failed", zap.String("user_id", event.User.ID), zap.Error(err))
	}
}

func (b *Bot) onUserUpdate(session *discordgo.Session, event *discordgo.UserUpdate) {
	if event.User == nil {
		return
	}
	ctx := context.Background()
	if err := b.tracker.HandleUserUpdate(ctx, event.User.ID, event.User.Username); err != nil {
		b.logger.Warn("user update tracking failed", zap.String("user_id", event.User.ID), zap.Error(err))
	}
}

func (b *Bot) onPresenceUpdate(session *discordgo.Session, event *discordgo.PresenceUpdate) {
	if event.GuildID != b.cfg.GuildID || event.User == nil {
		return
	}
	b.presence.Observe(event.User.ID, string(event.Status))
}

func (b *Bot) onMessageReactionAdd(session *discordgo.Session, event *discordgo.MessageReactionAdd) {
	if event.GuildID != b.cfg.GuildID || event.UserID == session.State.User.ID {
		return
	}
	b.reviewMu.Lock()
	ch, ok := b.reviews[event.MessageID]
	b.reviewMu.Unlock()
	if !ok {
		return
	}
	select {
	case ch <- warnreview.Reaction{UserID: event.UserID, Emoji: event.Emoji.Name}:
	default:
		// A full buffer means the session already has reactions queued;
		// dropping extras is fine since only the first qualifying one wins.
	}
}

// hasModRole reports whether the user holds the designated moderator role.
func (b *Bot) hasModRole(userID string) bool {
	member := b.memberForUser(userID)
	if member == nil {
		return false
	}
	for _, roleID := range member.Roles {
		if roleID == b.cfg.Roles.Moderator {
			return true
		}
	}
	return false
}

func (b *Bot) memberForUser(userID string) *discordgo.Member {
	member, err := b.session.State.Member(b.cfg.GuildID, userID)
	if err == nil && member != nil {
		return member
	}
	member, _ = b.session.GuildMember(b.cfg.GuildID, userID)
	return member
}

func (b *Bot) notifyModLog(ctx context.Context, entry modlog.Entry) {
	_ = ctx
	channelID := b.cfg.Channels.ModLog
	if channelID == "" {
		return
	}
	_, _ = b.session.ChannelMessageSendEmbed(channelID, b.buildModLogEmbed(entry))
}

// sessionGateway adapts the discordgo session to the reconciler's Gateway.
type sessionGateway struct {
	bot *Bot
}

func (g *sessionGateway) Member(userID string) (*discordgo.Member, error) {
	member, err := g.bot.session.State.Member(g.bot.cfg.GuildID, userID)
	if err == nil && member != nil {
		return member, nil
	}
	return g.bot.session.GuildMember(g.bot.cfg.GuildID, userID)
}

func (g *sessionGateway) User(userID string) (*discordgo.User, error) {
	return g.bot.session.User(userID)
}

func (g *sessionGateway) RemoveRole(userID, roleID string) error {
	return g.bot.session.GuildMemberRoleRemove(g.bot.cfg.GuildID, userID, roleID)
}

func (g *sessionGateway) DirectMessage(userID string, embed *discordgo.MessageEmbed) error {
	channel, err := g.bot.session.UserChannelCreate(userID)
	if err != nil {
		return err
	}
	_, err = g.bot.session.ChannelMessageSendEmbed(channel.ID, embed)
	return err
}

func (g *sessionGateway) SendEmbed(channelID string, embed *discordgo.MessageEmbed) error {
	_, err := g.bot.session.ChannelMessageSendEmbed(channelID, embed)
	return err
}
