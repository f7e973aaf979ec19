package bot

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// startDailySummary posts a moderation activity digest to the mod log
// channel once a day, first firing at the next midnight UTC.
func (b *Bot) startDailySummary(ctx context.Context) {
	if !b.cfg.Notifications.DailySummary || b.cfg.Channels.ModLog == "" {
		return
	}

	go func() {
		for {
			now := time.Now().UTC()
			next := now.Truncate(24 * time.Hour).Add(24 * time.Hour)
			timer := time.NewTimer(next.Sub(now))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
			b.postDailySummary(ctx)
		}
	}()
}

func (b *Bot) postDailySummary(ctx context.Context) {
	report, err := b.analytics.Report(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		b.logger.Warn("daily summary failed", zap.Error(err))
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:     "Daily moderation summary",
		Color:     b.cfg.Notifications.EmbedColors.Action,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if report.Total == 0 {
		embed.Description = "No punishments issued in the last 24 hours."
	} else {
		lines := make([]string, 0, len(report.ByKind))
		for kind, count := range report.ByKind {
			lines = append(lines, fmt.Sprintf("%s: %d", kind.Label(), count))
		}
		sort.Strings(lines)
		embed.Description = fmt.Sprintf("%d punishments issued in the last 24 hours.\n\n%s",
			report.Total, strings.Join(lines, "\n"))
	}

	_, _ = b.session.ChannelMessageSendEmbed(b.cfg.Channels.ModLog, embed)
}
