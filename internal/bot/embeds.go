package bot

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rNintendoSwitch/MechaBowser-sub000/internal/modlog"
	"github.com/rNintendoSwitch/MechaBowser-sub000/internal/punishments"
	"github.com/rNintendoSwitch/MechaBowser-sub000/internal/storage"

	"github.com/bwmarrin/discordgo"
)

const embedFieldLimit = 1024

func (b *Bot) buildModLogEmbed(entry modlog.Entry) *discordgo.MessageEmbed {
	color := b.cfg.Notifications.EmbedColors.Action
	switch entry.Level {
	case modlog.LevelWarn:
		color = b.cfg.Notifications.EmbedColors.Warning
	case modlog.LevelCrit:
		color = b.cfg.Notifications.EmbedColors.Error
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "User", Value: mention(entry.UserID), Inline: true},
	}
	if entry.ModeratorID != "" {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "Moderator", Value: mention(entry.ModeratorID), Inline: true,
		})
	}
	if entry.RecordID != "" {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "Record", Value: fmt.Sprintf("`%s`", entry.RecordID), Inline: true,
		})
	}
	if entry.Details != "" {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "Details", Value: clampField(entry.Details),
		})
	}

	return &discordgo.MessageEmbed{
		Title:     strings.ReplaceAll(entry.Event, "_", " "),
		Color:     color,
		Fields:    fields,
		Timestamp: entry.CreatedAt.Format(time.RFC3339),
	}
}

func (b *Bot) buildPunishmentDMEmbed(kind punishments.Kind, reason string, expiry *time.Time) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "Moderation notice",
		Color: b.cfg.Notifications.EmbedColors.Warning,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Action", Value: kind.Label(), Inline: true},
			{Name: "Reason", Value: clampField(reasonOrDefault(reason))},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if expiry != nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Expires", Value: fmt.Sprintf("<t:%d:f>", expiry.Unix()), Inline: true,
		})
	}
	return embed
}

func (b *Bot) buildHistoryEmbed(user *discordgo.User, history []punishments.Record) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("History for %s", user.Username),
		Color: b.cfg.Notifications.EmbedColors.Action,
	}
	if len(history) == 0 {
		embed.Description = "No punishment records."
		return embed
	}

	var sb strings.Builder
	for _, record := range history {
		marker := " "
		if record.Active {
			marker = "•"
		}
		fmt.Fprintf(&sb, "%s <t:%d:d> **%s** %s\n",
			marker, record.IssuedAt.Unix(), record.Kind.Label(), clampReason(record.Reason, 80))
	}
	embed.Description = sb.String()
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "• marks an active record"}
	return embed
}

func (b *Bot) buildReviewEmbed(record punishments.Record) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Warning review for %s", record.Kind.Label()),
		Color: b.cfg.Notifications.EmbedColors.Warning,
		Description: strings.Join([]string{
			fmt.Sprintf("User: %s", mention(record.UserID)),
			fmt.Sprintf("Issued: <t:%d:f>", record.IssuedAt.Unix()),
			fmt.Sprintf("Reason: %s", clampReason(record.Reason, 200)),
			"",
			"1️⃣ Postpone 30 days",
			"2️⃣ Postpone 14 days",
			"3️⃣ Postpone 7 days",
			"4️⃣ Reduce one tier",
			"5️⃣ Make permanent",
		}, "\n"),
		Footer: &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Record %s", record.ID)},
	}
}

func (b *Bot) buildMessageEditEmbed(original storage.ArchivedMessage, newContent string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "Message edited",
		Color: b.cfg.Notifications.EmbedColors.Warning,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Author", Value: mention(original.AuthorID), Inline: true},
			{Name: "Channel", Value: channelMention(original.ChannelID), Inline: true},
			{Name: "Before", Value: clampField(orPlaceholder(original.PreviousContent()))},
			{Name: "After", Value: clampField(orPlaceholder(newContent))},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

func (b *Bot) buildMessageDeleteEmbed(original storage.ArchivedMessage) *discordgo.MessageEmbed {
	fields := []*discordgo.MessageEmbedField{
		{Name: "Author", Value: mention(original.AuthorID), Inline: true},
		{Name: "Channel", Value: channelMention(original.ChannelID), Inline: true},
		{Name: "Content", Value: clampField(orPlaceholder(original.Content))},
	}
	if len(original.Attachments) > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "Attachments", Value: clampField(strings.Join(original.Attachments, "\n")),
		})
	}
	return &discordgo.MessageEmbed{
		Title:     "Message deleted",
		Color:     b.cfg.Notifications.EmbedColors.Error,
		Fields:    fields,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

func mention(userID string) string {
	if userID == "" {
		return "unknown"
	}
	return fmt.Sprintf("<@%s>", userID)
}

func channelMention(channelID string) string {
	return fmt.Sprintf("<#%s>", channelID)
}

func orPlaceholder(content string) string {
	if strings.TrimSpace(content) == "" {
		return "*empty*"
	}
	return content
}

func clampField(value string) string {
	return clampRunes(value, embedFieldLimit)
}

func clampReason(reason string, max int) string {
	if reason == "" {
		reason = punishments.DefaultReason
	}
	return clampRunes(reason, max)
}

// clampRunes truncates on rune boundaries so a multi-byte character is
// never split mid-sequence.
func clampRunes(value string, max int) string {
	if utf8.RuneCountInString(value) <= max {
		return value
	}
	runes := []rune(value)
	return string(runes[:max-1]) + "…"
}
