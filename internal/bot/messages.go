package bot

import (
	"context"
	"errors"
	"time"

	"github.com/rNintendoSwitch/MechaBowser-sub000/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func (b *Bot) onMessageCreate(session *discordgo.Session, msg *discordgo.MessageCreate) {
	if msg.GuildID != b.cfg.GuildID || msg.Author == nil || msg.Author.Bot {
		return
	}

	attachments := make([]string, 0, len(msg.Attachments))
	for _, attachment := range msg.Attachments {
		if attachment != nil {
			attachments = append(attachments, attachment.URL)
		}
	}

	ctx := context.Background()
	err := b.store.ArchiveMessage(ctx, storage.ArchivedMessage{
		ID:          msg.ID,
		AuthorID:    msg.Author.ID,
		ChannelID:   msg.ChannelID,
		Content:     msg.Content,
		Attachments: attachments,
		Timestamp:   msg.Timestamp,
	})
	if err != nil {
		b.logger.Warn("message archive failed", zap.String("message_id", msg.ID), zap.Error(err))
	}
}

func (b *Bot) onMessageUpdate(session *discordgo.Session, msg *discordgo.MessageUpdate) {
	if msg.GuildID != b.cfg.GuildID || msg.Author == nil || msg.Author.Bot {
		return
	}

	ctx := context.Background()
	err := b.store.RecordMessageEdit(ctx, msg.ID, msg.Content, time.Now())
	if err != nil {
		if errors.Is(err, storage.ErrMessageNotFound) {
			return
		}
		b.logger.Warn("edit archive failed", zap.String("message_id", msg.ID), zap.Error(err))
		return
	}

	if b.cfg.Channels.Archive != "" {
		original, err := b.store.GetMessage(ctx, msg.ID)
		if err != nil {
			return
		}
		embed := b.buildMessageEditEmbed(original, msg.Content)
		_, _ = b.session.ChannelMessageSendEmbed(b.cfg.Channels.Archive, embed)
	}
}

func (b *Bot) onMessageDelete(session *discordgo.Session, msg *discordgo.MessageDelete) {
	if msg.GuildID != b.cfg.GuildID {
		return
	}

	ctx := context.Background()
	if err := b.store.MarkMessageDeleted(ctx, msg.ID, time.Now()); err != nil {
		if errors.Is(err, storage.ErrMessageNotFound) {
			return
		}
		b.logger.Warn("delete archive failed", zap.String("message_id", msg.ID), zap.Error(err))
		return
	}

	if b.cfg.Channels.Archive != "" {
		original, err := b.store.GetMessage(ctx, msg.ID)
		if err != nil {
			return
		}
		_, _ = b.session.ChannelMessageSendEmbed(b.cfg.Channels.Archive, b.buildMessageDeleteEmbed(original))
	}
}
