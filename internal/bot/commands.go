package bot

import "github.com/bwmarrin/discordgo"

func (b *Bot) registerCommands() error {
	userOption := func(desc string) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: desc,
			Required:    true,
		}
	}
	reasonOption := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "reason",
		Description: "Reason for the action",
		Required:    false,
	}

	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "ban",
			Description: "Ban a user from the server",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("User to ban"),
				reasonOption,
			},
		},
		{
			Name:        "unban",
			Description: "Remove a user's ban",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("User to unban"),
				reasonOption,
			},
		},
		{
			Name:        "kick",
			Description: "Kick a user from the server",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("User to kick"),
				reasonOption,
			},
		},
		{
			Name:        "mute",
			Description: "Mute a user for a duration",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("User to mute"),
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "duration",
					Description: "Duration such as 30m, 2h or 3d",
					Required:    true,
				},
				reasonOption,
			},
		},
		{
			Name:        "unmute",
			Description: "Lift a user's mute early",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("User to unmute"),
				reasonOption,
			},
		},
		{
			Name:        "warn",
			Description: "Manage user warnings",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "issue",
					Description: "Warn a user, escalating their tier",
					Options: []*discordgo.ApplicationCommandOption{
						userOption("User to warn"),
						reasonOption,
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "clear",
					Description: "Clear a user's active warning",
					Options: []*discordgo.ApplicationCommandOption{
						userOption("User to clear"),
						reasonOption,
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "level",
					Description: "Set a user's warning tier directly",
					Options: []*discordgo.ApplicationCommandOption{
						userOption("User to set"),
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "tier",
							Description: "Warning tier (1-3)",
							Required:    true,
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "1", Value: 1},
								{Name: "2", Value: 2},
								{Name: "3", Value: 3},
							},
						},
						reasonOption,
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "review",
					Description: "Start the review flow for an overdue warning",
					Options: []*discordgo.ApplicationCommandOption{
						userOption("User whose warning is due"),
					},
				},
			},
		},
		{
			Name:        "note",
			Description: "Attach a staff note to a user",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("User to annotate"),
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "text",
					Description: "Note text",
					Required:    true,
				},
			},
		},
		{
			Name:        "strike",
			Description: "Manage strikes",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add",
					Description: "Add a strike",
					Options: []*discordgo.ApplicationCommandOption{
						userOption("User to strike"),
						reasonOption,
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Remove a user's most recent strike",
					Options: []*discordgo.ApplicationCommandOption{
						userOption("User to destrike"),
						reasonOption,
					},
				},
			},
		},
		{
			Name:        "blacklist",
			Description: "Manage channel blacklists",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add",
					Description: "Blacklist a user from a channel",
					Options: []*discordgo.ApplicationCommandOption{
						userOption("User to blacklist"),
						{
							Type:        discordgo.ApplicationCommandOptionChannel,
							Name:        "channel",
							Description: "Channel the blacklist applies to",
							Required:    true,
						},
						reasonOption,
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Lift a user's channel blacklist",
					Options: []*discordgo.ApplicationCommandOption{
						userOption("User to unblacklist"),
						{
							Type:        discordgo.ApplicationCommandOptionChannel,
							Name:        "channel",
							Description: "Channel the blacklist applies to",
							Required:    true,
						},
						reasonOption,
					},
				},
			},
		},
		{
			Name:        "history",
			Description: "Show a user's punishment history",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("User to look up"),
			},
		},
	}

	appID := b.session.State.User.ID
	existing, err := b.session.ApplicationCommands(appID, b.cfg.GuildID)
	if err != nil {
		return err
	}

	existingByName := make(map[string]*discordgo.ApplicationCommand)
	for _, cmd := range existing {
		existingByName[cmd.Name] = cmd
	}

	desired := make(map[string]struct{})
	for _, cmd := range commands {
		desired[cmd.Name] = struct{}{}
		if current, ok := existingByName[cmd.Name]; ok {
			if _, err := b.session.ApplicationCommandEdit(appID, b.cfg.GuildID, current.ID, cmd); err != nil {
				return err
			}
			continue
		}
		if _, err := b.session.ApplicationCommandCreate(appID, b.cfg.GuildID, cmd); err != nil {
			return err
		}
	}

	for _, cmd := range existing {
		if _, ok := desired[cmd.Name]; ok {
			continue
		}
		_ = b.session.ApplicationCommandDelete(appID, b.cfg.GuildID, cmd.ID)
	}

	return nil
}
