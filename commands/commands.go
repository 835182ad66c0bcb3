package commands

import "github.com/bwmarrin/discordgo"

var minDuration = float64(1)

// Generate returns the slash command set registered for each enabled guild.
func Generate() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "templock",
			Description: "Lock a channel for a duration, then restore its previous state.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "minutes",
					Description: "How long the lock lasts, in minutes.",
					Required:    true,
					MinValue:    &minDuration,
				},
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "Channel to lock. Defaults to the current channel.",
					Required:    false,
				},
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "role",
					Description: "Role to lock out. Defaults to everyone.",
					Required:    false,
				},
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "member",
					Description: "Member to lock out instead of a role.",
					Required:    false,
				},
			},
		},
		{
			Name:        "tempmute",
			Description: "Mute a member for a duration via the configured muted role.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "member",
					Description: "Member to mute.",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "minutes",
					Description: "How long the mute lasts, in minutes.",
					Required:    true,
					MinValue:    &minDuration,
				},
			},
		},
		{
			Name:        "tempban",
			Description: "Ban a member for a duration, then lift the ban.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "member",
					Description: "Member to ban.",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "minutes",
					Description: "How long the ban lasts, in minutes.",
					Required:    true,
					MinValue:    &minDuration,
				},
			},
		},
		{
			Name:        "actions",
			Description: "List this guild's pending scheduled actions.",
		},
		{
			Name:        "release",
			Description: "Revert a scheduled action now and remove it.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "action_id",
					Description: "Id of the action to revert.",
					Required:    true,
				},
			},
		},
		{
			Name:        "system-info",
			Description: "Show bot host and runtime information.",
		},
	}
}
