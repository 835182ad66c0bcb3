package handlers

import (
	"errors"
	"log"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/bot"
	"moderation-bot/scheduler"
	"moderation-bot/utils"
)

func Register(b *bot.Bot) {
	b.CommandHandlers = commandHandlers(b)
	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		handleInteractionCreate(s, i, b)
	})
}

func handleInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	if h, ok := b.CommandHandlers[i.ApplicationCommandData().Name]; ok {
		h(s, i)
	}
}

func commandHandlers(b *bot.Bot) map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	moderatorOnly := func(h func(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot)) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			if i.Member == nil {
				respond(s, i, "This command can only be used in a server.")
				return
			}
			serverCfg, ok := b.Config.ServerConfigs[i.GuildID]
			if !ok {
				log.Printf("Could not find server config for guild: %s", i.GuildID)
				return
			}
			if !utils.IsModerator(i.Member, serverCfg.ModeratorRoleIDs) {
				respond(s, i, "You do not have permission to use this command.")
				return
			}
			h(s, i, b)
		}
	}

	return map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
		"templock":    moderatorOnly(HandleTempLock),
		"tempmute":    moderatorOnly(HandleTempMute),
		"tempban":     moderatorOnly(HandleTempBan),
		"actions":     moderatorOnly(HandleActions),
		"release":     moderatorOnly(HandleRelease),
		"system-info": moderatorOnly(HandleSystemInfo),
	}
}

// respond sends an ephemeral text reply to an interaction.
func respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("Failed to respond to interaction: %v", err)
	}
}

func optionMap(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	options := i.ApplicationCommandData().Options
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

// errorReply maps the core's error taxonomy to user-facing text. This is the
// only place scheduling failures become strings.
func errorReply(err error) string {
	switch {
	case errors.Is(err, scheduler.ErrAlreadyRestricted):
		return "That target already has an active restriction. Release it first if you want a new duration."
	case errors.Is(err, scheduler.ErrPlatformDenied):
		return "I don't have permission to do that. Check my role and channel permissions."
	case errors.Is(err, scheduler.ErrNotFound):
		return "I couldn't find that target."
	case errors.Is(err, scheduler.ErrStoreUnavailable):
		return "Couldn't save the scheduled action, so nothing was changed. Try again shortly."
	case errors.Is(err, scheduler.ErrInvalidRequest):
		return "Invalid request: " + err.Error()
	default:
		return "Something went wrong: " + err.Error()
	}
}
