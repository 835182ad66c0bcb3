package handlers

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/bot"
	"moderation-bot/model"
)

// HandleTempMute assigns the guild's muted role for a duration and schedules
// its removal.
func HandleTempMute(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	serverCfg := b.Config.ServerConfigs[i.GuildID]
	if serverCfg.MutedRoleID == "" {
		respond(s, i, "No muted role is configured for this server.")
		return
	}

	opts := optionMap(i)
	minutes := opts["minutes"].IntValue()
	member := opts["member"].UserValue(nil)

	payload := &model.MuteActionPayload{
		TargetMemberID: member.ID,
		MutedRoleID:    serverCfg.MutedRoleID,
	}

	receipt, err := b.Service.Schedule(payload, i.GuildID, i.ChannelID, i.Member.User.ID, minutes*60)
	if err != nil {
		respond(s, i, errorReply(err))
		return
	}

	respond(s, i, fmt.Sprintf("Muted <@%s> until <t:%d:f>. Action id: `%s`",
		member.ID, receipt.DueAt.Unix(), receipt.ActionID))
}
