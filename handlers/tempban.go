package handlers

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/bot"
	"moderation-bot/model"
)

// HandleTempBan bans a member for a duration and schedules the unban.
func HandleTempBan(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts := optionMap(i)
	minutes := opts["minutes"].IntValue()
	member := opts["member"].UserValue(nil)

	payload := &model.BanActionPayload{TargetMemberID: member.ID}

	receipt, err := b.Service.Schedule(payload, i.GuildID, i.ChannelID, i.Member.User.ID, minutes*60)
	if err != nil {
		respond(s, i, errorReply(err))
		return
	}

	respond(s, i, fmt.Sprintf("Banned <@%s> until <t:%d:f>. Action id: `%s`",
		member.ID, receipt.DueAt.Unix(), receipt.ActionID))
}
