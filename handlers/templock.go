package handlers

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/bot"
	"moderation-bot/model"
)

// HandleTempLock locks a channel's send permission for a role, a member or
// everyone, and schedules the unlock. The previous override state is
// captured by the core so the unlock restores it exactly.
func HandleTempLock(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts := optionMap(i)
	minutes := opts["minutes"].IntValue()

	payload := &model.LockActionPayload{TargetChannelID: i.ChannelID}
	if opt, ok := opts["channel"]; ok {
		payload.TargetChannelID = opt.ChannelValue(nil).ID
	}
	if opt, ok := opts["role"]; ok {
		payload.TargetRoleID = opt.RoleValue(nil, "").ID
	}
	if opt, ok := opts["member"]; ok {
		payload.TargetMemberID = opt.UserValue(nil).ID
	}

	receipt, err := b.Service.Schedule(payload, i.GuildID, i.ChannelID, i.Member.User.ID, minutes*60)
	if err != nil {
		respond(s, i, errorReply(err))
		return
	}

	target := "everyone"
	if payload.TargetRoleID != "" {
		target = fmt.Sprintf("<@&%s>", payload.TargetRoleID)
	} else if payload.TargetMemberID != "" {
		target = fmt.Sprintf("<@%s>", payload.TargetMemberID)
	}
	respond(s, i, fmt.Sprintf("Locked <#%s> for %s until <t:%d:f>. Action id: `%s`",
		payload.TargetChannelID, target, receipt.DueAt.Unix(), receipt.ActionID))
}
