package handlers

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/bot"
)

// HandleActions lists the guild's pending scheduled actions in due order.
func HandleActions(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	pending := b.Service.Pending(i.GuildID)
	if len(pending) == 0 {
		respond(s, i, "No pending scheduled actions.")
		return
	}

	var sb strings.Builder
	for _, a := range pending {
		fmt.Fprintf(&sb, "`%s` %s, fires <t:%d:R> (requested by <@%s>)\n",
			a.ID, a.Kind, a.DueAt.Unix(), a.ActorID)
	}
	respond(s, i, sb.String())
}

// HandleRelease reverts a pending action immediately and removes it.
func HandleRelease(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts := optionMap(i)
	id := opts["action_id"].StringValue()

	action, err := b.Service.RevertNow(i.GuildID, id)
	if err != nil {
		respond(s, i, errorReply(err))
		return
	}
	respond(s, i, fmt.Sprintf("Reverted %s action `%s`.", action.Kind, action.ID))
}
