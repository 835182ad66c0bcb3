package utils

import "github.com/bwmarrin/discordgo"

// contains checks if a slice of strings contains an element.
func contains(slice []string, item string) bool {
	for _, a := range slice {
		if a == item {
			return true
		}
	}
	return false
}

// IsModerator reports whether member may issue moderation commands: either
// one of the configured moderator roles, or the Manage Server permission
// when no roles are configured.
func IsModerator(member *discordgo.Member, moderatorRoleIDs []string) bool {
	if len(moderatorRoleIDs) == 0 {
		return member.Permissions&discordgo.PermissionManageGuild != 0
	}
	for _, roleID := range member.Roles {
		if contains(moderatorRoleIDs, roleID) {
			return true
		}
	}
	return false
}
