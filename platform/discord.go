package platform

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/model"
	"moderation-bot/scheduler"
)

// DiscordAdapter implements scheduler.PlatformAdapter on top of discordgo.
// Lock targets map to the send-message bit of a channel permission
// overwrite, mute targets to the guild's muted role, ban targets to guild
// bans. All three expose the same tri-state surface to the core.
type DiscordAdapter struct {
	session *discordgo.Session
}

func NewDiscordAdapter(session *discordgo.Session) *DiscordAdapter {
	return &DiscordAdapter{session: session}
}

func (d *DiscordAdapter) RestrictionState(target model.TargetKey) (model.PermissionState, error) {
	switch target.Kind {
	case model.ActionKindUnlock:
		return d.channelWriteState(target)
	case model.ActionKindUnmute:
		return d.mutedRoleState(target)
	case model.ActionKindUnban:
		return d.banState(target)
	}
	return model.PermissionUnset, fmt.Errorf("%w: no adapter for kind %q", scheduler.ErrInvalidRequest, target.Kind)
}

func (d *DiscordAdapter) SetRestrictionState(target model.TargetKey, state model.PermissionState) error {
	switch target.Kind {
	case model.ActionKindUnlock:
		return d.setChannelWriteState(target, state)
	case model.ActionKindUnmute:
		return d.setMutedRoleState(target, state)
	case model.ActionKindUnban:
		return d.setBanState(target, state)
	}
	return fmt.Errorf("%w: no adapter for kind %q", scheduler.ErrInvalidRequest, target.Kind)
}

// overwriteTarget resolves which overwrite entity a lock target addresses:
// the role, the member, or the everyone role (whose id equals the guild id).
func overwriteTarget(target model.TargetKey) (string, discordgo.PermissionOverwriteType) {
	if target.MemberID != "" {
		return target.MemberID, discordgo.PermissionOverwriteTypeMember
	}
	if target.RoleID != "" {
		return target.RoleID, discordgo.PermissionOverwriteTypeRole
	}
	return target.GuildID, discordgo.PermissionOverwriteTypeRole
}

// writeStateOf reads the send-message bit of an overwrite as a tri-state. A
// missing overwrite, or one that does not mention the bit, is Unset.
func writeStateOf(overwrite *discordgo.PermissionOverwrite) model.PermissionState {
	if overwrite == nil {
		return model.PermissionUnset
	}
	if overwrite.Deny&discordgo.PermissionSendMessages != 0 {
		return model.PermissionDenied
	}
	if overwrite.Allow&discordgo.PermissionSendMessages != 0 {
		return model.PermissionAllowed
	}
	return model.PermissionUnset
}

func (d *DiscordAdapter) findOverwrite(target model.TargetKey) (*discordgo.PermissionOverwrite, error) {
	channel, err := d.session.Channel(target.ChannelID)
	if err != nil {
		return nil, mapError(err)
	}
	overwriteID, _ := overwriteTarget(target)
	for _, overwrite := range channel.PermissionOverwrites {
		if overwrite.ID == overwriteID {
			return overwrite, nil
		}
	}
	return nil, nil
}

func (d *DiscordAdapter) channelWriteState(target model.TargetKey) (model.PermissionState, error) {
	overwrite, err := d.findOverwrite(target)
	if err != nil {
		return model.PermissionUnset, err
	}
	return writeStateOf(overwrite), nil
}

func (d *DiscordAdapter) setChannelWriteState(target model.TargetKey, state model.PermissionState) error {
	overwrite, err := d.findOverwrite(target)
	if err != nil {
		return err
	}

	var allow, deny int64
	if overwrite != nil {
		allow, deny = overwrite.Allow, overwrite.Deny
	}
	allow &^= discordgo.PermissionSendMessages
	deny &^= discordgo.PermissionSendMessages
	switch state {
	case model.PermissionAllowed:
		allow |= discordgo.PermissionSendMessages
	case model.PermissionDenied:
		deny |= discordgo.PermissionSendMessages
	}

	overwriteID, overwriteType := overwriteTarget(target)
	if allow == 0 && deny == 0 {
		if overwrite == nil {
			return nil
		}
		if err := d.session.ChannelPermissionDelete(target.ChannelID, overwriteID); err != nil {
			return mapError(err)
		}
		return nil
	}
	if err := d.session.ChannelPermissionSet(target.ChannelID, overwriteID, overwriteType, allow, deny); err != nil {
		return mapError(err)
	}
	return nil
}

func (d *DiscordAdapter) mutedRoleState(target model.TargetKey) (model.PermissionState, error) {
	member, err := d.session.GuildMember(target.GuildID, target.MemberID)
	if err != nil {
		return model.PermissionUnset, mapError(err)
	}
	for _, roleID := range member.Roles {
		if roleID == target.RoleID {
			return model.PermissionDenied, nil
		}
	}
	return model.PermissionUnset, nil
}

func (d *DiscordAdapter) setMutedRoleState(target model.TargetKey, state model.PermissionState) error {
	var err error
	if state == model.PermissionDenied {
		err = d.session.GuildMemberRoleAdd(target.GuildID, target.MemberID, target.RoleID)
	} else {
		err = d.session.GuildMemberRoleRemove(target.GuildID, target.MemberID, target.RoleID)
	}
	if err != nil {
		return mapError(err)
	}
	return nil
}

func (d *DiscordAdapter) banState(target model.TargetKey) (model.PermissionState, error) {
	_, err := d.session.GuildBan(target.GuildID, target.MemberID)
	if err != nil {
		mapped := mapError(err)
		if errors.Is(mapped, scheduler.ErrNotFound) {
			return model.PermissionUnset, nil
		}
		return model.PermissionUnset, mapped
	}
	return model.PermissionDenied, nil
}

func (d *DiscordAdapter) setBanState(target model.TargetKey, state model.PermissionState) error {
	var err error
	if state == model.PermissionDenied {
		err = d.session.GuildBanCreate(target.GuildID, target.MemberID, 0)
	} else {
		err = d.session.GuildBanDelete(target.GuildID, target.MemberID)
	}
	if err != nil {
		return mapError(err)
	}
	return nil
}

// mapError folds discord REST failures into the core's error taxonomy.
func mapError(err error) error {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		switch restErr.Response.StatusCode {
		case http.StatusForbidden:
			return fmt.Errorf("%w: %v", scheduler.ErrPlatformDenied, err)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %v", scheduler.ErrNotFound, err)
		}
	}
	return err
}
