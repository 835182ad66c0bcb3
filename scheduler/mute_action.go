package scheduler

import (
	"fmt"

	"moderation-bot/model"
)

// muteExecutor handles temporary mutes via the guild's muted role.
type muteExecutor struct{}

func (muteExecutor) Apply(adapter PlatformAdapter, guildID string, payload model.ActionPayload, prior model.PermissionState) error {
	p, ok := payload.(*model.MuteActionPayload)
	if !ok {
		return fmt.Errorf("%w: mute executor got %T payload", ErrInvalidRequest, payload)
	}
	p.PreviousPermissionState = prior
	return adapter.SetRestrictionState(p.TargetKey(guildID), model.PermissionDenied)
}

func (muteExecutor) Revert(adapter PlatformAdapter, action *model.ScheduledAction) error {
	p, ok := action.Payload.(*model.MuteActionPayload)
	if !ok {
		return fmt.Errorf("%w: mute executor got %T payload", ErrInvalidRequest, action.Payload)
	}
	return revertToPrior(adapter, p.TargetKey(action.GuildID), p.PreviousPermissionState)
}
