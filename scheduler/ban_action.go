package scheduler

import (
	"fmt"

	"moderation-bot/model"
)

// banExecutor handles temporary bans. The prior state of a newly banned
// member is always the unrestricted default, so revert lifts the ban
// unconditionally.
type banExecutor struct{}

func (banExecutor) Apply(adapter PlatformAdapter, guildID string, payload model.ActionPayload, prior model.PermissionState) error {
	p, ok := payload.(*model.BanActionPayload)
	if !ok {
		return fmt.Errorf("%w: ban executor got %T payload", ErrInvalidRequest, payload)
	}
	return adapter.SetRestrictionState(p.TargetKey(guildID), model.PermissionDenied)
}

func (banExecutor) Revert(adapter PlatformAdapter, action *model.ScheduledAction) error {
	p, ok := action.Payload.(*model.BanActionPayload)
	if !ok {
		return fmt.Errorf("%w: ban executor got %T payload", ErrInvalidRequest, action.Payload)
	}
	return revertToPrior(adapter, p.TargetKey(action.GuildID), model.PermissionUnset)
}
