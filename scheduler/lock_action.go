package scheduler

import (
	"errors"
	"fmt"

	"moderation-bot/model"
)

// lockExecutor handles channel write-locks: apply denies the send permission
// for the target entity, revert restores whatever override existed before.
type lockExecutor struct{}

func (lockExecutor) Apply(adapter PlatformAdapter, guildID string, payload model.ActionPayload, prior model.PermissionState) error {
	p, ok := payload.(*model.LockActionPayload)
	if !ok {
		return fmt.Errorf("%w: lock executor got %T payload", ErrInvalidRequest, payload)
	}
	p.PreviousPermissionState = prior
	return adapter.SetRestrictionState(p.TargetKey(guildID), model.PermissionDenied)
}

func (lockExecutor) Revert(adapter PlatformAdapter, action *model.ScheduledAction) error {
	p, ok := action.Payload.(*model.LockActionPayload)
	if !ok {
		return fmt.Errorf("%w: lock executor got %T payload", ErrInvalidRequest, action.Payload)
	}
	return revertToPrior(adapter, p.TargetKey(action.GuildID), p.PreviousPermissionState)
}

// revertToPrior restores prior on the target. A target that is already in
// its prior state, or that no longer exists, counts as success so that
// reverts can be retried after a crash or a manual moderator undo.
func revertToPrior(adapter PlatformAdapter, key model.TargetKey, prior model.PermissionState) error {
	current, err := adapter.RestrictionState(key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	if current == prior {
		return nil
	}
	if err := adapter.SetRestrictionState(key, prior); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	return nil
}
