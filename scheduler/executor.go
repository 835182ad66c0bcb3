package scheduler

import (
	"fmt"

	"moderation-bot/model"
)

// KindExecutor is one apply/revert pair. Adding an action kind means adding
// one implementation and registering it; the scheduler and guard are
// untouched.
type KindExecutor interface {
	// Apply performs the initial restriction through the adapter and stamps
	// the payload with the prior state the caller observed.
	Apply(adapter PlatformAdapter, guildID string, payload model.ActionPayload, prior model.PermissionState) error
	// Revert restores the captured prior state. It must be idempotent: a
	// target already back in its prior state, or gone entirely, is success.
	Revert(adapter PlatformAdapter, action *model.ScheduledAction) error
}

// Executor dispatches apply/revert by action kind.
type Executor struct {
	adapter PlatformAdapter
	kinds   map[model.ActionKind]KindExecutor
}

// NewExecutor builds an executor with the built-in kinds registered.
func NewExecutor(adapter PlatformAdapter) *Executor {
	return &Executor{
		adapter: adapter,
		kinds: map[model.ActionKind]KindExecutor{
			model.ActionKindUnlock: lockExecutor{},
			model.ActionKindUnmute: muteExecutor{},
			model.ActionKindUnban:  banExecutor{},
		},
	}
}

// Supports reports whether kind has a registered executor.
func (e *Executor) Supports(kind model.ActionKind) bool {
	_, ok := e.kinds[kind]
	return ok
}

// StateOf queries the current restriction state of the payload's target.
func (e *Executor) StateOf(guildID string, payload model.ActionPayload) (model.PermissionState, error) {
	return e.adapter.RestrictionState(payload.TargetKey(guildID))
}

// Apply performs the restriction for payload's kind, recording prior as the
// state to restore on expiry.
func (e *Executor) Apply(guildID string, payload model.ActionPayload, prior model.PermissionState) error {
	ex, ok := e.kinds[payload.Kind()]
	if !ok {
		return fmt.Errorf("%w: no executor for kind %q", ErrInvalidRequest, payload.Kind())
	}
	return ex.Apply(e.adapter, guildID, payload, prior)
}

// Revert undoes action's restriction, restoring the captured prior state.
func (e *Executor) Revert(action *model.ScheduledAction) error {
	ex, ok := e.kinds[action.Kind]
	if !ok {
		return fmt.Errorf("%w: no executor for kind %q", ErrInvalidRequest, action.Kind)
	}
	return ex.Revert(e.adapter, action)
}
