package scheduler

import "moderation-bot/model"

// Store is the durable persistence the scheduler relies on. Put must be
// durable before it returns; Delete is idempotent; LoadAll returns records
// ordered by due time ascending, skipping kinds it cannot decode.
type Store interface {
	Put(action *model.ScheduledAction) error
	Delete(id string) error
	LoadAll() ([]*model.ScheduledAction, error)
}

// PlatformAdapter is the only surface through which restrictions touch the
// target platform. Implementations map permission failures to
// ErrPlatformDenied and missing entities to ErrNotFound.
type PlatformAdapter interface {
	RestrictionState(target model.TargetKey) (model.PermissionState, error)
	SetRestrictionState(target model.TargetKey, state model.PermissionState) error
}
