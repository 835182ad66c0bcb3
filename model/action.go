package model

import (
	"time"

	"github.com/google/uuid"
)

// ActionKind selects which family of reversal a scheduled action performs.
type ActionKind string

const (
	ActionKindUnlock ActionKind = "UNLOCK"
	ActionKindUnmute ActionKind = "UNMUTE"
	ActionKindUnban  ActionKind = "UNBAN"
)

// PermissionState is the tri-state of a restriction on a target. Unset means
// the target has no override at all, which is distinct from an explicit allow
// or deny and must be restored as such.
type PermissionState string

const (
	PermissionAllowed PermissionState = "ALLOWED"
	PermissionDenied  PermissionState = "DENIED"
	PermissionUnset   PermissionState = "UNSET"
)

// TargetKey identifies the platform entity a restriction applies to. It is
// the uniqueness key for guard claims: at most one active action per key.
// For channel locks exactly one of RoleID/MemberID is set, or neither when
// the channel's everyone entity is the target.
type TargetKey struct {
	GuildID   string
	ChannelID string
	RoleID    string
	MemberID  string
	Kind      ActionKind
}

// ScheduledAction is one pending reversal. DueAt is derived once at creation
// and persisted; it is never recomputed from the duration afterwards.
type ScheduledAction struct {
	ID              string
	Kind            ActionKind
	Payload         ActionPayload
	GuildID         string
	OriginChannelID string
	ActorID         string
	CreatedAt       time.Time
	DurationSeconds int64
	DueAt           time.Time
}

// NewScheduledAction builds an action due durationSeconds from now. Times
// are whole seconds, matching the store's persisted form, so a replayed
// action keeps exactly the due time that was promised.
func NewScheduledAction(kind ActionKind, payload ActionPayload, guildID, originChannelID, actorID string, durationSeconds int64) *ScheduledAction {
	created := time.Now().UTC().Truncate(time.Second)
	return &ScheduledAction{
		ID:              uuid.NewString(),
		Kind:            kind,
		Payload:         payload,
		GuildID:         guildID,
		OriginChannelID: originChannelID,
		ActorID:         actorID,
		CreatedAt:       created,
		DurationSeconds: durationSeconds,
		DueAt:           created.Add(time.Duration(durationSeconds) * time.Second),
	}
}

// Target returns the guard key this action holds.
func (a *ScheduledAction) Target() TargetKey {
	return a.Payload.TargetKey(a.GuildID)
}
