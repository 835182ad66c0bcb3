package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownKind is returned when a payload is decoded for an action kind
// this build does not know. Loaders skip such records instead of failing.
var ErrUnknownKind = errors.New("unknown action kind")

// ActionPayload is the kind-specific half of a ScheduledAction. The scheduler
// treats it as opaque; only the executor for the matching kind interprets it.
type ActionPayload interface {
	Kind() ActionKind
	TargetKey(guildID string) TargetKey
	// PriorState is the restriction state observed before the action's
	// restriction was applied, restored when the action fires.
	PriorState() PermissionState
}

// LockActionPayload describes a channel write-lock to be undone. Exactly one
// of TargetRoleID/TargetMemberID is set; both empty means the channel's
// everyone entity was locked.
type LockActionPayload struct {
	TargetChannelID         string          `json:"target_channel_id"`
	TargetRoleID            string          `json:"target_role_id,omitempty"`
	TargetMemberID          string          `json:"target_member_id,omitempty"`
	PreviousPermissionState PermissionState `json:"previous_permission_state"`
}

func (p *LockActionPayload) Kind() ActionKind { return ActionKindUnlock }

func (p *LockActionPayload) TargetKey(guildID string) TargetKey {
	return TargetKey{
		GuildID:   guildID,
		ChannelID: p.TargetChannelID,
		RoleID:    p.TargetRoleID,
		MemberID:  p.TargetMemberID,
		Kind:      ActionKindUnlock,
	}
}

func (p *LockActionPayload) PriorState() PermissionState { return p.PreviousPermissionState }

// Validate rejects ambiguous targets before any state is touched.
func (p *LockActionPayload) Validate() error {
	if p.TargetChannelID == "" {
		return errors.New("lock payload missing target channel")
	}
	if p.TargetRoleID != "" && p.TargetMemberID != "" {
		return errors.New("lock payload targets both a role and a member")
	}
	return nil
}

// MuteActionPayload describes a muted-role assignment to be undone.
type MuteActionPayload struct {
	TargetMemberID          string          `json:"target_member_id"`
	MutedRoleID             string          `json:"muted_role_id"`
	PreviousPermissionState PermissionState `json:"previous_permission_state"`
}

func (p *MuteActionPayload) Kind() ActionKind { return ActionKindUnmute }

func (p *MuteActionPayload) TargetKey(guildID string) TargetKey {
	return TargetKey{
		GuildID:  guildID,
		RoleID:   p.MutedRoleID,
		MemberID: p.TargetMemberID,
		Kind:     ActionKindUnmute,
	}
}

func (p *MuteActionPayload) PriorState() PermissionState { return p.PreviousPermissionState }

func (p *MuteActionPayload) Validate() error {
	if p.TargetMemberID == "" {
		return errors.New("mute payload missing target member")
	}
	if p.MutedRoleID == "" {
		return errors.New("mute payload missing muted role")
	}
	return nil
}

// BanActionPayload describes a guild ban to be lifted.
type BanActionPayload struct {
	TargetMemberID string `json:"target_member_id"`
}

func (p *BanActionPayload) Kind() ActionKind { return ActionKindUnban }

func (p *BanActionPayload) TargetKey(guildID string) TargetKey {
	return TargetKey{
		GuildID:  guildID,
		MemberID: p.TargetMemberID,
		Kind:     ActionKindUnban,
	}
}

// PriorState for a ban is always Unset: lifting the ban restores the member
// to the unrestricted default.
func (p *BanActionPayload) PriorState() PermissionState { return PermissionUnset }

func (p *BanActionPayload) Validate() error {
	if p.TargetMemberID == "" {
		return errors.New("ban payload missing target member")
	}
	return nil
}

// EncodePayload serializes a payload for storage.
func EncodePayload(p ActionPayload) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", p.Kind(), err)
	}
	return data, nil
}

// DecodePayload deserializes stored payload bytes according to kind. The kind
// tag picks the variant, which keeps the record format forward-extensible.
func DecodePayload(kind ActionKind, data []byte) (ActionPayload, error) {
	var p ActionPayload
	switch kind {
	case ActionKindUnlock:
		p = &LockActionPayload{}
	case ActionKindUnmute:
		p = &MuteActionPayload{}
	case ActionKindUnban:
		p = &BanActionPayload{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", kind, err)
	}
	return p, nil
}
