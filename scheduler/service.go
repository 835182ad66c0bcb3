package scheduler

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"moderation-bot/model"
)

// maxDurationSeconds is the longest duration whose nanosecond form still
// fits in a time.Duration. Anything above it would wrap dueAt arithmetic.
const maxDurationSeconds = math.MaxInt64 / int64(time.Second)

// Receipt is what a successful registration hands back to the caller. The
// presentation layer renders text from it; the core produces none.
type Receipt struct {
	ActionID   string
	DueAt      time.Time
	PriorState model.PermissionState
}

// Service drives the registration and cancellation flows across the guard,
// the executor and the scheduler: claim the target, apply the restriction,
// persist the reversal. Every failure on that path rolls back whatever came
// before it, so a rejected request leaves no trace.
type Service struct {
	guard *Guard
	exec  *Executor
	sched *Scheduler
}

func NewService(guard *Guard, exec *Executor, sched *Scheduler) *Service {
	return &Service{guard: guard, exec: exec, sched: sched}
}

type validator interface {
	Validate() error
}

// Schedule applies the restriction described by payload and registers its
// reversal durationSeconds from now. It returns ErrAlreadyRestricted when
// the target holds an active restriction of the same kind,
// ErrPlatformDenied or ErrNotFound when the platform refuses the apply, and
// ErrStoreUnavailable when the record cannot be persisted; in every failure
// case the target is left exactly as it was found.
func (svc *Service) Schedule(payload model.ActionPayload, guildID, originChannelID, actorID string, durationSeconds int64) (*Receipt, error) {
	if durationSeconds <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", ErrInvalidRequest)
	}
	if durationSeconds > maxDurationSeconds {
		return nil, fmt.Errorf("%w: duration exceeds %d seconds", ErrInvalidRequest, maxDurationSeconds)
	}
	if payload == nil {
		return nil, fmt.Errorf("%w: missing payload", ErrInvalidRequest)
	}
	if v, ok := payload.(validator); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
	}
	if !svc.exec.Supports(payload.Kind()) {
		return nil, fmt.Errorf("%w: unsupported kind %q", ErrInvalidRequest, payload.Kind())
	}

	prior, err := svc.exec.StateOf(guildID, payload)
	if err != nil {
		return nil, err
	}

	target := payload.TargetKey(guildID)
	if _, err := svc.guard.Claim(target, prior); err != nil {
		return nil, err
	}

	if err := svc.exec.Apply(guildID, payload, prior); err != nil {
		svc.guard.Release(target)
		return nil, err
	}

	action := model.NewScheduledAction(payload.Kind(), payload, guildID, originChannelID, actorID, durationSeconds)
	if err := svc.sched.Register(action); err != nil {
		// The restriction is live but has no durable reversal; undo it
		// rather than leave it un-revertable.
		if rerr := svc.exec.Revert(action); rerr != nil {
			log.Printf("Failed to roll back %s on guild %s after registration failure: %v", action.Kind, guildID, rerr)
		} else {
			svc.guard.Release(target)
		}
		return nil, err
	}

	return &Receipt{ActionID: action.ID, DueAt: action.DueAt, PriorState: prior}, nil
}

// Cancel removes a pending action without reverting its restriction.
func (svc *Service) Cancel(id string) bool {
	return svc.sched.Cancel(id)
}

// RevertNow reverts a pending action immediately and removes it. An id that
// is missing or belongs to another guild yields ErrNotFound. If the action
// started firing between lookup and cancel the revert it already ran is
// idempotent with ours, so the end state is the same.
func (svc *Service) RevertNow(guildID, id string) (*model.ScheduledAction, error) {
	action, ok := svc.sched.Lookup(id)
	if !ok || action.GuildID != guildID {
		return nil, fmt.Errorf("%w: no pending action %s", ErrNotFound, id)
	}
	if err := svc.exec.Revert(action); err != nil {
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	svc.sched.Cancel(id)
	svc.guard.Release(action.Target())
	return action, nil
}

// ActiveOn reports whether target currently holds an active restriction.
func (svc *Service) ActiveOn(target model.TargetKey) bool {
	_, ok := svc.guard.Active(target)
	return ok
}

// Pending lists the guild's pending actions ordered by due time.
func (svc *Service) Pending(guildID string) []*model.ScheduledAction {
	return svc.sched.Pending(guildID)
}
