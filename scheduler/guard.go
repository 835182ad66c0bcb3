package scheduler

import (
	"fmt"
	"sync"

	"moderation-bot/model"
)

// Guard is the in-memory index of active restrictions. It is the single
// source of truth for "is this target currently restricted" and recalls the
// state observed before the restriction was applied. It holds no persistence
// of its own; the scheduler rebuilds it from the store at startup.
type Guard struct {
	mu     sync.Mutex
	active map[model.TargetKey]model.PermissionState
}

func NewGuard() *Guard {
	return &Guard{active: make(map[model.TargetKey]model.PermissionState)}
}

// Claim atomically marks target as restricted, recording the prior state the
// caller observed before restricting it. It returns ErrAlreadyRestricted if
// the target already holds an active claim; there is no silent overwrite.
func (g *Guard) Claim(target model.TargetKey, prior model.PermissionState) (model.PermissionState, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.active[target]; ok {
		return "", fmt.Errorf("%w: %s/%s", ErrAlreadyRestricted, target.GuildID, target.Kind)
	}
	g.active[target] = prior
	return prior, nil
}

// Release clears the claim for target. Releasing an unclaimed target is a
// no-op so that reversal can be retried safely after a crash.
func (g *Guard) Release(target model.TargetKey) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.active, target)
}

// Active reports whether target holds a claim and the prior state recorded
// with it.
func (g *Guard) Active(target model.TargetKey) (model.PermissionState, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	prior, ok := g.active[target]
	return prior, ok
}
